// Package testutil provides common test utilities, mocks, and helpers for testing.
package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"

	"github.com/labstack/echo/v4"
)

// Error code constants for testing
const (
	ErrCodeInvalidRequest     = "INVALID_REQUEST"
	ErrCodeDecodeFailure      = "DECODE_FAILURE"
	ErrCodePlacementExhausted = "PLACEMENT_EXHAUSTED"
	ErrCodeInvalidItemSize    = "INVALID_ITEM_SIZE"
)

// MockS3Client is a mock implementation of S3 client for testing.
type MockS3Client struct {
	mu           sync.Mutex
	Objects      map[string][]byte
	UploadedData map[string][]byte
	ListCalls    int
	GetErr       error
	PutErr       error
	ListErr      error
}

// NewMockS3Client creates a new MockS3Client.
func NewMockS3Client() *MockS3Client {
	return &MockS3Client{
		Objects:      make(map[string][]byte),
		UploadedData: make(map[string][]byte),
	}
}

// GetObject mocks S3 GetObject.
func (m *MockS3Client) GetObject(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.GetErr != nil {
		return nil, m.GetErr
	}

	data, ok := m.Objects[key]
	if !ok {
		return nil, &ObjectNotFoundError{Key: key}
	}
	return data, nil
}

// PutObject mocks S3 PutObject.
func (m *MockS3Client) PutObject(key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.PutErr != nil {
		return m.PutErr
	}

	m.UploadedData[key] = data
	return nil
}

// ListObjects mocks S3 ListObjects.
func (m *MockS3Client) ListObjects(prefix string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ListCalls++
	if m.ListErr != nil {
		return nil, m.ListErr
	}

	var keys []string
	for key := range m.Objects {
		if strings.HasPrefix(key, prefix) {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

// Uploaded returns a copy of the uploaded objects.
func (m *MockS3Client) Uploaded() map[string][]byte {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string][]byte, len(m.UploadedData))
	for k, v := range m.UploadedData {
		out[k] = v
	}
	return out
}

// ObjectNotFoundError is returned when an S3 object is not found.
type ObjectNotFoundError struct {
	Key string
}

func (e *ObjectNotFoundError) Error() string {
	return "object not found: " + e.Key
}

// MockBedrockClient is a mock implementation of Bedrock client for testing.
// Responses are keyed by model ID; Response is used when no key matches.
type MockBedrockClient struct {
	mu          sync.Mutex
	Response    []byte
	Responses   map[string][]byte
	Err         error
	Errs        map[string]error
	LastBody    []byte
	LastModelID string
	Calls       int
}

// NewMockBedrockClient creates a new MockBedrockClient.
func NewMockBedrockClient() *MockBedrockClient {
	return &MockBedrockClient{
		Responses: make(map[string][]byte),
		Errs:      make(map[string]error),
	}
}

// InvokeModel mocks Bedrock InvokeModel.
func (m *MockBedrockClient) InvokeModel(ctx context.Context, modelID string, body []byte) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls++
	m.LastModelID = modelID
	m.LastBody = body

	if err, ok := m.Errs[modelID]; ok {
		return nil, err
	}
	if m.Err != nil {
		return nil, m.Err
	}
	if resp, ok := m.Responses[modelID]; ok {
		return resp, nil
	}
	return m.Response, nil
}

// LastBodyAsMap returns the last request body as a map.
func (m *MockBedrockClient) LastBodyAsMap() map[string]interface{} {
	m.mu.Lock()
	defer m.mu.Unlock()

	var result map[string]interface{}
	_ = json.Unmarshal(m.LastBody, &result)
	return result
}

// TestContext wraps Echo context for testing.
type TestContext struct {
	Echo     *echo.Echo
	Context  echo.Context
	Request  *http.Request
	Recorder *httptest.ResponseRecorder
}

// NewTestContext creates a new test context for Echo handlers.
func NewTestContext(method, path string, body io.Reader) *TestContext {
	e := echo.New()
	req := httptest.NewRequest(method, path, body)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	return &TestContext{
		Echo:     e,
		Context:  c,
		Request:  req,
		Recorder: rec,
	}
}

// FormFile is a file part of a multipart request.
type FormFile struct {
	Field    string
	Filename string
	Data     []byte
}

// NewMultipartTestContext creates a test context with a multipart/form-data body.
func NewMultipartTestContext(method, path string, fields map[string]string, files []FormFile) *TestContext {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	for k, v := range fields {
		_ = w.WriteField(k, v)
	}
	for _, f := range files {
		part, _ := w.CreateFormFile(f.Field, f.Filename)
		_, _ = part.Write(f.Data)
	}
	_ = w.Close()

	tc := NewTestContext(method, path, &body)
	tc.Request.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	return tc
}

// GetResponseBody returns the response body as a map.
func (tc *TestContext) GetResponseBody() map[string]interface{} {
	var result map[string]interface{}
	_ = json.Unmarshal(tc.Recorder.Body.Bytes(), &result)
	return result
}

// GetResponseCode returns the HTTP response status code.
func (tc *TestContext) GetResponseCode() int {
	return tc.Recorder.Code
}

// CreateTestPNG creates a test PNG image with specified dimensions.
func CreateTestPNG(width, height int) []byte {
	var buf bytes.Buffer
	_ = png.Encode(&buf, CreateTestImage(width, height))
	return buf.Bytes()
}

// CreateTestJPEG creates a test JPEG image with specified dimensions.
func CreateTestJPEG(width, height int) []byte {
	var buf bytes.Buffer
	_ = jpeg.Encode(&buf, CreateTestImage(width, height), &jpeg.Options{Quality: 80})
	return buf.Bytes()
}

// CreateTestImage creates a test image.Image with specified dimensions.
func CreateTestImage(width, height int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8(x % 256),
				G: uint8(y % 256),
				B: uint8((x + y) % 256),
				A: 255,
			})
		}
	}

	return img
}

// CreateSolidImage creates an image filled with a single color.
func CreateSolidImage(width, height int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

// CreateSolidPNG creates a PNG filled with a single color.
func CreateSolidPNG(width, height int, c color.Color) []byte {
	var buf bytes.Buffer
	_ = png.Encode(&buf, CreateSolidImage(width, height, c))
	return buf.Bytes()
}

// AssertJSONResponse parses JSON response and returns as map.
func AssertJSONResponse(rec *httptest.ResponseRecorder) map[string]interface{} {
	var result map[string]interface{}
	_ = json.Unmarshal(rec.Body.Bytes(), &result)
	return result
}
