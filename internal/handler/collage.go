package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/kyiku/hackz-collage-back/internal/codec"
	"github.com/kyiku/hackz-collage-back/internal/collage"
	"github.com/kyiku/hackz-collage-back/internal/response"
	"github.com/labstack/echo/v4"
)

// Error codes returned by the collage endpoints.
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeInvalidItemSize    = "INVALID_ITEM_SIZE"
	CodePlacementExhausted = "PLACEMENT_EXHAUSTED"
	CodeDecodeFailure      = "DECODE_FAILURE"
	CodeEncodeFailure      = "ENCODE_FAILURE"
	CodeBuildTimeout       = "BUILD_TIMEOUT"
	CodeStorageUnavailable = "STORAGE_UNAVAILABLE"
	CodeUploadFailed       = "UPLOAD_FAILED"
	CodeInternalError      = "INTERNAL_ERROR"
)

// HeaderCollageSeed reports the seed a collage was laid out with.
const HeaderCollageSeed = "X-Collage-Seed"

const defaultMaxImages = 50

// CollageBuilder builds one collage.
type CollageBuilder interface {
	Build(ctx context.Context, opts collage.Options, req collage.Request) (*collage.Result, error)
}

// CaptionSummarizer turns a transcript into a short caption.
type CaptionSummarizer interface {
	Summarize(ctx context.Context, transcript string) (string, error)
}

// BackgroundGenerator produces an encoded background image for a transcript.
type BackgroundGenerator interface {
	Generate(ctx context.Context, transcript string, seed int64) ([]byte, error)
}

// CollageStore serves stored backgrounds and persists finished collages.
type CollageStore interface {
	ListBackgrounds() ([]string, error)
	GetRandomBackground() ([]byte, error)
	UploadCollage(data []byte) (string, error)
}

// CollageHandler handles collage build requests.
type CollageHandler struct {
	builder     CollageBuilder
	presets     map[string]collage.Options
	store       CollageStore
	captions    CaptionSummarizer
	backgrounds BackgroundGenerator
	maxImages   int
	timeout     time.Duration
	now         func() time.Time
}

// NewCollageHandler creates a new CollageHandler.
func NewCollageHandler(builder CollageBuilder, presets map[string]collage.Options) *CollageHandler {
	if presets == nil {
		presets = collage.DefaultPresets()
	}
	return &CollageHandler{
		builder:   builder,
		presets:   presets,
		maxImages: defaultMaxImages,
		timeout:   60 * time.Second,
		now:       time.Now,
	}
}

// SetStore sets the S3 store for backgrounds and uploads.
func (h *CollageHandler) SetStore(store CollageStore) {
	h.store = store
}

// SetCaptionSummarizer sets the transcript summarizer used by Story.
func (h *CollageHandler) SetCaptionSummarizer(s CaptionSummarizer) {
	h.captions = s
}

// SetBackgroundGenerator sets the background generator used by Story.
func (h *CollageHandler) SetBackgroundGenerator(g BackgroundGenerator) {
	h.backgrounds = g
}

// SetTimeout sets the per-request deadline. On the story route it covers the
// caption, background and build steps together.
func (h *CollageHandler) SetTimeout(timeout time.Duration) {
	h.timeout = timeout
}

// SetMaxImages sets the maximum number of images per request.
func (h *CollageHandler) SetMaxImages(n int) {
	h.maxImages = n
}

// Generate builds a collage from uploaded images.
func (h *CollageHandler) Generate(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return response.ErrorWithCode(c, http.StatusBadRequest, CodeInvalidRequest, "multipart/form-dataで送信してください")
	}

	opts, err := h.resolveOptions(form, collage.PresetClassic)
	if err != nil {
		return response.ErrorWithCode(c, http.StatusBadRequest, CodeInvalidRequest, err.Error())
	}

	req, err := h.readRequest(form)
	if err != nil {
		return response.ErrorWithCode(c, http.StatusBadRequest, CodeInvalidRequest, err.Error())
	}
	req.Caption = formValue(form, "caption")

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	return h.build(ctx, c, opts, req, formValue(form, "store"))
}

// Story builds a collage captioned with a summary of the transcript, over a
// generated or stored background.
func (h *CollageHandler) Story(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return response.ErrorWithCode(c, http.StatusBadRequest, CodeInvalidRequest, "multipart/form-dataで送信してください")
	}

	transcript := strings.TrimSpace(formValue(form, "transcript"))
	if transcript == "" {
		return response.ErrorWithCode(c, http.StatusBadRequest, CodeInvalidRequest, "transcriptは必須です")
	}

	opts, err := h.resolveOptions(form, collage.PresetStory)
	if err != nil {
		return response.ErrorWithCode(c, http.StatusBadRequest, CodeInvalidRequest, err.Error())
	}

	req, err := h.readRequest(form)
	if err != nil {
		return response.ErrorWithCode(c, http.StatusBadRequest, CodeInvalidRequest, err.Error())
	}

	// The background and the layout share one seed so a story can be rebuilt.
	if req.Seed == 0 {
		req.Seed = h.now().UnixNano()
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), h.timeout)
	defer cancel()

	req.Caption = h.storyCaption(ctx, c, transcript, formValue(form, "caption"))
	if len(req.Background) == 0 {
		req.Background = h.storyBackground(ctx, c, transcript, req.Seed)
	}

	return h.build(ctx, c, opts, req, formValue(form, "store"))
}

// Backgrounds lists the stored background images.
func (h *CollageHandler) Backgrounds(c echo.Context) error {
	if h.store == nil {
		return response.ErrorWithCode(c, http.StatusServiceUnavailable, CodeStorageUnavailable, "ストレージが設定されていません")
	}

	keys, err := h.store.ListBackgrounds()
	if err != nil {
		c.Logger().Errorf("failed to list backgrounds: %v", err)
		return response.ErrorWithCode(c, http.StatusBadGateway, CodeStorageUnavailable, "背景画像の取得に失敗しました")
	}

	return response.Success(c, map[string]interface{}{
		"backgrounds": keys,
	})
}

// Presets lists the available preset names and their options.
func (h *CollageHandler) Presets(c echo.Context) error {
	return response.Success(c, map[string]interface{}{
		"presets": h.presets,
	})
}

// build runs the builder under ctx and writes the PNG or upload URL.
func (h *CollageHandler) build(ctx context.Context, c echo.Context, opts collage.Options, req collage.Request, store string) error {
	result, err := h.builder.Build(ctx, opts, req)
	if err != nil {
		return h.buildError(c, err)
	}

	c.Response().Header().Set(HeaderCollageSeed, strconv.FormatInt(result.Seed, 10))

	if upload, _ := strconv.ParseBool(store); upload && h.store != nil {
		url, err := h.store.UploadCollage(result.PNG)
		if err != nil {
			c.Logger().Errorf("failed to upload collage: %v", err)
			return response.ErrorWithCode(c, http.StatusBadGateway, CodeUploadFailed, "コラージュの保存に失敗しました")
		}
		return response.Success(c, map[string]interface{}{
			"url":  url,
			"seed": strconv.FormatInt(result.Seed, 10),
		})
	}

	return response.Attachment(c, codec.ContentTypePNG, "collage.png", result.PNG)
}

// buildError maps a build failure onto a status code and error code.
func (h *CollageHandler) buildError(c echo.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return response.ErrorWithCode(c, http.StatusGatewayTimeout, CodeBuildTimeout, "コラージュの生成がタイムアウトしました")
	}

	var be *collage.BuildError
	if !errors.As(err, &be) {
		c.Logger().Errorf("collage build failed: %v", err)
		return response.ErrorWithCode(c, http.StatusInternalServerError, CodeInternalError, "コラージュの生成に失敗しました")
	}

	switch be.Kind {
	case collage.KindInvalidRequest:
		return response.ErrorWithCode(c, http.StatusBadRequest, CodeInvalidRequest, be.Err.Error())
	case collage.KindInvalidItemSize:
		return response.ErrorWithCode(c, http.StatusUnprocessableEntity, CodeInvalidItemSize,
			fmt.Sprintf("%d枚目の画像がキャンバスより大きいです", be.Index+1))
	case collage.KindPlacementExhausted:
		return response.ErrorWithCode(c, http.StatusUnprocessableEntity, CodePlacementExhausted,
			fmt.Sprintf("%d枚目の画像を配置できませんでした", be.Index+1))
	case collage.KindDecodeFailure:
		if be.Index < 0 {
			return response.ErrorWithCode(c, http.StatusBadRequest, CodeDecodeFailure, "背景画像を読み込めませんでした")
		}
		return response.ErrorWithCode(c, http.StatusBadRequest, CodeDecodeFailure,
			fmt.Sprintf("%d枚目の画像を読み込めませんでした", be.Index+1))
	default:
		c.Logger().Errorf("collage build failed: %v", err)
		return response.ErrorWithCode(c, http.StatusInternalServerError, CodeEncodeFailure, "コラージュの書き出しに失敗しました")
	}
}

// storyCaption summarizes the transcript, falling back to the caption field.
func (h *CollageHandler) storyCaption(ctx context.Context, c echo.Context, transcript, fallback string) string {
	if h.captions == nil {
		return fallback
	}
	caption, err := h.captions.Summarize(ctx, transcript)
	if err != nil {
		c.Logger().Warnf("failed to summarize transcript: %v", err)
		return fallback
	}
	return caption
}

// storyBackground tries the generator, then a stored background. A nil result
// means the solid preset fill is used.
func (h *CollageHandler) storyBackground(ctx context.Context, c echo.Context, transcript string, seed int64) []byte {
	if h.backgrounds != nil {
		data, err := h.backgrounds.Generate(ctx, transcript, seed)
		if err == nil {
			return data
		}
		c.Logger().Warnf("failed to generate background: %v", err)
	}

	if h.store != nil {
		data, err := h.store.GetRandomBackground()
		if err == nil {
			return data
		}
		c.Logger().Warnf("failed to get stored background: %v", err)
	}

	return nil
}

// resolveOptions starts from the named preset and applies form overrides.
func (h *CollageHandler) resolveOptions(form *multipart.Form, defaultPreset string) (collage.Options, error) {
	name := formValue(form, "preset")
	if name == "" {
		name = defaultPreset
	}

	opts, ok := h.presets[name]
	if !ok {
		return collage.Options{}, fmt.Errorf("unknown preset %q", name)
	}

	var err error
	if opts.Scale.Min, err = formFloat(form, "scale_min", opts.Scale.Min); err != nil {
		return opts, err
	}
	if opts.Scale.Max, err = formFloat(form, "scale_max", opts.Scale.Max); err != nil {
		return opts, err
	}
	if opts.MaxRotation, err = formFloat(form, "max_rotation", opts.MaxRotation); err != nil {
		return opts, err
	}
	if opts.Rotate, err = formBool(form, "rotate", opts.Rotate); err != nil {
		return opts, err
	}
	if opts.Frame, err = formBool(form, "frame", opts.Frame); err != nil {
		return opts, err
	}
	if opts.Labels, err = formBool(form, "labels", opts.Labels); err != nil {
		return opts, err
	}
	if v := formValue(form, "max_attempts"); v != "" {
		if opts.MaxAttempts, err = strconv.Atoi(v); err != nil {
			return opts, fmt.Errorf("invalid max_attempts %q", v)
		}
	}
	if v := formValue(form, "background_color"); v != "" {
		opts.Background = v
	}

	if err := opts.Validate(); err != nil {
		return opts, err
	}
	return opts, nil
}

// readRequest reads the uploaded images, optional background and seed.
func (h *CollageHandler) readRequest(form *multipart.Form) (collage.Request, error) {
	var req collage.Request

	files := form.File["images"]
	if len(files) == 0 {
		return req, errors.New("imagesは必須です")
	}
	if h.maxImages > 0 && len(files) > h.maxImages {
		return req, fmt.Errorf("画像は%d枚までです", h.maxImages)
	}

	req.Images = make([][]byte, len(files))
	for i, fh := range files {
		data, err := readFile(fh)
		if err != nil {
			return req, err
		}
		req.Images[i] = data
	}

	if bg := form.File["background"]; len(bg) > 0 {
		data, err := readFile(bg[0])
		if err != nil {
			return req, err
		}
		req.Background = data
	}

	if v := formValue(form, "seed"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return req, fmt.Errorf("invalid seed %q", v)
		}
		req.Seed = seed
	}

	return req, nil
}

func readFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", fh.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", fh.Filename, err)
	}
	return data, nil
}

func formValue(form *multipart.Form, key string) string {
	if v := form.Value[key]; len(v) > 0 {
		return strings.TrimSpace(v[0])
	}
	return ""
}

func formFloat(form *multipart.Form, key string, def float64) (float64, error) {
	v := formValue(form, key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return def, fmt.Errorf("invalid %s %q", key, v)
	}
	return f, nil
}

func formBool(form *multipart.Form, key string, def bool) (bool, error) {
	v := formValue(form, key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def, fmt.Errorf("invalid %s %q", key, v)
	}
	return b, nil
}
