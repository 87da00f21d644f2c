package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/kyiku/hackz-collage-back/internal/ai"
	"github.com/kyiku/hackz-collage-back/internal/codec"
	"github.com/kyiku/hackz-collage-back/internal/collage"
	"github.com/kyiku/hackz-collage-back/internal/config"
	"github.com/kyiku/hackz-collage-back/internal/handler"
	collagemw "github.com/kyiku/hackz-collage-back/internal/middleware"
	"github.com/kyiku/hackz-collage-back/internal/render"
	"github.com/kyiku/hackz-collage-back/internal/storage"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// S3Adapter adapts AWS S3 client to our interface
type S3Adapter struct {
	client *s3.Client
	bucket string
}

func (a *S3Adapter) GetObject(key string) ([]byte, error) {
	output, err := a.client.GetObject(context.TODO(), &s3.GetObjectInput{
		Bucket: &a.bucket,
		Key:    &key,
	})
	if err != nil {
		return nil, err
	}
	defer output.Body.Close()
	return io.ReadAll(output.Body)
}

func (a *S3Adapter) PutObject(key string, data []byte) error {
	_, err := a.client.PutObject(context.TODO(), &s3.PutObjectInput{
		Bucket:      &a.bucket,
		Key:         &key,
		Body:        bytes.NewReader(data),
		ContentType: aws.String(codec.ContentTypePNG),
	})
	return err
}

func (a *S3Adapter) ListObjects(prefix string) ([]string, error) {
	var keys []string

	paginator := s3.NewListObjectsV2Paginator(a.client, &s3.ListObjectsV2Input{
		Bucket: &a.bucket,
		Prefix: &prefix,
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(context.TODO())
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
	}
	return keys, nil
}

// BedrockAdapter adapts AWS Bedrock client to our interface
type BedrockAdapter struct {
	client *bedrockruntime.Client
}

func (a *BedrockAdapter) InvokeModel(ctx context.Context, modelID string, body []byte) ([]byte, error) {
	output, err := a.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     &modelID,
		Body:        body,
		ContentType: aws.String("application/json"),
		Accept:      aws.String("application/json"),
	})
	if err != nil {
		return nil, err
	}

	return output.Body, nil
}

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	presets, err := collage.LoadPresets(cfg.PresetsPath)
	if err != nil {
		log.Fatalf("Failed to load presets: %v", err)
	}

	fonts, err := render.NewFontManager(cfg.FontPath)
	if err != nil {
		log.Fatalf("Failed to load font: %v", err)
	}

	e := echo.New()

	// Middleware
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			e.Logger.Infof("%s %s %d %s", v.Method, v.URI, v.Status, v.Latency)
			return nil
		},
	}))
	e.Use(middleware.Recover())
	e.Use(collagemw.CORSMiddleware(cfg.AllowedOrigins()...))
	e.Use(middleware.BodyLimit(fmt.Sprintf("%dM", cfg.MaxUploadMB)))

	// Load AWS config
	awsCfg, err := awsconfig.LoadDefaultConfig(context.TODO(), awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		log.Printf("Warning: Failed to load AWS config: %v (some features may not work)", err)
	}

	collageHandler := handler.NewCollageHandler(collage.NewBuilder(fonts), presets)
	collageHandler.SetTimeout(cfg.BuildTimeout)

	// S3 client
	if err == nil && cfg.StorageEnabled() {
		s3Adapter := &S3Adapter{
			client: s3.NewFromConfig(awsCfg),
			bucket: cfg.S3Bucket,
		}
		collageHandler.SetStore(storage.NewS3Client(s3Adapter, cfg.S3Bucket, cfg.CloudfrontDomain, cfg.BackgroundTTL))
	} else {
		log.Println("Warning: S3 is not configured; backgrounds and uploads are disabled")
	}

	// Bedrock client
	if err == nil {
		bedrockAdapter := &BedrockAdapter{
			client: bedrockruntime.NewFromConfig(awsCfg),
		}

		captions := ai.NewCaptionGenerator(bedrockAdapter, cfg.CaptionModelID)
		captions.EnableFallback(true) // Use the transcript itself if Bedrock fails
		collageHandler.SetCaptionSummarizer(captions)

		if cfg.UseAIBackground {
			collageHandler.SetBackgroundGenerator(ai.NewBackgroundGenerator(bedrockAdapter, cfg.BackgroundModelID))
		}
	}

	healthHandler := handler.NewHealthHandler()

	// Health check (root level for ALB)
	e.GET("/health", healthHandler.Check)

	// API routes
	api := e.Group("/api")

	// Health check
	api.GET("/health", healthHandler.Check)

	// Collage endpoints
	limited := collagemw.RateLimitMiddleware(cfg.RateLimit, cfg.RateBurst)
	api.POST("/collage", collageHandler.Generate, limited)
	api.POST("/collage/story", collageHandler.Story, limited)
	api.GET("/presets", collageHandler.Presets)

	if cfg.StorageEnabled() {
		api.GET("/backgrounds", collageHandler.Backgrounds)
	} else {
		api.GET("/backgrounds", unavailableHandler("S3"))
	}

	// Log registered endpoints
	log.Println("Registered endpoints:")
	log.Println("  GET  /health")
	log.Println("  GET  /api/health")
	log.Println("  POST /api/collage")
	log.Println("  POST /api/collage/story")
	log.Println("  GET  /api/presets")
	log.Println("  GET  /api/backgrounds")

	// Start server
	log.Printf("Starting server on :%s", cfg.Port)
	e.Logger.Fatal(e.Start(":" + cfg.Port))
}

// unavailableHandler returns a handler that responds with service unavailable
func unavailableHandler(service string) echo.HandlerFunc {
	return func(c echo.Context) error {
		return c.JSON(http.StatusServiceUnavailable, map[string]interface{}{
			"error":   true,
			"code":    handler.CodeStorageUnavailable,
			"message": service + " is not configured",
		})
	}
}
