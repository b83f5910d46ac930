package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"agrolens/internal/config"
	apperrors "agrolens/internal/errors"
	"agrolens/internal/logger"
	"agrolens/internal/service"
	"agrolens/pkg/models"
)

// NewHandler configures the HTTP surface: the detection pipeline, the chat
// passthrough and the operational endpoints.
func NewHandler(svc service.DetectionService, cfg *config.Config) http.Handler {
	r := gin.Default()

	// Add middleware
	r.Use(
		requestSizeLimiter(cfg.MaxRequestBodySize),
		errorHandler(),
	)

	// Configure routes
	r.GET("/", root)
	r.GET("/health", healthCheck)
	r.POST("/detect_disease", detectDisease(svc, cfg))
	r.POST("/chat", chat(svc, cfg))

	return r
}

func root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Welcome to the Plant Disease Detection API!",
		"usage":   "POST a plant leaf image to /detect_disease to identify the disease and get treatment suggestions.",
	})
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "available",
		"version": "1.0.0",
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

func detectDisease(svc service.DetectionService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		startTime := time.Now()
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		language := c.DefaultQuery("language", "English")

		logger.WithFields(logrus.Fields{
			"method":   c.Request.Method,
			"path":     c.Request.URL.Path,
			"language": language,
			"ip":       c.ClientIP(),
		}).Info("Processing disease detection request")

		upload, err := formImageFile(c)
		if err != nil {
			respondError(c, http.StatusBadRequest, "no image file provided", err)
			return
		}

		imageBytes, err := readUpload(upload)
		if err != nil {
			respondError(c, http.StatusBadRequest, "failed to read upload", err)
			return
		}

		result, err := svc.DetectDisease(ctx, imageBytes, language)
		if err != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"filename": upload.Filename,
				"ip":       c.ClientIP(),
			}).Error("Disease detection failed")
			respondError(c, apperrors.GetStatusCode(err), "detection failed", err)
			return
		}

		logger.WithFields(logrus.Fields{
			"filename":           upload.Filename,
			"predicted_disease":  result.DiseaseInfo.PredictedDisease,
			"confidence":         result.DiseaseInfo.ConfidenceScore,
			"processing_time_ms": time.Since(startTime).Milliseconds(),
		}).Info("Disease detection completed successfully")

		c.JSON(http.StatusOK, result)
	}
}

func chat(svc service.DetectionService, cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.RequestTimeout)
		defer cancel()

		var req models.ChatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondError(c, http.StatusBadRequest, "invalid request format", err)
			return
		}

		reply, err := svc.Chat(ctx, req.Message, req.History)
		if err != nil {
			logger.WithError(err).WithFields(logrus.Fields{
				"ip": c.ClientIP(),
			}).Error("Chat completion failed")
			respondError(c, apperrors.GetStatusCode(err), "chat failed", err)
			return
		}

		c.JSON(http.StatusOK, models.ChatResponse{Response: reply})
	}
}

// formImageFile pulls the uploaded image from the multipart form. The field
// is named "file"; "image" is accepted as a fallback.
func formImageFile(c *gin.Context) (*multipart.FileHeader, error) {
	upload, err := c.FormFile("file")
	if err == nil {
		return upload, nil
	}
	upload, err = c.FormFile("image")
	if err != nil {
		return nil, fmt.Errorf("use 'file' as the form field name: %w", err)
	}
	return upload, nil
}

func readUpload(header *multipart.FileHeader) ([]byte, error) {
	file, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}

// Middleware and helper functions
func requestSizeLimiter(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

func errorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			err := c.Errors.Last()
			respondError(c, determineStatusCode(err), "request processing failed", err)
		}
	}
}

func determineStatusCode(err error) int {
	// Check if it's a custom app error first
	if appErr, ok := err.(*apperrors.AppError); ok {
		return appErr.StatusCode
	}

	// Fallback to context-based errors
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, code int, message string, err error) {
	// Log the error with context
	logger.WithError(err).WithFields(logrus.Fields{
		"status_code": code,
		"message":     message,
		"path":        c.Request.URL.Path,
		"method":      c.Request.Method,
		"ip":          c.ClientIP(),
	}).Error("Request failed")

	c.AbortWithStatusJSON(code, models.ErrorResponse{
		Error:   http.StatusText(code),
		Message: fmt.Sprintf("%s: %v", message, err),
	})
}
