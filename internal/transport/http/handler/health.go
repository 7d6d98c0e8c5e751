package handler

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	"legalai-assistant/internal/bootstrap"
)

type HealthHandler struct {
	app *bootstrap.App
}

type dependencyStatus struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

func NewHealthHandler(app *bootstrap.App) *HealthHandler {
	return &HealthHandler{app: app}
}

func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	ollamaStatus := h.checkOllama(ctx)
	redisStatus := h.checkRedis(ctx)
	uploadStatus := h.checkUploadDir()

	// Redis is optional; only the backend and storage gate readiness.
	statusCode := http.StatusOK
	if !ollamaStatus.OK || !uploadStatus.OK {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, gin.H{
		"app":        h.app.Config.App.Name,
		"env":        h.app.Config.App.Env,
		"uptime_sec": int(time.Since(h.app.StartedAt).Seconds()),
		"sessions":   h.app.Sessions.Count(),
		"documents":  h.app.Documents.Count(),
		"dependencies": gin.H{
			"ollama":     ollamaStatus,
			"redis":      redisStatus,
			"upload_dir": uploadStatus,
			"ocr":        dependencyStatus{OK: h.app.Extractor.OCRAvailable()},
		},
	})
}

func (h *HealthHandler) checkOllama(ctx context.Context) dependencyStatus {
	if err := h.app.LLMClient.CheckModel(ctx, h.app.GenerateConfig()); err != nil {
		return dependencyStatus{OK: false, Message: err.Error()}
	}
	return dependencyStatus{OK: true}
}

func (h *HealthHandler) checkRedis(ctx context.Context) dependencyStatus {
	if h.app.Redis == nil {
		return dependencyStatus{OK: false, Message: "not configured"}
	}
	if err := h.app.Redis.Ping(ctx).Err(); err != nil {
		return dependencyStatus{OK: false, Message: err.Error()}
	}
	return dependencyStatus{OK: true}
}

func (h *HealthHandler) checkUploadDir() dependencyStatus {
	probe := filepath.Join(h.app.Config.Upload.Dir, ".healthcheck")
	if err := os.WriteFile(probe, []byte("ok"), 0o644); err != nil {
		return dependencyStatus{OK: false, Message: err.Error()}
	}
	_ = os.Remove(probe)
	return dependencyStatus{OK: true}
}
