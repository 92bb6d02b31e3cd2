package handler

import (
	"fmt"
	"net/http"

	"github.com/oggyb/wa-dispatch/internal/response"
	"github.com/oggyb/wa-dispatch/internal/web"
	"go.uber.org/zap"
)

// HomeHandler serves the submission form and the health endpoint.
type HomeHandler struct {
	title     string
	maxUpload int64
	logger    *zap.Logger
}

// NewHomeHandler returns a new HomeHandler.
func NewHomeHandler(title string, maxUpload int64, logger *zap.Logger) *HomeHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HomeHandler{title: title, maxUpload: maxUpload, logger: logger}
}

// Index godoc
// @Summary     Submission form
// @Description Renders the HTML form that posts to /send.
// @Tags        home
// @Produce     html
// @Success     200 {string} string "HTML form"
// @Router      / [get]
func (h *HomeHandler) Index(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	data := web.IndexData{
		Title:     h.title,
		MaxUpload: fmt.Sprintf("%d MiB", h.maxUpload>>20),
	}
	if err := web.RenderIndex(w, data); err != nil {
		h.logger.Error("render index", zap.Error(err))
	}
}

// Health godoc
// @Summary     Health check
// @Description Returns a basic status payload to indicate the API is running.
// @Tags        home
// @Produce     json
// @Success     200 {object} response.HealthResponse
// @Router      /health [get]
func (h *HomeHandler) Health(w http.ResponseWriter, r *http.Request) {
	payload := response.HealthPayload{
		Status: "ok",
	}

	response.RespondJSON(w, http.StatusOK, payload)
}
