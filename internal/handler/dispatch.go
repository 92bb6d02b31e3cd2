package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	domain "github.com/oggyb/wa-dispatch/internal/domain/dispatch"
	"github.com/oggyb/wa-dispatch/internal/metrics"
	"github.com/oggyb/wa-dispatch/internal/response"
	"github.com/oggyb/wa-dispatch/internal/service"
	"github.com/oggyb/wa-dispatch/internal/session"
	"github.com/oggyb/wa-dispatch/internal/upload"
	"go.uber.org/zap"
)

// multipartMemory is how much of a multipart body is kept in memory;
// the rest spills to temporary files.
const multipartMemory = 8 << 20

// Uploader stores an uploaded file.
type Uploader interface {
	Save(originalName string, r io.Reader) (upload.Stored, error)
}

// DispatchHandler wires the form submission endpoint to the dispatch service.
type DispatchHandler struct {
	svc      service.DispatchService
	uploads  Uploader
	maxBytes int64
	logger   *zap.Logger
}

// NewDispatchHandler constructs a new DispatchHandler with its dependencies.
func NewDispatchHandler(svc service.DispatchService, uploads Uploader, maxBytes int64, logger *zap.Logger) *DispatchHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DispatchHandler{
		svc:      svc,
		uploads:  uploads,
		maxBytes: maxBytes,
		logger:   logger.Named("http"),
	}
}

// Send godoc
// @Summary     Send a WhatsApp message
// @Description Sends the text and then the optional image to the number, and records the outcome.
// @Tags        dispatch
// @Accept      multipart/form-data
// @Accept      x-www-form-urlencoded
// @Produce     json
// @Param       number  formData string true  "Destination phone number"
// @Param       message formData string true  "Message text"
// @Param       image   formData file   false "Optional image"
// @Success     200 {object} response.SendResponse
// @Failure     400 {object} response.ErrorResponse
// @Failure     500 {object} response.ErrorResponse
// @Router      /send [post]
func (h *DispatchHandler) Send(w http.ResponseWriter, r *http.Request) {
	if h.maxBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	}

	if err := parseForm(r); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid form body")
		return
	}

	req, err := domain.NewRequest(r.FormValue("number"), r.FormValue("message"))
	if err != nil {
		response.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	file, header, err := r.FormFile("image")
	switch {
	case err == nil:
		defer file.Close()

		stored, err := h.uploads.Save(header.Filename, file)
		if err != nil {
			metrics.DispatchFailures.WithLabelValues("upload").Inc()
			h.logger.Error("upload failed", zap.String("filename", header.Filename), zap.Error(err))
			response.RespondStageError(w, http.StatusInternalServerError, err.Error(), "upload", nil)
			return
		}
		req = req.WithImage(stored.URL, stored.Path)

	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		// no image

	default:
		response.RespondError(w, http.StatusBadRequest, "invalid image field")
		return
	}

	rep, err := h.svc.Send(r.Context(), req)
	if err != nil {
		response.RespondStageError(w, http.StatusInternalServerError, err.Error(), stageOf(err), rep.Logs)
		return
	}

	response.RespondLogs(w, http.StatusOK, rep.Logs, response.FromDomainOutcome(rep.Outcome))
}

// List godoc
// @Summary     List dispatches
// @Description Returns a paginated list of recorded dispatch outcomes, newest first.
// @Tags        dispatch
// @Produce     json
// @Param       page  query int false "Page number"         default(1)
// @Param       limit query int false "Page size (max 100)" default(20)
// @Success     200 {object} response.DispatchesResponse
// @Failure     500 {object} response.ErrorResponse
// @Router      /dispatches [get]
func (h *DispatchHandler) List(w http.ResponseWriter, r *http.Request) {
	page := 1
	limit := 20

	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 && v <= 100 {
		limit = v
	}

	items, total, err := h.svc.List(r.Context(), page, limit)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	payload := response.DispatchesPayload{
		Items: response.FromDomainOutcomes(items),
		Total: total,
		Page:  page,
		Limit: limit,
	}

	response.RespondJSON(w, http.StatusOK, payload)
}

// parseForm accepts both multipart and url-encoded submissions.
func parseForm(r *http.Request) error {
	err := r.ParseMultipartForm(multipartMemory)
	if errors.Is(err, http.ErrNotMultipart) {
		return r.ParseForm()
	}
	return err
}

// stageOf names the pipeline stage an error came from.
func stageOf(err error) string {
	var (
		initErr    *session.InitializationError
		dispErr    *service.DispatchError
		persistErr *service.PersistenceError
		upErr      *upload.Error
	)

	switch {
	case errors.As(err, &upErr):
		return "upload"
	case errors.As(err, &initErr):
		return "session"
	case errors.As(err, &dispErr):
		return "dispatch"
	case errors.As(err, &persistErr):
		return "persist"
	case errors.Is(err, service.ErrTextNotDelivered):
		return "delivery"
	default:
		return "internal"
	}
}
