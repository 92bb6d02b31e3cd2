package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/oggyb/wa-dispatch/internal/monitor"
	"github.com/oggyb/wa-dispatch/internal/request"
	"github.com/oggyb/wa-dispatch/internal/response"
)

// SessionState reports on the managed session.
type SessionState interface {
	SessionID() string
	Ready() bool
}

// SessionLookup returns the last recorded status and login code.
type SessionLookup interface {
	Lookup(ctx context.Context, sessionID string) (status, loginCode string, err error)
}

// SessionHandler exposes the session state and the background monitor.
type SessionHandler struct {
	state   SessionState
	lookup  SessionLookup
	monitor monitor.Service
}

func NewSessionHandler(state SessionState, lookup SessionLookup, mon monitor.Service) *SessionHandler {
	return &SessionHandler{
		state:   state,
		lookup:  lookup,
		monitor: mon,
	}
}

// Status godoc
// @Summary     Session status
// @Description Returns whether the WhatsApp session is ready, its last status and the pending login code, if any.
// @Tags        session
// @Produce     json
// @Success     200 {object} response.SessionResponse
// @Failure     500 {object} response.ErrorResponse
// @Router      /session [get]
func (h *SessionHandler) Status(w http.ResponseWriter, r *http.Request) {
	id := h.state.SessionID()

	status, code, err := h.lookup.Lookup(r.Context(), id)
	if err != nil {
		response.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	payload := response.SessionPayload{
		Session:        id,
		Ready:          h.state.Ready(),
		Status:         status,
		LoginCode:      code,
		MonitorRunning: h.monitor.IsRunning(),
	}
	response.RespondJSON(w, http.StatusOK, payload)
}

// ControlMonitor godoc
// @Summary     Control session monitor
// @Description Starts or stops the background session monitor based on the given action.
// @Tags        session
// @Accept      json
// @Produce     json
// @Param       request body request.MonitorRequest true "Monitor action (start|stop)"
// @Success     200 {object} response.MonitorControlResponse
// @Failure     400 {object} response.ErrorResponse
// @Router      /session/monitor [post]
func (h *SessionHandler) ControlMonitor(w http.ResponseWriter, r *http.Request) {
	var req request.MonitorRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.RespondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	switch req.Action {
	case "start":
		if err := h.monitor.Start(); err != nil {
			response.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		response.RespondJSON(w, http.StatusOK, response.MonitorControlPayload{Message: "monitor started"})

	case "stop":
		if err := h.monitor.Stop(); err != nil {
			response.RespondError(w, http.StatusBadRequest, err.Error())
			return
		}
		response.RespondJSON(w, http.StatusOK, response.MonitorControlPayload{Message: "monitor stopped"})

	default:
		response.RespondError(w, http.StatusBadRequest, "action must be 'start' or 'stop'")
	}
}
