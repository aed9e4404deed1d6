// Package bikes exposes the control plane HTTP surface. The handlers are a
// thin layer: validation and dispatch semantics live in core/fleet.
package bikes

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mkervran/bikefleet/core/fleet"
	"github.com/mkervran/bikefleet/core/logger"
	"github.com/mkervran/bikefleet/core/model"
	"github.com/mkervran/bikefleet/core/track"
)

// Service is the command service surface the handlers depend on.
type Service interface {
	SendCommand(ctx context.Context, bikeID string, cmd model.Command) (fleet.DispatchResult, error)
	SendNavigation(ctx context.Context, bikeID string, nav model.Navigation) (fleet.DispatchResult, error)
	TestConnection(ctx context.Context, bikeID string) track.Result
	HandleAck(ctx context.Context, bikeID string) (fleet.AckOutcome, error)
}

// Handler routes the bike control endpoints.
type Handler struct {
	svc         Service
	defaultBike string
	log         logger.Logger
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)         {}
func (nopLogger) Debugw(string, map[string]any) {}
func (nopLogger) Infof(string, ...any)          {}
func (nopLogger) Warnf(string, ...any)          {}
func (nopLogger) Errorf(string, ...any)         {}

// New builds the HTTP handler for the bike API. defaultBike is the target
// for command bodies that carry no bike_id.
func New(svc Service, defaultBike string, log logger.Logger) http.Handler {
	if log == nil {
		log = nopLogger{}
	}
	h := &Handler{svc: svc, defaultBike: defaultBike, log: log}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /test-bike-connection/{id}", h.testConnection)
	mux.HandleFunc("POST /bike-response", h.bikeResponse)
	mux.HandleFunc("POST /send-command", h.sendCommand)
	mux.HandleFunc("POST /send-navigation", h.sendNavigation)
	mux.HandleFunc("GET /healthz", h.healthz)
	return allowCORS(mux)
}

type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type sentResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Receivers int64  `json:"receivers"`
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (h *Handler) testConnection(w http.ResponseWriter, r *http.Request) {
	bikeID := r.PathValue("id")
	if bikeID == "" {
		writeJSON(w, http.StatusBadRequest, statusResponse{Status: "error", Message: "missing bike id"})
		return
	}
	res := h.svc.TestConnection(r.Context(), bikeID)
	// both outcomes are terminal probe results, not transport errors
	writeJSON(w, http.StatusOK, res)
}

func (h *Handler) bikeResponse(w http.ResponseWriter, r *http.Request) {
	bikeID := r.URL.Query().Get("bike_id")
	if bikeID == "" {
		writeJSON(w, http.StatusBadRequest, statusResponse{Status: "error", Message: "missing bike_id"})
		return
	}
	outcome, err := h.svc.HandleAck(r.Context(), bikeID)
	if err != nil {
		h.log.Errorf("handle ack for %s: %v", bikeID, err)
		writeJSON(w, http.StatusInternalServerError, statusResponse{Status: "error", Message: "failed to record acknowledgment"})
		return
	}
	if outcome == fleet.AckUnexpected {
		writeJSON(w, http.StatusOK, statusResponse{Status: "error", Message: "unexpected response from bike " + bikeID})
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "success", Message: "bike " + bikeID + " acknowledged connection"})
}

type commandRequest struct {
	BikeID string       `json:"bike_id"`
	Action model.Action `json:"action"`
	Speed  *int         `json:"speed,omitempty"`
	Angle  *int         `json:"angle,omitempty"`
}

func (h *Handler) sendCommand(w http.ResponseWriter, r *http.Request) {
	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, statusResponse{Status: "error", Message: "invalid JSON body"})
		return
	}
	bikeID := req.BikeID
	if bikeID == "" {
		bikeID = h.defaultBike
	}
	res, err := h.svc.SendCommand(r.Context(), bikeID, model.Command{Action: req.Action, Speed: req.Speed, Angle: req.Angle})
	if err != nil {
		h.writeDispatchError(w, bikeID, err)
		return
	}
	writeJSON(w, http.StatusOK, sentResponse{
		Status:    "sent",
		Message:   "command '" + string(req.Action) + "' sent to bike " + bikeID,
		Receivers: res.Receivers,
	})
}

type navigationRequest struct {
	BikeID      string             `json:"bike_id"`
	Start       *model.Coordinates `json:"start"`
	Destination *model.Coordinates `json:"destination"`
}

func (h *Handler) sendNavigation(w http.ResponseWriter, r *http.Request) {
	var req navigationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, statusResponse{Status: "error", Message: "invalid JSON body"})
		return
	}
	bikeID := req.BikeID
	if bikeID == "" {
		bikeID = h.defaultBike
	}
	res, err := h.svc.SendNavigation(r.Context(), bikeID, model.Navigation{Start: req.Start, Destination: req.Destination})
	if err != nil {
		h.writeDispatchError(w, bikeID, err)
		return
	}
	writeJSON(w, http.StatusOK, sentResponse{
		Status:    "sent",
		Message:   "navigation sent to bike " + bikeID,
		Receivers: res.Receivers,
	})
}

// writeDispatchError maps service errors onto the HTTP contract: validation
// failures are client errors, missing receivers are server errors.
func (h *Handler) writeDispatchError(w http.ResponseWriter, bikeID string, err error) {
	switch {
	case errors.Is(err, model.ErrInvalidAction),
		errors.Is(err, model.ErrInvalidSpeed),
		errors.Is(err, model.ErrMissingCoordinates):
		writeJSON(w, http.StatusBadRequest, statusResponse{Status: "error", Message: err.Error()})
	case errors.Is(err, fleet.ErrNoReceivers):
		writeJSON(w, http.StatusInternalServerError, statusResponse{Status: "error", Message: "no receivers for bike " + bikeID})
	default:
		h.log.Errorf("dispatch for %s: %v", bikeID, err)
		writeJSON(w, http.StatusInternalServerError, statusResponse{Status: "error", Message: "failed to publish command"})
	}
}

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{Status: "ok"})
}

// allowCORS answers preflight requests and opens the API to browser clients.
func allowCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
