package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/minitodo/apiserver/internal/services"
	"go.uber.org/zap"
)

const bannerMessage = "Welcome to my mini todo app. We are here to help you keep events"

// Response is the envelope of every reply.
type Response struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

func writeOK(w http.ResponseWriter, message string, data any) {
	writeJSON(w, http.StatusOK, Response{Status: true, Message: message, Data: data})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, Response{Status: false, Message: message})
}

// callerErrors lists the service errors a caller can act on, with the status
// each maps to. Anything else is reported as an internal error.
var callerErrors = []struct {
	err    error
	status int
}{
	{services.ErrUserNotFound, http.StatusNotFound},
	{services.ErrEventNotFound, http.StatusNotFound},
	{services.ErrUserAlreadyExists, http.StatusBadRequest},
	{services.ErrAccountNotActive, http.StatusBadRequest},
	{services.ErrInvalidOtp, http.StatusBadRequest},
	{services.ErrOtpExpired, http.StatusBadRequest},
	{services.ErrInvalidCredential, http.StatusBadRequest},
	{services.ErrHashFailure, http.StatusBadRequest},
	{services.ErrDuplicateEvent, http.StatusBadRequest},
}

// writeServiceError maps err to a status and writes the sentinel's message.
// overrides replace the message for specific sentinels.
func writeServiceError(w http.ResponseWriter, logger *zap.Logger, err error, overrides map[error]string) {
	for _, known := range callerErrors {
		if !errors.Is(err, known.err) {
			continue
		}
		message := known.err.Error()
		if override, ok := overrides[known.err]; ok {
			message = override
		}
		if errors.Is(err, services.ErrHashFailure) {
			logger.Error("password hashing failed", zap.Error(err))
		}
		writeError(w, known.status, message)
		return
	}
	logger.Error("request failed", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "Something went wrong")
}

// pathParam returns the decoded value of a route parameter. chi matches on
// RawPath when the client escaped the path, and on the already decoded Path
// otherwise.
func pathParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if r.URL.RawPath == "" {
		return raw
	}
	if value, err := url.PathUnescape(raw); err == nil {
		return value
	}
	return raw
}

// Banner answers the root path.
func Banner(w http.ResponseWriter, r *http.Request) {
	writeOK(w, bannerMessage, nil)
}

// Healthz reports liveness.
func Healthz(w http.ResponseWriter, r *http.Request) {
	writeOK(w, "ok", nil)
}
