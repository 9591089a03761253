package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/minitodo/apiserver/internal/services"
	"go.uber.org/zap"
)

const (
	msgEventCreated = "Event created successfully"
	msgEventUpdated = "Event updated successfully"
)

// EventHandler serves todo events.
type EventHandler struct {
	events *services.EventService
	logger *zap.Logger
}

func NewEventHandler(events *services.EventService, logger *zap.Logger) *EventHandler {
	return &EventHandler{events: events, logger: logger}
}

// EventRouter registers event routes on the given router.
func EventRouter(r chi.Router, events *services.EventService, logger *zap.Logger) {
	handler := NewEventHandler(events, logger)

	r.Post("/create/todo", handler.CreateEvent)
	r.Put("/todo/update/{todoId}", handler.UpdateEvent)
}

func (h *EventHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	result := decodeAndValidate[TodoRequest](r)
	if !result.OK() {
		writeError(w, http.StatusBadRequest, result.First())
		return
	}

	event, err := h.events.Create(r.Context(), eventInput(result.Value))
	if err != nil {
		writeServiceError(w, h.logger, err, nil)
		return
	}
	writeOK(w, msgEventCreated, event)
}

func (h *EventHandler) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	result := decodeAndValidate[TodoRequest](r)
	if !result.OK() {
		writeError(w, http.StatusBadRequest, result.First())
		return
	}

	events, err := h.events.Update(r.Context(), pathParam(r, "todoId"), eventInput(result.Value))
	if err != nil {
		writeServiceError(w, h.logger, err, nil)
		return
	}
	writeOK(w, msgEventUpdated, events)
}

func eventInput(req TodoRequest) services.EventInput {
	return services.EventInput{
		Email:       req.Email,
		Title:       req.Title,
		Description: req.Description,
		Date:        req.Date,
		Time:        req.Time,
	}
}
