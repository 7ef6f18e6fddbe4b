package controllers

import (
	"log/slog"
	"net/http"
	"time"

	"boothsale/internal/delivery/http/helpers"
	"boothsale/internal/domain"
)

// CreateEventRequest is the request body for POST /events.
type CreateEventRequest struct {
	Name           string     `json:"name"`
	Date           *time.Time `json:"date"`
	Location       *string    `json:"location"`
	VendorPassword *string    `json:"vendor_password"`
}

// Validate implements Validator.
func (c CreateEventRequest) Validate() []string {
	var errs []string
	if c.Name == "" {
		errs = append(errs, "name is required")
	}
	return errs
}

// UpdateEventRequest is the request body for PUT /events/{eventID}. All fields
// optional; omitted fields are unchanged. An empty vendor_password clears the
// event-specific vendor login.
type UpdateEventRequest struct {
	Name           *string    `json:"name"`
	Date           *time.Time `json:"date"`
	Location       *string    `json:"location"`
	VendorPassword *string    `json:"vendor_password"`
}

// TransitionRequest is the request body for PUT /events/{eventID}/status.
type TransitionRequest struct {
	Status string `json:"status"`
}

// Validate implements Validator.
func (t TransitionRequest) Validate() []string {
	var errs []string
	if t.Status == "" {
		errs = append(errs, "status is required")
	}
	return errs
}

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
	}
}

func (c *EventController) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if helpers.IsInternal(err) {
		c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
	}
	helpers.WriteDomainError(w, err)
}

// CreateEvent godoc
// @Summary Create a new event
// @Description Creates a sales event in planning status. An optional vendor password scopes vendor logins to this event.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param event body CreateEventRequest true "Event data"
// @Success 201 {object} helpers.APIResponse "data contains the created event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	now := time.Now()
	event := domain.NewEvent(req.Name, req.Date, req.Location, now, now)
	if err := c.Service.CreateEvent(r.Context(), event); err != nil {
		c.writeError(w, r, err)
		return
	}
	if req.VendorPassword != nil && *req.VendorPassword != "" {
		updated, err := c.Service.UpdateEvent(r.Context(), event.ID, nil, nil, nil, req.VendorPassword)
		if err != nil {
			c.writeError(w, r, err)
			return
		}
		event = updated
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, event)
}

// ListEvents godoc
// @Summary List events
// @Description Lists events, optionally filtered by status (planning, active, closed).
// @Tags events
// @Produce json
// @Param status query string false "Status filter"
// @Success 200 {object} helpers.APIResponse "data contains the event list"
// @Router /events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	var status *domain.EventStatus
	if s := r.URL.Query().Get("status"); s != "" {
		st := domain.EventStatus(s)
		status = &st
	}
	events, err := c.Service.ListEvents(r.Context(), status)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}

// GetEvent godoc
// @Summary Get an event by ID
// @Tags events
// @Produce json
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains the event"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	event, err := c.Service.GetEvent(r.Context(), eventID)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// UpdateEvent godoc
// @Summary Update event details
// @Description Updates name, date, location, or the event vendor password. Omitted fields are unchanged.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body UpdateEventRequest true "Fields to update (all optional)"
// @Success 200 {object} helpers.APIResponse "data contains the updated event"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /events/{eventID} [put]
func (c *EventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	var req UpdateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	event, err := c.Service.UpdateEvent(r.Context(), eventID, req.Name, req.Date, req.Location, req.VendorPassword)
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// Transition godoc
// @Summary Change event lifecycle status
// @Description Applies a lifecycle transition: planning to active, active to closed, or the admin reopen closed to active. Other transitions are rejected.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body TransitionRequest true "Target status"
// @Success 200 {object} helpers.APIResponse "data contains the updated event"
// @Failure 409 {object} helpers.APIResponse "error.code: invalid_transition"
// @Router /events/{eventID}/status [put]
func (c *EventController) Transition(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	var req TransitionRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	event, err := c.Service.Transition(r.Context(), eventID, domain.EventStatus(req.Status))
	if err != nil {
		c.writeError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}
