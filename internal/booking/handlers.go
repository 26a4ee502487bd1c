package booking

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"carwash/internal/api"
	"carwash/internal/bookingstate"
	"carwash/internal/pos"
	"carwash/internal/vehicle"
)

type Handlers struct {
	Bookings Workflow
	Table    bookingstate.Table
}

type stateInfo struct {
	State        bookingstate.State       `json:"state"`
	Terminal     bool                     `json:"terminal"`
	Display      bookingstate.DisplayInfo `json:"display"`
	ValidActions []bookingstate.Action    `json:"validActions"`
}

// States lists every lifecycle state with its display metadata and the actions the
// table allows from it.
func (h Handlers) States(w http.ResponseWriter, r *http.Request) {
	out := make([]stateInfo, 0, len(bookingstate.AllStates()))
	for _, st := range bookingstate.AllStates() {
		out = append(out, stateInfo{
			State:        st,
			Terminal:     st.IsTerminal(),
			Display:      bookingstate.StateDisplayInfo(st),
			ValidActions: h.Table.ValidActions(st),
		})
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{
		"states":  out,
		"actions": bookingstate.AllActions(),
	})
}

type CreateRequest struct {
	Vehicle struct {
		Plate string `json:"plate"`
		Make  string `json:"make"`
		Model string `json:"model"`
		Color string `json:"color"`
	} `json:"vehicle"`
	CustomerName    string          `json:"customerName"`
	CustomerPhone   string          `json:"customerPhone"`
	ScheduledAt     *time.Time      `json:"scheduledAt"`
	Lines           []pos.Line      `json:"lines"`
	DiscountPercent decimal.Decimal `json:"discountPercent"`
}

func (h Handlers) Create(w http.ResponseWriter, r *http.Request) {
	actor := api.StaffFromContext(r.Context())
	if actor == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing staff identity")
		return
	}

	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid json")
		return
	}
	if vehicle.NormalizePlate(req.Vehicle.Plate) == "" {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "vehicle.plate is required")
		return
	}
	if strings.TrimSpace(req.CustomerName) == "" {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "customerName is required")
		return
	}

	d, err := h.Bookings.Create(r.Context(), actor.ID, CreateInput{
		Vehicle: vehicle.UpsertInput{
			Plate: req.Vehicle.Plate,
			Make:  strings.TrimSpace(req.Vehicle.Make),
			Model: strings.TrimSpace(req.Vehicle.Model),
			Color: strings.TrimSpace(req.Vehicle.Color),
		},
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		ScheduledAt:   req.ScheduledAt,
		Cart:          pos.Cart{Lines: req.Lines, DiscountPercent: req.DiscountPercent},
	})
	if err != nil {
		writeServiceError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, d)
}

func (h Handlers) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := ListFilter{}
	if raw := strings.TrimSpace(q.Get("status")); raw != "" {
		st, err := bookingstate.ParseState(raw)
		if err != nil {
			api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid status")
			return
		}
		f.Status = st
	}
	var ok bool
	if f.Limit, ok = queryInt(q.Get("limit")); !ok {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid limit")
		return
	}
	if f.Offset, ok = queryInt(q.Get("offset")); !ok {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid offset")
		return
	}

	page, err := h.Bookings.List(r.Context(), f)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, page)
}

func queryInt(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

func (h Handlers) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := bookingID(w, r)
	if !ok {
		return
	}
	d, err := h.Bookings.Get(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, d)
}

func (h Handlers) History(w http.ResponseWriter, r *http.Request) {
	id, ok := bookingID(w, r)
	if !ok {
		return
	}
	recs, err := h.Bookings.History(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"bookingId": id, "items": recs})
}

func (h Handlers) Activity(w http.ResponseWriter, r *http.Request) {
	id, ok := bookingID(w, r)
	if !ok {
		return
	}
	entries, err := h.Bookings.Activity(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, map[string]any{"bookingId": id, "items": entries})
}

func (h Handlers) Initialize(w http.ResponseWriter, r *http.Request) {
	actor := api.StaffFromContext(r.Context())
	if actor == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing staff identity")
		return
	}
	id, ok := bookingID(w, r)
	if !ok {
		return
	}
	rec, err := h.Bookings.Initialize(r.Context(), id, actor.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusCreated, rec)
}

type TransitionRequest struct {
	Action string `json:"action"`
}

func (h Handlers) Transition(w http.ResponseWriter, r *http.Request) {
	actor := api.StaffFromContext(r.Context())
	if actor == nil {
		api.WriteError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing staff identity")
		return
	}
	id, ok := bookingID(w, r)
	if !ok {
		return
	}

	var req TransitionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid json")
		return
	}
	action, err := bookingstate.ParseAction(req.Action)
	if err != nil {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "invalid action")
		return
	}

	res, err := h.Bookings.Transition(r.Context(), id, action, actor.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, transitionResponse{
		Result:       res,
		Display:      bookingstate.StateDisplayInfo(res.NewState),
		ValidActions: h.Table.ValidActions(res.NewState),
	})
}

type transitionResponse struct {
	bookingstate.Result
	Display      bookingstate.DisplayInfo `json:"display"`
	ValidActions []bookingstate.Action    `json:"validActions"`
}

func bookingID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		api.WriteError(w, http.StatusBadRequest, "VALIDATION_FAILED", "missing id")
		return "", false
	}
	if _, err := uuid.Parse(id); err != nil {
		api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "booking not found")
		return "", false
	}
	return id, true
}

func writeServiceError(w http.ResponseWriter, err error) {
	var ve pos.ValidationError
	var se *bookingstate.Error
	switch {
	case errors.Is(err, ErrNotFound):
		api.WriteError(w, http.StatusNotFound, "NOT_FOUND", "booking not found")
	case errors.As(err, &ve):
		api.WriteError(w, http.StatusBadRequest, ve.Code, ve.Message)
	case errors.As(err, &se):
		writeEngineError(w, se)
	default:
		// Anything left came from the database before the engine ran.
		api.WriteError(w, http.StatusServiceUnavailable, string(bookingstate.KindPersistence), "booking state store unavailable")
	}
}

func writeEngineError(w http.ResponseWriter, e *bookingstate.Error) {
	details := map[string]any{"bookingId": e.BookingID}
	if e.State != "" {
		details["state"] = e.State
	}
	if e.Action != "" {
		details["action"] = e.Action
	}

	switch e.Kind {
	case bookingstate.KindInvalidTransition, bookingstate.KindNotInitialized,
		bookingstate.KindAlreadyInitialized, bookingstate.KindConcurrentTransition:
		api.WriteErrorDetails(w, http.StatusConflict, string(e.Kind), e.Error(), details)
	case bookingstate.KindPersistence:
		api.WriteError(w, http.StatusServiceUnavailable, string(e.Kind), "booking state store unavailable")
	default:
		api.WriteError(w, http.StatusInternalServerError, "INTERNAL", "internal error")
	}
}
