package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/srgjo27/hotel_booking/internal/core/domain"
	"github.com/srgjo27/hotel_booking/internal/core/services"
)

type BookingResponse struct {
	ID          int    `json:"id"`
	CustomerID  int    `json:"customer_id"`
	RoomID      int    `json:"room_id"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	IsActive    bool   `json:"is_active"`
	IsCheckedIn bool   `json:"is_checked_in"`
	Status      string `json:"status"`
}

func toBookingResponse(b *domain.Booking) BookingResponse {
	return BookingResponse{
		ID:          b.ID,
		CustomerID:  b.CustomerID,
		RoomID:      b.RoomID,
		StartDate:   domain.FormatDate(b.StartDate),
		EndDate:     domain.FormatDate(b.EndDate),
		IsActive:    b.IsActive,
		IsCheckedIn: b.IsCheckedIn,
		Status:      string(b.State()),
	}
}

type AvailableRoomResponse struct {
	RoomID int `json:"room_id"`
}

type OccupancyResponse struct {
	Dates []string `json:"dates"`
}

type BookingHandler struct {
	svc      *services.BookingService
	validate *validator.Validate
	log      *slog.Logger
}

func NewBookingHandler(svc *services.BookingService, logger *slog.Logger) *BookingHandler {
	return &BookingHandler{
		svc:      svc,
		validate: validator.New(),
		log:      logger,
	}
}

func (h *BookingHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /rooms/available", h.FindAvailableRoom)
	mux.HandleFunc("GET /occupancy", h.GetOccupiedDates)
	mux.HandleFunc("POST /bookings", h.CreateBooking)
	mux.HandleFunc("GET /bookings/{id}", h.GetBooking)
	mux.HandleFunc("PUT /bookings/{id}", h.ModifyBooking)
	mux.HandleFunc("POST /bookings/{id}/cancel", h.CancelBooking)
	mux.HandleFunc("POST /bookings/{id}/check-in", h.CheckIn)
	mux.HandleFunc("POST /bookings/{id}/check-out", h.CheckOut)
}

func (h *BookingHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *BookingHandler) FindAvailableRoom(w http.ResponseWriter, r *http.Request) {
	start, end, ok := h.queryRange(w, r)
	if !ok {
		return
	}

	roomID, err := h.svc.AvailableRoom(r.Context(), start, end)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, AvailableRoomResponse{RoomID: roomID})
}

func (h *BookingHandler) GetOccupiedDates(w http.ResponseWriter, r *http.Request) {
	start, end, ok := h.queryRange(w, r)
	if !ok {
		return
	}

	dates, err := h.svc.OccupiedDates(r.Context(), start, end)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp := OccupancyResponse{Dates: make([]string, 0, len(dates))}
	for _, d := range dates {
		resp.Dates = append(resp.Dates, domain.FormatDate(d))
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *BookingHandler) CreateBooking(w http.ResponseWriter, r *http.Request) {
	var req services.CreateBookingRequest
	if !h.decode(w, r, &req) {
		return
	}

	booking, err := h.svc.Book(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toBookingResponse(booking))
}

func (h *BookingHandler) GetBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	booking, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toBookingResponse(booking))
}

func (h *BookingHandler) ModifyBooking(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req services.ModifyBookingRequest
	if !h.decode(w, r, &req) {
		return
	}

	booking, err := h.svc.Modify(r.Context(), id, req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toBookingResponse(booking))
}

func (h *BookingHandler) CancelBooking(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.svc.Cancel)
}

func (h *BookingHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.svc.CheckIn)
}

func (h *BookingHandler) CheckOut(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.svc.CheckOut)
}

type transitionFunc func(ctx context.Context, bookingID int) (*domain.Booking, error)

func (h *BookingHandler) transition(w http.ResponseWriter, r *http.Request, fn transitionFunc) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	booking, err := fn(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toBookingResponse(booking))
}

func (h *BookingHandler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json body"})
		return false
	}

	if err := h.validate.Struct(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return false
	}

	return true
}

func (h *BookingHandler) queryRange(w http.ResponseWriter, r *http.Request) (time.Time, time.Time, bool) {
	q := r.URL.Query()

	start, err := domain.ParseDate(q.Get("start"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid start date, expected YYYY-MM-DD"})
		return time.Time{}, time.Time{}, false
	}

	end, err := domain.ParseDate(q.Get("end"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid end date, expected YYYY-MM-DD"})
		return time.Time{}, time.Time{}, false
	}

	return start, end, true
}

func pathID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid booking id"})
		return 0, false
	}

	return id, true
}

func (h *BookingHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidRange), errors.Is(err, domain.ErrInvalidDate):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrNoRoomAvailable),
		errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrOutsideWindow),
		errors.Is(err, domain.ErrLockNotAcquired):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		h.log.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
