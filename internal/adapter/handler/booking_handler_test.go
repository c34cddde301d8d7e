package handler_test

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srgjo27/hotel_booking/internal/adapter/events"
	"github.com/srgjo27/hotel_booking/internal/adapter/handler"
	"github.com/srgjo27/hotel_booking/internal/adapter/lock"
	"github.com/srgjo27/hotel_booking/internal/adapter/repository/memory"
	"github.com/srgjo27/hotel_booking/internal/core/domain"
	"github.com/srgjo27/hotel_booking/internal/core/services"
)

type fixedClock struct {
	now time.Time
}

func (c *fixedClock) Now() time.Time { return c.now }

var today = time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)

func date(n int) string {
	return domain.FormatDate(today.AddDate(0, 0, n))
}

func newServer(t *testing.T, rooms int, clock *fixedClock) http.Handler {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	bookingRepo := memory.NewBookingStore()
	roomRepo := memory.NewRoomStore(memory.SeedRooms(rooms)...)

	manager := services.NewBookingManager(bookingRepo, roomRepo, clock)
	svc := services.NewBookingService(manager, bookingRepo, lock.NewLocalLocker(time.Second), events.NewLogPublisher(logger), nil, clock, logger, services.DefaultOptions())

	mux := http.NewServeMux()
	handler.NewBookingHandler(svc, logger).Register(mux)

	return handler.WithRequestLogging(mux, logger)
}

func do(t *testing.T, srv http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	return rec
}

func decodeBooking(t *testing.T, rec *httptest.ResponseRecorder) handler.BookingResponse {
	t.Helper()

	var resp handler.BookingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	return resp
}

func TestHealth(t *testing.T) {
	srv := newServer(t, 1, &fixedClock{now: today})

	rec := do(t, srv, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestRequestIDIsEchoed(t *testing.T) {
	srv := newServer(t, 1, &fixedClock{now: today})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-Id", "req-42")
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	assert.Equal(t, "req-42", rec.Header().Get("X-Request-Id"))
}

func TestCreateBooking(t *testing.T) {
	srv := newServer(t, 1, &fixedClock{now: today})

	rec := do(t, srv, http.MethodPost, "/bookings", map[string]any{
		"customer_id": 3,
		"start_date":  date(2),
		"end_date":    date(4),
	})

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	resp := decodeBooking(t, rec)
	assert.Equal(t, 1, resp.ID)
	assert.Equal(t, 1, resp.RoomID)
	assert.Equal(t, 3, resp.CustomerID)
	assert.Equal(t, date(2), resp.StartDate)
	assert.Equal(t, "PENDING", resp.Status)
	assert.True(t, resp.IsActive)

	rec = do(t, srv, http.MethodPost, "/bookings", map[string]any{
		"customer_id": 4,
		"start_date":  date(3),
		"end_date":    date(3),
	})

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCreateBooking_BadRequests(t *testing.T) {
	srv := newServer(t, 1, &fixedClock{now: today})

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"customer_id":`},
		{"missing customer", `{"start_date":"` + date(1) + `","end_date":"` + date(2) + `"}`},
		{"bad date format", `{"customer_id":1,"start_date":"18/10/2026","end_date":"` + date(2) + `"}`},
		{"start today", `{"customer_id":1,"start_date":"` + date(0) + `","end_date":"` + date(2) + `"}`},
		{"start after end", `{"customer_id":1,"start_date":"` + date(5) + `","end_date":"` + date(2) + `"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/bookings", strings.NewReader(tt.body))
			rec := httptest.NewRecorder()
			srv.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestFindAvailableRoom(t *testing.T) {
	srv := newServer(t, 2, &fixedClock{now: today})

	rec := do(t, srv, http.MethodGet, "/rooms/available?start="+date(1)+"&end="+date(3), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp handler.AvailableRoomResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.RoomID)

	rec = do(t, srv, http.MethodGet, "/rooms/available?start="+date(-1)+"&end="+date(3), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "The start date cannot be in the past or later than the end date.")

	rec = do(t, srv, http.MethodGet, "/rooms/available?start=soon&end="+date(3), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFindAvailableRoom_NoneFree(t *testing.T) {
	srv := newServer(t, 1, &fixedClock{now: today})

	rec := do(t, srv, http.MethodPost, "/bookings", map[string]any{"customer_id": 1, "start_date": date(1), "end_date": date(3)})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, srv, http.MethodGet, "/rooms/available?start="+date(2)+"&end="+date(2), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"room_id":-1}`, rec.Body.String())
}

func TestOccupiedDates(t *testing.T) {
	srv := newServer(t, 1, &fixedClock{now: today})

	rec := do(t, srv, http.MethodGet, "/occupancy?start="+date(1)+"&end="+date(5), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"dates":[]}`, rec.Body.String())

	rec = do(t, srv, http.MethodPost, "/bookings", map[string]any{"customer_id": 1, "start_date": date(2), "end_date": date(3)})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, srv, http.MethodGet, "/occupancy?start="+date(1)+"&end="+date(5), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp handler.OccupancyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{date(2), date(3)}, resp.Dates)
}

func TestBookingLifecycle(t *testing.T) {
	clock := &fixedClock{now: today}
	srv := newServer(t, 1, clock)

	rec := do(t, srv, http.MethodPost, "/bookings", map[string]any{"customer_id": 9, "start_date": date(1), "end_date": date(2)})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, srv, http.MethodPost, "/bookings/1/check-in", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	clock.now = today.AddDate(0, 0, 1)

	rec = do(t, srv, http.MethodPost, "/bookings/1/check-in", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "CHECKED_IN", decodeBooking(t, rec).Status)

	rec = do(t, srv, http.MethodPost, "/bookings/1/cancel", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	clock.now = today.AddDate(0, 0, 2)

	rec = do(t, srv, http.MethodPost, "/bookings/1/check-out", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "CHECKED_OUT", decodeBooking(t, rec).Status)

	rec = do(t, srv, http.MethodGet, "/bookings/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "CHECKED_OUT", decodeBooking(t, rec).Status)
}

func TestModifyAndCancel(t *testing.T) {
	srv := newServer(t, 1, &fixedClock{now: today})

	rec := do(t, srv, http.MethodPost, "/bookings", map[string]any{"customer_id": 2, "start_date": date(3), "end_date": date(4)})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, srv, http.MethodPut, "/bookings/1", map[string]any{"start_date": date(4), "end_date": date(6)})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decodeBooking(t, rec)
	assert.Equal(t, date(4), resp.StartDate)
	assert.Equal(t, date(6), resp.EndDate)

	rec = do(t, srv, http.MethodPost, "/bookings/1/cancel", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp = decodeBooking(t, rec)
	assert.Equal(t, "CANCELLED", resp.Status)
	assert.False(t, resp.IsActive)

	rec = do(t, srv, http.MethodGet, "/rooms/available?start="+date(4)+"&end="+date(6), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"room_id":1}`, rec.Body.String())
}

func TestBookingNotFoundAndBadID(t *testing.T) {
	srv := newServer(t, 1, &fixedClock{now: today})

	rec := do(t, srv, http.MethodGet, "/bookings/42", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, srv, http.MethodGet, "/bookings/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, srv, http.MethodPost, "/bookings/0/cancel", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
