package handlers

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/md-rashed-zaman/courtbook/internal/availability"
	"github.com/md-rashed-zaman/courtbook/internal/model"
	"github.com/md-rashed-zaman/courtbook/internal/outbox"
	"github.com/md-rashed-zaman/courtbook/internal/storage"
	"github.com/md-rashed-zaman/courtbook/libs/auth"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// asRole attaches verified claims to the request, as Authenticate would.
func asRole(req *http.Request, role, sub string) *http.Request {
	claims := &auth.Claims{Sub: sub, Email: sub + "@example.com", Role: role}
	return req.WithContext(context.WithValue(req.Context(), ctxKeyClaims, claims))
}

// stubTx satisfies pgx.Tx for handlers that only commit or roll back.
type stubTx struct{ pgx.Tx }

func (stubTx) Commit(context.Context) error   { return nil }
func (stubTx) Rollback(context.Context) error { return nil }

type fakeBookingStore struct {
	bookings map[string]*model.Booking
}

func (s *fakeBookingStore) Begin(context.Context) (pgx.Tx, error) { return stubTx{}, nil }

func (s *fakeBookingStore) Create(_ context.Context, _ pgx.Tx, b *model.Booking) error {
	cp := *b
	s.bookings[b.ID] = &cp
	return nil
}

func (s *fakeBookingStore) GetByID(_ context.Context, id string) (model.Booking, error) {
	b, ok := s.bookings[id]
	if !ok {
		return model.Booking{}, pgx.ErrNoRows
	}
	return *b, nil
}

func (s *fakeBookingStore) GetForUpdate(_ context.Context, _ pgx.Tx, id, userID string) (model.Booking, error) {
	b, ok := s.bookings[id]
	if !ok || (userID != "" && b.UserID != userID) {
		return model.Booking{}, pgx.ErrNoRows
	}
	return *b, nil
}

func (s *fakeBookingStore) Cancel(_ context.Context, _ pgx.Tx, id string) error {
	s.bookings[id].IsBooked = model.BookingCanceled
	return nil
}

func (s *fakeBookingStore) BookedSlots(context.Context, string, string) ([]availability.Slot, error) {
	return nil, nil
}

func (s *fakeBookingStore) List(context.Context, storage.ListOptions, string, string) ([]model.Booking, int, error) {
	return nil, 0, nil
}

func (s *fakeBookingStore) ListByUser(context.Context, string, storage.ListOptions) ([]model.Booking, int, error) {
	return nil, 0, nil
}

type fakeOutbox struct {
	events []outbox.Event
}

func (f *fakeOutbox) Insert(_ context.Context, _ pgx.Tx, evt outbox.Event) error {
	f.events = append(f.events, evt)
	return nil
}

func confirmedBooking(id, userID string) *model.Booking {
	return &model.Booking{
		ID:            id,
		FacilityID:    "fac-1",
		UserID:        userID,
		Date:          "2026-09-01",
		StartTime:     "08:00",
		EndTime:       "10:00",
		PayableAmount: 1000,
		IsBooked:      model.BookingConfirmed,
		PaymentStatus: model.PaymentPending,
	}
}

func TestCancelBookingTwiceFails(t *testing.T) {
	store := &fakeBookingStore{bookings: map[string]*model.Booking{
		"b1": confirmedBooking("b1", "u1"),
	}}
	ob := &fakeOutbox{}
	h := NewBookingHandler(store, nil, ob, testLogger())

	rec := httptest.NewRecorder()
	h.Item(rec, asRole(httptest.NewRequest(http.MethodDelete, "/api/bookings/b1", nil), model.RoleAdmin, "admin-1"))
	if rec.Code != http.StatusOK {
		t.Fatalf("first cancel: status = %d, want 200", rec.Code)
	}
	if store.bookings["b1"].IsBooked != model.BookingCanceled {
		t.Fatalf("booking status = %q, want canceled", store.bookings["b1"].IsBooked)
	}
	if len(ob.events) != 1 || ob.events[0].EventType != outbox.EventBookingCancelled {
		t.Fatalf("unexpected outbox events: %+v", ob.events)
	}

	rec = httptest.NewRecorder()
	h.Item(rec, asRole(httptest.NewRequest(http.MethodDelete, "/api/bookings/b1", nil), model.RoleAdmin, "admin-1"))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("second cancel: status = %d, want 400", rec.Code)
	}
	var body struct {
		Success bool   `json:"success"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Success {
		t.Fatal("expected success=false on re-cancel")
	}
	if store.bookings["b1"].IsBooked != model.BookingCanceled {
		t.Fatalf("booking status changed on re-cancel: %q", store.bookings["b1"].IsBooked)
	}
	if len(ob.events) != 1 {
		t.Fatalf("re-cancel must not emit another event, got %d", len(ob.events))
	}
}

func TestUserCancelOwnBooking(t *testing.T) {
	store := &fakeBookingStore{bookings: map[string]*model.Booking{
		"b1": confirmedBooking("b1", "u1"),
	}}
	h := NewBookingHandler(store, nil, &fakeOutbox{}, testLogger())

	rec := httptest.NewRecorder()
	h.UserBookingItem(rec, asRole(httptest.NewRequest(http.MethodDelete, "/api/user/bookings/b1", nil), model.RoleUser, "u1"))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if store.bookings["b1"].IsBooked != model.BookingCanceled {
		t.Fatalf("booking status = %q, want canceled", store.bookings["b1"].IsBooked)
	}
}

func TestUserCannotCancelForeignBooking(t *testing.T) {
	store := &fakeBookingStore{bookings: map[string]*model.Booking{
		"b1": confirmedBooking("b1", "u1"),
	}}
	h := NewBookingHandler(store, nil, &fakeOutbox{}, testLogger())

	rec := httptest.NewRecorder()
	h.UserBookingItem(rec, asRole(httptest.NewRequest(http.MethodDelete, "/api/user/bookings/b1", nil), model.RoleUser, "u2"))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if store.bookings["b1"].IsBooked != model.BookingConfirmed {
		t.Fatalf("foreign cancel must not change status, got %q", store.bookings["b1"].IsBooked)
	}
}
