package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/md-rashed-zaman/courtbook/internal/api"
	"github.com/md-rashed-zaman/courtbook/internal/availability"
	"github.com/md-rashed-zaman/courtbook/internal/model"
	"github.com/md-rashed-zaman/courtbook/internal/outbox"
	"github.com/md-rashed-zaman/courtbook/internal/storage"
)

// bookingStore is the storage surface the handler needs; satisfied by
// *storage.BookingRepository.
type bookingStore interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Create(ctx context.Context, tx pgx.Tx, b *model.Booking) error
	GetByID(ctx context.Context, id string) (model.Booking, error)
	GetForUpdate(ctx context.Context, tx pgx.Tx, id, userID string) (model.Booking, error)
	Cancel(ctx context.Context, tx pgx.Tx, id string) error
	BookedSlots(ctx context.Context, date, facilityID string) ([]availability.Slot, error)
	List(ctx context.Context, opts storage.ListOptions, date, facilityID string) ([]model.Booking, int, error)
	ListByUser(ctx context.Context, userID string, opts storage.ListOptions) ([]model.Booking, int, error)
}

// outboxWriter is satisfied by *outbox.Repository.
type outboxWriter interface {
	Insert(ctx context.Context, tx pgx.Tx, evt outbox.Event) error
}

type BookingHandler struct {
	repo       bookingStore
	facilities facilityStore
	outboxRepo outboxWriter
	logger     *slog.Logger
}

func NewBookingHandler(repo bookingStore, facilities facilityStore, outboxRepo outboxWriter, logger *slog.Logger) *BookingHandler {
	return &BookingHandler{
		repo:       repo,
		facilities: facilities,
		outboxRepo: outboxRepo,
		logger:     logger,
	}
}

type createBookingRequest struct {
	Facility  string `json:"facility"`
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

func validateBookingShape(req createBookingRequest) []api.FieldError {
	var errs []api.FieldError
	if strings.TrimSpace(req.Facility) == "" {
		errs = append(errs, api.FieldError{Path: "facility", Message: "facility is required"})
	}
	if !availability.ValidDate(req.Date) {
		errs = append(errs, api.FieldError{Path: "date", Message: "date must be YYYY-MM-DD"})
	}
	if _, err := availability.ParseClock(req.StartTime); err != nil {
		errs = append(errs, api.FieldError{Path: "startTime", Message: "startTime must be HH:MM"})
	}
	if _, err := availability.ParseClock(req.EndTime); err != nil {
		errs = append(errs, api.FieldError{Path: "endTime", Message: "endTime must be HH:MM"})
	}
	return errs
}

// Collection handles POST (user create) and GET (admin list) on /api/bookings.
func (h *BookingHandler) Collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.create(w, r)
	case http.MethodGet:
		h.list(w, r)
	default:
		api.MethodNotAllowed(w)
	}
}

// Item handles DELETE (admin cancel) on /api/bookings/{id}.
func (h *BookingHandler) Item(w http.ResponseWriter, r *http.Request) {
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/bookings/"), "/")
	if id == "" || strings.Contains(id, "/") {
		api.NotFound(w, "booking not found")
		return
	}
	if r.Method != http.MethodDelete {
		api.MethodNotAllowed(w)
		return
	}
	if _, ok := requireRole(w, r, model.RoleAdmin); !ok {
		return
	}
	h.cancel(w, r, id, "")
}

func (h *BookingHandler) create(w http.ResponseWriter, r *http.Request) {
	claims, ok := requireRole(w, r, model.RoleUser)
	if !ok {
		return
	}

	var req createBookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.BadRequest(w, "invalid json body")
		return
	}
	if errs := validateBookingShape(req); len(errs) > 0 {
		api.ValidationError(w, "validation failed", errs)
		return
	}

	requested, err := availability.ParseInterval(req.StartTime, req.EndTime)
	if err != nil {
		api.BadRequest(w, "endTime must be after startTime")
		return
	}

	ctx := r.Context()
	facility, err := h.facilities.GetActive(ctx, strings.TrimSpace(req.Facility))
	if err != nil {
		if storage.IsNotFound(err) {
			api.NotFound(w, "facility not found")
			return
		}
		h.logger.Error("facility lookup failed", "err", err)
		api.Internal(w, "failed to load facility")
		return
	}

	booked, err := h.repo.BookedSlots(ctx, req.Date, facility.ID)
	if err != nil {
		h.logger.Error("booked slots lookup failed", "err", err)
		api.Internal(w, "failed to check availability")
		return
	}
	if availability.HasConflict(requested, booked) {
		api.Conflict(w, "facility is unavailable during the requested time slot")
		return
	}

	booking := &model.Booking{
		ID:            uuid.NewString(),
		FacilityID:    facility.ID,
		UserID:        claims.Sub,
		Date:          strings.TrimSpace(req.Date),
		StartTime:     req.StartTime,
		EndTime:       req.EndTime,
		PayableAmount: requested.DurationHours() * facility.PricePerHour,
		IsBooked:      model.BookingConfirmed,
		PaymentStatus: model.PaymentPending,
	}

	tx, err := h.repo.Begin(ctx)
	if err != nil {
		api.Internal(w, "db error")
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := h.repo.Create(ctx, tx, booking); err != nil {
		h.logger.Error("booking insert failed", "err", err)
		api.Internal(w, "failed to create booking")
		return
	}

	payload, err := json.Marshal(map[string]any{
		"booking_id":     booking.ID,
		"facility_id":    facility.ID,
		"user_id":        claims.Sub,
		"date":           booking.Date,
		"start_time":     booking.StartTime,
		"end_time":       booking.EndTime,
		"payable_amount": booking.PayableAmount,
	})
	if err != nil {
		api.Internal(w, "failed to build event payload")
		return
	}
	if err := h.outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: "booking",
		AggregateID:   booking.ID,
		EventType:     outbox.EventBookingCreated,
		Payload:       payload,
	}); err != nil {
		api.Internal(w, "failed to write outbox event")
		return
	}

	if err := tx.Commit(ctx); err != nil {
		api.Internal(w, "failed to commit")
		return
	}

	booking.Facility = &facility
	api.Created(w, "Booking created successfully", booking)
}

func (h *BookingHandler) list(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r, model.RoleAdmin); !ok {
		return
	}

	q := r.URL.Query()
	opts := storage.ParseListOptions(q)
	date := strings.TrimSpace(q.Get("date"))
	if date != "" && !availability.ValidDate(date) {
		api.BadRequest(w, "date must be YYYY-MM-DD")
		return
	}

	bookings, total, err := h.repo.List(r.Context(), opts, date, strings.TrimSpace(q.Get("facility")))
	if err != nil {
		h.logger.Error("booking list failed", "err", err)
		api.Internal(w, "failed to list bookings")
		return
	}
	if bookings == nil {
		bookings = []model.Booking{}
	}
	api.OKWithMeta(w, "Bookings retrieved successfully", bookings, api.Meta{
		Page:       opts.Page,
		Limit:      opts.Limit,
		Total:      total,
		TotalPages: opts.TotalPages(total),
	})
}

// UserBookings handles GET on /api/user/bookings.
func (h *BookingHandler) UserBookings(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		api.MethodNotAllowed(w)
		return
	}
	claims, ok := requireRole(w, r, model.RoleUser)
	if !ok {
		return
	}

	opts := storage.ParseListOptions(r.URL.Query())
	bookings, total, err := h.repo.ListByUser(r.Context(), claims.Sub, opts)
	if err != nil {
		h.logger.Error("user booking list failed", "err", err)
		api.Internal(w, "failed to list bookings")
		return
	}
	if bookings == nil {
		bookings = []model.Booking{}
	}
	api.OKWithMeta(w, "User bookings retrieved successfully", bookings, api.Meta{
		Page:       opts.Page,
		Limit:      opts.Limit,
		Total:      total,
		TotalPages: opts.TotalPages(total),
	})
}

// UserBookingItem handles DELETE on /api/user/bookings/{id}: the owning user
// cancelling their own booking.
func (h *BookingHandler) UserBookingItem(w http.ResponseWriter, r *http.Request) {
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/user/bookings/"), "/")
	if id == "" || strings.Contains(id, "/") {
		api.NotFound(w, "booking not found")
		return
	}
	if r.Method != http.MethodDelete {
		api.MethodNotAllowed(w)
		return
	}
	claims, ok := requireRole(w, r, model.RoleUser)
	if !ok {
		return
	}
	h.cancel(w, r, id, claims.Sub)
}

// cancel flips a booking to canceled. Re-cancelling is an error, not a no-op.
// A non-empty ownerID scopes the lookup so users cannot cancel others'
// bookings (a foreign booking reads as not found).
func (h *BookingHandler) cancel(w http.ResponseWriter, r *http.Request, id, ownerID string) {
	ctx := r.Context()
	tx, err := h.repo.Begin(ctx)
	if err != nil {
		api.Internal(w, "db error")
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	booking, err := h.repo.GetForUpdate(ctx, tx, id, ownerID)
	if err != nil {
		if storage.IsNotFound(err) {
			api.NotFound(w, "booking not found")
			return
		}
		h.logger.Error("booking lookup failed", "err", err)
		api.Internal(w, "failed to load booking")
		return
	}
	if booking.IsBooked == model.BookingCanceled {
		api.BadRequest(w, "booking is already cancelled")
		return
	}

	if err := h.repo.Cancel(ctx, tx, booking.ID); err != nil {
		h.logger.Error("booking cancel failed", "err", err)
		api.Internal(w, "failed to cancel booking")
		return
	}

	payload, err := json.Marshal(map[string]any{
		"booking_id":   booking.ID,
		"facility_id":  booking.FacilityID,
		"user_id":      booking.UserID,
		"date":         booking.Date,
		"start_time":   booking.StartTime,
		"end_time":     booking.EndTime,
		"cancelled_at": time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		api.Internal(w, "failed to build event payload")
		return
	}
	if err := h.outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: "booking",
		AggregateID:   booking.ID,
		EventType:     outbox.EventBookingCancelled,
		Payload:       payload,
	}); err != nil {
		api.Internal(w, "failed to write outbox event")
		return
	}

	if err := tx.Commit(ctx); err != nil {
		api.Internal(w, "failed to commit")
		return
	}

	cancelled, err := h.repo.GetByID(ctx, booking.ID)
	if err != nil {
		booking.IsBooked = model.BookingCanceled
		api.OK(w, "Booking cancelled successfully", booking)
		return
	}
	api.OK(w, "Booking cancelled successfully", cancelled)
}

// CheckAvailability handles GET /api/check-availability. The date defaults to
// today (UTC); the facility filter is optional.
func (h *BookingHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		api.MethodNotAllowed(w)
		return
	}

	q := r.URL.Query()
	date := strings.TrimSpace(q.Get("date"))
	if date == "" {
		date = time.Now().UTC().Format("2006-01-02")
	}
	if !availability.ValidDate(date) {
		api.BadRequest(w, "date must be YYYY-MM-DD")
		return
	}

	booked, err := h.repo.BookedSlots(r.Context(), date, strings.TrimSpace(q.Get("facility")))
	if err != nil {
		h.logger.Error("booked slots lookup failed", "err", err)
		api.Internal(w, "failed to check availability")
		return
	}

	slots := availability.AvailableSlots(availability.DefaultSlots(), booked)
	api.OK(w, "Availability checked successfully", slots)
}
