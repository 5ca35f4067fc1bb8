package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/md-rashed-zaman/courtbook/internal/api"
	"github.com/md-rashed-zaman/courtbook/internal/model"
	"github.com/md-rashed-zaman/courtbook/internal/outbox"
	"github.com/md-rashed-zaman/courtbook/internal/payments"
	"github.com/md-rashed-zaman/courtbook/internal/storage"
)

var errNoGateway = errors.New("payment gateway not configured")

type PaymentHandler struct {
	bookings   *storage.BookingRepository
	sessions   *storage.PaymentRepository
	gateway    payments.Gateway
	outboxRepo *outbox.Repository
	logger     *slog.Logger
	currency   string
}

func NewPaymentHandler(bookings *storage.BookingRepository, sessions *storage.PaymentRepository, gateway payments.Gateway, outboxRepo *outbox.Repository, logger *slog.Logger, currency string) *PaymentHandler {
	if strings.TrimSpace(currency) == "" {
		currency = "usd"
	}
	return &PaymentHandler{
		bookings:   bookings,
		sessions:   sessions,
		gateway:    gateway,
		outboxRepo: outboxRepo,
		logger:     logger,
		currency:   currency,
	}
}

type initiatePaymentRequest struct {
	BookingID string `json:"bookingId"`
}

// Initiate handles POST /api/payment/initiate: opens a gateway checkout
// session for a pending booking owned by the caller.
func (h *PaymentHandler) Initiate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		api.MethodNotAllowed(w)
		return
	}
	claims, ok := requireRole(w, r, model.RoleUser)
	if !ok {
		return
	}
	if h.gateway == nil {
		api.Error(w, http.StatusNotImplemented, "payment gateway not configured")
		return
	}

	var req initiatePaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.BadRequest(w, "invalid json body")
		return
	}
	req.BookingID = strings.TrimSpace(req.BookingID)
	if req.BookingID == "" {
		api.BadRequest(w, "bookingId is required")
		return
	}

	ctx := r.Context()
	booking, err := h.bookings.GetByID(ctx, req.BookingID)
	if err != nil {
		if storage.IsNotFound(err) {
			api.NotFound(w, "booking not found")
			return
		}
		h.logger.Error("booking lookup failed", "err", err)
		api.Internal(w, "failed to load booking")
		return
	}
	if booking.UserID != claims.Sub {
		api.Forbidden(w, "you can only pay for your own bookings")
		return
	}
	if booking.IsBooked == model.BookingCanceled {
		api.BadRequest(w, "cannot pay for a cancelled booking")
		return
	}
	if booking.PaymentStatus == model.PaymentPaid {
		api.BadRequest(w, "booking is already paid")
		return
	}

	transactionID := payments.NewTransactionID()
	description := "Facility booking"
	if booking.Facility != nil {
		description = booking.Facility.Name + " " + booking.Date + " " + booking.StartTime + "-" + booking.EndTime
	}
	session, err := h.gateway.Initiate(ctx, payments.InitiateParams{
		TransactionID: transactionID,
		Amount:        booking.PayableAmount,
		Currency:      h.currency,
		Description:   description,
		CustomerEmail: claims.Email,
	})
	if err != nil {
		h.logger.Error("gateway initiate failed", "err", err)
		api.Error(w, http.StatusBadGateway, "failed to initiate payment")
		return
	}

	tx, err := h.sessions.Begin(ctx)
	if err != nil {
		api.Internal(w, "db error")
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := h.sessions.Create(ctx, tx, storage.PaymentSession{
		TransactionID:     transactionID,
		BookingID:         booking.ID,
		Amount:            booking.PayableAmount,
		Currency:          h.currency,
		ProviderSessionID: session.ProviderSessionID,
		Status:            storage.SessionInitiated,
	}); err != nil {
		h.logger.Error("payment session insert failed", "err", err)
		api.Internal(w, "failed to record payment session")
		return
	}
	if err := h.bookings.SetTransactionID(ctx, tx, booking.ID, transactionID); err != nil {
		h.logger.Error("booking update failed", "err", err)
		api.Internal(w, "failed to stamp transaction id")
		return
	}
	if err := tx.Commit(ctx); err != nil {
		api.Internal(w, "failed to commit")
		return
	}

	api.OK(w, "Payment initiated successfully", map[string]any{
		"transactionId": transactionID,
		"paymentUrl":    session.PaymentURL,
		"amount":        booking.PayableAmount,
		"currency":      h.currency,
	})
}

// Verify handles GET /api/payment/verify/{transactionId}: asks the gateway
// for the session state and settles the booking accordingly.
func (h *PaymentHandler) Verify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		api.MethodNotAllowed(w)
		return
	}
	transactionID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/payment/verify/"), "/")
	if transactionID == "" || !payments.ValidTransactionID(transactionID) {
		api.BadRequest(w, "invalid transaction id")
		return
	}

	booking, status, err := h.settle(r, transactionID)
	if err != nil {
		if storage.IsNotFound(err) {
			api.NotFound(w, "payment session not found")
			return
		}
		h.logger.Error("payment verification failed", "err", err, "transaction_id", transactionID)
		api.Error(w, http.StatusBadGateway, "failed to verify payment")
		return
	}

	switch status {
	case payments.StatusPaid:
		api.OK(w, "Payment verified successfully", booking)
	case payments.StatusFailed:
		api.BadRequest(w, "payment failed")
	default:
		api.OK(w, "Payment is still pending", map[string]any{
			"transactionId": transactionID,
			"status":        string(status),
		})
	}
}

// IPN handles POST /api/payment/ipn, the gateway's server-to-server callback.
// The payload carries {tran_id, status}; a VALID status is never trusted
// directly, it only triggers re-verification against the gateway. The
// response is the plain-text acknowledgement the gateway expects.
func (h *PaymentHandler) IPN(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		api.MethodNotAllowed(w)
		return
	}

	transactionID, status := parseIPN(r)
	if transactionID == "" {
		http.Error(w, "tran_id is required", http.StatusBadRequest)
		return
	}

	if strings.EqualFold(status, "VALID") {
		if _, _, err := h.settle(r, transactionID); err != nil {
			h.logger.Error("ipn settlement failed", "err", err, "transaction_id", transactionID)
		}
	} else {
		h.logger.Info("ipn received with non-valid status", "transaction_id", transactionID, "status", status)
		if err := h.markFailed(r, transactionID); err != nil {
			h.logger.Error("ipn failure update failed", "err", err, "transaction_id", transactionID)
		}
	}

	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func parseIPN(r *http.Request) (transactionID, status string) {
	ct := r.Header.Get("Content-Type")
	if strings.HasPrefix(ct, "application/json") {
		var body struct {
			TranID string `json:"tran_id"`
			Status string `json:"status"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return "", ""
		}
		return strings.TrimSpace(body.TranID), strings.TrimSpace(body.Status)
	}
	return strings.TrimSpace(r.FormValue("tran_id")), strings.TrimSpace(r.FormValue("status"))
}

// settle fetches the gateway's verdict for a transaction and applies it:
// paid marks the session and booking paid (emitting payment.completed.v1),
// failed marks both failed, pending changes nothing.
func (h *PaymentHandler) settle(r *http.Request, transactionID string) (model.Booking, payments.Status, error) {
	ctx := r.Context()
	session, err := h.sessions.GetByTransactionID(ctx, transactionID)
	if err != nil {
		return model.Booking{}, payments.StatusPending, err
	}
	if session.Status == storage.SessionPaid {
		booking, err := h.bookings.GetByID(ctx, session.BookingID)
		if err != nil {
			return model.Booking{}, payments.StatusPending, err
		}
		return booking, payments.StatusPaid, nil
	}
	if h.gateway == nil {
		return model.Booking{}, payments.StatusPending, errNoGateway
	}

	status, err := h.gateway.Verify(ctx, session.ProviderSessionID)
	if err != nil {
		return model.Booking{}, payments.StatusPending, err
	}

	switch status {
	case payments.StatusPaid:
		tx, err := h.sessions.Begin(ctx)
		if err != nil {
			return model.Booking{}, status, err
		}
		defer func() { _ = tx.Rollback(ctx) }()

		if err := h.sessions.SetStatus(ctx, tx, transactionID, storage.SessionPaid); err != nil {
			return model.Booking{}, status, err
		}
		booking, err := h.bookings.SetPaymentStatusByTransaction(ctx, tx, transactionID, model.PaymentPaid)
		if err != nil {
			return model.Booking{}, status, err
		}

		payload, err := json.Marshal(map[string]any{
			"booking_id":     booking.ID,
			"transaction_id": transactionID,
			"amount":         session.Amount,
			"currency":       session.Currency,
		})
		if err != nil {
			return model.Booking{}, status, err
		}
		if err := h.outboxRepo.Insert(ctx, tx, outbox.Event{
			AggregateType: "payment",
			AggregateID:   transactionID,
			EventType:     outbox.EventPaymentCompleted,
			Payload:       payload,
		}); err != nil {
			return model.Booking{}, status, err
		}
		if err := tx.Commit(ctx); err != nil {
			return model.Booking{}, status, err
		}

		if full, err := h.bookings.GetByID(ctx, booking.ID); err == nil {
			booking = full
		}
		return booking, payments.StatusPaid, nil

	case payments.StatusFailed:
		if err := h.markFailed(r, transactionID); err != nil {
			return model.Booking{}, status, err
		}
		return model.Booking{}, payments.StatusFailed, nil

	default:
		return model.Booking{}, payments.StatusPending, nil
	}
}

func (h *PaymentHandler) markFailed(r *http.Request, transactionID string) error {
	ctx := r.Context()
	tx, err := h.sessions.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := h.sessions.SetStatus(ctx, tx, transactionID, storage.SessionFailed); err != nil {
		return err
	}
	if _, err := h.bookings.SetPaymentStatusByTransaction(ctx, tx, transactionID, model.PaymentFailed); err != nil && !storage.IsNotFound(err) {
		return err
	}
	return tx.Commit(ctx)
}
