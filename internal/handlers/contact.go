package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/md-rashed-zaman/courtbook/internal/api"
	"github.com/md-rashed-zaman/courtbook/internal/model"
	"github.com/md-rashed-zaman/courtbook/internal/outbox"
	"github.com/md-rashed-zaman/courtbook/internal/storage"
)

type ContactHandler struct {
	repo       *storage.ContactRepository
	outboxRepo *outbox.Repository
	logger     *slog.Logger
}

func NewContactHandler(repo *storage.ContactRepository, outboxRepo *outbox.Repository, logger *slog.Logger) *ContactHandler {
	return &ContactHandler{repo: repo, outboxRepo: outboxRepo, logger: logger}
}

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Subject string `json:"subject"`
	Message string `json:"message"`
}

func validateContact(req contactRequest) []api.FieldError {
	var errs []api.FieldError
	if strings.TrimSpace(req.Name) == "" {
		errs = append(errs, api.FieldError{Path: "name", Message: "name is required"})
	}
	email := strings.TrimSpace(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		errs = append(errs, api.FieldError{Path: "email", Message: "a valid email is required"})
	}
	if strings.TrimSpace(req.Subject) == "" {
		errs = append(errs, api.FieldError{Path: "subject", Message: "subject is required"})
	}
	if strings.TrimSpace(req.Message) == "" {
		errs = append(errs, api.FieldError{Path: "message", Message: "message is required"})
	}
	return errs
}

// Collection handles POST (public submit) and GET (admin list) on /api/contact.
func (h *ContactHandler) Collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.create(w, r)
	case http.MethodGet:
		h.list(w, r)
	default:
		api.MethodNotAllowed(w)
	}
}

// Item handles PATCH /api/contact/{id}/read and DELETE /api/contact/{id}.
func (h *ContactHandler) Item(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/contact/"), "/")

	if id, found := strings.CutSuffix(rest, "/read"); found {
		if r.Method != http.MethodPatch {
			api.MethodNotAllowed(w)
			return
		}
		h.markRead(w, r, id)
		return
	}
	if rest == "" || strings.Contains(rest, "/") {
		api.NotFound(w, "contact message not found")
		return
	}
	if r.Method != http.MethodDelete {
		api.MethodNotAllowed(w)
		return
	}
	h.delete(w, r, rest)
}

func (h *ContactHandler) create(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.BadRequest(w, "invalid json body")
		return
	}
	if errs := validateContact(req); len(errs) > 0 {
		api.ValidationError(w, "validation failed", errs)
		return
	}

	contact := model.Contact{
		ID:      uuid.NewString(),
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Phone:   strings.TrimSpace(req.Phone),
		Subject: strings.TrimSpace(req.Subject),
		Message: strings.TrimSpace(req.Message),
	}

	ctx := r.Context()
	tx, err := h.repo.Begin(ctx)
	if err != nil {
		api.Internal(w, "db error")
		return
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := h.repo.Create(ctx, tx, contact); err != nil {
		h.logger.Error("contact insert failed", "err", err)
		api.Internal(w, "failed to save message")
		return
	}

	payload, err := json.Marshal(map[string]any{
		"contact_id": contact.ID,
		"email":      contact.Email,
		"subject":    contact.Subject,
	})
	if err != nil {
		api.Internal(w, "failed to build event payload")
		return
	}
	if err := h.outboxRepo.Insert(ctx, tx, outbox.Event{
		AggregateType: "contact",
		AggregateID:   contact.ID,
		EventType:     outbox.EventContactReceived,
		Payload:       payload,
	}); err != nil {
		api.Internal(w, "failed to write outbox event")
		return
	}
	if err := tx.Commit(ctx); err != nil {
		api.Internal(w, "failed to commit")
		return
	}

	api.Created(w, "Message sent successfully", contact)
}

func (h *ContactHandler) list(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r, model.RoleAdmin); !ok {
		return
	}

	opts := storage.ParseListOptions(r.URL.Query())
	contacts, total, err := h.repo.List(r.Context(), opts)
	if err != nil {
		h.logger.Error("contact list failed", "err", err)
		api.Internal(w, "failed to list messages")
		return
	}
	if contacts == nil {
		contacts = []model.Contact{}
	}
	api.OKWithMeta(w, "Messages retrieved successfully", contacts, api.Meta{
		Page:       opts.Page,
		Limit:      opts.Limit,
		Total:      total,
		TotalPages: opts.TotalPages(total),
	})
}

func (h *ContactHandler) markRead(w http.ResponseWriter, r *http.Request, id string) {
	if _, ok := requireRole(w, r, model.RoleAdmin); !ok {
		return
	}

	contact, err := h.repo.MarkRead(r.Context(), id)
	if err != nil {
		if storage.IsNotFound(err) {
			api.NotFound(w, "contact message not found")
			return
		}
		h.logger.Error("contact update failed", "err", err)
		api.Internal(w, "failed to update message")
		return
	}
	api.OK(w, "Message marked as read", contact)
}

func (h *ContactHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if _, ok := requireRole(w, r, model.RoleAdmin); !ok {
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		if storage.IsNotFound(err) {
			api.NotFound(w, "contact message not found")
			return
		}
		h.logger.Error("contact delete failed", "err", err)
		api.Internal(w, "failed to delete message")
		return
	}
	api.OK(w, "Message deleted successfully", nil)
}
