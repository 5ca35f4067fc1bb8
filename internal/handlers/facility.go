package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/md-rashed-zaman/courtbook/internal/api"
	"github.com/md-rashed-zaman/courtbook/internal/model"
	"github.com/md-rashed-zaman/courtbook/internal/storage"
)

// facilityStore is the storage surface the handler needs; satisfied by
// *storage.FacilityRepository.
type facilityStore interface {
	Create(ctx context.Context, f model.Facility) error
	GetActive(ctx context.Context, id string) (model.Facility, error)
	GetAny(ctx context.Context, id string) (model.Facility, error)
	Update(ctx context.Context, f model.Facility) (model.Facility, error)
	SoftDelete(ctx context.Context, id string) (model.Facility, error)
	ListActive(ctx context.Context, opts storage.ListOptions, location string) ([]model.Facility, int, error)
}

type FacilityHandler struct {
	repo   facilityStore
	logger *slog.Logger
}

func NewFacilityHandler(repo facilityStore, logger *slog.Logger) *FacilityHandler {
	return &FacilityHandler{repo: repo, logger: logger}
}

type facilityRequest struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	PricePerHour *float64 `json:"pricePerHour"`
	Location     string   `json:"location"`
	Image        string   `json:"image"`
}

func validateFacility(req facilityRequest) []api.FieldError {
	var errs []api.FieldError
	if strings.TrimSpace(req.Name) == "" {
		errs = append(errs, api.FieldError{Path: "name", Message: "name is required"})
	}
	if strings.TrimSpace(req.Description) == "" {
		errs = append(errs, api.FieldError{Path: "description", Message: "description is required"})
	}
	if req.PricePerHour == nil {
		errs = append(errs, api.FieldError{Path: "pricePerHour", Message: "pricePerHour is required"})
	} else if *req.PricePerHour < 0 {
		errs = append(errs, api.FieldError{Path: "pricePerHour", Message: "pricePerHour must not be negative"})
	}
	if strings.TrimSpace(req.Location) == "" {
		errs = append(errs, api.FieldError{Path: "location", Message: "location is required"})
	}
	return errs
}

// Collection handles GET (public list) and POST (admin create) on /api/facilities.
func (h *FacilityHandler) Collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		api.MethodNotAllowed(w)
	}
}

// Item handles GET/PUT/DELETE on /api/facilities/{id}.
func (h *FacilityHandler) Item(w http.ResponseWriter, r *http.Request) {
	id := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/facilities/"), "/")
	if id == "" || strings.Contains(id, "/") {
		api.NotFound(w, "facility not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.get(w, r, id)
	case http.MethodPut:
		h.update(w, r, id)
	case http.MethodDelete:
		h.softDelete(w, r, id)
	default:
		api.MethodNotAllowed(w)
	}
}

func (h *FacilityHandler) list(w http.ResponseWriter, r *http.Request) {
	opts := storage.ParseListOptions(r.URL.Query())
	location := strings.TrimSpace(r.URL.Query().Get("location"))

	facilities, total, err := h.repo.ListActive(r.Context(), opts, location)
	if err != nil {
		h.logger.Error("facility list failed", "err", err)
		api.Internal(w, "failed to list facilities")
		return
	}
	if facilities == nil {
		facilities = []model.Facility{}
	}
	api.OKWithMeta(w, "Facilities retrieved successfully", facilities, api.Meta{
		Page:       opts.Page,
		Limit:      opts.Limit,
		Total:      total,
		TotalPages: opts.TotalPages(total),
	})
}

func (h *FacilityHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	var facility model.Facility
	var err error
	// Admins can still inspect soft-deleted facilities.
	if claims := ClaimsFromContext(r.Context()); claims != nil && claims.Role == model.RoleAdmin {
		facility, err = h.repo.GetAny(r.Context(), id)
	} else {
		facility, err = h.repo.GetActive(r.Context(), id)
	}
	if err != nil {
		if storage.IsNotFound(err) {
			api.NotFound(w, "facility not found")
			return
		}
		h.logger.Error("facility lookup failed", "err", err)
		api.Internal(w, "failed to load facility")
		return
	}
	api.OK(w, "Facility retrieved successfully", facility)
}

func (h *FacilityHandler) create(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireRole(w, r, model.RoleAdmin); !ok {
		return
	}

	var req facilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.BadRequest(w, "invalid json body")
		return
	}
	if errs := validateFacility(req); len(errs) > 0 {
		api.ValidationError(w, "validation failed", errs)
		return
	}

	facility := model.Facility{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(req.Name),
		Description:  strings.TrimSpace(req.Description),
		PricePerHour: *req.PricePerHour,
		Location:     strings.TrimSpace(req.Location),
		ImageURL:     strings.TrimSpace(req.Image),
	}
	if err := h.repo.Create(r.Context(), facility); err != nil {
		if storage.IsDuplicate(err) {
			api.Conflict(w, "a facility with this name already exists")
			return
		}
		h.logger.Error("facility insert failed", "err", err)
		api.Internal(w, "failed to create facility")
		return
	}

	created, err := h.repo.GetActive(r.Context(), facility.ID)
	if err != nil {
		created = facility
	}
	api.Created(w, "Facility added successfully", created)
}

func (h *FacilityHandler) update(w http.ResponseWriter, r *http.Request, id string) {
	if _, ok := requireRole(w, r, model.RoleAdmin); !ok {
		return
	}

	current, err := h.repo.GetActive(r.Context(), id)
	if err != nil {
		if storage.IsNotFound(err) {
			api.NotFound(w, "facility not found")
			return
		}
		h.logger.Error("facility lookup failed", "err", err)
		api.Internal(w, "failed to load facility")
		return
	}

	var req facilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.BadRequest(w, "invalid json body")
		return
	}

	// Partial update: absent fields keep their current values.
	if strings.TrimSpace(req.Name) != "" {
		current.Name = strings.TrimSpace(req.Name)
	}
	if strings.TrimSpace(req.Description) != "" {
		current.Description = strings.TrimSpace(req.Description)
	}
	if req.PricePerHour != nil {
		if *req.PricePerHour < 0 {
			api.ValidationError(w, "validation failed", []api.FieldError{
				{Path: "pricePerHour", Message: "pricePerHour must not be negative"},
			})
			return
		}
		current.PricePerHour = *req.PricePerHour
	}
	if strings.TrimSpace(req.Location) != "" {
		current.Location = strings.TrimSpace(req.Location)
	}
	if strings.TrimSpace(req.Image) != "" {
		current.ImageURL = strings.TrimSpace(req.Image)
	}

	updated, err := h.repo.Update(r.Context(), current)
	if err != nil {
		if storage.IsDuplicate(err) {
			api.Conflict(w, "a facility with this name already exists")
			return
		}
		if storage.IsNotFound(err) {
			api.NotFound(w, "facility not found")
			return
		}
		h.logger.Error("facility update failed", "err", err)
		api.Internal(w, "failed to update facility")
		return
	}
	api.OK(w, "Facility updated successfully", updated)
}

func (h *FacilityHandler) softDelete(w http.ResponseWriter, r *http.Request, id string) {
	if _, ok := requireRole(w, r, model.RoleAdmin); !ok {
		return
	}

	deleted, err := h.repo.SoftDelete(r.Context(), id)
	if err != nil {
		if storage.IsNotFound(err) {
			api.NotFound(w, "facility not found")
			return
		}
		h.logger.Error("facility delete failed", "err", err)
		api.Internal(w, "failed to delete facility")
		return
	}
	api.OK(w, "Facility deleted successfully", deleted)
}
