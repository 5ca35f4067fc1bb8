package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/md-rashed-zaman/courtbook/internal/model"
	"github.com/md-rashed-zaman/courtbook/internal/storage"
)

type fakeFacilityStore struct {
	facilities map[string]*model.Facility
}

func uniqueViolation() error {
	return &pgconn.PgError{Code: "23505", ConstraintName: "facilities_name_active_idx"}
}

func (s *fakeFacilityStore) nameTaken(name, excludeID string) bool {
	for id, f := range s.facilities {
		if id != excludeID && !f.IsDeleted && f.Name == name {
			return true
		}
	}
	return false
}

func (s *fakeFacilityStore) Create(_ context.Context, f model.Facility) error {
	if s.nameTaken(f.Name, "") {
		return uniqueViolation()
	}
	cp := f
	s.facilities[f.ID] = &cp
	return nil
}

func (s *fakeFacilityStore) GetActive(_ context.Context, id string) (model.Facility, error) {
	f, ok := s.facilities[id]
	if !ok || f.IsDeleted {
		return model.Facility{}, pgx.ErrNoRows
	}
	return *f, nil
}

func (s *fakeFacilityStore) GetAny(_ context.Context, id string) (model.Facility, error) {
	f, ok := s.facilities[id]
	if !ok {
		return model.Facility{}, pgx.ErrNoRows
	}
	return *f, nil
}

func (s *fakeFacilityStore) Update(_ context.Context, f model.Facility) (model.Facility, error) {
	cur, ok := s.facilities[f.ID]
	if !ok || cur.IsDeleted {
		return model.Facility{}, pgx.ErrNoRows
	}
	if s.nameTaken(f.Name, f.ID) {
		return model.Facility{}, uniqueViolation()
	}
	*cur = f
	return f, nil
}

func (s *fakeFacilityStore) SoftDelete(_ context.Context, id string) (model.Facility, error) {
	f, ok := s.facilities[id]
	if !ok || f.IsDeleted {
		return model.Facility{}, pgx.ErrNoRows
	}
	f.IsDeleted = true
	return *f, nil
}

func (s *fakeFacilityStore) ListActive(context.Context, storage.ListOptions, string) ([]model.Facility, int, error) {
	return nil, 0, nil
}

func postFacility(h *FacilityHandler, body string) *httptest.ResponseRecorder {
	req := asRole(httptest.NewRequest(http.MethodPost, "/api/facilities", strings.NewReader(body)), model.RoleAdmin, "admin-1")
	rec := httptest.NewRecorder()
	h.Collection(rec, req)
	return rec
}

func TestCreateFacilityDuplicateName(t *testing.T) {
	store := &fakeFacilityStore{facilities: map[string]*model.Facility{}}
	h := NewFacilityHandler(store, testLogger())

	body := `{"name":"Tennis Court Premium","description":"Indoor","pricePerHour":500,"location":"Gulshan"}`
	if rec := postFacility(h, body); rec.Code != http.StatusCreated {
		t.Fatalf("first create: status = %d, want 201", rec.Code)
	}
	if rec := postFacility(h, body); rec.Code != http.StatusConflict {
		t.Fatalf("duplicate create: status = %d, want 409", rec.Code)
	}
	if len(store.facilities) != 1 {
		t.Fatalf("expected 1 stored facility, got %d", len(store.facilities))
	}
}

func TestUpdateFacilityDuplicateName(t *testing.T) {
	store := &fakeFacilityStore{facilities: map[string]*model.Facility{
		"f1": {ID: "f1", Name: "Court A", Description: "d", PricePerHour: 100, Location: "x"},
		"f2": {ID: "f2", Name: "Court B", Description: "d", PricePerHour: 100, Location: "x"},
	}}
	h := NewFacilityHandler(store, testLogger())

	req := asRole(httptest.NewRequest(http.MethodPut, "/api/facilities/f2", strings.NewReader(`{"name":"Court A"}`)), model.RoleAdmin, "admin-1")
	rec := httptest.NewRecorder()
	h.Item(rec, req)
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	if store.facilities["f2"].Name != "Court B" {
		t.Fatalf("rename must not stick on conflict, got %q", store.facilities["f2"].Name)
	}
}

func TestGetDeletedFacilityVisibility(t *testing.T) {
	store := &fakeFacilityStore{facilities: map[string]*model.Facility{
		"f1": {ID: "f1", Name: "Court A", IsDeleted: true},
	}}
	h := NewFacilityHandler(store, testLogger())

	rec := httptest.NewRecorder()
	h.Item(rec, httptest.NewRequest(http.MethodGet, "/api/facilities/f1", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("anonymous get of deleted facility: status = %d, want 404", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.Item(rec, asRole(httptest.NewRequest(http.MethodGet, "/api/facilities/f1", nil), model.RoleAdmin, "admin-1"))
	if rec.Code != http.StatusOK {
		t.Fatalf("admin get of deleted facility: status = %d, want 200", rec.Code)
	}
}
