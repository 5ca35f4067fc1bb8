package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/md-rashed-zaman/courtbook/internal/model"
	libauth "github.com/md-rashed-zaman/courtbook/libs/auth"
)

type fakeUserStore struct {
	users map[string]model.User // keyed by email
}

func (s *fakeUserStore) Create(_ context.Context, user model.User) error {
	if _, ok := s.users[user.Email]; ok {
		return &pgconn.PgError{Code: "23505"}
	}
	s.users[user.Email] = user
	return nil
}

func (s *fakeUserStore) GetByEmail(_ context.Context, email string) (model.User, error) {
	u, ok := s.users[email]
	if !ok {
		return model.User{}, pgx.ErrNoRows
	}
	return u, nil
}

func (s *fakeUserStore) GetByID(_ context.Context, id string) (model.User, error) {
	for _, u := range s.users {
		if u.ID == id {
			return u, nil
		}
	}
	return model.User{}, pgx.ErrNoRows
}

func TestRegisterIssuesToken(t *testing.T) {
	store := &fakeUserStore{users: map[string]model.User{}}
	h := NewAuthHandler(store, testLogger(), testSecret, 0)

	req := httptest.NewRequest(http.MethodPost, "/api/auth/register",
		strings.NewReader(`{"name":"Alice","email":"Alice@Example.com","password":"secret1"}`))
	rec := httptest.NewRecorder()
	h.Register(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	var body struct {
		Success bool   `json:"success"`
		Token   string `json:"token"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if !body.Success || body.Token == "" {
		t.Fatalf("expected success with token, got %+v", body)
	}

	claims, err := libauth.ParseAndVerifyHS256(body.Token, testSecret)
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if claims.Role != model.RoleUser || claims.Email != "alice@example.com" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	store := &fakeUserStore{users: map[string]model.User{}}
	h := NewAuthHandler(store, testLogger(), testSecret, 0)

	body := `{"name":"Alice","email":"alice@example.com","password":"secret1"}`
	rec := httptest.NewRecorder()
	h.Register(rec, httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body)))
	if rec.Code != http.StatusCreated {
		t.Fatalf("first register: status = %d, want 201", rec.Code)
	}

	rec = httptest.NewRecorder()
	h.Register(rec, httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(body)))
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate register: status = %d, want 409", rec.Code)
	}
}
