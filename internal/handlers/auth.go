package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/md-rashed-zaman/courtbook/internal/api"
	"github.com/md-rashed-zaman/courtbook/internal/model"
	"github.com/md-rashed-zaman/courtbook/internal/storage"
	"github.com/md-rashed-zaman/courtbook/libs/auth"
	"golang.org/x/crypto/bcrypt"
)

// userStore is the storage surface the handler needs; satisfied by
// *storage.UserRepository.
type userStore interface {
	Create(ctx context.Context, user model.User) error
	GetByEmail(ctx context.Context, email string) (model.User, error)
	GetByID(ctx context.Context, id string) (model.User, error)
}

type AuthHandler struct {
	users     userStore
	logger    *slog.Logger
	jwtSecret string
	tokenTTL  time.Duration
}

func NewAuthHandler(users userStore, logger *slog.Logger, jwtSecret string, tokenTTL time.Duration) *AuthHandler {
	if tokenTTL <= 0 {
		tokenTTL = 7 * 24 * time.Hour
	}
	return &AuthHandler{
		users:     users,
		logger:    logger,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
	}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Phone    string `json:"phone"`
	Address  string `json:"address"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func validateRegister(req registerRequest) []api.FieldError {
	var errs []api.FieldError
	if strings.TrimSpace(req.Name) == "" {
		errs = append(errs, api.FieldError{Path: "name", Message: "name is required"})
	}
	email := strings.TrimSpace(req.Email)
	if email == "" {
		errs = append(errs, api.FieldError{Path: "email", Message: "email is required"})
	} else if !strings.Contains(email, "@") || strings.ContainsAny(email, " \t") {
		errs = append(errs, api.FieldError{Path: "email", Message: "email is not valid"})
	}
	if len(req.Password) < 6 {
		errs = append(errs, api.FieldError{Path: "password", Message: "password must be at least 6 characters"})
	}
	return errs
}

// Register creates a regular user account.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	h.register(w, r, model.RoleUser, "User registered successfully")
}

// RegisterAdmin creates an admin account; callers must already be admins.
func (h *AuthHandler) RegisterAdmin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		api.MethodNotAllowed(w)
		return
	}
	if _, ok := requireRole(w, r, model.RoleAdmin); !ok {
		return
	}
	h.register(w, r, model.RoleAdmin, "Admin registered successfully")
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request, role, message string) {
	if r.Method != http.MethodPost {
		api.MethodNotAllowed(w)
		return
	}

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.BadRequest(w, "invalid json body")
		return
	}
	if errs := validateRegister(req); len(errs) > 0 {
		api.ValidationError(w, "validation failed", errs)
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		api.Internal(w, "failed to hash password")
		return
	}

	user := model.User{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: string(hash),
		Phone:        strings.TrimSpace(req.Phone),
		Role:         role,
		Address:      strings.TrimSpace(req.Address),
	}
	if err := h.users.Create(r.Context(), user); err != nil {
		if storage.IsDuplicate(err) {
			api.Conflict(w, "email already registered")
			return
		}
		h.logger.Error("user insert failed", "err", err)
		api.Internal(w, "failed to create user")
		return
	}

	token, err := h.issueToken(user)
	if err != nil {
		h.logger.Error("token issue failed", "err", err)
		api.Created(w, message, user)
		return
	}
	api.CreatedWithToken(w, message, token, user)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		api.MethodNotAllowed(w)
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.BadRequest(w, "invalid json body")
		return
	}
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		api.BadRequest(w, "email and password are required")
		return
	}

	user, err := h.users.GetByEmail(r.Context(), email)
	if err != nil {
		if storage.IsNotFound(err) {
			api.Unauthorized(w, "invalid credentials")
			return
		}
		h.logger.Error("user lookup failed", "err", err)
		api.Internal(w, "failed to load user")
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		api.Unauthorized(w, "invalid credentials")
		return
	}

	token, err := h.issueToken(user)
	if err != nil {
		api.Internal(w, "failed to issue token")
		return
	}
	api.OKWithToken(w, "User logged in successfully", token, user)
}

// Logout is a stateless acknowledgement: the client discards its token.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		api.MethodNotAllowed(w)
		return
	}
	api.OK(w, "User logged out successfully", nil)
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		api.MethodNotAllowed(w)
		return
	}
	claims, ok := requireRole(w, r, model.RoleAdmin, model.RoleUser)
	if !ok {
		return
	}

	user, err := h.users.GetByID(r.Context(), claims.Sub)
	if err != nil {
		if storage.IsNotFound(err) {
			api.NotFound(w, "user not found")
			return
		}
		h.logger.Error("user lookup failed", "err", err)
		api.Internal(w, "failed to load user")
		return
	}
	api.OK(w, "User retrieved successfully", user)
}

func (h *AuthHandler) issueToken(user model.User) (string, error) {
	now := time.Now()
	return auth.SignHS256(auth.Claims{
		Sub:   user.ID,
		Email: user.Email,
		Role:  user.Role,
		Iat:   now.Unix(),
		Exp:   now.Add(h.tokenTTL).Unix(),
	}, h.jwtSecret)
}
