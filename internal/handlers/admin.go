package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/md-rashed-zaman/courtbook/internal/api"
	"github.com/md-rashed-zaman/courtbook/internal/model"
	"github.com/md-rashed-zaman/courtbook/internal/storage"
)

type AdminHandler struct {
	users      *storage.UserRepository
	facilities *storage.FacilityRepository
	bookings   *storage.BookingRepository
	logger     *slog.Logger
}

func NewAdminHandler(users *storage.UserRepository, facilities *storage.FacilityRepository, bookings *storage.BookingRepository, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{
		users:      users,
		facilities: facilities,
		bookings:   bookings,
		logger:     logger,
	}
}

const revenueMonths = 6

type statsResponse struct {
	TotalUsers      int                    `json:"totalUsers"`
	TotalFacilities int                    `json:"totalFacilities"`
	TotalBookings   int                    `json:"totalBookings"`
	TotalRevenue    float64                `json:"totalRevenue"`
	MonthlyRevenue  []storage.MonthRevenue `json:"monthlyRevenue"`
}

func (h *AdminHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		api.MethodNotAllowed(w)
		return
	}
	if _, ok := requireRole(w, r, model.RoleAdmin); !ok {
		return
	}

	ctx := r.Context()
	stats, err := h.collectStats(ctx)
	if err != nil {
		h.logger.Error("stats query failed", "err", err)
		api.Internal(w, "failed to load stats")
		return
	}
	api.OK(w, "Stats retrieved successfully", stats)
}

func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		api.MethodNotAllowed(w)
		return
	}
	if _, ok := requireRole(w, r, model.RoleAdmin); !ok {
		return
	}

	ctx := r.Context()
	stats, err := h.collectStats(ctx)
	if err != nil {
		h.logger.Error("stats query failed", "err", err)
		api.Internal(w, "failed to load dashboard")
		return
	}
	recent, err := h.bookings.Recent(ctx, 5)
	if err != nil {
		h.logger.Error("recent bookings query failed", "err", err)
		api.Internal(w, "failed to load dashboard")
		return
	}
	if recent == nil {
		recent = []model.Booking{}
	}

	api.OK(w, "Dashboard retrieved successfully", map[string]any{
		"stats":          stats,
		"recentBookings": recent,
	})
}

func (h *AdminHandler) Users(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		api.MethodNotAllowed(w)
		return
	}
	if _, ok := requireRole(w, r, model.RoleAdmin); !ok {
		return
	}

	opts := storage.ParseListOptions(r.URL.Query())
	users, total, err := h.users.List(r.Context(), opts)
	if err != nil {
		h.logger.Error("user list failed", "err", err)
		api.Internal(w, "failed to list users")
		return
	}
	if users == nil {
		users = []model.User{}
	}
	api.OKWithMeta(w, "Users retrieved successfully", users, api.Meta{
		Page:       opts.Page,
		Limit:      opts.Limit,
		Total:      total,
		TotalPages: opts.TotalPages(total),
	})
}

func (h *AdminHandler) collectStats(ctx context.Context) (statsResponse, error) {
	totalUsers, err := h.users.CountByRole(ctx, model.RoleUser)
	if err != nil {
		return statsResponse{}, err
	}
	totalFacilities, err := h.facilities.CountActive(ctx)
	if err != nil {
		return statsResponse{}, err
	}
	totalBookings, err := h.bookings.Count(ctx)
	if err != nil {
		return statsResponse{}, err
	}
	totalRevenue, err := h.bookings.TotalRevenue(ctx)
	if err != nil {
		return statsResponse{}, err
	}
	monthly, err := h.bookings.MonthlyRevenue(ctx, revenueMonths)
	if err != nil {
		return statsResponse{}, err
	}
	if monthly == nil {
		monthly = []storage.MonthRevenue{}
	}
	return statsResponse{
		TotalUsers:      totalUsers,
		TotalFacilities: totalFacilities,
		TotalBookings:   totalBookings,
		TotalRevenue:    totalRevenue,
		MonthlyRevenue:  monthly,
	}, nil
}
