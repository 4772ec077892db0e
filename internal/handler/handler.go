package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/fixxhq/fixxcore/docs" // Import generated docs
	"github.com/fixxhq/fixxcore/internal/handler/dto"
	"github.com/fixxhq/fixxcore/internal/middleware"
	"github.com/fixxhq/fixxcore/internal/notify"
	"github.com/fixxhq/fixxcore/internal/repository"
	"github.com/fixxhq/fixxcore/internal/service"
)

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	pool              *pgxpool.Pool
	taskService       *service.TaskService
	offerService      *service.OfferService
	completionService *service.CompletionService
	statusService     *service.StatusService
	categoryRepo      *repository.CategoryRepository
	userRepo          *repository.UserRepository
	authMiddleware    *middleware.AuthMiddleware
}

// New creates a new Handler instance with all dependencies.
func New(pool *pgxpool.Pool, notifier notify.Notifier) *Handler {
	// Create repositories
	taskRepo := repository.NewTaskRepository(pool)
	offerRepo := repository.NewOfferRepository(pool)
	bookingRepo := repository.NewBookingRepository(pool)
	timelineRepo := repository.NewTimelineRepository(pool)
	categoryRepo := repository.NewCategoryRepository(pool)
	profileRepo := repository.NewProfileRepository(pool)
	replenishRepo := repository.NewReplenishmentRepository(pool)
	userRepo := repository.NewUserRepository(pool)

	// Create services
	taskService := service.NewTaskService(pool, taskRepo, offerRepo, bookingRepo, timelineRepo, categoryRepo, notifier)
	offerService := service.NewOfferService(pool, taskRepo, offerRepo, bookingRepo, timelineRepo, profileRepo, replenishRepo, userRepo, notifier)
	completionService := service.NewCompletionService(pool, taskRepo, bookingRepo, timelineRepo, profileRepo, userRepo, notifier)
	statusService := service.NewStatusService(taskRepo, bookingRepo, offerRepo, timelineRepo, categoryRepo, userRepo)

	// Create middleware
	authMiddleware := middleware.NewAuthMiddleware(userRepo)

	return &Handler{
		pool:              pool,
		taskService:       taskService,
		offerService:      offerService,
		completionService: completionService,
		statusService:     statusService,
		categoryRepo:      categoryRepo,
		userRepo:          userRepo,
		authMiddleware:    authMiddleware,
	}
}

// RegisterRoutes registers all HTTP routes.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	// Health check
	mux.HandleFunc("GET /healthz", h.handleHealthz)

	// Swagger UI
	mux.HandleFunc("GET /swagger/", httpSwagger.Handler())

	// Tasks
	mux.Handle("POST /api/v1/tasks", h.auth(h.handleCreateTask))
	mux.Handle("GET /api/v1/tasks", h.auth(h.handleListLatestTasks))
	mux.Handle("GET /api/v1/tasks/my", h.auth(h.handleListMyTasks))
	mux.Handle("GET /api/v1/tasks/assigned", h.auth(h.handleListAssignedTasks))
	mux.Handle("GET /api/v1/tasks/{id}", h.auth(h.handleGetTask))
	mux.Handle("PATCH /api/v1/tasks/{id}", h.auth(h.handleUpdateTask))
	mux.Handle("DELETE /api/v1/tasks/{id}", h.auth(h.handleDeleteTask))
	mux.Handle("GET /api/v1/tasks/{id}/status", h.auth(h.handleGetTaskStatus))
	mux.Handle("POST /api/v1/tasks/{id}/cancel", h.auth(h.handleCancelTask))
	mux.Handle("POST /api/v1/tasks/{id}/cancel-ongoing", h.auth(h.handleCancelOngoingTask))

	// Completion handshake
	mux.Handle("POST /api/v1/tasks/{id}/complete", h.auth(h.handleRequestCompletion))
	mux.Handle("POST /api/v1/tasks/{id}/approve-completion", h.auth(h.handleApproveCompletion))
	mux.Handle("POST /api/v1/tasks/{id}/reject-completion", h.auth(h.handleRejectCompletion))

	// Offers
	mux.Handle("POST /api/v1/tasks/{id}/offers", h.auth(h.handleCreateOffer))
	mux.Handle("GET /api/v1/tasks/{id}/offers", h.auth(h.handleListTaskOffers))
	mux.Handle("GET /api/v1/offers/my", h.auth(h.handleListMyOffers))
	mux.Handle("POST /api/v1/offers/{id}/accept", h.auth(h.handleAcceptOffer))
	mux.Handle("POST /api/v1/offers/{id}/reject", h.auth(h.handleRejectOffer))
	mux.Handle("POST /api/v1/offers/{id}/withdraw", h.auth(h.handleWithdrawOffer))

	// Reference and profile data
	mux.Handle("GET /api/v1/categories", h.auth(h.handleListCategories))
	mux.Handle("GET /api/v1/users/me/stats", h.auth(h.handleGetMyStats))
}

func (h *Handler) auth(fn http.HandlerFunc) http.Handler {
	return h.authMiddleware.Authenticate(fn)
}

// handleHealthz returns 200 OK if the database is reachable.
func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.pool.Ping(ctx); err != nil {
		slog.Error("database health check failed", "error", err)
		http.Error(w, "database unavailable", http.StatusServiceUnavailable)
		return
	}

	w.WriteHeader(http.StatusOK)
}

// Ping checks if the database is reachable (used for testing).
func (h *Handler) Ping(ctx context.Context) error {
	return h.pool.Ping(ctx)
}

// respondJSON writes a JSON response with the given status code.
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("failed to encode JSON response", "error", err)
	}
}

// respondError writes a standard error response.
func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, dto.NewErrorResponse(code, message))
}

// respondDomainError maps a domain error and writes it.
func respondDomainError(w http.ResponseWriter, err error) {
	status, code, message := dto.MapDomainError(err)
	respondError(w, status, code, message)
}

// extractID extracts and validates a UUID path parameter.
// Returns (id, true) if valid, ("", false) if invalid (error already sent to client).
func extractID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.PathValue("id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "id is required")
		return "", false
	}

	if _, err := uuid.Parse(id); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "id must be a valid UUID")
		return "", false
	}

	return id, true
}
