package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/fixxhq/fixxcore/internal/domain"
	"github.com/fixxhq/fixxcore/internal/handler/dto"
	"github.com/fixxhq/fixxcore/internal/middleware"
	"github.com/fixxhq/fixxcore/internal/repository"
	"github.com/fixxhq/fixxcore/internal/service"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// parsePagination reads limit/offset query parameters with defaults.
func parsePagination(r *http.Request) (limit, offset int) {
	limit = defaultPageLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}

// handleCreateTask posts a new task.
// @Summary Create a new task
// @Description Creates a task in posted status. Title must be at least 10 characters, description at least 25, budget positive.
// @Tags tasks
// @Accept json
// @Produce json
// @Param request body dto.CreateTaskRequest true "Task creation request"
// @Success 201 {object} dto.TaskResponse
// @Failure 400 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /tasks [post]
func (h *Handler) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := middleware.GetUserFromContext(ctx)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Authentication required")
		return
	}

	var req dto.CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	if req.CategoryID == "" || req.Title == "" || req.Description == "" || req.Budget == "" || req.Location == nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST",
			"category_id, title, description, location, and budget are required")
		return
	}

	task, err := h.taskService.CreateTask(ctx, user.ID, service.CreateTaskInput{
		CategoryID:      req.CategoryID,
		Title:           req.Title,
		Description:     req.Description,
		Location:        domain.Point{X: req.Location.X, Y: req.Location.Y},
		LocationAddress: req.LocationAddress,
		ScheduledAt:     req.ScheduledAt,
		IsAsap:          req.IsAsap,
		Budget:          req.Budget,
		PriceType:       domain.PriceType(req.PriceType),
		OpenToOffer:     req.OpenToOffer,
		TypeOfTask:      domain.TaskType(req.TypeOfTask),
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, dto.ToTaskResponse(task))
}

// handleListLatestTasks lists the newest posted tasks.
// @Summary List latest posted tasks
// @Tags tasks
// @Produce json
// @Param limit query int false "Page size (default 20, max 100)"
// @Param offset query int false "Page offset"
// @Success 200 {object} dto.TasksListResponse
// @Security BearerAuth
// @Router /tasks [get]
func (h *Handler) handleListLatestTasks(w http.ResponseWriter, r *http.Request) {
	limit, offset := parsePagination(r)

	tasks, total, err := h.taskService.ListLatest(r.Context(), limit, offset)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToTasksListResponse(tasks, total, limit, offset))
}

// handleListMyTasks lists the tasks the caller posted.
// @Summary List my posted tasks
// @Tags tasks
// @Produce json
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} dto.TasksListResponse
// @Security BearerAuth
// @Router /tasks/my [get]
func (h *Handler) handleListMyTasks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := middleware.GetUserFromContext(ctx)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Authentication required")
		return
	}

	limit, offset := parsePagination(r)

	tasks, total, err := h.taskService.ListMyTasks(ctx, user.ID, limit, offset)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToTasksListResponse(tasks, total, limit, offset))
}

// handleListAssignedTasks lists the tasks assigned to the caller.
// @Summary List tasks assigned to me
// @Tags tasks
// @Produce json
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} dto.TasksListResponse
// @Security BearerAuth
// @Router /tasks/assigned [get]
func (h *Handler) handleListAssignedTasks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := middleware.GetUserFromContext(ctx)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Authentication required")
		return
	}

	limit, offset := parsePagination(r)

	tasks, total, err := h.taskService.ListAssignedTasks(ctx, user.ID, limit, offset)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToTasksListResponse(tasks, total, limit, offset))
}

// handleGetTask retrieves a single task.
// @Summary Get task details
// @Tags tasks
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} dto.TaskResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /tasks/{id} [get]
func (h *Handler) handleGetTask(w http.ResponseWriter, r *http.Request) {
	taskID, ok := extractID(w, r)
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(r.Context(), taskID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToTaskResponse(task))
}

// handleUpdateTask applies a partial edit to a draft or posted task.
// @Summary Update a task
// @Description Client-only. Legal only while the task is draft or posted.
// @Tags tasks
// @Accept json
// @Produce json
// @Param id path string true "Task ID"
// @Param request body dto.UpdateTaskRequest true "Fields to update"
// @Success 200 {object} dto.TaskResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /tasks/{id} [patch]
func (h *Handler) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := middleware.GetUserFromContext(ctx)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Authentication required")
		return
	}

	taskID, ok := extractID(w, r)
	if !ok {
		return
	}

	var req dto.UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	update := repository.TaskUpdate{
		Title:           req.Title,
		Description:     req.Description,
		CategoryID:      req.CategoryID,
		LocationAddress: req.LocationAddress,
		ScheduledAt:     req.ScheduledAt,
		IsAsap:          req.IsAsap,
		Budget:          req.Budget,
		OpenToOffer:     req.OpenToOffer,
	}
	if req.Location != nil {
		update.Location = &domain.Point{X: req.Location.X, Y: req.Location.Y}
	}
	if req.PriceType != nil {
		pt := domain.PriceType(*req.PriceType)
		if !pt.IsValid() {
			respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "price_type must be 'per_hour' or 'total'")
			return
		}
		update.PriceType = &pt
	}
	if req.TypeOfTask != nil {
		tt := domain.TaskType(*req.TypeOfTask)
		if !tt.IsValid() {
			respondError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", "type_of_task must be 'remote' or 'in_person'")
			return
		}
		update.TypeOfTask = &tt
	}

	task, err := h.taskService.UpdateTask(ctx, taskID, user.ID, update)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToTaskResponse(task))
}

// handleDeleteTask removes a task and its dependent rows.
// @Summary Delete a task
// @Description Client-only. Legal for completed, cancelled, or posted tasks without a booking.
// @Tags tasks
// @Param id path string true "Task ID"
// @Success 204
// @Failure 403 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /tasks/{id} [delete]
func (h *Handler) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := middleware.GetUserFromContext(ctx)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Authentication required")
		return
	}

	taskID, ok := extractID(w, r)
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(ctx, taskID, user.ID); err != nil {
		respondDomainError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleGetTaskStatus returns the full status payload for a task.
// @Summary Get task status
// @Description Task, category, parties, booking and accepted-offer snapshots, reconstructed timeline, caller role and available actions.
// @Tags tasks
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} dto.TaskStatusResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /tasks/{id}/status [get]
func (h *Handler) handleGetTaskStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := middleware.GetUserFromContext(ctx)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Authentication required")
		return
	}

	taskID, ok := extractID(w, r)
	if !ok {
		return
	}

	info, err := h.statusService.GetTaskStatus(ctx, taskID, user.ID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToTaskStatusResponse(info))
}

// handleCancelTask cancels a task that has no booking yet.
// @Summary Cancel a posted task
// @Tags tasks
// @Accept json
// @Produce json
// @Param id path string true "Task ID"
// @Param request body dto.CancelTaskRequest false "Optional reason"
// @Success 200 {object} dto.TaskResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /tasks/{id}/cancel [post]
func (h *Handler) handleCancelTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := middleware.GetUserFromContext(ctx)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Authentication required")
		return
	}

	taskID, ok := extractID(w, r)
	if !ok {
		return
	}

	var req dto.CancelTaskRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
			return
		}
	}

	task, err := h.taskService.CancelPostedTask(ctx, taskID, user.ID, req.Reason)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToTaskResponse(task))
}

// handleCancelOngoingTask cancels an in_progress task.
// @Summary Cancel an ongoing task
// @Description Either the client or the assigned fixxer can cancel work in progress. Tasks awaiting completion approval cannot be cancelled.
// @Tags tasks
// @Accept json
// @Produce json
// @Param id path string true "Task ID"
// @Param request body dto.CancelTaskRequest false "Optional reason"
// @Success 200 {object} dto.TaskResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /tasks/{id}/cancel-ongoing [post]
func (h *Handler) handleCancelOngoingTask(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := middleware.GetUserFromContext(ctx)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Authentication required")
		return
	}

	taskID, ok := extractID(w, r)
	if !ok {
		return
	}

	var req dto.CancelTaskRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
			return
		}
	}

	task, err := h.taskService.CancelOngoingTask(ctx, taskID, user.ID, req.Reason)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToTaskResponse(task))
}

// handleRequestCompletion marks the fixxer's work as done.
// @Summary Request task completion
// @Description Assigned fixxer only. Moves the task to pending_completion for client review.
// @Tags completion
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} dto.TaskResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /tasks/{id}/complete [post]
func (h *Handler) handleRequestCompletion(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := middleware.GetUserFromContext(ctx)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Authentication required")
		return
	}

	taskID, ok := extractID(w, r)
	if !ok {
		return
	}

	task, err := h.completionService.RequestCompletion(ctx, taskID, user.ID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToTaskResponse(task))
}

// handleApproveCompletion finalizes the task as completed.
// @Summary Approve task completion
// @Description Client only. Completes the task and its booking.
// @Tags completion
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {object} dto.TaskResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /tasks/{id}/approve-completion [post]
func (h *Handler) handleApproveCompletion(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := middleware.GetUserFromContext(ctx)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Authentication required")
		return
	}

	taskID, ok := extractID(w, r)
	if !ok {
		return
	}

	task, err := h.completionService.ApproveCompletion(ctx, taskID, user.ID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToTaskResponse(task))
}

// handleRejectCompletion sends the task back to in_progress.
// @Summary Reject task completion
// @Description Client only. Requires a non-empty reason; the task returns to in_progress.
// @Tags completion
// @Accept json
// @Produce json
// @Param id path string true "Task ID"
// @Param request body dto.RejectCompletionRequest true "Rejection reason"
// @Success 200 {object} dto.TaskResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /tasks/{id}/reject-completion [post]
func (h *Handler) handleRejectCompletion(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := middleware.GetUserFromContext(ctx)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Authentication required")
		return
	}

	taskID, ok := extractID(w, r)
	if !ok {
		return
	}

	var req dto.RejectCompletionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	task, err := h.completionService.RejectCompletion(ctx, taskID, user.ID, req.Reason)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToTaskResponse(task))
}
