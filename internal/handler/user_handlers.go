package handler

import (
	"net/http"

	"github.com/fixxhq/fixxcore/internal/handler/dto"
	"github.com/fixxhq/fixxcore/internal/middleware"
)

// handleListCategories lists all task categories.
// @Summary List categories
// @Tags reference
// @Produce json
// @Success 200 {array} dto.CategoryResponse
// @Security BearerAuth
// @Router /categories [get]
func (h *Handler) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categoryRepo.List(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}

	out := make([]dto.CategoryResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, dto.ToCategoryResponse(c))
	}
	respondJSON(w, http.StatusOK, out)
}

// handleGetMyStats returns the caller's marketplace counters.
// @Summary Get my stats
// @Description Tasks posted and completed as client, offers made, tasks completed as fixxer, current FixBits balance.
// @Tags users
// @Produce json
// @Success 200 {object} dto.UserStatsResponse
// @Security BearerAuth
// @Router /users/me/stats [get]
func (h *Handler) handleGetMyStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := middleware.GetUserFromContext(ctx)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Authentication required")
		return
	}

	stats, err := h.userRepo.Stats(ctx, user.ID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToUserStatsResponse(stats))
}
