package handler

import (
	"encoding/json"
	"net/http"

	"github.com/fixxhq/fixxcore/internal/handler/dto"
	"github.com/fixxhq/fixxcore/internal/middleware"
	"github.com/fixxhq/fixxcore/internal/service"
)

// handleCreateOffer places a bid on a posted task.
// @Summary Create an offer
// @Description Fixxer only. Costs one FixBit; the fixxer profile is created on first offer.
// @Tags offers
// @Accept json
// @Produce json
// @Param id path string true "Task ID"
// @Param request body dto.CreateOfferRequest true "Offer details"
// @Success 201 {object} dto.OfferResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /tasks/{id}/offers [post]
func (h *Handler) handleCreateOffer(w http.ResponseWriter, r *http.Request) {
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

	var req dto.CreateOfferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if req.Price == "" {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "price is required")
		return
	}

	offer, err := h.offerService.CreateOffer(ctx, taskID, user.ID, service.CreateOfferInput{
		Price:             req.Price,
		Message:           req.Message,
		EstimatedDuration: req.EstimatedDuration,
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, dto.ToOfferResponse(offer))
}

// handleListTaskOffers lists a task's pending offers for its client.
// @Summary List offers on a task
// @Description Client only. Returns pending offers with fixxer snapshots.
// @Tags offers
// @Produce json
// @Param id path string true "Task ID"
// @Success 200 {array} dto.TaskOfferResponse
// @Failure 403 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /tasks/{id}/offers [get]
func (h *Handler) handleListTaskOffers(w http.ResponseWriter, r *http.Request) {
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

	offers, err := h.offerService.ListTaskOffers(ctx, taskID, user.ID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToTaskOfferResponses(offers))
}

// handleListMyOffers lists the caller's own offers.
// @Summary List my offers
// @Tags offers
// @Produce json
// @Success 200 {array} dto.MyOfferResponse
// @Security BearerAuth
// @Router /offers/my [get]
func (h *Handler) handleListMyOffers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := middleware.GetUserFromContext(ctx)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Authentication required")
		return
	}

	offers, err := h.offerService.ListMyOffers(ctx, user.ID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToMyOfferResponses(offers))
}

// handleAcceptOffer confirms an offer and starts the work.
// @Summary Accept an offer
// @Description Client only. Accepts this offer, rejects siblings, assigns the fixxer and creates the booking at the offered price.
// @Tags offers
// @Produce json
// @Param id path string true "Offer ID"
// @Success 200 {object} dto.BookingResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /offers/{id}/accept [post]
func (h *Handler) handleAcceptOffer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := middleware.GetUserFromContext(ctx)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Authentication required")
		return
	}

	offerID, ok := extractID(w, r)
	if !ok {
		return
	}

	booking, err := h.offerService.AcceptOffer(ctx, offerID, user.ID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToBookingResponse(booking))
}

// handleRejectOffer declines a pending offer.
// @Summary Reject an offer
// @Tags offers
// @Produce json
// @Param id path string true "Offer ID"
// @Success 200 {object} dto.OfferResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /offers/{id}/reject [post]
func (h *Handler) handleRejectOffer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := middleware.GetUserFromContext(ctx)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Authentication required")
		return
	}

	offerID, ok := extractID(w, r)
	if !ok {
		return
	}

	offer, err := h.offerService.RejectOffer(ctx, offerID, user.ID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToOfferResponse(offer))
}

// handleWithdrawOffer pulls the caller's pending offer back.
// @Summary Withdraw my offer
// @Tags offers
// @Produce json
// @Param id path string true "Offer ID"
// @Success 200 {object} dto.OfferResponse
// @Failure 403 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /offers/{id}/withdraw [post]
func (h *Handler) handleWithdrawOffer(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := middleware.GetUserFromContext(ctx)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "INVALID_TOKEN", "Authentication required")
		return
	}

	offerID, ok := extractID(w, r)
	if !ok {
		return
	}

	offer, err := h.offerService.WithdrawOffer(ctx, offerID, user.ID)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.ToOfferResponse(offer))
}
