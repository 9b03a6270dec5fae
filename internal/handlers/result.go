// internal/handlers/result.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/auctionhive/auction-backend/internal/models"
	"github.com/auctionhive/auction-backend/internal/scheduler"
	"github.com/auctionhive/auction-backend/internal/settlement"
	"github.com/auctionhive/auction-backend/internal/utils"
)

type ResultHandler struct {
	settlement *settlement.Service
	scheduler  *scheduler.Scheduler
}

func NewResultHandler(settlement *settlement.Service, scheduler *scheduler.Scheduler) *ResultHandler {
	return &ResultHandler{settlement: settlement, scheduler: scheduler}
}

// GET /items/:id/result
func (h *ResultHandler) GetResult(c *gin.Context) {
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid item ID", nil)
		return
	}

	result, err := h.settlement.ResultForItem(c.Request.Context(), itemID)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"result": result})
}

// GET /users/me/wins
func (h *ResultHandler) GetMyWins(c *gin.Context) {
	userID, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	results, err := h.settlement.ResultsForWinner(c.Request.Context(), userID)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"results": results})
}

// POST /admin/items/:id/close
//
// Settles one auction immediately instead of waiting for the next
// scheduler pass. Settling an already settled item returns the
// existing result.
func (h *ResultHandler) CloseItem(c *gin.Context) {
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid item ID", nil)
		return
	}

	result, err := h.settlement.Settle(c.Request.Context(), itemID)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"result": result})
}

// POST /admin/scheduler/run
func (h *ResultHandler) RunScheduler(c *gin.Context) {
	h.scheduler.ProcessExpired(c.Request.Context())
	utils.SuccessResponse(c, gin.H{"message": "expiry pass completed"})
}

type updateResultStatusRequest struct {
	Status models.ResultStatus `json:"status" binding:"required"`
}

// PATCH /admin/results/:id/status
func (h *ResultHandler) UpdateResultStatus(c *gin.Context) {
	resultID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid result ID", nil)
		return
	}

	var req updateResultStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	result, err := h.settlement.UpdateResultStatus(c.Request.Context(), resultID, req.Status)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"result": result})
}
