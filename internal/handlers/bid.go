// internal/handlers/bid.go
package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/auctionhive/auction-backend/internal/bidding"
	"github.com/auctionhive/auction-backend/internal/utils"
)

type BidHandler struct {
	engine *bidding.Engine
}

func NewBidHandler(engine *bidding.Engine) *BidHandler {
	return &BidHandler{engine: engine}
}

type placeBidRequest struct {
	Amount    decimal.Decimal `json:"amount" binding:"required"`
	RequestID string          `json:"request_id"`
}

// POST /items/:id/bids
func (h *BidHandler) PlaceBid(c *gin.Context) {
	bidderID, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid item ID", nil)
		return
	}

	var req placeBidRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	bid, err := h.engine.PlaceBid(c.Request.Context(), bidding.PlaceBidInput{
		ItemID:    itemID,
		BidderID:  bidderID,
		Amount:    req.Amount,
		RequestID: req.RequestID,
	})
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{"bid": bid})
}

// GET /items/:id/bids
func (h *BidHandler) GetBidsForItem(c *gin.Context) {
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid item ID", nil)
		return
	}

	afterSeq := int64(0)
	if raw := c.Query("after_seq"); raw != "" {
		afterSeq, err = strconv.ParseInt(raw, 10, 64)
		if err != nil || afterSeq < 0 {
			utils.BadRequestResponse(c, "Invalid after_seq", nil)
			return
		}
	}

	bids, err := h.engine.BidsForItem(c.Request.Context(), itemID, afterSeq)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"bids": bids})
}

// GET /items/:id/bids/highest
func (h *BidHandler) GetHighestBid(c *gin.Context) {
	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid item ID", nil)
		return
	}

	bid, err := h.engine.HighestBid(c.Request.Context(), itemID)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"bid": bid})
}

// GET /users/me/bids
func (h *BidHandler) GetMyBids(c *gin.Context) {
	bidderID, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	bids, err := h.engine.UserBids(c.Request.Context(), bidderID)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"bids": bids})
}

// GET /admin/bids/stats
func (h *BidHandler) GetBidStats(c *gin.Context) {
	stats, err := h.engine.Stats(c.Request.Context())
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"stats": stats})
}
