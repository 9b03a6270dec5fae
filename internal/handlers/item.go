// internal/handlers/item.go
package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/auctionhive/auction-backend/internal/items"
	"github.com/auctionhive/auction-backend/internal/models"
	"github.com/auctionhive/auction-backend/internal/store"
	"github.com/auctionhive/auction-backend/internal/utils"
)

type ItemHandler struct {
	items *items.Service
}

func NewItemHandler(service *items.Service) *ItemHandler {
	return &ItemHandler{items: service}
}

// GET /items
func (h *ItemHandler) GetItems(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	filter := store.ItemFilter{
		Search: params.Search,
		Offset: params.Offset(),
		Limit:  params.Limit,
	}
	if params.Status != "" {
		status := models.ItemStatus(params.Status)
		filter.Status = &status
	}
	if params.Category != "" {
		categoryID, err := uuid.Parse(params.Category)
		if err != nil {
			utils.BadRequestResponse(c, "Invalid category ID", nil)
			return
		}
		filter.CategoryID = &categoryID
	}
	if sellerStr := c.Query("seller_id"); sellerStr != "" {
		sellerID, err := uuid.Parse(sellerStr)
		if err != nil {
			utils.BadRequestResponse(c, "Invalid seller ID", nil)
			return
		}
		filter.SellerID = &sellerID
	}

	list, total, err := h.items.List(c.Request.Context(), filter)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.PaginatedResponse(c, utils.CreatePaginationResult(list, total, params))
}

// GET /items/:id
func (h *ItemHandler) GetItem(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid item ID", nil)
		return
	}

	item, err := h.items.Get(c.Request.Context(), id)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"item": item})
}

// POST /items
func (h *ItemHandler) CreateItem(c *gin.Context) {
	sellerID, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	var req items.CreateItemInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	item, err := h.items.Create(c.Request.Context(), sellerID, req)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{"item": item})
}

// PATCH /items/:id
func (h *ItemHandler) UpdateItem(c *gin.Context) {
	callerID, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid item ID", nil)
		return
	}

	var req items.UpdateItemInput
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	item, err := h.items.Update(c.Request.Context(), id, callerID, req)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"item": item})
}

type publishItemRequest struct {
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   time.Time  `json:"end_time" binding:"required"`
}

// POST /items/:id/publish
func (h *ItemHandler) PublishItem(c *gin.Context) {
	callerID, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid item ID", nil)
		return
	}

	var req publishItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input", err.Error())
		return
	}

	item, err := h.items.Publish(c.Request.Context(), id, callerID, req.StartTime, req.EndTime)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"item": item})
}

// POST /items/:id/cancel
func (h *ItemHandler) CancelItem(c *gin.Context) {
	callerID, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid item ID", nil)
		return
	}

	result, err := h.items.Cancel(c.Request.Context(), id, callerID)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"result": result})
}

// GET /categories
func (h *ItemHandler) GetCategories(c *gin.Context) {
	categories, err := h.items.Categories(c.Request.Context())
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"categories": categories})
}
