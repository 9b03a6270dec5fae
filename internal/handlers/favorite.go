// internal/handlers/favorite.go
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/auctionhive/auction-backend/internal/favorites"
	"github.com/auctionhive/auction-backend/internal/utils"
)

type FavoriteHandler struct {
	favorites *favorites.Service
}

func NewFavoriteHandler(service *favorites.Service) *FavoriteHandler {
	return &FavoriteHandler{favorites: service}
}

// PUT /items/:id/favorite
func (h *FavoriteHandler) FavoriteItem(c *gin.Context) {
	userID, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid item ID", nil)
		return
	}

	if err := h.favorites.Add(c.Request.Context(), userID, itemID); err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"favorited": true})
}

// DELETE /items/:id/favorite
func (h *FavoriteHandler) UnfavoriteItem(c *gin.Context) {
	userID, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	itemID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid item ID", nil)
		return
	}

	if err := h.favorites.Remove(c.Request.Context(), userID, itemID); err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GET /users/me/favorites
func (h *FavoriteHandler) GetMyFavorites(c *gin.Context) {
	userID, exists := utils.GetUserIDFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return
	}

	entries, err := h.favorites.List(c.Request.Context(), userID)
	if err != nil {
		utils.DomainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"favorites": entries})
}
