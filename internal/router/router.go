// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/auctionhive/auction-backend/internal/bidding"
	"github.com/auctionhive/auction-backend/internal/broadcast"
	"github.com/auctionhive/auction-backend/internal/config"
	"github.com/auctionhive/auction-backend/internal/favorites"
	"github.com/auctionhive/auction-backend/internal/handlers"
	"github.com/auctionhive/auction-backend/internal/identity"
	"github.com/auctionhive/auction-backend/internal/items"
	"github.com/auctionhive/auction-backend/internal/middleware"
	"github.com/auctionhive/auction-backend/internal/scheduler"
	"github.com/auctionhive/auction-backend/internal/settlement"
)

// Deps carries the long-lived components the routes are built on.
type Deps struct {
	Engine     *bidding.Engine
	Items      *items.Service
	Settlement *settlement.Service
	Scheduler  *scheduler.Scheduler
	Bus        *broadcast.Broadcaster
	Favorites  *favorites.Service
	Resolver   identity.Resolver
	Log        *logrus.Logger
}

func Initialize(cfg *config.Config, deps Deps) *gin.Engine {
	bidHandler := handlers.NewBidHandler(deps.Engine)
	itemHandler := handlers.NewItemHandler(deps.Items)
	resultHandler := handlers.NewResultHandler(deps.Settlement, deps.Scheduler)
	eventHandler := handlers.NewEventHandler(deps.Bus)
	favoriteHandler := handlers.NewFavoriteHandler(deps.Favorites)

	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Log))
	r.Use(middleware.RequestLogger(deps.Log))
	r.Use(middleware.CORS())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		// Item routes
		itemsGroup := v1.Group("/items")
		{
			itemsGroup.GET("", itemHandler.GetItems)
			itemsGroup.GET("/:id", itemHandler.GetItem)
			itemsGroup.GET("/:id/bids", bidHandler.GetBidsForItem)
			itemsGroup.GET("/:id/bids/highest", bidHandler.GetHighestBid)
			itemsGroup.GET("/:id/result", resultHandler.GetResult)
			itemsGroup.GET("/:id/events", eventHandler.StreamItemEvents)

			// Authenticated routes
			protected := itemsGroup.Group("")
			protected.Use(middleware.AuthRequired(deps.Resolver))
			{
				protected.POST("", itemHandler.CreateItem)
				protected.PATCH("/:id", itemHandler.UpdateItem)
				protected.POST("/:id/publish", itemHandler.PublishItem)
				protected.POST("/:id/cancel", itemHandler.CancelItem)
				protected.POST("/:id/bids", bidHandler.PlaceBid)
				protected.PUT("/:id/favorite", favoriteHandler.FavoriteItem)
				protected.DELETE("/:id/favorite", favoriteHandler.UnfavoriteItem)
			}
		}

		// Category routes
		v1.GET("/categories", itemHandler.GetCategories)

		// Live event streams
		v1.GET("/events", eventHandler.StreamAllEvents)

		// Caller-scoped routes
		me := v1.Group("/users/me")
		me.Use(middleware.AuthRequired(deps.Resolver))
		{
			me.GET("/bids", bidHandler.GetMyBids)
			me.GET("/wins", resultHandler.GetMyWins)
			me.GET("/favorites", favoriteHandler.GetMyFavorites)
		}

		// Admin routes
		admin := v1.Group("/admin")
		admin.Use(middleware.AuthRequired(deps.Resolver), middleware.AdminRequired())
		{
			admin.POST("/items/:id/close", resultHandler.CloseItem)
			admin.POST("/scheduler/run", resultHandler.RunScheduler)
			admin.PATCH("/results/:id/status", resultHandler.UpdateResultStatus)
			admin.GET("/bids/stats", bidHandler.GetBidStats)
		}
	}

	return r
}
