// internal/handlers/events.go
package handlers

import (
	"io"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/auctionhive/auction-backend/internal/broadcast"
	"github.com/auctionhive/auction-backend/internal/utils"
)

type EventHandler struct {
	bus *broadcast.Broadcaster
}

func NewEventHandler(bus *broadcast.Broadcaster) *EventHandler {
	return &EventHandler{bus: bus}
}

// GET /items/:id/events
//
// Streams bid and close events for one item as server-sent events.
// A client that was disconnected passes after_seq with the last
// sequence it saw; buffered events since then are replayed before the
// live stream starts. Replayed and live events can overlap, so live
// bid events at or below the replayed sequence are dropped.
func (h *EventHandler) StreamItemEvents(c *gin.Context) {
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

	ctx := c.Request.Context()
	sub := h.bus.Subscribe(ctx, itemID)
	defer sub.Close()

	lastSeq := afterSeq
	for _, env := range h.bus.Replay(itemID, afterSeq) {
		c.SSEvent(env.Topic, env)
		if env.Seq > lastSeq {
			lastSeq = env.Seq
		}
	}
	c.Writer.Flush()

	c.Stream(func(w io.Writer) bool {
		select {
		case env, ok := <-sub.C:
			if !ok {
				// Closed as a slow consumer; the client reconnects
				// with after_seq to resync.
				return false
			}
			if env.Seq > 0 && env.Seq <= lastSeq {
				return true
			}
			if env.Seq > lastSeq {
				lastSeq = env.Seq
			}
			c.SSEvent(env.Topic, env)
			return true
		case <-ctx.Done():
			return false
		}
	})
}

// GET /events
//
// Streams all auction events. Used by dashboards; no replay.
func (h *EventHandler) StreamAllEvents(c *gin.Context) {
	ctx := c.Request.Context()
	sub := h.bus.SubscribeGlobal(ctx)
	defer sub.Close()

	c.Stream(func(w io.Writer) bool {
		select {
		case env, ok := <-sub.C:
			if !ok {
				return false
			}
			c.SSEvent(env.Topic, env)
			return true
		case <-ctx.Done():
			return false
		}
	})
}
