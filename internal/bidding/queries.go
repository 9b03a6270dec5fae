package bidding

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/auctionhive/auction-backend/internal/auctionerrors"
	"github.com/auctionhive/auction-backend/internal/models"
	"github.com/auctionhive/auction-backend/internal/store"
)

// UserBid is a bid of one user projected against the item's current
// state, for the bid-history view.
type UserBid struct {
	models.Bid
	ItemTitle      string          `json:"item_title"`
	ItemImageURL   string          `json:"item_image_url"`
	CurrentHighest decimal.Decimal `json:"current_highest"`
	IsHighestBid   bool            `json:"is_highest_bid"`
	IsOutbid       bool            `json:"is_outbid"`
}

// BidsForItem returns the item's accepted bids ordered by sequence,
// starting after the given watermark (0 for all).
func (e *Engine) BidsForItem(ctx context.Context, itemID uuid.UUID, afterSeq int64) ([]models.Bid, error) {
	if _, err := e.stores.Items().Get(ctx, itemID); err != nil {
		return nil, e.translate(err)
	}
	bids, err := e.stores.Bids().ListByItem(ctx, itemID, afterSeq)
	if err != nil {
		return nil, e.translate(fmt.Errorf("list bids: %w", err))
	}
	return bids, nil
}

// HighestBid returns the current winning bid for an item.
func (e *Engine) HighestBid(ctx context.Context, itemID uuid.UUID) (models.Bid, error) {
	if _, err := e.stores.Items().Get(ctx, itemID); err != nil {
		return models.Bid{}, e.translate(err)
	}
	bid, err := e.stores.Bids().Highest(ctx, itemID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.Bid{}, auctionerrors.New(auctionerrors.CodeNotFound, "no bids for item")
		}
		return models.Bid{}, e.translate(err)
	}
	return bid, nil
}

// UserBids returns the bid history of one bidder with outbid flags.
func (e *Engine) UserBids(ctx context.Context, bidderID uuid.UUID) ([]UserBid, error) {
	bids, err := e.stores.Bids().ListByBidder(ctx, bidderID)
	if err != nil {
		return nil, e.translate(err)
	}

	out := make([]UserBid, 0, len(bids))
	for _, bid := range bids {
		entry := UserBid{Bid: bid}
		if item, err := e.stores.Items().Get(ctx, bid.ItemID); err == nil {
			entry.ItemTitle = item.Title
			entry.ItemImageURL = item.ImageURL
			entry.CurrentHighest = item.StartingPrice
		}
		if highest, err := e.stores.Bids().Highest(ctx, bid.ItemID); err == nil {
			entry.CurrentHighest = highest.Amount
			entry.IsHighestBid = highest.ID == bid.ID
			entry.IsOutbid = !entry.IsHighestBid && highest.Amount.Cmp(bid.Amount) > 0
		}
		out = append(out, entry)
	}
	return out, nil
}

// Stats returns the platform-wide bid aggregates.
func (e *Engine) Stats(ctx context.Context) (store.BidStats, error) {
	stats, err := e.stores.Bids().Stats(ctx)
	if err != nil {
		return store.BidStats{}, e.translate(err)
	}
	return stats, nil
}
