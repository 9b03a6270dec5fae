package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/auctionhive/auction-backend/internal/models"
	"github.com/auctionhive/auction-backend/internal/store"
)

type bidStore struct {
	s *Stores
}

func (r *bidStore) Create(ctx context.Context, bid *models.Bid) error {
	unlock := r.s.lock()
	defer unlock()

	for _, existing := range r.s.d.bids[bid.ItemID] {
		if existing.ItemBidSeq == bid.ItemBidSeq {
			return store.ErrConflict
		}
		if bid.RequestID != nil && existing.RequestID != nil && *existing.RequestID == *bid.RequestID {
			return store.ErrConflict
		}
	}
	if bid.ID == uuid.Nil {
		bid.ID = uuid.New()
	}
	bid.CreatedAt = time.Now().UTC()
	bid.UpdatedAt = bid.CreatedAt
	r.s.d.bids[bid.ItemID] = append(r.s.d.bids[bid.ItemID], *bid)
	return nil
}

func (r *bidStore) Highest(ctx context.Context, itemID uuid.UUID) (models.Bid, error) {
	unlock := r.s.rlock()
	defer unlock()

	bids := r.s.d.bids[itemID]
	if len(bids) == 0 {
		return models.Bid{}, store.ErrNotFound
	}
	highest := bids[0]
	for _, b := range bids[1:] {
		switch highest.Amount.Cmp(b.Amount) {
		case -1:
			highest = b
		case 0:
			if b.ItemBidSeq < highest.ItemBidSeq {
				highest = b
			}
		}
	}
	return highest, nil
}

func (r *bidStore) ListByItem(ctx context.Context, itemID uuid.UUID, afterSeq int64) ([]models.Bid, error) {
	unlock := r.s.rlock()
	defer unlock()

	var out []models.Bid
	for _, b := range r.s.d.bids[itemID] {
		if b.ItemBidSeq > afterSeq {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ItemBidSeq < out[j].ItemBidSeq
	})
	return out, nil
}

func (r *bidStore) ListByBidder(ctx context.Context, bidderID uuid.UUID) ([]models.Bid, error) {
	unlock := r.s.rlock()
	defer unlock()

	var out []models.Bid
	for _, bids := range r.s.d.bids {
		for _, b := range bids {
			if b.BidderID == bidderID {
				out = append(out, b)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].PlacedAt.After(out[j].PlacedAt)
	})
	return out, nil
}

func (r *bidStore) CountByItem(ctx context.Context, itemID uuid.UUID) (int64, error) {
	unlock := r.s.rlock()
	defer unlock()
	return int64(len(r.s.d.bids[itemID])), nil
}

func (r *bidStore) FindByRequestID(ctx context.Context, itemID uuid.UUID, requestID string) (models.Bid, error) {
	unlock := r.s.rlock()
	defer unlock()

	for _, b := range r.s.d.bids[itemID] {
		if b.RequestID != nil && *b.RequestID == requestID {
			return b, nil
		}
	}
	return models.Bid{}, store.ErrNotFound
}

func (r *bidStore) Stats(ctx context.Context) (store.BidStats, error) {
	unlock := r.s.rlock()
	defer unlock()

	stats := store.BidStats{TotalValue: decimal.Zero}
	bidders := make(map[uuid.UUID]struct{})
	for _, bids := range r.s.d.bids {
		for _, b := range bids {
			stats.TotalBids++
			stats.TotalValue = stats.TotalValue.Add(b.Amount)
			bidders[b.BidderID] = struct{}{}
		}
	}
	stats.UniqueBidders = int64(len(bidders))
	for _, item := range r.s.d.items {
		if item.Status == models.ItemStatusActive {
			stats.ActiveAuctions++
		}
	}
	return stats, nil
}
