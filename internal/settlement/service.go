// Package settlement performs the one-time transition of an expired
// auction to sold or ended, producing its result record.
package settlement

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/auctionhive/auction-backend/internal/auctionerrors"
	"github.com/auctionhive/auction-backend/internal/clock"
	"github.com/auctionhive/auction-backend/internal/events"
	"github.com/auctionhive/auction-backend/internal/models"
	"github.com/auctionhive/auction-backend/internal/notify"
	"github.com/auctionhive/auction-backend/internal/store"
)

type Service struct {
	stores   store.Stores
	clock    clock.Clock
	notifier notify.Notifier
	log      *logrus.Entry
}

func NewService(stores store.Stores, clk clock.Clock, notifier notify.Notifier, log *logrus.Logger) *Service {
	return &Service{
		stores:   stores,
		clock:    clk,
		notifier: notifier,
		log:      log.WithField("component", "settlement"),
	}
}

// Settle produces the AuctionResult for an item and flips its state.
// It is idempotent: a repeat call returns the existing result without
// touching state or emitting a second close event. The row lock taken
// on the item blocks any bid placement that raced past the scheduler's
// expiry guard, so settlement always observes the complete bid history.
func (s *Service) Settle(ctx context.Context, itemID uuid.UUID) (models.AuctionResult, error) {
	return s.settle(ctx, itemID, false)
}

// CancelZeroBid closes an ACTIVE listing on the seller's behalf,
// provided no bid has been accepted. The bid check and the close run
// under the same item row lock, so a bid racing the cancel either
// commits first and blocks it, or queues behind it and is rejected
// against the now closed item.
func (s *Service) CancelZeroBid(ctx context.Context, itemID uuid.UUID) (models.AuctionResult, error) {
	return s.settle(ctx, itemID, true)
}

func (s *Service) settle(ctx context.Context, itemID uuid.UUID, requireZeroBids bool) (models.AuctionResult, error) {
	var (
		result  models.AuctionResult
		item    models.Item
		highest *models.Bid
		created bool
	)

	err := s.stores.Tx(ctx, func(tx store.Stores) error {
		var err error
		item, err = tx.Items().GetForUpdate(ctx, itemID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return auctionerrors.Newf(auctionerrors.CodeNotFound, "item %s not found", itemID)
			}
			return err
		}

		if item.Status == models.ItemStatusDraft {
			return auctionerrors.New(auctionerrors.CodeInvalidState, "item was never published")
		}
		if requireZeroBids && item.Status != models.ItemStatusActive {
			return auctionerrors.Newf(auctionerrors.CodeInvalidState, "item is %s", item.Status)
		}

		existing, err := tx.Results().GetByItem(ctx, itemID)
		if err == nil {
			result = existing
			return nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		if item.Status.Terminal() {
			// Terminal item without a result row: an earlier settlement
			// half-applied, which the single-transaction write should
			// make impossible.
			return auctionerrors.Internal(
				fmt.Sprintf("item %s is %s but has no result", itemID, item.Status), nil)
		}

		bid, err := tx.Bids().Highest(ctx, itemID)
		switch {
		case errors.Is(err, store.ErrNotFound):
			result = models.AuctionResult{
				ItemID:     itemID,
				FinalPrice: decimal.Zero,
				Status:     models.ResultStatusCancelled,
			}
			item.Status = models.ItemStatusEnded
		case err != nil:
			return err
		case requireZeroBids:
			return auctionerrors.New(auctionerrors.CodeInvalidState,
				"auctions with accepted bids cannot be cancelled")
		default:
			highest = &bid
			winnerID := bid.BidderID
			result = models.AuctionResult{
				ItemID:     itemID,
				WinnerID:   &winnerID,
				FinalPrice: bid.Amount,
				Status:     models.ResultStatusPending,
			}
			item.Status = models.ItemStatusSold
		}

		if err := tx.Results().Create(ctx, &result); err != nil {
			return err
		}
		if err := tx.Items().UpdateStatus(ctx, itemID, item.Status); err != nil {
			return err
		}

		row, err := events.NewAuctionClosed(events.AuctionClosed{
			ItemID:     itemID,
			Status:     item.Status,
			WinnerID:   result.WinnerID,
			FinalPrice: result.FinalPrice,
			ClosedAt:   s.clock.Now(),
		})
		if err != nil {
			return auctionerrors.Internal("encode close event", err)
		}
		if err := tx.Outbox().Append(ctx, &row); err != nil {
			return err
		}

		created = true
		return nil
	})
	if err != nil {
		return models.AuctionResult{}, s.translate(err)
	}

	if created {
		s.log.WithFields(logrus.Fields{
			"item_id":     itemID,
			"status":      item.Status,
			"final_price": result.FinalPrice,
		}).Info("auction settled")
		go s.sendNotifications(item, result, highest)
	}
	return result, nil
}

// UpdateResultStatus moves a settlement record through its fulfillment
// states, driven by the out-of-core flow via the admin surface.
func (s *Service) UpdateResultStatus(ctx context.Context, resultID uuid.UUID, status models.ResultStatus) (models.AuctionResult, error) {
	if status != models.ResultStatusCompleted {
		return models.AuctionResult{}, auctionerrors.Newf(auctionerrors.CodeValidation,
			"results may only move to %s", models.ResultStatusCompleted)
	}

	existing, err := s.stores.Results().Get(ctx, resultID)
	if err != nil {
		return models.AuctionResult{}, s.translate(err)
	}
	if existing.Status != models.ResultStatusPending {
		return models.AuctionResult{}, auctionerrors.Newf(auctionerrors.CodeInvalidState,
			"result is %s", existing.Status)
	}

	updated, err := s.stores.Results().UpdateStatus(ctx, resultID, status)
	if err != nil {
		return models.AuctionResult{}, s.translate(err)
	}
	return updated, nil
}

// ResultForItem returns the settlement record of an item.
func (s *Service) ResultForItem(ctx context.Context, itemID uuid.UUID) (models.AuctionResult, error) {
	result, err := s.stores.Results().GetByItem(ctx, itemID)
	if err != nil {
		return models.AuctionResult{}, s.translate(err)
	}
	return result, nil
}

// ResultsForWinner lists auctions won by a user.
func (s *Service) ResultsForWinner(ctx context.Context, winnerID uuid.UUID) ([]models.AuctionResult, error) {
	results, err := s.stores.Results().ListByWinner(ctx, winnerID)
	if err != nil {
		return nil, s.translate(err)
	}
	return results, nil
}

func (s *Service) sendNotifications(item models.Item, result models.AuctionResult, highest *models.Bid) {
	ctx := context.Background()
	if highest != nil {
		s.notifier.Notify(ctx, highest.BidderID, models.NotificationWon, notify.Payload{
			"item_id":     item.ID,
			"item_title":  item.Title,
			"final_price": result.FinalPrice.StringFixed(2),
		})
		s.notifier.Notify(ctx, item.SellerID, models.NotificationListingClosed, notify.Payload{
			"item_id":     item.ID,
			"item_title":  item.Title,
			"final_price": result.FinalPrice.StringFixed(2),
		})
		return
	}
	s.notifier.Notify(ctx, item.SellerID, models.NotificationEndedNoBids, notify.Payload{
		"item_id":    item.ID,
		"item_title": item.Title,
	})
}

func (s *Service) translate(err error) error {
	var coded *auctionerrors.Error
	if errors.As(err, &coded) {
		return err
	}
	if errors.Is(err, store.ErrNotFound) {
		return auctionerrors.ErrNotFound
	}
	return auctionerrors.Transient(err)
}
