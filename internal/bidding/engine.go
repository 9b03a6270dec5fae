// Package bidding implements the bid-acceptance protocol: validation,
// per-item serialization, sequence assignment and event emission.
package bidding

import (
	"context"
	"errors"
	"fmt"
	"time"

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

// amountScale is the fixed decimal scale for bid amounts. Inputs with
// finer granularity are rejected rather than rounded.
const amountScale = 2

// maxPlaceAttempts bounds retries when a cross-process writer wins the
// conditional last_bid_seq update.
const maxPlaceAttempts = 3

type Config struct {
	// SelfBidAllowed lifts the seller-may-not-bid rule.
	SelfBidAllowed bool
	// LockIdleEviction is how long an unused per-item lock survives.
	LockIdleEviction time.Duration
}

type Engine struct {
	stores   store.Stores
	clock    clock.Clock
	notifier notify.Notifier
	locks    *lockTable
	cfg      Config
	log      *logrus.Entry
}

func NewEngine(stores store.Stores, clk clock.Clock, notifier notify.Notifier, cfg Config, log *logrus.Logger) *Engine {
	return &Engine{
		stores:   stores,
		clock:    clk,
		notifier: notifier,
		locks:    newLockTable(cfg.LockIdleEviction),
		cfg:      cfg,
		log:      log.WithField("component", "bid_engine"),
	}
}

// PlaceBidInput is the plain-argument form the request boundary parses
// into.
type PlaceBidInput struct {
	ItemID   uuid.UUID
	BidderID uuid.UUID
	Amount   decimal.Decimal
	// RequestID is the optional idempotency key; retries carrying the
	// same key return the originally accepted bid.
	RequestID string
}

// PlaceBid validates and accepts a bid. All reads and the insert form
// one unit per item: the per-item lock serializes in-process callers
// and the row lock plus conditional sequence update guard against
// writers elsewhere. No precondition failure mutates state.
func (e *Engine) PlaceBid(ctx context.Context, in PlaceBidInput) (models.Bid, error) {
	if in.Amount.Exponent() < -amountScale {
		return models.Bid{}, auctionerrors.Newf(auctionerrors.CodeValidation,
			"amount %s exceeds scale of %d decimal places", in.Amount, amountScale)
	}
	if !in.Amount.IsPositive() {
		return models.Bid{}, auctionerrors.New(auctionerrors.CodeValidation, "amount must be positive")
	}

	bidder, err := e.stores.Users().Get(ctx, in.BidderID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.Bid{}, auctionerrors.New(auctionerrors.CodeUnauthorized, "unknown bidder")
		}
		return models.Bid{}, auctionerrors.Transient(fmt.Errorf("load bidder: %w", err))
	}
	if !bidder.CanBid() {
		return models.Bid{}, auctionerrors.Newf(auctionerrors.CodeUnauthorized,
			"bidder account is %s", bidder.Status)
	}

	release := e.locks.acquire(in.ItemID)
	defer release()

	var (
		accepted    models.Bid
		prevHighest *models.Bid
		replayed    bool
	)
	for attempt := 1; ; attempt++ {
		accepted, prevHighest, replayed, err = e.placeOnce(ctx, in, bidder.Username)
		if err == nil {
			break
		}
		if errors.Is(err, store.ErrConflict) && attempt < maxPlaceAttempts {
			e.log.WithFields(logrus.Fields{
				"item_id": in.ItemID,
				"attempt": attempt,
			}).Warn("sequence conflict, retrying bid placement")
			continue
		}
		return models.Bid{}, e.translate(err)
	}

	if replayed {
		return accepted, nil
	}

	e.log.WithFields(logrus.Fields{
		"item_id":      accepted.ItemID,
		"bid_id":       accepted.ID,
		"bidder_id":    accepted.BidderID,
		"amount":       accepted.Amount,
		"item_bid_seq": accepted.ItemBidSeq,
	}).Info("bid accepted")

	if prevHighest != nil && prevHighest.BidderID != accepted.BidderID {
		outbid := *prevHighest
		go e.notifier.Notify(context.Background(), outbid.BidderID, models.NotificationOutbid, notify.Payload{
			"item_id":    accepted.ItemID,
			"new_amount": accepted.Amount.StringFixed(amountScale),
			"old_amount": outbid.Amount.StringFixed(amountScale),
		})
	}

	return accepted, nil
}

// placeOnce runs preconditions 2-7 and the insert in one transaction.
func (e *Engine) placeOnce(ctx context.Context, in PlaceBidInput, bidderDisplay string) (models.Bid, *models.Bid, bool, error) {
	var (
		accepted    models.Bid
		prevHighest *models.Bid
		replayed    bool
	)

	err := e.stores.Tx(ctx, func(tx store.Stores) error {
		item, err := tx.Items().GetForUpdate(ctx, in.ItemID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return auctionerrors.Newf(auctionerrors.CodeNotFound, "item %s not found", in.ItemID)
			}
			return err
		}

		if in.RequestID != "" {
			existing, err := tx.Bids().FindByRequestID(ctx, in.ItemID, in.RequestID)
			if err == nil {
				accepted = existing
				replayed = true
				return nil
			}
			if !errors.Is(err, store.ErrNotFound) {
				return err
			}
		}

		if item.Status != models.ItemStatusActive {
			return auctionerrors.Newf(auctionerrors.CodeInvalidState,
				"item is %s, not accepting bids", item.Status)
		}

		now := e.clock.Now()
		if item.Expired(now) {
			return auctionerrors.ErrAuctionClosed
		}

		if in.Amount.Cmp(item.StartingPrice) < 0 {
			return auctionerrors.Newf(auctionerrors.CodeBelowStartingPrice,
				"bid %s is below starting price %s",
				in.Amount.StringFixed(amountScale), item.StartingPrice.StringFixed(amountScale))
		}

		highest, err := tx.Bids().Highest(ctx, in.ItemID)
		switch {
		case err == nil:
			if in.Amount.Cmp(highest.Amount) <= 0 {
				return auctionerrors.Newf(auctionerrors.CodeBidTooLow,
					"bid %s does not exceed current highest %s",
					in.Amount.StringFixed(amountScale), highest.Amount.StringFixed(amountScale))
			}
			prevHighest = &highest
		case errors.Is(err, store.ErrNotFound):
			// first bid
		default:
			return err
		}

		if in.BidderID == item.SellerID && !e.cfg.SelfBidAllowed {
			return auctionerrors.ErrSelfBid
		}

		bid := models.Bid{
			ItemID:     in.ItemID,
			BidderID:   in.BidderID,
			Amount:     in.Amount,
			PlacedAt:   now,
			ItemBidSeq: item.LastBidSeq + 1,
		}
		if in.RequestID != "" {
			requestID := in.RequestID
			bid.RequestID = &requestID
		}

		if err := tx.Bids().Create(ctx, &bid); err != nil {
			return err
		}
		if err := tx.Items().AdvanceBidSeq(ctx, item.ID, item.LastBidSeq); err != nil {
			return err
		}

		row, err := events.NewBidAccepted(events.BidAccepted{
			BidID:         bid.ID,
			ItemID:        bid.ItemID,
			BidderID:      bid.BidderID,
			BidderDisplay: bidderDisplay,
			Amount:        bid.Amount,
			ItemBidSeq:    bid.ItemBidSeq,
			PlacedAt:      bid.PlacedAt,
		})
		if err != nil {
			return auctionerrors.Internal("encode bid event", err)
		}
		if err := tx.Outbox().Append(ctx, &row); err != nil {
			return err
		}

		accepted = bid
		return nil
	})
	if err != nil {
		return models.Bid{}, nil, false, err
	}
	return accepted, prevHighest, replayed, nil
}

// translate converts storage sentinels into the error taxonomy;
// taxonomy errors pass through untouched.
func (e *Engine) translate(err error) error {
	var coded *auctionerrors.Error
	if errors.As(err, &coded) {
		return err
	}
	if errors.Is(err, store.ErrNotFound) {
		return auctionerrors.ErrNotFound
	}
	return auctionerrors.Transient(err)
}
