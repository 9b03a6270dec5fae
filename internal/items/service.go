// Package items owns the listing lifecycle: draft, publish, edit,
// seller cancel. Terminal items accept no further edits.
package items

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/auctionhive/auction-backend/internal/auctionerrors"
	"github.com/auctionhive/auction-backend/internal/clock"
	"github.com/auctionhive/auction-backend/internal/models"
	"github.com/auctionhive/auction-backend/internal/store"
	"github.com/auctionhive/auction-backend/internal/utils"
)

// settler closes one item; satisfied by the settlement service.
type settler interface {
	Settle(ctx context.Context, itemID uuid.UUID) (models.AuctionResult, error)
	CancelZeroBid(ctx context.Context, itemID uuid.UUID) (models.AuctionResult, error)
}

type Service struct {
	stores  store.Stores
	clock   clock.Clock
	settler settler
	log     *logrus.Entry
}

func NewService(stores store.Stores, clk clock.Clock, st settler, log *logrus.Logger) *Service {
	return &Service{
		stores:  stores,
		clock:   clk,
		settler: st,
		log:     log.WithField("component", "items"),
	}
}

type CreateItemInput struct {
	Title         string          `json:"title" validate:"required,min=3,max=255"`
	Description   string          `json:"description" validate:"max=10000"`
	ImageURL      string          `json:"image_url" validate:"omitempty,url,max=512"`
	CategoryID    *uuid.UUID      `json:"category_id,omitempty"`
	StartingPrice decimal.Decimal `json:"starting_price"`
}

type UpdateItemInput struct {
	Title         *string          `json:"title,omitempty" validate:"omitempty,min=3,max=255"`
	Description   *string          `json:"description,omitempty" validate:"omitempty,max=10000"`
	ImageURL      *string          `json:"image_url,omitempty" validate:"omitempty,url,max=512"`
	CategoryID    *uuid.UUID       `json:"category_id,omitempty"`
	StartingPrice *decimal.Decimal `json:"starting_price,omitempty"`
	EndTime       *time.Time       `json:"end_time,omitempty"`
}

// Create stores a new DRAFT listing for an active seller.
func (s *Service) Create(ctx context.Context, sellerID uuid.UUID, in CreateItemInput) (models.Item, error) {
	if err := utils.ValidateStruct(&in); err != nil {
		return models.Item{}, auctionerrors.New(auctionerrors.CodeValidation, utils.ValidationMessage(err))
	}
	if in.StartingPrice.IsNegative() {
		return models.Item{}, auctionerrors.New(auctionerrors.CodeValidation, "starting price must not be negative")
	}
	if in.StartingPrice.Exponent() < -2 {
		return models.Item{}, auctionerrors.New(auctionerrors.CodeValidation, "starting price exceeds 2 decimal places")
	}

	seller, err := s.stores.Users().Get(ctx, sellerID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.Item{}, auctionerrors.New(auctionerrors.CodeUnauthorized, "unknown seller")
		}
		return models.Item{}, s.translate(err)
	}
	if !seller.CanBid() {
		return models.Item{}, auctionerrors.Newf(auctionerrors.CodeUnauthorized,
			"seller account is %s", seller.Status)
	}

	if in.CategoryID != nil {
		if err := s.checkCategory(ctx, *in.CategoryID); err != nil {
			return models.Item{}, err
		}
	}

	item := models.Item{
		SellerID:      sellerID,
		CategoryID:    in.CategoryID,
		Title:         in.Title,
		Description:   in.Description,
		ImageURL:      in.ImageURL,
		StartingPrice: in.StartingPrice,
		Status:        models.ItemStatusDraft,
	}
	if err := s.stores.Items().Create(ctx, &item); err != nil {
		return models.Item{}, s.translate(err)
	}

	s.log.WithFields(logrus.Fields{
		"item_id":   item.ID,
		"seller_id": sellerID,
	}).Info("item created")
	return item, nil
}

// Update edits a listing. DRAFT items are freely editable; ACTIVE items
// allow only title, description, image and category. Price and window
// are frozen once the item is live, which also keeps them immutable
// after the first accepted bid.
func (s *Service) Update(ctx context.Context, itemID, callerID uuid.UUID, in UpdateItemInput) (models.Item, error) {
	if err := utils.ValidateStruct(&in); err != nil {
		return models.Item{}, auctionerrors.New(auctionerrors.CodeValidation, utils.ValidationMessage(err))
	}

	var updated models.Item
	err := s.stores.Tx(ctx, func(tx store.Stores) error {
		item, err := tx.Items().GetForUpdate(ctx, itemID)
		if err != nil {
			return err
		}
		if item.SellerID != callerID {
			return auctionerrors.New(auctionerrors.CodeUnauthorized, "only the seller may edit a listing")
		}
		if item.Status.Terminal() {
			return auctionerrors.Newf(auctionerrors.CodeInvalidState, "item is %s", item.Status)
		}

		if item.Status == models.ItemStatusActive {
			if in.StartingPrice != nil || in.EndTime != nil {
				return auctionerrors.New(auctionerrors.CodeInvalidState,
					"price and end time are immutable on a live auction")
			}
		}

		if in.Title != nil {
			item.Title = *in.Title
		}
		if in.Description != nil {
			item.Description = *in.Description
		}
		if in.ImageURL != nil {
			item.ImageURL = *in.ImageURL
		}
		if in.CategoryID != nil {
			if err := s.checkCategory(ctx, *in.CategoryID); err != nil {
				return err
			}
			item.CategoryID = in.CategoryID
		}
		if in.StartingPrice != nil {
			if in.StartingPrice.IsNegative() || in.StartingPrice.Exponent() < -2 {
				return auctionerrors.New(auctionerrors.CodeValidation, "invalid starting price")
			}
			item.StartingPrice = *in.StartingPrice
		}
		if in.EndTime != nil {
			end := in.EndTime.UTC()
			item.EndTime = &end
		}

		if err := tx.Items().Update(ctx, &item); err != nil {
			return err
		}
		updated = item
		return nil
	})
	if err != nil {
		return models.Item{}, s.translate(err)
	}
	return updated, nil
}

// Publish moves a DRAFT to ACTIVE with the given window. A nil start
// means "now".
func (s *Service) Publish(ctx context.Context, itemID, callerID uuid.UUID, start *time.Time, end time.Time) (models.Item, error) {
	var published models.Item
	err := s.stores.Tx(ctx, func(tx store.Stores) error {
		item, err := tx.Items().GetForUpdate(ctx, itemID)
		if err != nil {
			return err
		}
		if item.SellerID != callerID {
			return auctionerrors.New(auctionerrors.CodeUnauthorized, "only the seller may publish a listing")
		}
		if item.Status != models.ItemStatusDraft {
			return auctionerrors.Newf(auctionerrors.CodeInvalidState, "item is %s, expected draft", item.Status)
		}

		now := s.clock.Now()
		startAt := now
		if start != nil {
			startAt = start.UTC()
		}
		endAt := end.UTC()
		if endAt.Before(startAt) || !endAt.After(now) {
			return auctionerrors.ErrInvalidWindow
		}

		item.StartTime = &startAt
		item.EndTime = &endAt
		item.Status = models.ItemStatusActive
		if err := tx.Items().Update(ctx, &item); err != nil {
			return err
		}
		published = item
		return nil
	})
	if err != nil {
		return models.Item{}, s.translate(err)
	}

	s.log.WithFields(logrus.Fields{
		"item_id":  published.ID,
		"end_time": published.EndTime,
	}).Info("item published")
	return published, nil
}

// Cancel lets a seller withdraw a published listing that has attracted
// no bids yet. The item settles immediately as ended/cancelled. The
// zero-bid check itself runs inside the settlement transaction, so a
// bid landing between this authorization check and the close cannot
// turn the cancel into a sale.
func (s *Service) Cancel(ctx context.Context, itemID, callerID uuid.UUID) (models.AuctionResult, error) {
	item, err := s.stores.Items().Get(ctx, itemID)
	if err != nil {
		return models.AuctionResult{}, s.translate(err)
	}
	if item.SellerID != callerID {
		return models.AuctionResult{}, auctionerrors.New(auctionerrors.CodeUnauthorized,
			"only the seller may cancel a listing")
	}
	if item.Status != models.ItemStatusActive {
		return models.AuctionResult{}, auctionerrors.Newf(auctionerrors.CodeInvalidState,
			"item is %s", item.Status)
	}

	return s.settler.CancelZeroBid(ctx, itemID)
}

// Get loads one item.
func (s *Service) Get(ctx context.Context, itemID uuid.UUID) (models.Item, error) {
	item, err := s.stores.Items().Get(ctx, itemID)
	if err != nil {
		return models.Item{}, s.translate(err)
	}
	return item, nil
}

// List applies the filter and returns a page of items plus the total.
func (s *Service) List(ctx context.Context, filter store.ItemFilter) ([]models.Item, int64, error) {
	itemsList, total, err := s.stores.Items().List(ctx, filter)
	if err != nil {
		return nil, 0, s.translate(err)
	}
	return itemsList, total, nil
}

// Categories returns the taxonomy for listing filters.
func (s *Service) Categories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.stores.Categories().List(ctx)
	if err != nil {
		return nil, s.translate(err)
	}
	return categories, nil
}

// checkCategory resolves the category and walks its ancestry. A cycle
// means corrupted taxonomy data and surfaces as an internal error.
func (s *Service) checkCategory(ctx context.Context, id uuid.UUID) error {
	seen := make(map[uuid.UUID]struct{})
	current := id
	for {
		if _, ok := seen[current]; ok {
			return auctionerrors.Internal("category hierarchy contains a cycle", nil)
		}
		seen[current] = struct{}{}

		category, err := s.stores.Categories().Get(ctx, current)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) && current == id {
				return auctionerrors.Newf(auctionerrors.CodeValidation, "category %s not found", id)
			}
			if errors.Is(err, store.ErrNotFound) {
				return nil
			}
			return err
		}
		if category.ParentID == nil {
			return nil
		}
		current = *category.ParentID
	}
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
