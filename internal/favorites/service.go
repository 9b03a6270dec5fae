// Package favorites maintains per-user watch lists over listings.
package favorites

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/auctionhive/auction-backend/internal/auctionerrors"
	"github.com/auctionhive/auction-backend/internal/models"
	"github.com/auctionhive/auction-backend/internal/store"
)

type Service struct {
	stores store.Stores
	log    *logrus.Entry
}

func NewService(stores store.Stores, log *logrus.Logger) *Service {
	return &Service{
		stores: stores,
		log:    log.WithField("component", "favorites"),
	}
}

// Entry is a watch-list row projected with its item's display fields.
type Entry struct {
	ItemID       uuid.UUID         `json:"item_id"`
	ItemTitle    string            `json:"item_title"`
	ItemImageURL string            `json:"item_image_url,omitempty"`
	ItemStatus   models.ItemStatus `json:"item_status"`
	FavoritedAt  time.Time         `json:"favorited_at"`
}

// Add puts an item on the user's watch list. Watching an item twice is
// a no-op. Drafts are not watchable: they are not visible to anyone but
// the seller until published.
func (s *Service) Add(ctx context.Context, userID, itemID uuid.UUID) error {
	item, err := s.stores.Items().Get(ctx, itemID)
	if err != nil {
		return s.translate(err)
	}
	if item.Status == models.ItemStatusDraft {
		return auctionerrors.New(auctionerrors.CodeInvalidState, "item is not published")
	}

	favorite := models.Favorite{UserID: userID, ItemID: itemID}
	if err := s.stores.Favorites().Add(ctx, &favorite); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil
		}
		return s.translate(err)
	}

	s.log.WithFields(logrus.Fields{
		"user_id": userID,
		"item_id": itemID,
	}).Debug("item favorited")
	return nil
}

// Remove takes an item off the user's watch list.
func (s *Service) Remove(ctx context.Context, userID, itemID uuid.UUID) error {
	if err := s.stores.Favorites().Remove(ctx, userID, itemID); err != nil {
		return s.translate(err)
	}
	return nil
}

// List returns the user's watch list, newest first, with item display
// fields resolved. Entries whose item has since vanished are skipped.
func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]Entry, error) {
	favorites, err := s.stores.Favorites().ListByUser(ctx, userID)
	if err != nil {
		return nil, s.translate(err)
	}

	entries := make([]Entry, 0, len(favorites))
	for _, favorite := range favorites {
		item, err := s.stores.Items().Get(ctx, favorite.ItemID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			return nil, s.translate(err)
		}
		entries = append(entries, Entry{
			ItemID:       item.ID,
			ItemTitle:    item.Title,
			ItemImageURL: item.ImageURL,
			ItemStatus:   item.Status,
			FavoritedAt:  favorite.CreatedAt,
		})
	}
	return entries, nil
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
