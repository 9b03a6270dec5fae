package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/auctionhive/auction-backend/internal/models"
)

// BidAccepted is published after a bid commits. Amount is a decimal
// string on the wire to avoid binary-float loss.
type BidAccepted struct {
	BidID         uuid.UUID       `json:"bid_id"`
	ItemID        uuid.UUID       `json:"item_id"`
	BidderID      uuid.UUID       `json:"bidder_id"`
	BidderDisplay string          `json:"bidder_display"`
	Amount        decimal.Decimal `json:"amount"`
	ItemBidSeq    int64           `json:"item_bid_seq"`
	PlacedAt      time.Time       `json:"placed_at"`
}

// AuctionClosed is published after settlement commits.
type AuctionClosed struct {
	ItemID     uuid.UUID         `json:"item_id"`
	Status     models.ItemStatus `json:"status"`
	WinnerID   *uuid.UUID        `json:"winner_id,omitempty"`
	FinalPrice decimal.Decimal   `json:"final_price"`
	ClosedAt   time.Time         `json:"closed_at"`
}

// Envelope is what flows through the outbox and the broadcaster.
// Seq carries item_bid_seq for bid events so subscribers can verify a
// contiguous per-item sequence; it is zero for close events.
type Envelope struct {
	Topic   string          `json:"topic"`
	ItemID  uuid.UUID       `json:"item_id"`
	Seq     int64           `json:"seq"`
	Payload json.RawMessage `json:"payload"`
}

// NewBidAccepted encodes a bid event into an outbox row.
func NewBidAccepted(ev BidAccepted) (models.OutboxEvent, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return models.OutboxEvent{}, err
	}
	return models.OutboxEvent{
		Topic:   models.TopicBidAccepted,
		ItemID:  ev.ItemID,
		Payload: payload,
	}, nil
}

// NewAuctionClosed encodes a close event into an outbox row.
func NewAuctionClosed(ev AuctionClosed) (models.OutboxEvent, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return models.OutboxEvent{}, err
	}
	return models.OutboxEvent{
		Topic:   models.TopicAuctionClosed,
		ItemID:  ev.ItemID,
		Payload: payload,
	}, nil
}

// EnvelopeFor converts a drained outbox row into a broadcast envelope.
func EnvelopeFor(row models.OutboxEvent) Envelope {
	env := Envelope{
		Topic:   row.Topic,
		ItemID:  row.ItemID,
		Payload: json.RawMessage(row.Payload),
	}
	if row.Topic == models.TopicBidAccepted {
		var ev BidAccepted
		if err := json.Unmarshal(row.Payload, &ev); err == nil {
			env.Seq = ev.ItemBidSeq
		}
	}
	return env
}
