// Package notify is the fire-and-forget side channel for user-facing
// messages. Delivery failures are logged, never propagated
// to the bidding or settlement paths.
package notify

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/auctionhive/auction-backend/internal/models"
)

// Payload carries the message-specific fields, rendered by whichever
// channel (email, push, in-app) sits behind the adapter.
type Payload map[string]interface{}

type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, kind models.NotificationKind, payload Payload)
}

// LogNotifier writes notifications to the structured log. It stands in
// for the external dispatch collaborator, which is out of core.
type LogNotifier struct {
	log *logrus.Entry
}

func NewLogNotifier(log *logrus.Logger) *LogNotifier {
	return &LogNotifier{log: log.WithField("component", "notifier")}
}

func (n *LogNotifier) Notify(ctx context.Context, userID uuid.UUID, kind models.NotificationKind, payload Payload) {
	n.log.WithFields(logrus.Fields{
		"user_id": userID,
		"kind":    kind,
		"payload": payload,
	}).Info("notification dispatched")
}

// Recorder captures notifications for assertions in tests.
type Recorder struct {
	mu      sync.Mutex
	entries []Recorded
}

type Recorded struct {
	UserID  uuid.UUID
	Kind    models.NotificationKind
	Payload Payload
}

func NewRecorder() *Recorder { return &Recorder{} }

func (r *Recorder) Notify(ctx context.Context, userID uuid.UUID, kind models.NotificationKind, payload Payload) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, Recorded{UserID: userID, Kind: kind, Payload: payload})
}

func (r *Recorder) Entries() []Recorded {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Recorded(nil), r.entries...)
}

// ByKind filters recorded notifications.
func (r *Recorder) ByKind(kind models.NotificationKind) []Recorded {
	var out []Recorded
	for _, e := range r.Entries() {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}
