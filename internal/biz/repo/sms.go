package repo

import (
	"context"

	"github.com/arian-lol/msg-mirror/internal/biz/domain"
)

// ContentObserver receives change notifications from a content store
type ContentObserver interface {
	OnChange(uri string)
}

// SmsRepo is the inbound SMS content store
type SmsRepo interface {
	// Insert stores an inbound message and notifies registered observers
	Insert(ctx context.Context, msg *domain.SmsMessage) error

	// LatestInbound returns the newest inbound message, or nil if the store is empty
	LatestInbound(ctx context.Context) (*domain.SmsMessage, error)

	RegisterObserver(o ContentObserver)
	UnregisterObserver(o ContentObserver)

	// URI identifies the store in change notifications
	URI() string

	Close() error
}
