package event

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Ticket lifecycle event types.
const (
	TicketCreated   = "ticket.created"
	TicketPledged   = "ticket.pledged"
	TicketRenewed   = "ticket.renewed"
	TicketRedeemed  = "ticket.redeemed"
	TicketForfeited = "ticket.forfeited"
	TicketCancelled = "ticket.cancelled"
	AuctionInvoiced = "ticket.auction_invoiced"
)

const AggregateTicket = "ticket"

// OutboxEntry is an event stored in the same transaction as the change that raised it.
type OutboxEntry struct {
	ID            string         `gorm:"primaryKey;size:36" json:"id"`
	AggregateID   string         `gorm:"size:32;not null;index" json:"aggregate_id"`
	AggregateType string         `gorm:"size:32;not null" json:"aggregate_type"`
	EventType     string         `gorm:"size:64;not null" json:"event_type"`
	Payload       datatypes.JSON `json:"payload"`
	CreatedAt     time.Time      `gorm:"not null;index:idx_outbox_pending" json:"created_at"`
	PublishedAt   *time.Time     `gorm:"index:idx_outbox_pending" json:"published_at,omitempty"`
}

func (OutboxEntry) TableName() string { return "outbox_events" }

// NewEntry marshals payload into a fresh outbox row.
func NewEntry(eventType, aggregateType, aggregateID string, payload any, now time.Time) (OutboxEntry, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return OutboxEntry{}, err
	}
	return OutboxEntry{
		ID:            uuid.NewString(),
		AggregateID:   aggregateID,
		AggregateType: aggregateType,
		EventType:     eventType,
		Payload:       datatypes.JSON(raw),
		CreatedAt:     now.UTC(),
	}, nil
}

type Repository interface {
	Store(ctx context.Context, entries ...OutboxEntry) error
	FetchUnpublished(ctx context.Context, batchSize int) ([]OutboxEntry, error)
	MarkPublished(ctx context.Context, ids []string, at time.Time) error
}

// Publisher delivers stored entries to a broker.
type Publisher interface {
	Publish(ctx context.Context, entries ...OutboxEntry) error
}
