package mysql

import (
	"context"
	"testing"
	"time"

	"pawnshop-backend/internal/domain/event"
)

func TestOutbox_FetchAndMark(t *testing.T) {
	db := openTestDB(t)
	repo := NewOutboxRepository(db)
	ctx := context.Background()
	base := time.Date(2025, 6, 15, 9, 0, 0, 0, time.UTC)

	var entries []event.OutboxEntry
	for i, typ := range []string{event.TicketCreated, event.TicketPledged, event.TicketRedeemed} {
		e, err := event.NewEntry(typ, event.AggregateTicket, "t1", map[string]any{"n": i}, base.Add(time.Duration(i)*time.Minute))
		if err != nil {
			t.Fatalf("NewEntry: %v", err)
		}
		entries = append(entries, e)
	}
	if err := repo.Store(ctx, entries...); err != nil {
		t.Fatalf("Store: %v", err)
	}
	if err := repo.Store(ctx); err != nil {
		t.Fatalf("Store empty: %v", err)
	}

	batch, err := repo.FetchUnpublished(ctx, 2)
	if err != nil {
		t.Fatalf("FetchUnpublished: %v", err)
	}
	if len(batch) != 2 || batch[0].EventType != event.TicketCreated || batch[1].EventType != event.TicketPledged {
		t.Fatalf("unexpected batch: %+v", batch)
	}

	if err := repo.MarkPublished(ctx, []string{batch[0].ID, batch[1].ID}, base.Add(time.Hour)); err != nil {
		t.Fatalf("MarkPublished: %v", err)
	}

	rest, err := repo.FetchUnpublished(ctx, 10)
	if err != nil {
		t.Fatalf("FetchUnpublished: %v", err)
	}
	if len(rest) != 1 || rest[0].EventType != event.TicketRedeemed {
		t.Fatalf("unexpected remainder: %+v", rest)
	}
	if string(rest[0].Payload) != `{"n":2}` {
		t.Fatalf("payload not preserved: %s", rest[0].Payload)
	}
}
