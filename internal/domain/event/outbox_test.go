package event

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEntry(t *testing.T) {
	now := time.Date(2025, 5, 1, 10, 0, 0, 0, time.FixedZone("PHT", 8*3600))
	e, err := NewEntry(TicketPledged, AggregateTicket, "abc", map[string]string{"state": "pledged"}, now)
	require.NoError(t, err)

	assert.Len(t, e.ID, 36)
	assert.Equal(t, "abc", e.AggregateID)
	assert.Equal(t, TicketPledged, e.EventType)
	assert.Equal(t, time.UTC, e.CreatedAt.Location())
	assert.Nil(t, e.PublishedAt)

	var body map[string]string
	require.NoError(t, json.Unmarshal(e.Payload, &body))
	assert.Equal(t, "pledged", body["state"])
}

func TestNewEntry_Unmarshalable(t *testing.T) {
	_, err := NewEntry(TicketPledged, AggregateTicket, "abc", make(chan int), time.Now())
	assert.Error(t, err)
}
