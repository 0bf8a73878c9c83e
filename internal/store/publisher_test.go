package store

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/citymunch/slack-bot/internal/model"
)

type fakeWriter struct {
	mu     sync.Mutex
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestPublisher_SaveQueryPublishes(t *testing.T) {
	t.Parallel()

	w := &fakeWriter{}
	p := NewPublisher(NewMemory(), w)
	ctx := context.Background()

	require.NoError(t, p.SaveQuery(ctx, Query{
		UserID:   "U1",
		Text:     "chinese in shoreditch",
		Criteria: &model.SearchCriteria{CuisineType: "Chinese", Location: shoreditch()},
	}))

	require.Len(t, w.msgs, 1)
	assert.Equal(t, []byte("U1"), w.msgs[0].Key)

	var evt SearchQueryEvent
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &evt))
	assert.NotEmpty(t, evt.ID)
	assert.True(t, evt.Parsed)
	assert.True(t, evt.HasLocation)
	assert.Equal(t, "Chinese", evt.CuisineType)

	loc, err := p.LatestLocation(ctx, "U1", evt.CreatedAt)
	require.NoError(t, err)
	assert.Equal(t, "Shoreditch", loc.Name)
}

func TestPublisher_PublishFailureIgnored(t *testing.T) {
	t.Parallel()

	w := &fakeWriter{err: errors.New("broker unavailable")}
	p := NewPublisher(NewMemory(), w)

	require.NoError(t, p.SaveQuery(context.Background(), Query{UserID: "U1", Text: "???"}))

	n, err := p.CountQueries(context.Background(), "U1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestPublisher_Close(t *testing.T) {
	t.Parallel()

	w := &fakeWriter{}
	require.NoError(t, NewPublisher(NewMemory(), w).Close())
	assert.True(t, w.closed)
}
