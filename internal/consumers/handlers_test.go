package consumers

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"boxoffice/internal/models"
)

type fakeIndex struct {
	docs    map[string]models.Sale
	cleared int
	err     error
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{docs: map[string]models.Sale{}}
}

func (f *fakeIndex) IndexSale(ctx context.Context, sale *models.Sale) error {
	if f.err != nil {
		return f.err
	}
	f.docs[sale.ID] = *sale
	return nil
}

func (f *fakeIndex) DeleteSale(ctx context.Context, id string) error {
	if f.err != nil {
		return f.err
	}
	delete(f.docs, id)
	return nil
}

func (f *fakeIndex) DeleteAll(ctx context.Context) error {
	if f.err != nil {
		return f.err
	}
	f.docs = map[string]models.Sale{}
	f.cleared++
	return nil
}

type fakeSource map[string]models.Sale

func (f fakeSource) GetByID(ctx context.Context, id string) (*models.Sale, error) {
	s, ok := f[id]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

func payload(t *testing.T, event models.SalesChangedEvent) []byte {
	t.Helper()
	event.Timestamp = time.Now()
	data, err := json.Marshal(event)
	require.NoError(t, err)
	return data
}

func TestProcessCreatedAndDeleted(t *testing.T) {
	index := newFakeIndex()
	h := NewHandlers(index, fakeSource{})
	ctx := context.Background()

	sale := &models.Sale{ID: "s1", BuyerName: "Ana", Seats: []string{"A1-ESQ"}}
	require.NoError(t, h.Process(ctx, payload(t, models.SalesChangedEvent{
		Action: models.SaleActionCreated, SaleID: "s1", Sale: sale,
	})))
	assert.Equal(t, "Ana", index.docs["s1"].BuyerName)

	require.NoError(t, h.Process(ctx, payload(t, models.SalesChangedEvent{
		Action: models.SaleActionDeleted, SaleID: "s1", Seats: []string{"A1-ESQ"},
	})))
	assert.Empty(t, index.docs)
}

func TestProcessCreatedLoadsMissingBody(t *testing.T) {
	index := newFakeIndex()
	h := NewHandlers(index, fakeSource{"s2": {ID: "s2", BuyerName: "Bruno"}})

	require.NoError(t, h.Process(context.Background(), payload(t, models.SalesChangedEvent{
		Action: models.SaleActionCreated, SaleID: "s2",
	})))
	assert.Equal(t, "Bruno", index.docs["s2"].BuyerName)

	// already deleted from the ledger
	require.NoError(t, h.Process(context.Background(), payload(t, models.SalesChangedEvent{
		Action: models.SaleActionCreated, SaleID: "gone",
	})))
	assert.Len(t, index.docs, 1)
}

func TestProcessReset(t *testing.T) {
	index := newFakeIndex()
	index.docs["s1"] = models.Sale{ID: "s1"}
	h := NewHandlers(index, fakeSource{})

	require.NoError(t, h.Process(context.Background(), payload(t, models.SalesChangedEvent{Action: models.SaleActionReset})))
	assert.Empty(t, index.docs)
	assert.Equal(t, 1, index.cleared)
}

func TestProcessMalformed(t *testing.T) {
	h := NewHandlers(newFakeIndex(), fakeSource{})
	ctx := context.Background()

	for name, data := range map[string][]byte{
		"not json":       []byte("{"),
		"unknown action": payload(t, models.SalesChangedEvent{Action: "renamed"}),
		"delete no id":   payload(t, models.SalesChangedEvent{Action: models.SaleActionDeleted}),
	} {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, h.Process(ctx, data), errMalformedEvent)
		})
	}
}

func TestProcessIndexFailureIsRetryable(t *testing.T) {
	index := newFakeIndex()
	index.err = errors.New("es down")
	h := NewHandlers(index, fakeSource{})

	err := h.Process(context.Background(), payload(t, models.SalesChangedEvent{
		Action: models.SaleActionCreated, SaleID: "s1", Sale: &models.Sale{ID: "s1"},
	}))
	require.Error(t, err)
	assert.NotErrorIs(t, err, errMalformedEvent)
}
