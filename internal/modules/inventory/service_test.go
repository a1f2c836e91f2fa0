package inventory

import (
	"testing"
	"time"

	"salonbooking/internal/domain"

	"github.com/stretchr/testify/assert"
)

func batch(id int64, qty int, expires *time.Time) domain.StockBatch {
	return domain.StockBatch{ID: id, Quantity: qty, ExpiresAt: expires}
}

func TestPlanDepletion_SingleBatch(t *testing.T) {
	plan, err := PlanDepletion([]domain.StockBatch{batch(1, 10, nil)}, 4)

	assert.NoError(t, err)
	assert.Equal(t, []Draw{{BatchID: 1, Qty: 4}}, plan)
}

// The plan follows the given order and spills into later batches only when
// the earlier ones run out.
func TestPlanDepletion_SpansBatchesInOrder(t *testing.T) {
	soon := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	later := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC)

	plan, err := PlanDepletion([]domain.StockBatch{
		batch(1, 3, &soon),
		batch(2, 5, &later),
		batch(3, 100, nil),
	}, 7)

	assert.NoError(t, err)
	assert.Equal(t, []Draw{
		{BatchID: 1, Qty: 3},
		{BatchID: 2, Qty: 4},
	}, plan)
}

func TestPlanDepletion_ExactFit(t *testing.T) {
	plan, err := PlanDepletion([]domain.StockBatch{
		batch(1, 3, nil),
		batch(2, 2, nil),
	}, 5)

	assert.NoError(t, err)
	assert.Equal(t, []Draw{
		{BatchID: 1, Qty: 3},
		{BatchID: 2, Qty: 2},
	}, plan)
}

func TestPlanDepletion_InsufficientStock(t *testing.T) {
	_, err := PlanDepletion([]domain.StockBatch{
		batch(1, 3, nil),
		batch(2, 2, nil),
	}, 6)

	assert.ErrorIs(t, err, ErrInsufficientStock)
}

func TestPlanDepletion_SkipsEmptyBatches(t *testing.T) {
	plan, err := PlanDepletion([]domain.StockBatch{
		batch(1, 0, nil),
		batch(2, 5, nil),
	}, 5)

	assert.NoError(t, err)
	assert.Equal(t, []Draw{{BatchID: 2, Qty: 5}}, plan)
}

func TestPlanDepletion_EmptyPool(t *testing.T) {
	_, err := PlanDepletion(nil, 1)
	assert.ErrorIs(t, err, ErrInsufficientStock)
}
