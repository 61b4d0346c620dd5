package reconciliation

import (
	"context"

	dbtypes "github.com/gang93/pos-backend/pkg/db/types"
	"github.com/gang93/pos-backend/pkg/types"
)

// Job is everything the deferred write needs about one committed order.
type Job struct {
	OrderID int64
	Date    dbtypes.Date
	Time    dbtypes.ClockTime
	Deltas  types.IngredientDeltas
	Sales   []types.SaleDescriptor
}

// Scheduler hands a job off without waiting for it to run.
type Scheduler interface {
	Schedule(ctx context.Context, job Job)
}
