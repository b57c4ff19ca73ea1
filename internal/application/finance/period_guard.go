package finance

import (
	"context"
	"time"

	"github.com/himfirm/backend/internal/domain/finance"
	"github.com/himfirm/backend/internal/domain/shared"
)

// periodGuard rejects financial postings dated inside a closed period.
// Dates with no covering period are open by definition.
type periodGuard struct {
	periodRepo finance.FinancialPeriodRepository
}

func (g periodGuard) ensureOpen(ctx context.Context, date time.Time) error {
	if g.periodRepo == nil {
		return nil
	}
	period, err := g.periodRepo.FindCovering(ctx, date)
	if err != nil {
		return err
	}
	if period != nil && period.IsClosed() {
		return shared.ErrPeriodClosed
	}
	return nil
}
