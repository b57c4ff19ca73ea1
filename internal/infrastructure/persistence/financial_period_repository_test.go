package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/himfirm/backend/internal/domain/finance"
	"github.com/himfirm/backend/internal/domain/shared"
)

func TestGormFinancialPeriodRepository_FindCovering(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormFinancialPeriodRepository(db)
	ctx := context.Background()

	april, err := finance.NewFinancialPeriod("FY27 April",
		time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 4, 30, 23, 59, 59, 0, time.UTC),
		uuid.New())
	require.NoError(t, err)
	may, err := finance.NewFinancialPeriod("FY27 May",
		time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 5, 31, 23, 59, 59, 0, time.UTC),
		uuid.New())
	require.NoError(t, err)

	require.NoError(t, repo.Save(ctx, april))
	require.NoError(t, repo.Save(ctx, may))

	period, err := repo.FindCovering(ctx, time.Date(2026, 5, 15, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "FY27 May", period.Name)

	_, err = repo.FindCovering(ctx, time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC))
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestGormTaxConfigurationRepository_FindRateAsOf(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormTaxConfigurationRepository(db)
	ctx := context.Background()

	cutover := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	retiredEnd := cutover.Add(-time.Second)

	old, err := finance.NewTaxConfiguration("GST", dec("12"),
		time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), &retiredEnd, uuid.New())
	require.NoError(t, err)
	current, err := finance.NewTaxConfiguration("GST", dec("18"), cutover, nil, uuid.New())
	require.NoError(t, err)

	require.NoError(t, repo.Save(ctx, old))
	require.NoError(t, repo.Save(ctx, current))

	cfg, err := repo.FindRateAsOf(ctx, "GST", time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, cfg.Rate.Equal(dec("18")))

	cfg, err = repo.FindRateAsOf(ctx, "GST", time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, cfg.Rate.Equal(dec("12")))

	_, err = repo.FindRateAsOf(ctx, "TDS", time.Now())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}
