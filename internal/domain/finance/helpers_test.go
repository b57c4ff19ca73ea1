package finance

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/himfirm/backend/internal/domain/shared/valueobject"
)

func mustINR(t *testing.T, amount string) valueobject.Money {
	t.Helper()
	m, err := valueobject.NewMoneyINRFromString(amount)
	require.NoError(t, err)
	return m
}
