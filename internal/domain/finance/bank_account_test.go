package finance

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/himfirm/backend/internal/domain/shared"
	"github.com/himfirm/backend/internal/domain/shared/valueobject"
)

func newTestBankAccount(t *testing.T, opening float64) *BankAccount {
	t.Helper()
	acc, err := NewBankAccount("Operations", "1100234567", "HDFC Bank", "Andheri West", "HDFC0000123",
		valueobject.NewMoneyINRFromFloat(opening), uuid.New())
	require.NoError(t, err)
	return acc
}

func TestBankAccountPost(t *testing.T) {
	t.Run("deposit raises balance and stamps balance_after", func(t *testing.T) {
		acc := newTestBankAccount(t, 50000)
		txn, err := acc.Post(TransactionTypeDeposit, valueobject.NewMoneyINRFromFloat(6000),
			time.Now(), "RCP-20260815-00001", "Customer receipt", PostingCause{}, uuid.New())
		require.NoError(t, err)
		assert.True(t, acc.CurrentBalance.Equal(decimal.NewFromInt(56000)))
		assert.True(t, txn.BalanceAfter.Equal(decimal.NewFromInt(56000)))
		assert.Equal(t, FlowCredit, txn.Flow)
	})

	t.Run("withdrawal and fee lower the balance", func(t *testing.T) {
		acc := newTestBankAccount(t, 50000)
		_, err := acc.Post(TransactionTypeWithdrawal, valueobject.NewMoneyINRFromFloat(20000),
			time.Now(), "EXP-20260815-00001", "Vendor payment", PostingCause{}, uuid.New())
		require.NoError(t, err)
		_, err = acc.Post(TransactionTypeFee, valueobject.NewMoneyINRFromFloat(250),
			time.Now(), "FEE-Q2", "Quarterly charges", PostingCause{}, uuid.New())
		require.NoError(t, err)
		assert.True(t, acc.CurrentBalance.Equal(decimal.NewFromInt(29750)))
	})

	t.Run("interest credits like a deposit", func(t *testing.T) {
		acc := newTestBankAccount(t, 1000)
		txn, err := acc.Post(TransactionTypeInterest, valueobject.NewMoneyINRFromFloat(12.50),
			time.Now(), "INT-AUG", "", PostingCause{}, uuid.New())
		require.NoError(t, err)
		assert.Equal(t, FlowCredit, txn.Flow)
		assert.True(t, acc.CurrentBalance.Equal(decimal.NewFromFloat(1012.50)))
	})

	t.Run("negative balance rejected when not allowed", func(t *testing.T) {
		acc := newTestBankAccount(t, 100)
		acc.AllowNegative = false
		_, err := acc.Post(TransactionTypeWithdrawal, valueobject.NewMoneyINRFromFloat(200),
			time.Now(), "EXP-X", "", PostingCause{}, uuid.New())
		assert.Equal(t, shared.ErrInsufficientFunds, err)
		assert.True(t, acc.CurrentBalance.Equal(decimal.NewFromInt(100)))
	})

	t.Run("negative balance allowed by default", func(t *testing.T) {
		acc := newTestBankAccount(t, 100)
		_, err := acc.Post(TransactionTypeWithdrawal, valueobject.NewMoneyINRFromFloat(200),
			time.Now(), "EXP-X", "", PostingCause{}, uuid.New())
		require.NoError(t, err)
		assert.True(t, acc.CurrentBalance.IsNegative())
	})

	t.Run("inactive account rejects postings", func(t *testing.T) {
		acc := newTestBankAccount(t, 100)
		acc.Deactivate()
		_, err := acc.Post(TransactionTypeDeposit, valueobject.NewMoneyINRFromFloat(50),
			time.Now(), "X", "", PostingCause{}, uuid.New())
		assert.Error(t, err)
	})

	t.Run("transfer type cannot be posted directly", func(t *testing.T) {
		acc := newTestBankAccount(t, 100)
		_, err := acc.Post(TransactionTypeTransfer, valueobject.NewMoneyINRFromFloat(50),
			time.Now(), "X", "", PostingCause{}, uuid.New())
		assert.Error(t, err)
	})
}

func TestBankAccountPostTransfer(t *testing.T) {
	acc := newTestBankAccount(t, 1000)
	counterparty := uuid.New()

	out, err := acc.PostTransfer(valueobject.NewMoneyINRFromFloat(400), true, counterparty,
		time.Now(), "TRF-001", "Move to savings", uuid.New())
	require.NoError(t, err)
	assert.Equal(t, FlowDebit, out.Flow)
	assert.Equal(t, TransactionTypeTransfer, out.Type)
	assert.True(t, acc.CurrentBalance.Equal(decimal.NewFromInt(600)))

	in, err := acc.PostTransfer(valueobject.NewMoneyINRFromFloat(150), false, counterparty,
		time.Now(), "TRF-002", "Return from savings", uuid.New())
	require.NoError(t, err)
	assert.Equal(t, FlowCredit, in.Flow)
	assert.True(t, acc.CurrentBalance.Equal(decimal.NewFromInt(750)))
}

func TestBankAccountReverse(t *testing.T) {
	t.Run("reversal offsets the original without mutating it", func(t *testing.T) {
		acc := newTestBankAccount(t, 50000)
		deposit, err := acc.Post(TransactionTypeDeposit, valueobject.NewMoneyINRFromFloat(6000),
			time.Now(), "RCP-20260815-00001", "Customer receipt", PostingCause{}, uuid.New())
		require.NoError(t, err)

		reversal, err := acc.Reverse(deposit, "BOUNCED-RCP-20260815-00001", uuid.New())
		require.NoError(t, err)

		assert.True(t, acc.CurrentBalance.Equal(decimal.NewFromInt(50000)))
		assert.Equal(t, TransactionTypeWithdrawal, reversal.Type)
		assert.Equal(t, FlowDebit, reversal.Flow)
		assert.True(t, reversal.Amount.Equal(deposit.Amount))
		require.NotNil(t, reversal.ReversesID)
		assert.Equal(t, deposit.ID, *reversal.ReversesID)

		// original entry untouched
		assert.True(t, deposit.BalanceAfter.Equal(decimal.NewFromInt(56000)))
		assert.Nil(t, deposit.ReversesID)
	})

	t.Run("rejects transaction from another account", func(t *testing.T) {
		acc := newTestBankAccount(t, 1000)
		other := newTestBankAccount(t, 1000)
		txn, err := other.Post(TransactionTypeDeposit, valueobject.NewMoneyINRFromFloat(100),
			time.Now(), "X", "", PostingCause{}, uuid.New())
		require.NoError(t, err)
		_, err = acc.Reverse(txn, "", uuid.New())
		assert.Error(t, err)
	})
}

func TestBankAccountVerifyBalance(t *testing.T) {
	acc := newTestBankAccount(t, 50000)
	var entries []BankTransaction

	txn, err := acc.Post(TransactionTypeDeposit, valueobject.NewMoneyINRFromFloat(6000),
		time.Now(), "RCP-1", "", PostingCause{}, uuid.New())
	require.NoError(t, err)
	entries = append(entries, *txn)

	txn, err = acc.Post(TransactionTypeWithdrawal, valueobject.NewMoneyINRFromFloat(1500),
		time.Now(), "EXP-1", "", PostingCause{}, uuid.New())
	require.NoError(t, err)
	entries = append(entries, *txn)

	assert.NoError(t, acc.VerifyBalance(entries))

	// a drifted stored balance must be caught
	acc.CurrentBalance = acc.CurrentBalance.Add(decimal.NewFromInt(1))
	err = acc.VerifyBalance(entries)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "balance mismatch")
}
