package payment

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTransaction(t *testing.T) {
	customer := Customer{Name: "A", Email: "a@x.com"}

	t.Run("SuccessfulCreation", func(t *testing.T) {
		before := time.Now().UTC()
		tx, err := NewTransaction(customer, 100, "bdt")

		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, tx.TransactionID)
		assert.Equal(t, customer, tx.Customer)
		assert.Equal(t, int64(100), tx.Amount)
		assert.Equal(t, "BDT", tx.Currency)
		assert.Equal(t, StatusPending, tx.Status)
		assert.False(t, tx.IsPaid())
		assert.Nil(t, tx.PaidAt)
		assert.WithinDuration(t, before, tx.CreatedAt, time.Second)
	})

	t.Run("UniqueIDs", func(t *testing.T) {
		seen := make(map[uuid.UUID]bool)
		for i := 0; i < 1000; i++ {
			tx, err := NewTransaction(customer, 1, "USD")
			require.NoError(t, err)
			require.False(t, seen[tx.TransactionID])
			seen[tx.TransactionID] = true
		}
	})

	t.Run("Validation", func(t *testing.T) {
		testCases := []struct {
			name     string
			customer Customer
			amount   int64
			currency string
			want     error
		}{
			{"ZeroAmount", customer, 0, "USD", ErrInvalidAmount},
			{"NegativeAmount", customer, -5, "USD", ErrInvalidAmount},
			{"BadCurrency", customer, 10, "DOLLAR", ErrInvalidCurrencyFormat},
			{"NoEmail", Customer{Name: "A"}, 10, "USD", ErrMissingCustomerEmail},
		}
		for _, tc := range testCases {
			t.Run(tc.name, func(t *testing.T) {
				tx, err := NewTransaction(tc.customer, tc.amount, tc.currency)
				assert.Nil(t, tx)
				assert.ErrorIs(t, err, tc.want)
			})
		}
	})
}

func TestErrorMatching(t *testing.T) {
	id := uuid.New()

	assert.True(t, errors.Is(ErrTransactionNotFound{TransactionID: id}, ErrTransactionNotFound{}))
	assert.False(t, errors.Is(ErrTransactionNotFound{TransactionID: id}, ErrTransactionNotFound{TransactionID: uuid.New()}))
	assert.True(t, errors.Is(ErrGateway{TransactionID: id, Reason: "timeout"}, ErrGateway{}))
	assert.True(t, errors.Is(ErrDuplicateTransaction{TransactionID: id}, ErrDuplicateTransaction{}))
}
