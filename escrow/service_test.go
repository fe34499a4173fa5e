package escrow

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"escrowbot/store"
	"escrowbot/wallet"
)

const (
	btcAddr  = "1A1zP1eP5QGefi2DMPTfTL5SLmv7DivfNa"
	btcAddr2 = "1BvBMSEYstWetqTFn5Au4m4GFg7xJaNVN2"
	ltcAddr  = "LdP8Qox1VAhCzLJNqrr74YovaWYyNBUWvL"
)

func prepare() (*Service, *store.Memory) {
	mem := store.NewMemory()
	return NewService(mem, wallet.Mock{}), mem
}

func TestService_CreateTransaction(t *testing.T) {
	svc, _ := prepare()

	tr, err := svc.CreateTransaction(1, store.BTC)
	require.NoError(t, err)
	assert.NotEmpty(t, tr.ID)
	assert.Equal(t, store.StatusCreated, tr.Status)
	assert.Equal(t, store.BTC, tr.Currency)
	assert.Equal(t, int64(1), tr.UserID)
	assert.False(t, tr.CreatedAt.IsZero())

	got, err := svc.GetTransaction(1)
	require.NoError(t, err)
	assert.Equal(t, tr.ID, got.ID)
}

func TestService_CreateTransactionUnsupportedCurrency(t *testing.T) {
	svc, _ := prepare()

	_, err := svc.CreateTransaction(1, "XYZ")
	assert.ErrorIs(t, err, ErrInvalidCurrency)

	_, err = svc.GetTransaction(1)
	assert.ErrorIs(t, err, ErrNoActiveTransaction)
}

func TestService_CreateTransactionReplacesPrior(t *testing.T) {
	svc, _ := prepare()

	first, err := svc.CreateTransaction(1, store.BTC)
	require.NoError(t, err)

	second, err := svc.CreateTransaction(1, store.LTC)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	got, err := svc.GetTransaction(1)
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)
	assert.Equal(t, store.LTC, got.Currency)
}

func TestService_GetTransactionAbsent(t *testing.T) {
	svc, _ := prepare()

	_, err := svc.GetTransaction(42)
	assert.ErrorIs(t, err, ErrNoActiveTransaction)
}

func TestService_SetBuyerAddress(t *testing.T) {
	svc, _ := prepare()
	_, err := svc.CreateTransaction(1, store.BTC)
	require.NoError(t, err)

	tr, err := svc.SetBuyerAddress(1, btcAddr)
	require.NoError(t, err)
	assert.Equal(t, btcAddr, tr.BuyerAddress)
	assert.Equal(t, store.StatusBuyerSet, tr.Status)

	// second attempt rejected, stored address unchanged
	_, err = svc.SetBuyerAddress(1, btcAddr2)
	assert.ErrorIs(t, err, ErrAddressAlreadySet)

	got, err := svc.GetTransaction(1)
	require.NoError(t, err)
	assert.Equal(t, btcAddr, got.BuyerAddress)
}

func TestService_SetBuyerAddressBadFormat(t *testing.T) {
	svc, _ := prepare()
	_, err := svc.CreateTransaction(1, store.BTC)
	require.NoError(t, err)

	_, err = svc.SetBuyerAddress(1, "not-an-address")
	assert.ErrorIs(t, err, ErrInvalidAddressFormat)

	// ltc address doesn't pass the btc check either
	_, err = svc.SetBuyerAddress(1, ltcAddr)
	assert.ErrorIs(t, err, ErrInvalidAddressFormat)

	got, err := svc.GetTransaction(1)
	require.NoError(t, err)
	assert.Empty(t, got.BuyerAddress)
	assert.Equal(t, store.StatusCreated, got.Status)
}

func TestService_SetBuyerAddressNoTransaction(t *testing.T) {
	svc, _ := prepare()

	_, err := svc.SetBuyerAddress(1, btcAddr)
	assert.ErrorIs(t, err, ErrNoActiveTransaction)
}

func TestService_SetSellerAddress(t *testing.T) {
	svc, _ := prepare()
	_, err := svc.CreateTransaction(1, store.BTC)
	require.NoError(t, err)

	// seller can be set straight from created
	tr, err := svc.SetSellerAddress(1, btcAddr2)
	require.NoError(t, err)
	assert.Equal(t, store.StatusSellerSet, tr.Status)

	// buyer set afterwards doesn't move the status backward
	tr, err = svc.SetBuyerAddress(1, btcAddr)
	require.NoError(t, err)
	assert.Equal(t, store.StatusSellerSet, tr.Status)
	assert.Equal(t, btcAddr, tr.BuyerAddress)

	_, err = svc.SetSellerAddress(1, btcAddr)
	assert.ErrorIs(t, err, ErrAddressAlreadySet)
}

func TestService_FundingAndPayout(t *testing.T) {
	svc, _ := prepare()
	_, err := svc.CreateTransaction(1, store.BTC)
	require.NoError(t, err)

	// payout before funding denied
	_, err = svc.PayOutToSeller(1)
	assert.ErrorIs(t, err, ErrNotFunded)

	// funding before both addresses denied
	_, err = svc.MarkFunded(1, 0.25)
	assert.ErrorIs(t, err, ErrNotAwaitingFunds)

	_, err = svc.SetBuyerAddress(1, btcAddr)
	require.NoError(t, err)
	_, err = svc.SetSellerAddress(1, btcAddr2)
	require.NoError(t, err)

	tr, err := svc.MarkFunded(1, 0.25)
	require.NoError(t, err)
	assert.Equal(t, store.StatusFunded, tr.Status)
	assert.Equal(t, 0.25, tr.Amount)
	require.NotNil(t, tr.FundedAt)

	tr, err = svc.PayOutToSeller(1)
	require.NoError(t, err)
	assert.Equal(t, store.StatusCompleted, tr.Status)

	// terminal state, no refund possible anymore
	_, err = svc.RefundToBuyer(1)
	assert.ErrorIs(t, err, ErrNotFunded)
}

func TestService_MarkFundedRequiresBuyerAddress(t *testing.T) {
	svc, _ := prepare()
	_, err := svc.CreateTransaction(1, store.BTC)
	require.NoError(t, err)

	// seller-first order reaches seller_set with no buyer address
	tr, err := svc.SetSellerAddress(1, btcAddr2)
	require.NoError(t, err)
	assert.Equal(t, store.StatusSellerSet, tr.Status)
	assert.Empty(t, tr.BuyerAddress)

	_, err = svc.MarkFunded(1, 1)
	assert.ErrorIs(t, err, ErrNotAwaitingFunds, "no funding while refund would have no target")

	_, err = svc.SetBuyerAddress(1, btcAddr)
	require.NoError(t, err)

	tr, err = svc.MarkFunded(1, 1)
	require.NoError(t, err)
	assert.Equal(t, store.StatusFunded, tr.Status)
}

func TestService_Refund(t *testing.T) {
	svc, _ := prepare()
	_, err := svc.CreateTransaction(1, store.LTC)
	require.NoError(t, err)

	_, err = svc.RefundToBuyer(1)
	assert.ErrorIs(t, err, ErrNotFunded)

	_, err = svc.SetBuyerAddress(1, ltcAddr)
	require.NoError(t, err)
	_, err = svc.SetSellerAddress(1, "LhK2kQwiaAvhjWY799cZvMyYwnQAcxkarr")
	require.NoError(t, err)

	_, err = svc.MarkFunded(1, 10)
	require.NoError(t, err)

	tr, err := svc.RefundToBuyer(1)
	require.NoError(t, err)
	assert.Equal(t, store.StatusRefunded, tr.Status)

	_, err = svc.PayOutToSeller(1)
	assert.ErrorIs(t, err, ErrNotFunded)
}

func TestService_ResetTransaction(t *testing.T) {
	svc, _ := prepare()

	// reset with nothing stored is a no-op
	require.NoError(t, svc.ResetTransaction(1))

	_, err := svc.CreateTransaction(1, store.BTC)
	require.NoError(t, err)

	require.NoError(t, svc.ResetTransaction(1))
	_, err = svc.GetTransaction(1)
	assert.ErrorIs(t, err, ErrNoActiveTransaction)
}

func TestService_SubmitReview(t *testing.T) {
	svc, mem := prepare()

	_, err := svc.SubmitReview(1, "great")
	assert.ErrorIs(t, err, ErrNoActiveTransaction)

	tr, err := svc.CreateTransaction(1, store.BTC)
	require.NoError(t, err)

	_, err = svc.SubmitReview(1, "great")
	assert.ErrorIs(t, err, ErrNotCompleted)
	assert.Empty(t, mem.Reviews())

	_, err = svc.SetBuyerAddress(1, btcAddr)
	require.NoError(t, err)
	_, err = svc.SetSellerAddress(1, btcAddr2)
	require.NoError(t, err)
	_, err = svc.MarkFunded(1, 1)
	require.NoError(t, err)
	_, err = svc.PayOutToSeller(1)
	require.NoError(t, err)

	rev, err := svc.SubmitReview(1, "great")
	require.NoError(t, err)
	assert.Equal(t, tr.ID, rev.TransactionID)
	assert.Equal(t, "great", rev.Message)

	reviews := mem.Reviews()
	require.Len(t, reviews, 1)
	assert.Equal(t, tr.ID, reviews[0].TransactionID)
}

func TestService_SubmitReport(t *testing.T) {
	svc, mem := prepare()

	rep, err := svc.SubmitReport(7, "scam attempt")
	require.NoError(t, err)
	assert.Equal(t, int64(7), rep.UserID)
	assert.False(t, rep.Resolved)

	reports := mem.Reports()
	require.Len(t, reports, 1)
	assert.Equal(t, "scam attempt", reports[0].Message)
}

func TestService_ConcurrentSetBuyerAddress(t *testing.T) {
	svc, _ := prepare()
	_, err := svc.CreateTransaction(1, store.BTC)
	require.NoError(t, err)

	addrs := []string{btcAddr, btcAddr2}
	start := make(chan struct{})
	results := make(chan error, len(addrs))

	var wg sync.WaitGroup
	for _, addr := range addrs {
		wg.Add(1)
		go func(addr string) {
			defer wg.Done()
			<-start
			_, e := svc.SetBuyerAddress(1, addr)
			results <- e
		}(addr)
	}
	close(start)
	wg.Wait()
	close(results)

	var okCount, dupCount int
	for e := range results {
		switch {
		case e == nil:
			okCount++
		case errors.Is(e, ErrAddressAlreadySet):
			dupCount++
		default:
			t.Fatalf("unexpected error: %v", e)
		}
	}
	assert.Equal(t, 1, okCount, "exactly one writer wins")
	assert.Equal(t, 1, dupCount, "the other one is rejected")

	tr, err := svc.GetTransaction(1)
	require.NoError(t, err)
	assert.Contains(t, addrs, tr.BuyerAddress)
	assert.Equal(t, store.StatusBuyerSet, tr.Status)
}
