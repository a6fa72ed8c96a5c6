package dealflow_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"garthbid/internal/domain"
	"garthbid/internal/domain/entity"
	"garthbid/internal/domain/service/dealflow"
	"garthbid/internal/domain/value"
	"garthbid/pkg/errcodes"
)

func newStore(t *testing.T) (*dealflow.Store, entity.Deal) {
	t.Helper()

	deal, err := dealflow.NewDeal(newInput("deal-1", 14500), dealflow.DefaultFeeRate, 0, "evt-1")
	require.NoError(t, err)

	store := dealflow.NewStore()
	require.NoError(t, store.Add(deal))

	return store, deal
}

func TestStoreAdd(t *testing.T) {
	rq := require.New(t)

	store, deal := newStore(t)

	err := store.Add(deal)
	rq.Equal(domain.KindConflict, domain.GetKind(err))

	broken := deal
	broken.ID = "deal-2"
	broken.SellerPayout = decimal.NewFromInt(1)

	err = store.Add(broken)
	code, _ := domain.GetCode(err)
	rq.Equal(errcodes.DealInvariantBroken, code)
	rq.Equal(1, store.Len())
}

func TestStoreUpdateRejectsBrokenSuccessor(t *testing.T) {
	rq := require.New(t)

	testCases := []struct {
		name   string
		mutate func(*entity.Deal)
	}{
		{name: "Id", mutate: func(d *entity.Deal) { d.ID = "other" }},
		{name: "Fee", mutate: func(d *entity.Deal) { d.PlatformFee = d.PlatformFee.Add(decimal.NewFromInt(1)) }},
		{name: "Deadline", mutate: func(d *entity.Deal) { d.PaymentDeadline = d.PaymentDeadline.Add(time.Hour) }},
		{name: "Timeline shrinks", mutate: func(d *entity.Deal) { d.Timeline = nil }},
		{name: "Timeline rewritten", mutate: func(d *entity.Deal) { d.Timeline[0].ID = "forged" }},
		{name: "Skips a stage", mutate: func(d *entity.Deal) { d.Status = value.DealStatusFundsHeld }},
		{name: "Unknown status", mutate: func(d *entity.Deal) { d.Status = "LOST" }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(*testing.T) {
			store, before := newStore(t)

			_, err := store.Update("deal-1", func(d entity.Deal) (entity.Deal, error) {
				tc.mutate(&d)
				return d, nil
			})
			code, _ := domain.GetCode(err)
			rq.Equal(errcodes.DealInvariantBroken, code)

			after, err := store.Get("deal-1")
			rq.NoError(err)
			rq.Equal(before, after)
		})
	}
}

func TestStoreSnapshotsAreIsolated(t *testing.T) {
	rq := require.New(t)

	store, _ := newStore(t)

	listed := store.List()
	got, err := store.Get("deal-1")
	rq.NoError(err)

	_, err = store.Update("deal-1", func(d entity.Deal) (entity.Deal, error) {
		return dealflow.ConfirmPayment(d, endedAt.Add(time.Hour), "evt-2")
	})
	rq.NoError(err)

	rq.Equal(value.DealStatusAwaitingPayment, listed[0].Status)
	rq.Equal(value.DealStatusAwaitingPayment, got.Status)
	rq.Len(got.Timeline, 1)

	got.Timeline[0].Event = "tampered"

	fresh, err := store.Get("deal-1")
	rq.NoError(err)
	rq.Equal("Auction ended", fresh.Timeline[0].Event)
	rq.Equal(value.DealStatusPaymentReceived, fresh.Status)
}

func TestStoreUpdateNotFound(t *testing.T) {
	rq := require.New(t)

	_, err := dealflow.NewStore().Update("missing", func(d entity.Deal) (entity.Deal, error) { return d, nil })
	rq.Equal(domain.KindNotFound, domain.GetKind(err))
}
