package dealflow_test

import (
	"context"
	"errors"
	"net/url"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"garthbid/internal/domain"
	"garthbid/internal/domain/entity"
	"garthbid/internal/domain/service/dealflow"
	"garthbid/internal/domain/value"
	"garthbid/pkg/errcodes"
	"garthbid/pkg/tests"
)

var (
	errInvalidTransition = domain.NewError(domain.KindConflict, errcodes.InvalidDealTransition, "")
	errPayoutInfoMissing = domain.NewError(domain.KindUnprocessable, errcodes.PayoutInfoMissing, "")
)

var endedAt = time.Date(2026, time.February, 2, 18, 0, 0, 0, time.UTC) //nolint:gochecknoglobals

func newInput(id string, price int64) dealflow.NewDealInput {
	return dealflow.NewDealInput{
		ID:             id,
		ItemTitle:      "1967 Ford Mustang Fastback",
		Location:       "Austin, TX",
		SalePrice:      decimal.NewFromInt(price),
		AuctionEndedAt: endedAt,
		Buyer: entity.Party{
			ID: "u-buyer", Username: "bidder42", Name: "Jane Roe", Email: "jane@example.com",
		},
		Seller: entity.Seller{
			Party: entity.Party{ID: "u-seller", Username: "garagefinds", Name: "John Doe", Email: "john@example.com"},
			PayoutInfo: &entity.PayoutInfo{
				BankName: "Chase", Last4: "4321", AccountType: value.AccountTypeChecking,
			},
		},
	}
}

func newService(t *testing.T) (*dealflow.Service, *clock.Mock) {
	t.Helper()

	mock := clock.NewMock()
	mock.Set(endedAt.Add(time.Hour))

	return dealflow.NewService(dealflow.NewStore(), mock), mock
}

func TestNewDealSplitsSale(t *testing.T) {
	rq := require.New(t)

	testCases := []struct {
		name   string
		price  string
		fee    string
		payout string
	}{
		{name: "Round numbers", price: "14500", fee: "725", payout: "13775"},
		{name: "Fee rounds to cents", price: "99.99", fee: "5", payout: "94.99"},
		{name: "Tiny sale", price: "0.01", fee: "0", payout: "0.01"},
		{name: "Odd cents", price: "1234.57", fee: "61.73", payout: "1172.84"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(*testing.T) {
			in := newInput("deal-1", 0)
			in.SalePrice = decimal.RequireFromString(tc.price)

			deal, err := dealflow.NewDeal(in, dealflow.DefaultFeeRate, 0, "evt-1")
			rq.NoError(err)

			rq.True(decimal.RequireFromString(tc.fee).Equal(deal.PlatformFee), deal.PlatformFee.String())
			rq.True(decimal.RequireFromString(tc.payout).Equal(deal.SellerPayout), deal.SellerPayout.String())
			rq.True(deal.SellerPayout.Add(deal.PlatformFee).Equal(deal.SalePrice))
			rq.Equal(value.DealStatusAwaitingPayment, deal.Status)
			rq.Equal(endedAt.Add(72*time.Hour), deal.PaymentDeadline)
			rq.Len(deal.Timeline, 1)
			rq.Equal(value.ActorSystem, deal.Timeline[0].Actor)
		})
	}
}

func TestNewDealValidation(t *testing.T) {
	rq := require.New(t)

	testCases := []struct {
		name   string
		mutate func(*dealflow.NewDealInput)
	}{
		{name: "Empty id", mutate: func(in *dealflow.NewDealInput) { in.ID = " " }},
		{name: "Empty title", mutate: func(in *dealflow.NewDealInput) { in.ItemTitle = "" }},
		{name: "Zero price", mutate: func(in *dealflow.NewDealInput) { in.SalePrice = decimal.Zero }},
		{name: "Negative price", mutate: func(in *dealflow.NewDealInput) { in.SalePrice = decimal.NewFromInt(-5) }},
		{name: "No end time", mutate: func(in *dealflow.NewDealInput) { in.AuctionEndedAt = time.Time{} }},
		{name: "Bad last4", mutate: func(in *dealflow.NewDealInput) { in.Seller.PayoutInfo.Last4 = "12a4" }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(*testing.T) {
			in := newInput("deal-1", 100)
			tc.mutate(&in)

			_, err := dealflow.NewDeal(in, dealflow.DefaultFeeRate, 0, "evt-1")
			rq.Error(err)
			rq.Equal(domain.KindInvalidArgument, domain.GetKind(err))
		})
	}
}

func TestMarkAsPaidScenario(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	svc, _ := newService(t)

	deal, err := svc.Open(ctx, newInput("deal-1", 14500))
	rq.NoError(err)
	rq.True(decimal.NewFromInt(725).Equal(deal.PlatformFee))
	rq.True(decimal.NewFromInt(13775).Equal(deal.SellerPayout))

	deal, err = svc.ConfirmPayment(ctx, "deal-1")
	rq.NoError(err)
	rq.Equal(value.DealStatusPaymentReceived, deal.Status)

	before := len(deal.Timeline)

	deal, err = svc.MarkAsPaid(ctx, "deal-1")
	rq.NoError(err)
	rq.Equal(value.DealStatusFundsHeld, deal.Status)
	rq.Len(deal.Timeline, before+1)

	last, ok := deal.LastEvent()
	rq.True(ok)
	rq.Equal(value.ActorAdmin, last.Actor)
	rq.Equal("Marked as paid by admin", last.Event)

	_, err = svc.SendPayout(ctx, "deal-1")
	rq.ErrorIs(err, errInvalidTransition)
	rq.Equal(domain.KindConflict, domain.GetKind(err))

	stored, err := svc.Get(ctx, "deal-1")
	rq.NoError(err)
	rq.Equal(value.DealStatusFundsHeld, stored.Status)
	rq.Len(stored.Timeline, before+1)
}

func TestFullSettlement(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	svc, mock := newService(t)

	_, err := svc.Open(ctx, newInput("deal-1", 14500))
	rq.NoError(err)

	steps := []struct {
		op       func(context.Context, string) (entity.Deal, error)
		status   value.DealStatus
		actor    value.Actor
		released bool
	}{
		{op: svc.ConfirmPayment, status: value.DealStatusPaymentReceived, actor: value.ActorAdmin},
		{op: svc.MarkAsPaid, status: value.DealStatusFundsHeld, actor: value.ActorAdmin},
		{op: svc.ReleaseFunds, status: value.DealStatusFundsHeld, actor: value.ActorBuyer, released: true},
		{op: svc.RequestPayout, status: value.DealStatusPayoutRequested, actor: value.ActorSeller, released: true},
		{op: svc.SendPayout, status: value.DealStatusComplete, actor: value.ActorAdmin, released: true},
	}

	for i, step := range steps {
		mock.Add(time.Minute)

		deal, err := step.op(ctx, "deal-1")
		rq.NoError(err, "step %d", i)
		rq.Equal(step.status, deal.Status)
		rq.Equal(step.released, deal.FundsReleased())
		rq.Len(deal.Timeline, i+2)

		last, _ := deal.LastEvent()
		rq.Equal(step.actor, last.Actor)
		rq.Equal(mock.Now(), last.Timestamp)
	}

	deal, err := svc.Get(ctx, "deal-1")
	rq.NoError(err)

	last, _ := deal.LastEvent()
	rq.Equal("$13,775.00 sent to Chase ••••4321 (checking)", last.Note)

	for _, op := range []func(context.Context, string) (entity.Deal, error){
		svc.ConfirmPayment, svc.MarkAsPaid, svc.ReleaseFunds, svc.RequestPayout, svc.SendPayout,
	} {
		_, err := op(ctx, "deal-1")
		rq.ErrorIs(err, errInvalidTransition)
	}

	_, err = svc.UpdatePayoutInfo(ctx, "deal-1", entity.PayoutInfo{BankName: "Wells", Last4: "0000", AccountType: value.AccountTypeSavings})
	rq.ErrorIs(err, errInvalidTransition)
}

func TestReleaseFundsOnlyOnce(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	svc, mock := newService(t)

	_, err := svc.Open(ctx, newInput("deal-1", 500))
	rq.NoError(err)
	_, err = svc.ConfirmPayment(ctx, "deal-1")
	rq.NoError(err)
	_, err = svc.MarkAsPaid(ctx, "deal-1")
	rq.NoError(err)

	_, err = svc.RequestPayout(ctx, "deal-1")
	rq.ErrorIs(err, errInvalidTransition, "payout needs released funds")

	deal, err := svc.ReleaseFunds(ctx, "deal-1")
	rq.NoError(err)
	releasedAt := *deal.FundsReleasedAt

	mock.Add(time.Hour)

	_, err = svc.ReleaseFunds(ctx, "deal-1")
	rq.ErrorIs(err, errInvalidTransition)

	deal, err = svc.Get(ctx, "deal-1")
	rq.NoError(err)
	rq.Equal(releasedAt, *deal.FundsReleasedAt)
}

func TestSendPayoutRequiresPayoutInfo(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	svc, _ := newService(t)

	in := newInput("deal-1", 2000)
	in.Seller.PayoutInfo = nil

	_, err := svc.Open(ctx, in)
	rq.NoError(err)

	for _, op := range []func(context.Context, string) (entity.Deal, error){
		svc.ConfirmPayment, svc.MarkAsPaid, svc.ReleaseFunds, svc.RequestPayout,
	} {
		_, err := op(ctx, "deal-1")
		rq.NoError(err)
	}

	before, err := svc.Get(ctx, "deal-1")
	rq.NoError(err)

	_, err = svc.SendPayout(ctx, "deal-1")
	rq.ErrorIs(err, errPayoutInfoMissing)
	rq.False(errors.Is(err, errInvalidTransition))
	rq.Equal(domain.KindUnprocessable, domain.GetKind(err))

	after, err := svc.Get(ctx, "deal-1")
	rq.NoError(err)
	rq.Equal(before, after)

	_, err = svc.UpdatePayoutInfo(ctx, "deal-1", entity.PayoutInfo{BankName: "Ally", Last4: "12", AccountType: value.AccountTypeSavings})
	rq.Error(err)
	rq.Equal(domain.KindInvalidArgument, domain.GetKind(err))

	deal, err := svc.UpdatePayoutInfo(ctx, "deal-1", entity.PayoutInfo{BankName: "Ally", Last4: "9876", AccountType: value.AccountTypeSavings})
	rq.NoError(err)
	rq.Equal(value.DealStatusPayoutRequested, deal.Status)
	rq.Len(deal.Timeline, len(before.Timeline)+1)

	deal, err = svc.SendPayout(ctx, "deal-1")
	rq.NoError(err)
	rq.Equal(value.DealStatusComplete, deal.Status)

	last, _ := deal.LastEvent()
	rq.Equal("$1,900.00 sent to Ally ••••9876 (savings)", last.Note)
}

func TestUnknownDeal(t *testing.T) {
	rq := require.New(t)

	svc, _ := newService(t)

	_, err := svc.MarkAsPaid(context.Background(), "missing")
	rq.Equal(domain.KindNotFound, domain.GetKind(err))

	_, err = svc.Timer(context.Background(), "missing")
	rq.Equal(domain.KindNotFound, domain.GetKind(err))
}

// Любая последовательность статусов через публичные операции является
// префиксом порядка расчёта, суммы при этом не меняются.
func TestSettlementMonotonicity(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	const seed = 20260202

	random := tests.NewSeededRandomizer(seed)
	svc, mock := newService(t)

	ops := []func(context.Context, string) (entity.Deal, error){
		svc.ConfirmPayment, svc.MarkAsPaid, svc.ReleaseFunds, svc.RequestPayout, svc.SendPayout,
		func(ctx context.Context, id string) (entity.Deal, error) {
			return svc.UpdatePayoutInfo(ctx, id, entity.PayoutInfo{BankName: "Chase", Last4: "4321", AccountType: value.AccountTypeChecking})
		},
	}

	for d := 0; d < 20; d++ {
		id := "deal-" + string(rune('a'+d))

		opened, err := svc.Open(ctx, newInput(id, int64(100+random.Intn(50000))))
		rq.NoError(err)

		seen := []value.DealStatus{opened.Status}
		timelineLen := len(opened.Timeline)

		for i := 0; i < 40; i++ {
			mock.Add(time.Second)

			_, _ = ops[random.Intn(len(ops))](ctx, id) //nolint:errcheck

			deal, err := svc.Get(ctx, id)
			rq.NoError(err)

			rq.True(deal.SellerPayout.Add(deal.PlatformFee).Equal(deal.SalePrice))
			rq.True(deal.SalePrice.Equal(opened.SalePrice))
			rq.GreaterOrEqual(len(deal.Timeline), timelineLen)
			timelineLen = len(deal.Timeline)

			if last := seen[len(seen)-1]; last != deal.Status {
				rq.Equal(last.Stage()+1, deal.Status.Stage(), "seed %d: %s -> %s", seed, last, deal.Status)
				seen = append(seen, deal.Status)
			}
		}

		rq.Equal(value.DealStatuses()[:len(seen)], seen)
	}
}

func TestContactLink(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	svc, _ := newService(t)

	_, err := svc.Open(ctx, newInput("deal-1", 100))
	rq.NoError(err)

	testCases := []struct {
		name  string
		party value.Party
		email string
	}{
		{name: "Buyer", party: value.PartyBuyer, email: "jane@example.com"},
		{name: "Seller", party: value.PartySeller, email: "john@example.com"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(*testing.T) {
			link, err := svc.ContactLink(ctx, "deal-1", tc.party)
			rq.NoError(err)

			u, err := url.Parse(link)
			rq.NoError(err)
			rq.Equal("mailto", u.Scheme)
			rq.Equal(tc.email, u.Opaque)
			rq.Equal("Re: 1967 Ford Mustang Fastback (deal-1)", u.Query().Get("subject"))
		})
	}

	_, err = svc.ContactLink(ctx, "deal-1", value.Party("admin"))
	rq.Equal(domain.KindInvalidArgument, domain.GetKind(err))
}

func TestTimer(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	svc, mock := newService(t)

	_, err := svc.Open(ctx, newInput("deal-1", 100))
	rq.NoError(err)

	remaining, err := svc.Timer(ctx, "deal-1")
	rq.NoError(err)
	rq.EqualValues(71, remaining.Hours)
	rq.False(remaining.Expired)

	deal, err := svc.Get(ctx, "deal-1")
	rq.NoError(err)
	rq.False(svc.IsPaymentOverdue(deal))

	mock.Set(endedAt.Add(72 * time.Hour))

	remaining, err = svc.Timer(ctx, "deal-1")
	rq.NoError(err)
	rq.True(remaining.Expired)
	rq.True(svc.IsPaymentOverdue(deal))
}
