package dealflow

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"git.appkode.ru/pub/go/failure"
	"github.com/benbjohnson/clock"
	"github.com/rs/xid"
	"github.com/shopspring/decimal"

	"garthbid/internal/domain"
	"garthbid/internal/domain/entity"
	"garthbid/internal/domain/service/timer"
	"garthbid/internal/domain/value"
	"garthbid/pkg/contextx"
	"garthbid/pkg/logx"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

type Metrics interface {
	DealTransition(to value.DealStatus)
	DealRejected(op string, code failure.ErrorCode)
}

type nopMetrics struct{}

func (nopMetrics) DealTransition(value.DealStatus)         {}
func (nopMetrics) DealRejected(string, failure.ErrorCode) {}

// Service владеет сделками и единственный пишет в них.
type Service struct {
	store         *Store
	clock         clock.Clock
	feeRate       decimal.Decimal
	paymentWindow time.Duration
	timerInterval time.Duration
	newID         func() string
	metrics       Metrics
}

func NewService(store *Store, clk clock.Clock) *Service {
	return &Service{
		store:         store,
		clock:         clk,
		feeRate:       DefaultFeeRate,
		paymentWindow: DefaultPaymentWindow,
		timerInterval: timer.DefaultInterval,
		newID:         func() string { return xid.New().String() },
		metrics:       nopMetrics{},
	}
}

func (s *Service) WithFeeRate(rate decimal.Decimal) *Service {
	s.feeRate = rate
	return s
}

func (s *Service) WithPaymentWindow(window time.Duration) *Service {
	s.paymentWindow = window
	return s
}

func (s *Service) WithTimerInterval(interval time.Duration) *Service {
	s.timerInterval = interval
	return s
}

func (s *Service) WithMetrics(m Metrics) *Service {
	s.metrics = m
	return s
}

func (s *Service) WithIDGenerator(newID func() string) *Service {
	s.newID = newID
	return s
}

// Open регистрирует сделку по только что завершённому аукциону.
func (s *Service) Open(ctx context.Context, in NewDealInput) (entity.Deal, error) {
	deal, err := NewDeal(in, s.feeRate, s.paymentWindow, s.newID())
	if err != nil {
		return entity.Deal{}, fmt.Errorf("NewDeal: %w", err)
	}

	if err := s.store.Add(deal); err != nil {
		return entity.Deal{}, fmt.Errorf("store.Add: %w", err)
	}

	logger(ctx).Info("deal opened",
		slog.String(logx.FieldDealID, deal.ID),
		slog.String("sale-price", deal.SalePrice.String()),
		slog.String("platform-fee", deal.PlatformFee.String()),
	)

	return deal, nil
}

func (s *Service) Get(_ context.Context, id string) (entity.Deal, error) {
	return s.store.Get(id)
}

func (s *Service) List(_ context.Context, q Query) []entity.Deal {
	return Apply(s.store.List(), q)
}

// Counts — итоги по фильтрам без учёта поиска.
func (s *Service) Counts(_ context.Context) map[value.DealFilter]int {
	return Counts(s.store.List())
}

func (s *Service) ConfirmPayment(ctx context.Context, id string) (entity.Deal, error) {
	return s.apply(ctx, id, "confirm-payment", ConfirmPayment)
}

func (s *Service) MarkAsPaid(ctx context.Context, id string) (entity.Deal, error) {
	return s.apply(ctx, id, "mark-as-paid", MarkAsPaid)
}

func (s *Service) ReleaseFunds(ctx context.Context, id string) (entity.Deal, error) {
	return s.apply(ctx, id, "release-funds", ReleaseFunds)
}

func (s *Service) RequestPayout(ctx context.Context, id string) (entity.Deal, error) {
	return s.apply(ctx, id, "request-payout", RequestPayout)
}

func (s *Service) SendPayout(ctx context.Context, id string) (entity.Deal, error) {
	return s.apply(ctx, id, "send-payout", SendPayout)
}

func (s *Service) UpdatePayoutInfo(ctx context.Context, id string, info entity.PayoutInfo) (entity.Deal, error) {
	return s.apply(ctx, id, "update-payout-info", UpdatePayoutInfo(info))
}

// Timer — сколько осталось на оплату.
func (s *Service) Timer(_ context.Context, id string) (timer.Remaining, error) {
	deal, err := s.store.Get(id)
	if err != nil {
		return timer.Remaining{}, err
	}

	return timer.GetTimeRemaining(deal.PaymentDeadline, s.clock.Now()), nil
}

// WatchTimer отдаёт обратный отсчёт оплаты каждые interval, пока срок не
// выйдет или не отменят ctx.
func (s *Service) WatchTimer(ctx context.Context, id string, fn func(timer.Remaining)) error {
	deal, err := s.store.Get(id)
	if err != nil {
		return err
	}

	timer.Until(ctx, s.clock, s.timerInterval, deal.PaymentDeadline, fn)

	return nil
}

func (s *Service) ContactLink(_ context.Context, id string, party value.Party) (string, error) {
	deal, err := s.store.Get(id)
	if err != nil {
		return "", err
	}

	return ContactLink(deal, party)
}

func (s *Service) IsPaymentOverdue(d entity.Deal) bool {
	return IsPaymentOverdue(d, s.clock.Now())
}

func (s *Service) apply(ctx context.Context, id, op string, tr Transition) (entity.Deal, error) {
	var from value.DealStatus

	deal, err := s.store.Update(id, func(d entity.Deal) (entity.Deal, error) {
		from = d.Status
		return tr(d, s.clock.Now(), s.newID())
	})
	if err != nil {
		code, _ := domain.GetCode(err)
		s.metrics.DealRejected(op, code)

		logger(ctx).Warn("deal transition rejected",
			slog.String(logx.FieldDealID, id),
			slog.String(logx.FieldAction, op),
			logx.Error(err),
		)

		return entity.Deal{}, err
	}

	if from != deal.Status {
		s.metrics.DealTransition(deal.Status)
	}

	logger(ctx).Info("deal transition applied",
		slog.String(logx.FieldDealID, id),
		slog.String(logx.FieldAction, op),
		slog.String(logx.FieldFromStatus, from.String()),
		slog.String(logx.FieldToStatus, deal.Status.String()),
	)

	return deal, nil
}
