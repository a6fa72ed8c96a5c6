package server

import (
	"context"
	"fmt"
	"net/http"

	"git.appkode.ru/pub/go/failure"
	"github.com/go-chi/chi/v5"

	"garthbid/internal/domain/entity"
	"garthbid/internal/domain/service/dealflow"
	"garthbid/internal/domain/service/timer"
	"garthbid/internal/domain/value"
	"garthbid/pkg/errcodes"
	"garthbid/pkg/httpx/reply"
	"garthbid/pkg/httpx/req"
	"garthbid/pkg/lox"
	"garthbid/pkg/rest"
)

type dealService interface {
	List(context.Context, dealflow.Query) []entity.Deal
	Counts(context.Context) map[value.DealFilter]int
	Get(context.Context, string) (entity.Deal, error)
	Timer(context.Context, string) (timer.Remaining, error)
	WatchTimer(context.Context, string, func(timer.Remaining)) error
	ContactLink(context.Context, string, value.Party) (string, error)
	IsPaymentOverdue(entity.Deal) bool

	ConfirmPayment(context.Context, string) (entity.Deal, error)
	MarkAsPaid(context.Context, string) (entity.Deal, error)
	ReleaseFunds(context.Context, string) (entity.Deal, error)
	RequestPayout(context.Context, string) (entity.Deal, error)
	SendPayout(context.Context, string) (entity.Deal, error)
	UpdatePayoutInfo(context.Context, string, entity.PayoutInfo) (entity.Deal, error)
}

type DealServer struct {
	dealService dealService
}

func NewDealServer(dealService dealService) DealServer {
	return DealServer{
		dealService: dealService,
	}
}

func (s DealServer) getV1Deals(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	filter, err := value.ParseDealFilter(r.URL.Query().Get("filter"))
	if err != nil {
		return failure.NewInvalidArgumentErrorFromError(
			fmt.Errorf("value.ParseDealFilter: %w", err),
			failure.WithCode(errcodes.InvalidDealFilter),
		)
	}

	deals := s.dealService.List(ctx, dealflow.Query{
		Filter: filter,
		Search: r.URL.Query().Get("q"),
	})

	reply.JSON(ctx, w, http.StatusOK, rest.DealList{
		Deals:  lox.Map(deals, s.restDeal),
		Counts: newRESTCounts(s.dealService.Counts(ctx)),
	})

	return nil
}

func (s DealServer) getV1Deal(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	deal, err := s.dealService.Get(ctx, chi.URLParam(r, "id"))
	if err != nil {
		return fmt.Errorf("dealService.Get: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, s.restDeal(deal))

	return nil
}

func (s DealServer) getV1DealTimer(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	remaining, err := s.dealService.Timer(ctx, chi.URLParam(r, "id"))
	if err != nil {
		return fmt.Errorf("dealService.Timer: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTCountdown(remaining))

	return nil
}

// getV1DealTimerStream шлёт обратный отсчёт раз в интервал и закрывает
// поток, когда срок оплаты истёк.
func (s DealServer) getV1DealTimerStream(w http.ResponseWriter, r *http.Request) error {
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	stream := newEventStream(w)

	err := s.dealService.WatchTimer(ctx, chi.URLParam(r, "id"), func(remaining timer.Remaining) {
		if !stream.sendOrLog(r, "timer", newRESTCountdown(remaining)) {
			cancel()
		}
	})
	if err != nil {
		return fmt.Errorf("dealService.WatchTimer: %w", err)
	}

	return nil
}

func (s DealServer) getV1DealContact(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	party, err := value.ParseParty(chi.URLParam(r, "party"))
	if err != nil {
		return failure.NewInvalidArgumentErrorFromError(
			fmt.Errorf("value.ParseParty: %w", err),
			failure.WithCode(errcodes.InvalidParty),
		)
	}

	link, err := s.dealService.ContactLink(ctx, chi.URLParam(r, "id"), party)
	if err != nil {
		return fmt.Errorf("dealService.ContactLink: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, rest.ContactLink{Party: string(party), URL: link})

	return nil
}

func (s DealServer) postV1DealConfirmPayment(w http.ResponseWriter, r *http.Request) error {
	return s.transition(w, r, "dealService.ConfirmPayment", s.dealService.ConfirmPayment)
}

func (s DealServer) postV1DealMarkPaid(w http.ResponseWriter, r *http.Request) error {
	return s.transition(w, r, "dealService.MarkAsPaid", s.dealService.MarkAsPaid)
}

func (s DealServer) postV1DealReleaseFunds(w http.ResponseWriter, r *http.Request) error {
	return s.transition(w, r, "dealService.ReleaseFunds", s.dealService.ReleaseFunds)
}

func (s DealServer) postV1DealRequestPayout(w http.ResponseWriter, r *http.Request) error {
	return s.transition(w, r, "dealService.RequestPayout", s.dealService.RequestPayout)
}

func (s DealServer) postV1DealSendPayout(w http.ResponseWriter, r *http.Request) error {
	return s.transition(w, r, "dealService.SendPayout", s.dealService.SendPayout)
}

func (s DealServer) putV1DealPayoutInfo(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	var request rest.PayoutInfo

	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	deal, err := s.dealService.UpdatePayoutInfo(ctx, chi.URLParam(r, "id"), newDomainPayoutInfo(request))
	if err != nil {
		return fmt.Errorf("dealService.UpdatePayoutInfo: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, s.restDeal(deal))

	return nil
}

func (s DealServer) transition(
	w http.ResponseWriter,
	r *http.Request,
	name string,
	apply func(context.Context, string) (entity.Deal, error),
) error {
	ctx := r.Context()

	deal, err := apply(ctx, chi.URLParam(r, "id"))
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	reply.JSON(ctx, w, http.StatusOK, s.restDeal(deal))

	return nil
}

func (s DealServer) restDeal(d entity.Deal) rest.Deal {
	return newRESTDeal(d, s.dealService.IsPaymentOverdue(d))
}
