package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"git.appkode.ru/pub/go/failure"
	"github.com/go-chi/chi/v5"

	"garthbid/internal/domain/entity"
	"garthbid/internal/domain/service/banker"
	"garthbid/internal/domain/service/timer"
	"garthbid/internal/domain/value"
	"garthbid/pkg/errcodes"
	"garthbid/pkg/httpx/reply"
	"garthbid/pkg/httpx/req"
	"garthbid/pkg/rest"
)

type bankerConsole interface {
	Overview() banker.Overview
	Templates() []entity.OfferTemplate
	NudgeStep() float64
	Nudge() float64
	LockStatus() banker.LockStatus
	WatchLock(context.Context, time.Duration, func(banker.LockStatus) bool)
	Standing(string) (banker.Standing, error)

	SetFilter(context.Context, banker.Filter) error
	SetTemplate(context.Context, string) error
	NudgeAPR(context.Context, float64) (float64, error)

	ExecuteAction(context.Context, value.Action, bool, *banker.OfferTerms) (banker.Decision, error)
	Swipe(context.Context, value.Direction, *banker.OfferTerms) (banker.SwipeResult, error)
	HandleKey(context.Context, string, bool, bool) (banker.KeyResult, error)
	ConfirmHighRisk(context.Context) (banker.Decision, error)
	CancelHighRisk(context.Context) bool
	Undo(context.Context) (banker.UndoResult, error)
	BeatBest(context.Context, string) (banker.Decision, error)
}

type BankerServer struct {
	console        bankerConsole
	streamInterval time.Duration
}

func NewBankerServer(console bankerConsole) BankerServer {
	return BankerServer{
		console:        console,
		streamInterval: timer.DefaultInterval,
	}
}

func (s BankerServer) WithStreamInterval(interval time.Duration) BankerServer {
	if interval > 0 {
		s.streamInterval = interval
	}
	return s
}

func (s BankerServer) getV1BankerQueue(w http.ResponseWriter, r *http.Request) error {
	s.replyQueue(r.Context(), w)
	return nil
}

func (s BankerServer) putV1BankerFilter(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	var request rest.BankerFilter

	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	if err := s.console.SetFilter(ctx, newDomainFilter(request)); err != nil {
		return fmt.Errorf("console.SetFilter: %w", err)
	}

	s.replyQueue(ctx, w)

	return nil
}

func (s BankerServer) putV1BankerTemplate(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	var request rest.SetTemplateRequest

	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	if err := s.console.SetTemplate(ctx, request.TemplateID); err != nil {
		return fmt.Errorf("console.SetTemplate: %w", err)
	}

	s.replyQueue(ctx, w)

	return nil
}

func (s BankerServer) postV1BankerNudge(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	var request rest.NudgeRequest

	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	delta := s.console.NudgeStep()
	switch {
	case request.Delta != nil:
		delta = *request.Delta
	case request.Direction == "down":
		delta = -delta
	}

	effective, err := s.console.NudgeAPR(ctx, delta)
	if err != nil {
		return fmt.Errorf("console.NudgeAPR: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, rest.NudgeResponse{
		Nudge:        s.console.Nudge(),
		EffectiveAPR: effective,
	})

	return nil
}

func (s BankerServer) postV1BankerAction(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	var request rest.ActionRequest

	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	action, err := value.ParseAction(request.Action)
	if err != nil {
		return failure.NewInvalidArgumentErrorFromError(
			fmt.Errorf("value.ParseAction: %w", err),
			failure.WithCode(errcodes.InvalidAction),
		)
	}

	decision, err := s.console.ExecuteAction(ctx, action, request.ConfirmedRisk,
		s.customTerms(action, request.APR, request.TermMonths))
	if err != nil {
		return fmt.Errorf("console.ExecuteAction: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTDecision(decision))

	return nil
}

func (s BankerServer) postV1BankerSwipe(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	var request rest.SwipeRequest

	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	direction, err := value.ParseDirection(request.Direction)
	if err != nil {
		return failure.NewInvalidArgumentErrorFromError(
			fmt.Errorf("value.ParseDirection: %w", err),
			failure.WithCode(errcodes.InvalidDirection),
		)
	}

	action, _ := direction.Action()

	res, err := s.console.Swipe(ctx, direction, s.customTerms(action, request.APR, request.TermMonths))
	if err != nil {
		return fmt.Errorf("console.Swipe: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTSwipeResult(res))

	return nil
}

func (s BankerServer) postV1BankerKey(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	var request rest.KeyRequest

	if err := req.Read(r, &request); err != nil {
		return fmt.Errorf("req.Read: %w", err)
	}

	res, err := s.console.HandleKey(ctx, request.Key, request.Meta, request.Ctrl)
	if err != nil {
		return fmt.Errorf("console.HandleKey: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTKeyResult(res))

	return nil
}

func (s BankerServer) postV1BankerConfirmRisk(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	decision, err := s.console.ConfirmHighRisk(ctx)
	if err != nil {
		return fmt.Errorf("console.ConfirmHighRisk: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTDecision(decision))

	return nil
}

func (s BankerServer) postV1BankerCancelRisk(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	reply.JSON(ctx, w, http.StatusOK, rest.CancelRiskResponse{
		Cancelled: s.console.CancelHighRisk(ctx),
	})

	return nil
}

func (s BankerServer) postV1BankerUndo(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	res, err := s.console.Undo(ctx)
	if err != nil {
		return fmt.Errorf("console.Undo: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTUndoResult(res))

	return nil
}

func (s BankerServer) getV1BankerStanding(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	standing, err := s.console.Standing(chi.URLParam(r, "id"))
	if err != nil {
		return fmt.Errorf("console.Standing: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTStanding(standing))

	return nil
}

func (s BankerServer) postV1BankerBeatBest(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	decision, err := s.console.BeatBest(ctx, chi.URLParam(r, "id"))
	if err != nil {
		return fmt.Errorf("console.BeatBest: %w", err)
	}

	reply.JSON(ctx, w, http.StatusOK, newRESTDecision(decision))

	return nil
}

func (s BankerServer) getV1BankerLock(w http.ResponseWriter, r *http.Request) error {
	ctx := r.Context()

	reply.JSON(ctx, w, http.StatusOK, newRESTLockStatus(s.console.LockStatus()))

	return nil
}

// getV1BankerLockStream шлёт статус блокировки, пока клиент не отключится.
func (s BankerServer) getV1BankerLockStream(w http.ResponseWriter, r *http.Request) error {
	stream := newEventStream(w)

	s.console.WatchLock(r.Context(), s.streamInterval, func(status banker.LockStatus) bool {
		return stream.sendOrLog(r, "lock", newRESTLockStatus(status))
	})

	return nil
}

func (s BankerServer) replyQueue(ctx context.Context, w http.ResponseWriter) {
	reply.JSON(ctx, w, http.StatusOK, newRESTQueue(s.console.Overview(), s.console.Templates(), s.console.NudgeStep()))
}

// customTerms собирает условия custom_offer; недостающее поле берётся из
// текущего шаблона с учётом сдвига.
func (s BankerServer) customTerms(action value.Action, apr *float64, termMonths *int) *banker.OfferTerms {
	if action != value.ActionCustomOffer || (apr == nil && termMonths == nil) {
		return nil
	}

	ov := s.console.Overview()
	terms := &banker.OfferTerms{APR: ov.EffectiveAPR, TermMonths: ov.Template.TermMonths}

	if apr != nil {
		terms.APR = *apr
	}
	if termMonths != nil {
		terms.TermMonths = *termMonths
	}

	return terms
}
