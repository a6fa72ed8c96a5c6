package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"garthbid/internal/domain"
	"garthbid/pkg/httpx/reply"
)

func (s Server) RegisterRoutes(r chi.Router) { //nolint:funlen
	r.Route("/v1", func(r chi.Router) {
		r.Route("/deals", func(r chi.Router) {
			r.Get("/", handler(s.getV1Deals))

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", handler(s.getV1Deal))
				r.Get("/timer", handler(s.getV1DealTimer))
				r.Get("/timer/stream", handler(s.getV1DealTimerStream))
				r.Get("/contact/{party}", handler(s.getV1DealContact))

				r.Post("/confirm-payment", handler(s.postV1DealConfirmPayment))
				r.Post("/mark-paid", handler(s.postV1DealMarkPaid))
				r.Post("/release-funds", handler(s.postV1DealReleaseFunds))
				r.Post("/request-payout", handler(s.postV1DealRequestPayout))
				r.Post("/send-payout", handler(s.postV1DealSendPayout))
				r.Put("/payout-info", handler(s.putV1DealPayoutInfo))
			})
		})

		r.Route("/banker", func(r chi.Router) {
			r.Get("/queue", handler(s.getV1BankerQueue))
			r.Put("/filter", handler(s.putV1BankerFilter))
			r.Put("/template", handler(s.putV1BankerTemplate))
			r.Post("/nudge", handler(s.postV1BankerNudge))

			r.Post("/actions", handler(s.postV1BankerAction))
			r.Post("/swipe", handler(s.postV1BankerSwipe))
			r.Post("/keys", handler(s.postV1BankerKey))
			r.Post("/confirm-risk", handler(s.postV1BankerConfirmRisk))
			r.Post("/cancel-risk", handler(s.postV1BankerCancelRisk))
			r.Post("/undo", handler(s.postV1BankerUndo))

			r.Route("/items/{id}", func(r chi.Router) {
				r.Get("/standing", handler(s.getV1BankerStanding))
				r.Post("/beat-best", handler(s.postV1BankerBeatBest))
			})

			r.Get("/lock", handler(s.getV1BankerLock))
			r.Get("/lock/stream", handler(s.getV1BankerLockStream))
		})
	})
}

func handler(f func(http.ResponseWriter, *http.Request) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := f(w, r); err != nil {
			writeError(r.Context(), w, err)
		}
	}
}

// writeError отдаёт доменные ошибки со статусом по их виду, остальное
// разбирает reply.Error.
func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	var appErr *domain.AppError
	if !errors.As(err, &appErr) {
		reply.Error(ctx, w, err)
		return
	}

	reply.Problem(ctx, w, statusByKind(appErr.Kind), appErr.Code, appErr.Message, err)
}

func statusByKind(kind domain.Kind) int {
	switch kind {
	case domain.KindInvalidArgument:
		return http.StatusBadRequest
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindUnprocessable:
		return http.StatusUnprocessableEntity
	case domain.KindLocked:
		return http.StatusLocked
	default:
		return http.StatusInternalServerError
	}
}
