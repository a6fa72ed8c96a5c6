package dealflow

import (
	"fmt"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"garthbid/internal/domain"
	"garthbid/internal/domain/entity"
	"garthbid/internal/domain/value"
	"garthbid/pkg/errcodes"
)

// Transition — чистый шаг расчёта. Вход не меняет, возвращает новую версию
// сделки либо ошибку.
type Transition func(d entity.Deal, at time.Time, eventID string) (entity.Deal, error)

var printer = message.NewPrinter(language.English) //nolint:gochecknoglobals

// ConfirmPayment — деньги покупателя пришли.
func ConfirmPayment(d entity.Deal, at time.Time, eventID string) (entity.Deal, error) {
	if err := requireStatus(d, value.DealStatusAwaitingPayment, "confirm payment"); err != nil {
		return entity.Deal{}, err
	}

	return advance(d, value.DealStatusPaymentReceived, entity.TimelineEvent{
		ID:        eventID,
		Timestamp: at,
		Event:     "Payment confirmed by admin",
		Actor:     value.ActorAdmin,
	}), nil
}

// MarkAsPaid переводит подтверждённые деньги в эскроу.
func MarkAsPaid(d entity.Deal, at time.Time, eventID string) (entity.Deal, error) {
	if err := requireStatus(d, value.DealStatusPaymentReceived, "mark as paid"); err != nil {
		return entity.Deal{}, err
	}

	return advance(d, value.DealStatusFundsHeld, entity.TimelineEvent{
		ID:        eventID,
		Timestamp: at,
		Event:     "Marked as paid by admin",
		Actor:     value.ActorAdmin,
	}), nil
}

// ReleaseFunds — покупатель принял лот. Сделка остаётся в FUNDS_HELD,
// ставится только время релиза и только один раз.
func ReleaseFunds(d entity.Deal, at time.Time, eventID string) (entity.Deal, error) {
	if err := requireStatus(d, value.DealStatusFundsHeld, "release funds"); err != nil {
		return entity.Deal{}, err
	}

	if d.FundsReleased() {
		return entity.Deal{}, domain.Errorf(domain.KindConflict, errcodes.InvalidDealTransition,
			"deal %s: funds already released at %s", d.ID, d.FundsReleasedAt.Format(time.RFC3339))
	}

	next := advance(d, d.Status, entity.TimelineEvent{
		ID:        eventID,
		Timestamp: at,
		Event:     "Funds released by buyer",
		Actor:     value.ActorBuyer,
	})
	next.FundsReleasedAt = &at

	return next, nil
}

// RequestPayout — продавец запрашивает выплату.
func RequestPayout(d entity.Deal, at time.Time, eventID string) (entity.Deal, error) {
	if err := requireStatus(d, value.DealStatusFundsHeld, "request payout"); err != nil {
		return entity.Deal{}, err
	}

	if !d.FundsReleased() {
		return entity.Deal{}, domain.Errorf(domain.KindConflict, errcodes.InvalidDealTransition,
			"deal %s: cannot request payout before the buyer releases funds", d.ID)
	}

	return advance(d, value.DealStatusPayoutRequested, entity.TimelineEvent{
		ID:        eventID,
		Timestamp: at,
		Event:     "Payout requested by seller",
		Actor:     value.ActorSeller,
	}), nil
}

// SendPayout завершает сделку. Нужны реквизиты продавца.
func SendPayout(d entity.Deal, at time.Time, eventID string) (entity.Deal, error) {
	if err := requireStatus(d, value.DealStatusPayoutRequested, "send payout"); err != nil {
		return entity.Deal{}, err
	}

	info := d.Seller.PayoutInfo
	if info == nil {
		return entity.Deal{}, domain.Errorf(domain.KindUnprocessable, errcodes.PayoutInfoMissing,
			"deal %s: seller %s has no payout info", d.ID, d.Seller.Username)
	}

	return advance(d, value.DealStatusComplete, entity.TimelineEvent{
		ID:        eventID,
		Timestamp: at,
		Event:     "Payout sent",
		Actor:     value.ActorAdmin,
		Note:      PayoutNote(d, *info),
	}), nil
}

// UpdatePayoutInfo сохраняет реквизиты продавца. Статус не меняется.
func UpdatePayoutInfo(info entity.PayoutInfo) Transition {
	return func(d entity.Deal, at time.Time, eventID string) (entity.Deal, error) {
		if d.Status.Terminal() {
			return entity.Deal{}, domain.Errorf(domain.KindConflict, errcodes.InvalidDealTransition,
				"deal %s: payout info is frozen once the deal is complete", d.ID)
		}

		if err := ValidatePayoutInfo(info); err != nil {
			return entity.Deal{}, err
		}

		next := advance(d, d.Status, entity.TimelineEvent{
			ID:        eventID,
			Timestamp: at,
			Event:     "Payout details updated",
			Actor:     value.ActorSeller,
			Note:      fmt.Sprintf("%s ••••%s (%s)", info.BankName, info.Last4, info.AccountType),
		})
		next.Seller.PayoutInfo = &info

		return next, nil
	}
}

// PayoutNote, например "$13,775.00 sent to Chase ••••4321 (checking)".
func PayoutNote(d entity.Deal, info entity.PayoutInfo) string {
	return printer.Sprintf("$%.2f sent to %s ••••%s (%s)",
		d.SellerPayout.InexactFloat64(), info.BankName, info.Last4, info.AccountType)
}

func requireStatus(d entity.Deal, want value.DealStatus, op string) error {
	if d.Status != want {
		return domain.Errorf(domain.KindConflict, errcodes.InvalidDealTransition,
			"deal %s: cannot %s in status %s, want %s", d.ID, op, d.Status, want)
	}
	return nil
}

func advance(d entity.Deal, to value.DealStatus, event entity.TimelineEvent) entity.Deal {
	next := d.Clone()
	next.Status = to
	next.Timeline = append(next.Timeline, event)
	return next
}
