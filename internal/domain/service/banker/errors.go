package banker

import (
	"garthbid/internal/domain"
	"garthbid/pkg/errcodes"
)

//nolint:gochecknoglobals
var (
	ErrLocked                   = domain.NewError(domain.KindLocked, errcodes.BankerLocked, "banker actions are locked")
	ErrQueueEmpty               = domain.NewError(domain.KindConflict, errcodes.QueueEmpty, "queue is empty")
	ErrRiskConfirmationRequired = domain.NewError(domain.KindUnprocessable, errcodes.RiskConfirmationRequired, "high-risk item needs confirmation")
	ErrNoPendingConfirmation    = domain.NewError(domain.KindConflict, errcodes.NoPendingConfirmation, "no pending risk confirmation")
	ErrItemNotFound             = domain.NewError(domain.KindNotFound, errcodes.ItemNotFound, "item not found")
	ErrItemNotOffered           = domain.NewError(domain.KindConflict, errcodes.ItemNotOffered, "item has no live offer")
	ErrOfferAlreadyBest         = domain.NewError(domain.KindConflict, errcodes.OfferAlreadyBest, "offer already beats the best competitor")
	ErrInvalidOfferTerms        = domain.NewError(domain.KindInvalidArgument, errcodes.InvalidOfferTerms, "invalid offer terms")
	ErrUnknownTemplate          = domain.NewError(domain.KindInvalidArgument, errcodes.UnknownTemplate, "unknown offer template")
	ErrInvalidAction            = domain.NewError(domain.KindInvalidArgument, errcodes.InvalidAction, "invalid action")
)

func errStateCorrupted(format string, args ...any) error {
	return domain.Errorf(domain.KindInternal, errcodes.SnapshotCorrupted, format, args...)
}
