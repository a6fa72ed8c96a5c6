package errcodes

import "git.appkode.ru/pub/go/failure"

const (
	InternalServerError failure.ErrorCode = "InternalServerError"
	TimeoutExceeded     failure.ErrorCode = "TimeoutExceeded"
	Forbidden           failure.ErrorCode = "Forbidden"
	ValidationError     failure.ErrorCode = "ValidationError"
	NotFound            failure.ErrorCode = "NotFound"
	Conflict            failure.ErrorCode = "Conflict"
	Locked              failure.ErrorCode = "Locked"

	// DealFlow
	DealNotFound          failure.ErrorCode = "DealNotFound"
	DealAlreadyExists     failure.ErrorCode = "DealAlreadyExists"
	InvalidDealID         failure.ErrorCode = "InvalidDealID"
	InvalidDeal           failure.ErrorCode = "InvalidDeal"
	InvalidDealTransition failure.ErrorCode = "InvalidDealTransition"
	InvalidDealFilter     failure.ErrorCode = "InvalidDealFilter"
	InvalidPayoutInfo     failure.ErrorCode = "InvalidPayoutInfo"
	InvalidParty          failure.ErrorCode = "InvalidParty"
	PayoutInfoMissing     failure.ErrorCode = "PayoutInfoMissing"
	DealInvariantBroken   failure.ErrorCode = "DealInvariantBroken"

	// Banker
	BankerLocked             failure.ErrorCode = "BankerLocked"
	QueueEmpty               failure.ErrorCode = "QueueEmpty"
	ItemNotFound             failure.ErrorCode = "ItemNotFound"
	ItemNotOffered           failure.ErrorCode = "ItemNotOffered"
	RiskConfirmationRequired failure.ErrorCode = "RiskConfirmationRequired"
	NoPendingConfirmation    failure.ErrorCode = "NoPendingConfirmation"
	InvalidAction            failure.ErrorCode = "InvalidAction"
	InvalidDirection         failure.ErrorCode = "InvalidDirection"
	InvalidOfferTerms        failure.ErrorCode = "InvalidOfferTerms"
	InvalidRiskFilter        failure.ErrorCode = "InvalidRiskFilter"
	InvalidShortcut          failure.ErrorCode = "InvalidShortcut"
	UnknownTemplate          failure.ErrorCode = "UnknownTemplate"
	OfferNotFound            failure.ErrorCode = "OfferNotFound"
	OfferAlreadyBest         failure.ErrorCode = "OfferAlreadyBest"
	SnapshotNotFound         failure.ErrorCode = "SnapshotNotFound"
	SnapshotCorrupted        failure.ErrorCode = "SnapshotCorrupted"
)
