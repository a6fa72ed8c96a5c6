package value

import (
	"fmt"
	"strings"
)

// DealStatus — стадия расчёта по завершённому аукциону.
type DealStatus string

const (
	DealStatusAwaitingPayment DealStatus = "AWAITING_PAYMENT"
	DealStatusPaymentReceived DealStatus = "PAYMENT_RECEIVED"
	DealStatusFundsHeld       DealStatus = "FUNDS_HELD"
	DealStatusPayoutRequested DealStatus = "PAYOUT_REQUESTED"
	DealStatusComplete        DealStatus = "COMPLETE"
)

// dealStatusOrder — единственный допустимый порядок, индекс равен номеру стадии.
//
//nolint:gochecknoglobals
var dealStatusOrder = []DealStatus{
	DealStatusAwaitingPayment,
	DealStatusPaymentReceived,
	DealStatusFundsHeld,
	DealStatusPayoutRequested,
	DealStatusComplete,
}

func (s DealStatus) String() string {
	return string(s)
}

// Stage — позиция статуса в последовательности расчёта, -1 для неизвестного.
func (s DealStatus) Stage() int {
	for i, status := range dealStatusOrder {
		if status == s {
			return i
		}
	}
	return -1
}

func (s DealStatus) Valid() bool {
	return s.Stage() >= 0
}

func (s DealStatus) Terminal() bool {
	return s == DealStatusComplete
}

func DealStatuses() []DealStatus {
	out := make([]DealStatus, len(dealStatusOrder))
	copy(out, dealStatusOrder)
	return out
}

// DealFilter — предустановленные фильтры списка сделок.
type DealFilter string

const (
	DealFilterAll             DealFilter = "all"
	DealFilterActionRequired  DealFilter = "action-required"
	DealFilterAwaitingPayment DealFilter = "awaiting-payment"
	DealFilterFundsHeld       DealFilter = "funds-held"
	DealFilterFundsReleased   DealFilter = "funds-released"
	DealFilterComplete        DealFilter = "complete"
)

func (f DealFilter) String() string {
	return string(f)
}

// DealFilters — все фильтры в порядке отображения.
func DealFilters() []DealFilter {
	return []DealFilter{
		DealFilterAll,
		DealFilterActionRequired,
		DealFilterAwaitingPayment,
		DealFilterFundsHeld,
		DealFilterFundsReleased,
		DealFilterComplete,
	}
}

// ParseDealFilter считает пустую строку фильтром all.
func ParseDealFilter(s string) (DealFilter, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return DealFilterAll, nil
	}

	for _, f := range DealFilters() {
		if string(f) == s {
			return f, nil
		}
	}

	return "", fmt.Errorf("unknown deal filter %q", s)
}

// Actor — сторона, инициировавшая событие в таймлайне сделки.
type Actor string

const (
	ActorSystem Actor = "system"
	ActorBuyer  Actor = "buyer"
	ActorSeller Actor = "seller"
	ActorAdmin  Actor = "admin"
)

func (a Actor) String() string {
	return string(a)
}

// Party — сторона сделки, которой пишем.
type Party string

const (
	PartyBuyer  Party = "buyer"
	PartySeller Party = "seller"
)

func ParseParty(s string) (Party, error) {
	switch Party(strings.ToLower(s)) {
	case PartyBuyer:
		return PartyBuyer, nil
	case PartySeller:
		return PartySeller, nil
	default:
		return "", fmt.Errorf("unknown party %q", s)
	}
}

// AccountType — тип счёта для выплаты продавцу.
type AccountType string

const (
	AccountTypeChecking AccountType = "checking"
	AccountTypeSavings  AccountType = "savings"
)

func (a AccountType) Valid() bool {
	return a == AccountTypeChecking || a == AccountTypeSavings
}
