package entity

import (
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"garthbid/internal/domain/value"
)

// Deal — запись о расчёте по одному завершённому аукциону.
type Deal struct {
	ID              string           `json:"id"`
	ItemTitle       string           `json:"itemTitle"`
	Location        string           `json:"location"`
	SalePrice       decimal.Decimal  `json:"salePrice"`
	FeeRate         decimal.Decimal  `json:"feeRate"`
	PlatformFee     decimal.Decimal  `json:"platformFee"`
	SellerPayout    decimal.Decimal  `json:"sellerPayout"`
	Status          value.DealStatus `json:"status"`
	AuctionEndedAt  time.Time        `json:"auctionEndedAt"`
	PaymentDeadline time.Time        `json:"paymentDeadline"`
	FundsReleasedAt *time.Time       `json:"fundsReleasedAt,omitempty"`
	Buyer           Party            `json:"buyer"`
	Seller          Seller           `json:"seller"`
	Timeline        []TimelineEvent  `json:"timeline"`
}

// Party — покупатель или продавец с контактами.
type Party struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
}

// Seller с реквизитами, без них выплату не отправить.
type Seller struct {
	Party
	PayoutInfo *PayoutInfo `json:"payoutInfo,omitempty"`
}

type PayoutInfo struct {
	BankName    string            `json:"bankName"`
	Last4       string            `json:"last4"`
	AccountType value.AccountType `json:"accountType"`
}

type TimelineEvent struct {
	ID        string      `json:"id"`
	Timestamp time.Time   `json:"timestamp"`
	Event     string      `json:"event"`
	Actor     value.Actor `json:"actor"`
	Note      string      `json:"note,omitempty"`
}

// FundsReleased — покупатель отпустил деньги из эскроу.
func (d Deal) FundsReleased() bool {
	return d.FundsReleasedAt != nil
}

// Clone — глубокая копия без общей изменяемой памяти.
func (d Deal) Clone() Deal {
	out := d
	out.Timeline = slices.Clone(d.Timeline)

	if d.FundsReleasedAt != nil {
		at := *d.FundsReleasedAt
		out.FundsReleasedAt = &at
	}

	if d.Seller.PayoutInfo != nil {
		info := *d.Seller.PayoutInfo
		out.Seller.PayoutInfo = &info
	}

	return out
}

func (d Deal) LastEvent() (TimelineEvent, bool) {
	if len(d.Timeline) == 0 {
		return TimelineEvent{}, false
	}
	return d.Timeline[len(d.Timeline)-1], true
}
