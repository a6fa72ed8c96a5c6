package dealflow

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"garthbid/internal/domain"
	"garthbid/internal/domain/entity"
	"garthbid/internal/domain/value"
	"garthbid/pkg/errcodes"
)

const (
	// DefaultPaymentWindow — срок оплаты после закрытия аукциона.
	DefaultPaymentWindow = 72 * time.Hour

	feeScale = 2
)

// DefaultFeeRate — комиссия площадки.
var DefaultFeeRate = decimal.NewFromFloat(0.05) //nolint:gochecknoglobals,mnd

// NewDealInput — завершённый аукцион.
type NewDealInput struct {
	ID             string
	ItemTitle      string
	Location       string
	SalePrice      decimal.Decimal
	AuctionEndedAt time.Time
	Buyer          entity.Party
	Seller         entity.Seller
}

// NewDeal открывает расчёт по аукциону. Комиссия округляется до центов,
// выплата — остаток, в сумме всегда цена продажи.
func NewDeal(in NewDealInput, feeRate decimal.Decimal, paymentWindow time.Duration, eventID string) (entity.Deal, error) {
	switch {
	case strings.TrimSpace(in.ID) == "":
		return entity.Deal{}, domain.NewError(domain.KindInvalidArgument, errcodes.InvalidDealID, "deal id is empty")
	case strings.TrimSpace(in.ItemTitle) == "":
		return entity.Deal{}, domain.NewError(domain.KindInvalidArgument, errcodes.InvalidDeal, "item title is empty")
	case !in.SalePrice.IsPositive():
		return entity.Deal{}, domain.Errorf(domain.KindInvalidArgument, errcodes.InvalidDeal, "sale price must be positive, got %s", in.SalePrice)
	case in.AuctionEndedAt.IsZero():
		return entity.Deal{}, domain.NewError(domain.KindInvalidArgument, errcodes.InvalidDeal, "auction end time is missing")
	case feeRate.IsNegative() || feeRate.GreaterThanOrEqual(decimal.NewFromInt(1)):
		return entity.Deal{}, domain.Errorf(domain.KindInvalidArgument, errcodes.InvalidDeal, "fee rate %s out of range [0, 1)", feeRate)
	}

	if paymentWindow <= 0 {
		paymentWindow = DefaultPaymentWindow
	}

	if in.Seller.PayoutInfo != nil {
		if err := ValidatePayoutInfo(*in.Seller.PayoutInfo); err != nil {
			return entity.Deal{}, err
		}
	}

	fee, payout := SplitSale(in.SalePrice, feeRate)

	deal := entity.Deal{
		ID:              in.ID,
		ItemTitle:       in.ItemTitle,
		Location:        in.Location,
		SalePrice:       in.SalePrice,
		FeeRate:         feeRate,
		PlatformFee:     fee,
		SellerPayout:    payout,
		Status:          value.DealStatusAwaitingPayment,
		AuctionEndedAt:  in.AuctionEndedAt,
		PaymentDeadline: in.AuctionEndedAt.Add(paymentWindow),
		Buyer:           in.Buyer,
		Seller:          in.Seller,
		Timeline: []entity.TimelineEvent{{
			ID:        eventID,
			Timestamp: in.AuctionEndedAt,
			Event:     "Auction ended",
			Actor:     value.ActorSystem,
		}},
	}

	return deal.Clone(), nil
}

func SplitSale(price, feeRate decimal.Decimal) (fee, payout decimal.Decimal) {
	fee = price.Mul(feeRate).Round(feeScale)
	return fee, price.Sub(fee)
}

// IsActionRequired — нужно ли действие админа в этом статусе.
func IsActionRequired(status value.DealStatus) bool {
	return status == value.DealStatusPaymentReceived || status == value.DealStatusPayoutRequested
}

// IsPaymentOverdue — сделка не оплачена и срок оплаты прошёл.
func IsPaymentOverdue(d entity.Deal, now time.Time) bool {
	return d.Status == value.DealStatusAwaitingPayment && !now.Before(d.PaymentDeadline)
}

func ValidatePayoutInfo(info entity.PayoutInfo) error {
	if strings.TrimSpace(info.BankName) == "" {
		return domain.NewError(domain.KindInvalidArgument, errcodes.InvalidPayoutInfo, "bank name is empty")
	}

	if len(info.Last4) != 4 || strings.Trim(info.Last4, "0123456789") != "" { //nolint:mnd
		return domain.Errorf(domain.KindInvalidArgument, errcodes.InvalidPayoutInfo, "last4 must be four digits, got %q", info.Last4)
	}

	if !info.AccountType.Valid() {
		return domain.Errorf(domain.KindInvalidArgument, errcodes.InvalidPayoutInfo, "unknown account type %q", info.AccountType)
	}

	return nil
}
