// Package mockdata заполняет прототип демо-сделками и лотами банкира.
package mockdata

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"garthbid/internal/domain/entity"
	"garthbid/internal/domain/service/dealflow"
	"garthbid/internal/domain/value"
)

type seedDeal struct {
	id       string
	title    string
	location string
	price    string
	endedAgo time.Duration
	buyer    entity.Party
	seller   entity.Seller
	target   value.DealStatus
	released bool
}

func party(id, username, name string) entity.Party {
	return entity.Party{
		ID:       id,
		Username: username,
		Name:     name,
		Email:    username + "@example.com",
		Phone:    "+1-555-0100",
	}
}

func seller(id, username, name string, payout *entity.PayoutInfo) entity.Seller {
	return entity.Seller{Party: party(id, username, name), PayoutInfo: payout}
}

func seedDeals() []seedDeal {
	chase := &entity.PayoutInfo{BankName: "Chase", Last4: "4321", AccountType: value.AccountTypeChecking}
	ally := &entity.PayoutInfo{BankName: "Ally Bank", Last4: "8810", AccountType: value.AccountTypeSavings}

	return []seedDeal{
		{
			id: "GB-1001", title: "1967 Ford Mustang Fastback", location: "Austin, TX", price: "14500",
			endedAgo: 6 * time.Hour,
			buyer:    party("u-101", "bidder42", "Jane Roe"),
			seller:   seller("u-201", "garagefinds", "John Doe", chase),
			target:   value.DealStatusPaymentReceived,
		},
		{
			id: "GB-1002", title: "1985 Toyota Land Cruiser FJ60", location: "Boise, ID", price: "23800",
			endedAgo: 30 * time.Hour,
			buyer:    party("u-102", "trailhound", "Marcus Lee"),
			seller:   seller("u-202", "overlandco", "Priya Shah", ally),
			target:   value.DealStatusAwaitingPayment,
		},
		{
			id: "GB-1003", title: "Airstream Bambi 16", location: "Denver, CO", price: "41250.50",
			endedAgo: 80 * time.Hour,
			buyer:    party("u-103", "roamfree", "Ana Costa"),
			seller:   seller("u-203", "vintagehaul", "Tom Becker", nil),
			target:   value.DealStatusAwaitingPayment,
		},
		{
			id: "GB-1004", title: "2004 Porsche 911 Carrera", location: "Miami, FL", price: "38900",
			endedAgo: 4 * 24 * time.Hour,
			buyer:    party("u-104", "flatsix", "Leo Martins"),
			seller:   seller("u-204", "gulfmotors", "Dana White", chase),
			target:   value.DealStatusFundsHeld,
		},
		{
			id: "GB-1005", title: "Harley-Davidson Panhead 1958", location: "Nashville, TN", price: "19999.99",
			endedAgo: 5 * 24 * time.Hour,
			buyer:    party("u-105", "chromeheart", "Sam Ortiz"),
			seller:   seller("u-205", "rustbelt", "Kim Nguyen", ally),
			target:   value.DealStatusFundsHeld,
			released: true,
		},
		{
			id: "GB-1006", title: "John Deere 4020 Tractor", location: "Ames, IA", price: "12750",
			endedAgo: 7 * 24 * time.Hour,
			buyer:    party("u-106", "fieldhand", "Ruth Miller"),
			seller:   seller("u-206", "prairieauction", "Ben Clark", nil),
			target:   value.DealStatusPayoutRequested,
		},
		{
			id: "GB-1007", title: "1990 Mercedes-Benz 560SL", location: "San Diego, CA", price: "27400",
			endedAgo: 9 * 24 * time.Hour,
			buyer:    party("u-107", "coastcruiser", "Olivia Park"),
			seller:   seller("u-207", "sunsetcars", "Greg Hall", chase),
			target:   value.DealStatusPayoutRequested,
		},
		{
			id: "GB-1008", title: "Chris-Craft Runabout 1956", location: "Lake Geneva, WI", price: "56000",
			endedAgo: 14 * 24 * time.Hour,
			buyer:    party("u-108", "mahoganyfan", "Paul Young"),
			seller:   seller("u-208", "lakeshoreboats", "Ivy Brooks", ally),
			target:   value.DealStatusComplete,
		},
	}
}

// SeedDeals открывает демо-сделки и доводит каждую до нужного статуса
// обычными переходами, поэтому таймлайны настоящие.
func SeedDeals(ctx context.Context, svc *dealflow.Service, now time.Time) error {
	for _, seed := range seedDeals() {
		price, err := decimal.NewFromString(seed.price)
		if err != nil {
			return fmt.Errorf("deal %s: decimal.NewFromString: %w", seed.id, err)
		}

		if _, err := svc.Open(ctx, dealflow.NewDealInput{
			ID:             seed.id,
			ItemTitle:      seed.title,
			Location:       seed.location,
			SalePrice:      price,
			AuctionEndedAt: now.Add(-seed.endedAgo),
			Buyer:          seed.buyer,
			Seller:         seed.seller,
		}); err != nil {
			return fmt.Errorf("svc.Open: %w", err)
		}

		for _, step := range stepsTo(svc, seed.target, seed.released) {
			if _, err := step(ctx, seed.id); err != nil {
				return fmt.Errorf("deal %s: %w", seed.id, err)
			}
		}
	}

	return nil
}

func stepsTo(svc *dealflow.Service, target value.DealStatus, released bool) []func(context.Context, string) (entity.Deal, error) {
	all := []func(context.Context, string) (entity.Deal, error){
		svc.ConfirmPayment,
		svc.MarkAsPaid,
		svc.ReleaseFunds,
		svc.RequestPayout,
		svc.SendPayout,
	}

	switch target {
	case value.DealStatusPaymentReceived:
		return all[:1]
	case value.DealStatusFundsHeld:
		if released {
			return all[:3]
		}
		return all[:2]
	case value.DealStatusPayoutRequested:
		return all[:4]
	case value.DealStatusComplete:
		return all
	default:
		return nil
	}
}
