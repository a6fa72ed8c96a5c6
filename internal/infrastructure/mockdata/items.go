package mockdata

import (
	"time"

	"garthbid/internal/domain/entity"
)

// BankerItems — демо-очередь финансирования, время закрытия считается от now.
func BankerItems(now time.Time) []entity.BankerItem {
	hours := func(n int) time.Time { return now.Add(time.Duration(n) * time.Hour) }

	return []entity.BankerItem{
		{
			ID: "item-1", Title: "2019 Ford F-150 Lariat", Category: "trucks",
			EstValueMin: 28000, EstValueMax: 34000, ClosesAt: hours(20),
			ConfidenceRating: 4.6, QualityRating: 4.2, SellerRating: 4.8, LongevityRating: 4.1,
		},
		{
			ID: "item-2", Title: "1972 Chevrolet Chevelle SS", Category: "cars",
			EstValueMin: 42000, EstValueMax: 55000, ClosesAt: hours(30),
			Flags:            entity.RiskFlags{MissingVIN: true},
			ConfidenceRating: 3.4, QualityRating: 4.0, SellerRating: 4.1, LongevityRating: 3.2,
		},
		{
			ID: "item-3", Title: "2021 Tesla Model 3 Long Range", Category: "cars",
			EstValueMin: 29000, EstValueMax: 33500, ClosesAt: hours(12),
			ConfidenceRating: 4.8, QualityRating: 4.5, SellerRating: 4.4, LongevityRating: 3.9,
		},
		{
			ID: "item-4", Title: "2008 Sea Ray 240 Sundeck", Category: "boats",
			EstValueMin: 95000, EstValueMax: 140000, ClosesAt: hours(48),
			Flags:            entity.RiskFlags{HighValue: true, LowConfidence: true},
			ConfidenceRating: 2.1, QualityRating: 3.6, SellerRating: 3.9, LongevityRating: 3.0,
		},
		{
			ID: "item-5", Title: "2016 Jeep Wrangler Unlimited", Category: "trucks",
			EstValueMin: 21000, EstValueMax: 26000, ClosesAt: hours(6),
			ConfidenceRating: 4.3, QualityRating: 3.9, SellerRating: 4.6, LongevityRating: 4.0,
		},
		{
			ID: "item-6", Title: "1965 Shelby Cobra Replica", Category: "cars",
			EstValueMin: 65000, EstValueMax: 90000, ClosesAt: hours(72),
			Flags:            entity.RiskFlags{HighValue: true},
			ConfidenceRating: 3.8, QualityRating: 4.4, SellerRating: 4.2, LongevityRating: 3.5,
		},
		{
			ID: "item-7", Title: "2012 Winnebago View 24J", Category: "rv",
			EstValueMin: 48000, EstValueMax: 61000, ClosesAt: hours(36),
			Flags:            entity.RiskFlags{LowConfidence: true},
			ConfidenceRating: 2.9, QualityRating: 3.7, SellerRating: 4.0, LongevityRating: 3.4,
		},
		{
			ID: "item-8", Title: "2020 Polaris RZR XP 1000", Category: "powersports",
			EstValueMin: 14000, EstValueMax: 17500, ClosesAt: hours(18),
			ConfidenceRating: 4.5, QualityRating: 4.1, SellerRating: 4.7, LongevityRating: 3.6,
		},
	}
}
