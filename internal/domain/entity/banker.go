package entity

import (
	"slices"
	"time"

	"garthbid/internal/domain/value"
)

// BankerItem — лот, по которому банкир принимает решение о финансировании.
// После загрузки в очередь не меняется.
type BankerItem struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Category         string    `json:"category"`
	EstValueMin      float64   `json:"estValueMin"`
	EstValueMax      float64   `json:"estValueMax"`
	ClosesAt         time.Time `json:"closesAt"`
	Flags            RiskFlags `json:"flags"`
	ConfidenceRating float64   `json:"confidenceRating"`
	QualityRating    float64   `json:"qualityRating"`
	SellerRating     float64   `json:"sellerRating"`
	LongevityRating  float64   `json:"longevityRating"`
}

type RiskFlags struct {
	MissingVIN    bool `json:"missingVin"`
	HighValue     bool `json:"highValue"`
	LowConfidence bool `json:"lowConfidence"`
}

// Reasons — поднятые флаги в стабильном порядке.
func (f RiskFlags) Reasons() []value.RiskReason {
	var reasons []value.RiskReason
	if f.MissingVIN {
		reasons = append(reasons, value.RiskReasonMissingVIN)
	}
	if f.HighValue {
		reasons = append(reasons, value.RiskReasonHighValue)
	}
	if f.LowConfidence {
		reasons = append(reasons, value.RiskReasonLowConfidence)
	}
	return reasons
}

func (f RiskFlags) Any() bool {
	return f.MissingVIN || f.HighValue || f.LowConfidence
}

// ItemState — запись о решении по лоту, ключ — BankerItem.ID.
type ItemState struct {
	Status            value.ItemStatus   `json:"status"`
	MyOfferID         string             `json:"myOfferId,omitempty"`
	RiskReasons       []value.RiskReason `json:"riskReasons,omitempty"`
	ConfirmedHighRisk bool               `json:"confirmedHighRisk"`
	LastUpdatedAt     time.Time          `json:"lastUpdatedAt"`
}

func (s ItemState) Clone() ItemState {
	out := s
	out.RiskReasons = slices.Clone(s.RiskReasons)
	return out
}

// BankerOffer — живое предложение банкира; на лот не больше одного.
type BankerOffer struct {
	ID         string    `json:"id"`
	ItemID     string    `json:"itemId"`
	APR        float64   `json:"apr"`
	TermMonths int       `json:"termMonths"`
	TemplateID string    `json:"templateId"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// CompetingOffer — позиция в рейтинге предложений по лоту.
type CompetingOffer struct {
	Rank       int      `json:"rank"`
	APR        float64  `json:"apr"`
	TermMonths int      `json:"termMonths"`
	MaxAmount  *float64 `json:"maxAmount,omitempty"`
	IsMe       bool     `json:"isMe,omitempty"`
}

// MaxAmountOrZero: нет лимита — ноль.
func (o CompetingOffer) MaxAmountOrZero() float64 {
	if o.MaxAmount == nil {
		return 0
	}
	return *o.MaxAmount
}

// ActionLog — элемент журнала для отмены последнего действия.
type ActionLog struct {
	ID            string       `json:"id"`
	ItemID        string       `json:"itemId"`
	Action        value.Action `json:"action"`
	Timestamp     time.Time    `json:"timestamp"`
	PreviousState *ItemState   `json:"previousState,omitempty"`
	NewState      ItemState    `json:"newState"`
	// PreviousOffer — предложение, которое заменило действие.
	PreviousOffer *BankerOffer `json:"previousOffer,omitempty"`
}

// OfferTemplate — преднастроенные условия предложения.
type OfferTemplate struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	BaseAPR      float64 `json:"baseApr"`
	TermMonths   int     `json:"termMonths"`
	AllowedTerms []int   `json:"allowedTerms"`
}

func (t OfferTemplate) AllowsTerm(months int) bool {
	return slices.Contains(t.AllowedTerms, months)
}
