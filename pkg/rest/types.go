// Данный файл должен быть сгенерирован из openapi спецификации и называться types.gen.go
package rest

// Error Модель ошибок
type Error struct {
	// Code Код ошибки
	Code ErrorCode `json:"code"`

	// Message Сообщение об ошибке (для отображения в UI в будущем)
	Message string `json:"message"`

	// SupportID идентификатор запроса для обращения в поддержку
	SupportID string `json:"supportId"`
}

// ErrorCode Код ошибки
type ErrorCode string

// Party участник сделки
type Party struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
}

// PayoutInfo реквизиты для выплаты продавцу
type PayoutInfo struct {
	BankName    string `json:"bankName" validate:"required"`
	Last4       string `json:"last4" validate:"required,len=4,numeric"`
	AccountType string `json:"accountType" validate:"required,oneof=checking savings"`
}

type Seller struct {
	Party
	PayoutInfo *PayoutInfo `json:"payoutInfo,omitempty"`
}

type TimelineEvent struct {
	ID        string `json:"id"`
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Actor     string `json:"actor"`
	Note      string `json:"note,omitempty"`
}

// Deal сделка по завершённому аукциону. Суммы в долларах.
type Deal struct {
	ID              string          `json:"id"`
	ItemTitle       string          `json:"itemTitle"`
	Location        string          `json:"location"`
	SalePrice       float64         `json:"salePrice"`
	FeeRate         float64         `json:"feeRate"`
	PlatformFee     float64         `json:"platformFee"`
	SellerPayout    float64         `json:"sellerPayout"`
	Status          string          `json:"status"`
	AuctionEndedAt  string          `json:"auctionEndedAt"`
	PaymentDeadline string          `json:"paymentDeadline"`
	FundsReleasedAt *string         `json:"fundsReleasedAt,omitempty"`
	ActionRequired  bool            `json:"actionRequired"`
	PaymentOverdue  bool            `json:"paymentOverdue"`
	Buyer           Party           `json:"buyer"`
	Seller          Seller          `json:"seller"`
	Timeline        []TimelineEvent `json:"timeline"`
}

type DealList struct {
	Deals  []Deal         `json:"deals"`
	Counts map[string]int `json:"counts"`
}

// Countdown оставшееся время до дедлайна
type Countdown struct {
	Hours   int64 `json:"hours"`
	Minutes int64 `json:"minutes"`
	Seconds int64 `json:"seconds"`
	Expired bool  `json:"expired"`
}

type ContactLink struct {
	Party string `json:"party"`
	URL   string `json:"url"`
}

type RiskFlags struct {
	MissingVIN    bool `json:"missingVin"`
	HighValue     bool `json:"highValue"`
	LowConfidence bool `json:"lowConfidence"`
}

// BankerItem лот в очереди банкира
type BankerItem struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Category         string    `json:"category"`
	EstValueMin      float64   `json:"estValueMin"`
	EstValueMax      float64   `json:"estValueMax"`
	ClosesAt         string    `json:"closesAt"`
	Flags            RiskFlags `json:"flags"`
	ConfidenceRating float64   `json:"confidenceRating"`
	QualityRating    float64   `json:"qualityRating"`
	SellerRating     float64   `json:"sellerRating"`
	LongevityRating  float64   `json:"longevityRating"`
}

type ItemState struct {
	Status            string   `json:"status"`
	MyOfferID         string   `json:"myOfferId,omitempty"`
	RiskReasons       []string `json:"riskReasons,omitempty"`
	ConfirmedHighRisk bool     `json:"confirmedHighRisk"`
	LastUpdatedAt     string   `json:"lastUpdatedAt"`
}

type BankerOffer struct {
	ID         string  `json:"id"`
	ItemID     string  `json:"itemId"`
	APR        float64 `json:"apr"`
	TermMonths int     `json:"termMonths"`
	TemplateID string  `json:"templateId"`
	CreatedAt  string  `json:"createdAt"`
	UpdatedAt  string  `json:"updatedAt"`
}

type CompetingOffer struct {
	Rank       int      `json:"rank"`
	APR        float64  `json:"apr"`
	TermMonths int      `json:"termMonths"`
	MaxAmount  *float64 `json:"maxAmount,omitempty"`
	IsMe       bool     `json:"isMe,omitempty"`
}

type OfferTemplate struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	BaseAPR      float64 `json:"baseApr"`
	TermMonths   int     `json:"termMonths"`
	AllowedTerms []int   `json:"allowedTerms"`
}

type ActionLog struct {
	ID            string       `json:"id"`
	ItemID        string       `json:"itemId"`
	Action        string       `json:"action"`
	Timestamp     string       `json:"timestamp"`
	PreviousState *ItemState   `json:"previousState,omitempty"`
	NewState      ItemState    `json:"newState"`
	PreviousOffer *BankerOffer `json:"previousOffer,omitempty"`
}

type BankerFilter struct {
	Category string `json:"category"`
	Risk     string `json:"risk" validate:"omitempty,oneof=all clean flagged"`
}

type LockStatus struct {
	Locked    bool      `json:"locked"`
	Override  bool      `json:"override"`
	LocksAt   string    `json:"locksAt"`
	UnlocksAt *string   `json:"unlocksAt,omitempty"`
	Countdown Countdown `json:"countdown"`
}

type BankerStats struct {
	Total     int `json:"total"`
	Unseen    int `json:"unseen"`
	Passed    int `json:"passed"`
	NeedsInfo int `json:"needsInfo"`
	Offered   int `json:"offered"`
	Remaining int `json:"remaining"`
}

type PendingConfirmation struct {
	ItemID      string   `json:"itemId"`
	Action      string   `json:"action"`
	RiskReasons []string `json:"riskReasons"`
}

// BankerQueue экран очереди целиком
type BankerQueue struct {
	Current      *BankerItem          `json:"current"`
	Next         *BankerItem          `json:"next"`
	Remaining    int                  `json:"remaining"`
	Stats        BankerStats          `json:"stats"`
	Filter       BankerFilter         `json:"filter"`
	Template     OfferTemplate        `json:"template"`
	Templates    []OfferTemplate      `json:"templates"`
	Nudge        float64              `json:"nudge"`
	NudgeStep    float64              `json:"nudgeStep"`
	EffectiveAPR float64              `json:"effectiveApr"`
	Pending      *PendingConfirmation `json:"pending,omitempty"`
	Locked       bool                 `json:"locked"`
	Lock         LockStatus           `json:"lock"`
}

type Decision struct {
	Item        BankerItem       `json:"item"`
	Action      string           `json:"action"`
	State       ItemState        `json:"state"`
	Offer       *BankerOffer     `json:"offer,omitempty"`
	Rank        int              `json:"rank,omitempty"`
	Competitors []CompetingOffer `json:"competitors,omitempty"`
}

type SwipeResult struct {
	Decision          *Decision `json:"decision,omitempty"`
	NeedsConfirmation bool      `json:"needsConfirmation"`
	ItemID            string    `json:"itemId,omitempty"`
	Action            string    `json:"action,omitempty"`
	RiskReasons       []string  `json:"riskReasons,omitempty"`
}

type UndoResult struct {
	Undone bool       `json:"undone"`
	Entry  *ActionLog `json:"entry,omitempty"`
}

type KeyResult struct {
	Handled bool         `json:"handled"`
	Swipe   *SwipeResult `json:"swipe,omitempty"`
	Undo    *UndoResult  `json:"undo,omitempty"`
}

type Standing struct {
	ItemID           string           `json:"itemId"`
	Offer            *BankerOffer     `json:"offer,omitempty"`
	MyRank           int              `json:"myRank"`
	Competitors      []CompetingOffer `json:"competitors"`
	BestCompetingAPR float64          `json:"bestCompetingApr"`
}

type SetTemplateRequest struct {
	TemplateID string `json:"templateId" validate:"required"`
}

type NudgeRequest struct {
	// Delta в процентных пунктах; если не задан, используется шаг по Direction
	Delta     *float64 `json:"delta" validate:"required_without=Direction"`
	Direction string   `json:"direction" validate:"omitempty,oneof=up down"`
}

type NudgeResponse struct {
	Nudge        float64 `json:"nudge"`
	EffectiveAPR float64 `json:"effectiveApr"`
}

type ActionRequest struct {
	Action        string   `json:"action" validate:"required,oneof=pass offer needs_info custom_offer"`
	ConfirmedRisk bool     `json:"confirmedRisk"`
	APR           *float64 `json:"apr" validate:"omitempty,gt=0"`
	TermMonths    *int     `json:"termMonths" validate:"omitempty,gt=0"`
}

type SwipeRequest struct {
	Direction  string   `json:"direction" validate:"required,oneof=right left down up"`
	APR        *float64 `json:"apr" validate:"omitempty,gt=0"`
	TermMonths *int     `json:"termMonths" validate:"omitempty,gt=0"`
}

type KeyRequest struct {
	Key  string `json:"key" validate:"required"`
	Meta bool   `json:"meta"`
	Ctrl bool   `json:"ctrl"`
}

type CancelRiskResponse struct {
	Cancelled bool `json:"cancelled"`
}
