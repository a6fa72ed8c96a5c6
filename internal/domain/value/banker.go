package value

import (
	"fmt"
	"strings"
)

// Action — решение банкира по карточке в очереди.
type Action string

const (
	ActionPass        Action = "pass"
	ActionOffer       Action = "offer"
	ActionNeedsInfo   Action = "needs_info"
	ActionCustomOffer Action = "custom_offer"
)

func (a Action) String() string {
	return string(a)
}

// CreatesOffer — создаёт ли действие предложение.
func (a Action) CreatesOffer() bool {
	return a == ActionOffer || a == ActionCustomOffer
}

// ResultingStatus — статус лота после действия.
func (a Action) ResultingStatus() ItemStatus {
	switch a {
	case ActionPass:
		return ItemStatusPassed
	case ActionNeedsInfo:
		return ItemStatusNeedsInfo
	default:
		return ItemStatusOffered
	}
}

func ParseAction(s string) (Action, error) {
	switch a := Action(strings.ToLower(strings.TrimSpace(s))); a {
	case ActionPass, ActionOffer, ActionNeedsInfo, ActionCustomOffer:
		return a, nil
	default:
		return "", fmt.Errorf("unknown action %q", s)
	}
}

// Direction — жест свайпа.
type Direction string

const (
	DirectionRight Direction = "right"
	DirectionLeft  Direction = "left"
	DirectionDown  Direction = "down"
	DirectionUp    Direction = "up"
)

// Action возвращает решение, соответствующее жесту.
func (d Direction) Action() (Action, bool) {
	switch d {
	case DirectionRight:
		return ActionOffer, true
	case DirectionLeft:
		return ActionPass, true
	case DirectionDown:
		return ActionNeedsInfo, true
	case DirectionUp:
		return ActionCustomOffer, true
	default:
		return "", false
	}
}

func ParseDirection(s string) (Direction, error) {
	d := Direction(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := d.Action(); !ok {
		return "", fmt.Errorf("unknown direction %q", s)
	}
	return d, nil
}

// ItemStatus — состояние решения по карточке.
type ItemStatus string

const (
	ItemStatusUnseen    ItemStatus = "unseen"
	ItemStatusPassed    ItemStatus = "passed"
	ItemStatusNeedsInfo ItemStatus = "needs_info"
	ItemStatusOffered   ItemStatus = "offered"
)

func (s ItemStatus) String() string {
	return string(s)
}

// RiskFilter — фильтр очереди по флагам риска.
type RiskFilter string

const (
	RiskFilterAll     RiskFilter = "all"
	RiskFilterClean   RiskFilter = "clean"
	RiskFilterFlagged RiskFilter = "flagged"
)

func ParseRiskFilter(s string) (RiskFilter, error) {
	switch f := RiskFilter(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return RiskFilterAll, nil
	case RiskFilterAll, RiskFilterClean, RiskFilterFlagged:
		return f, nil
	default:
		return "", fmt.Errorf("unknown risk filter %q", s)
	}
}

// RiskReason — один флаг риска.
type RiskReason string

const (
	RiskReasonMissingVIN    RiskReason = "missingVin"
	RiskReasonHighValue     RiskReason = "highValue"
	RiskReasonLowConfidence RiskReason = "lowConfidence"
)

// LockOverride принудительно включает или выключает недельную блокировку.
type LockOverride string

const (
	LockOverrideNone     LockOverride = ""
	LockOverrideLocked   LockOverride = "locked"
	LockOverrideUnlocked LockOverride = "unlocked"
)

func ParseLockOverride(s string) (LockOverride, error) {
	switch o := LockOverride(strings.ToLower(strings.TrimSpace(s))); o {
	case LockOverrideNone, LockOverrideLocked, LockOverrideUnlocked:
		return o, nil
	default:
		return "", fmt.Errorf("unknown lock override %q", s)
	}
}
