package server

import (
	"time"

	"github.com/samber/lo"

	"garthbid/internal/domain/entity"
	"garthbid/internal/domain/service/banker"
	"garthbid/internal/domain/service/dealflow"
	"garthbid/internal/domain/service/timer"
	"garthbid/internal/domain/value"
	"garthbid/pkg/lox"
	"garthbid/pkg/rest"
)

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	return lo.ToPtr(formatTime(*t))
}

func newRESTParty(p entity.Party) rest.Party {
	return rest.Party{
		ID:       p.ID,
		Username: p.Username,
		Name:     p.Name,
		Email:    p.Email,
		Phone:    p.Phone,
	}
}

func newRESTPayoutInfo(info *entity.PayoutInfo) *rest.PayoutInfo {
	if info == nil {
		return nil
	}

	return &rest.PayoutInfo{
		BankName:    info.BankName,
		Last4:       info.Last4,
		AccountType: string(info.AccountType),
	}
}

func newDomainPayoutInfo(info rest.PayoutInfo) entity.PayoutInfo {
	return entity.PayoutInfo{
		BankName:    info.BankName,
		Last4:       info.Last4,
		AccountType: value.AccountType(info.AccountType),
	}
}

func newRESTTimelineEvent(e entity.TimelineEvent) rest.TimelineEvent {
	return rest.TimelineEvent{
		ID:        e.ID,
		Timestamp: formatTime(e.Timestamp),
		Event:     e.Event,
		Actor:     e.Actor.String(),
		Note:      e.Note,
	}
}

func newRESTDeal(d entity.Deal, overdue bool) rest.Deal {
	return rest.Deal{
		ID:              d.ID,
		ItemTitle:       d.ItemTitle,
		Location:        d.Location,
		SalePrice:       d.SalePrice.InexactFloat64(),
		FeeRate:         d.FeeRate.InexactFloat64(),
		PlatformFee:     d.PlatformFee.InexactFloat64(),
		SellerPayout:    d.SellerPayout.InexactFloat64(),
		Status:          d.Status.String(),
		AuctionEndedAt:  formatTime(d.AuctionEndedAt),
		PaymentDeadline: formatTime(d.PaymentDeadline),
		FundsReleasedAt: formatTimePtr(d.FundsReleasedAt),
		ActionRequired:  dealflow.IsActionRequired(d.Status),
		PaymentOverdue:  overdue,
		Buyer:           newRESTParty(d.Buyer),
		Seller: rest.Seller{
			Party:      newRESTParty(d.Seller.Party),
			PayoutInfo: newRESTPayoutInfo(d.Seller.PayoutInfo),
		},
		Timeline: lox.Map(d.Timeline, newRESTTimelineEvent),
	}
}

func newRESTCounts(counts map[value.DealFilter]int) map[string]int {
	return lo.MapKeys(counts, func(_ int, f value.DealFilter) string {
		return f.String()
	})
}

func newRESTCountdown(r timer.Remaining) rest.Countdown {
	return rest.Countdown{
		Hours:   r.Hours,
		Minutes: r.Minutes,
		Seconds: r.Seconds,
		Expired: r.Expired,
	}
}

func newRESTBankerItem(item entity.BankerItem) rest.BankerItem {
	return rest.BankerItem{
		ID:          item.ID,
		Title:       item.Title,
		Category:    item.Category,
		EstValueMin: item.EstValueMin,
		EstValueMax: item.EstValueMax,
		ClosesAt:    formatTime(item.ClosesAt),
		Flags: rest.RiskFlags{
			MissingVIN:    item.Flags.MissingVIN,
			HighValue:     item.Flags.HighValue,
			LowConfidence: item.Flags.LowConfidence,
		},
		ConfidenceRating: item.ConfidenceRating,
		QualityRating:    item.QualityRating,
		SellerRating:     item.SellerRating,
		LongevityRating:  item.LongevityRating,
	}
}

func newRESTBankerItemPtr(item *entity.BankerItem) *rest.BankerItem {
	if item == nil {
		return nil
	}
	return lo.ToPtr(newRESTBankerItem(*item))
}

func newRESTRiskReasons(reasons []value.RiskReason) []string {
	return lox.Map(reasons, func(r value.RiskReason) string { return string(r) })
}

func newRESTItemState(s entity.ItemState) rest.ItemState {
	return rest.ItemState{
		Status:            s.Status.String(),
		MyOfferID:         s.MyOfferID,
		RiskReasons:       newRESTRiskReasons(s.RiskReasons),
		ConfirmedHighRisk: s.ConfirmedHighRisk,
		LastUpdatedAt:     formatTime(s.LastUpdatedAt),
	}
}

func newRESTBankerOffer(o *entity.BankerOffer) *rest.BankerOffer {
	if o == nil {
		return nil
	}

	return &rest.BankerOffer{
		ID:         o.ID,
		ItemID:     o.ItemID,
		APR:        o.APR,
		TermMonths: o.TermMonths,
		TemplateID: o.TemplateID,
		CreatedAt:  formatTime(o.CreatedAt),
		UpdatedAt:  formatTime(o.UpdatedAt),
	}
}

func newRESTCompetingOffers(offers []entity.CompetingOffer) []rest.CompetingOffer {
	return lox.Map(offers, func(o entity.CompetingOffer) rest.CompetingOffer {
		return rest.CompetingOffer{
			Rank:       o.Rank,
			APR:        o.APR,
			TermMonths: o.TermMonths,
			MaxAmount:  o.MaxAmount,
			IsMe:       o.IsMe,
		}
	})
}

func newRESTTemplate(t entity.OfferTemplate) rest.OfferTemplate {
	return rest.OfferTemplate{
		ID:           t.ID,
		Name:         t.Name,
		BaseAPR:      t.BaseAPR,
		TermMonths:   t.TermMonths,
		AllowedTerms: t.AllowedTerms,
	}
}

func newRESTActionLog(e *entity.ActionLog) *rest.ActionLog {
	if e == nil {
		return nil
	}

	out := &rest.ActionLog{
		ID:            e.ID,
		ItemID:        e.ItemID,
		Action:        e.Action.String(),
		Timestamp:     formatTime(e.Timestamp),
		NewState:      newRESTItemState(e.NewState),
		PreviousOffer: newRESTBankerOffer(e.PreviousOffer),
	}

	if e.PreviousState != nil {
		out.PreviousState = lo.ToPtr(newRESTItemState(*e.PreviousState))
	}

	return out
}

func newRESTLockStatus(s banker.LockStatus) rest.LockStatus {
	return rest.LockStatus{
		Locked:    s.Locked,
		Override:  s.Override,
		LocksAt:   formatTime(s.LocksAt),
		UnlocksAt: formatTimePtr(s.UnlocksAt),
		Countdown: newRESTCountdown(s.Countdown),
	}
}

func newRESTStats(s banker.Stats) rest.BankerStats {
	return rest.BankerStats{
		Total:     s.Total,
		Unseen:    s.Unseen,
		Passed:    s.Passed,
		NeedsInfo: s.NeedsInfo,
		Offered:   s.Offered,
		Remaining: s.Remaining,
	}
}

func newRESTFilter(f banker.Filter) rest.BankerFilter {
	return rest.BankerFilter{Category: f.Category, Risk: string(f.Risk)}
}

func newDomainFilter(f rest.BankerFilter) banker.Filter {
	return banker.Filter{Category: f.Category, Risk: value.RiskFilter(f.Risk)}
}

func newRESTQueue(ov banker.Overview, templates []entity.OfferTemplate, nudgeStep float64) rest.BankerQueue {
	q := rest.BankerQueue{
		Current:      newRESTBankerItemPtr(ov.Current),
		Next:         newRESTBankerItemPtr(ov.Next),
		Remaining:    ov.Stats.Remaining,
		Stats:        newRESTStats(ov.Stats),
		Filter:       newRESTFilter(ov.Filter),
		Template:     newRESTTemplate(ov.Template),
		Templates:    lox.Map(templates, newRESTTemplate),
		Nudge:        ov.Nudge,
		NudgeStep:    nudgeStep,
		EffectiveAPR: ov.EffectiveAPR,
		Locked:       ov.Lock.Locked,
		Lock:         newRESTLockStatus(ov.Lock),
	}

	if ov.Pending != nil {
		q.Pending = &rest.PendingConfirmation{
			ItemID:      ov.Pending.ItemID,
			Action:      ov.Pending.Action.String(),
			RiskReasons: newRESTRiskReasons(ov.Pending.RiskReasons),
		}
	}

	return q
}

func newRESTDecision(d banker.Decision) rest.Decision {
	return rest.Decision{
		Item:        newRESTBankerItem(d.Item),
		Action:      d.Action.String(),
		State:       newRESTItemState(d.State),
		Offer:       newRESTBankerOffer(d.Offer),
		Rank:        d.Rank,
		Competitors: newRESTCompetingOffers(d.Competitors),
	}
}

func newRESTSwipeResult(res banker.SwipeResult) rest.SwipeResult {
	out := rest.SwipeResult{
		NeedsConfirmation: res.NeedsConfirmation,
		ItemID:            res.ItemID,
		Action:            res.Action.String(),
		RiskReasons:       newRESTRiskReasons(res.RiskReasons),
	}

	if res.Decision != nil {
		out.Decision = lo.ToPtr(newRESTDecision(*res.Decision))
	}

	return out
}

func newRESTUndoResult(res banker.UndoResult) rest.UndoResult {
	return rest.UndoResult{
		Undone: res.Undone,
		Entry:  newRESTActionLog(res.Entry),
	}
}

func newRESTKeyResult(res banker.KeyResult) rest.KeyResult {
	out := rest.KeyResult{Handled: res.Handled}

	if res.Swipe != nil {
		out.Swipe = lo.ToPtr(newRESTSwipeResult(*res.Swipe))
	}
	if res.Undo != nil {
		out.Undo = lo.ToPtr(newRESTUndoResult(*res.Undo))
	}

	return out
}

func newRESTStanding(s banker.Standing) rest.Standing {
	return rest.Standing{
		ItemID:           s.ItemID,
		Offer:            newRESTBankerOffer(s.Offer),
		MyRank:           s.MyRank,
		Competitors:      newRESTCompetingOffers(s.Competitors),
		BestCompetingAPR: s.BestCompetingAPR,
	}
}
