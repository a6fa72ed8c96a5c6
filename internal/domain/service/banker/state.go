package banker

import (
	"slices"

	"github.com/samber/lo"

	"garthbid/internal/domain/entity"
	"garthbid/internal/domain/value"
)

// State — решения за сессию очереди. Опубликованный State не меняется,
// каждое изменение строит новые map и новый журнал.
type State struct {
	ItemStates map[string]entity.ItemState   `json:"itemStateById"`
	Offers     map[string]entity.BankerOffer `json:"offersByItemId"`
	ActionLog  []entity.ActionLog            `json:"actionLog"`
}

func NewState() State {
	return State{
		ItemStates: map[string]entity.ItemState{},
		Offers:     map[string]entity.BankerOffer{},
		ActionLog:  []entity.ActionLog{},
	}
}

// StatusOf — статус лота, unseen если записи нет.
func (s State) StatusOf(itemID string) value.ItemStatus {
	if st, ok := s.ItemStates[itemID]; ok {
		return st.Status
	}
	return value.ItemStatusUnseen
}

func (s State) Clone() State {
	return State{
		ItemStates: lo.MapValues(s.ItemStates, func(st entity.ItemState, _ string) entity.ItemState { return st.Clone() }),
		Offers:     lo.Assign(s.Offers),
		ActionLog: lo.Map(s.ActionLog, func(entry entity.ActionLog, _ int) entity.ActionLog {
			return cloneLogEntry(entry)
		}),
	}
}

// commit возвращает состояние после одного действия над itemID.
func (s State) commit(itemID string, next entity.ItemState, offer *entity.BankerOffer, entry entity.ActionLog) State {
	offers := lo.OmitByKeys(s.Offers, []string{itemID})
	if offer != nil {
		offers = lo.Assign(offers, map[string]entity.BankerOffer{itemID: *offer})
	}

	return State{
		ItemStates: lo.Assign(s.ItemStates, map[string]entity.ItemState{itemID: next.Clone()}),
		Offers:     offers,
		ActionLog:  append(slices.Clone(s.ActionLog), cloneLogEntry(entry)),
	}
}

// revert откатывает последнюю запись журнала. ok false при пустом журнале.
func (s State) revert() (next State, undone entity.ActionLog, ok bool) {
	if len(s.ActionLog) == 0 {
		return s, entity.ActionLog{}, false
	}

	undone = s.ActionLog[len(s.ActionLog)-1]

	states := lo.OmitByKeys(s.ItemStates, []string{undone.ItemID})
	if undone.PreviousState != nil {
		states = lo.Assign(states, map[string]entity.ItemState{undone.ItemID: undone.PreviousState.Clone()})
	}

	offers := lo.OmitByKeys(s.Offers, []string{undone.ItemID})
	if undone.PreviousOffer != nil {
		offers = lo.Assign(offers, map[string]entity.BankerOffer{undone.ItemID: *undone.PreviousOffer})
	}

	return State{
		ItemStates: states,
		Offers:     offers,
		ActionLog:  slices.Clone(s.ActionLog[:len(s.ActionLog)-1]),
	}, cloneLogEntry(undone), true
}

// Validate: у каждого лота в статусе offered ровно одно предложение, у
// остальных ни одного.
func (s State) Validate() error {
	for itemID, st := range s.ItemStates {
		offer, hasOffer := s.Offers[itemID]

		switch {
		case st.Status == value.ItemStatusOffered && !hasOffer:
			return errStateCorrupted("item %s is offered but has no offer", itemID)
		case st.Status == value.ItemStatusOffered && offer.ID != st.MyOfferID:
			return errStateCorrupted("item %s points at offer %s, live offer is %s", itemID, st.MyOfferID, offer.ID)
		case st.Status != value.ItemStatusOffered && hasOffer:
			return errStateCorrupted("item %s is %s but has a live offer", itemID, st.Status)
		}
	}

	for itemID := range s.Offers {
		if _, ok := s.ItemStates[itemID]; !ok {
			return errStateCorrupted("offer for unseen item %s", itemID)
		}
	}

	return nil
}

func cloneLogEntry(entry entity.ActionLog) entity.ActionLog {
	out := entry
	out.NewState = entry.NewState.Clone()

	if entry.PreviousState != nil {
		prev := entry.PreviousState.Clone()
		out.PreviousState = &prev
	}

	if entry.PreviousOffer != nil {
		prev := *entry.PreviousOffer
		out.PreviousOffer = &prev
	}

	return out
}
