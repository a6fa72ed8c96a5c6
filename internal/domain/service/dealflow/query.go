package dealflow

import (
	"cmp"
	"slices"
	"strings"

	"github.com/samber/lo"

	"garthbid/internal/domain/entity"
	"garthbid/internal/domain/value"
)

// Query — видимое подмножество сделок.
type Query struct {
	Filter value.DealFilter
	Search string
}

func MatchesFilter(d entity.Deal, f value.DealFilter) bool {
	switch f {
	case value.DealFilterActionRequired:
		return IsActionRequired(d.Status)
	case value.DealFilterAwaitingPayment:
		return d.Status == value.DealStatusAwaitingPayment
	case value.DealFilterFundsHeld:
		return d.Status == value.DealStatusFundsHeld && !d.FundsReleased()
	case value.DealFilterFundsReleased:
		return d.Status == value.DealStatusFundsHeld && d.FundsReleased()
	case value.DealFilterComplete:
		return d.Status == value.DealStatusComplete
	default:
		return true
	}
}

// MatchesSearch ищет подстроку без учёта регистра в названии, id, никах
// сторон и локации. Пустой запрос подходит под всё.
func MatchesSearch(d entity.Deal, search string) bool {
	q := strings.ToLower(strings.TrimSpace(search))
	if q == "" {
		return true
	}

	return lo.SomeBy([]string{d.ItemTitle, d.ID, d.Buyer.Username, d.Seller.Username, d.Location}, func(field string) bool {
		return strings.Contains(strings.ToLower(field), q)
	})
}

// Apply фильтрует и сортирует, входной слайс не трогает.
func Apply(deals []entity.Deal, q Query) []entity.Deal {
	visible := lo.Filter(deals, func(d entity.Deal, _ int) bool {
		return MatchesFilter(d, q.Filter) && MatchesSearch(d, q.Search)
	})

	SortDeals(visible)

	return visible
}

// SortDeals: сначала требующие действия, потом недавно завершённые.
// При равенстве по id, чтобы порядок не прыгал между опросами.
func SortDeals(deals []entity.Deal) {
	slices.SortStableFunc(deals, func(a, b entity.Deal) int {
		if ar, br := IsActionRequired(a.Status), IsActionRequired(b.Status); ar != br {
			if ar {
				return -1
			}
			return 1
		}

		if c := b.AuctionEndedAt.Compare(a.AuctionEndedAt); c != 0 {
			return c
		}

		return cmp.Compare(a.ID, b.ID)
	})
}

// Counts — число сделок в каждом фильтре.
func Counts(deals []entity.Deal) map[value.DealFilter]int {
	counts := make(map[value.DealFilter]int, len(value.DealFilters()))

	for _, f := range value.DealFilters() {
		counts[f] = lo.CountBy(deals, func(d entity.Deal) bool {
			return MatchesFilter(d, f)
		})
	}

	return counts
}
