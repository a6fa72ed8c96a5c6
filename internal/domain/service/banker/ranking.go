package banker

import (
	"cmp"
	"math"
	"math/rand/v2"
	"slices"

	"github.com/samber/lo"

	"garthbid/internal/domain/entity"
)

const (
	minAPR      = 0.01
	maxAPR      = 99.99
	beatBestBy  = 0.05
	mockBaseAPR = 5.5
)

// compareOffers — рыночный порядок: меньший APR, затем больший лимит, затем
// более длинный срок.
func compareOffers(a, b entity.CompetingOffer) int {
	if c := cmp.Compare(a.APR, b.APR); c != 0 {
		return c
	}
	if c := cmp.Compare(b.MaxAmountOrZero(), a.MaxAmountOrZero()); c != 0 {
		return c
	}
	return cmp.Compare(b.TermMonths, a.TermMonths)
}

// SortOffers возвращает отсортированную копию, равные сохраняют исходный порядок.
func SortOffers(offers []entity.CompetingOffer) []entity.CompetingOffer {
	sorted := slices.Clone(offers)
	slices.SortStableFunc(sorted, compareOffers)
	return sorted
}

// CalculateMyRank добавляет myOffer к конкурентам и возвращает его место с
// единицы. 0 только если предложения нет. Среди равных моё идёт первым,
// то есть место равно числу строго лучших плюс один.
func CalculateMyRank(myOffer *entity.CompetingOffer, competing []entity.CompetingOffer) int {
	if myOffer == nil {
		return 0
	}

	me := *myOffer
	me.IsMe = true

	merged := append([]entity.CompetingOffer{me}, lo.Reject(competing, func(o entity.CompetingOffer, _ int) bool { return o.IsMe })...)

	_, idx, _ := lo.FindIndexOf(SortOffers(merged), func(o entity.CompetingOffer) bool { return o.IsMe })

	return idx + 1
}

// Rank проставляет rank 1..n в рыночном порядке.
func Rank(offers []entity.CompetingOffer) []entity.CompetingOffer {
	return lo.Map(SortOffers(offers), func(o entity.CompetingOffer, i int) entity.CompetingOffer {
		o.Rank = i + 1
		return o
	})
}

// itemHash — сумма символов id лота.
func itemHash(itemID string) uint64 {
	var h uint64
	for _, r := range itemID {
		h += uint64(r)
	}
	return h
}

// BaseRate — рыночная ставка с поправкой на риск. Зависит только от id
// лота.
func BaseRate(itemID string) float64 {
	h := itemHash(itemID)

	var premium float64

	switch h % 3 { //nolint:mnd
	case 0:
		premium = 0.4 // low risk
	case 1:
		premium = 1.2 // medium
	default:
		premium = 2.5 // high
	}

	return roundAPR(mockBaseAPR + float64(h%15)/10 + premium) //nolint:mnd
}

// GenerateMockCompetingOffers имитирует двух-трёх кредиторов по лоту. PRNG
// засевается хешем лота, для одного id набор всегда одинаковый.
func GenerateMockCompetingOffers(itemID string) []entity.CompetingOffer {
	h := itemHash(itemID)
	base := BaseRate(itemID)

	//nolint:gosec // mock market data
	random := rand.New(rand.NewPCG(h, h^0x9e3779b97f4a7c15))

	terms := []int{36, 48, 60, 72}
	count := 2 + random.IntN(2) //nolint:mnd

	offers := make([]entity.CompetingOffer, 0, count)
	for range count {
		offer := entity.CompetingOffer{
			APR:        roundAPR(math.Max(minAPR, base+random.Float64()*1.5-0.5)),
			TermMonths: terms[random.IntN(len(terms))],
		}

		if random.IntN(4) > 0 { //nolint:mnd
			offer.MaxAmount = lo.ToPtr(float64(5000 * (1 + random.IntN(10)))) //nolint:mnd
		}

		offers = append(offers, offer)
	}

	return Rank(offers)
}

// BestCompetingAPR — минимальный APR среди чужих предложений.
func BestCompetingAPR(competing []entity.CompetingOffer) (float64, bool) {
	others := lo.Reject(competing, func(o entity.CompetingOffer, _ int) bool { return o.IsMe })
	if len(others) == 0 {
		return 0, false
	}

	return lo.MinBy(others, func(a, b entity.CompetingOffer) bool { return a.APR < b.APR }).APR, true
}

// BeatBestAPR на пять базисных пунктов ниже лучшего конкурента, но не ниже
// минимальной ставки.
func BeatBestAPR(best float64) float64 {
	return roundAPR(math.Max(minAPR, best-beatBestBy))
}

func roundAPR(apr float64) float64 {
	return math.Round(apr*100) / 100 //nolint:mnd
}

func asCompeting(o entity.BankerOffer) *entity.CompetingOffer {
	return &entity.CompetingOffer{APR: o.APR, TermMonths: o.TermMonths, IsMe: true}
}
