package banker

import (
	"slices"
	"time"

	"github.com/patrickmn/go-cache"

	"garthbid/internal/domain/entity"
)

// DefaultCompetingCacheTTL — сколько живёт закешированный рынок.
const DefaultCompetingCacheTTL = 10 * time.Minute

// CompetitionSelector кеширует конкурентов по id лота, рынок считается один
// раз на смену лота, а не на каждое чтение.
type CompetitionSelector struct {
	cache    *cache.Cache
	generate func(itemID string) []entity.CompetingOffer
}

func NewCompetitionSelector(ttl time.Duration) *CompetitionSelector {
	if ttl <= 0 {
		ttl = DefaultCompetingCacheTTL
	}

	return &CompetitionSelector{
		cache:    cache.New(ttl, 2*ttl), //nolint:mnd
		generate: GenerateMockCompetingOffers,
	}
}

// WithGenerator подменяет генератор рынка, например фиксированным набором в тестах.
func (s *CompetitionSelector) WithGenerator(generate func(itemID string) []entity.CompetingOffer) *CompetitionSelector {
	s.generate = generate
	s.cache.Flush()
	return s
}

// Competitors возвращает копию ранжированного набора для itemID.
func (s *CompetitionSelector) Competitors(itemID string) []entity.CompetingOffer {
	if cached, ok := s.cache.Get(itemID); ok {
		if offers, ok := cached.([]entity.CompetingOffer); ok {
			return slices.Clone(offers)
		}
	}

	offers := s.generate(itemID)
	s.cache.Set(itemID, offers, cache.DefaultExpiration)

	return slices.Clone(offers)
}

func (s *CompetitionSelector) Forget(itemID string) {
	s.cache.Delete(itemID)
}
