package dealflow

import (
	"sync"
	"sync/atomic"

	"github.com/samber/lo"

	"garthbid/internal/domain"
	"garthbid/internal/domain/entity"
	"garthbid/pkg/errcodes"
)

// Store — сделки в памяти. Читатели берут неизменяемый снимок без
// блокировки, писатели идут через mu и публикуют новую map целиком.
type Store struct {
	mu       sync.Mutex
	snapshot atomic.Pointer[map[string]entity.Deal]
}

func NewStore() *Store {
	s := &Store{}
	empty := map[string]entity.Deal{}
	s.snapshot.Store(&empty)
	return s
}

func (s *Store) load() map[string]entity.Deal {
	return *s.snapshot.Load()
}

// Add добавляет сделку. Сделки не удаляются.
func (s *Store) Add(d entity.Deal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.load()
	if _, ok := current[d.ID]; ok {
		return domain.Errorf(domain.KindConflict, errcodes.DealAlreadyExists, "deal %s already exists", d.ID)
	}

	if err := checkConservation(d); err != nil {
		return err
	}

	next := lo.Assign(current, map[string]entity.Deal{d.ID: d.Clone()})
	s.snapshot.Store(&next)

	return nil
}

func (s *Store) Get(id string) (entity.Deal, error) {
	d, ok := s.load()[id]
	if !ok {
		return entity.Deal{}, domain.Errorf(domain.KindNotFound, errcodes.DealNotFound, "deal %s not found", id)
	}
	return d.Clone(), nil
}

// List возвращает копии всех сделок без порядка.
func (s *Store) List() []entity.Deal {
	return lo.MapToSlice(s.load(), func(_ string, d entity.Deal) entity.Deal {
		return d.Clone()
	})
}

func (s *Store) Len() int {
	return len(s.load())
}

// Update применяет fn к копии сделки и публикует результат, если инварианты
// расчёта соблюдены. При ошибке ничего не меняется.
func (s *Store) Update(id string, fn func(entity.Deal) (entity.Deal, error)) (entity.Deal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.load()

	prev, ok := current[id]
	if !ok {
		return entity.Deal{}, domain.Errorf(domain.KindNotFound, errcodes.DealNotFound, "deal %s not found", id)
	}

	next, err := fn(prev.Clone())
	if err != nil {
		return entity.Deal{}, err
	}

	if err := checkSuccessor(prev, next); err != nil {
		return entity.Deal{}, err
	}

	replaced := lo.Assign(current, map[string]entity.Deal{id: next.Clone()})
	s.snapshot.Store(&replaced)

	return next.Clone(), nil
}

func checkConservation(d entity.Deal) error {
	if !d.SellerPayout.Add(d.PlatformFee).Equal(d.SalePrice) {
		return domain.Errorf(domain.KindInternal, errcodes.DealInvariantBroken,
			"deal %s: payout %s + fee %s != sale price %s", d.ID, d.SellerPayout, d.PlatformFee, d.SalePrice)
	}
	return nil
}

// checkSuccessor: переход не меняет id, суммы и фиксированные даты, не
// переписывает таймлайн и не двигает статус назад.
func checkSuccessor(prev, next entity.Deal) error {
	broken := func(format string, args ...any) error {
		return domain.Errorf(domain.KindInternal, errcodes.DealInvariantBroken, "deal "+prev.ID+": "+format, args...)
	}

	switch {
	case next.ID != prev.ID:
		return broken("id changed to %s", next.ID)
	case !next.SalePrice.Equal(prev.SalePrice) || !next.PlatformFee.Equal(prev.PlatformFee) || !next.SellerPayout.Equal(prev.SellerPayout):
		return broken("amounts changed")
	case !next.AuctionEndedAt.Equal(prev.AuctionEndedAt) || !next.PaymentDeadline.Equal(prev.PaymentDeadline):
		return broken("auction timestamps changed")
	case prev.FundsReleasedAt != nil && (next.FundsReleasedAt == nil || !next.FundsReleasedAt.Equal(*prev.FundsReleasedAt)):
		return broken("funds release time changed")
	case len(next.Timeline) < len(prev.Timeline):
		return broken("timeline shrank from %d to %d", len(prev.Timeline), len(next.Timeline))
	}

	for i, event := range prev.Timeline {
		if next.Timeline[i].ID != event.ID {
			return broken("timeline event %d rewritten", i)
		}
	}

	if step := next.Status.Stage() - prev.Status.Stage(); !next.Status.Valid() || step < 0 || step > 1 {
		return broken("status %s -> %s skips or reverses a stage", prev.Status, next.Status)
	}

	return checkConservation(next)
}
