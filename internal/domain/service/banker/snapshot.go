package banker

import (
	"context"
	"fmt"
	"log/slog"

	jsoniter "github.com/json-iterator/go"

	"garthbid/internal/domain"
	"garthbid/pkg/errcodes"
	"garthbid/pkg/logx"
)

// SnapshotKey — ключ снимка сессии очереди.
const SnapshotKey = "garthbid:banker:state"

// SnapshotStore хранит сериализованный State между перезапусками.
// Отсутствующий ключ Load возвращает с кодом SnapshotNotFound.
type SnapshotStore interface {
	Save(ctx context.Context, key string, data []byte) error
	Load(ctx context.Context, key string) ([]byte, error)
}

// publish публикует next и сохраняет снимок. Вызывается под mu.
func (c *Console) publish(ctx context.Context, next State) {
	c.state.Store(&next)

	if c.snapshots == nil {
		return
	}

	data, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(next)
	if err != nil {
		logger(ctx).Error("banker snapshot encode failed", logx.Error(err))
		return
	}

	// Ошибку сохранения только логируем, источник истины — State в памяти.
	if err := c.snapshots.Save(ctx, SnapshotKey, data); err != nil {
		logger(ctx).Error("banker snapshot save failed", logx.Error(err))
	}
}

// Restore поднимает сохранённую сессию. Возвращает true, если снимок
// был применён.
func (c *Console) Restore(ctx context.Context) (bool, error) {
	if c.snapshots == nil {
		return false, nil
	}

	data, err := c.snapshots.Load(ctx, SnapshotKey)
	if err != nil {
		if code, _ := domain.GetCode(err); code == errcodes.SnapshotNotFound {
			return false, nil
		}
		return false, fmt.Errorf("snapshots.Load: %w", err)
	}

	st, err := c.decodeState(data)
	if err != nil {
		return false, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.state.Store(&st)
	c.pending = nil

	logger(ctx).Info("banker session restored",
		slog.Int("decisions", len(st.ItemStates)),
		slog.Int("offers", len(st.Offers)),
		slog.Int("log-entries", len(st.ActionLog)),
	)

	return true, nil
}

func (c *Console) decodeState(data []byte) (State, error) {
	var st State
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(data, &st); err != nil {
		return State{}, domain.WrapError(err, domain.KindInternal, errcodes.SnapshotCorrupted, "decode banker snapshot")
	}

	empty := NewState()
	if st.ItemStates == nil {
		st.ItemStates = empty.ItemStates
	}
	if st.Offers == nil {
		st.Offers = empty.Offers
	}
	if st.ActionLog == nil {
		st.ActionLog = empty.ActionLog
	}

	if err := st.Validate(); err != nil {
		return State{}, err
	}

	for itemID := range st.ItemStates {
		if _, ok := c.itemsByID[itemID]; !ok {
			return State{}, errStateCorrupted("snapshot references unknown item %s", itemID)
		}
	}

	return st, nil
}
