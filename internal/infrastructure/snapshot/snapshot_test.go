package snapshot_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"garthbid/internal/domain"
	"garthbid/internal/domain/service/banker"
	"garthbid/internal/infrastructure/snapshot"
)

var (
	_ banker.SnapshotStore = (*snapshot.Memory)(nil)
	_ banker.SnapshotStore = (*snapshot.Redis)(nil)
)

func TestMemory(t *testing.T) {
	rq := require.New(t)
	ctx := context.Background()

	store := snapshot.NewMemory()

	_, err := store.Load(ctx, "missing")
	rq.ErrorIs(err, snapshot.ErrNotFound)
	rq.Equal(domain.KindNotFound, domain.GetKind(err))

	data := []byte(`{"itemStateById":{}}`)
	rq.NoError(store.Save(ctx, "k", data))

	data[0] = 'X'

	got, err := store.Load(ctx, "k")
	rq.NoError(err)
	rq.Equal(`{"itemStateById":{}}`, string(got), "the store keeps its own copy")

	got[0] = 'Y'

	again, err := store.Load(ctx, "k")
	rq.NoError(err)
	rq.Equal(byte('{'), again[0])

	rq.NoError(store.Save(ctx, "k", []byte("v2")))

	got, err = store.Load(ctx, "k")
	rq.NoError(err)
	rq.Equal("v2", string(got))
}
