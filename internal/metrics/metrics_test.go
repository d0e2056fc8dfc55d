package metrics

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	aerrors "github.com/matzehuels/busarchive/pkg/errors"
	"github.com/matzehuels/busarchive/pkg/observability"
	"github.com/matzehuels/busarchive/pkg/schedule"
	"github.com/matzehuels/busarchive/pkg/store"
)

func TestArchiveEvents(t *testing.T) {
	c := NewCollector()

	c.OnEncode(observability.ArchiveEvent{Records: 7, Objects: 5, BackRefs: 5, Duration: time.Millisecond})
	c.OnDecode(observability.ArchiveEvent{Records: 7, Objects: 5, BackRefs: 5})
	c.OnDecode(observability.ArchiveEvent{Err: aerrors.New(aerrors.ErrCodeMalformedArchive, "bad")})
	c.OnDecode(observability.ArchiveEvent{Err: os.ErrClosed})

	assert.Equal(t, 1.0, testutil.ToFloat64(c.Operations.WithLabelValues("encode")))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.Operations.WithLabelValues("decode")))
	assert.Equal(t, 7.0, testutil.ToFloat64(c.Records.WithLabelValues("decode")))
	assert.Equal(t, 5.0, testutil.ToFloat64(c.BackRefs.WithLabelValues("encode")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Errors.WithLabelValues("decode", "MALFORMED_ARCHIVE")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Errors.WithLabelValues("decode", "unknown")))
	assert.Equal(t, 2, testutil.CollectAndCount(c.Duration))
}

func TestStoreEvents(t *testing.T) {
	c := NewCollector()
	ctx := context.Background()

	c.OnStoreHit(ctx, "file")
	c.OnStoreMiss(ctx, "file")
	c.OnStoreMiss(ctx, "redis")
	c.OnStoreSet(ctx, "mongo", 512)
	c.OnStoreSet(ctx, "mongo", 256)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.StoreHits.WithLabelValues("file")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.StoreMisses.WithLabelValues("redis")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.StoreSets.WithLabelValues("mongo")))
	assert.Equal(t, 768.0, testutil.ToFloat64(c.StoreBytes.WithLabelValues("mongo")))
}

func TestCollectorAsGlobalHooks(t *testing.T) {
	c := NewCollector()
	observability.SetArchiveHooks(c)
	observability.SetStoreHooks(c)
	t.Cleanup(observability.Reset)

	st, err := store.NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	key, err := store.SaveSchedule(ctx, st, "", schedule.Sample(), 0)
	require.NoError(t, err)
	_, err = store.LoadSchedule(ctx, st, key)
	require.NoError(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.Operations.WithLabelValues("encode")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Operations.WithLabelValues("decode")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.StoreHits.WithLabelValues("file")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.StoreSets.WithLabelValues("file")))
	assert.Equal(t,
		testutil.ToFloat64(c.Objects.WithLabelValues("encode")),
		testutil.ToFloat64(c.Objects.WithLabelValues("decode")))
}

func TestWriteToTextfile(t *testing.T) {
	c := NewCollector()
	c.OnStoreHit(context.Background(), "file")

	path := filepath.Join(t.TempDir(), "busarchive.prom")
	require.NoError(t, c.WriteToTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), `busarchive_store_hits_total{backend="file"} 1`), string(data))

	err = c.WriteToTextfile(filepath.Join(t.TempDir(), "missing", "x.prom"))
	assert.True(t, aerrors.Is(err, aerrors.ErrCodeIOUnavailable))
}
