package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/francagen/internal/ir"
	"github.com/roach88/francagen/internal/testutil"
)

func openLedger(t *testing.T) (*Store, *testutil.FixedClock) {
	t.Helper()
	clock := testutil.NewFixedClock(time.Time{})
	s, err := Open(filepath.Join(t.TempDir(), "ledger.db"),
		WithClock(clock.Now),
		WithIDGenerator(testutil.NewSequentialIDGenerator("run")),
	)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, clock
}

func TestLedgerRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, clock := openLedger(t)

	id, err := s.BeginRun(ctx, []string{"model/media.cue"})
	require.NoError(t, err)
	assert.Equal(t, "run-1", id)

	seq, err := s.RecordFile(ctx, id, FileRecord{
		Path: "src_gen/Types.types.h", Package: "org.example.media", Container: "Types",
		Target: "typesheader.tpl", Declarations: 4, Digest: "abc", Bytes: 120,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), seq)

	seq, err = s.RecordFile(ctx, id, FileRecord{Path: "src_gen/iPlayer.h", Target: "interfaceheader.tpl", Digest: "def"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), seq)

	clock.Advance(3 * time.Second)
	require.NoError(t, s.FinishRun(ctx, id, RunSucceeded, ""))

	run, err := s.GetRun(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, RunSucceeded, run.Status)
	assert.Equal(t, []string{"model/media.cue"}, run.Inputs)
	assert.Equal(t, ir.GeneratorVersion, run.GeneratorVersion)
	assert.True(t, run.StartedAt.Equal(testutil.FixedTime))
	require.NotNil(t, run.FinishedAt)
	assert.Equal(t, 3*time.Second, run.FinishedAt.Sub(run.StartedAt))

	files, err := s.ListFiles(ctx, id)
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "src_gen/Types.types.h", files[0].Path)
	assert.Equal(t, 4, files[0].Declarations)
	assert.Equal(t, "src_gen/iPlayer.h", files[1].Path)
}

func TestLedgerListRunsNewestFirst(t *testing.T) {
	ctx := context.Background()
	s, clock := openLedger(t)

	var ids []string
	for i := 0; i < 3; i++ {
		id, err := s.BeginRun(ctx, nil)
		require.NoError(t, err)
		ids = append(ids, id)
		// Wall clock going backwards must not affect ordering
		clock.Advance(-time.Hour)
	}

	runs, err := s.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, ids[2], runs[0].ID)
	assert.Equal(t, ids[0], runs[2].ID)
	assert.Equal(t, int64(3), runs[0].Seq)
	assert.Empty(t, runs[0].Inputs)

	limited, err := s.ListRuns(ctx, 2)
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestLedgerFileSeqIsPerRun(t *testing.T) {
	ctx := context.Background()
	s, _ := openLedger(t)

	a, err := s.BeginRun(ctx, nil)
	require.NoError(t, err)
	b, err := s.BeginRun(ctx, nil)
	require.NoError(t, err)

	_, err = s.RecordFile(ctx, a, FileRecord{Path: "a.h", Digest: "1"})
	require.NoError(t, err)
	seq, err := s.RecordFile(ctx, b, FileRecord{Path: "b.h", Digest: "2"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), seq)
}

func TestLedgerRecordFileUnknownRun(t *testing.T) {
	s, _ := openLedger(t)

	_, err := s.RecordFile(context.Background(), "nope", FileRecord{Path: "a.h"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrRunNotFound))
}

func TestLedgerRecordFileAfterFinish(t *testing.T) {
	ctx := context.Background()
	s, _ := openLedger(t)

	id, err := s.BeginRun(ctx, nil)
	require.NoError(t, err)
	require.NoError(t, s.FinishRun(ctx, id, RunFailed, "cycle"))

	_, err = s.RecordFile(ctx, id, FileRecord{Path: "a.h"})
	assert.Error(t, err)

	run, err := s.GetRun(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, RunFailed, run.Status)
	assert.Equal(t, "cycle", run.Message)
}

func TestLedgerFinishRunErrors(t *testing.T) {
	ctx := context.Background()
	s, _ := openLedger(t)

	id, err := s.BeginRun(ctx, nil)
	require.NoError(t, err)

	assert.Error(t, s.FinishRun(ctx, id, RunRunning, ""), "running is not a final status")

	require.NoError(t, s.FinishRun(ctx, id, RunSucceeded, ""))
	assert.Error(t, s.FinishRun(ctx, id, RunFailed, ""), "finishing twice")

	err = s.FinishRun(ctx, "nope", RunSucceeded, "")
	assert.True(t, errors.Is(err, ErrRunNotFound))
}

func TestLedgerGetRunNotFound(t *testing.T) {
	s, _ := openLedger(t)

	_, err := s.GetRun(context.Background(), "nope")
	assert.True(t, errors.Is(err, ErrRunNotFound))
}

func TestLedgerLastDigest(t *testing.T) {
	ctx := context.Background()
	s, _ := openLedger(t)

	digest, err := s.LastDigest(ctx, "a.h")
	require.NoError(t, err)
	assert.Empty(t, digest)

	first, _ := s.BeginRun(ctx, nil)
	_, err = s.RecordFile(ctx, first, FileRecord{Path: "a.h", Digest: "old"})
	require.NoError(t, err)
	require.NoError(t, s.FinishRun(ctx, first, RunSucceeded, ""))

	// A failed run does not replace the last known digest
	second, _ := s.BeginRun(ctx, nil)
	_, err = s.RecordFile(ctx, second, FileRecord{Path: "a.h", Digest: "broken"})
	require.NoError(t, err)
	require.NoError(t, s.FinishRun(ctx, second, RunFailed, ""))

	digest, err = s.LastDigest(ctx, "a.h")
	require.NoError(t, err)
	assert.Equal(t, "old", digest)
}

func TestUUIDv7GeneratorSortable(t *testing.T) {
	g := UUIDv7Generator{}
	a := g.Generate()
	time.Sleep(2 * time.Millisecond)
	b := g.Generate()

	assert.Len(t, a, 36)
	assert.Less(t, a, b)
}
