package runlog_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/fmuweb/store/runlog"
)

func TestRecordAndRecent(t *testing.T) {
	l, err := runlog.Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer l.Close()

	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	require.NoError(t, l.Record(ctx, runlog.Entry{
		RunID: "r1", ModelName: "bouncing_ball.fmu", Status: "ok",
		DurationMS: 120, StartedAt: base,
	}))
	require.NoError(t, l.Record(ctx, runlog.Entry{
		RunID: "r2", ModelName: "bouncing_ball.fmu", Status: "failed",
		DurationMS: 5, Error: "solver diverged", StartedAt: base.Add(time.Minute),
	}))

	entries, err := l.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "r2", entries[0].RunID)
	assert.Equal(t, "solver diverged", entries[0].Error)
	assert.Equal(t, "r1", entries[1].RunID)
	assert.Equal(t, "ok", entries[1].Status)
}
