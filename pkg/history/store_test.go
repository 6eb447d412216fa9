package history

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/XiaoConstantine/evoprompt-go/pkg/core"
	"github.com/XiaoConstantine/evoprompt-go/pkg/errors"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRunLifecycle(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	id, err := store.BeginRun(ctx, "seed prompt", "improve clarity", "anthropic", "claude-sonnet-4-5")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	run, err := store.GetRun(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, run.Status)
	assert.Equal(t, "seed prompt", run.SeedPrompt)
	assert.Nil(t, run.FinishedAt)

	err = store.FinishRun(ctx, id, Outcome{
		Status:           StatusFinished,
		BestPrompt:       "improved prompt",
		BestScore:        0.82,
		Generations:      3,
		PromptsEvaluated: 12,
		Usage:            core.TokenUsage{InputTokens: 100, OutputTokens: 50},
	})
	require.NoError(t, err)

	run, err = store.GetRun(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, StatusFinished, run.Status)
	assert.Equal(t, "improved prompt", run.BestPrompt)
	assert.InDelta(t, 0.82, run.BestScore, 1e-9)
	assert.Equal(t, 3, run.Generations)
	assert.Equal(t, 12, run.PromptsEvaluated)
	assert.Equal(t, core.TokenUsage{InputTokens: 100, OutputTokens: 50}, run.Usage)
	require.NotNil(t, run.FinishedAt)
}

func TestListRunsNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	first, err := store.BeginRun(ctx, "first", "", "anthropic", "m")
	require.NoError(t, err)
	second, err := store.BeginRun(ctx, "second", "", "openai", "m")
	require.NoError(t, err)

	runs, err := store.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	ids := []string{runs[0].ID, runs[1].ID}
	assert.Contains(t, ids, first)
	assert.Contains(t, ids, second)
	assert.False(t, runs[0].StartedAt.Before(runs[1].StartedAt))

	runs, err = store.ListRuns(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestRecordStepKeepsLatestSnapshot(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	id, err := store.BeginRun(ctx, "seed", "", "anthropic", "m")
	require.NoError(t, err)

	score := 0.5
	step := core.ProgressStep{
		Generation: 1,
		Phase:      core.PhaseEvaluating,
		Fraction:   0.1,
		BestPrompt: "seed",
		BestScore:  &score,
	}
	require.NoError(t, store.RecordStep(ctx, id, step))

	step.Fraction = 0.9
	step.Phase = core.PhaseBreeding
	require.NoError(t, store.RecordStep(ctx, id, step))

	var (
		phase    string
		fraction float64
		count    int
	)
	row := store.db.QueryRow(`SELECT phase, fraction FROM steps WHERE run_id = ? AND generation = 1`, id)
	require.NoError(t, row.Scan(&phase, &fraction))
	assert.Equal(t, string(core.PhaseBreeding), phase)
	assert.InDelta(t, 0.9, fraction, 1e-9)

	row = store.db.QueryRow(`SELECT COUNT(*) FROM steps WHERE run_id = ?`, id)
	require.NoError(t, row.Scan(&count))
	assert.Equal(t, 1, count, "re-recording a generation must not add rows")
}

func TestSinkForRecordsSteps(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	id, err := store.BeginRun(ctx, "seed", "", "anthropic", "m")
	require.NoError(t, err)

	sink := store.SinkFor(ctx, id)
	sink.Publish(core.ProgressStep{Generation: 0, Phase: core.PhaseInitializing, Fraction: 0.125})
	sink.Publish(core.ProgressStep{Generation: 0, Phase: core.PhaseEvaluating, Fraction: 1})

	var count int
	row := store.db.QueryRow(`SELECT COUNT(*) FROM steps WHERE run_id = ?`, id)
	require.NoError(t, row.Scan(&count))
	assert.Equal(t, 1, count)
}

func TestFinishUnknownRun(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	err := store.FinishRun(ctx, "no-such-run", Outcome{Status: StatusFailed})
	require.Error(t, err)
	assert.Equal(t, errors.StorageFailed, errors.CodeOf(err))
}
