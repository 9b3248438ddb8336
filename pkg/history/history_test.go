package history

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edfm/edfm/pkg/executor"
	"github.com/edfm/edfm/pkg/plan"
	"github.com/edfm/edfm/pkg/result"
)

func openJournal(t *testing.T) *Journal {
	t.Helper()

	j, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, j.Close()) })
	return j
}

func sampleReport(id string, startedAt time.Time) *executor.Report {
	return &executor.Report{
		ID:         id,
		Backend:    "mem",
		StartedAt:  startedAt,
		FinishedAt: startedAt.Add(time.Second),
		Records: []executor.Record{
			{
				Operation: plan.Move(1, "a.txt", "b.txt"),
				Result:    result.Done(),
				Attempts:  1,
			},
		},
		Tally: executor.Tally{Succeeded: 1},
	}
}

func TestSaveAndGetRoundtrip(t *testing.T) {
	j := openJournal(t)

	saved := sampleReport("r1", time.Now())
	require.NoError(t, j.Save(saved))

	loaded, err := j.Get("r1")
	require.NoError(t, err)

	assert.Equal(t, saved.ID, loaded.ID)
	assert.Equal(t, saved.Backend, loaded.Backend)
	require.Len(t, loaded.Records, 1)
	assert.Equal(t, plan.KindMove, loaded.Records[0].Operation.Kind)
	assert.Equal(t, result.Success, loaded.Records[0].Result.Status)
	assert.Equal(t, 1, loaded.Tally.Succeeded)
}

func TestGetMissingReport(t *testing.T) {
	j := openJournal(t)

	_, err := j.Get("ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSaveRejectsEmptyID(t *testing.T) {
	j := openJournal(t)

	assert.Error(t, j.Save(&executor.Report{}))
}

func TestListNewestFirst(t *testing.T) {
	j := openJournal(t)

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, j.Save(sampleReport("old", base)))
	require.NoError(t, j.Save(sampleReport("mid", base.Add(time.Hour))))
	require.NoError(t, j.Save(sampleReport("new", base.Add(2*time.Hour))))

	summaries, err := j.List(0)
	require.NoError(t, err)
	require.Len(t, summaries, 3)
	assert.Equal(t, "new", summaries[0].ID)
	assert.Equal(t, "mid", summaries[1].ID)
	assert.Equal(t, "old", summaries[2].ID)
	assert.Equal(t, 1, summaries[0].Total)
}

func TestListHonorsLimit(t *testing.T) {
	j := openJournal(t)

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		require.NoError(t, j.Save(sampleReport(id, base.Add(time.Duration(i)*time.Minute))))
	}

	summaries, err := j.List(2)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "c", summaries[0].ID)
	assert.Equal(t, "b", summaries[1].ID)
}

func TestPruneKeepsNewest(t *testing.T) {
	j := openJournal(t)

	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c", "d"} {
		require.NoError(t, j.Save(sampleReport(id, base.Add(time.Duration(i)*time.Minute))))
	}

	removed, err := j.Prune(2)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	summaries, err := j.List(0)
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	assert.Equal(t, "d", summaries[0].ID)
	assert.Equal(t, "c", summaries[1].ID)

	_, err = j.Get("a")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPruneNoopWhenUnderLimit(t *testing.T) {
	j := openJournal(t)

	require.NoError(t, j.Save(sampleReport("only", time.Now())))

	removed, err := j.Prune(5)
	require.NoError(t, err)
	assert.Zero(t, removed)
}
