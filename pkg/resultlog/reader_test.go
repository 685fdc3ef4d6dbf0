package resultlog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yousefh409/llm-censorship/pkg/types"
)

func TestReadPreservesAppendOrder(t *testing.T) {
	dir := t.TempDir()
	w, err := OpenWriter(WriterConfig{Dir: dir, MaxRecordsPerShard: 2})
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		require.NoError(t, w.Append(record(i)))
	}
	require.NoError(t, w.Close())

	posts, err := Read(dir)
	require.NoError(t, err)
	require.Len(t, posts, 5)
	for i, p := range posts {
		assert.Equal(t, record(i).Post.PostID, p.Post.PostID)
	}
}

func TestReadFileLegacyFlatFormat(t *testing.T) {
	data := `[
  {
    "post_id": "w1",
    "original_content": "原文",
    "translated_content": "translated",
    "action": "PUSHBACK",
    "reasoning": "counter-narrative",
    "reply_content": "actually..."
  },
  {
    "post_id": "w2",
    "original_content": "x",
    "translated_content": "",
    "action": "ERROR",
    "reasoning": "Failed to parse JSON: not json",
    "reply_content": null
  }
]`
	path := filepath.Join(t.TempDir(), "results.json")
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	posts, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, posts, 2)

	assert.Equal(t, "w1", posts[0].Post.PostID)
	assert.Equal(t, "原文", posts[0].Post.Content)
	assert.Equal(t, "translated", posts[0].Post.ContentTranslated)
	assert.Equal(t, types.ActionPushback, posts[0].Verdict.Action)
	require.NotNil(t, posts[0].Verdict.ReplyContent)
	assert.Equal(t, "actually...", *posts[0].Verdict.ReplyContent)

	assert.True(t, posts[1].Verdict.IsError())
	assert.Nil(t, posts[1].Verdict.ReplyContent)
}

func TestWriteFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "results.json")
	in := []types.ClassifiedPost{record(0), record(1)}
	require.NoError(t, WriteFile(path, in))

	out, err := ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, in[0].Post, out[0].Post)
	assert.Equal(t, in[1].Verdict, out[1].Verdict)
}

func TestMergeStampsProvenance(t *testing.T) {
	dir := t.TempDir()

	logDir := filepath.Join(dir, "run1")
	w, err := OpenWriter(WriterConfig{Dir: logDir})
	require.NoError(t, err)
	require.NoError(t, w.Append(record(0)))
	require.NoError(t, w.Close())

	flat := filepath.Join(dir, "run2.json")
	require.NoError(t, os.WriteFile(flat, []byte(`[{"post_id":"f1","original_content":"x","action":"ALLOW","reasoning":"r"}]`), 0644))

	merged, err := Merge(logDir, flat)
	require.NoError(t, err)
	require.Len(t, merged, 2)

	// The run's own batch label wins; empty batches take the source name.
	assert.Equal(t, "test", merged[0].Batch)
	assert.Equal(t, "run2.json", merged[1].Batch)
}

func TestCountsAndDrift(t *testing.T) {
	posts := []types.ClassifiedPost{
		{Verdict: types.Verdict{Action: types.ActionAllow}},
		{Verdict: types.Verdict{Action: types.ActionAllow}},
		{Verdict: types.Verdict{Action: types.ActionError}},
		{Verdict: types.Verdict{Action: types.Action("QUARANTINE")}},
		{Verdict: types.Verdict{Action: types.ActionDownrank}},
	}

	counts := Counts(posts)
	assert.Equal(t, 2, counts[types.ActionAllow])
	assert.Equal(t, 1, counts[types.ActionError])

	drift := Drift(types.PolicyV1(), posts)
	assert.Equal(t, 1, drift[types.Action("QUARANTINE")])
	// DOWNRANK is drift under v1 but not v2.
	assert.Equal(t, 1, drift[types.ActionDownrank])
	assert.Empty(t, Drift(types.PolicyV2(), posts)[types.ActionDownrank])
	// ERROR is a sentinel, never drift.
	assert.Empty(t, drift[types.ActionError])
}
