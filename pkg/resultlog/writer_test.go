package resultlog

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/yousefh409/llm-censorship/pkg/types"
)

func record(i int) types.ClassifiedPost {
	return types.ClassifiedPost{
		Post:    types.PostRecord{PostID: fmt.Sprintf("p%d", i), Content: "text"},
		Verdict: types.Verdict{Action: types.ActionAllow, Reasoning: "fine"},
		Batch:   "test",
	}
}

func TestWriter_RotationAndResume(t *testing.T) {
	dir := t.TempDir()

	w, err := OpenWriter(WriterConfig{
		Dir:                dir,
		Policy:             "v1",
		MaxRecordsPerShard: 3,
		Append:             false,
	})
	if err != nil {
		t.Fatalf("OpenWriter: %v", err)
	}

	for i := 0; i < 7; i++ {
		if err := w.Append(record(i)); err != nil {
			t.Fatalf("Append(%d): %v", i, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	idx, err := LoadIndex(filepath.Join(dir, "index.json"))
	if err != nil {
		t.Fatalf("LoadIndex: %v", err)
	}
	if idx.TotalRecords != 7 {
		t.Fatalf("TotalRecords=%d, want 7", idx.TotalRecords)
	}
	if idx.Policy != "v1" {
		t.Fatalf("Policy=%q, want v1", idx.Policy)
	}
	if len(idx.Shards) != 3 {
		t.Fatalf("Shards=%d, want 3", len(idx.Shards))
	}
	if idx.Shards[0].File != "results-000001.jsonl" || idx.Shards[0].Records != 3 {
		t.Fatalf("shard1=%+v, want file results-000001.jsonl records 3", idx.Shards[0])
	}
	if idx.Shards[2].File != "results-000003.jsonl" || idx.Shards[2].Records != 1 {
		t.Fatalf("shard3=%+v, want file results-000003.jsonl records 1", idx.Shards[2])
	}
	for _, s := range idx.Shards {
		if _, err := os.Stat(filepath.Join(dir, s.File)); err != nil {
			t.Fatalf("missing shard file %s: %v", s.File, err)
		}
	}

	// Resume with append and verify we keep writing into the last shard until full.
	w2, err := OpenWriter(WriterConfig{
		Dir:                dir,
		MaxRecordsPerShard: 3,
		Append:             true,
	})
	if err != nil {
		t.Fatalf("OpenWriter(resume): %v", err)
	}
	for i := 7; i < 9; i++ {
		if err := w2.Append(record(i)); err != nil {
			t.Fatalf("Append(resume %d): %v", i, err)
		}
	}
	if err := w2.Close(); err != nil {
		t.Fatalf("Close(resume): %v", err)
	}

	idx2, err := LoadIndex(filepath.Join(dir, "index.json"))
	if err != nil {
		t.Fatalf("LoadIndex(resume): %v", err)
	}
	if idx2.TotalRecords != 9 {
		t.Fatalf("TotalRecords(resume)=%d, want 9", idx2.TotalRecords)
	}
	if len(idx2.Shards) != 3 {
		t.Fatalf("Shards(resume)=%d, want 3", len(idx2.Shards))
	}
	if idx2.Shards[2].Records != 3 {
		t.Fatalf("shard3 records=%d, want 3", idx2.Shards[2].Records)
	}
}

func TestWriter_RebuildIndexFromShards(t *testing.T) {
	dir := t.TempDir()

	w, err := OpenWriter(WriterConfig{Dir: dir, MaxRecordsPerShard: 2})
	if err != nil {
		t.Fatalf("OpenWriter: %v", err)
	}
	for i := 0; i < 5; i++ {
		if err := w.Append(record(i)); err != nil {
			t.Fatalf("Append(%d): %v", i, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// Drop the index; a resumed writer must rebuild it by scanning shard files.
	if err := os.Remove(filepath.Join(dir, "index.json")); err != nil {
		t.Fatalf("Remove index: %v", err)
	}

	w2, err := OpenWriter(WriterConfig{Dir: dir, MaxRecordsPerShard: 2, Append: true})
	if err != nil {
		t.Fatalf("OpenWriter(rebuild): %v", err)
	}
	if err := w2.Close(); err != nil {
		t.Fatalf("Close(rebuild): %v", err)
	}

	idx, err := LoadIndex(filepath.Join(dir, "index.json"))
	if err != nil {
		t.Fatalf("LoadIndex: %v", err)
	}
	if idx.TotalRecords != 5 {
		t.Fatalf("TotalRecords=%d, want 5", idx.TotalRecords)
	}
	if len(idx.Shards) != 3 {
		t.Fatalf("Shards=%d, want 3", len(idx.Shards))
	}
}
