// Package resultlog persists and aggregates classification results.
//
// A classification run appends each classified post to a sharded JSONL log
// with a manifest, which is the durable handoff between the classification
// stage and feed synthesis. Synthesis never re-invokes the oracle; the log is
// the source of truth for a run.
package resultlog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// Index is the manifest for a sharded JSONL result log.
type Index struct {
	Version            int       `json:"version"`
	GeneratedAt        time.Time `json:"generated_at"`
	Policy             string    `json:"policy,omitempty"`
	MaxRecordsPerShard int       `json:"max_records_per_shard,omitempty"`

	// Shards are ordered oldest -> newest (append-only).
	Shards []Shard `json:"shards"`

	TotalRecords int `json:"total_records,omitempty"`
}

type Shard struct {
	Seq     int    `json:"seq"`
	File    string `json:"file"`    // file name relative to the log directory, e.g. "results-000001.jsonl"
	Records int    `json:"records"` // number of JSONL lines in the shard (best-effort)
}

func LoadIndex(path string) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	idx := &Index{}
	if err := json.Unmarshal(data, idx); err != nil {
		return nil, err
	}
	if idx.Version == 0 {
		idx.Version = 1
	}
	return idx, nil
}

func SaveIndexAtomic(path string, idx *Index) error {
	if idx == nil {
		return nil
	}
	if idx.Version <= 0 {
		idx.Version = 1
	}
	idx.GeneratedAt = time.Now()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
