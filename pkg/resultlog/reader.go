package resultlog

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/yousefh409/llm-censorship/pkg/types"
)

// Read returns every classified post in a sharded log directory, ordered by
// shard sequence and then line order. A missing index is rebuilt from the
// shard files on disk.
func Read(dir string) ([]types.ClassifiedPost, error) {
	idx, err := LoadIndex(filepath.Join(dir, "index.json"))
	if err != nil {
		idx = rebuildIndexFromDisk(dir, 0)
	}

	var posts []types.ClassifiedPost
	for _, shard := range idx.Shards {
		shardPosts, err := readShard(filepath.Join(dir, shard.File))
		if err != nil {
			return nil, fmt.Errorf("read shard %s: %w", shard.File, err)
		}
		posts = append(posts, shardPosts...)
	}
	return posts, nil
}

func readShard(path string) ([]types.ClassifiedPost, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var posts []types.ClassifiedPost
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 256*1024), 8*1024*1024)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var post types.ClassifiedPost
		if err := json.Unmarshal(line, &post); err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, scanner.Err()
}

// flatRecord is the legacy flat result shape: one object per post with the
// verdict fields inlined next to the content fields.
type flatRecord struct {
	PostID            string  `json:"post_id"`
	OriginalContent   string  `json:"original_content"`
	TranslatedContent string  `json:"translated_content"`
	Action            string  `json:"action"`
	Reasoning         string  `json:"reasoning"`
	ReplyContent      *string `json:"reply_content"`
}

// ReadFile returns the classified posts from a plain JSON array file, in file
// order. Both the nested record shape written by this pipeline and the legacy
// flat shape are accepted.
func ReadFile(path string) ([]types.ClassifiedPost, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read results file: %w", err)
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode results file %s: %w", path, err)
	}

	posts := make([]types.ClassifiedPost, 0, len(raw))
	for i, msg := range raw {
		post, err := decodeRecord(msg)
		if err != nil {
			return nil, fmt.Errorf("decode record %d of %s: %w", i, path, err)
		}
		posts = append(posts, post)
	}
	return posts, nil
}

func decodeRecord(msg json.RawMessage) (types.ClassifiedPost, error) {
	var probe struct {
		Post *json.RawMessage `json:"post"`
	}
	if err := json.Unmarshal(msg, &probe); err != nil {
		return types.ClassifiedPost{}, err
	}
	if probe.Post != nil {
		var post types.ClassifiedPost
		err := json.Unmarshal(msg, &post)
		return post, err
	}

	var flat flatRecord
	if err := json.Unmarshal(msg, &flat); err != nil {
		return types.ClassifiedPost{}, err
	}
	return types.ClassifiedPost{
		Post: types.PostRecord{
			PostID:            flat.PostID,
			Content:           flat.OriginalContent,
			ContentTranslated: flat.TranslatedContent,
		},
		Verdict: types.Verdict{
			Action:       types.Action(flat.Action),
			Reasoning:    flat.Reasoning,
			ReplyContent: flat.ReplyContent,
		},
	}, nil
}

// Load reads classification results from a path that is either a sharded log
// directory or a plain JSON array file.
func Load(path string) ([]types.ClassifiedPost, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return Read(path)
	}
	return ReadFile(path)
}

// Merge concatenates results from multiple sources in argument order, the
// aggregation contract for multi-run synthesis. Each post's batch provenance
// is set to its source name when the run left it empty.
func Merge(paths ...string) ([]types.ClassifiedPost, error) {
	var all []types.ClassifiedPost
	for _, path := range paths {
		posts, err := Load(path)
		if err != nil {
			return nil, err
		}
		name := filepath.Base(path)
		for _, p := range posts {
			if p.Batch == "" {
				p.Batch = name
			}
			all = append(all, p)
		}
	}
	return all, nil
}

// WriteFile persists results as a plain JSON array, the portable counterpart
// of the sharded log.
func WriteFile(path string, posts []types.ClassifiedPost) error {
	data, err := json.MarshalIndent(posts, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal results: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Counts tallies posts per action, ERROR included, so operators can judge the
// failure rate of a run.
func Counts(posts []types.ClassifiedPost) map[types.Action]int {
	counts := make(map[types.Action]int)
	for _, p := range posts {
		counts[p.Verdict.Action]++
	}
	return counts
}

// Drift returns the post counts for actions outside the policy's closed set.
// Drifted actions are tolerated throughout the pipeline; this is the surface
// for noticing them.
func Drift(policy types.PolicyVersion, posts []types.ClassifiedPost) map[types.Action]int {
	drift := make(map[types.Action]int)
	for _, p := range posts {
		if policy.Drifted(p.Verdict.Action) {
			drift[p.Verdict.Action]++
		}
	}
	return drift
}
