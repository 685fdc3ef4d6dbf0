// Package poststore loads raw post records from tabular input.
package poststore

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/yousefh409/llm-censorship/pkg/types"
)

const themeScorePrefix = "theme_score_"

// Load reads post records from a CSV file, preserving file order.
//
// post_id and content columns are required. content_translated is optional.
// Every column named theme_score_<theme> is parsed as a float score; malformed
// or missing values default to 0. Rows with empty content are kept so a run's
// post count matches the source.
func Load(path string) ([]types.PostRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open posts file: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Read decodes post records from CSV data.
func Read(r io.Reader) ([]types.PostRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.TrimSpace(name)] = i
	}
	if _, ok := cols["post_id"]; !ok {
		return nil, fmt.Errorf("posts file has no post_id column")
	}
	if _, ok := cols["content"]; !ok {
		return nil, fmt.Errorf("posts file has no content column")
	}

	var posts []types.PostRecord
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		post := types.PostRecord{
			PostID:            field(row, cols, "post_id"),
			Content:           field(row, cols, "content"),
			ContentTranslated: field(row, cols, "content_translated"),
		}
		for name, idx := range cols {
			if !strings.HasPrefix(name, themeScorePrefix) {
				continue
			}
			theme := strings.TrimPrefix(name, themeScorePrefix)
			score, err := strconv.ParseFloat(strings.TrimSpace(cell(row, idx)), 64)
			if err != nil {
				score = 0
			}
			if post.ThemeScores == nil {
				post.ThemeScores = make(map[string]float64)
			}
			post.ThemeScores[theme] = score
		}
		posts = append(posts, post)
	}
	return posts, nil
}

func field(row []string, cols map[string]int, name string) string {
	idx, ok := cols[name]
	if !ok {
		return ""
	}
	return cell(row, idx)
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
