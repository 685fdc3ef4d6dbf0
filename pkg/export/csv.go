// Package export renders synthesized feeds to tabular and document formats.
// Pure presentation transforms; no derivation logic lives here.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"github.com/yousefh409/llm-censorship/pkg/types"
)

// WriteCSV renders one feed to a flat CSV file. The reply column is emitted
// only for reply-carrying variants.
func WriteCSV(path string, posts []types.OutputPost, withReply bool) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create feed csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{"post_id", "op_content"}
	if withReply {
		header = append(header, "reply_content")
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, post := range posts {
		row := []string{post.PostID, post.OpContent}
		if withReply {
			row = append(row, post.ReplyContent)
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// WriteAnnotatedCSV writes the full classified dataset as one row per post
// with the verdict columns appended, in pass order.
func WriteAnnotatedCSV(path string, posts []types.ClassifiedPost) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create annotated csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{"post_id", "content", "content_translated", "action", "reasoning", "reply_content"}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, post := range posts {
		row := []string{
			post.Post.PostID,
			post.Post.Content,
			post.Post.ContentTranslated,
			string(post.Verdict.Action),
			post.Verdict.Reasoning,
			post.Verdict.Reply(),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
