package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-pdf/fpdf"

	"github.com/yousefh409/llm-censorship/pkg/types"
)

// Layout constants, in points. Letter page with one-inch margins.
const (
	pageMargin  = 72
	labelSize   = 10
	labelLineH  = 12
	opSize      = 11
	opLineH     = 14
	replySize   = 10
	replyLineH  = 13
	replyIndent = 20
	smallGap    = 11 // 0.15 inch
	midGap      = 14 // 0.2 inch
	largeGap    = 22 // 0.3 inch
	perPage     = 5  // forced page break cadence for non-reply feeds
)

// PDFOptions configures the paginated document rendering.
type PDFOptions struct {
	// WithReply renders a distinct reply block per entry and keeps each entry
	// unsplit across page boundaries instead of breaking every perPage posts.
	WithReply bool

	// FontPath optionally points at a UTF-8 TTF font for CJK content. When
	// empty or unloadable, body text falls back to Helvetica and CJK glyphs
	// will not render.
	FontPath string
}

// WritePDF renders one feed as a paginated document: each entry is a labeled
// OP block, an optional reply block, and a divider.
func WritePDF(path string, posts []types.OutputPost, opts PDFOptions) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)
	pdf.SetAutoPageBreak(true, pageMargin)

	bodyFont := "Helvetica"
	if opts.FontPath != "" {
		pdf.AddUTF8Font("body", "", opts.FontPath)
		if pdf.Err() {
			return fmt.Errorf("register font %s: %w", opts.FontPath, pdf.Error())
		}
		bodyFont = "body"
	}

	pdf.AddPage()
	pageW, pageH := pdf.GetPageSize()
	usableW := pageW - 2*pageMargin
	limitY := pageH - pageMargin

	for i, post := range posts {
		if opts.WithReply {
			// Keep the whole entry on one page.
			if pdf.GetY()+entryHeight(pdf, bodyFont, usableW, post) > limitY {
				pdf.AddPage()
			}
		}

		writeLabel(pdf, "OP:")
		writeBody(pdf, bodyFont, usableW, post.OpContent)

		if opts.WithReply && post.ReplyContent != "" {
			pdf.Ln(smallGap)
			writeLabel(pdf, "Reply:")
			pdf.SetTextColor(68, 68, 68)
			writeReply(pdf, bodyFont, usableW, post.ReplyContent)
			pdf.SetTextColor(0, 0, 0)
		}
		pdf.Ln(midGap)

		writeDivider(pdf)
		pdf.Ln(largeGap)

		if !opts.WithReply && (i+1)%perPage == 0 && i+1 < len(posts) {
			pdf.AddPage()
		}
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write feed pdf: %w", err)
	}
	return nil
}

func writeLabel(pdf *fpdf.Fpdf, text string) {
	pdf.SetFont("Helvetica", "B", labelSize)
	pdf.CellFormat(0, labelLineH, text, "", 1, "L", false, 0, "")
}

func writeBody(pdf *fpdf.Fpdf, font string, usableW float64, text string) {
	pdf.SetFont(font, "", opSize)
	pdf.MultiCell(usableW, opLineH, text, "", "L", false)
}

func writeReply(pdf *fpdf.Fpdf, font string, usableW float64, text string) {
	pdf.SetFont(font, "", replySize)
	pdf.SetLeftMargin(pageMargin + replyIndent)
	pdf.SetX(pageMargin + replyIndent)
	pdf.MultiCell(usableW-replyIndent, replyLineH, text, "", "L", false)
	pdf.SetLeftMargin(pageMargin)
}

func writeDivider(pdf *fpdf.Fpdf) {
	pdf.SetFont("Helvetica", "", labelSize)
	pdf.CellFormat(0, labelLineH, strings.Repeat("_", 80), "", 1, "L", false, 0, "")
}

// entryHeight estimates the rendered height of one entry so reply-carrying
// entries can be kept together on a page.
func entryHeight(pdf *fpdf.Fpdf, font string, usableW float64, post types.OutputPost) float64 {
	h := float64(labelLineH)
	pdf.SetFont(font, "", opSize)
	h += float64(len(pdf.SplitText(post.OpContent, usableW))) * opLineH

	if post.ReplyContent != "" {
		h += smallGap + labelLineH
		pdf.SetFont(font, "", replySize)
		h += float64(len(pdf.SplitText(post.ReplyContent, usableW-replyIndent))) * replyLineH
	}

	h += midGap + labelLineH + largeGap
	return h
}
