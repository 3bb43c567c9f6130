package document

import (
	"bytes"
	"fmt"

	"github.com/fumiama/go-docx"
)

// BodySummary counts the top-level body items of a word-processing document.
type BodySummary struct {
	Paragraphs int
	Tables     int
	Sections   int
}

// Total returns the number of counted items.
func (s BodySummary) Total() int {
	return s.Paragraphs + s.Tables + s.Sections
}

// summarize parses a packed document and counts its body items.
func summarize(data []byte) (*docx.Docx, BodySummary, error) {
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, BodySummary{}, err
	}

	var summary BodySummary
	for _, item := range doc.Document.Body.Items {
		switch item.(type) {
		case *docx.Paragraph:
			summary.Paragraphs++
		case *docx.Table:
			summary.Tables++
		case *docx.SectPr:
			summary.Sections++
		}
	}
	return doc, summary, nil
}

// verifyOutput checks that the repacked document still opens as a
// word-processing document with the same body layout as the original.
func verifyOutput(original, output []byte) error {
	_, want, err := summarize(original)
	if err != nil {
		// Source documents outside the reader's coverage are not compared.
		return nil
	}

	_, got, err := summarize(output)
	if err != nil {
		return fmt.Errorf("translated document does not open: %w", err)
	}
	if got != want {
		return fmt.Errorf("translated document body changed: paragraphs %d -> %d, tables %d -> %d",
			want.Paragraphs, got.Paragraphs, want.Tables, got.Tables)
	}
	return nil
}
