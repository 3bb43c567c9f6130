package document

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/nerdneilsfield/docx-translator/pkg/markup"
	"github.com/nerdneilsfield/docx-translator/pkg/placeholder"
	"github.com/nerdneilsfield/docx-translator/pkg/translation"
)

// Report is a dry run over a document: what would be extracted and how it
// would be chunked, without calling any translation service.
type Report struct {
	InputPath  string
	Members    int
	Body       BodySummary
	Segments   int
	Characters int // runes of trimmed segment text
	Budget     int
	ChunkSizes []int
	Samples    []string // leading paragraph previews
}

// maxSamples bounds the paragraph previews in a report.
const maxSamples = 5

// Inspect extracts the payload of inputPath and plans its chunks for budget.
func Inspect(inputPath string, budget int) (*Report, error) {
	if budget <= 0 {
		return nil, translation.NewTranslationError(translation.ErrCodeConfig,
			fmt.Sprintf("chunk budget must be positive, got %d", budget), translation.ErrInvalidConfig)
	}

	data, archive, err := openArchive(inputPath)
	if err != nil {
		return nil, err
	}

	member := findMember(archive, PayloadPath)
	if member == nil {
		return nil, translation.NewInputError(fmt.Sprintf("%s not found in %s", PayloadPath, inputPath), nil)
	}
	rc, err := member.Open()
	if err != nil {
		return nil, translation.NewInputError("failed to open "+PayloadPath, err)
	}
	payload, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		return nil, translation.NewInputError("failed to read "+PayloadPath, err)
	}

	tree, err := markup.Parse(payload)
	if err != nil {
		return nil, translation.NewParseError("failed to parse "+PayloadPath, err)
	}

	textMap := placeholder.NewTextMap()
	placeholder.NewCodec(nil).Extract(tree.Root(), textMap)

	report := &Report{
		InputPath: inputPath,
		Members:   len(archive.File),
		Segments:  textMap.Len(),
		Budget:    budget,
	}
	report.Characters = countCharacters(textMap)
	for _, chunk := range translation.Split(textMap, budget) {
		report.ChunkSizes = append(report.ChunkSizes, chunk.Size)
	}

	// The body summary is informational; documents the reader cannot
	// handle still get a chunk plan.
	if doc, summary, err := summarize(data); err == nil {
		report.Body = summary
		for _, item := range doc.Document.Body.Items {
			if len(report.Samples) == maxSamples {
				break
			}
			if stringer, ok := item.(fmt.Stringer); ok {
				if text := strings.TrimSpace(stringer.String()); text != "" {
					report.Samples = append(report.Samples, placeholder.Preview(text))
				}
			}
		}
	}

	return report, nil
}

// countCharacters sums the trimmed runes that would be sent for translation.
func countCharacters(textMap *placeholder.TextMap) int {
	n := 0
	for _, entry := range textMap.Entries() {
		n += utf8.RuneCountInString(strings.TrimSpace(entry.Text))
	}
	return n
}

// Requests returns the number of translation requests the plan needs.
func (r *Report) Requests() int {
	return len(r.ChunkSizes)
}

// LargestChunk returns the size of the biggest planned chunk.
func (r *Report) LargestChunk() int {
	largest := 0
	for _, size := range r.ChunkSizes {
		if size > largest {
			largest = size
		}
	}
	return largest
}
