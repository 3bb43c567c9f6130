package placeholder

import (
	"fmt"

	"github.com/dlclark/regexp2"
	"github.com/nerdneilsfield/docx-translator/pkg/markup"
)

// idPattern matches a truncated UUID that is not part of a longer hex run.
var idPattern = regexp2.MustCompile(`(?<![0-9a-f-])[0-9a-f]{8}-[0-9a-f]{3}(?![0-9a-f])`, regexp2.None)

// FindLeaks scans a restored tree for identifiers issued by ids that are
// still present in any text or tail. Each leaked identifier is reported once,
// in document order.
func FindLeaks(tree *markup.Tree, ids *IDGenerator) ([]string, error) {
	seen := make(map[string]bool)
	var leaks []string

	scan := func(s string) error {
		m, err := idPattern.FindStringMatch(s)
		for m != nil && err == nil {
			id := m.String()
			if ids.Issued(id) && !seen[id] {
				seen[id] = true
				leaks = append(leaks, id)
			}
			m, err = idPattern.FindNextMatch(m)
		}
		if err != nil {
			return fmt.Errorf("identifier scan failed: %w", err)
		}
		return nil
	}

	err := tree.Walk(func(n *markup.Node) error {
		if err := scan(n.Text()); err != nil {
			return err
		}
		return scan(n.Tail())
	})
	if err != nil {
		return nil, err
	}
	return leaks, nil
}
