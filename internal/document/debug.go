package document

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nerdneilsfield/docx-translator/pkg/placeholder"
)

const (
	sourceMapSuffix     = ".textmap.json"
	translatedMapSuffix = ".translated.json"
)

// debugPath places a side file next to the output document.
func debugPath(outputPath, suffix string) string {
	stem := strings.TrimSuffix(outputPath, filepath.Ext(outputPath))
	return stem + suffix
}

// writeTextMap saves m as a plain identifier to text JSON object.
func writeTextMap(outputPath, suffix string, m *placeholder.TextMap) (string, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode text map: %w", err)
	}

	path := debugPath(outputPath, suffix)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
