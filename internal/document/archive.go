package document

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// PayloadPath is the archive member holding the translatable markup.
const PayloadPath = "word/document.xml"

// extractArchive unpacks every member of src into destDir.
func extractArchive(src *zip.Reader, destDir string) error {
	for _, file := range src.File {
		if err := extractFile(file, destDir); err != nil {
			return fmt.Errorf("failed to extract %s: %w", file.Name, err)
		}
	}
	return nil
}

// extractFile extracts a single file from ZIP
func extractFile(file *zip.File, destDir string) error {
	path := filepath.Join(destDir, file.Name)

	// Check for ZipSlip vulnerability
	root := filepath.Clean(destDir) + string(os.PathSeparator)
	if !strings.HasPrefix(filepath.Clean(path)+string(os.PathSeparator), root) {
		return fmt.Errorf("invalid file path: %s", file.Name)
	}

	if file.FileInfo().IsDir() {
		return os.MkdirAll(path, 0o755)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	reader, err := file.Open()
	if err != nil {
		return err
	}
	defer reader.Close()

	writer, err := os.Create(path)
	if err != nil {
		return err
	}
	defer writer.Close()

	_, err = io.Copy(writer, reader)
	return err
}

// findMember returns the archive member with the given name.
func findMember(src *zip.Reader, name string) *zip.File {
	for _, file := range src.File {
		if file.Name == name {
			return file
		}
	}
	return nil
}

// repackArchive writes a copy of src to output in the original member order.
// The payload member is replaced with payload; every other member is copied
// raw, so its compressed bytes and header stay untouched.
func repackArchive(src *zip.Reader, output io.Writer, payload []byte) error {
	zipWriter := zip.NewWriter(output)

	for _, file := range src.File {
		if file.Name != PayloadPath {
			if err := zipWriter.Copy(file); err != nil {
				return fmt.Errorf("failed to copy %s: %w", file.Name, err)
			}
			continue
		}

		header := file.FileHeader
		header.CRC32 = 0
		header.CompressedSize64 = 0
		header.UncompressedSize64 = 0
		header.CompressedSize = 0
		header.UncompressedSize = 0
		header.Extra = nil
		writer, err := zipWriter.CreateHeader(&header)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", file.Name, err)
		}
		if _, err := writer.Write(payload); err != nil {
			return fmt.Errorf("failed to write %s: %w", file.Name, err)
		}
	}

	return zipWriter.Close()
}
