// Package document runs the docx translation pipeline: unpack the archive,
// swap the payload's text for identifiers, translate, restore and repack.
package document

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/nerdneilsfield/docx-translator/pkg/markup"
	"github.com/nerdneilsfield/docx-translator/pkg/placeholder"
	"github.com/nerdneilsfield/docx-translator/pkg/translation"
	"go.uber.org/zap"
)

// Options configures a single document run.
type Options struct {
	SourceLang string
	TargetLang string
	Model      string
	Budget     int // resolved chunk budget in characters

	// WorkDir is the extraction workspace. A leftover directory at this path
	// is removed before use. Empty means a fresh temporary directory.
	WorkDir               string
	KeepIntermediateFiles bool
	SaveDebugInfo         bool
	VerifyOutput          bool
}

// Result describes a finished run.
type Result struct {
	InputPath  string
	OutputPath string
	Segments   int
	Characters int // trimmed runes of all segments
	Restored   int
	Leaks      []string
	Stats      translation.Stats
	Duration   time.Duration
	WorkDir    string   // set only when the workspace was kept
	DebugFiles []string // side files written next to the output
}

// DocxTranslator translates word-processing documents one at a time.
type DocxTranslator struct {
	orchestrator *translation.Orchestrator
	logger       *zap.Logger
}

// NewDocxTranslator creates a translator around an orchestrator.
func NewDocxTranslator(orchestrator *translation.Orchestrator, logger *zap.Logger) *DocxTranslator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DocxTranslator{
		orchestrator: orchestrator,
		logger:       logger,
	}
}

// TranslateFile translates inputPath and writes the result to outputPath.
// The output file only appears once the whole document has been translated,
// restored and repacked; on any error nothing is written there.
func (t *DocxTranslator) TranslateFile(ctx context.Context, inputPath, outputPath string, opts Options) (*Result, error) {
	start := time.Now()
	result := &Result{InputPath: inputPath, OutputPath: outputPath}

	data, archive, err := openArchive(inputPath)
	if err != nil {
		return nil, err
	}
	if findMember(archive, PayloadPath) == nil {
		return nil, translation.NewInputError(fmt.Sprintf("%s not found in %s", PayloadPath, inputPath), nil)
	}

	workDir, cleanup, err := t.prepareWorkspace(opts.WorkDir, opts.KeepIntermediateFiles)
	if err != nil {
		return nil, err
	}
	defer cleanup()
	if opts.KeepIntermediateFiles {
		result.WorkDir = workDir
	}

	if err := extractArchive(archive, workDir); err != nil {
		return nil, translation.NewInputError("failed to unpack document", err)
	}

	payloadFile := filepath.Join(workDir, filepath.FromSlash(PayloadPath))
	payload, err := os.ReadFile(payloadFile)
	if err != nil {
		return nil, translation.NewInputError("failed to read "+PayloadPath, err)
	}

	tree, err := markup.Parse(payload)
	if err != nil {
		return nil, translation.NewParseError("failed to parse "+PayloadPath, err)
	}

	codec := placeholder.NewCodec(t.logger)
	textMap := placeholder.NewTextMap()
	codec.Extract(tree.Root(), textMap)
	result.Segments = textMap.Len()
	result.Characters = countCharacters(textMap)

	t.logger.Info("extracted text segments",
		zap.String("input", inputPath),
		zap.Int("segments", textMap.Len()))

	if opts.SaveDebugInfo {
		path, err := writeTextMap(outputPath, sourceMapSuffix, textMap)
		if err != nil {
			t.logger.Warn("failed to save text map", zap.Error(err))
		} else {
			result.DebugFiles = append(result.DebugFiles, path)
		}
	}

	translated, err := t.orchestrator.TranslateAll(ctx, textMap, translation.Request{
		SourceLang: opts.SourceLang,
		TargetLang: opts.TargetLang,
		Model:      opts.Model,
		Budget:     opts.Budget,
	})
	result.Stats = t.orchestrator.Stats()
	if err != nil {
		return nil, err
	}

	if opts.SaveDebugInfo {
		path, err := writeTextMap(outputPath, translatedMapSuffix, translated)
		if err != nil {
			t.logger.Warn("failed to save translated map", zap.Error(err))
		} else {
			result.DebugFiles = append(result.DebugFiles, path)
		}
	}

	result.Restored = codec.Restore(tree.Root(), translated)
	leaks, err := placeholder.FindLeaks(tree, codec.IDs())
	if err != nil {
		return nil, err
	}
	if len(leaks) > 0 {
		t.logger.Warn("identifiers left in translated document",
			zap.Int("count", len(leaks)),
			zap.Strings("ids", leaks))
	}
	result.Leaks = leaks

	restored, err := tree.Bytes()
	if err != nil {
		return nil, err
	}
	// The archive is rebuilt from memory below. The workspace copy only
	// matters when the caller keeps it for inspection.
	if opts.KeepIntermediateFiles {
		if err := os.WriteFile(payloadFile, restored, 0o644); err != nil {
			return nil, fmt.Errorf("failed to write %s: %w", PayloadPath, err)
		}
	}

	var packed bytes.Buffer
	if err := repackArchive(archive, &packed, restored); err != nil {
		return nil, fmt.Errorf("failed to repack document: %w", err)
	}

	if opts.VerifyOutput {
		if err := verifyOutput(data, packed.Bytes()); err != nil {
			return nil, err
		}
	}

	if err := writeFileAtomic(outputPath, packed.Bytes()); err != nil {
		return nil, err
	}

	result.Duration = time.Since(start)
	t.logger.Info("document translated",
		zap.String("output", outputPath),
		zap.Int("segments", result.Segments),
		zap.Int("restored", result.Restored),
		zap.Duration("duration", result.Duration))
	return result, nil
}

// openArchive reads the input document and opens it as a zip archive.
func openArchive(inputPath string) ([]byte, *zip.Reader, error) {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, translation.NewInputError("input document not found: "+inputPath, err)
		}
		return nil, nil, translation.NewInputError("failed to read input document", err)
	}

	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, nil, translation.NewInputError("input is not a docx archive: "+inputPath, err)
	}
	return data, archive, nil
}

// prepareWorkspace returns an empty extraction directory and its cleanup.
func (t *DocxTranslator) prepareWorkspace(dir string, keep bool) (string, func(), error) {
	if dir == "" {
		tempDir, err := os.MkdirTemp("", "docx-translate-*")
		if err != nil {
			return "", nil, fmt.Errorf("failed to create temp directory: %w", err)
		}
		dir = tempDir
	} else {
		if _, err := os.Stat(dir); err == nil {
			t.logger.Warn("removing leftover workspace", zap.String("dir", dir))
			if err := os.RemoveAll(dir); err != nil {
				return "", nil, fmt.Errorf("failed to clear workspace %s: %w", dir, err)
			}
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", nil, fmt.Errorf("failed to create workspace %s: %w", dir, err)
		}
	}

	cleanup := func() {
		if keep {
			t.logger.Info("keeping intermediate files", zap.String("dir", dir))
			return
		}
		if err := os.RemoveAll(dir); err != nil {
			t.logger.Warn("failed to remove workspace", zap.String("dir", dir), zap.Error(err))
		}
	}
	return dir, cleanup, nil
}

// writeFileAtomic writes data to a temporary file beside path and renames it
// into place, so path either holds the full document or is left alone.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write output file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write output file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to set output permissions: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to move output into place: %w", err)
	}
	return nil
}
