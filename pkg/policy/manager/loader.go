package manager

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/luigisaetta/finops-with-oci-ai/pkg/policy/ast"
	policyerrors "github.com/luigisaetta/finops-with-oci-ai/pkg/policy/errors"
	"github.com/luigisaetta/finops-with-oci-ai/pkg/policy/parser"
)

// maxPolicyFileSize rejects obviously wrong inputs before parsing.
const maxPolicyFileSize = 1 << 20 // 1 MiB

// Loader loads policy documents from a directory tree. Files must carry a
// .yaml or .yml extension; hidden files and directories are skipped.
type Loader struct {
	dir    string
	logger *slog.Logger
}

// NewLoader creates a loader for the given policies directory.
func NewLoader(dir string, logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{dir: dir, logger: logger.With("component", "policy.loader")}
}

// Load parses and validates every policy file under the directory. A load
// is all-or-nothing: any invalid file fails the whole load, so a reload
// never swaps in a partially broken policy set.
func (l *Loader) Load() ([]*ast.PolicyDocument, error) {
	files, err := l.collectFiles()
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no policy files found in %s", l.dir)
	}

	var docs []*ast.PolicyDocument
	byID := map[string]string{}
	errs := &policyerrors.List{}

	for _, path := range files {
		doc, err := l.loadFile(path)
		if err != nil {
			errs.Add(fmt.Errorf("%s: %w", path, err))
			continue
		}
		if previous, dup := byID[doc.ID]; dup {
			errs.Add(fmt.Errorf("%s: policy id %s already defined in %s", path, doc.ID, previous))
			continue
		}
		byID[doc.ID] = path
		docs = append(docs, doc)
	}

	if err := errs.ToError(); err != nil {
		return nil, err
	}

	l.logger.Info("policies loaded", "dir", l.dir, "count", len(docs))
	return docs, nil
}

// loadFile applies the pre-parse sanity checks and delegates to the
// parser, which validates and compiles the document.
func (l *Loader) loadFile(path string) (*ast.PolicyDocument, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("not a regular file")
	}
	if info.Size() > maxPolicyFileSize {
		return nil, fmt.Errorf("file size %d bytes exceeds maximum %d bytes", info.Size(), maxPolicyFileSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("file contains invalid UTF-8 encoding")
	}

	doc, err := parser.Load(data)
	if err != nil {
		return nil, err
	}
	doc.SourcePath = path
	return doc, nil
}

// collectFiles walks the directory and returns the policy file paths in
// lexical order, so loads are deterministic.
func (l *Loader) collectFiles() ([]string, error) {
	var files []string
	err := filepath.WalkDir(l.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if strings.HasPrefix(d.Name(), ".") && path != l.dir {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".yaml", ".yml":
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", l.dir, err)
	}
	return files, nil
}
