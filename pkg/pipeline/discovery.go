package pipeline

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/snak3gh0st/projetustgov/pkg/models"
)

// InferEntityType maps a source filename onto its entity family. The
// combined supporters/amendments export matches "apoiador" first, so it is
// checked before "emenda".
func InferEntityType(filename string) models.EntityType {
	name := strings.ToLower(filename)
	switch {
	case strings.Contains(name, "proposta"):
		return models.EntityPropostas
	case strings.Contains(name, "apoiador"):
		return models.EntityApoiadores
	case strings.Contains(name, "emenda"):
		return models.EntityEmendas
	case strings.Contains(name, "programa"):
		return models.EntityProgramas
	default:
		return ""
	}
}

// LatestDataDir returns the most recent dated (YYYY-MM-DD) subdirectory of
// root, or root itself when no dated subdirectories exist.
func LatestDataDir(root string) (string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return "", errors.Wrapf(err, "failed to read data directory %s", root)
	}

	latest := ""
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		if _, err := time.Parse("2006-01-02", entry.Name()); err != nil {
			continue
		}
		if entry.Name() > latest {
			latest = entry.Name()
		}
	}

	if latest == "" {
		return root, nil
	}
	return filepath.Join(root, latest), nil
}

// ListSourceFiles returns the spreadsheet and delimited-text files of dir
// in sorted order. Processing order matters: accumulated state like the
// program-links map carries across files.
func ListSourceFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list source files in %s", dir)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(entry.Name())) {
		case ".xlsx", ".csv":
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}

	sort.Strings(files)
	return files, nil
}

// ExtractionDateFor derives the extraction date from a dated directory
// name, falling back to now for undated layouts.
func ExtractionDateFor(dir string) time.Time {
	if t, err := time.Parse("2006-01-02", filepath.Base(dir)); err == nil {
		return t.UTC()
	}
	return time.Now().UTC()
}
