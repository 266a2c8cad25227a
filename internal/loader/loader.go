package loader

import (
	"fmt"
	"path/filepath"
	"strings"

	pkgerrors "github.com/steve0joo/storymind/internal/pkg/errors"
)

const (
	DefaultWindowSize    = 1000
	DefaultWindowOverlap = 200
)

// Metadata describes a loaded Source Document ahead of chunking.
type Metadata struct {
	Title  string
	Format string
}

// Load dispatches to the format-specific extractor based on file extension,
// then windows the recovered text with the recursive splitter.
func Load(path string) (Metadata, []string, error) {
	ext := strings.ToLower(filepath.Ext(path))

	var (
		text          string
		embeddedTitle string
		err           error
	)

	switch ext {
	case ".txt":
		text, err = LoadText(path)
	case ".pdf":
		text, embeddedTitle, err = LoadPDF(path)
	case ".epub":
		text, embeddedTitle, err = LoadEPUB(path)
	default:
		return Metadata{}, nil, fmt.Errorf("%s: %w", ext, pkgerrors.ErrUnsupportedFormat)
	}
	if err != nil {
		return Metadata{}, nil, fmt.Errorf("%s: %w", path, pkgerrors.ErrDocumentLoadFailed)
	}

	windows := SplitIntoWindows(text, DefaultWindowSize, DefaultWindowOverlap)
	if len(windows) == 0 {
		return Metadata{}, nil, fmt.Errorf("no extractable text: %w", pkgerrors.ErrDocumentLoadFailed)
	}

	title := strings.TrimSpace(embeddedTitle)
	if title == "" {
		title = TitleFromFilename(path)
	}

	meta := Metadata{
		Title:  title,
		Format: strings.TrimPrefix(ext, "."),
	}
	return meta, windows, nil
}

// TitleFromFilename derives a display title from a file's stem when no
// embedded document metadata supplies one.
func TitleFromFilename(path string) string {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	stem = strings.ReplaceAll(stem, "_", " ")
	stem = strings.ReplaceAll(stem, "-", " ")
	return strings.TrimSpace(stem)
}
