package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// LoadPDF extracts page content from a PDF using pdfcpu and concatenates it
// in page order, along with the document info dictionary's /Title if set.
func LoadPDF(path string) (string, string, error) {
	conf := model.NewDefaultConfiguration()

	if _, err := api.ReadContextFile(path); err != nil {
		return "", "", fmt.Errorf("read pdf context: %w", err)
	}

	outDir, err := os.MkdirTemp("", "storymind-pdf-*")
	if err != nil {
		return "", "", err
	}
	defer os.RemoveAll(outDir)

	if err := api.ExtractContentFile(path, outDir, nil, conf); err != nil {
		return "", "", fmt.Errorf("extract pdf content: %w", err)
	}

	entries, err := os.ReadDir(outDir)
	if err != nil {
		return "", "", err
	}

	type page struct {
		num  int
		text string
	}
	var pages []page
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		num := extractPageNumber(e.Name())
		content, err := os.ReadFile(filepath.Join(outDir, e.Name()))
		if err != nil {
			continue
		}
		pages = append(pages, page{num: num, text: string(content)})
	}

	sort.Slice(pages, func(i, j int) bool { return pages[i].num < pages[j].num })

	var b strings.Builder
	for i, p := range pages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(p.text)
	}
	return b.String(), embeddedTitle(path, conf), nil
}

// embeddedTitle reads the document info dictionary's /Title via pdfcpu's
// info API. A missing or unreadable title is not an error here; the caller
// falls back to the filename stem.
func embeddedTitle(path string, conf *model.Configuration) string {
	f, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer f.Close()

	info, err := api.PDFInfo(f, path, nil, false, conf)
	if err != nil || info == nil {
		return ""
	}
	return strings.TrimSpace(info.Title)
}

func extractPageNumber(filename string) int {
	var num int
	if _, err := fmt.Sscanf(filename, "Content_page_%d", &num); err == nil {
		return num
	}
	digits := strings.TrimFunc(filename, func(r rune) bool { return r < '0' || r > '9' })
	if n, err := strconv.Atoi(digits); err == nil {
		return n
	}
	return 0
}
