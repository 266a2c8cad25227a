package loader

import (
	"archive/zip"
	"os"
	"path/filepath"
	"testing"
)

// writeTestEPUB assembles the minimal archive LoadEPUB needs: a container
// pointing at an OPF with one spine item and a declared dc:title.
func writeTestEPUB(t *testing.T, dir, name, title, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create epub: %v", err)
	}
	defer f.Close()

	zw := zip.NewWriter(f)

	files := map[string]string{
		"META-INF/container.xml": `<?xml version="1.0"?>
<container xmlns="urn:oasis:names:tc:opendocument:xmlns:container" version="1.0">
  <rootfiles>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`,
		"OEBPS/content.opf": `<?xml version="1.0"?>
<package xmlns="http://www.idpf.org/2007/opf" version="2.0">
  <metadata xmlns:dc="http://purl.org/dc/elements/1.1/">
    <dc:title>` + title + `</dc:title>
  </metadata>
  <manifest>
    <item id="chap1" href="chapter1.xhtml" media-type="application/xhtml+xml"/>
  </manifest>
  <spine>
    <itemref idref="chap1"/>
  </spine>
</package>`,
		"OEBPS/chapter1.xhtml": `<?xml version="1.0"?>
<html xmlns="http://www.w3.org/1999/xhtml"><body><p>` + body + `</p></body></html>`,
	}
	for name, content := range files {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create zip entry %s: %v", name, err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatalf("write zip entry %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return path
}

func TestLoadEPUBReturnsBodyTextAndEmbeddedTitle(t *testing.T) {
	dir := t.TempDir()
	path := writeTestEPUB(t, dir, "book.epub", "Anna Karenina", "Happy families are all alike.")

	text, title, err := LoadEPUB(path)
	if err != nil {
		t.Fatalf("LoadEPUB: %v", err)
	}
	if title != "Anna Karenina" {
		t.Fatalf("expected embedded title, got %q", title)
	}
	if text == "" {
		t.Fatalf("expected extracted body text, got empty string")
	}
}

func TestLoadPrefersEmbeddedEPUBTitleOverFilename(t *testing.T) {
	dir := t.TempDir()
	path := writeTestEPUB(t, dir, "mismatched_filename_stem.epub", "The Real Title", "Some body text.")

	meta, _, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if meta.Title != "The Real Title" {
		t.Fatalf("expected embedded title to win over filename stem, got %q", meta.Title)
	}
}

func TestLoadFallsBackToFilenameStemWhenNoEmbeddedTitle(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "the_sample_book.txt")
	if err := os.WriteFile(path, []byte("Harry walked into the room."), 0o644); err != nil {
		t.Fatalf("write test book: %v", err)
	}

	meta, _, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if meta.Title != "the sample book" {
		t.Fatalf("expected filename-stem fallback, got %q", meta.Title)
	}
}
