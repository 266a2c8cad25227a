package loader

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// opfPackage is the minimal OPF shape needed to recover spine order and the
// book's declared title.
type opfPackage struct {
	Metadata struct {
		Title string `xml:"title"`
	} `xml:"metadata"`
	Manifest struct {
		Items []struct {
			ID   string `xml:"id,attr"`
			Href string `xml:"href,attr"`
		} `xml:"item"`
	} `xml:"manifest"`
	Spine struct {
		ItemRefs []struct {
			IDRef string `xml:"idref,attr"`
		} `xml:"itemref"`
	} `xml:"spine"`
}

// LoadEPUB extracts readable body text from an EPUB's XHTML spine documents
// in reading order, along with the book's embedded dc:title if the OPF
// declares one. EPUB is a zip archive of XHTML content documents referenced
// by an OPF package file located via META-INF/container.xml.
func LoadEPUB(path string) (string, string, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return "", "", fmt.Errorf("open epub: %w", err)
	}
	defer zr.Close()

	files := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		files[f.Name] = f
	}

	opfPath, err := locateOPF(files)
	if err != nil {
		return "", "", err
	}

	pkg, err := readOPF(files, opfPath)
	var order []string
	if err == nil {
		order = spineOrder(pkg, opfPath)
	}
	if len(order) == 0 {
		order = fallbackSpineOrder(files)
	}

	var b strings.Builder
	for i, p := range order {
		f, ok := files[p]
		if !ok {
			continue
		}
		text, err := extractBodyText(f)
		if err != nil {
			continue
		}
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(text)
	}

	title := ""
	if pkg != nil {
		title = strings.TrimSpace(pkg.Metadata.Title)
	}
	return b.String(), title, nil
}

func locateOPF(files map[string]*zip.File) (string, error) {
	container, ok := files["META-INF/container.xml"]
	if !ok {
		return "", fmt.Errorf("missing META-INF/container.xml")
	}
	rc, err := container.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}

	var doc struct {
		Rootfiles struct {
			Rootfile []struct {
				FullPath string `xml:"full-path,attr"`
			} `xml:"rootfile"`
		} `xml:"rootfiles"`
	}
	if err := xml.Unmarshal(raw, &doc); err != nil {
		return "", err
	}
	if len(doc.Rootfiles.Rootfile) == 0 {
		return "", fmt.Errorf("no rootfile declared")
	}
	return doc.Rootfiles.Rootfile[0].FullPath, nil
}

func readOPF(files map[string]*zip.File, opfPath string) (*opfPackage, error) {
	f, ok := files[opfPath]
	if !ok {
		return nil, fmt.Errorf("opf not found: %s", opfPath)
	}
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}

	var pkg opfPackage
	if err := xml.Unmarshal(raw, &pkg); err != nil {
		return nil, err
	}
	return &pkg, nil
}

func spineOrder(pkg *opfPackage, opfPath string) []string {
	hrefByID := make(map[string]string, len(pkg.Manifest.Items))
	for _, item := range pkg.Manifest.Items {
		hrefByID[item.ID] = item.Href
	}

	base := path.Dir(opfPath)
	var order []string
	for _, ref := range pkg.Spine.ItemRefs {
		href, ok := hrefByID[ref.IDRef]
		if !ok {
			continue
		}
		order = append(order, path.Join(base, href))
	}
	return order
}

// fallbackSpineOrder is used when the OPF spine cannot be parsed: every
// (x)html file in the archive, sorted by path, in the absence of a better
// signal for reading order.
func fallbackSpineOrder(files map[string]*zip.File) []string {
	var names []string
	for name := range files {
		lower := strings.ToLower(name)
		if strings.HasSuffix(lower, ".xhtml") || strings.HasSuffix(lower, ".html") || strings.HasSuffix(lower, ".htm") {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

func extractBodyText(f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	doc, err := goquery.NewDocumentFromReader(rc)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(doc.Find("body").Text()), nil
}
