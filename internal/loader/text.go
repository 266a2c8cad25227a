package loader

import "os"

// LoadText reads a plain UTF-8 text file verbatim.
func LoadText(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
