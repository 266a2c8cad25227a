package loader

import "strings"

// defaultSeparators are tried in priority order: paragraph break first,
// falling back to a plain character cut when nothing else matches.
var defaultSeparators = []string{"\n\n", "\n", ". ", " ", ""}

// SplitIntoWindows recursively splits text on the first separator that
// yields pieces no larger than targetSize, overlapping neighboring windows
// by overlap characters so mentions near a boundary stay retrievable from
// both sides. Windows are never empty.
func SplitIntoWindows(text string, targetSize, overlap int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if targetSize < 200 {
		targetSize = 200
	}
	if overlap < 0 || overlap >= targetSize {
		overlap = 0
	}

	pieces := recursiveSplit(text, targetSize, defaultSeparators)
	return mergeWithOverlap(pieces, targetSize, overlap)
}

// recursiveSplit breaks text into pieces no larger than targetSize by
// trying separators in priority order, recursing into any piece still
// too large with the remaining, lower-priority separators.
func recursiveSplit(text string, targetSize int, separators []string) []string {
	if len([]rune(text)) <= targetSize || len(separators) == 0 {
		return []string{text}
	}

	sep := separators[0]
	rest := separators[1:]

	var parts []string
	if sep == "" {
		parts = splitByRuneCount(text, targetSize)
	} else {
		parts = splitKeepingSeparator(text, sep)
	}

	var out []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if len([]rune(p)) > targetSize {
			out = append(out, recursiveSplit(p, targetSize, rest)...)
		} else {
			out = append(out, p)
		}
	}
	return out
}

func splitKeepingSeparator(text, sep string) []string {
	raw := strings.Split(text, sep)
	out := make([]string, 0, len(raw))
	for i, r := range raw {
		if i < len(raw)-1 && sep != " " {
			r = r + sep
		}
		out = append(out, r)
	}
	return out
}

func splitByRuneCount(text string, size int) []string {
	r := []rune(text)
	var out []string
	for start := 0; start < len(r); start += size {
		end := start + size
		if end > len(r) {
			end = len(r)
		}
		out = append(out, string(r[start:end]))
	}
	return out
}

// mergeWithOverlap packs adjacent pieces back up to targetSize and stitches
// overlap characters from the tail of one window onto the head of the next.
func mergeWithOverlap(pieces []string, targetSize, overlap int) []string {
	var windows []string
	var current strings.Builder

	flush := func() {
		w := strings.TrimSpace(current.String())
		if w != "" {
			windows = append(windows, w)
		}
		current.Reset()
	}

	for _, p := range pieces {
		if current.Len() > 0 && len([]rune(current.String()))+len([]rune(p)) > targetSize {
			flush()
		}
		current.WriteString(p)
	}
	flush()

	if overlap <= 0 || len(windows) < 2 {
		return windows
	}

	out := make([]string, len(windows))
	out[0] = windows[0]
	for i := 1; i < len(windows); i++ {
		prev := []rune(windows[i-1])
		tailLen := overlap
		if tailLen > len(prev) {
			tailLen = len(prev)
		}
		tail := string(prev[len(prev)-tailLen:])
		out[i] = strings.TrimSpace(tail + " " + windows[i])
	}
	return out
}
