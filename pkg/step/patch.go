package step

import (
	"fmt"
	"sort"
	"strings"
)

// Patch replaces Old, found at byte Offset of the original text, with New
type Patch struct {
	Offset int
	Old    string
	New    string
}

// RenamePatch builds the patch that changes the first quoted argument of an
// indexed entity to name, leaving every other byte of the match untouched.
func RenamePatch(rec EntityRecord, name string) Patch {
	replacement := rec.Text
	if open := strings.IndexByte(rec.Text, '\''); open >= 0 {
		replacement = rec.Text[:open] + "'" + EscapeString(name) + "'"
	}
	return Patch{Offset: rec.Offset, Old: rec.Text, New: replacement}
}

// SortPatches orders patches by descending offset, the order ApplyPatches
// uses. Applying right to left keeps every lower offset valid while the
// text around higher offsets changes length.
func SortPatches(patches []Patch) {
	sort.SliceStable(patches, func(i, j int) bool {
		return patches[i].Offset > patches[j].Offset
	})
}

// ApplyPatches applies patches computed against text and returns the result.
// The input slice is not modified. Every patch must still match the text at
// its offset and patches must not overlap.
func ApplyPatches(text string, patches []Patch) (string, error) {
	if len(patches) == 0 {
		return text, nil
	}

	ordered := make([]Patch, len(patches))
	copy(ordered, patches)
	SortPatches(ordered)

	// Walk right to left, keeping the untouched tail after each patch.
	pieces := make([]string, 0, 2*len(ordered)+1)
	limit := len(text)
	for _, p := range ordered {
		end := p.Offset + len(p.Old)
		if p.Offset < 0 || end > len(text) {
			return "", fmt.Errorf("patch at offset %d is outside the document (%d bytes)", p.Offset, len(text))
		}
		if end > limit {
			return "", fmt.Errorf("patch at offset %d overlaps the patch at offset %d", p.Offset, limit)
		}
		if text[p.Offset:end] != p.Old {
			return "", fmt.Errorf("patch at offset %d does not match the document", p.Offset)
		}
		pieces = append(pieces, text[end:limit], p.New)
		limit = p.Offset
	}
	pieces = append(pieces, text[:limit])

	var b strings.Builder
	b.Grow(len(text))
	for i := len(pieces) - 1; i >= 0; i-- {
		b.WriteString(pieces[i])
	}
	return b.String(), nil
}
