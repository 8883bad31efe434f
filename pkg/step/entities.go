package step

import (
	"regexp"
	"strconv"
	"strings"
)

// EntityRecord is one named ADVANCED_FACE declaration found in STEP text.
// Offset and Text are only meaningful against the Document they were
// indexed from.
type EntityRecord struct {
	EntityID int    `json:"entity_id"`
	Name     string `json:"name"`
	Offset   int    `json:"byte_offset"`
	Text     string `json:"raw_match_text"`
}

// HasName reports whether the entity carries a real name.
// Empty strings and the literal NONE (any case) mean "unnamed".
func (r EntityRecord) HasName() bool {
	return r.Name != "" && !strings.EqualFold(r.Name, "NONE")
}

// advancedFaceRegex matches `#12 = ADVANCED_FACE ( 'name'` up to and including
// the closing quote of the first argument. STEP escapes a quote inside a
// string by doubling it.
var advancedFaceRegex = regexp.MustCompile(`(?i)#(\d+)\s*=\s*ADVANCED_FACE\s*\(\s*'((?:[^']|'')*)'`)

// IndexEntities returns every named ADVANCED_FACE entity in file order
func IndexEntities(text string) []EntityRecord {
	matches := advancedFaceRegex.FindAllStringSubmatchIndex(text, -1)
	records := make([]EntityRecord, 0, len(matches))

	for _, m := range matches {
		id, err := strconv.Atoi(text[m[2]:m[3]])
		if err != nil {
			// Entity ids beyond int range are not worth indexing
			continue
		}
		records = append(records, EntityRecord{
			EntityID: id,
			Name:     UnescapeString(text[m[4]:m[5]]),
			Offset:   m[0],
			Text:     text[m[0]:m[1]],
		})
	}

	return records
}

// EscapeString encodes a value for use inside a quoted STEP string
func EscapeString(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

// UnescapeString decodes the body of a quoted STEP string
func UnescapeString(s string) string {
	return strings.ReplaceAll(s, "''", "'")
}
