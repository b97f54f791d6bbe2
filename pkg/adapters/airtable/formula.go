package airtable

import (
	"strings"

	"github.com/aretw0/viben/pkg/ports"
)

const youtubeFilter = `{source} = "YouTube"`

// Formula builds the filterByFormula expression for a query.
// Listings are always restricted to YouTube records.
func Formula(q ports.RecordQuery) string {
	filters := []string{youtubeFilter}
	if q.Difficulty != "" {
		filters = append(filters, `{difficulty_level} = `+quote(q.Difficulty))
	}
	if q.Tag != "" {
		filters = append(filters, `FIND(`+quote(q.Tag)+`, ARRAYJOIN({ai_editor_tags}, ","))`)
	}
	if q.Search != "" {
		s := `LOWER(` + quote(q.Search) + `)`
		filters = append(filters, `OR(FIND(`+s+`, LOWER({title})), FIND(`+s+`, LOWER({author})), FIND(`+s+`, LOWER({ai_editor_title})))`)
	}
	if len(filters) == 1 {
		return filters[0]
	}
	return "AND(" + strings.Join(filters, ", ") + ")"
}

var formulaEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func quote(s string) string {
	return `"` + formulaEscaper.Replace(s) + `"`
}
