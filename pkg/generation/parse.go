package generation

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	"github.com/aretw0/viben/pkg/domain"
	"github.com/aretw0/viben/pkg/prompt"
)

var (
	openingFence = regexp.MustCompile("^```(?:[jJ][sS][oO][nN])?[ \t]*\r?\n?")
	closingFence = regexp.MustCompile("\r?\n?```\\s*$")
)

// StripFences removes a surrounding fenced-code block (``` or ```json) if present.
func StripFences(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = openingFence.ReplaceAllString(s, "")
	s = closingFence.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// Parse strips fences, decodes the tutorial and validates it.
// Malformed JSON fails with a *domain.ParseError; well-formed JSON with the
// wrong shape fails with an error matching domain.ErrShape.
func Parse(text string, opts ...domain.ValidateOption) (*domain.Tutorial, error) {
	body := StripFences(text)
	if body == "" {
		return nil, &domain.ParseError{Err: errors.New("empty response")}
	}

	var t domain.Tutorial
	if err := json.Unmarshal([]byte(body), &t); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			field := typeErr.Field
			if field == "" {
				field = "tutorial"
			}
			return nil, domain.NewShapeError(field, "expected "+typeErr.Type.String()+", got "+typeErr.Value)
		}
		return nil, &domain.ParseError{Err: err}
	}

	if err := t.Validate(opts...); err != nil {
		return nil, err
	}
	return &t, nil
}

// Backfill stamps the record id on the tutorial and fills empty source
// attribution fields from the record. Cards are never touched.
func Backfill(t *domain.Tutorial, rec *domain.SourceRecord) {
	if t == nil || rec == nil {
		return
	}
	src := &t.Source
	src.AirtableRecordID = rec.ID
	fill(&src.SourceURL, rec.SourceURL)
	fill(&src.Author, rec.Author)
	fill(&src.AuthorImage, rec.AuthorImage)
	fill(&src.PublishedAt, rec.PublishedAt)

	thumb := rec.Thumbnail
	if id, ok := prompt.ExtractVideoID(rec.SourceURL); ok {
		thumb = prompt.ThumbnailURL(id)
	}
	fill(&src.ThumbnailImage, thumb)
}

func fill(dst *string, v string) {
	if *dst == "" {
		*dst = v
	}
}
