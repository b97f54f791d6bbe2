package prompt

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/aretw0/viben/pkg/domain"
)

const (
	// DefaultTranscriptBudget is the transcript length, in characters, kept in the prompt.
	DefaultTranscriptBudget = 8000

	// TruncationMarker is appended to a transcript cut at the budget.
	TruncationMarker = "\n\n[TRANSCRIPT TRUNCATED]"

	closingInstruction = `Generate a tutorial card sequence from this content. Use the YouTube embed URL for "watch" modalities. Return only the JSON object.`
)

// Builder maps source records to user prompts.
type Builder struct {
	// TranscriptBudget caps the transcript length; zero means DefaultTranscriptBudget.
	TranscriptBudget int
}

// BuildUserPrompt builds the user prompt with the default budget.
func BuildUserPrompt(rec *domain.SourceRecord) (string, error) {
	return Builder{}.Build(rec)
}

// Build renders the record as markdown sections. Absent optional fields are
// omitted. A record without a title, summary or transcript is rejected with
// a shape error naming the record.
func (b Builder) Build(rec *domain.SourceRecord) (string, error) {
	if rec == nil || !rec.HasContent() {
		return "", domain.NewShapeError("record", "needs at least one of title, summary or transcript")
	}

	budget := b.TranscriptBudget
	if budget <= 0 {
		budget = DefaultTranscriptBudget
	}

	var lines []string
	add := func(format string, args ...any) {
		lines = append(lines, fmt.Sprintf(format, args...))
	}

	videoID, hasVideo := ExtractVideoID(rec.SourceURL)

	add("## Source Record")
	add("- **Airtable Record ID:** %s", rec.ID)
	add("- **Title:** %s", orDefault(rec.DisplayTitle(), "Unknown"))
	add("- **Author:** %s", orDefault(rec.Author, "Unknown"))
	add("- **Source URL:** %s", orDefault(rec.SourceURL, "N/A"))
	thumb := rec.Thumbnail
	if hasVideo {
		add("- **YouTube Embed URL:** %s", EmbedURL(videoID, ""))
		thumb = ThumbnailURL(videoID)
	}
	if thumb != "" {
		add("- **Thumbnail:** %s", thumb)
	}
	if rec.AuthorImage != "" {
		add("- **Author Image:** %s", rec.AuthorImage)
	}
	if rec.PublishedAt != "" {
		add("- **Published:** %s", rec.PublishedAt)
	}
	if rec.DifficultyLevel != "" {
		add("- **Difficulty:** %s", rec.DifficultyLevel)
	}
	if len(rec.Tags) > 0 {
		add("- **Tags:** %s", strings.Join(rec.Tags, ", "))
	}
	if rec.DurationSeconds > 0 {
		add("- **Video Duration:** ~%d minutes", int(math.Round(float64(rec.DurationSeconds)/60)))
	}

	if rec.Summary != "" {
		add("\n## AI Summary\n%s", rec.Summary)
	}
	if rec.PracticalSteps != "" {
		add("\n## Practical Steps (pre-generated)\n%s", rec.PracticalSteps)
	}
	if rec.Transcript != "" {
		transcript, _ := TruncateTranscript(rec.Transcript, budget)
		add("\n## Transcript\n%s", transcript)
	}

	add("\n%s", closingInstruction)
	return strings.Join(lines, "\n"), nil
}

// TruncateTranscript keeps the first limit characters (runes) of s and
// appends TruncationMarker. It reports whether the transcript was cut.
func TruncateTranscript(s string, limit int) (string, bool) {
	if utf8.RuneCountInString(s) <= limit {
		return s, false
	}
	n := 0
	for i := range s {
		if n == limit {
			return s[:i] + TruncationMarker, true
		}
		n++
	}
	return s, false
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
