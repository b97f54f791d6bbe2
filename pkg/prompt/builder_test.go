package prompt

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/aretw0/viben/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullRecord() *domain.SourceRecord {
	return &domain.SourceRecord{
		ID:              "recABC123",
		Title:           "Cursor Agent Mode in 10 minutes",
		Author:          "Jane Dev",
		SourceURL:       "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42",
		Thumbnail:       "https://example.com/raw.jpg",
		AuthorImage:     "https://example.com/jane.png",
		PublishedAt:     "2025-01-02T03:04:05Z",
		Summary:         "How to use agent mode.",
		PracticalSteps:  "1. Open Cursor\n2. Press Cmd+I",
		Transcript:      "hello world",
		Tags:            []string{"cursor", "agents"},
		DifficultyLevel: "beginner",
		DurationSeconds: 630,
	}
}

func TestBuild_FullRecord(t *testing.T) {
	out, err := BuildUserPrompt(fullRecord())
	require.NoError(t, err)

	want := strings.Join([]string{
		"## Source Record",
		"- **Airtable Record ID:** recABC123",
		"- **Title:** Cursor Agent Mode in 10 minutes",
		"- **Author:** Jane Dev",
		"- **Source URL:** https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42",
		"- **YouTube Embed URL:** https://www.youtube.com/embed/dQw4w9WgXcQ",
		"- **Thumbnail:** https://img.youtube.com/vi/dQw4w9WgXcQ/maxresdefault.jpg",
		"- **Author Image:** https://example.com/jane.png",
		"- **Published:** 2025-01-02T03:04:05Z",
		"- **Difficulty:** beginner",
		"- **Tags:** cursor, agents",
		"- **Video Duration:** ~11 minutes",
		"\n## AI Summary\nHow to use agent mode.",
		"\n## Practical Steps (pre-generated)\n1. Open Cursor\n2. Press Cmd+I",
		"\n## Transcript\nhello world",
		"\n" + closingInstruction,
	}, "\n")
	assert.Equal(t, want, out)
}

func TestBuild_IsDeterministic(t *testing.T) {
	a, err := BuildUserPrompt(fullRecord())
	require.NoError(t, err)
	b, err := BuildUserPrompt(fullRecord())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestBuild_OmitsAbsentFields(t *testing.T) {
	out, err := BuildUserPrompt(&domain.SourceRecord{ID: "rec1", Summary: "Only a summary"})
	require.NoError(t, err)

	assert.Contains(t, out, "- **Title:** Unknown")
	assert.Contains(t, out, "- **Author:** Unknown")
	assert.Contains(t, out, "- **Source URL:** N/A")
	assert.Contains(t, out, "## AI Summary\nOnly a summary")
	for _, absent := range []string{"Embed URL", "Thumbnail", "Author Image", "Published", "Difficulty", "Tags", "Duration", "## Transcript", "## Practical Steps"} {
		assert.NotContains(t, out, absent)
	}
}

func TestBuild_EditorTitleFallback(t *testing.T) {
	out, err := BuildUserPrompt(&domain.SourceRecord{ID: "rec1", EditorTitle: "Editor title"})
	require.NoError(t, err)
	assert.Contains(t, out, "- **Title:** Editor title")
}

func TestBuild_RawThumbnailWhenNoVideoID(t *testing.T) {
	rec := fullRecord()
	rec.SourceURL = "https://vimeo.com/12345"

	out, err := BuildUserPrompt(rec)
	require.NoError(t, err)
	assert.NotContains(t, out, "YouTube Embed URL")
	assert.Contains(t, out, "- **Thumbnail:** https://example.com/raw.jpg")
}

func TestBuild_RejectsEmptyRecord(t *testing.T) {
	_, err := BuildUserPrompt(&domain.SourceRecord{ID: "rec1", Author: "x", Tags: []string{"a"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrShape)

	_, err = BuildUserPrompt(nil)
	assert.ErrorIs(t, err, domain.ErrShape)
}

func TestBuild_TruncatesLongTranscript(t *testing.T) {
	transcript := strings.Repeat("abcdefghij", 1000)
	rec := &domain.SourceRecord{ID: "rec1", Transcript: transcript}

	out, err := BuildUserPrompt(rec)
	require.NoError(t, err)

	section := "## Transcript\n" + transcript[:8000] + TruncationMarker + "\n"
	assert.Contains(t, out, section)
	assert.NotContains(t, out, transcript[:8001])
}

func TestBuild_CustomBudget(t *testing.T) {
	rec := &domain.SourceRecord{ID: "rec1", Transcript: strings.Repeat("x", 50)}
	out, err := Builder{TranscriptBudget: 10}.Build(rec)
	require.NoError(t, err)
	assert.Contains(t, out, "## Transcript\nxxxxxxxxxx"+TruncationMarker)
}

func TestTruncateTranscript(t *testing.T) {
	short, cut := TruncateTranscript("short", 8000)
	assert.False(t, cut)
	assert.Equal(t, "short", short)

	exact := strings.Repeat("a", 8000)
	out, cut := TruncateTranscript(exact, 8000)
	assert.False(t, cut)
	assert.Equal(t, exact, out)
}

func TestTruncateTranscript_CountsRunes(t *testing.T) {
	// 7999 ASCII characters then a 3-byte rune that still fits the budget.
	s := strings.Repeat("a", 7999) + "€" + strings.Repeat("b", 100)

	out, cut := TruncateTranscript(s, 8000)
	require.True(t, cut)

	body := strings.TrimSuffix(out, TruncationMarker)
	assert.Equal(t, strings.Repeat("a", 7999)+"€", body)
	assert.True(t, utf8.ValidString(out))
}

func TestTruncateTranscript_MultiByteOverBudget(t *testing.T) {
	s := strings.Repeat("é", 10000)

	out, cut := TruncateTranscript(s, DefaultTranscriptBudget)
	require.True(t, cut)
	assert.Equal(t, strings.Repeat("é", 8000)+TruncationMarker, out)
	assert.Equal(t, 8000, utf8.RuneCountInString(strings.TrimSuffix(out, TruncationMarker)))
}

func TestTruncateTranscript_MultiByteUnderBudget(t *testing.T) {
	// 10000 bytes but only 5000 characters.
	s := strings.Repeat("é", 5000)

	out, cut := TruncateTranscript(s, DefaultTranscriptBudget)
	assert.False(t, cut)
	assert.Equal(t, s, out)
	assert.NotContains(t, out, TruncationMarker)
}
