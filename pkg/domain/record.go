package domain

import "strings"

// SourceRecord is a video-derived record that a tutorial is generated from.
// Every field except ID is optional.
type SourceRecord struct {
	ID              string   `json:"id"`
	JobID           string   `json:"jobId,omitempty"`
	Source          string   `json:"source,omitempty"`
	Title           string   `json:"title,omitempty"`
	EditorTitle     string   `json:"editorTitle,omitempty"`
	Author          string   `json:"author,omitempty"`
	SourceURL       string   `json:"sourceUrl,omitempty"`
	Thumbnail       string   `json:"thumbnail,omitempty"`
	AuthorImage     string   `json:"authorImage,omitempty"`
	PublishedAt     string   `json:"publishedAt,omitempty"`
	Summary         string   `json:"summary,omitempty"`
	PracticalSteps  string   `json:"practicalSteps,omitempty"`
	Transcript      string   `json:"transcript,omitempty"`
	Tags            []string `json:"tags,omitempty"`
	DifficultyLevel string   `json:"difficultyLevel,omitempty"`
	DurationSeconds int      `json:"durationSeconds,omitempty"`
	ViewCount       int      `json:"viewCount,omitempty"`
	LikeCount       int      `json:"likeCount,omitempty"`
}

// DisplayTitle prefers the original title over the editor title.
func (r *SourceRecord) DisplayTitle() string {
	if r.Title != "" {
		return r.Title
	}
	return r.EditorTitle
}

// HasContent reports whether the record carries at least one of a title,
// a summary or a transcript.
func (r *SourceRecord) HasContent() bool {
	return strings.TrimSpace(r.DisplayTitle()) != "" ||
		strings.TrimSpace(r.Summary) != "" ||
		strings.TrimSpace(r.Transcript) != ""
}

// RecordPage is one page of a record listing. Offset is empty on the last page.
type RecordPage struct {
	Records []SourceRecord `json:"records"`
	Offset  string         `json:"offset,omitempty"`
}
