package airtable

import (
	"fmt"

	"github.com/aretw0/viben/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

type listResponse struct {
	Records []record `json:"records"`
	Offset  string   `json:"offset,omitempty"`
}

type record struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

// fields mirrors the table columns.
type fields struct {
	JobID           string   `mapstructure:"job_id"`
	Source          string   `mapstructure:"source"`
	SourceURL       string   `mapstructure:"source_url"`
	Author          string   `mapstructure:"author"`
	Title           string   `mapstructure:"title"`
	ProfileImageURL string   `mapstructure:"profile_image_url"`
	ThumbnailImage  string   `mapstructure:"thumbnail_image"`
	RawContent      string   `mapstructure:"raw_content"`
	PublishedAt     string   `mapstructure:"published_at"`
	Summary         string   `mapstructure:"ai_editor_summary"`
	Tags            []string `mapstructure:"ai_editor_tags"`
	EditorTitle     string   `mapstructure:"ai_editor_title"`
	PracticalSteps  string   `mapstructure:"ai_editor_practical_steps"`
	DifficultyLevel string   `mapstructure:"difficulty_level"`
	DurationSeconds float64  `mapstructure:"video_duration_s"`
	ViewCount       int      `mapstructure:"view_count"`
	LikeCount       int      `mapstructure:"like_count"`
}

func (r record) toDomain() (*domain.SourceRecord, error) {
	var f fields
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &f,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(r.Fields); err != nil {
		return nil, fmt.Errorf("record %s: %w", r.ID, err)
	}
	return &domain.SourceRecord{
		ID:              r.ID,
		JobID:           f.JobID,
		Source:          f.Source,
		Title:           f.Title,
		EditorTitle:     f.EditorTitle,
		Author:          f.Author,
		SourceURL:       f.SourceURL,
		Thumbnail:       f.ThumbnailImage,
		AuthorImage:     f.ProfileImageURL,
		PublishedAt:     f.PublishedAt,
		Summary:         f.Summary,
		PracticalSteps:  f.PracticalSteps,
		Transcript:      f.RawContent,
		Tags:            f.Tags,
		DifficultyLevel: f.DifficultyLevel,
		DurationSeconds: int(f.DurationSeconds + 0.5),
		ViewCount:       f.ViewCount,
		LikeCount:       f.LikeCount,
	}, nil
}
