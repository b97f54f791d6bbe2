package domain

import (
	"encoding/json"
	"time"
)

// Difficulty is the learner level a tutorial targets.
type Difficulty string

const (
	Beginner     Difficulty = "beginner"
	Intermediate Difficulty = "intermediate"
	Expert       Difficulty = "expert"
)

// Tutorial is an ordered sequence of cards plus metadata.
// Its JSON form is the storage format shared by every store adapter.
type Tutorial struct {
	ID               string     `json:"id" validate:"required,slug"`
	Title            string     `json:"title" validate:"required"`
	Description      string     `json:"description,omitempty"`
	Tool             string     `json:"tool"`
	Tags             []string   `json:"tags"`
	Difficulty       Difficulty `json:"difficulty" validate:"omitempty,oneof=beginner intermediate expert"`
	EstimatedMinutes int        `json:"estimatedMinutes,omitempty" validate:"gte=0"`
	Source           Source     `json:"source"`
	Cards            []Card     `json:"cards" validate:"required,min=1"`
}

// Source attributes a tutorial to the record and video it was generated from.
type Source struct {
	AirtableRecordID string `json:"airtableRecordId,omitempty"`
	SourceURL        string `json:"sourceUrl,omitempty"`
	Author           string `json:"author,omitempty"`
	AuthorImage      string `json:"authorImage,omitempty"`
	ThumbnailImage   string `json:"thumbnailImage,omitempty"`
	PublishedAt      string `json:"publishedAt,omitempty"`
}

// TutorialSummary is the listing projection of a stored tutorial.
type TutorialSummary struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Tool       string     `json:"tool"`
	Difficulty Difficulty `json:"difficulty"`
	CardCount  int        `json:"cardCount"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// Summarize builds the listing projection, stamped with createdAt.
func (t *Tutorial) Summarize(createdAt time.Time) TutorialSummary {
	return TutorialSummary{
		ID:         t.ID,
		Title:      t.Title,
		Tool:       t.Tool,
		Difficulty: t.Difficulty,
		CardCount:  len(t.Cards),
		CreatedAt:  createdAt,
	}
}

// Len returns the number of cards.
func (t *Tutorial) Len() int {
	return len(t.Cards)
}

// QuizCount returns how many quiz cards the tutorial contains.
func (t *Tutorial) QuizCount() int {
	n := 0
	for i := range t.Cards {
		if t.Cards[i].Type == CardQuiz {
			n++
		}
	}
	return n
}

// Clone returns a deep copy made through the JSON storage form.
func (t *Tutorial) Clone() (*Tutorial, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return nil, err
	}
	var out Tutorial
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
