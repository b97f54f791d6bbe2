package domain

// CardType discriminates the variants of a Card.
type CardType string

const (
	CardIntro       CardType = "intro"
	CardConcept     CardType = "concept"
	CardAction      CardType = "action"
	CardQuiz        CardType = "quiz"
	CardChoice      CardType = "choice"
	CardMilestone   CardType = "milestone"
	CardCelebration CardType = "celebration"
)

// CardTypes lists every recognized variant in declaration order.
var CardTypes = []CardType{
	CardIntro,
	CardConcept,
	CardAction,
	CardQuiz,
	CardChoice,
	CardMilestone,
	CardCelebration,
}

// Valid reports whether t is one of the recognized card variants.
func (t CardType) Valid() bool {
	for _, known := range CardTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Card is one step of a tutorial.
// Text fields such as Body may carry the limited inline markup subset
// (<strong>, <em>, <br>) and must be sanitized before being rendered as markup.
type Card struct {
	Type       CardType    `json:"type"`
	Emoji      string      `json:"emoji,omitempty"`
	Title      string      `json:"title,omitempty"`
	Body       string      `json:"body,omitempty"`
	Body2      string      `json:"body2,omitempty"`
	CTA        string      `json:"cta,omitempty"`
	Modalities *Modalities `json:"modalities,omitempty"`

	// concept
	Diagram *Diagram    `json:"diagram,omitempty"`
	Analogy *Analogy    `json:"analogy,omitempty"`
	Bullets []string    `json:"bullets,omitempty"`
	Warn    string      `json:"warn,omitempty"`
	Safe    string      `json:"safe,omitempty"`
	Concept *ConceptBox `json:"concept,omitempty"`

	// action
	Code         string         `json:"code,omitempty"`
	CodeLabel    string         `json:"codeLabel,omitempty"`
	CodeCaption  string         `json:"codeCaption,omitempty"`
	Link         *Link          `json:"link,omitempty"`
	HelpItems    []HelpItem     `json:"helpItems,omitempty"`
	Troubleshoot []Troubleshoot `json:"troubleshoot,omitempty"`

	// quiz
	Question        string       `json:"question,omitempty"`
	Options         []QuizOption `json:"options,omitempty"`
	CorrectFeedback string       `json:"correctFeedback,omitempty"`
	WrongFeedback   string       `json:"wrongFeedback,omitempty"`

	// choice
	Choices []Choice `json:"choices,omitempty"`
	Store   string   `json:"store,omitempty"`

	// celebration
	Stats bool `json:"stats,omitempty"`
}

// Diagram is an ordered chain of node labels with optional highlighted positions.
type Diagram struct {
	Nodes     []string `json:"nodes"`
	Highlight []int    `json:"highlight,omitempty"`
	Caption   string   `json:"caption,omitempty"`
}

// Highlighted reports whether the node at index i is highlighted.
func (d *Diagram) Highlighted(i int) bool {
	for _, h := range d.Highlight {
		if h == i {
			return true
		}
	}
	return false
}

type Analogy struct {
	Icon string `json:"icon"`
	Text string `json:"text"`
}

type ConceptBox struct {
	Label string `json:"label"`
	Title string `json:"title"`
	Desc  string `json:"desc"`
}

type Link struct {
	URL  string `json:"url"`
	Text string `json:"text"`
}

// HelpItem is a question/answer pair shown under an action card.
type HelpItem struct {
	Q string `json:"q"`
	A string `json:"a"`
}

type Troubleshoot struct {
	Label string `json:"label"`
	Error string `json:"error,omitempty"`
	Fix   string `json:"fix"`
}

type QuizOption struct {
	Text    string `json:"text"`
	Correct bool   `json:"correct"`
}

// Choice is one selectable path of a choice card. Tag is the value recorded
// under the card's Store key.
type Choice struct {
	Icon  string `json:"icon,omitempty"`
	Label string `json:"label"`
	Desc  string `json:"desc,omitempty"`
	Tag   string `json:"tag"`
}

// CorrectOption returns the index of the single correct option, or -1 when
// the quiz has zero or several correct options.
func (c *Card) CorrectOption() int {
	idx := -1
	for i, opt := range c.Options {
		if !opt.Correct {
			continue
		}
		if idx >= 0 {
			return -1
		}
		idx = i
	}
	return idx
}

// IsGate reports whether the card blocks linear advance until answered.
func (c *Card) IsGate() bool {
	return c.Type == CardQuiz
}
