package domain

// Modality names one of the alternate presentations a card can offer.
type Modality string

const (
	ModalityRead  Modality = "read"
	ModalityWatch Modality = "watch"
	ModalityTry   Modality = "try"
	ModalityAsk   Modality = "ask"
)

// Modalities holds the optional presentations of a concept or action card.
// A nil entry means the modality is not offered.
type Modalities struct {
	Read  *ReadModality  `json:"read,omitempty"`
	Watch *WatchModality `json:"watch,omitempty"`
	Try   *TryModality   `json:"try,omitempty"`
	Ask   *AskModality   `json:"ask,omitempty"`
}

type ReadModality struct {
	Body       string      `json:"body"`
	CodeBlocks []CodeBlock `json:"codeBlocks,omitempty"`
	Callouts   []Callout   `json:"callouts,omitempty"`
}

type CodeBlock struct {
	Code    string `json:"code"`
	Caption string `json:"caption,omitempty"`
}

// CalloutKind is one of warn, safe, tip or info.
type CalloutKind string

const (
	CalloutWarn CalloutKind = "warn"
	CalloutSafe CalloutKind = "safe"
	CalloutTip  CalloutKind = "tip"
	CalloutInfo CalloutKind = "info"
)

type Callout struct {
	Type CalloutKind `json:"type"`
	Text string      `json:"text"`
}

type WatchModality struct {
	VideoURL     string       `json:"videoUrl"`
	ThumbnailURL string       `json:"thumbnailUrl,omitempty"`
	StartTime    string       `json:"startTime,omitempty"`
	EndTime      string       `json:"endTime,omitempty"`
	Source       *WatchSource `json:"source,omitempty"`
}

type WatchSource struct {
	Author        string `json:"author"`
	AuthorInitial string `json:"authorInitial,omitempty"`
	Description   string `json:"description,omitempty"`
}

type TryModality struct {
	Prompt   string       `json:"prompt"`
	Commands []TryCommand `json:"commands"`
}

type TryCommand struct {
	Input  string `json:"input"`
	Output string `json:"output"`
	Hint   string `json:"hint,omitempty"`
}

type AskModality struct {
	InitialMessages     []ChatMessage `json:"initialMessages"`
	SupportsImageUpload bool          `json:"supportsImageUpload,omitempty"`
}

// Offered returns the modalities present, in read, watch, try, ask order.
func (m *Modalities) Offered() []Modality {
	if m == nil {
		return nil
	}
	var out []Modality
	if m.Read != nil {
		out = append(out, ModalityRead)
	}
	if m.Watch != nil {
		out = append(out, ModalityWatch)
	}
	if m.Try != nil {
		out = append(out, ModalityTry)
	}
	if m.Ask != nil {
		out = append(out, ModalityAsk)
	}
	return out
}

// Has reports whether the given modality is offered.
func (m *Modalities) Has(mod Modality) bool {
	for _, o := range m.Offered() {
		if o == mod {
			return true
		}
	}
	return false
}
