// Package richtext handles the limited inline markup allowed in card text.
//
// Generated text may carry <strong>, <em>, <b>, <i> and <br>. It is stored
// verbatim and passed through one of these functions at every render boundary.
package richtext

import (
	"html"
	"regexp"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"

	"github.com/aretw0/viben/pkg/domain"
)

var (
	inlineOnce   sync.Once
	inlinePolicy *bluemonday.Policy

	boldTag   = regexp.MustCompile(`(?i)</?\s*(strong|b)\s*>`)
	italicTag = regexp.MustCompile(`(?i)</?\s*(em|i)\s*>`)
	breakTag  = regexp.MustCompile(`(?i)<\s*br\s*/?\s*>`)
)

// Policy returns the shared inline-markup policy.
func Policy() *bluemonday.Policy {
	inlineOnce.Do(func() {
		p := bluemonday.NewPolicy()
		p.AllowElements("strong", "em", "b", "i", "br")
		inlinePolicy = p
	})
	return inlinePolicy
}

// Sanitize keeps the allowed inline tags and escapes or drops everything else.
// The result is safe to embed in HTML.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	return Policy().Sanitize(s)
}

// Plain strips all markup and returns unescaped text.
func Plain(s string) string {
	if s == "" {
		return ""
	}
	s = breakTag.ReplaceAllString(s, "\n")
	return html.UnescapeString(bluemonday.StrictPolicy().Sanitize(s))
}

// ToMarkdown rewrites the inline subset as Markdown emphasis and line breaks
// and drops any other markup.
func ToMarkdown(s string) string {
	if s == "" {
		return ""
	}
	s = breakTag.ReplaceAllString(s, "\n")
	s = boldTag.ReplaceAllString(s, "**")
	s = italicTag.ReplaceAllString(s, "_")
	return strings.TrimSpace(html.UnescapeString(bluemonday.StrictPolicy().Sanitize(s)))
}

// SanitizeCard rewrites in place every card field that is rendered as markup.
func SanitizeCard(c *domain.Card) {
	for _, f := range []*string{&c.Body, &c.Body2, &c.Warn, &c.Safe, &c.CorrectFeedback, &c.WrongFeedback} {
		*f = Sanitize(*f)
	}
	for i := range c.Bullets {
		c.Bullets[i] = Sanitize(c.Bullets[i])
	}
	if c.Analogy != nil {
		c.Analogy.Text = Sanitize(c.Analogy.Text)
	}
	if c.Concept != nil {
		c.Concept.Desc = Sanitize(c.Concept.Desc)
	}
	if c.Modalities != nil && c.Modalities.Read != nil {
		c.Modalities.Read.Body = Sanitize(c.Modalities.Read.Body)
	}
}
