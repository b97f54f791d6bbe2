package richtext

import (
	"testing"

	"github.com/aretw0/viben/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	out := Sanitize(`Press <strong>Cmd+I</strong><script>alert(1)</script> <a href="javascript:x()">here</a>`)
	assert.Contains(t, out, "<strong>Cmd+I</strong>")
	assert.NotContains(t, out, "script")
	assert.NotContains(t, out, "<a")
	assert.Contains(t, out, "here")

	assert.Equal(t, "<em>ok</em>", Sanitize("<em>ok</em>"))
	assert.Equal(t, "", Sanitize(""))
}

func TestSanitize_DropsAttributes(t *testing.T) {
	out := Sanitize(`<strong onclick="steal()">x</strong>`)
	assert.Equal(t, "<strong>x</strong>", out)
}

func TestToMarkdown(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Use <strong>Cmd+I</strong> to <em>open</em><br>chat", "Use **Cmd+I** to _open_\nchat"},
		{"<b>bold</b> and <i>it</i>", "**bold** and _it_"},
		{"line<br/>break<BR />again", "line\nbreak\nagain"},
		{`<div class="x">a &amp; b</div>`, "a & b"},
		{"no markup", "no markup"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ToMarkdown(tt.in), tt.in)
	}
}

func TestPlain(t *testing.T) {
	assert.Equal(t, "Use Cmd+I\nnow", Plain("Use <strong>Cmd+I</strong><br>now"))
	assert.Equal(t, `"quoted" & fine`, Plain(`"quoted" &amp; fine`))
}

func TestSanitizeCard(t *testing.T) {
	c := &domain.Card{
		Type:    domain.CardConcept,
		Body:    `<strong>keep</strong><div>drop</div>`,
		Bullets: []string{`<i onclick="x()">one</i>`},
		Analogy: &domain.Analogy{Icon: "🍳", Text: `<span>chef</span>`},
		Modalities: &domain.Modalities{
			Read: &domain.ReadModality{Body: `<em>read</em><iframe></iframe>`},
		},
	}
	SanitizeCard(c)
	assert.Equal(t, "<strong>keep</strong>drop", c.Body)
	assert.Equal(t, []string{"<i>one</i>"}, c.Bullets)
	assert.Equal(t, "chef", c.Analogy.Text)
	assert.Equal(t, "<em>read</em>", c.Modalities.Read.Body)
}
