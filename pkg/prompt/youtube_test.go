package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractVideoID(t *testing.T) {
	tests := []struct {
		url    string
		want   string
		wantOK bool
	}{
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"https://youtube.com/watch?feature=share&v=dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"https://youtu.be/dQw4w9WgXcQ?t=10", "dQw4w9WgXcQ", true},
		{"https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"https://www.youtube.com/watch?v=short", "", false},
		{"https://vimeo.com/123456789", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ExtractVideoID(tt.url)
		assert.Equal(t, tt.wantOK, ok, tt.url)
		assert.Equal(t, tt.want, got, tt.url)
	}
}

func TestEmbedURL(t *testing.T) {
	assert.Equal(t, "https://www.youtube.com/embed/dQw4w9WgXcQ", EmbedURL("dQw4w9WgXcQ", ""))
	assert.Equal(t, "https://www.youtube.com/embed/dQw4w9WgXcQ?start=420", EmbedURL("dQw4w9WgXcQ", "7:00"))
	assert.Equal(t, "https://www.youtube.com/embed/dQw4w9WgXcQ", EmbedURL("dQw4w9WgXcQ", "0:00"))
}

func TestThumbnailURL(t *testing.T) {
	assert.Equal(t, "https://img.youtube.com/vi/abc/maxresdefault.jpg", ThumbnailURL("abc"))
}

func TestTimeToSeconds(t *testing.T) {
	assert.Equal(t, 90, TimeToSeconds("1:30"))
	assert.Equal(t, 3723, TimeToSeconds("1:02:03"))
	assert.Equal(t, 0, TimeToSeconds("90"))
	assert.Equal(t, 0, TimeToSeconds("a:b"))
}
