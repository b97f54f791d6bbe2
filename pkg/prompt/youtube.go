package prompt

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`youtube\.com/watch\?.*v=([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`youtu\.be/([a-zA-Z0-9_-]{11})`),
	regexp.MustCompile(`youtube\.com/embed/([a-zA-Z0-9_-]{11})`),
}

// ExtractVideoID returns the 11-character id from a watch, short or embed
// YouTube URL, and false when none of the shapes match.
func ExtractVideoID(url string) (string, bool) {
	if url == "" {
		return "", false
	}
	for _, re := range videoIDPatterns {
		if m := re.FindStringSubmatch(url); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// EmbedURL builds the embed URL for a video, starting at start ("M:SS" or
// "H:MM:SS") when it resolves to a positive offset.
func EmbedURL(videoID, start string) string {
	url := "https://www.youtube.com/embed/" + videoID
	if start != "" {
		if secs := TimeToSeconds(start); secs > 0 {
			url += fmt.Sprintf("?start=%d", secs)
		}
	}
	return url
}

// ThumbnailURL returns the max resolution thumbnail for a video.
func ThumbnailURL(videoID string) string {
	return "https://img.youtube.com/vi/" + videoID + "/maxresdefault.jpg"
}

// TimeToSeconds converts "M:SS" or "H:MM:SS" to seconds. Other shapes yield 0.
func TimeToSeconds(t string) int {
	parts := strings.Split(strings.TrimSpace(t), ":")
	nums := make([]int, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0
		}
		nums[i] = n
	}
	switch len(nums) {
	case 2:
		return nums[0]*60 + nums[1]
	case 3:
		return nums[0]*3600 + nums[1]*60 + nums[2]
	default:
		return 0
	}
}
