package authoring

import (
	"regexp"
	"strings"
)

var (
	youtubePattern = regexp.MustCompile(`(?:https?://)?(?:www\.)?(?:youtube\.com/(?:[^/\n\s]+/\S+/|(?:v|e(?:mbed)?)/|\S*?[?&]v=)|youtu\.be/)([a-zA-Z0-9_-]{11})`)
	vimeoPattern   = regexp.MustCompile(`(?:https?://)?(?:www\.)?vimeo\.com/(?:video/)?(\d+)`)
)

const (
	youtubeEmbedPrefix = "https://www.youtube.com/embed/"
	vimeoEmbedPrefix   = "https://player.vimeo.com/video/"
)

// NormalizeVideoURL rewrites a YouTube or Vimeo link into its embeddable form.
// Unrecognised input is returned unchanged with ok set to false.
func NormalizeVideoURL(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}
	if strings.Contains(raw, "youtube.com/embed/") || strings.Contains(raw, "player.vimeo.com/video/") {
		return raw, true
	}

	if m := youtubePattern.FindStringSubmatch(raw); m != nil {
		return youtubeEmbedPrefix + m[1], true
	}
	if m := vimeoPattern.FindStringSubmatch(raw); m != nil {
		return vimeoEmbedPrefix + m[1], true
	}

	return raw, false
}
