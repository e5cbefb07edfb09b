// Package metadata resolves video ids, titles and channel names for
// remote tracks, and expands remote playlists.
package metadata

import (
	"regexp"
	"strings"
)

var videoIDPattern = regexp.MustCompile(
	`(?:youtube\.com/(?:[^/]+/.+/|(?:v|e(?:mbed)?)/|.*[?&]v=)|youtu\.be/)([^"&?/\s]{11})`,
)

var bareVideoID = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// ExtractVideoID pulls the 11-character video id out of a URL in any of
// the usual forms (watch, short link, embed). A bare id is accepted as
// is. Returns false when nothing resembling a video id is found.
func ExtractVideoID(input string) (string, bool) {
	input = strings.TrimSpace(input)
	if m := videoIDPattern.FindStringSubmatch(input); m != nil {
		return m[1], true
	}
	if bareVideoID.MatchString(input) {
		return input, true
	}
	return "", false
}

// ExtractPlaylistID pulls the playlist id out of a URL carrying a list
// parameter.
func ExtractPlaylistID(input string) (string, bool) {
	input = strings.TrimSpace(input)
	_, rest, found := strings.Cut(input, "list=")
	if !found {
		return "", false
	}
	if i := strings.IndexAny(rest, "&#"); i >= 0 {
		rest = rest[:i]
	}
	if rest == "" {
		return "", false
	}
	return rest, true
}
