// package refs parses user-supplied track and playlist references.
//
// Accepted forms, tried in order: the open.spotify.com web URL, the
// spotify: URI scheme, and a bare 22-character alphanumeric ID. Track
// references additionally match spotify.link short links; the captured
// token is not a real track ID and callers should warn when it fails
// downstream.
package refs

import "regexp"

var (
	trackURLPattern    = regexp.MustCompile(`https://open\.spotify\.com/track/([a-zA-Z0-9]+)`)
	trackURIPattern    = regexp.MustCompile(`spotify:track:([a-zA-Z0-9]+)`)
	shortLinkPattern   = regexp.MustCompile(`https://spotify\.link/([a-zA-Z0-9]+)`)
	playlistURLPattern = regexp.MustCompile(`https://open\.spotify\.com/playlist/([a-zA-Z0-9]+)`)
	playlistURIPattern = regexp.MustCompile(`spotify:playlist:([a-zA-Z0-9]+)`)
	bareIDPattern      = regexp.MustCompile(`^[a-zA-Z0-9]{22}$`)
)

// TrackID extracts a track ID from a reference string.
//
// Returns ok=false when no pattern matches; callers treat that as a
// per-item skip, not a fatal error.
func TrackID(ref string) (string, bool) {
	if m := trackURLPattern.FindStringSubmatch(ref); m != nil {
		return m[1], true
	}
	if m := trackURIPattern.FindStringSubmatch(ref); m != nil {
		return m[1], true
	}
	if m := shortLinkPattern.FindStringSubmatch(ref); m != nil {
		// Best-effort token, see package doc.
		return m[1], true
	}
	if bareIDPattern.MatchString(ref) {
		return ref, true
	}
	return "", false
}

// PlaylistID extracts a playlist ID from a reference string.
func PlaylistID(ref string) (string, bool) {
	if m := playlistURLPattern.FindStringSubmatch(ref); m != nil {
		return m[1], true
	}
	if m := playlistURIPattern.FindStringSubmatch(ref); m != nil {
		return m[1], true
	}
	if bareIDPattern.MatchString(ref) {
		return ref, true
	}
	return "", false
}

// IsShortLink reports whether the reference is a spotify.link short link.
//
// Short-link tokens are never resolved to a canonical track ID here, so
// callers should surface a distinct warning when one fails remotely.
func IsShortLink(ref string) bool {
	return shortLinkPattern.MatchString(ref)
}
