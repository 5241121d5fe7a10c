// Package form maps the flat string fields of the admin and notes forms to
// the payloads the services store, and back again for edit mode.
//
// CONTROLLED INPUTS:
// A form holds exactly what the user typed. Nothing is normalized while
// typing; splitting tags and prepending URL schemes happens once, in Input,
// when the form is submitted. A failed submission re-renders the same form
// value, so nothing the user typed is lost.
package form

import (
	"regexp"
	"strings"
)

// SplitTags turns "go, web ,, rust" into ["go" "web" "rust"]: split on
// commas, trim each part, drop the empty ones. Order is preserved.
func SplitTags(s string) []string {
	tags := []string{}
	for _, part := range strings.Split(s, ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// JoinTags is the inverse used when a record is loaded into edit mode.
func JoinTags(tags []string) string {
	return strings.Join(tags, ", ")
}

var schemePattern = regexp.MustCompile(`(?i)^https?://`)

// EnsureScheme prepends "https://" to a URL that has no http(s) scheme.
// Empty input stays empty since link and preview image are optional.
// Protocol-relative "//host" becomes "https://host". A scheme in any case is
// lowercased ("HTTP://x" -> "http://x"); the rest of the URL is kept.
func EnsureScheme(raw string) string {
	u := strings.TrimSpace(raw)
	switch {
	case u == "":
		return ""
	case schemePattern.MatchString(u):
		scheme := schemePattern.FindString(u)
		return strings.ToLower(scheme) + u[len(scheme):]
	case strings.HasPrefix(u, "//"):
		return "https:" + u
	default:
		return "https://" + u
	}
}
