// Package web embeds the page templates and static assets into the binary.
package web

import "embed"

// FS holds templates/*.html and static/*. The handler package parses the
// templates from it and the server serves static/ under /static/.
//
//go:embed templates/*.html static/*.css static/*.js
var FS embed.FS
