// Package model defines the records stored in the vault.
//
// The JSON tags use snake_case because these shapes mirror the hosted tables
// one-to-one: a row read from Postgres, a body posted to /api/projects and a
// record decoded by the terminal client all share the same field names.
package model

import "time"

// Size controls how many gallery columns a project card spans.
type Size string

const (
	SizeSmall Size = "small"
	SizeLarge Size = "large"
)

// Project is a portfolio entry shown in the public gallery.
type Project struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Link         string    `json:"link"`
	PreviewImage string    `json:"preview_image"`
	Tags         []string  `json:"tags"`
	CodeSnippet  string    `json:"code_snippet"`
	Size         Size      `json:"size"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ProjectInput is a project without store-assigned fields: the payload for
// insert and full update.
type ProjectInput struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Link         string   `json:"link"`
	PreviewImage string   `json:"preview_image"`
	Tags         []string `json:"tags"`
	CodeSnippet  string   `json:"code_snippet"`
	Size         Size     `json:"size"`
}

// Apply copies the input fields onto p, leaving ID and timestamps alone.
func (in ProjectInput) Apply(p *Project) {
	p.Title = in.Title
	p.Description = in.Description
	p.Link = in.Link
	p.PreviewImage = in.PreviewImage
	p.Tags = in.Tags
	p.CodeSnippet = in.CodeSnippet
	p.Size = in.Size
}

// VisibleTags returns at most n tags for a gallery card.
func (p Project) VisibleTags(n int) []string {
	if len(p.Tags) <= n {
		return p.Tags
	}
	return p.Tags[:n]
}

// SnippetPatch is the body of a snippet-only update.
type SnippetPatch struct {
	CodeSnippet string `json:"code_snippet"`
}
