package model

import "time"

// Category separates saved AI prompts from plain notes.
type Category string

const (
	CategoryPrompt Category = "prompt"
	CategoryNote   Category = "note"
)

// Categories lists the categories in the order the notes form offers them.
var Categories = []Category{CategoryPrompt, CategoryNote}

// Note is a free-form text entry in the private notes vault.
type Note struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Category  Category  `json:"category"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NoteInput is the insert/update payload for a note.
type NoteInput struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Category Category `json:"category"`
}

func (in NoteInput) Apply(n *Note) {
	n.Title = in.Title
	n.Content = in.Content
	n.Category = in.Category
}
