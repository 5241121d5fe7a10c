package form

import (
	"github.com/sakif/project-vault/internal/model"
)

// ProjectForm is the admin page's project form.
// EditingID is empty in create mode and holds the record id in edit mode.
type ProjectForm struct {
	EditingID    string
	Title        string
	Description  string
	Link         string
	PreviewImage string
	Tags         string
	CodeSnippet  string
	Size         string
}

// NewProjectForm returns the empty create-mode form.
func NewProjectForm() ProjectForm {
	return ProjectForm{Size: string(model.SizeSmall)}
}

// Editing reports whether the form targets an existing record.
func (f ProjectForm) Editing() bool {
	return f.EditingID != ""
}

// Input converts the form into the insert/update payload.
func (f ProjectForm) Input() model.ProjectInput {
	size := model.Size(f.Size)
	if size == "" {
		size = model.SizeSmall
	}
	return model.ProjectInput{
		Title:        f.Title,
		Description:  f.Description,
		Link:         EnsureScheme(f.Link),
		PreviewImage: EnsureScheme(f.PreviewImage),
		Tags:         SplitTags(f.Tags),
		CodeSnippet:  f.CodeSnippet,
		Size:         size,
	}
}

// FromProject loads p into edit mode.
func (f *ProjectForm) FromProject(p *model.Project) {
	size := p.Size
	if size == "" {
		size = model.SizeSmall
	}
	*f = ProjectForm{
		EditingID:    p.ID,
		Title:        p.Title,
		Description:  p.Description,
		Link:         p.Link,
		PreviewImage: p.PreviewImage,
		Tags:         JoinTags(p.Tags),
		CodeSnippet:  p.CodeSnippet,
		Size:         string(size),
	}
}

func (f *ProjectForm) Reset() {
	*f = NewProjectForm()
}

// Forget resets the form when the record it is editing was deleted.
func (f *ProjectForm) Forget(id string) {
	if f.EditingID != "" && f.EditingID == id {
		f.Reset()
	}
}

// NoteForm is the notes page form. Category defaults to prompt.
type NoteForm struct {
	EditingID string
	Title     string
	Content   string
	Category  string
}

func NewNoteForm() NoteForm {
	return NoteForm{Category: string(model.CategoryPrompt)}
}

func (f NoteForm) Editing() bool {
	return f.EditingID != ""
}

func (f NoteForm) Input() model.NoteInput {
	category := model.Category(f.Category)
	if category == "" {
		category = model.CategoryPrompt
	}
	return model.NoteInput{
		Title:    f.Title,
		Content:  f.Content,
		Category: category,
	}
}

func (f *NoteForm) FromNote(n *model.Note) {
	*f = NoteForm{
		EditingID: n.ID,
		Title:     n.Title,
		Content:   n.Content,
		Category:  string(n.Category),
	}
}

func (f *NoteForm) Reset() {
	*f = NewNoteForm()
}

// Forget resets the form when the note being edited is deleted, so a later
// submit cannot target a record that no longer exists.
func (f *NoteForm) Forget(id string) {
	if f.EditingID != "" && f.EditingID == id {
		f.Reset()
	}
}
