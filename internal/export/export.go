// Package export renders a journal and its posts as a plain-text document.
package export

import (
	"bytes"
	"io"
	"strings"
	"text/template"
	"time"

	"journals/internal/models"
)

// TimeLayout is the day.month.year hour:minute format used for every timestamp.
const TimeLayout = "02.01.2006 15:04"

const documentTemplate = `Journal: {{.Title}}
Description: {{.Description}}
Created: {{stamp .CreatedAt}}
Modified: {{stamp .UpdatedAt}}
Author: {{.Author}}

Posts:
{{range $i, $p := .Posts}}{{inc $i}}. {{$p.Text}}
Published: {{stamp $p.CreatedAt}}

{{end}}`

var document = template.Must(template.New("journal").Funcs(template.FuncMap{
	"stamp": func(t time.Time) string { return t.Format(TimeLayout) },
	"inc":   func(i int) int { return i + 1 },
}).Parse(documentTemplate))

type documentData struct {
	Title       string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Author      string
	Posts       []*models.Post
}

// Render writes j followed by posts, numbered from 1 in the order given.
// Callers pass posts oldest first.
func Render(w io.Writer, j *models.Journal, posts []*models.Post) error {
	description := "-"
	if j.Description != nil && strings.TrimSpace(*j.Description) != "" {
		description = *j.Description
	}
	return document.Execute(w, documentData{
		Title:       j.Title,
		Description: description,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
		Author:      j.User.Username,
		Posts:       posts,
	})
}

// Bytes is Render into a buffer.
func Bytes(j *models.Journal, posts []*models.Post) ([]byte, error) {
	var buf bytes.Buffer
	if err := Render(&buf, j, posts); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

var filenameReplacer = strings.NewReplacer(`"`, "", "/", "_", `\`, "_", "\r", "", "\n", "")

// Filename is the attachment name for j's export.
func Filename(j *models.Journal) string {
	return filenameReplacer.Replace(j.Title) + "_export.txt"
}
