package preview

import (
	"bytes"
	"embed"
	"html/template"
	"io"
)

//go:embed templates/preview.html.tmpl
var templateFS embed.FS

var htmlTemplate = template.Must(template.ParseFS(templateFS, "templates/preview.html.tmpl"))

type htmlColors struct {
	Body    string
	Name    string
	Heading string
}

type htmlView struct {
	Preview
	Style htmlColors
}

// RenderHTML writes p as a standalone HTML page. Each section element carries
// a data-section attribute naming its kind.
func RenderHTML(w io.Writer, p Preview) error {
	view := htmlView{
		Preview: p,
		Style: htmlColors{
			Body:    BodyColor,
			Name:    NameColor,
			Heading: HeadingColor,
		},
	}
	return htmlTemplate.ExecuteTemplate(w, "preview.html.tmpl", view)
}

// HTML renders p to a byte slice.
func HTML(p Preview) ([]byte, error) {
	var buf bytes.Buffer
	if err := RenderHTML(&buf, p); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
