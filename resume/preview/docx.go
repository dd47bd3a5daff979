package preview

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

const (
	wmlNamespace = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	relNamespace = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"

	headingStyleID = "Heading1"
	documentPart   = "word/document.xml"
)

var errNoDocumentPart = errors.New("docx: word/document.xml not found")

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>
</Types>`

const packageRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

const documentRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>
</Relationships>`

const stylesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:styles xmlns:w="` + wmlNamespace + `">
<w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/><w:rPr><w:sz w:val="21"/></w:rPr></w:style>
<w:style w:type="paragraph" w:styleId="` + headingStyleID + `"><w:name w:val="heading 1"/><w:basedOn w:val="Normal"/><w:pPr><w:pBdr><w:bottom w:val="single" w:sz="6" w:space="1" w:color="000000"/></w:pBdr></w:pPr></w:style>
</w:styles>`

// RenderDOCX serializes p as a WordprocessingML package. Section headings use
// the Heading1 paragraph style and appear in preview order.
func RenderDOCX(p Preview) ([]byte, error) {
	documentXML := renderDocumentXML(p)
	if err := validateDocumentXMLStructure(documentXML); err != nil {
		return nil, err
	}

	var output bytes.Buffer
	writer := zip.NewWriter(&output)
	parts := []struct {
		name    string
		content string
	}{
		{"[Content_Types].xml", contentTypesXML},
		{"_rels/.rels", packageRelsXML},
		{documentPart, documentXML},
		{"word/_rels/document.xml.rels", documentRelsXML},
		{"word/styles.xml", stylesXML},
	}
	for _, part := range parts {
		if err := writeZipFile(writer, part.name, []byte(part.content)); err != nil {
			return nil, err
		}
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}
	return output.Bytes(), nil
}

func renderDocumentXML(p Preview) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	b.WriteString(`<w:document xmlns:w="` + wmlNamespace + `" xmlns:r="` + relNamespace + `"><w:body>`)

	writeParagraph(&b, "", "center", StyleMap["name"], p.Header.Name)
	if p.Header.Title != "" {
		writeParagraph(&b, "", "center", StyleMap["title"], p.Header.Title)
	}
	if p.Header.Contact != "" {
		writeParagraph(&b, "", "center", RunStyle{}, p.Header.Contact)
	}
	if p.Header.Links != "" {
		writeParagraph(&b, "", "center", RunStyle{}, p.Header.Links)
	}

	for _, s := range p.Sections {
		writeParagraph(&b, headingStyleID, "", StyleMap["sectionHeading"], s.Heading)
		if s.Text != "" {
			writeParagraph(&b, "", "", RunStyle{}, s.Text)
		}
		for _, e := range s.Entries {
			writeEntryHead(&b, e)
			writeParagraph(&b, "", "", StyleMap["meta"], e.Subtitle)
			if e.Body != "" {
				writeParagraph(&b, "", "", RunStyle{}, e.Body)
			}
			if e.Detail != "" {
				writeParagraph(&b, "", "", RunStyle{}, e.Detail)
			}
		}
		for _, item := range s.Items {
			if s.Kind == SectionLetter {
				writeParagraph(&b, "", "", RunStyle{}, item)
				continue
			}
			writeParagraph(&b, "", "", RunStyle{}, "• "+item)
		}
	}

	b.WriteString(`<w:sectPr><w:pgSz w:w="12240" w:h="15840"/><w:pgMar w:top="1080" w:right="1080" w:bottom="1080" w:left="1080" w:header="720" w:footer="720" w:gutter="0"/></w:sectPr>`)
	b.WriteString(`</w:body></w:document>`)
	return b.String()
}

// writeEntryHead puts the entry title and its date range on one line,
// separated by a right-aligned tab.
func writeEntryHead(b *strings.Builder, e Entry) {
	b.WriteString(`<w:p><w:pPr><w:tabs><w:tab w:val="right" w:pos="10080"/></w:tabs></w:pPr>`)
	writeRun(b, StyleMap["roleLine"], e.Title)
	b.WriteString(`<w:r><w:tab/></w:r>`)
	writeRun(b, RunStyle{}, e.Range)
	b.WriteString(`</w:p>`)
}

func writeParagraph(b *strings.Builder, styleID, align string, style RunStyle, text string) {
	b.WriteString(`<w:p>`)
	if styleID != "" || align != "" {
		b.WriteString(`<w:pPr>`)
		if styleID != "" {
			b.WriteString(`<w:pStyle w:val="` + styleID + `"/>`)
		}
		if align != "" {
			b.WriteString(`<w:jc w:val="` + align + `"/>`)
		}
		b.WriteString(`</w:pPr>`)
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if i > 0 {
			b.WriteString(`<w:r><w:br/></w:r>`)
		}
		writeRun(b, style, line)
	}
	b.WriteString(`</w:p>`)
}

func writeRun(b *strings.Builder, style RunStyle, text string) {
	b.WriteString(`<w:r>`)
	if style != (RunStyle{}) {
		b.WriteString(`<w:rPr>`)
		if style.Bold {
			b.WriteString(`<w:b/>`)
		}
		if style.Italic {
			b.WriteString(`<w:i/>`)
		}
		if style.Color != "" {
			b.WriteString(`<w:color w:val="` + style.Color + `"/>`)
		}
		if style.Size > 0 {
			b.WriteString(`<w:sz w:val="` + strconv.Itoa(style.Size) + `"/>`)
		}
		b.WriteString(`</w:rPr>`)
	}
	b.WriteString(`<w:t xml:space="preserve">`)
	_ = xml.EscapeText(b, []byte(text))
	b.WriteString(`</w:t></w:r>`)
}

// Sections reads back the section kinds of a DOCX produced by RenderDOCX,
// in document order.
func Sections(docx []byte) ([]SectionKind, error) {
	byHeading := make(map[string]SectionKind, len(Headings))
	for kind, heading := range Headings {
		byHeading[heading] = kind
	}
	paragraphs, err := readParagraphs(docx)
	if err != nil {
		return nil, err
	}
	var out []SectionKind
	for _, p := range paragraphs {
		if p.style != headingStyleID {
			continue
		}
		kind, ok := byHeading[p.text]
		if !ok {
			return nil, fmt.Errorf("docx: unknown section heading %q", p.text)
		}
		out = append(out, kind)
	}
	return out, nil
}

// DOCXText returns the text of every paragraph in a DOCX, in order.
func DOCXText(docx []byte) ([]string, error) {
	paragraphs, err := readParagraphs(docx)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(paragraphs))
	for i, p := range paragraphs {
		out[i] = p.text
	}
	return out, nil
}

type paragraph struct {
	style string
	text  string
}

func readParagraphs(docx []byte) ([]paragraph, error) {
	reader, err := zip.NewReader(bytes.NewReader(docx), int64(len(docx)))
	if err != nil {
		return nil, fmt.Errorf("docx: %w", err)
	}
	var content []byte
	for _, file := range reader.File {
		if normalizeZipName(file.Name) == documentPart {
			content, err = readZipFile(file)
			if err != nil {
				return nil, err
			}
			break
		}
	}
	if content == nil {
		return nil, errNoDocumentPart
	}

	decoder := xml.NewDecoder(bytes.NewReader(content))
	var (
		out    []paragraph
		cur    *paragraph
		inText bool
		inTabs bool
		text   strings.Builder
	)
	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("docx: parse document.xml: %w", err)
		}
		switch t := token.(type) {
		case xml.StartElement:
			switch {
			case isWmlElement(t.Name, "p"):
				cur = &paragraph{}
				text.Reset()
			case isWmlElement(t.Name, "pStyle") && cur != nil:
				cur.style = attrValue(t, "val")
			case isWmlElement(t.Name, "t"):
				inText = true
			case isWmlElement(t.Name, "br") && cur != nil:
				text.WriteString("\n")
			case isWmlElement(t.Name, "tabs"):
				inTabs = true
			case isWmlElement(t.Name, "tab") && cur != nil && !inTabs:
				text.WriteString("\t")
			}
		case xml.CharData:
			if inText && cur != nil {
				text.Write(t)
			}
		case xml.EndElement:
			switch {
			case isWmlElement(t.Name, "t"):
				inText = false
			case isWmlElement(t.Name, "tabs"):
				inTabs = false
			case isWmlElement(t.Name, "p") && cur != nil:
				cur.text = text.String()
				out = append(out, *cur)
				cur = nil
			}
		}
	}
	return out, nil
}

func attrValue(el xml.StartElement, local string) string {
	for _, attr := range el.Attr {
		if attr.Name.Local == local {
			return attr.Value
		}
	}
	return ""
}

func readZipFile(file *zip.File) ([]byte, error) {
	reader, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer reader.Close()
	return io.ReadAll(reader)
}

func writeZipFile(writer *zip.Writer, name string, content []byte) error {
	header := &zip.FileHeader{
		Name:     name,
		Method:   zip.Deflate,
		Modified: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	w, err := writer.CreateHeader(header)
	if err != nil {
		return err
	}
	_, err = w.Write(content)
	return err
}

func normalizeZipName(name string) string {
	return strings.TrimPrefix(strings.ReplaceAll(name, "\\", "/"), "/")
}

// validateDocumentXMLStructure rejects nested paragraphs and run properties
// that follow run text.
func validateDocumentXMLStructure(xmlText string) error {
	decoder := xml.NewDecoder(strings.NewReader(xmlText))
	var stack []xml.Name
	type runState struct {
		seenText bool
	}
	var runs []runState

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("document.xml parse failed: %w", err)
		}
		switch t := token.(type) {
		case xml.StartElement:
			stack = append(stack, t.Name)
			if isWmlElement(t.Name, "p") {
				for i := len(stack) - 2; i >= 0; i-- {
					if isWmlElement(stack[i], "p") {
						return fmt.Errorf("document.xml has nested <w:p>")
					}
				}
			}
			if isWmlElement(t.Name, "r") {
				runs = append(runs, runState{})
			}
			if isWmlElement(t.Name, "t") && len(runs) > 0 {
				runs[len(runs)-1].seenText = true
			}
			if isWmlElement(t.Name, "rPr") && len(runs) > 0 && runs[len(runs)-1].seenText {
				return fmt.Errorf("document.xml has <w:rPr> after <w:t> in a run")
			}
		case xml.EndElement:
			if isWmlElement(t.Name, "r") && len(runs) > 0 {
				runs = runs[:len(runs)-1]
			}
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		}
	}
	return nil
}

func isWmlElement(name xml.Name, local string) bool {
	return name.Local == local && name.Space == wmlNamespace
}
