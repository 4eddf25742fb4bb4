package docgen

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"
)

// Builder assembles a Word document from scratch, paragraph by paragraph.
// It covers the small formatting surface the generated documents need:
// alignment, indents, bold runs, and font sizes.
type Builder struct {
	paragraphs []*Paragraph
}

// Paragraph is a single block of runs with optional block formatting.
type Paragraph struct {
	runs            []*Run
	centered        bool
	leftIndent      int
	firstLineIndent int
}

// Run is a span of text with optional character formatting.
type Run struct {
	text string
	bold bool
	size int
}

// NewBuilder returns an empty document builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// AddParagraph appends an empty paragraph and returns it for configuration.
func (b *Builder) AddParagraph() *Paragraph {
	p := &Paragraph{}
	b.paragraphs = append(b.paragraphs, p)
	return p
}

// AddText is shorthand for a paragraph holding one plain run.
func (b *Builder) AddText(text string) *Paragraph {
	p := b.AddParagraph()
	p.AddRun(text)
	return p
}

// Center aligns the paragraph horizontally.
func (p *Paragraph) Center() *Paragraph {
	p.centered = true
	return p
}

// LeftIndent indents the whole paragraph by the given points.
func (p *Paragraph) LeftIndent(points int) *Paragraph {
	p.leftIndent = points
	return p
}

// FirstLineIndent indents only the first line by the given points.
func (p *Paragraph) FirstLineIndent(points int) *Paragraph {
	p.firstLineIndent = points
	return p
}

// AddRun appends a text run to the paragraph.
func (p *Paragraph) AddRun(text string) *Run {
	r := &Run{text: text}
	p.runs = append(p.runs, r)
	return r
}

// Bold marks the run bold.
func (r *Run) Bold() *Run {
	r.bold = true
	return r
}

// Size sets the run's font size in points.
func (r *Run) Size(points int) *Run {
	r.size = points
	return r
}

const contentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types"><Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/><Default Extension="xml" ContentType="application/xml"/><Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/></Types>`

const packageRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"><Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/></Relationships>`

const documentRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships"></Relationships>`

// Bytes serializes the document into a docx archive.
func (b *Builder) Bytes() ([]byte, error) {
	var buf bytes.Buffer
	writer := zip.NewWriter(&buf)

	parts := []struct {
		name string
		data string
	}{
		{"[Content_Types].xml", contentTypesXML},
		{"_rels/.rels", packageRelsXML},
		{"word/_rels/document.xml.rels", documentRelsXML},
		{"word/document.xml", b.documentXML()},
	}
	for _, part := range parts {
		w, err := writer.Create(part.name)
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", part.name, err)
		}
		if _, err := w.Write([]byte(part.data)); err != nil {
			return nil, fmt.Errorf("write %s: %w", part.name, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close archive: %w", err)
	}
	return buf.Bytes(), nil
}

const twipsPerPoint = 20

func (b *Builder) documentXML() string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	sb.WriteString("\n")
	sb.WriteString(`<w:document xmlns:w="` + wmlNamespace + `"><w:body>`)
	for _, p := range b.paragraphs {
		writeParagraphXML(&sb, p)
	}
	sb.WriteString(`<w:sectPr><w:pgSz w:w="11906" w:h="16838"/></w:sectPr>`)
	sb.WriteString(`</w:body></w:document>`)
	return sb.String()
}

func writeParagraphXML(sb *strings.Builder, p *Paragraph) {
	sb.WriteString("<w:p>")
	if p.centered || p.leftIndent > 0 || p.firstLineIndent > 0 {
		sb.WriteString("<w:pPr>")
		if p.centered {
			sb.WriteString(`<w:jc w:val="center"/>`)
		}
		if p.leftIndent > 0 || p.firstLineIndent > 0 {
			sb.WriteString("<w:ind")
			if p.leftIndent > 0 {
				sb.WriteString(` w:left="` + strconv.Itoa(p.leftIndent*twipsPerPoint) + `"`)
			}
			if p.firstLineIndent > 0 {
				sb.WriteString(` w:firstLine="` + strconv.Itoa(p.firstLineIndent*twipsPerPoint) + `"`)
			}
			sb.WriteString("/>")
		}
		sb.WriteString("</w:pPr>")
	}
	for _, r := range p.runs {
		writeRunXML(sb, r)
	}
	sb.WriteString("</w:p>")
}

func writeRunXML(sb *strings.Builder, r *Run) {
	sb.WriteString("<w:r>")
	if r.bold || r.size > 0 {
		sb.WriteString("<w:rPr>")
		if r.bold {
			sb.WriteString("<w:b/>")
		}
		if r.size > 0 {
			half := strconv.Itoa(r.size * 2)
			sb.WriteString(`<w:sz w:val="` + half + `"/><w:szCs w:val="` + half + `"/>`)
		}
		sb.WriteString("</w:rPr>")
	}
	sb.WriteString(`<w:t xml:space="preserve">`)
	sb.WriteString(escapeXML(r.text))
	sb.WriteString("</w:t></w:r>")
}

func escapeXML(text string) string {
	var buf bytes.Buffer
	if err := xml.EscapeText(&buf, []byte(text)); err != nil {
		return text
	}
	return buf.String()
}
