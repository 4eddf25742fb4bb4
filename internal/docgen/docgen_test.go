package docgen

import (
	"archive/zip"
	"bytes"
	"io"
	"strings"
	"testing"
)

func wrapDocx(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, data := range map[string]string{
		"[Content_Types].xml": contentTypesXML,
		"_rels/.rels":         packageRelsXML,
		"word/document.xml":   documentXML,
	} {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
		if _, err := w.Write([]byte(data)); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func documentXMLOf(t *testing.T, docx []byte) string {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(docx), int64(len(docx)))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open document.xml: %v", err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			t.Fatalf("read document.xml: %v", err)
		}
		return string(data)
	}
	t.Fatal("document.xml missing from archive")
	return ""
}

const templateXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="` + wmlNamespace + `"><w:body>
<w:p><w:r><w:t>Time: {{time}}</w:t></w:r></w:p>
<w:p><w:r><w:t>Chair: {{ch</w:t></w:r><w:r><w:t>air}}</w:t></w:r></w:p>
<w:p><w:r><w:t>{{#conclusions}}</w:t></w:r></w:p>
<w:p><w:r><w:t>- {{item}}</w:t></w:r></w:p>
<w:p><w:r><w:t>{{/conclusions}}</w:t></w:r></w:p>
</w:body></w:document>`

func TestRenderTemplateFieldsAndLoops(t *testing.T) {
	template := wrapDocx(t, templateXML)

	out, err := RenderTemplate(template,
		map[string]string{"time": "10:00", "chair": "Director Lin"},
		map[string][]map[string]string{"conclusions": {
			{"item": "Approve budget"},
			{"item": "Schedule follow-up"},
		}})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	doc := documentXMLOf(t, out)
	for _, want := range []string{"Time: 10:00", "Chair: Director Lin", "- Approve budget", "- Schedule follow-up"} {
		if !strings.Contains(doc, want) {
			t.Fatalf("rendered document missing %q:\n%s", want, doc)
		}
	}
	if strings.Contains(doc, "{{") {
		t.Fatalf("tokens left in output:\n%s", doc)
	}
	if strings.Contains(doc, "{{#conclusions}}") || strings.Contains(doc, "{{/conclusions}}") {
		t.Fatal("loop markers left in output")
	}
}

const tableTemplateXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<w:document xmlns:w="` + wmlNamespace + `"><w:body>
<w:tbl>
<w:tr><w:tc><w:p><w:r><w:t>{{#agenda_table}}</w:t></w:r></w:p></w:tc></w:tr>
<w:tr><w:tc><w:p><w:r><w:t>{{col1}}</w:t></w:r></w:p></w:tc><w:tc><w:p><w:r><w:t>{{col2}}</w:t></w:r></w:p></w:tc></w:tr>
<w:tr><w:tc><w:p><w:r><w:t>{{/agenda_table}}</w:t></w:r></w:p></w:tc></w:tr>
</w:tbl>
</w:body></w:document>`

func TestRenderTemplateExpandsTableRows(t *testing.T) {
	template := wrapDocx(t, tableTemplateXML)

	out, err := RenderTemplate(template, nil,
		map[string][]map[string]string{"agenda_table": {
			{"col1": "09:00", "col2": "Opening"},
			{"col1": "09:30", "col2": "Review"},
		}})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	doc := documentXMLOf(t, out)
	if got := strings.Count(doc, "<w:tr>"); got != 2 {
		t.Fatalf("expected 2 rows after expansion, got %d:\n%s", got, doc)
	}
	for _, want := range []string{"09:00", "Opening", "09:30", "Review"} {
		if !strings.Contains(doc, want) {
			t.Fatalf("rendered table missing %q", want)
		}
	}
}

func TestRenderTemplateFailsOnUnresolvedToken(t *testing.T) {
	template := wrapDocx(t, templateXML)
	_, err := RenderTemplate(template,
		map[string]string{"time": "10:00"},
		map[string][]map[string]string{"conclusions": {}})
	if err == nil {
		t.Fatal("expected error for unresolved token")
	}
	if !strings.Contains(err.Error(), "{{chair}}") {
		t.Fatalf("error should name the token: %v", err)
	}
}

func TestRenderTemplateFailsOnMissingLoop(t *testing.T) {
	template := wrapDocx(t, templateXML)
	_, err := RenderTemplate(template,
		map[string]string{"time": "10:00", "chair": "x"},
		map[string][]map[string]string{"action_items": {{"item": "a"}}})
	if err == nil {
		t.Fatal("expected error when loop block is absent")
	}
}

func TestBuilderProducesReadableDocument(t *testing.T) {
	doc := NewBuilder()
	doc.AddParagraph().Center().AddRun("Briefing").Bold().Size(18)
	doc.AddText("plain line")
	doc.AddText("indented").LeftIndent(12)
	p := doc.AddParagraph().FirstLineIndent(24)
	p.AddRun("lead ").Bold()
	p.AddRun("trail")

	data, err := doc.Bytes()
	if err != nil {
		t.Fatalf("bytes: %v", err)
	}

	xmlText := documentXMLOf(t, data)
	for _, want := range []string{
		`<w:jc w:val="center"/>`,
		`<w:sz w:val="36"/>`,
		`<w:b/>`,
		`w:left="240"`,
		`w:firstLine="480"`,
		">Briefing</w:t>",
		">plain line</w:t>",
	} {
		if !strings.Contains(xmlText, want) {
			t.Fatalf("document missing %q:\n%s", want, xmlText)
		}
	}
}

func TestBuilderEscapesText(t *testing.T) {
	doc := NewBuilder()
	doc.AddText(`a < b & "c"`)
	data, err := doc.Bytes()
	if err != nil {
		t.Fatalf("bytes: %v", err)
	}
	xmlText := documentXMLOf(t, data)
	if !strings.Contains(xmlText, "a &lt; b &amp;") {
		t.Fatalf("text not escaped:\n%s", xmlText)
	}
}
