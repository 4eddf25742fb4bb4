package extract

import (
	"archive/zip"
	"bytes"
	"strings"
	"testing"
)

func buildDocx(t *testing.T, documentXML string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create entry: %v", err)
	}
	if _, err := w.Write([]byte(documentXML)); err != nil {
		t.Fatalf("write entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

const docxWithTable = `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>
<w:p><w:r><w:t>Kickoff notes</w:t></w:r></w:p>
<w:tbl><w:tr>
<w:tc><w:p><w:r><w:t>09:00</w:t></w:r></w:p></w:tc>
<w:tc><w:p><w:r><w:t>Opening</w:t></w:r></w:p></w:tc>
</w:tr></w:tbl>
<w:p><w:r><w:t>Closing </w:t></w:r><w:r><w:t>remarks</w:t></w:r></w:p>
</w:body></w:document>`

func TestDocxTextParagraphsAndTables(t *testing.T) {
	text, err := DocxText(buildDocx(t, docxWithTable))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	lines := strings.Split(text, "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), text)
	}
	if lines[0] != "Kickoff notes" {
		t.Fatalf("unexpected first line: %q", lines[0])
	}
	if lines[1] != "09:00 | Opening" {
		t.Fatalf("table row not joined with pipes: %q", lines[1])
	}
	if lines[2] != "Closing remarks" {
		t.Fatalf("split runs not merged: %q", lines[2])
	}
}

func TestDocxTextMultiParagraphCell(t *testing.T) {
	doc := `<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>
<w:tbl><w:tr>
<w:tc><w:p><w:r><w:t>first line</w:t></w:r></w:p><w:p><w:r><w:t>second line</w:t></w:r></w:p></w:tc>
<w:tc><w:p><w:r><w:t>Remark</w:t></w:r></w:p></w:tc>
</w:tr></w:tbl>
</w:body></w:document>`

	text, err := DocxText(buildDocx(t, doc))
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if text != "first line\nsecond line | Remark" {
		t.Fatalf("cell paragraphs not newline-joined: %q", text)
	}
}

func TestDocxTextRejectsNonArchive(t *testing.T) {
	if _, err := DocxText([]byte("plain bytes")); err == nil {
		t.Fatal("expected error for non-zip payload")
	}
}

func TestNormalizeMIME(t *testing.T) {
	if got := NormalizeMIME("audio/x-m4a", "recording.m4a", nil); got != "audio/mp4" {
		t.Fatalf("m4a not mapped: %q", got)
	}
	if got := NormalizeMIME("audio/mpeg; charset=binary", "a.mp3", nil); got != "audio/mpeg" {
		t.Fatalf("parameters not stripped: %q", got)
	}

	docx := buildDocx(t, `<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"/>`)
	if got := NormalizeMIME("application/zip", "report.bin", docx); got != mimeDOCX {
		t.Fatalf("zip-wrapped docx not sniffed: %q", got)
	}
	if got := NormalizeMIME("application/octet-stream", "report.pdf", nil); got != "application/pdf" {
		t.Fatalf("extension fallback failed: %q", got)
	}
}

func TestBuildWrapsFilesWithDelimiters(t *testing.T) {
	files := []File{
		{Name: "agenda.txt", MIME: "text/plain", Data: []byte("agenda body")},
		{Name: "notes.docx", MIME: mimeDOCX, Data: buildDocx(t, docxWithTable)},
	}

	content, err := Build(files, Options{})
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	if len(content.Manifest) != 2 || content.Manifest[0] != "agenda.txt" {
		t.Fatalf("unexpected manifest: %v", content.Manifest)
	}
	// Two files, each wrapped: start, payload, end.
	if len(content.Fragments) != 6 {
		t.Fatalf("expected 6 fragments, got %d", len(content.Fragments))
	}
	if !strings.Contains(content.Fragments[0].Text, "=== File start: agenda.txt ===") {
		t.Fatalf("missing start delimiter: %q", content.Fragments[0].Text)
	}
	if content.Fragments[1].Kind != FragmentBinary {
		t.Fatal("plain text file should pass through as binary payload")
	}
	if content.Fragments[4].Kind != FragmentText || !strings.Contains(content.Fragments[4].Text, "Kickoff notes") {
		t.Fatal("docx should be extracted to inline text")
	}
	if !strings.Contains(content.Fragments[5].Text, "=== File end: notes.docx ===") {
		t.Fatalf("missing end delimiter: %q", content.Fragments[5].Text)
	}
}

func TestBuildAbortsOnUnreadableDocx(t *testing.T) {
	files := []File{
		{Name: "ok.txt", MIME: "text/plain", Data: []byte("fine")},
		{Name: "broken.docx", MIME: mimeDOCX, Data: []byte("not a zip")},
	}
	_, err := Build(files, Options{})
	if err == nil {
		t.Fatal("expected error for unreadable docx")
	}
	if !strings.Contains(err.Error(), "broken.docx") {
		t.Fatalf("error should name the file: %v", err)
	}
}
