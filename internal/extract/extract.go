package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
)

const (
	mimePDF  = "application/pdf"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// FragmentKind discriminates fragment variants.
type FragmentKind int

const (
	// FragmentText is inline text the model reads directly.
	FragmentText FragmentKind = iota
	// FragmentBinary is a raw payload the model interprets natively.
	FragmentBinary
)

// Fragment is one ordered piece of model input: either inline text or a
// raw payload tagged with its media type.
type Fragment struct {
	Kind FragmentKind
	Text string
	MIME string
	Data []byte
}

// TextFragment builds a text fragment.
func TextFragment(text string) Fragment {
	return Fragment{Kind: FragmentText, Text: text}
}

// BinaryFragment builds a binary fragment.
func BinaryFragment(mime string, data []byte) Fragment {
	return Fragment{Kind: FragmentBinary, MIME: mime, Data: data}
}

// File is one uploaded artifact held fully in memory.
type File struct {
	Name string
	MIME string
	Data []byte
}

// Content is the extractor output: ordered fragments plus the file
// manifest, both preserving upload order.
type Content struct {
	Fragments []Fragment
	Manifest  []string
}

// Options tunes extraction behavior.
type Options struct {
	// InlinePDFText extracts PDF text inline instead of passing the raw
	// bytes through; extraction failures fall back to the binary payload.
	InlinePDFText bool
}

// Build turns the uploaded files into the ordered fragment sequence. Each
// file is wrapped in named start/end delimiters. A word-processing document
// that cannot be read aborts the whole request.
func Build(files []File, opts Options) (Content, error) {
	out := Content{
		Fragments: make([]Fragment, 0, len(files)*3),
		Manifest:  make([]string, 0, len(files)),
	}

	for _, f := range files {
		out.Manifest = append(out.Manifest, f.Name)
		mime := NormalizeMIME(f.MIME, f.Name, f.Data)

		out.Fragments = append(out.Fragments, TextFragment(fmt.Sprintf("\n=== File start: %s ===\n", f.Name)))

		switch {
		case mime == mimeDOCX:
			text, err := DocxText(f.Data)
			if err != nil {
				return Content{}, fmt.Errorf("file %s: read failed: %w", f.Name, err)
			}
			out.Fragments = append(out.Fragments, TextFragment(text))
		case mime == mimePDF && opts.InlinePDFText:
			if text, err := pdfText(f.Data); err == nil {
				out.Fragments = append(out.Fragments, TextFragment(text))
			} else {
				out.Fragments = append(out.Fragments, BinaryFragment(mime, f.Data))
			}
		default:
			out.Fragments = append(out.Fragments, BinaryFragment(mime, f.Data))
		}

		out.Fragments = append(out.Fragments, TextFragment(fmt.Sprintf("\n=== File end: %s ===\n", f.Name)))
	}

	return out, nil
}

// NormalizeMIME cleans the declared media type, maps audio containers the
// declared type misses, and sniffs OOXML inside generic zip types.
func NormalizeMIME(mimeType, fileName string, data []byte) string {
	clean := strings.ToLower(strings.TrimSpace(strings.Split(mimeType, ";")[0]))
	ext := strings.ToLower(filepath.Ext(fileName))

	if ext == ".m4a" {
		return "audio/mp4"
	}

	if clean == "application/zip" || clean == "application/octet-stream" || clean == "" {
		if mapped := mapOOXMLFromZip(data); mapped != "" {
			return mapped
		}
		switch ext {
		case ".docx":
			return mimeDOCX
		case ".xlsx":
			return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		case ".pptx":
			return "application/vnd.openxmlformats-officedocument.presentationml.presentation"
		case ".pdf":
			return mimePDF
		case ".txt":
			return "text/plain"
		}
	}

	return clean
}

func mapOOXMLFromZip(data []byte) string {
	if len(data) == 0 {
		return ""
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return ""
	}
	for _, f := range zr.File {
		switch strings.ReplaceAll(f.Name, "\\", "/") {
		case "word/document.xml":
			return mimeDOCX
		case "xl/workbook.xml":
			return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
		case "ppt/presentation.xml":
			return "application/vnd.openxmlformats-officedocument.presentationml.presentation"
		}
	}
	return ""
}

// DocxText extracts paragraph and table text from a docx payload in
// document order. Table rows come out as their cells joined with " | ";
// paragraphs inside one cell are joined with newlines.
func DocxText(data []byte) (string, error) {
	if len(data) == 0 {
		return "", errors.New("empty docx data")
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}

	var docFile *zip.File
	for _, f := range zr.File {
		if strings.ReplaceAll(f.Name, "\\", "/") == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", errors.New("document.xml file not found")
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}

	return docxBodyText(raw)
}

func docxBodyText(raw []byte) (string, error) {
	decoder := xml.NewDecoder(bytes.NewReader(raw))

	var lines []string
	var para strings.Builder
	var cell strings.Builder
	var cells []string
	tableDepth := 0
	inText := false

	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tbl":
				tableDepth++
			case "tr":
				if tableDepth > 0 {
					cells = cells[:0]
				}
			case "tc":
				if tableDepth > 0 {
					cell.Reset()
				}
			case "t":
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "tbl":
				if tableDepth > 0 {
					tableDepth--
				}
			case "tr":
				if tableDepth > 0 {
					lines = append(lines, strings.Join(cells, " | "))
				}
			case "tc":
				if tableDepth > 0 {
					cells = append(cells, strings.TrimSpace(cell.String()))
				}
			case "p":
				if tableDepth == 0 {
					if text := strings.TrimSpace(para.String()); text != "" {
						lines = append(lines, text)
					}
					para.Reset()
				} else {
					// Cell paragraphs separate with newlines; the trailing
					// one is trimmed when the cell closes.
					cell.WriteByte('\n')
				}
			case "t":
				inText = false
			}
		case xml.CharData:
			if !inText {
				continue
			}
			if tableDepth > 0 {
				cell.Write(t)
			} else {
				para.Write(t)
			}
		}
	}

	return strings.Join(lines, "\n"), nil
}

func pdfText(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	plain, err := reader.GetPlainText()
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", err
	}
	return buf.String(), nil
}
