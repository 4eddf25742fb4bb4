package docgen

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"strings"
)

const documentPath = "word/document.xml"

// RenderTemplate fills a docx template. Scalar fields replace {{name}}
// tokens anywhere in the body; each list expands a {{#name}}...{{/name}}
// block once per item, resolving the item's own tokens inside the clone.
// A token left unresolved after both passes is an error, so a template
// that does not match the data fails loudly instead of shipping half
// filled.
func RenderTemplate(template []byte, fields map[string]string, lists map[string][]map[string]string) ([]byte, error) {
	reader, err := zip.NewReader(bytes.NewReader(template), int64(len(template)))
	if err != nil {
		return nil, fmt.Errorf("open template: %w", err)
	}

	var docXML string
	for _, f := range reader.File {
		if f.Name != documentPath {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", documentPath, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", documentPath, err)
		}
		docXML = string(data)
	}
	if docXML == "" {
		return nil, fmt.Errorf("template has no %s", documentPath)
	}

	rendered, err := renderDocumentXML(docXML, fields, lists)
	if err != nil {
		return nil, err
	}

	var out bytes.Buffer
	writer := zip.NewWriter(&out)
	for _, f := range reader.File {
		w, err := writer.Create(f.Name)
		if err != nil {
			return nil, fmt.Errorf("write %s: %w", f.Name, err)
		}
		if f.Name == documentPath {
			if _, err := w.Write([]byte(rendered)); err != nil {
				return nil, fmt.Errorf("write %s: %w", f.Name, err)
			}
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", f.Name, err)
		}
		_, err = io.Copy(w, rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("copy %s: %w", f.Name, err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close archive: %w", err)
	}

	return out.Bytes(), nil
}

func renderDocumentXML(docXML string, fields map[string]string, lists map[string][]map[string]string) (string, error) {
	root, header, err := parseXMLDocument(docXML)
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", documentPath, err)
	}
	rootStart, rootEnd, err := extractRootTags(docXML)
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", documentPath, err)
	}

	for name, items := range lists {
		if err := expandLoop(root, name, items); err != nil {
			return "", err
		}
	}

	replacements := make(map[string]string, len(fields))
	for name, value := range fields {
		replacements["{{"+name+"}}"] = value
	}
	replaceTokensInNode(root, replacements)

	rendered, err := encodeXMLDocument(header, root, rootStart, rootEnd)
	if err != nil {
		return "", fmt.Errorf("encode %s: %w", documentPath, err)
	}
	if token := findRemainingToken(rendered); token != "" {
		return "", fmt.Errorf("unresolved template token %s", token)
	}
	return rendered, nil
}

// expandLoop finds the container whose direct children hold the loop
// markers and repeats the nodes between them once per item. The markers
// may sit in their own paragraphs or table rows; marker nodes emptied by
// the expansion are dropped.
func expandLoop(root *xmlNode, name string, items []map[string]string) error {
	startTag := "{{#" + name + "}}"
	endTag := "{{/" + name + "}}"

	// The shallowest matching ancestor sees both markers inside one child
	// (a table holding marker rows, say); the deepest match is the real
	// container whose children repeat.
	var container *xmlNode
	startIdx, endIdx := -1, -1
	walkXML(root, func(node *xmlNode) bool {
		if node.IsText {
			return true
		}
		s, e := -1, -1
		for i, child := range node.Children {
			text := deepText(child)
			if s == -1 && strings.Contains(text, startTag) {
				s = i
			}
			if strings.Contains(text, endTag) {
				e = i
			}
		}
		if s != -1 && e != -1 && s <= e {
			container, startIdx, endIdx = node, s, e
		}
		return true
	})
	if container == nil {
		return fmt.Errorf("loop block %s not found in template", name)
	}

	startNode := container.Children[startIdx]
	endNode := container.Children[endIdx]
	stripMarker(startNode, startTag)
	stripMarker(endNode, endTag)

	var body []*xmlNode
	if startIdx == endIdx {
		if strings.TrimSpace(deepText(startNode)) != "" {
			body = []*xmlNode{startNode}
		}
	} else {
		body = container.Children[startIdx+1 : endIdx]
		if strings.TrimSpace(deepText(startNode)) != "" {
			body = append([]*xmlNode{startNode}, body...)
		}
		if strings.TrimSpace(deepText(endNode)) != "" {
			body = append(body, endNode)
		}
	}

	var expanded []*xmlNode
	for _, item := range items {
		replacements := make(map[string]string, len(item))
		for field, value := range item {
			replacements["{{"+field+"}}"] = value
		}
		for _, tmpl := range cloneNodes(body) {
			replaceTokensInNode(tmpl, replacements)
			expanded = append(expanded, tmpl)
		}
	}

	rebuilt := make([]*xmlNode, 0, len(container.Children)-(endIdx-startIdx+1)+len(expanded))
	rebuilt = append(rebuilt, container.Children[:startIdx]...)
	rebuilt = append(rebuilt, expanded...)
	rebuilt = append(rebuilt, container.Children[endIdx+1:]...)
	container.Children = rebuilt
	return nil
}

func stripMarker(node *xmlNode, marker string) {
	walkXML(node, func(n *xmlNode) bool {
		if n.IsText {
			n.Text = strings.ReplaceAll(n.Text, marker, "")
			return true
		}
		if isElement(n, "t") {
			if text := nodeText(n); strings.Contains(text, marker) {
				setNodeText(n, strings.ReplaceAll(text, marker, ""))
			}
		}
		return true
	})
}
