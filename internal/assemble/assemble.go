// Package assemble turns task-shaped analysis results into downloadable
// artifacts: Word documents for the memo, notice, and talking-points tasks,
// a spreadsheet for tabular extraction, and plain text for minutes.
package assemble

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"secretary-backend/internal/shared/telemetry"
	"secretary-backend/internal/tasks"
)

// Template file names looked up under the configured template directory.
const (
	MemoTemplateName   = "Template_Memo.docx"
	NoticeTemplateName = "Template_Notice.docx"
)

// Artifact is a rendered download.
type Artifact struct {
	Name        string
	ContentType string
	Data        []byte
}

// Assembler renders artifacts from analysis results.
type Assembler struct {
	TemplateDir string
}

// NewAssembler constructs an assembler reading templates from dir.
func NewAssembler(dir string) *Assembler {
	return &Assembler{TemplateDir: dir}
}

// Render produces the artifact for a task result. The noticeTemplate bytes,
// when non-nil, override the on-disk notice template for this call only.
// Document tasks degrade to a plain layout instead of failing when the
// template is missing or does not render.
func (a *Assembler) Render(task tasks.Type, result json.RawMessage, noticeTemplate []byte) (Artifact, error) {
	var (
		data []byte
		err  error
	)
	switch task {
	case tasks.TypeMemo:
		data, err = a.renderMemo(result)
	case tasks.TypeNotice:
		data, err = a.renderNotice(result, noticeTemplate)
	case tasks.TypeTalkingPoints:
		data, err = renderTalkingPoints(result)
	case tasks.TypeDataExtract:
		data, err = renderSpreadsheet(result)
	case tasks.TypeMinutes:
		data, err = renderMinutes(result)
	default:
		err = fmt.Errorf("unknown task type: %q", task)
	}
	if err != nil {
		return Artifact{}, err
	}

	return Artifact{
		Name:        tasks.SuggestedName(task, result),
		ContentType: task.ContentType(),
		Data:        data,
	}, nil
}

// loadTemplate reads a named template from the template directory. A missing
// file returns nil bytes and no error so callers fall back to plain layout.
func (a *Assembler) loadTemplate(name string) ([]byte, error) {
	path := filepath.Join(a.TemplateDir, name)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read template %s: %w", name, err)
	}
	return data, nil
}

func logTemplateFallback(name string, err error) {
	fields := map[string]any{"template": name}
	if err != nil {
		fields["error"] = err.Error()
	}
	telemetry.Info("assemble.template_fallback", fields)
}

func renderMinutes(result json.RawMessage) ([]byte, error) {
	var value any
	if err := json.Unmarshal(result, &value); err != nil {
		return nil, fmt.Errorf("decode minutes result: %w", err)
	}
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode minutes result: %w", err)
	}
	return data, nil
}
