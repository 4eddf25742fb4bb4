package assemble

import (
	"encoding/json"
	"fmt"

	"secretary-backend/internal/docgen"
	"secretary-backend/internal/tasks"
)

// renderMemo fills the memo template, or falls back to a plain layout when
// the template is missing or fails to render.
func (a *Assembler) renderMemo(result json.RawMessage) ([]byte, error) {
	memo, err := tasks.DecodeMemo(result)
	if err != nil {
		return nil, err
	}

	template, err := a.loadTemplate(MemoTemplateName)
	if err != nil {
		return nil, err
	}
	if template != nil {
		data, err := docgen.RenderTemplate(template, memoFields(memo), memoLists(memo))
		if err == nil {
			return data, nil
		}
		logTemplateFallback(MemoTemplateName, err)
	} else {
		logTemplateFallback(MemoTemplateName, nil)
	}

	return plainMemo(memo)
}

func memoFields(m tasks.Memo) map[string]string {
	return map[string]string{
		"time":         m.Time,
		"location":     m.Location,
		"method":       m.Method,
		"official":     m.Official,
		"meeting_name": m.MeetingName,
		"chair":        m.Chair,
		"attendees":    m.Attendees,
		"related_dept": m.RelatedDept,
		"guest_dept":   m.GuestDept,
		"note":         m.Note,
	}
}

func memoLists(m tasks.Memo) map[string][]map[string]string {
	return map[string][]map[string]string{
		"conclusions":  itemList(m.Conclusions),
		"action_items": itemList(m.ActionItems),
	}
}

func itemList(items []string) []map[string]string {
	out := make([]map[string]string, 0, len(items))
	for _, item := range items {
		out = append(out, map[string]string{"item": item})
	}
	return out
}

func plainMemo(m tasks.Memo) ([]byte, error) {
	doc := docgen.NewBuilder()
	title := doc.AddParagraph().Center()
	title.AddRun("Meeting Memo").Bold().Size(16)
	doc.AddText("(Generated in plain layout; memo template unavailable.)")
	doc.AddText("")

	fields := []struct{ label, value string }{
		{"Time", m.Time},
		{"Location", m.Location},
		{"Method", m.Method},
		{"Official attendance", m.Official},
		{"Meeting name", m.MeetingName},
		{"Chair", m.Chair},
		{"Attendees", m.Attendees},
		{"Related departments", m.RelatedDept},
		{"Guest departments", m.GuestDept},
	}
	for _, f := range fields {
		p := doc.AddParagraph()
		p.AddRun(f.label + ": ").Bold()
		p.AddRun(f.value)
	}

	writeItemSection(doc, "Conclusions", m.Conclusions)
	writeItemSection(doc, "Action items", m.ActionItems)

	if m.Note != "" {
		doc.AddText("")
		p := doc.AddParagraph()
		p.AddRun("Note: ").Bold()
		p.AddRun(m.Note)
	}

	data, err := doc.Bytes()
	if err != nil {
		return nil, fmt.Errorf("build memo document: %w", err)
	}
	return data, nil
}

func writeItemSection(doc *docgen.Builder, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	doc.AddText("")
	doc.AddParagraph().AddRun(heading + ":").Bold()
	for i, item := range items {
		doc.AddText(fmt.Sprintf("%d. %s", i+1, item)).LeftIndent(12)
	}
}
