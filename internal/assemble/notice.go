package assemble

import (
	"encoding/json"
	"fmt"

	"secretary-backend/internal/docgen"
	"secretary-backend/internal/tasks"
)

// renderNotice fills the notice template. An override template supplied with
// the request takes precedence over the on-disk default; either way a render
// failure degrades to the plain layout.
func (a *Assembler) renderNotice(result json.RawMessage, override []byte) ([]byte, error) {
	notice, err := tasks.DecodeNotice(result)
	if err != nil {
		return nil, err
	}

	template := override
	if template == nil {
		template, err = a.loadTemplate(NoticeTemplateName)
		if err != nil {
			return nil, err
		}
	}
	if template != nil {
		data, err := docgen.RenderTemplate(template, noticeFields(notice), noticeLists(notice))
		if err == nil {
			return data, nil
		}
		logTemplateFallback(NoticeTemplateName, err)
	} else {
		logTemplateFallback(NoticeTemplateName, nil)
	}

	return plainNotice(notice)
}

func noticeFields(n tasks.Notice) map[string]string {
	return map[string]string{
		"date":      n.Date,
		"dept":      n.Dept,
		"reason":    n.Reason,
		"full_time": n.FullTime,
		"location":  n.Location,
		"host":      n.Host,
		"attendees": n.Attendees,
		"note":      n.Note,
	}
}

func noticeLists(n tasks.Notice) map[string][]map[string]string {
	rows := make([]map[string]string, 0, len(n.AgendaTable))
	for _, row := range n.AgendaTable {
		cols := row.Columns()
		rows = append(rows, map[string]string{
			"col1": cols[0],
			"col2": cols[1],
			"col3": cols[2],
		})
	}
	return map[string][]map[string]string{"agenda_table": rows}
}

func plainNotice(n tasks.Notice) ([]byte, error) {
	doc := docgen.NewBuilder()
	title := doc.AddParagraph().Center()
	title.AddRun("Meeting Notice").Bold().Size(16)
	doc.AddText("(Generated in plain layout; notice template unavailable.)")
	doc.AddText("")

	fields := []struct{ label, value string }{
		{"Date", n.Date},
		{"Department", n.Dept},
		{"Reason", n.Reason},
		{"Time", n.FullTime},
		{"Location", n.Location},
		{"Host", n.Host},
		{"Attendees", n.Attendees},
	}
	for _, f := range fields {
		p := doc.AddParagraph()
		p.AddRun(f.label + ": ").Bold()
		p.AddRun(f.value)
	}

	if len(n.AgendaTable) > 0 {
		doc.AddText("")
		doc.AddParagraph().AddRun("Agenda:").Bold()
		for _, row := range n.AgendaTable {
			cols := row.Columns()
			doc.AddText(fmt.Sprintf("%s | %s | %s", cols[0], cols[1], cols[2])).LeftIndent(12)
		}
	}

	if n.Note != "" {
		doc.AddText("")
		p := doc.AddParagraph()
		p.AddRun("Note: ").Bold()
		p.AddRun(n.Note)
	}

	data, err := doc.Bytes()
	if err != nil {
		return nil, fmt.Errorf("build notice document: %w", err)
	}
	return data, nil
}
