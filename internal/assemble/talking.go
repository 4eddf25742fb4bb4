package assemble

import (
	"encoding/json"
	"fmt"
	"strings"

	"secretary-backend/internal/docgen"
	"secretary-backend/internal/tasks"
)

// renderTalkingPoints builds the briefing document in code; it has no
// template. Sections with no content are omitted entirely.
func renderTalkingPoints(result json.RawMessage) ([]byte, error) {
	tp, err := tasks.DecodeTalkingPoints(result)
	if err != nil {
		return nil, err
	}

	doc := docgen.NewBuilder()
	title := tp.Title
	if title == "" {
		title = "Talking Points"
	}
	doc.AddParagraph().Center().AddRun(title).Bold().Size(18)
	doc.AddParagraph().Center().AddRun(strings.Repeat("-", 30))
	doc.AddText("")

	section := 1
	if len(tp.Background) > 0 {
		doc.AddParagraph().AddRun(fmt.Sprintf("%d. Background", section)).Bold().Size(14)
		for _, line := range tp.Background {
			doc.AddText("• " + line).LeftIndent(12)
		}
		doc.AddText("")
		section++
	}

	if len(tp.DiscussionPoints) > 0 {
		doc.AddParagraph().AddRun(fmt.Sprintf("%d. Discussion Points", section)).Bold().Size(14)
		for i, point := range tp.DiscussionPoints {
			p := doc.AddParagraph().LeftIndent(12)
			p.AddRun(fmt.Sprintf("%d. [%s]", i+1, point.Subtitle)).Bold()
			p.AddRun(": " + point.Content)
		}
		doc.AddText("")
		section++
	}

	if tp.UnitOpinion != "" {
		doc.AddParagraph().AddRun(fmt.Sprintf("%d. Unit Opinion", section)).Bold().Size(14)
		doc.AddText(tp.UnitOpinion).FirstLineIndent(24)
	}

	data, err := doc.Bytes()
	if err != nil {
		return nil, fmt.Errorf("build talking points document: %w", err)
	}
	return data, nil
}
