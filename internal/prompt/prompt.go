package prompt

import (
	"fmt"
	"strings"

	"secretary-backend/internal/extract"
	"secretary-backend/internal/tasks"
)

// SystemInstruction is the fixed instruction sent with every analysis. It
// enumerates the JSON contract for each task type; the model owns the
// box-glyph encoding for the memo checkbox fields.
const SystemInstruction = `You are a professional administrative secretary. Analyze the files the user provides (documents, recordings or images) and return JSON matching the requested task. Follow these rules strictly:

1. Memo (fixed format): return a JSON object with the fields
   "time", "location", "method", "official", "meeting_name", "chair",
   "attendees", "related_dept", "guest_dept", "conclusions" (list of
   strings), "action_items" (list of strings), "note",
   "filename_prefix" (suggested file name without extension).
   Important: for the checkbox fields "method", "official" and "note",
   output the complete option string and mark the selected option with a
   filled box (U+25A0), leaving unselected options as hollow boxes
   (U+25A1). Example: "method": "(hollow) phone  (filled) meeting  (hollow) other".

2. Meeting notice (fixed format): return a JSON object with the fields
   "date", "dept", "reason", "full_time", "location", "host",
   "attendees" (write "see sign-in sheet" when unknown), "note",
   "agenda_table" (list of [time, topic, remark] triples),
   "filename_prefix".

3. Talking points: return a JSON object with the fields
   "title", "background" (1-2 bullet strings), "discussion_points"
   (5-10 objects, each {"subtitle": 5-10 words, "content": 50-100 words}),
   "unit_opinion" (one consolidated statement of the unit's position),
   "filename_prefix".

4. Data extraction: return a JSON list of objects, one object per row of
   extracted data.

Always output pure JSON with no surrounding prose.`

// Request is the assembled, ordered model input. Immutable once built;
// consumed exactly once per invocation attempt.
type Request struct {
	Task        tasks.Type
	Instruction string
	Fragments   []extract.Fragment
}

// Assemble builds the full request: preamble, extracted fragments, then a
// trailer listing the file manifest and the user's instruction. Given the
// same inputs the output is identical, modulo the literal file bytes.
func Assemble(task tasks.Type, content extract.Content, instruction string) Request {
	fragments := make([]extract.Fragment, 0, len(content.Fragments)+2)

	preamble := fmt.Sprintf(
		"You are a professional administrative secretary. Analyze the files that follow and produce: %s. "+
			"Note: when file contents conflict, prefer the more recently dated content or the user's supplemental instruction.",
		task.Label())
	fragments = append(fragments, extract.TextFragment(preamble))
	fragments = append(fragments, content.Fragments...)
	fragments = append(fragments, extract.TextFragment(trailer(content.Manifest, instruction)))

	return Request{
		Task:        task,
		Instruction: instruction,
		Fragments:   fragments,
	}
}

func trailer(manifest []string, instruction string) string {
	userBlock := instruction
	if strings.TrimSpace(userBlock) == "" {
		userBlock = "No special instruction; produce the standard format."
	}
	return fmt.Sprintf(`
---
File manifest: %s

[Important: supplemental user instruction]
Give the following instruction priority while analyzing the files above:
%s

Notes:
1. If the user instruction conflicts with file content, the user instruction wins.
2. Output pure JSON only.
---
`, strings.Join(manifest, ", "), userBlock)
}
