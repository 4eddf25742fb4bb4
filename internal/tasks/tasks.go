package tasks

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Type identifies one of the supported output tasks.
type Type string

const (
	TypeMemo          Type = "memo"
	TypeNotice        Type = "notice"
	TypeTalkingPoints Type = "talking_points"
	TypeDataExtract   Type = "data_extract"
	TypeMinutes       Type = "minutes"
)

// All lists every supported task type.
func All() []Type {
	return []Type{TypeMemo, TypeNotice, TypeTalkingPoints, TypeDataExtract, TypeMinutes}
}

// Parse maps a request value onto a task type.
func Parse(raw string) (Type, error) {
	switch Type(strings.ToLower(strings.TrimSpace(raw))) {
	case TypeMemo:
		return TypeMemo, nil
	case TypeNotice:
		return TypeNotice, nil
	case TypeTalkingPoints:
		return TypeTalkingPoints, nil
	case TypeDataExtract:
		return TypeDataExtract, nil
	case TypeMinutes:
		return TypeMinutes, nil
	default:
		return "", fmt.Errorf("unknown task type: %q", raw)
	}
}

// Label returns the task description used in prompts.
func (t Type) Label() string {
	switch t {
	case TypeMemo:
		return "an executive memo in the fixed memo format"
	case TypeNotice:
		return "a simple meeting notice in the fixed notice format"
	case TypeTalkingPoints:
		return "a talking-points briefing"
	case TypeDataExtract:
		return "a tabular data extraction"
	default:
		return "free-form meeting minutes"
	}
}

// DefaultFilename is the suggested name used when filename_prefix is absent.
func (t Type) DefaultFilename() string {
	switch t {
	case TypeMemo:
		return "Memo"
	case TypeNotice:
		return "MeetingNotice"
	case TypeTalkingPoints:
		return "TalkingPoints"
	case TypeDataExtract:
		return "Data_Extraction"
	default:
		return "result"
	}
}

// Extension returns the artifact file extension including the dot.
func (t Type) Extension() string {
	switch t {
	case TypeMemo, TypeNotice, TypeTalkingPoints:
		return ".docx"
	case TypeDataExtract:
		return ".xlsx"
	default:
		return ".txt"
	}
}

// ContentType returns the artifact MIME type.
func (t Type) ContentType() string {
	switch t {
	case TypeMemo, TypeNotice, TypeTalkingPoints:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case TypeDataExtract:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "text/plain; charset=utf-8"
	}
}

// Memo is the fixed-format memo schema. The method/official/note values are
// rendered verbatim; the model is responsible for the filled/hollow box
// glyphs inside them.
type Memo struct {
	Time           string   `json:"time"`
	Location       string   `json:"location"`
	Method         string   `json:"method"`
	Official       string   `json:"official"`
	MeetingName    string   `json:"meeting_name"`
	Chair          string   `json:"chair"`
	Attendees      string   `json:"attendees"`
	RelatedDept    string   `json:"related_dept"`
	GuestDept      string   `json:"guest_dept"`
	Conclusions    []string `json:"conclusions"`
	ActionItems    []string `json:"action_items"`
	Note           string   `json:"note"`
	FilenamePrefix string   `json:"filename_prefix"`
}

// Notice is the simple meeting-notice schema.
type Notice struct {
	Date           string      `json:"date"`
	Dept           string      `json:"dept"`
	Reason         string      `json:"reason"`
	FullTime       string      `json:"full_time"`
	Location       string      `json:"location"`
	Host           string      `json:"host"`
	Attendees      string      `json:"attendees"`
	Note           string      `json:"note"`
	AgendaTable    []AgendaRow `json:"agenda_table"`
	FilenamePrefix string      `json:"filename_prefix"`
}

// AgendaRow is one agenda line; rows shorter than three columns are padded
// with empty strings at render time.
type AgendaRow []string

// UnmarshalJSON tolerates non-string cell values by stringifying them.
func (r *AgendaRow) UnmarshalJSON(data []byte) error {
	var cells []any
	if err := json.Unmarshal(data, &cells); err != nil {
		return err
	}
	out := make([]string, 0, len(cells))
	for _, cell := range cells {
		out = append(out, Stringify(cell))
	}
	*r = out
	return nil
}

// Columns returns the row coerced to exactly three columns.
func (r AgendaRow) Columns() [3]string {
	var out [3]string
	for i := 0; i < 3 && i < len(r); i++ {
		out[i] = r[i]
	}
	return out
}

// TalkingPoints is the structured briefing schema.
type TalkingPoints struct {
	Title            string            `json:"title"`
	Background       []string          `json:"background"`
	DiscussionPoints []DiscussionPoint `json:"discussion_points"`
	UnitOpinion      string            `json:"unit_opinion"`
	FilenamePrefix   string            `json:"filename_prefix"`
}

// DiscussionPoint pairs a short subtitle with its content.
type DiscussionPoint struct {
	Subtitle string `json:"subtitle"`
	Content  string `json:"content"`
}

// ErrorResult is the error shape returned when analysis fails.
type ErrorResult struct {
	Error string `json:"error"`
}

// ErrorMessage returns the error string when raw decodes to an error
// object, and false otherwise.
func ErrorMessage(raw json.RawMessage) (string, bool) {
	var er ErrorResult
	if err := json.Unmarshal(raw, &er); err != nil {
		return "", false
	}
	if er.Error == "" {
		return "", false
	}
	return er.Error, true
}

// DecodeMemo decodes a raw result into the memo schema, tolerating absent
// fields.
func DecodeMemo(raw json.RawMessage) (Memo, error) {
	var m Memo
	if err := json.Unmarshal(raw, &m); err != nil {
		return Memo{}, fmt.Errorf("decode memo result: %w", err)
	}
	return m, nil
}

// DecodeNotice decodes a raw result into the notice schema.
func DecodeNotice(raw json.RawMessage) (Notice, error) {
	var n Notice
	if err := json.Unmarshal(raw, &n); err != nil {
		return Notice{}, fmt.Errorf("decode notice result: %w", err)
	}
	return n, nil
}

// DecodeTalkingPoints decodes a raw result into the talking-points schema.
func DecodeTalkingPoints(raw json.RawMessage) (TalkingPoints, error) {
	var tp TalkingPoints
	if err := json.Unmarshal(raw, &tp); err != nil {
		return TalkingPoints{}, fmt.Errorf("decode talking points result: %w", err)
	}
	return tp, nil
}

// DecodeTable decodes a tabular-extraction result: an ordered list of
// mapping objects with no fixed schema.
func DecodeTable(raw json.RawMessage) ([]map[string]any, error) {
	var rows []map[string]any
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("decode table result: %w", err)
	}
	return rows, nil
}

// FilenamePrefix pulls filename_prefix out of any object-shaped result.
func FilenamePrefix(raw json.RawMessage) string {
	var probe struct {
		FilenamePrefix string `json:"filename_prefix"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return ""
	}
	return strings.TrimSpace(probe.FilenamePrefix)
}

// SuggestedName derives the artifact file name for a result: the
// filename_prefix when present, the task default otherwise.
func SuggestedName(t Type, raw json.RawMessage) string {
	prefix := FilenamePrefix(raw)
	if prefix == "" {
		prefix = t.DefaultFilename()
	}
	return prefix + t.Extension()
}

// Stringify renders a decoded JSON value as display text.
func Stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		// JSON numbers decode as float64; keep integers clean.
		if val == float64(int64(val)) {
			return fmt.Sprintf("%d", int64(val))
		}
		return fmt.Sprintf("%v", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
