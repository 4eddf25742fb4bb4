package sheets

import (
	"encoding/json"
	"reflect"
	"testing"
	"time"

	"secretary-backend/internal/tasks"
)

func TestFlattenRowsTabular(t *testing.T) {
	raw := json.RawMessage(`[{"name":"x","qty":1},{"name":"y","qty":2}]`)
	rows, err := FlattenRows(tasks.TypeDataExtract, raw)
	if err != nil {
		t.Fatalf("flatten: %v", err)
	}

	want := [][]interface{}{
		{"name", "qty"},
		{"x", float64(1)},
		{"y", float64(2)},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Fatalf("unexpected rows: %#v", rows)
	}
}

func TestFlattenRowsTabularEmpty(t *testing.T) {
	rows, err := FlattenRows(tasks.TypeDataExtract, json.RawMessage(`[]`))
	if err != nil {
		t.Fatalf("flatten: %v", err)
	}
	if !reflect.DeepEqual(rows, [][]interface{}{{"No data"}}) {
		t.Fatalf("unexpected rows: %#v", rows)
	}
}

func TestFlattenRowsFieldByField(t *testing.T) {
	raw := json.RawMessage(`{
		"title": "Vendor Renewal",
		"background": ["expires soon", "two vendors"],
		"discussion_points": [
			{"subtitle": "Pricing", "content": "12% above"},
			{"subtitle": "Support", "content": "on-site included"}
		],
		"empty_list": [],
		"unit_opinion": "renew",
		"filename_prefix": "Vendor"
	}`)

	rows, err := FlattenRows(tasks.TypeTalkingPoints, raw)
	if err != nil {
		t.Fatalf("flatten: %v", err)
	}

	want := [][]interface{}{
		{"title", "Vendor Renewal"},
		{"background", "expires soon\ntwo vendors"},
		{"discussion_points", "(see table below)"},
		{"", "Pricing", "12% above"},
		{"", "Support", "on-site included"},
		{"unit_opinion", "renew"},
		{"filename_prefix", "Vendor"},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Fatalf("unexpected rows: %#v", rows)
	}
}

func TestFlattenRowsPartialDiscussionPoints(t *testing.T) {
	raw := json.RawMessage(`{"discussion_points":[
		{"content": "only content"},
		{"subtitle": "only subtitle"},
		{"subtitle": "both", "content": "filled"}
	]}`)

	rows, err := FlattenRows(tasks.TypeTalkingPoints, raw)
	if err != nil {
		t.Fatalf("flatten: %v", err)
	}

	want := [][]interface{}{
		{"discussion_points", "(see table below)"},
		{"", "", "only content"},
		{"", "only subtitle", ""},
		{"", "both", "filled"},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Fatalf("unexpected rows: %#v", rows)
	}
}

func TestFlattenRowsListOfLists(t *testing.T) {
	raw := json.RawMessage(`{"agenda_table":[["09:00","Opening"],["09:30","Review"]]}`)
	rows, err := FlattenRows(tasks.TypeNotice, raw)
	if err != nil {
		t.Fatalf("flatten: %v", err)
	}

	want := [][]interface{}{
		{"agenda_table", "(see table below)"},
		{"", "09:00", "Opening"},
		{"", "09:30", "Review"},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Fatalf("unexpected rows: %#v", rows)
	}
}

func TestFlattenRowsEmptyObject(t *testing.T) {
	rows, err := FlattenRows(tasks.TypeMinutes, json.RawMessage(`{}`))
	if err != nil {
		t.Fatalf("flatten: %v", err)
	}
	if !reflect.DeepEqual(rows, [][]interface{}{{"No data"}}) {
		t.Fatalf("unexpected rows: %#v", rows)
	}
}

func TestSpreadsheetTitleFormat(t *testing.T) {
	p := NewPublisher()
	p.Now = func() time.Time {
		return time.Date(2026, 8, 31, 14, 5, 0, 0, time.UTC)
	}

	got := p.title(tasks.TypeMemo, json.RawMessage(`{"filename_prefix":"Q3_Memo"}`))
	if got != "Q3_Memo_0831_1405" {
		t.Fatalf("unexpected title: %q", got)
	}

	got = p.title(tasks.TypeDataExtract, json.RawMessage(`{}`))
	if got != "Data_Extraction_0831_1405" {
		t.Fatalf("unexpected default title: %q", got)
	}
}
