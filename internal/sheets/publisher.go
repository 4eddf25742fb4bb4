// Package sheets publishes analysis results to Google Sheets using a
// service-account credential supplied with each request.
package sheets

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/oauth2/google"
	drive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
	gsheets "google.golang.org/api/sheets/v4"

	"secretary-backend/internal/shared/telemetry"
	"secretary-backend/internal/tasks"
)

// Publisher creates and shares spreadsheets. Now is injectable for tests.
type Publisher struct {
	Now func() time.Time
}

// NewPublisher constructs a publisher using wall-clock time.
func NewPublisher() *Publisher {
	return &Publisher{Now: time.Now}
}

// Request carries one publish call.
type Request struct {
	Task        tasks.Type
	Result      json.RawMessage
	Credentials []byte
	ShareEmail  string
}

// Result reports the outcome. Publishing never raises; failures come back
// as a message with no URL.
type Result struct {
	URL     string `json:"url,omitempty"`
	Message string `json:"message"`
}

func failure(format string, args ...any) Result {
	msg := fmt.Sprintf(format, args...)
	telemetry.Error("sheets.publish_failed", map[string]any{"error": msg})
	return Result{Message: msg}
}

// Publish flattens the result into rows, creates a spreadsheet named after
// the result's filename prefix, fills it, and shares it. With a share email
// the sheet is granted to that user; otherwise it is opened link-writable.
func (p *Publisher) Publish(ctx context.Context, req Request) Result {
	rows, err := FlattenRows(req.Task, req.Result)
	if err != nil {
		return failure("flatten result: %s", err.Error())
	}

	jwtCfg, err := google.JWTConfigFromJSON(req.Credentials, gsheets.SpreadsheetsScope, drive.DriveScope)
	if err != nil {
		return failure("parse service account credentials: %s", err.Error())
	}
	client := jwtCfg.Client(ctx)

	sheetSvc, err := gsheets.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return failure("create sheets service: %s", err.Error())
	}

	title := p.title(req.Task, req.Result)
	ss, err := sheetSvc.Spreadsheets.Create(&gsheets.Spreadsheet{
		Properties: &gsheets.SpreadsheetProperties{Title: title},
	}).Context(ctx).Do()
	if err != nil {
		return failure("create spreadsheet: %s", err.Error())
	}

	_, err = sheetSvc.Spreadsheets.Values.Update(ss.SpreadsheetId, "A1", &gsheets.ValueRange{
		Values: rows,
	}).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return failure("write spreadsheet values: %s", err.Error())
	}

	driveSvc, err := drive.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return Result{
			URL:     ss.SpreadsheetUrl,
			Message: fmt.Sprintf("spreadsheet created but sharing failed: %s", err.Error()),
		}
	}
	if err := share(ctx, driveSvc, ss.SpreadsheetId, req.ShareEmail); err != nil {
		return Result{
			URL:     ss.SpreadsheetUrl,
			Message: fmt.Sprintf("spreadsheet created but sharing failed: %s", err.Error()),
		}
	}

	telemetry.Info("sheets.published", map[string]any{
		"title": title,
		"rows":  len(rows),
	})
	return Result{URL: ss.SpreadsheetUrl, Message: "spreadsheet created"}
}

func share(ctx context.Context, svc *drive.Service, fileID, email string) error {
	if email != "" {
		perm := &drive.Permission{Type: "user", Role: "writer", EmailAddress: email}
		_, err := svc.Permissions.Create(fileID, perm).SendNotificationEmail(false).Context(ctx).Do()
		return err
	}
	perm := &drive.Permission{Type: "anyone", Role: "writer"}
	_, err := svc.Permissions.Create(fileID, perm).Context(ctx).Do()
	return err
}

// title builds "{prefix}_{MMDD_HHMM}" from the result's filename prefix,
// falling back to the task default.
func (p *Publisher) title(task tasks.Type, result json.RawMessage) string {
	prefix := tasks.FilenamePrefix(result)
	if prefix == "" {
		prefix = task.DefaultFilename()
	}
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	return prefix + "_" + now().Format("0102_1504")
}

// FlattenRows converts a result into spreadsheet rows. Tabular extractions
// become a header row plus one row per element. Every other task flattens
// field by field: scalars as [key, value], string lists joined with
// newlines, object lists as a "(see table below)" marker followed by
// indented sub-rows. Empty lists are skipped.
func FlattenRows(task tasks.Type, result json.RawMessage) ([][]interface{}, error) {
	if task == tasks.TypeDataExtract {
		return tableRows(result)
	}

	fields, err := tasks.Fields(result)
	if err != nil {
		return nil, err
	}

	var rows [][]interface{}
	for _, field := range fields {
		if firstByte(field.Value) != '[' {
			rows = append(rows, []interface{}{field.Key, cellText(field.Value)})
			continue
		}

		var elems []json.RawMessage
		if err := json.Unmarshal(field.Value, &elems); err != nil {
			return nil, fmt.Errorf("decode field %s: %w", field.Key, err)
		}
		if len(elems) == 0 {
			continue
		}

		if firstByte(elems[0]) == '{' || firstByte(elems[0]) == '[' {
			rows = append(rows, []interface{}{field.Key, "(see table below)"})
			for _, elem := range elems {
				sub, err := subRow(elem)
				if err != nil {
					return nil, fmt.Errorf("decode field %s: %w", field.Key, err)
				}
				rows = append(rows, sub)
			}
			continue
		}

		joined := ""
		for i, elem := range elems {
			if i > 0 {
				joined += "\n"
			}
			joined += cellText(elem)
		}
		rows = append(rows, []interface{}{field.Key, joined})
	}

	if len(rows) == 0 {
		rows = [][]interface{}{{"No data"}}
	}
	return rows, nil
}

// subRow renders one list element as an indented row. Objects shaped like
// discussion points land in fixed subtitle/content columns, with empty
// strings where a key is absent; other objects fall back to their values in
// key order. Inner lists become their cells.
func subRow(elem json.RawMessage) ([]interface{}, error) {
	cells := []interface{}{""}
	if firstByte(elem) == '{' {
		sub, err := tasks.Fields(elem)
		if err != nil {
			return nil, err
		}
		subtitle, content := "", ""
		pointShaped := false
		for _, f := range sub {
			switch f.Key {
			case "subtitle":
				subtitle = cellText(f.Value)
				pointShaped = true
			case "content":
				content = cellText(f.Value)
				pointShaped = true
			}
		}
		if pointShaped {
			return append(cells, subtitle, content), nil
		}
		for _, f := range sub {
			cells = append(cells, cellText(f.Value))
		}
		return cells, nil
	}

	var inner []json.RawMessage
	if err := json.Unmarshal(elem, &inner); err != nil {
		return nil, err
	}
	for _, cell := range inner {
		cells = append(cells, cellText(cell))
	}
	return cells, nil
}

func tableRows(result json.RawMessage) ([][]interface{}, error) {
	columns, err := tasks.TableColumns(result)
	if err != nil {
		return nil, err
	}
	records, err := tasks.DecodeTable(result)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return [][]interface{}{{"No data"}}, nil
	}

	rows := make([][]interface{}, 0, len(records)+1)
	header := make([]interface{}, 0, len(columns))
	for _, col := range columns {
		header = append(header, col)
	}
	rows = append(rows, header)

	for _, record := range records {
		row := make([]interface{}, 0, len(columns))
		for _, col := range columns {
			value, ok := record[col]
			if !ok || value == nil {
				row = append(row, "")
				continue
			}
			switch v := value.(type) {
			case string, float64, bool:
				row = append(row, v)
			default:
				row = append(row, tasks.Stringify(v))
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func cellText(raw json.RawMessage) string {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return string(bytes.TrimSpace(raw))
	}
	switch v.(type) {
	case map[string]any, []any:
		return string(bytes.TrimSpace(raw))
	}
	return tasks.Stringify(v)
}

func firstByte(raw json.RawMessage) byte {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return 0
	}
	return trimmed[0]
}
