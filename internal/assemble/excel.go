package assemble

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/tealeg/xlsx/v2"

	"secretary-backend/internal/tasks"
)

const sheetName = "Data_Extraction"

// renderSpreadsheet writes a tabular-extraction result as a single-sheet
// workbook. The header is the union of keys across all rows, ordered by
// first appearance in the raw JSON; missing cells stay empty.
func renderSpreadsheet(result json.RawMessage) ([]byte, error) {
	rows, err := tasks.DecodeTable(result)
	if err != nil {
		return nil, err
	}
	columns, err := tasks.TableColumns(result)
	if err != nil {
		return nil, err
	}

	file := xlsx.NewFile()
	sheet, err := file.AddSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("add sheet: %w", err)
	}

	header := sheet.AddRow()
	for _, col := range columns {
		header.AddCell().Value = col
	}

	for _, row := range rows {
		out := sheet.AddRow()
		for _, col := range columns {
			cell := out.AddCell()
			value, ok := row[col]
			if !ok || value == nil {
				continue
			}
			switch v := value.(type) {
			case string:
				cell.Value = v
			case float64, bool:
				cell.SetValue(v)
			default:
				encoded, err := json.Marshal(v)
				if err != nil {
					cell.Value = fmt.Sprint(v)
					continue
				}
				cell.Value = string(encoded)
			}
		}
	}

	var buf bytes.Buffer
	if err := file.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
