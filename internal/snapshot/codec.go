package snapshot

import (
	"encoding/csv"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/omarshaarawi/ffdata/internal/models"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Snapshot"

var columns = []string{"Week", "Team", "Player", "Slot", "Pos", "Status", "Proj", "Actual"}

type codec interface {
	Encode(w io.Writer, records []models.WeekRecord) error
	Decode(r io.Reader) ([]models.WeekRecord, error)
}

func codecFor(ext string) (codec, bool) {
	switch ext {
	case ".csv":
		return csvCodec{}, true
	case ".xlsx":
		return xlsxCodec{}, true
	}
	return nil, false
}

type csvCodec struct{}

func (csvCodec) Encode(w io.Writer, records []models.WeekRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(columns); err != nil {
		return err
	}
	for _, r := range records {
		row := []string{
			strconv.Itoa(r.Week),
			strconv.Itoa(r.TeamID),
			r.Player,
			strconv.Itoa(r.Slot),
			string(r.Position),
			r.Status,
			formatPoints(r.Projected),
			formatPoints(r.Actual),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func (csvCodec) Decode(r io.Reader) ([]models.WeekRecord, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "reading csv")
	}
	return parseRows(rows)
}

type xlsxCodec struct{}

func (xlsxCodec) Encode(w io.Writer, records []models.WeekRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return err
	}

	header := make([]any, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return err
	}

	for i, r := range records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{
			r.Week, r.TeamID, r.Player, r.Slot, string(r.Position), r.Status,
			pointsCell(r.Projected), pointsCell(r.Actual),
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return err
		}
	}

	return f.Write(w)
}

func (xlsxCodec) Decode(r io.Reader) ([]models.WeekRecord, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "opening workbook")
	}
	defer f.Close()

	sheet := sheetName
	if idx, _ := f.GetSheetIndex(sheetName); idx < 0 {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, errors.Wrapf(err, "reading sheet %s", sheet)
	}
	return parseRows(rows)
}

func pointsCell(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}

func formatPoints(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// parseRows maps rows by header name. Extra columns, such as the unnamed
// index column pandas writes, are ignored.
func parseRows(rows [][]string) ([]models.WeekRecord, error) {
	if len(rows) == 0 {
		return nil, errors.New("snapshot has no header row")
	}

	index := make(map[string]int, len(columns))
	for i, name := range rows[0] {
		index[strings.TrimSpace(name)] = i
	}
	for _, c := range columns {
		if _, ok := index[c]; !ok {
			return nil, errors.Newf("snapshot is missing column %q", c)
		}
	}

	records := make([]models.WeekRecord, 0, len(rows)-1)
	for n, row := range rows[1:] {
		line := n + 2
		cell := func(col string) string {
			i := index[col]
			if i >= len(row) {
				return ""
			}
			return row[i]
		}
		num := func(col string) string {
			return strings.TrimSpace(cell(col))
		}
		if len(row) == 0 || (len(row) == 1 && strings.TrimSpace(row[0]) == "") {
			continue
		}

		week, err := parseInt(num("Week"))
		if err != nil {
			return nil, errors.Wrapf(err, "row %d: Week", line)
		}
		team, err := parseInt(num("Team"))
		if err != nil {
			return nil, errors.Wrapf(err, "row %d: Team", line)
		}
		slot, err := parseInt(num("Slot"))
		if err != nil {
			return nil, errors.Wrapf(err, "row %d: Slot", line)
		}
		pos, ok := models.ParsePosition(num("Pos"))
		if !ok {
			return nil, errors.Newf("row %d: unknown position %q", line, cell("Pos"))
		}
		proj, err := parsePoints(num("Proj"))
		if err != nil {
			return nil, errors.Wrapf(err, "row %d: Proj", line)
		}
		actual, err := parsePoints(num("Actual"))
		if err != nil {
			return nil, errors.Wrapf(err, "row %d: Actual", line)
		}
		status := cell("Status")
		if status == "" {
			status = models.StatusNA
		}

		records = append(records, models.WeekRecord{
			Week:      week,
			TeamID:    team,
			Player:    cell("Player"),
			Slot:      slot,
			Position:  pos,
			Status:    status,
			Projected: proj,
			Actual:    actual,
		})
	}
	return records, nil
}

func parseInt(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, errors.Newf("not an integer: %q", s)
	}
	return int(f), nil
}

func parsePoints(s string) (*float64, error) {
	if s == "" || strings.EqualFold(s, "nan") {
		return nil, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &f, nil
}
