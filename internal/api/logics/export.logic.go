package logics

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"offer-tracker/internal/chart"
	"offer-tracker/internal/utils"
)

const (
	seriesSheet   = "Series"
	activitySheet = "Activity"
	rawSheet      = "Samples"
)

// ExportWorkbook writes the chart series, activity histogram and raw samples
// of view into an xlsx workbook.
func ExportWorkbook(view chart.View, title string, loc *time.Location) (*bytes.Buffer, error) {
	if loc == nil {
		loc = utils.GetDefaultTimezone()
	}
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			utils.LogWarnWithContext("export", "failed to close workbook", err)
		}
	}()

	if err := f.SetSheetName("Sheet1", seriesSheet); err != nil {
		return nil, exportError(err)
	}
	for _, name := range []string{activitySheet, rawSheet} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, exportError(err)
		}
	}

	stamp := func(ms int64) string {
		return time.UnixMilli(ms).In(loc).Format("2006-01-02 15:04:05")
	}

	series := [][]any{{title, fmt.Sprintf("range %s", view.Range.Label), fmt.Sprintf("averaging %t", view.Averaging)}, {"Time", "Price", "Label"}}
	for _, p := range view.Points {
		series = append(series, []any{stamp(p.X), p.Y, p.Label})
	}
	activity := [][]any{{"From", "To", "Samples"}}
	for _, b := range view.Activity {
		activity = append(activity, []any{stamp(b.Start), stamp(b.End), b.Count})
	}
	raw := [][]any{{"Time", "Price", "Title"}}
	for _, p := range view.Raw {
		raw = append(raw, []any{stamp(p.X), p.Y, p.Label})
	}

	for sheet, rows := range map[string][][]any{seriesSheet: series, activitySheet: activity, rawSheet: raw} {
		if err := writeRows(f, sheet, rows); err != nil {
			return nil, exportError(err)
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, exportError(err)
	}
	return buf, nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	return nil
}

func exportError(err error) error {
	return utils.NewDataError("export", "failed to build workbook", fmt.Errorf("%w: %v", utils.ErrExportFailed, err))
}
