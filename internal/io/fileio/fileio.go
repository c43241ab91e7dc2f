package fileio

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/sji-bdl/bdlimport/internal/ent/source"
	"github.com/sji-bdl/bdlimport/pkg/ent/bdlerr"
	"github.com/sji-bdl/bdlimport/pkg/ent/report"
	"github.com/xuri/excelize/v2"
)

type fileio struct {
	path string
}

// New creates a reader of a local export of the responses sheet. Files
// with .xlsx extension are read as Excel workbooks, .csv files as CSV.
func New(path string) (source.Reader, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm", ".csv":
	default:
		err := fmt.Errorf("unsupported file type %q", filepath.Ext(path))
		return nil, bdlerr.New(bdlerr.ConfigFailure, path, err)
	}
	return &fileio{path: path}, nil
}

// Rows returns all rows of the file, header included.
func (f *fileio) Rows(ctx context.Context) ([]report.RawRow, error) {
	var rows [][]string
	var err error
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	slog.Info("Reading responses", "path", f.path)
	if strings.ToLower(filepath.Ext(f.path)) == ".csv" {
		rows, err = f.csvRows()
	} else {
		rows, err = f.xlsxRows()
	}
	if err != nil {
		return nil, bdlerr.New(bdlerr.SourceFetchFailure, f.path, err)
	}

	res := make([]report.RawRow, len(rows))
	for i := range rows {
		res[i] = report.RawRow(rows[i])
	}
	if len(res) == 0 {
		slog.Warn("No data found", "path", f.path)
	}
	return res, nil
}

func (f *fileio) xlsxRows() ([][]string, error) {
	xl, err := excelize.OpenFile(f.path)
	if err != nil {
		return nil, err
	}
	defer xl.Close()

	sheet := xl.GetSheetName(0)
	if sheet == "" {
		return nil, errors.New("no sheets found in the workbook")
	}
	return xl.GetRows(sheet)
}

func (f *fileio) csvRows() ([][]string, error) {
	fh, err := os.Open(f.path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	r := csv.NewReader(fh)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	return r.ReadAll()
}
