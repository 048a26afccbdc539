// Package xlsx moves the motor catalog in and out of spreadsheets.
package xlsx

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"motor-picker/internal/catalog"
	apperrors "motor-picker/internal/common/errors"
	"motor-picker/internal/models"

	"github.com/xuri/excelize/v2"
)

const SheetName = "Motors"

// Header is the fixed first row of an exported or importable sheet.
var Header = []string{
	"ID", "Supplier", "Series", "Motor Type", "Gear Ratio", "Voltage (V)",
	"Free-run Current (A)", "Stall Current (A)", "No-load RPM", "Rated Torque (N·m)",
	"Shaft Diameter (mm)", "URL",
}

// Export writes the catalog as a single-sheet workbook in catalog order.
func Export(cat *catalog.Catalog, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return err
	}

	header := make([]interface{}, len(Header))
	for i, h := range Header {
		header[i] = h
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return err
	}

	for i, m := range cat.Motors() {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			m.ID, m.Supplier, string(m.Series), m.MotorType, m.GearRatio, m.Voltage,
			m.FreeRunCurrentA, m.StallCurrentA, m.RPMNoLoad, m.TorqueRatedNm,
			m.OutputShaftDiameterMM, m.URL,
		}
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return err
		}
	}

	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft",
	}); err != nil {
		return err
	}

	_, err := f.WriteTo(w)
	return err
}

// Import reads entries from the first sheet. The header row must match Header;
// blank rows are skipped and any malformed row fails the whole import.
func Import(r io.Reader) ([]models.MotorSpec, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperrors.NewCatalogImportFailedError(fmt.Sprintf("open workbook: %v", err))
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0), excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, apperrors.NewCatalogImportFailedError(fmt.Sprintf("read rows: %v", err))
	}
	if len(rows) == 0 {
		return nil, apperrors.NewCatalogImportFailedError("sheet is empty")
	}
	if err := checkHeader(rows[0]); err != nil {
		return nil, err
	}

	motors := make([]models.MotorSpec, 0, len(rows)-1)
	for i := 1; i < len(rows); i++ {
		if blank(rows[i]) {
			continue
		}
		m, err := parseRow(rows[i])
		if err != nil {
			return nil, apperrors.NewCatalogImportFailedError(fmt.Sprintf("row %d: %v", i+1, err))
		}
		motors = append(motors, m)
	}
	return motors, nil
}

func checkHeader(row []string) error {
	if len(row) < len(Header) {
		return apperrors.NewCatalogImportFailedError(fmt.Sprintf("header has %d columns, want %d", len(row), len(Header)))
	}
	for i, want := range Header {
		if !strings.EqualFold(strings.TrimSpace(row[i]), want) {
			return apperrors.NewCatalogImportFailedError(fmt.Sprintf("column %d is %q, want %q", i+1, row[i], want))
		}
	}
	return nil
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func parseRow(row []string) (models.MotorSpec, error) {
	cell := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}
	num := func(i int) (float64, error) {
		s := cell(i)
		if s == "" {
			return 0, nil
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, fmt.Errorf("%s: %q is not a number", Header[i], s)
		}
		return v, nil
	}

	series, err := models.ParseSeries(cell(2))
	if err != nil {
		return models.MotorSpec{}, err
	}
	m := models.MotorSpec{
		ID:        cell(0),
		Supplier:  cell(1),
		Series:    series,
		MotorType: cell(3),
		GearRatio: cell(4),
		URL:       cell(11),
	}
	for _, f := range []struct {
		col int
		dst *float64
	}{
		{5, &m.Voltage},
		{6, &m.FreeRunCurrentA},
		{7, &m.StallCurrentA},
		{8, &m.RPMNoLoad},
		{9, &m.TorqueRatedNm},
		{10, &m.OutputShaftDiameterMM},
	} {
		if *f.dst, err = num(f.col); err != nil {
			return models.MotorSpec{}, err
		}
	}
	return m, nil
}

// FileSource loads the catalog from a workbook on disk.
type FileSource struct {
	Path string
}

func (s FileSource) Name() string { return "xlsx" }

func (s FileSource) Load(_ context.Context) (*catalog.Catalog, error) {
	file, err := os.Open(s.Path)
	if err != nil {
		return nil, apperrors.NewCatalogLoadFailedError(s.Name(), err)
	}
	defer file.Close()

	motors, err := Import(file)
	if err != nil {
		return nil, err
	}
	return catalog.New(motors)
}
