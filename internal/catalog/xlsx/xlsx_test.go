package xlsx

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"motor-picker/internal/catalog"
	apperrors "motor-picker/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func workbook(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow(sheet, cell, &r))
	}

	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)
	return &buf
}

func headerRow() []interface{} {
	out := make([]interface{}, len(Header))
	for i, h := range Header {
		out[i] = h
	}
	return out
}

func TestExportImport_RoundTrip(t *testing.T) {
	src := catalog.Default()

	var buf bytes.Buffer
	require.NoError(t, Export(src, &buf))

	motors, err := Import(&buf)
	require.NoError(t, err)
	require.Len(t, motors, src.Len())

	for i, want := range src.Motors() {
		got := motors[i]
		assert.Equal(t, want.ID, got.ID)
		assert.Equal(t, want.Series, got.Series)
		assert.Equal(t, want.GearRatio, got.GearRatio)
		assert.Equal(t, want.URL, got.URL)
		assert.InDelta(t, want.Voltage, got.Voltage, 1e-12)
		assert.InDelta(t, want.RPMNoLoad, got.RPMNoLoad, 1e-9)
		assert.InDelta(t, want.TorqueRatedNm, got.TorqueRatedNm, 1e-12)
	}

	_, err = catalog.New(motors)
	assert.NoError(t, err)
}

func TestImport(t *testing.T) {
	good := []interface{}{"37d-12v-50", "Pololu", "37D", "12V", "50:1", 12, 0.2, 5.5, 200, 2.06, 6, ""}

	tests := []struct {
		name           string
		rows           [][]interface{}
		expectedErr    string
		validateOutput func(t *testing.T, got int)
	}{
		{
			name: "valid rows with a blank line",
			rows: [][]interface{}{headerRow(), good, {}, {"25d-hp-6v-20", "Pololu", "25D", "HP 6V", "20:1", 6, "", "", 500, 0.43, 4}},
			validateOutput: func(t *testing.T, got int) {
				assert.Equal(t, 2, got)
			},
		},
		{
			name:        "wrong header",
			rows:        [][]interface{}{{"Name", "Supplier"}, good},
			expectedErr: "header has 2 columns",
		},
		{
			name:        "renamed column",
			rows:        [][]interface{}{append([]interface{}{"Part"}, headerRow()[1:]...), good},
			expectedErr: `column 1 is "Part"`,
		},
		{
			name:        "non-numeric rpm",
			rows:        [][]interface{}{headerRow(), {"x", "Pololu", "37D", "12V", "50:1", 12, 0.2, 5.5, "fast", 2.0, 6}},
			expectedErr: "row 2: No-load RPM",
		},
		{
			name:        "unknown series",
			rows:        [][]interface{}{headerRow(), good, {"y", "Pololu", "99Z", "12V", "50:1", 12, 0.2, 5.5, 100, 2.0, 6}},
			expectedErr: "row 3: unknown motor series",
		},
		{
			name:        "empty sheet",
			rows:        nil,
			expectedErr: "sheet is empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			motors, err := Import(workbook(t, tt.rows))
			if tt.expectedErr != "" {
				require.Error(t, err)
				assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeCatalogImportFailed))
				assert.Contains(t, err.Error(), tt.expectedErr)
				return
			}
			require.NoError(t, err)
			tt.validateOutput(t, len(motors))
		})
	}
}

func TestImport_NotAWorkbook(t *testing.T) {
	_, err := Import(bytes.NewBufferString("id,rpm\n"))
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeCatalogImportFailed))
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "motors.xlsx")

	var buf bytes.Buffer
	require.NoError(t, Export(catalog.Default(), &buf))
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o600))

	cat, err := FileSource{Path: path}.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, catalog.Default().Len(), cat.Len())

	_, err = FileSource{Path: filepath.Join(t.TempDir(), "missing.xlsx")}.Load(context.Background())
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeCatalogLoadFailed))
}
