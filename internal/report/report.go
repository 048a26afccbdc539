// Package report renders motor suggestions as a printable PDF.
package report

import (
	"fmt"
	"io"
	"time"

	apperrors "motor-picker/internal/common/errors"
	"motor-picker/internal/matcher"
	"motor-picker/internal/models"

	"github.com/phpdave11/gofpdf"
)

type Input struct {
	Title        string
	Vehicle      *models.VehicleInput
	Requirements models.MotorRequirements
	Voltage      *float64
	Suggestions  []models.MatchResult
	GeneratedAt  time.Time
}

type column struct {
	title string
	width float64
	align string
}

var columns = []column{
	{"#", 8, "C"},
	{"Motor", 58, "L"},
	{"No-load RPM", 30, "R"},
	{"Torque (N·m)", 30, "R"},
	{"V", 12, "R"},
	{"Free / stall (A)", 28, "R"},
	{"Shaft", 14, "R"},
}

// Generate writes an A4 report: requirement summary, suggestion table and the
// formulas used.
func Generate(w io.Writer, in Input) error {
	pdf := render(in)
	if err := pdf.Output(w); err != nil {
		return apperrors.NewReportGenerationFailedError(err)
	}
	return nil
}

func render(in Input) *gofpdf.Fpdf {
	if in.Title == "" {
		in.Title = "Motor Suggestions"
	}
	if in.GeneratedAt.IsZero() {
		in.GeneratedAt = time.Now()
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(in.Title, true)
	pdf.SetCreator("motor-picker", true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, tr(in.Title))
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "", 9)
	pdf.Cell(0, 5, fmt.Sprintf("Generated %s", in.GeneratedAt.Format("2006-01-02 15:04")))
	pdf.Ln(9)

	if in.Vehicle != nil {
		section(pdf, "Vehicle")
		v := in.Vehicle
		line(pdf, tr, "Speed", fmt.Sprintf("%g %s", v.Speed, unitOr(string(v.SpeedUnit), "kph")))
		line(pdf, tr, "Force", fmt.Sprintf("%g %s", v.Force, unitOr(string(v.ForceUnit), "kgf")))
		line(pdf, tr, "Wheel diameter", fmt.Sprintf("%g cm", v.WheelDiameterCm))
		pdf.Ln(3)
	}

	r := in.Requirements
	section(pdf, "Motor requirements")
	line(pdf, tr, "Speed", fmt.Sprintf("%.1f RPM (%.2f rad/s)", r.RPM, r.AngularVelocityRadS))
	line(pdf, tr, "Torque", fmt.Sprintf("%.3f N·m (%.2f kgf·cm)", r.TorqueNm, r.TorqueKgfCm))
	line(pdf, tr, "Power", fmt.Sprintf("%.2f W (%.4f hp)", r.PowerW, r.PowerHP))
	if in.Voltage != nil {
		line(pdf, tr, "System voltage", fmt.Sprintf("%g V", *in.Voltage))
	}
	pdf.Ln(4)

	section(pdf, fmt.Sprintf("Suggested motors (%d)", len(in.Suggestions)))
	if len(in.Suggestions) == 0 {
		pdf.SetFont("Helvetica", "I", 10)
		pdf.MultiCell(0, 6, "No motors matched. Try a different voltage or relax the speed or torque requirement.", "", "L", false)
	} else {
		table(pdf, tr, in.Suggestions)
	}
	pdf.Ln(6)

	section(pdf, "Formulas")
	pdf.SetFont("Helvetica", "", 9)
	for _, f := range []string{
		"RPM = speed / (pi · wheel diameter) · 60",
		"Torque = force · wheel diameter / 2",
		"Power = torque · angular velocity",
		"Utilization = required / rated · 100%",
	} {
		pdf.Cell(0, 5, tr(f))
		pdf.Ln(5)
	}

	return pdf
}

func section(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, title)
	pdf.Ln(8)
}

func line(pdf *gofpdf.Fpdf, tr func(string) string, label, value string) {
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(40, 6, tr(label), "", 0, "L", false, 0, "")
	pdf.CellFormat(0, 6, tr(value), "", 1, "L", false, 0, "")
}

func table(pdf *gofpdf.Fpdf, tr func(string) string, suggestions []models.MatchResult) {
	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for _, c := range columns {
		pdf.CellFormat(c.width, 7, tr(c.title), "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 8)
	for i, s := range suggestions {
		m := s.Motor
		cells := []string{
			fmt.Sprintf("%d", i+1),
			m.DisplayName(),
			fmt.Sprintf("%.0f (%.0f%%%s)", m.RPMNoLoad, s.RPMUtilization, marker(s.RPMUtilization)),
			fmt.Sprintf("%.3f (%.0f%%%s)", m.TorqueRatedNm, s.TorqueUtilization, marker(s.TorqueUtilization)),
			fmt.Sprintf("%g", m.Voltage),
			fmt.Sprintf("%.2f / %.2f", m.FreeRunCurrentA, m.StallCurrentA),
			fmt.Sprintf("%g mm", m.OutputShaftDiameterMM),
		}
		for j, c := range columns {
			pdf.CellFormat(c.width, 6, tr(cells[j]), "1", 0, c.align, false, 0, "")
		}
		pdf.Ln(-1)
	}
}

// marker flags utilizations above the rating.
func marker(pct float64) string {
	switch matcher.ClassifyUtilization(pct) {
	case matcher.OverRating:
		return " !"
	case matcher.FarOverRating:
		return " !!"
	default:
		return ""
	}
}

func unitOr(unit, fallback string) string {
	if unit == "" {
		return fallback
	}
	return unit
}
