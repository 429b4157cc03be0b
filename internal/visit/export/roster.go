// Package export renders site rosters as spreadsheets.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"visitreg/internal/visit/models"
	"visitreg/internal/visit/service"
)

const timeLayout = "2006-01-02 15:04"

var rosterHeader = []string{
	"First Name",
	"Last Name",
	"Role",
	"Email",
	"Phone",
	"Arrival",
	"Departure",
	"Overnight",
	"Emergency Contact",
	"Contact Phone",
	"Relationship",
}

// Columns returns the header for site. Farm sites add a paddock column.
func Columns(site models.SiteKind) []string {
	cols := append([]string(nil), rosterHeader...)
	if s, ok := models.LookupSite(site); ok {
		for _, f := range s.ExtraFields {
			if f == models.FieldPaddock {
				cols = append(cols, "Paddock")
			}
		}
	}
	return cols
}

// Row flattens one roster entry in Columns order. Times are shown in loc.
func Row(site models.SiteKind, e service.RosterEntry, loc *time.Location) []any {
	v, p := e.Visit, e.Profile
	row := []any{
		p.Visitor.FirstName,
		p.Visitor.LastName,
		roleName(e),
		p.Visitor.Email,
		p.Visitor.Phone,
		v.Arrival.In(loc).Format(timeLayout),
		v.Departure.In(loc).Format(timeLayout),
		yesNo(v.Overnight),
		"", "", "",
	}
	if c := p.Contact; c != nil {
		row[8], row[9], row[10] = c.Name, c.Phone, c.Relationship
	}
	if len(Columns(site)) > len(rosterHeader) {
		paddock, _ := v.Paddock()
		row = append(row, paddock)
	}
	return row
}

// WriteRoster writes an xlsx workbook with one sheet named after the site.
func WriteRoster(w io.Writer, site models.SiteKind, entries []service.RosterEntry, loc *time.Location) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := site.Title()
	index, err := f.NewSheet(sheet)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("delete default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	cols := Columns(site)
	if err := f.SetSheetRow(sheet, "A1", &cols); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(cols), 1)
	if err != nil {
		return fmt.Errorf("header range: %w", err)
	}
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, e := range entries {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
		row := Row(site, e, loc)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}

	if err := f.SetColWidth(sheet, "A", "L", 18); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func roleName(e service.RosterEntry) string {
	if e.Profile.Role == nil {
		return ""
	}
	return e.Profile.Role.Name
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
