// =============================================================================
// FIDJI Converter - XLSX Report Module
// =============================================================================
//
// This module renders a model.Container as a workbook for review in a
// spreadsheet tool. It is output only; the workbook is never read back.
//
// WORKBOOK STRUCTURE:
//   Sheet "Units"  - one row per unit of every resolved property
//   Sheet "Leases" - one row per leased unit of every resolved property
//
//   Leased units are shown with the unit id found through the hash lookup the
//   XML writer uses; the id cell is empty when the hash matches no unit.
//
// =============================================================================

package xlsxreport

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/fidji-converter/internal/fidji"
	"github.com/ginjaninja78/fidji-converter/internal/model"
)

// Sheet names.
const (
	SheetUnits  = "Units"
	SheetLeases = "Leases"
)

// UnitColumns are the header cells of the Units sheet.
var UnitColumns = []string{
	"Period", "Company", "Property", "Building", "Unit", "Receiver ID",
	"Rooms", "Floor", "Lettable Units", "Lettable Area", "Hash",
}

// LeaseColumns are the header cells of the Leases sheet.
var LeaseColumns = []string{
	"Period", "Property", "Lease", "Begin Rent Payment",
	"Contract Completion", "End Option", "Unit", "Hash",
}

// Save writes the report for c to path.
func Save(path string, c *model.Container) error {
	f, err := build(c)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// Write writes the report for c to w.
func Write(w io.Writer, c *model.Container) error {
	f, err := build(c)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// build lays out both sheets.
func build(c *model.Container) (*excelize.File, error) {
	f := excelize.NewFile()

	// NewFile starts with a single "Sheet1".
	if err := f.SetSheetName(f.GetSheetName(0), SheetUnits); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet %s: %w", SheetUnits, err)
	}
	if _, err := f.NewSheet(SheetLeases); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet %s: %w", SheetLeases, err)
	}

	units := &sheet{f: f, name: SheetUnits}
	leases := &sheet{f: f, name: SheetLeases}
	units.header(UnitColumns)
	leases.header(LeaseColumns)

	if c != nil {
		for _, pid := range model.SortedKeys(c.Periods) {
			period := c.Periods[pid]
			if period == nil || period.Data == nil {
				continue
			}
			addPeriod(units, leases, pid, period.Data)
		}
	}

	for _, s := range []*sheet{units, leases} {
		if s.err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to fill sheet %s: %w", s.name, s.err)
		}
	}
	return f, nil
}

func addPeriod(units, leases *sheet, period string, data *model.Data) {
	for _, cid := range model.SortedKeys(data.Companies) {
		company := data.Companies[cid]
		for _, propID := range model.SortedKeys(company.Properties) {
			prop := company.Properties[propID]
			if prop == nil {
				continue
			}

			for _, bid := range model.SortedKeys(prop.Buildings) {
				b := prop.Buildings[bid]
				for _, uid := range model.SortedKeys(b.Units) {
					u := b.Units[uid]
					units.row(
						period, cid, propID, bid, uid, u.ObjectIDReceiver,
						roomsCell(u.NumberOfRooms), floorCell(u.Address),
						lettableUnitsCell(u.LettableUnits), areaCell(u.LettableArea), u.Hash,
					)
				}
			}

			for _, lid := range model.SortedKeys(prop.Leases) {
				l := prop.Leases[lid]
				for _, hash := range model.SortedKeys(l.LeasedUnits) {
					unitID, _ := prop.UnitIDByHash(hash)
					leases.row(
						period, propID, lid,
						dateCell(l.BeginRentPayment), dateCell(l.ContractCompletionDate), dateCell(l.EndOptionDate),
						unitID, hash,
					)
				}
			}
		}
	}
}

// =============================================================================
// SHEET HELPERS
// =============================================================================

// sheet appends rows and keeps the first error.
type sheet struct {
	f    *excelize.File
	name string
	next int
	err  error
}

func (s *sheet) header(cols []string) {
	values := make([]interface{}, len(cols))
	for i, c := range cols {
		values[i] = c
	}
	s.row(values...)
	if s.err != nil {
		return
	}

	style, err := s.f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		s.err = err
		return
	}
	last, err := excelize.CoordinatesToCellName(len(cols), 1)
	if err != nil {
		s.err = err
		return
	}
	s.err = s.f.SetCellStyle(s.name, "A1", last, style)
}

func (s *sheet) row(values ...interface{}) {
	if s.err != nil {
		return
	}
	s.next++
	cell, err := excelize.CoordinatesToCellName(1, s.next)
	if err != nil {
		s.err = err
		return
	}
	s.err = s.f.SetSheetRow(s.name, cell, &values)
}

func roomsCell(v *float64) interface{} {
	if v == nil {
		return ""
	}
	return *v
}

func lettableUnitsCell(v *int) interface{} {
	if v == nil {
		return ""
	}
	return *v
}

func areaCell(a *model.Area) interface{} {
	if a == nil {
		return ""
	}
	return a.Value
}

func floorCell(a *model.Address) string {
	if a == nil {
		return ""
	}
	return a.Floor
}

func dateCell(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return fidji.FormatDate(t)
}
