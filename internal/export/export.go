// Package export writes human-readable catalog listings as CSV or XLSX, with
// references shown by name.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/A-Disruption/property-menu-builder-sub000/internal/catalog"
	"github.com/A-Disruption/property-menu-builder-sub000/internal/domain"
)

var itemHeader = []string{
	"ID", "Name", "Button 1", "Button 2", "Item Group", "Default Price", "Level Prices", "Cost",
	"Tax Group", "Revenue Category", "Product Class", "Security Level", "Report Category",
	"Choice Groups", "Printers", "Active",
}

var itemWidths = []float64{10, 28, 16, 16, 22, 12, 28, 10, 18, 18, 18, 18, 18, 28, 24, 8}

var refHeader = []string{"Kind", "ID", "Name", "Detail"}

// resolve renders a reference as "Name (id)", or "#id" when it dangles.
func resolve(cat *catalog.Catalog, kind domain.Kind, id domain.ID) string {
	if name, ok := cat.ResolveName(kind, id); ok {
		return fmt.Sprintf("%s (%d)", name, id)
	}
	return fmt.Sprintf("#%d", id)
}

func resolveOpt(cat *catalog.Catalog, kind domain.Kind, id *domain.ID) string {
	if id == nil {
		return ""
	}
	return resolve(cat, kind, *id)
}

// ItemRows returns one row per item in ascending id order, header excluded.
func ItemRows(cat *catalog.Catalog) [][]string {
	var rows [][]string
	for _, it := range cat.Items() {
		price := ""
		if it.DefaultPrice != nil {
			price = domain.FormatMoney(*it.DefaultPrice)
		}
		cost := ""
		if it.Cost != nil {
			cost = domain.FormatMoney(*it.Cost)
		}
		var levels []string
		for _, p := range it.ItemPrices {
			name, ok := cat.ResolveName(domain.KindPriceLevel, p.LevelID)
			if !ok {
				name = fmt.Sprintf("#%d", p.LevelID)
			}
			levels = append(levels, fmt.Sprintf("%s: %s", name, domain.FormatMoney(p.Price)))
		}
		var choices []string
		for _, c := range it.ChoiceGroups {
			choices = append(choices, fmt.Sprintf("%d. %s", c.Sequence, resolve(cat, domain.KindChoiceGroup, c.ID)))
		}
		var printers []string
		for _, p := range it.PrinterLogicals {
			s := resolve(cat, domain.KindPrinterLogical, p.ID)
			if p.Primary {
				s += " *"
			}
			printers = append(printers, s)
		}
		active := "yes"
		if it.NotActive {
			active = "no"
		}
		rows = append(rows, []string{
			fmt.Sprintf("%d", it.ID),
			it.Name,
			it.Button1,
			it.Button2,
			resolveOpt(cat, domain.KindItemGroup, it.ItemGroup),
			price,
			strings.Join(levels, "; "),
			cost,
			resolveOpt(cat, domain.KindTaxGroup, it.TaxGroup),
			resolveOpt(cat, domain.KindRevenueCategory, it.RevenueCategory),
			resolveOpt(cat, domain.KindProductClass, it.ProductClass),
			resolveOpt(cat, domain.KindSecurityLevel, it.SecurityLevel),
			resolveOpt(cat, domain.KindReportCategory, it.ReportCategory),
			strings.Join(choices, "; "),
			strings.Join(printers, "; "),
			active,
		})
	}
	return rows
}

// ReferenceRows lists every non-item entity, kind by kind.
func ReferenceRows(cat *catalog.Catalog) [][]string {
	var rows [][]string
	for _, kind := range domain.Kinds[1:] {
		for _, e := range cat.Iter(kind) {
			detail := ""
			switch v := e.(type) {
			case domain.ItemGroup:
				detail = fmt.Sprintf("items %d-%d", v.Range.Start, v.Range.End-1)
			case domain.PriceLevel:
				detail = fmt.Sprintf("%s, %s", v.Type, domain.FormatMoney(v.Price))
			case domain.TaxGroup:
				detail = v.Percentage().StringFixedBank(2) + "%"
			}
			rows = append(rows, []string{kind.String(), fmt.Sprintf("%d", e.Ref().ID), e.DisplayName(), detail})
		}
	}
	return rows
}

// WriteCSV writes the item listing as CSV.
func WriteCSV(w io.Writer, cat *catalog.Catalog) error {
	cw := csv.NewWriter(w)
	_ = cw.Write(itemHeader)
	for _, row := range ItemRows(cat) {
		_ = cw.Write(row)
	}
	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes an Items sheet and a References sheet.
func WriteXLSX(w io.Writer, cat *catalog.Catalog) error {
	f := excelize.NewFile()
	defer f.Close()

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#1F2937"}, Pattern: 1},
	})
	if err != nil {
		return err
	}

	if _, err := f.NewSheet("Items"); err != nil {
		return err
	}
	if err := writeSheet(f, "Items", itemHeader, ItemRows(cat), header); err != nil {
		return err
	}
	for i, width := range itemWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		_ = f.SetColWidth("Items", col, col, width)
	}

	if _, err := f.NewSheet("References"); err != nil {
		return err
	}
	if err := writeSheet(f, "References", refHeader, ReferenceRows(cat), header); err != nil {
		return err
	}
	_ = f.SetColWidth("References", "A", "A", 18)
	_ = f.SetColWidth("References", "B", "B", 8)
	_ = f.SetColWidth("References", "C", "C", 24)
	_ = f.SetColWidth("References", "D", "D", 20)

	_ = f.DeleteSheet("Sheet1")
	if index, err := f.GetSheetIndex("Items"); err == nil {
		f.SetActiveSheet(index)
	}
	return f.Write(w)
}

func writeSheet(f *excelize.File, sheet string, header []string, rows [][]string, style int) error {
	for c, v := range header {
		cell, _ := excelize.CoordinatesToCellName(c+1, 1)
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	for r, row := range rows {
		for c, v := range row {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	last, _ := excelize.CoordinatesToCellName(len(header), 1)
	return f.SetCellStyle(sheet, "A1", last, style)
}
