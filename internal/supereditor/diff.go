package supereditor

import (
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/A-Disruption/property-menu-builder-sub000/internal/domain"
)

// FieldChange is one attribute that differs between an item and its edited copy.
type FieldChange struct {
	Field  string `json:"field"`
	Before string `json:"before"`
	After  string `json:"after"`
}

func (c FieldChange) String() string {
	return fmt.Sprintf("%s: %s -> %s", c.Field, display(c.Before), display(c.After))
}

func display(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}

// Diff lists the attribute changes from before to after in a fixed order.
func Diff(before, after domain.Item) []FieldChange {
	var out []FieldChange
	add := func(field, b, a string) {
		if b != a {
			out = append(out, FieldChange{Field: field, Before: b, After: a})
		}
	}

	add("Name", before.Name, after.Name)
	add("Button 1", before.Button1, after.Button1)
	add("Button 2", before.Button2, after.Button2)
	add("Default Price", moneyText(before.DefaultPrice), moneyText(after.DefaultPrice))

	levels := priceLevelIDs(before, after)
	for _, lvl := range levels {
		b, bok := before.PriceAt(lvl)
		a, aok := after.PriceAt(lvl)
		add(fmt.Sprintf("Price Level %d", lvl), optMoney(b, bok), optMoney(a, aok))
	}

	for _, kind := range []domain.Kind{domain.KindItemGroup, domain.KindProductClass, domain.KindRevenueCategory,
		domain.KindTaxGroup, domain.KindSecurityLevel, domain.KindReportCategory} {
		add(kind.String(), idText(*before.SingleRef(kind)), idText(*after.SingleRef(kind)))
	}

	add("Choice Groups", choiceText(before.ChoiceGroups), choiceText(after.ChoiceGroups))
	add("Printer Logicals", printerText(before.PrinterLogicals), printerText(after.PrinterLogicals))
	add("Price Levels", idsText(before.PriceLevels), idsText(after.PriceLevels))
	add("Store Price Levels", idsText(before.StorePriceLevels), idsText(after.StorePriceLevels))

	if len(out) == 0 && !before.Equal(after) {
		out = append(out, FieldChange{Field: "Other", Before: "", After: "changed"})
	}
	return out
}

func priceLevelIDs(items ...domain.Item) []domain.ID {
	var ids []domain.ID
	for _, it := range items {
		for _, p := range it.ItemPrices {
			if !slices.Contains(ids, p.LevelID) {
				ids = append(ids, p.LevelID)
			}
		}
	}
	slices.Sort(ids)
	return ids
}

func moneyText(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return domain.FormatMoney(*d)
}

func optMoney(d decimal.Decimal, ok bool) string {
	if !ok {
		return ""
	}
	return domain.FormatMoney(d)
}

func idText(id *domain.ID) string {
	if id == nil {
		return ""
	}
	return fmt.Sprintf("%d", *id)
}

func idsText(ids []domain.ID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return strings.Join(parts, ", ")
}

func choiceText(groups []domain.ChoiceGroupRef) string {
	parts := make([]string, len(groups))
	for i, g := range groups {
		parts[i] = fmt.Sprintf("%d#%d", g.ID, g.Sequence)
	}
	return strings.Join(parts, ", ")
}

// printerText marks the primary printer with a trailing asterisk.
func printerText(printers []domain.PrinterRef) string {
	parts := make([]string, len(printers))
	for i, p := range printers {
		parts[i] = fmt.Sprintf("%d", p.ID)
		if p.Primary {
			parts[i] += "*"
		}
	}
	return strings.Join(parts, ", ")
}
