package posfile

import (
	"bufio"
	"cmp"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/A-Disruption/property-menu-builder-sub000/internal/catalog"
	"github.com/A-Disruption/property-menu-builder-sub000/internal/domain"
)

const fieldSeparator = ", "

// EncodeItem renders one record without a line terminator.
func EncodeItem(it domain.Item) string {
	cost := "$0.00 "
	if it.Cost != nil {
		cost = formatDollars(*it.Cost) + " "
	}
	kdsCategory := `""`
	if it.KDSCategory != "" {
		kdsCategory = bare(it.KDSCategory)
	}

	fields := [RecordFields]string{
		fMarker:             quote(AddMarker),
		fID:                 strconv.FormatInt(int64(it.ID), 10),
		fName:               quote(it.Name),
		fButton1:            quote(it.Button1),
		fButton2:            quote(it.Button2),
		fPrinterText:        quote(it.PrinterText),
		fPrices:             EncodePrices(it.DefaultPrice, it.ItemPrices),
		fProductClass:       formatOptionalID(it.ProductClass),
		fRevenueCategory:    formatOptionalID(it.RevenueCategory),
		fTaxGroup:           formatOptionalID(it.TaxGroup),
		fSecurityLevel:      formatOptionalID(it.SecurityLevel),
		fReportCategory:     formatOptionalID(it.ReportCategory),
		fUseWeight:          formatBool(it.UseWeight),
		fWeightTare:         formatTare(it.WeightTare),
		fSKU:                encodeSKU(it.SKU),
		fBarGun:             bare(it.BarGunCode),
		fCost:               cost,
		fReserved1:          formatBool(it.Reserved1),
		fAskPrice:           formatBool(it.AskPrice),
		fPrintOnCheck:       formatBool(it.PrintOnCheck),
		fDiscountable:       formatBool(it.Discountable),
		fVoidable:           formatBool(it.Voidable),
		fNotActive:          formatBool(it.NotActive),
		fTaxIncluded:        formatBool(it.TaxIncluded),
		fItemGroup:          formatOptionalID(it.ItemGroup),
		fCustomerReceipt:    quote(it.CustomerReceipt),
		fAllowPriceOverride: formatBool(it.AllowPriceOverride),
		fReserved2:          formatBool(it.Reserved2),
		fChoiceGroups:       EncodeChoiceGroups(it.ChoiceGroups),
		fPrinterLogicals:    EncodePrinters(it.PrinterLogicals),
		fCovers:             strconv.Itoa(it.Covers),
		fStoreID:            strconv.Itoa(it.StoreID),
		fKitchenVideo:       quote(it.KitchenVideo),
		fKDSDepartment:      strconv.Itoa(it.KDSDepartment),
		fKDSCategory:        kdsCategory,
		fKDSCookTime:        strconv.Itoa(it.KDSCookTime),
		fStorePriceLevels:   EncodeIDList(it.StorePriceLevels),
		fImageID:            strconv.Itoa(it.ImageID),
		fStockItem:          formatBool(it.StockItem),
		fLanguage:           quote(it.LanguageISO),
		fReserved3:          "0",
		fReserved4:          `""`,
	}
	return strings.Join(fields[:], fieldSeparator)
}

// LineEnding terminates every written record.
type LineEnding string

const (
	LF   LineEnding = "\n"
	CRLF LineEnding = "\r\n"
)

// ParseLineEnding accepts "lf" and "crlf"; empty means LF.
func ParseLineEnding(s string) (LineEnding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "lf":
		return LF, nil
	case "crlf":
		return CRLF, nil
	}
	return "", fmt.Errorf("unknown line ending %q", s)
}

// Name is the form ParseLineEnding accepts.
func (l LineEnding) Name() string {
	if l == CRLF {
		return "crlf"
	}
	return "lf"
}

// Encoder writes item records to an underlying writer.
type Encoder struct {
	w   *bufio.Writer
	eol LineEnding
}

type EncoderOption func(*Encoder)

func WithLineEnding(eol LineEnding) EncoderOption {
	return func(e *Encoder) {
		if eol != "" {
			e.eol = eol
		}
	}
}

func NewEncoder(w io.Writer, opts ...EncoderOption) *Encoder {
	e := &Encoder{w: bufio.NewWriter(w), eol: LF}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Encode writes one record. Call Flush when done.
func (e *Encoder) Encode(it domain.Item) error {
	if _, err := e.w.WriteString(EncodeItem(it)); err != nil {
		return err
	}
	_, err := e.w.WriteString(string(e.eol))
	return err
}

func (e *Encoder) Flush() error {
	return e.w.Flush()
}

// WriteItems writes the export sequence of items and flushes.
func (e *Encoder) WriteItems(items []domain.Item, groups map[domain.ID]domain.ItemGroup) (int, error) {
	records := ExportOrder(items, groups)
	for _, it := range records {
		if err := e.Encode(it); err != nil {
			return 0, fmt.Errorf("write item %d: %w", it.ID, err)
		}
	}
	if err := e.Flush(); err != nil {
		return 0, fmt.Errorf("flush pos stream: %w", err)
	}
	return len(records), nil
}

// WriteCatalog exports every item of cat, grouped when cat has item groups.
func (e *Encoder) WriteCatalog(cat *catalog.Catalog) (int, error) {
	return e.WriteItems(cat.Items(), cat.GroupMap())
}

// ExportOrder returns the records an export writes. Without groups that is every
// item by ascending id. With groups, items are emitted group by group in
// ascending group id, each group preceded by a group-start copy of its first
// item; items outside the supplied groups are left out.
func ExportOrder(items []domain.Item, groups map[domain.ID]domain.ItemGroup) []domain.Item {
	sorted := slices.Clone(items)
	slices.SortFunc(sorted, func(a, b domain.Item) int { return cmp.Compare(a.ID, b.ID) })
	if len(groups) == 0 {
		return sorted
	}

	byGroup := make(map[domain.ID][]domain.Item)
	for _, it := range sorted {
		if it.ItemGroup == nil {
			continue
		}
		if _, ok := groups[*it.ItemGroup]; !ok {
			continue
		}
		byGroup[*it.ItemGroup] = append(byGroup[*it.ItemGroup], it)
	}

	groupIDs := make([]domain.ID, 0, len(byGroup))
	for id := range byGroup {
		groupIDs = append(groupIDs, id)
	}
	slices.Sort(groupIDs)

	out := make([]domain.Item, 0, len(sorted)+len(groupIDs))
	for _, gid := range groupIDs {
		members := byGroup[gid]
		out = append(out, GroupStart(groups[gid], members[0]))
		out = append(out, members...)
	}
	return out
}

// GroupStart builds the synthetic record that opens group g in an export.
func GroupStart(g domain.ItemGroup, first domain.Item) domain.Item {
	start := first.Clone()
	start.ID = g.Range.Start
	start.Name = GroupStartPrefix + g.Name
	return start
}
