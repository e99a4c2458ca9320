package posfile

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/A-Disruption/property-menu-builder-sub000/internal/domain"
)

// GroupStartPrefix opens the name of the synthetic record written before each item group.
const GroupStartPrefix = "****Start**** "

// Diagnostic is a soft failure: the record on Line was skipped or a value ignored.
type Diagnostic struct {
	Line    int    `json:"line"`
	Field   int    `json:"field,omitempty"`
	Message string `json:"message"`
}

func (d Diagnostic) String() string {
	if d.Field > 0 {
		return fmt.Sprintf("line %d field %d: %s", d.Line, d.Field, d.Message)
	}
	return fmt.Sprintf("line %d: %s", d.Line, d.Message)
}

// GroupMarker is a decoded group-start record.
type GroupMarker struct {
	GroupID domain.ID
	Start   domain.ID
	Name    string
}

// Batch is the outcome of decoding a whole stream.
type Batch struct {
	Items       []domain.Item
	Markers     []GroupMarker
	Records     int
	Skipped     int
	Diagnostics []Diagnostic
}

// fieldError locates a per-record failure. Field is one-based as in the file layout.
type fieldError struct {
	Field int
	Err   error
}

func (e *fieldError) Error() string { return fmt.Sprintf("field %d: %v", e.Field, e.Err) }
func (e *fieldError) Unwrap() error { return e.Err }

// Decode reads every record from r. Structural problems abort with an error;
// records with bad values are skipped and reported in the batch.
func Decode(r io.Reader) (*Batch, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read pos stream: %w", err)
	}
	escaped, err := Escape(raw)
	if err != nil {
		return nil, err
	}

	cr := csv.NewReader(bytes.NewReader(escaped))
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	batch := &Batch{}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse pos stream: %w", err)
		}
		line, _ := cr.FieldPos(0)
		if len(rec) != RecordFields {
			return nil, &FieldCountError{Line: line, Got: len(rec)}
		}
		batch.Records++
		for i := range rec {
			rec[i] = unescape(rec[i])
		}

		item, err := DecodeRecord(rec)
		if err != nil {
			d := Diagnostic{Line: line, Message: err.Error()}
			var fe *fieldError
			if errors.As(err, &fe) {
				d.Field = fe.Field
				d.Message = fe.Err.Error()
			}
			batch.Diagnostics = append(batch.Diagnostics, d)
			batch.Skipped++
			continue
		}
		if name, ok := strings.CutPrefix(item.Name, GroupStartPrefix); ok {
			if item.ItemGroup != nil {
				batch.Markers = append(batch.Markers, GroupMarker{GroupID: *item.ItemGroup, Start: item.ID, Name: name})
			}
			continue
		}
		batch.Items = append(batch.Items, item)
	}
	return batch, nil
}

// DecodeRecord converts one split, unescaped record into an item.
func DecodeRecord(rec []string) (domain.Item, error) {
	if len(rec) != RecordFields {
		return domain.Item{}, fmt.Errorf("record has %d fields: %w", len(rec), ErrFieldCount)
	}
	d := recordDecoder{rec: rec}
	var it domain.Item

	if m := strings.TrimSpace(rec[fMarker]); m != AddMarker {
		return it, &fieldError{Field: fMarker + 1, Err: fmt.Errorf("unknown record marker %q", m)}
	}
	id, err := parseID(rec[fID])
	if err != nil {
		return it, &fieldError{Field: fID + 1, Err: err}
	}
	if !id.IsPersisted() {
		return it, &fieldError{Field: fID + 1, Err: fmt.Errorf("item id %d is not a persisted id", id)}
	}
	it.ID = id
	it.Name = rec[fName]
	it.Button1 = rec[fButton1]
	it.Button2 = rec[fButton2]
	it.PrinterText = rec[fPrinterText]

	def, prices, err := DecodePrices(rec[fPrices])
	if err != nil {
		return it, &fieldError{Field: fPrices + 1, Err: err}
	}
	it.DefaultPrice = def
	it.ItemPrices = prices
	for _, p := range prices {
		it.PriceLevels = append(it.PriceLevels, p.LevelID)
	}

	it.ProductClass = d.optionalID(fProductClass)
	it.RevenueCategory = d.optionalID(fRevenueCategory)
	it.TaxGroup = d.optionalID(fTaxGroup)
	it.SecurityLevel = d.optionalID(fSecurityLevel)
	it.ReportCategory = d.optionalID(fReportCategory)
	it.UseWeight = ParseBool(rec[fUseWeight])
	if tare := d.optionalMoney(fWeightTare); tare != nil {
		it.WeightTare = *tare
	}
	it.SKU = decodeSKU(rec[fSKU])
	it.BarGunCode = strings.TrimSpace(rec[fBarGun])
	if cost := d.optionalMoney(fCost); cost != nil && !cost.IsZero() {
		it.Cost = cost
	}
	it.Reserved1 = ParseBool(rec[fReserved1])
	it.AskPrice = ParseBool(rec[fAskPrice])
	it.PrintOnCheck = ParseBool(rec[fPrintOnCheck])
	it.Discountable = ParseBool(rec[fDiscountable])
	it.Voidable = ParseBool(rec[fVoidable])
	it.NotActive = ParseBool(rec[fNotActive])
	it.TaxIncluded = ParseBool(rec[fTaxIncluded])
	it.ItemGroup = d.optionalID(fItemGroup)
	it.CustomerReceipt = rec[fCustomerReceipt]
	it.AllowPriceOverride = ParseBool(rec[fAllowPriceOverride])
	it.Reserved2 = ParseBool(rec[fReserved2])

	if d.err == nil {
		if it.ChoiceGroups, err = DecodeChoiceGroups(rec[fChoiceGroups]); err != nil {
			d.fail(fChoiceGroups, err)
		}
	}
	if d.err == nil {
		if it.PrinterLogicals, err = DecodePrinters(rec[fPrinterLogicals]); err != nil {
			d.fail(fPrinterLogicals, err)
		}
	}
	it.Covers = d.integer(fCovers)
	it.StoreID = d.integer(fStoreID)
	it.KitchenVideo = rec[fKitchenVideo]
	it.KDSDepartment = d.integer(fKDSDepartment)
	it.KDSCategory = rec[fKDSCategory]
	it.KDSCookTime = d.integer(fKDSCookTime)
	if d.err == nil {
		if it.StorePriceLevels, err = DecodeIDList(rec[fStorePriceLevels]); err != nil {
			d.fail(fStorePriceLevels, err)
		}
	}
	it.ImageID = d.integer(fImageID)
	it.StockItem = ParseBool(rec[fStockItem])
	it.LanguageISO = strings.TrimSpace(rec[fLanguage])

	if d.err != nil {
		return domain.Item{}, d.err
	}
	return it, nil
}

// recordDecoder keeps the first field failure so the scalar reads stay linear.
type recordDecoder struct {
	rec []string
	err error
}

func (d *recordDecoder) fail(field int, err error) {
	if d.err == nil {
		d.err = &fieldError{Field: field + 1, Err: err}
	}
}

func (d *recordDecoder) optionalID(field int) *domain.ID {
	id, err := ParseOptionalID(d.rec[field])
	if err != nil {
		d.fail(field, err)
		return nil
	}
	return id
}

func (d *recordDecoder) integer(field int) int {
	n, err := parseInt(d.rec[field])
	if err != nil {
		d.fail(field, err)
	}
	return n
}

func (d *recordDecoder) optionalMoney(field int) *decimal.Decimal {
	v, err := ParseOptionalMoney(d.rec[field])
	if err != nil {
		d.fail(field, err)
		return nil
	}
	return v
}
