package posfile

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/A-Disruption/property-menu-builder-sub000/internal/domain"
)

// RecordFields is the number of fields of every item record.
const RecordFields = 42

// Field positions, zero-based.
const (
	fMarker = iota
	fID
	fName
	fButton1
	fButton2
	fPrinterText
	fPrices
	fProductClass
	fRevenueCategory
	fTaxGroup
	fSecurityLevel
	fReportCategory
	fUseWeight
	fWeightTare
	fSKU
	fBarGun
	fCost
	fReserved1
	fAskPrice
	fPrintOnCheck
	fDiscountable
	fVoidable
	fNotActive
	fTaxIncluded
	fItemGroup
	fCustomerReceipt
	fAllowPriceOverride
	fReserved2
	fChoiceGroups
	fPrinterLogicals
	fCovers
	fStoreID
	fKitchenVideo
	fKDSDepartment
	fKDSCategory
	fKDSCookTime
	fStorePriceLevels
	fImageID
	fStockItem
	fLanguage
	fReserved3
	fReserved4
)

// AddMarker is the only record marker the format defines.
const AddMarker = "A"

// ParseBool accepts 1, Y, YES, TRUE, yes, y and true; anything else is false.
func ParseBool(s string) bool {
	switch strings.TrimSpace(s) {
	case "1", "Y", "YES", "TRUE", "yes", "y", "true":
		return true
	}
	return false
}

func formatBool(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// ParseOptionalID reads a reference id. Empty and 0 both mean absent.
func ParseOptionalID(s string) (*domain.ID, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" {
		return nil, nil
	}
	id, err := parseID(s)
	if err != nil {
		return nil, err
	}
	if id == 0 {
		return nil, nil
	}
	return &id, nil
}

func formatOptionalID(id *domain.ID) string {
	if id == nil {
		return "0"
	}
	return strconv.FormatInt(int64(*id), 10)
}

func parseID(s string) (domain.ID, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return domain.ID(n), nil
}

func parseInt(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid integer %q", s)
	}
	return n, nil
}

// ParseOptionalMoney reads a decimal that may be empty. A leading "$" is allowed.
func ParseOptionalMoney(s string) (*decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	d, err := domain.ParseMoney(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func formatDollars(d decimal.Decimal) string {
	return "$" + domain.FormatMoney(d)
}

// formatTare writes a zero tare as "0" and any other tare with at least two
// decimal places.
func formatTare(d decimal.Decimal) string {
	if d.IsZero() {
		return "0"
	}
	if d.Equal(d.Round(2)) {
		return d.StringFixed(2)
	}
	return d.String()
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// bare emits s unquoted unless it would be misread as more than one field.
func bare(s string) string {
	if s == "" {
		return ""
	}
	if strings.ContainsAny(s, ",\"\r\n{}") || s[0] == ' ' || s[0] == '\t' {
		return quote(s)
	}
	return s
}

// splitBrace returns the comma-separated members of a {...} list. Empty input,
// "" and {} are all the empty list.
func splitBrace(s string) ([]string, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == `""` {
		return nil, nil
	}
	if !strings.HasPrefix(s, "{") || !strings.HasSuffix(s, "}") {
		return nil, fmt.Errorf("brace list %q is not enclosed in {}", s)
	}
	inner := strings.TrimSpace(s[1 : len(s)-1])
	if inner == "" {
		return nil, nil
	}
	parts := strings.Split(inner, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts, nil
}

func joinBrace(parts []string) string {
	return "{" + strings.Join(parts, ",") + "}"
}

func pairs(parts []string, what string) error {
	if len(parts)%2 != 0 {
		return fmt.Errorf("%s list has %d members, want pairs", what, len(parts))
	}
	return nil
}

// DecodePrices reads the price field. The first pair is the default price; every
// later pair is stored one level below its on-file level id.
func DecodePrices(s string) (*decimal.Decimal, []domain.ItemPrice, error) {
	parts, err := splitBrace(s)
	if err != nil {
		return nil, nil, err
	}
	if err := pairs(parts, "price"); err != nil {
		return nil, nil, err
	}
	var def *decimal.Decimal
	var prices []domain.ItemPrice
	for i := 0; i < len(parts); i += 2 {
		level, err := parseID(parts[i])
		if err != nil {
			return nil, nil, fmt.Errorf("price level: %w", err)
		}
		price, err := domain.ParseMoney(parts[i+1])
		if err != nil {
			return nil, nil, fmt.Errorf("price at level %d: %w", level, err)
		}
		if i == 0 {
			def = &price
			continue
		}
		prices = append(prices, domain.ItemPrice{LevelID: level - 1, Price: price})
	}
	return def, prices, nil
}

// EncodePrices is the inverse of DecodePrices. An item with neither a default
// price nor level prices is written as "".
func EncodePrices(def *decimal.Decimal, prices []domain.ItemPrice) string {
	if def == nil && len(prices) == 0 {
		return `""`
	}
	d := decimal.Zero
	if def != nil {
		d = *def
	}
	parts := make([]string, 0, 2+2*len(prices))
	parts = append(parts, "1", formatDollars(d))
	for _, p := range prices {
		parts = append(parts, strconv.FormatInt(int64(p.LevelID)+1, 10), formatDollars(p.Price))
	}
	return joinBrace(parts)
}

func DecodeChoiceGroups(s string) ([]domain.ChoiceGroupRef, error) {
	parts, err := splitBrace(s)
	if err != nil {
		return nil, err
	}
	if err := pairs(parts, "choice group"); err != nil {
		return nil, err
	}
	var out []domain.ChoiceGroupRef
	for i := 0; i < len(parts); i += 2 {
		id, err := parseID(parts[i])
		if err != nil {
			return nil, fmt.Errorf("choice group: %w", err)
		}
		seq, err := parseInt(parts[i+1])
		if err != nil {
			return nil, fmt.Errorf("choice group %d sequence: %w", id, err)
		}
		out = append(out, domain.ChoiceGroupRef{ID: id, Sequence: seq})
	}
	return out, nil
}

func EncodeChoiceGroups(groups []domain.ChoiceGroupRef) string {
	parts := make([]string, 0, 2*len(groups))
	for _, g := range groups {
		parts = append(parts, strconv.FormatInt(int64(g.ID), 10), strconv.Itoa(g.Sequence))
	}
	return joinBrace(parts)
}

func DecodePrinters(s string) ([]domain.PrinterRef, error) {
	parts, err := splitBrace(s)
	if err != nil {
		return nil, err
	}
	if err := pairs(parts, "printer"); err != nil {
		return nil, err
	}
	var out []domain.PrinterRef
	for i := 0; i < len(parts); i += 2 {
		id, err := parseID(parts[i])
		if err != nil {
			return nil, fmt.Errorf("printer logical: %w", err)
		}
		out = append(out, domain.PrinterRef{ID: id, Primary: ParseBool(parts[i+1])})
	}
	return out, nil
}

func EncodePrinters(printers []domain.PrinterRef) string {
	parts := make([]string, 0, 2*len(printers))
	for _, p := range printers {
		parts = append(parts, strconv.FormatInt(int64(p.ID), 10), formatBool(p.Primary))
	}
	return joinBrace(parts)
}

// DecodeIDList reads a plain {id,id,...} list such as the store price levels.
func DecodeIDList(s string) ([]domain.ID, error) {
	parts, err := splitBrace(s)
	if err != nil {
		return nil, err
	}
	var out []domain.ID
	for _, p := range parts {
		id, err := parseID(p)
		if err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, nil
}

func EncodeIDList(ids []domain.ID) string {
	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, strconv.FormatInt(int64(id), 10))
	}
	return joinBrace(parts)
}

// decodeSKU strips the braces the POS wraps around SKUs.
func decodeSKU(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "{") && strings.HasSuffix(s, "}") {
		return s[1 : len(s)-1]
	}
	return s
}

func encodeSKU(s string) string {
	return "{" + s + "}"
}
