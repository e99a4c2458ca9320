package domain

import (
	"fmt"
	"strings"
)

// ID identifies an entity within its kind.
type ID int32

// DraftID marks an entity that has not been saved into a catalog yet.
const DraftID ID = -1

func (id ID) IsDraft() bool { return id == DraftID }

// IsPersisted reports whether id can name a stored entity.
func (id ID) IsPersisted() bool { return id > 0 }

// Kind enumerates the entity collections of a catalog.
type Kind int

const (
	KindItem Kind = iota
	KindItemGroup
	KindPriceLevel
	KindTaxGroup
	KindSecurityLevel
	KindRevenueCategory
	KindReportCategory
	KindProductClass
	KindChoiceGroup
	KindPrinterLogical
)

// Kinds lists every kind, items first.
var Kinds = []Kind{
	KindItem,
	KindItemGroup,
	KindPriceLevel,
	KindTaxGroup,
	KindSecurityLevel,
	KindRevenueCategory,
	KindReportCategory,
	KindProductClass,
	KindChoiceGroup,
	KindPrinterLogical,
}

// NamedKinds are the reference kinds that carry nothing but an id and a name.
var NamedKinds = []Kind{
	KindSecurityLevel,
	KindRevenueCategory,
	KindReportCategory,
	KindProductClass,
	KindChoiceGroup,
	KindPrinterLogical,
}

var kindNames = map[Kind]string{
	KindItem:            "Item",
	KindItemGroup:       "Item Group",
	KindPriceLevel:      "Price Level",
	KindTaxGroup:        "Tax Group",
	KindSecurityLevel:   "Security Level",
	KindRevenueCategory: "Revenue Category",
	KindReportCategory:  "Report Category",
	KindProductClass:    "Product Class",
	KindChoiceGroup:     "Choice Group",
	KindPrinterLogical:  "Printer Logical",
}

var kindSlugs = map[Kind]string{
	KindItem:            "item",
	KindItemGroup:       "item_group",
	KindPriceLevel:      "price_level",
	KindTaxGroup:        "tax_group",
	KindSecurityLevel:   "security_level",
	KindRevenueCategory: "revenue_category",
	KindReportCategory:  "report_category",
	KindProductClass:    "product_class",
	KindChoiceGroup:     "choice_group",
	KindPrinterLogical:  "printer_logical",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Slug is the stable machine name used in storage keys and documents.
func (k Kind) Slug() string {
	return kindSlugs[k]
}

// ParseKind accepts either the slug or the display name, case-insensitively.
func ParseKind(s string) (Kind, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "_", "-", "_").Replace(norm)
	for k, slug := range kindSlugs {
		if slug == norm {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown entity kind %q", s)
}

// IDBounds returns the inclusive identifier bounds accepted for the kind.
func (k Kind) IDBounds() (lo, hi ID) {
	switch k {
	case KindTaxGroup:
		return 1, 99
	case KindRevenueCategory, KindReportCategory, KindPrinterLogical:
		return 0, 25
	case KindItem:
		return 1, 1<<31 - 1
	default:
		return 1, 999
	}
}

// InRange reports whether id is acceptable for the kind.
func (k Kind) InRange(id ID) bool {
	lo, hi := k.IDBounds()
	return id >= lo && id <= hi
}

// NameLimit is the maximum name length for the kind, 0 when unlimited.
func (k Kind) NameLimit() int {
	switch k {
	case KindSecurityLevel, KindRevenueCategory, KindReportCategory,
		KindProductClass, KindChoiceGroup, KindPrinterLogical:
		return 16
	default:
		return 0
	}
}

// PlaceholderName is the name given to entities manufactured for dangling references.
func (k Kind) PlaceholderName(id ID) string {
	return fmt.Sprintf("%s %d", k, id)
}

// Ref addresses one entity in a catalog.
type Ref struct {
	Kind Kind
	ID   ID
}

func (r Ref) String() string {
	return fmt.Sprintf("%s %d", r.Kind, r.ID)
}
