package supereditor

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/A-Disruption/property-menu-builder-sub000/internal/domain"
)

type Logic int

const (
	And Logic = iota
	Or
)

var logicNames = map[Logic]string{And: "And", Or: "Or"}

func (l Logic) String() string { return enumString(l, logicNames) }

func ParseLogic(s string) (Logic, error) { return parseEnum(s, "logic", logicNames) }

// Field is the item attribute a condition inspects.
type Field int

const (
	FieldName Field = iota
	FieldID
	FieldPrice
	FieldItemGroup
	FieldProductClass
	FieldRevenueCategory
	FieldTaxGroup
	FieldSecurityLevel
	FieldReportCategory
	FieldChoiceGroup
	FieldPrinterLogical
	FieldPriceLevel
)

var fieldNames = map[Field]string{
	FieldName:            "Name",
	FieldID:              "Id",
	FieldPrice:           "Price",
	FieldItemGroup:       "ItemGroup",
	FieldProductClass:    "ProductClass",
	FieldRevenueCategory: "RevenueCategory",
	FieldTaxGroup:        "TaxGroup",
	FieldSecurityLevel:   "SecurityLevel",
	FieldReportCategory:  "ReportCategory",
	FieldChoiceGroup:     "ChoiceGroup",
	FieldPrinterLogical:  "PrinterLogical",
	FieldPriceLevel:      "PriceLevel",
}

func (f Field) String() string { return enumString(f, fieldNames) }

func ParseField(s string) (Field, error) { return parseEnum(s, "field", fieldNames) }

// RefKind maps a reference field to the entity kind it points at.
func (f Field) RefKind() (domain.Kind, bool) {
	switch f {
	case FieldItemGroup:
		return domain.KindItemGroup, true
	case FieldProductClass:
		return domain.KindProductClass, true
	case FieldRevenueCategory:
		return domain.KindRevenueCategory, true
	case FieldTaxGroup:
		return domain.KindTaxGroup, true
	case FieldSecurityLevel:
		return domain.KindSecurityLevel, true
	case FieldReportCategory:
		return domain.KindReportCategory, true
	case FieldChoiceGroup:
		return domain.KindChoiceGroup, true
	case FieldPrinterLogical:
		return domain.KindPrinterLogical, true
	case FieldPriceLevel:
		return domain.KindPriceLevel, true
	}
	return 0, false
}

func (f Field) multi() bool {
	return f == FieldChoiceGroup || f == FieldPrinterLogical || f == FieldPriceLevel
}

type Operator int

const (
	Contains Operator = iota
	DoesNotContain
	BeginsWith
	EndsWith
	Equals
	NotEquals
	GreaterThan
	GreaterOrEqual
	LessThan
	LessOrEqual
	Between
	IsEmpty
	IsNotEmpty
)

var operatorNames = map[Operator]string{
	Contains:       "Contains",
	DoesNotContain: "DoesNotContain",
	BeginsWith:     "BeginsWith",
	EndsWith:       "EndsWith",
	Equals:         "Equals",
	NotEquals:      "NotEquals",
	GreaterThan:    "GreaterThan",
	GreaterOrEqual: "GreaterOrEqual",
	LessThan:       "LessThan",
	LessOrEqual:    "LessOrEqual",
	Between:        "Between",
	IsEmpty:        "IsEmpty",
	IsNotEmpty:     "IsNotEmpty",
}

func (o Operator) String() string { return enumString(o, operatorNames) }

func ParseOperator(s string) (Operator, error) { return parseEnum(s, "operator", operatorNames) }

// Operators lists the operators a field accepts.
func (f Field) Operators() []Operator {
	switch {
	case f == FieldName:
		return []Operator{Contains, BeginsWith, EndsWith, IsEmpty, IsNotEmpty}
	case f == FieldID:
		return []Operator{GreaterThan, LessThan, Between}
	case f == FieldPrice:
		return []Operator{Equals, NotEquals, GreaterThan, GreaterOrEqual, LessThan, LessOrEqual, IsEmpty, IsNotEmpty}
	case f.multi():
		return []Operator{Contains, DoesNotContain, Equals, NotEquals, IsEmpty, IsNotEmpty}
	default:
		return []Operator{Contains, Equals, NotEquals, IsEmpty, IsNotEmpty}
	}
}

// Category is the item attribute an action changes.
type Category int

const (
	CategoryPrice Category = iota
	CategoryItemGroup
	CategoryProductClass
	CategoryRevenueCategory
	CategoryTaxGroup
	CategorySecurityLevel
	CategoryReportCategory
	CategoryChoiceGroup
	CategoryPrinterLogical
	CategoryPriceLevel
)

var categoryNames = map[Category]string{
	CategoryPrice:           "Price",
	CategoryItemGroup:       "ItemGroup",
	CategoryProductClass:    "ProductClass",
	CategoryRevenueCategory: "RevenueCategory",
	CategoryTaxGroup:        "TaxGroup",
	CategorySecurityLevel:   "SecurityLevel",
	CategoryReportCategory:  "ReportCategory",
	CategoryChoiceGroup:     "ChoiceGroup",
	CategoryPrinterLogical:  "PrinterLogical",
	CategoryPriceLevel:      "PriceLevel",
}

func (c Category) String() string { return enumString(c, categoryNames) }

func ParseCategory(s string) (Category, error) { return parseEnum(s, "category", categoryNames) }

func (c Category) kind() (domain.Kind, bool) {
	switch c {
	case CategoryItemGroup:
		return domain.KindItemGroup, true
	case CategoryProductClass:
		return domain.KindProductClass, true
	case CategoryRevenueCategory:
		return domain.KindRevenueCategory, true
	case CategoryTaxGroup:
		return domain.KindTaxGroup, true
	case CategorySecurityLevel:
		return domain.KindSecurityLevel, true
	case CategoryReportCategory:
		return domain.KindReportCategory, true
	case CategoryChoiceGroup:
		return domain.KindChoiceGroup, true
	case CategoryPrinterLogical:
		return domain.KindPrinterLogical, true
	case CategoryPriceLevel:
		return domain.KindPriceLevel, true
	}
	return 0, false
}

func (c Category) multi() bool {
	return c == CategoryChoiceGroup || c == CategoryPrinterLogical || c == CategoryPriceLevel
}

type Operation int

const (
	AddToPrice Operation = iota
	SubtractFromPrice
	SetPrice
	Add
	Remove
	SwapTo
)

var operationNames = map[Operation]string{
	AddToPrice:        "AddToPrice",
	SubtractFromPrice: "SubtractFromPrice",
	SetPrice:          "SetPrice",
	Add:               "Add",
	Remove:            "Remove",
	SwapTo:            "SwapTo",
}

func (o Operation) String() string { return enumString(o, operationNames) }

func ParseOperation(s string) (Operation, error) { return parseEnum(s, "operation", operationNames) }

// Operations lists the operations a category accepts.
func (c Category) Operations() []Operation {
	if c == CategoryPrice {
		return []Operation{AddToPrice, SubtractFromPrice, SetPrice}
	}
	return []Operation{Add, Remove, SwapTo}
}

// Condition is one filter predicate. Logic joins it to the conditions before it
// and is ignored on the first condition.
type Condition struct {
	Logic    Logic
	Field    Field
	Operator Operator
	Value    string
	// EntityID, when set, makes reference comparisons by id instead of by name.
	EntityID *domain.ID
}

func (c Condition) Valid() bool {
	return slices.Contains(c.Field.Operators(), c.Operator)
}

func (c Condition) String() string {
	target := fmt.Sprintf("%q", c.Value)
	if c.EntityID != nil {
		target = fmt.Sprintf("#%d", *c.EntityID)
	}
	if c.Operator == IsEmpty || c.Operator == IsNotEmpty {
		return fmt.Sprintf("%s %s", c.Field, c.Operator)
	}
	return fmt.Sprintf("%s %s %s", c.Field, c.Operator, target)
}

// DefaultPriceLevel addresses the item's default price in price actions.
const DefaultPriceLevel domain.ID = 0

// Action is one transform applied to every matching item.
type Action struct {
	Category     Category
	Operation    Operation
	Value        string
	EntityID     *domain.ID
	SwapFromID   *domain.ID
	PriceLevelID domain.ID
}

func (a Action) Valid() bool {
	return slices.Contains(a.Category.Operations(), a.Operation)
}

func (a Action) String() string {
	switch {
	case a.Category == CategoryPrice:
		level := "Default"
		if a.PriceLevelID != DefaultPriceLevel {
			level = fmt.Sprintf("level %d", a.PriceLevelID)
		}
		return fmt.Sprintf("%s %s %s", a.Operation, a.Value, level)
	case a.Operation == SwapTo:
		return fmt.Sprintf("%s SwapTo from=%s to=%s", a.Category, optID(a.SwapFromID), optID(a.EntityID))
	default:
		return fmt.Sprintf("%s %s %s", a.Category, a.Operation, optID(a.EntityID))
	}
}

func optID(id *domain.ID) string {
	if id == nil {
		return "?"
	}
	return fmt.Sprintf("%d", *id)
}

// Rule is a filter plus the actions applied to the items it selects.
type Rule struct {
	Conditions []Condition
	Actions    []Action
}

// DefaultRule selects every item and changes nothing.
func DefaultRule() Rule {
	return Rule{Conditions: []Condition{{Logic: And, Field: FieldName, Operator: Contains}}}
}

func (r Rule) Clone() Rule {
	out := Rule{
		Conditions: slices.Clone(r.Conditions),
		Actions:    slices.Clone(r.Actions),
	}
	return out
}

// Validate reports every condition and action whose operator does not fit its field.
func (r Rule) Validate() error {
	var errs []error
	for i, c := range r.Conditions {
		if !c.Valid() {
			errs = append(errs, fmt.Errorf("condition %d: %s does not support %s", i+1, c.Field, c.Operator))
		}
	}
	for i, a := range r.Actions {
		if !a.Valid() {
			errs = append(errs, fmt.Errorf("action %d: %s does not support %s", i+1, a.Category, a.Operation))
		}
	}
	return errors.Join(errs...)
}

func enumString[T ~int](v T, names map[T]string) string {
	if s, ok := names[v]; ok {
		return s
	}
	return fmt.Sprintf("%T(%d)", v, int(v))
}

func normalizeEnum(s string) string {
	return strings.ToLower(strings.NewReplacer(" ", "", "_", "", "-", "").Replace(strings.TrimSpace(s)))
}

func parseEnum[T ~int](s, what string, names map[T]string) (T, error) {
	want := normalizeEnum(s)
	for v, name := range names {
		if normalizeEnum(name) == want {
			return v, nil
		}
	}
	var zero T
	return zero, fmt.Errorf("unknown %s %q", what, s)
}
