package domain

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/shopspring/decimal"
)

type ValidationKind int

const (
	InvalidID ValidationKind = iota + 1
	DuplicateID
	EmptyName
	NameTooLong
	InvalidRange
	RangeOverlap
	InvalidValue
	InvalidReference
	InvalidRate
	InvalidPrice
	MissingItemGroup
	MissingRevenueCategory
)

var validationKindNames = map[ValidationKind]string{
	InvalidID:              "InvalidId",
	DuplicateID:            "DuplicateId",
	EmptyName:              "EmptyName",
	NameTooLong:            "NameTooLong",
	InvalidRange:           "InvalidRange",
	RangeOverlap:           "RangeOverlap",
	InvalidValue:           "InvalidValue",
	InvalidReference:       "InvalidReference",
	InvalidRate:            "InvalidRate",
	InvalidPrice:           "InvalidPrice",
	MissingItemGroup:       "MissingItemGroup",
	MissingRevenueCategory: "MissingRevenueCategory",
}

func (k ValidationKind) String() string {
	if s, ok := validationKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("ValidationKind(%d)", int(k))
}

// ValidationError is a broken entity rule with a message fit for the status area.
type ValidationError struct {
	Kind    ValidationKind
	Ref     Ref
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is matches another *ValidationError with the same Kind, so callers can test
// errors.Is(err, &ValidationError{Kind: RangeOverlap}).
func (e *ValidationError) Is(target error) bool {
	var t *ValidationError
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

func invalid(kind ValidationKind, ref Ref, format string, args ...any) *ValidationError {
	return &ValidationError{Kind: kind, Ref: ref, Message: fmt.Sprintf(format, args...)}
}

// KindOf extracts the validation kind from err, 0 when err is not a validation error.
func KindOf(err error) ValidationKind {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Kind
	}
	return 0
}

// Resolver is the read view of a catalog that cross-entity rules need.
type Resolver interface {
	Has(ref Ref) bool
	ItemGroup(id ID) (ItemGroup, bool)
	ItemGroups() []ItemGroup
}

const buttonLimit = 15

// Validate checks one entity against the rules of its kind. It returns the first
// failure in the order: identifier, name, values and ranges, references. A nil
// resolver skips the cross-entity checks.
func Validate(e Entity, res Resolver) error {
	switch v := e.(type) {
	case Item:
		return validateItem(v, res)
	case ItemGroup:
		return validateItemGroup(v, res)
	case PriceLevel:
		return validatePriceLevel(v)
	case TaxGroup:
		return validateTaxGroup(v)
	case Named:
		return validateNamed(v)
	}
	return fmt.Errorf("unsupported entity %T", e)
}

func validateID(ref Ref) *ValidationError {
	if ref.ID.IsDraft() {
		return invalid(InvalidID, ref, "%s has not been assigned an id", ref.Kind)
	}
	if !ref.Kind.InRange(ref.ID) {
		lo, hi := ref.Kind.IDBounds()
		return invalid(InvalidID, ref, "%s id %d outside %d-%d", ref.Kind, ref.ID, lo, hi)
	}
	return nil
}

func validateName(ref Ref, name string) *ValidationError {
	if name == "" {
		return invalid(EmptyName, ref, "%s %d needs a name", ref.Kind, ref.ID)
	}
	if limit := ref.Kind.NameLimit(); limit > 0 && utf8.RuneCountInString(name) > limit {
		return invalid(NameTooLong, ref, "%s name %q longer than %d characters", ref.Kind, name, limit)
	}
	return nil
}

func validateNamed(n Named) error {
	ref := n.Ref()
	if err := validateID(ref); err != nil {
		return err
	}
	if err := validateName(ref, n.Name); err != nil {
		return err
	}
	return nil
}

func validatePriceLevel(p PriceLevel) error {
	ref := p.Ref()
	if err := validateID(ref); err != nil {
		return err
	}
	if err := validateName(ref, p.Name); err != nil {
		return err
	}
	if p.Price.IsNegative() {
		return invalid(InvalidPrice, ref, "price level %d price %s is negative", p.ID, FormatMoney(p.Price))
	}
	if !p.Type.Valid() {
		return invalid(InvalidValue, ref, "price level %d has unknown type %q", p.ID, p.Type)
	}
	return nil
}

func validateTaxGroup(t TaxGroup) error {
	ref := t.Ref()
	if err := validateID(ref); err != nil {
		return err
	}
	if err := validateName(ref, t.Name); err != nil {
		return err
	}
	if t.Rate.IsNegative() || t.Rate.GreaterThan(decimal.NewFromInt(1)) {
		return invalid(InvalidRate, ref, "tax group %d rate %s outside 0-1", t.ID, t.Rate)
	}
	return nil
}

func validateItemGroup(g ItemGroup, res Resolver) error {
	ref := g.Ref()
	if err := validateID(ref); err != nil {
		return err
	}
	if err := validateName(ref, g.Name); err != nil {
		return err
	}
	if g.Range.Start <= 0 || g.Range.End <= g.Range.Start {
		return invalid(InvalidRange, ref, "item group %d range [%d, %d) is empty or not positive",
			g.ID, g.Range.Start, g.Range.End)
	}
	if res == nil {
		return nil
	}
	for _, other := range res.ItemGroups() {
		if other.ID == g.ID {
			continue
		}
		if g.Range.Overlaps(other.Range) {
			return invalid(RangeOverlap, ref, "item group %d range [%d, %d) overlaps item group %d [%d, %d)",
				g.ID, g.Range.Start, g.Range.End, other.ID, other.Range.Start, other.Range.End)
		}
	}
	return nil
}

func validateItem(it Item, res Resolver) error {
	ref := it.Ref()
	if err := validateID(ref); err != nil {
		return err
	}

	if err := validateName(ref, it.Name); err != nil {
		return err
	}
	if it.Button1 == "" {
		return invalid(EmptyName, ref, "item %d needs button text", it.ID)
	}
	if utf8.RuneCountInString(it.Button1) > buttonLimit {
		return invalid(NameTooLong, ref, "item %d button 1 %q longer than %d characters", it.ID, it.Button1, buttonLimit)
	}
	if utf8.RuneCountInString(it.Button2) > buttonLimit {
		return invalid(NameTooLong, ref, "item %d button 2 %q longer than %d characters", it.ID, it.Button2, buttonLimit)
	}

	if it.DefaultPrice != nil && it.DefaultPrice.IsNegative() {
		return invalid(InvalidPrice, ref, "item %d default price is negative", it.ID)
	}
	for _, p := range it.ItemPrices {
		if p.Price.IsNegative() {
			return invalid(InvalidPrice, ref, "item %d price at level %d is negative", it.ID, p.LevelID)
		}
	}
	if it.Cost != nil && it.Cost.IsNegative() {
		return invalid(InvalidPrice, ref, "item %d cost is negative", it.ID)
	}
	if !it.UseWeight && !it.WeightTare.IsZero() {
		return invalid(InvalidValue, ref, "item %d has a weight amount but does not use weight", it.ID)
	}
	if it.WeightTare.IsNegative() {
		return invalid(InvalidValue, ref, "item %d weight amount is negative", it.ID)
	}
	if len(it.PrinterLogicals) > 0 {
		primaries := 0
		for _, p := range it.PrinterLogicals {
			if p.Primary {
				primaries++
			}
		}
		if primaries != 1 {
			return invalid(InvalidValue, ref, "item %d has %d primary printers, want exactly 1", it.ID, primaries)
		}
	}

	if res == nil {
		return nil
	}
	if it.ItemGroup != nil {
		g, ok := res.ItemGroup(*it.ItemGroup)
		if !ok {
			return invalid(MissingItemGroup, ref, "item %d references missing item group %d", it.ID, *it.ItemGroup)
		}
		if !g.Range.Contains(it.ID) {
			return invalid(InvalidRange, ref, "item %d outside item group %d range [%d, %d)",
				it.ID, g.ID, g.Range.Start, g.Range.End)
		}
	}
	if it.RevenueCategory != nil && !res.Has(Ref{Kind: KindRevenueCategory, ID: *it.RevenueCategory}) {
		return invalid(MissingRevenueCategory, ref, "item %d references missing revenue category %d",
			it.ID, *it.RevenueCategory)
	}
	for _, r := range it.Refs() {
		if r.Kind == KindItemGroup || r.Kind == KindRevenueCategory {
			continue
		}
		if !res.Has(r) {
			return invalid(InvalidReference, ref, "item %d references missing %s", it.ID, r)
		}
	}
	return nil
}
