package supereditor

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/A-Disruption/property-menu-builder-sub000/internal/domain"
)

// View is the read-only catalog access the engine needs.
type View interface {
	Items() []domain.Item
	ResolveName(kind domain.Kind, id domain.ID) (string, bool)
}

// priceTolerance is the distance under which two prices compare equal.
var priceTolerance = domain.Cent

// Matches folds the rule's conditions left to right. The first condition's
// logic is ignored and And binds no tighter than Or. A rule without conditions
// selects every item.
func Matches(it domain.Item, rule Rule, view View) bool {
	conditions := rule.Conditions
	if len(conditions) == 0 {
		return true
	}
	acc := Evaluate(it, conditions[0], view)
	for _, c := range conditions[1:] {
		switch c.Logic {
		case Or:
			acc = acc || Evaluate(it, c, view)
		default:
			acc = acc && Evaluate(it, c, view)
		}
	}
	return acc
}

// Filter returns the ids of every item the rule selects, ascending.
func Filter(view View, rule Rule) []domain.ID {
	var ids []domain.ID
	for _, it := range view.Items() {
		if Matches(it, rule, view) {
			ids = append(ids, it.ID)
		}
	}
	return ids
}

// Evaluate tests one condition. Conditions with an operator their field does
// not accept, or with a value that cannot be read, are false.
func Evaluate(it domain.Item, c Condition, view View) bool {
	if !c.Valid() {
		return false
	}
	switch c.Field {
	case FieldName:
		return matchName(it.Name, c)
	case FieldID:
		return matchID(it.ID, c)
	case FieldPrice:
		return matchPrice(it, c)
	}
	kind, _ := c.Field.RefKind()
	if c.Field.multi() {
		return matchMulti(kind, multiRefIDs(it, c.Field), c, view)
	}
	return matchSingle(kind, *it.SingleRef(kind), c, view)
}

func fold(s string) string { return strings.ToLower(s) }

func matchName(name string, c Condition) bool {
	n, v := fold(name), fold(c.Value)
	switch c.Operator {
	case Contains:
		return strings.Contains(n, v)
	case BeginsWith:
		return strings.HasPrefix(n, v)
	case EndsWith:
		return strings.HasSuffix(n, v)
	case IsEmpty:
		return name == ""
	case IsNotEmpty:
		return name != ""
	}
	return false
}

func matchID(id domain.ID, c Condition) bool {
	switch c.Operator {
	case GreaterThan, LessThan:
		v, err := strconv.ParseInt(strings.TrimSpace(c.Value), 10, 64)
		if err != nil {
			return false
		}
		if c.Operator == GreaterThan {
			return int64(id) > v
		}
		return int64(id) < v
	case Between:
		from, to, ok := parseRange(c.Value)
		if !ok {
			return false
		}
		return int64(id) >= from && int64(id) <= to
	}
	return false
}

// parseRange reads an inclusive "from-to" pair.
func parseRange(s string) (int64, int64, bool) {
	lo, hi, found := strings.Cut(strings.TrimSpace(s), "-")
	if !found {
		return 0, 0, false
	}
	from, err := strconv.ParseInt(strings.TrimSpace(lo), 10, 64)
	if err != nil {
		return 0, 0, false
	}
	to, err := strconv.ParseInt(strings.TrimSpace(hi), 10, 64)
	if err != nil {
		return 0, 0, false
	}
	return from, to, true
}

func itemPrices(it domain.Item) []decimal.Decimal {
	var out []decimal.Decimal
	if it.DefaultPrice != nil {
		out = append(out, *it.DefaultPrice)
	}
	for _, p := range it.ItemPrices {
		out = append(out, p.Price)
	}
	return out
}

// matchPrice is true when the default price or any level price satisfies c.
func matchPrice(it domain.Item, c Condition) bool {
	prices := itemPrices(it)
	switch c.Operator {
	case IsEmpty:
		return len(prices) == 0
	case IsNotEmpty:
		return len(prices) > 0
	}
	want, err := domain.ParseMoney(c.Value)
	if err != nil {
		return false
	}
	for _, p := range prices {
		if comparePrice(p, want, c.Operator) {
			return true
		}
	}
	return false
}

func comparePrice(p, want decimal.Decimal, op Operator) bool {
	equal := p.Sub(want).Abs().LessThan(priceTolerance)
	switch op {
	case Equals:
		return equal
	case NotEquals:
		return !equal
	case GreaterThan:
		return p.GreaterThan(want)
	case GreaterOrEqual:
		return p.GreaterThanOrEqual(want)
	case LessThan:
		return p.LessThan(want)
	case LessOrEqual:
		return p.LessThanOrEqual(want)
	}
	return false
}

// refMatcher compares one referenced id with the condition: by id when the
// condition names an entity, otherwise by the resolved name.
func refMatcher(kind domain.Kind, c Condition, view View, substring bool) func(domain.ID) bool {
	if c.EntityID != nil {
		want := *c.EntityID
		return func(id domain.ID) bool { return id == want }
	}
	want := fold(c.Value)
	return func(id domain.ID) bool {
		name, _ := view.ResolveName(kind, id)
		if substring {
			return strings.Contains(fold(name), want)
		}
		return fold(name) == want
	}
}

func matchSingle(kind domain.Kind, ref *domain.ID, c Condition, view View) bool {
	switch c.Operator {
	case IsEmpty:
		return ref == nil
	case IsNotEmpty:
		return ref != nil
	case Contains:
		return ref != nil && refMatcher(kind, c, view, true)(*ref)
	case Equals:
		return ref != nil && refMatcher(kind, c, view, false)(*ref)
	case NotEquals:
		return ref == nil || !refMatcher(kind, c, view, false)(*ref)
	}
	return false
}

func matchMulti(kind domain.Kind, ids []domain.ID, c Condition, view View) bool {
	switch c.Operator {
	case IsEmpty:
		return len(ids) == 0
	case IsNotEmpty:
		return len(ids) > 0
	case Contains, DoesNotContain:
		match := refMatcher(kind, c, view, c.EntityID == nil)
		found := false
		for _, id := range ids {
			if match(id) {
				found = true
				break
			}
		}
		return found == (c.Operator == Contains)
	case Equals, NotEquals:
		match := refMatcher(kind, c, view, false)
		all := len(ids) > 0
		for _, id := range ids {
			if !match(id) {
				all = false
				break
			}
		}
		return all == (c.Operator == Equals)
	}
	return false
}

func multiRefIDs(it domain.Item, f Field) []domain.ID {
	var ids []domain.ID
	switch f {
	case FieldChoiceGroup:
		for _, g := range it.ChoiceGroups {
			ids = append(ids, g.ID)
		}
	case FieldPrinterLogical:
		for _, p := range it.PrinterLogicals {
			ids = append(ids, p.ID)
		}
	case FieldPriceLevel:
		ids = append(ids, it.PriceLevels...)
	}
	return ids
}
