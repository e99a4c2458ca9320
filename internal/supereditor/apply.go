package supereditor

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/A-Disruption/property-menu-builder-sub000/internal/domain"
)

// Diagnostic records an action that left an item untouched.
type Diagnostic struct {
	ItemID  domain.ID `json:"item_id,omitempty"`
	Action  int       `json:"action"`
	Message string    `json:"message"`
}

func (d Diagnostic) String() string {
	if d.ItemID != 0 {
		return fmt.Sprintf("action %d, item %d: %s", d.Action, d.ItemID, d.Message)
	}
	return fmt.Sprintf("action %d: %s", d.Action, d.Message)
}

// Apply runs every action in order over copies of items. Actions with unusable
// inputs are skipped; an action that would break an item leaves that item as
// the earlier actions left it. The input slice is not modified.
func Apply(items []domain.Item, actions []Action) ([]domain.Item, []Diagnostic) {
	out := make([]domain.Item, len(items))
	for i, it := range items {
		out[i] = it.Clone()
	}
	var diags []Diagnostic
	for n, a := range actions {
		num := n + 1
		if err := checkAction(a); err != nil {
			diags = append(diags, Diagnostic{Action: num, Message: err.Error()})
			continue
		}
		for i := range out {
			if err := applyOne(&out[i], a); err != nil {
				diags = append(diags, Diagnostic{ItemID: out[i].ID, Action: num, Message: err.Error()})
			}
		}
	}
	return out, diags
}

// checkAction rejects inputs that make an action meaningless for every item.
func checkAction(a Action) error {
	if !a.Valid() {
		return fmt.Errorf("%s does not support %s", a.Category, a.Operation)
	}
	if a.Category == CategoryPrice {
		if _, err := domain.ParseMoney(a.Value); err != nil {
			return fmt.Errorf("amount: %w", err)
		}
		if a.PriceLevelID < 0 {
			return fmt.Errorf("price level %d is not valid", a.PriceLevelID)
		}
		return nil
	}
	if a.EntityID == nil {
		return fmt.Errorf("%s %s needs a target id", a.Category, a.Operation)
	}
	if a.Operation == SwapTo && a.SwapFromID == nil {
		return fmt.Errorf("%s SwapTo needs the id to swap from", a.Category)
	}
	return nil
}

func applyOne(it *domain.Item, a Action) error {
	if a.Category == CategoryPrice {
		return applyPrice(it, a)
	}
	kind, _ := a.Category.kind()
	if !a.Category.multi() {
		applySingle(it.SingleRef(kind), a)
		return nil
	}
	switch a.Category {
	case CategoryChoiceGroup:
		applyChoiceGroup(it, a)
	case CategoryPrinterLogical:
		applyPrinter(it, a)
	case CategoryPriceLevel:
		applyPriceLevel(it, a)
	}
	return nil
}

func applyPrice(it *domain.Item, a Action) error {
	amount, err := domain.ParseMoney(a.Value)
	if err != nil {
		return err
	}

	var current *decimal.Decimal
	if a.PriceLevelID == DefaultPriceLevel {
		current = it.DefaultPrice
	} else if p, ok := it.PriceAt(a.PriceLevelID); ok {
		current = &p
	}

	var next decimal.Decimal
	switch a.Operation {
	case SetPrice:
		next = amount
	case AddToPrice:
		next = amount
		if current != nil {
			next = current.Add(amount)
		}
	case SubtractFromPrice:
		if current == nil {
			return nil
		}
		next = current.Sub(amount)
	}
	if next.IsNegative() {
		return fmt.Errorf("price would become %s", domain.FormatMoney(next))
	}

	if a.PriceLevelID == DefaultPriceLevel {
		it.DefaultPrice = &next
		return nil
	}
	for i := range it.ItemPrices {
		if it.ItemPrices[i].LevelID == a.PriceLevelID {
			it.ItemPrices[i].Price = next
			return nil
		}
	}
	it.ItemPrices = append(it.ItemPrices, domain.ItemPrice{LevelID: a.PriceLevelID, Price: next})
	if !slices.Contains(it.PriceLevels, a.PriceLevelID) {
		it.PriceLevels = append(it.PriceLevels, a.PriceLevelID)
	}
	return nil
}

// applySingle handles the optional single-valued references. Add assigns,
// Remove clears only the named value and SwapTo replaces only the from value.
func applySingle(ref **domain.ID, a Action) {
	to := *a.EntityID
	cur := *ref
	switch a.Operation {
	case Add:
		*ref = domain.IDPtr(to)
	case Remove:
		if cur != nil && *cur == to {
			*ref = nil
		}
	case SwapTo:
		if cur != nil && *cur == *a.SwapFromID {
			*ref = domain.IDPtr(to)
		}
	}
}

func applyChoiceGroup(it *domain.Item, a Action) {
	to := *a.EntityID
	switch a.Operation {
	case Add:
		if slices.ContainsFunc(it.ChoiceGroups, func(g domain.ChoiceGroupRef) bool { return g.ID == to }) {
			return
		}
		seq := 1
		for _, g := range it.ChoiceGroups {
			if g.Sequence >= seq {
				seq = g.Sequence + 1
			}
		}
		if n, err := strconv.Atoi(strings.TrimSpace(a.Value)); err == nil && n > 0 {
			seq = n
		}
		it.ChoiceGroups = append(it.ChoiceGroups, domain.ChoiceGroupRef{ID: to, Sequence: seq})
	case Remove:
		it.ChoiceGroups = slices.DeleteFunc(it.ChoiceGroups, func(g domain.ChoiceGroupRef) bool { return g.ID == to })
	case SwapTo:
		for i := range it.ChoiceGroups {
			if it.ChoiceGroups[i].ID == *a.SwapFromID {
				it.ChoiceGroups[i].ID = to
				return
			}
		}
	}
}

func applyPrinter(it *domain.Item, a Action) {
	to := *a.EntityID
	switch a.Operation {
	case Add:
		if slices.ContainsFunc(it.PrinterLogicals, func(p domain.PrinterRef) bool { return p.ID == to }) {
			return
		}
		it.PrinterLogicals = append(it.PrinterLogicals, domain.PrinterRef{ID: to, Primary: len(it.PrinterLogicals) == 0})
	case Remove:
		removedPrimary := false
		it.PrinterLogicals = slices.DeleteFunc(it.PrinterLogicals, func(p domain.PrinterRef) bool {
			if p.ID == to && p.Primary {
				removedPrimary = true
			}
			return p.ID == to
		})
		if removedPrimary && len(it.PrinterLogicals) > 0 {
			it.PrinterLogicals[0].Primary = true
		}
	case SwapTo:
		for i := range it.PrinterLogicals {
			if it.PrinterLogicals[i].ID == *a.SwapFromID {
				it.PrinterLogicals[i].ID = to
				return
			}
		}
	}
}

// applyPriceLevel keeps the level prices in step with the level list: removing
// a level drops its price and swapping a level moves it.
func applyPriceLevel(it *domain.Item, a Action) {
	to := *a.EntityID
	switch a.Operation {
	case Add:
		if !slices.Contains(it.PriceLevels, to) {
			it.PriceLevels = append(it.PriceLevels, to)
		}
	case Remove:
		it.PriceLevels = slices.DeleteFunc(it.PriceLevels, func(id domain.ID) bool { return id == to })
		it.ItemPrices = slices.DeleteFunc(it.ItemPrices, func(p domain.ItemPrice) bool { return p.LevelID == to })
	case SwapTo:
		from := *a.SwapFromID
		i := slices.Index(it.PriceLevels, from)
		if i < 0 {
			return
		}
		it.PriceLevels[i] = to
		for j := range it.ItemPrices {
			if it.ItemPrices[j].LevelID == from {
				it.ItemPrices[j].LevelID = to
				break
			}
		}
	}
}
