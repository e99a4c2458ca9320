package catalog

import (
	"fmt"
	"maps"
	"slices"

	"github.com/A-Disruption/property-menu-builder-sub000/internal/domain"
)

// Catalog owns every entity collection of one editing session. It has a single
// writer: the editor service or the rule engine's commit step.
type Catalog struct {
	items       map[domain.ID]domain.Item
	itemGroups  map[domain.ID]domain.ItemGroup
	priceLevels map[domain.ID]domain.PriceLevel
	taxGroups   map[domain.ID]domain.TaxGroup
	named       map[domain.Kind]map[domain.ID]domain.Named
}

var _ domain.Resolver = (*Catalog)(nil)

func New() *Catalog {
	c := &Catalog{
		items:       make(map[domain.ID]domain.Item),
		itemGroups:  make(map[domain.ID]domain.ItemGroup),
		priceLevels: make(map[domain.ID]domain.PriceLevel),
		taxGroups:   make(map[domain.ID]domain.TaxGroup),
		named:       make(map[domain.Kind]map[domain.ID]domain.Named, len(domain.NamedKinds)),
	}
	for _, k := range domain.NamedKinds {
		c.named[k] = make(map[domain.ID]domain.Named)
	}
	return c
}

// Insert stores e, replacing any entity of the same kind and id. Only the
// identifier is checked here; full validation happens in Create and Commit.
func (c *Catalog) Insert(e domain.Entity) error {
	ref := e.Ref()
	if ref.ID.IsDraft() {
		return fmt.Errorf("insert %s: %w", ref.Kind, domain.ErrDraft)
	}
	if !ref.Kind.InRange(ref.ID) {
		lo, hi := ref.Kind.IDBounds()
		return &domain.ValidationError{
			Kind:    domain.InvalidID,
			Ref:     ref,
			Message: fmt.Sprintf("%s id %d outside %d-%d", ref.Kind, ref.ID, lo, hi),
		}
	}
	switch v := e.(type) {
	case domain.Item:
		c.items[v.ID] = v.Clone()
	case domain.ItemGroup:
		c.itemGroups[v.ID] = v
	case domain.PriceLevel:
		c.priceLevels[v.ID] = v
	case domain.TaxGroup:
		c.taxGroups[v.ID] = v
	case domain.Named:
		m, ok := c.named[v.Kind]
		if !ok {
			return fmt.Errorf("insert: %s is not a named kind", v.Kind)
		}
		m[v.ID] = v
	default:
		return fmt.Errorf("insert: unsupported entity %T", e)
	}
	return nil
}

// Get returns the entity addressed by ref.
func (c *Catalog) Get(ref domain.Ref) (domain.Entity, bool) {
	switch ref.Kind {
	case domain.KindItem:
		it, ok := c.items[ref.ID]
		if !ok {
			return nil, false
		}
		return it.Clone(), true
	case domain.KindItemGroup:
		g, ok := c.itemGroups[ref.ID]
		return g, ok
	case domain.KindPriceLevel:
		p, ok := c.priceLevels[ref.ID]
		return p, ok
	case domain.KindTaxGroup:
		t, ok := c.taxGroups[ref.ID]
		return t, ok
	default:
		n, ok := c.named[ref.Kind][ref.ID]
		return n, ok
	}
}

func (c *Catalog) Has(ref domain.Ref) bool {
	switch ref.Kind {
	case domain.KindItem:
		_, ok := c.items[ref.ID]
		return ok
	case domain.KindItemGroup:
		_, ok := c.itemGroups[ref.ID]
		return ok
	case domain.KindPriceLevel:
		_, ok := c.priceLevels[ref.ID]
		return ok
	case domain.KindTaxGroup:
		_, ok := c.taxGroups[ref.ID]
		return ok
	default:
		_, ok := c.named[ref.Kind][ref.ID]
		return ok
	}
}

// Item returns a copy of the stored item; callers may mutate it freely.
func (c *Catalog) Item(id domain.ID) (domain.Item, bool) {
	it, ok := c.items[id]
	if !ok {
		return domain.Item{}, false
	}
	return it.Clone(), true
}

func (c *Catalog) ItemGroup(id domain.ID) (domain.ItemGroup, bool) {
	g, ok := c.itemGroups[id]
	return g, ok
}

func (c *Catalog) PriceLevel(id domain.ID) (domain.PriceLevel, bool) {
	p, ok := c.priceLevels[id]
	return p, ok
}

func (c *Catalog) TaxGroup(id domain.ID) (domain.TaxGroup, bool) {
	t, ok := c.taxGroups[id]
	return t, ok
}

func (c *Catalog) Named(kind domain.Kind, id domain.ID) (domain.Named, bool) {
	n, ok := c.named[kind][id]
	return n, ok
}

// ResolveName returns the display name of the referenced entity.
func (c *Catalog) ResolveName(kind domain.Kind, id domain.ID) (string, bool) {
	e, ok := c.Get(domain.Ref{Kind: kind, ID: id})
	if !ok {
		return "", false
	}
	return e.DisplayName(), true
}

// IDs lists the identifiers of a kind in ascending order.
func (c *Catalog) IDs(kind domain.Kind) []domain.ID {
	var ids []domain.ID
	switch kind {
	case domain.KindItem:
		ids = slices.Collect(maps.Keys(c.items))
	case domain.KindItemGroup:
		ids = slices.Collect(maps.Keys(c.itemGroups))
	case domain.KindPriceLevel:
		ids = slices.Collect(maps.Keys(c.priceLevels))
	case domain.KindTaxGroup:
		ids = slices.Collect(maps.Keys(c.taxGroups))
	default:
		ids = slices.Collect(maps.Keys(c.named[kind]))
	}
	slices.Sort(ids)
	return ids
}

// Iter returns the entities of a kind in ascending identifier order.
func (c *Catalog) Iter(kind domain.Kind) []domain.Entity {
	ids := c.IDs(kind)
	out := make([]domain.Entity, 0, len(ids))
	for _, id := range ids {
		e, _ := c.Get(domain.Ref{Kind: kind, ID: id})
		out = append(out, e)
	}
	return out
}

func (c *Catalog) Len(kind domain.Kind) int {
	switch kind {
	case domain.KindItem:
		return len(c.items)
	case domain.KindItemGroup:
		return len(c.itemGroups)
	case domain.KindPriceLevel:
		return len(c.priceLevels)
	case domain.KindTaxGroup:
		return len(c.taxGroups)
	default:
		return len(c.named[kind])
	}
}

// Items returns copies of all items, ascending by id.
func (c *Catalog) Items() []domain.Item {
	ids := c.IDs(domain.KindItem)
	out := make([]domain.Item, 0, len(ids))
	for _, id := range ids {
		out = append(out, c.items[id].Clone())
	}
	return out
}

func (c *Catalog) ItemGroups() []domain.ItemGroup {
	ids := c.IDs(domain.KindItemGroup)
	out := make([]domain.ItemGroup, 0, len(ids))
	for _, id := range ids {
		out = append(out, c.itemGroups[id])
	}
	return out
}

func (c *Catalog) PriceLevels() []domain.PriceLevel {
	ids := c.IDs(domain.KindPriceLevel)
	out := make([]domain.PriceLevel, 0, len(ids))
	for _, id := range ids {
		out = append(out, c.priceLevels[id])
	}
	return out
}

func (c *Catalog) TaxGroups() []domain.TaxGroup {
	ids := c.IDs(domain.KindTaxGroup)
	out := make([]domain.TaxGroup, 0, len(ids))
	for _, id := range ids {
		out = append(out, c.taxGroups[id])
	}
	return out
}

func (c *Catalog) NamedList(kind domain.Kind) []domain.Named {
	ids := c.IDs(kind)
	out := make([]domain.Named, 0, len(ids))
	for _, id := range ids {
		out = append(out, c.named[kind][id])
	}
	return out
}

// GroupMap returns the item groups keyed by id, nil when there are none.
func (c *Catalog) GroupMap() map[domain.ID]domain.ItemGroup {
	if len(c.itemGroups) == 0 {
		return nil
	}
	return maps.Clone(c.itemGroups)
}

// Clone returns an independent copy of the whole catalog.
func (c *Catalog) Clone() *Catalog {
	out := New()
	for id, it := range c.items {
		out.items[id] = it.Clone()
	}
	out.itemGroups = maps.Clone(c.itemGroups)
	out.priceLevels = maps.Clone(c.priceLevels)
	out.taxGroups = maps.Clone(c.taxGroups)
	for k, m := range c.named {
		out.named[k] = maps.Clone(m)
	}
	return out
}

// Equal reports whether both catalogs hold the same entities.
func (c *Catalog) Equal(o *Catalog) bool {
	if len(c.items) != len(o.items) {
		return false
	}
	for id, it := range c.items {
		other, ok := o.items[id]
		if !ok || !it.Equal(other) {
			return false
		}
	}
	if !maps.Equal(c.itemGroups, o.itemGroups) {
		return false
	}
	if !maps.EqualFunc(c.priceLevels, o.priceLevels, func(a, b domain.PriceLevel) bool {
		return a.ID == b.ID && a.Name == b.Name && a.Type == b.Type && a.Price.Equal(b.Price)
	}) {
		return false
	}
	if !maps.EqualFunc(c.taxGroups, o.taxGroups, func(a, b domain.TaxGroup) bool {
		return a.ID == b.ID && a.Name == b.Name && a.Rate.Equal(b.Rate)
	}) {
		return false
	}
	for _, k := range domain.NamedKinds {
		if !maps.Equal(c.named[k], o.named[k]) {
			return false
		}
	}
	return true
}
