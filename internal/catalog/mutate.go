package catalog

import (
	"errors"
	"fmt"

	"github.com/A-Disruption/property-menu-builder-sub000/internal/domain"
)

// ErrNoFreeID is returned when every identifier of a kind (or group range) is taken.
var ErrNoFreeID = errors.New("no free identifier")

// Create saves a draft entity under id. The entity must carry domain.DraftID or id
// already; it is validated against the catalog before insertion.
func (c *Catalog) Create(e domain.Entity, id domain.ID) error {
	e = withID(e, id)
	ref := e.Ref()
	if c.Has(ref) {
		return &domain.ValidationError{
			Kind:    domain.DuplicateID,
			Ref:     ref,
			Message: fmt.Sprintf("%s %d already exists", ref.Kind, ref.ID),
		}
	}
	if err := domain.Validate(e, c); err != nil {
		return err
	}
	return c.Insert(e)
}

// Update replaces an existing entity after validating it against the catalog.
func (c *Catalog) Update(e domain.Entity) error {
	ref := e.Ref()
	if !c.Has(ref) {
		return fmt.Errorf("update %s: %w", ref, domain.ErrNotFound)
	}
	if err := domain.Validate(e, c); err != nil {
		return err
	}
	return c.Insert(e)
}

func withID(e domain.Entity, id domain.ID) domain.Entity {
	switch v := e.(type) {
	case domain.Item:
		v.ID = id
		return v
	case domain.ItemGroup:
		v.ID = id
		return v
	case domain.PriceLevel:
		v.ID = id
		return v
	case domain.TaxGroup:
		v.ID = id
		return v
	case domain.Named:
		v.ID = id
		return v
	}
	return e
}

// NextID returns the smallest unused identifier of kind. Zero-based kinds still
// start at 1 so that new entities never collide with the absent marker.
func (c *Catalog) NextID(kind domain.Kind) (domain.ID, error) {
	lo, hi := kind.IDBounds()
	if lo < 1 {
		lo = 1
	}
	for id := lo; id <= hi; id++ {
		if !c.Has(domain.Ref{Kind: kind, ID: id}) {
			return id, nil
		}
		if id == hi {
			break
		}
	}
	return 0, fmt.Errorf("%s: %w", kind, ErrNoFreeID)
}

// NextItemID returns the first free item identifier inside the range of group.
func (c *Catalog) NextItemID(group domain.ID) (domain.ID, error) {
	g, ok := c.itemGroups[group]
	if !ok {
		return 0, fmt.Errorf("item group %d: %w", group, domain.ErrNotFound)
	}
	for id := g.Range.Start; id < g.Range.End; id++ {
		if _, taken := c.items[id]; !taken {
			return id, nil
		}
	}
	return 0, fmt.Errorf("item group %d: %w", group, ErrNoFreeID)
}

// Delete removes the entity addressed by ref. Reference entities still used by an
// item are kept and reported as InvalidReference.
func (c *Catalog) Delete(ref domain.Ref) error {
	if !c.Has(ref) {
		return fmt.Errorf("delete %s: %w", ref, domain.ErrNotFound)
	}
	if ref.Kind != domain.KindItem {
		for _, id := range c.IDs(domain.KindItem) {
			for _, r := range c.items[id].Refs() {
				if r == ref {
					return &domain.ValidationError{
						Kind:    domain.InvalidReference,
						Ref:     ref,
						Message: fmt.Sprintf("%s is still used by item %d", ref, id),
					}
				}
			}
		}
	}
	switch ref.Kind {
	case domain.KindItem:
		delete(c.items, ref.ID)
	case domain.KindItemGroup:
		delete(c.itemGroups, ref.ID)
	case domain.KindPriceLevel:
		delete(c.priceLevels, ref.ID)
	case domain.KindTaxGroup:
		delete(c.taxGroups, ref.ID)
	default:
		delete(c.named[ref.Kind], ref.ID)
	}
	return nil
}

// ValidateAll checks every entity in ascending kind and identifier order and
// returns all failures.
func (c *Catalog) ValidateAll() []error {
	var errs []error
	for _, kind := range domain.Kinds {
		for _, e := range c.Iter(kind) {
			if err := domain.Validate(e, c); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errs
}

// Commit writes items into the catalog as one unit. Every item is validated
// against the state the catalog would have after the write; on the first
// failure nothing is written.
func (c *Catalog) Commit(items []domain.Item) error {
	if len(items) == 0 {
		return nil
	}
	next := c.Clone()
	for _, it := range items {
		if it.ID.IsDraft() {
			return fmt.Errorf("commit item %q: %w", it.Name, domain.ErrDraft)
		}
		next.items[it.ID] = it.Clone()
	}
	for _, it := range items {
		if err := domain.Validate(next.items[it.ID], next); err != nil {
			return fmt.Errorf("commit: %w", err)
		}
	}
	c.items = next.items
	return nil
}
