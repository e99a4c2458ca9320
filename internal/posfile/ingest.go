package posfile

import (
	"cmp"
	"fmt"
	"io"
	"slices"

	"github.com/A-Disruption/property-menu-builder-sub000/internal/catalog"
	"github.com/A-Disruption/property-menu-builder-sub000/internal/domain"
)

// Report summarises an ingest.
type Report struct {
	Records  int
	Imported int
	Skipped  int
	// Created lists the entities manufactured for dangling references.
	Created []domain.Ref
	// Missing lists references that could not be completed, such as ids
	// outside the range of their kind.
	Missing     []domain.Ref
	Markers     []GroupMarker
	Diagnostics []Diagnostic
}

// CreatedOf counts the manufactured entities of one kind.
func (r *Report) CreatedOf(kind domain.Kind) int {
	n := 0
	for _, ref := range r.Created {
		if ref.Kind == kind {
			n++
		}
	}
	return n
}

// Ingest decodes r into cat and completes every reference the new items make.
// Structural errors abort before cat is touched.
func Ingest(cat *catalog.Catalog, r io.Reader) (*Report, error) {
	batch, err := Decode(r)
	if err != nil {
		return nil, err
	}
	rep := &Report{
		Records:     batch.Records,
		Skipped:     batch.Skipped,
		Markers:     batch.Markers,
		Diagnostics: batch.Diagnostics,
	}

	loaded := make([]domain.Item, 0, len(batch.Items))
	for _, it := range batch.Items {
		if err := cat.Insert(it); err != nil {
			rep.Skipped++
			rep.Diagnostics = append(rep.Diagnostics, Diagnostic{Message: fmt.Sprintf("item %d: %v", it.ID, err)})
			continue
		}
		loaded = append(loaded, it)
	}
	rep.Imported = len(loaded)

	Complete(cat, loaded, batch.Markers, rep)
	return rep, nil
}

// Complete manufactures a placeholder for every reference of items that cat
// cannot resolve. Item groups take their name and start from a matching group
// marker when one was read, and end one past the highest member id.
func Complete(cat *catalog.Catalog, items []domain.Item, markers []GroupMarker, rep *Report) {
	markerByGroup := make(map[domain.ID]GroupMarker, len(markers))
	for _, m := range markers {
		if _, seen := markerByGroup[m.GroupID]; !seen {
			markerByGroup[m.GroupID] = m
		}
	}

	var pending []domain.Ref
	seen := make(map[domain.Ref]struct{})
	members := make(map[domain.ID][]domain.ID)
	storeOnly := make(map[domain.ID]bool)

	for _, it := range items {
		if it.ItemGroup != nil {
			members[*it.ItemGroup] = append(members[*it.ItemGroup], it.ID)
		}
		for _, id := range it.StorePriceLevels {
			if _, ok := storeOnly[id]; !ok {
				storeOnly[id] = true
			}
		}
		for _, p := range it.ItemPrices {
			storeOnly[p.LevelID] = false
		}
		for _, id := range it.PriceLevels {
			storeOnly[id] = false
		}
		for _, ref := range it.Refs() {
			if _, ok := seen[ref]; ok || cat.Has(ref) {
				continue
			}
			seen[ref] = struct{}{}
			pending = append(pending, ref)
		}
	}

	slices.SortFunc(pending, func(a, b domain.Ref) int {
		if c := cmp.Compare(a.Kind, b.Kind); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})

	for _, ref := range pending {
		if !ref.Kind.InRange(ref.ID) {
			rep.Missing = append(rep.Missing, ref)
			continue
		}
		e := placeholder(ref, members[ref.ID], markerByGroup, storeOnly[ref.ID])
		if err := cat.Insert(e); err != nil {
			rep.Missing = append(rep.Missing, ref)
			continue
		}
		rep.Created = append(rep.Created, ref)
	}
}

func placeholder(ref domain.Ref, members []domain.ID, markers map[domain.ID]GroupMarker, storeOnly bool) domain.Entity {
	name := ref.Kind.PlaceholderName(ref.ID)
	switch ref.Kind {
	case domain.KindItemGroup:
		g := domain.ItemGroup{ID: ref.ID, Name: name}
		if len(members) > 0 {
			g.Range = domain.IDRange{Start: slices.Min(members), End: slices.Max(members) + 1}
		}
		if m, ok := markers[ref.ID]; ok {
			if m.Name != "" {
				g.Name = m.Name
			}
			if m.Start < g.Range.Start || len(members) == 0 {
				g.Range.Start = m.Start
			}
			if g.Range.End <= g.Range.Start {
				g.Range.End = g.Range.Start + 1
			}
		}
		return g
	case domain.KindPriceLevel:
		typ := domain.PriceLevelEnterprise
		if storeOnly {
			typ = domain.PriceLevelStore
		}
		return domain.PriceLevel{ID: ref.ID, Name: name, Type: typ}
	case domain.KindTaxGroup:
		return domain.TaxGroup{ID: ref.ID, Name: name}
	default:
		return domain.Named{Kind: ref.Kind, ID: ref.ID, Name: name}
	}
}
