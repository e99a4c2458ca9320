package repository

import (
	"encoding/json"
	"fmt"

	"github.com/A-Disruption/property-menu-builder-sub000/internal/catalog"
	"github.com/A-Disruption/property-menu-builder-sub000/internal/domain"
)

// allEntities lists every entity of cat, kind by kind in ascending id order.
func allEntities(cat *catalog.Catalog) []domain.Entity {
	var out []domain.Entity
	for _, kind := range domain.Kinds {
		out = append(out, cat.Iter(kind)...)
	}
	return out
}

func encodeEntity(e domain.Entity) ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", e.Ref(), err)
	}
	return data, nil
}

func decodeEntity(kind domain.Kind, payload []byte) (domain.Entity, error) {
	var (
		e   domain.Entity
		err error
	)
	switch kind {
	case domain.KindItem:
		var it domain.Item
		err = json.Unmarshal(payload, &it)
		e = it
	case domain.KindItemGroup:
		var g domain.ItemGroup
		err = json.Unmarshal(payload, &g)
		e = g
	case domain.KindPriceLevel:
		var p domain.PriceLevel
		err = json.Unmarshal(payload, &p)
		e = p
	case domain.KindTaxGroup:
		var t domain.TaxGroup
		err = json.Unmarshal(payload, &t)
		e = t
	default:
		var n domain.Named
		err = json.Unmarshal(payload, &n)
		n.Kind = kind
		e = n
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", kind, err)
	}
	return e, nil
}
