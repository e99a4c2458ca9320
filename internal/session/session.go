// Package session reads and writes the JSON session document that holds a
// whole catalog plus the editor preferences.
package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"github.com/A-Disruption/property-menu-builder-sub000/internal/catalog"
	"github.com/A-Disruption/property-menu-builder-sub000/internal/domain"
)

// Version is the document format written by Save.
const Version = 1

var ErrVersion = errors.New("unsupported session version")

type Document struct {
	Version     int                `json:"version"`
	Catalog     string             `json:"catalog"`
	SavedAt     time.Time          `json:"saved_at"`
	Preferences domain.Preferences `json:"preferences"`

	ItemGroups        []domain.ItemGroup  `json:"item_groups"`
	PriceLevels       []domain.PriceLevel `json:"price_levels"`
	TaxGroups         []domain.TaxGroup   `json:"tax_groups"`
	SecurityLevels    []domain.Named      `json:"security_levels"`
	RevenueCategories []domain.Named      `json:"revenue_categories"`
	ReportCategories  []domain.Named      `json:"report_categories"`
	ProductClasses    []domain.Named      `json:"product_classes"`
	ChoiceGroups      []domain.Named      `json:"choice_groups"`
	PrinterLogicals   []domain.Named      `json:"printer_logicals"`
	Items             []domain.Item       `json:"items"`
}

// named maps each simple kind to its list in the document.
func (d *Document) named() map[domain.Kind]*[]domain.Named {
	return map[domain.Kind]*[]domain.Named{
		domain.KindSecurityLevel:   &d.SecurityLevels,
		domain.KindRevenueCategory: &d.RevenueCategories,
		domain.KindReportCategory:  &d.ReportCategories,
		domain.KindProductClass:    &d.ProductClasses,
		domain.KindChoiceGroup:     &d.ChoiceGroups,
		domain.KindPrinterLogical:  &d.PrinterLogicals,
	}
}

// FromCatalog snapshots cat into a document. Every collection is in ascending id order.
func FromCatalog(name string, cat *catalog.Catalog, prefs domain.Preferences) Document {
	d := Document{
		Version:     Version,
		Catalog:     name,
		Preferences: prefs,
		ItemGroups:  cat.ItemGroups(),
		PriceLevels: cat.PriceLevels(),
		TaxGroups:   cat.TaxGroups(),
		Items:       cat.Items(),
	}
	for kind, list := range d.named() {
		*list = cat.NamedList(kind)
	}
	return d
}

// ToCatalog rebuilds the catalog held by the document.
func (d Document) ToCatalog() (*catalog.Catalog, error) {
	cat := catalog.New()
	insert := func(e domain.Entity) error {
		if err := cat.Insert(e); err != nil {
			return fmt.Errorf("%s: %w", e.Ref(), err)
		}
		return nil
	}
	for _, g := range d.ItemGroups {
		if err := insert(g); err != nil {
			return nil, err
		}
	}
	for _, p := range d.PriceLevels {
		if err := insert(p); err != nil {
			return nil, err
		}
	}
	for _, t := range d.TaxGroups {
		if err := insert(t); err != nil {
			return nil, err
		}
	}
	for kind, list := range d.named() {
		for _, n := range *list {
			n.Kind = kind
			if err := insert(n); err != nil {
				return nil, err
			}
		}
	}
	for _, it := range d.Items {
		if err := insert(it); err != nil {
			return nil, err
		}
	}
	return cat, nil
}

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// Path returns the document path for a catalog name inside dir.
func Path(dir, name string) string {
	return filepath.Join(dir, unsafeName.ReplaceAllString(name, "_")+".json")
}

// Save writes d to path through a temporary file and a rename so a crash
// never leaves a half-written document behind.
func Save(path string, d Document) error {
	if d.Version == 0 {
		d.Version = Version
	}
	if d.SavedAt.IsZero() {
		d.SavedAt = time.Now().UTC()
	}
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return fmt.Errorf("write session: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync session: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close session: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace session: %w", err)
	}
	return nil
}

// Load reads the document at path. A missing file is domain.ErrNotFound.
func Load(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Document{}, fmt.Errorf("session %s: %w", path, domain.ErrNotFound)
		}
		return Document{}, err
	}
	var d Document
	if err := json.Unmarshal(data, &d); err != nil {
		return Document{}, fmt.Errorf("decode session %s: %w", path, err)
	}
	if d.Version != Version {
		return Document{}, fmt.Errorf("%w: %d", ErrVersion, d.Version)
	}
	return d, nil
}
