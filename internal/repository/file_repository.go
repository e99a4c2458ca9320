package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/A-Disruption/property-menu-builder-sub000/internal/catalog"
	"github.com/A-Disruption/property-menu-builder-sub000/internal/domain"
	"github.com/A-Disruption/property-menu-builder-sub000/internal/session"
)

// FileRepository keeps each catalog as a session document under Dir. The
// preferences live in the same document.
type FileRepository struct {
	Dir string
}

func (r FileRepository) path(name string) string { return session.Path(r.Dir, name) }

// load returns the existing document, or an empty one for a new catalog.
func (r FileRepository) load(name string) (session.Document, error) {
	doc, err := session.Load(r.path(name))
	if errors.Is(err, domain.ErrNotFound) {
		return session.Document{Version: session.Version, Catalog: name}, nil
	}
	return doc, err
}

func (r FileRepository) Save(_ context.Context, name string, cat *catalog.Catalog) error {
	prev, err := r.load(name)
	if err != nil {
		return err
	}
	return session.Save(r.path(name), session.FromCatalog(name, cat, prev.Preferences))
}

func (r FileRepository) Load(_ context.Context, name string) (*catalog.Catalog, error) {
	doc, err := session.Load(r.path(name))
	if err != nil {
		return nil, err
	}
	return doc.ToCatalog()
}

// Names lists the session documents under Dir. Names come back in their
// file-safe form.
func (r FileRepository) Names(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(r.Dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var out []string
	for _, ent := range entries {
		if name, ok := strings.CutSuffix(ent.Name(), ".json"); ok && ent.Type().IsRegular() {
			out = append(out, name)
		}
	}
	slices.Sort(out)
	return out, nil
}

// Delete removes the session document of name, preferences included.
func (r FileRepository) Delete(_ context.Context, name string) error {
	err := os.Remove(r.path(name))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("catalog %q: %w", name, domain.ErrNotFound)
	}
	return err
}

func (r FileRepository) GetPreferences(_ context.Context, name string) (domain.Preferences, error) {
	doc, err := session.Load(r.path(name))
	if err != nil {
		return domain.Preferences{}, err
	}
	return doc.Preferences, nil
}

// SavePreferences rewrites the document with p, keeping its collections.
func (r FileRepository) SavePreferences(_ context.Context, name string, p domain.Preferences) (domain.Preferences, error) {
	doc, err := r.load(name)
	if err != nil {
		return domain.Preferences{}, err
	}
	if p.LineEnding == "" {
		p.LineEnding = "lf"
	}
	p.UpdatedAt = time.Now().UTC()
	doc.Preferences = p
	doc.SavedAt = time.Time{}
	if err := session.Save(r.path(name), doc); err != nil {
		return domain.Preferences{}, err
	}
	return p, nil
}
