package ports

import (
	"context"

	"github.com/A-Disruption/property-menu-builder-sub000/internal/catalog"
	"github.com/A-Disruption/property-menu-builder-sub000/internal/domain"
)

// HealthChecker is used to probe dependencies.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// CatalogStore persists whole catalogs by name. Load returns
// domain.ErrNotFound for a name that was never saved.
type CatalogStore interface {
	Save(ctx context.Context, name string, cat *catalog.Catalog) error
	Load(ctx context.Context, name string) (*catalog.Catalog, error)
}

// CatalogLister enumerates and drops stored catalogs. Delete returns
// domain.ErrNotFound for a name that was never saved.
type CatalogLister interface {
	Names(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, name string) error
}

// ChangeJournal records committed field changes, newest first on List.
type ChangeJournal interface {
	Append(ctx context.Context, name string, changes []domain.Change) error
	List(ctx context.Context, name string, limit int) ([]domain.Change, error)
}

// PreferenceStore keeps the editor preferences of a catalog.
type PreferenceStore interface {
	GetPreferences(ctx context.Context, name string) (domain.Preferences, error)
	SavePreferences(ctx context.Context, name string, p domain.Preferences) (domain.Preferences, error)
}
