// Package repository persists catalogs, the change journal and editor
// preferences in Postgres, in an embedded badger store or in session files.
package repository

import "github.com/A-Disruption/property-menu-builder-sub000/internal/ports"

var (
	_ ports.CatalogStore    = CatalogRepository{}
	_ ports.CatalogLister   = CatalogRepository{}
	_ ports.ChangeJournal   = ChangeJournalRepository{}
	_ ports.PreferenceStore = PreferencesRepository{}
	_ ports.CatalogStore    = BadgerCatalogRepository{}
	_ ports.CatalogLister   = BadgerCatalogRepository{}
	_ ports.PreferenceStore = BadgerCatalogRepository{}
	_ ports.ChangeJournal   = BadgerJournalRepository{}
	_ ports.CatalogStore    = FileRepository{}
	_ ports.CatalogLister   = FileRepository{}
	_ ports.PreferenceStore = FileRepository{}
)
