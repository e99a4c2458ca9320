package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/A-Disruption/property-menu-builder-sub000/internal/catalog"
	"github.com/A-Disruption/property-menu-builder-sub000/internal/domain"
	"github.com/A-Disruption/property-menu-builder-sub000/internal/metrics"
	"github.com/A-Disruption/property-menu-builder-sub000/internal/ports"
	"github.com/A-Disruption/property-menu-builder-sub000/internal/posfile"
	"github.com/A-Disruption/property-menu-builder-sub000/internal/supereditor"
)

var (
	ErrNoJournal     = errors.New("change journal is not configured")
	ErrNoPreferences = errors.New("preference store is not configured")
)

// Editor is the single place that mutates a catalog. It sequences imports,
// entity edits and bulk edits, persists through the configured store and logs
// what happened.
type Editor struct {
	Name       string
	Store      ports.CatalogStore
	Journal    ports.ChangeJournal
	Prefs      ports.PreferenceStore
	Metrics    *metrics.Recorder
	Logger     *slog.Logger
	LineEnding posfile.LineEnding

	cat     *catalog.Catalog
	session *supereditor.Session
	now     func() time.Time
}

func NewEditor(name string, store ports.CatalogStore, logger *slog.Logger) *Editor {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	e := &Editor{
		Name:       name,
		Store:      store,
		Logger:     logger.With("catalog", name),
		LineEnding: posfile.LF,
		now:        time.Now,
	}
	e.replace(catalog.New())
	return e
}

// replace installs cat as the working catalog. The rule being edited carries over.
func (e *Editor) replace(cat *catalog.Catalog) {
	rule := supereditor.DefaultRule()
	if e.session != nil {
		rule = e.session.Rule()
	}
	e.cat = cat
	e.session = supereditor.NewSession(cat)
	e.session.SetRule(rule)
	if e.Metrics != nil {
		e.Metrics.CatalogSize(cat.Len(domain.KindItem))
	}
}

// Catalog returns a copy of the working catalog.
func (e *Editor) Catalog() *catalog.Catalog { return e.cat.Clone() }

// Session exposes the bulk-edit session over the working catalog.
func (e *Editor) Session() *supereditor.Session { return e.session }

// Restore loads the stored catalog. A catalog that was never saved starts empty.
func (e *Editor) Restore(ctx context.Context) error {
	cat, err := e.Store.Load(ctx, e.Name)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			e.Logger.Info("starting empty catalog")
			e.replace(catalog.New())
			return nil
		}
		return fmt.Errorf("restore: %w", err)
	}
	e.replace(cat)
	e.applyPreferences(ctx)
	e.Logger.Info("catalog restored", "items", cat.Len(domain.KindItem))
	return nil
}

// applyPreferences takes the line ending saved with the catalog over the
// configured one.
func (e *Editor) applyPreferences(ctx context.Context) {
	if e.Prefs == nil {
		return
	}
	p, err := e.Prefs.GetPreferences(ctx, e.Name)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			e.Logger.Warn("load preferences", "err", err)
		}
		return
	}
	if p.LineEnding == "" {
		return
	}
	eol, err := posfile.ParseLineEnding(p.LineEnding)
	if err != nil {
		e.Logger.Warn("ignoring saved line ending", "err", err)
		return
	}
	e.LineEnding = eol
}

// Persist saves the working catalog.
func (e *Editor) Persist(ctx context.Context) error {
	if err := e.Store.Save(ctx, e.Name, e.cat); err != nil {
		return fmt.Errorf("persist: %w", err)
	}
	e.Logger.Debug("catalog persisted", "items", e.cat.Len(domain.KindItem))
	return nil
}

// Import reads POS records into the working catalog. A structural error leaves
// the catalog as it was.
func (e *Editor) Import(_ context.Context, r io.Reader) (*posfile.Report, error) {
	next := e.cat.Clone()
	rep, err := posfile.Ingest(next, r)
	if err != nil {
		e.Logger.Warn("import rejected", "err", err)
		return nil, err
	}
	e.replace(next)
	if e.Metrics != nil {
		e.Metrics.Imported(rep.Imported, rep.Skipped, rep.Created)
	}
	for _, d := range rep.Diagnostics {
		e.Logger.Warn("record skipped", "line", d.Line, "field", d.Field, "msg", d.Message)
	}
	e.Logger.Info("catalog imported",
		"records", rep.Records, "items", rep.Imported, "skipped", rep.Skipped,
		"created", len(rep.Created), "missing", len(rep.Missing))
	return rep, nil
}

// ImportFile imports the file at path and remembers it in the preferences.
func (e *Editor) ImportFile(ctx context.Context, path string) (*posfile.Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	rep, err := e.Import(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	e.rememberPath(ctx, func(p *domain.Preferences) { p.LastImport = path })
	return rep, nil
}

// Export writes every item in POS order and returns the number of records written.
func (e *Editor) Export(_ context.Context, w io.Writer) (int, error) {
	n, err := posfile.NewEncoder(w, posfile.WithLineEnding(e.LineEnding)).WriteCatalog(e.cat)
	if err != nil {
		return 0, fmt.Errorf("export: %w", err)
	}
	if e.Metrics != nil {
		e.Metrics.Exported(n)
	}
	e.Logger.Info("catalog exported", "records", n)
	return n, nil
}

// ExportFile writes the POS file at path.
func (e *Editor) ExportFile(ctx context.Context, path string) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	n, err := e.Export(ctx, f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return 0, err
	}
	eol := e.LineEnding.Name()
	e.rememberPath(ctx, func(p *domain.Preferences) {
		p.LastExport = path
		p.LineEnding = eol
	})
	return n, nil
}

// RulePath resolves a rule file name. A relative name missing from the working
// directory is looked up in the saved rule directory.
func (e *Editor) RulePath(ctx context.Context, name string) string {
	if filepath.IsAbs(name) || e.Prefs == nil {
		return name
	}
	if _, err := os.Stat(name); err == nil {
		return name
	}
	p, err := e.Prefs.GetPreferences(ctx, e.Name)
	if err != nil || p.RuleDir == "" {
		return name
	}
	return filepath.Join(p.RuleDir, name)
}

// rememberPath updates the preferences; failures are logged, not returned.
func (e *Editor) rememberPath(ctx context.Context, update func(*domain.Preferences)) {
	if e.Prefs == nil {
		return
	}
	p, err := e.Prefs.GetPreferences(ctx, e.Name)
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		e.Logger.Warn("load preferences", "err", err)
		return
	}
	update(&p)
	if p.LineEnding == "" {
		p.LineEnding = e.LineEnding.Name()
	}
	if _, err := e.Prefs.SavePreferences(ctx, e.Name, p); err != nil {
		e.Logger.Warn("save preferences", "err", err)
	}
}

// Preview replaces the session rule with rule and previews it.
func (e *Editor) Preview(rule supereditor.Rule) *supereditor.Preview {
	e.session.SetRule(rule)
	p := e.session.PreviewChanges()
	if e.Metrics != nil {
		e.Metrics.Previewed()
	}
	e.Logger.Info("bulk edit previewed",
		"matched", len(p.Matched), "changed", len(p.Changed), "diagnostics", len(p.Diagnostics))
	return p
}

// Commit accepts the active preview, persists the catalog and journals every
// field change.
func (e *Editor) Commit(ctx context.Context) ([]domain.ID, error) {
	preview := e.session.Preview()
	changed, err := e.session.AcceptChanges()
	if err != nil {
		if e.Metrics != nil && !errors.Is(err, supereditor.ErrPreviewInactive) {
			e.Metrics.CommitFailed()
		}
		e.Logger.Warn("bulk edit refused", "err", err)
		return nil, err
	}
	if e.Metrics != nil {
		e.Metrics.Committed(len(changed))
	}
	e.Logger.Info("bulk edit committed", "items", len(changed))

	if err := e.Persist(ctx); err != nil {
		return changed, err
	}
	if err := e.journal(ctx, preview, changed); err != nil {
		return changed, err
	}
	return changed, nil
}

func (e *Editor) journal(ctx context.Context, p *supereditor.Preview, ids []domain.ID) error {
	if e.Journal == nil || p == nil {
		return nil
	}
	at := e.now().UTC()
	var entries []domain.Change
	for _, id := range ids {
		for _, fc := range p.Changes[id] {
			entries = append(entries, domain.Change{
				ItemID: id, Field: fc.Field, Before: fc.Before, After: fc.After, CommittedAt: at,
			})
		}
	}
	if err := e.Journal.Append(ctx, e.Name, entries); err != nil {
		return fmt.Errorf("journal: %w", err)
	}
	return nil
}

// Cancel drops the active preview.
func (e *Editor) Cancel() error {
	if err := e.session.CancelPreview(); err != nil {
		return err
	}
	e.Logger.Info("bulk edit cancelled")
	return nil
}

// SaveEntity validates and stores one entity. A draft gets the next free id
// of its kind, or of its item group for grouped items.
func (e *Editor) SaveEntity(ent domain.Entity) (domain.Ref, error) {
	ref := ent.Ref()
	var err error
	switch {
	case ref.ID.IsDraft():
		id, idErr := e.nextID(ent)
		if idErr != nil {
			return ref, idErr
		}
		ref.ID = id
		err = e.cat.Create(ent, id)
	case e.cat.Has(ref):
		err = e.cat.Update(ent)
	default:
		err = e.cat.Create(ent, ref.ID)
	}
	if err != nil {
		return ref, err
	}
	e.session.Invalidate()
	if e.Metrics != nil {
		e.Metrics.CatalogSize(e.cat.Len(domain.KindItem))
	}
	e.Logger.Info("entity saved", "kind", ref.Kind.Slug(), "id", ref.ID)
	return ref, nil
}

func (e *Editor) nextID(ent domain.Entity) (domain.ID, error) {
	if it, ok := ent.(domain.Item); ok && it.ItemGroup != nil {
		return e.cat.NextItemID(*it.ItemGroup)
	}
	return e.cat.NextID(ent.Ref().Kind)
}

func (e *Editor) DeleteEntity(ref domain.Ref) error {
	if err := e.cat.Delete(ref); err != nil {
		return err
	}
	e.session.Invalidate()
	e.Logger.Info("entity deleted", "kind", ref.Kind.Slug(), "id", ref.ID)
	return nil
}

// Validate checks the whole working catalog.
func (e *Editor) Validate() []error {
	errs := e.cat.ValidateAll()
	if len(errs) > 0 {
		e.Logger.Warn("catalog has invalid entities", "count", len(errs))
	}
	return errs
}

// History lists journaled changes, newest first.
func (e *Editor) History(ctx context.Context, limit int) ([]domain.Change, error) {
	if e.Journal == nil {
		return nil, ErrNoJournal
	}
	return e.Journal.List(ctx, e.Name, limit)
}

func (e *Editor) Preferences(ctx context.Context) (domain.Preferences, error) {
	if e.Prefs == nil {
		return domain.Preferences{}, ErrNoPreferences
	}
	return e.Prefs.GetPreferences(ctx, e.Name)
}

func (e *Editor) SavePreferences(ctx context.Context, p domain.Preferences) (domain.Preferences, error) {
	if e.Prefs == nil {
		return domain.Preferences{}, ErrNoPreferences
	}
	return e.Prefs.SavePreferences(ctx, e.Name, p)
}
