package service

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/A-Disruption/property-menu-builder-sub000/internal/catalog"
	"github.com/A-Disruption/property-menu-builder-sub000/internal/config"
	"github.com/A-Disruption/property-menu-builder-sub000/internal/db"
	"github.com/A-Disruption/property-menu-builder-sub000/internal/domain"
	"github.com/A-Disruption/property-menu-builder-sub000/internal/metrics"
	"github.com/A-Disruption/property-menu-builder-sub000/internal/posfile"
	"github.com/A-Disruption/property-menu-builder-sub000/internal/repository"
	"github.com/A-Disruption/property-menu-builder-sub000/internal/supereditor"
)

const spicedNuts = `"A", 7400002, "Spiced Nuts", "Spiced", "Nuts", "Spiced Nuts", {1,$8.00}, 103, 1, 1, 0, 0, 0, 0, {}, , $0.00 , 0, 0, 1, 1, 1, 0, 0, 125, "Spiced Nuts", 1, 0, {}, {2,1,3,0,6,0}, 0, 0, "Spiced Nuts", 0, "", 0, {}, 0, 0, "", 0, ""`

type fixture struct {
	dir     string
	editor  *Editor
	journal repository.BadgerJournalRepository
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	b, err := db.OpenBadger(config.Config{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = b.Close() })

	dir := t.TempDir()
	files := repository.FileRepository{Dir: dir}
	journal := repository.BadgerJournalRepository{DB: b}

	e := NewEditor("bar", files, nil)
	e.Journal = journal
	e.Prefs = files
	e.Metrics = metrics.New()
	e.now = func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) }
	return fixture{dir: dir, editor: e, journal: journal}
}

func addPrice(amount string) supereditor.Rule {
	return supereditor.Rule{
		Conditions: []supereditor.Condition{{Field: supereditor.FieldName, Operator: supereditor.Contains, Value: "nuts"}},
		Actions:    []supereditor.Action{{Category: supereditor.CategoryPrice, Operation: supereditor.AddToPrice, Value: amount}},
	}
}

func TestEditor_ImportPreviewCommit(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	e := fx.editor

	require.NoError(t, e.Restore(ctx))
	rep, err := e.Import(ctx, strings.NewReader(spicedNuts+"\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Imported)

	p := e.Preview(addPrice("1.00"))
	assert.Equal(t, []domain.ID{7400002}, p.Changed)
	assert.Equal(t, supereditor.Previewing, e.Session().State())

	changed, err := e.Commit(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.ID{7400002}, changed)
	assert.Equal(t, supereditor.Editing, e.Session().State())

	history, err := e.History(ctx, 10)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, domain.Change{
		Seq: 1, ItemID: 7400002, Field: "Default Price", Before: "8.00", After: "9.00",
		CommittedAt: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}, history[0])

	// the commit was persisted
	again := NewEditor("bar", repository.FileRepository{Dir: fx.dir}, nil)
	require.NoError(t, again.Restore(ctx))
	it, ok := again.Catalog().Item(7400002)
	require.True(t, ok)
	assert.Equal(t, "9.00", domain.FormatMoney(*it.DefaultPrice))

	var out bytes.Buffer
	n, err := again.Export(ctx, &out)
	require.NoError(t, err)
	assert.Equal(t, 2, n, "group start plus the item")
	assert.Contains(t, out.String(), "{1,$9.00}")
}

func TestEditor_RefusedCommitKeepsPreview(t *testing.T) {
	ctx := context.Background()
	e := newFixture(t).editor
	_, err := e.Import(ctx, strings.NewReader(spicedNuts+"\n"))
	require.NoError(t, err)

	rule := addPrice("0")
	rule.Actions = []supereditor.Action{{Category: supereditor.CategoryItemGroup, Operation: supereditor.Add, EntityID: domain.IDPtr(999)}}
	p := e.Preview(rule)
	require.Len(t, p.Changed, 1)

	_, err = e.Commit(ctx)
	require.Error(t, err)
	assert.Equal(t, domain.MissingItemGroup, domain.KindOf(err))
	assert.Equal(t, supereditor.Previewing, e.Session().State())

	it, _ := e.Catalog().Item(7400002)
	assert.Equal(t, domain.ID(125), *it.ItemGroup)

	require.NoError(t, e.Cancel())
	assert.ErrorIs(t, e.Cancel(), supereditor.ErrPreviewInactive)
	_, err = e.Commit(ctx)
	assert.ErrorIs(t, err, supereditor.ErrPreviewInactive)
}

func TestEditor_ImportStructuralErrorLeavesCatalog(t *testing.T) {
	ctx := context.Background()
	e := newFixture(t).editor
	_, err := e.Import(ctx, strings.NewReader(spicedNuts+"\n"))
	require.NoError(t, err)
	before := e.Catalog()

	_, err = e.Import(ctx, strings.NewReader(spicedNuts+"\n\"A\", 1, \"short\"\n"))
	assert.ErrorIs(t, err, posfile.ErrFieldCount)
	assert.True(t, before.Equal(e.Catalog()))
}

func TestEditor_EntityEditDropsPreview(t *testing.T) {
	ctx := context.Background()
	e := newFixture(t).editor
	_, err := e.Import(ctx, strings.NewReader(spicedNuts+"\n"))
	require.NoError(t, err)

	require.Len(t, e.Preview(addPrice("1.00")).Changed, 1)
	it, _ := e.Catalog().Item(7400002)
	it.Name = "Renamed Nuts"
	_, err = e.SaveEntity(it)
	require.NoError(t, err)
	assert.Equal(t, supereditor.Editing, e.Session().State())

	_, err = e.Commit(ctx)
	assert.ErrorIs(t, err, supereditor.ErrPreviewInactive)

	e.Preview(addPrice("1.00"))
	_, err = e.Commit(ctx)
	require.NoError(t, err)
	it, _ = e.Catalog().Item(7400002)
	assert.Equal(t, "Renamed Nuts", it.Name)
	assert.Equal(t, "9.00", domain.FormatMoney(*it.DefaultPrice))
}

func TestEditor_EntityDeleteDropsPreview(t *testing.T) {
	ctx := context.Background()
	e := newFixture(t).editor
	_, err := e.Import(ctx, strings.NewReader(spicedNuts+"\n"))
	require.NoError(t, err)

	require.Len(t, e.Preview(addPrice("1.00")).Changed, 1)
	require.NoError(t, e.DeleteEntity(domain.Ref{Kind: domain.KindItem, ID: 7400002}))

	_, err = e.Commit(ctx)
	assert.ErrorIs(t, err, supereditor.ErrPreviewInactive)
	_, ok := e.Catalog().Item(7400002)
	assert.False(t, ok)
}

func TestEditor_SaveAndDeleteEntity(t *testing.T) {
	ctx := context.Background()
	e := newFixture(t).editor
	_, err := e.Import(ctx, strings.NewReader(spicedNuts+"\n"))
	require.NoError(t, err)

	ref, err := e.SaveEntity(domain.TaxGroup{ID: domain.DraftID, Name: "Liquor", Rate: domain.MustMoney("0.1")})
	require.NoError(t, err)
	assert.Equal(t, domain.Ref{Kind: domain.KindTaxGroup, ID: 2}, ref)

	draft := domain.NewDraftItem("Olives")
	draft.ItemGroup = domain.IDPtr(125)
	_, err = e.SaveEntity(draft)
	assert.ErrorIs(t, err, catalog.ErrNoFreeID, "the imported group only spans the imported item")

	_, err = e.SaveEntity(domain.ItemGroup{ID: 125, Name: "Snacks", Range: domain.IDRange{Start: 7400000, End: 7400010}})
	require.NoError(t, err)
	ref, err = e.SaveEntity(draft)
	require.NoError(t, err)
	assert.Equal(t, domain.Ref{Kind: domain.KindItem, ID: 7400000}, ref)

	_, err = e.SaveEntity(domain.TaxGroup{ID: 2, Name: "Liquor", Rate: domain.MustMoney("2")})
	assert.Equal(t, domain.InvalidRate, domain.KindOf(err))

	err = e.DeleteEntity(domain.Ref{Kind: domain.KindTaxGroup, ID: 1})
	assert.Equal(t, domain.InvalidReference, domain.KindOf(err))
	require.NoError(t, e.DeleteEntity(domain.Ref{Kind: domain.KindTaxGroup, ID: 2}))
	assert.ErrorIs(t, e.DeleteEntity(domain.Ref{Kind: domain.KindTaxGroup, ID: 2}), domain.ErrNotFound)

	assert.Contains(t, e.Session().Filtered(), domain.ID(7400000))
}

func TestEditor_FilesAndPreferences(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	e := fx.editor
	e.LineEnding = posfile.CRLF

	in := filepath.Join(fx.dir, "in.txt")
	require.NoError(t, os.WriteFile(in, []byte(spicedNuts+"\n"), 0o644))
	_, err := e.ImportFile(ctx, in)
	require.NoError(t, err)

	out := filepath.Join(fx.dir, "out.txt")
	n, err := e.ExportFile(ctx, out)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, 2, strings.Count(string(data), "\r\n"))

	prefs, err := e.Preferences(ctx)
	require.NoError(t, err)
	assert.Equal(t, in, prefs.LastImport)
	assert.Equal(t, out, prefs.LastExport)
	assert.Equal(t, "crlf", prefs.LineEnding)

	// the saved line ending wins over the configured one
	require.NoError(t, e.Persist(ctx))
	again := NewEditor("bar", e.Store, nil)
	again.Prefs = e.Prefs
	require.NoError(t, again.Restore(ctx))
	assert.Equal(t, posfile.CRLF, again.LineEnding)

	_, err = e.ImportFile(ctx, filepath.Join(fx.dir, "absent.txt"))
	assert.Error(t, err)
}

func TestEditor_WithoutOptionalStores(t *testing.T) {
	ctx := context.Background()
	e := NewEditor("bare", repository.FileRepository{Dir: t.TempDir()}, nil)

	_, err := e.History(ctx, 5)
	assert.ErrorIs(t, err, ErrNoJournal)
	_, err = e.Preferences(ctx)
	assert.ErrorIs(t, err, ErrNoPreferences)

	require.NoError(t, e.Restore(ctx))
	e.Preview(supereditor.DefaultRule())
	changed, err := e.Commit(ctx)
	require.NoError(t, err)
	assert.Empty(t, changed)
	assert.Empty(t, e.Validate())
}

func TestEditor_RulePath(t *testing.T) {
	ctx := context.Background()
	fx := newFixture(t)
	e := fx.editor
	assert.Equal(t, "nuts.toml", e.RulePath(ctx, "nuts.toml"), "no preferences saved yet")

	rules := filepath.Join(fx.dir, "rules")
	_, err := e.SavePreferences(ctx, domain.Preferences{RuleDir: rules})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(rules, "nuts.toml"), e.RulePath(ctx, "nuts.toml"))

	abs := filepath.Join(fx.dir, "elsewhere.toml")
	assert.Equal(t, abs, e.RulePath(ctx, abs))
}
