package session

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/A-Disruption/property-menu-builder-sub000/internal/catalog"
	"github.com/A-Disruption/property-menu-builder-sub000/internal/domain"
)

func sampleCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat := catalog.New()
	for _, e := range []domain.Entity{
		domain.ItemGroup{ID: 125, Name: "Snacks", Range: domain.IDRange{Start: 7400000, End: 7400010}},
		domain.PriceLevel{ID: 2, Name: "Happy Hour", Price: domain.MustMoney("1.50"), Type: domain.PriceLevelStore},
		domain.TaxGroup{ID: 1, Name: "Food", Rate: domain.MustMoney("0.0825")},
		domain.Named{Kind: domain.KindRevenueCategory, ID: 0, Name: "None"},
		domain.Named{Kind: domain.KindPrinterLogical, ID: 2, Name: "Kitchen"},
		domain.Named{Kind: domain.KindChoiceGroup, ID: 5, Name: "Sauces"},
	} {
		require.NoError(t, cat.Insert(e))
	}

	it := domain.NewDraftItem("Spiced Nuts")
	it.ID = 7400002
	it.DefaultPrice = domain.MoneyPtr(domain.MustMoney("8"))
	it.ItemGroup = domain.IDPtr(125)
	it.TaxGroup = domain.IDPtr(1)
	it.RevenueCategory = domain.IDPtr(0)
	it.ItemPrices = []domain.ItemPrice{{LevelID: 2, Price: domain.MustMoney("6.5")}}
	it.PriceLevels = []domain.ID{2}
	it.PrinterLogicals = []domain.PrinterRef{{ID: 2, Primary: true}}
	it.ChoiceGroups = []domain.ChoiceGroupRef{{ID: 5, Sequence: 1}}
	require.NoError(t, cat.Insert(it))
	return cat
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	cat := sampleCatalog(t)
	path := Path(t.TempDir(), "bar menu")
	assert.True(t, strings.HasSuffix(path, "bar_menu.json"))

	prefs := domain.Preferences{LineEnding: "crlf", LastImport: "menu.csv"}
	require.NoError(t, Save(path, FromCatalog("bar menu", cat, prefs)))

	doc, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Version, doc.Version)
	assert.Equal(t, "bar menu", doc.Catalog)
	assert.Equal(t, "crlf", doc.Preferences.LineEnding)
	assert.False(t, doc.SavedAt.IsZero())

	got, err := doc.ToCatalog()
	require.NoError(t, err)
	assert.True(t, cat.Equal(got))
	name, ok := got.ResolveName(domain.KindPrinterLogical, 2)
	require.True(t, ok)
	assert.Equal(t, "Kitchen", name)
}

func TestSave_NoTempLeftBehind(t *testing.T) {
	dir := t.TempDir()
	path := Path(dir, "menu")
	require.NoError(t, Save(path, FromCatalog("menu", catalog.New(), domain.Preferences{})))
	require.NoError(t, Save(path, FromCatalog("menu", sampleCatalog(t), domain.Preferences{})))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "menu.json", entries[0].Name())
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "absent.json"))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"version": 7}`), 0o644))
	_, err = Load(bad)
	assert.ErrorIs(t, err, ErrVersion)

	garbled := filepath.Join(dir, "garbled.json")
	require.NoError(t, os.WriteFile(garbled, []byte(`{`), 0o644))
	_, err = Load(garbled)
	assert.Error(t, err)
}

func TestToCatalog_RejectsBadIDs(t *testing.T) {
	doc := Document{Version: Version, TaxGroups: []domain.TaxGroup{{ID: 500, Name: "Bad"}}}
	_, err := doc.ToCatalog()
	assert.Equal(t, domain.InvalidID, domain.KindOf(err))
}
