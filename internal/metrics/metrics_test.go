package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/A-Disruption/property-menu-builder-sub000/internal/domain"
)

func TestRecorder_Counts(t *testing.T) {
	r := New()
	r.Imported(5, 1, []domain.Ref{
		{Kind: domain.KindTaxGroup, ID: 1},
		{Kind: domain.KindTaxGroup, ID: 2},
		{Kind: domain.KindItemGroup, ID: 125},
	})
	r.Previewed()
	r.Committed(3)
	r.CommitFailed()
	r.CatalogSize(4)

	assert.Equal(t, 5.0, testutil.ToFloat64(r.recordsImported))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.recordsSkipped))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.entitiesCreated.WithLabelValues("tax_group")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.entitiesCreated.WithLabelValues("item_group")))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.itemsCommitted))
	assert.Equal(t, 4.0, testutil.ToFloat64(r.catalogItems))
}

func TestRecorder_WriteTextfile(t *testing.T) {
	r := New()
	r.Exported(7)
	require.NoError(t, r.WriteTextfile(""))

	path := filepath.Join(t.TempDir(), "menued.prom")
	require.NoError(t, r.WriteTextfile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "menued_items_exported_total 7"))
}
