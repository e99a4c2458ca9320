// Package metrics counts editor activity on a private Prometheus registry and
// flushes it to a node-exporter textfile.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/A-Disruption/property-menu-builder-sub000/internal/domain"
)

type Recorder struct {
	Registry *prometheus.Registry

	recordsImported prometheus.Counter
	recordsSkipped  prometheus.Counter
	entitiesCreated *prometheus.CounterVec
	previews        prometheus.Counter
	itemsCommitted  prometheus.Counter
	commitFailures  prometheus.Counter
	itemsExported   prometheus.Counter
	catalogItems    prometheus.Gauge
}

func New() *Recorder {
	r := &Recorder{
		Registry: prometheus.NewRegistry(),
		recordsImported: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "menued", Name: "records_imported_total",
			Help: "POS records imported into the catalog.",
		}),
		recordsSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "menued", Name: "records_skipped_total",
			Help: "POS records skipped because they could not be decoded.",
		}),
		entitiesCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "menued", Name: "entities_created_total",
			Help: "Reference entities created for dangling references on import.",
		}, []string{"kind"}),
		previews: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "menued", Name: "previews_total",
			Help: "Bulk-edit previews built.",
		}),
		itemsCommitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "menued", Name: "items_committed_total",
			Help: "Items changed by accepted bulk edits.",
		}),
		commitFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "menued", Name: "commit_failures_total",
			Help: "Bulk-edit commits refused by validation.",
		}),
		itemsExported: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "menued", Name: "items_exported_total",
			Help: "Items written to POS files.",
		}),
		catalogItems: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "menued", Name: "catalog_items",
			Help: "Items in the catalog after the last operation.",
		}),
	}
	r.Registry.MustRegister(r.recordsImported, r.recordsSkipped, r.entitiesCreated, r.previews,
		r.itemsCommitted, r.commitFailures, r.itemsExported, r.catalogItems)
	return r
}

func (r *Recorder) Imported(records, skipped int, created []domain.Ref) {
	r.recordsImported.Add(float64(records))
	r.recordsSkipped.Add(float64(skipped))
	for _, ref := range created {
		r.entitiesCreated.WithLabelValues(ref.Kind.Slug()).Inc()
	}
}

func (r *Recorder) Previewed() { r.previews.Inc() }

func (r *Recorder) Committed(items int) { r.itemsCommitted.Add(float64(items)) }

func (r *Recorder) CommitFailed() { r.commitFailures.Inc() }

func (r *Recorder) Exported(items int) { r.itemsExported.Add(float64(items)) }

func (r *Recorder) CatalogSize(items int) { r.catalogItems.Set(float64(items)) }

// WriteTextfile flushes the registry to path in the text exposition format.
// An empty path is a no-op.
func (r *Recorder) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.Registry)
}
