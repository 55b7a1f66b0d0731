package metrics

import (
	"context"
	"fmt"

	"github.com/aretw0/exprmig/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "exprmig"

// Collector counts migration events. It owns its registry so that several
// collectors can live in one process (tests, embedded use).
type Collector struct {
	registry *prometheus.Registry

	documents         *prometheus.CounterVec
	occurrences       *prometheus.CounterVec
	rewrites          *prometheus.CounterVec
	replaced          *prometheus.CounterVec
	resolutionErrors  prometheus.Counter
	persistenceErrors prometheus.Counter
}

// New creates a Collector with all series registered.
func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		documents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "documents_visited_total",
				Help:      "Documents selected and processed by the engine",
			},
			[]string{"service"},
		),
		occurrences: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "occurrences_total",
				Help:      "Legacy expression occurrences found",
			},
			[]string{"service", "type"},
		),
		rewrites: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rewrites_total",
				Help:      "Sites rewritten with a translation",
			},
			[]string{"type"},
		),
		replaced: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "documents_replaced_total",
				Help:      "Documents persisted in commit mode",
			},
			[]string{"service"},
		),
		resolutionErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolution_errors_total",
			Help:      "Occurrences without an entry in the translation table",
		}),
		persistenceErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "persistence_errors_total",
			Help:      "Documents the store refused to replace",
		}),
	}

	c.registry.MustRegister(
		c.documents,
		c.occurrences,
		c.rewrites,
		c.replaced,
		c.resolutionErrors,
		c.persistenceErrors,
	)
	return c
}

// Registry returns the registry holding the collector series.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Hooks returns lifecycle hooks that feed the collector.
func (c *Collector) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnDocument: func(_ context.Context, e *domain.DocumentEvent) {
			c.documents.WithLabelValues(e.Service).Inc()
		},
		OnOccurrence: func(_ context.Context, o *domain.Occurrence) {
			c.occurrences.WithLabelValues(o.Service, string(o.Type)).Inc()
		},
		OnRewrite: func(_ context.Context, e *domain.RewriteEvent) {
			c.rewrites.WithLabelValues(string(e.Type)).Inc()
		},
		OnReplace: func(_ context.Context, e *domain.DocumentEvent) {
			c.replaced.WithLabelValues(e.Service).Inc()
		},
		OnResolutionError: func(context.Context, *domain.ResolutionError) {
			c.resolutionErrors.Inc()
		},
		OnPersistenceError: func(context.Context, *domain.PersistenceError) {
			c.persistenceErrors.Inc()
		},
	}
}

// WriteTextfile exports the series in the text exposition format, for the node
// exporter textfile collector. The file is replaced atomically.
func (c *Collector) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, c.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
