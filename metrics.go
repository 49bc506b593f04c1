package demgrid

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	samplesStored = promauto.NewCounter(prometheus.CounterOpts{
		Name: "demgrid_samples_stored_total",
		Help: "The total number of samples stored in a grid",
	})
	samplesOutOfBounds = promauto.NewCounter(prometheus.CounterOpts{
		Name: "demgrid_samples_out_of_bounds_total",
		Help: "The total number of samples dropped because they were outside the grid",
	})
	malformedRows = promauto.NewCounter(prometheus.CounterOpts{
		Name: "demgrid_malformed_rows_total",
		Help: "The total number of input rows skipped because they could not be parsed",
	})
	sourcesIngested = promauto.NewCounter(prometheus.CounterOpts{
		Name: "demgrid_sources_ingested_total",
		Help: "The total number of sources ingested",
	})
	sourcesFailed = promauto.NewCounter(prometheus.CounterOpts{
		Name: "demgrid_sources_failed_total",
		Help: "The total number of sources skipped because of errors",
	})
	cellsFilled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "demgrid_cells_filled_total",
		Help: "The total number of NoData cells filled from their nearest neighbor",
	})
	lookupCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "demgrid_lookup_cache_hits_total",
		Help: "The total number of hits on the lookup cell cache",
	})
	lookupCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "demgrid_lookup_cache_misses_total",
		Help: "The total number of misses on the lookup cell cache",
	})
)
