package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ScanOutcomes counts scan attempts by terminal status.
var ScanOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "sems",
	Name:      "scan_outcomes_total",
	Help:      "Scan attempts by terminal status.",
}, []string{"status"})

// AvailabilityChecks counts venue availability resolutions by status.
var AvailabilityChecks = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "sems",
	Name:      "venue_availability_checks_total",
	Help:      "Venue availability resolutions by resulting status.",
}, []string{"status"})
