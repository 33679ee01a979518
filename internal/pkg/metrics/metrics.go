// Package metrics defines and registers all custom Prometheus metrics for the
// rental API. It is the single source of truth for metric names, labels, and
// help strings.
//
// Metrics are registered with the default Prometheus registry on package
// initialisation; HTTP request metrics come from the echoprometheus middleware.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "rental"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthRegistrationsTotal counts registration attempts.
// Label:
//   - result: "success" or "email_taken"
var AuthRegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_registrations_total",
		Help:      "Total number of registration attempts, by result.",
	},
	[]string{"result"},
)

// AuthLoginsTotal counts login attempts.
// Label:
//   - result: "success", "email_not_registered" or "wrong_password"
var AuthLoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// AuthRejectionsTotal counts requests turned away by the access control gate.
// Label:
//   - reason: the error name rendered to the client (e.g. "TokenMissingError")
var AuthRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_rejections_total",
		Help:      "Total number of requests rejected by the access control gate.",
	},
	[]string{"reason"},
)

// ── Rental metrics ────────────────────────────────────────────────────────────

// RentalsCreatedTotal counts rental windows written to storage.
var RentalsCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rentals_created_total",
		Help:      "Total number of rental windows created.",
	},
)

// RentalConflictsTotal counts rental requests rejected as double bookings.
// Label:
//   - source: "check" (found by the conflict query) or "storage" (rejected by the store)
var RentalConflictsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "rental_conflicts_total",
		Help:      "Total number of rental requests rejected because the car was already rented.",
	},
	[]string{"source"},
)

// VehicleLockWaitDuration measures how long a rental request waited for the
// per-vehicle lock.
// Label:
//   - backend: "local", "redis" or "postgres"
var VehicleLockWaitDuration = promauto.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "vehicle_lock_wait_seconds",
		Help:      "Time spent waiting to acquire the per-vehicle rental lock.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"backend"},
)
