// Package metrics exposes the engine's Prometheus counters.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	RemindersSent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "reminders_sent_total",
			Help: "Total number of reminder notifications successfully dispatched",
		},
	)
	DispatchFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "reminder_dispatch_failures_total",
			Help: "Total number of failed dispatch attempts",
		},
	)
	RecoveriesCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "reminder_recoveries_created_total",
			Help: "Total number of recovery reminders created for broken recurrence chains",
		},
	)
	DedupSkips = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "reminder_dedup_skips_total",
			Help: "Total number of occurrences skipped by the in-process dedup guard",
		},
	)
)

func init() {
	prometheus.MustRegister(RemindersSent, DispatchFailures, RecoveriesCreated, DedupSkips)
}
