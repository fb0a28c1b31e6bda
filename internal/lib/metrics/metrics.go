// Package metrics содержит счётчики prometheus сервиса.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PaymentsCreated количество сохранённых платежей.
	PaymentsCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "csa_payments_created_total",
		Help: "Number of payments persisted by the monthly payment builder.",
	})

	// PaymentRuns запуски генерации платежей по результату: ok или error.
	PaymentRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "csa_payment_runs_total",
		Help: "Number of monthly payment builder runs.",
	}, []string{"result"})

	// PaymentRunDuration длительность генерации платежей.
	PaymentRunDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "csa_payment_run_duration_seconds",
		Help:    "Duration of monthly payment builder runs.",
		Buckets: prometheus.DefBuckets,
	})

	// JokerOperations операции с джокерами: used или cancelled.
	JokerOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "csa_joker_operations_total",
		Help: "Number of jokers used or cancelled.",
	}, []string{"operation"})

	// NotificationsPublished опубликованные уведомления по ключу маршрутизации.
	NotificationsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "csa_notifications_published_total",
		Help: "Number of notifications published to the broker.",
	}, []string{"routing_key"})
)
