package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	transactionsImported = promauto.NewCounter(prometheus.CounterOpts{
		Name: "superapp_transactions_imported_total",
		Help: "New transaction rows created by link and sync runs",
	})

	accountsLinked = promauto.NewCounter(prometheus.CounterOpts{
		Name: "superapp_accounts_saved_total",
		Help: "Linked accounts inserted or refreshed",
	})

	ingestionFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "superapp_ingestion_failures_total",
		Help: "Ingestion steps that failed, by stage",
	}, []string{"stage"})
)
