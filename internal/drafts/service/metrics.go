package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	draftsSavedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pcbuild_drafts_saved_total",
		Help: "Total number of drafts saved.",
	})

	draftsDeletedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pcbuild_drafts_deleted_total",
		Help: "Total number of drafts deleted.",
	})

	draftStoreErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pcbuild_draft_store_errors_total",
			Help: "Total number of failed draft store operations by operation.",
		},
		[]string{"op"},
	)
)
