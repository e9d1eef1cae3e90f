package handler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var scansTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "canteen_scans_total",
	Help: "Badge scans processed, labelled by mode and outcome.",
}, []string{"mode", "outcome"})
