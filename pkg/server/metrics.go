package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// SpinsTotal counts daily spins by outcome label.
var SpinsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "zeuscoins",
	Subsystem: "spin",
	Name:      "spins_total",
	Help:      "Total daily spins, labeled by wheel outcome.",
}, []string{"outcome"})

// SpinsRejectedTotal counts spins blocked by the cooldown gate.
var SpinsRejectedTotal = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "zeuscoins",
	Subsystem: "spin",
	Name:      "rejected_total",
	Help:      "Total spin attempts rejected by the cooldown gate.",
})

// RedemptionsTotal counts catalog redemptions by reward key.
var RedemptionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "zeuscoins",
	Subsystem: "redeem",
	Name:      "redemptions_total",
	Help:      "Total reward redemptions, labeled by reward key.",
}, []string{"reward"})

// AdjustmentsTotal counts staff balance adjustments by reason code.
var AdjustmentsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "zeuscoins",
	Subsystem: "staff",
	Name:      "adjustments_total",
	Help:      "Total staff balance adjustments, labeled by reason.",
}, []string{"reason"})

// CoinsMoved tracks the absolute coin volume flowing through mutations.
var CoinsMoved = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "zeuscoins",
	Subsystem: "economy",
	Name:      "coins_moved_total",
	Help:      "Absolute coin volume applied, labeled by direction.",
}, []string{"direction"})
