package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var connectionsGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "server",
	Name:      "connections_active",
	Help:      "Number of active ws connections",
}, []string{"tenant"})

var sessionsStarted = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "ocpp",
	Name:      "sessions_started_total",
	Help:      "Total number of started charging sessions.",
}, []string{"tenant", "charge_box_id"})

var sessionsStopped = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "ocpp",
	Name:      "sessions_stopped_total",
	Help:      "Total number of stopped charging sessions.",
}, []string{"tenant", "charge_box_id", "reason"})

var consumptionCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "ocpp",
	Name:      "consumption_wh_total",
	Help:      "Total metered consumption in Wh.",
}, []string{"tenant", "charge_box_id"})

var inactivityCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "ocpp",
	Name:      "inactivity_seconds_total",
	Help:      "Total session time without energy delivery in seconds.",
}, []string{"tenant", "charge_box_id"})

var errorCounts = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "ocpp",
	Name:      "connector_error_count",
	Help:      "Total number of connector errors by code.",
}, []string{"tenant", "code", "charge_box_id"})

func observeConnections(tenant string, count int) {
	if len(tenant) == 0 {
		return
	}
	connectionsGauge.With(prometheus.Labels{"tenant": tenant}).Set(float64(count))
}

func observeSessionStart(tenant, chargeBoxId string) {
	sessionsStarted.With(prometheus.Labels{"tenant": tenant, "charge_box_id": chargeBoxId}).Inc()
}

func observeSessionStop(tenant, chargeBoxId, reason string) {
	sessionsStopped.With(prometheus.Labels{"tenant": tenant, "charge_box_id": chargeBoxId, "reason": reason}).Inc()
}

func observeConsumption(tenant, chargeBoxId string, wh float64) {
	if wh <= 0 {
		return
	}
	consumptionCounter.With(prometheus.Labels{"tenant": tenant, "charge_box_id": chargeBoxId}).Add(wh)
}

func observeInactivity(tenant, chargeBoxId string, secs int) {
	if secs <= 0 {
		return
	}
	inactivityCounter.With(prometheus.Labels{"tenant": tenant, "charge_box_id": chargeBoxId}).Add(float64(secs))
}

func observeError(tenant, chargeBoxId, code string) {
	if len(tenant) == 0 || len(code) == 0 || len(chargeBoxId) == 0 {
		return
	}
	errorCounts.With(prometheus.Labels{"tenant": tenant, "code": code, "charge_box_id": chargeBoxId}).Inc()
}
