// Package metrics holds the Prometheus collectors for the bot. Labels are
// bounded enums (verdict kinds, pipeline steps, command names, documents).
package metrics

import (
	"context"
	"net/http"

	"canary-bot/internal/storage"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	automodVerdicts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "canary_automod_verdicts_total",
			Help: "Automod verdicts by kind.",
		},
		[]string{"kind"},
	)

	punishSteps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "canary_punish_steps_total",
			Help: "Punishment pipeline steps by step and result.",
		},
		[]string{"step", "result"},
	)

	commands = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "canary_commands_total",
			Help: "Slash commands and components handled, by name.",
		},
		[]string{"command"},
	)

	aiRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "canary_ai_requests_total",
			Help: "AI content generation requests by result.",
		},
		[]string{"result"},
	)

	storeWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "canary_store_writes_total",
			Help: "Document writes by document and result.",
		},
		[]string{"document", "result"},
	)
)

func init() {
	prometheus.MustRegister(automodVerdicts, punishSteps, commands, aiRequests, storeWrites)
}

func Handler() http.Handler {
	return promhttp.Handler()
}

func ObserveVerdict(kind string) {
	automodVerdicts.WithLabelValues(kind).Inc()
}

func ObservePunishStep(step string, err error) {
	punishSteps.WithLabelValues(step, result(err)).Inc()
}

func ObserveCommand(name string) {
	commands.WithLabelValues(name).Inc()
}

func ObserveAI(outcome string) {
	aiRequests.WithLabelValues(outcome).Inc()
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// InstrumentBackend counts writes going through backend.
func InstrumentBackend(backend storage.Backend) storage.Backend {
	return &instrumentedBackend{Backend: backend}
}

type instrumentedBackend struct {
	storage.Backend
}

func (b *instrumentedBackend) Write(ctx context.Context, name string, data []byte) error {
	err := b.Backend.Write(ctx, name, data)
	storeWrites.WithLabelValues(name, result(err)).Inc()
	return err
}
