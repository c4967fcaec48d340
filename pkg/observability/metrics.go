package observability

import (
	"context"
	"net/http"

	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the engine collectors. Each instance owns its registry so tests and
// multiple engines in one process do not collide.
type Metrics struct {
	Registry *prometheus.Registry

	Turns       *prometheus.CounterVec
	Unclear     *prometheus.CounterVec
	Questions   *prometheus.CounterVec
	Transitions *prometheus.CounterVec
	Plans       *prometheus.CounterVec
	Duration    *prometheus.HistogramVec
}

// NewMetrics creates and registers the collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Turns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "waypoint_turns_total",
			Help: "Processed dialogue turns by resulting phase.",
		}, []string{"domain", "mode", "phase"}),
		Unclear: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "waypoint_unclear_answers_total",
			Help: "Answers that could not be mapped to the pending question.",
		}, []string{"domain"}),
		Questions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "waypoint_questions_asked_total",
			Help: "Questions asked by ID.",
		}, []string{"domain", "question"}),
		Transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "waypoint_phase_transitions_total",
			Help: "Phase transitions.",
		}, []string{"from", "to"}),
		Plans: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "waypoint_plans_created_total",
			Help: "Plans persisted to the activity store.",
		}, []string{"domain"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "waypoint_turn_duration_seconds",
			Help:    "Time spent processing a turn.",
			Buckets: prometheus.DefBuckets,
		}, []string{"domain", "mode"}),
	}
	m.Registry.MustRegister(m.Turns, m.Unclear, m.Questions, m.Transitions, m.Plans, m.Duration)
	return m
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTurn: func(_ context.Context, e *domain.TurnEvent) {
			m.Turns.WithLabelValues(e.Domain, string(e.Mode), string(e.Phase)).Inc()
			m.Duration.WithLabelValues(e.Domain, string(e.Mode)).Observe(e.Duration.Seconds())
			if e.Unclear {
				m.Unclear.WithLabelValues(e.Domain).Inc()
			}
		},
		OnQuestionAsked: func(_ context.Context, e *domain.QuestionEvent) {
			m.Questions.WithLabelValues(e.Domain, e.QuestionID).Inc()
		},
		OnPhaseChange: func(_ context.Context, e *domain.PhaseEvent) {
			m.Transitions.WithLabelValues(string(e.From), string(e.To)).Inc()
		},
		OnPlanCreated: func(_ context.Context, e *domain.PlanEvent) {
			m.Plans.WithLabelValues(e.Domain).Inc()
		},
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}
