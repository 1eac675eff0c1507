// Package metrics counts what happens during a session. There is no scrape
// endpoint; the registry is flushed to a node-exporter textfile on exit.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "secureaware"

// Quiz attempt results.
const (
	ResultPass       = "pass"
	ResultFail       = "fail"
	ResultIncomplete = "incomplete"
)

// Metrics holds the session collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	QuizAttempts          *prometheus.CounterVec
	QuizScore             prometheus.Histogram
	ModulesCompleted      prometheus.Counter
	CompletionPercent     prometheus.Gauge
	NotificationsEmitted  *prometheus.CounterVec
	CertificatesExported  prometheus.Counter
	ProfileUpdates        prometheus.Counter
	PasswordChangeRejects prometheus.Counter
}

// New registers the collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		QuizAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "quiz_attempts_total",
				Help:      "Quiz submissions by module and result",
			},
			[]string{"module", "result"},
		),
		QuizScore: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "quiz_score_percent",
				Help:      "Scores of graded quiz submissions",
				Buckets:   []float64{0, 34, 50, 67, 70, 80, 90, 100},
			},
		),
		ModulesCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "modules_completed_total",
			Help:      "Modules newly completed this session",
		}),
		CompletionPercent: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "completion_percent",
			Help:      "Share of the catalog the learner has completed",
		}),
		NotificationsEmitted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "notifications_emitted_total",
				Help:      "Notifications emitted by type",
			},
			[]string{"type"},
		),
		CertificatesExported: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "certificates_exported_total",
			Help:      "Certificates rendered to PDF",
		}),
		ProfileUpdates: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "profile_updates_total",
			Help:      "Saved profile changes",
		}),
		PasswordChangeRejects: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "password_change_rejected_total",
			Help:      "Password changes rejected by validation",
		}),
	}
	m.registry.MustRegister(
		m.QuizAttempts,
		m.QuizScore,
		m.ModulesCompleted,
		m.CompletionPercent,
		m.NotificationsEmitted,
		m.CertificatesExported,
		m.ProfileUpdates,
		m.PasswordChangeRejects,
	)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveQuiz records one graded attempt.
func (m *Metrics) ObserveQuiz(moduleID string, score float64, passed bool) {
	if m == nil {
		return
	}
	result := ResultFail
	if passed {
		result = ResultPass
	}
	m.QuizAttempts.WithLabelValues(moduleID, result).Inc()
	m.QuizScore.Observe(score)
}

// ObserveIncomplete records a submission rejected for missing answers.
func (m *Metrics) ObserveIncomplete(moduleID string) {
	if m == nil {
		return
	}
	m.QuizAttempts.WithLabelValues(moduleID, ResultIncomplete).Inc()
}

// ObserveNotification records an emitted notification.
func (m *Metrics) ObserveNotification(notificationType string) {
	if m == nil {
		return
	}
	m.NotificationsEmitted.WithLabelValues(notificationType).Inc()
}

// Flush writes the registry to path in the text exposition format.
func (m *Metrics) Flush(path string) error {
	if m == nil {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("metrics: ensure dir: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("metrics: write %s: %w", path, err)
	}
	return nil
}
