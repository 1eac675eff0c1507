// Package training composes the catalog, the persisted stores, the
// certificate issuer and the notification center into the operations the CLI
// and the TUI call. It owns no state of its own beyond the wiring: every
// record lives in the component that persists it.
package training

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kingrea/secureaware/internal/catalog"
	"github.com/kingrea/secureaware/internal/certificate"
	"github.com/kingrea/secureaware/internal/events"
	"github.com/kingrea/secureaware/internal/kvstore"
	"github.com/kingrea/secureaware/internal/logbook"
	"github.com/kingrea/secureaware/internal/metrics"
	"github.com/kingrea/secureaware/internal/notification"
	"github.com/kingrea/secureaware/internal/profile"
	"github.com/kingrea/secureaware/internal/progress"
	"github.com/kingrea/secureaware/internal/quiz"
)

// Settings tunes the behavior the config file controls.
type Settings struct {
	PassThreshold      float64
	StableCertificates bool
	BackdateDays       int
	SeedWelcome        bool
}

// DefaultSettings mirrors the defaults of config.yaml.
func DefaultSettings() Settings {
	return Settings{
		PassThreshold:      quiz.PassThreshold,
		StableCertificates: true,
		BackdateDays:       30,
		SeedWelcome:        true,
	}
}

// Option customizes a Service.
type Option func(*Service)

// WithSettings overrides DefaultSettings.
func WithSettings(s Settings) Option {
	return func(svc *Service) {
		svc.settings = s
	}
}

// WithClock injects a deterministic clock (primarily for tests).
func WithClock(clock func() time.Time) Option {
	return func(svc *Service) {
		if clock != nil {
			svc.clock = clock
		}
	}
}

// WithRandom injects the random source used for certificates.
func WithRandom(r certificate.RandomSource) Option {
	return func(svc *Service) {
		svc.random = r
	}
}

// WithLogger injects a logger shared by every component.
func WithLogger(logger *zap.Logger) Option {
	return func(svc *Service) {
		if logger != nil {
			svc.logger = logger
		}
	}
}

// WithMetrics attaches session counters.
func WithMetrics(m *metrics.Metrics) Option {
	return func(svc *Service) {
		svc.metrics = m
	}
}

// WithJournal attaches the learner activity journal.
func WithJournal(j *logbook.Logbook) Option {
	return func(svc *Service) {
		svc.journal = j
	}
}

// WithNotificationIDs overrides how notification ids are minted.
func WithNotificationIDs(gen func() string) Option {
	return func(svc *Service) {
		svc.notificationIDs = gen
	}
}

// Service is the top-level coordinator.
type Service struct {
	mu sync.Mutex

	catalog  *catalog.Catalog
	grader   quiz.Grader
	progress *progress.Store
	profiles *profile.Store
	issuer   *certificate.Issuer
	center   *notification.Center
	bus      *events.Bus

	settings        Settings
	clock           func() time.Time
	random          certificate.RandomSource
	notificationIDs func() string
	logger          *zap.Logger
	metrics         *metrics.Metrics
	journal         *logbook.Logbook
}

// New wires a service over the catalog and the key-value store. Persisted
// records are loaded once here; unreadable records fall back to defaults.
func New(cat *catalog.Catalog, kv kvstore.Store, opts ...Option) (*Service, error) {
	if cat == nil {
		return nil, fmt.Errorf("training: catalog is required")
	}
	if kv == nil {
		return nil, fmt.Errorf("training: key-value store is required")
	}
	svc := &Service{
		catalog:  cat,
		settings: DefaultSettings(),
		clock:    time.Now,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	svc.grader = quiz.NewGrader(svc.settings.PassThreshold)
	svc.bus = events.NewBus(events.WithLogger(svc.logger), events.WithClock(svc.clock))

	var err error
	svc.progress, err = progress.Open(kv,
		progress.WithLogger(svc.logger.Named("progress")),
		progress.WithPublisher(svc.bus),
	)
	if err != nil {
		return nil, err
	}
	svc.profiles, err = profile.Open(kv,
		profile.WithLogger(svc.logger.Named("profile")),
		profile.WithPublisher(svc.bus),
	)
	if err != nil {
		return nil, err
	}

	issuerOpts := []certificate.Option{
		certificate.WithClock(svc.clock),
		certificate.WithRandom(svc.random),
		certificate.WithBackdateDays(svc.settings.BackdateDays),
		certificate.WithLogger(svc.logger.Named("certificate")),
	}
	if svc.settings.StableCertificates {
		issuerOpts = append(issuerOpts, certificate.WithStableStore(kv))
	}
	svc.issuer, err = certificate.NewIssuer(cat, issuerOpts...)
	if err != nil {
		return nil, err
	}

	svc.center = notification.NewCenter(
		notification.WithClock(svc.clock),
		notification.WithIDGenerator(svc.notificationIDs),
		notification.WithLogger(svc.logger.Named("notification")),
		notification.WithObserver(func(n notification.Notification) {
			svc.metrics.ObserveNotification(string(n.Type))
		}),
	)

	svc.bus.Subscribe(events.ProcessorFunc(svc.handleModuleCompleted), events.ModuleCompleted)
	svc.bus.Subscribe(events.ProcessorFunc(svc.handleProfileEvent), events.ProfileUpdated, events.PasswordUpdated)

	if svc.settings.SeedWelcome {
		notification.Seed(svc.center, svc.clock())
	}
	svc.refreshCompletionGauge()
	return svc, nil
}

// Catalog returns the module catalog.
func (s *Service) Catalog() *catalog.Catalog {
	return s.catalog
}

// Settings returns the active settings.
func (s *Service) Settings() Settings {
	return s.settings
}

// Notifications exposes the notification center for read-state changes.
func (s *Service) Notifications() *notification.Center {
	return s.center
}

// Metrics returns the attached counters, which may be nil.
func (s *Service) Metrics() *metrics.Metrics {
	return s.metrics
}

// Logger returns the service logger.
func (s *Service) Logger() *zap.Logger {
	return s.logger
}

// Activity returns the most recent journal lines and the journal length.
func (s *Service) Activity(n int) ([]string, int) {
	return s.journal.Tail(n)
}

// Module returns one module from the catalog.
func (s *Service) Module(id string) (catalog.Module, error) {
	return s.catalog.Module(id)
}

// IsCompleted reports whether the module has been passed.
func (s *Service) IsCompleted(moduleID string) bool {
	return s.progress.IsCompleted(moduleID)
}

// Completed returns the CompletionSet in insertion order.
func (s *Service) Completed() []string {
	return s.progress.Completed()
}

// Modules lists catalog modules matching query and filter.
func (s *Service) Modules(query string, filter catalog.CompletionFilter) []catalog.Module {
	return catalog.Search(s.catalog.ListModules(), query, filter, s.progress.IsCompleted)
}

// Dashboard summarizes progress across the catalog.
func (s *Service) Dashboard() progress.Summary {
	return progress.Summarize(s.catalog.ListModules(), s.progress.IsCompleted)
}

// Certificates lists certificates, newest first, keeping those whose module
// name contains query.
func (s *Service) Certificates(query string) []certificate.Certificate {
	return certificate.Search(s.issuer.List(s.progress.Completed()), query)
}

// Certificate returns the detail view for one certificate. It fails with
// certificate.ErrNotFound or catalog.ErrModuleNotFound; callers show an empty
// detail view in either case.
func (s *Service) Certificate(id string) (certificate.Detail, error) {
	cert, mod, err := s.issuer.Find(s.progress.Completed(), id)
	if err != nil {
		return certificate.Detail{}, err
	}
	p := s.profiles.Profile()
	return certificate.Detail{
		Certificate: cert,
		Module:      mod,
		Recipient: certificate.Recipient{
			Name:       p.Name,
			Role:       p.Role,
			Department: p.Department,
		},
	}, nil
}

// ExportCertificate renders one certificate as PDF into w.
func (s *Service) ExportCertificate(id string, w io.Writer) error {
	detail, err := s.Certificate(id)
	if err != nil {
		return err
	}
	if err := certificate.ExportPDF(w, detail); err != nil {
		return err
	}
	s.exported(detail)
	return nil
}

// ExportCertificateFile writes one certificate PDF into dir and returns the
// file path.
func (s *Service) ExportCertificateFile(id, dir string) (string, error) {
	detail, err := s.Certificate(id)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("training: ensure %s: %w", dir, err)
	}
	path := filepath.Join(dir, certificate.FileName(detail.Certificate))
	if err := certificate.ExportFile(path, detail); err != nil {
		return "", err
	}
	s.exported(detail)
	return path, nil
}

func (s *Service) exported(detail certificate.Detail) {
	if s.metrics != nil {
		s.metrics.CertificatesExported.Inc()
	}
	s.logger.Info("certificate exported", zap.String("certificate_id", detail.Certificate.ID))
	_ = s.journal.Info("exported certificate %s (%s)", detail.Certificate.CertificateNumber, detail.Certificate.ModuleName)
}

// Profile returns the learner profile.
func (s *Service) Profile() profile.Profile {
	return s.profiles.Profile()
}

// UpdateProfile replaces the profile wholesale.
func (s *Service) UpdateProfile(p profile.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.profiles.Update(p); err != nil {
		return err
	}
	if s.metrics != nil {
		s.metrics.ProfileUpdates.Inc()
	}
	_ = s.journal.Info("profile updated")
	return nil
}

// ChangePassword validates the password form. No credential is stored; on
// success a notification confirms the change.
func (s *Service) ChangePassword(req profile.PasswordChange) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.profiles.UpdatePassword(req); err != nil {
		if s.metrics != nil {
			s.metrics.PasswordChangeRejects.Inc()
		}
		return err
	}
	_ = s.journal.Info("password changed")
	return nil
}

func (s *Service) refreshCompletionGauge() {
	if s.metrics == nil {
		return
	}
	s.metrics.CompletionPercent.Set(float64(s.Dashboard().Percentage))
}
