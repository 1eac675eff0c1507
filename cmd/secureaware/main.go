// cmd/secureaware/main.go
//
// This is the entry point for the SecureAware CLI.
// Running `secureaware` in a terminal opens the training TUI; the
// subcommands print the same data for scripts and pipes.
//
// Flow:
// 1. Load .env and .secureaware/config.yaml for the working directory
// 2. Wire logging, the persisted state and the training service
// 3. Launch the TUI or run the requested subcommand
// 4. Flush metrics and close the log on the way out

package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/kingrea/secureaware/internal/catalog"
	"github.com/kingrea/secureaware/internal/config"
	"github.com/kingrea/secureaware/internal/kvstore"
	"github.com/kingrea/secureaware/internal/logbook"
	"github.com/kingrea/secureaware/internal/logging"
	"github.com/kingrea/secureaware/internal/metrics"
	"github.com/kingrea/secureaware/internal/training"
	"github.com/kingrea/secureaware/internal/tui"
)

const (
	Version = "1.0.0"
	appName = "secureaware"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// session is everything one invocation wires up.
type session struct {
	cfg     *config.Config
	log     *logging.Logger
	metrics *metrics.Metrics
	svc     *training.Service
}

func openSession() (*session, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}
	cfg, err := config.NewConfig(cwd)
	if err != nil {
		return nil, err
	}
	if err := config.InitDataDir(cfg.DataDir); err != nil {
		return nil, fmt.Errorf("initialize %s: %w", cfg.DataDir, err)
	}
	log, err := logging.FromConfig(cfg)
	if err != nil {
		return nil, err
	}

	cat, err := catalog.Open(cfg.CatalogPath())
	if err != nil {
		_ = log.Close()
		return nil, err
	}
	kv, err := kvstore.NewFileStore(cfg.StateDir())
	if err != nil {
		_ = log.Close()
		return nil, err
	}
	journal, err := logbook.New(cfg.JournalPath())
	if err != nil {
		_ = log.Close()
		return nil, err
	}
	m := metrics.New()
	svc, err := training.New(cat, kv,
		training.WithSettings(training.Settings{
			PassThreshold:      cfg.PassThreshold(),
			StableCertificates: cfg.StableCertificates(),
			BackdateDays:       cfg.BackdateDays(),
			SeedWelcome:        cfg.SeedWelcome(),
		}),
		training.WithLogger(log.Logger),
		training.WithMetrics(m),
		training.WithJournal(journal),
	)
	if err != nil {
		_ = log.Close()
		return nil, err
	}
	log.Info("session started",
		zap.String("data_dir", cfg.DataDir),
		zap.Int("modules", cat.Len()),
		zap.Bool("stable_certificates", cfg.StableCertificates()),
	)
	return &session{cfg: cfg, log: log, metrics: m, svc: svc}, nil
}

func (s *session) close() {
	if err := s.metrics.Flush(s.cfg.MetricsFile()); err != nil {
		s.log.Warn("flush metrics", zap.Error(err))
	}
	_ = s.log.Sync()
	_ = s.log.Close()
}

// withSession opens a session for the duration of fn.
func withSession(fn func(*session) error) error {
	s, err := openSession()
	if err != nil {
		return err
	}
	defer s.close()
	return fn(s)
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   appName,
		Short: "Security awareness training in your terminal",
		Long: `SecureAware walks you through short security training modules,
grades the quiz at the end of each one and awards a certificate for
every module you pass.

Run it without arguments in a terminal to open the interactive trainer.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(func(s *session) error {
				if !term.IsTerminal(int(os.Stdout.Fd())) {
					return printStatus(cmd.OutOrStdout(), s.svc)
				}
				return runTUI(s)
			})
		},
	}

	cmd.AddCommand(
		statusCmd(),
		modulesCmd(),
		certificatesCmd(),
		exportCmd(),
		notificationsCmd(),
		versionCmd(),
	)
	return cmd
}

func runTUI(s *session) error {
	app, err := tui.NewApp(s.svc, tui.WithExportDir(s.cfg.CertificatesDir()))
	if err != nil {
		return err
	}
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run TUI: %w", err)
	}
	return nil
}
