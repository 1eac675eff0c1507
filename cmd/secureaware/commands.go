package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/spf13/cobra"

	"github.com/kingrea/secureaware/internal/catalog"
	"github.com/kingrea/secureaware/internal/certificate"
	"github.com/kingrea/secureaware/internal/notification"
	"github.com/kingrea/secureaware/internal/training"
)

func statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show overall training progress",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(func(s *session) error {
				return printStatus(cmd.OutOrStdout(), s.svc)
			})
		},
	}
}

func printStatus(w io.Writer, svc *training.Service) error {
	sum := svc.Dashboard()
	p := svc.Profile()
	fmt.Fprintf(w, "%s (%s, %s)\n", p.Name, p.Role, p.Department)
	fmt.Fprintf(w, "Progress: %d%% · %d of %d modules completed, %d remaining\n",
		sum.Percentage, sum.Completed, sum.Total, sum.Remaining)
	if len(sum.Recommended) > 0 {
		fmt.Fprintln(w, "\nRecommended next:")
		for _, mod := range sum.Recommended {
			fmt.Fprintf(w, "  - %s (%s, %d min)\n", mod.Title, mod.Level, mod.Duration)
		}
	}
	if len(sum.Achievements) > 0 {
		fmt.Fprintln(w, "\nAchievements:")
		for _, ach := range sum.Achievements {
			fmt.Fprintf(w, "  * %s: %s\n", ach.Title, ach.Description)
		}
	}
	fmt.Fprintf(w, "\nUnread notifications: %d\n", svc.Notifications().UnreadCount())
	return nil
}

func modulesCmd() *cobra.Command {
	var (
		filter string
		search string
	)
	cmd := &cobra.Command{
		Use:   "modules",
		Short: "List training modules",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := catalog.ParseCompletionFilter(filter)
			if err != nil {
				return err
			}
			return withSession(func(s *session) error {
				mods := s.svc.Modules(search, f)
				if len(mods) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No modules match your search.")
					return nil
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tTITLE\tLEVEL\tMINUTES\tSTATUS")
				for _, mod := range mods {
					status := "incomplete"
					if s.svc.IsCompleted(mod.ID) {
						status = "completed"
					}
					fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\n", mod.ID, mod.Title, mod.Level, mod.Duration, status)
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().StringVarP(&filter, "filter", "f", "all", "Completion filter (all, completed, incomplete)")
	cmd.Flags().StringVarP(&search, "search", "s", "", "Only modules whose title or description contains this text")
	return cmd
}

func certificatesCmd() *cobra.Command {
	var search string
	cmd := &cobra.Command{
		Use:   "certificates",
		Short: "List earned certificates, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(func(s *session) error {
				certs := s.svc.Certificates(search)
				if len(certs) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No certificates yet. Complete a training module to earn one.")
					return nil
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tMODULE\tNUMBER\tISSUED")
				for _, c := range certs {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.ID, c.ModuleName, c.CertificateNumber, certificate.FormatIssueDate(c))
				}
				return tw.Flush()
			})
		},
	}
	cmd.Flags().StringVarP(&search, "search", "s", "", "Only certificates whose module name contains this text")
	cmd.AddCommand(certificateModeCmd())
	return cmd
}

func certificateModeCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "mode [stable|derived]",
		Short:     "Show or set whether certificate numbers are kept once minted",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"stable", "derived"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(func(s *session) error {
				if len(args) == 0 {
					mode := "derived"
					if s.cfg.StableCertificates() {
						mode = "stable"
					}
					fmt.Fprintln(cmd.OutOrStdout(), mode)
					return nil
				}
				switch args[0] {
				case "stable":
					return s.cfg.SetStableCertificates(true)
				case "derived":
					return s.cfg.SetStableCertificates(false)
				}
				return fmt.Errorf("unknown mode %q (want stable or derived)", args[0])
			})
		},
	}
}

func exportCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "export <certificate-id>",
		Short: "Export a certificate as PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(func(s *session) error {
				id := args[0]
				if out == "" {
					path, err := s.svc.ExportCertificateFile(id, s.cfg.CertificatesDir())
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Certificate saved to %s\n", path)
					return nil
				}
				if out == "-" {
					return s.svc.ExportCertificate(id, cmd.OutOrStdout())
				}
				if info, err := os.Stat(out); err == nil && info.IsDir() {
					path, err := s.svc.ExportCertificateFile(id, out)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "Certificate saved to %s\n", path)
					return nil
				}
				f, err := os.Create(out)
				if err != nil {
					return err
				}
				if err := s.svc.ExportCertificate(id, f); err != nil {
					_ = f.Close()
					_ = os.Remove(out)
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Certificate saved to %s\n", filepath.Clean(out))
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "Output file or directory, or - for stdout (default .secureaware/certificates)")
	return cmd
}

func notificationsCmd() *cobra.Command {
	var markRead bool
	cmd := &cobra.Command{
		Use:   "notifications",
		Short: "List this session's notifications",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(func(s *session) error {
				center := s.svc.Notifications()
				list := center.List()
				if len(list) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No notifications.")
					return nil
				}
				now := time.Now()
				for _, n := range list {
					dot := " "
					if !n.Read {
						dot = "*"
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s [%s] %s (%s)\n    %s\n",
						dot, strings.ToUpper(string(n.Type)), n.Title, notification.RelativeTime(n.Date, now), n.Message)
				}
				if markRead {
					center.MarkAllAsRead()
				}
				fmt.Fprintf(cmd.OutOrStdout(), "\n%d unread\n", center.UnreadCount())
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&markRead, "mark-read", false, "Mark every notification as read after listing")
	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			banner := figure.NewFigure("SecureAware", "", true)
			fmt.Fprintln(cmd.OutOrStdout(), banner.String())
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, Version)
		},
	}
}
