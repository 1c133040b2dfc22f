// ABOUTME: CLI entry point for sophos-report.
// ABOUTME: Wires config, credentials, and authentication, then runs the menu or a single report.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

var (
	flagConfig    string
	flagEnvFile   string
	flagOutputDir string
	flagVerbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "sophos-report",
	Short: "Tenant, endpoint, and account health reports for Sophos Central partners",
	Long: "sophos-report signs in to Sophos Central as a partner, collects tenant, endpoint, and\n" +
		"account health data across every managed tenant, and exports each report to CSV.\n" +
		"Run without a subcommand for the interactive menu.",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := connect(cmd)
		if err != nil {
			return err
		}
		return s.run(cmd.Context(), newLineReader(cmd.InOrStdin()))
	},
}

var tenantsCmd = &cobra.Command{
	Use:   "tenants",
	Short: "List all tenants and export them to CSV",
	Args:  cobra.NoArgs,
	RunE:  oneShot((*shell).listTenants),
}

var endpointsCmd = &cobra.Command{
	Use:   "endpoints",
	Short: "List endpoints across all tenants and export them to CSV",
	Args:  cobra.NoArgs,
	RunE:  oneShot((*shell).listEndpoints),
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Score account health for all tenants and export it to CSV",
	Args:  cobra.NoArgs,
	RunE:  oneShot((*shell).showHealth),
}

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Store and verify Sophos Central API credentials",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(flagConfig)
		if err != nil {
			return err
		}
		log := newLogger(cmd.ErrOrStderr(), flagVerbose)
		return runSetup(cmd.Context(), cfg, flagConfig, flagEnvFile, cmd.InOrStdin(), cmd.OutOrStdout(), log)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "sophos-report v%s\n", version)
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&flagConfig, "config", "", "settings file (default ~/.config/sophos-report/config.yaml)")
	flags.StringVar(&flagEnvFile, "env-file", ".env", "file holding "+envClientID+" and "+envClientSecret)
	flags.StringVarP(&flagOutputDir, "output-dir", "o", "", "directory for CSV exports (overrides output_dir)")
	flags.BoolVarP(&flagVerbose, "verbose", "v", false, "log every API request")

	rootCmd.AddCommand(tenantsCmd, endpointsCmd, healthCmd, setupCmd, versionCmd)
}

func oneShot(action func(*shell, context.Context) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		s, err := connect(cmd)
		if err != nil {
			return err
		}
		return action(s, cmd.Context())
	}
}

// connect loads settings and credentials and authenticates. Every failure
// here is fatal for the run.
func connect(cmd *cobra.Command) (*shell, error) {
	cfg, err := loadConfig(flagConfig)
	if err != nil {
		return nil, err
	}
	if flagOutputDir != "" {
		cfg.OutputDir = flagOutputDir
	}

	creds, err := loadCredentials(flagEnvFile)
	if err != nil {
		return nil, err
	}

	out := cmd.OutOrStdout()
	log := newLogger(cmd.ErrOrStderr(), flagVerbose)

	colorBanner.Fprintln(out, "\nWelcome to Sophos Partner Reports")
	colorInfo.Fprintln(out, "\nAuthenticating...")

	sess, err := NewSophosClient(cfg, creds, log).Authenticate(cmd.Context())
	if err != nil {
		return nil, err
	}
	colorSuccess.Fprintf(out, "Authenticated as: %s\n", sess.PartnerID())

	return &shell{
		api:         sess,
		cfg:         cfg,
		log:         log,
		out:         out,
		now:         time.Now,
		newProgress: newProgress,
	}, nil
}

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	return exitCode(err, os.Stderr)
}

// exitCode reports err to w and maps it to the process exit status.
// An interrupt is a normal way to leave.
func exitCode(err error, w io.Writer) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, context.Canceled):
		colorBanner.Fprintln(w, "\n\nInterrupted. Goodbye!")
		return 0
	case errors.Is(err, ErrMissingCredentials):
		colorError.Fprintf(w, "Configuration Error: %v\n", err)
		colorInfo.Fprintln(w, "\nPlease either:")
		colorInfo.Fprintln(w, "  1. Run `sophos-report setup` to create a .env file, or")
		colorInfo.Fprintf(w, "  2. Set %s and %s in your environment or .env file\n", envClientID, envClientSecret)
		return 1
	default:
		colorError.Fprintf(w, "Error: %v\n", err)
		return 1
	}
}
