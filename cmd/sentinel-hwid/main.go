package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/tusharlock10/sentinel-hwid/internal/config"
	"github.com/tusharlock10/sentinel-hwid/internal/hardware"
	"github.com/tusharlock10/sentinel-hwid/internal/identity"
	"github.com/tusharlock10/sentinel-hwid/internal/license"
)

// version is set at build time via -ldflags "-X main.version=<version>"
var version string

// Exit codes. A verify mismatch and an unusable hardware facility are
// distinguished from other errors.
const (
	exitOK       = 0
	exitError    = 1
	exitMismatch = 2
	exitFatal    = 3
)

// newPlatform is replaced in tests.
var newPlatform = hardware.NewPlatform

func main() {
	ctx, cancel := identity.SetupSignalHandler()

	rootCmd := newRootCmd(os.Stdout, os.Stderr)
	err := rootCmd.ExecuteContext(ctx)
	cancel()

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, license.ErrMismatch):
		return exitMismatch
	case identity.Fatal(err):
		return exitFatal
	default:
		return exitError
	}
}

// app carries state shared by the root command and its subcommands.
type app struct {
	stdout, stderr io.Writer
	cfg            *config.Config
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}

	v := version
	if v == "" {
		v = "dev"
	}

	rootCmd := &cobra.Command{
		Use:   "sentinel-hwid",
		Short: "Derive a stable unique code from this machine's hardware",
		Long: `sentinel-hwid reads the motherboard serial and UUID, the MAC addresses of
physical network interfaces, the CPU id, the primary disk model and the
product model, and condenses them into a code of the form XXXX-XXXX-XXXX-XXXX.
The same machine yields the same code on every run. The OS, CPU model and
firmware summary printed alongside is informational and never hashed.`,
		Version:           v,
		Args:              cobra.NoArgs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.loadConfig,
		RunE:              a.runReport,
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "Path to an optional YAML configuration file")
	pf.String("format", config.FormatText, "Output format: text or json")
	pf.Duration("timeout", config.DefaultTimeout, "Timeout for each hardware query")
	pf.String("log-level", config.DefaultLogLevel, "Log level: trace, debug, info, warn, error")

	rootCmd.AddCommand(a.newVerifyCmd())
	return rootCmd
}

func (a *app) loadConfig(cmd *cobra.Command, args []string) error {
	configFile, _ := cmd.Flags().GetString("config")

	cfg, err := config.Load(configFile, cmd.Flags())
	if err != nil {
		return err
	}
	cfg.Version = cmd.Root().Version
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := cfg.ConfigureLogger(a.stderr); err != nil {
		return err
	}
	a.cfg = cfg
	return nil
}

// generate runs the pipeline once. describe adds the system summary, which
// only the report prints.
func (a *app) generate(cmd *cobra.Command, describe bool) (*identity.Result, error) {
	platform, err := newPlatform(hardware.Options{CommandTimeout: a.cfg.QueryTimeout})
	if err != nil {
		return nil, err
	}
	g := identity.New(platform, identity.Options{
		QueryTimeout: a.cfg.QueryTimeout,
		Describe:     describe,
	})
	return g.Run(cmd.Context())
}

func (a *app) runReport(cmd *cobra.Command, args []string) error {
	res, err := a.generate(cmd, true)
	if err != nil {
		return err
	}
	res.Report.Version = a.cfg.Version
	return res.Report.Write(a.stdout, a.cfg.Format)
}

func (a *app) newVerifyCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "verify [CODE]",
		Short: "Check this machine against a previously issued unique code",
		Long: `verify recomputes this machine's unique code and compares it with CODE, or
with the code stored in --file (a bare code or a saved text or JSON report).
It exits 0 on a match, 2 on a mismatch, 3 when the hardware cannot be read
at all and 1 on any other error.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			expected, err := expectedCode(args, file)
			if err != nil {
				return err
			}

			res, err := a.generate(cmd, false)
			if err != nil {
				return err
			}
			if err := license.Verify(expected, res.Code); err != nil {
				return err
			}
			fmt.Fprintf(a.stdout, "Unique code matches: %s\n", res.Code)
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "Read the expected code from this file")
	return cmd
}

// expectedCode validates the expected code before any hardware is touched.
func expectedCode(args []string, file string) (string, error) {
	switch {
	case len(args) == 1 && file != "":
		return "", errors.New("pass either CODE or --file, not both")
	case len(args) == 1:
		return license.ParseCode(args[0])
	case file != "":
		return license.LoadCode(file)
	default:
		return "", errors.New("a CODE argument or --file is required")
	}
}
