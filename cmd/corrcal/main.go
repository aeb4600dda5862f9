package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/charlie0129/corrcal/pkg/client"
	"github.com/charlie0129/corrcal/pkg/version"
)

var (
	logLevel       = "info"
	unixSocketPath = "/run/corrcal.sock"
	configPath     = "/etc/corrcal.json"
)

var apiClient *client.Client

var (
	gBasic        = "Basic:"
	gAdvanced     = "Advanced:"
	gInstallation = "Installation:"
	commandGroups = []string{
		gBasic,
		gAdvanced,
		gInstallation,
	}
)

func setupLogger() error {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("failed to parse log level: %v", err)
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.TextFormatter{})
	if term.IsTerminal(int(os.Stderr.Fd())) {
		logrus.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: time.Kitchen,
		})
	}

	return nil
}

func handleCmdError(err error) {
	if errors.Is(err, client.ErrDaemonNotRunning) {
		fmt.Fprintln(os.Stderr, "\nError: corrcal daemon is not running")
		fmt.Fprintln(os.Stderr, "Is the daemon running? Have you installed it?")
		fmt.Fprintln(os.Stderr, "  - 'corrcal calc' works without a daemon")
	} else if errors.Is(err, client.ErrPermissionDenied) {
		fmt.Fprintln(os.Stderr, "\nError: Permission Denied")
		fmt.Fprintln(os.Stderr, "  - Try running the command again with 'sudo'")
		fmt.Fprintln(os.Stderr, "  - Or reinstall the daemon with the '--allow-non-root-access' flag to grant permissions to your user")
	} else if errors.Is(err, client.ErrNotFound) {
		fmt.Fprintln(os.Stderr, "\nError: not found")
		fmt.Fprintln(os.Stderr, "Sessions expire when idle. Run 'corrcal session list' to see the live ones.")
	}
}

func main() {
	cmd := NewCommand()
	if err := cmd.Execute(); err != nil {
		handleCmdError(err)
		os.Exit(1)
	}
}

// getVersion returns the client and daemon versions.
func getVersion() (string, string, error) {
	daemonVersion, err := apiClient.GetVersion()
	return version.Version, daemonVersion, err
}

func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "corrcal",
		Short: "corrcal computes albumin-corrected serum calcium",
		Long: `corrcal computes albumin-corrected serum calcium.

Corrected calcium = calcium + 0.8 * (4.0 - albumin), with calcium in mg/dL or
mmol/L and albumin in g/dL. Use 'corrcal calc' for a one-shot calculation, or
run the daemon and work with sessions that keep inputs and results in sync.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			err := setupLogger()
			if err != nil {
				return err
			}

			apiClient = client.NewClient(unixSocketPath)

			// Commands that never talk to a daemon skip the version check.
			if cmd.Annotations[annotationOffline] != "" {
				return nil
			}

			if clientVersion, daemonVersion, err := getVersion(); err == nil {
				if daemonVersion != clientVersion {
					logrus.WithFields(logrus.Fields{
						"clientVersion": clientVersion,
						"daemonVersion": daemonVersion,
					}).Warn("Version mismatch between client and daemon. corrcal may not work as expected. Reinstall so that both are the same version.")
				}
			}

			return nil
		},
	}

	globalFlags := cmd.PersistentFlags()
	globalFlags.StringVarP(&logLevel, "log-level", "l", "info", "log level (trace, debug, info, warn, error, fatal, panic)")
	globalFlags.StringVar(&configPath, "config", configPath, "config file path")
	globalFlags.StringVar(&unixSocketPath, "daemon-socket", unixSocketPath, "corrcal daemon unix socket path")

	for _, i := range commandGroups {
		cmd.AddGroup(&cobra.Group{
			ID:    i,
			Title: i,
		})
	}

	cmd.AddCommand(
		NewDaemonCommand(),
		NewVersionCommand(),
		NewCalcCommand(),
		NewSessionCommand(),
		NewCalciumCommand(),
		NewAlbuminCommand(),
		NewUnitCommand(),
		NewResetCommand(),
		NewStatusCommand(),
		NewCopyCommand(),
		NewWatchCommand(),
		NewThemeCommand(),
		NewDefaultUnitCommand(),
		NewInstallCommand(),
		NewUninstallCommand(),
	)

	return cmd
}
