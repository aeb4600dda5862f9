package main

import (
	"fmt"
	"os"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/charlie0129/corrcal/pkg/config"
	daemonutils "github.com/charlie0129/corrcal/pkg/utils/daemon"
)

// NewInstallCommand .
func NewInstallCommand() *cobra.Command {
	allowNonRootAccess := false

	cmd := &cobra.Command{
		Use:         "install",
		Short:       "Install corrcal daemon (system-wide)",
		GroupID:     gInstallation,
		Annotations: map[string]string{annotationOffline: "true"},
		Long: `Install corrcal daemon as a systemd service (system-wide).

This makes corrcal run in the background and automatically start on boot. You must run this command as root.

By default, only root user is allowed to access the corrcal daemon. If you want to allow non-root users to access the daemon, use the --allow-non-root-access flag, so you don't have to use sudo every time.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf, err := config.NewFile(configPath)
			if err != nil {
				return err
			}

			conf.SetAllowNonRootAccess(allowNonRootAccess)
			if allowNonRootAccess {
				logrus.Info("non-root users are allowed to access the corrcal daemon.")
			} else {
				logrus.Info("only root user is allowed to access the corrcal daemon.")
			}

			// The daemon reads the config at startup, so save it first.
			err = conf.Save()
			if err != nil {
				return pkgerrors.Wrapf(err, "failed to save config")
			}

			err = daemonutils.Install(configPath, unixSocketPath)
			if err != nil {
				// check if current user is root
				if os.Geteuid() != 0 {
					logrus.Errorf("you must run this command as root")
				}
				return fmt.Errorf("failed to install daemon: %v. Are you root?", err)
			}

			logrus.Infof("installation succeeded")

			exePath, _ := os.Executable()

			cmd.Printf("`systemd' will use current binary (%s) at startup so please make sure you do not move this binary. Once this binary is moved or deleted, you will need to run ``corrcal install'' again.\n", exePath)

			return nil
		},
	}

	cmd.Flags().BoolVar(&allowNonRootAccess, "allow-non-root-access", false, "Allow non-root users to access corrcal daemon.")

	return cmd
}

// NewUninstallCommand .
func NewUninstallCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:         "uninstall",
		Short:       "Uninstall corrcal daemon (system-wide)",
		GroupID:     gInstallation,
		Annotations: map[string]string{annotationOffline: "true"},
		Long: `Uninstall corrcal daemon from systemd (system-wide).

This stops corrcal and removes its unit. Live sessions are lost. The config file is kept.

You must run this command as root.`,
		RunE: func(_ *cobra.Command, _ []string) error {
			err := daemonutils.Uninstall()
			if err != nil {
				// check if current user is root
				if os.Geteuid() != 0 {
					logrus.Errorf("you must run this command as root")
				}
				return fmt.Errorf("failed to uninstall daemon: %v", err)
			}

			logrus.Infof("successfully uninstalled corrcal")
			return nil
		},
	}

	return cmd
}
