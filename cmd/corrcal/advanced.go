package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/charlie0129/corrcal/pkg/api"
	"github.com/charlie0129/corrcal/pkg/config"
	"github.com/charlie0129/corrcal/pkg/events"
)

func NewWatchCommand() *cobra.Command {
	var sessionID string

	cmd := &cobra.Command{
		Use:     "watch",
		Short:   "Follow notifications and session updates",
		GroupID: gAdvanced,
		Long: `Follow notifications and session updates from the daemon until interrupted.

Notifications are the messages a front end would show as toasts: validation
warnings, "Calculation complete!" and "Form has been reset".`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// Fail early, the event stream only logs connection errors.
			if _, err := apiClient.GetVersion(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			for ev := range apiClient.SubscribeEvents(ctx) {
				printEvent(cmd, ev, sessionID)
			}

			if ctx.Err() == nil {
				return fmt.Errorf("event stream closed by daemon")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&sessionID, "session", "s", "", "only show events of this session")

	return cmd
}

func printEvent(cmd *cobra.Command, ev events.Event, sessionID string) {
	switch ev.Name {
	case events.Notification:
		n, err := events.DecodeAs[events.NotificationEvent](ev)
		if err != nil {
			logrus.WithError(err).Warn("bad notification")
			return
		}
		if sessionID != "" && n.SessionID != sessionID {
			return
		}
		cmd.Printf("%s %s %s  %s\n", time.Unix(n.Ts, 0).Format(time.Kitchen), levelText(n.Level), n.SessionID, n.Message)
	case events.SessionUpdated:
		u, err := events.DecodeAs[events.SessionUpdatedEvent](ev)
		if err != nil {
			logrus.WithError(err).Warn("bad session update")
			return
		}
		if sessionID != "" && u.SessionID != sessionID {
			return
		}
		logrus.WithFields(logrus.Fields{
			"session": u.SessionID,
			"calcium": u.State.Calcium,
			"albumin": u.State.Albumin,
			"unit":    u.State.Unit.String(),
		}).Debug("session updated")
		cmd.Printf("%s %s %s  result: %s\n", time.Unix(u.Ts, 0).Format(time.Kitchen), levelText(events.LevelInfo), u.SessionID, resultText(api.NewState(u.State)))
	default:
		logrus.Debugf("ignoring event %q", ev.Name)
	}
}

func NewThemeCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "theme [light|dark|system]",
		Short:   "Get or set the display theme preference",
		GroupID: gAdvanced,
		Long: `Get or set the display theme preference stored by the daemon.

corrcal only stores the preference for front ends; it does not change any
calculation.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				raw, err := apiClient.GetConfig()
				if err != nil {
					return fmt.Errorf("failed to get config: %w", err)
				}
				cmd.Println(config.NewFileFromConfig(raw, "").Theme())
				return nil
			}

			theme, err := config.ParseTheme(args[0])
			if err != nil {
				return err
			}

			ret, err := apiClient.SetTheme(theme)
			if err != nil {
				return fmt.Errorf("failed to set theme: %w", err)
			}

			if ret != "" {
				logrus.Infof("daemon responded: %s", ret)
			}

			logrus.Infof("successfully set theme to %s", theme)
			return nil
		},
	}
}

func NewDefaultUnitCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "default-unit [mg/dL|mmol/L]",
		Short:   "Get or set the unit new sessions start in",
		GroupID: gAdvanced,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				raw, err := apiClient.GetConfig()
				if err != nil {
					return fmt.Errorf("failed to get config: %w", err)
				}
				cmd.Println(config.NewFileFromConfig(raw, "").DefaultUnit())
				return nil
			}

			u, err := parseUnitArg(args[0])
			if err != nil {
				return err
			}

			ret, err := apiClient.SetDefaultUnit(u)
			if err != nil {
				return fmt.Errorf("failed to set default unit: %w", err)
			}

			if ret != "" {
				logrus.Infof("daemon responded: %s", ret)
			}

			logrus.Infof("successfully set default unit to %s", u)
			return nil
		},
	}
}
