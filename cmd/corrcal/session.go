package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/charlie0129/corrcal/pkg/api"
	"github.com/charlie0129/corrcal/pkg/calcium"
)

func NewSessionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "session",
		Short:   "Manage calculation sessions",
		GroupID: gBasic,
		Long: `Manage calculation sessions.

A session holds one calcium input, one albumin input and a unit, and keeps the
corrected calcium in sync with them. Sessions live in the daemon and expire
after being idle for a while.`,
	}

	cmd.AddCommand(
		newSessionNewCommand(),
		newSessionListCommand(),
		newSessionRmCommand(),
	)

	return cmd
}

func newSessionNewCommand() *cobra.Command {
	var unit string

	cmd := &cobra.Command{
		Use:   "new",
		Short: "Create a session",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var u *calcium.Unit
			if unit != "" {
				parsed, err := parseUnitArg(unit)
				if err != nil {
					return err
				}
				u = &parsed
			}

			sess, err := apiClient.CreateSession(u)
			if err != nil {
				return fmt.Errorf("failed to create session: %w", err)
			}

			logrus.Infof("created session in %s", sess.State.Unit)
			// Only the ID goes to stdout, so SESSION=$(corrcal session new) works.
			fmt.Fprintln(cmd.OutOrStdout(), sess.ID)
			return nil
		},
	}

	cmd.Flags().StringVarP(&unit, "unit", "u", "", "calcium unit (mg/dL or mmol/L), default from the daemon config")

	return cmd
}

func newSessionListCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List live sessions",
		RunE: func(cmd *cobra.Command, _ []string) error {
			list, err := apiClient.ListSessions()
			if err != nil {
				return fmt.Errorf("failed to list sessions: %w", err)
			}

			if len(list) == 0 {
				cmd.Println("No sessions. Create one with 'corrcal session new'.")
				return nil
			}

			cmd.Println(bold("%-36s  %-7s  %-14s  %-14s  %s", "ID", "UNIT", "CREATED", "UPDATED", "RESULT"))
			for _, s := range list {
				cmd.Printf("%-36s  %-7s  %-14s  %-14s  %s\n",
					s.ID,
					s.State.Unit,
					humanize.Time(s.CreatedAt),
					humanize.Time(s.UpdatedAt),
					resultText(s.State),
				)
			}
			return nil
		},
	}
}

func newSessionRmCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "rm SESSION...",
		Aliases: []string{"delete"},
		Short:   "Delete sessions",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			for _, id := range args {
				if _, err := apiClient.DeleteSession(id); err != nil {
					return fmt.Errorf("failed to delete session %s: %w", id, err)
				}
				logrus.Infof("deleted session %s", id)
			}
			return nil
		},
	}
}

func resultText(st api.State) string {
	if st.Result == nil {
		return "-"
	}
	return fmt.Sprintf("%s %s (%s)", st.Result.Value, st.Result.Unit, interpretationText(st.Interpretation))
}
