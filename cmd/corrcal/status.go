package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func NewStatusCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:     "status SESSION",
		GroupID: gBasic,
		Short:   "Show inputs, warnings and result of a session",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := apiClient.GetSession(args[0])
			if err != nil {
				return fmt.Errorf("failed to get session: %w", err)
			}

			if asJSON {
				return printJSON(cmd, sess)
			}

			cmd.Printf("%s %s (updated %s)\n\n", bold("Session"), sess.ID, humanize.Time(sess.UpdatedAt))
			printState(cmd, sess.State)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the session as JSON")

	return cmd
}
