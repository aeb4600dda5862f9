package main

import (
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/charlie0129/corrcal/pkg/api"
	"github.com/charlie0129/corrcal/pkg/calcium"
	"github.com/charlie0129/corrcal/pkg/config"
	"github.com/charlie0129/corrcal/pkg/version"
)

func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Print version",
		Annotations: map[string]string{annotationOffline: "true"},
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("%s %s\n", version.Version, version.GitCommit)
		},
	}
}

func NewCalcCommand() *cobra.Command {
	var (
		ca, alb, unit string
		asJSON        bool
	)

	cmd := &cobra.Command{
		Use:         "calc",
		Short:       "Calculate corrected calcium without a daemon",
		GroupID:     gBasic,
		Annotations: map[string]string{annotationOffline: "true"},
		Long: `Calculate corrected calcium once, without a daemon.

Calcium is read in --unit (mg/dL or mmol/L, default from the config file),
albumin is always g/dL. Out-of-range values are still calculated, with a
warning, because they may be real.`,
		Example: `  corrcal calc --calcium 8.0 --albumin 2.5
  corrcal calc --calcium 2.1 --albumin 3 --unit mmol`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var u calcium.Unit
			var err error
			if unit != "" {
				u, err = parseUnitArg(unit)
			} else {
				u, err = defaultUnit()
			}
			if err != nil {
				return err
			}

			st := api.NewState(calcium.Derive(calcium.Inputs{Calcium: ca, Albumin: alb, Unit: u}))
			if asJSON {
				return printJSON(cmd, st)
			}
			printState(cmd, st)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVarP(&ca, "calcium", "c", "", "serum calcium")
	f.StringVarP(&alb, "albumin", "a", "", "serum albumin in g/dL")
	f.StringVarP(&unit, "unit", "u", "", "calcium unit (mg/dL or mmol/L)")
	f.BoolVar(&asJSON, "json", false, "print the result as JSON")

	return cmd
}

// defaultUnit reads the default unit from the local config file.
func defaultUnit() (calcium.Unit, error) {
	conf, err := config.NewFile(configPath)
	if err != nil {
		return calcium.MgDl, fmt.Errorf("failed to read config: %w", err)
	}
	return conf.DefaultUnit(), nil
}

func newSessionInputCommand(use, short, what string, set func(id, text string) (*api.State, error)) *cobra.Command {
	return &cobra.Command{
		Use:     use + " SESSION VALUE",
		Short:   short,
		GroupID: gBasic,
		Long: short + `.

Pass "" as VALUE to clear the field.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := set(args[0], args[1])
			if err != nil {
				return fmt.Errorf("failed to set %s: %w", what, err)
			}

			printState(cmd, *st)
			return nil
		},
	}
}

func NewCalciumCommand() *cobra.Command {
	return newSessionInputCommand("calcium", "Set the calcium input of a session", "calcium",
		func(id, text string) (*api.State, error) { return apiClient.SetCalcium(id, text) })
}

func NewAlbuminCommand() *cobra.Command {
	return newSessionInputCommand("albumin", "Set the albumin input (g/dL) of a session", "albumin",
		func(id, text string) (*api.State, error) { return apiClient.SetAlbumin(id, text) })
}

func NewUnitCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "unit SESSION UNIT",
		Short:   "Switch the calcium unit of a session",
		GroupID: gBasic,
		Long: `Switch the calcium unit of a session between mg/dL and mmol/L.

A numeric calcium input is converted to the new unit and shown with two
decimals. Albumin stays in g/dL.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := parseUnitArg(args[1])
			if err != nil {
				return err
			}

			st, err := apiClient.SetUnit(args[0], u)
			if err != nil {
				return fmt.Errorf("failed to set unit: %w", err)
			}

			logrus.Infof("successfully switched session %s to %s", args[0], u)
			printState(cmd, *st)
			return nil
		},
	}
}

func NewResetCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "reset SESSION",
		Short:   "Clear both inputs of a session",
		GroupID: gBasic,
		Long:    `Clear both inputs, warnings and the result of a session. The unit is kept.`,
		Args:    cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			if _, err := apiClient.Reset(args[0]); err != nil {
				return fmt.Errorf("failed to reset session: %w", err)
			}

			logrus.Infof("Form has been reset")
			return nil
		},
	}
}

func NewCopyCommand() *cobra.Command {
	return &cobra.Command{
		Use:     "copy SESSION",
		Short:   "Print the result of a session as clipboard text",
		GroupID: gBasic,
		Long: `Print the result of a session as one line of text, ready to paste.

Pipe it to your clipboard tool, e.g. 'corrcal copy SESSION | xclip -selection clipboard'.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := apiClient.GetClipboardText(args[0])
			if err != nil {
				return fmt.Errorf("failed to copy result: %w", err)
			}

			// stdout, so it can be piped
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	}
}

func printJSON(cmd *cobra.Command, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return nil
}
