package main

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/charlie0129/corrcal/pkg/api"
	"github.com/charlie0129/corrcal/pkg/calcium"
	"github.com/charlie0129/corrcal/pkg/events"
)

// annotationOffline marks commands that do not need a running daemon.
const annotationOffline = "corrcal/offline"

func parseUnitArg(s string) (calcium.Unit, error) {
	u, err := calcium.ParseUnit(s)
	if err != nil {
		return calcium.MgDl, fmt.Errorf("invalid unit: %v", err)
	}
	return u, nil
}

func printState(cmd *cobra.Command, st api.State) {
	cmd.Println(bold("Inputs:"))
	cmd.Printf("  Calcium: %s\n", inputText(st.Calcium, st.Unit.String(), st.CalciumValidation))
	cmd.Printf("  Albumin: %s\n", inputText(st.Albumin, calcium.AlbuminUnit, st.AlbuminValidation))

	cmd.Println()

	cmd.Println(bold("Result:"))
	if st.Result == nil {
		cmd.Println("  Corrected calcium: " + color.New(color.Faint).Sprint("enter both values to see a result"))
		return
	}
	cmd.Printf("  Corrected calcium: %s (%s)\n", bold("%s %s", st.Result.Value, st.Result.Unit), interpretationText(st.Interpretation))
	lo, hi := calcium.NormalRange(st.Result.Unit)
	// Exact bounds: 2.125 mmol/L must not print as 2.12.
	cmd.Printf("  Normal range: %s-%s %s\n",
		strconv.FormatFloat(lo, 'f', -1, 64),
		strconv.FormatFloat(hi, 'f', -1, 64),
		st.Result.Unit)
}

func inputText(raw, unit string, v calcium.Validation) string {
	if raw == "" {
		return color.New(color.Faint).Sprint("(empty)")
	}
	s := bold("%s", raw) + " " + unit
	if v.HasWarning() {
		s += "\n    " + color.YellowString("%s", v.Message)
	}
	return s
}

func interpretationText(i calcium.Interpretation) string {
	switch i {
	case calcium.Low:
		return color.New(color.Bold, color.FgBlue).Sprint(i)
	case calcium.High:
		return color.New(color.Bold, color.FgRed).Sprint(i)
	default:
		return color.New(color.Bold, color.FgGreen).Sprint(i)
	}
}

func levelText(l events.Level) string {
	switch l {
	case events.LevelSuccess:
		return color.GreenString("%-7s", l)
	case events.LevelWarning:
		return color.YellowString("%-7s", l)
	case events.LevelError:
		return color.RedString("%-7s", l)
	default:
		return color.CyanString("%-7s", l)
	}
}

func bold(format string, a ...interface{}) string {
	return color.New(color.Bold).Sprintf(format, a...)
}
