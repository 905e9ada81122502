package cli

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/liftreport/liftreport/internal/config"
)

var configureCmd = &cobra.Command{
	Use:   "configure",
	Short: "Set the average order value and confidence level",
	Long: `Prompt for the report settings and save them to the config file.

Example:
  liftreport configure
  liftreport configure --config ./team.yaml`,
	Args: cobra.NoArgs,
	RunE: runConfigure,
}

func init() {
	rootCmd.AddCommand(configureCmd)
}

func runConfigure(cmd *cobra.Command, args []string) error {
	aov, err := promptAOV(cfg.AverageOrderValue)
	if err != nil {
		return err
	}

	level, err := promptConfidence(cfg.ConfidenceLevel)
	if err != nil {
		return err
	}

	cfg.AverageOrderValue = aov
	cfg.ConfidenceLevel = level
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := config.Save(configPath, cfg); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Saved to %s (AOV $%s, %.0f%% confidence)\n",
		configPath, strconv.FormatFloat(aov, 'f', -1, 64), level*100)
	return nil
}

func promptAOV(current float64) (float64, error) {
	prompt := promptui.Prompt{
		Label:    "Average Order Value ($)",
		Default:  strconv.FormatFloat(current, 'f', -1, 64),
		Validate: validateAOV,
	}

	value, err := prompt.Run()
	if err != nil {
		return 0, promptError(err)
	}
	return strconv.ParseFloat(value, 64)
}

func validateAOV(input string) error {
	v, err := strconv.ParseFloat(input, 64)
	if err != nil {
		return errors.New("enter a number")
	}
	if !(v > 0) || math.IsInf(v, 0) {
		return errors.New("must be greater than zero")
	}
	return nil
}

func promptConfidence(current float64) (float64, error) {
	labels := make([]string, len(config.ConfidenceLevels))
	cursor := 0
	for i, level := range config.ConfidenceLevels {
		labels[i] = fmt.Sprintf("%.0f%%", level*100)
		if level == current {
			cursor = i
		}
	}

	prompt := promptui.Select{
		Label:     "Confidence Level",
		Items:     labels,
		CursorPos: cursor,
		Size:      len(labels),
	}

	idx, _, err := prompt.Run()
	if err != nil {
		return 0, promptError(err)
	}
	return config.ConfidenceLevels[idx], nil
}

func promptError(err error) error {
	if err == promptui.ErrInterrupt {
		os.Exit(0)
	}
	return err
}
