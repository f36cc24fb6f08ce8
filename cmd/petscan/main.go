package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/nichefood/backend/internal/logging"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// Build metadata, overridable via -ldflags.
var (
	Version   = "0.1.0-dev"
	GitCommit = ""
	BuildDate = ""
)

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "petscan",
		Short:         "Assess pet-food products from their ingredient lists",
		Long:          `petscan scores pet-food products by ingredient quality, species needs, life stage and allergens`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			colorFlag, err := cmd.Flags().GetString("color")
			if err != nil {
				return fmt.Errorf("failed to get color flag: %w", err)
			}
			if err := applyColorMode(colorFlag); err != nil {
				return err
			}

			level, err := cmd.Flags().GetString("log-level")
			if err != nil {
				return fmt.Errorf("failed to get log-level flag: %w", err)
			}
			logging.Init("text", logging.ParseLevel(level))
			return nil
		},
	}

	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().String("log-level", "warn", "log level (debug|info|warn|error)")

	rootCmd.AddCommand(newAssessCmd())
	rootCmd.AddCommand(newLookupCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

func applyColorMode(mode string) error {
	switch mode {
	case "on":
		color.NoColor = false
	case "off":
		color.NoColor = true
	case "auto":
		color.NoColor = !isTerminal(os.Stdout)
	default:
		return fmt.Errorf("unsupported color mode %q (must be auto, on or off)", mode)
	}
	return nil
}

// isTerminal reports whether f is attached to a terminal
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, alertColor.Sprint("error: ")+err.Error())
		os.Exit(1)
	}
}
