package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/caseguard/caseguard/internal/config"
)

// CreateValidateCmd creates the validate command, which loads the
// configuration the daemon would run with and checks it for errors.
func CreateValidateCmd() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration file",
		Long:  `Loads the configuration with the same precedence as the daemon (flags > environment > TOML > defaults) and reports the first problem found.`,
		Run: func(cmd *cobra.Command, _ []string) {
			opts := config.Default()
			opts.Config = configFile

			if err := config.LoadConfig(&opts, cmd); err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
				os.Exit(1)
			}
			if err := config.Validate(opts); err != nil {
				fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
				os.Exit(1)
			}

			fmt.Printf("configuration OK\n\n")
			fmt.Printf("chip            %s\n", opts.Chip)
			fmt.Printf("power pin       %d\n", opts.PowerPin)
			fmt.Printf("reset pin       %d\n", opts.ResetPin)
			fmt.Printf("led pin         %d\n", opts.LedPin)
			fmt.Printf("power enable    %d\n", opts.PowerEnablePin)
			fmt.Printf("tick            %s\n", opts.Tick())
			fmt.Printf("debounce        %s\n", opts.Debounce())
			fmt.Printf("grace           %s\n", opts.Grace())
			fmt.Printf("temp tiers (C)  %.1f / %.1f / %.1f\n", opts.TempLowC, opts.TempMediumC, opts.TempHighC)
			fmt.Printf("load tiers      %.2f / %.2f / %.2f\n", opts.LoadLow, opts.LoadMedium, opts.LoadHigh)
			fmt.Printf("stop command    %s\n", opts.StopCommand)
			if units := opts.StopUnitList(); len(units) > 0 {
				fmt.Printf("stop units      %s\n", strings.Join(units, ", "))
			}
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "config.toml", "Path to configuration file")
	return cmd
}
