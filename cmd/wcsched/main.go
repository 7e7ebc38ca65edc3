package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const defaultTournamentFile = "tournament.yaml"

func main() {
	opts := &rootOptions{}
	rootCmd := newRootCmd(opts)
	err := rootCmd.Execute()
	if opts.telemetry && opts.registry != nil {
		if perr := printTelemetry(os.Stderr, opts.registry); perr != nil {
			fmt.Fprintf(os.Stderr, "⚠ %s\n", perr)
		}
	}
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd(opts *rootOptions) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "wcsched",
		Short: "World Cup group stage schedule explorer",
		Long: "Compare the official and travel-optimal group stage schedules, move\n" +
			"matches around under the venue and team rest rules, and export the result.",
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&opts.settingsFile, "settings", "", "Path to a settings YAML file")
	pf.StringVar(&opts.tournamentFile, "tournament", "", "Path to a tournament YAML file (default: embedded 2026 tournament)")
	pf.StringVar(&opts.official, "official", "", "Official schedule (.csv or .xlsx)")
	pf.StringVar(&opts.optimal, "optimal", "", "Optimal schedule (.csv or .xlsx)")
	pf.StringVar(&opts.unit, "unit", "", "Distance unit: km or mi (default: from locale)")
	pf.BoolVar(&opts.telemetry, "telemetry", false, "Print telemetry counters when done")

	var initOutputPath string
	initCmd := &cobra.Command{
		Use:          "init",
		Short:        "Write the default tournament file for editing",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(initOutputPath)
		},
	}
	initCmd.Flags().StringVarP(&initOutputPath, "output", "o", defaultTournamentFile, "Output path for the tournament file")

	var metricsMode string
	metricsCmd := &cobra.Command{
		Use:          "metrics",
		Short:        "Show travel totals for a schedule",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.load(cmd.Context())
			if err != nil {
				return err
			}
			return a.runMetrics(cmd.OutOrStdout(), metricsMode)
		},
	}
	metricsCmd.Flags().StringVar(&metricsMode, "mode", "optimal", "Schedule to report on: official, optimal")

	var (
		editMode   string
		editMoves  []string
		editOutput string
	)
	editCmd := &cobra.Command{
		Use:   "edit --move ID=VENUE/DATE [--move ...]",
		Short: "Apply moves to a schedule, keeping only those that respect the rest rules",
		Example: "  wcsched edit --mode official --move m1=Monterrey/2026-06-11\n" +
			"  wcsched edit --move m53=Guadalajara/2026-06-24 -o custom.xlsx",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.load(cmd.Context())
			if err != nil {
				return err
			}
			return a.runEdit(cmd.OutOrStdout(), editMode, editMoves, editOutput)
		},
	}
	editCmd.Flags().StringVar(&editMode, "mode", "optimal", "Schedule to start from: official, optimal")
	editCmd.Flags().StringArrayVar(&editMoves, "move", nil, "Move a match, as ID=VENUE/YYYY-MM-DD (repeatable, applied in order)")
	editCmd.Flags().StringVarP(&editOutput, "output", "o", "", "Write the edited schedule to a .csv or .xlsx file")
	_ = editCmd.MarkFlagRequired("move")

	var (
		openMode  string
		openVenue string
	)
	openCmd := &cobra.Command{
		Use:          "open",
		Short:        "List the free cells a match can move into without a swap",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.load(cmd.Context())
			if err != nil {
				return err
			}
			return a.runOpen(cmd.OutOrStdout(), openMode, openVenue)
		},
	}
	openCmd.Flags().StringVar(&openMode, "mode", "optimal", "Schedule to inspect: official, optimal")
	openCmd.Flags().StringVar(&openVenue, "venue", "", "Only list cells at this venue key")

	validateCmd := &cobra.Command{
		Use:          "validate <schedule.csv|schedule.xlsx>",
		Short:        "Report every rest rule violation in a schedule file",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.setup()
			if err != nil {
				return err
			}
			return a.runValidate(cmd.OutOrStdout(), args[0])
		},
	}

	var (
		exportMode   string
		exportOutput string
	)
	exportCmd := &cobra.Command{
		Use:          "export",
		Short:        "Write a schedule to a .csv or .xlsx file",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.load(cmd.Context())
			if err != nil {
				return err
			}
			if err := a.switchMode(exportMode); err != nil {
				return err
			}
			return a.export(cmd.OutOrStdout(), exportOutput)
		},
	}
	exportCmd.Flags().StringVar(&exportMode, "mode", "optimal", "Schedule to export: official, optimal")
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "schedule.xlsx", "Output file (.csv or .xlsx)")

	rootCmd.AddCommand(initCmd, metricsCmd, editCmd, openCmd, validateCmd, exportCmd)
	return rootCmd
}
