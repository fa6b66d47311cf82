package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/jiaming2012/lattice-pricer/src/cmd/pricer/run"
	"github.com/jiaming2012/lattice-pricer/src/logger"
	"github.com/jiaming2012/lattice-pricer/src/models"
	"github.com/jiaming2012/lattice-pricer/src/store"
	"github.com/jiaming2012/lattice-pricer/src/telemetry"
	"github.com/jiaming2012/lattice-pricer/src/utils"
)

var shutdownTelemetry = func(context.Context) error { return nil }

var rootCmd = &cobra.Command{
	Use:           "pricer",
	Short:         "Prices equity options on binomial lattices",
	Long:          `This program prices european and american options with the CRR, Jarrow-Rudd and Leisen-Reimer lattices and compares them with the closed form price.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := utils.InitEnvironmentVariables(); err != nil {
			log.Debugf("no env file loaded: %v", err)
		}

		if err := logger.Setup(os.Stderr, utils.GetEnvOrDefault("LOG_LEVEL", "info"), utils.GetEnvOrDefault("LOG_FORMAT", "text")); err != nil {
			return err
		}

		if utils.GetEnvOrDefault("OTEL_ENABLED", "false") == "true" {
			shutdown, err := telemetry.SetupOTelSDK(cmd.Context(), "lattice-pricer")
			if err != nil {
				return fmt.Errorf("failed to setup telemetry: %w", err)
			}

			shutdownTelemetry = shutdown
		}

		return nil
	},
}

var priceCmd = &cobra.Command{
	Use:   "price",
	Short: "Price every scheme and sweep the maturities",
	RunE: func(cmd *cobra.Command, args []string) error {
		maturitiesStr, err := cmd.Flags().GetString("maturities")
		if err != nil {
			return fmt.Errorf("error getting maturities: %w", err)
		}

		maturities, err := utils.ParseMaturities(maturitiesStr)
		if err != nil {
			return fmt.Errorf("error parsing maturities: %w", err)
		}

		outDir, err := cmd.Flags().GetString("out-dir")
		if err != nil {
			return fmt.Errorf("error getting out-dir: %w", err)
		}

		skipSweep, err := cmd.Flags().GetBool("skip-sweep")
		if err != nil {
			return fmt.Errorf("error getting skip-sweep: %w", err)
		}

		source, err := sourceArgs(cmd)
		if err != nil {
			return err
		}

		source.CreateSheet, err = cmd.Flags().GetString("create-sheet")
		if err != nil {
			return fmt.Errorf("error getting create-sheet: %w", err)
		}

		source.FolderID, err = cmd.Flags().GetString("folder-id")
		if err != nil {
			return fmt.Errorf("error getting folder-id: %w", err)
		}

		concurrency, err := cmd.Flags().GetInt("concurrency")
		if err != nil {
			return fmt.Errorf("error getting concurrency: %w", err)
		}

		result, err := run.Run(cmd.Context(), run.RunArgs{
			Source:      source,
			Maturities:  maturities,
			OutDir:      outDir,
			Concurrency: concurrency,
			SkipSweep:   skipSweep,
		})

		if result.Prices != nil {
			fmt.Println(result.Prices.String())
		}

		if result.Comparisons != nil {
			fmt.Println(result.Comparisons.String())
		}

		return err
	},
}

var convergeCmd = &cobra.Command{
	Use:   "converge",
	Short: "Compare the european lattice prices against the closed form for several step counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		stepsStr, err := cmd.Flags().GetString("step-list")
		if err != nil {
			return fmt.Errorf("error getting step-list: %w", err)
		}

		steps, err := utils.ParseSteps(stepsStr)
		if err != nil {
			return fmt.Errorf("error parsing step-list: %w", err)
		}

		scheme, err := cmd.Flags().GetString("scheme")
		if err != nil {
			return fmt.Errorf("error getting scheme: %w", err)
		}

		source, err := sourceArgs(cmd)
		if err != nil {
			return err
		}

		concurrency, err := cmd.Flags().GetInt("concurrency")
		if err != nil {
			return fmt.Errorf("error getting concurrency: %w", err)
		}

		report, err := run.Converge(cmd.Context(), run.ConvergeArgs{
			Source:      source,
			Steps:       steps,
			Scheme:      models.SchemeName(strings.ToUpper(scheme)),
			Concurrency: concurrency,
		})
		if err != nil {
			return err
		}

		fmt.Println(report.String())
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the pricer over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		port, err := cmd.Flags().GetInt("port")
		if err != nil {
			return fmt.Errorf("error getting port: %w", err)
		}

		concurrency, err := cmd.Flags().GetInt("concurrency")
		if err != nil {
			return fmt.Errorf("error getting concurrency: %w", err)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return run.Serve(ctx, run.ServeArgs{Port: port, Concurrency: concurrency})
	},
}

func sourceArgs(cmd *cobra.Command) (run.SourceArgs, error) {
	flags := cmd.Flags()

	var dto store.ParametersDTO
	floats := []struct {
		name string
		dst  *float64
	}{
		{"spot", &dto.Spot},
		{"strike", &dto.Strike},
		{"rate", &dto.Rate},
		{"dividend-yield", &dto.DividendYield},
		{"maturity", &dto.Maturity},
		{"volatility", &dto.Volatility},
		{"steps", &dto.Steps},
	}

	for _, f := range floats {
		v, err := flags.GetFloat64(f.name)
		if err != nil {
			return run.SourceArgs{}, fmt.Errorf("error getting %s: %w", f.name, err)
		}

		*f.dst = v
	}

	src := run.SourceArgs{Flags: dto}
	strs := []struct {
		name string
		dst  *string
	}{
		{"type", &src.Flags.Type},
		{"style", &src.Flags.Style},
		{"sheet-id", &src.SheetID},
		{"params-csv", &src.ParamsCSV},
		{"params-yaml", &src.ParamsYAML},
	}

	for _, s := range strs {
		v, err := flags.GetString(s.name)
		if err != nil {
			return run.SourceArgs{}, fmt.Errorf("error getting %s: %w", s.name, err)
		}

		*s.dst = v
	}

	return src, nil
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.Float64("spot", 100, "Spot price of the underlying.")
	flags.Float64("strike", 100, "Strike price.")
	flags.Float64("rate", 0.05, "Continuously compounded risk free rate.")
	flags.Float64("dividend-yield", 0, "Continuous dividend yield.")
	flags.Float64("maturity", 1, "Time to maturity in years.")
	flags.Float64("volatility", 0.2, "Annualised volatility.")
	flags.Float64("steps", 100, fmt.Sprintf("Number of lattice time steps, at most %d. Values below 1 are raised to 1.", models.MaxSteps))
	flags.String("type", "call", "Option type: call or put.")
	flags.String("style", "european", "Exercise style: european or american.")
	flags.String("sheet-id", "", "Google spreadsheet to read the parameters from and write the prices to.")
	flags.String("params-csv", "", "CSV file to read the parameters from.")
	flags.String("params-yaml", "", "YAML file to read the parameters from.")
	flags.Int("concurrency", 4, "Number of lattices priced in parallel.")

	priceCmd.Flags().String("maturities", "", "Maturities to sweep, either a comma separated list or start:stop:step. Defaults to 0.25 to 5 years.")
	priceCmd.Flags().String("out-dir", "", "Directory to export the prices and comparisons to as CSV.")
	priceCmd.Flags().Bool("skip-sweep", false, "Only price the given maturity.")
	priceCmd.Flags().String("create-sheet", "", "Create a new spreadsheet with this title, seeded from the parameter flags, and write the results to it.")
	priceCmd.Flags().String("folder-id", "", "Google Drive folder to move a created spreadsheet into.")

	convergeCmd.Flags().String("step-list", "25,50,100,200,400", "Comma separated step counts.")
	convergeCmd.Flags().String("scheme", "", "Only study this scheme: CRR, JR or LR.")

	serveCmd.Flags().Int("port", 8080, "Port to listen on.")

	rootCmd.AddCommand(priceCmd, convergeCmd, serveCmd)
}

// execute runs the command line. Spans are flushed whether or not the
// command failed.
func execute(ctx context.Context, args []string) error {
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(ctx)

	if shutdownErr := shutdownTelemetry(context.Background()); shutdownErr != nil {
		log.Errorf("failed to shutdown telemetry: %v", shutdownErr)
	}

	return err
}

func main() {
	if err := execute(context.Background(), os.Args[1:]); err != nil {
		log.Errorf("Error: %v", err)
		os.Exit(1)
	}
}
