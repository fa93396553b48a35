package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"deposit-radar/internal/config"
	"deposit-radar/internal/logger"
	"deposit-radar/internal/pipeline"
)

// Version is set at build time via -ldflags "-X main.Version=..."
var Version = "dev"

var (
	flagConfig  string
	flagInput   string
	flagExcel   string
	flagCSV     string
	flagSites   string
	flagTimeout time.Duration
	flagBrowser bool
	flagLogFile string
	flagVerbose bool
)

var rootCmd = &cobra.Command{
	Use:           "deposits [input-file]",
	Short:         "deposits scrapes USD deposit offers from the configured bank sites and writes the reports.",
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(Version)
	},
}

func init() {
	rootCmd.Flags().StringVar(&flagConfig, "config", "", "path to YAML config")
	rootCmd.Flags().StringVar(&flagInput, "input", "", "file containing bank URLs, one per line")
	rootCmd.Flags().StringVar(&flagExcel, "xlsx", "", "path for the Excel report")
	rootCmd.Flags().StringVar(&flagCSV, "csv", "", "path for the deposits CSV")
	rootCmd.Flags().StringVar(&flagSites, "sites-csv", "", "path for the per-site diagnostics CSV")
	rootCmd.Flags().DurationVar(&flagTimeout, "timeout", 0, "per-request timeout")
	rootCmd.Flags().BoolVar(&flagBrowser, "browser", false, "render JS-shell pages in a headless browser")
	rootCmd.Flags().StringVar(&flagLogFile, "log-file", "", "also write logs to this file")
	rootCmd.Flags().BoolVar(&flagVerbose, "verbose", false, "enable debug logging")
	rootCmd.AddCommand(versionCmd)
}

func run(cmd *cobra.Command, args []string) error {
	cfg := config.Default()
	if flagConfig != "" {
		loaded, err := config.Load(flagConfig)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	if len(args) == 1 {
		cfg.IO.InputFile = args[0]
	}
	if flagInput != "" {
		cfg.IO.InputFile = flagInput
	}
	if flagExcel != "" {
		cfg.IO.ExcelFile = flagExcel
	}
	if flagCSV != "" {
		cfg.IO.CSVFile = flagCSV
	}
	if flagSites != "" {
		cfg.IO.SitesFile = flagSites
	}
	if flagTimeout > 0 {
		cfg.HTTP.Timeout = flagTimeout
	}
	if flagBrowser {
		cfg.Browser.Enabled = true
	}
	if flagLogFile != "" {
		cfg.Logging.File = flagLogFile
	}
	if flagVerbose {
		cfg.Logging.Level = "debug"
	}

	log, closeLog, err := logger.New(&cfg.Logging)
	if err != nil {
		return err
	}
	defer closeLog()
	defer log.Sync() //nolint:errcheck

	summary, err := pipeline.New(cfg, log).Run(cmd.Context())
	if err != nil {
		return err
	}

	for _, a := range summary.Artifacts {
		if a.Err == nil {
			fmt.Printf("%s: %s\n", a.Kind, a.Path)
		}
	}
	fmt.Printf("Total: %d deposits from %d/%d sites\n",
		summary.Offers(), summary.OKSites(), len(summary.Statuses))

	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
