package main

import (
	"fmt"
	"os"

	"github.com/chiremba/chiremba/internal/config"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Global flags
	configPath  string
	verbose     bool
	listenAddr  string
	logLevel    string
	rasterizer  string
	browserPath string
	pageSize    string

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "chiremba",
	Short: "Chiremba health report service",
	Long: `Chiremba turns a skin analysis result into a paginated PDF report.

It serves the report, explanation and speech endpoints over HTTP, and can
render reports and plain HTML documents from the command line.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		boot, err := config.NewLogger("info", verbose)
		if err != nil {
			return err
		}
		cfg, err = config.Load(config.LoaderOptions{
			ConfigPath:    configPath,
			FlagOverrides: flagOverrides(cmd),
			Logger:        boot,
		})
		_ = boot.Sync()
		if err != nil {
			return err
		}
		logger, err = config.NewLogger(cfg.Logging.Level, verbose)
		return err
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// flagOverrides passes only the flags the user actually set
func flagOverrides(cmd *cobra.Command) config.FlagOverrides {
	var f config.FlagOverrides
	set := func(name string, v *string) *string {
		if cmd.Flags().Changed(name) {
			return v
		}
		return nil
	}
	f.ListenAddr = set("listen", &listenAddr)
	f.LogLevel = set("log-level", &logLevel)
	f.Rasterizer = set("rasterizer", &rasterizer)
	f.BrowserPath = set("browser", &browserPath)
	f.PageSize = set("page-size", &pageSize)
	return f
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configPath, "config", "c", "", "Path to a TOML config file")
	pf.BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	pf.StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	pf.StringVar(&rasterizer, "rasterizer", "", "Rasterizer: native, chromium or rod")
	pf.StringVar(&browserPath, "browser", "", "Path to a Chrome or Chromium binary")
	pf.StringVar(&pageSize, "page-size", "", "Page size: A3, A4, A5, Letter or Legal")

	serveCmd.Flags().StringVarP(&listenAddr, "listen", "l", "", "Listen address (default :3001)")

	reportCmd.Flags().StringVarP(&outputDir, "output", "o", ".", "Directory the PDF is written to")
	printCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Write the HTML to a file instead of stdout")
	convertCmd.Flags().StringSliceVar(&resourcePaths, "resource-path", nil, "Extra directories searched for images")

	rootCmd.AddCommand(serveCmd, reportCmd, printCmd, convertCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
