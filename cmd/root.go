package cmd

import (
	"context"
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/deploymenttheory/go-dex/internal/config"
	"github.com/deploymenttheory/go-dex/internal/disk"
	"github.com/deploymenttheory/go-dex/internal/logger"
	"github.com/deploymenttheory/go-dex/internal/services"
	"github.com/deploymenttheory/go-dex/pkg/app"
)

var (
	// Global output flags
	verbose      bool
	quiet        bool
	outputFormat string

	// Config and logging flags
	cfgFile   string
	debug     bool
	logFormat string
	logFile   string

	// appCtx is built by PersistentPreRunE for every subcommand
	appCtx      *app.Context
	stopSignals context.CancelFunc
)

var rootCmd = &cobra.Command{
	Use:   "go-dex",
	Short: "Inspect Dalvik executable (.dex) files",
	Long: `go-dex is a read-only command-line inspector for Dalvik executable
(.dex) files. It validates the header and lists the string, type, proto,
field and method pools along with every class definition and its members.

Inputs may be raw .dex files, gzip/zstd/xz/bzip2 compressed images, or
APK/zip archives (classes.dex is read by default).

Commands:
  dump      Print header, pools and classes of one or more files
  verify    Check header magic, checksum and file size
  version   Print version information`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if stopSignals != nil {
			stopSignals()
		}
		_ = logger.Sync()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	flags.BoolVarP(&quiet, "quiet", "q", false, "suppress output except errors")
	flags.StringVarP(&outputFormat, "output", "o", "text", "output format (text, json, yaml)")
	flags.StringVar(&cfgFile, "config", "", "config file (default searches ./go-dex.yaml, ~/.go-dex/, /etc/go-dex/)")
	flags.BoolVar(&debug, "debug", false, "enable debug logging")
	flags.StringVar(&logFormat, "log-format", "human", "log format (human, json)")
	flags.StringVar(&logFile, "log-file", "", "also write logs to this file")
}

// setup loads configuration, lets explicitly set flags override it, and
// builds the logger and application context.
func setup(cmd *cobra.Command, args []string) error {
	if stopSignals != nil {
		stopSignals()
	}

	v := config.New(cfgFile)
	if err := bindFlags(v, cmd); err != nil {
		return err
	}

	cfg, err := config.Read(v)
	if err != nil {
		return app.NewError(app.ErrCodeInvalidInput, "invalid configuration", err)
	}

	logCfg := logger.DefaultConfig()
	logCfg.Debug = cfg.Log.Debug
	logCfg.LogFormat = cfg.Log.Format
	logCfg.LogFile = cfg.Log.File
	logCfg.Quiet = quiet
	if err := logger.InitLogger(logCfg); err != nil {
		return err
	}
	if cfg.File != "" {
		logger.Logger.Debugw("config loaded", "file", cfg.File)
	}

	base := app.NewContext()
	base.Config = cfg
	base.OutputFormat = cfg.Output.Format
	base.Verbose = verbose
	base.Quiet = quiet
	base.Logger = logger.Logger
	base.Stdout = cmd.OutOrStdout()
	base.Stderr = cmd.ErrOrStderr()

	// an interrupt stops a batch between files
	appCtx, stopSignals = base.WithSignals(os.Interrupt, syscall.SIGTERM)
	return nil
}

// bindFlags maps persistent and command flags onto config keys. viper only
// prefers a bound flag over file and environment values when it was set.
func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	bindings := map[string]string{
		"output.format":                   "output",
		"log.debug":                       "debug",
		"log.format":                      "log-format",
		"log.file":                        "log-file",
		"decode.verify_checksum":          "verify-checksum",
		"decode.fix_virtual_method_count": "fix-virtual-count",
		"decode.max_file_size":            "max-size",
		"source.allow_compressed":         "decompress",
		"source.apk_entry":                "apk-entry",
	}
	for key, name := range bindings {
		f := cmd.Flags().Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", name, err)
		}
	}
	return nil
}

// decodeOptions builds the per-file decode options from the loaded config
func decodeOptions(ctx *app.Context) services.Options {
	cfg := ctx.Config
	return services.Options{
		VerifyChecksum:        cfg.Decode.VerifyChecksum,
		FixVirtualMethodCount: cfg.Decode.FixVirtualMethodCount,
		Source: disk.SourceOptions{
			AllowCompressed: cfg.Source.AllowCompressed,
			APKEntry:        cfg.Source.APKEntry,
			MaxSize:         cfg.Decode.MaxFileSize,
		},
		Logger: ctx.Logger,
	}
}

// addDecodeFlags registers the flags shared by commands that open files
func addDecodeFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("verify-checksum", true, "verify the Adler-32 checksum before decoding")
	cmd.Flags().Bool("decompress", true, "accept compressed images and APK/zip archives")
	cmd.Flags().String("apk-entry", "classes.dex", "entry to read from APK/zip archives")
	cmd.Flags().Int64("max-size", 256<<20, "maximum accepted image size in bytes")
}
