// Command linetl translates subtitles, Markdown, plain text and HTML line by line.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ZaguanLabs/linetl"
	"github.com/ZaguanLabs/linetl/config"
	"github.com/ZaguanLabs/linetl/i18n"
	"github.com/ZaguanLabs/linetl/provider"
	"github.com/ZaguanLabs/linetl/settings"
)

// Build-time variables (can be overridden with ldflags)
var (
	version   = linetl.Version
	commit    = linetl.GitCommit
	buildDate = linetl.BuildDate
)

var (
	red    = color.New(color.FgRed).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	yellow = color.New(color.Bold, color.FgYellow).SprintFunc()
	cyan   = color.New(color.Bold, color.FgCyan).SprintFunc()
)

// newRegistry builds the provider registry; tests replace it with a mock.
var newRegistry = func(logger *zap.Logger) linetl.Registry {
	return provider.NewRegistry(provider.Options{Logger: logger})
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", red("error:"), err)
		os.Exit(1)
	}
}

// app carries the streams and global flags shared by every command.
type app struct {
	stdin          io.Reader
	stdout, stderr io.Writer

	configPath string
	verbose    bool
}

func run(args []string, stdout, stderr io.Writer) error {
	i18n.Init("")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	a := &app{stdin: os.Stdin, stdout: stdout, stderr: stderr}
	root := a.newRootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(ctx)
}

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func (a *app) newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   linetl.Name,
		Short: linetl.Description,
		Long: `linetl translates documents line by line through free translation APIs,
commercial machine translation services and large language models.

Settings are layered, lowest first: built-in defaults, the user settings
store (see "linetl settings"), .linetl.yaml in the working directory (or
--config), LINETL_<METHOD>_API_KEY environment variables, then flags.

Commands:
  translate   Translate a file or stdin
  languages   List language codes
  check       Check whether a method supports a language pair
  probe       Send a test translation through a method
  cache       Inspect and move the translation cache
  settings    Export and import user settings
  version     Show version information`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Config file (default: ./"+config.FileName+")")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		a.newTranslateCmd(),
		a.newLanguagesCmd(),
		a.newCheckCmd(),
		a.newProbeCmd(),
		a.newCacheCmd(),
		a.newSettingsCmd(),
		a.newVersionCmd(),
	)

	return root
}

// ---------------------------------------------------------------------------
// Shared helpers
// ---------------------------------------------------------------------------

// newLogger returns a console logger on stderr. Only warnings and errors are
// shown unless --verbose is set.
func (a *app) newLogger() *zap.Logger {
	level := zapcore.WarnLevel
	if a.verbose {
		level = zapcore.DebugLevel
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.TimeKey = ""
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(a.stderr), level)
	return zap.New(core)
}

// loadConfig layers the project config over the user settings store.
func (a *app) loadConfig() (*config.File, error) {
	var (
		project *config.File
		err     error
	)
	if a.configPath != "" {
		project, err = config.LoadFile(a.configPath)
	} else {
		project, err = config.Load(".")
	}
	if err != nil {
		return nil, err
	}
	return settings.Load().File().Overlay(project), nil
}

func (a *app) info(format string, args ...any) {
	fmt.Fprintf(a.stderr, cyan("==>")+" "+format+"\n", args...)
}

func (a *app) success(format string, args ...any) {
	fmt.Fprintf(a.stderr, green("✓")+" "+format+"\n", args...)
}

func (a *app) warn(format string, args ...any) {
	fmt.Fprintf(a.stderr, yellow("!")+" "+format+"\n", args...)
}

// ---------------------------------------------------------------------------
// version
// ---------------------------------------------------------------------------

func (a *app) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(a.stdout, "%s %s\n", linetl.Name, version)
			if commit != "unknown" && commit != "" {
				fmt.Fprintf(a.stdout, "  commit:  %s\n", commit)
			}
			if buildDate != "unknown" && buildDate != "" {
				fmt.Fprintf(a.stdout, "  built:   %s\n", buildDate)
			}
		},
	}
}
