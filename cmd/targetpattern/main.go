package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/glesirok/targetpattern/pkg/log"
	"github.com/glesirok/targetpattern/pkg/processor"
)

const (
	cmdName = "targetpattern"
	cmdDesc = "Parse, normalize and compare build target patterns"

	cmdExamples = `  # Classify patterns:
  targetpattern parse //foo/... foo:bar @repo//baz:all java/com/Foo.java

  # Resolve relative patterns against a working directory:
  targetpattern parse --offset java/com google/...

  # Check whether one recursive pattern contains another:
  targetpattern contains //foo/... //foo/bar/...

  # Plan a pattern sequence with exclusions (note the "--"):
  targetpattern plan -- //... -//third_party/...

  # Plan every pattern file in a directory:
  targetpattern plan -f ./patterns`
)

// rootOptions are shared by every subcommand.
type rootOptions struct {
	LogLevel  string
	LogFormat string
	Offset    string
	Output    string
	CacheSize int
}

func main() {
	_ = godotenv.Load()

	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   cmdName,
		Short: cmdDesc,
		Long: `targetpattern interprets target pattern strings such as //foo/..., foo:all,
@repo//foo:bar or java/com/Foo.java and turns each into a canonical value.
It never reads the source tree: listing the targets is left to the build tool.`,
		Example:           cmdExamples,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: setupLogging(opts),
	}

	rootCmd.PersistentFlags().
		StringVar(&opts.LogLevel, "log-level", "info", fmt.Sprintf("Log level, one of: %s", log.AllLevels))
	rootCmd.PersistentFlags().
		StringVar(&opts.LogFormat, "log-format", "text", fmt.Sprintf("Log format, one of: %s", log.AllFormats))
	rootCmd.PersistentFlags().
		StringVar(&opts.Offset, "offset", "", "Working directory relative patterns are resolved against")
	rootCmd.PersistentFlags().
		StringVarP(&opts.Output, "output", "o", string(outputText), fmt.Sprintf("Output format, one of: %s", allOutputs))
	rootCmd.PersistentFlags().
		IntVar(&opts.CacheSize, "cache-size", processor.DefaultCacheSize, "Number of parsed patterns to memoize")

	registerCompletions(rootCmd)

	rootCmd.AddCommand(
		newParseCmd(opts),
		newNormalizeCmd(opts),
		newContainsCmd(opts),
		newPlanCmd(opts),
		newSchemaCmd(opts),
	)

	bindEnvVars(rootCmd)

	return rootCmd
}

func registerCompletions(cmd *cobra.Command) {
	completions := map[string][]string{
		"log-format": log.AllFormats,
		"log-level":  log.AllLevels,
		"output":     allOutputs,
	}

	for flag, values := range completions {
		err := cmd.RegisterFlagCompletionFunc(flag,
			cobra.FixedCompletions(values, cobra.ShellCompDirectiveNoFileComp),
		)
		if err != nil {
			panic(err)
		}
	}
}

func setupLogging(opts *rootOptions) func(cmd *cobra.Command, _ []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		logHandler, err := log.CreateHandlerWithStrings(cmd.ErrOrStderr(), opts.LogLevel, opts.LogFormat)
		if err != nil {
			return fmt.Errorf("create log handler: %w", err)
		}

		logger := slog.New(logHandler)
		slog.SetDefault(logger)
		cmd.SetContext(log.NewContext(cmd.Context(), logger))

		return nil
	}
}

// newProcessor builds the processor configured by the root flags.
func (o *rootOptions) newProcessor() (*processor.Processor, error) {
	proc, err := processor.New(
		processor.WithOffset(o.Offset),
		processor.WithCacheSize(o.CacheSize),
	)
	if err != nil {
		return nil, fmt.Errorf("create processor: %w", err)
	}

	return proc, nil
}
