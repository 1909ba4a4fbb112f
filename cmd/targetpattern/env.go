package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// bindEnvVars lets every flag of cmd and its subcommands be set through
// TARGETPATTERN_<FLAG_NAME>. Flags given on the command line win.
func bindEnvVars(cmd *cobra.Command) {
	cmd.Flags().VisitAll(bindFlagToEnv)
	cmd.PersistentFlags().VisitAll(bindFlagToEnv)

	for _, sub := range cmd.Commands() {
		bindEnvVars(sub)
	}
}

func bindFlagToEnv(flag *pflag.Flag) {
	envName := flagToEnvName(flag.Name)

	if !strings.Contains(flag.Usage, envName) {
		flag.Usage = fmt.Sprintf("%s ($%s)", flag.Usage, envName)
	}

	if flag.Changed {
		return
	}

	envValue, ok := os.LookupEnv(envName)
	if !ok {
		return
	}

	if err := setFromEnv(flag, envValue); err != nil {
		slog.Error("failed to set flag from environment variable",
			slog.String("flag", flag.Name),
			slog.String("env", envName),
			slog.Any("err", err),
		)
	}
}

// setFromEnv sets flag without marking a slice flag as changed, so values
// given on the command line replace the environment's instead of appending.
func setFromEnv(flag *pflag.Flag, value string) error {
	if sv, ok := flag.Value.(pflag.SliceValue); ok {
		return sv.Replace(strings.Split(value, ","))
	}

	return flag.Value.Set(value)
}

func flagToEnvName(name string) string {
	return strings.ToUpper(cmdName + "_" + strings.ReplaceAll(name, "-", "_"))
}
