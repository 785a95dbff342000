package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/kailas-cloud/medtriage/internal/config"
	logpkg "github.com/kailas-cloud/medtriage/internal/logger"
)

const envPrefix = "MEDTRIAGE"

// newRootCmd builds the command tree. Settings resolve as flag, then MEDTRIAGE_*
// environment variable, then the YAML config file.
func newRootCmd() *cobra.Command {
	v := viper.New()

	root := &cobra.Command{
		Use:   "medtriage",
		Short: "Symptom triage with protocol evidence",
		Long: `medtriage maps a free-text symptom description to a medical specialty,
an urgency level and red-flag alerts, then attaches excerpts from indexed
clinical protocols that support the referral.

It does not diagnose. Every report carries a disclaimer recommending an
in-person medical evaluation.`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	flags := root.PersistentFlags()
	flags.String("env", config.GetEnv(), "environment: local, dev, docker, prod")
	flags.String("config", "", "config file (default: config/<env>.yaml)")
	flags.String("log-level", "", "log level override: debug, info, warn, error")
	flags.String("db", "", "protocol database path override")

	bindFlags(v, root)

	root.AddCommand(
		newServeCmd(v),
		newTriageCmd(v),
		newCategoriesCmd(v),
		newIngestCmd(v),
		newVersionCmd(),
	)
	return root
}

func bindFlags(v *viper.Viper, cmd *cobra.Command) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	for _, name := range []string{"env", "config", "log-level", "db"} {
		_ = v.BindPFlag(name, cmd.PersistentFlags().Lookup(name))
	}
}

// runtimeDeps are loaded once per command invocation.
type runtimeDeps struct {
	env    string
	cfg    config.Config
	logger *zap.Logger
}

func loadRuntime(v *viper.Viper) (runtimeDeps, error) {
	env := v.GetString("env")

	var (
		cfg config.Config
		err error
	)
	if path := v.GetString("config"); path != "" {
		cfg, err = config.LoadFile(path)
	} else {
		cfg, err = config.Load(env)
	}
	if err != nil {
		return runtimeDeps{}, fmt.Errorf("load config: %w", err)
	}
	applyOverrides(v, &cfg)

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return runtimeDeps{}, fmt.Errorf("create logger: %w", err)
	}
	return runtimeDeps{env: env, cfg: cfg, logger: logger}, nil
}

func applyOverrides(v *viper.Viper, cfg *config.Config) {
	if lvl := v.GetString("log-level"); lvl != "" {
		cfg.Logging.Level = lvl
	}
	if path := v.GetString("db"); path != "" {
		cfg.Database.Path = path
	}
}
