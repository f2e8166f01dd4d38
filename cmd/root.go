// File: cmd/root.go
package cmd

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/xkilldash9x/formforge/internal/config"
	"github.com/xkilldash9x/formforge/internal/observability"
)

type contextKey string

const configKey contextKey = "config"

// flagKeys maps command-line flags onto configuration keys. Flags a command
// does not define are skipped.
var flagKeys = map[string]string{
	"log-level":         "logger.level",
	"headless":          "browser.headless",
	"chrome-path":       "browser.exec_path",
	"paginated":         "page.paginated",
	"page-size":         "page.size",
	"sanitize":          "render.sanitize",
	"continue-on-error": "batch.continue_on_error",
	"min-interval":      "batch.min_interval",
}

// NewRootCommand builds a fresh command tree. Nothing is shared between two
// trees, so tests and repeated invocations start from a clean state.
func NewRootCommand() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:          "formforge",
		Short:        "Formforge turns markup and field definitions into fillable PDF forms.",
		Version:      Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			v := viper.New()
			config.SetDefaults(v)

			if err := initializeConfig(cmd, v, cfgFile); err != nil {
				return fmt.Errorf("failed to initialize configuration: %w", err)
			}

			cfg, err := config.NewConfigFromViper(v)
			if err != nil {
				return fmt.Errorf("failed to load or validate config: %w", err)
			}

			observability.InitializeLogger(cfg.Logger())
			observability.GetLogger().Debug("Starting formforge.", zap.String("version", Version))

			cmd.SetContext(context.WithValue(cmd.Context(), configKey, cfg))
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "", "config file (default is ./formforge.yaml, then ~/.formforge/formforge.yaml)")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.Bool("headless", true, "run the rendering browser headless")
	flags.String("chrome-path", "", "path to the Chrome or Chromium executable")
	flags.Bool("paginated", false, "flow content across as many pages as needed")
	flags.String("page-size", "", "named page size such as letter, a4 or a4-landscape")
	flags.Bool("sanitize", false, "sanitize markup before rendering")

	rootCmd.AddCommand(newGenerateCmd())
	rootCmd.AddCommand(newBatchCmd())
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

// Execute runs the command tree under ctx. Cancellation is logged as a
// warning, anything else as an error; either way the error is returned so
// main can pick the exit code.
func Execute(ctx context.Context) error {
	err := NewRootCommand().ExecuteContext(ctx)
	logger := observability.GetLogger()
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled):
		logger.Warn("Command aborted.")
	default:
		logger.Error("Command execution failed.", zap.Error(err))
	}
	observability.Sync()
	return err
}

// initializeConfig points v at the config file and environment, then binds
// the flags of cmd. Precedence is flag, env, file, default.
func initializeConfig(cmd *cobra.Command, v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		path, err := homedir.Expand(cfgFile)
		if err != nil {
			return fmt.Errorf("invalid config path: %w", err)
		}
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("formforge")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := homedir.Dir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".formforge"))
		}
	}

	v.SetEnvPrefix("FORMFORGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	return bindFlags(v, cmd.Flags())
}

func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("failed to bind --%s: %w", name, err)
		}
	}
	return nil
}

// configFrom returns the configuration stored by the root command.
func configFrom(cmd *cobra.Command) (*config.Config, error) {
	cfg, ok := cmd.Context().Value(configKey).(*config.Config)
	if !ok || cfg == nil {
		return nil, fmt.Errorf("configuration not initialized")
	}
	return cfg, nil
}
