// Package commands implements studioctl, the operator console for the
// studio API.
package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/david/studio-desk/internal/client"
	"github.com/david/studio-desk/internal/logging"
	"github.com/david/studio-desk/internal/workflow"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const defaultConfigFilename = ".studioctl"

func NewRootCommand() *cobra.Command {
	var cfgFile string
	v := viper.New()

	root := &cobra.Command{
		Use:          "studioctl",
		Short:        "Run the studio from the terminal",
		SilenceUsage: true,
		Long: `studioctl drives projects, sections, assets, funding opportunities and
application packages through the studio API.

Settings come from flags, a ./.studioctl.yaml file or environment variables
prefixed STUDIO_ (for example STUDIO_API_URL).`,
		Example: `  studioctl project create "Issue 12"
  studioctl section save <section-id> --file cover.md
  studioctl opportunity import-file call.pdf`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := initializeConfig(v, cmd, cfgFile); err != nil {
				return err
			}
			logging.Init(v.GetString("log-level"))
			return nil
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ./.studioctl.yaml)")
	root.PersistentFlags().String("api-url", client.DefaultAPIURL, "studio API base URL")
	root.PersistentFlags().StringP("log-level", "l", "warn", "log level: debug, info, warn, error")

	root.AddCommand(
		newDashboardCommand(),
		newProjectCommand(),
		newSectionCommand(),
		newAssetCommand(),
		newOpportunityCommand(),
		newApplicationCommand(),
	)

	return root
}

// initializeConfig fills unset persistent flags from the config file and
// STUDIO_* environment variables.
func initializeConfig(v *viper.Viper, cmd *cobra.Command, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(defaultConfigFilename)
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
		slog.Debug("no config file found")
	}

	v.SetEnvPrefix("STUDIO")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	var bindErr error
	cmd.Root().PersistentFlags().VisitAll(func(f *pflag.Flag) {
		if f.Name == "config" {
			return
		}
		if !f.Changed && v.IsSet(f.Name) {
			if err := f.Value.Set(fmt.Sprintf("%v", v.Get(f.Name))); err != nil {
				bindErr = fmt.Errorf("invalid value for %s: %w", f.Name, err)
			}
		}
		if err := v.BindPFlag(f.Name, f); err != nil {
			bindErr = err
		}
	})
	return bindErr
}

func newDesk(cmd *cobra.Command) (*workflow.Desk, error) {
	apiURL, err := cmd.Flags().GetString("api-url")
	if err != nil {
		return nil, err
	}
	c, err := client.New(apiURL)
	if err != nil {
		return nil, err
	}
	return workflow.NewDesk(c), nil
}

func parseID(kind, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s id %q", kind, raw)
	}
	return id, nil
}
