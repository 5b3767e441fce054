package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/guilhermegouw/socchat/internal/config"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Read and edit the configuration file",
		Long: `Read and edit single fields of the global configuration file.

Keys use dotted JSON paths. Values that parse as JSON are stored as JSON,
anything else as a string.

Examples:
  socchat config path
  socchat config get chat.default_model
  socchat config set chat.default_model qwen2.5:7b
  socchat config set chat.window_size 6
  socchat config set providers.groq.api_key '$GROQ_API_KEY'`,
	}

	cmd.PersistentFlags().String("file", "", "Config file to use (default is the global config)")

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), configFile(cmd))
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get <key>",
		Short: "Print a config field",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, ok, err := config.GetConfigField(configFile(cmd), args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("%s is not set", args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), result.String())
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a config field",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configFile(cmd)
			if err := config.SetConfigField(path, args[0], config.ParseValue(args[1])); err != nil {
				return err
			}
			if _, err := config.LoadFromFile(path); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: config no longer validates: %v\n", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Set %s in %s\n", args[0], path)
			return nil
		},
	})

	return cmd
}

func configFile(cmd *cobra.Command) string {
	if path, _ := cmd.Flags().GetString("file"); path != "" { //nolint:errcheck // flag is registered on the parent
		return path
	}
	return config.GlobalConfigPath()
}
