package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration inspection",
	Long:  `Commands for inspecting the settings loadtime resolves from flags, environment and config file.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as YAML",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	data, err := cfg.YAML()
	if err != nil {
		return err
	}

	if used := viper.ConfigFileUsed(); used != "" {
		fmt.Fprintf(os.Stdout, "# from %s\n", used)
	}
	dir, err := cfg.StoreDir()
	if err == nil {
		fmt.Fprintf(os.Stdout, "# records in %s\n", dir)
	}
	_, err = os.Stdout.Write(data)
	return err
}
