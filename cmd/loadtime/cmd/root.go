package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/psantana5/loadtime/internal/config"
	"github.com/psantana5/loadtime/internal/store"
	"github.com/psantana5/loadtime/pkg/logging"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  *logging.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "loadtime",
	Short: "Progress display for long-running commands based on their last duration",
	Long: `loadtime runs a long command and shows elapsed time while it works.

The duration of every successful run is stored under ~/.cache/loadtime, so the
next run of the same named operation shows elapsed time against the previous
total together with a progress bar.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: loadConfig,
}

// ExitError carries a wrapped command's exit code up to main.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is $HOME/.loadtime/config.yaml)")
	flags.String("cache-dir-name", store.DefaultDirName, "directory under ~/.cache holding recorded durations")
	flags.String("cache-dir", "", "full directory for recorded durations (overrides --cache-dir-name)")
	flags.String("log-level", "warn", "log level: debug, info, warn, error")
	flags.Bool("log-json", false, "emit logs as JSON")
	flags.String("progress", config.ProgressAuto, "show progress: auto (when stderr is a terminal), always, never")

	viper.BindPFlag("cache_dir_name", flags.Lookup("cache-dir-name"))
	viper.BindPFlag("cache_dir", flags.Lookup("cache-dir"))
	viper.BindPFlag("log_level", flags.Lookup("log-level"))
	viper.BindPFlag("log_json", flags.Lookup("log-json"))
	viper.BindPFlag("progress", flags.Lookup("progress"))
}

// initConfig reads in config file and ENV variables if set
func initConfig() {
	config.SetDefaults(viper.GetViper())

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return
		}
		viper.AddConfigPath(filepath.Join(home, ".loadtime"))
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound && cfgFile != "" {
			fmt.Fprintf(os.Stderr, "Error reading config file %s: %v\n", cfgFile, err)
		}
	}
}

func loadConfig(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	logger = logging.NewLogger(logging.ParseLevel(cfg.LogLevel), cfg.LogJSON)
	logger.Debug("Configuration loaded", map[string]interface{}{
		"config_file": viper.ConfigFileUsed(),
	})
	return nil
}

func openStore() (*store.Store, error) {
	dir, err := cfg.StoreDir()
	if err != nil {
		return nil, err
	}
	return store.New(dir, logger), nil
}

// progressEnabled resolves the progress mode against the stderr terminal.
func progressEnabled() bool {
	switch cfg.Progress {
	case config.ProgressAlways:
		return true
	case config.ProgressNever:
		return false
	default:
		fd := os.Stderr.Fd()
		return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
	}
}
