package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/bimmerbailey/memsift/internal/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "memsift",
	Short: "Filter and deduplicate memory-analysis diagnostics",
	Long: `Memsift filters the diagnostic output of memcheck-style memory analyzers,
collapsing repeated error reports into single occurrences so only distinct
issues remain.

Only content after the last occurrence of the run marker is processed, so
logs appended across several runs show just the latest run.

Examples:
  memsift filter memcheck.log
  memsift filter --depth 3 --marker "### RUN ###" memcheck.log
  tail -c +0 memcheck.log | memsift filter -
  memsift stats --format json memcheck.log.gz
  memsift follow --from-start memcheck.log`,
}

// Execute is called by main.main(). It runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.memsift.yaml)")
	rootCmd.PersistentFlags().StringP("format", "f", "text", "output format for summaries (text, json, table)")
	rootCmd.PersistentFlags().String("color", "auto", "colorize block headings (auto, always, never)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "disable scrubbing so blocks differing only in volatile detail stay distinct")

	_ = viper.BindPFlag("format", rootCmd.PersistentFlags().Lookup("format"))
	_ = viper.BindPFlag("color", rootCmd.PersistentFlags().Lookup("color"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error finding home directory:", err)
			os.Exit(1)
		}

		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigName(".memsift")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("MEMSIFT")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("format", "text")
	viper.SetDefault("color", "auto")
	viper.SetDefault("marker", config.DefaultMarker)
	viper.SetDefault("depth", 0)

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}
