package main

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/tliron/commonlog"

	_ "github.com/tliron/commonlog/simple"
)

const version = "0.3.0"

var cfgFile string

func main() {
	rootCmd := &cobra.Command{
		Use:           "javasema",
		Short:         "Semantic analysis for Java source",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.javasema.yaml)")
	rootCmd.PersistentFlags().Int("log-level", 0, "operational log verbosity, 0 to 2")
	rootCmd.PersistentFlags().StringSlice("classpath", nil, "classpath entries: class directories or .jar archives")
	rootCmd.PersistentFlags().String("lib", "", "directory whose jars are appended to the classpath")
	rootCmd.PersistentFlags().Int("jdk", 17, "Java language level")
	rootCmd.PersistentFlags().String("inference-log", "off", "inference engine diagnostics: off, summary or full-trace")
	for _, name := range []string{"log-level", "classpath", "lib", "jdk", "inference-log"} {
		_ = viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}

	rootCmd.AddCommand(newCheckCmd())
	rootCmd.AddCommand(newDumpCmd())
	rootCmd.AddCommand(newSymbolsCmd())
	rootCmd.AddCommand(newClasspathCmd())
	rootCmd.AddCommand(newLSPCmd())
	rootCmd.AddCommand(newVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		rootCmd.PrintErrln("Error:", err)
		os.Exit(1)
	}
}

// initConfig reads the config file and environment once, before any
// command runs. Flags win over JAVASEMA_* variables, which win over the
// config file.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
		viper.SetConfigName(".javasema")
	}

	viper.SetEnvPrefix("JAVASEMA")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
	_ = viper.ReadInConfig()

	commonlog.Configure(viper.GetInt("log-level"), nil)
}
