package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/canteen-cloud/canteen-node/pkg/config"
)

var rootCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Run the canteen node agent",
}

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

var configFile string
var Config *config.SchedulerConfig

func init() {
	cobra.OnInitialize(initConfigIfPresent)

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	initConfig(rootCmd)

	rootCmd.PersistentFlags().Bool(config.Debug, false, `"true" or "false"`)
	rootCmd.PersistentFlags().String(config.ProviderUrl, "http://localhost:7545", "ledger JSON-RPC provider url")
	rootCmd.PersistentFlags().String(config.ContractAddress, "", "ledger contract address")
	rootCmd.PersistentFlags().String(config.PrivateKey, "", "hex private key; empty uses a provider-custodied account")
	rootCmd.PersistentFlags().String(config.NodeId, "", "peer identifier this node registers under")
	rootCmd.PersistentFlags().Int(config.NodePort, 5000, "node base port, offsets the host port search window")
	rootCmd.PersistentFlags().Uint64(config.MemoryMb, 4096, "schedulable memory capacity in MB")
	rootCmd.PersistentFlags().Duration(config.PollInterval, time.Second, "ledger poll interval")
	rootCmd.PersistentFlags().String(config.DockerHost, "", "docker daemon endpoint; empty uses the environment")
	rootCmd.PersistentFlags().String(config.FheHelperUrl, "http://localhost:9300", "FHE helper sidecar url")

	// setup sub commands
	rootCmd.AddCommand(runCmd)

	rootCmd.PersistentFlags().VisitAll(func(f *pflag.Flag) {
		key := config.KebabToSnakeCase(f.Name)
		viper.BindPFlag(key, f) //nolint:errcheck
		viper.BindEnv(key)      //nolint:errcheck
	})
}

func initConfig(cmd *cobra.Command) {
	viper.SetEnvPrefix(config.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()
}

func initConfigIfPresent() {
	hasConfig := false
	if configFile != "" {
		viper.SetConfigFile(configFile)
		hasConfig = true
	}
	if hasConfig {
		fmt.Printf("Using config file: %s\n", configFile)
		if err := viper.ReadInConfig(); err != nil {
			panic(err)
		}
		if err := viper.Unmarshal(&Config); err != nil {
			panic(err)
		}
	} else {
		Config = config.NewSchedulerConfig()
	}
}

func main() {
	Execute()
}
