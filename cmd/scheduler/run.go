package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/canteen-cloud/canteen-node/pkg/clients/ethereum"
	"github.com/canteen-cloud/canteen-node/pkg/clients/fheHelper"
	"github.com/canteen-cloud/canteen-node/pkg/config"
	"github.com/canteen-cloud/canteen-node/pkg/containerManager"
	"github.com/canteen-cloud/canteen-node/pkg/contractCaller/caller"
	"github.com/canteen-cloud/canteen-node/pkg/logger"
	"github.com/canteen-cloud/canteen-node/pkg/node"
	"github.com/canteen-cloud/canteen-node/pkg/ports"
	"github.com/canteen-cloud/canteen-node/pkg/shutdown"
	"github.com/canteen-cloud/canteen-node/pkg/transactionSigner"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the scheduler",
	RunE: func(cmd *cobra.Command, args []string) error {
		initRunCmd(cmd)

		l, _ := logger.NewLogger(&logger.LoggerConfig{Debug: Config.Debug})

		if err := Config.Validate(); err != nil {
			return err
		}

		l.Sugar().Infow("scheduler run",
			"nodeId", Config.NodeId,
			"providerUrl", Config.ProviderUrl,
			"contractAddress", Config.ContractAddress,
		)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		ethereumClient := ethereum.NewEthereumClient(&ethereum.EthereumClientConfig{
			BaseUrl: Config.ProviderUrl,
		}, l)

		ethClient, err := ethereumClient.GetEthereumContractCaller()
		if err != nil {
			return fmt.Errorf("failed to get ethereum contract caller: %w", err)
		}

		rpcClient, err := ethereumClient.GetRPCClient()
		if err != nil {
			return fmt.Errorf("failed to get rpc client: %w", err)
		}

		var custodiedAccounts []string
		if Config.PrivateKey == "" {
			custodiedAccounts, err = ethereumClient.ListAccounts(ctx)
			if err != nil {
				return fmt.Errorf("failed to list provider accounts: %w", err)
			}
		}

		identity, err := transactionSigner.ResolveIdentity(Config.PrivateKey, custodiedAccounts)
		if err != nil {
			return fmt.Errorf("failed to resolve signing identity: %w", err)
		}
		l.Sugar().Infow("Resolved signing identity",
			"kind", identity.Kind.String(),
			"address", identity.Address.Hex(),
		)

		signer, err := transactionSigner.CreateSigner(identity, ethClient, rpcClient, l)
		if err != nil {
			return fmt.Errorf("failed to create transaction signer: %w", err)
		}

		cc, err := caller.NewContractCaller(Config.ContractAddress, ethClient, signer, l)
		if err != nil {
			return fmt.Errorf("failed to initialize contract caller: %w", err)
		}
		l.Sugar().Infow("Resolved contract variant", "variant", cc.VariantName())

		encryptor := fheHelper.NewClient(&fheHelper.Config{
			BaseURL: Config.FheHelperUrl,
		}, l)

		runtime, err := containerManager.NewDockerRuntime(&containerManager.RuntimeConfig{
			DockerHost: Config.DockerHost,
		}, l)
		if err != nil {
			return fmt.Errorf("failed to create docker runtime: %w", err)
		}

		n := node.NewNode(Config, cc, runtime, encryptor, ports.NewAllocator(), l)

		if err := n.Initialize(ctx); err != nil {
			l.Sugar().Fatalw("Failed to initialize node", zap.Error(err))
		}

		go func() {
			if err := n.Run(ctx); err != nil {
				l.Sugar().Fatal("Failed to run node", zap.Error(err))
			}
		}()

		gracefulShutdownNotifier := shutdown.CreateGracefulShutdownChannel()
		done := make(chan bool)
		shutdown.ListenForShutdown(gracefulShutdownNotifier, done, func() {
			l.Sugar().Info("Shutting down...")
			cancel()
			n.Shutdown(context.Background())
			ethereumClient.Close()
		}, time.Second*5, l)
		return nil
	},
}

func initRunCmd(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if err := viper.BindPFlag(config.KebabToSnakeCase(f.Name), f); err != nil {
			fmt.Printf("Failed to bind flag '%s' - %+v\n", f.Name, err)
		}
		if err := viper.BindEnv(f.Name); err != nil {
			fmt.Printf("Failed to bind env '%s' - %+v\n", f.Name, err)
		}
	})
}
