package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/canteen-cloud/canteen-node/pkg/clients/ethereum"
	"github.com/canteen-cloud/canteen-node/pkg/config"
	"github.com/canteen-cloud/canteen-node/pkg/contractCaller/caller"
	"github.com/canteen-cloud/canteen-node/pkg/logger"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "List registered members and their assigned images",
	RunE: func(cmd *cobra.Command, args []string) error {
		providerUrl := viper.GetString(config.KebabToSnakeCase(config.ProviderUrl))
		contractAddress := viper.GetString(config.KebabToSnakeCase(config.ContractAddress))
		debug := viper.GetBool(config.KebabToSnakeCase(config.Debug))

		if contractAddress == "" {
			return fmt.Errorf("%s is required", config.ContractAddress)
		}

		l, _ := logger.NewLogger(&logger.LoggerConfig{Debug: debug})

		ctx := context.Background()

		ethereumClient := ethereum.NewEthereumClient(&ethereum.EthereumClientConfig{
			BaseUrl: providerUrl,
		}, l)
		defer ethereumClient.Close()

		ethClient, err := ethereumClient.GetEthereumContractCaller()
		if err != nil {
			return fmt.Errorf("failed to get ethereum contract caller: %w", err)
		}

		// Status never submits transactions, so no signer is wired.
		cc, err := caller.NewContractCaller(contractAddress, ethClient, nil, l)
		if err != nil {
			return fmt.Errorf("failed to initialize contract caller: %w", err)
		}

		count, err := cc.GetMembersCount(ctx)
		if err != nil {
			return fmt.Errorf("failed to read member count: %w", err)
		}

		color.New(color.FgCyan, color.Bold).Printf("Contract %s (%s) via %s\n", contractAddress, cc.VariantName(), providerUrl)
		fmt.Printf("Registered members (including inactive): %d\n\n", count)

		if count == 0 {
			fmt.Println("No members registered yet.")
			return nil
		}

		table := tablewriter.NewWriter(os.Stdout)
		table.SetHeader([]string{"HOST", "STATUS", "ASSIGNED IMAGES", "CIPHERTEXT"})

		var active uint64
		for i := uint64(0); i < count; i++ {
			host, err := cc.GetMemberAt(ctx, i)
			if err != nil {
				return fmt.Errorf("failed to read member at index %d: %w", i, err)
			}

			details, err := cc.GetMemberDetails(ctx, host)
			if err != nil {
				return fmt.Errorf("failed to read details for %s: %w", host, err)
			}
			if !details.Active {
				continue
			}
			active++

			images, err := cc.GetMemberImages(ctx, host)
			if err != nil {
				return fmt.Errorf("failed to read images for %s: %w", host, err)
			}
			assigned := "none"
			if len(images) > 0 {
				assigned = strings.Join(images, ", ")
			}

			table.Append([]string{
				host,
				color.GreenString("active"),
				assigned,
				fmt.Sprintf("%d bytes", len(details.EncryptedMemory)),
			})
		}

		if active == 0 {
			fmt.Println("All registered members are inactive.")
			return nil
		}

		table.Render()
		fmt.Printf("\nActive members: %d of %d registered\n", active, count)
		return nil
	},
}
