package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marketbridge/marketbridge/internal/commercetools"
	"github.com/marketbridge/marketbridge/internal/currency"
	"github.com/marketbridge/marketbridge/internal/klaviyo"
	"github.com/marketbridge/marketbridge/internal/logging"
	"github.com/marketbridge/marketbridge/internal/mapper"
	"github.com/marketbridge/marketbridge/internal/ordersync"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Backfill historical data into the marketing platform",
}

var syncOrdersCmd = &cobra.Command{
	Use:   "orders",
	Short: "Replay every order as placed-order and product events",
	Long: `Scans all orders in the commerce project by ascending id and sends
each one to the marketing platform. A platform-side lock prevents two
syncs from running concurrently.`,
	RunE: runSyncOrders,
}

func init() {
	syncCmd.AddCommand(syncOrdersCmd)
	rootCmd.AddCommand(syncCmd)
}

func runSyncOrders(cmd *cobra.Command, args []string) error {
	logger := logging.New(
		logging.ParseLevel(cfg.Logging.Level),
		cfg.Logging.Format,
	).With(logging.Service("marketbridge-sync"))
	logging.SetDefault(logger)

	commerce := commercetools.New(commercetools.Config{
		APIURL:       cfg.Commercetools.APIURL,
		AuthURL:      cfg.Commercetools.AuthURL,
		ProjectKey:   cfg.Commercetools.ProjectKey,
		ClientID:     cfg.Commercetools.ClientID,
		ClientSecret: cfg.Commercetools.ClientSecret,
		Scopes:       cfg.Commercetools.Scopes,
		Timeout:      cfg.Commercetools.Timeout,
	})

	delivery := klaviyo.New(klaviyo.Config{
		BaseURL:  cfg.Klaviyo.APIURL,
		APIKey:   cfg.Klaviyo.APIKey,
		Revision: cfg.Klaviyo.Revision,
		Timeout:  cfg.Klaviyo.Timeout,
	})

	runner := ordersync.NewRunner(
		commerce,
		delivery,
		mapper.NewOrderMapper(currency.Identity{}, cfg.Events.AllowedProperties()),
		cfg.Events,
		logger,
	)

	summary, err := runner.Run(cmd.Context())
	if err != nil {
		return err
	}

	fmt.Printf("Synced %d orders: %d deliveries accepted, %d failed\n",
		summary.Orders, summary.Delivered, summary.Failed)
	return nil
}
