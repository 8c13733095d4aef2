package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"

	"github.com/marketbridge/marketbridge/internal/dlq"
	"github.com/marketbridge/marketbridge/internal/logging"
)

var dlqCmd = &cobra.Command{
	Use:   "dlq",
	Short: "Inspect the dead letter queue",
	Long:  `Reads and manages the stream of outbound requests the marketing platform rejected.`,
}

var dlqLimit int

var dlqListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print dead-lettered deliveries",
	RunE:  runDLQList,
}

var dlqStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show dead letter stream state",
	RunE:  runDLQStats,
}

var dlqPurgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Drop every entry from the dead letter stream",
	RunE:  runDLQPurge,
}

func init() {
	dlqListCmd.Flags().IntVar(&dlqLimit, "limit", 100, "maximum entries to read")
	dlqCmd.AddCommand(dlqListCmd, dlqStatsCmd, dlqPurgeCmd)
	rootCmd.AddCommand(dlqCmd)
}

// connectDLQ opens the configured dead letter stream for one command run.
func connectDLQ(cmd *cobra.Command) (*dlq.JetStreamQueue, func(), error) {
	nc, err := nats.Connect(cfg.DLQ.NatsURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to nats: %w", err)
	}
	queue, err := dlq.NewJetStreamQueue(cmd.Context(), nc, logging.Default())
	if err != nil {
		nc.Close()
		return nil, nil, err
	}
	return queue, nc.Close, nil
}

func runDLQList(cmd *cobra.Command, args []string) error {
	queue, closeConn, err := connectDLQ(cmd)
	if err != nil {
		return err
	}
	defer closeConn()

	entries, err := queue.List(cmd.Context(), dlqLimit)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("dead letter queue is empty")
		return nil
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(entries)
}

func runDLQStats(cmd *cobra.Command, args []string) error {
	queue, closeConn, err := connectDLQ(cmd)
	if err != nil {
		return err
	}
	defer closeConn()

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(queue.Stats(cmd.Context()))
}

func runDLQPurge(cmd *cobra.Command, args []string) error {
	queue, closeConn, err := connectDLQ(cmd)
	if err != nil {
		return err
	}
	defer closeConn()

	if err := queue.Purge(cmd.Context()); err != nil {
		return err
	}
	fmt.Println("dead letter stream purged")
	return nil
}
