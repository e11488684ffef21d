/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tudao164/KiemThuPhanMem/config"
	"github.com/tudao164/KiemThuPhanMem/internal/mq"
	"github.com/tudao164/KiemThuPhanMem/types"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Work with the account event stream",
}

var eventsTailCmd = &cobra.Command{
	Use:   "tail",
	Short: "Print account events as JSON lines until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		if cfg.MQ.Backend == "" {
			return errors.New("MQ_BACKEND is not configured")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		queue, err := mq.Open(ctx, cfg.MQ)
		if err != nil {
			return err
		}
		defer queue.Close()

		enc := json.NewEncoder(cmd.OutOrStdout())
		events := mq.NewEventPublisher(queue, cfg.MQ.Channel)
		err = events.SubscribeAccountEvents(ctx, func(_ context.Context, event types.AccountEvent) error {
			return enc.Encode(event)
		})
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	eventsCmd.AddCommand(eventsTailCmd)
}
