/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/minitodo/apiserver/config"
	"github.com/minitodo/apiserver/internal/logging"
	"github.com/minitodo/apiserver/internal/mq"
	"github.com/minitodo/apiserver/internal/notify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var mailerDelivery string

// mailerCmd relays queued emails to the mail provider.
var mailerCmd = &cobra.Command{
	Use:   "mailer",
	Short: "Delivers emails queued on RabbitMQ or Pub/Sub",
	Long: `Consumes the email topic filled by a server running with
NOTIFIER=rabbitmq or NOTIFIER=pubsub and delivers each message through
SendGrid, SMTP or the log. Usage:

	minitodo mailer --delivery smtp
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.LoadConfig()
		if cfg.Notify.Driver != "rabbitmq" && cfg.Notify.Driver != "pubsub" {
			return fmt.Errorf("mailer needs NOTIFIER=rabbitmq or NOTIFIER=pubsub, got %q", cfg.Notify.Driver)
		}

		logger, err := logging.New(cfg.Log)
		if err != nil {
			return err
		}
		defer logger.Sync()

		driver := mailerDelivery
		if driver == "" {
			driver = notify.DeliveryDriver(cfg.Mail)
		}
		delivery, err := notify.NewDelivery(driver, cfg.Mail, logger)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		queue, err := mq.Open(ctx, cfg)
		if err != nil {
			return err
		}
		defer queue.Close()

		logger.Info("mailer started",
			zap.String("broker", cfg.Notify.Driver),
			zap.String("topic", cfg.Notify.Topic),
			zap.String("delivery", driver),
		)
		err = notify.Relay(ctx, queue, cfg.Notify.Topic, delivery, logger)
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(mailerCmd)
	mailerCmd.Flags().StringVar(&mailerDelivery, "delivery", "", "mail provider: sendgrid, smtp or log (default picked from mail settings)")
}
