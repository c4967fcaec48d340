package main

import (
	"github.com/aretw0/waypoint/internal/cli"
	httpAdapter "github.com/aretw0/waypoint/pkg/adapters/http"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long:  `Exposes conversations, activities and the domain catalog over a JSON API with SSE updates.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		stack, logger, err := loadStack(cmd)
		if err != nil {
			return err
		}
		defer stack.Close()

		port := stack.Config.HTTP.Port
		if cmd.Flags().Changed("port") {
			port, _ = cmd.Flags().GetInt("port")
		}

		handler := httpAdapter.NewHandler(stack.Client,
			httpAdapter.WithLogger(logger),
			httpAdapter.WithMetricsHandler(stack.Metrics.Handler()),
			httpAdapter.WithAllowedOrigins(stack.Config.HTTP.AllowedOrigins),
			httpAdapter.WithMaxInputSize(stack.Config.Input.MaxSize))

		ctx := cli.NewSignalContext(cmd.Context())
		defer ctx.Cancel()
		if err := cli.ListenAndServe(ctx, port, handler, logger); err != nil {
			return err
		}
		logger.Info("Waypoint server stopped gracefully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	serveCmd.Flags().String("store", "", "Conversation store backend: memory, file or redis")
}
