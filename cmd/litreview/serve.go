// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/pdiddy/litreview/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the review pipeline over HTTP",
	Long: `Serve starts the HTTP API. POST /api/reviews queues a review and
GET /api/reviews/:id polls it; GET /api/sources/:source runs a single
source search.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default from config)")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Server.Addr = addr
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); !verbose {
		gin.SetMode(gin.ReleaseMode)
	}

	w := wire(ctx)
	srv := server.New(ctx, cfg.Server, w.pipeline, w.sources, cfg.Review.MaxResults, logger)
	return srv.Run(ctx)
}
