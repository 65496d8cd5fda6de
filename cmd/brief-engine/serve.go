// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/brief-engine/internal/logging"
	"github.com/pdiddy/brief-engine/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the brief pipeline over HTTP",
	Long: `Serve starts an HTTP server. POST /generate with a JSON body
{"brand", "goal", "industry", "context"} streams progress as Server-Sent
Events; POST /briefs returns the finished run as JSON. GET /knowledge/search,
/health, and /metrics are also available.

Only one run executes at a time; a concurrent request fails with 409.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(viper.GetViper())
		if err != nil {
			return err
		}

		orch, store, err := buildOrchestrator(cmd.Context(), cfg)
		if err != nil {
			return err
		}

		if debug, _ := cmd.Flags().GetBool("debug"); !debug {
			gin.SetMode(gin.ReleaseMode)
		}
		srv := server.New(orch, store, logging.New("server"))
		return srv.ListenAndServe(cmd.Context(), cfg.Server.Addr)
	},
}

func init() {
	serveCmd.Flags().String("addr", server.DefaultAddr, "listen address")
	serveCmd.Flags().Bool("debug", false, "run gin in debug mode")

	viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))

	rootCmd.AddCommand(serveCmd)
}
