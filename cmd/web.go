// Package cmd provides command implementations for the topic-scout application.
package cmd

import (
	"os"

	httpserver "github.com/OliveiraNt/topic-scout/internal/adapters/http"
	"github.com/OliveiraNt/topic-scout/internal/application"
	"github.com/OliveiraNt/topic-scout/internal/utils"
)

// StartWeb starts the HTTP server using already-initialized application and repository layers.
func StartWeb(clusterService *application.ClusterService) {
	server := httpserver.New(clusterService)
	port := os.Getenv("TOPIC_SCOUT_HTTP_PORT")
	if port == "" {
		port = "8080"
	}
	utils.Logger.Info("HTTP API starting", "port", port)
	if err := server.Run(":" + port); err != nil {
		utils.Logger.Fatal("HTTP API terminated", "err", err)
	}
}
