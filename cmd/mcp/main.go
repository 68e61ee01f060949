package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/pranavrajput12/PRSNL-sub011/infrastructure/config"
	"github.com/pranavrajput12/PRSNL-sub011/infrastructure/di"
	graphmcp "github.com/pranavrajput12/PRSNL-sub011/interfaces/mcp"
)

func main() {
	transport := flag.String("transport", "stdio", "Transport mode: stdio or http")
	addr := flag.String("addr", ":8081", "HTTP listen address (only used with --transport http)")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// zap writes to stderr, which keeps stdout free for the stdio transport.
	container, cleanup, err := di.InitializeContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	defer cleanup()

	srv := graphmcp.NewServer(container.Mediator, di.Version, container.Logger)

	switch *transport {
	case "stdio":
		container.Logger.Info("MCP server starting", zap.String("transport", "stdio"))
		if err := srv.Run(ctx, &mcp.StdioTransport{}); err != nil {
			container.Logger.Error("MCP server error", zap.Error(err))
		}
	case "http":
		handler := mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
			return srv
		}, nil)
		httpSrv := &http.Server{Addr: *addr, Handler: handler}
		go func() {
			<-ctx.Done()
			_ = httpSrv.Shutdown(context.Background())
		}()
		container.Logger.Info("MCP server listening", zap.String("transport", "http"), zap.String("address", *addr))
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			container.Logger.Error("HTTP server error", zap.Error(err))
		}
	default:
		container.Logger.Error("Unknown transport", zap.String("transport", *transport))
	}
}
