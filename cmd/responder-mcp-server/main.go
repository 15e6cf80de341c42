package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"tweet-responder/internal/app"
	"tweet-responder/internal/config"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, []config.Mode{config.ModeMCP}, nil)
	if err != nil {
		log.Fatalf("❌ Failed to start responder: %v", err)
	}
	defer a.Close()

	tools := &ResponderTools{runner: a.Controller, store: a.Store, logger: a.Logger.Named("mcp")}

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "tweet-responder-mcp",
		Version: "1.0.0",
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "reply_to_tweet",
		Description: "Generates a reply to the given tweet and publishes it as a threaded reply. Tweets already handled are skipped.",
	}, tools.ReplyToTweet)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "responder_status",
		Description: "Reports the number of remembered tweets, cumulative cycle totals and today's reply statistics",
	}, tools.Status)

	a.Logger.Info("responder MCP server started on stdin/stdout", zap.Strings("tools", []string{"reply_to_tweet", "responder_status"}))

	// stdout carries the protocol, logs go to stderr
	if err := server.Run(ctx, mcp.NewStdioTransport()); err != nil {
		a.Logger.Error("responder MCP server failed", zap.Error(err))
	}
}
