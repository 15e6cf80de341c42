package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"tweet-responder/internal/app"
	"tweet-responder/internal/config"
	"tweet-responder/internal/content"
	"tweet-responder/internal/controller"
	"tweet-responder/internal/webhook"
)

const shutdownTimeout = 10 * time.Second

func runOnce(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, []config.Mode{config.ModeOnce}, func(c *config.Config) {
		if flagTweetID != "" {
			c.TargetTweetID = flagTweetID
		}
		if flagTweetText != "" {
			c.TargetTweetText = flagTweetText
		}
	})
	if err != nil {
		return err
	}
	defer a.Close()

	item := content.Item{ID: a.Config.TargetTweetID, Text: a.Config.TargetTweetText, ObservedAt: time.Now()}

	var sum controller.Summary
	s := a.NewScheduler(false)
	s.SetCycleFunction(func(ctx context.Context) error {
		sum = a.Controller.RunCycle(ctx, []content.Item{item})
		return nil
	})
	if err := s.RunOnce(ctx); err != nil {
		return err
	}
	a.LogSummary("one-shot cycle finished", sum)

	out, err := json.Marshal(sum)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}

func runPoll(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, []config.Mode{config.ModePoll}, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	s := a.NewScheduler(true)
	if err := s.Start(); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	<-ctx.Done()
	a.Logger.Info("shutting down")
	s.Stop()
	a.LogSummary("totals", a.Controller.Totals())
	return nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	modes := []config.Mode{config.ModeWebhook}
	if flagServePoll {
		modes = append(modes, config.ModePoll)
	}
	a, err := app.New(ctx, modes, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	srv := webhook.NewServer(a.Controller, a.Config.WebhookPath, a.Config.Port, a.Logger.Named("webhook"))
	s := a.NewScheduler(flagServePoll)
	if err := s.Start(); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.Start)
	g.Go(func() error {
		<-gctx.Done()
		a.Logger.Info("shutting down")
		s.Stop()
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	a.LogSummary("totals", a.Controller.Totals())
	return err
}
