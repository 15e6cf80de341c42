package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	flagTweetID   string
	flagTweetText string
	flagServePoll bool
)

var rootCmd = &cobra.Command{
	Use:   "responder",
	Short: "Reply to tweets with generated text",
	Long: "responder picks up tweets (a single target, a polled timeline or webhook pushes), " +
		"generates a reply with a language model, posts it and records every attempt.",
	SilenceUsage: true,
}

var onceCmd = &cobra.Command{
	Use:   "once",
	Short: "Reply to a single tweet and exit",
	RunE:  runOnce,
}

var pollCmd = &cobra.Command{
	Use:   "poll",
	Short: "Poll the home timeline and reply on a fixed interval",
	RunE:  runPoll,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Accept tweets on the webhook endpoint",
	RunE:  runServe,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("responder %s (commit: %s, built: %s)\n", version, commit, date)
	},
}

func init() {
	onceCmd.Flags().StringVar(&flagTweetID, "tweet-id", "", "tweet to reply to (overrides TARGET_TWEET_ID)")
	onceCmd.Flags().StringVar(&flagTweetText, "text", "", "text of the tweet (overrides TARGET_TWEET_TEXT)")
	serveCmd.Flags().BoolVar(&flagServePoll, "poll", false, "also run the polling scheduler in this process")

	rootCmd.AddCommand(onceCmd)
	rootCmd.AddCommand(pollCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command and exits non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
