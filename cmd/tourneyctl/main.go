package main

import (
	"fmt"
	"os"

	"github.com/AdamBeresnev/prompt-tournament/internal/client"
	"github.com/spf13/cobra"
)

var serverURL string

func main() {
	rootCmd := &cobra.Command{
		Use:           "tourneyctl",
		Short:         "Create, vote on and watch prompt tournaments",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	defaultURL := os.Getenv("TOURNEY_SERVER")
	if defaultURL == "" {
		defaultURL = "http://localhost:8080/api"
	}
	rootCmd.PersistentFlags().StringVarP(&serverURL, "server", "s", defaultURL, "API base URL")

	rootCmd.AddCommand(
		CreateCmd,
		StatusCmd,
		StartCmd,
		VoteCmd,
		MatchesCmd,
		LeaderboardCmd,
		WatchCmd,
		TestPromptCmd,
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: "+err.Error()))
		os.Exit(1)
	}
}

func newClient() *client.Client {
	return client.New(serverURL, nil)
}
