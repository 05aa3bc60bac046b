package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/AdamBeresnev/prompt-tournament/internal/api"
	"github.com/AdamBeresnev/prompt-tournament/internal/client"
	"github.com/spf13/cobra"
)

var (
	createPrompts []string
	createTotal   int

	matchesRound int

	watchInterval time.Duration

	testModel       string
	testMaxTokens   int
	testTemperature float64
)

var CreateCmd = &cobra.Command{
	Use:   "create <question>",
	Short: "Create a tournament from a question and optional custom prompts",
	Example: `  tourneyctl create "How do I ask for a raise?" -p "Write a script" -p "List talking points"
  tourneyctl create "Explain recursion" --total 16`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := api.CreateTournamentRequest{InputQuestion: args[0], CustomPrompts: createPrompts}
		if cmd.Flags().Changed("total") {
			req.TotalPrompts = &createTotal
		}

		resp, err := newClient().CreateTournament(cmd.Context(), req)
		if err != nil {
			return err
		}

		cmd.Println(SuccessStyle.Render(fmt.Sprintf("Created tournament %d", resp.TournamentID)))
		for i, p := range resp.Prompts {
			cmd.Printf("%3d. %s\n", i+1, p)
		}
		return nil
	},
}

var StatusCmd = &cobra.Command{
	Use:   "status <tournament-id>",
	Short: "Show the bracket, progress and winner",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		status, err := newClient().GetStatus(cmd.Context(), id)
		if err != nil {
			return err
		}
		cmd.Print(renderStatus(status))
		return nil
	},
}

var StartCmd = &cobra.Command{
	Use:   "start <tournament-id>",
	Short: "Build round 1 of the bracket",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		resp, err := newClient().StartBracket(cmd.Context(), id)
		if err != nil {
			return err
		}

		cmd.Println(SuccessStyle.Render(resp.Message))
		for _, m := range resp.Round1Matches {
			cmd.Println(renderMatch(m))
		}
		for _, bye := range resp.Byes {
			cmd.Printf("  %s %q\n", MutedStyle.Render("bye"), bye)
		}
		return nil
	},
}

var VoteCmd = &cobra.Command{
	Use:   "vote <match-id> <winner-prompt-id>",
	Short: "Record the winner of a match",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		matchID, err := parseID(args[0])
		if err != nil {
			return err
		}
		winnerID, err := parseID(args[1])
		if err != nil {
			return err
		}

		resp, err := newClient().SubmitResult(cmd.Context(), matchID, winnerID)
		if err != nil {
			return err
		}

		cmd.Println(SuccessStyle.Render(fmt.Sprintf("%s: %q wins match %d", resp.Message, resp.Winner, resp.MatchID)))
		switch {
		case resp.TournamentCompleted && resp.TournamentWinner != nil:
			cmd.Println(WinnerBox.Render("Winner: " + *resp.TournamentWinner))
		case resp.NextRound != nil:
			cmd.Println(SubtitleStyle.Render(fmt.Sprintf("Round %d", *resp.NextRound)))
			for _, m := range resp.NextRoundMatches {
				cmd.Println(renderMatch(m))
			}
			for _, bye := range resp.ByePrompts {
				cmd.Printf("  %s %q\n", MutedStyle.Render("bye"), bye)
			}
		case !resp.RoundCompleted:
			cmd.Println(MutedStyle.Render("Round still has pending matches"))
		}
		return nil
	},
}

var MatchesCmd = &cobra.Command{
	Use:   "matches <tournament-id>",
	Short: "List matches, optionally for one round",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		resp, err := newClient().ListMatches(cmd.Context(), id, matchesRound)
		if err != nil {
			return err
		}
		for _, m := range resp.Matches {
			cmd.Println(renderMatch(m))
		}
		cmd.Println(MutedStyle.Render(fmt.Sprintf("%d matches", resp.TotalMatches)))
		return nil
	},
}

var LeaderboardCmd = &cobra.Command{
	Use:   "leaderboard <tournament-id>",
	Short: "Show wins and losses per prompt",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		resp, err := newClient().Leaderboard(cmd.Context(), id)
		if err != nil {
			return err
		}
		cmd.Print(renderStandings(resp))
		return nil
	},
}

var WatchCmd = &cobra.Command{
	Use:   "watch <tournament-id>",
	Short: "Refresh the tournament status until it completes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		err = newClient().Watch(ctx, id, watchInterval, func(s *api.TournamentStatus) {
			cmd.Println(MutedStyle.Render(time.Now().Format(time.TimeOnly)))
			cmd.Print(renderStatus(s))
		})
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	},
}

var TestPromptCmd = &cobra.Command{
	Use:   "test-prompt <prompt>",
	Short: "Preview a model answer for a prompt",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		req := api.TestPromptRequest{Prompt: args[0]}
		if cmd.Flags().Changed("model") {
			req.Model = &testModel
		}
		if cmd.Flags().Changed("max-tokens") {
			req.MaxTokens = &testMaxTokens
		}
		if cmd.Flags().Changed("temperature") {
			req.Temperature = &testTemperature
		}

		resp, err := newClient().TestPrompt(cmd.Context(), req)
		if err != nil {
			return err
		}

		cmd.Println(TitleStyle.Render(resp.Model))
		cmd.Println(resp.Response)
		cmd.Println(MutedStyle.Render(fmt.Sprintf("%d prompt + %d completion = %d tokens",
			resp.Usage.PromptTokens, resp.Usage.CompletionTokens, resp.Usage.TotalTokens)))
		return nil
	},
}

func init() {
	CreateCmd.Flags().StringArrayVarP(&createPrompts, "prompt", "p", nil, "Custom prompt, repeatable")
	CreateCmd.Flags().IntVarP(&createTotal, "total", "n", 0, "Pool size, generated prompts fill the rest")

	MatchesCmd.Flags().IntVarP(&matchesRound, "round", "r", 0, "Only list this round")

	WatchCmd.Flags().DurationVarP(&watchInterval, "interval", "i", client.DefaultWatchInterval, "Refresh interval")

	TestPromptCmd.Flags().StringVarP(&testModel, "model", "m", "", "Model to answer with")
	TestPromptCmd.Flags().IntVar(&testMaxTokens, "max-tokens", 150, "Maximum answer tokens")
	TestPromptCmd.Flags().Float64VarP(&testTemperature, "temperature", "t", 0.7, "Sampling temperature")
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}
