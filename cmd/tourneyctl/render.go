package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/AdamBeresnev/prompt-tournament/internal/api"
	"github.com/AdamBeresnev/prompt-tournament/internal/utils"
)

func renderMatch(m api.Match) string {
	mark := PendingStyle.Render("pending")
	if m.Status == "completed" {
		mark = SuccessStyle.Render("won by " + utils.OrZero(m.Winner))
	}
	return fmt.Sprintf("  %s %s  vs  %s  %s",
		IDStyle.Render(fmt.Sprintf("#%d", m.MatchID)),
		contender(m.Prompt1, m.Prompt1ID),
		contender(m.Prompt2, m.Prompt2ID),
		mark,
	)
}

func contender(text string, id int64) string {
	return fmt.Sprintf("%q %s", text, MutedStyle.Render(fmt.Sprintf("(%d)", id)))
}

func renderStatus(s *api.TournamentStatus) string {
	var b strings.Builder

	fmt.Fprintln(&b, TitleStyle.Render(fmt.Sprintf("Tournament %d: %s", s.TournamentID, s.InputQuestion)))
	fmt.Fprintf(&b, "%s %s, round %d of %d, %d prompts\n", SubtitleStyle.Render("Status:"), s.Status, s.CurrentRound, s.TotalRounds, s.TotalPrompts)
	fmt.Fprintf(&b, "%s %d/%d matches (%.1f%%)\n", SubtitleStyle.Render("Progress:"),
		s.Progress.CompletedMatches, s.Progress.TotalMatches, s.Progress.CompletionPercentage)

	rounds := make([]int, 0, len(s.Rounds))
	for r := range s.Rounds {
		rounds = append(rounds, r)
	}
	sort.Ints(rounds)

	for _, r := range rounds {
		fmt.Fprintln(&b, SubtitleStyle.Render(fmt.Sprintf("Round %d", r)))
		for _, m := range s.Rounds[r] {
			fmt.Fprintln(&b, renderMatch(m))
		}
		for _, bye := range s.Byes[r] {
			fmt.Fprintf(&b, "  %s %q\n", MutedStyle.Render("bye"), bye)
		}
	}

	if s.Winner != nil {
		fmt.Fprintln(&b, WinnerBox.Render("Winner: "+*s.Winner))
	}
	return b.String()
}

func renderStandings(resp *api.LeaderboardResponse) string {
	var b strings.Builder
	fmt.Fprintln(&b, TitleStyle.Render(fmt.Sprintf("Leaderboard for tournament %d", resp.TournamentID)))
	for i, s := range resp.Standings {
		fmt.Fprintf(&b, "%3d. %s  %s\n", i+1, contender(s.Text, s.PromptID),
			MutedStyle.Render(fmt.Sprintf("%dW %dL", s.Wins, s.Losses)))
	}
	return b.String()
}
