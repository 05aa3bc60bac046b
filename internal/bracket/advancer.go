package bracket

import (
	"fmt"
	"sort"
)

// Outcome describes what completing a match did to its round.
type Outcome struct {
	RoundCompleted bool
	Advancing      []Contestant

	// Exactly one of Champion and Next is set once the round is completed.
	Champion  *Contestant
	Next      *RoundPlan
	NextRound int
}

// Advance inspects a round after a result was recorded. While any match is pending the round stays
// open. Once all are completed the winners, in match order, followed by the byes, in bye order,
// either crown a champion or seed the next round.
func Advance(round int, matches []Match, byes []Bye) (Outcome, error) {
	if len(matches) == 0 {
		return Outcome{}, fmt.Errorf("%w: round %d has no matches", ErrInvalidTournamentState, round)
	}

	ordered := make([]Match, len(matches))
	copy(ordered, matches)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].MatchOrder < ordered[j].MatchOrder
	})

	advancing := make([]Contestant, 0, len(ordered)+len(byes))
	for i := range ordered {
		m := &ordered[i]
		if m.RoundNumber != round {
			return Outcome{}, fmt.Errorf("%w: match %d belongs to round %d, not %d", ErrInvalidTournamentState, m.ID, m.RoundNumber, round)
		}
		winner, ok := m.WinnerContestant()
		if !ok {
			return Outcome{}, nil
		}
		advancing = append(advancing, winner)
	}

	orderedByes := make([]Bye, len(byes))
	copy(orderedByes, byes)
	sort.SliceStable(orderedByes, func(i, j int) bool {
		return orderedByes[i].ByeOrder < orderedByes[j].ByeOrder
	})
	for _, b := range orderedByes {
		advancing = append(advancing, b.Contestant())
	}

	outcome := Outcome{
		RoundCompleted: true,
		Advancing:      advancing,
	}

	if len(advancing) == 1 {
		champion := advancing[0]
		outcome.Champion = &champion
		return outcome, nil
	}

	plan, err := PlanRound(advancing)
	if err != nil {
		return Outcome{}, err
	}
	outcome.Next = &plan
	outcome.NextRound = round + 1

	return outcome, nil
}
