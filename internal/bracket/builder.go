package bracket

import "fmt"

type Pairing struct {
	First  Contestant
	Second Contestant
}

// RoundPlan is one round before it is persisted: the matches to create, in order, and the
// entrants that skip the round.
type RoundPlan struct {
	Pairings []Pairing
	Byes     []Contestant
}

// PlanRound pairs entrants in input order, (0,1), (2,3), ... With an odd count the last entrant
// is the bye. The same input always yields the same plan.
func PlanRound(entrants []Contestant) (RoundPlan, error) {
	if len(entrants) < 2 {
		return RoundPlan{}, fmt.Errorf("%w: a round needs at least 2 entrants, got %d", ErrInvalidTournamentState, len(entrants))
	}

	plan := RoundPlan{
		Pairings: make([]Pairing, 0, len(entrants)/2),
	}
	for i := 0; i+1 < len(entrants); i += 2 {
		plan.Pairings = append(plan.Pairings, Pairing{First: entrants[i], Second: entrants[i+1]})
	}
	if len(entrants)%2 == 1 {
		plan.Byes = []Contestant{entrants[len(entrants)-1]}
	}

	return plan, nil
}

// TotalRounds is the number of rounds a pool of n prompts needs under sequential pairing.
func TotalRounds(n int) int {
	rounds := 0
	for n > 1 {
		n = n/2 + n%2
		rounds++
	}
	return rounds
}
