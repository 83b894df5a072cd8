package brackets

import (
	"github.com/rivalsarena/arena-server/models"
)

// slotFeeder identifies the single upstream match that can deliver a team
// into a given slot, and over which edge it does so.
type slotFeeder struct {
	match     *models.Match
	loserEdge bool
}

type feederMap map[string]map[models.MatchSlot]slotFeeder

func buildFeeders(g *Graph) feederMap {
	feeders := make(feederMap)
	for _, m := range g.Matches() {
		if m.NextMatchID != nil {
			feeders.set(*m.NextMatchID, *m.NextSlot, slotFeeder{match: m})
		}
		if m.LoserMatchID != nil {
			feeders.set(*m.LoserMatchID, *m.LoserSlot, slotFeeder{match: m, loserEdge: true})
		}
	}
	return feeders
}

func (f feederMap) set(matchID string, slot models.MatchSlot, feeder slotFeeder) {
	if f[matchID] == nil {
		f[matchID] = make(map[models.MatchSlot]slotFeeder)
	}
	f[matchID][slot] = feeder
}

// slotDead reports whether a slot can never be filled: it is empty, and
// either nothing feeds it or its feeder is a bye that produces nothing on
// the relevant edge (a walkover supplies a winner but never a loser).
func (f feederMap) slotDead(m *models.Match, slot models.MatchSlot) bool {
	if m.TeamInSlot(slot) != nil {
		return false
	}
	feeder, ok := f[m.ID][slot]
	if !ok {
		return true
	}
	if feeder.match.Status != models.MatchStatusBye {
		return false
	}
	if feeder.loserEdge {
		return true
	}
	return feeder.match.WinnerID == nil
}

// resolveByes converts structurally unplayable matches into byes and
// propagates walkover winners downstream until the graph is stable.
//
// Three shapes come up. A match holding one team whose other slot is dead
// becomes a walkover: its team is the winner and advances immediately. A
// match with both slots dead is a dead node. A match whose dead slot pairs
// with a slot that is empty now but fed at runtime (losers bracket entry
// rounds) cannot be decided here, so its live feeder is rerouted past it to
// its own advancement target and the match is retired as a dead bye.
func resolveByes(g *Graph) {
	feeders := buildFeeders(g)

	for changed := true; changed; {
		changed = false
		for _, m := range g.Matches() {
			if m.Status != models.MatchStatusPending {
				continue
			}
			deadA := feeders.slotDead(m, models.SlotA)
			deadB := feeders.slotDead(m, models.SlotB)
			if !deadA && !deadB {
				continue
			}

			if deadA && deadB {
				m.Status = models.MatchStatusBye
				changed = true
				continue
			}

			liveSlot := models.SlotA
			if deadA {
				liveSlot = models.SlotB
			}

			if team := m.TeamInSlot(liveSlot); team != nil {
				m.Status = models.MatchStatusBye
				winner := *team
				m.WinnerID = &winner
				if m.NextMatchID != nil {
					if next, ok := g.Get(*m.NextMatchID); ok {
						fillSlot(next, *m.NextSlot, winner)
					}
				}
				changed = true
				continue
			}

			// Slot will be filled at runtime; bypass this match entirely.
			if feeder, ok := feeders[m.ID][liveSlot]; ok && m.NextMatchID != nil {
				if feeder.loserEdge {
					feeder.match.LoserMatchID = m.NextMatchID
					feeder.match.LoserSlot = m.NextSlot
				} else {
					feeder.match.NextMatchID = m.NextMatchID
					feeder.match.NextSlot = m.NextSlot
				}
				feeders.set(*m.NextMatchID, *m.NextSlot, feeder)
				m.Status = models.MatchStatusBye
				changed = true
			}
		}
	}
}

// fillSlot writes a team into a match slot and flips the match to ready once
// both participants are known.
func fillSlot(m *models.Match, slot models.MatchSlot, teamID string) {
	m.SetTeamInSlot(slot, teamID)
	if m.HasBothTeams() && m.Status == models.MatchStatusPending {
		m.Status = models.MatchStatusReady
	}
}
