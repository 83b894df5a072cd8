package brackets

import (
	"sort"

	"github.com/rivalsarena/arena-server/models"
)

// Graph is the in-memory bracket: an ordered arena of match nodes plus an
// id-indexed lookup. Edges between nodes live on the matches themselves
// (NextMatchID / LoserMatchID), so the graph stays a flat structure with no
// ownership cycles.
type Graph struct {
	matches []*models.Match
	byID    map[string]*models.Match
}

func NewGraph() *Graph {
	return &Graph{
		byID: make(map[string]*models.Match),
	}
}

// GraphFromMatches rebuilds a graph from persisted matches, restoring the
// section/round/index ordering the generators produce.
func GraphFromMatches(matches []*models.Match) *Graph {
	g := NewGraph()
	for _, m := range matches {
		g.Add(m)
	}
	sort.SliceStable(g.matches, func(i, j int) bool {
		if g.matches[i].BandedRound() != g.matches[j].BandedRound() {
			return g.matches[i].BandedRound() < g.matches[j].BandedRound()
		}
		return g.matches[i].MatchIndex < g.matches[j].MatchIndex
	})
	return g
}

func (g *Graph) Add(m *models.Match) {
	if _, exists := g.byID[m.ID]; exists {
		return
	}
	g.matches = append(g.matches, m)
	g.byID[m.ID] = m
}

func (g *Graph) Get(id string) (*models.Match, bool) {
	m, ok := g.byID[id]
	return m, ok
}

func (g *Graph) Len() int {
	return len(g.matches)
}

// Matches returns the nodes in bracket order (winners rounds, losers rounds,
// grand final; ascending match index within a round).
func (g *Graph) Matches() []*models.Match {
	return g.matches
}

// Section returns the matches of one bracket section grouped by round.
func (g *Graph) Section(section models.BracketSection) [][]*models.Match {
	maxRound := -1
	for _, m := range g.matches {
		if m.Section == section && m.Round > maxRound {
			maxRound = m.Round
		}
	}
	if maxRound < 0 {
		return nil
	}
	rounds := make([][]*models.Match, maxRound+1)
	for _, m := range g.matches {
		if m.Section == section {
			rounds[m.Round] = append(rounds[m.Round], m)
		}
	}
	for _, round := range rounds {
		sort.Slice(round, func(i, j int) bool {
			return round[i].MatchIndex < round[j].MatchIndex
		})
	}
	return rounds
}

// Find locates a match by its structural address.
func (g *Graph) Find(section models.BracketSection, round, matchIndex int) *models.Match {
	for _, m := range g.matches {
		if m.Section == section && m.Round == round && m.MatchIndex == matchIndex {
			return m
		}
	}
	return nil
}

// Terminal returns the match that decides the tournament: the single node
// without a winner edge. A well-formed bracket has exactly one.
func (g *Graph) Terminal() *models.Match {
	for _, m := range g.matches {
		if m.IsTerminal() {
			return m
		}
	}
	return nil
}
