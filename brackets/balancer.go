package brackets

import (
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"
	"github.com/rivalsarena/arena-server/models"
)

// BalanceTeams converts a pool of individual signups into teams of the given
// size, returned in seed order (index 0 = top seed). The function is pure: it
// never mutates its input slice.
//
// Size 1 puts every player on their own team, highest skill first. Size 2
// snake-pairs the strongest remaining player with the weakest, which evens
// out team skill across the field. Larger sizes chunk the skill-sorted list
// into consecutive groups; a remainder smaller than the team size is dropped,
// since an undersized group cannot play.
func BalanceTeams(pending []*models.PendingPlayer, teamSize int) []*models.Team {
	if teamSize < 1 || len(pending) == 0 {
		return nil
	}

	players := make([]*models.PendingPlayer, len(pending))
	copy(players, pending)
	sort.SliceStable(players, func(i, j int) bool {
		return players[i].RivalsLevel > players[j].RivalsLevel
	})

	var teams []*models.Team

	switch {
	case teamSize == 1:
		for _, p := range players {
			teams = append(teams, newTeam(p.Username, p.RivalsLevel, []*models.PendingPlayer{p}))
		}

	case teamSize == 2:
		for len(players) >= 2 {
			high := players[0]
			low := players[len(players)-1]
			players = players[1 : len(players)-1]
			skill := int(math.Round(float64(high.RivalsLevel+low.RivalsLevel) / 2))
			name := fmt.Sprintf("%s & %s", high.Username, low.Username)
			teams = append(teams, newTeam(name, skill, []*models.PendingPlayer{high, low}))
		}

	default:
		for len(players) >= teamSize {
			chunk := players[:teamSize]
			players = players[teamSize:]
			sum := 0
			for _, p := range chunk {
				sum += p.RivalsLevel
			}
			skill := int(math.Round(float64(sum) / float64(teamSize)))
			name := fmt.Sprintf("Team %s", chunk[0].Username)
			teams = append(teams, newTeam(name, skill, chunk))
		}
	}

	for i, t := range teams {
		seed := i + 1
		t.Seed = &seed
	}
	return teams
}

func newTeam(name string, skill int, members []*models.PendingPlayer) *models.Team {
	team := &models.Team{
		ID:         uuid.NewString(),
		Name:       name,
		SkillLevel: skill,
	}
	for _, p := range members {
		team.Members = append(team.Members, models.TeamMember{
			ID:          uuid.NewString(),
			TeamID:      team.ID,
			Username:    p.Username,
			RivalsLevel: p.RivalsLevel,
			PlayerID:    p.PlayerID,
		})
	}
	return team
}
