package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rivalsarena/arena-server/models"
)

const (
	colorTournament = 0x8b5cf6
	colorMatch      = 0x22d3ee
	colorChampion   = 0xfacc15
)

type discordEmbed struct {
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Color       int            `json:"color"`
	Fields      []discordField `json:"fields,omitempty"`
	Footer      *discordFooter `json:"footer,omitempty"`
	Timestamp   string         `json:"timestamp,omitempty"`
}

type discordField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type discordFooter struct {
	Text string `json:"text"`
}

type discordPayload struct {
	Embeds []discordEmbed `json:"embeds"`
}

// DiscordNotifier posts embeds to a Discord webhook.
type DiscordNotifier struct {
	webhookURL string
	client     *http.Client
}

func NewDiscordNotifier(webhookURL string) *DiscordNotifier {
	return &DiscordNotifier{
		webhookURL: webhookURL,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

func (n *DiscordNotifier) TournamentCreated(ctx context.Context, tournament *models.Tournament) error {
	embed := discordEmbed{
		Title:       "🏆 New Tournament: " + tournament.Name,
		Description: "Registration is open. Sign up and climb the bracket!",
		Color:       colorTournament,
		Fields: []discordField{
			{Name: "Game", Value: tournament.Game, Inline: true},
			{Name: "Format", Value: formatLabel(tournament.Format), Inline: true},
			{Name: "Team Size", Value: fmt.Sprintf("%dv%d", tournament.TeamSize, tournament.TeamSize), Inline: true},
			{Name: "Starts", Value: tournament.StartDate.Format("Jan 2, 2006 15:04 MST"), Inline: true},
		},
		Footer:    &discordFooter{Text: "Rivals Arena • Tournament OS"},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if tournament.PrizePool != nil && *tournament.PrizePool != "" {
		embed.Fields = append(embed.Fields, discordField{Name: "Prize Pool", Value: *tournament.PrizePool, Inline: true})
	}
	return n.send(ctx, embed)
}

func (n *DiscordNotifier) MatchCompleted(ctx context.Context, tournament *models.Tournament, match *models.Match, winnerName, loserName string) error {
	embed := discordEmbed{
		Title:       "⚔️ Match Result — " + tournament.Name,
		Description: fmt.Sprintf("**%s** defeated **%s**", winnerName, loserName),
		Color:       colorMatch,
		Fields: []discordField{
			{Name: "Score", Value: fmt.Sprintf("%d : %d", match.ScoreA, match.ScoreB), Inline: true},
			{Name: "Round", Value: roundLabel(match), Inline: true},
		},
		Footer:    &discordFooter{Text: "Live Updates"},
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	return n.send(ctx, embed)
}

func (n *DiscordNotifier) ChampionCrowned(ctx context.Context, tournament *models.Tournament, champion *models.Team) error {
	roster := make([]string, 0, len(champion.Members))
	for _, member := range champion.Members {
		roster = append(roster, member.Username)
	}
	embed := discordEmbed{
		Title:       "👑 Champion Crowned!",
		Description: fmt.Sprintf("**%s** wins **%s**!", champion.Name, tournament.Name),
		Color:       colorChampion,
		Footer:      &discordFooter{Text: "Hall of Fame"},
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}
	if len(roster) > 0 {
		embed.Fields = append(embed.Fields, discordField{Name: "Roster", Value: strings.Join(roster, ", ")})
	}
	return n.send(ctx, embed)
}

func (n *DiscordNotifier) send(ctx context.Context, embed discordEmbed) error {
	body, err := json.Marshal(discordPayload{Embeds: []discordEmbed{embed}})
	if err != nil {
		return fmt.Errorf("failed to marshal discord payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build discord request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("discord webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("discord webhook returned status %d", resp.StatusCode)
	}
	return nil
}

func formatLabel(format models.TournamentFormat) string {
	switch format {
	case models.FormatSingleElimination:
		return "Single Elimination"
	case models.FormatDoubleElimination:
		return "Double Elimination"
	case models.FormatRoundRobin:
		return "Round Robin"
	}
	return string(format)
}

func roundLabel(match *models.Match) string {
	switch match.Section {
	case models.SectionGrandFinal:
		return "Grand Final"
	case models.SectionLosers:
		return fmt.Sprintf("Losers Round %d", match.Round+1)
	default:
		return fmt.Sprintf("Round %d", match.Round+1)
	}
}
