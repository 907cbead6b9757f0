package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/rgehrsitz/facplan/internal/domain"
	"github.com/rgehrsitz/facplan/internal/tui/tuistyles"
)

// ScenarioCard summarizes a saved scenario
type ScenarioCard struct {
	Scenario   domain.Scenario
	IsSelected bool
	Width      int
}

// NewScenarioCard creates a card for sc
func NewScenarioCard(sc domain.Scenario) *ScenarioCard {
	return &ScenarioCard{Scenario: sc, Width: 56}
}

// SetSelected marks the card as selected
func (s *ScenarioCard) SetSelected(selected bool) *ScenarioCard {
	s.IsSelected = selected
	return s
}

// WithWidth sets the card width
func (s *ScenarioCard) WithWidth(width int) *ScenarioCard {
	s.Width = width
	return s
}

// StatusBadge renders a scenario status in its color
func StatusBadge(status domain.ScenarioStatus) string {
	color := tuistyles.ColorMuted
	switch status {
	case domain.StatusOptimized:
		color = tuistyles.ColorInfo
	case domain.StatusApproved:
		color = tuistyles.ColorAccent
	case domain.StatusImplemented:
		color = tuistyles.ColorSuccess
	}
	return lipgloss.NewStyle().Foreground(color).Bold(true).Render(strings.ToUpper(string(status)))
}

// Highlights lists the headline numbers of an optimized scenario
func (s *ScenarioCard) Highlights() []string {
	sc := s.Scenario
	if sc.Status == domain.StatusDraft {
		return []string{"not optimized yet"}
	}
	return []string{
		fmt.Sprintf("Cost %s • NPV %s", tuistyles.FormatCurrency(sc.TotalCost.InexactFloat64()),
			tuistyles.FormatCurrency(sc.NetPresentValue.InexactFloat64())),
		fmt.Sprintf("Projected CI %.1f • FCI %.1f%%", sc.ProjectedCI, sc.ProjectedFCI),
	}
}

// Render returns the bordered card
func (s *ScenarioCard) Render() string {
	var b strings.Builder
	b.WriteString(tuistyles.TitleStyle.Render(s.Scenario.Name))
	b.WriteString("  ")
	b.WriteString(StatusBadge(s.Scenario.Status))
	b.WriteString("\n")
	b.WriteString(tuistyles.SubtitleStyle.Render("→ " + s.Scenario.ProjectID))
	if s.Scenario.Description != "" {
		b.WriteString("\n\n")
		b.WriteString(s.Scenario.Description)
	}
	b.WriteString("\n")
	for _, h := range s.Highlights() {
		b.WriteString("\n")
		b.WriteString(tuistyles.MetricLabelStyle.Render("• " + h))
	}

	border := tuistyles.ColorBorder
	if s.IsSelected {
		border = tuistyles.ColorPrimary
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(0, 1).
		Width(s.Width).
		Render(b.String())
}

// RenderCompact returns a single selection-menu line
func (s *ScenarioCard) RenderCompact() string {
	return fmt.Sprintf("%s %s %s", s.Scenario.Name,
		tuistyles.SubtitleStyle.Render("("+s.Scenario.ProjectID+")"), StatusBadge(s.Scenario.Status))
}

// ScenarioListCompact renders a selection menu of cards
func ScenarioListCompact(cards []*ScenarioCard, selectedIndex int) string {
	if len(cards) == 0 {
		return tuistyles.InfoStyle.Render("No scenarios saved")
	}

	lines := make([]string, len(cards))
	for i, card := range cards {
		prefix, style := "  ", tuistyles.UnselectedItemStyle
		if i == selectedIndex {
			prefix, style = "▸ ", tuistyles.SelectedItemStyle
		}
		lines[i] = style.Render(prefix) + card.RenderCompact()
	}
	return strings.Join(lines, "\n")
}
