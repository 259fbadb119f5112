package console

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/neilboltonAD/marketplace-admin-api/internal/models"
)

type styles struct {
	Title    lipgloss.Style
	Tab      lipgloss.Style
	TabOn    lipgloss.Style
	Header   lipgloss.Style
	Row      lipgloss.Style
	RowOn    lipgloss.Style
	Muted    lipgloss.Style
	Success  lipgloss.Style
	Warning  lipgloss.Style
	Danger   lipgloss.Style
	Panel    lipgloss.Style
	HelpKey  lipgloss.Style
	HelpDesc lipgloss.Style
}

func defaultStyles() styles {
	return styles{
		Title:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7aa2f7")),
		Tab:      lipgloss.NewStyle().Padding(0, 1).Foreground(lipgloss.Color("#a9b1d6")),
		TabOn:    lipgloss.NewStyle().Padding(0, 1).Bold(true).Foreground(lipgloss.Color("#1a1b26")).Background(lipgloss.Color("#7aa2f7")),
		Header:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#c0caf5")),
		Row:      lipgloss.NewStyle().Foreground(lipgloss.Color("#c0caf5")),
		RowOn:    lipgloss.NewStyle().Foreground(lipgloss.Color("#1a1b26")).Background(lipgloss.Color("#bb9af7")),
		Muted:    lipgloss.NewStyle().Foreground(lipgloss.Color("#565f89")),
		Success:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#9ece6a")),
		Warning:  lipgloss.NewStyle().Foreground(lipgloss.Color("#e0af68")),
		Danger:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#f7768e")),
		Panel:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("#3b4261")).Padding(0, 1),
		HelpKey:  lipgloss.NewStyle().Foreground(lipgloss.Color("#7dcfff")),
		HelpDesc: lipgloss.NewStyle().Foreground(lipgloss.Color("#565f89")),
	}
}

func (s styles) status(st models.PriceUpdateStatus) lipgloss.Style {
	switch st {
	case models.PriceUpdateStatusSuccess:
		return s.Success
	case models.PriceUpdateStatusFailed:
		return s.Danger
	case models.PriceUpdateStatusPending:
		return s.Warning
	}
	return s.Muted
}

// View implements tea.Model.
func (m Model) View() string {
	if m.session == nil {
		if m.noticeErr {
			return m.styles.Danger.Render(m.notice) + "\n"
		}
		return m.styles.Muted.Render("Opening session...") + "\n"
	}

	var b strings.Builder
	b.WriteString(m.styles.Title.Render("Distributor Price Updates"))
	b.WriteString("\n")
	b.WriteString(m.renderTabs())
	b.WriteString("\n")
	b.WriteString(m.renderFilters())
	b.WriteString("\n\n")

	switch {
	case m.showHelp:
		b.WriteString(m.renderHelp())
	case m.reviewOpen():
		b.WriteString(m.renderReview())
	default:
		b.WriteString(m.renderTable())
	}

	b.WriteString("\n")
	if m.notice != "" {
		style := m.styles.Success
		if m.noticeErr {
			style = m.styles.Danger
		}
		b.WriteString(style.Render(m.notice))
		b.WriteString("\n")
	}
	b.WriteString(m.renderFooter())
	return b.String()
}

func (m Model) renderTabs() string {
	counts := m.session.Counts
	available := fmt.Sprintf("Available (%d)", counts.Available)
	synced := fmt.Sprintf("Synced (%d)", counts.Synced)
	if m.session.View == models.PriceSyncViewSynced {
		return m.styles.Tab.Render(available) + m.styles.TabOn.Render(synced)
	}
	return m.styles.TabOn.Render(available) + m.styles.Tab.Render(synced)
}

func (m Model) renderFilters() string {
	f := m.session.Filters
	distributor := "All distributors"
	if f.Distributor != "" {
		distributor = f.Distributor.Label()
	}
	parts := []string{"Distributor: " + distributor}
	if m.session.View == models.PriceSyncViewSynced {
		status := "All"
		if f.Status != "" {
			status = string(f.Status)
		}
		parts = append(parts, "Status: "+status)
	}
	if m.searching {
		parts = append(parts, m.search.View())
	} else if f.Query != "" {
		parts = append(parts, fmt.Sprintf("Search: %q", f.Query))
	}
	return m.styles.Muted.Render(strings.Join(parts, "  |  "))
}

func (m Model) renderTable() string {
	var b strings.Builder
	synced := m.session.View == models.PriceSyncViewSynced
	header := fmt.Sprintf("%-3s %-30s %-14s %-22s %10s %10s %8s", "", "Product", "SKU", "Distributor", "Current", "New", "Change")
	if synced {
		header += fmt.Sprintf(" %-8s %s", "Status", "Updated By")
	}
	b.WriteString(m.styles.Header.Render(header))
	b.WriteString("\n")

	if len(m.session.Records) == 0 {
		b.WriteString(m.styles.Muted.Render("No price updates match the current filters."))
		b.WriteString("\n")
		return b.String()
	}

	for i, rec := range m.session.Records {
		mark := "[ ]"
		if synced {
			mark = "   "
		} else if m.selected(rec.ID) {
			mark = "[x]"
		}
		line := fmt.Sprintf("%-3s %-30s %-14s %-22s %10s %10s %7s%%",
			mark,
			truncate(rec.ProductName, 30),
			truncate(rec.ProductID, 14),
			rec.Distributor.Label(),
			rec.CurrentPrice.StringFixed(2),
			rec.NewPrice.StringFixed(2),
			rec.PercentChange.StringFixed(1),
		)
		if synced {
			by := ""
			if rec.UpdatedBy != nil {
				by = *rec.UpdatedBy
			}
			line += " " + m.styles.status(rec.Status).Render(fmt.Sprintf("%-8s", rec.Status)) + " " + by
		}
		if i == m.cursor {
			b.WriteString(m.styles.RowOn.Render(line))
		} else {
			b.WriteString(m.styles.Row.Render(line))
		}
		b.WriteString("\n")
	}

	p := m.session.Pagination
	b.WriteString(m.styles.Muted.Render(fmt.Sprintf("Page %d of %d  (%d records, %d selected)", p.Page, p.TotalPages, p.TotalCount, len(m.session.Selection))))
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderReview() string {
	review := m.session.Review
	var b strings.Builder
	b.WriteString(m.styles.Header.Render(fmt.Sprintf("Review %d price update(s)", review.Count)))
	b.WriteString("\n")
	if len(review.Items) == 0 {
		b.WriteString(m.styles.Muted.Render("Nothing left to apply. Press esc to go back."))
		b.WriteString("\n")
	}
	for i, rec := range review.Items {
		line := fmt.Sprintf("%-30s %-22s %10s -> %10s", truncate(rec.ProductName, 30), rec.Distributor.Label(), rec.CurrentPrice.StringFixed(2), rec.NewPrice.StringFixed(2))
		if i == m.cursor {
			b.WriteString(m.styles.RowOn.Render(line))
		} else {
			b.WriteString(m.styles.Row.Render(line))
		}
		b.WriteString("\n")
	}
	return m.styles.Panel.Render(strings.TrimRight(b.String(), "\n")) + "\n"
}

func (m Model) renderHelp() string {
	var b strings.Builder
	b.WriteString(m.styles.Header.Render("Keys"))
	b.WriteString("\n")
	for _, binding := range append(m.keys.browseHelp(), m.keys.reviewHelp()...) {
		b.WriteString(helpLine(m.styles, binding))
		b.WriteString("\n")
	}
	return m.styles.Panel.Render(strings.TrimRight(b.String(), "\n")) + "\n"
}

func (m Model) renderFooter() string {
	bindings := m.keys.browseHelp()
	if m.reviewOpen() {
		bindings = m.keys.reviewHelp()
	}
	parts := make([]string, 0, len(bindings))
	for _, binding := range bindings {
		h := binding.Help()
		parts = append(parts, m.styles.HelpKey.Render(h.Key)+" "+m.styles.HelpDesc.Render(h.Desc))
	}
	return strings.Join(parts, "  ")
}

func helpLine(s styles, binding key.Binding) string {
	h := binding.Help()
	return s.HelpKey.Render(fmt.Sprintf("%-8s", h.Key)) + " " + s.HelpDesc.Render(h.Desc)
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 1 {
		return string(r[:width])
	}
	return string(r[:width-1]) + "…"
}
