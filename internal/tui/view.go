package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/naka-gawa/repo-catalog/internal/domain"
	"github.com/naka-gawa/repo-catalog/internal/format"
	"github.com/naka-gawa/repo-catalog/internal/usecase"
)

// View renders the current screen.
func (m Model) View() string {
	if m.state == StateDetail && m.detail != nil {
		return m.detailView(*m.detail)
	}
	return m.listView()
}

func (m Model) contentWidth() int {
	if m.width == 0 {
		return 80
	}
	return max(40, m.width-4)
}

func (m Model) header() string {
	org := m.org
	if org == "" {
		org = "Organization"
	}
	return titleStyle.Render(fmt.Sprintf("📚 %s GitHub Repositories", org)) + "\n" +
		subtitleStyle.Render(fmt.Sprintf("Explore and manage %s's open source projects", org))
}

func (m Model) listView() string {
	var b strings.Builder
	b.WriteString(m.header())
	b.WriteString("\n\n")

	switch {
	case m.snap.Status == usecase.StatusIdle || m.snap.Status == usecase.StatusLoading:
		fmt.Fprintf(&b, "%s Loading %s repositories...\n", m.spinner.View(), m.org)
		b.WriteString(m.footer())
		return b.String()

	case m.snap.Status == usecase.StatusError:
		b.WriteString(errorStyle.Render("⚠ Error") + "\n")
		b.WriteString(m.snap.Message + "\n\n")
		b.WriteString(subtleStyle.Render("Press r to try again."))
		b.WriteString("\n")
		b.WriteString(m.footer())
		return b.String()
	}

	b.WriteString(m.search.View())
	b.WriteString("\n\n")

	if m.snap.NoResults() {
		b.WriteString(nameStyle.Render("🔍 No repositories found") + "\n")
		if m.snap.SearchTerm != "" {
			fmt.Fprintf(&b, "No repositories match %q. Try a different search term.\n", m.snap.SearchTerm)
			b.WriteString(subtleStyle.Render("Press esc to clear the search."))
		} else {
			b.WriteString("No repositories available at the moment.")
		}
		b.WriteString("\n")
		b.WriteString(m.footer())
		return b.String()
	}

	end := min(len(m.snap.Visible), m.offset+m.cardsPerScreen())
	for i := m.offset; i < end; i++ {
		b.WriteString(m.card(m.snap.Visible[i], i == m.cursor))
		b.WriteString("\n")
	}

	if m.snap.HasMore {
		if m.snap.LoadingMore {
			fmt.Fprintf(&b, "%s Loading more repositories...\n", m.spinner.View())
		} else {
			b.WriteString(subtleStyle.Render("Scroll down to load more repositories ↓") + "\n")
		}
	}
	b.WriteString(m.footer())
	return b.String()
}

func (m Model) card(r domain.Repository, selected bool) string {
	width := m.contentWidth()

	name := nameStyle.Render(r.Name)
	if selected {
		name = selectedNameStyle.Render(r.Name)
	}
	title := name + badges(r)
	if m.bookmarked[r.ID] {
		title += " " + bookmarkStyle.Render("★")
	}

	desc := descriptionStyle.Render(format.Truncate(format.StripHTML(r.Description), width-4, "...", true))

	lang := lipgloss.NewStyle().Foreground(lipgloss.Color(format.LanguageColor(r.Language))).Render("●") + " " + r.Language
	stats := fmt.Sprintf("⭐ %s  🍴 %s  🐛 %s  %s  %s",
		format.Number(int64(r.StargazersCount), 1, true),
		format.Number(int64(r.ForksCount), 1, true),
		format.Number(int64(r.OpenIssuesCount), 1, true),
		lang,
		subtleStyle.Render("Updated "+format.Date(r.UpdatedAt)),
	)

	body := title + "\n" + desc + "\n" + stats
	if selected {
		return selectedCardStyle.Render(body)
	}
	return cardStyle.Render(body)
}

func badges(r domain.Repository) string {
	var out string
	if r.IsPrivate {
		out += badgeStyle.Render("[Private]")
	}
	if r.IsArchived {
		out += badgeStyle.Render("[Archived]")
	}
	if out != "" {
		return " " + out
	}
	return ""
}

func (m Model) footer() string {
	var parts []string
	if m.snap.Status == usecase.StatusReady {
		parts = append(parts, fmt.Sprintf("Showing %d of %d", m.snap.VisibleCount, m.snap.Matched))
		if m.snap.Matched != m.snap.Total {
			parts = append(parts, fmt.Sprintf("%d total", m.snap.Total))
		}
	}
	parts = append(parts, pluralize(len(m.bookmarked), "bookmark"))

	help := "/ search • enter details • b bookmark • c csv • J json • q quit"
	switch {
	case m.searching:
		help = "enter/esc done"
	case m.snap.Status == usecase.StatusError:
		help = "r retry • q quit"
	}

	line := strings.Join(parts, " • ")
	if m.status != "" {
		line += "\n" + m.statusStyle().Render(m.status)
	}
	return footerStyle.Render(line + "\n" + help)
}

func (m Model) statusStyle() lipgloss.Style {
	if m.statusErr {
		return errorStyle
	}
	return successStyle
}

func pluralize(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}

func (m Model) detailView(r domain.Repository) string {
	var b strings.Builder

	title := titleStyle.Render(r.FullName) + badges(r)
	if m.bookmarked[r.ID] {
		title += "  " + bookmarkStyle.Render("★ Bookmarked")
	}
	b.WriteString(title + "\n\n")

	width := m.contentWidth()
	b.WriteString(lipgloss.NewStyle().Width(width).Render(descriptionStyle.Render(format.StripHTML(r.Description))))
	b.WriteString("\n\n")

	row := func(label, value string) {
		b.WriteString(labelStyle.Render(label) + " " + value + "\n")
	}
	langColor := lipgloss.NewStyle().Foreground(lipgloss.Color(format.LanguageColor(r.Language)))
	row("Language", langColor.Render("●")+" "+r.Language)
	row("Stars", fmt.Sprintf("%s (%s)", format.Number(int64(r.StargazersCount), 0, false), format.Number(int64(r.StargazersCount), 1, true)))
	row("Forks", format.Number(int64(r.ForksCount), 0, false))
	row("Watchers", format.Number(int64(r.WatchersCount), 0, false))
	row("Issues", format.Number(int64(r.OpenIssuesCount), 0, false))

	license := r.LicenseName()
	if license == "" {
		license = "None"
	}
	row("License", license)
	row("Created", format.DateTime(r.CreatedAt))
	row("Updated", format.RelativeDate(r.UpdatedAt, m.now()))

	topics := "None"
	if len(r.Topics) > 0 {
		topics = strings.Join(r.Topics, ", ")
	}
	row("Topics", topics)
	if format.ValidURL(r.HTMLURL) {
		row("URL", r.HTMLURL)
	}

	help := "b toggle bookmark • esc back • q quit"
	line := pluralize(len(m.bookmarked), "bookmark")
	if m.status != "" {
		line += "\n" + m.statusStyle().Render(m.status)
	}
	b.WriteString(footerStyle.Render(line + "\n" + help))
	return b.String()
}
