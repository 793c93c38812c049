package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"uyadmin.io/cli/internal/application/services"
	"uyadmin.io/cli/internal/core/domain"
)

// DashboardFlags holds command-line flags for the dashboard command
type DashboardFlags struct {
	RefreshRate time.Duration
	Once        bool
}

// NewDashboardCommand creates the dashboard command
func NewDashboardCommand(container *CLIContainer) *cobra.Command {
	flags := &DashboardFlags{}

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Catalogue overview: counts and the most recent properties",
		Long: `Launch an interactive terminal dashboard with property, saved property and
category counts plus the five most recent properties.

Examples:
  uyadmin dashboard                 # interactive, press r to reload, q to quit
  uyadmin dashboard --refresh 30s   # reload every 30 seconds
  uyadmin dashboard --once          # print a snapshot and exit`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.Once {
				dash, err := container.Dashboard.Load(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderDashboard(dash, time.Now()))
				return nil
			}
			return runDashboard(cmd.Context(), container.Dashboard, flags)
		},
	}

	cmd.Flags().DurationVar(&flags.RefreshRate, "refresh", 0, "Reload interval (0 disables automatic reloads)")
	cmd.Flags().BoolVar(&flags.Once, "once", false, "Print one snapshot instead of the interactive view")

	return cmd
}

type dashboardLoader interface {
	Load(ctx context.Context) (*services.Dashboard, error)
}

// runDashboard starts the terminal dashboard
func runDashboard(ctx context.Context, loader dashboardLoader, flags *DashboardFlags) error {
	model := newDashboardModel(ctx, loader, flags)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	final, err := program.Run()
	if err != nil {
		return fmt.Errorf("dashboard failed: %w", err)
	}
	// A session expiry ends the program; report it like any other command.
	if m, ok := final.(dashboardModel); ok && m.fatal != nil {
		return m.fatal
	}
	return nil
}

// dashboardModel holds the state for the Bubble Tea dashboard
type dashboardModel struct {
	ctx        context.Context
	loader     dashboardLoader
	flags      *DashboardFlags
	dashboard  *services.Dashboard
	loading    bool
	lastUpdate time.Time
	err        error
	fatal      error
}

func newDashboardModel(ctx context.Context, loader dashboardLoader, flags *DashboardFlags) dashboardModel {
	return dashboardModel{
		ctx:     ctx,
		loader:  loader,
		flags:   flags,
		loading: true,
	}
}

// Init implements the Bubble Tea init method
func (m dashboardModel) Init() tea.Cmd {
	return tea.Batch(m.loadCmd(), m.tickCmd())
}

// Update implements the Bubble Tea update method
func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r":
			if m.loading {
				return m, nil
			}
			m.loading = true
			return m, m.loadCmd()
		}

	case tickMsg:
		if m.loading {
			return m, m.tickCmd()
		}
		m.loading = true
		return m, tea.Batch(m.loadCmd(), m.tickCmd())

	case dashboardLoadedMsg:
		m.loading = false
		m.lastUpdate = msg.at
		if msg.dashboard != nil {
			m.dashboard = msg.dashboard
		}
		m.err = msg.err
		if isFatal(msg.err) {
			m.fatal = msg.err
			return m, tea.Quit
		}
		return m, nil
	}

	return m, nil
}

// View implements the Bubble Tea view method
func (m dashboardModel) View() string {
	if m.dashboard == nil {
		if m.err != nil {
			return fmt.Sprintf("%s\n\nPress 'r' to retry, 'q' to quit\n", errorStyle.Render("Error: "+FormatError(m.err)))
		}
		return mutedStyle.Render("Loading dashboard...") + "\n"
	}

	body := renderDashboard(m.dashboard, m.lastUpdate)
	status := "Last update: " + m.lastUpdate.Format("15:04:05")
	if m.loading {
		status += "  (reloading)"
	}
	if m.err != nil {
		status += "  " + errorStyle.Render(FormatError(m.err))
	}
	controls := mutedStyle.Render("Controls: [r] Reload | [q] Quit")
	return lipgloss.JoinVertical(lipgloss.Left, body, "", status, controls) + "\n"
}

var (
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 2).
			Width(20)
	cardLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	cardValueStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
)

func card(label string, value int) string {
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		cardLabelStyle.Render(label),
		cardValueStyle.Render(strconv.Itoa(value)),
	))
}

// renderDashboard draws the stat cards, recent properties and source errors.
func renderDashboard(dash *services.Dashboard, at time.Time) string {
	stats := dash.Stats
	cards := lipgloss.JoinHorizontal(lipgloss.Top,
		card("Properties", stats.Properties),
		card("Active", stats.ActiveProperties),
		card("Saved", stats.SavedProperties),
		card("Categories", stats.Categories),
	)

	var recent string
	if len(dash.Recent) == 0 {
		recent = mutedStyle.Render("No properties yet.")
	} else {
		rows := make([][]string, 0, len(dash.Recent))
		for _, p := range dash.Recent {
			rows = append(rows, propertyRow(p))
		}
		recent = renderTable(propertyHeaders, rows)
	}

	parts := []string{
		titleStyle.Render("🏠 Listing dashboard") + mutedStyle.Render("  "+at.Format("2006-01-02 15:04:05")),
		cards,
		titleStyle.Render("Recent properties"),
		recent,
	}
	if len(dash.Errors) > 0 {
		msgs := make([]string, len(dash.Errors))
		for i, err := range dash.Errors {
			msgs[i] = "⚠ " + FormatError(err)
		}
		parts = append(parts, errorStyle.Render(strings.Join(msgs, "\n")))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// tickMsg is sent every refresh interval
type tickMsg time.Time

// tickCmd schedules the next automatic reload, or nothing when disabled.
func (m dashboardModel) tickCmd() tea.Cmd {
	if m.flags.RefreshRate <= 0 {
		return nil
	}
	return tea.Tick(m.flags.RefreshRate, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func isFatal(err error) bool {
	return errors.Is(err, domain.ErrUnauthorized) || errors.Is(err, domain.ErrNotLoggedIn)
}

type dashboardLoadedMsg struct {
	dashboard *services.Dashboard
	err       error
	at        time.Time
}

func (m dashboardModel) loadCmd() tea.Cmd {
	return func() tea.Msg {
		dash, err := m.loader.Load(m.ctx)
		return dashboardLoadedMsg{dashboard: dash, err: err, at: time.Now()}
	}
}
