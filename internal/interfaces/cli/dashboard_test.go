package cli

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uyadmin.io/cli/internal/application/services"
	"uyadmin.io/cli/internal/core/domain"
)

type loaderFunc func(ctx context.Context) (*services.Dashboard, error)

func (f loaderFunc) Load(ctx context.Context) (*services.Dashboard, error) { return f(ctx) }

func sampleDashboard() *services.Dashboard {
	return &services.Dashboard{
		Stats: domain.DashboardStats{Properties: 3, ActiveProperties: 2, SavedProperties: 1, Categories: 4},
		Recent: []domain.Property{
			{ID: 7, Title: "Sea view flat", Price: "120000", Location: "Batumi", Status: domain.StatusActive, CreatedAt: time.Now()},
		},
	}
}

func keyMsg(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestDashboardModel_LoadsOnInit(t *testing.T) {
	dash := sampleDashboard()
	m := newDashboardModel(context.Background(), loaderFunc(func(context.Context) (*services.Dashboard, error) {
		return dash, nil
	}), &DashboardFlags{})

	assert.Contains(t, m.View(), "Loading dashboard")

	msg := m.loadCmd()()
	updated, cmd := m.Update(msg)
	got := updated.(dashboardModel)

	assert.Nil(t, cmd)
	assert.False(t, got.loading)
	assert.Same(t, dash, got.dashboard)
	view := got.View()
	assert.Contains(t, view, "Sea view flat")
	assert.Contains(t, view, "Categories")
}

func TestDashboardModel_KeepsPreviousDashboardOnError(t *testing.T) {
	dash := sampleDashboard()
	m := newDashboardModel(context.Background(), nil, &DashboardFlags{})
	m.dashboard = dash

	updated, _ := m.Update(dashboardLoadedMsg{err: &domain.NetworkError{Err: errors.New("connection refused")}, at: time.Now()})
	got := updated.(dashboardModel)

	assert.Same(t, dash, got.dashboard)
	assert.Nil(t, got.fatal)
	assert.Contains(t, got.View(), "cannot reach backend")
}

func TestDashboardModel_QuitsWhenSessionExpires(t *testing.T) {
	m := newDashboardModel(context.Background(), nil, &DashboardFlags{})

	updated, cmd := m.Update(dashboardLoadedMsg{err: domain.ErrUnauthorized, at: time.Now()})
	got := updated.(dashboardModel)

	assert.True(t, isQuit(cmd))
	assert.ErrorIs(t, got.fatal, domain.ErrUnauthorized)
}

func TestDashboardModel_Keys(t *testing.T) {
	calls := 0
	m := newDashboardModel(context.Background(), loaderFunc(func(context.Context) (*services.Dashboard, error) {
		calls++
		return sampleDashboard(), nil
	}), &DashboardFlags{})

	// r is ignored while a load is in flight
	_, cmd := m.Update(keyMsg("r"))
	assert.Nil(t, cmd)

	m.loading = false
	updated, cmd := m.Update(keyMsg("r"))
	require.NotNil(t, cmd)
	assert.True(t, updated.(dashboardModel).loading)
	_, ok := cmd().(dashboardLoadedMsg)
	assert.True(t, ok)
	assert.Equal(t, 1, calls)

	_, cmd = m.Update(keyMsg("q"))
	assert.True(t, isQuit(cmd))
}

func TestDashboardModel_TickDisabledWithoutRefreshRate(t *testing.T) {
	m := newDashboardModel(context.Background(), nil, &DashboardFlags{})
	assert.Nil(t, m.tickCmd())

	m.flags.RefreshRate = time.Second
	assert.NotNil(t, m.tickCmd())
}

func TestRenderDashboard_ShowsSourceErrors(t *testing.T) {
	dash := &services.Dashboard{Errors: []error{errors.New("failed to load saved properties: boom")}}

	out := renderDashboard(dash, time.Now())

	assert.Contains(t, out, "No properties yet.")
	assert.Contains(t, out, "failed to load saved properties: boom")
}
