package viz

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/san-kum/kepler/internal/orbit"
	"github.com/san-kum/kepler/internal/sim"
)

func TestCanvas(t *testing.T) {
	c := NewCanvas(2, 1)
	if got := c.String(); got != "⠀⠀\n" {
		t.Fatalf("unexpected blank canvas %q", got)
	}

	c.Set(0, 0)
	c.Set(3, 3)
	c.Set(-1, 0)
	c.Set(4, 0)
	if c.Grid[0][0] != 0x2801 || c.Grid[0][1] != 0x2880 {
		t.Errorf("unexpected cells %U %U", c.Grid[0][0], c.Grid[0][1])
	}

	c.Clear()
	c.DrawLine(0, 0, 3, 0)
	if c.Grid[0][0] != 0x2809 || c.Grid[0][1] != 0x2809 {
		t.Errorf("line not drawn: %U %U", c.Grid[0][0], c.Grid[0][1])
	}
}

func TestCameraProject(t *testing.T) {
	cam := NewCamera()
	cam.RotX = 0

	x, y, _, ok := cam.Project(Vec3{}, 160, 96)
	if !ok || x != 80 || y != 48 {
		t.Errorf("origin projected to (%d, %d, %v)", x, y, ok)
	}

	x1, _, _, _ := cam.Project(Vec3{X: 1}, 160, 96)
	cam.ZoomIn()
	x2, _, _, _ := cam.Project(Vec3{X: 1}, 160, 96)
	if x2 <= x1 || x1 <= 80 {
		t.Errorf("zoom did not magnify: %d then %d", x1, x2)
	}

	_, y1, _, _ := cam.Project(Vec3{Y: 1}, 160, 96)
	if y1 >= 48 {
		t.Errorf("positive y should project upward, got %d", y1)
	}
}

func TestThemes(t *testing.T) {
	defer SetTheme(ThemeDeepSpace.Name)

	SetTheme("retro")
	if CurrentTheme.Name != "retro" {
		t.Errorf("expected retro, got %s", CurrentTheme.Name)
	}
	NextTheme()
	if CurrentTheme.Name != "minimal" {
		t.Errorf("expected minimal, got %s", CurrentTheme.Name)
	}
	NextTheme()
	if CurrentTheme.Name != ThemeNames()[0] {
		t.Errorf("expected wrap to first theme, got %s", CurrentTheme.Name)
	}
	if GetTheme("nope").Name != ThemeNames()[0] {
		t.Error("unknown theme should fall back to the first")
	}
}

func TestSparkline(t *testing.T) {
	if got := SparklineChart(nil, 4); got != "────" {
		t.Errorf("unexpected empty sparkline %q", got)
	}
	got := SparklineChart([]float64{0, 1, 2, 3, 4, 5, 6, 7, 8}, 8)
	if !strings.Contains(got, "▁") || !strings.Contains(got, "█") {
		t.Errorf("sparkline missing extremes: %q", got)
	}
}

func liveBodies(t *testing.T) []sim.Body {
	t.Helper()
	var bodies []sim.Body
	for _, el := range []orbit.Elements{
		{SemiMajorAxis: 1, Eccentricity: 0.3, Inclination: 0.2, Mu: 1},
		{SemiMajorAxis: 1, Eccentricity: 1.6, Mu: 1},
	} {
		p, err := orbit.NewPropagator(el)
		if err != nil {
			t.Fatal(err)
		}
		bodies = append(bodies, sim.Body{Name: "body" + string(rune('A'+len(bodies))), Propagator: p})
	}
	return bodies
}

func TestModelUpdate(t *testing.T) {
	m := NewModel("demo", liveBodies(t), 0.1, 1.0)

	next, cmd := m.Update(TickMsg{})
	m = next.(Model)
	if cmd == nil {
		t.Error("tick should schedule another tick")
	}
	if m.t != 0.1 {
		t.Errorf("expected t=0.1 after one tick, got %g", m.t)
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}})
	m = next.(Model)
	next, _ = m.Update(TickMsg{})
	m = next.(Model)
	if m.t != 0.1 {
		t.Errorf("paused model advanced to %g", m.t)
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{']'}})
	m = next.(Model)
	if m.t != 1.0 {
		t.Errorf("seek should clamp to duration, got %g", m.t)
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(Model)
	if m.selected != 1 {
		t.Errorf("expected second body selected, got %d", m.selected)
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	m = next.(Model)
	if m.t != 0 {
		t.Errorf("reset left t=%g", m.t)
	}

	view := m.View()
	for _, want := range []string{"DEMO", "bodyA", "bodyB", "converged"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}

	_, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Error("q should quit")
	}
}
