package main

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"gonum.org/v1/gonum/floats"

	"orrery/celestial"
)

var (
	headerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	columnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Bold(true)
	labelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	divergedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	graphStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	canvasStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("238"))
	panelStyle    = lipgloss.NewStyle().Padding(0, 2).Width(42)
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
)

// BodyReport summarises one body's distance from the Sun over a run.
// Statistics cover finite samples only and are NaN when there are none.
type BodyReport struct {
	ID          string
	Name        string
	Kind        celestial.BodyKind
	FinalRadius float64
	MinRadius   float64
	MaxRadius   float64
	MeanRadius  float64
	// DivergedAt is the first frame with a non-finite position, 0 if none.
	DivergedAt uint64
}

// SimulationReport is the result of a headless run.
type SimulationReport struct {
	Frames       int
	FrameSeconds float64
	Perturbation bool
	Elapsed      float64
	Bodies       []BodyReport
	PlotBody     string
	PlotSeries   []float64
}

// RunHeadless steps sim frames times, frame i at i·frameSeconds of
// synthetic time, and summarises every body.
func RunHeadless(sim *Simulation, frames int, frameSeconds float64, plotID string) (SimulationReport, error) {
	if frames < 1 {
		return SimulationReport{}, fmt.Errorf("frames must be at least 1, got %d", frames)
	}
	if !(frameSeconds >= 0) || math.IsInf(frameSeconds, 0) {
		return SimulationReport{}, fmt.Errorf("frame seconds must be finite and not negative, got %v", frameSeconds)
	}
	bodies := sim.Bodies()
	var plotName string
	if plotID != "" {
		for _, b := range bodies {
			if b.ID == plotID {
				plotName = b.Name
			}
		}
		if plotName == "" {
			return SimulationReport{}, fmt.Errorf("plot body %q: %w", plotID, ErrUnknownBody)
		}
	}

	radii := make(map[string][]float64, len(bodies))
	diverged := make(map[string]uint64)
	loop := &celestial.Loop{
		Stepper: sim,
		OnFrame: func(frame celestial.Frame) {
			for _, b := range frame.Bodies {
				radii[b.ID] = append(radii[b.ID], b.Position.Magnitude())
				if _, seen := diverged[b.ID]; !seen && !b.Position.IsFinite() {
					diverged[b.ID] = frame.Index
				}
			}
		},
	}

	var last celestial.Frame
	for i := 1; i <= frames; i++ {
		last = loop.StepAt(float64(i) * frameSeconds)
	}

	report := SimulationReport{
		Frames:       frames,
		FrameSeconds: frameSeconds,
		Perturbation: sim.Perturbation(),
		Elapsed:      last.Elapsed,
		Bodies:       make([]BodyReport, len(bodies)),
		PlotBody:     plotName,
		PlotSeries:   radii[plotID],
	}
	for i, b := range bodies {
		series := radii[b.ID]
		lo, hi, mean := radiusStats(series)
		report.Bodies[i] = BodyReport{
			ID:          b.ID,
			Name:        b.Name,
			Kind:        b.Kind,
			FinalRadius: series[len(series)-1],
			MinRadius:   lo,
			MaxRadius:   hi,
			MeanRadius:  mean,
			DivergedAt:  diverged[b.ID],
		}
	}
	return report, nil
}

// radiusStats returns min, max and mean of the finite values in series.
func radiusStats(series []float64) (lo, hi, mean float64) {
	finite := finiteValues(series)
	if len(finite) == 0 {
		return math.NaN(), math.NaN(), math.NaN()
	}
	return floats.Min(finite), floats.Max(finite), floats.Sum(finite) / float64(len(finite))
}

func finiteValues(series []float64) []float64 {
	out := make([]float64, 0, len(series))
	for _, v := range series {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}

// Render formats the report for a terminal.
func (r SimulationReport) Render(plotWidth, plotHeight int) string {
	var b strings.Builder

	perturbation := "on"
	if !r.Perturbation {
		perturbation = "off"
	}
	b.WriteString(headerStyle.Render(fmt.Sprintf("orrery: %d frames of %.4gs, %.4gs elapsed, perturbation %s",
		r.Frames, r.FrameSeconds, r.Elapsed, perturbation)))
	b.WriteString("\n")

	row := "%-34s %-7s %12s %12s %12s %12s  %s"
	b.WriteString(columnStyle.Render(fmt.Sprintf(row, "BODY", "KIND", "FINAL", "MIN", "MAX", "MEAN", "STATUS")))
	b.WriteString("\n")

	divergedCount := 0
	for _, body := range r.Bodies {
		status := valueStyle.Render("ok")
		if body.DivergedAt > 0 {
			divergedCount++
			status = divergedStyle.Render(fmt.Sprintf("diverged at frame %d", body.DivergedAt))
		}
		b.WriteString(fmt.Sprintf(row, body.Name, body.Kind,
			formatRadius(body.FinalRadius), formatRadius(body.MinRadius),
			formatRadius(body.MaxRadius), formatRadius(body.MeanRadius), status))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(labelStyle.Render("Bodies") + valueStyle.Render(fmt.Sprint(len(r.Bodies))) + "\n")
	b.WriteString(labelStyle.Render("Diverged") + valueStyle.Render(fmt.Sprint(divergedCount)) + "\n")

	if r.PlotBody != "" {
		b.WriteString(graphStyle.Render(plotRadius(r.PlotSeries, r.PlotBody, plotWidth, plotHeight)))
	}
	return b.String()
}

func formatRadius(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "-"
	}
	return fmt.Sprintf("%.6g", v)
}

func plotRadius(series []float64, name string, width, height int) string {
	finite := finiteValues(series)
	if len(finite) < 2 {
		return fmt.Sprintf("%s: not enough finite samples to plot", name)
	}
	return asciigraph.Plot(finite,
		asciigraph.Width(width),
		asciigraph.Height(height),
		asciigraph.Caption(fmt.Sprintf("%s distance from the Sun (scene units)", name)),
	)
}

// Live terminal harness

const watchHistory = 240

type watchTickMsg time.Time

// WatchModel is a bubbletea model showing a top-down view of the system
// centred on the Sun. It owns its Simulation.
type WatchModel struct {
	sim      *Simulation
	loop     *celestial.Loop
	interval time.Duration
	bodies   []celestial.Body

	frame    celestial.Frame
	selected int
	zoom     float64
	perturb  bool
	paused   bool
	history  []float64
	width    int
	height   int
}

func NewWatchModel(sim *Simulation, clock celestial.Clock, fps float64, perturb bool) WatchModel {
	return WatchModel{
		sim: sim,
		loop: &celestial.Loop{
			Stepper: sim,
			Clock:   celestial.NewFrameClock(clock),
		},
		interval: time.Duration(float64(time.Second) / fps),
		bodies:   sim.Bodies(),
		zoom:     1,
		perturb:  perturb,
		width:    100,
		height:   30,
		history:  make([]float64, 0, watchHistory),
	}
}

func (m WatchModel) tick() tea.Cmd {
	return tea.Tick(m.interval, func(t time.Time) tea.Msg { return watchTickMsg(t) })
}

func (m WatchModel) Init() tea.Cmd {
	return m.tick()
}

// Update handles keys and steps the simulation on every tick. Pausing only
// stops stepping; the frame clock keeps running.
func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			m.paused = !m.paused
		case "p":
			m.perturb = !m.perturb
			m.sim.SetPerturbation(m.perturb)
		case "tab", "n":
			m.selectBody(1)
		case "shift+tab", "N":
			m.selectBody(-1)
		case "+", "=":
			m.zoom *= 1.5
		case "-", "_":
			m.zoom /= 1.5
		}
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	case watchTickMsg:
		if !m.paused {
			m.frame = m.loop.Tick()
			m.record()
		}
		return m, m.tick()
	}
	return m, nil
}

func (m *WatchModel) selectBody(delta int) {
	if len(m.bodies) == 0 {
		return
	}
	m.selected = (m.selected + delta + len(m.bodies)) % len(m.bodies)
	m.history = m.history[:0]
}

func (m *WatchModel) record() {
	pos, ok := m.selectedPosition()
	if !ok {
		return
	}
	if len(m.history) == watchHistory {
		m.history = append(m.history[:0], m.history[1:]...)
	}
	m.history = append(m.history, pos.Magnitude())
}

func (m WatchModel) selectedPosition() (celestial.Vector3, bool) {
	if m.selected >= len(m.frame.Bodies) {
		return celestial.Vector3{}, false
	}
	return m.frame.Bodies[m.selected].Position, true
}

func (m WatchModel) View() string {
	cols := max(20, m.width-46)
	rows := max(8, m.height-4)

	return lipgloss.JoinHorizontal(lipgloss.Top,
		canvasStyle.Render(m.renderCanvas(cols, rows)),
		panelStyle.Render(m.renderPanel()),
	)
}

// renderCanvas projects every finite body onto the x/z plane. The view
// extent follows the selected body's distance from the Sun.
func (m WatchModel) renderCanvas(cols, rows int) string {
	grid := make([][]rune, rows)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", cols))
	}

	extent := 1.0
	if pos, ok := m.selectedPosition(); ok && pos.IsFinite() && pos.Magnitude() > 0 {
		extent = pos.Magnitude() * 1.5
	}
	extent /= m.zoom

	plot := func(p celestial.Vector3, glyph rune) {
		col := int(math.Round((p.X/extent + 1) / 2 * float64(cols-1)))
		row := int(math.Round((p.Z/extent + 1) / 2 * float64(rows-1)))
		if col >= 0 && col < cols && row >= 0 && row < rows {
			grid[row][col] = glyph
		}
	}

	plot(celestial.Vector3{}, '*')
	for i, b := range m.frame.Bodies {
		if !b.Position.IsFinite() || i == m.selected {
			continue
		}
		plot(b.Position, kindGlyph(m.bodies[i].Kind))
	}
	if pos, ok := m.selectedPosition(); ok && pos.IsFinite() {
		plot(pos, '@')
	}

	lines := make([]string, rows)
	for i, line := range grid {
		lines[i] = string(line)
	}
	return strings.Join(lines, "\n")
}

func kindGlyph(kind celestial.BodyKind) rune {
	switch kind {
	case celestial.KindPlanet:
		return 'o'
	case celestial.KindMoon:
		return '.'
	case celestial.KindComet:
		return '+'
	}
	return '?'
}

func (m WatchModel) renderPanel() string {
	var b strings.Builder

	diverged := 0
	for _, body := range m.frame.Bodies {
		if !body.Position.IsFinite() {
			diverged++
		}
	}
	perturbation := "on"
	if !m.perturb {
		perturbation = "off"
	}

	b.WriteString(headerStyle.Render("orrery"))
	b.WriteString("\n")
	field := func(label, value string) {
		b.WriteString(labelStyle.Render(label) + valueStyle.Render(value) + "\n")
	}
	field("Frame", fmt.Sprint(m.frame.Index))
	field("Elapsed", fmt.Sprintf("%.2fs", m.frame.Elapsed))
	field("Perturb", perturbation)
	field("Diverged", fmt.Sprintf("%d/%d", diverged, len(m.frame.Bodies)))
	field("Zoom", fmt.Sprintf("x%.2f", m.zoom))
	if m.paused {
		field("State", "paused")
	}

	if len(m.bodies) > 0 {
		body := m.bodies[m.selected]
		b.WriteString("\n" + selectedStyle.Render(body.Name) + "\n")
		field("Kind", string(body.Kind))
		if pos, ok := m.selectedPosition(); ok {
			field("Radius", formatRadius(pos.Magnitude()))
		}
		if len(finiteValues(m.history)) >= 2 {
			b.WriteString(graphStyle.Render(asciigraph.Plot(finiteValues(m.history),
				asciigraph.Width(32), asciigraph.Height(6))))
			b.WriteString("\n")
		}
	}

	b.WriteString(helpStyle.Render("tab/n next  N prev  +/- zoom\np perturbation  space pause  q quit"))
	return b.String()
}
