package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/odegrad/internal/tensor"
	"github.com/san-kum/odegrad/internal/train"
)

var (
	monitorStyle = lipgloss.NewStyle().Padding(1, 2)
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	graphStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(2)
)

type TickMsg time.Time

// Monitor runs a trainer one epoch per tick and charts the loss. Reset
// restores the parameter values captured at construction, so a run can
// be replayed from the same initialization.
type Monitor struct {
	trainer   *train.Trainer
	samples   []train.Sample
	epochs    int
	modelName string

	losses  []float64
	best    float64
	initial []tensor.Tensor
	started time.Time
	elapsed time.Duration
	running bool
	done    bool
	err     error
}

func NewMonitor(tr *train.Trainer, samples []train.Sample, epochs int, modelName string) Monitor {
	params := tr.ODE.Dynamics().Parameters()
	initial := make([]tensor.Tensor, len(params))
	for i, p := range params {
		initial[i] = p.Clone()
	}
	return Monitor{
		trainer:   tr,
		samples:   samples,
		epochs:    epochs,
		modelName: modelName,
		losses:    make([]float64, 0, epochs),
		best:      math.Inf(1),
		initial:   initial,
		started:   time.Now(),
		running:   true,
	}
}

// Losses returns the loss history accumulated so far.
func (m Monitor) Losses() []float64 { return m.losses }

func (m Monitor) Init() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
}

// Update handles input events and advances training.
func (m Monitor) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			if !m.done && m.err == nil {
				m.running = !m.running
			}
		case "r":
			m.reset()
		}
	case TickMsg:
		if m.running && !m.done {
			m.step()
		}
		return m, tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return TickMsg(t) })
	}
	return m, nil
}

// step runs a single training epoch.
func (m *Monitor) step() {
	loss, err := m.trainer.RunEpoch(m.samples)
	if err != nil {
		m.err = err
		m.running = false
		return
	}
	m.losses = append(m.losses, loss)
	if loss < m.best {
		m.best = loss
	}
	if len(m.losses) >= m.epochs {
		m.done = true
		m.running = false
		m.elapsed = time.Since(m.started)
	}
}

// reset restores the initial parameters and clears the history.
func (m *Monitor) reset() {
	params := m.trainer.ODE.Dynamics().Parameters()
	for i, p := range params {
		copy(p.Data, m.initial[i].Data)
	}
	m.trainer.Opt.Reset()
	m.losses = m.losses[:0]
	m.best = math.Inf(1)
	m.started = time.Now()
	m.elapsed = 0
	m.running = true
	m.done = false
	m.err = nil
}

// View renders the monitor.
func (m Monitor) View() string {
	var s strings.Builder
	s.WriteString(headerStyle.Render("TRAINING "+strings.ToUpper(m.modelName)) + "\n")

	switch {
	case m.err != nil:
		s.WriteString(StatusError.Render("ERROR") + " " + m.err.Error() + "\n\n")
	case m.done:
		s.WriteString(StatusRunning.Render(fmt.Sprintf("DONE (%.1fs)", m.elapsed.Seconds())) + "\n\n")
	case !m.running:
		s.WriteString(StatusPaused.Render("PAUSED") + "\n\n")
	default:
		s.WriteString(StatusRunning.Render("RUNNING") + "\n\n")
	}

	if len(m.losses) > 1 {
		data, caption := logScale(m.losses)
		chart := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(60),
			asciigraph.Caption(caption),
		)
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	epoch := len(m.losses)
	s.WriteString(labelStyle.Render("Epoch") + valueStyle.Render(fmt.Sprintf("%d/%d", epoch, m.epochs)) + "\n")
	if epoch > 0 {
		s.WriteString(labelStyle.Render("Loss") + valueStyle.Render(fmt.Sprintf("%.3e", m.losses[epoch-1])) + "\n")
		s.WriteString(labelStyle.Render("Best") + valueStyle.Render(fmt.Sprintf("%.3e", m.best)) + "\n")
	}
	s.WriteString(labelStyle.Render("Optimizer") + valueStyle.Render(m.trainer.Opt.Name()) + "\n")
	s.WriteString(labelStyle.Render("Samples") + valueStyle.Render(fmt.Sprintf("%d", len(m.samples))) + "\n")

	if m.epochs > 0 {
		s.WriteString("\n" + ProgressBar(float64(epoch)/float64(m.epochs), 40) + "\n")
	}
	if epoch > 1 {
		s.WriteString(SparklineChart(m.losses, 40) + "\n")
	}
	s.WriteString(helpStyle.Render("SP:Pause R:Reset Q:Quit"))
	return monitorStyle.Render(s.String())
}
