// Copyright 2026 Ewout Prangsma
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// Author Ewout Prangsma
//

package simulator

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
)

const (
	refreshInterval = time.Millisecond * 50
	coarseStep      = 16
	fineStep        = 1
	maxLogLines     = 200
	barWidth        = 32
)

var (
	lcdStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Foreground(lipgloss.Color("86")).
			Padding(0, 1)
	titleStyle    = lipgloss.NewStyle().Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	cameraStyle   = lipgloss.NewStyle().Bold(true).Reverse(true)
	ledColors     = []lipgloss.Color{"135", "33", "46", "226"}
)

// Panel is the terminal front panel of the simulator.
// It shows the virtual display, LEDs and camera line and lets the user
// turn the potentiometers and operate the buttons.
type Panel struct {
	hw     *Hardware
	lines  <-chan string
	inputs []int

	width    int
	height   int
	selected int
	bar      progress.Model
	logView  viewport.Model
	logLines []string

	display   []string
	leds      []bool
	camera    bool
	pulses    uint64
	rate      uint64
	rateFrom  uint64
	rateAt    time.Time
	startedAt time.Time
}

var _ tea.Model = Panel{}

// NewPanel creates a front panel for the given hardware.
// Log lines received on lines are shown below the controls.
func NewPanel(hw *Hardware, lines <-chan string) Panel {
	now := time.Now()
	p := Panel{
		hw:        hw,
		lines:     lines,
		inputs:    hw.Inputs(),
		bar:       progress.New(progress.WithDefaultGradient(), progress.WithWidth(barWidth), progress.WithoutPercentage()),
		logView:   viewport.New(80, 8),
		rateAt:    now,
		startedAt: now,
	}
	return p.refresh(now)
}

// Run shows the panel until the user quits or the given context is canceled.
func (p Panel) Run(ctx context.Context) error {
	prog := tea.NewProgram(p, tea.WithContext(ctx), tea.WithAltScreen())
	if _, err := prog.Run(); err != nil && ctx.Err() == nil {
		return errors.Wrap(err, "front panel failed")
	}
	return nil
}

// Init is the first function that will be called. It returns an optional
// initial command. To not perform an initial command return nil.
func (p Panel) Init() tea.Cmd {
	return tea.Batch(doRefresh(), waitForLogLine(p.lines))
}

// Update is called when a message is received. Use it to inspect messages
// and, in response, update the model and/or send a command.
func (p Panel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case refreshMsg:
		return p.refresh(time.Time(msg)), doRefresh()
	case logLineMsg:
		p = p.appendLog(string(msg))
		return p, waitForLogLine(p.lines)
	case tea.WindowSizeMsg:
		p.width = msg.Width
		p.height = msg.Height
		p.logView.Width = msg.Width
		p.logView.Height = max(msg.Height-lipgloss.Height(p.controlsView()), 3)
	case tea.KeyMsg:
		switch key := msg.String(); key {
		case "q", "ctrl+c":
			return p, tea.Quit
		case "left", "h":
			p.adjust(-coarseStep)
		case "right", "l":
			p.adjust(coarseStep)
		case "[":
			p.adjust(-fineStep)
		case "]":
			p.adjust(fineStep)
		case "tab":
			p.selected = (p.selected + 1) % len(p.inputs)
		case "m":
			p.hw.PressMode()
		case "s":
			p.hw.ToggleStart()
		default:
			if n, err := strconv.Atoi(key); err == nil && n >= 1 && n <= len(p.inputs) {
				p.selected = n - 1
			}
		}
	}

	var cmd tea.Cmd
	p.logView, cmd = p.logView.Update(msg)
	cmds = append(cmds, cmd)
	return p, tea.Batch(cmds...)
}

// View renders the program's UI, which is just a string. The view is
// rendered after every Update.
func (p Panel) View() string {
	return p.controlsView() + "\n" + p.logView.View()
}

func (p Panel) controlsView() string {
	var b strings.Builder
	b.WriteString(p.headerView() + "\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		lcdStyle.Render(strings.Join(p.display, "\n")),
		"  ",
		p.outputsView(),
	) + "\n")
	for i, input := range p.inputs {
		raw := p.hw.Raw(input)
		name := fmt.Sprintf("%d %-7s", i+1, p.hw.InputName(input))
		if i == p.selected {
			name = selectedStyle.Render(name)
		}
		b.WriteString(fmt.Sprintf("%s %s %4d\n", name, p.bar.ViewAs(float64(raw)/MaxRaw), raw))
	}
	b.WriteString(dimStyle.Render("1-9/tab select  ←/→ turn  [/] fine  m mode  s start  q quit") + "\n")
	return b.String()
}

func (p Panel) headerView() string {
	return lipgloss.JoinHorizontal(lipgloss.Left,
		titleStyle.Render("NPM illuminator simulator"),
		dimStyle.Render(fmt.Sprintf("  up %s", time.Since(p.startedAt).Truncate(time.Second))),
	)
}

func (p Panel) outputsView() string {
	var lines []string
	for i, on := range p.leds {
		name := p.hw.cfg.Channels[i].Name
		if on {
			lines = append(lines, lipgloss.NewStyle().Foreground(ledColors[i%len(ledColors)]).Render("● "+name))
		} else {
			lines = append(lines, dimStyle.Render("○ "+name))
		}
	}
	camera := "CAM"
	if p.camera {
		camera = cameraStyle.Render(camera)
	}
	lines = append(lines, fmt.Sprintf("%s %s pulses, %d/s", camera, humanize.Comma(int64(p.pulses)), p.rate))
	start := "start: released"
	if p.hw.StartOn() {
		start = "start: on"
	}
	lines = append(lines, dimStyle.Render(start))
	return strings.Join(lines, "\n")
}

// refresh takes a snapshot of the hardware state.
func (p Panel) refresh(now time.Time) Panel {
	p.display = p.hw.DisplayLines()
	p.leds = p.hw.LEDs()
	p.camera = p.hw.CameraActive()
	p.pulses = p.hw.Pulses()
	if elapsed := now.Sub(p.rateAt); elapsed >= time.Second {
		p.rate = uint64(float64(p.pulses-p.rateFrom) / elapsed.Seconds())
		p.rateFrom = p.pulses
		p.rateAt = now
	}
	return p
}

func (p *Panel) adjust(delta int) {
	if len(p.inputs) == 0 {
		return
	}
	p.hw.AdjustRaw(p.inputs[p.selected], delta)
}

func (p Panel) appendLog(line string) Panel {
	p.logLines = append(p.logLines, line)
	if len(p.logLines) > maxLogLines {
		p.logLines = p.logLines[len(p.logLines)-maxLogLines:]
	}
	p.logView.SetContent(strings.Join(p.logLines, "\n"))
	p.logView.GotoBottom()
	return p
}

type refreshMsg time.Time

func doRefresh() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return refreshMsg(t)
	})
}

type logLineMsg string

func waitForLogLine(lines <-chan string) tea.Cmd {
	if lines == nil {
		return nil
	}
	return func() tea.Msg {
		return logLineMsg(<-lines)
	}
}
