// Copyright 2023 Hatworks Authors
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

package ui

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/hatworks/iohat/model"
	"github.com/hatworks/iohat/pkg/service"
)

const (
	refreshInterval = time.Second * 2
	requestTimeout  = time.Second * 5
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))
	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))
	onStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("82"))
	offStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

type Root struct {
	api     service.API
	version string
	width   int
	height  int

	channelTable table.Model
	status       model.BoardStatus
	lastErr      error
}

var _ tea.Model = Root{}

// NewRoot prepares the dashboard model for a single session.
func NewRoot(api service.API, version string, width, height int) Root {
	columns := []table.Column{
		{Title: "Channel", Width: 8},
		{Title: "Raw", Width: 6},
		{Title: "Voltage", Width: 9},
		{Title: "Percent", Width: 8},
		{Title: "Measured", Width: 20},
	}
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57"))
	channelTable := table.New(
		table.WithColumns(columns),
		table.WithHeight(6),
		table.WithStyles(styles),
	)
	if width > 0 {
		channelTable.SetWidth(width)
	}
	return Root{
		api:          api,
		version:      version,
		width:        width,
		height:       height,
		channelTable: channelTable,
	}
}

// Init is the first function that will be called. It returns an optional
// initial command. To not perform an initial command return nil.
func (r Root) Init() tea.Cmd {
	return tea.Batch(r.doRefresh(), doTick())
}

// Update is called when a message is received. Use it to inspect messages
// and, in response, update the model and/or send a command.
func (r Root) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tickMsg:
		cmds = append(cmds, r.doRefresh(), doTick())
	case statusMsg:
		r.status = model.BoardStatus(msg)
		r.lastErr = nil
		r.channelTable.SetRows(channelRows(r.status.Analog))
	case errMsg:
		r.lastErr = msg
	case tea.WindowSizeMsg:
		r.height = msg.Height
		r.width = msg.Width
		r.channelTable.SetWidth(msg.Width)
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return r, tea.Quit
		case "a":
			cmds = append(cmds, r.doReadAnalog())
		case "p":
			cmds = append(cmds, r.doSetPower(!r.status.AnalogEnabled))
		case "1", "2", "3":
			index, _ := strconv.Atoi(msg.String())
			cmds = append(cmds, r.doToggleRelay(index-1))
		}
	}

	var cmd tea.Cmd
	r.channelTable, cmd = r.channelTable.Update(msg)
	cmds = append(cmds, cmd)

	return r, tea.Batch(cmds...)
}

// View renders the program's UI, which is just a string. The view is
// rendered after every Update.
func (r Root) View() string {
	s := r.headerView()
	s += r.channelTable.View() + "\n\n"
	s += r.switchesView() + "\n"
	if r.lastErr != nil {
		s += errorStyle.Render(r.lastErr.Error()) + "\n"
	}
	s += `
a     - Read all analog channels
p     - Toggle analog power
1,2,3 - Toggle relay
q     - Disconnect
`
	if r.width > 0 {
		// Clamp every line to the terminal width
		return lipgloss.NewStyle().MaxWidth(r.width).Render(s)
	}
	return s
}

func (r Root) headerView() string {
	power := offStyle.Render("analog off")
	if r.status.AnalogEnabled {
		power = onStyle.Render("analog on")
	}
	return lipgloss.JoinHorizontal(lipgloss.Left,
		titleStyle.Render(fmt.Sprintf("IO hat %s @ %s", r.version, r.status.HostID)),
		"  ",
		power,
	) + "\n\n"
}

func (r Root) switchesView() string {
	line := func(kind string, values []bool) string {
		s := fmt.Sprintf("%-8s", kind)
		for index, value := range values {
			state := offStyle.Render("off")
			if value {
				state = onStyle.Render("ON ")
			}
			s += fmt.Sprintf(" %d:%s", index+1, state)
		}
		return s
	}
	return line("Relays", r.status.Relays) + "\n" +
		line("Outputs", r.status.Outputs) + "\n" +
		line("Inputs", r.status.Inputs)
}

func channelRows(readings []model.AnalogReading) []table.Row {
	rows := make([]table.Row, 0, len(readings))
	for _, reading := range readings {
		measured := "never"
		if !reading.Time.IsZero() {
			measured = humanize.Time(reading.Time)
		}
		rows = append(rows, table.Row{
			strconv.Itoa(reading.Channel),
			strconv.Itoa(reading.Raw),
			fmt.Sprintf("%.2f V", reading.Voltage),
			fmt.Sprintf("%.1f %%", reading.Percent),
			measured,
		})
	}
	return rows
}

type tickMsg time.Time
type statusMsg model.BoardStatus
type errMsg error

func doTick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (r Root) doRefresh() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		status, err := r.api.BoardStatus(ctx)
		if err != nil {
			return errMsg(err)
		}
		return statusMsg(status)
	}
}

func (r Root) doReadAnalog() tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		if _, err := r.api.ReadAnalogAll(ctx); err != nil {
			return errMsg(err)
		}
		return r.doRefresh()()
	}
}

func (r Root) doSetPower(enable bool) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		if err := r.api.SetPower(ctx, enable); err != nil {
			return errMsg(err)
		}
		return r.doRefresh()()
	}
}

func (r Root) doToggleRelay(index int) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		value := true
		if index < len(r.status.Relays) {
			value = !r.status.Relays[index]
		}
		if err := r.api.SetRelay(ctx, index, value); err != nil {
			return errMsg(err)
		}
		return r.doRefresh()()
	}
}
