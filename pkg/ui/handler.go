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
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/ssh"

	"github.com/hatworks/iohat/pkg/service"
)

// Factory builds a dashboard model for every incoming SSH session.
type Factory struct {
	api     service.API
	version string
}

// NewFactory prepares a Factory around the given board API.
func NewFactory(api service.API, version string) *Factory {
	return &Factory{
		api:     api,
		version: version,
	}
}

// Handler grabs the terminal info of the session and builds
// a dashboard model for it.
func (f *Factory) Handler(s ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, _ := s.Pty()
	root := NewRoot(f.api, f.version, pty.Window.Width, pty.Window.Height)
	return root, []tea.ProgramOption{tea.WithAltScreen()}
}
