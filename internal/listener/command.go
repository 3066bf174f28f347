package listener

import (
	"encoding/json"
	"strings"

	"github.com/pkg/errors"
)

// SpawnWindow asks the host to open a new window with its own renderer.
const SpawnWindow = "spawn_window"

// ErrEmptyCommand is returned for blank lines.
var ErrEmptyCommand = errors.New("empty command")

// Command is one request read from the socket. Title, Width and Height
// are optional and only set through the JSON form.
type Command struct {
	Name   string `json:"command"`
	Title  string `json:"title,omitempty"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// Known reports whether the host has an action for c.
func (c Command) Known() bool {
	return c.Name == SpawnWindow
}

// ParseCommand accepts either a bare command name ("spawn_window") or a
// JSON object ({"command":"spawn_window","title":"x"}).
func ParseCommand(line string) (Command, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Command{}, ErrEmptyCommand
	}
	if strings.HasPrefix(line, "{") {
		var cmd Command
		if err := json.Unmarshal([]byte(line), &cmd); err != nil {
			return Command{}, errors.Wrap(err, "decode command")
		}
		cmd.Name = strings.TrimSpace(cmd.Name)
		if cmd.Name == "" {
			return Command{}, ErrEmptyCommand
		}
		if cmd.Width < 0 || cmd.Height < 0 {
			return Command{}, errors.Errorf("invalid size %dx%d", cmd.Width, cmd.Height)
		}
		return cmd, nil
	}
	return Command{Name: strings.Fields(line)[0]}, nil
}
