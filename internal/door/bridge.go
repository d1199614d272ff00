// Package door bridges HTTP clients and the door controller hardware.
// Controllers poll for pending commands over plain HTTP and report RFID
// scans back; neither side holds a persistent connection, so all shared
// state lives in small in-memory stores.
package door

import (
	"fmt"
	"sync"
)

// Command is the instruction a door controller receives on its next poll.
type Command string

const (
	CommandIdle  Command = "idle"
	CommandOpen  Command = "open"
	CommandClose Command = "close"
)

// ParseCommand validates a client-supplied command string.
func ParseCommand(raw string) (Command, error) {
	switch Command(raw) {
	case CommandOpen, CommandClose:
		return Command(raw), nil
	default:
		return CommandIdle, fmt.Errorf("unknown door command %q", raw)
	}
}

// Bridge holds one pending command per door. A command stays latched until
// the controller polls it, at which point the latch resets to idle. Commands
// do not queue: a second command before the next poll overwrites the first.
type Bridge struct {
	mu       sync.Mutex
	commands map[string]Command
}

func NewBridge() *Bridge {
	return &Bridge{commands: make(map[string]Command)}
}

// Set latches a command for the named door.
func (b *Bridge) Set(door string, cmd Command) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.commands[door] = cmd
}

// Peek returns the pending command without consuming it.
func (b *Bridge) Peek(door string) Command {
	b.mu.Lock()
	defer b.mu.Unlock()
	if cmd, ok := b.commands[door]; ok {
		return cmd
	}
	return CommandIdle
}

// Poll returns the pending command and resets the latch to idle. Controllers
// call this on their polling loop; delivering a command exactly once is what
// keeps a door from reopening on every subsequent poll.
func (b *Bridge) Poll(door string) Command {
	b.mu.Lock()
	defer b.mu.Unlock()
	cmd, ok := b.commands[door]
	if !ok || cmd == CommandIdle {
		return CommandIdle
	}
	b.commands[door] = CommandIdle
	return cmd
}
