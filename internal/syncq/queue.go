// Package syncq persists commands issued while the API was unreachable.
// Queued commands carry the idempotency key minted at queue time, so
// replaying after reconnect never doubles a settled operation.
package syncq

import (
	"encoding/json"
	"os"
	"path/filepath"
)

type Command struct {
	Type           string         `json:"type"`
	Fields         map[string]any `json:"fields,omitempty"`
	IdempotencyKey string         `json:"idempotency_key"`
}

// Payload flattens a command into the wire shape the replay endpoint
// expects.
func (c Command) Payload() map[string]any {
	out := make(map[string]any, len(c.Fields)+2)
	for k, v := range c.Fields {
		out[k] = v
	}
	out["type"] = c.Type
	out["idempotency_key"] = c.IdempotencyKey
	return out
}

func queuePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, ".cls")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return filepath.Join(dir, "queue.json"), nil
}

func Load() ([]Command, error) {
	path, err := queuePath()
	if err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []Command{}, nil
		}
		return nil, err
	}
	if len(raw) == 0 {
		return []Command{}, nil
	}
	var out []Command
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func Save(commands []Command) error {
	path, err := queuePath()
	if err != nil {
		return err
	}
	raw, err := json.MarshalIndent(commands, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, 0o600)
}

func Push(cmd Command) error {
	commands, err := Load()
	if err != nil {
		return err
	}
	commands = append(commands, cmd)
	return Save(commands)
}
