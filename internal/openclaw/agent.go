// internal/openclaw/agent.go
package openclaw

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// binPATH is the search PATH handed to the agent process. GUI-launched and
// systemd-launched processes inherit a minimal PATH, so the usual install
// locations are listed explicitly.
const binPATH = "/opt/homebrew/bin:/usr/local/bin:/usr/bin:/bin"

// invokeOutput is the stdout shape of `openclaw agent --json`.
type invokeOutput struct {
	Payloads []struct {
		Text string `json:"text"`
	} `json:"payloads"`
}

// Agent invokes the local openclaw binary. It implements types.AgentRunner.
type Agent struct {
	bin string
}

// NewAgent locates the openclaw binary and returns an Agent bound to it.
func NewAgent() (*Agent, error) {
	bin, err := findBinary()
	if err != nil {
		return nil, err
	}
	return &Agent{bin: bin}, nil
}

// Invoke runs the agent with the given message and returns the assistant's
// reply text, joined across response payloads.
func (a *Agent) Invoke(ctx context.Context, agentID, message string) (string, error) {
	cmd := exec.CommandContext(ctx, a.bin,
		"agent", "--local", "--agent", agentID, "--message", message, "--json")
	cmd.Env = append(os.Environ(), "PATH="+binPATH)

	out, err := cmd.Output()
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			return "", fmt.Errorf("openclaw failed: %s", strings.TrimSpace(string(exitErr.Stderr)))
		}
		return "", fmt.Errorf("run openclaw: %w", err)
	}

	var parsed invokeOutput
	if err := json.Unmarshal(out, &parsed); err != nil {
		raw := string(out)
		if len(raw) > 200 {
			raw = raw[:200]
		}
		return "", fmt.Errorf("parse openclaw output: %w (raw: %s)", err, raw)
	}

	var texts []string
	for _, p := range parsed.Payloads {
		if p.Text != "" {
			texts = append(texts, p.Text)
		}
	}
	text := strings.Join(texts, "\n")
	if text == "" {
		return "", fmt.Errorf("openclaw returned empty response")
	}
	return text, nil
}

// GenerateTitle asks the agent for a short thread title summarising the
// given message. The reply is trimmed of quotes and clipped to one line.
func (a *Agent) GenerateTitle(ctx context.Context, message string) (string, error) {
	prompt := fmt.Sprintf(
		"Reply with only a short title (max 6 words, no quotes) for a conversation that starts with: %s",
		message)
	reply, err := a.Invoke(ctx, "main", prompt)
	if err != nil {
		return "", err
	}
	title, _, _ := strings.Cut(strings.TrimSpace(reply), "\n")
	title = strings.Trim(title, `"'`)
	if title == "" {
		return "", fmt.Errorf("agent returned empty title")
	}
	return title, nil
}

// findBinary probes the usual install locations, then falls back to PATH.
func findBinary() (string, error) {
	home, _ := os.UserHomeDir()
	candidates := []string{
		"/usr/local/bin/openclaw",
		"/opt/homebrew/bin/openclaw",
		filepath.Join(home, ".local/bin/openclaw"),
		filepath.Join(home, ".bun/bin/openclaw"),
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	if path, err := exec.LookPath("openclaw"); err == nil {
		return path, nil
	}
	return "", fmt.Errorf("openclaw binary not found")
}
