package sshlink

import (
	"bufio"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/user/clawdeck/internal/types"
)

// fakeConn records commands and replies from a canned table.
type fakeConn struct {
	cmds   []string
	stdout string
	stderr string
	status int
	runErr error
	closed bool
}

func (f *fakeConn) run(cmd string) (string, string, int, error) {
	f.cmds = append(f.cmds, cmd)
	return f.stdout, f.stderr, f.status, f.runErr
}

func (f *fakeConn) stream(cmd string) (*bufio.Scanner, func(), error) {
	f.cmds = append(f.cmds, cmd)
	scanner := bufio.NewScanner(strings.NewReader(f.stdout))
	return scanner, func() {}, nil
}

func (f *fakeConn) close() error {
	f.closed = true
	return nil
}

func newTestLink(c *fakeConn, dialErr error) *Link {
	l := NewLink(DefaultConfig())
	l.dial = func(Config) (conn, error) {
		if dialErr != nil {
			return nil, dialErr
		}
		return c, nil
	}
	return l
}

func TestConnectTransitions(t *testing.T) {
	l := newTestLink(&fakeConn{}, nil)

	if status, _ := l.Status(); status != StatusDisconnected {
		t.Fatalf("initial status = %s, want disconnected", status)
	}
	if err := l.Connect(); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	if status, _ := l.Status(); status != StatusConnected {
		t.Errorf("status after connect = %s, want connected", status)
	}
}

func TestConnectFailureSetsError(t *testing.T) {
	l := newTestLink(nil, errors.New("handshake refused"))

	if err := l.Connect(); err == nil {
		t.Fatal("expected connect error")
	}
	status, msg := l.Status()
	if status != StatusError {
		t.Errorf("status = %s, want error", status)
	}
	if !strings.Contains(msg, "handshake refused") {
		t.Errorf("error message = %q, want handshake reason", msg)
	}

	// A later successful connect recovers from the error state.
	l.dial = func(Config) (conn, error) { return &fakeConn{}, nil }
	if err := l.Connect(); err != nil {
		t.Fatalf("Connect after error: %v", err)
	}
	if status, msg := l.Status(); status != StatusConnected || msg != "" {
		t.Errorf("status = %s (%q), want connected with no error", status, msg)
	}
}

func TestReconnectClosesStaleConnection(t *testing.T) {
	first := &fakeConn{}
	l := newTestLink(first, nil)
	if err := l.Connect(); err != nil {
		t.Fatal(err)
	}

	second := &fakeConn{}
	l.dial = func(Config) (conn, error) { return second, nil }
	if err := l.Connect(); err != nil {
		t.Fatal(err)
	}
	if !first.closed {
		t.Error("stale connection was not closed on reconnect")
	}
	if status, _ := l.Status(); status != StatusConnected {
		t.Errorf("status = %s, want connected", status)
	}
}

func TestDisconnectFromAnyState(t *testing.T) {
	// From connected.
	c := &fakeConn{}
	l := newTestLink(c, nil)
	if err := l.Connect(); err != nil {
		t.Fatal(err)
	}
	l.Disconnect()
	if status, _ := l.Status(); status != StatusDisconnected {
		t.Errorf("status = %s, want disconnected", status)
	}
	if !c.closed {
		t.Error("connection not closed on disconnect")
	}

	// From error.
	l = newTestLink(nil, errors.New("nope"))
	_ = l.Connect()
	l.Disconnect()
	if status, msg := l.Status(); status != StatusDisconnected || msg != "" {
		t.Errorf("status = %s (%q), want clean disconnected", status, msg)
	}

	// From disconnected: a no-op.
	l.Disconnect()
	if status, _ := l.Status(); status != StatusDisconnected {
		t.Error("disconnect from disconnected changed state")
	}
}

func TestExecNotConnected(t *testing.T) {
	l := newTestLink(&fakeConn{}, nil)

	_, err := l.Exec("hostname")
	if !errors.Is(err, ErrNotConnected) {
		t.Fatalf("err = %v, want ErrNotConnected", err)
	}
}

func TestExecTrimsStdout(t *testing.T) {
	c := &fakeConn{stdout: "  mac-mini\n"}
	l := newTestLink(c, nil)
	if err := l.Connect(); err != nil {
		t.Fatal(err)
	}

	out, err := l.Exec("hostname")
	if err != nil {
		t.Fatalf("Exec: %v", err)
	}
	if out != "mac-mini" {
		t.Errorf("out = %q, want trimmed hostname", out)
	}
}

func TestExecNonZeroExitCarriesStderr(t *testing.T) {
	c := &fakeConn{status: 127, stderr: "openclaw: command not found\n"}
	l := newTestLink(c, nil)
	if err := l.Connect(); err != nil {
		t.Fatal(err)
	}

	_, err := l.Exec("openclaw --version")
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("err = %v, want *ExitError", err)
	}
	if exitErr.Status != 127 {
		t.Errorf("status = %d, want 127", exitErr.Status)
	}
	if !strings.Contains(exitErr.Stderr, "command not found") {
		t.Errorf("stderr = %q, want remote stderr text", exitErr.Stderr)
	}
}

func TestTestConnection(t *testing.T) {
	c := &fakeConn{stdout: "connected\nmac-mini\n"}
	l := newTestLink(c, nil)

	out, err := l.TestConnection()
	if err != nil {
		t.Fatalf("TestConnection: %v", err)
	}
	if out != "connected\nmac-mini" {
		t.Errorf("out = %q", out)
	}
	if len(c.cmds) != 1 || c.cmds[0] != "echo connected && hostname" {
		t.Errorf("probe commands = %v", c.cmds)
	}
	if status, _ := l.Status(); status != StatusConnected {
		t.Errorf("status = %s, want connected", status)
	}
}

func TestReadSessionFileCommand(t *testing.T) {
	c := &fakeConn{stdout: ""}
	l := newTestLink(c, nil)
	if err := l.Connect(); err != nil {
		t.Fatal(err)
	}

	key := types.SessionKey{AgentID: "main", SessionID: "s1"}
	out, err := l.ReadSessionFile(key)
	if err != nil {
		t.Fatalf("ReadSessionFile: %v", err)
	}
	if out != "" {
		t.Errorf("out = %q, want empty for absent remote file", out)
	}
	cmd := c.cmds[0]
	if !strings.Contains(cmd, "$HOME/.openclaw/agents/main/sessions/s1.jsonl") {
		t.Errorf("cmd = %q, want remote session path", cmd)
	}
	if !strings.Contains(cmd, "2>/dev/null") {
		t.Errorf("cmd = %q, want missing-file suppression", cmd)
	}
}

func TestSendMessageShellEscaping(t *testing.T) {
	c := &fakeConn{}
	l := newTestLink(c, nil)
	if err := l.Connect(); err != nil {
		t.Fatal(err)
	}

	key := types.SessionKey{AgentID: "main", SessionID: "s1"}
	message := "it's a test with 'quotes' inside"
	if err := l.SendMessage(key, message); err != nil {
		t.Fatalf("SendMessage: %v", err)
	}

	args, err := tokenizePOSIX(c.cmds[0])
	if err != nil {
		t.Fatalf("tokenize %q: %v", c.cmds[0], err)
	}
	want := []string{"openclaw", "agent", "--agent", "main", "--session-id", "s1", "--message", message}
	if len(args) != len(want) {
		t.Fatalf("args = %v, want %v", args, want)
	}
	for i := range want {
		if args[i] != want[i] {
			t.Errorf("arg %d = %q, want %q", i, args[i], want[i])
		}
	}
}

// tokenizePOSIX splits a command string the way a POSIX shell would,
// honouring single-quoted segments and backslash escapes outside quotes.
func tokenizePOSIX(cmd string) ([]string, error) {
	var args []string
	var cur strings.Builder
	inWord := false
	i := 0
	for i < len(cmd) {
		ch := cmd[i]
		switch {
		case ch == ' ':
			if inWord {
				args = append(args, cur.String())
				cur.Reset()
				inWord = false
			}
			i++
		case ch == '\'':
			inWord = true
			end := strings.IndexByte(cmd[i+1:], '\'')
			if end < 0 {
				return nil, fmt.Errorf("unterminated quote at %d", i)
			}
			cur.WriteString(cmd[i+1 : i+1+end])
			i += end + 2
		case ch == '\\' && i+1 < len(cmd):
			inWord = true
			cur.WriteByte(cmd[i+1])
			i += 2
		default:
			inWord = true
			cur.WriteByte(ch)
			i++
		}
	}
	if inWord {
		args = append(args, cur.String())
	}
	return args, nil
}

func TestExpandPath(t *testing.T) {
	if got := ExpandPath("/etc/key"); got != "/etc/key" {
		t.Errorf("absolute path changed: %q", got)
	}
	got := ExpandPath("~/.ssh/id_ed25519")
	if strings.HasPrefix(got, "~") {
		t.Errorf("tilde not expanded: %q", got)
	}
	if !strings.HasSuffix(got, ".ssh/id_ed25519") {
		t.Errorf("suffix lost: %q", got)
	}
}
