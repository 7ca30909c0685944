// internal/sshlink/dial.go
package sshlink

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"golang.org/x/crypto/ssh"
)

// dialSSH opens a real SSH connection using key authentication. Host key
// verification is skipped: this is a single-user client talking to its own
// machine over a key it already trusts.
func dialSSH(cfg Config) (conn, error) {
	keyData, err := os.ReadFile(ExpandPath(cfg.KeyPath))
	if err != nil {
		return nil, fmt.Errorf("read ssh key: %w", err)
	}
	signer, err := ssh.ParsePrivateKey(keyData)
	if err != nil {
		return nil, fmt.Errorf("parse ssh key: %w", err)
	}

	clientCfg := &ssh.ClientConfig{
		User:            cfg.User,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         10 * time.Second,
	}

	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	client, err := ssh.Dial("tcp", addr, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	return &sshConn{client: client}, nil
}

// sshConn adapts *ssh.Client to the conn interface.
type sshConn struct {
	client *ssh.Client
}

func (c *sshConn) run(cmd string) (string, string, int, error) {
	sess, err := c.client.NewSession()
	if err != nil {
		return "", "", 0, fmt.Errorf("new session: %w", err)
	}
	defer sess.Close()

	var stdout, stderr bytes.Buffer
	sess.Stdout = &stdout
	sess.Stderr = &stderr

	if err := sess.Run(cmd); err != nil {
		var exitErr *ssh.ExitError
		if errors.As(err, &exitErr) {
			return stdout.String(), stderr.String(), exitErr.ExitStatus(), nil
		}
		return "", "", 0, err
	}
	return stdout.String(), stderr.String(), 0, nil
}

func (c *sshConn) stream(cmd string) (*bufio.Scanner, func(), error) {
	sess, err := c.client.NewSession()
	if err != nil {
		return nil, nil, fmt.Errorf("new session: %w", err)
	}
	pipe, err := sess.StdoutPipe()
	if err != nil {
		sess.Close()
		return nil, nil, fmt.Errorf("stdout pipe: %w", err)
	}
	if err := sess.Start(cmd); err != nil {
		sess.Close()
		return nil, nil, fmt.Errorf("start: %w", err)
	}

	scanner := bufio.NewScanner(pipe)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	stop := func() { sess.Close() }
	return scanner, stop, nil
}

func (c *sshConn) close() error {
	return c.client.Close()
}
