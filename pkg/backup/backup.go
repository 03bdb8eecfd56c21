// Package backup fetches a router's running configuration over SSH and
// stores it as a timestamped text file.
package backup

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/routerbot/routerbot/pkg/util"
)

// ShowRunningConfig is the command executed on the device.
const ShowRunningConfig = "show running-config"

const defaultTimeout = 30 * time.Second

// Target identifies the SSH side of a router.
type Target struct {
	Host     string
	Port     int
	Username string
	Password string
}

func (t Target) addr() string {
	port := t.Port
	if port == 0 {
		port = 22
	}
	return net.JoinHostPort(t.Host, strconv.Itoa(port))
}

// Backup is one saved configuration.
type Backup struct {
	Host    string
	Path    string
	Content string
	Taken   time.Time
}

// Runner fetches and saves configurations.
type Runner struct {
	dir     string
	timeout time.Duration
	now     func() time.Time
}

// NewRunner creates a runner that writes into dir. timeout bounds the
// whole SSH exchange; zero means 30s.
func NewRunner(dir string, timeout time.Duration) *Runner {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Runner{dir: dir, timeout: timeout, now: time.Now}
}

// Fetch runs "show running-config" and returns the configuration with the
// device's preamble removed.
func (r *Runner) Fetch(ctx context.Context, target Target) (string, error) {
	if target.Host == "" || target.Username == "" {
		return "", fmt.Errorf("ssh backup needs a host and username")
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	config := &ssh.ClientConfig{
		User: target.Username,
		Auth: []ssh.AuthMethod{
			ssh.Password(target.Password),
			ssh.KeyboardInteractive(func(user, instruction string, questions []string, echos []bool) ([]string, error) {
				answers := make([]string, len(questions))
				for i := range answers {
					answers[i] = target.Password
				}
				return answers, nil
			}),
		},
		// Routers are addressed by inventory entries without pinned host keys.
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         r.timeout,
	}

	addr := target.addr()
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return "", fmt.Errorf("SSH dial %s: %w", addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, config)
	if err != nil {
		conn.Close()
		return "", fmt.Errorf("SSH handshake with %s: %w", addr, err)
	}
	client := ssh.NewClient(sshConn, chans, reqs)
	defer client.Close()

	session, err := client.NewSession()
	if err != nil {
		return "", fmt.Errorf("SSH session: %w", err)
	}
	defer session.Close()

	output, err := session.CombinedOutput(ShowRunningConfig)
	if err != nil {
		return "", fmt.Errorf("SSH exec '%s': %w", ShowRunningConfig, err)
	}
	return StripPreamble(string(output)), nil
}

// Save fetches the configuration and writes it to
// <dir>/running_config_<host>_<timestamp>.txt.
func (r *Runner) Save(ctx context.Context, target Target) (*Backup, error) {
	content, err := r.Fetch(ctx, target)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(r.dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating backup directory: %w", err)
	}

	taken := r.now()
	path := filepath.Join(r.dir, FileName(target.Host, taken))
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		return nil, fmt.Errorf("writing backup: %w", err)
	}
	util.WithDevice(target.Host).Infof("saved running-config to %s (%d bytes)", path, len(content))
	return &Backup{Host: target.Host, Path: path, Content: content, Taken: taken}, nil
}

// FileName returns the backup file name for host at t.
func FileName(host string, t time.Time) string {
	return fmt.Sprintf("running_config_%s_%s.txt", util.SanitizeName(host), t.UTC().Format("20060102_150405"))
}

// StripPreamble removes the "Building configuration..." and
// "Current configuration : N bytes" lines IOS prints before the config,
// and normalizes line endings.
func StripPreamble(output string) string {
	output = strings.ReplaceAll(output, "\r\n", "\n")
	lines := strings.Split(output, "\n")

	i := 0
	for i < len(lines) {
		line := strings.TrimSpace(lines[i])
		if line == "" || strings.HasPrefix(line, "Building configuration") || strings.HasPrefix(line, "Current configuration") {
			i++
			continue
		}
		break
	}
	return strings.TrimRight(strings.Join(lines[i:], "\n"), "\n") + "\n"
}
