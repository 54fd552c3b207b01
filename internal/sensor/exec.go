package sensor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// ExecSource runs a shell command and reads one sample per stdout line,
// e.g. `termux-sensor -s gravity -d 20` on an Android phone, or a script
// reading an IIO accelerometer. A command that exits on its own is started
// again after the restart delay until unsubscribed.
type ExecSource struct {
	command string
	restart time.Duration

	mu     sync.Mutex
	cancel context.CancelFunc
	stdout io.ReadCloser
	done   chan struct{}
}

// NewExecSource creates a source for the given shell command line.
func NewExecSource(command string, restart time.Duration) *ExecSource {
	if restart <= 0 {
		restart = 2 * time.Second
	}
	return &ExecSource{command: command, restart: restart}
}

func (s *ExecSource) Name() string { return "exec" }

// Subscribe starts the command. Lines that do not decode are skipped. Only
// the first start error is returned; later restarts are retried.
func (s *ExecSource) Subscribe(fn Listener, rate time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return ErrAlreadySubscribed
	}

	ctx, cancel := context.WithCancel(context.Background())
	cmd, stdout, err := s.start(ctx)
	if err != nil {
		cancel()
		return err
	}

	s.cancel = cancel
	s.stdout = stdout
	s.done = make(chan struct{})
	go s.loop(ctx, cmd, stdout, newThrottle(fn, rate), s.done)
	return nil
}

func (s *ExecSource) start(ctx context.Context) (*exec.Cmd, io.ReadCloser, error) {
	cmd := exec.CommandContext(ctx, "sh", "-c", s.command)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, nil, fmt.Errorf("exec source stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, nil, fmt.Errorf("starting %q: %w", s.command, err)
	}
	log.Info().Str("command", s.command).Int("pid", cmd.Process.Pid).Msg("exec source started")
	return cmd, stdout, nil
}

func (s *ExecSource) loop(ctx context.Context, cmd *exec.Cmd, stdout io.ReadCloser, th *throttle, done chan struct{}) {
	defer close(done)
	for {
		if cmd != nil {
			s.read(ctx, cmd, stdout, th)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(s.restart):
		}

		// Unsubscribe cancels under mu, so a restart never outlives it.
		s.mu.Lock()
		if ctx.Err() != nil {
			s.mu.Unlock()
			return
		}
		var err error
		cmd, stdout, err = s.start(ctx)
		if err == nil {
			s.stdout = stdout
		}
		s.mu.Unlock()
		if err != nil {
			log.Warn().Err(err).Dur("restart", s.restart).Msg("exec source: restart failed")
		}
	}
}

func (s *ExecSource) read(ctx context.Context, cmd *exec.Cmd, stdout io.Reader, th *throttle) {
	// termux-sensor pretty-prints JSON over several lines, so lines are
	// collected until braces balance.
	var (
		pending strings.Builder
		depth   int
	)
	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if depth > 0 || strings.HasPrefix(line, "{") {
			pending.WriteString(line)
			depth += strings.Count(line, "{") - strings.Count(line, "}")
			if depth > 0 {
				continue
			}
			line = pending.String()
			pending.Reset()
			depth = 0
		}

		sample, err := DecodeLine(line)
		if err != nil {
			log.Debug().Err(err).Str("line", line).Msg("exec source: skipping line")
			continue
		}
		th.deliver(sample)
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil && !errors.Is(err, os.ErrClosed) {
		log.Warn().Err(err).Msg("exec source: reading stdout")
	}
	err := cmd.Wait()
	if ctx.Err() == nil {
		log.Warn().Err(err).Str("command", s.command).Dur("restart", s.restart).Msg("exec source: command exited")
	}
}

// Unsubscribe kills the command and waits for the reader to finish.
func (s *ExecSource) Unsubscribe() error {
	s.mu.Lock()
	cancel, stdout, done := s.cancel, s.stdout, s.done
	s.cancel, s.stdout, s.done = nil, nil, nil
	if cancel != nil {
		cancel()
	}
	s.mu.Unlock()

	if cancel == nil {
		return ErrNotSubscribed
	}
	// Grandchildren of sh may keep the pipe open after the kill.
	_ = stdout.Close()
	<-done
	return nil
}
