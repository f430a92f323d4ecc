package notify

import (
	"context"
	"fmt"
	"os/exec"
)

// ExecSender shells out to a desktop notification command such as
// notify-send.
type ExecSender struct {
	Command string
}

// Send invokes the configured command with the notification title and body.
func (s *ExecSender) Send(ctx context.Context, n Notification) error {
	args := []string{}
	if n.Icon != "" {
		args = append(args, "-i", n.Icon)
	}
	args = append(args, n.Title, n.Body)

	cmd := exec.CommandContext(ctx, s.Command, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s failed: %w: %s", s.Command, err, out)
	}
	return nil
}

// FakeSender records notifications for tests.
type FakeSender struct {
	Sent []Notification
	Err  error
}

// Send records n, or fails with the configured error.
func (s *FakeSender) Send(_ context.Context, n Notification) error {
	if s.Err != nil {
		return s.Err
	}
	s.Sent = append(s.Sent, n)
	return nil
}
