// Package shell runs the external tools the pipeline delegates to.
package shell

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	logger "github.com/sirupsen/logrus"

	"github.com/specwatch/specwatch/domain"
)

// Runner implements domain.CommandRunner on top of os/exec.
type Runner struct{}

// New creates a new shell runner.
func New() domain.CommandRunner {
	return &Runner{}
}

// Run executes the command in dir, capturing combined output. The output is
// logged at debug level on success and attached to the error on failure.
func (r *Runner) Run(ctx context.Context, dir string, command []string) error {
	if len(command) == 0 {
		return errors.New("command must have at least one element")
	}

	logger.Debugf("[shell] Running %q in %q", strings.Join(command, " "), dir)

	cmd := exec.CommandContext(ctx, command[0], command[1:]...)
	cmd.Dir = dir

	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf(
			"command %q failed: %w\n%s",
			strings.Join(command, " "), err, strings.TrimSpace(string(output)),
		)
	}

	if len(output) > 0 {
		logger.Debugf("[shell] %s", strings.TrimSpace(string(output)))
	}
	return nil
}
