package domain

import "context"

// CommandRunner executes one external tool invocation (generator, compiler,
// packager) to completion. The pipeline is strictly sequential: each command
// is awaited before the next step runs.
type CommandRunner interface {
	// Run executes the command in dir (empty = current directory) and
	// fails with the captured output on a non-zero exit.
	Run(ctx context.Context, dir string, command []string) error
}
