package loaders

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// runLoaderCommand executes a configured loader command for one path and
// returns its stdout. Commands containing "$1" have every occurrence
// replaced with the path; otherwise the path is appended as the final
// argument. Output is expected on stdout; a non-zero exit fails with the
// command's stderr.
func runLoaderCommand(ctx context.Context, command, path string) (string, error) {
	args := strings.Fields(command)
	if len(args) == 0 {
		return "", fmt.Errorf("empty loader command")
	}

	substituted := false
	for i, arg := range args {
		if strings.Contains(arg, "$1") {
			args[i] = strings.ReplaceAll(arg, "$1", path)
			substituted = true
		}
	}
	if !substituted {
		args = append(args, path)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return "", fmt.Errorf("loader command %q: %w: %s", args[0], err, msg)
		}
		return "", fmt.Errorf("loader command %q: %w", args[0], err)
	}
	return stdout.String(), nil
}
