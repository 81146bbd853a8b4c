package tools

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/nvlabs/deepwatch/internal/errs"
	"github.com/nvlabs/deepwatch/internal/registry"
)

// safeVerbs is the hard-coded whitelist of first words run_shell accepts.
var safeVerbs = map[string]struct{}{
	"ls": {}, "pwd": {}, "echo": {}, "cat": {}, "grep": {}, "find": {},
	"wc": {}, "head": {}, "tail": {}, "python": {}, "python3": {},
	"node": {}, "npm": {}, "git": {}, "pytest": {}, "black": {},
	"flake8": {}, "mkdir": {}, "cd": {}, "touch": {}, "mv": {}, "cp": {},
}

// bannedSubstrings blocks destructive or shell-metacharacter-chaining
// commands regardless of which verb they're attached to.
var bannedSubstrings = []string{
	"rm ", "sudo", "su ", "shutdown", "reboot", "chmod 777", "chown",
	"kill -9", ">", ">>", "|", ";", "&&", "||", "`", "$(", "mkfs",
	"dd if=", "dd of=", "format", "deltree",
}

const shellTimeout = 30 * time.Second

// RunShell executes a whitelisted shell command with a timeout, grounded on
// agent/tools/http.go's timeout-guarded exec pattern.
func RunShell(session *registry.Session, args map[string]interface{}) (string, error) {
	command, ok := argString(args, "command")
	if !ok || strings.TrimSpace(command) == "" {
		return "", &errs.InvalidArgumentError{Reason: "run_shell requires command"}
	}

	if err := validateShellCommand(command); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(context.Background(), shellTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = session.Cwd()

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	output := stdout.String()
	if stderr.Len() > 0 {
		output += "\n[stderr]\n" + stderr.String()
	}

	if ctx.Err() == context.DeadlineExceeded {
		return "", &errs.InvalidArgumentError{Reason: "run_shell timed out after 30s"}
	}
	if runErr != nil {
		return output, &errs.InvalidArgumentError{Reason: "command exited with error: " + runErr.Error()}
	}
	return output, nil
}

func validateShellCommand(command string) error {
	for _, banned := range bannedSubstrings {
		if strings.Contains(command, banned) {
			return &errs.InvalidArgumentError{Reason: "command contains banned substring: " + banned}
		}
	}

	fields := strings.Fields(command)
	if len(fields) == 0 {
		return &errs.InvalidArgumentError{Reason: "empty command"}
	}
	if _, ok := safeVerbs[fields[0]]; !ok {
		return &errs.InvalidArgumentError{Reason: "command verb not in whitelist: " + fields[0]}
	}
	return nil
}
