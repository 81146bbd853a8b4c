package workflow

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/nvlabs/deepwatch/internal/specialists"
)

// Develop orchestrates the /develop multi-step coding workflow: a git
// safety preflight, then the plan-then-implement flow already built into
// specialists.Caller.UseCodingAgent, then a completion summary. A
// standalone explore/plan/execute phase split collapses onto
// UseCodingAgent's own plan-then-implement loop here, since the coding
// specialist already owns that responsibility.
type Develop struct {
	Specialists *specialists.Caller
	WorkingDir  string
}

// Execute runs the preflight checks, then the plan/implement loop, and
// returns a completion summary. Auto-approves the generated plan, matching
// the original's "no UI - auto-approve" path.
func (d *Develop) Execute(ctx context.Context, request string) string {
	if msg, ok := d.preflight(); !ok {
		return msg
	}

	if d.Specialists == nil {
		return "Error: no coding specialist configured."
	}

	warning := ""
	if d.hasUncommittedChanges() {
		warning = "\nWarning: you have uncommitted changes; consider committing or stashing before review.\n"
	}

	result, err := d.Specialists.UseCodingAgent(ctx, request, specialists.DefaultPresenter{})
	if err != nil {
		return fmt.Sprintf("Development failed: %v", err)
	}

	return warning + formatDevelopSummary(result)
}

func (d *Develop) preflight() (string, bool) {
	if !d.isGitRepository() {
		return "Error: Not a git repository. /develop requires git for safety.\nRun 'git init' to initialize a repository.", false
	}
	return "", true
}

func (d *Develop) isGitRepository() bool {
	cmd := exec.Command("git", "rev-parse", "--git-dir")
	cmd.Dir = d.WorkingDir
	return cmd.Run() == nil
}

func (d *Develop) hasUncommittedChanges() bool {
	cmd := exec.Command("git", "status", "--porcelain")
	cmd.Dir = d.WorkingDir
	out, err := cmd.Output()
	if err != nil {
		return false
	}
	return strings.TrimSpace(string(out)) != ""
}

func formatDevelopSummary(planAndImplementation string) string {
	var b strings.Builder
	b.WriteString("\n" + strings.Repeat("=", 60) + "\n")
	b.WriteString("DEVELOPMENT COMPLETE\n")
	b.WriteString(strings.Repeat("=", 60) + "\n\n")
	b.WriteString(planAndImplementation)
	b.WriteString("\n\nNext steps:\n")
	b.WriteString("  1. Review the changes above\n")
	b.WriteString("  2. Test the changes\n")
	b.WriteString("  3. Review and commit:\n")
	b.WriteString("     git status\n")
	b.WriteString("     git diff\n")
	b.WriteString("     git add .\n")
	b.WriteString("     git commit -m \"your message\"\n")
	return b.String()
}
