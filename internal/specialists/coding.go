package specialists

import (
	"context"
	"fmt"
)

const planningSystemPrompt = "You are a software architect. Create clear, actionable implementation plans. Be concise and specific."

const codingSystemPrompt = "You are an expert software engineer. Generate clean, well-documented, production-quality code. Include docstrings and comments for complex logic. Do NOT include thinking or planning - just provide the implementation."

// PlanChoice is a user's response to a proposed implementation plan.
type PlanChoice string

const (
	PlanAccept PlanChoice = "accept"
	PlanModify PlanChoice = "modify"
	PlanCancel PlanChoice = "cancel"
)

// PlanPresenter decides what happens to a generated plan: accept it as-is,
// request modifications (returning the requested changes), or cancel the
// whole coding task. The out-of-scope interactive UI implements this against
// a real terminal prompt; DefaultPresenter gives headless callers a sane
// default.
type PlanPresenter interface {
	Review(ctx context.Context, plan string) (PlanChoice, string, error)
}

// DefaultPresenter always accepts the first plan generated — the headless
// default used when no interactive UI is wired in.
type DefaultPresenter struct{}

func (DefaultPresenter) Review(ctx context.Context, plan string) (PlanChoice, string, error) {
	return PlanAccept, "", nil
}

// PlanLoop drives use_coding_agent's plan/accept/modify/cancel state
// machine: generate a plan with the reasoning role, hand it to presenter,
// and either finalize, regenerate with the requested changes, or abort.
func (c *Caller) PlanLoop(ctx context.Context, codeContext string, presenter PlanPresenter) (string, error) {
	if presenter == nil {
		presenter = DefaultPresenter{}
	}

	prompt := planningPrompt(codeContext, "")
	for {
		plan, err := c.completeRole(ctx, "use_reasoning_model", planningSystemPrompt, prompt)
		if err != nil {
			// Planning is best-effort: fall back to implementing directly.
			return "", nil
		}

		choice, modifications, err := presenter.Review(ctx, plan)
		if err != nil {
			return "", err
		}
		switch choice {
		case PlanAccept:
			return plan, nil
		case PlanModify:
			prompt = planningPrompt(codeContext, modifications)
			continue
		case PlanCancel:
			return "", errCancelled
		default:
			return "", fmt.Errorf("specialists: unknown plan choice %q", choice)
		}
	}
}

var errCancelled = fmt.Errorf("implementation cancelled by user")

func planningPrompt(codeContext, modifications string) string {
	base := fmt.Sprintf(`Create a detailed implementation plan for the following coding task:

%s

Provide a clear, structured plan that includes:
1. Overview of the approach
2. Key components/functions to implement
3. Important considerations (edge cases, error handling, etc.)
4. Any assumptions being made

Keep the plan concise but complete (aim for 5-15 bullet points).`, codeContext)
	if modifications == "" {
		return base
	}
	return fmt.Sprintf(`%s

User requested these modifications to the previous plan:
%s`, base, modifications)
}

const codeEditorSystemPrompt = "You are a code editor. Your ONLY job is to output OLD_CODE and NEW_CODE blocks. Do not explain or discuss - just output the exact format requested."

// EditCode calls the coding role directly with a fixed editor system
// prompt, bypassing the plan/accept loop, for simple edits that don't
// warrant UseCodingAgent's full planning phase.
func (c *Caller) EditCode(ctx context.Context, prompt string) (string, error) {
	return c.completeRole(ctx, "use_coding_agent", codeEditorSystemPrompt, prompt)
}

// UseCodingAgent runs the two-phase plan-then-implement flow: a plan is
// generated and passed through presenter, then the implementation is
// streamed from the "use_coding_agent" role, optionally seeded by the
// approved plan.
func (c *Caller) UseCodingAgent(ctx context.Context, codeContext string, presenter PlanPresenter) (string, error) {
	if codeContext == "" {
		return "", fmt.Errorf("specialists: code_context must be non-empty")
	}
	if len(codeContext) > 30000 {
		return "", fmt.Errorf("specialists: code_context too long (max 30000 characters)")
	}

	plan, err := c.PlanLoop(ctx, codeContext, presenter)
	if err == errCancelled {
		return "Implementation cancelled by user", nil
	}
	if err != nil {
		return "", err
	}

	codePrompt := codeContext
	if plan != "" {
		codePrompt = fmt.Sprintf(`Based on the following approved implementation plan:

%s

Now implement the solution for:
%s

Generate clean, well-documented, production-quality code. Include docstrings and comments for complex logic.`, plan, codeContext)
	}

	return c.streamRole(ctx, "use_coding_agent", codingSystemPrompt, codePrompt)
}
