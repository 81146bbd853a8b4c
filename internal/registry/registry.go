// Package registry holds the tool dispatch table: function lookup, alias
// resolution, and per-call parameter repair. Built-in tools are registered
// from internal/tools and internal/specialists; dispatch cross-cutting
// concerns (truncation, read-before-edit, event emission) live in
// dispatcher.go.
package registry

import (
	"fmt"
	"sort"

	"github.com/nvlabs/deepwatch/agent"
)

// ToolFunc is the shape every registered tool implements: JSON-arguments in,
// string result out, with the caller's *Session for cwd and read tracking.
type ToolFunc func(session *Session, args map[string]interface{}) (string, error)

// Registry holds the function table: name-indexed maps plus an alias table,
// in place of a flat []*agent.Tool slice lookup.
type Registry struct {
	functions map[string]ToolFunc
	specs     map[string]agent.ToolSpec
	aliases   map[string]string
}

// defaultAliases is carried over unchanged from the original tool registry's
// TOOL_ALIASES table: shorthand names users and older prompts still use.
var defaultAliases = map[string]string{
	"search":       "use_search_model",
	"generate_code": "use_codestral",
	"plan":         "use_reasoning_model",
	"pwd":          "get_working_directory",
}

// New builds an empty Registry pre-seeded with the standard aliases.
func New() *Registry {
	r := &Registry{
		functions: make(map[string]ToolFunc),
		specs:     make(map[string]agent.ToolSpec),
		aliases:   make(map[string]string, len(defaultAliases)),
	}
	for k, v := range defaultAliases {
		r.aliases[k] = v
	}
	return r
}

// Register adds a tool under its canonical name.
func (r *Registry) Register(spec agent.ToolSpec, fn ToolFunc) {
	r.functions[spec.Name] = fn
	r.specs[spec.Name] = spec
}

// Alias adds (or overrides) a shorthand name pointing at a canonical tool.
func (r *Registry) Alias(short, canonical string) {
	r.aliases[short] = canonical
}

// resolve maps a possibly-aliased name to its canonical registered name.
func (r *Registry) resolve(name string) string {
	if canonical, ok := r.aliases[name]; ok {
		return canonical
	}
	return name
}

// Lookup returns the handler for name (resolving aliases), or false if
// nothing is registered under it.
func (r *Registry) Lookup(name string) (ToolFunc, bool) {
	fn, ok := r.functions[r.resolve(name)]
	return fn, ok
}

// Spec returns the registered ToolSpec for name (resolving aliases).
func (r *Registry) Spec(name string) (agent.ToolSpec, bool) {
	spec, ok := r.specs[r.resolve(name)]
	return spec, ok
}

// Specs returns every registered tool's spec, sorted by name for stable
// output (e.g. when rendered into a system prompt's tool list).
func (r *Registry) Specs() []agent.ToolSpec {
	out := make([]agent.ToolSpec, 0, len(r.specs))
	for _, s := range r.specs {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ErrUnknownTool is returned by Dispatcher.Call when neither the name nor
// any alias resolves to a registered function.
type ErrUnknownTool struct {
	Name string
}

func (e *ErrUnknownTool) Error() string {
	return fmt.Sprintf("unknown tool: %s", e.Name)
}
