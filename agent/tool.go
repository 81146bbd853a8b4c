package agent

// Tool represents a function that the LLM can call. Name/Description/
// Parameters are the JSON-schema triple providers marshal into their
// wire-specific tool-calling format; IsSpecialist marks a tool whose result
// is forwarded verbatim to the user as the turn's final answer, rather than
// truncated and fed back into the orchestrating model.
type Tool struct {
	Name         string
	Description  string
	Parameters   map[string]interface{}
	IsSpecialist bool
}

// Spec returns the ToolSpec describing this tool's public contract: the
// name/description/parameters triple the router and dispatcher reason
// about.
func (t *Tool) Spec() ToolSpec {
	return ToolSpec{
		Name:         t.Name,
		Description:  t.Description,
		Parameters:   t.Parameters,
		IsSpecialist: t.IsSpecialist,
	}
}

// ToolSpec is the JSON-schema-shaped public contract of a tool: its name,
// description, and parameter schema, plus whether it is a specialist tool.
type ToolSpec struct {
	Name         string
	Description  string
	Parameters   map[string]interface{}
	IsSpecialist bool
}
