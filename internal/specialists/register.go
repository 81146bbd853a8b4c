package specialists

import (
	"context"
	"fmt"

	"github.com/nvlabs/deepwatch/agent"
	"github.com/nvlabs/deepwatch/internal/registry"
)

func argString(args map[string]interface{}, key string) string {
	v, _ := args[key].(string)
	return v
}

// RegisterAll wires the seven specialist tools into reg, each closing over
// c to resolve its endpoint from config.Config.
func RegisterAll(reg *registry.Registry, c *Caller) {
	reg.Register(agent.ToolSpec{
		Name:         "use_reasoning_model",
		Description:  "Delegate analysis, planning, or deep-dive requests to the configured reasoning model.",
		IsSpecialist: true,
	}, func(session *registry.Session, args map[string]interface{}) (string, error) {
		return c.UseReasoningModel(context.Background(), argString(args, "task"))
	})

	reg.Register(agent.ToolSpec{
		Name:         "use_search_model",
		Description:  "Answer a general-knowledge question using the configured search-role model.",
		IsSpecialist: true,
	}, func(session *registry.Session, args map[string]interface{}) (string, error) {
		return c.UseSearchModel(context.Background(), argString(args, "query"))
	})

	reg.Register(agent.ToolSpec{
		Name:         "use_coding_agent",
		Description:  "Generate or refactor code with the configured coding model, with plan approval.",
		IsSpecialist: true,
	}, func(session *registry.Session, args map[string]interface{}) (string, error) {
		return c.UseCodingAgent(context.Background(), argString(args, "code_context"), DefaultPresenter{})
	})

	reg.Register(agent.ToolSpec{
		Name:        "use_intent_detector",
		Description: "Classify a user request into a candidate tool name using a fast small model.",
	}, func(session *registry.Session, args map[string]interface{}) (string, error) {
		result := c.UseIntentDetector(context.Background(), argString(args, "user_input"), argString(args, "recent_context"))
		return fmt.Sprintf(`{"tool": %q, "confidence": %q, "reasoning": %q}`, result.Tool, result.Confidence, result.Reasoning), nil
	})

	reg.Register(agent.ToolSpec{
		Name:         "use_nehanda",
		Description:  "Analyze energy policy and regulatory compliance questions using Nehanda RAG.",
		IsSpecialist: true,
	}, func(session *registry.Session, args map[string]interface{}) (string, error) {
		return c.UseNehanda(context.Background(), argString(args, "query"))
	})

	reg.Register(agent.ToolSpec{
		Name:         "generate_image",
		Description:  "Generate a new image from a text prompt.",
		IsSpecialist: true,
	}, func(session *registry.Session, args map[string]interface{}) (string, error) {
		return c.GenerateImage(context.Background(), argString(args, "prompt"))
	})

	reg.Register(agent.ToolSpec{
		Name:         "analyze_image",
		Description:  "Analyze, describe, or OCR an existing image given as a data URI or URL.",
		IsSpecialist: true,
	}, func(session *registry.Session, args map[string]interface{}) (string, error) {
		return c.AnalyzeImage(context.Background(), argString(args, "image_url"), argString(args, "instruction"))
	})
}
