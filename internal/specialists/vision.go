package specialists

import (
	"context"
	"fmt"

	"github.com/nvlabs/deepwatch/agent"
	"github.com/nvlabs/deepwatch/internal/errs"
)

const visionSystemPrompt = `You are an expert at describing and extracting information from images. Be precise about what is actually visible; do not guess at details you cannot see.`

// AnalyzeImage sends an image (as a data: URI or http(s) URL, e.g. from
// tools.ReadImage) to the configured vision-capable role along with an
// instruction, and returns its description/extraction.
func (c *Caller) AnalyzeImage(ctx context.Context, imageURL, instruction string) (string, error) {
	if imageURL == "" {
		return "", &errs.InvalidArgumentError{Reason: "image_url must be non-empty"}
	}
	if instruction == "" {
		instruction = "Describe what is in this image in detail."
	}

	adapter, ep, err := c.adapterFor("analyze_image")
	if err != nil {
		return "", err
	}

	req := &agent.CompletionRequest{
		Model:  ep.Model,
		System: visionSystemPrompt,
		Messages: []agent.Message{
			{
				Role: "user",
				Parts: []agent.ContentPart{
					{Type: "text", Text: instruction},
					{Type: "image", ImageURL: imageURL},
				},
			},
		},
	}

	resp, err := adapter.Complete(ctx, req)
	if err != nil {
		return "", err
	}
	return StripThinking(resp.Content), nil
}

// GenerateImage requests an image from a text prompt via the configured
// image-generation role. The adapter is expected to return the image as a
// data: URI or hosted URL in the response content, matching how
// OpenAI-compatible image endpoints are normally proxied through a chat
// completion shim in this orchestrator's deployments.
func (c *Caller) GenerateImage(ctx context.Context, prompt string) (string, error) {
	if prompt == "" {
		return "", &errs.InvalidArgumentError{Reason: "prompt must be non-empty"}
	}

	adapter, ep, err := c.adapterFor("generate_image")
	if err != nil {
		return "", err
	}

	resp, err := adapter.Complete(ctx, &agent.CompletionRequest{
		Model:    ep.Model,
		Messages: []agent.Message{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", err
	}
	if resp.Content == "" {
		return "", &errs.InvalidResponseError{Reason: fmt.Sprintf("image generation role %q returned no content", "generate_image")}
	}
	return resp.Content, nil
}
