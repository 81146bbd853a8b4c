package agent

// Message represents a chat message in the conversation.
// This is our own type to avoid users needing to import openai-go.
type Message struct {
	Role       string     // "system", "user", "assistant", or "tool"
	Content    string     // The message content (text; may be empty when ToolCalls is set)
	Name       string     // Optional name of the tool/participant that produced this message
	ToolCalls  []ToolCall // Tool calls made by assistant (only for assistant messages)
	ToolCallID string     // ID of the tool call this message is responding to (only for tool messages)
	Parts      []ContentPart // Optional structured multimodal parts (images, etc.); Content is used when empty
}

// ContentPart is one piece of a multimodal message (e.g. an image alongside text).
type ContentPart struct {
	Type     string // "text" or "image"
	Text     string // set when Type == "text"
	ImageURL string // set when Type == "image"; may be a data: URL or http(s) URL
}
