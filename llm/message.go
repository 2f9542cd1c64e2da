package llm

// Message roles shared by both providers.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message represents an OpenAI-style chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// AnthropicMessage is a role-tagged list of content blocks, the message
// shape of the Anthropic messages API.
type AnthropicMessage struct {
	Role    string         `json:"role"`
	Content []ContentBlock `json:"content"`
}

// ContentBlock is a single content segment of an Anthropic message.
type ContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`

	// CacheControl marks the block as a prompt-cache boundary.
	CacheControl *CacheControl `json:"cache_control,omitempty"`
}

// CacheControl annotates a content block for prompt caching.
type CacheControl struct {
	Type string `json:"type"`
}

// TextBlock builds a plain text content block.
func TextBlock(text string) ContentBlock {
	return ContentBlock{Type: "text", Text: text}
}

// Tool declares a tool the Anthropic model may invoke.
type Tool struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	InputSchema map[string]any `json:"input_schema"`
}
