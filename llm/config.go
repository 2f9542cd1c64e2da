package llm

// Builder defaults. Token ceilings are the caller's responsibility: the
// builders do not validate them.
const (
	DefaultChatGPTModel    = "gpt-5-mini-2025-08-07"
	DefaultAnthropicModel  = "claude-2.1"
	DefaultSystemMessage   = "You are a helpful assistant."
	DefaultReasoningEffort = "minimal"
	DefaultTemperature     = 1.0
)

// ChatGPTConfig is the request payload for the OpenAI-style chat completion
// call. It is submitted unchanged; only the token-budget-bump retry of
// OpenAIClient mutates it in place.
type ChatGPTConfig struct {
	Model string `json:"model"`

	// MaxCompletionTokens is the token ceiling for the response, reasoning
	// tokens included.
	MaxCompletionTokens int `json:"max_completion_tokens"`

	// MaxTokens is the legacy ceiling field. Unset on the initial request;
	// the budget-bump retry raises both fields because provider schemas
	// disagree on which one is honored.
	MaxTokens int `json:"max_tokens,omitempty"`

	// N is the number of sampled completions.
	N int `json:"n"`

	ReasoningEffort string    `json:"reasoning_effort,omitempty"`
	Messages        []Message `json:"messages"`
}

type chatGPTOptions struct {
	model         string
	systemMessage string
	effort        string
	batchSize     int
}

// ChatGPTOption adjusts the defaults of the OpenAI-style config builders.
type ChatGPTOption func(*chatGPTOptions)

// WithModel overrides the OpenAI model identifier.
func WithModel(model string) ChatGPTOption {
	return func(o *chatGPTOptions) {
		o.model = model
	}
}

// WithSystemMessage overrides the system message prepended to the prompt.
func WithSystemMessage(msg string) ChatGPTOption {
	return func(o *chatGPTOptions) {
		o.systemMessage = msg
	}
}

// WithReasoningEffort overrides the reasoning-effort hint.
func WithReasoningEffort(effort string) ChatGPTOption {
	return func(o *chatGPTOptions) {
		o.effort = effort
	}
}

// WithBatchSize overrides the number of sampled completions.
func WithBatchSize(n int) ChatGPTOption {
	return func(o *chatGPTOptions) {
		o.batchSize = n
	}
}

func buildChatGPTOptions(opts []ChatGPTOption) chatGPTOptions {
	o := chatGPTOptions{
		model:         DefaultChatGPTModel,
		systemMessage: DefaultSystemMessage,
		effort:        DefaultReasoningEffort,
		batchSize:     1,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewChatGPTConfig assembles an OpenAI-style request from a pre-built
// message list. The system message is prepended to the caller's messages.
func NewChatGPTConfig(messages []Message, maxTokens int, opts ...ChatGPTOption) *ChatGPTConfig {
	o := buildChatGPTOptions(opts)

	msgs := make([]Message, 0, len(messages)+1)
	msgs = append(msgs, Message{Role: RoleSystem, Content: o.systemMessage})
	msgs = append(msgs, messages...)

	return &ChatGPTConfig{
		Model:               o.model,
		MaxCompletionTokens: maxTokens,
		N:                   o.batchSize,
		ReasoningEffort:     o.effort,
		Messages:            msgs,
	}
}

// NewChatGPTConfigFromPrompt assembles an OpenAI-style request from a single
// prompt string, wrapped as [system, user(prompt)].
func NewChatGPTConfigFromPrompt(prompt string, maxTokens int, opts ...ChatGPTOption) *ChatGPTConfig {
	o := buildChatGPTOptions(opts)

	return &ChatGPTConfig{
		Model:               o.model,
		MaxCompletionTokens: maxTokens,
		N:                   o.batchSize,
		ReasoningEffort:     o.effort,
		Messages: []Message{
			{Role: RoleSystem, Content: o.systemMessage},
			{Role: RoleUser, Content: prompt},
		},
	}
}

// AnthropicConfig is the request payload for the Anthropic messages call.
type AnthropicConfig struct {
	Model       string             `json:"model"`
	Temperature float64            `json:"temperature"`
	MaxTokens   int                `json:"max_tokens"`
	Messages    []AnthropicMessage `json:"messages"`
	Tools       []Tool             `json:"tools,omitempty"`
}

type anthropicOptions struct {
	model       string
	temperature float64
	tools       []Tool
}

// AnthropicOption adjusts the defaults of the Anthropic config builders.
type AnthropicOption func(*anthropicOptions)

// WithAnthropicModel overrides the Anthropic model identifier.
func WithAnthropicModel(model string) AnthropicOption {
	return func(o *anthropicOptions) {
		o.model = model
	}
}

// WithTemperature overrides the sampling temperature.
func WithTemperature(t float64) AnthropicOption {
	return func(o *anthropicOptions) {
		o.temperature = t
	}
}

// WithTools declares tools the model may invoke.
func WithTools(tools []Tool) AnthropicOption {
	return func(o *anthropicOptions) {
		o.tools = tools
	}
}

func buildAnthropicOptions(opts []AnthropicOption) anthropicOptions {
	o := anthropicOptions{
		model:       DefaultAnthropicModel,
		temperature: DefaultTemperature,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewAnthropicConfig assembles an Anthropic request from a pre-built message
// list. The list is passed through unmodified; no system entry is injected.
func NewAnthropicConfig(messages []AnthropicMessage, maxTokens int, opts ...AnthropicOption) *AnthropicConfig {
	o := buildAnthropicOptions(opts)

	return &AnthropicConfig{
		Model:       o.model,
		Temperature: o.temperature,
		MaxTokens:   maxTokens,
		Messages:    messages,
		Tools:       o.tools,
	}
}

// NewAnthropicConfigFromPrompt assembles an Anthropic request from a single
// prompt string, wrapped as one user message with one text block.
func NewAnthropicConfigFromPrompt(prompt string, maxTokens int, opts ...AnthropicOption) *AnthropicConfig {
	o := buildAnthropicOptions(opts)

	return &AnthropicConfig{
		Model:       o.model,
		Temperature: o.temperature,
		MaxTokens:   maxTokens,
		Messages: []AnthropicMessage{
			{Role: RoleUser, Content: []ContentBlock{TextBlock(prompt)}},
		},
		Tools: o.tools,
	}
}
