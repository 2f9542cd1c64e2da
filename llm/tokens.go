package llm

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// fallbackEncoding is used for models tiktoken does not know about.
const fallbackEncoding = "cl100k_base"

// CountTokens returns the number of tokens text encodes to under the given
// model's tokenizer, falling back to cl100k_base for unknown models.
func CountTokens(text, model string) (int, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding(fallbackEncoding)
		if err != nil {
			return 0, fmt.Errorf("load fallback encoding: %w", err)
		}
	}
	return len(enc.Encode(text, nil, nil)), nil
}

// CountMessageTokens estimates the token count of a message list by encoding
// the first message's content. A coarse estimate used for prompt budgeting,
// not exact accounting.
func CountMessageTokens(messages []Message, model string) (int, error) {
	if len(messages) == 0 {
		return 0, nil
	}
	return CountTokens(messages[0].Content, model)
}
