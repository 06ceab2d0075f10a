// Package tokenizer estimates token counts for serialized snapshot documents.
package tokenizer

import (
	"fmt"
	"strings"

	"github.com/pkoukk/tiktoken-go"
)

// Counter estimates token counts for text content.
type Counter interface {
	Name() string
	CountString(input string) (int, error)
}

const (
	defaultModel        = "gpt-4o"
	defaultEncodingName = "cl100k_base"

	// errorFallbackEncodingFormat reports failure to initialize the fallback encoding.
	errorFallbackEncodingFormat = "initialize fallback tokenizer: %w"
)

type encodingCounter struct {
	encoding *tiktoken.Tiktoken
	name     string
}

// Name returns the encoding or model name backing the counter.
func (counter encodingCounter) Name() string {
	return counter.name
}

// CountString returns the number of tokens in the provided text.
func (counter encodingCounter) CountString(input string) (int, error) {
	return len(counter.encoding.Encode(input, nil, nil)), nil
}

// NewCounter returns a Counter for the requested model together with the
// resolved encoding name. Models without a dedicated tiktoken encoding fall
// back to cl100k_base.
func NewCounter(model string) (Counter, string, error) {
	trimmedModel := strings.TrimSpace(model)
	if trimmedModel == "" {
		trimmedModel = defaultModel
	}
	lowerModel := strings.ToLower(trimmedModel)

	modelEncoding, encodingError := tiktoken.EncodingForModel(lowerModel)
	if encodingError == nil && modelEncoding != nil {
		return encodingCounter{encoding: modelEncoding, name: lowerModel}, lowerModel, nil
	}

	fallbackEncoding, fallbackError := tiktoken.GetEncoding(defaultEncodingName)
	if fallbackError != nil {
		return nil, "", fmt.Errorf(errorFallbackEncodingFormat, fallbackError)
	}
	return encodingCounter{encoding: fallbackEncoding, name: defaultEncodingName}, defaultEncodingName, nil
}
