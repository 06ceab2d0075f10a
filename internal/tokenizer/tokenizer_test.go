package tokenizer_test

import (
	"testing"

	"github.com/deeplifeai/repojson/internal/tokenizer"
)

// TestNewCounterCountsTokens verifies counter construction and counting for
// the default model. Encoding data may need to be fetched on first use, so
// environments without network access skip instead of failing.
func TestNewCounterCountsTokens(testingInstance *testing.T) {
	tokenCounter, resolvedModel, counterError := tokenizer.NewCounter("gpt-4o")
	if counterError != nil {
		testingInstance.Skipf("tokenizer encoding unavailable: %v", counterError)
	}
	if resolvedModel == "" {
		testingInstance.Fatalf("expected a resolved model name")
	}
	if tokenCounter.Name() == "" {
		testingInstance.Fatalf("expected a counter name")
	}
	tokenCount, countError := tokenCounter.CountString("hello world")
	if countError != nil {
		testingInstance.Fatalf("CountString returned error: %v", countError)
	}
	if tokenCount <= 0 {
		testingInstance.Fatalf("expected a positive token count, got %d", tokenCount)
	}
}
