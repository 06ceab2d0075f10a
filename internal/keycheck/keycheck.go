// Package keycheck validates chat-completion API credentials by issuing one
// probe request per provider against its fixed endpoint.
package keycheck

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/deeplifeai/repojson/internal/types"
)

const (
	// OpenAIProviderName identifies the OpenAI provider in results.
	OpenAIProviderName = "OpenAI"
	// PerplexityProviderName identifies the Perplexity provider in results.
	PerplexityProviderName = "Perplexity"

	openAIEndpointURL     = "https://api.openai.com/v1/chat/completions"
	perplexityEndpointURL = "https://api.perplexity.ai/chat/completions"
	openAIModelName       = "gpt-3.5-turbo"
	perplexityModelName   = "sonar"
	openAIMaxTokens       = 10

	probeMessageRole    = "user"
	probeMessageContent = "Say hello"

	contentTypeHeaderName  = "Content-Type"
	contentTypeJSON        = "application/json"
	authorizationHeader    = "Authorization"
	bearerSchemePrefix     = "Bearer "
	maskedKeySeparator     = "..."
	maskedKeyPrefixLength  = 5
	maskedKeySuffixLength  = 4
	minimumMaskedKeyLength = maskedKeyPrefixLength + maskedKeySuffixLength + 1

	// DefaultRequestTimeout bounds each probe request.
	DefaultRequestTimeout = 10 * time.Second

	// messageRequestFailedFormat reports a request that never produced a response.
	messageRequestFailedFormat = "request failed: %v"
	// messageStatusFormat reports a non-success HTTP status.
	messageStatusFormat = "HTTP %d"
	// messageStatusWithDetailFormat reports a non-success HTTP status with the provider's error message.
	messageStatusWithDetailFormat = "HTTP %d: %s"
	// messageMalformedResponse reports a success status with an unusable body.
	messageMalformedResponse = "malformed response body"
)

// Provider describes one fixed chat-completion endpoint used to probe a
// credential.
type Provider struct {
	Name        string
	EndpointURL string
	Model       string
	MaxTokens   int
}

// OpenAIProvider returns the OpenAI chat-completion provider.
func OpenAIProvider() Provider {
	return Provider{
		Name:        OpenAIProviderName,
		EndpointURL: openAIEndpointURL,
		Model:       openAIModelName,
		MaxTokens:   openAIMaxTokens,
	}
}

// PerplexityProvider returns the Perplexity chat-completion provider.
func PerplexityProvider() Provider {
	return Provider{
		Name:        PerplexityProviderName,
		EndpointURL: perplexityEndpointURL,
		Model:       perplexityModelName,
	}
}

// Credential pairs a provider with the API key to validate.
type Credential struct {
	Provider Provider
	APIKey   string
}

// MaskKey hides the middle of an API key, keeping at most the first five and
// last four characters. Keys too short to carry a distinct suffix reveal only
// their prefix followed by the separator.
func MaskKey(apiKey string) string {
	prefixEnd := maskedKeyPrefixLength
	if len(apiKey) < prefixEnd {
		prefixEnd = len(apiKey)
	}
	maskedKey := apiKey[:prefixEnd] + maskedKeySeparator
	if len(apiKey) >= minimumMaskedKeyLength {
		maskedKey += apiKey[len(apiKey)-maskedKeySuffixLength:]
	}
	return maskedKey
}

type chatCompletionRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Checker issues probe requests against provider endpoints. Each credential
// gets exactly one request, bounded by the configured timeout; there are no
// retries.
type Checker struct {
	httpClient *http.Client
}

// NewChecker returns a Checker whose probe requests are bounded by
// requestTimeout. Non-positive timeouts fall back to DefaultRequestTimeout.
func NewChecker(requestTimeout time.Duration) *Checker {
	if requestTimeout <= 0 {
		requestTimeout = DefaultRequestTimeout
	}
	return &Checker{
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

// CheckCredential issues one probe request and returns the validity verdict.
// A credential is valid only when the provider answers HTTP 200 with a body
// carrying at least one completion choice. Network failures and non-success
// statuses produce invalid verdicts rather than errors.
func (checker *Checker) CheckCredential(requestContext context.Context, credential Credential) types.KeyCheckResult {
	result := types.KeyCheckResult{ProviderName: credential.Provider.Name}

	probePayload := chatCompletionRequest{
		Model:     credential.Provider.Model,
		Messages:  []chatMessage{{Role: probeMessageRole, Content: probeMessageContent}},
		MaxTokens: credential.Provider.MaxTokens,
	}
	encodedPayload, marshalError := json.Marshal(probePayload)
	if marshalError != nil {
		result.Message = fmt.Sprintf(messageRequestFailedFormat, marshalError)
		return result
	}

	probeRequest, requestError := http.NewRequestWithContext(requestContext, http.MethodPost, credential.Provider.EndpointURL, bytes.NewReader(encodedPayload))
	if requestError != nil {
		result.Message = fmt.Sprintf(messageRequestFailedFormat, requestError)
		return result
	}
	probeRequest.Header.Set(contentTypeHeaderName, contentTypeJSON)
	probeRequest.Header.Set(authorizationHeader, bearerSchemePrefix+credential.APIKey)

	probeResponse, transportError := checker.httpClient.Do(probeRequest)
	if transportError != nil {
		result.Message = fmt.Sprintf(messageRequestFailedFormat, transportError)
		return result
	}
	defer probeResponse.Body.Close()
	result.StatusCode = probeResponse.StatusCode

	var decodedResponse chatCompletionResponse
	decodeError := json.NewDecoder(probeResponse.Body).Decode(&decodedResponse)

	if probeResponse.StatusCode != http.StatusOK {
		if decodeError == nil && decodedResponse.Error != nil && decodedResponse.Error.Message != "" {
			result.Message = fmt.Sprintf(messageStatusWithDetailFormat, probeResponse.StatusCode, decodedResponse.Error.Message)
		} else {
			result.Message = fmt.Sprintf(messageStatusFormat, probeResponse.StatusCode)
		}
		return result
	}
	if decodeError != nil || len(decodedResponse.Choices) == 0 {
		result.Message = messageMalformedResponse
		return result
	}

	result.Valid = true
	result.Message = decodedResponse.Choices[0].Message.Content
	return result
}

// CheckAll validates the provided credentials, one request per provider,
// running independent providers concurrently. Results are returned in input
// order.
func (checker *Checker) CheckAll(requestContext context.Context, credentials []Credential) []types.KeyCheckResult {
	results := make([]types.KeyCheckResult, len(credentials))
	group, groupContext := errgroup.WithContext(requestContext)
	for credentialIndex, credential := range credentials {
		credentialIndex, credential := credentialIndex, credential
		group.Go(func() error {
			results[credentialIndex] = checker.CheckCredential(groupContext, credential)
			return nil
		})
	}
	_ = group.Wait()
	return results
}
