package scoring

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"regional-pulse/analytics"
	"regional-pulse/apperrors"
)

const (
	DefaultModel = "deepseek-chat"

	serviceName = "sentiment model"

	// maxPromptRunes keeps long article bodies within the model context.
	maxPromptRunes = 2000
)

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// HTTPScorer asks a chat-completions endpoint for the probability that an
// article is positive and converts it from [0, 1] onto [-1, 1].
type HTTPScorer struct {
	endpoint string
	apiKey   string
	model    string
	client   *http.Client
}

func NewHTTPScorer(endpoint, apiKey, model string, timeout time.Duration) *HTTPScorer {
	if model == "" {
		model = DefaultModel
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPScorer{
		endpoint: endpoint,
		apiKey:   apiKey,
		model:    model,
		client:   &http.Client{Timeout: timeout},
	}
}

func (h *HTTPScorer) Score(ctx context.Context, text string) (float64, error) {
	body, err := json.Marshal(chatRequest{
		Model: h.model,
		Messages: []chatMessage{
			{Role: "system", Content: "You are a sentiment classifier for Korean regional news. Reply with a single number only."},
			{Role: "user", Content: scoringPrompt(text)},
		},
	})
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if h.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+h.apiKey)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return 0, apperrors.NewUnavailableError(serviceName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return 0, apperrors.NewUnavailableError(serviceName, fmt.Errorf("status %d: %s", resp.StatusCode, msg))
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return 0, apperrors.NewUnavailableError(serviceName, fmt.Errorf("decode response: %w", err))
	}
	if len(parsed.Choices) == 0 {
		return 0, apperrors.NewUnavailableError(serviceName, fmt.Errorf("no choices in response"))
	}

	p, err := parseProbability(parsed.Choices[0].Message.Content)
	if err != nil {
		return 0, err
	}
	return analytics.UnitScale.Convert(p, analytics.SignedScale), nil
}

func scoringPrompt(text string) string {
	runes := []rune(text)
	if len(runes) > maxPromptRunes {
		runes = runes[:maxPromptRunes]
	}
	return fmt.Sprintf(`Rate how positive this article is for the local economy and community.
Answer with a probability between 0 (clearly negative) and 1 (clearly positive).

Article:
%s`, string(runes))
}

var numberPattern = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

// parseProbability reads the first number of a model reply.
func parseProbability(reply string) (float64, error) {
	match := numberPattern.FindString(reply)
	if match == "" {
		return 0, apperrors.NewValidationError(fmt.Sprintf("model reply has no score: %q", reply))
	}
	p, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, apperrors.NewValidationError(fmt.Sprintf("model reply has no score: %q", reply))
	}
	return analytics.UnitScale.Clamp(p), nil
}
