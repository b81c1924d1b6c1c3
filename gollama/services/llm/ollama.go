package llm

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	httputils "gollama/gollama/utils/http"
	"gollama/gollama/utils/logging"

	"go.uber.org/zap"
)

const (
	blockingTimeout = 30 * time.Second

	// Small delay between forwarded fragments so the UI renders visibly
	// incremental output even when the model replies in a burst.
	streamPacing = 20 * time.Millisecond

	maxStreamLine = 1 << 20

	emptyReply   = "[No response received.]"
	timeoutReply = "[Response took too long. Try again.]"
)

type OllamaClient struct {
	baseURL string
}

func NewOllamaClient(baseURL string) *OllamaClient {
	if baseURL == "" {
		baseURL = "http://localhost:11434/api"
	}
	return &OllamaClient{baseURL: baseURL}
}

type ChatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ChatResponse struct {
	Message Message `json:"message"`
	Done    bool    `json:"done"`
}

// Run performs one blocking generation. It never returns an error: every
// failure mode maps to a placeholder reply so the turn still produces a
// persisted bot message.
func (c *OllamaClient) Run(ctx context.Context, model, prompt string) string {
	defer logging.LogDuration(ctx, "ollama_run")()

	req := ChatRequest{
		Model:    model,
		Messages: []Message{{Role: "user", Content: prompt}},
		Stream:   false,
	}
	var resp ChatResponse
	if err := httputils.PostJSON(c.baseURL+"/chat", req, &resp, blockingTimeout); err != nil {
		logging.ErrorLogger.Error("ollama blocking call failed", zap.Error(err))
		if isTimeout(err) {
			return timeoutReply
		}
		return fmt.Sprintf("[Ollama error: %v]", err)
	}

	reply := strings.TrimSpace(resp.Message.Content)
	if reply == "" {
		return emptyReply
	}
	return reply
}

// RunStream opens a streaming generation and forwards message.content
// fragments on the returned channel as they arrive. The upstream body is
// newline-delimited JSON; lines not starting with '{' are noise and skipped,
// as are lines that fail to parse. Any failure emits a single inline error
// fragment and ends the stream. The channel is closed when upstream closes.
func (c *OllamaClient) RunStream(ctx context.Context, model, prompt string) <-chan string {
	defer logging.LogDuration(ctx, "ollama_run_stream")()

	ch := make(chan string)

	go func() {
		defer close(ch)

		req := ChatRequest{
			Model:    model,
			Messages: []Message{{Role: "user", Content: prompt}},
			Stream:   true,
		}
		body, err := httputils.PostStream(c.baseURL+"/chat", req)
		if err != nil {
			logging.ErrorLogger.Error("ollama stream call failed", zap.Error(err))
			ch <- fmt.Sprintf("[Error: %v]", err)
			return
		}
		defer body.Close()

		scanner := bufio.NewScanner(body)
		// A chunk carrying a large content payload can exceed the default
		// 64KB line cap.
		scanner.Buffer(make([]byte, 0, 64*1024), maxStreamLine)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || !strings.HasPrefix(line, "{") {
				continue
			}
			var chunk ChatResponse
			if err := json.Unmarshal([]byte(line), &chunk); err != nil {
				logging.ErrorLogger.Error("ollama stream JSON parse error",
					zap.Error(err), zap.String("raw_line", line))
				continue
			}
			ch <- chunk.Message.Content
			time.Sleep(streamPacing)
		}
		if err := scanner.Err(); err != nil {
			logging.ErrorLogger.Error("ollama stream read error", zap.Error(err))
			ch <- fmt.Sprintf("[Error: %v]", err)
		}
	}()

	return ch
}

func isTimeout(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return strings.Contains(err.Error(), "Client.Timeout exceeded")
}
