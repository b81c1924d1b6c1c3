package llm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"gollama/gollama/utils/logging"

	"github.com/stretchr/testify/assert"
)

func init() {
	logging.InitLogger()
}

func TestRunReturnsReply(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message":{"role":"assistant","content":"  hello back  "},"done":true}`))
	}))
	defer server.Close()

	client := NewOllamaClient(server.URL)
	reply := client.Run(context.Background(), "phi:latest", "hello")
	assert.Equal(t, "hello back", reply)
}

func TestRunEmptyReplyPlaceholder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message":{"role":"assistant","content":"   "},"done":true}`))
	}))
	defer server.Close()

	client := NewOllamaClient(server.URL)
	assert.Equal(t, "[No response received.]", client.Run(context.Background(), "phi:latest", "hello"))
}

func TestRunTransportErrorPlaceholder(t *testing.T) {
	// Nothing listens on this address.
	client := NewOllamaClient("http://127.0.0.1:1")
	reply := client.Run(context.Background(), "phi:latest", "hello")
	assert.Contains(t, reply, "[Ollama error:")
}

func TestRunBadStatusPlaceholder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewOllamaClient(server.URL)
	reply := client.Run(context.Background(), "phi:latest", "hello")
	assert.Contains(t, reply, "[Ollama error:")
}

func TestRunStreamForwardsFragmentsInOrder(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":{"content":"Hi"}}` + "\n"))
		w.Write([]byte(`{"message":{"content":" there"}}` + "\n"))
	}))
	defer server.Close()

	client := NewOllamaClient(server.URL)
	var got []string
	for fragment := range client.RunStream(context.Background(), "phi:latest", "hello") {
		got = append(got, fragment)
	}
	assert.Equal(t, []string{"Hi", " there"}, got)
}

func TestRunStreamSkipsNoiseAndMalformedLines(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("\n"))
		w.Write([]byte("event: noise\n"))
		w.Write([]byte(`{"message":{"content":"A"}}` + "\n"))
		w.Write([]byte("{not json\n"))
		w.Write([]byte(`{"message":{"content":"B"}}` + "\n"))
	}))
	defer server.Close()

	client := NewOllamaClient(server.URL)
	var got []string
	for fragment := range client.RunStream(context.Background(), "phi:latest", "hello") {
		got = append(got, fragment)
	}
	assert.Equal(t, []string{"A", "B"}, got)
}

func TestRunStreamHandlesOversizedLines(t *testing.T) {
	big := strings.Repeat("a", 80*1024)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"message":{"content":"` + big + `"}}` + "\n"))
		w.Write([]byte(`{"message":{"content":"tail"}}` + "\n"))
	}))
	defer server.Close()

	client := NewOllamaClient(server.URL)
	var got []string
	for fragment := range client.RunStream(context.Background(), "phi:latest", "hello") {
		got = append(got, fragment)
	}
	assert.Equal(t, []string{big, "tail"}, got)
}

func TestRunStreamErrorYieldsInlineMarker(t *testing.T) {
	client := NewOllamaClient("http://127.0.0.1:1")
	var got []string
	for fragment := range client.RunStream(context.Background(), "phi:latest", "hello") {
		got = append(got, fragment)
	}
	assert.Len(t, got, 1)
	assert.Contains(t, got[0], "[Error:")
}
