// Terminal client for talking to the configured Ollama endpoint.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"gollama/gollama/config"
	"gollama/gollama/services/llm"
	"gollama/gollama/utils/logging"
)

func main() {
	logging.InitLogger()
	cfg := config.LoadConfig()

	args := os.Args[1:]
	if len(args) < 1 || args[0] != "connect" {
		fmt.Println("gollama CLI usage:")
		fmt.Println("  gollama connect [model]   # Chat with the local model in this terminal")
		os.Exit(1)
	}

	model := cfg.DefaultModel
	if len(args) >= 2 {
		if !cfg.ModelAllowed(args[1]) {
			fmt.Printf("unknown model %q, using %s\n", args[1], model)
		} else {
			model = args[1]
		}
	}

	client := llm.NewOllamaClient(cfg.OllamaURL)
	fmt.Printf("Connected to %s (model %s). Type your prompt or 'exit' to quit.\n\n", cfg.OllamaURL, model)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		prompt := strings.TrimSpace(scanner.Text())
		if prompt == "exit" || prompt == "quit" {
			break
		}
		if prompt == "" {
			continue
		}

		var full strings.Builder
		for fragment := range client.RunStream(context.Background(), model, prompt) {
			full.WriteString(fragment)
			fmt.Print(fragment)
		}
		// Reasoning spans only show up once the full reply is assembled, so
		// print the filtered text again when anything was stripped.
		filtered := llm.FilterThinking(full.String())
		if filtered != full.String() {
			fmt.Printf("\n--- filtered ---\n%s", filtered)
		}
		fmt.Println()
	}
}
