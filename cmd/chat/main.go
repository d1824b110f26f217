// Package main provides a terminal REPL for talking to the portfolio bot
// without running the HTTP server.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/sayeesck/portfolio-chatbot-go/internal/chat"
	"github.com/sayeesck/portfolio-chatbot-go/internal/chat/search"
	"github.com/sayeesck/portfolio-chatbot-go/internal/config"
	"github.com/sayeesck/portfolio-chatbot-go/internal/genai"
	"github.com/sayeesck/portfolio-chatbot-go/internal/logger"
	"github.com/sayeesck/portfolio-chatbot-go/internal/profile"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Keep the terminal clean; errors still surface.
	log := logger.New("error")

	p, err := profile.Load(cfg.ProfilePath)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Failed to load profile: %v\n", err)
		os.Exit(1)
	}

	index := search.NewProjectIndex(log)
	if err := index.Initialize(p.Projects); err != nil {
		log.WithError(err).Warn("project search index unavailable")
	}

	engine := chat.NewEngine(p, index, cfg.Engine, log, nil)

	ctx := context.Background()
	if chain, err := genai.NewChainFromConfig(ctx, cfg, log, nil); err == nil && chain != nil {
		engine.SetCompleter(chain)
		defer func() { _ = chain.Close() }()
	}

	sess := engine.NewSession()

	fmt.Printf("%s's portfolio bot initialized. Type 'quit' to exit.\n", p.DisplayName())
	fmt.Println(engine.Greeting(sess))

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("\nYou: ")
		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if lower := strings.ToLower(input); lower == "quit" || lower == "exit" {
			fmt.Printf("Bot: %s\n", engine.Farewell(sess))
			break
		}

		reply := engine.ProcessMessage(ctx, sess, input)
		fmt.Printf("Bot: %s\n", reply)
	}
}
