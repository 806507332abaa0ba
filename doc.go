/*
Package toolhouse is a tool server for AI agents. It exposes a dice notation
engine alongside web search, GitHub browsing and social content tools over
MCP (stdio or SSE) and a small REST API.

# Concept

Every tool is registered in a single registry with a reflected JSON Schema for
its arguments. Transports (MCP, HTTP, the CLI) only translate requests into
registry calls, so a tool behaves the same everywhere. Which tools exist is
decided once at start-up from the configured capabilities: web_search needs a
Tavily key, dice_history needs a history backend.

# Usage

	cfg, err := config.Load("toolhouse.yaml")
	if err != nil {
		log.Fatal(err)
	}

	srv, err := toolhouse.New(cfg, toolhouse.WithLogger(logging.New(slog.LevelInfo)))
	if err != nil {
		log.Fatal(err)
	}
	defer srv.Close()

	out, err := srv.Registry.Execute(ctx, "roll_dice", map[string]any{"notation": "4d6kh3"})

The dice engine itself lives in package dice and has no dependencies.
*/
package toolhouse
