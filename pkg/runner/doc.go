/*
Package runner holds the cross-cutting pieces that sit between a caller and
the tool registry.

# Key Components

  - SanitizeInput / SanitizeArgs: size limits, UTF-8 validation and control
    character stripping for untrusted arguments.
  - SanitizeMiddleware / LoggingMiddleware: registry.Middleware wrappers.
  - JSONHandler: a JSON Lines loop that answers one tool call per line.

# Usage

	reg := registry.NewRegistry()
	reg.Use(runner.LoggingMiddleware(logger), runner.SanitizeMiddleware(logger, 0))

	h := runner.NewJSONHandler(os.Stdin, os.Stdout)
	if err := h.Serve(ctx, reg); err != nil {
		log.Fatal(err)
	}
*/
package runner
