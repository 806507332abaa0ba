package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aretw0/toolhouse/pkg/domain"
)

// Caller runs one tool call. *registry.Registry satisfies it.
type Caller interface {
	Call(ctx context.Context, call domain.ToolCall) (domain.ToolResult, error)
}

// JSONHandler drives tool calls over JSON Lines: one domain.ToolCall per
// input line, one domain.ToolResult per output line, in order.
type JSONHandler struct {
	Reader  *bufio.Reader
	Writer  io.Writer
	Encoder *json.Encoder
}

// NewJSONHandler creates a handler for JSON IO. Nil streams default to
// Stdin and Stdout.
func NewJSONHandler(r io.Reader, w io.Writer) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{
		Reader:  bufio.NewReader(r),
		Writer:  w,
		Encoder: json.NewEncoder(w),
	}
}

// Input reads the next call. Blank lines are skipped. A line that is not a
// valid call yields an error wrapping domain.ErrInvalidArguments; io.EOF
// marks the end of the stream.
func (h *JSONHandler) Input(ctx context.Context) (domain.ToolCall, error) {
	for {
		if err := ctx.Err(); err != nil {
			return domain.ToolCall{}, err
		}
		text, err := h.Reader.ReadString('\n')
		text = strings.TrimSpace(text)
		if text == "" {
			if err != nil {
				return domain.ToolCall{}, err
			}
			continue
		}

		var call domain.ToolCall
		if jerr := json.Unmarshal([]byte(text), &call); jerr != nil {
			return domain.ToolCall{}, fmt.Errorf("%w: %v", domain.ErrInvalidArguments, jerr)
		}
		if call.Name == "" {
			return call, fmt.Errorf("%w: missing tool name", domain.ErrInvalidArguments)
		}
		return call, nil
	}
}

// Output writes one result as a single JSON line.
func (h *JSONHandler) Output(ctx context.Context, result domain.ToolResult) error {
	return h.Encoder.Encode(result)
}

// Serve answers every call on the input stream until EOF or cancellation.
// Bad lines and failing tools produce error results; the loop only stops
// early when the output cannot be written.
func (h *JSONHandler) Serve(ctx context.Context, caller Caller) error {
	for {
		call, err := h.Input(ctx)
		switch {
		case errors.Is(err, io.EOF):
			return nil
		case errors.Is(err, domain.ErrInvalidArguments):
			if err := h.Output(ctx, domain.ToolResult{ID: call.ID, IsError: true, Error: err.Error()}); err != nil {
				return err
			}
			continue
		case err != nil:
			return err
		}

		// Unknown tools are already folded into the result.
		res, _ := caller.Call(ctx, call)
		if err := h.Output(ctx, res); err != nil {
			return err
		}
	}
}
