/*
Package domain contains the shared models of the toolhouse server.

It is kept free of I/O so that every adapter (MCP, HTTP, CLI) and every tool
speaks the same types.

# Key Entities

  - Tool: name, description and JSON Schema parameters of an exposed tool.
  - ToolCall / ToolResult: one invocation and its outcome.
  - RollRecord: the stored summary of a dice session.
*/
package domain
