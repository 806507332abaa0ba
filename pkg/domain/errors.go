package domain

import "errors"

// ErrToolNotFound is returned when a tool name is not registered.
var ErrToolNotFound = errors.New("tool not found")

// ErrInvalidArguments is returned when tool arguments cannot be decoded or fail validation.
var ErrInvalidArguments = errors.New("invalid tool arguments")

// ErrUpstream is returned when a third-party API a tool depends on fails.
var ErrUpstream = errors.New("upstream service error")

// ErrHistoryDisabled is returned when roll history is requested but no store is configured.
var ErrHistoryDisabled = errors.New("roll history is not enabled")
