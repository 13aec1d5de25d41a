// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios without
// inspecting driver-specific errors.
package repository

import "errors"

// ErrLoginExists is returned when registering a login that is already
// taken. Handlers should translate this into an HTTP 401 response to
// match the public contract of the register endpoint.
var ErrLoginExists = errors.New("login already exists")

// ErrNotFound is returned when a requested row does not exist. Handlers
// should translate this into an HTTP 404 response.
var ErrNotFound = errors.New("not found")
