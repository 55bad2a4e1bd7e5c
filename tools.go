//go:build tools
// +build tools

// Package tools declares tool dependencies for this module.
//
// The mockgen import keeps `go generate ./...` reproducible: the mocks under
// mocks/ are regenerated from the //go:generate lines of contract and repositories.
package chat_room

import (
	_ "go.uber.org/mock/mockgen"
)
