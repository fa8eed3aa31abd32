// Package core is the orchestration layer.  It wires the chat engine
// to the network and provides a builder that turns a Config into a
// runnable mode.
//
// Architecture layers (bottom → top):
//
//	directory, history, moderation  →  broker  →  core  →  cmd (CLI)
//	transport, retry                →  client  →  core
package core

import "context"

// Mode is a complete operational mode of chatd (serve or join).  Each
// mode owns its lifecycle from setup to teardown.
type Mode interface {
	Run(ctx context.Context) error
}

// Name selects a mode in Build.
type Name string

const (
	ModeServe Name = "serve"
	ModeJoin  Name = "join"
)
