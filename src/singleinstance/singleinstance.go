package singleinstance

import (
	"context"
)

// Server owns the loopback endpoint of the resident instance and answers
// delegated selection requests.
type Server interface {
	// Start binds the first port of the range. It fails when another
	// resident already holds it.
	Start(ctx context.Context) error
	// Port returns the bound TCP port, or 0 if not started.
	Port() int
	// Next returns the next delegated request, or the ctx error.
	Next(ctx context.Context) (Conn, error)
	Close() error
}

// Conn is one delegated request awaiting its answer.
type Conn interface {
	Request() Request
	// RespondSuccess answers with the path of the saved capture.
	RespondSuccess(path string) error
	RespondError(msg string) error
	Close() error
}

// Request is a delegated request. Select is the only kind today.
type Request struct {
	Kind string
}

const RequestSelect = "SELECT"

// Client delegates a one-shot selection to a resident instance.
type Client interface {
	// TryRunOnce scans the range for a resident and asks it to run a
	// selection. With no resident it returns delegated=false and a nil error.
	TryRunOnce(ctx context.Context) (delegated bool, path string, err error)
}

func NewServer(r PortRange) Server { return newTCPServer(r.normalized()) }

func NewClient(r PortRange) Client { return &tcpClient{ports: r.normalized()} }
