// Copyright (c) 2026 The Zipkin Query Authors.
// SPDX-License-Identifier: Apache-2.0

// Package healthcheck provides a minimal HTTP health endpoint whose
// status code follows the server's readiness state.
package healthcheck

import (
	"net"
	"net/http"
	"strconv"
	"sync/atomic"

	"go.uber.org/zap"
)

// State represents the current health check state.
type State struct {
	state  atomic.Int64
	logger *zap.Logger
}

// NewState creates a new state instance with the given initial HTTP status.
func NewState(state int, logger *zap.Logger) *State {
	s := &State{logger: logger}
	s.state.Store(int64(state))
	return s
}

// Serve requests on the specified port. The initial state is what's
// specified with the state parameter.
func Serve(state int, port int, logger *zap.Logger) (*State, error) {
	hs := NewState(state, logger)

	l, err := net.Listen("tcp", ":"+strconv.Itoa(port))
	if err != nil {
		logger.Error("failed to listen", zap.Error(err))
		return nil, err
	}
	serveWithListener(l, &http.Server{Handler: NewHandler(hs)}, logger)

	logger.Info("Health Check server started", zap.Int("http-port", port))
	return hs, nil
}

// NewHandler creates a new HTTP handler using the given state as source
// of information.
func NewHandler(s *State) http.Handler {
	mu := http.NewServeMux()
	mu.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		state := s.Get()
		w.WriteHeader(state)
		if state != http.StatusNoContent {
			w.Write([]byte("Server not available"))
		}
	})
	return mu
}

func serveWithListener(l net.Listener, s *http.Server, logger *zap.Logger) {
	go func() {
		if err := s.Serve(l); err != nil && err != http.ErrServerClosed {
			logger.Error("failed to serve", zap.Error(err))
		}
	}()
}

// Ready updates the current state to the "ready" state, translated as a
// 2xx-class HTTP status code.
func (s *State) Ready() {
	s.Set(http.StatusNoContent)
}

// Set a new HTTP status for the health check.
func (s *State) Set(state int) {
	s.state.Store(int64(state))
	s.logger.Info("Health Check state change", zap.Int("http-status", state))
}

// Get the current status code for this health check.
func (s *State) Get() int {
	return int(s.state.Load())
}
