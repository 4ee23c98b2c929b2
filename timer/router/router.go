// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

// Package router implements the handler registry (spec.md §4.2): a mapping
// from topic to route, built during startup and frozen before the dispatch
// loop begins.
package router

import (
	"context"
	"reflect"
	"runtime"
	"strings"
	"sync"

	"github.com/seakee/distimer/timer/codec"
	"github.com/seakee/distimer/timer/timererr"
)

// Handler is invoked with the decoded, schema-validated payload once a
// timer's deadline has elapsed.
type Handler func(ctx context.Context, payload any) error

// Route binds a topic to the schema its payloads must satisfy and the
// handler that consumes them.
type Route struct {
	Topic   string
	Schema  codec.Schema
	Handler Handler
}

// Router is the handler registry. The zero value is not usable; create one
// with New. A Router is safe for concurrent registration, but callers must
// stop registering before the engine starts the dispatch loop.
type Router struct {
	mu     sync.RWMutex
	routes map[string]Route
}

// New creates an empty registry.
func New() *Router {
	return &Router{routes: make(map[string]Route)}
}

// Handler registers handler under topic, validated against schema. In Go
// there is no decorator syntax to bind to a handler's own name implicitly,
// so topic is always explicit here; see HandlerFunc for the name-derived
// convenience spec.md §9 describes as "the handler's own name is used" when
// the caller omits it.
func (r *Router) Handler(topic string, schema codec.Schema, handler Handler) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.routes[topic]; exists {
		return timererr.DuplicateHandler(topic)
	}

	r.routes[topic] = Route{Topic: topic, Schema: schema, Handler: handler}

	return nil
}

// HandlerFunc registers handler under a topic derived from the handler
// function's own name (the unqualified, dot-stripped identifier), the
// fluent-registration equivalent of the source's bare-decorator form.
func (r *Router) HandlerFunc(schema codec.Schema, handler Handler) error {
	return r.Handler(handlerName(handler), schema, handler)
}

// Lookup returns the route registered for topic, if any.
func (r *Router) Lookup(topic string) (Route, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	route, ok := r.routes[topic]
	return route, ok
}

// Merge unions other's routes into r. The result is the union of both
// registries; any topic present in both raises DuplicateHandler and leaves
// r unmodified, so merges fail atomically at startup before the engine runs.
func (r *Router) Merge(other *Router) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	other.mu.RLock()
	defer other.mu.RUnlock()

	for topic := range other.routes {
		if _, exists := r.routes[topic]; exists {
			return timererr.DuplicateHandler(topic)
		}
	}

	for topic, route := range other.routes {
		r.routes[topic] = route
	}

	return nil
}

// handlerName derives a topic name from a handler function value's own
// runtime name, stripping package path and method-value suffixes.
func handlerName(handler Handler) string {
	name := runtime.FuncForPC(reflect.ValueOf(handler).Pointer()).Name()

	if idx := strings.LastIndex(name, "."); idx >= 0 {
		name = name[idx+1:]
	}

	name = strings.TrimSuffix(name, "-fm")

	return name
}
