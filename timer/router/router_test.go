// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package router

import (
	"context"
	"errors"
	"testing"

	"github.com/seakee/distimer/timer/timererr"
)

type stubSchema struct{}

func (stubSchema) Validate(data []byte) (any, error) { return data, nil }

func noopHandler(ctx context.Context, payload any) error { return nil }

func TestHandlerDuplicateRejected(t *testing.T) {
	r := New()

	if err := r.Handler("ping", stubSchema{}, noopHandler); err != nil {
		t.Fatalf("first registration failed: %v", err)
	}

	err := r.Handler("ping", stubSchema{}, noopHandler)
	if !errors.Is(err, timererr.ErrDuplicateHandler) {
		t.Errorf("expected a duplicate-handler error, got %v", err)
	}
}

func TestLookup(t *testing.T) {
	r := New()
	_ = r.Handler("ping", stubSchema{}, noopHandler)

	if _, ok := r.Lookup("ping"); !ok {
		t.Error("Lookup(\"ping\") = false, want true")
	}
	if _, ok := r.Lookup("missing"); ok {
		t.Error("Lookup(\"missing\") = true, want false")
	}
}

func TestHandlerFuncDerivesName(t *testing.T) {
	r := New()
	if err := r.HandlerFunc(stubSchema{}, noopHandler); err != nil {
		t.Fatalf("HandlerFunc failed: %v", err)
	}

	if _, ok := r.Lookup("noopHandler"); !ok {
		t.Error("expected topic derived from handler function name \"noopHandler\"")
	}
}

func TestMergeCollisionLeavesReceiverUnmodified(t *testing.T) {
	a := New()
	_ = a.Handler("ping", stubSchema{}, noopHandler)

	b := New()
	_ = b.Handler("ping", stubSchema{}, noopHandler)
	_ = b.Handler("pong", stubSchema{}, noopHandler)

	if err := a.Merge(b); err == nil {
		t.Fatal("expected Merge to fail on colliding topic \"ping\"")
	}

	if _, ok := a.Lookup("pong"); ok {
		t.Error("Merge must not partially apply when a collision is found")
	}
}

func TestMergeUnion(t *testing.T) {
	a := New()
	_ = a.Handler("ping", stubSchema{}, noopHandler)

	b := New()
	_ = b.Handler("pong", stubSchema{}, noopHandler)

	if err := a.Merge(b); err != nil {
		t.Fatalf("Merge failed: %v", err)
	}

	if _, ok := a.Lookup("ping"); !ok {
		t.Error("Merge lost the receiver's own route")
	}
	if _, ok := a.Lookup("pong"); !ok {
		t.Error("Merge did not bring in the other registry's route")
	}
}
