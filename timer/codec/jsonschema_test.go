// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package codec

import "testing"

type pingPayload struct {
	Msg string `json:"msg" validate:"required"`
}

func TestJSONSchemaValidatesOK(t *testing.T) {
	schema := JSONSchema[pingPayload]{}

	v, err := schema.Validate([]byte(`{"msg":"hi"}`))
	if err != nil {
		t.Fatalf("Validate returned error: %v", err)
	}

	got, ok := v.(pingPayload)
	if !ok {
		t.Fatalf("Validate returned %T, want pingPayload", v)
	}
	if got.Msg != "hi" {
		t.Errorf("Msg = %q, want %q", got.Msg, "hi")
	}
}

func TestJSONSchemaRejectsMalformedJSON(t *testing.T) {
	schema := JSONSchema[pingPayload]{}

	_, err := schema.Validate([]byte(`not json`))
	if err == nil {
		t.Fatal("expected a decode error")
	}

	if _, ok := err.(*DecodeError); !ok {
		t.Errorf("expected *DecodeError, got %T", err)
	}
}

func TestJSONSchemaRejectsMissingRequiredField(t *testing.T) {
	schema := JSONSchema[pingPayload]{}

	_, err := schema.Validate([]byte(`{}`))
	if err == nil {
		t.Fatal("expected a validation error")
	}

	if _, ok := err.(*ValidationError); !ok {
		t.Errorf("expected *ValidationError, got %T", err)
	}
}
