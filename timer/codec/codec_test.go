// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package codec

import "testing"

type encodeCase struct {
	Name string `json:"name"`
}

func TestEncodePassesBytesThrough(t *testing.T) {
	in := []byte(`{"already":"wire"}`)

	out, err := Encode(in)
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}
	if string(out) != string(in) {
		t.Errorf("Encode([]byte) = %q, want passthrough %q", out, in)
	}
}

func TestEncodeMarshalsStructs(t *testing.T) {
	out, err := Encode(encodeCase{Name: "ping"})
	if err != nil {
		t.Fatalf("Encode returned error: %v", err)
	}

	want := `{"name":"ping"}`
	if string(out) != want {
		t.Errorf("Encode(struct) = %q, want %q", out, want)
	}
}

func TestEncodeRejectsUnmarshalable(t *testing.T) {
	if _, err := Encode(make(chan int)); err == nil {
		t.Fatal("expected Encode to fail on an unmarshalable value")
	}
}
