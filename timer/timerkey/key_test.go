// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package timerkey

import "testing"

func TestBuildSplitRoundTrip(t *testing.T) {
	cases := []struct {
		topic, timerID, separator string
	}{
		{"ping", "t1", "--"},
		{"orders.shipped", "abc-123", "::"},
		{"a", "b", "|"},
	}

	for _, c := range cases {
		key := Build(c.topic, c.timerID, c.separator)

		topic, timerID, ok := Split(key, c.separator)
		if !ok {
			t.Fatalf("Split(%q) returned ok=false", key)
		}
		if topic != c.topic || timerID != c.timerID {
			t.Errorf("Split(%q) = (%q, %q), want (%q, %q)", key, topic, timerID, c.topic, c.timerID)
		}
	}
}

func TestSplitMissingSeparator(t *testing.T) {
	_, _, ok := Split("no-separator-here", "--")
	if ok {
		t.Fatal("Split of a key without the separator should report ok=false")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		value     string
		separator string
		wantErr   bool
	}{
		{"empty", "", "--", true},
		{"contains separator", "foo--bar", "--", true},
		{"ok", "foo", "--", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate("topic", tt.value, tt.separator)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
		})
	}
}
