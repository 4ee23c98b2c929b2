// Copyright 2024 Seakee.  All rights reserved.
// Use of this source code is governed by a MIT style
// license that can be found in the LICENSE file.

package codec

import (
	"encoding/json"

	"github.com/go-playground/validator/v10"
)

// validate is a package-level validator instance; go-playground/validator
// recommends reusing one instance since it caches struct metadata.
var validate = validator.New()

// JSONSchema decodes payload bytes into a *T with encoding/json and then
// runs go-playground/validator struct tags against it. This is the default
// Schema implementation used by routes in this repo; it is already an
// indirect dependency of the teacher (pulled in transitively through gin)
// and is promoted here to a direct, first-class dependency instead of an
// incidental one.
type JSONSchema[T any] struct{}

// Validate implements Schema.
func (JSONSchema[T]) Validate(data []byte) (any, error) {
	var v T

	if err := json.Unmarshal(data, &v); err != nil {
		return nil, &DecodeError{Err: err}
	}

	if err := validate.Struct(&v); err != nil {
		return nil, &ValidationError{Err: err}
	}

	return v, nil
}
