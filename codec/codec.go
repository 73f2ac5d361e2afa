// Copyright 2021 The restx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package codec

import (
	"reflect"
)

// A Serializer converts payload values to the textual body of a request
// and converts response bodies back to values.
//
// Implementations must be safe for concurrent use by multiple
// goroutines.
type Serializer interface {
	// MediaType returns the media type sent in the Content-Type header
	// of serialized request bodies, for example "application/json".
	MediaType() string

	// Serialize returns the textual form of v. A nil v, including a
	// nil pointer, map, slice or interface, serializes to the empty
	// string.
	Serialize(v any) (string, error)

	// Deserialize decodes text into the value pointed to by v. An empty
	// text leaves v untouched and returns nil, meaning the value is
	// absent.
	Deserialize(text string, v any) error
}

// Decode deserializes text into a new value of type T using s. It
// returns nil, with no error, if text is empty.
func Decode[T any](s Serializer, text string) (*T, error) {
	if text == "" {
		return nil, nil
	}
	v := new(T)
	if err := s.Deserialize(text, v); err != nil {
		return nil, err
	}
	return v, nil
}

// IsNil reports whether v is nil or holds a nil pointer, map, slice,
// interface, channel or function.
func IsNil(v any) bool {
	if v == nil {
		return true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface, reflect.Chan, reflect.Func:
		return rv.IsNil()
	}
	return false
}

// ByName returns the built-in serializer with the given name, "json"
// or "xml". The empty name selects JSON. It returns nil for any other
// name.
func ByName(name string) Serializer {
	switch name {
	case "", "json":
		return JSON
	case "xml":
		return XML
	}
	return nil
}
