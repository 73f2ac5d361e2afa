// Copyright 2021 The restx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package codec

import (
	"encoding/json"
	"fmt"
)

// JSON is the default serializer. It uses encoding/json and the media
// type "application/json".
var JSON Serializer = jsonSerializer{}

type jsonSerializer struct{}

func (jsonSerializer) MediaType() string {
	return "application/json"
}

func (jsonSerializer) Serialize(v any) (string, error) {
	if IsNil(v) {
		return "", nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("restx/codec: json serialize %T: %w", v, err)
	}
	return string(b), nil
}

func (jsonSerializer) Deserialize(text string, v any) error {
	if text == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(text), v); err != nil {
		return fmt.Errorf("restx/codec: json deserialize %T: %w", v, err)
	}
	return nil
}
