// Copyright 2021 The restx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package codec

import (
	"encoding/xml"
	"fmt"
)

// XML is the alternate serializer. It uses encoding/xml and the media
// type "application/xml". Serialized documents carry no XML header.
var XML Serializer = xmlSerializer{}

type xmlSerializer struct{}

func (xmlSerializer) MediaType() string {
	return "application/xml"
}

func (xmlSerializer) Serialize(v any) (string, error) {
	if IsNil(v) {
		return "", nil
	}
	b, err := xml.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("restx/codec: xml serialize %T: %w", v, err)
	}
	return string(b), nil
}

func (xmlSerializer) Deserialize(text string, v any) error {
	if text == "" {
		return nil
	}
	if err := xml.Unmarshal([]byte(text), v); err != nil {
		return fmt.Errorf("restx/codec: xml deserialize %T: %w", v, err)
	}
	return nil
}
