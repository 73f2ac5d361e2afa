// Copyright 2021 The restx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package codec defines Serializer, the contract restx uses to turn
// payloads into request bodies and response bodies into typed values,
// with the two built-in implementations JSON and XML.
//
// Any other format can be plugged in by implementing Serializer and
// passing it to the builder's Serializer method.
package codec
