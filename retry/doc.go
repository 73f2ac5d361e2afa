// Copyright 2021 The restx Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package retry provides the reauthentication retry used by restx: a
// request which is rejected with 401 (Unauthorized) is sent once more
// after the caller's refresh callback renews the credentials.
//
// The policy is a small state machine whose state lives on each
// request.Execution, so concurrent requests built from the same
// template never observe each other's retries:
//
//	policy := &retry.Reauth{
//		Refresh: func(ctx context.Context) error {
//			return tokens.Renew(ctx)
//		},
//	}
//
// Deciders such as Times, StatusCode and Unauthorized can be composed
// with DeciderFunc.And and DeciderFunc.Or to express other triggers
// in custom Policy implementations.
package retry
