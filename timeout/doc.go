// Copyright 2021 The relay Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package timeout defines policies for bounding the single HTTP round
// trip a relay call makes. A generic interface for timeout policies is
// provided, Policy, along with the built-in policies Infinite and
// DefaultPolicy and the policy generating function Fixed.
package timeout
