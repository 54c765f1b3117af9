// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package elgamal holds the ElGamal public key type carried by OpenPGP key
// packets, as described in "A Public-Key Cryptosystem and a Signature Scheme
// Based on Discrete Logarithms". Only the key container is provided; the
// encryption scheme itself is not implemented here.
package elgamal

import "math/big"

// PublicKey represents an ElGamal public key.
type PublicKey struct {
	G, P, Y *big.Int
}
