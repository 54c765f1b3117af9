// Copyright 2010 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package errors contains common error types for the pgpkit packages.
package errors

// A StructuralError is returned when packet data is found to be syntactically
// invalid.
type StructuralError string

func (s StructuralError) Error() string {
	return "pgpkit: invalid data: " + string(s)
}

// UnsupportedError indicates that, although the data is syntactically valid,
// it is unsupported.
type UnsupportedError string

func (s UnsupportedError) Error() string {
	return "pgpkit: unsupported feature: " + string(s)
}

// InvalidArgumentError indicates that the caller is in error and passed an
// incorrect value.
type InvalidArgumentError string

func (i InvalidArgumentError) Error() string {
	return "pgpkit: invalid argument: " + string(i)
}

// UnsupportedVersionError is returned when a public key packet declares a
// version this codec does not know.
type UnsupportedVersionError string

func (u UnsupportedVersionError) Error() string {
	return "pgpkit: unsupported public key version: " + string(u)
}

// UnsupportedAlgorithmError is returned when a packet carries a public key
// algorithm tag with no known key material shape.
type UnsupportedAlgorithmError string

func (u UnsupportedAlgorithmError) Error() string {
	return "pgpkit: unsupported public key algorithm: " + string(u)
}

// TruncatedError is returned when a declared field length exceeds the bytes
// remaining in the input.
type TruncatedError string

func (t TruncatedError) Error() string {
	return "pgpkit: truncated input: " + string(t)
}

// ArityError is returned when key material is assembled from the wrong
// number of integers for its algorithm family.
type ArityError string

func (a ArityError) Error() string {
	return "pgpkit: wrong key material arity: " + string(a)
}

// NotImplementedError is returned when serialization is requested for a
// packet version this implementation deliberately does not generate.
type NotImplementedError string

func (n NotImplementedError) Error() string {
	return "pgpkit: not implemented: " + string(n)
}
