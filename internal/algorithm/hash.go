// Copyright 2017 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package algorithm holds the numeric algorithm vocabularies of RFC 4880.
package algorithm

import (
	"crypto"
	"hash"

	_ "crypto/md5"
	_ "crypto/sha1"
	_ "crypto/sha256"
	_ "crypto/sha512"

	_ "golang.org/x/crypto/ripemd160"
	_ "golang.org/x/crypto/sha3"
)

// Hash is an official hash function algorithm. See RFC 4880, section 9.4.
type Hash interface {
	// Id returns the algorithm ID, as a byte, of Hash.
	Id() uint8
	// Available reports whether the given hash function is linked into the
	// binary.
	Available() bool
	// New returns a new hash.Hash calculating the given hash function. It
	// panics if the function is not linked into the binary.
	New() hash.Hash
	// Size returns the length, in bytes, of a digest resulting from the
	// given hash function.
	Size() int
	// String is the name of the hash function corresponding to the given
	// OpenPGP hash id.
	String() string
}

var (
	MD5       Hash = cryptoHash{1, "MD5", crypto.MD5}
	SHA1      Hash = cryptoHash{2, "SHA1", crypto.SHA1}
	RIPEMD160 Hash = cryptoHash{3, "RIPEMD160", crypto.RIPEMD160}
	SHA256    Hash = cryptoHash{8, "SHA256", crypto.SHA256}
	SHA384    Hash = cryptoHash{9, "SHA384", crypto.SHA384}
	SHA512    Hash = cryptoHash{10, "SHA512", crypto.SHA512}
	SHA224    Hash = cryptoHash{11, "SHA224", crypto.SHA224}
	SHA3_256  Hash = cryptoHash{12, "SHA3-256", crypto.SHA3_256}
	SHA3_512  Hash = cryptoHash{14, "SHA3-512", crypto.SHA3_512}
)

// HashById represents the different hash functions specified for OpenPGP. See
// http://www.iana.org/assignments/pgp-parameters/pgp-parameters.xhtml#pgp-parameters-14
var HashById = map[uint8]Hash{
	MD5.Id():       MD5,
	SHA1.Id():      SHA1,
	RIPEMD160.Id(): RIPEMD160,
	SHA256.Id():    SHA256,
	SHA384.Id():    SHA384,
	SHA512.Id():    SHA512,
	SHA224.Id():    SHA224,
	SHA3_256.Id():  SHA3_256,
	SHA3_512.Id():  SHA3_512,
}

// cryptoHash contains pairs relating OpenPGP's hash identifier with Go's
// crypto.Hash type.
type cryptoHash struct {
	id   uint8
	name string
	crypto.Hash
}

// Id returns the algorithm ID, as a byte, of cryptoHash.
func (h cryptoHash) Id() uint8 {
	return h.id
}

// String is the name of the hash function corresponding to the given OpenPGP
// hash id.
func (h cryptoHash) String() string {
	return h.name
}
