// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package packet implements parsing and serialization of the OpenPGP
// public key packet, as specified in RFC 4880, section 5.5.2.
package packet

import (
	"io"
	"strconv"

	"github.com/pgpkit/pgpkit/errors"
)

// readFull is the same as io.ReadFull except that reading fewer bytes than
// requested is reported as truncated input.
func readFull(r io.Reader, buf []byte) (n int, err error) {
	n, err = io.ReadFull(r, buf)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		err = errors.TruncatedError("unexpected end of packet")
	}
	return
}

type packetType uint8

const (
	packetTypePublicKey    packetType = 6
	packetTypePublicSubkey packetType = 14
)

// Sizes of the fixed header fields of a public key packet body.
const (
	versionSize   = 1
	timestampSize = 4
	lifetimeSize  = 2
	algorithmSize = 1
)

// serializeHeader writes an OpenPGP packet header to w. See RFC 4880,
// section 4.2.
func serializeHeader(w io.Writer, ptype packetType, length int) (err error) {
	var buf [6]byte
	var n int

	buf[0] = 0x80 | 0x40 | byte(ptype)
	if length < 192 {
		buf[1] = byte(length)
		n = 2
	} else if length < 8384 {
		length -= 192
		buf[1] = 192 + byte(length>>8)
		buf[2] = byte(length)
		n = 3
	} else {
		buf[1] = 255
		buf[2] = byte(length >> 24)
		buf[3] = byte(length >> 16)
		buf[4] = byte(length >> 8)
		buf[5] = byte(length)
		n = 6
	}

	_, err = w.Write(buf[:n])
	return
}

// PublicKeyAlgorithm represents the different public key systems specified
// for OpenPGP. See
// http://www.iana.org/assignments/pgp-parameters/pgp-parameters.xhtml#pgp-parameters-12
type PublicKeyAlgorithm uint8

const (
	PubKeyAlgoRSA     PublicKeyAlgorithm = 1
	PubKeyAlgoElGamal PublicKeyAlgorithm = 16
	PubKeyAlgoDSA     PublicKeyAlgorithm = 17
	PubKeyAlgoECDH    PublicKeyAlgorithm = 18
	PubKeyAlgoECDSA   PublicKeyAlgorithm = 19
	PubKeyAlgoEdDSA   PublicKeyAlgorithm = 22
	PubKeyAlgoX25519  PublicKeyAlgorithm = 25
	PubKeyAlgoEd25519 PublicKeyAlgorithm = 27

	// Deprecated in RFC 4880, Section 13.5. Use key flags instead.
	PubKeyAlgoRSAEncryptOnly PublicKeyAlgorithm = 2
	PubKeyAlgoRSASignOnly    PublicKeyAlgorithm = 3

	// Reserved in RFC 4880, Section 13.8. Decoded for compatibility with
	// keys generated by old PGP versions, never generated.
	PubKeyAlgoElGamalEncryptSign PublicKeyAlgorithm = 20
)

// CanEncrypt returns true if it's possible to encrypt a message to a public
// key of the given type.
func (pka PublicKeyAlgorithm) CanEncrypt() bool {
	switch pka {
	case PubKeyAlgoRSA, PubKeyAlgoRSAEncryptOnly, PubKeyAlgoElGamal, PubKeyAlgoElGamalEncryptSign, PubKeyAlgoECDH, PubKeyAlgoX25519:
		return true
	}
	return false
}

// CanSign returns true if it's possible for a public key of the given type to
// sign a message.
func (pka PublicKeyAlgorithm) CanSign() bool {
	switch pka {
	case PubKeyAlgoRSA, PubKeyAlgoRSASignOnly, PubKeyAlgoDSA, PubKeyAlgoECDSA, PubKeyAlgoEdDSA, PubKeyAlgoEd25519:
		return true
	}
	return false
}

// String returns the name assigned to the algorithm in the RFC 4880,
// section 9.1 registry.
func (pka PublicKeyAlgorithm) String() string {
	switch pka {
	case PubKeyAlgoRSA:
		return "RSA (Encrypt or Sign)"
	case PubKeyAlgoRSAEncryptOnly:
		return "RSA Encrypt-Only"
	case PubKeyAlgoRSASignOnly:
		return "RSA Sign-Only"
	case PubKeyAlgoElGamal:
		return "Elgamal (Encrypt-Only)"
	case PubKeyAlgoDSA:
		return "DSA (Digital Signature Algorithm)"
	case PubKeyAlgoECDH:
		return "ECDH public key algorithm"
	case PubKeyAlgoECDSA:
		return "ECDSA public key algorithm"
	case PubKeyAlgoElGamalEncryptSign:
		return "Reserved (formerly Elgamal Encrypt or Sign)"
	case PubKeyAlgoEdDSA:
		return "EdDSA"
	case PubKeyAlgoX25519:
		return "X25519"
	case PubKeyAlgoEd25519:
		return "Ed25519"
	}
	return "unknown public key algorithm " + strconv.Itoa(int(pka))
}
