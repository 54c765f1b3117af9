// Copyright 2017 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package encoding

import (
	"io"
	"math/big"

	"github.com/pgpkit/pgpkit/errors"
)

// An MPI is used to store the contents of a big integer, along with the bit
// length that was specified in the original input. See RFC 4880, section 3.2.
type MPI struct {
	bytes     []byte
	bitLength uint16
}

// NewMPI returns a MPI initialized with bytes. Leading zero octets are
// dropped so that the encoding is minimal.
func NewMPI(bytes []byte) *MPI {
	for len(bytes) != 0 && bytes[0] == 0 {
		bytes = bytes[1:]
	}
	if len(bytes) == 0 {
		return &MPI{nil, 0}
	}
	bitLength := 8*uint16(len(bytes)-1) + uint16(bitLen(bytes[0]))
	return &MPI{bytes, bitLength}
}

// Bytes returns the decoded data.
func (m *MPI) Bytes() []byte {
	return m.bytes
}

// BitLength is the size in bits of the decoded data.
func (m *MPI) BitLength() uint16 {
	return m.bitLength
}

// EncodedBytes returns the encoded data.
func (m *MPI) EncodedBytes() []byte {
	return append([]byte{byte(m.bitLength >> 8), byte(m.bitLength)}, m.bytes...)
}

// EncodedLength is the size in bytes of the encoded data.
func (m *MPI) EncodedLength() uint16 {
	return uint16(2 + len(m.bytes))
}

// ReadFrom reads into m the next MPI from r. A declared bit length that
// requires more bytes than r can supply is reported as a TruncatedError.
func (m *MPI) ReadFrom(r io.Reader) (int64, error) {
	var lengthBytes [2]byte
	n, err := io.ReadFull(r, lengthBytes[:])
	if err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			err = errors.TruncatedError("multiprecision integer length prefix")
		}
		return int64(n), err
	}

	m.bitLength = uint16(lengthBytes[0])<<8 | uint16(lengthBytes[1])
	m.bytes = make([]byte, (int(m.bitLength)+7)/8)

	nn, err := io.ReadFull(r, m.bytes)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		err = errors.TruncatedError("multiprecision integer body")
	}

	// Drop leading zero octets emitted by implementations that pad short of
	// the minimal form (seen in the wild from old GnuPG versions), so that
	// the stored value reserializes minimally.
	for len(m.bytes) != 0 && m.bytes[0] == 0 {
		m.bytes = m.bytes[1:]
	}
	if len(m.bytes) == 0 {
		m.bitLength = 0
	} else {
		m.bitLength = 8*uint16(len(m.bytes)-1) + uint16(bitLen(m.bytes[0]))
	}

	return int64(n) + int64(nn), err
}

// SetBig initializes m with the bits from n and returns m. n must not be
// negative; the format has no sign.
func (m *MPI) SetBig(n *big.Int) *MPI {
	m.bytes = n.Bytes()
	m.bitLength = uint16(n.BitLen())
	return m
}

// bitLen returns the number of significant bits in b.
func bitLen(b byte) (bits int) {
	for b != 0 {
		b >>= 1
		bits++
	}
	return
}
