// Copyright 2017 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package encoding

import (
	"io"

	"github.com/pgpkit/pgpkit/errors"
)

// OctetArray is used to store a fixed-length field without a length prefix,
// such as a native curve point.
type OctetArray struct {
	length int
	bytes  []byte
}

// NewOctetArray returns an OctetArray initialized with bytes.
func NewOctetArray(bytes []byte) *OctetArray {
	return &OctetArray{
		length: len(bytes),
		bytes:  bytes,
	}
}

// NewEmptyOctetArray returns an OctetArray that expects length bytes on the
// wire.
func NewEmptyOctetArray(length int) *OctetArray {
	return &OctetArray{
		length: length,
	}
}

// Bytes returns the decoded data.
func (o *OctetArray) Bytes() []byte {
	return o.bytes
}

// BitLength is the size in bits of the decoded data.
func (o *OctetArray) BitLength() uint16 {
	return uint16(o.length * 8)
}

// EncodedBytes returns the encoded data.
func (o *OctetArray) EncodedBytes() []byte {
	if len(o.bytes) != o.length {
		panic("invalid length")
	}
	return o.bytes
}

// EncodedLength is the size in bytes of the encoded data.
func (o *OctetArray) EncodedLength() uint16 {
	return uint16(o.length)
}

// ReadFrom reads into o the next fixed-length field from r.
func (o *OctetArray) ReadFrom(r io.Reader) (int64, error) {
	o.bytes = make([]byte, o.length)

	nn, err := io.ReadFull(r, o.bytes)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		err = errors.TruncatedError("fixed-length field")
	}

	return int64(nn), err
}
