// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package packet

import (
	"bytes"
	"crypto/dsa"
	"crypto/rsa"
	"fmt"
	"io"
	"math/big"
	"strconv"

	x25519lib "github.com/cloudflare/circl/dh/x25519"
	ed25519lib "github.com/cloudflare/circl/sign/ed25519"

	"github.com/pgpkit/pgpkit/elgamal"
	"github.com/pgpkit/pgpkit/errors"
	"github.com/pgpkit/pgpkit/internal/encoding"
)

// KeyMaterial is the algorithm-specific portion of a public key packet. Each
// algorithm family carries a fixed sequence of fields; parse consumes exactly
// that sequence and serialize reproduces it. The set of implementations is
// closed: an algorithm tag outside the known families fails parsing with an
// UnsupportedAlgorithmError rather than falling through.
type KeyMaterial interface {
	parse(r io.Reader) error
	serialize(w io.Writer) error
	encodedLength() uint32

	// BitLength returns the size of the key following the convention of its
	// family: modulus size for RSA, prime size for DSA and ElGamal, point
	// size for the native curve kinds.
	BitLength() (uint16, error)

	// KeyObject returns the parsed key in its crypto-library form:
	// *rsa.PublicKey, *dsa.PublicKey, *elgamal.PublicKey, ed25519.PublicKey
	// or *x25519.Key.
	KeyObject() interface{}

	// MPIs returns the multiprecision integers composing the material, in
	// wire order, or nil for families with native octet encodings.
	MPIs() []*big.Int
}

// newKeyMaterial returns an empty material of the given family, ready for
// parsing.
func newKeyMaterial(algo PublicKeyAlgorithm) (KeyMaterial, error) {
	switch algo {
	case PubKeyAlgoRSA, PubKeyAlgoRSAEncryptOnly, PubKeyAlgoRSASignOnly:
		return new(rsaKeyMaterial), nil
	case PubKeyAlgoDSA:
		return new(dsaKeyMaterial), nil
	case PubKeyAlgoElGamal, PubKeyAlgoElGamalEncryptSign:
		return new(elgamalKeyMaterial), nil
	case PubKeyAlgoEd25519:
		return new(ed25519KeyMaterial), nil
	case PubKeyAlgoX25519:
		return new(x25519KeyMaterial), nil
	default:
		return nil, errors.UnsupportedAlgorithmError(strconv.Itoa(int(algo)))
	}
}

// ParseKeyMaterial reads the key material of the given algorithm family from
// the beginning of data and returns the material along with the unconsumed
// remainder of data.
func ParseKeyMaterial(algo PublicKeyAlgorithm, data []byte) (KeyMaterial, []byte, error) {
	material, err := newKeyMaterial(algo)
	if err != nil {
		return nil, nil, err
	}
	r := bytes.NewReader(data)
	if err := material.parse(r); err != nil {
		return nil, nil, err
	}
	return material, data[len(data)-r.Len():], nil
}

// EncodeKeyMaterial returns the wire encoding of material.
func EncodeKeyMaterial(material KeyMaterial) ([]byte, error) {
	var buf bytes.Buffer
	if err := material.serialize(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// NewKeyMaterial assembles material for one of the multiprecision-integer
// families from values given in wire order: (modulus, exponent) for RSA,
// (p, q, g, y) for DSA, (p, g, y) for ElGamal. A tuple of the wrong length
// fails with an ArityError and a negative member with an
// InvalidArgumentError. The native-point families have no integer form; use
// NewEd25519PublicKey or NewX25519PublicKey for them.
func NewKeyMaterial(algo PublicKeyAlgorithm, values []*big.Int) (KeyMaterial, error) {
	for _, v := range values {
		if v == nil || v.Sign() < 0 {
			return nil, errors.InvalidArgumentError("key material integers must be non-negative")
		}
	}

	var arity int
	switch algo {
	case PubKeyAlgoRSA, PubKeyAlgoRSAEncryptOnly, PubKeyAlgoRSASignOnly:
		arity = 2
	case PubKeyAlgoDSA:
		arity = 4
	case PubKeyAlgoElGamal, PubKeyAlgoElGamalEncryptSign:
		arity = 3
	default:
		return nil, errors.UnsupportedAlgorithmError(strconv.Itoa(int(algo)))
	}
	if len(values) != arity {
		return nil, errors.ArityError(fmt.Sprintf("%s needs %d integers, got %d", algo, arity, len(values)))
	}

	switch algo {
	case PubKeyAlgoRSA, PubKeyAlgoRSAEncryptOnly, PubKeyAlgoRSASignOnly:
		if values[1].BitLen() > 24 {
			return nil, errors.UnsupportedError("large public exponent")
		}
		return &rsaKeyMaterial{
			n: new(encoding.MPI).SetBig(values[0]),
			e: new(encoding.MPI).SetBig(values[1]),
			pub: &rsa.PublicKey{
				N: values[0],
				E: int(values[1].Int64()),
			},
		}, nil
	case PubKeyAlgoDSA:
		return &dsaKeyMaterial{
			p: new(encoding.MPI).SetBig(values[0]),
			q: new(encoding.MPI).SetBig(values[1]),
			g: new(encoding.MPI).SetBig(values[2]),
			y: new(encoding.MPI).SetBig(values[3]),
			pub: &dsa.PublicKey{
				Parameters: dsa.Parameters{P: values[0], Q: values[1], G: values[2]},
				Y:          values[3],
			},
		}, nil
	default:
		return &elgamalKeyMaterial{
			p: new(encoding.MPI).SetBig(values[0]),
			g: new(encoding.MPI).SetBig(values[1]),
			y: new(encoding.MPI).SetBig(values[2]),
			pub: &elgamal.PublicKey{
				P: values[0],
				G: values[1],
				Y: values[2],
			},
		}, nil
	}
}

// rsaKeyMaterial holds the (modulus, exponent) pair of the RSA family.
// See RFC 4880, section 5.5.2.
type rsaKeyMaterial struct {
	n, e *encoding.MPI
	pub  *rsa.PublicKey
}

func (m *rsaKeyMaterial) parse(r io.Reader) (err error) {
	m.n = new(encoding.MPI)
	if _, err = m.n.ReadFrom(r); err != nil {
		return
	}
	m.e = new(encoding.MPI)
	if _, err = m.e.ReadFrom(r); err != nil {
		return
	}

	if len(m.e.Bytes()) > 3 {
		return errors.UnsupportedError("large public exponent")
	}
	pub := &rsa.PublicKey{
		N: new(big.Int).SetBytes(m.n.Bytes()),
		E: 0,
	}
	for _, b := range m.e.Bytes() {
		pub.E = pub.E<<8 | int(b)
	}
	m.pub = pub
	return
}

func (m *rsaKeyMaterial) serialize(w io.Writer) (err error) {
	if _, err = w.Write(m.n.EncodedBytes()); err != nil {
		return
	}
	_, err = w.Write(m.e.EncodedBytes())
	return
}

func (m *rsaKeyMaterial) encodedLength() uint32 {
	return uint32(m.n.EncodedLength()) + uint32(m.e.EncodedLength())
}

func (m *rsaKeyMaterial) BitLength() (uint16, error) {
	return m.n.BitLength(), nil
}

func (m *rsaKeyMaterial) KeyObject() interface{} {
	return m.pub
}

func (m *rsaKeyMaterial) MPIs() []*big.Int {
	return []*big.Int{
		new(big.Int).SetBytes(m.n.Bytes()),
		new(big.Int).SetBytes(m.e.Bytes()),
	}
}

// dsaKeyMaterial holds the (p, q, g, y) tuple of the DSA family. See
// RFC 4880, section 5.5.2.
type dsaKeyMaterial struct {
	p, q, g, y *encoding.MPI
	pub        *dsa.PublicKey
}

func (m *dsaKeyMaterial) parse(r io.Reader) (err error) {
	m.p = new(encoding.MPI)
	if _, err = m.p.ReadFrom(r); err != nil {
		return
	}
	m.q = new(encoding.MPI)
	if _, err = m.q.ReadFrom(r); err != nil {
		return
	}
	m.g = new(encoding.MPI)
	if _, err = m.g.ReadFrom(r); err != nil {
		return
	}
	m.y = new(encoding.MPI)
	if _, err = m.y.ReadFrom(r); err != nil {
		return
	}

	m.pub = &dsa.PublicKey{
		Parameters: dsa.Parameters{
			P: new(big.Int).SetBytes(m.p.Bytes()),
			Q: new(big.Int).SetBytes(m.q.Bytes()),
			G: new(big.Int).SetBytes(m.g.Bytes()),
		},
		Y: new(big.Int).SetBytes(m.y.Bytes()),
	}
	return
}

func (m *dsaKeyMaterial) serialize(w io.Writer) (err error) {
	for _, field := range []*encoding.MPI{m.p, m.q, m.g, m.y} {
		if _, err = w.Write(field.EncodedBytes()); err != nil {
			return
		}
	}
	return
}

func (m *dsaKeyMaterial) encodedLength() uint32 {
	return uint32(m.p.EncodedLength()) + uint32(m.q.EncodedLength()) +
		uint32(m.g.EncodedLength()) + uint32(m.y.EncodedLength())
}

func (m *dsaKeyMaterial) BitLength() (uint16, error) {
	return m.p.BitLength(), nil
}

func (m *dsaKeyMaterial) KeyObject() interface{} {
	return m.pub
}

func (m *dsaKeyMaterial) MPIs() []*big.Int {
	return []*big.Int{
		new(big.Int).SetBytes(m.p.Bytes()),
		new(big.Int).SetBytes(m.q.Bytes()),
		new(big.Int).SetBytes(m.g.Bytes()),
		new(big.Int).SetBytes(m.y.Bytes()),
	}
}

// elgamalKeyMaterial holds the (p, g, y) tuple of the ElGamal family. See
// RFC 4880, section 5.5.2.
type elgamalKeyMaterial struct {
	p, g, y *encoding.MPI
	pub     *elgamal.PublicKey
}

func (m *elgamalKeyMaterial) parse(r io.Reader) (err error) {
	m.p = new(encoding.MPI)
	if _, err = m.p.ReadFrom(r); err != nil {
		return
	}
	m.g = new(encoding.MPI)
	if _, err = m.g.ReadFrom(r); err != nil {
		return
	}
	m.y = new(encoding.MPI)
	if _, err = m.y.ReadFrom(r); err != nil {
		return
	}

	m.pub = &elgamal.PublicKey{
		P: new(big.Int).SetBytes(m.p.Bytes()),
		G: new(big.Int).SetBytes(m.g.Bytes()),
		Y: new(big.Int).SetBytes(m.y.Bytes()),
	}
	return
}

func (m *elgamalKeyMaterial) serialize(w io.Writer) (err error) {
	for _, field := range []*encoding.MPI{m.p, m.g, m.y} {
		if _, err = w.Write(field.EncodedBytes()); err != nil {
			return
		}
	}
	return
}

func (m *elgamalKeyMaterial) encodedLength() uint32 {
	return uint32(m.p.EncodedLength()) + uint32(m.g.EncodedLength()) +
		uint32(m.y.EncodedLength())
}

func (m *elgamalKeyMaterial) BitLength() (uint16, error) {
	return m.p.BitLength(), nil
}

func (m *elgamalKeyMaterial) KeyObject() interface{} {
	return m.pub
}

func (m *elgamalKeyMaterial) MPIs() []*big.Int {
	return []*big.Int{
		new(big.Int).SetBytes(m.p.Bytes()),
		new(big.Int).SetBytes(m.g.Bytes()),
		new(big.Int).SetBytes(m.y.Bytes()),
	}
}

// ed25519KeyMaterial holds the native 32-octet Ed25519 point introduced by
// the crypto refresh.
type ed25519KeyMaterial struct {
	point *encoding.OctetArray
	pub   ed25519lib.PublicKey
}

func (m *ed25519KeyMaterial) parse(r io.Reader) (err error) {
	m.point = encoding.NewEmptyOctetArray(ed25519lib.PublicKeySize)
	if _, err = m.point.ReadFrom(r); err != nil {
		return
	}
	m.pub = ed25519lib.PublicKey(m.point.Bytes())
	return
}

func (m *ed25519KeyMaterial) serialize(w io.Writer) (err error) {
	_, err = w.Write(m.point.EncodedBytes())
	return
}

func (m *ed25519KeyMaterial) encodedLength() uint32 {
	return uint32(ed25519lib.PublicKeySize)
}

func (m *ed25519KeyMaterial) BitLength() (uint16, error) {
	return ed25519lib.PublicKeySize * 8, nil
}

func (m *ed25519KeyMaterial) KeyObject() interface{} {
	return m.pub
}

func (m *ed25519KeyMaterial) MPIs() []*big.Int {
	return nil
}

// x25519KeyMaterial holds the native 32-octet X25519 point introduced by the
// crypto refresh.
type x25519KeyMaterial struct {
	point *encoding.OctetArray
	pub   *x25519lib.Key
}

func (m *x25519KeyMaterial) parse(r io.Reader) (err error) {
	m.point = encoding.NewEmptyOctetArray(x25519lib.Size)
	if _, err = m.point.ReadFrom(r); err != nil {
		return
	}
	var key x25519lib.Key
	copy(key[:], m.point.Bytes())
	m.pub = &key
	return
}

func (m *x25519KeyMaterial) serialize(w io.Writer) (err error) {
	_, err = w.Write(m.point.EncodedBytes())
	return
}

func (m *x25519KeyMaterial) encodedLength() uint32 {
	return uint32(x25519lib.Size)
}

func (m *x25519KeyMaterial) BitLength() (uint16, error) {
	return x25519lib.Size * 8, nil
}

func (m *x25519KeyMaterial) KeyObject() interface{} {
	return m.pub
}

func (m *x25519KeyMaterial) MPIs() []*big.Int {
	return nil
}
