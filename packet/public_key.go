// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package packet

import (
	"bytes"
	"crypto/dsa"
	"crypto/rsa"
	"encoding/binary"
	"fmt"
	"io"
	"math/big"
	"strconv"
	"time"

	x25519lib "github.com/cloudflare/circl/dh/x25519"
	ed25519lib "github.com/cloudflare/circl/sign/ed25519"

	"github.com/pgpkit/pgpkit/elgamal"
	"github.com/pgpkit/pgpkit/errors"
	"github.com/pgpkit/pgpkit/internal/algorithm"
	"github.com/pgpkit/pgpkit/internal/encoding"
)

// PublicKey represents an OpenPGP public key. See RFC 4880, section 5.5.2.
type PublicKey struct {
	Version      int
	CreationTime time.Time

	// LifetimeDays is the validity period in days carried by version 2 and 3
	// packets; zero means the key never expires. It is nil for version 4,
	// which moved expiration to the self-signature.
	LifetimeDays *uint16

	PubKeyAlgo  PublicKeyAlgorithm
	Material    KeyMaterial
	PublicKey   interface{} // *rsa.PublicKey, *dsa.PublicKey, *elgamal.PublicKey, ed25519.PublicKey or *x25519.Key
	Fingerprint []byte
	KeyId       uint64
	IsSubkey    bool
}

// NewRSAPublicKey returns a version 4 PublicKey that wraps the given
// rsa.PublicKey.
func NewRSAPublicKey(creationTime time.Time, pub *rsa.PublicKey) *PublicKey {
	pk := &PublicKey{
		Version:      4,
		CreationTime: creationTime,
		PubKeyAlgo:   PubKeyAlgoRSA,
		PublicKey:    pub,
		Material: &rsaKeyMaterial{
			n:   new(encoding.MPI).SetBig(pub.N),
			e:   new(encoding.MPI).SetBig(big.NewInt(int64(pub.E))),
			pub: pub,
		},
	}

	pk.setFingerprintAndKeyId()
	return pk
}

// NewDSAPublicKey returns a version 4 PublicKey that wraps the given
// dsa.PublicKey.
func NewDSAPublicKey(creationTime time.Time, pub *dsa.PublicKey) *PublicKey {
	pk := &PublicKey{
		Version:      4,
		CreationTime: creationTime,
		PubKeyAlgo:   PubKeyAlgoDSA,
		PublicKey:    pub,
		Material: &dsaKeyMaterial{
			p:   new(encoding.MPI).SetBig(pub.P),
			q:   new(encoding.MPI).SetBig(pub.Q),
			g:   new(encoding.MPI).SetBig(pub.G),
			y:   new(encoding.MPI).SetBig(pub.Y),
			pub: pub,
		},
	}

	pk.setFingerprintAndKeyId()
	return pk
}

// NewElGamalPublicKey returns a version 4 PublicKey that wraps the given
// elgamal.PublicKey.
func NewElGamalPublicKey(creationTime time.Time, pub *elgamal.PublicKey) *PublicKey {
	pk := &PublicKey{
		Version:      4,
		CreationTime: creationTime,
		PubKeyAlgo:   PubKeyAlgoElGamal,
		PublicKey:    pub,
		Material: &elgamalKeyMaterial{
			p:   new(encoding.MPI).SetBig(pub.P),
			g:   new(encoding.MPI).SetBig(pub.G),
			y:   new(encoding.MPI).SetBig(pub.Y),
			pub: pub,
		},
	}

	pk.setFingerprintAndKeyId()
	return pk
}

// NewEd25519PublicKey returns a version 4 PublicKey that wraps the given
// Ed25519 point.
func NewEd25519PublicKey(creationTime time.Time, pub ed25519lib.PublicKey) *PublicKey {
	pk := &PublicKey{
		Version:      4,
		CreationTime: creationTime,
		PubKeyAlgo:   PubKeyAlgoEd25519,
		PublicKey:    pub,
		Material: &ed25519KeyMaterial{
			point: encoding.NewOctetArray(pub),
			pub:   pub,
		},
	}

	pk.setFingerprintAndKeyId()
	return pk
}

// NewX25519PublicKey returns a version 4 PublicKey that wraps the given
// X25519 point.
func NewX25519PublicKey(creationTime time.Time, pub *x25519lib.Key) *PublicKey {
	pk := &PublicKey{
		Version:      4,
		CreationTime: creationTime,
		PubKeyAlgo:   PubKeyAlgoX25519,
		PublicKey:    pub,
		Material: &x25519KeyMaterial{
			point: encoding.NewOctetArray(pub[:]),
			pub:   pub,
		},
	}

	pk.setFingerprintAndKeyId()
	return pk
}

// ParsePublicKey reads a public key packet body from the beginning of data
// and returns the decoded key together with the unconsumed remainder of
// data. data must start at the version octet; the enclosing packet framing
// is the caller's concern.
//
// The fingerprint is computed over the exact bytes consumed from data, never
// over a re-serialization, so a packet that reached us with non-canonical
// field encodings keeps the identity every other implementation derives from
// the same bytes.
func ParsePublicKey(data []byte) (pk *PublicKey, rest []byte, err error) {
	r := bytes.NewReader(data)
	pk = new(PublicKey)
	if err = pk.parse(r); err != nil {
		return nil, nil, err
	}
	consumed := len(data) - r.Len()
	pk.setIdentityFrom(data[:consumed])
	return pk, data[consumed:], nil
}

// ParsePublicSubkey is like ParsePublicKey for a public subkey packet body.
// The two packet kinds share a body format and differ only in their framing
// tag.
func ParsePublicSubkey(data []byte) (pk *PublicKey, rest []byte, err error) {
	pk, rest, err = ParsePublicKey(data)
	if err == nil {
		pk.IsSubkey = true
	}
	return
}

func (pk *PublicKey) parse(r io.Reader) (err error) {
	// RFC 4880, section 5.5.2
	var buf [1]byte
	if _, err = readFull(r, buf[:]); err != nil {
		return
	}
	pk.Version = int(buf[0])

	switch pk.Version {
	case 2, 3:
		// Version 2 shares the version 3 layout. The version octet is kept
		// as read so callers can apply their own acceptance policy.
		var fields [timestampSize + lifetimeSize + algorithmSize]byte
		if _, err = readFull(r, fields[:]); err != nil {
			return
		}
		pk.CreationTime = time.Unix(int64(binary.BigEndian.Uint32(fields[0:4])), 0)
		lifetime := binary.BigEndian.Uint16(fields[4:6])
		pk.LifetimeDays = &lifetime
		pk.PubKeyAlgo = PublicKeyAlgorithm(fields[6])
	case 4:
		var fields [timestampSize + algorithmSize]byte
		if _, err = readFull(r, fields[:]); err != nil {
			return
		}
		pk.CreationTime = time.Unix(int64(binary.BigEndian.Uint32(fields[0:4])), 0)
		pk.PubKeyAlgo = PublicKeyAlgorithm(fields[4])
	default:
		return errors.UnsupportedVersionError(strconv.Itoa(pk.Version))
	}

	if pk.Material, err = newKeyMaterial(pk.PubKeyAlgo); err != nil {
		return
	}
	if err = pk.Material.parse(r); err != nil {
		return
	}
	pk.PublicKey = pk.Material.KeyObject()
	return
}

// headerLength is the size of the fixed fields preceding the key material
// for the given version.
func (pk *PublicKey) headerLength() int {
	if pk.Version < 4 {
		return versionSize + timestampSize + lifetimeSize + algorithmSize
	}
	return versionSize + timestampSize + algorithmSize
}

// setFingerprintAndKeyId derives the identity of a key constructed from its
// field values. Keys obtained from ParsePublicKey get their identity from
// the source bytes instead.
func (pk *PublicKey) setFingerprintAndKeyId() {
	var buf bytes.Buffer
	if err := pk.serializeWithoutHeaders(&buf); err != nil {
		// Writing a freshly constructed key to a bytes.Buffer cannot fail.
		panic(err)
	}
	pk.setIdentityFrom(buf.Bytes())
}

// setIdentityFrom computes the fingerprint and key id over body, the
// verbatim wire image of the packet.
func (pk *PublicKey) setIdentityFrom(body []byte) {
	// RFC 4880, section 12.2
	if pk.Version >= 4 {
		fingerprint := algorithm.SHA1.New()
		fingerprint.Write([]byte{0x99, byte(len(body) >> 8), byte(len(body))})
		fingerprint.Write(body)
		pk.Fingerprint = fingerprint.Sum(nil)
	} else {
		// The legacy fingerprint digests only the bodies of the material
		// fields, without their bit-length prefixes. Families with native
		// octet encodings have no prefixes to strip.
		material := body[pk.headerLength():]
		if pk.Material.MPIs() != nil {
			material = mpiBodies(material)
		}
		fingerprint := algorithm.MD5.New()
		fingerprint.Write(material)
		pk.Fingerprint = fingerprint.Sum(nil)
	}
	pk.KeyId = binary.BigEndian.Uint64(pk.Fingerprint[len(pk.Fingerprint)-8:])
}

// mpiBodies strips the two-octet bit-length prefix from every integer in
// material, preserving the value octets exactly as they appeared on the
// wire. material has already been parsed, so the walk cannot step out of
// bounds.
func mpiBodies(material []byte) []byte {
	bodies := make([]byte, 0, len(material))
	for len(material) >= 2 {
		bitLength := uint16(material[0])<<8 | uint16(material[1])
		byteLength := 2 + (int(bitLength)+7)/8
		if byteLength > len(material) {
			byteLength = len(material)
		}
		bodies = append(bodies, material[2:byteLength]...)
		material = material[byteLength:]
	}
	return bodies
}

// SerializeForHash serializes the PublicKey to w with the special packet
// header format needed for hashing.
func (pk *PublicKey) SerializeForHash(w io.Writer) error {
	if pk.Version != 4 {
		return errors.NotImplementedError("public key version " + strconv.Itoa(pk.Version) + " generation")
	}
	if err := pk.SerializeSignaturePrefix(w); err != nil {
		return err
	}
	return pk.serializeWithoutHeaders(w)
}

// SerializeSignaturePrefix writes the prefix for this public key to the given Writer.
// The prefix is used when calculating a signature over this public key. See
// RFC 4880, section 5.2.4.
func (pk *PublicKey) SerializeSignaturePrefix(w io.Writer) error {
	pLength := uint16(versionSize+timestampSize+algorithmSize) + uint16(pk.Material.encodedLength())
	_, err := w.Write([]byte{0x99, byte(pLength >> 8), byte(pLength)})
	return err
}

// Serialize marshals the PublicKey to w as an OpenPGP packet, including the
// packet header. Only version 4 keys can be serialized; the legacy versions
// are decode-only.
func (pk *PublicKey) Serialize(w io.Writer) (err error) {
	if pk.Version != 4 {
		return errors.NotImplementedError("public key version " + strconv.Itoa(pk.Version) + " generation")
	}

	length := versionSize + timestampSize + algorithmSize
	length += int(pk.Material.encodedLength())

	packetType := packetTypePublicKey
	if pk.IsSubkey {
		packetType = packetTypePublicSubkey
	}
	if err = serializeHeader(w, packetType, length); err != nil {
		return
	}
	return pk.serializeWithoutHeaders(w)
}

// serializeWithoutHeaders marshals the PublicKey to w in the form of an
// OpenPGP public key packet, not including the packet header.
func (pk *PublicKey) serializeWithoutHeaders(w io.Writer) (err error) {
	if pk.Version != 4 {
		return errors.NotImplementedError("public key version " + strconv.Itoa(pk.Version) + " generation")
	}

	t := uint32(pk.CreationTime.Unix())
	if _, err = w.Write([]byte{
		byte(pk.Version),
		byte(t >> 24), byte(t >> 16), byte(t >> 8), byte(t),
		byte(pk.PubKeyAlgo),
	}); err != nil {
		return
	}
	return pk.Material.serialize(w)
}

// KeyIdString returns the public key's key id in capital hex
// (e.g. "6C7EE1B8621CC013").
func (pk *PublicKey) KeyIdString() string {
	return fmt.Sprintf("%X", pk.Fingerprint[len(pk.Fingerprint)-8:])
}

// KeyIdShortString returns the short form of public key's key id in capital
// hex, as shown by gpg --list-keys (e.g. "621CC013").
func (pk *PublicKey) KeyIdShortString() string {
	return fmt.Sprintf("%X", pk.Fingerprint[len(pk.Fingerprint)-4:])
}

// BitLength returns the bit length for the given public key.
func (pk *PublicKey) BitLength() (uint16, error) {
	return pk.Material.BitLength()
}

// CanSign returns true iff this public key can generate signatures.
func (pk *PublicKey) CanSign() bool {
	return pk.PubKeyAlgo.CanSign()
}

// KeyExpired returns whether the key is expired at currentTime, judged by
// the validity period carried in a version 2 or 3 packet. Version 4 keys
// carry no expiration of their own and always return false; their lifetime
// lives in the self-signature, which is outside this library.
func (pk *PublicKey) KeyExpired(currentTime time.Time) bool {
	if pk.LifetimeDays == nil || *pk.LifetimeDays == 0 {
		return false
	}
	expiry := pk.CreationTime.Add(time.Duration(*pk.LifetimeDays) * 24 * time.Hour)
	return currentTime.Unix() > expiry.Unix()
}
