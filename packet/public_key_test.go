// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package packet

import (
	"bytes"
	"crypto/md5"
	"crypto/rsa"
	"crypto/sha1"
	"encoding/binary"
	"math/big"
	"testing"
	"time"

	ed25519lib "github.com/cloudflare/circl/sign/ed25519"

	"github.com/pgpkit/pgpkit/errors"
	"github.com/pgpkit/pgpkit/internal/encoding"
)

func bigFromBase10(s string) *big.Int {
	b, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("bigFromBase10 failed")
	}
	return b
}

// testModulus2048 is an arbitrary odd integer with a minimal bit length of
// exactly 2048.
var testModulus2048 = new(big.Int).Or(
	new(big.Int).Lsh(big.NewInt(1), 2047),
	bigFromBase10("81234567890123456789012345678901234567890123456789"),
)

// packetBody assembles a public key packet body from header fields and
// encoded material.
func packetBody(version byte, timestamp uint32, lifetimeDays uint16, algo PublicKeyAlgorithm, material ...encoding.Field) []byte {
	body := []byte{
		version,
		byte(timestamp >> 24), byte(timestamp >> 16), byte(timestamp >> 8), byte(timestamp),
	}
	if version < 4 {
		body = append(body, byte(lifetimeDays>>8), byte(lifetimeDays))
	}
	body = append(body, byte(algo))
	for _, field := range material {
		body = append(body, field.EncodedBytes()...)
	}
	return body
}

func TestParseRSAPublicKeyV4(t *testing.T) {
	n := testModulus2048
	e := big.NewInt(65537)
	body := packetBody(4, 1620000000, 0, PubKeyAlgoRSA,
		new(encoding.MPI).SetBig(n),
		new(encoding.MPI).SetBig(e),
	)
	trailer := []byte{0xde, 0xad, 0xbe, 0xef}

	pk, rest, err := ParsePublicKey(append(append([]byte{}, body...), trailer...))
	if err != nil {
		t.Fatalf("failed to parse: %s", err)
	}

	if pk.Version != 4 {
		t.Errorf("bad version got:%d want:4", pk.Version)
	}
	if pk.LifetimeDays != nil {
		t.Errorf("version 4 key has a lifetime: %d days", *pk.LifetimeDays)
	}
	if got := pk.CreationTime.Unix(); got != 1620000000 {
		t.Errorf("bad creation time got:%d want:1620000000", got)
	}
	if pk.PubKeyAlgo != PubKeyAlgoRSA {
		t.Errorf("bad algorithm got:%d want:%d", pk.PubKeyAlgo, PubKeyAlgoRSA)
	}
	if got := pk.PubKeyAlgo.String(); got != "RSA (Encrypt or Sign)" {
		t.Errorf("bad algorithm name: %q", got)
	}
	if !bytes.Equal(rest, trailer) {
		t.Errorf("bad remainder got:%x want:%x", rest, trailer)
	}

	rsaPub, ok := pk.PublicKey.(*rsa.PublicKey)
	if !ok {
		t.Fatalf("wrong key object type: %T", pk.PublicKey)
	}
	if rsaPub.N.Cmp(n) != 0 || rsaPub.E != 65537 {
		t.Errorf("bad key values")
	}
	mpis := pk.Material.MPIs()
	if len(mpis) != 2 || mpis[0].Cmp(n) != 0 || mpis[1].Cmp(e) != 0 {
		t.Errorf("bad material tuple: %v", mpis)
	}
	if bitLength, _ := pk.BitLength(); bitLength != 2048 {
		t.Errorf("bad bit length got:%d want:2048", bitLength)
	}

	// The fingerprint must be SHA-1 over 0x99, the two-octet body length and
	// the body, computed here independently from the same bytes we fed in.
	h := sha1.New()
	h.Write([]byte{0x99, byte(len(body) >> 8), byte(len(body))})
	h.Write(body)
	want := h.Sum(nil)
	if !bytes.Equal(pk.Fingerprint, want) {
		t.Errorf("bad fingerprint got:%x want:%x", pk.Fingerprint, want)
	}
	if len(pk.Fingerprint) != 20 {
		t.Errorf("bad fingerprint length: %d", len(pk.Fingerprint))
	}
	if want := binary.BigEndian.Uint64(pk.Fingerprint[12:20]); pk.KeyId != want {
		t.Errorf("key id is not the fingerprint tail got:%x want:%x", pk.KeyId, want)
	}

	// Decoding the same bytes twice must yield the same identity.
	pk2, _, err := ParsePublicKey(body)
	if err != nil {
		t.Fatalf("failed to reparse: %s", err)
	}
	if !bytes.Equal(pk.Fingerprint, pk2.Fingerprint) || pk.KeyId != pk2.KeyId {
		t.Errorf("identity not deterministic")
	}
}

// stripPacketHeader removes the new-format packet framing written by
// Serialize and returns the packet body.
func stripPacketHeader(t *testing.T, packet []byte) []byte {
	t.Helper()
	if len(packet) < 2 || packet[0]&0xc0 != 0xc0 {
		t.Fatalf("bad packet framing: %x", packet)
	}
	switch {
	case packet[1] < 192:
		return packet[2:]
	case packet[1] < 224:
		return packet[3:]
	case packet[1] == 255:
		return packet[6:]
	}
	t.Fatalf("unexpected length octet: %d", packet[1])
	return nil
}

func TestRSARoundTrip(t *testing.T) {
	pub := &rsa.PublicKey{N: testModulus2048, E: 65537}
	pk := NewRSAPublicKey(time.Unix(1620000000, 0), pub)

	buf := new(bytes.Buffer)
	if err := pk.Serialize(buf); err != nil {
		t.Fatalf("failed to serialize: %s", err)
	}

	parsed, rest, err := ParsePublicKey(stripPacketHeader(t, buf.Bytes()))
	if err != nil {
		t.Fatalf("failed to parse serialized key: %s", err)
	}
	if len(rest) != 0 {
		t.Errorf("leftover bytes after round trip: %x", rest)
	}
	if parsed.Version != pk.Version || !parsed.CreationTime.Equal(pk.CreationTime) || parsed.PubKeyAlgo != pk.PubKeyAlgo {
		t.Errorf("header fields changed in round trip")
	}
	if got := parsed.PublicKey.(*rsa.PublicKey); got.N.Cmp(pub.N) != 0 || got.E != pub.E {
		t.Errorf("key values changed in round trip")
	}
	if !bytes.Equal(parsed.Fingerprint, pk.Fingerprint) {
		t.Errorf("fingerprint changed in round trip got:%x want:%x", parsed.Fingerprint, pk.Fingerprint)
	}
	if parsed.KeyIdString() != pk.KeyIdString() || parsed.KeyIdShortString() != pk.KeyIdShortString() {
		t.Errorf("key id strings changed in round trip")
	}
}

func TestSubkeySerializeTag(t *testing.T) {
	pk := NewRSAPublicKey(time.Unix(1620000000, 0), &rsa.PublicKey{N: testModulus2048, E: 65537})
	pk.IsSubkey = true

	buf := new(bytes.Buffer)
	if err := pk.Serialize(buf); err != nil {
		t.Fatalf("failed to serialize: %s", err)
	}
	if tag := buf.Bytes()[0] & 0x3f; tag != byte(packetTypePublicSubkey) {
		t.Errorf("bad packet tag got:%d want:%d", tag, packetTypePublicSubkey)
	}

	parsed, _, err := ParsePublicSubkey(stripPacketHeader(t, buf.Bytes()))
	if err != nil {
		t.Fatalf("failed to parse: %s", err)
	}
	if !parsed.IsSubkey {
		t.Errorf("subkey flag lost")
	}
}

func TestParseDSAPublicKey(t *testing.T) {
	p := bigFromBase10("25216787072480286907846261968432216907938186384558447")
	q := bigFromBase10("1136980325730015552653918851")
	g := bigFromBase10("10577397985902751832954180866")
	y := bigFromBase10("18091394970134846838562946722553134205121499821873")
	body := packetBody(4, 1620000000, 0, PubKeyAlgoDSA,
		new(encoding.MPI).SetBig(p),
		new(encoding.MPI).SetBig(q),
		new(encoding.MPI).SetBig(g),
		new(encoding.MPI).SetBig(y),
	)

	pk, rest, err := ParsePublicKey(body)
	if err != nil {
		t.Fatalf("failed to parse: %s", err)
	}
	if len(rest) != 0 {
		t.Errorf("leftover bytes: %x", rest)
	}
	mpis := pk.Material.MPIs()
	if len(mpis) != 4 {
		t.Fatalf("bad material arity got:%d want:4", len(mpis))
	}
	for i, want := range []*big.Int{p, q, g, y} {
		if mpis[i].Cmp(want) != 0 {
			t.Errorf("#%d: bad material value got:%s want:%s", i, mpis[i], want)
		}
	}
}

func TestParseElGamalPublicKey(t *testing.T) {
	p := bigFromBase10("181380460874119430803692278994199539937")
	g := big.NewInt(5)
	y := bigFromBase10("121552102937631959012798812374212334221")

	for _, algo := range []PublicKeyAlgorithm{PubKeyAlgoElGamal, PubKeyAlgoElGamalEncryptSign} {
		body := packetBody(4, 1620000000, 0, algo,
			new(encoding.MPI).SetBig(p),
			new(encoding.MPI).SetBig(g),
			new(encoding.MPI).SetBig(y),
		)
		pk, _, err := ParsePublicKey(body)
		if err != nil {
			t.Fatalf("algo %d: failed to parse: %s", algo, err)
		}
		if len(pk.Material.MPIs()) != 3 {
			t.Errorf("algo %d: bad material arity", algo)
		}
	}
}

func TestParseEd25519PublicKey(t *testing.T) {
	point := make([]byte, ed25519lib.PublicKeySize)
	for i := range point {
		point[i] = byte(i + 1)
	}
	body := packetBody(4, 1620000000, 0, PubKeyAlgoEd25519, encoding.NewOctetArray(point))

	pk, rest, err := ParsePublicKey(body)
	if err != nil {
		t.Fatalf("failed to parse: %s", err)
	}
	if len(rest) != 0 {
		t.Errorf("leftover bytes: %x", rest)
	}
	pub, ok := pk.PublicKey.(ed25519lib.PublicKey)
	if !ok {
		t.Fatalf("wrong key object type: %T", pk.PublicKey)
	}
	if !bytes.Equal(pub, point) {
		t.Errorf("bad point got:%x want:%x", pub, point)
	}
	if bitLength, _ := pk.BitLength(); bitLength != 256 {
		t.Errorf("bad bit length got:%d want:256", bitLength)
	}
	if pk.Material.MPIs() != nil {
		t.Errorf("native point material should have no integer form")
	}
}

func TestParseLegacyVersions(t *testing.T) {
	n := bigFromBase10("65537298747598347598437593475983475983475983475983")
	e := big.NewInt(17)

	for _, version := range []byte{2, 3} {
		body := packetBody(version, 1000212840, 100, PubKeyAlgoRSA,
			new(encoding.MPI).SetBig(n),
			new(encoding.MPI).SetBig(e),
		)
		pk, rest, err := ParsePublicKey(body)
		if err != nil {
			t.Fatalf("v%d: failed to parse: %s", version, err)
		}
		if len(rest) != 0 {
			t.Errorf("v%d: leftover bytes: %x", version, rest)
		}
		if pk.Version != int(version) {
			t.Errorf("bad version got:%d want:%d", pk.Version, version)
		}
		if pk.LifetimeDays == nil || *pk.LifetimeDays != 100 {
			t.Errorf("v%d: missing or bad lifetime", version)
		}

		// The legacy fingerprint is MD5 over the material bodies without
		// their bit-length prefixes.
		h := md5.New()
		h.Write(n.Bytes())
		h.Write(e.Bytes())
		want := h.Sum(nil)
		if !bytes.Equal(pk.Fingerprint, want) {
			t.Errorf("v%d: bad fingerprint got:%x want:%x", version, pk.Fingerprint, want)
		}
		if wantId := binary.BigEndian.Uint64(want[8:16]); pk.KeyId != wantId {
			t.Errorf("v%d: key id is not the fingerprint tail", version)
		}

		// Legacy versions are decode-only.
		err = pk.Serialize(new(bytes.Buffer))
		if _, ok := err.(errors.NotImplementedError); !ok {
			t.Errorf("v%d: expected not implemented error on serialize, got %v", version, err)
		}
	}
}

func TestKeyExpired(t *testing.T) {
	n := bigFromBase10("3233")
	e := big.NewInt(17)
	created := uint32(1000212840)
	body := packetBody(3, created, 100, PubKeyAlgoRSA,
		new(encoding.MPI).SetBig(n),
		new(encoding.MPI).SetBig(e),
	)
	pk, _, err := ParsePublicKey(body)
	if err != nil {
		t.Fatalf("failed to parse: %s", err)
	}

	creation := time.Unix(int64(created), 0)
	if pk.KeyExpired(creation.Add(24 * time.Hour)) {
		t.Errorf("key reported expired within its lifetime")
	}
	if !pk.KeyExpired(creation.Add(101 * 24 * time.Hour)) {
		t.Errorf("key not reported expired past its lifetime")
	}
}

func TestUnsupportedVersion(t *testing.T) {
	for _, version := range []byte{0, 1, 5, 6, 99} {
		_, _, err := ParsePublicKey([]byte{version, 0, 0, 0, 0, 1})
		if _, ok := err.(errors.UnsupportedVersionError); !ok {
			t.Errorf("version %d: expected unsupported version error, got %v", version, err)
		}
	}
}

func TestUnknownAlgorithm(t *testing.T) {
	body := packetBody(4, 1620000000, 0, PublicKeyAlgorithm(99))
	_, _, err := ParsePublicKey(body)
	if _, ok := err.(errors.UnsupportedAlgorithmError); !ok {
		t.Errorf("expected unsupported algorithm error, got %v", err)
	}

	// Tags with a known name but an unimplemented material shape must be
	// rejected the same way, never misparsed.
	for _, algo := range []PublicKeyAlgorithm{PubKeyAlgoECDH, PubKeyAlgoECDSA, PubKeyAlgoEdDSA} {
		body := packetBody(4, 1620000000, 0, algo)
		_, _, err := ParsePublicKey(body)
		if _, ok := err.(errors.UnsupportedAlgorithmError); !ok {
			t.Errorf("algo %d: expected unsupported algorithm error, got %v", algo, err)
		}
	}
}

func TestTruncatedInput(t *testing.T) {
	truncated := [][]byte{
		{},
		{4},
		{4, 0x60, 0x91},
		{3, 0x60, 0x91, 0x5e, 0x00, 0x00},
		// Declares a 8192-bit modulus with no body behind it.
		{4, 0x60, 0x91, 0x5e, 0x00, 1, 0x20, 0x00},
		{4, 0x60, 0x91, 0x5e, 0x00, 1, 0x20, 0x00, 0xca, 0xfe},
		// Ed25519 point cut short.
		{4, 0x60, 0x91, 0x5e, 0x00, 27, 0x01, 0x02, 0x03},
	}
	for i, test := range truncated {
		_, _, err := ParsePublicKey(test)
		if _, ok := err.(errors.TruncatedError); !ok {
			t.Errorf("#%d: expected truncated input error, got %v", i, err)
		}
	}
}
