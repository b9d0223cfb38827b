package auth

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"math/big"
	"testing"

	"studyflow/internal/util"
)

func TestJWKSToPEMEC(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatal(err)
	}
	enc := func(i *big.Int) string { return base64.RawURLEncoding.EncodeToString(i.FillBytes(make([]byte, 32))) }
	doc, _ := json.Marshal(map[string]any{"keys": []map[string]string{
		{"kty": "EC", "crv": "P-256", "x": enc(key.X), "y": enc(key.Y), "alg": "ES256", "use": "sig", "kid": "k1"},
	}})

	out, err := JWKSToPEM(doc)
	if err != nil {
		t.Fatalf("JWKSToPEM returned error: %v", err)
	}
	pub, err := util.ParseECDSAPublicKey(out)
	if err != nil {
		t.Fatalf("output is not an ECDSA PEM: %v", err)
	}
	if pub.X.Cmp(key.X) != 0 || pub.Y.Cmp(key.Y) != 0 {
		t.Fatal("round-tripped key does not match")
	}
}

func TestJWKSToPEMRSASkipsEncryptionKeys(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatal(err)
	}
	doc, _ := json.Marshal(map[string]any{"keys": []map[string]string{
		{"kty": "oct", "use": "enc", "kid": "enc"},
		{
			"kty": "RSA",
			"kid": "k2",
			"n":   base64.RawURLEncoding.EncodeToString(key.N.Bytes()),
			"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(key.E)).Bytes()),
		},
	}})

	out, err := JWKSToPEM(doc)
	if err != nil {
		t.Fatalf("JWKSToPEM returned error: %v", err)
	}
	pub, err := util.ParseRSAPublicKey(out)
	if err != nil {
		t.Fatalf("output is not an RSA PEM: %v", err)
	}
	if pub.N.Cmp(key.N) != 0 || pub.E != key.E {
		t.Fatal("round-tripped key does not match")
	}
}

func TestJWKSToPEMEmpty(t *testing.T) {
	if _, err := JWKSToPEM([]byte(`{"keys":[]}`)); err == nil {
		t.Fatal("expected error for empty key set")
	}
}
