package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignAndVerify(t *testing.T) {
	secret := "test-secret-key"
	payload := []byte(`{"type":"call.finished","call":{}}`)

	sig := Sign(secret, payload)
	assert.Len(t, sig, 64, "hex-encoded sha256")

	assert.True(t, VerifySignature(secret, payload, sig))
	assert.True(t, VerifySignature(secret, payload, "sha256="+sig), "prefix form is tolerated")
	assert.False(t, VerifySignature("wrong-secret", payload, sig))
	assert.False(t, VerifySignature(secret, []byte("tampered"), sig))
	assert.False(t, VerifySignature(secret, payload, ""))
}
