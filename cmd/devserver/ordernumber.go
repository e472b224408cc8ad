package main

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base32"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type orderNumberGenerator struct {
	secret string
}

func newOrderNumberGenerator(secret string) *orderNumberGenerator {
	return &orderNumberGenerator{secret: secret}
}

// Generate produces a short, non-guessable order number tied to the
// submitting identity.
func (g *orderNumberGenerator) Generate(identity string) string {
	nonce := uuid.NewString()

	mac := hmac.New(sha256.New, []byte(g.secret))
	mac.Write([]byte(fmt.Sprintf("id:%s|nonce:%s", identity, nonce)))

	sum := mac.Sum(nil)
	tag := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(sum)

	return fmt.Sprintf(
		"COM-%s-%s",
		strings.ToUpper(tag[:4]),
		strings.ToUpper(uuid.NewString()[:4]),
	)
}
