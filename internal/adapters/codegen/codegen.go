package codegen

import (
	"crypto/rand"
	"fmt"

	"psyconnect/internal/domain"
)

// codeAlphabet excludes visually confusable characters (0/O, 1/I). Its length
// is 32, which divides 256, so the modulo draw below is uniform.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const codeLength = 6

type generator struct{}

// NewGenerator returns an InvitationCodeGenerator drawing fixed-length codes
// uniformly from the unambiguous alphabet.
func NewGenerator() domain.InvitationCodeGenerator {
	return &generator{}
}

func (g *generator) Generate() (string, error) {
	b := make([]byte, codeLength)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	for i := range b {
		b[i] = codeAlphabet[int(b[i])%len(codeAlphabet)]
	}
	return string(b), nil
}
