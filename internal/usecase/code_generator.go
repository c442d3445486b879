// File: internal/usecase/code_generator.go
package usecase

import (
	"crypto/rand"
	"fmt"
	"io"

	"promo-raffle/internal/domain/model"
)

// CodeGenerator draws candidate code values of a given length.
type CodeGenerator interface {
	Generate(length int) (string, error)
}

// Largest multiple of len(CodeAlphabet) that fits in a byte; bytes at or above
// it are discarded so every character is equally likely.
const codeByteLimit = 256 - 256%len(model.CodeAlphabet)

type randomCodeGenerator struct {
	src io.Reader
}

// NewRandomCodeGenerator returns a generator backed by crypto/rand.
func NewRandomCodeGenerator() CodeGenerator {
	return &randomCodeGenerator{src: rand.Reader}
}

func (g *randomCodeGenerator) Generate(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("code length must be positive, got %d", length)
	}
	out := make([]byte, 0, length)
	buf := make([]byte, length+length/4+1)
	for len(out) < length {
		if _, err := io.ReadFull(g.src, buf); err != nil {
			return "", fmt.Errorf("read random bytes: %w", err)
		}
		for _, b := range buf {
			if int(b) >= codeByteLimit {
				continue
			}
			out = append(out, model.CodeAlphabet[int(b)%len(model.CodeAlphabet)])
			if len(out) == length {
				break
			}
		}
	}
	return string(out), nil
}
