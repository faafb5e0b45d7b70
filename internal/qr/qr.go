// Package qr renders payment links as scannable PNG codes.
package qr

import (
	"errors"

	"github.com/skip2/go-qrcode"
)

const DefaultSize = 256

type Generator struct {
	Size  int
	Level qrcode.RecoveryLevel
}

func NewGenerator() *Generator {
	return &Generator{Size: DefaultSize, Level: qrcode.Medium}
}

// PNG encodes content as a square PNG of g.Size pixels.
func (g *Generator) PNG(content string) ([]byte, error) {
	if content == "" {
		return nil, errors.New("qr: empty content")
	}
	return qrcode.Encode(content, g.Level, g.Size)
}
