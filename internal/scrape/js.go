package scrape

import (
	"errors"
	"fmt"

	"github.com/dop251/goja"
)

// literalDecoder evaluates single JavaScript string literals, which resolves
// every escape form players use to hide URLs (\/, \u002F, \x2f, line
// continuations) exactly as a browser would.
type literalDecoder struct {
	vm *goja.Runtime
}

func newLiteralDecoder() *literalDecoder {
	return &literalDecoder{vm: goja.New()}
}

// Decode evaluates literal, which must be one complete quoted string.
func (d *literalDecoder) Decode(literal string) (string, error) {
	v, err := d.vm.RunString(literal)
	if err != nil {
		return "", fmt.Errorf("decode js literal: %w", err)
	}
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return "", errors.New("decode js literal: no value")
	}
	s, ok := v.Export().(string)
	if !ok {
		return "", fmt.Errorf("decode js literal: got %T, want string", v.Export())
	}
	return s, nil
}
