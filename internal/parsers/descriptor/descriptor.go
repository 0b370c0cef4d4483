// Package descriptor renders DEX type descriptors as Java-style type names.
package descriptor

import (
	"fmt"
	"strings"

	"github.com/deploymenttheory/go-dex/internal/interfaces"
	"github.com/deploymenttheory/go-dex/internal/types"
)

// primitiveNames maps the single-letter descriptors to their display names
var primitiveNames = map[byte]string{
	'V': "void",
	'Z': "boolean",
	'B': "byte",
	'S': "short",
	'C': "char",
	'I': "int",
	'J': "long",
	'F': "float",
	'D': "double",
}

// Decode renders a descriptor such as "[[Ljava/lang/String;" as
// "java.lang.String[][]". The input must be a single complete descriptor.
func Decode(desc string) (string, error) {
	if desc == "" {
		return "", &types.DescriptorError{Descriptor: desc, Reason: "empty descriptor"}
	}

	depth := 0
	for depth < len(desc) && desc[depth] == '[' {
		depth++
	}
	if depth == len(desc) {
		return "", &types.DescriptorError{Descriptor: desc, Reason: "array without element type"}
	}

	var base string
	rest := desc[depth:]
	switch rest[0] {
	case 'L':
		end := strings.IndexByte(rest, ';')
		if end < 0 {
			return "", &types.DescriptorError{Descriptor: desc, Reason: "missing ';' after class name"}
		}
		if end == 1 {
			return "", &types.DescriptorError{Descriptor: desc, Reason: "empty class name"}
		}
		if end != len(rest)-1 {
			return "", &types.DescriptorError{Descriptor: desc, Reason: fmt.Sprintf("trailing characters %q", rest[end+1:])}
		}
		base = strings.ReplaceAll(rest[1:end], "/", ".")
	default:
		name, ok := primitiveNames[rest[0]]
		if !ok {
			return "", &types.DescriptorError{Descriptor: desc, Reason: fmt.Sprintf("bad type character %q", rest[0])}
		}
		if len(rest) != 1 {
			return "", &types.DescriptorError{Descriptor: desc, Reason: fmt.Sprintf("trailing characters %q", rest[1:])}
		}
		base = name
	}

	return base + strings.Repeat("[]", depth), nil
}

// Renderer implements the DescriptorRenderer interface over a string pool
type Renderer struct {
	strings interfaces.StringPool
}

// NewRenderer creates a renderer that resolves string indices through sp
func NewRenderer(sp interfaces.StringPool) *Renderer {
	return &Renderer{strings: sp}
}

// Render converts a descriptor string to its display name
func (r *Renderer) Render(desc string) (string, error) {
	return Decode(desc)
}

// RenderString renders the descriptor stored at stringIdx
func (r *Renderer) RenderString(stringIdx uint32) (string, error) {
	desc, err := r.strings.String(stringIdx)
	if err != nil {
		return "", err
	}
	return Decode(desc)
}
