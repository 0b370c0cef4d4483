// Package accessflags renders access_flags bitmasks as flag names.
package accessflags

import "github.com/deploymenttheory/go-dex/internal/types"

// Renderer implements the AccessFlagsRenderer interface using a fixed
// ordered table.
type Renderer struct {
	table []types.AccessFlagEntry
}

// NewRenderer returns a renderer over types.AccessFlagTable
func NewRenderer() *Renderer {
	return &Renderer{table: types.AccessFlagTable}
}

// Render walks the table in order. A set bit whose entry applies to kind
// contributes its name and is cleared; a set bit that does not apply stays
// set. Bits left over once the table is exhausted are an error.
func (r *Renderer) Render(flags uint32, kind types.MemberKind) ([]string, error) {
	var names []string
	remaining := flags
	for _, e := range r.table {
		if remaining == 0 {
			break
		}
		if remaining&e.Bit == 0 || e.Kinds&kind == 0 {
			continue
		}
		names = append(names, e.Name)
		remaining &^= e.Bit
	}
	if remaining != 0 {
		return names, &types.AccessFlagsError{Flags: flags, Remaining: remaining, Kind: kind}
	}
	return names, nil
}
