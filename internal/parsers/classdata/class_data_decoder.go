// Package classdata decodes class_data_item records.
package classdata

import (
	"fmt"

	"github.com/deploymenttheory/go-dex/internal/interfaces"
	"github.com/deploymenttheory/go-dex/internal/parsers/leb128"
	"github.com/deploymenttheory/go-dex/internal/types"
)

// Options controls decoder behaviour
type Options struct {
	// FixVirtualMethodCount makes the virtual-method section iterate over
	// virtual_methods_size. When false the direct_methods_size is used
	// instead, which reproduces the behaviour of older dump tools.
	FixVirtualMethodCount bool
}

// DefaultOptions returns the corrected behaviour
func DefaultOptions() Options {
	return Options{FixVirtualMethodCount: true}
}

// Decoder decodes class data against one file's pools
type Decoder struct {
	src      interfaces.ByteSource
	members  interfaces.MemberResolver
	flags    interfaces.AccessFlagsRenderer
	fieldMax uint32
	methMax  uint32
	opts     Options
}

// NewDecoder creates a decoder. fieldCount and methodCount bound the
// accumulated member indices.
func NewDecoder(src interfaces.ByteSource, members interfaces.MemberResolver, flags interfaces.AccessFlagsRenderer, fieldCount, methodCount uint32, opts Options) *Decoder {
	return &Decoder{
		src:      src,
		members:  members,
		flags:    flags,
		fieldMax: fieldCount,
		methMax:  methodCount,
		opts:     opts,
	}
}

// Decode reads the class_data_item at off. Offset 0 yields a ClassData with
// Present set to false and no error.
func (d *Decoder) Decode(off uint32) (*types.ClassData, error) {
	cd := &types.ClassData{Offset: off}
	if off == 0 {
		return cd, nil
	}
	cd.Present = true

	c := leb128.NewCursor(d.src, int64(off))
	counts := [4]*uint32{
		&cd.Header.StaticFieldsSize,
		&cd.Header.InstanceFieldsSize,
		&cd.Header.DirectMethodsSize,
		&cd.Header.VirtualMethodsSize,
	}
	for i, p := range counts {
		v, err := leb128.ReadUnsigned(c)
		if err != nil {
			return nil, fmt.Errorf("failed to read class data count %d at 0x%x: %w", i, off, err)
		}
		*p = v
	}

	var err error
	if cd.StaticFields, err = d.decodeFields(c, cd.Header.StaticFieldsSize, types.SectionStaticFields); err != nil {
		return nil, err
	}
	if cd.InstanceFields, err = d.decodeFields(c, cd.Header.InstanceFieldsSize, types.SectionInstanceFields); err != nil {
		return nil, err
	}
	if cd.DirectMethods, err = d.decodeMethods(c, cd.Header.DirectMethodsSize, types.SectionDirectMethods); err != nil {
		return nil, err
	}

	virtualCount := cd.Header.VirtualMethodsSize
	if !d.opts.FixVirtualMethodCount {
		virtualCount = cd.Header.DirectMethodsSize
	}
	if cd.VirtualMethods, err = d.decodeMethods(c, virtualCount, types.SectionVirtualMethods); err != nil {
		return nil, err
	}

	return cd, nil
}

func (d *Decoder) decodeFields(c *leb128.Cursor, count uint32, section types.ClassDataSection) ([]types.Member, error) {
	if count == 0 {
		return nil, nil
	}
	members := make([]types.Member, 0, min(count, 1024))
	var index uint64
	for i := uint32(0); i < count; i++ {
		diff, err := leb128.ReadUnsigned(c)
		if err != nil {
			return nil, fmt.Errorf("%s %d: failed to read field_idx_diff: %w", section, i, err)
		}
		access, err := leb128.ReadUnsigned(c)
		if err != nil {
			return nil, fmt.Errorf("%s %d: failed to read access_flags: %w", section, i, err)
		}
		index += uint64(diff)
		if index >= uint64(d.fieldMax) {
			return nil, fmt.Errorf("%s %d: %w", section, i,
				&types.InvalidReferenceError{Pool: "field", Index: index, Size: d.fieldMax})
		}

		m, err := d.member(uint32(index), access, 0, types.KindField, section, i)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, nil
}

func (d *Decoder) decodeMethods(c *leb128.Cursor, count uint32, section types.ClassDataSection) ([]types.Member, error) {
	if count == 0 {
		return nil, nil
	}
	members := make([]types.Member, 0, min(count, 1024))
	var index uint64
	for i := uint32(0); i < count; i++ {
		diff, err := leb128.ReadUnsigned(c)
		if err != nil {
			return nil, fmt.Errorf("%s %d: failed to read method_idx_diff: %w", section, i, err)
		}
		access, err := leb128.ReadUnsigned(c)
		if err != nil {
			return nil, fmt.Errorf("%s %d: failed to read access_flags: %w", section, i, err)
		}
		codeOff, err := leb128.ReadUnsigned(c)
		if err != nil {
			return nil, fmt.Errorf("%s %d: failed to read code_off: %w", section, i, err)
		}
		index += uint64(diff)
		if index >= uint64(d.methMax) {
			return nil, fmt.Errorf("%s %d: %w", section, i,
				&types.InvalidReferenceError{Pool: "method", Index: index, Size: d.methMax})
		}

		m, err := d.member(uint32(index), access, codeOff, types.KindMethod, section, i)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, nil
}

func (d *Decoder) member(index, access, codeOff uint32, kind types.MemberKind, section types.ClassDataSection, i uint32) (types.Member, error) {
	flags, err := d.flags.Render(access, kind)
	if err != nil {
		return types.Member{}, fmt.Errorf("%s %d: %w", section, i, err)
	}

	var decl string
	if kind == types.KindField {
		decl, err = d.members.FieldDeclaration(index)
	} else {
		decl, err = d.members.MethodDeclaration(index)
	}
	if err != nil {
		return types.Member{}, fmt.Errorf("%s %d: %w", section, i, err)
	}

	return types.Member{
		Index:       index,
		AccessFlags: access,
		Flags:       flags,
		CodeOff:     codeOff,
		Declaration: decl,
	}, nil
}
