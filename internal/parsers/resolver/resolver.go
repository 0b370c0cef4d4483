// Package resolver renders field, method and prototype references by
// following indices across the pools of one DEX file.
package resolver

import (
	"fmt"
	"strings"

	"github.com/deploymenttheory/go-dex/internal/interfaces"
	"github.com/deploymenttheory/go-dex/internal/parsers/pools"
	"github.com/deploymenttheory/go-dex/internal/types"
)

// Pools groups the pools a Resolver reads from
type Pools struct {
	Strings interfaces.StringPool
	Types   interfaces.TypePool
	Protos  interfaces.ProtoPool
	Fields  interfaces.FieldPool
	Methods interfaces.MethodPool
}

// Resolver implements the MemberResolver interface. Every index is checked
// against its pool before it is followed.
type Resolver struct {
	src         interfaces.ByteSource
	pools       Pools
	descriptors interfaces.DescriptorRenderer
}

// NewResolver creates a resolver. src is used only to read parameter lists.
func NewResolver(src interfaces.ByteSource, p Pools, descriptors interfaces.DescriptorRenderer) *Resolver {
	return &Resolver{src: src, pools: p, descriptors: descriptors}
}

// TypeName renders type idx, e.g. "java.lang.String[]"
func (r *Resolver) TypeName(typeIdx uint32) (string, error) {
	item, err := r.pools.Types.Get(typeIdx)
	if err != nil {
		return "", err
	}
	name, err := r.descriptors.RenderString(item.DescriptorIdx)
	if err != nil {
		return "", fmt.Errorf("type %d: %w", typeIdx, err)
	}
	return name, nil
}

// ClassName renders a class type. Non-class descriptors are rendered as is.
func (r *Resolver) ClassName(typeIdx uint32) (string, error) {
	return r.TypeName(typeIdx)
}

// TypeNames renders every entry of a type list
func (r *Resolver) TypeNames(list types.TypeList) ([]string, error) {
	names := make([]string, 0, len(list))
	for _, idx := range list {
		name, err := r.TypeName(uint32(idx))
		if err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, nil
}

// Proto is a rendered prototype
type Proto struct {
	Shorty     string
	ReturnType string
	Parameters []string
}

// Signature renders the parameter list as "(a, b)"
func (p Proto) Signature() string {
	return "(" + strings.Join(p.Parameters, ", ") + ")"
}

// Proto resolves proto idx
func (r *Resolver) Proto(protoIdx uint32) (Proto, error) {
	item, err := r.pools.Protos.Get(protoIdx)
	if err != nil {
		return Proto{}, err
	}

	shorty, err := r.pools.Strings.String(item.ShortyIdx)
	if err != nil {
		return Proto{}, fmt.Errorf("shorty of proto %d: %w", protoIdx, err)
	}

	ret, err := r.TypeName(item.ReturnTypeIdx)
	if err != nil {
		return Proto{}, fmt.Errorf("return type of proto %d: %w", protoIdx, err)
	}

	list, err := pools.ReadTypeList(r.src, item.ParametersOff)
	if err != nil {
		return Proto{}, fmt.Errorf("parameters of proto %d: %w", protoIdx, err)
	}
	params, err := r.TypeNames(list)
	if err != nil {
		return Proto{}, fmt.Errorf("parameters of proto %d: %w", protoIdx, err)
	}

	return Proto{Shorty: shorty, ReturnType: ret, Parameters: params}, nil
}

// FieldDeclaration renders field idx as "type name"
func (r *Resolver) FieldDeclaration(idx uint32) (string, error) {
	f, err := r.pools.Fields.Get(idx)
	if err != nil {
		return "", err
	}
	typ, err := r.TypeName(uint32(f.TypeIdx))
	if err != nil {
		return "", fmt.Errorf("field %d: %w", idx, err)
	}
	name, err := r.pools.Strings.String(f.NameIdx)
	if err != nil {
		return "", fmt.Errorf("field %d name: %w", idx, err)
	}
	return typ + " " + name, nil
}

// FieldReference renders field idx with its declaring class as
// "class type name"
func (r *Resolver) FieldReference(idx uint32) (string, error) {
	f, err := r.pools.Fields.Get(idx)
	if err != nil {
		return "", err
	}
	class, err := r.ClassName(uint32(f.ClassIdx))
	if err != nil {
		return "", fmt.Errorf("field %d class: %w", idx, err)
	}
	decl, err := r.FieldDeclaration(idx)
	if err != nil {
		return "", err
	}
	return class + " " + decl, nil
}

// MethodDeclaration renders method idx as "return name(params)"
func (r *Resolver) MethodDeclaration(idx uint32) (string, error) {
	m, err := r.pools.Methods.Get(idx)
	if err != nil {
		return "", err
	}
	proto, err := r.Proto(uint32(m.ProtoIdx))
	if err != nil {
		return "", fmt.Errorf("method %d: %w", idx, err)
	}
	name, err := r.pools.Strings.String(m.NameIdx)
	if err != nil {
		return "", fmt.Errorf("method %d name: %w", idx, err)
	}
	return proto.ReturnType + " " + name + proto.Signature(), nil
}

// MethodReference renders method idx with its declaring class as
// "class return name(params)"
func (r *Resolver) MethodReference(idx uint32) (string, error) {
	m, err := r.pools.Methods.Get(idx)
	if err != nil {
		return "", err
	}
	class, err := r.ClassName(uint32(m.ClassIdx))
	if err != nil {
		return "", fmt.Errorf("method %d class: %w", idx, err)
	}
	decl, err := r.MethodDeclaration(idx)
	if err != nil {
		return "", err
	}
	return class + " " + decl, nil
}
