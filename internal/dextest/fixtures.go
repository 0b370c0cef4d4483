package dextest

import "github.com/deploymenttheory/go-dex/internal/types"

// String indices used by MinimalBuilder.
const (
	StrInt = iota
	StrHello
	StrObject
	StrVoid
	StrSource
	StrCount
	StrRun
	StrShortyV
)

// Type indices used by MinimalBuilder.
const (
	TypeInt = iota
	TypeHello
	TypeObject
	TypeVoid
)

// MinimalBuilder describes a single public class Hello extending
// java.lang.Object with one static int field "count" and one direct
// no-argument void method "run".
func MinimalBuilder() *Builder {
	return &Builder{
		Strings: []string{"I", "LHello;", "Ljava/lang/Object;", "V", "Hello.java", "count", "run", "V"},
		Types:   []uint32{StrInt, StrHello, StrObject, StrVoid},
		Protos:  []Proto{{Shorty: StrShortyV, ReturnType: TypeVoid}},
		Fields: []types.FieldIDItem{
			{ClassIdx: TypeHello, TypeIdx: TypeInt, NameIdx: StrCount},
		},
		Methods: []types.MethodIDItem{
			{ClassIdx: TypeHello, ProtoIdx: 0, NameIdx: StrRun},
		},
		Classes: []Class{{
			Def: types.ClassDefItem{
				ClassIdx:      TypeHello,
				AccessFlags:   types.AccPublic,
				SuperclassIdx: TypeObject,
				SourceFileIdx: StrSource,
			},
			Data: &ClassData{
				StaticFields:  []Field{{Index: 0, AccessFlags: types.AccStatic}},
				DirectMethods: []Method{{Index: 0, AccessFlags: types.AccPublic | types.AccStatic, CodeOff: 0x200}},
			},
		}},
	}
}

// Minimal returns the image described by MinimalBuilder.
func Minimal() []byte {
	return MinimalBuilder().Build()
}
