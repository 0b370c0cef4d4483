package types

// Access Flags
// Reference: dex-format, "access_flags definitions"

// MemberKind selects which interpretation applies to an access-flag bit.
// Several bit positions are overloaded and only the kind disambiguates them.
type MemberKind uint8

const (
	KindClass  MemberKind = 1 << 0
	KindField  MemberKind = 1 << 1
	KindMethod MemberKind = 1 << 2
)

func (k MemberKind) String() string {
	switch k {
	case KindClass:
		return "class"
	case KindField:
		return "field"
	case KindMethod:
		return "method"
	default:
		return "unknown"
	}
}

const (
	AccPublic               uint32 = 0x00001
	AccPrivate              uint32 = 0x00002
	AccProtected            uint32 = 0x00004
	AccStatic               uint32 = 0x00008
	AccFinal                uint32 = 0x00010
	AccSynchronized         uint32 = 0x00020 // method
	AccSuper                uint32 = 0x00020 // class
	AccVolatile             uint32 = 0x00040 // field
	AccBridge               uint32 = 0x00040 // method
	AccTransient            uint32 = 0x00080 // field
	AccVarargs              uint32 = 0x00080 // method
	AccNative               uint32 = 0x00100
	AccInterface            uint32 = 0x00200
	AccAbstract             uint32 = 0x00400
	AccStrict               uint32 = 0x00800
	AccSynthetic            uint32 = 0x01000
	AccAnnotation           uint32 = 0x02000
	AccEnum                 uint32 = 0x04000
	AccConstructor          uint32 = 0x10000
	AccDeclaredSynchronized uint32 = 0x20000
)

// AccessFlagEntry maps one bit to a name for the kinds it applies to.
type AccessFlagEntry struct {
	Bit   uint32
	Kinds MemberKind
	Name  string
}

// AccessFlagTable is walked in order when rendering flags.
var AccessFlagTable = []AccessFlagEntry{
	{AccPublic, KindClass | KindField | KindMethod, "public"},
	{AccPrivate, KindField | KindMethod, "private"},
	{AccProtected, KindField | KindMethod, "protected"},
	{AccStatic, KindField | KindMethod, "static"},
	{AccFinal, KindClass | KindField | KindMethod, "final"},
	{AccSynchronized, KindMethod, "synchronized"},
	{AccSuper, KindClass, "super"},
	{AccVolatile, KindField, "volatile"},
	{AccBridge, KindMethod, "bridge"},
	{AccTransient, KindField, "transient"},
	{AccVarargs, KindMethod, "varargs"},
	{AccNative, KindMethod, "native"},
	{AccInterface, KindClass, "interface"},
	{AccAbstract, KindClass | KindMethod, "abstract"},
	{AccStrict, KindMethod, "strict"},
	{AccSynthetic, KindField | KindMethod, "synthetic"},
	{AccAnnotation, KindClass, "annotation"},
	{AccEnum, KindClass | KindField, "enum"},
	{AccConstructor, KindMethod, "constructor"},
	{AccDeclaredSynchronized, KindMethod, "declared synchronized"},
}
