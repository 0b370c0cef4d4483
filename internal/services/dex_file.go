package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/deploymenttheory/go-dex/internal/disk"
	"github.com/deploymenttheory/go-dex/internal/interfaces"
	"github.com/deploymenttheory/go-dex/internal/logger"
	"github.com/deploymenttheory/go-dex/internal/parsers/accessflags"
	"github.com/deploymenttheory/go-dex/internal/parsers/classdata"
	"github.com/deploymenttheory/go-dex/internal/parsers/descriptor"
	"github.com/deploymenttheory/go-dex/internal/parsers/header"
	"github.com/deploymenttheory/go-dex/internal/parsers/pools"
	"github.com/deploymenttheory/go-dex/internal/parsers/resolver"
	"github.com/deploymenttheory/go-dex/internal/types"
)

// Options controls how a DexFile is opened and decoded
type Options struct {
	VerifyChecksum        bool
	FixVirtualMethodCount bool
	Source                disk.SourceOptions
	Logger                *zap.SugaredLogger
}

// DefaultOptions returns the options used when no config is loaded
func DefaultOptions() Options {
	return Options{
		VerifyChecksum:        true,
		FixVirtualMethodCount: true,
		Source:                disk.DefaultSourceOptions(),
	}
}

// DexFile is the decode context of one opened DEX image. All pools are
// built when the file is opened, in dependency order, and are owned by the
// DexFile; nothing is shared between files.
type DexFile struct {
	src     interfaces.ByteSource
	session uuid.UUID
	log     *zap.SugaredLogger

	header      interfaces.HeaderReader
	strings     *pools.StringPool
	types       *pools.TypePool
	protos      *pools.ProtoPool
	fields      *pools.FieldPool
	methods     *pools.MethodPool
	classDefs   interfaces.ClassDefPool
	descriptors *descriptor.Renderer
	flags       *accessflags.Renderer
	resolver    *resolver.Resolver
	decoder     *classdata.Decoder
}

// Open opens path and builds its decode context. The returned DexFile owns
// the underlying source and must be closed.
func Open(path string, opts Options) (*DexFile, error) {
	src, err := disk.OpenSource(path, opts.Source)
	if err != nil {
		return nil, err
	}

	df, err := NewDexFile(src, opts)
	if err != nil {
		src.Close()
		return nil, err
	}
	return df, nil
}

// NewDexFile validates the header of src and builds every pool:
// header, strings, types, protos, fields, methods, class defs.
func NewDexFile(src interfaces.ByteSource, opts Options) (*DexFile, error) {
	session, log := newSession(src, opts)
	df := &DexFile{src: src, session: session, log: log}

	hr, err := readHeader(src, opts, log)
	if err != nil {
		return nil, err
	}
	df.header = hr
	h := hr.Header()

	if df.strings, err = pools.NewStringPool(src, h); err != nil {
		return nil, df.poolError("string", err)
	}
	df.logPool("string", h.StringIDsSize, h.StringIDsOff)

	if df.types, err = pools.NewTypePool(src, h, df.strings); err != nil {
		return nil, df.poolError("type", err)
	}
	df.logPool("type", h.TypeIDsSize, h.TypeIDsOff)

	if df.protos, err = pools.NewProtoPool(src, h); err != nil {
		return nil, df.poolError("proto", err)
	}
	df.logPool("proto", h.ProtoIDsSize, h.ProtoIDsOff)

	if df.fields, err = pools.NewFieldPool(src, h); err != nil {
		return nil, df.poolError("field", err)
	}
	df.logPool("field", h.FieldIDsSize, h.FieldIDsOff)

	if df.methods, err = pools.NewMethodPool(src, h); err != nil {
		return nil, df.poolError("method", err)
	}
	df.logPool("method", h.MethodIDsSize, h.MethodIDsOff)

	if df.classDefs, err = pools.NewClassDefPool(src, h); err != nil {
		return nil, df.poolError("class_def", err)
	}
	df.logPool("class_def", h.ClassDefsSize, h.ClassDefsOff)

	df.descriptors = descriptor.NewRenderer(df.strings)
	df.flags = accessflags.NewRenderer()
	df.resolver = resolver.NewResolver(src, resolver.Pools{
		Strings: df.strings,
		Types:   df.types,
		Protos:  df.protos,
		Fields:  df.fields,
		Methods: df.methods,
	}, df.descriptors)
	df.decoder = classdata.NewDecoder(src, df.resolver, df.flags, df.fields.Len(), df.methods.Len(),
		classdata.Options{FixVirtualMethodCount: opts.FixVirtualMethodCount})

	return df, nil
}

// newSession assigns a session id and a logger carrying file and session
func newSession(src interfaces.ByteSource, opts Options) (uuid.UUID, *zap.SugaredLogger) {
	base := opts.Logger
	if base == nil {
		base = logger.Nop()
	}
	session := uuid.New()
	return session, logger.WithFields(base, map[string]interface{}{
		"file":    src.Name(),
		"session": session.String(),
	})
}

// readHeader enforces the size limit and validates the header of src
func readHeader(src interfaces.ByteSource, opts Options, log *zap.SugaredLogger) (interfaces.HeaderReader, error) {
	if opts.Source.MaxSize > 0 && src.Size() > opts.Source.MaxSize {
		return nil, fmt.Errorf("%s is %d bytes, larger than the %d byte limit", src.Name(), src.Size(), opts.Source.MaxSize)
	}

	hr, err := header.NewHeaderReader(src, header.Options{SkipChecksum: !opts.VerifyChecksum})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", src.Name(), err)
	}
	if v := hr.Validation(); !v.FileSizeMatches {
		log.Warnw("header file_size does not match input size", "file_size", hr.Header().FileSize, "actual", v.ActualSize)
	}
	return hr, nil
}

// closeSource logs the read counters of src, when it keeps any, and closes it
func closeSource(src interfaces.ByteSource, log *zap.SugaredLogger) error {
	if sp, ok := src.(disk.StatsProvider); ok {
		format, calls, n := sp.Stats().Snapshot()
		log.Debugw("source closed", "format", format, "read_calls", calls, "bytes_read", n)
	}
	return src.Close()
}

func (df *DexFile) poolError(pool string, err error) error {
	return fmt.Errorf("%s: failed to build %s pool: %w", df.src.Name(), pool, err)
}

func (df *DexFile) logPool(pool string, count, offset uint32) {
	df.log.Debugw("pool loaded", "pool", pool, "count", count, "offset", fmt.Sprintf("0x%x", offset))
}

// Name returns the name of the underlying source
func (df *DexFile) Name() string { return df.src.Name() }

// Session returns the identifier assigned to this decode context
func (df *DexFile) Session() uuid.UUID { return df.session }

// Close releases the underlying source
func (df *DexFile) Close() error { return closeSource(df.src, df.log) }

// Header returns the decoded header
func (df *DexFile) Header() *types.Header { return df.header.Header() }

// Validation returns the outcome of the header checks
func (df *DexFile) Validation() types.HeaderValidation { return df.header.Validation() }

// MapList decodes the map_list, nil when the header declares none
func (df *DexFile) MapList() ([]types.MapItem, error) {
	return header.ReadMapList(df.src, df.Header())
}

// StringTable lists every string in index order
func (df *DexFile) StringTable() ([]StringEntry, error) {
	out := make([]StringEntry, 0, df.strings.Len())
	for i := uint32(0); i < df.strings.Len(); i++ {
		off, err := df.strings.DataOffset(i)
		if err != nil {
			return nil, err
		}
		s, err := df.strings.Display(i)
		if err != nil {
			return nil, err
		}
		out = append(out, StringEntry{Index: i, Offset: off, Value: s})
	}
	return out, nil
}

// TypeTable lists every type. A descriptor that does not render is noted
// on its entry; fatal read errors end the listing.
func (df *DexFile) TypeTable() ([]TypeEntry, error) {
	out := make([]TypeEntry, 0, df.types.Len())
	for i := uint32(0); i < df.types.Len(); i++ {
		item, err := df.types.Get(i)
		if err != nil {
			return nil, err
		}
		e := TypeEntry{Index: i, DescriptorIdx: item.DescriptorIdx}
		if e.Descriptor, err = df.strings.Display(item.DescriptorIdx); err != nil {
			if types.IsFatal(err) {
				return nil, err
			}
			e.Error = err.Error()
			out = append(out, e)
			continue
		}
		if e.Name, err = df.resolver.TypeName(i); err != nil {
			if types.IsFatal(err) {
				return nil, err
			}
			e.Error = err.Error()
		}
		out = append(out, e)
	}
	return out, nil
}

// ProtoTable lists every prototype
func (df *DexFile) ProtoTable() ([]ProtoEntry, error) {
	out := make([]ProtoEntry, 0, df.protos.Len())
	for i := uint32(0); i < df.protos.Len(); i++ {
		p, err := df.resolver.Proto(i)
		if err != nil {
			if types.IsFatal(err) {
				return nil, err
			}
			out = append(out, ProtoEntry{Index: i, Error: err.Error()})
			continue
		}
		out = append(out, ProtoEntry{Index: i, Shorty: p.Shorty, ReturnType: p.ReturnType, Parameters: p.Parameters})
	}
	return out, nil
}

// FieldTable lists every field_id as "class type name"
func (df *DexFile) FieldTable() ([]ReferenceEntry, error) {
	return df.referenceTable(df.fields.Len(), df.resolver.FieldReference)
}

// MethodTable lists every method_id as "class return name(params)"
func (df *DexFile) MethodTable() ([]ReferenceEntry, error) {
	return df.referenceTable(df.methods.Len(), df.resolver.MethodReference)
}

func (df *DexFile) referenceTable(n uint32, render func(uint32) (string, error)) ([]ReferenceEntry, error) {
	out := make([]ReferenceEntry, 0, n)
	for i := uint32(0); i < n; i++ {
		ref, err := render(i)
		if err != nil {
			if types.IsFatal(err) {
				return nil, err
			}
			out = append(out, ReferenceEntry{Index: i, Error: err.Error()})
			continue
		}
		out = append(out, ReferenceEntry{Index: i, Reference: ref})
	}
	return out, nil
}

// ClassCount returns the number of class definitions
func (df *DexFile) ClassCount() uint32 { return df.classDefs.Len() }

// Class decodes class definition idx. Non-fatal problems are recorded on
// the report; a fatal error is returned and ends the decode of this file.
func (df *DexFile) Class(idx uint32) (*ClassReport, error) {
	def, err := df.classDefs.Get(idx)
	if err != nil {
		return nil, err
	}

	r := &ClassReport{Index: idx, AccessFlags: def.AccessFlags}
	steps := []func() error{
		func() (err error) {
			r.Name, err = df.resolver.ClassName(def.ClassIdx)
			return err
		},
		func() (err error) {
			r.Flags, err = df.flags.Render(def.AccessFlags, types.KindClass)
			return err
		},
		func() (err error) {
			if def.SuperclassIdx == 0 || def.SuperclassIdx == types.NoIndex {
				return nil
			}
			r.Superclass, err = df.resolver.ClassName(def.SuperclassIdx)
			return err
		},
		func() error {
			list, err := pools.ReadTypeList(df.src, def.InterfacesOff)
			if err != nil {
				return err
			}
			r.Interfaces, err = df.resolver.TypeNames(list)
			return err
		},
		func() (err error) {
			if def.SourceFileIdx == types.NoIndex {
				return nil
			}
			r.SourceFile, err = df.strings.String(def.SourceFileIdx)
			return err
		},
		func() (err error) {
			r.ClassData, err = df.decoder.Decode(def.ClassDataOff)
			return err
		},
	}

	for _, step := range steps {
		if err := step(); err != nil {
			err = fmt.Errorf("class %d: %w", idx, err)
			if types.IsFatal(err) {
				return nil, err
			}
			df.log.Warnw("class decode failed", "class", idx, "error", err)
			r.fail(err)
			break
		}
	}
	return r, nil
}

// Classes decodes every class definition in index order
func (df *DexFile) Classes() ([]*ClassReport, error) {
	out := make([]*ClassReport, 0, df.classDefs.Len())
	for i := uint32(0); i < df.classDefs.Len(); i++ {
		r, err := df.Class(i)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// ClassByName finds a class by its rendered name ("java.lang.String") or
// its descriptor ("Ljava/lang/String;")
func (df *DexFile) ClassByName(name string) (*ClassReport, error) {
	for i := uint32(0); i < df.classDefs.Len(); i++ {
		def, err := df.classDefs.Get(i)
		if err != nil {
			return nil, err
		}
		desc, err := df.types.Descriptor(def.ClassIdx)
		if err != nil {
			if types.IsFatal(err) {
				return nil, err
			}
			continue
		}
		rendered, err := descriptor.Decode(desc)
		if err != nil && !errors.Is(err, types.ErrBadTypeDescriptor) {
			return nil, err
		}
		if desc == name || (err == nil && rendered == name) {
			return df.Class(i)
		}
	}
	return nil, fmt.Errorf("%w: %s", types.ErrClassNotFound, name)
}
