package dump

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/deploymenttheory/go-dex/internal/services"
	"github.com/deploymenttheory/go-dex/internal/types"
	"github.com/deploymenttheory/go-dex/pkg/app"
)

// Handle decodes every requested file in turn. A file that fails is
// recorded on its FileResult and the batch moves on to the next file.
func Handle(ctx *app.Context, req *Request) (*Response, error) {
	startTime := time.Now()

	if err := req.Validate(); err != nil {
		return nil, err
	}

	opts := req.Options
	if opts.Logger == nil {
		opts.Logger = ctx.Logger
	}

	resp := &Response{Files: make([]FileResult, 0, len(req.Paths))}
	for _, path := range req.Paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		ctx.Log(fmt.Sprintf("Decoding %s", path))
		result := decodeFile(path, req, opts)
		if result.Failed() {
			resp.Failed++
			ctx.Error(result.Error)
			ctx.Logger.Debugw("file decode failed", "file", path, "error", result.Err)
		}
		resp.Files = append(resp.Files, result)
	}

	resp.Elapsed = time.Since(startTime)
	ctx.Log(fmt.Sprintf("Processed %d files, %d failed, in %v", len(resp.Files), resp.Failed, resp.Elapsed))
	return resp, nil
}

func decodeFile(path string, req *Request, opts services.Options) FileResult {
	result := FileResult{Path: path}
	fail := func(err error) FileResult {
		result.Err = err
		result.Error = err.Error()
		return result
	}

	if req.VerifyOnly {
		check, err := services.VerifyHeader(path, opts)
		if err != nil {
			return fail(openError(path, err))
		}
		result.Session = check.Session.String()
		result.Header = NewHeaderInfo(check.Header)
		result.Validation = NewValidationInfo(check.Validation)
		return result
	}

	df, err := services.Open(path, opts)
	if err != nil {
		return fail(openError(path, err))
	}
	defer df.Close()

	result.Session = df.Session().String()

	s := req.Sections
	if s.Header {
		result.Header = NewHeaderInfo(df.Header())
		result.Validation = NewValidationInfo(df.Validation())
	}
	if s.Map {
		items, err := df.MapList()
		if err != nil {
			return fail(err)
		}
		for _, it := range items {
			result.Map = append(result.Map, MapEntry{Type: it.Type.String(), Code: uint16(it.Type), Size: it.Size, Offset: it.Offset})
		}
	}
	if s.Strings {
		if result.Strings, err = df.StringTable(); err != nil {
			return fail(err)
		}
	}
	if s.Types {
		if result.Types, err = df.TypeTable(); err != nil {
			return fail(err)
		}
	}
	if s.Protos {
		if result.Protos, err = df.ProtoTable(); err != nil {
			return fail(err)
		}
	}
	if s.Fields {
		if result.Fields, err = df.FieldTable(); err != nil {
			return fail(err)
		}
	}
	if s.Methods {
		if result.Methods, err = df.MethodTable(); err != nil {
			return fail(err)
		}
	}

	switch {
	case req.ClassName != "":
		c, err := df.ClassByName(req.ClassName)
		if err != nil {
			if errors.Is(err, types.ErrClassNotFound) {
				return fail(app.NewError(app.ErrCodeClassMissing, fmt.Sprintf("class %q not found in %s", req.ClassName, path), err))
			}
			return fail(err)
		}
		result.Classes = []*services.ClassReport{c}
	case s.Classes:
		if result.Classes, err = df.Classes(); err != nil {
			return fail(err)
		}
	}

	return result
}

// openError tags a failure to open path as a file access problem when the
// file could not be read at all, and as a decode problem otherwise
func openError(path string, err error) error {
	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return app.NewError(app.ErrCodeFileAccess, fmt.Sprintf("cannot read %s", path), err)
	}
	return app.NewError(app.ErrCodeDecode, fmt.Sprintf("cannot decode %s", path), err)
}
