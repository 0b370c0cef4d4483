package dump

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		req     Request
		wantErr bool
		want    Sections
	}{
		{name: "no paths", req: Request{}, wantErr: true},
		{name: "blank path", req: Request{Paths: []string{"a.dex", "  "}}, wantErr: true},
		{name: "defaults applied", req: Request{Paths: []string{"a.dex"}}, want: DefaultSections()},
		{name: "explicit sections kept", req: Request{Paths: []string{"a.dex"}, Sections: Sections{Types: true}}, want: Sections{Types: true}},
		{name: "class name alone", req: Request{Paths: []string{"a.dex"}, ClassName: "Hello"}, want: Sections{}},
		{name: "verify only", req: Request{Paths: []string{"a.dex"}, VerifyOnly: true}, want: Sections{}},
		{name: "verify with sections", req: Request{Paths: []string{"a.dex"}, VerifyOnly: true, Sections: Sections{Strings: true}}, wantErr: true},
		{name: "verify with class", req: Request{Paths: []string{"a.dex"}, VerifyOnly: true, ClassName: "Hello"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			err := req.Validate()
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, req.Sections)
		})
	}
}

func TestRequest_ValidateTrimsClassName(t *testing.T) {
	req := Request{Paths: []string{"a.dex"}, ClassName: "  Hello "}
	require.NoError(t, req.Validate())
	assert.Equal(t, "Hello", req.ClassName)
}

func TestSections_IsEmpty(t *testing.T) {
	assert.True(t, Sections{}.IsEmpty())
	assert.False(t, Sections{Map: true}.IsEmpty())
}
