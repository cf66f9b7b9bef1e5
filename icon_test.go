package pagegrab_test

import (
	"encoding/json"
	"testing"

	"github.com/fwojciec/pagegrab"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIcon_MarshalJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		icon *pagegrab.Icon
		want string
	}{
		{
			name: "image icon carries only kind and source",
			icon: pagegrab.NewImageIcon("a.png"),
			want: `{"kind":"image","source":"a.png"}`,
		},
		{
			name: "vector icon carries viewBox and paths",
			icon: pagegrab.NewVectorIcon("0 0 1 1", []string{"M0 0Z"}),
			want: `{"kind":"vector","viewBox":"0 0 1 1","paths":["M0 0Z"]}`,
		},
		{
			name: "vector icon without viewBox omits it",
			icon: pagegrab.NewVectorIcon("", []string{"M1 1"}),
			want: `{"kind":"vector","paths":["M1 1"]}`,
		},
		{
			name: "vector icon always carries paths",
			icon: &pagegrab.Icon{Kind: pagegrab.IconVector, ViewBox: "0 0 2 2"},
			want: `{"kind":"vector","viewBox":"0 0 2 2","paths":[]}`,
		},
		{
			name: "ampersands are not escaped",
			icon: pagegrab.NewImageIcon("/i.png?a=1&b=2"),
			want: `{"kind":"image","source":"/i.png?a=1&b=2"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := tt.icon.MarshalJSON()

			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestIcon_RoundTrip(t *testing.T) {
	t.Parallel()

	icons := []*pagegrab.Icon{
		pagegrab.NewImageIcon("a.png"),
		pagegrab.NewVectorIcon("0 0 10 10", []string{"M0 0", "", "M1 1"}),
		pagegrab.NewVectorIcon("0 0 3 3", nil),
		pagegrab.NewImageIcon("https://example.com/x.svg?q=<1>"),
	}

	data, err := json.MarshalIndent(icons, "", "  ")
	require.NoError(t, err)

	var got []*pagegrab.Icon
	require.NoError(t, json.Unmarshal(data, &got))

	assert.Equal(t, icons, got)
}

func TestIcon_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		icon    *pagegrab.Icon
		wantErr bool
	}{
		{name: "image with source", icon: pagegrab.NewImageIcon("a.png")},
		{name: "image without source", icon: pagegrab.NewImageIcon(""), wantErr: true},
		{name: "vector with viewBox only", icon: pagegrab.NewVectorIcon("0 0 1 1", nil)},
		{name: "vector with paths only", icon: pagegrab.NewVectorIcon("", []string{""})},
		{name: "empty vector", icon: pagegrab.NewVectorIcon("", nil), wantErr: true},
		{name: "unknown kind", icon: &pagegrab.Icon{Kind: "font"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.icon.Validate()

			if tt.wantErr {
				assert.Equal(t, pagegrab.EINVALID, pagegrab.ErrorCode(err))
				return
			}
			assert.NoError(t, err)
		})
	}
}
