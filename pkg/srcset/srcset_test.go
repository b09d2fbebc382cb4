package srcset

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name   string
		srcset string
		want   []Entry
	}{
		{
			name:   "width descriptors",
			srcset: "small.jpg 320w, medium.jpg 640w, large.jpg 1280w",
			want: []Entry{
				{URL: "small.jpg", Width: 320},
				{URL: "medium.jpg", Width: 640},
				{URL: "large.jpg", Width: 1280},
			},
		},
		{
			name:   "missing descriptor defaults to zero",
			srcset: "a.jpg, b.jpg 640w",
			want: []Entry{
				{URL: "a.jpg", Width: 0},
				{URL: "b.jpg", Width: 640},
			},
		},
		{
			name:   "density descriptor has no width",
			srcset: "a.jpg 2x, b.jpg 100w",
			want: []Entry{
				{URL: "a.jpg", Width: 0},
				{URL: "b.jpg", Width: 100},
			},
		},
		{
			name:   "empty segments dropped",
			srcset: " , a.jpg 10w, ",
			want: []Entry{
				{URL: "a.jpg", Width: 10},
			},
		},
		{
			name:   "only commas yields nothing",
			srcset: ",,,",
			want:   []Entry{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Parse(tt.srcset))
		})
	}
}

func TestBestURL(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		srcset string
		want   string
	}{
		{
			name:   "picks widest variant",
			src:    "fallback.jpg",
			srcset: "small.jpg 320w, large.jpg 1280w, medium.jpg 640w",
			want:   "large.jpg",
		},
		{
			name:   "no srcset returns src",
			src:    "only.jpg",
			srcset: "",
			want:   "only.jpg",
		},
		{
			name:   "unparseable srcset falls back to src",
			src:    "only.jpg",
			srcset: " , ,",
			want:   "only.jpg",
		},
		{
			name:   "ties keep document order",
			src:    "fallback.jpg",
			srcset: "first.jpg 500w, second.jpg 500w",
			want:   "first.jpg",
		},
		{
			name:   "all widths zero keeps first entry",
			src:    "fallback.jpg",
			srcset: "a.jpg, b.jpg 2x",
			want:   "a.jpg",
		},
		{
			name:   "empty src and empty srcset",
			src:    "",
			srcset: "",
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BestURL(tt.src, tt.srcset))
		})
	}
}
