package models

import (
	"reflect"
	"testing"
)

func TestMergeTags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		userTags []string
		aiTags   []string
		want     []string
	}{
		{
			name:     "user tags come first",
			userTags: []string{"station-4"},
			aiTags:   []string{"welding", "torque"},
			want:     []string{"station-4", "welding", "torque"},
		},
		{
			name:     "case-insensitive dedupe keeps user casing",
			userTags: []string{"Welding"},
			aiTags:   []string{"welding", "fixture"},
			want:     []string{"Welding", "fixture"},
		},
		{
			name:     "empty entries dropped",
			userTags: []string{"", "  "},
			aiTags:   []string{"calibration"},
			want:     []string{"calibration"},
		},
		{
			name:   "nil ai tags keeps user tags",
			aiTags: nil,
			want:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			n := &Note{UserTags: tt.userTags}
			n.MergeTags(tt.aiTags)

			if !reflect.DeepEqual(n.Tags, tt.want) {
				t.Errorf("MergeTags() = %v, want %v", n.Tags, tt.want)
			}
		})
	}
}

func TestCleanTags(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "trims and dedupes",
			in:   []string{" welding ", "Welding", "torque"},
			want: []string{"welding", "torque"},
		},
		{
			name: "drops empties",
			in:   []string{"", "   ", "fixture"},
			want: []string{"fixture"},
		},
		{
			name: "nil input",
			in:   nil,
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := CleanTags(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("CleanTags() = %v, want %v", got, tt.want)
			}
		})
	}
}
