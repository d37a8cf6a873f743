package ninep

import (
	"reflect"
	"testing"
)

func TestSplitParentName(t *testing.T) {
	cases := []struct {
		path, parent, name string
		wantErr             bool
	}{
		{"/a/b/c", "/a/b", "c", false},
		{"/a/b/c/", "/a/b", "c", false},
		{"/a", "/", "a", false},
		{"a", "/", "a", false},
		{"", "", "", true},
		{"/", "", "", true},
		{"///", "", "", true},
	}
	for _, c := range cases {
		parent, name, err := splitParentName(c.path)
		if c.wantErr {
			if err == nil {
				t.Errorf("splitParentName(%q) = (%q, %q, nil), want error", c.path, parent, name)
			}
			continue
		}
		if err != nil {
			t.Errorf("splitParentName(%q) error: %v", c.path, err)
			continue
		}
		if parent != c.parent || name != c.name {
			t.Errorf("splitParentName(%q) = (%q, %q), want (%q, %q)", c.path, parent, name, c.parent, c.name)
		}
	}
}

func TestPathParts(t *testing.T) {
	cases := []struct {
		path string
		want []string
	}{
		{"/a/b/c", []string{"a", "b", "c"}},
		{"/a/./b", []string{"a", "b"}},
		{"", nil},
		{"/", nil},
		{"a", []string{"a"}},
		{"//a//b//", []string{"a", "b"}},
	}
	for _, c := range cases {
		got := pathParts(c.path)
		if len(got) == 0 {
			got = nil
		}
		if !reflect.DeepEqual(got, c.want) {
			t.Errorf("pathParts(%q) = %v, want %v", c.path, got, c.want)
		}
	}
}
