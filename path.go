package ninep

import "strings"

// splitParentName splits a path into its parent directory and leaf
// name. Trailing slashes are stripped first; "" and "/" are rejected as
// invalid. Ported from original_source/src/parse.rs's
// split_parent_name, using strings.TrimRight/LastIndexByte in place of Rust's
// trim_end_matches/rsplitn.
func splitParentName(path string) (parent, name string, err error) {
	trimmed := strings.TrimRight(path, "/")
	if trimmed == "" || trimmed == "/" {
		return "", "", errInvalidPath
	}
	idx := strings.LastIndexByte(trimmed, '/')
	if idx < 0 {
		name = trimmed
		parent = "/"
	} else {
		parent = trimmed[:idx]
		name = trimmed[idx+1:]
		if parent == "" {
			parent = "/"
		}
	}
	if name == "" {
		return "", "", errInvalidPath
	}
	return parent, name, nil
}

// pathParts splits path on '/', dropping empty components and ".",
// preserving order. Ported from original_source/src/parse.rs's
// path_parts.
func pathParts(path string) []string {
	raw := strings.Split(path, "/")
	parts := make([]string, 0, len(raw))
	for _, p := range raw {
		if p == "" || p == "." {
			continue
		}
		parts = append(parts, p)
	}
	return parts
}
