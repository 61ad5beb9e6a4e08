package symbols

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Flatten turns a nested record into a dotted-path map, e.g.
// {"ronin": {"createdAt": "x"}} -> {"ronin.createdAt": "x"}.
// Array elements are flattened with a "[N]" path segment, e.g.
// {"items": [{"id": 1}]} -> {"items[0].id": 1}, so Expand can reconstruct
// the original array shape.
func Flatten(record map[string]any) map[string]any {
	out := make(map[string]any)
	flattenInto(out, "", record)
	return out
}

func flattenInto(out map[string]any, prefix string, value any) {
	switch v := value.(type) {
	case map[string]any:
		if len(v) == 0 {
			out[prefix] = v
			return
		}
		for key, val := range v {
			flattenInto(out, joinPath(prefix, key), val)
		}
	case []any:
		if len(v) == 0 {
			out[prefix] = v
			return
		}
		for i, val := range v {
			flattenInto(out, fmt.Sprintf("%s[%d]", prefix, i), val)
		}
	default:
		out[prefix] = v
	}
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

// pathSegment is one component of a dotted mounting path: a field key,
// optionally tagged as an array index ("[0]").
type pathSegment struct {
	key     string
	isIndex bool
	index   int
}

// splitMountingPath parses "items[0].id" into [{items,false,0},{0,true,0},{id,false,0}].
func splitMountingPath(path string) []pathSegment {
	var segments []pathSegment
	for _, part := range strings.Split(path, ".") {
		for len(part) > 0 {
			if i := strings.IndexByte(part, '['); i >= 0 {
				if i > 0 {
					segments = append(segments, pathSegment{key: part[:i]})
				}
				end := strings.IndexByte(part[i:], ']')
				if end < 0 {
					segments = append(segments, pathSegment{key: part})
					break
				}
				idxStr := part[i+1 : i+end]
				idx, err := strconv.Atoi(idxStr)
				if err != nil {
					segments = append(segments, pathSegment{key: part})
					break
				}
				segments = append(segments, pathSegment{isIndex: true, index: idx})
				part = part[i+end+1:]
				continue
			}
			segments = append(segments, pathSegment{key: part})
			break
		}
	}
	return segments
}

// node is a mutable intermediate tree used while expanding dotted paths;
// exactly one of fields/items is populated once a node is known to be an
// object or an array.
type node struct {
	leaf     any
	isLeaf   bool
	fields   map[string]*node
	items    map[int]*node
}

// Expand is the inverse of Flatten: it rebuilds a nested record (with
// arrays reconstructed from "[N]" path segments) from a dotted-path map.
func Expand(flat map[string]any) map[string]any {
	// Deterministic order so array-building never reorders indices
	// differently across runs for the same input.
	keys := make([]string, 0, len(flat))
	for k := range flat {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	root := &node{fields: map[string]*node{}}
	for _, path := range keys {
		setAtPath(root, splitMountingPath(path), flat[path])
	}
	return materialize(root).(map[string]any)
}

func setAtPath(root *node, segments []pathSegment, value any) {
	cur := root
	for i, seg := range segments {
		last := i == len(segments)-1
		if seg.isIndex {
			if cur.items == nil {
				cur.items = map[int]*node{}
			}
			child, ok := cur.items[seg.index]
			if !ok {
				child = &node{}
				cur.items[seg.index] = child
			}
			if last {
				child.leaf, child.isLeaf = value, true
				return
			}
			cur = child
			continue
		}

		if cur.fields == nil {
			cur.fields = map[string]*node{}
		}
		child, ok := cur.fields[seg.key]
		if !ok {
			child = &node{}
			cur.fields[seg.key] = child
		}
		if last {
			child.leaf, child.isLeaf = value, true
			return
		}
		cur = child
	}
}

func materialize(n *node) any {
	switch {
	case n.isLeaf:
		return n.leaf
	case n.items != nil:
		max := -1
		for idx := range n.items {
			if idx > max {
				max = idx
			}
		}
		out := make([]any, max+1)
		for idx, child := range n.items {
			out[idx] = materialize(child)
		}
		return out
	default:
		out := make(map[string]any, len(n.fields))
		for key, child := range n.fields {
			out[key] = materialize(child)
		}
		return out
	}
}

// DeepContains recursively searches every string leaf of value for substr.
func DeepContains(value any, substr string) bool {
	switch v := value.(type) {
	case string:
		return strings.Contains(v, substr)
	case map[string]any:
		for _, val := range v {
			if DeepContains(val, substr) {
				return true
			}
		}
	case []any:
		for _, val := range v {
			if DeepContains(val, substr) {
				return true
			}
		}
	}
	return false
}
