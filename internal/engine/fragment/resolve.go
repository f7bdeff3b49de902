package fragment

// Path is one known route of object keys through a fragment.
type Path []string

// Resolve walks p through n. Arrays met on the way fan out: the rest of the
// path is applied to every element and the non-absent results are collected
// into a new array. The result is absent when a key is missing, when a scalar
// is met before the path is exhausted, or when every branch of a fan-out is
// absent.
func Resolve(n Node, p Path) Node {
	cur := n
	for i, key := range p {
		switch cur.kind {
		case KindArray:
			var found []Node
			for _, item := range cur.arr {
				if r := Resolve(item, p[i:]); !r.IsAbsent() {
					found = append(found, r)
				}
			}
			if len(found) == 0 {
				return Node{}
			}
			return Array(found...)
		case KindObject:
			next, ok := cur.obj[key]
			if !ok {
				return Node{}
			}
			cur = next
		default:
			return Node{}
		}
	}
	return cur
}

// ResolveFirst tries paths in order and returns the first match that is
// neither absent nor an empty array, together with its index in paths.
// It returns (absent, -1) when nothing matches.
func ResolveFirst(n Node, paths ...Path) (Node, int) {
	for i, p := range paths {
		r := Resolve(n, p)
		if r.IsAbsent() || (r.IsArray() && r.Len() == 0) {
			continue
		}
		return r, i
	}
	return Node{}, -1
}
