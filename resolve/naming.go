package resolve

import (
	"fmt"
	"strings"

	"github.com/cottand/palletgen/metadata"
)

// maxNameDepth bounds how deep inline names are expanded, so that
// recursive inline types (a sequence of a tuple of itself) still get a name
const maxNameDepth = 8

// namer is the default naming policy. Composites and variants are named
// after their path; every other kind is named after what it contains.
type namer struct {
	types map[metadata.TypeID]*metadata.Node
	tag   string
	// generic holds the instantiation counter suffix of composites sharing one path
	generic map[metadata.TypeID]int
}

func newNamer(types map[metadata.TypeID]*metadata.Node, tag string) *namer {
	n := &namer{types: types, tag: tag, generic: make(map[metadata.TypeID]int)}

	byPath := make(map[string][]metadata.TypeID)
	for _, id := range metadata.SortedTypeIDs(types) {
		node := types[id]
		if node.Kind() != metadata.KindComposite || len(node.Path) == 0 {
			continue
		}
		byPath[node.JoinedPath()] = append(byPath[node.JoinedPath()], id)
	}
	for _, ids := range byPath {
		if len(ids) < 2 {
			continue
		}
		for i, id := range ids {
			n.generic[id] = i + 1
		}
	}
	return n
}

func (n *namer) name(id metadata.TypeID) Name {
	node := n.types[id]
	switch node.Kind() {
	case metadata.KindComposite, metadata.KindVariant:
		if len(node.Path) == 0 {
			return Name{Namespace: n.namespace(nil), ClassName: fmt.Sprintf("Type%d", id)}
		}
		class := node.Path[len(node.Path)-1]
		if counter, ok := n.generic[id]; ok {
			class = fmt.Sprintf("%sT%d", class, counter)
		}
		return Name{Namespace: n.namespace(node.Path[:len(node.Path)-1]), ClassName: class}
	case metadata.KindArray:
		return Name{Namespace: n.namespace([]string{"types", "base"}), ClassName: n.inline(id, 0)}
	default:
		return Name{ClassName: n.inline(id, 0)}
	}
}

func (n *namer) namespace(segments []string) []string {
	if n.tag == "" {
		return append([]string(nil), segments...)
	}
	return append([]string{n.tag}, segments...)
}

func (n *namer) inline(id metadata.TypeID, depth int) string {
	node, ok := n.types[id]
	if !ok || depth > maxNameDepth {
		return fmt.Sprintf("Type%d", id)
	}
	switch def := node.Def.(type) {
	case *metadata.Primitive:
		return def.Name
	case *metadata.Sequence:
		return "Vec<" + n.inline(def.Elem, depth+1) + ">"
	case *metadata.Array:
		return fmt.Sprintf("Arr%d%s", def.Len, n.inline(def.Elem, depth+1))
	case *metadata.Compact:
		return "Compact<" + n.inline(def.Inner, depth+1) + ">"
	case *metadata.BitSequence:
		return "BitSeq"
	case *metadata.Tuple:
		if len(def.Elems) == 0 {
			return "Unit"
		}
		parts := make([]string, len(def.Elems))
		for i, e := range def.Elems {
			parts[i] = n.inline(e, depth+1)
		}
		return "Tuple<" + strings.Join(parts, ",") + ">"
	default:
		return n.name(id).String()
	}
}
