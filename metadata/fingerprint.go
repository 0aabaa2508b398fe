package metadata

import (
	"encoding/hex"
	"fmt"
	"strings"

	"lukechampine.com/blake3"
)

// Fingerprint returns a BLAKE3 digest of the type graph and modules of s,
// rendered in ascending id order. Two snapshots with the same fingerprint
// describe the same runtime regardless of their declared spec version and
// block number. Docs are not part of the rendering.
func (s *Snapshot) Fingerprint() string {
	sb := &strings.Builder{}
	for _, id := range SortedTypeIDs(s.Types) {
		writeNode(sb, s.Types[id])
	}
	for _, idx := range SortedModuleIndexes(s.Modules) {
		writeModule(sb, s.Modules[idx])
	}
	sum := blake3.Sum256([]byte(sb.String()))
	return hex.EncodeToString(sum[:])
}

func writeNode(sb *strings.Builder, n *Node) {
	_, _ = fmt.Fprintf(sb, "%d %s %s", n.ID, n.Kind(), n.JoinedPath())
	for _, p := range n.TypeParams {
		sb.WriteString(" <" + p.Name)
		if p.TypeID != nil {
			_, _ = fmt.Fprintf(sb, "=%d", *p.TypeID)
		}
		sb.WriteString(">")
	}
	switch def := n.Def.(type) {
	case *Composite:
		writeFields(sb, def.Fields)
	case *Variant:
		for _, c := range def.Cases {
			_, _ = fmt.Fprintf(sb, " |%s#%d", c.Name, c.Index)
			writeFields(sb, c.Fields)
		}
	case *Array:
		_, _ = fmt.Fprintf(sb, " [%d;%d]", def.Elem, def.Len)
	case *Primitive:
		sb.WriteString(" " + def.Name)
	default:
		for _, ref := range n.References() {
			_, _ = fmt.Fprintf(sb, " %d", ref)
		}
	}
	sb.WriteString("\n")
}

func writeFields(sb *strings.Builder, fields []Field) {
	for _, f := range fields {
		_, _ = fmt.Fprintf(sb, " %s:%d", f.FieldName(), f.TypeID)
		if f.TypeName != nil {
			sb.WriteString("(" + *f.TypeName + ")")
		}
	}
}

func writeModule(sb *strings.Builder, m *Module) {
	_, _ = fmt.Fprintf(sb, "module %d %s", m.Index, m.Name)
	for _, ref := range m.References() {
		_, _ = fmt.Fprintf(sb, " %d", ref)
	}
	for _, c := range m.Constants {
		_, _ = fmt.Fprintf(sb, " %s=%x", c.Name, c.Value)
	}
	if m.Storage != nil {
		for _, e := range m.Storage.Entries {
			_, _ = fmt.Fprintf(sb, " %s/%s/%s=%x", e.Name, e.Kind, e.Modifier, e.Default)
			if e.Map != nil {
				sb.WriteString("[" + strings.Join(e.Map.Hashers, ",") + "]")
			}
		}
	}
	sb.WriteString("\n")
}
