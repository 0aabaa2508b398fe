package emit

import (
	"fmt"

	"github.com/cottand/palletgen/metadata"
	"github.com/cottand/palletgen/schemaerr"
	"github.com/hashicorp/go-set/v3"
)

type VariantClass uint8

const (
	_ VariantClass = iota
	// VariantEnum is emitted as its own enum definition
	VariantEnum
	// VariantOption, VariantResult and VariantVoid map onto generic library types
	VariantOption
	VariantResult
	VariantVoid
)

func (c VariantClass) String() string {
	switch c {
	case VariantEnum:
		return "enum"
	case VariantOption:
		return "option"
	case VariantResult:
		return "result"
	case VariantVoid:
		return "void"
	default:
		return "invalid"
	}
}

func (c VariantClass) MarshalYAML() (any, error) {
	return c.String(), nil
}

// ClassifyVariant returns how n is emitted. A variant with two cases of one
// name, or two cases of one index, cannot be emitted at all.
func ClassifyVariant(n *metadata.Node) (VariantClass, error) {
	v, ok := n.Def.(*metadata.Variant)
	if !ok {
		return 0, schemaerr.New(schemaerr.NewUnsupportedShape{
			ID:     n.ID,
			Shape:  n.Kind().String(),
			Reason: "expected a variant",
		})
	}

	names := set.New[string](len(v.Cases))
	indexes := set.New[uint8](len(v.Cases))
	for _, c := range v.Cases {
		if !names.Insert(c.Name) {
			return 0, schemaerr.New(schemaerr.NewUnsupportedShape{
				ID:     n.ID,
				Shape:  "variant",
				Reason: fmt.Sprintf("case name '%s' is declared twice", c.Name),
			})
		}
		if !indexes.Insert(c.Index) {
			return 0, schemaerr.New(schemaerr.NewUnsupportedShape{
				ID:     n.ID,
				Shape:  "variant",
				Reason: fmt.Sprintf("case index %d is declared twice", c.Index),
			})
		}
	}

	if len(v.Cases) == 0 {
		return VariantVoid, nil
	}
	if len(n.Path) == 1 {
		switch n.Path[0] {
		case "Option":
			return VariantOption, nil
		case "Result":
			return VariantResult, nil
		}
	}
	return VariantEnum, nil
}
