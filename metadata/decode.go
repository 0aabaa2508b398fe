package metadata

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/cottand/palletgen/schemaerr"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// The document shapes below mirror the canonical snapshot as it is written
// by the metadata decoder upstream. YAML is a superset of JSON, so both
// encodings are accepted.

type snapshotDoc struct {
	SpecVersion uint32      `yaml:"specVersion"`
	BlockNumber *uint32     `yaml:"blockNumber,omitempty"`
	Types       []nodeDoc   `yaml:"types"`
	Modules     []moduleDoc `yaml:"modules"`
}

type nodeDoc struct {
	ID     TypeID     `yaml:"id"`
	Path   []string   `yaml:"path,omitempty"`
	Params []paramDoc `yaml:"params,omitempty"`
	Docs   []string   `yaml:"docs,omitempty"`
	Kind   string     `yaml:"kind"`

	Fields    []fieldDoc `yaml:"fields,omitempty"`
	Cases     []caseDoc  `yaml:"cases,omitempty"`
	Elem      *TypeID    `yaml:"elem,omitempty"`
	Len       uint32     `yaml:"len,omitempty"`
	Elems     []TypeID   `yaml:"elems,omitempty"`
	Inner     *TypeID    `yaml:"inner,omitempty"`
	Store     *TypeID    `yaml:"store,omitempty"`
	Order     *TypeID    `yaml:"order,omitempty"`
	Primitive string     `yaml:"primitive,omitempty"`
}

type paramDoc struct {
	Name string  `yaml:"name"`
	Type *TypeID `yaml:"type,omitempty"`
}

type fieldDoc struct {
	Name     *string  `yaml:"name,omitempty"`
	Type     TypeID   `yaml:"type"`
	TypeName *string  `yaml:"typeName,omitempty"`
	Docs     []string `yaml:"docs,omitempty"`
}

type caseDoc struct {
	Name   string     `yaml:"name"`
	Index  uint8      `yaml:"index"`
	Fields []fieldDoc `yaml:"fields,omitempty"`
	Docs   []string   `yaml:"docs,omitempty"`
}

type moduleDoc struct {
	Index     ModuleIndex   `yaml:"index"`
	Name      string        `yaml:"name"`
	Calls     *TypeID       `yaml:"calls,omitempty"`
	Errors    *TypeID       `yaml:"errors,omitempty"`
	Events    *TypeID       `yaml:"events,omitempty"`
	Constants []constantDoc `yaml:"constants,omitempty"`
	Storage   *storageDoc   `yaml:"storage,omitempty"`
}

type constantDoc struct {
	Name  string   `yaml:"name"`
	Type  TypeID   `yaml:"type"`
	Value string   `yaml:"value,omitempty"`
	Docs  []string `yaml:"docs,omitempty"`
}

type storageDoc struct {
	Prefix  string     `yaml:"prefix"`
	Entries []entryDoc `yaml:"entries"`
}

type entryDoc struct {
	Name     string   `yaml:"name"`
	Modifier string   `yaml:"modifier,omitempty"`
	Kind     string   `yaml:"kind"`
	Type     *TypeID  `yaml:"type,omitempty"`
	Key      *TypeID  `yaml:"key,omitempty"`
	Value    *TypeID  `yaml:"value,omitempty"`
	Hashers  []string `yaml:"hashers,omitempty"`
	Default  string   `yaml:"default,omitempty"`
	Docs     []string `yaml:"docs,omitempty"`
}

// LoadFile reads a snapshot from a YAML or JSON file
func LoadFile(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open snapshot %s", path)
	}
	defer func() { _ = f.Close() }()
	s, err := decode(f, path)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Decode reads a single snapshot document from r
func Decode(r io.Reader) (*Snapshot, error) {
	return decode(r, "<reader>")
}

func decode(r io.Reader, source string) (*Snapshot, error) {
	var doc snapshotDoc
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrapf(err, "decode snapshot %s", source)
	}
	s := NewSnapshot(doc.SpecVersion)
	s.BlockNumber = doc.BlockNumber
	for _, nd := range doc.Types {
		if _, dup := s.Types[nd.ID]; dup {
			return nil, schemaerr.New(schemaerr.NewInvalidSnapshot{
				Source: source,
				Reason: fmt.Sprintf("type id %d declared twice", nd.ID),
			})
		}
		n, err := nd.node()
		if err != nil {
			return nil, err
		}
		s.Types[n.ID] = n
	}
	for _, md := range doc.Modules {
		if _, dup := s.Modules[md.Index]; dup {
			return nil, schemaerr.New(schemaerr.NewInvalidSnapshot{
				Source: source,
				Reason: fmt.Sprintf("module index %d declared twice", md.Index),
			})
		}
		m, err := md.module()
		if err != nil {
			return nil, errors.Wrapf(err, "module %s of %s", md.Name, source)
		}
		s.Modules[m.Index] = m
	}
	return s, nil
}

func (nd nodeDoc) node() (*Node, error) {
	n := &Node{ID: nd.ID, Path: nd.Path, Docs: nd.Docs}
	for _, p := range nd.Params {
		n.TypeParams = append(n.TypeParams, TypeParam{Name: p.Name, TypeID: p.Type})
	}
	kind, ok := KindFromString(nd.Kind)
	if !ok {
		return nil, schemaerr.New(schemaerr.NewUnsupportedShape{
			ID:     nd.ID,
			Shape:  nd.Kind,
			Reason: "unknown type definition kind",
		})
	}
	missing := func(slot string) error {
		return schemaerr.New(schemaerr.NewUnsupportedShape{
			ID:     nd.ID,
			Shape:  nd.Kind,
			Reason: "missing " + slot,
		})
	}
	switch kind {
	case KindComposite:
		n.Def = &Composite{Fields: fieldsOf(nd.Fields)}
	case KindVariant:
		v := &Variant{}
		for _, c := range nd.Cases {
			v.Cases = append(v.Cases, VariantCase{
				Name:   c.Name,
				Index:  c.Index,
				Fields: fieldsOf(c.Fields),
				Docs:   c.Docs,
			})
		}
		n.Def = v
	case KindSequence:
		if nd.Elem == nil {
			return nil, missing("elem")
		}
		n.Def = &Sequence{Elem: *nd.Elem}
	case KindArray:
		if nd.Elem == nil {
			return nil, missing("elem")
		}
		n.Def = &Array{Elem: *nd.Elem, Len: nd.Len}
	case KindTuple:
		n.Def = &Tuple{Elems: nd.Elems}
	case KindCompact:
		if nd.Inner == nil {
			return nil, missing("inner")
		}
		n.Def = &Compact{Inner: *nd.Inner}
	case KindBitSequence:
		if nd.Store == nil || nd.Order == nil {
			return nil, missing("store or order")
		}
		n.Def = &BitSequence{Store: *nd.Store, Order: *nd.Order}
	case KindPrimitive:
		if nd.Primitive == "" {
			return nil, missing("primitive")
		}
		n.Def = &Primitive{Name: nd.Primitive}
	}
	return n, nil
}

func fieldsOf(docs []fieldDoc) []Field {
	if docs == nil {
		return nil
	}
	fields := make([]Field, len(docs))
	for i, fd := range docs {
		fields[i] = Field{Name: fd.Name, TypeID: fd.Type, TypeName: fd.TypeName, Docs: fd.Docs}
	}
	return fields
}

func (md moduleDoc) module() (*Module, error) {
	m := &Module{Index: md.Index, Name: md.Name}
	ref := func(id *TypeID) *VariantRef {
		if id == nil {
			return nil
		}
		return &VariantRef{TypeID: *id}
	}
	m.Calls, m.Errors, m.Events = ref(md.Calls), ref(md.Errors), ref(md.Events)
	for _, cd := range md.Constants {
		value, err := decodeHex(cd.Value)
		if err != nil {
			return nil, errors.Wrapf(err, "constant %s", cd.Name)
		}
		m.Constants = append(m.Constants, Constant{Name: cd.Name, TypeID: cd.Type, Value: value, Docs: cd.Docs})
	}
	if md.Storage != nil {
		m.Storage = &Storage{Prefix: md.Storage.Prefix}
		for _, ed := range md.Storage.Entries {
			e, err := ed.entry()
			if err != nil {
				return nil, errors.Wrapf(err, "storage entry %s", ed.Name)
			}
			m.Storage.Entries = append(m.Storage.Entries, e)
		}
	}
	return m, nil
}

func (ed entryDoc) entry() (Entry, error) {
	def, err := decodeHex(ed.Default)
	if err != nil {
		return Entry{}, err
	}
	e := Entry{Name: ed.Name, Modifier: ed.Modifier, Default: def, Docs: ed.Docs}
	switch strings.ToLower(ed.Kind) {
	case "", "plain":
		if ed.Type == nil {
			return Entry{}, errors.New("plain entry without type")
		}
		e.Kind = StoragePlain
		e.Plain = *ed.Type
	case "map":
		if ed.Key == nil || ed.Value == nil {
			return Entry{}, errors.New("map entry without key or value")
		}
		e.Kind = StorageMap
		e.Map = &MapType{Hashers: ed.Hashers, Key: *ed.Key, Value: *ed.Value}
	default:
		return Entry{}, errors.Errorf("unknown storage kind '%s'", ed.Kind)
	}
	return e, nil
}

func decodeHex(s string) ([]byte, error) {
	s = strings.TrimPrefix(s, "0x")
	if s == "" {
		return nil, nil
	}
	return hex.DecodeString(s)
}
