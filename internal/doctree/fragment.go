package doctree

import (
	"encoding/json"
	"fmt"
)

// Fragments use the same node layout as documents: a JSON array of either
// inline nodes or block nodes, never both.

// MarshalFragment encodes f as a node array.
func MarshalFragment(f Fragment) ([]byte, error) {
	if len(f.Inlines) > 0 && len(f.Blocks) > 0 {
		return nil, malformed("fragment", "mixes inline and block content")
	}
	var nodes []wireNode
	if len(f.Blocks) > 0 {
		if err := validateBlocks(f.Blocks, "fragment"); err != nil {
			return nil, err
		}
		nodes = encodeBlocks(f.Blocks)
	} else {
		if err := validateInlines(f.Inlines, "fragment"); err != nil {
			return nil, err
		}
		nodes = encodeInlines(f.Inlines)
	}
	if nodes == nil {
		nodes = []wireNode{}
	}
	data, err := json.Marshal(nodes)
	if err != nil {
		return nil, fmt.Errorf("encode fragment: %w", err)
	}
	return data, nil
}

// UnmarshalFragment decodes a node array. The first node decides whether the
// fragment is inline or block content.
func UnmarshalFragment(data []byte) (Fragment, error) {
	var nodes []wireNode
	if err := json.Unmarshal(data, &nodes); err != nil {
		return Fragment{}, &MalformedError{Path: "fragment", Reason: fmt.Sprintf("invalid json: %v", err)}
	}
	if len(nodes) == 0 {
		return Fragment{}, nil
	}
	if nodes[0].Type == typeText || nodes[0].Type == typeHardBreak {
		inlines, err := decodeInlines(nodes, "fragment")
		if err != nil {
			return Fragment{}, err
		}
		if err := validateInlines(inlines, "fragment"); err != nil {
			return Fragment{}, err
		}
		return Fragment{Inlines: inlines}, nil
	}
	blocks, err := decodeBlocks(nodes, "fragment")
	if err != nil {
		return Fragment{}, err
	}
	if err := validateBlocks(blocks, "fragment"); err != nil {
		return Fragment{}, err
	}
	return Fragment{Blocks: blocks}, nil
}

func (f Fragment) MarshalJSON() ([]byte, error) {
	return MarshalFragment(f)
}

func (f *Fragment) UnmarshalJSON(data []byte) error {
	frag, err := UnmarshalFragment(data)
	if err != nil {
		return err
	}
	*f = frag
	return nil
}
