package editor

import (
	"encoding/json"
	"fmt"

	"github.com/dgallion1/jobdesc/internal/doctree"
)

// wireCommand is the JSON form of a Command:
//
//	{"op":"insertText","at":{"path":[0],"offset":3},"text":"Go"}
//	{"op":"toggleMark","range":{"from":{...},"to":{...}},"mark":"bold"}
//	{"op":"setBlockType","at":{...},"kind":"heading","level":2}
type wireCommand struct {
	Op       string            `json:"op"`
	At       *Position         `json:"at,omitempty"`
	Range    *Range            `json:"range,omitempty"`
	Text     string            `json:"text,omitempty"`
	Mark     string            `json:"mark,omitempty"`
	Kind     string            `json:"kind,omitempty"`
	Level    int               `json:"level,omitempty"`
	Fragment *doctree.Fragment `json:"fragment,omitempty"`
}

// DecodeCommand parses the JSON form of a command.
func DecodeCommand(data []byte) (Command, error) {
	var w wireCommand
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, invalidCommand("decode: %v", err)
	}
	needAt := func() (Position, error) {
		if w.At == nil {
			return Position{}, invalidCommand("%s requires at", w.Op)
		}
		return *w.At, nil
	}
	needRange := func() (Range, error) {
		if w.Range == nil {
			return Range{}, invalidCommand("%s requires range", w.Op)
		}
		return *w.Range, nil
	}
	needFragment := func() (doctree.Fragment, error) {
		if w.Fragment == nil {
			return doctree.Fragment{}, invalidCommand("%s requires fragment", w.Op)
		}
		return *w.Fragment, nil
	}

	switch w.Op {
	case "insertText":
		at, err := needAt()
		if err != nil {
			return nil, err
		}
		return InsertText{At: at, Text: w.Text}, nil
	case "toggleMark":
		r, err := needRange()
		if err != nil {
			return nil, err
		}
		m, ok := doctree.ParseMark(w.Mark)
		if !ok {
			return nil, invalidCommand("unknown mark %q", w.Mark)
		}
		return ToggleMark{Range: r, Mark: m}, nil
	case "setBlockType":
		at, err := needAt()
		if err != nil {
			return nil, err
		}
		k, ok := doctree.ParseBlockKind(w.Kind)
		if !ok {
			return nil, invalidCommand("unknown block kind %q", w.Kind)
		}
		return SetBlockType{At: at, Kind: k, Level: w.Level}, nil
	case "insertFragment":
		at, err := needAt()
		if err != nil {
			return nil, err
		}
		f, err := needFragment()
		if err != nil {
			return nil, err
		}
		return InsertFragment{At: at, Fragment: f}, nil
	case "deleteRange":
		r, err := needRange()
		if err != nil {
			return nil, err
		}
		return DeleteRange{Range: r}, nil
	case "replaceRange":
		r, err := needRange()
		if err != nil {
			return nil, err
		}
		f, err := needFragment()
		if err != nil {
			return nil, err
		}
		return ReplaceRange{Range: r, Fragment: f}, nil
	}
	return nil, fmt.Errorf("%w: unknown op %q", ErrInvalidCommand, w.Op)
}
