package flow

import (
	"bytes"
	"encoding/json"

	"go.mongodb.org/mongo-driver/bson"
	"gopkg.in/yaml.v3"

	errs "github.com/matzehuels/ivrflow/pkg/errors"
)

// DecodeConfig decodes raw JSON into the config variant of t.
// An empty or null payload yields the zero value of the variant, not the
// registry default: persisted configs are always taken verbatim.
func DecodeConfig(t NodeType, raw json.RawMessage) (Config, error) {
	decode, ok := decoders[t]
	if !ok {
		return nil, errs.New(errs.ErrCodeInvalidNodeType, "unknown node type %q", t)
	}
	return decode(func(out any) error {
		if len(bytes.TrimSpace(raw)) == 0 || bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			return nil
		}
		return json.Unmarshal(raw, out)
	})
}

// =============================================================================
// JSON
// =============================================================================

type nodeJSON struct {
	ID       string   `json:"id"`
	Type     NodeType `json:"type"`
	Position Position `json:"position"`
	Data     struct {
		Label  string          `json:"label"`
		Config json.RawMessage `json:"config"`
	} `json:"data"`
}

// UnmarshalJSON decodes a node, choosing the config variant from "type".
func (n *Node) UnmarshalJSON(data []byte) error {
	var w nodeJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	cfg, err := DecodeConfig(w.Type, w.Data.Config)
	if err != nil {
		return errs.Wrap(errs.ErrCodeInvalidFormat, err, "node %q", w.ID)
	}
	*n = Node{
		ID:       w.ID,
		Type:     w.Type,
		Position: w.Position,
		Data:     NodeData{Label: w.Data.Label, Config: cfg},
	}
	return nil
}

// =============================================================================
// BSON
// =============================================================================

type nodeDataBSON struct {
	Label  string `bson:"label"`
	Config any    `bson:"config"`
}

type nodeBSON struct {
	ID       string       `bson:"id"`
	Type     NodeType     `bson:"type"`
	Position Position     `bson:"position"`
	Data     nodeDataBSON `bson:"data"`
}

type nodeBSONRaw struct {
	ID       string   `bson:"id"`
	Type     NodeType `bson:"type"`
	Position Position `bson:"position"`
	Data     struct {
		Label  string        `bson:"label"`
		Config bson.RawValue `bson:"config"`
	} `bson:"data"`
}

// MarshalBSON encodes a node with its config as an embedded document.
func (n Node) MarshalBSON() ([]byte, error) {
	return bson.Marshal(nodeBSON{
		ID:       n.ID,
		Type:     n.Type,
		Position: n.Position,
		Data:     nodeDataBSON{Label: n.Data.Label, Config: n.Data.Config},
	})
}

// UnmarshalBSON decodes a node, choosing the config variant from "type".
func (n *Node) UnmarshalBSON(data []byte) error {
	var w nodeBSONRaw
	if err := bson.Unmarshal(data, &w); err != nil {
		return err
	}
	decode, ok := decoders[w.Type]
	if !ok {
		return errs.New(errs.ErrCodeInvalidNodeType, "node %q has unknown type %q", w.ID, w.Type)
	}
	cfg, err := decode(func(out any) error {
		if w.Data.Config.Type == 0 || w.Data.Config.Type == bson.TypeNull {
			return nil
		}
		return w.Data.Config.Unmarshal(out)
	})
	if err != nil {
		return errs.Wrap(errs.ErrCodeInvalidFormat, err, "node %q", w.ID)
	}
	*n = Node{
		ID:       w.ID,
		Type:     w.Type,
		Position: w.Position,
		Data:     NodeData{Label: w.Data.Label, Config: cfg},
	}
	return nil
}

// =============================================================================
// YAML
// =============================================================================

type nodeDataYAML struct {
	Label  string `yaml:"label"`
	Config Config `yaml:"config"`
}

type nodeYAML struct {
	ID       string       `yaml:"id"`
	Type     NodeType     `yaml:"type"`
	Position Position     `yaml:"position"`
	Data     nodeDataYAML `yaml:"data"`
}

type nodeYAMLRaw struct {
	ID       string   `yaml:"id"`
	Type     NodeType `yaml:"type"`
	Position Position `yaml:"position"`
	Data     struct {
		Label  string    `yaml:"label"`
		Config yaml.Node `yaml:"config"`
	} `yaml:"data"`
}

// MarshalYAML encodes a node with stable lower-camel keys.
func (n Node) MarshalYAML() (any, error) {
	return nodeYAML{
		ID:       n.ID,
		Type:     n.Type,
		Position: n.Position,
		Data:     nodeDataYAML{Label: n.Data.Label, Config: n.Data.Config},
	}, nil
}

// UnmarshalYAML decodes a node, choosing the config variant from "type".
func (n *Node) UnmarshalYAML(value *yaml.Node) error {
	var w nodeYAMLRaw
	if err := value.Decode(&w); err != nil {
		return err
	}
	decode, ok := decoders[w.Type]
	if !ok {
		return errs.New(errs.ErrCodeInvalidNodeType, "node %q has unknown type %q", w.ID, w.Type)
	}
	cfg, err := decode(func(out any) error {
		if w.Data.Config.Kind == 0 || w.Data.Config.ShortTag() == "!!null" {
			return nil
		}
		return w.Data.Config.Decode(out)
	})
	if err != nil {
		return errs.Wrap(errs.ErrCodeInvalidFormat, err, "node %q", w.ID)
	}
	*n = Node{
		ID:       w.ID,
		Type:     w.Type,
		Position: w.Position,
		Data:     NodeData{Label: w.Data.Label, Config: cfg},
	}
	return nil
}
