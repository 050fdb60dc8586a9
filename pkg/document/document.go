// Package document converts flow graphs to and from the persisted
// flow-definition document consumed by the call-routing engine.
//
// The document shape is:
//
//	{
//	  "name": "Sales line",
//	  "description": "",
//	  "campaignId": null,
//	  "status": "draft",
//	  "isActive": false,
//	  "flowDefinition": {"nodes": [...], "connections": [...]}
//	}
//
// [ToDocument] and [FromDocument] are a lossless round trip of the node and
// connection collections. Hydration never regenerates default configs; the
// persisted values are used verbatim.
package document

import (
	"strings"
	"time"

	errs "github.com/matzehuels/ivrflow/pkg/errors"
	"github.com/matzehuels/ivrflow/pkg/flow"
)

// StatusDraft is the status of every document produced by the editor.
const StatusDraft = "draft"

// Definition is the graph part of a document.
type Definition struct {
	Nodes       []flow.Node       `json:"nodes" bson:"nodes" yaml:"nodes"`
	Connections []flow.Connection `json:"connections" bson:"connections" yaml:"connections"`
}

// Document is a persisted flow.
//
// ID and UpdatedAt are assigned by the store on save and are absent from
// documents that were never stored.
type Document struct {
	ID             string     `json:"id,omitempty" bson:"_id,omitempty" yaml:"id,omitempty"`
	Name           string     `json:"name" bson:"name" yaml:"name"`
	Description    string     `json:"description" bson:"description" yaml:"description"`
	CampaignID     *int64     `json:"campaignId" bson:"campaignId" yaml:"campaignId"`
	Status         string     `json:"status" bson:"status" yaml:"status"`
	IsActive       bool       `json:"isActive" bson:"isActive" yaml:"isActive"`
	FlowDefinition Definition `json:"flowDefinition" bson:"flowDefinition" yaml:"flowDefinition"`
	UpdatedAt      time.Time  `json:"updatedAt,omitzero" bson:"updatedAt,omitempty" yaml:"updatedAt,omitempty"`
}

// Meta is the operator-supplied part of a document.
type Meta struct {
	ID          string
	Name        string
	Description string
	CampaignID  *int64
}

// ToDocument copies the nodes and connections of g in insertion order.
// Config values are copied by value; slices inside them are shared with g.
func ToDocument(g *flow.Graph) Definition {
	def := Definition{
		Nodes:       make([]flow.Node, 0, g.NodeCount()),
		Connections: make([]flow.Connection, 0, g.ConnectionCount()),
	}
	for _, n := range g.Nodes() {
		def.Nodes = append(def.Nodes, *n)
	}
	for _, c := range g.Connections() {
		cc := *c
		if c.Label != nil {
			cc.Label = flow.StringPtr(*c.Label)
		}
		if c.Condition != nil {
			cc.Condition = flow.StringPtr(*c.Condition)
		}
		def.Connections = append(def.Connections, cc)
	}
	return def
}

// FromDocument rebuilds a graph from a definition. The definition must
// satisfy every graph invariant; otherwise an ErrCodeInvalidFormat error is
// returned. opts are passed to [flow.Restore].
func FromDocument(def Definition, opts ...flow.Option) (*flow.Graph, error) {
	return flow.Restore(def.Nodes, def.Connections, opts...)
}

// Build assembles a document from meta and g. An empty flow name is a
// validation failure and no document is produced.
func Build(meta Meta, g *flow.Graph) (*Document, error) {
	if err := errs.ValidateFlowName(meta.Name); err != nil {
		return nil, err
	}
	var campaign *int64
	if meta.CampaignID != nil {
		id := *meta.CampaignID
		campaign = &id
	}
	return &Document{
		ID:             meta.ID,
		Name:           strings.TrimSpace(meta.Name),
		Description:    meta.Description,
		CampaignID:     campaign,
		Status:         StatusDraft,
		IsActive:       false,
		FlowDefinition: ToDocument(g),
	}, nil
}

// MetaOf returns the operator-supplied fields of d.
func MetaOf(d *Document) Meta {
	return Meta{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		CampaignID:  d.CampaignID,
	}
}

// Hydrate rebuilds the graph stored in d.
func Hydrate(d *Document, opts ...flow.Option) (*flow.Graph, error) {
	return FromDocument(d.FlowDefinition, opts...)
}
