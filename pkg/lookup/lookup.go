// Package lookup supplies the reference data the editor shows but never
// interprets: the buyers an action node can route to and the campaigns a
// flow can be associated with.
//
// Two providers are included. [Static] serves fixed lists, typically from
// the config file. [Client] fetches GET <base>/buyers and GET
// <base>/campaigns from an HTTP service, caching responses on disk.
package lookup

import (
	"context"
	"strings"

	errs "github.com/matzehuels/ivrflow/pkg/errors"
)

// Buyer is a call destination. Either PhoneNumber or Email identifies how
// the buyer is reached.
type Buyer struct {
	ID          string `json:"id" toml:"id"`
	Name        string `json:"name" toml:"name"`
	PhoneNumber string `json:"phoneNumber,omitempty" toml:"phone_number"`
	Email       string `json:"email,omitempty" toml:"email"`
}

// Contact returns the phone number, or the email when no number is set.
func (b Buyer) Contact() string {
	if b.PhoneNumber != "" {
		return b.PhoneNumber
	}
	return b.Email
}

// Campaign is a marketing campaign a flow may be attached to.
type Campaign struct {
	ID   int64  `json:"id" toml:"id"`
	Name string `json:"name" toml:"name"`
}

// Provider returns read-only reference lists.
type Provider interface {
	Buyers(ctx context.Context) ([]Buyer, error)
	Campaigns(ctx context.Context) ([]Campaign, error)
}

// FindBuyer returns the buyer with the given id.
func FindBuyer(ctx context.Context, p Provider, id string) (Buyer, error) {
	buyers, err := p.Buyers(ctx)
	if err != nil {
		return Buyer{}, err
	}
	for _, b := range buyers {
		if b.ID == id {
			return b, nil
		}
	}
	return Buyer{}, errs.New(errs.ErrCodeNotFound, "buyer %q not found", id)
}

// FindCampaign returns the campaign with the given id.
func FindCampaign(ctx context.Context, p Provider, id int64) (Campaign, error) {
	campaigns, err := p.Campaigns(ctx)
	if err != nil {
		return Campaign{}, err
	}
	for _, c := range campaigns {
		if c.ID == id {
			return c, nil
		}
	}
	return Campaign{}, errs.New(errs.ErrCodeNotFound, "campaign %d not found", id)
}

// Static serves fixed lists.
type Static struct {
	buyers    []Buyer
	campaigns []Campaign
}

// NewStatic returns a provider over copies of buyers and campaigns.
func NewStatic(buyers []Buyer, campaigns []Campaign) *Static {
	return &Static{
		buyers:    append([]Buyer(nil), buyers...),
		campaigns: append([]Campaign(nil), campaigns...),
	}
}

// Buyers implements [Provider].
func (s *Static) Buyers(context.Context) ([]Buyer, error) {
	return append([]Buyer(nil), s.buyers...), nil
}

// Campaigns implements [Provider].
func (s *Static) Campaigns(context.Context) ([]Campaign, error) {
	return append([]Campaign(nil), s.campaigns...), nil
}

func joinURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}

var (
	_ Provider = (*Static)(nil)
	_ Provider = (*Client)(nil)
)
