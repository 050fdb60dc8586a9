package flow

import (
	"fmt"
	"slices"

	errs "github.com/matzehuels/ivrflow/pkg/errors"
)

// Warning is a problem that does not break the graph's invariants but would
// misbehave at call time.
type Warning struct {
	NodeID  string
	Message string
}

func (w Warning) String() string {
	if w.NodeID == "" {
		return w.Message
	}
	return fmt.Sprintf("%s: %s", w.NodeID, w.Message)
}

// Lint reports reachability and configuration problems in node order:
// nodes unreachable from the start node, non-end nodes without an outgoing
// connection, end nodes with one, duplicate menu keys, splitter percentages
// that do not add up to 100 and malformed pixel URLs.
func Lint(g *Graph) []Warning {
	var out []Warning
	reach := g.reachable()
	for _, n := range g.nodes {
		warn := func(format string, args ...any) {
			out = append(out, Warning{NodeID: n.ID, Message: fmt.Sprintf(format, args...)})
		}

		if !reach[n.ID] {
			warn("%q is not reachable from the start node", n.Data.Label)
		}
		outgoing := len(g.Outgoing(n.ID))
		switch {
		case n.Type == TypeEnd && outgoing > 0:
			warn("end node %q has outgoing connections", n.Data.Label)
		case n.Type != TypeEnd && outgoing == 0:
			warn("%q has no outgoing connection", n.Data.Label)
		}

		switch c := n.Data.Config.(type) {
		case MenuConfig:
			seen := make(map[string]bool, len(c.Options))
			for _, o := range c.Options {
				if seen[o.Key] {
					warn("menu key %q is used more than once", o.Key)
				}
				seen[o.Key] = true
			}
		case SplitterConfig:
			if c.SplitType == SplitPercentage {
				total := 0
				for _, t := range c.Targets {
					total += t.Percentage
				}
				if total != 100 {
					warn("split percentages add up to %d, not 100", total)
				}
			}
		case PixelConfig:
			if c.URL != "" {
				if err := errs.ValidateURL(c.URL); err != nil {
					warn("pixel %s", errs.UserMessage(err))
				}
			}
		}
	}
	return out
}

// BuyerIDs returns the buyer ids referenced by action and router nodes, in
// node order without duplicates.
func BuyerIDs(g *Graph) []string {
	var ids []string
	add := func(id string) {
		if id != "" && !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	for _, n := range g.nodes {
		switch c := n.Data.Config.(type) {
		case ActionConfig:
			add(c.BuyerID)
		case RouterConfig:
			for _, t := range c.Targets {
				add(t.BuyerID)
			}
		}
	}
	return ids
}

// reachable returns the ids reachable from the start node.
func (g *Graph) reachable() map[string]bool {
	seen := make(map[string]bool, len(g.nodes))
	start := g.StartID()
	if start == "" {
		return seen
	}
	queue := []string{start}
	seen[start] = true
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, c := range g.Outgoing(id) {
			if !seen[c.Target] {
				seen[c.Target] = true
				queue = append(queue, c.Target)
			}
		}
	}
	return seen
}
