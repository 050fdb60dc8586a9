package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	errs "github.com/matzehuels/ivrflow/pkg/errors"
	"github.com/matzehuels/ivrflow/pkg/flow"
)

// EmptyLabel is drawn for a connection whose label is set but empty.
const EmptyLabel = "+"

// Options configures diagram generation.
type Options struct {
	// Detailed adds a one-line config summary under each node label.
	Detailed bool
	// LeftToRight lays the flow out horizontally instead of top to bottom.
	LeftToRight bool
}

type style struct {
	shape string
	fill  string
}

var styles = map[flow.NodeType]style{
	flow.TypeStart:      {"oval", "#c8e6c9"},
	flow.TypeEnd:        {"oval", "#ffcdd2"},
	flow.TypeCondition:  {"diamond", "#fff9c4"},
	flow.TypeHours:      {"diamond", "#ffe0b2"},
	flow.TypeRouter:     {"hexagon", "#bbdefb"},
	flow.TypeSplitter:   {"hexagon", "#d1c4e9"},
	flow.TypeAction:     {"box", "#b2ebf2"},
	flow.TypeMenu:       {"box", "#dcedc8"},
	flow.TypeGather:     {"box", "#f0f4c3"},
	flow.TypePlay:       {"box", "#e1f5fe"},
	flow.TypePixel:      {"box", "#eeeeee"},
	flow.TypeJavaScript: {"box", "#fce4ec"},
}

// ToDOT converts a flow to Graphviz DOT source. Nodes and edges keep the
// graph's insertion order so output is stable.
func ToDOT(g *flow.Graph, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph flow {\n")
	if opts.LeftToRight {
		buf.WriteString("  rankdir=LR;\n")
	} else {
		buf.WriteString("  rankdir=TB;\n")
	}
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [style=\"rounded,filled\", fontname=\"Helvetica\", fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [fontname=\"Helvetica\", fontsize=12];\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes() {
		st, ok := styles[n.Type]
		if !ok {
			st = style{"box", "white"}
		}
		attrs := []string{
			fmt.Sprintf("label=%q", nodeLabel(n, opts.Detailed)),
			"shape=" + st.shape,
			fmt.Sprintf("fillcolor=%q", st.fill),
		}
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, c := range g.Connections() {
		var attrs []string
		if c.HasLabel() {
			label := c.LabelText()
			if label == "" {
				label = EmptyLabel
			}
			attrs = append(attrs, fmt.Sprintf("label=%q", label))
		}
		if c.Condition != nil {
			attrs = append(attrs, fmt.Sprintf("tooltip=%q", *c.Condition))
		}
		if len(attrs) == 0 {
			fmt.Fprintf(&buf, "  %q -> %q;\n", c.Source, c.Target)
			continue
		}
		fmt.Fprintf(&buf, "  %q -> %q [%s];\n", c.Source, c.Target, strings.Join(attrs, ", "))
	}

	buf.WriteString("}\n")
	return buf.String()
}

func nodeLabel(n *flow.Node, detailed bool) string {
	if !detailed {
		return n.Data.Label
	}
	if s := Summary(n.Data.Config); s != "" {
		return n.Data.Label + "\n" + s
	}
	return n.Data.Label
}

// Summary describes a config in a few words, e.g. "press 1, 2" for a menu.
func Summary(c flow.Config) string {
	switch c := c.(type) {
	case flow.ConditionConfig:
		return fmt.Sprintf("%s %s %s-%s", c.ConditionType, c.Operator, c.Value.Start, c.Value.End)
	case flow.ActionConfig:
		if c.BuyerID != "" {
			return c.ActionType + " to buyer " + c.BuyerID
		}
		if c.Destination != "" {
			return c.ActionType + " to " + c.Destination
		}
		return c.ActionType
	case flow.MenuConfig:
		keys := make([]string, len(c.Options))
		for i, o := range c.Options {
			keys[i] = o.Key
		}
		return "press " + strings.Join(keys, ", ")
	case flow.GatherConfig:
		return fmt.Sprintf("%s, %d digits", c.GatherType, c.NumDigits)
	case flow.PlayConfig:
		if c.AudioType == flow.AudioURL {
			return c.AudioURL
		}
		return truncate(c.Message, 32)
	case flow.HoursConfig:
		return c.Timezone
	case flow.RouterConfig:
		return fmt.Sprintf("%s, %d targets", c.RoutingType, len(c.Targets))
	case flow.SplitterConfig:
		parts := make([]string, len(c.Targets))
		for i, t := range c.Targets {
			parts[i] = strconv.Itoa(t.Percentage) + "%"
		}
		return strings.Join(parts, " / ")
	case flow.PixelConfig:
		return strings.TrimSpace(c.Method + " " + c.URL)
	case flow.JavaScriptConfig:
		return fmt.Sprintf("script, %dms", c.Timeout)
	case flow.EndConfig:
		return c.EndType
	default:
		return ""
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// RenderSVG renders DOT source to SVG.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	out, err := render(ctx, dot, graphviz.SVG)
	if err != nil {
		return nil, err
	}
	return normalizeViewBox(out), nil
}

// RenderPNG renders DOT source to PNG.
func RenderPNG(ctx context.Context, dot string) ([]byte, error) {
	return render(ctx, dot, graphviz.PNG)
}

func render(ctx context.Context, dot string, format graphviz.Format) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, format, &buf); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "render %s", format)
	}
	return buf.Bytes(), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the SVG scales to its
// container instead of carrying Graphviz's point-based size.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}
	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}
	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
