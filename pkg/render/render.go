package render

import (
	"context"
	"slices"

	errs "github.com/matzehuels/ivrflow/pkg/errors"
	"github.com/matzehuels/ivrflow/pkg/flow"
	"github.com/matzehuels/ivrflow/pkg/render/nodelink"
)

// Output formats.
const (
	FormatDOT = "dot"
	FormatSVG = "svg"
	FormatPNG = "png"
)

var formats = []string{FormatDOT, FormatSVG, FormatPNG}

// Formats returns the supported output formats.
func Formats() []string { return slices.Clone(formats) }

// ContentType returns the MIME type of a format.
func ContentType(format string) string {
	switch format {
	case FormatSVG:
		return "image/svg+xml"
	case FormatPNG:
		return "image/png"
	default:
		return "text/vnd.graphviz; charset=utf-8"
	}
}

// Flow renders g in the given format.
func Flow(ctx context.Context, g *flow.Graph, format string, opts nodelink.Options) ([]byte, error) {
	dot := nodelink.ToDOT(g, opts)
	switch format {
	case FormatDOT:
		return []byte(dot), nil
	case FormatSVG:
		return nodelink.RenderSVG(ctx, dot)
	case FormatPNG:
		return nodelink.RenderPNG(ctx, dot)
	default:
		return nil, errs.New(errs.ErrCodeUnsupported, "unsupported format %q (want one of %v)", format, formats)
	}
}
