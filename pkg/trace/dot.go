package trace

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"os/exec"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"
)

// Options configures tree rendering.
type Options struct {
	// Detailed adds depth, bound and visit count to node labels.
	// When false, only the node ID is shown.
	Detailed bool
}

var outcomeFill = map[string]string{
	"expanded":          "white",
	"pruned":            "lightgrey",
	"infeasible":        "salmon",
	"completely-solved": "palegreen",
	"bottomed-out":      "lightyellow",
}

// ToDOT converts a recorded tree to Graphviz DOT format.
// Edges are labeled with the branch side of the child.
func ToDOT(t *Tree, opts Options) string {
	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.15,0.05\"];\n")
	buf.WriteString("  ranksep=0.4;\n")
	buf.WriteString("  nodesep=0.25;\n")
	if t.Summary != nil {
		fmt.Fprintf(&buf, "  label=%q;\n", fmtSummary(t))
		buf.WriteString("  labelloc=t;\n")
	}
	buf.WriteString("\n")

	for _, n := range t.Nodes {
		fmt.Fprintf(&buf, "  n%d [%s];\n", n.ID, strings.Join(fmtAttrs(n, opts.Detailed), ", "))
	}

	buf.WriteString("\n")
	for _, n := range t.Nodes {
		if n.ParentID < 0 || !t.Contains(n.ParentID) {
			continue
		}
		fmt.Fprintf(&buf, "  n%d -> n%d [label=\"%d\"];\n", n.ParentID, n.ID, n.Side)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtSummary(t *Tree) string {
	s := t.Summary
	return fmt.Sprintf("%s/%s: %s, score %s, bound %s, %d nodes",
		t.Solver, t.Orderer, s.Status, fmtScore(s.Score), fmtScore(s.UpperBound), s.Processed)
}

func fmtLabel(n Node, detailed bool) string {
	id := strconv.Itoa(n.ID)
	if !detailed {
		return id
	}
	parts := []string{
		fmt.Sprintf("depth: %d", n.Depth),
		fmt.Sprintf("bound: %s", fmtScore(n.Bound)),
		n.Outcome,
	}
	if n.Visits > 1 {
		parts = append(parts, fmt.Sprintf("visits: %d", n.Visits))
	}
	return id + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(n Node, detailed bool) []string {
	attrs := []string{fmt.Sprintf("label=%q", fmtLabel(n, detailed))}
	if fill, ok := outcomeFill[n.Outcome]; ok && fill != "white" {
		attrs = append(attrs, "fillcolor="+fill)
	}
	if n.Incumbent {
		attrs = append(attrs, "penwidth=3")
	}
	return attrs
}

func fmtScore(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "+inf"
	case math.IsInf(v, -1):
		return "-inf"
	}
	return strconv.FormatFloat(v, 'g', 6, 64)
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
func RenderSVG(dot string) ([]byte, error) {
	ctx := context.Background()
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox rewrites the root element so the drawing starts at the
// origin and scales with its container.
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

// RenderPNG renders a DOT graph as PNG via SVG conversion.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return rsvgConvert(svg, "png", "-z", fmt.Sprintf("%.2f", scale))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(dot string) ([]byte, error) {
	svg, err := RenderSVG(dot)
	if err != nil {
		return nil, err
	}
	return rsvgConvert(svg, "pdf")
}

func rsvgConvert(svg []byte, format string, extraArgs ...string) ([]byte, error) {
	if _, err := exec.LookPath("rsvg-convert"); err != nil {
		return nil, fmt.Errorf("%s export requires librsvg. Install with:\n  macOS:  brew install librsvg\n  Linux:  apt install librsvg2-bin", format)
	}

	args := append([]string{"-f", format}, extraArgs...)
	cmd := exec.Command("rsvg-convert", args...)
	cmd.Stdin = bytes.NewReader(svg)

	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("rsvg-convert: %v: %s", err, errBuf.String())
	}
	return out.Bytes(), nil
}
