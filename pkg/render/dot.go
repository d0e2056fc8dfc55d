package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/busarchive/pkg/schedule"
)

// Options configures diagram generation.
type Options struct {
	// Detailed adds coordinates to stop labels and stop counts to route
	// labels. When false, stops show only their description.
	Detailed bool
}

// ToDOT converts a schedule to Graphviz DOT source. Node ids are assigned
// in first-visit order (trip0.., route0.., stop0..), so the output is
// deterministic for a given graph.
//
// Corner stops are drawn as boxes and destination stops as filled
// houses. Route-to-stop edges are labelled with the stop's position on the
// route, starting at 1.
func ToDOT(s *schedule.Schedule, opts Options) string {
	ids := newIDs()
	var nodes, edges bytes.Buffer

	for i, e := range s.Entries {
		trip := fmt.Sprintf("trip%d", i)
		fmt.Fprintf(&nodes, "  %q [label=%q, shape=ellipse];\n", trip, e.Trip.String())
		if e.Route == nil {
			continue
		}
		route, isNew := ids.route(e.Route)
		fmt.Fprintf(&edges, "  %q -> %q;\n", trip, route)
		if !isNew {
			continue
		}
		fmt.Fprintf(&nodes, "  %q [%s];\n", route, strings.Join(routeAttrs(route, e.Route, opts), ", "))

		for pos, st := range e.Route.Stops {
			if st == nil {
				continue
			}
			stop, isNew := ids.stop(st)
			if isNew {
				fmt.Fprintf(&nodes, "  %q [%s];\n", stop, strings.Join(stopAttrs(st, opts), ", "))
			}
			fmt.Fprintf(&edges, "  %q -> %q [label=%q];\n", route, stop, strconv.Itoa(pos+1))
		}
	}

	var buf bytes.Buffer
	buf.WriteString("digraph schedule {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=14, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  ranksep=0.8;\n")
	buf.WriteString("  nodesep=0.3;\n")
	buf.WriteString("\n")
	buf.Write(nodes.Bytes())
	buf.WriteString("\n")
	buf.Write(edges.Bytes())
	buf.WriteString("}\n")
	return buf.String()
}

func routeAttrs(id string, r *schedule.Route, opts Options) []string {
	label := id
	if opts.Detailed {
		label = fmt.Sprintf("%s\n%d stops", id, len(r.Stops))
	}
	return []string{fmt.Sprintf("label=%q", label), "fillcolor=lightgrey"}
}

func stopAttrs(st schedule.Stop, opts Options) []string {
	label := st.Description()
	if opts.Detailed {
		label = fmt.Sprintf("%s\n%s %s", label, st.Latitude(), st.Longitude())
	}
	attrs := []string{fmt.Sprintf("label=%q", label)}
	if _, ok := st.(*schedule.DestinationStop); ok {
		attrs = append(attrs, "shape=house", "fillcolor=lightyellow")
	}
	return attrs
}

// ids hands out node ids by object identity.
type ids struct {
	routes map[*schedule.Route]string
	stops  map[schedule.Stop]string
}

func newIDs() *ids {
	return &ids{routes: make(map[*schedule.Route]string), stops: make(map[schedule.Stop]string)}
}

func (m *ids) route(r *schedule.Route) (string, bool) {
	if id, ok := m.routes[r]; ok {
		return id, false
	}
	id := fmt.Sprintf("route%d", len(m.routes))
	m.routes[r] = id
	return id, true
}

func (m *ids) stop(s schedule.Stop) (string, bool) {
	if id, ok := m.stops[s]; ok {
		return id, false
	}
	id := fmt.Sprintf("stop%d", len(m.stops))
	m.stops[s] = id
	return id, true
}

// RenderSVG renders DOT source to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
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

// normalizeViewBox replaces the Graphviz <svg> tag with one whose viewBox
// starts at the origin, so the image scales cleanly when embedded.
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

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
