// Package render draws a schedule graph as a node-link diagram.
//
// # Overview
//
// Trips, routes and stops become Graphviz nodes. Each object gets exactly
// one node no matter how many references lead to it, so the sharing that
// an archive preserves is visible: a stop served by two routes has two
// incoming edges, and a route run by three trips has three.
//
// # Usage
//
// Convert a schedule to DOT, then render to SVG:
//
//	dot := render.ToDOT(s, render.Options{Detailed: true})
//	svg, err := render.RenderSVG(ctx, dot)
//
// The DOT source can also be saved and processed with external Graphviz
// tools.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering.
package render
