// Package pkg provides the libraries behind seamcarver, a content-aware
// image resizer.
//
// # Overview
//
// Seam carving shrinks an image by repeatedly removing the connected path of
// pixels with the least gradient energy. The pkg directory is organized into:
//
//  1. [carve] - The engine: pixel mesh, energy, seam search and removal
//  2. [imageio] - Decoding and encoding image files
//  3. [pipeline] - Orchestration (decode → carve → encode) with caching
//  4. [render] - Overlays, terminal previews and mesh diagrams
//  5. [cache], [jobs], [observability], [errors] - Infrastructure
//
// # Architecture
//
// The typical data flow:
//
//	Image bytes
//	     ↓
//	[imageio] package (decode, auto-orient)
//	     ↓
//	[carve] package (mark and remove seams until the target size)
//	     ↓
//	[imageio] package (encode)
//
// # Quick Start
//
//	import (
//	    "context"
//	    "github.com/matzehuels/seamcarver/pkg/pipeline"
//	)
//
//	runner := pipeline.NewRunner(nil, nil, nil)
//	res, err := runner.Execute(context.Background(), src, "beach.jpg", pipeline.Options{
//	    TargetWidth: 640,
//	    Direction:   "alternating",
//	})
//	// res.Image holds the encoded result
//
// The engine can also be driven step by step, which is how the interactive
// player shows each seam before it is removed:
//
//	g, _ := carve.FromImage(img)
//	c := carve.New(g, carve.WithDirection(carve.DirectionVertical))
//	c.Step() // marks the cheapest seam
//	c.Step() // removes it
//
// [carve]: https://pkg.go.dev/github.com/matzehuels/seamcarver/pkg/carve
// [imageio]: https://pkg.go.dev/github.com/matzehuels/seamcarver/pkg/imageio
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/seamcarver/pkg/pipeline
// [render]: https://pkg.go.dev/github.com/matzehuels/seamcarver/pkg/render
// [cache]: https://pkg.go.dev/github.com/matzehuels/seamcarver/pkg/cache
// [jobs]: https://pkg.go.dev/github.com/matzehuels/seamcarver/pkg/jobs
// [observability]: https://pkg.go.dev/github.com/matzehuels/seamcarver/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/seamcarver/pkg/errors
package pkg
