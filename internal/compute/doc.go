// Package compute provides the in-process CPU rendering engine.
//
// The engine renders the Mandelbrot set (Z = Z² + c) onto a [canvas.Surface]
// resolved by identifier when the engine is created:
//
//	surfaces := canvas.NewRegistry()
//	surfaces.Register("main", canvas.NewSurface(512, 512))
//	eng, err := compute.NewBackend(surfaces).Create("main", params)
//
// Rows are split into one chunk per requested thread and rendered
// concurrently; each pixel averages a samples×samples grid of escape counts.
//
// # Paint Modes
//
// Six color mappings are offered: Grayscale, HSL1 (linear hue), HSL2
// (logarithmic hue), HSL3 (smooth escape count), RGB1 (sine banding) and
// FIRE.
package compute
