// Package fractal provides the core types shared by the control surface and
// the rendering engines.
//
// The package defines the canonical view configuration and the capability
// contract an engine must satisfy:
//
//   - [Params]: canonical rendering parameters (viewport, quality, raster)
//   - [Field]: the fixed set of parameter names, each with a semantic [Kind]
//   - [Value]: a parameter value already coerced to its field's kind
//   - [Engine]: per-field mutators plus the render and export actions
//   - [Backend]: constructs engines and describes their paint modes
//
// # Example
//
//	backend := compute.NewBackend(surfaces)
//	eng, err := backend.Create("main", fractal.DefaultParams())
//	if err != nil {
//		return err
//	}
//	secs, err := eng.RenderParallel(ctx, 8)
//
// # Thread Safety
//
// Params and Value are plain values. Engine implementations must tolerate
// mutator calls from a different goroutine than the one running
// RenderParallel.
package fractal
