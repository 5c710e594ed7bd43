// Package control owns the canonical rendering parameters and keeps them in
// step with a rendering engine.
//
// A [Session] is the single owner of the engine handle:
//
//   - [Session.SetParameter]: update one field and push it to the engine
//   - [Gesture] and [ZoomTransform]: turn a drag rectangle on the canvas into
//     a new viewport
//   - [Session.Render]: run one render at a time; requests made while a
//     render is in flight are dropped, not queued
//   - [Session.SaveImage]: export the last frame
//
// # Example
//
//	s := control.NewSession(backend, params, control.Options{CanvasID: "main"})
//	if err := s.Open(); err != nil {
//		return err
//	}
//	defer s.Close()
//	s.PointerDown(control.Point{X: 100, Y: 100})
//	s.PointerMove(control.Point{X: 200, Y: 150})
//	zoomed, err := s.PointerUp(ctx)
//
// # Errors
//
// Engine failures are logged and recorded in [Snapshot.LastErr]; they are
// also returned so headless callers can act on them. The parameters are
// never rolled back.
package control
