package control

import (
	"context"
	"errors"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/mandelzoom/internal/fractal"
)

var _ = Describe("Session", func() {
	var (
		backend *fakeBackend
		s       *Session
		ctx     context.Context
	)

	BeforeEach(func() {
		backend = &fakeBackend{}
		s = newTestSession(backend)
		ctx = context.Background()
	})

	Describe("SetParameter", func() {
		It("updates canonical state without an engine", func() {
			Expect(s.SetParameter(fractal.FieldIterations, fractal.Int(1500))).To(Succeed())
			Expect(s.Params().Iterations).To(Equal(1500))
		})

		It("pushes exactly one matching mutator per field", func() {
			Expect(s.Open()).To(Succeed())
			eng := backend.last()

			cases := []struct {
				field fractal.Field
				value fractal.Value
				want  call
			}{
				{fractal.FieldPosX, fractal.Real(-0.5), call{"SetPosX", -0.5}},
				{fractal.FieldPosY, fractal.Real(0.25), call{"SetPosY", 0.25}},
				{fractal.FieldSize, fractal.Real(2.0), call{"SetSize", 2.0}},
				{fractal.FieldIterations, fractal.Int(1500), call{"SetMaxIterations", 1500}},
				{fractal.FieldSamples, fractal.Int(3), call{"SetSamples", 3}},
				{fractal.FieldWidth, fractal.Int(640), call{"SetWidth", 640}},
				{fractal.FieldHeight, fractal.Int(480), call{"SetHeight", 480}},
				{fractal.FieldPaintMode, fractal.Enum(3), call{"SetPaintMode", fractal.PaintMode(3)}},
			}
			for i, c := range cases {
				Expect(s.SetParameter(c.field, c.value)).To(Succeed())
				calls := eng.Calls()
				Expect(calls).To(HaveLen(i + 1))
				Expect(calls[i]).To(Equal(c.want))
			}
		})

		It("does not push threads but uses it at render time", func() {
			Expect(s.Open()).To(Succeed())
			eng := backend.last()

			Expect(s.SetParameter(fractal.FieldThreads, fractal.Int(4))).To(Succeed())
			Expect(eng.Calls()).To(BeEmpty())

			Expect(s.Render(ctx)).To(Succeed())
			Expect(eng.threads).To(Equal([]int{4}))
		})

		It("repeats the mutator call for the same value", func() {
			Expect(s.Open()).To(Succeed())
			eng := backend.last()

			Expect(s.SetParameter(fractal.FieldSize, fractal.Real(1.5))).To(Succeed())
			first := s.Params()
			Expect(s.SetParameter(fractal.FieldSize, fractal.Real(1.5))).To(Succeed())

			Expect(eng.Calls()).To(Equal([]call{{"SetSize", 1.5}, {"SetSize", 1.5}}))
			Expect(s.Params()).To(Equal(first))
		})

		It("passes out-of-range values through", func() {
			Expect(s.Open()).To(Succeed())
			Expect(s.SetParameter(fractal.FieldSamples, fractal.Int(0))).To(Succeed())
			Expect(backend.last().Calls()).To(Equal([]call{{"SetSamples", 0}}))
		})

		It("rejects unknown fields", func() {
			err := s.SetParameter("zoom", fractal.Real(1))
			Expect(errors.Is(err, fractal.ErrUnknownField)).To(BeTrue())
		})

		It("applies only the fields that differ", func() {
			Expect(s.Open()).To(Succeed())
			next := s.Params()
			next.PosX = 0.3
			next.Samples = 2

			changed, err := s.Apply(next)
			Expect(err).NotTo(HaveOccurred())
			Expect(changed).To(Equal([]fractal.Field{fractal.FieldPosX, fractal.FieldSamples}))
			Expect(backend.last().Calls()).To(Equal([]call{{"SetPosX", 0.3}, {"SetSamples", 2}}))
		})
	})

	Describe("engine lifecycle", func() {
		It("creates the engine from the canonical parameters", func() {
			Expect(s.SetParameter(fractal.FieldWidth, fractal.Int(300))).To(Succeed())
			Expect(s.Open()).To(Succeed())
			Expect(backend.created[0].Width).To(Equal(300))
			Expect(s.Snapshot().HasEngine).To(BeTrue())
		})

		It("leaves the handle absent when init fails", func() {
			backend.err = fractal.ErrCanvasNotFound

			err := s.Open()
			Expect(errors.Is(err, fractal.ErrCanvasNotFound)).To(BeTrue())

			snap := s.Snapshot()
			Expect(snap.HasEngine).To(BeFalse())
			Expect(snap.LastErr).To(HaveOccurred())

			Expect(s.Render(ctx)).To(MatchError(ErrNoEngine))
			Expect(s.SaveImage()).To(MatchError(ErrNoEngine))
			Expect(s.SetParameter(fractal.FieldPosX, fractal.Real(1))).To(Succeed())
		})

		It("keeps at most one engine", func() {
			Expect(s.Open()).To(Succeed())
			first := backend.last()
			Expect(s.Open()).To(Succeed())

			Expect(backend.engines).To(HaveLen(2))
			Expect(first.closed).To(BeTrue())

			Expect(s.SetParameter(fractal.FieldPosX, fractal.Real(1))).To(Succeed())
			Expect(first.Calls()).To(BeEmpty())
			Expect(backend.last().Calls()).To(HaveLen(1))
		})

		It("keeps one live engine under concurrent opens", func() {
			var wg sync.WaitGroup
			errs := make(chan error, 8)
			for i := 0; i < 8; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					errs <- s.Open()
				}()
			}
			wg.Wait()
			close(errs)
			for err := range errs {
				Expect(err).NotTo(HaveOccurred())
			}

			Expect(backend.engines).To(HaveLen(8))
			live := 0
			for _, eng := range backend.engines {
				eng.mu.Lock()
				if !eng.closed {
					live++
				}
				eng.mu.Unlock()
			}
			Expect(live).To(Equal(1))
			Expect(backend.last().closed).To(BeFalse())
		})

		It("drops the handle on close", func() {
			Expect(s.Open()).To(Succeed())
			eng := backend.last()
			s.Close()

			Expect(eng.closed).To(BeTrue())
			Expect(s.Snapshot().HasEngine).To(BeFalse())
			Expect(s.Render(ctx)).To(MatchError(ErrNoEngine))
		})
	})

	Describe("Render", func() {
		BeforeEach(func() {
			Expect(s.Open()).To(Succeed())
		})

		It("records the engine's render time", func() {
			Expect(s.Render(ctx)).To(Succeed())

			snap := s.Snapshot()
			Expect(snap.RenderTime).To(Equal(0.25))
			Expect(snap.Rendering).To(BeFalse())
			Expect(snap.LastErr).NotTo(HaveOccurred())
		})

		It("never starts a second render while one is in flight", func() {
			eng := backend.last()
			eng.started = make(chan struct{})
			eng.release = make(chan struct{})

			done := make(chan error)
			go func() { done <- s.Render(ctx) }()
			Eventually(eng.started).Should(Receive())
			Expect(s.Snapshot().Rendering).To(BeTrue())

			Expect(s.Render(ctx)).To(MatchError(ErrRenderInFlight))
			Expect(eng.Renders()).To(Equal(1))

			close(eng.release)
			Eventually(done).Should(Receive(BeNil()))
			Expect(s.Snapshot().Rendering).To(BeFalse())

			eng.started = nil
			Expect(s.Render(ctx)).To(Succeed())
			Expect(eng.Renders()).To(Equal(2))
		})

		It("clears the flag and keeps parameters when the engine fails", func() {
			Expect(s.SetParameter(fractal.FieldSize, fractal.Real(0.5))).To(Succeed())
			backend.last().renderErr = errEngine

			err := s.Render(ctx)
			Expect(errors.Is(err, errEngine)).To(BeTrue())

			snap := s.Snapshot()
			Expect(snap.Rendering).To(BeFalse())
			Expect(snap.Params.Size).To(Equal(0.5))
			Expect(errors.Is(snap.LastErr, errEngine)).To(BeTrue())
			Expect(snap.RenderTime).To(BeZero())
		})

		It("recovers from an engine panic", func() {
			backend.last().panicMsg = "boom"

			err := s.Render(ctx)
			Expect(err).To(MatchError(ContainSubstring("boom")))
			Expect(s.Snapshot().Rendering).To(BeFalse())

			backend.last().panicMsg = ""
			Expect(s.Render(ctx)).To(Succeed())
		})
	})

	Describe("SaveImage", func() {
		BeforeEach(func() {
			Expect(s.Open()).To(Succeed())
		})

		It("delegates to the engine export", func() {
			Expect(s.SaveImage()).To(Succeed())
			Expect(s.SaveImageTo("deep.png")).To(Succeed())
			Expect(backend.last().saved).To(Equal([]string{DefaultExportPath, "deep.png"}))
		})

		It("logs and returns export failures without touching parameters", func() {
			before := s.Params()
			backend.last().saveErr = fractal.ErrNothingRendered

			err := s.SaveImage()
			Expect(errors.Is(err, fractal.ErrNothingRendered)).To(BeTrue())
			Expect(s.Params()).To(Equal(before))
			Expect(backend.last().saved).To(BeEmpty())
		})
	})

	Describe("zoom gesture", func() {
		BeforeEach(func() {
			Expect(s.Open()).To(Succeed())
		})

		It("commits the drag as three pushes followed by a render", func() {
			s.PointerDown(Point{X: 100, Y: 100})
			s.PointerMove(Point{X: 150, Y: 120})
			s.PointerMove(Point{X: 200, Y: 150})

			snap := s.Snapshot()
			Expect(snap.Dragging).To(BeTrue())
			Expect(snap.Drag).To(Equal(Rect{X: 100, Y: 100, W: 100, H: 50}))
			Expect(backend.last().Calls()).To(BeEmpty())

			zoomed, err := s.PointerUp(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(zoomed).To(BeTrue())

			calls := backend.last().Calls()
			Expect(calls).To(HaveLen(4))
			Expect(calls[0]).To(Equal(call{"SetPosX", -0.828125}))
			Expect(calls[1]).To(Equal(call{"SetPosY", -1.0234375}))
			Expect(calls[2]).To(Equal(call{"SetSize", 0.78125}))
			Expect(calls[3].name).To(Equal("RenderParallel"))

			Expect(s.Snapshot().Dragging).To(BeFalse())
		})

		It("discards drags inside the dead zone", func() {
			before := s.Params()
			s.PointerDown(Point{X: 100, Y: 100})
			s.PointerMove(Point{X: 300, Y: 104})

			zoomed, err := s.PointerUp(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(zoomed).To(BeFalse())
			Expect(s.Params()).To(Equal(before))
			Expect(backend.last().Calls()).To(BeEmpty())
		})

		It("ignores a click without movement", func() {
			s.PointerDown(Point{X: 10, Y: 10})
			zoomed, err := s.PointerUp(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(zoomed).To(BeFalse())
			Expect(backend.last().Calls()).To(BeEmpty())
		})

		It("ignores moves without a pointer-down", func() {
			s.PointerMove(Point{X: 200, Y: 200})
			Expect(s.Snapshot().Dragging).To(BeFalse())
			Expect(s.PointerRelease()).To(BeFalse())
		})

		It("reverts the last zoom with Back", func() {
			before := s.Params()
			Expect(s.Back()).To(BeFalse())

			Expect(s.Zoom(Rect{X: 100, Y: 100, W: 100, H: 50})).To(BeTrue())
			Expect(s.Zoom(Rect{X: 10, Y: 20, W: 64, H: 64})).To(BeTrue())
			mid := s.Params()
			Expect(s.Zoom(ZoomOutRect(mid, 2))).To(BeTrue())

			Expect(s.Back()).To(BeTrue())
			Expect(s.Params().Size).To(BeNumerically("~", mid.Size, 1e-12))
			Expect(s.Params().PosX).To(BeNumerically("~", mid.PosX, 1e-12))

			Expect(s.Back()).To(BeTrue())
			Expect(s.Back()).To(BeTrue())
			got := s.Params()
			Expect(got.PosX).To(BeNumerically("~", before.PosX, 1e-9))
			Expect(got.PosY).To(BeNumerically("~", before.PosY, 1e-9))
			Expect(got.Size).To(BeNumerically("~", before.Size, 1e-9))
			Expect(s.Back()).To(BeFalse())

			calls := backend.last().Calls()
			Expect(calls).To(HaveLen(18))
			Expect(calls[15].name).To(Equal("SetPosX"))
			Expect(calls[16].name).To(Equal("SetPosY"))
			Expect(calls[17].name).To(Equal("SetSize"))
			Expect(backend.last().Renders()).To(BeZero())
		})

		It("still updates parameters when the render is dropped", func() {
			eng := backend.last()
			eng.started = make(chan struct{})
			eng.release = make(chan struct{})
			done := make(chan error)
			go func() { done <- s.Render(ctx) }()
			Eventually(eng.started).Should(Receive())

			s.PointerDown(Point{X: 0, Y: 0})
			s.PointerMove(Point{X: 256, Y: 256})
			zoomed, err := s.PointerUp(ctx)
			Expect(zoomed).To(BeTrue())
			Expect(err).To(MatchError(ErrRenderInFlight))
			Expect(s.Params().Size).To(Equal(2.0))

			close(eng.release)
			Eventually(done).Should(Receive(BeNil()))
			Expect(eng.Renders()).To(Equal(1))
		})
	})
})
