package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/mandelzoom/internal/automation"
	"github.com/san-kum/mandelzoom/internal/config"
	"github.com/san-kum/mandelzoom/internal/control"
	"github.com/san-kum/mandelzoom/internal/fractal"
	"github.com/san-kum/mandelzoom/internal/metrics"
	"github.com/san-kum/mandelzoom/internal/remote"
	"github.com/san-kum/mandelzoom/internal/storage"
	"github.com/san-kum/mandelzoom/internal/tui"
)

var (
	dataDir    string
	configFile string
	backend    string
	remoteURL  string
	verbose    bool

	posX       float64
	posY       float64
	size       float64
	iterations int
	samples    int
	width      int
	height     int
	threads    int
	paintMode  string

	preset  string
	view    string
	outFile string

	// bench
	maxThreads int
	repeat     int

	// serve
	addr string

	// zoom
	zoomRender bool
)

// main registers the commands and runs the terminal UI when no subcommand
// is given. It exits with status 1 if the command fails.
func main() {
	rootCmd := &cobra.Command{
		Use:          "mandelzoom",
		Short:        "interactive mandelbrot explorer",
		SilenceUsage: true,
		RunE:         runTUI,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", config.DefaultDataDir, "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&backend, "backend", config.BackendCPU, "render backend (cpu, remote)")
	rootCmd.PersistentFlags().StringVar(&remoteURL, "remote", config.DefaultRemote, "render server url")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	viewFlags(rootCmd)

	tuiCmd := &cobra.Command{
		Use:   "tui",
		Short: "interactive terminal explorer",
		RunE:  runTUI,
	}
	viewFlags(tuiCmd)

	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "render one image to PNG",
		RunE:  runRender,
	}
	viewFlags(renderCmd)
	renderCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default from config)")

	zoomCmd := &cobra.Command{
		Use:   "zoom [x] [y] [w] [h]",
		Short: "apply a drag rectangle (canvas pixels) and print the new view",
		Args:  cobra.ExactArgs(4),
		RunE:  runZoom,
	}
	viewFlags(zoomCmd)
	zoomCmd.Flags().BoolVar(&zoomRender, "render", false, "render the zoomed view")
	zoomCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file when rendering")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "render with increasing thread counts",
		RunE:  runBench,
	}
	viewFlags(benchCmd)
	benchCmd.Flags().IntVar(&maxThreads, "max-threads", 2*runtime.NumCPU(), "largest thread count")
	benchCmd.Flags().IntVar(&repeat, "repeat", 3, "renders per thread count")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "serve the cpu engine over websocket",
		RunE:  runServe,
	}
	serveCmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE:  listPresets,
	}

	viewsCmd := &cobra.Command{
		Use:   "views",
		Short: "list bookmarked views",
		RunE:  listViews,
	}

	tourCmd := &cobra.Command{
		Use:   "tour [file]",
		Short: "run a scripted tour",
		Args:  cobra.ExactArgs(1),
		RunE:  runTour,
	}
	viewFlags(tourCmd)

	initCmd := &cobra.Command{
		Use:   "init-config [path]",
		Short: "write the default config",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := os.Stat(args[0]); err == nil {
				return fmt.Errorf("%s already exists", args[0])
			}
			if err := config.Save(args[0], config.DefaultConfig()); err != nil {
				return err
			}
			fmt.Printf("wrote %s\n", args[0])
			return nil
		},
	}

	rootCmd.AddCommand(tuiCmd, renderCmd, zoomCmd, benchCmd, serveCmd, presetsCmd, viewsCmd, tourCmd, initCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func viewFlags(cmd *cobra.Command) {
	d := fractal.DefaultParams()
	f := cmd.Flags()
	f.Float64Var(&posX, "posx", d.PosX, "view center, real part")
	f.Float64Var(&posY, "posy", d.PosY, "view center, imaginary part")
	f.Float64Var(&size, "size", d.Size, "view width in the complex plane")
	f.IntVar(&iterations, "iterations", d.Iterations, "max iterations")
	f.IntVar(&samples, "samples", d.Samples, "supersampling grid per axis")
	f.IntVar(&width, "width", d.Width, "raster width")
	f.IntVar(&height, "height", d.Height, "raster height")
	f.IntVar(&threads, "threads", d.Threads, "render workers")
	f.StringVar(&paintMode, "paint", config.DefaultPaintMode, "paint mode")
	f.StringVar(&preset, "preset", "", "start from a preset")
	f.StringVar(&view, "view", "", "start from a bookmarked view (id or name)")
}

func runTUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return err
	}
	logFile, err := os.OpenFile(cfg.LogPath(), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer logFile.Close()

	env, err := openSession(cmd, cfg, newLogger(logFile))
	if err != nil {
		return err
	}
	defer env.Close()

	return tui.Run(tui.Options{
		Session:    env.session,
		Surface:    env.surface,
		Store:      env.store,
		Log:        env.log,
		ConfigPath: configFile,
	})
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	env, err := openSession(cmd, cfg, newLogger(os.Stderr))
	if err != nil {
		return err
	}
	defer env.Close()

	return renderTo(cmd.Context(), env.session, outFile)
}

func renderTo(ctx context.Context, s *control.Session, path string) error {
	if err := s.Render(ctx); err != nil {
		return err
	}
	if path == "" {
		path = s.ExportPath()
	}
	if err := s.SaveImageTo(path); err != nil {
		return err
	}
	snap := s.Snapshot()
	fmt.Printf("rendered %dx%d in %.3fs -> %s\n", snap.Params.Width, snap.Params.Height, snap.RenderTime, path)
	return nil
}

func runZoom(cmd *cobra.Command, args []string) error {
	var r [4]float64
	for i, a := range args {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return fmt.Errorf("invalid rectangle value %q: %w", a, err)
		}
		r[i] = v
	}
	rect := control.Rect{X: r[0], Y: r[1], W: r[2], H: r[3]}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	env, err := openSession(cmd, cfg, newLogger(os.Stderr))
	if err != nil {
		return err
	}
	defer env.Close()

	before := env.session.Params()
	if !env.session.Zoom(rect) {
		return fmt.Errorf("rectangle %vx%v is below the %d pixel minimum or the canvas is empty", r[2], r[3], control.MinZoomPixels)
	}
	after := env.session.Params()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FIELD\tBEFORE\tAFTER")
	fmt.Fprintf(w, "posX\t%.17g\t%.17g\n", before.PosX, after.PosX)
	fmt.Fprintf(w, "posY\t%.17g\t%.17g\n", before.PosY, after.PosY)
	fmt.Fprintf(w, "size\t%.17g\t%.17g\n", before.Size, after.Size)
	if err := w.Flush(); err != nil {
		return err
	}

	if zoomRender {
		return renderTo(cmd.Context(), env.session, outFile)
	}
	return nil
}

func runBench(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	env, err := openSession(cmd, cfg, newLogger(os.Stderr))
	if err != nil {
		return err
	}
	defer env.Close()

	s := env.session
	p := s.Params()
	fmt.Printf("benchmarking %dx%d, %d iterations, %d samples on %s\n\n", p.Width, p.Height, p.Iterations, p.Samples, env.backend)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "THREADS\tBEST\tMEAN\tMSAMPLES/S\tSPEEDUP")

	var counts []int
	for n := 1; n <= maxThreads; n *= 2 {
		counts = append(counts, n)
	}

	mean, best, tp := metrics.NewMeanTime(), metrics.NewBestTime(), metrics.NewThroughput()
	set := metrics.Set{mean, best, tp}

	var means []float64
	var base float64
	for _, n := range counts {
		if err := s.SetParameter(fractal.FieldThreads, fractal.Int(n)); err != nil {
			return err
		}
		set.Reset()
		for i := 0; i < max(repeat, 1); i++ {
			if err := s.Render(cmd.Context()); err != nil {
				return err
			}
			snap := s.Snapshot()
			set.Observe(snap.Params, snap.RenderTime)
		}
		if base == 0 {
			base = mean.Value()
		}
		means = append(means, mean.Value())
		fmt.Fprintf(w, "%d\t%.3fs\t%.3fs\t%.1f\t%.2fx\n", n, best.Value(), mean.Value(), tp.Value()/1e6, base/mean.Value())
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(means) > 1 {
		graph := asciigraph.Plot(means,
			asciigraph.Height(10),
			asciigraph.Width(60),
			asciigraph.Caption(fmt.Sprintf("mean seconds for threads %v", counts)),
		)
		fmt.Println()
		fmt.Println(graph)
	}
	return nil
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	return remote.Serve(ctx, addr, newLogger(os.Stderr))
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tPOSX\tPOSY\tSIZE\tDESCRIPTION")
	for _, name := range config.ListPresets() {
		p := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%.6g\t%.6g\t%.4g\t%s\n", name, p.PosX, p.PosY, p.Size, p.Description)
	}
	return w.Flush()
}

func listViews(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	views, err := storage.New(cfg.BookmarkDir()).List()
	if err != nil {
		return err
	}

	if len(views) == 0 {
		fmt.Println("no views found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tPOSX\tPOSY\tSIZE\tITER\tRENDER")
	for _, v := range views {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.6g\t%.6g\t%.4g\t%d\t%.3fs\n",
			v.ID,
			v.Name,
			v.Timestamp.Format("2006-01-02 15:04:05"),
			v.Params.PosX,
			v.Params.PosY,
			v.Params.Size,
			v.Params.Iterations,
			v.RenderTime,
		)
	}
	return w.Flush()
}

func runTour(cmd *cobra.Command, args []string) error {
	tour, err := automation.LoadTour(args[0])
	if err != nil {
		return err
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	env, err := openSession(cmd, cfg, newLogger(os.Stderr))
	if err != nil {
		return err
	}
	defer env.Close()

	if tour.Name != "" {
		fmt.Printf("tour %s: %s\n", tour.Name, tour.Description)
	}
	results, err := automation.RunTour(cmd.Context(), env.session, tour, os.Stdout)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tPOSX\tPOSY\tSIZE\tRENDER\tSAVED")
	for _, r := range results {
		fmt.Fprintf(w, "%d\t%.6g\t%.6g\t%.4g\t%.3fs\t%s\n", r.Step, r.Params.PosX, r.Params.PosY, r.Params.Size, r.RenderTime, r.Saved)
	}
	if ferr := w.Flush(); ferr != nil && err == nil {
		err = ferr
	}
	return err
}
