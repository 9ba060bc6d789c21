package main

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"io"
	"io/fs"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
	colorful "github.com/lucasb-eyer/go-colorful"
	"go.uber.org/zap"

	"github.com/jask/tviewer/internal/config"
	"github.com/jask/tviewer/internal/logging"
	"github.com/jask/tviewer/internal/playback"
	"github.com/jask/tviewer/internal/scene"
	"github.com/jask/tviewer/internal/store"
	"github.com/jask/tviewer/internal/term"
	"github.com/jask/tviewer/internal/viewer"
)

var (
	sphereColor = color.RGBA{R: 0xf5, G: 0xc2, B: 0xe7, A: 0xff}
	gridColor   = color.RGBA{R: 0x89, G: 0xb4, B: 0xfa, A: 0xff}
	cloudColor  = color.RGBA{R: 0xa6, G: 0xe3, B: 0xa1, A: 0xff}

	// Backgrounds cycled by the background listener, after the configured one.
	backgrounds = []color.RGBA{
		{R: 0x1e, G: 0x1e, B: 0x2e, A: 0xff},
		{R: 0x11, G: 0x11, B: 0x1b, A: 0xff},
		{R: 0x31, G: 0x32, B: 0x44, A: 0xff},
		{R: 0xef, G: 0xf1, B: 0xf5, A: 0xff},
	}
)

// app holds everything the key listeners act on.
type app struct {
	ctx         context.Context
	cfg         config.Config
	v           *viewer.Viewer
	scene       *scene.Scene
	store       *store.Store
	log         *zap.Logger
	out         io.Writer
	clouds      []string
	backgrounds []color.RGBA
	bg          int
}

func run(args []string, stdout io.Writer) error {
	cfg, err := config.Load(args)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	st, err := store.Open(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer st.Close()

	bg, err := config.ParseColor(cfg.Viewer.Background)
	if err != nil {
		return err
	}
	sc := scene.New()
	sc.SetBackground(bg)
	if err := sc.LoadCamera(cfg.Camera.Path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("camera not restored", zap.Error(err))
	}

	var r viewer.Renderer
	if cfg.Replay.Script != "" {
		steps, err := playback.LoadScript(cfg.Replay.Script)
		if err != nil {
			return err
		}
		r = playback.New(sc, steps,
			playback.WithConsole(stdout),
			playback.WithPacing(cfg.Replay.Pace),
			playback.WithLogger(logger.Named("playback")))
	} else {
		t := term.New(sc, term.WithLogger(logger.Named("term")))
		t.Start()
		defer func() {
			if err := t.Close(); err != nil {
				logger.Error("window", zap.Error(err))
			}
		}()
		r = t
	}

	v, err := viewer.New(r,
		viewer.WithLogger(logger.Named("viewer")),
		viewer.WithTick(cfg.Viewer.Tick),
		viewer.WithForceShow(cfg.Viewer.Show...),
		viewer.WithForceHide(cfg.Viewer.Hide...),
		viewer.WithKeys(viewer.KeyConfig{
			Help:      cfg.Viewer.HelpKey,
			Yes:       cfg.Keys.Yes,
			No:        cfg.Keys.No,
			Done:      cfg.Keys.Done,
			NextLabel: cfg.Keys.NextLabel,
			Cancel:    cfg.Keys.Cancel,
		}),
	)
	if err != nil {
		return err
	}

	a := &app{
		ctx:         context.Background(),
		cfg:         cfg,
		v:           v,
		scene:       sc,
		store:       st,
		log:         logger,
		out:         r.Console(),
		backgrounds: append([]color.RGBA{bg}, backgrounds...),
	}
	if err := a.addObjects(); err != nil {
		return err
	}
	if err := a.addListeners(); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "tviewer: press %s for help\n", cfg.Viewer.HelpKey)
	v.Run()
	return nil
}

func (a *app) addObjects() error {
	specs, err := a.cfg.CloudSpecs()
	if err != nil {
		return err
	}

	objects := []viewer.Object{
		scene.NewStaticCloud(a.scene, "sphere",
			scene.Sphere(600, [3]float32{0, 0, 0}, 1, sphereColor),
			scene.WithKey("1"), scene.WithDescription("unit sphere")),
		scene.NewStaticCloud(a.scene, "grid",
			scene.Grid(21, 21, -1.2, 0.15, gridColor),
			scene.WithKey("2"), scene.WithDescription("ground grid")),
	}
	for i, spec := range specs {
		path := spec.Path
		opts := []scene.CloudOption{scene.WithDescription(path)}
		if i < 7 {
			opts = append(opts, scene.WithKey(strconv.Itoa(i+3)))
		}
		objects = append(objects, scene.NewCloud(a.scene, spec.Name, func() []scene.Point {
			pts, err := scene.LoadXYZ(path, cloudColor)
			if err != nil {
				a.log.Error("cloud not loaded", zap.String("path", path), zap.Error(err))
				fmt.Fprintf(a.out, "cannot load %s: %v\n", path, err)
			}
			return pts
		}, opts...))
	}

	for _, o := range objects {
		a.clouds = append(a.clouds, o.Name())
		if err := a.v.Add(o, true, false); err != nil {
			return err
		}
	}

	status := scene.NewText(a.scene, "status", a.statusText)
	return a.v.Add(status, true, true)
}

func (a *app) statusText() string {
	list, err := a.store.Selections.List(a.ctx)
	if err != nil {
		return "selections unavailable"
	}
	return fmt.Sprintf("%d saved selections", len(list))
}

func (a *app) addListeners() error {
	type binding struct {
		name    string
		keys    []string
		help    string
		handler func(viewer.KeyEvent)
		clouds  bool
	}
	bindings := []binding{
		{"pick point", []string{"p"}, "pick a point", a.pickPoint, true},
		{"point color", []string{"c"}, "show a point color", a.pointColor, true},
		{"select points", []string{"s"}, "select and save points", a.selectPoints, true},
		{"list selections", []string{"i"}, "list saved selections", a.listSelections, false},
		{"clear selections", []string{"x"}, "delete saved selections", a.clearSelections, false},
		{"background", []string{"b"}, "cycle background", a.cycleBackground, false},
		{"save camera", []string{"ctrl+s"}, "save camera", a.saveCamera, false},
		{"load camera", []string{"ctrl+o"}, "load camera", a.loadCamera, false},
	}
	for _, b := range bindings {
		l := viewer.NewKeyListener(b.name, key.NewBinding(key.WithKeys(b.keys...), key.WithHelp(b.keys[0], b.help)), b.handler)
		var deps []string
		if b.clouds {
			deps = a.clouds
		}
		if err := a.v.AddListener(l, deps...); err != nil {
			return err
		}
	}
	return nil
}

// report prints the outcome of a failed wait. A closed window needs no message.
func (a *app) report(what string, err error) {
	switch {
	case errors.Is(err, viewer.ErrWindowClosed):
	case errors.Is(err, viewer.ErrSelectionCanceled):
		fmt.Fprintf(a.out, "%s canceled\n", what)
	default:
		a.log.Error(what, zap.Error(err))
		fmt.Fprintf(a.out, "%s failed: %v\n", what, err)
	}
}

func (a *app) pickPoint(viewer.KeyEvent) {
	p, err := a.v.WaitPointSelected()
	if err != nil {
		a.report("pick", err)
		return
	}
	fmt.Fprintf(a.out, "picked %s\n", p)
}

func (a *app) pointColor(viewer.KeyEvent) {
	c, err := a.v.WaitPointColorSelected()
	if err != nil {
		a.report("color pick", err)
		return
	}
	hex := colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}.Hex()
	fmt.Fprintf(a.out, "color %s\n", hex)
}

func (a *app) selectPoints(viewer.KeyEvent) {
	sel, err := a.v.WaitPointsSelected(true)
	if err != nil {
		a.report("selection", err)
		return
	}
	if sel.Len() == 0 {
		fmt.Fprintln(a.out, "nothing selected")
		return
	}
	id, err := a.store.Selections.Save(a.ctx, sel)
	if err != nil {
		a.report("save", err)
		return
	}
	fmt.Fprintf(a.out, "saved selection %s: %d points of %s in %d labels\n", id, sel.Len(), sel.Object, len(sel.Indices))
	a.v.Update("status")
}

func (a *app) listSelections(viewer.KeyEvent) {
	list, err := a.store.Selections.List(a.ctx)
	if err != nil {
		a.report("list", err)
		return
	}
	if len(list) == 0 {
		fmt.Fprintln(a.out, "no saved selections")
		return
	}
	for _, s := range list {
		fmt.Fprintf(a.out, "  %s  %s  %d points  %d labels  %s\n",
			s.ID, s.Object, s.Points, s.Labels, s.CreatedAt.Format("2006-01-02 15:04"))
	}
}

func (a *app) clearSelections(viewer.KeyEvent) {
	ok, err := a.v.AskYesNo("Delete all saved selections?", true)
	if err != nil {
		a.report("clear", err)
		return
	}
	if !ok {
		fmt.Fprintln(a.out, "kept saved selections")
		return
	}
	n, err := a.store.Selections.DeleteAll(a.ctx)
	if err != nil {
		a.report("clear", err)
		return
	}
	fmt.Fprintf(a.out, "deleted %d selections\n", n)
	a.v.Update("status")
}

func (a *app) cycleBackground(viewer.KeyEvent) {
	a.bg = (a.bg + 1) % len(a.backgrounds)
	a.v.SetBackgroundColor(a.backgrounds[a.bg])
}

func (a *app) saveCamera(viewer.KeyEvent) {
	if err := a.v.SaveCameraParameters(a.cfg.Camera.Path); err != nil {
		a.report("save camera", err)
		return
	}
	fmt.Fprintf(a.out, "camera saved to %s\n", a.cfg.Camera.Path)
}

func (a *app) loadCamera(viewer.KeyEvent) {
	if err := a.v.LoadCameraParameters(a.cfg.Camera.Path); err != nil {
		a.report("load camera", err)
		return
	}
	fmt.Fprintf(a.out, "camera loaded from %s\n", a.cfg.Camera.Path)
}
