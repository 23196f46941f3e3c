package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethaniccc/float32-cube/cube"
	"github.com/getsentry/sentry-go"
	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/oomph-ac/locomotion/body"
	"github.com/oomph-ac/locomotion/character"
	"github.com/oomph-ac/locomotion/locomotion"
	"github.com/oomph-ac/locomotion/metrics"
	"github.com/oomph-ac/locomotion/rig"
	"github.com/oomph-ac/locomotion/settings"
	"github.com/oomph-ac/locomotion/transformation"
	"github.com/oomph-ac/locomotion/worker"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// The following program hosts a number of bodies walking around a small walled room, turning and
// teleporting as they go.
func main() {
	path := "locomotion.toml"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	if err := settings.SaveDefault(path); err == nil {
		fmt.Printf("Default settings written to %v\n", path)
	}
	conf, err := settings.Load(path)
	if err != nil {
		fmt.Printf("Unable to load settings: %v\n", err)
		os.Exit(1)
	}

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
		FullTimestamp:   true,
	})
	level, _ := conf.Level()
	log.SetLevel(level)

	if conf.Telemetry.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{Dsn: conf.Telemetry.SentryDSN}); err != nil {
			log.Errorf("unable to initialize sentry: %v", err)
		}
		defer sentry.Flush(time.Second * 2)
	}

	watcher, err := settings.Watch(path, log, func(s settings.Settings) {
		if level, err := s.Level(); err == nil {
			log.SetLevel(level)
		}
	})
	if err != nil {
		log.Warnf("settings will not be reloaded: %v", err)
	} else {
		defer watcher.Close()
	}

	reg := prometheus.NewRegistry()
	mt := metrics.New(reg)
	if addr := conf.Telemetry.MetricsAddr; addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		go func() {
			if err := http.ListenAndServe(addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Errorf("metrics server stopped: %v", err)
			}
		}()
	}
	if addr := conf.Telemetry.StatsViewAddr; addr != "" {
		// set configurations before calling `statsview.New()` method
		viewer.SetConfiguration(viewer.WithTheme(viewer.ThemeWesteros), viewer.WithAddr(addr))
		mgr := statsview.New()
		go mgr.Start()
		defer mgr.Stop()
	}

	world := room()
	pool := worker.New(0, log)
	defer pool.Close()
	group := rig.NewGroup(pool)
	for i := 0; i < conf.Host.Rigs; i++ {
		r, err := newRig(conf, log, mt, world, float32(i))
		if err != nil {
			log.Errorf("unable to create rig: %v", err)
			os.Exit(1)
		}
		defer r.Close()
		group.Add(r)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	log.Infof("hosting %d bodies at %d ticks per second", conf.Host.Rigs, conf.Host.TickRate)
	if err := group.Run(ctx, conf.Host.TickRate); err != nil {
		log.Errorf("stopped: %v", err)
	}
}

// room returns a floor surrounded by four walls.
func room() *character.StaticWorld {
	return character.NewStaticWorld(
		cube.Box(-16, -1, -16, 16, 0, 16),
		cube.Box(-16, 0, -16, -15, 3, 16),
		cube.Box(15, 0, -16, 16, 3, 16),
		cube.Box(-16, 0, -16, 16, 3, -15),
		cube.Box(-16, 0, 15, 16, 3, 16),
		cube.Box(-4, 0, 4, 4, 0.4, 6),
	)
}

func newRig(conf settings.Settings, log *logrus.Logger, mt *metrics.Metrics, world *character.StaticWorld, offset float32) (*rig.Rig, error) {
	frame := body.NewFrame(float32(conf.Body.EyeHeight))
	frame.Scale = float32(conf.Body.Scale)
	frame.Position = mgl32.Vec3{offset, 0, 0}

	controller := character.New(world)
	controller.Radius = float32(conf.Character.Radius)
	controller.StepOffset = float32(conf.Character.StepOffset)
	controller.MinHeight = float32(conf.Character.MinHeight)
	controller.SkinWidth = float32(conf.Character.SkinWidth)

	r, err := rig.New(rig.Config{
		Log:         log,
		Frame:       frame,
		Manipulator: controller,
		Metrics:     mt,
	})
	if err != nil {
		return nil, err
	}

	h := logHandler{log: log}
	tps := float32(conf.Host.TickRate)
	w := &walker{controller: controller, speed: 4 / tps, gravity: 9.8 / (tps * tps), maxFall: 50 / tps}
	w.Handle(h)
	turn := &snapTurner{interval: uint64(conf.Host.TickRate) * 3, clock: r}
	turn.Handle(h)
	tp := &teleporter{interval: uint64(conf.Host.TickRate) * 10, clock: r, world: world}
	tp.Handle(h)

	r.Add(w, turn, tp)
	return r, nil
}

// logHandler logs the start and end of every provider's locomotion.
type logHandler struct {
	locomotion.NopProviderHandler
	log *logrus.Logger
}

func (h logHandler) HandleLocomotionStarted(p locomotion.Provider) {
	h.log.WithField("provider", p.Base().ID()).Debugf("%T started moving", p)
}

func (h logHandler) HandleLocomotionEnded(p locomotion.Provider) {
	h.log.WithField("provider", p.Base().ID()).Debugf("%T stopped moving", p)
}

// walker walks in the direction the eye is looking, falling under gravity while in the air.
type walker struct {
	locomotion.BaseProvider
	controller *character.Controller
	speed      float32
	gravity    float32
	maxFall    float32
	fall       float32
}

func (w *walker) CanStartMoving() bool {
	return w.controller.LinkedBody() != nil
}

func (w *walker) Update() {
	if !w.IsLocomotionActive() {
		w.TryPrepareLocomotion()
		return
	}
	if w.LocomotionState() != locomotion.StateMoving {
		return
	}
	if w.controller.Grounded() {
		w.fall = 0
	} else {
		w.fall = min(w.fall+w.gravity, w.maxFall)
	}

	dir := mgl32.Vec3{}
	if t := w.Transformer(); t != nil && t.Body() != nil {
		fwd := t.Body().Frame().EyeForward()
		dir = mgl32.Vec3{fwd.X(), 0, fwd.Z()}
		if dir.LenSqr() > 0 {
			dir = dir.Normalize().Mul(w.speed)
		}
	}
	dir[1] = -w.fall
	w.TryQueueTransformation(transformation.Translate{Displacement: dir})
	if w.controller.LastCollisionFlags().Has(body.CollisionSides) {
		// Turn around when a wall is hit.
		w.TryQueueTransformationWithPriority(transformation.RotateAboutUp{Angle: 180}, 1)
	}
}

// tickClock is the part of a rig providers read the current tick from.
type tickClock interface {
	CurrentTick() uint64
}

// snapTurner turns the body by 45 degrees at a fixed interval, moving for a single tick each time.
type snapTurner struct {
	locomotion.BaseProvider
	interval uint64
	clock    tickClock
}

func (s *snapTurner) Update() {
	switch s.LocomotionState() {
	case locomotion.StateIdle:
		if s.clock.CurrentTick()%s.interval == 0 {
			s.TryStartLocomotionImmediately()
		}
	case locomotion.StateMoving:
		s.TryQueueTransformation(transformation.RotateAboutUp{Angle: 45})
		s.TryEndLocomotion()
	}
}

// teleporter moves the body back to the centre of the room at a fixed interval, onto whatever floor
// it finds there.
type teleporter struct {
	locomotion.BaseProvider
	interval uint64
	clock    tickClock
	world    *character.StaticWorld
}

func (t *teleporter) Update() {
	switch t.LocomotionState() {
	case locomotion.StateIdle:
		if t.clock.CurrentTick()%t.interval == 0 {
			t.TryPrepareLocomotion()
		}
	case locomotion.StateMoving:
		if hit, ok := t.world.Raycast(mgl32.Vec3{0, 10, 0}, mgl32.Vec3{0, -10, 0}); ok {
			t.TryQueueTransformationWithPriority(transformation.MatchGroundPosition{Target: hit}, -1)
		}
		t.TryEndLocomotion()
	}
}
