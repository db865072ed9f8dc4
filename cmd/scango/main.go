package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/cjeanneret/ScanGo/internal/config"
	"github.com/cjeanneret/ScanGo/internal/debug"
	"github.com/cjeanneret/ScanGo/internal/hw/beeper"
	"github.com/cjeanneret/ScanGo/internal/hw/camera"
	"github.com/cjeanneret/ScanGo/internal/hw/endstop"
	"github.com/cjeanneret/ScanGo/internal/hw/gpio"
	"github.com/cjeanneret/ScanGo/internal/hw/stepper"
	"github.com/cjeanneret/ScanGo/internal/logic/axis"
	"github.com/cjeanneret/ScanGo/internal/logic/geometry"
	"github.com/cjeanneret/ScanGo/internal/logic/motion"
	"github.com/cjeanneret/ScanGo/internal/logic/scan"
	"github.com/cjeanneret/ScanGo/internal/web"
)

func main() {
	// CLI flags
	webPort := &webPortFlag{defaultPort: 8080}
	flag.Var(webPort, "web", "start web server on port; -web= for default 8080, -web 8980 for custom port")
	cfgPath := flag.String("config", filepath.Join("configs", "default.yaml"), "path to config file")
	saveDir := flag.String("savedir", "", "override scan save directory")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Load configuration
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("load config failed: %v", err)
	}
	if *saveDir != "" {
		cfg.Scan.SaveDir = *saveDir
	}

	// Initialize debug system
	debug.Init(cfg.Defaults.DebugLevel)
	debug.Section("Initialization")
	debug.Value("Config path", *cfgPath)
	debug.Value("Debug level", cfg.Defaults.DebugLevel)

	// Initialize GPIO driver
	debug.Value("Mock GPIO", cfg.Defaults.MockGPIO)
	debug.Step(1, "Initializing GPIO driver")
	gpioDriver, err := gpio.NewDriver(cfg.Defaults.MockGPIO)
	if err != nil {
		log.Fatalf("init GPIO failed: %v", err)
	}
	defer func() {
		if err := gpioDriver.Close(); err != nil {
			log.Printf("closing GPIO driver failed: %v", err)
		}
	}()

	// Initialize axes
	debug.Step(2, "Initializing axes")
	readout := motion.NewReadout()
	axes := &axis.Set{
		X: buildAxis(gpioDriver, "X", cfg.XAxis, cfg, readout),
		Y: buildAxis(gpioDriver, "Y", cfg.YAxis, cfg, readout),
		Z: buildAxis(gpioDriver, "Z", cfg.ZAxis, cfg, readout),
		R: buildAxis(gpioDriver, "R", cfg.RAxis, cfg, readout),
	}

	beep := beeper.NewBeeper(gpioDriver, cfg.Defaults.BeeperPin)
	rig := motion.NewRig(axes, beep, readout)

	// Initialize camera
	debug.Step(3, "Initializing camera")
	cam, err := newCameraFromConfig(cfg)
	if err != nil {
		log.Fatalf("init camera failed: %v", err)
	}
	debug.Value("Camera type", cfg.Camera.Type)
	debug.Value("Resolution", cfg.Camera.Resolution)

	// Scan engine and resume path
	debug.Step(4, "Initializing scan engine")
	store := scan.NewStore(cfg.Defaults.CheckpointPath)
	engineParams := scan.Params{Settle: cfg.SettleDelay()}
	if webPort.port() == 0 {
		// Console runs gate completion on the operator; web runs report
		// through the status stream instead.
		engineParams.Confirm = waitForOperator
	}
	engine := scan.NewEngine(rig, cam, store, scan.SystemRestarter{}, engineParams)
	loader := scan.NewLoader(store, rig, engine)

	beep.Startup()

	// A checkpoint on disk means a previous scan died mid-run; resuming it
	// takes priority over everything else.
	resumed, _, err := loader.Resume(ctx)
	if err != nil {
		if errors.Is(err, scan.ErrScanInterrupted) {
			log.Printf("scan interrupted again; host restart requested")
			return
		}
		if errors.Is(err, scan.ErrCheckpointCorrupt) {
			log.Fatalf("resume failed: %v\nremove or inspect the checkpoint file before restarting", err)
		}
		log.Fatalf("resume failed: %v", err)
	}
	if resumed {
		return
	}

	bounds := motion.NewBounds(cfg.Scan.XStep, cfg.Scan.YStep, cfg.Scan.ZStep, cfg.Scan.RStep)

	runScan := func(ctx context.Context, req web.ScanRequest) error {
		return executeScan(ctx, cfg, rig, engine, bounds, req)
	}

	if port := webPort.port(); port > 0 {
		webAddr := fmt.Sprintf(":%d", port)
		broadcaster := web.NewStatusBroadcaster()
		debug.SetOutput(io.MultiWriter(os.Stdout, web.BroadcastWriter(broadcaster)))

		handlers := web.NewHandlers(broadcaster, rig, bounds, runScan, web.StaticFS())
		srv := web.NewServer(webAddr, handlers)
		if err := srv.Run(ctx); err != nil {
			log.Fatalf("web server: %v", err)
		}
		return
	}

	// One-shot scan from the config's scan block: home, then run.
	if err := rig.HomeXYZ(); err != nil {
		log.Fatalf("homing failed: %v", err)
	}
	if err := runScan(ctx, web.ScanRequest{
		XMin: cfg.Scan.XMin, XMax: cfg.Scan.XMax, XStep: cfg.Scan.XStep,
		YMin: cfg.Scan.YMin, YMax: cfg.Scan.YMax, YStep: cfg.Scan.YStep,
		ZMin: cfg.Scan.ZMin, ZMax: cfg.Scan.ZMax, ZStep: cfg.Scan.ZStep,
		RMin: cfg.Scan.RMin, RMax: cfg.Scan.RMax, RStep: cfg.Scan.RStep,
	}); err != nil {
		if errors.Is(err, scan.ErrScanInterrupted) {
			log.Printf("scan interrupted; host restart requested")
			return
		}
		log.Fatalf("scan failed: %v", err)
	}
}

// executeScan builds the plan and a fresh session, then runs the engine.
func executeScan(
	ctx context.Context,
	cfg *config.Config,
	rig *motion.Rig,
	engine *scan.Engine,
	bounds *motion.Bounds,
	req web.ScanRequest,
) error {
	dir := req.SaveDir
	if dir == "" {
		dir = cfg.Scan.SaveDir
	}
	if dir == "" {
		return fmt.Errorf("no save directory: set scan.save_dir, -savedir, or pass save_dir in the request")
	}

	params := req.Params(bounds)
	plan, err := geometry.DefineScan(params)
	if err != nil {
		return fmt.Errorf("define scan: %w", err)
	}

	debug.Summary("Starting Scan")
	debug.Value("Save dir", dir)
	debug.Value("Coordinates", len(plan))
	debug.PrintStruct("Grid params", params)

	sess := scan.NewSession(dir, cfg.Camera.FileExt, cfg.Camera.Resolution, cfg.ReconnectTimeout(), len(plan))

	_, err = engine.Run(ctx, plan, sess)
	return err
}

// waitForOperator blocks until the operator confirms scan completion on the
// console. The rig must not power down unattended before the images have
// been checked.
func waitForOperator() {
	fmt.Print("press enter to exit")
	_, _ = bufio.NewReader(os.Stdin).ReadString('\n')
}

// buildAxis assembles one axis from config: motor, optional endstop, limits.
func buildAxis(g gpio.Driver, name string, ac config.AxisConfig, cfg *config.Config, readout *motion.Readout) *axis.Axis {
	motor := stepper.NewStepper(g, stepper.Config{
		StepPin:   ac.StepPin,
		DirPin:    ac.DirPin,
		EnablePin: ac.EnablePin,
	})

	var limit *endstop.Switch
	if ac.EndstopPin > 0 {
		limit = endstop.NewSwitch(g, ac.EndstopPin)
	}

	max := ac.MaxSteps
	if max == 0 {
		max = ac.StepsPerRev // rotation axis
	}

	debug.PrintStruct(name+" axis config", ac)
	return axis.New(motor, limit, axis.Config{
		Name:             name,
		Max:              max,
		TravelDelay:      ac.TravelDelay(),
		HomeDelay:        ac.HomeDelay(),
		HomeOvershoot:    cfg.Defaults.HomeOvershootSteps,
		HomeSafetyMargin: cfg.Defaults.HomeSafetyMargin,
		HomeBackoff:      ac.HomeBackoffSteps,
	}, readout.Update)
}

// newCameraFromConfig selects a camera implementation based on configuration.
func newCameraFromConfig(cfg *config.Config) (camera.Camera, error) {
	switch cfg.Camera.Type {
	case "fswebcam":
		return camera.NewFSWebcam(cfg.Camera.Resolution, cfg.AttemptTimeout()), nil
	default:
		return nil, fmt.Errorf("unsupported camera type: %s", cfg.Camera.Type)
	}
}

// webPortFlag implements flag.Value for -web: 0 = disabled, -web= or -web 8080 → 8080, -web 8980 → 8980.
type webPortFlag struct {
	val         int
	defaultPort int
}

func (w *webPortFlag) String() string {
	if w.val == 0 {
		return "0"
	}
	return strconv.Itoa(w.val)
}

func (w *webPortFlag) Set(s string) error {
	if s == "" {
		w.val = w.defaultPort
		return nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	if v <= 0 || v > 65535 {
		return fmt.Errorf("port must be 1-65535, got %d", v)
	}
	w.val = v
	return nil
}

func (w *webPortFlag) port() int { return w.val }
