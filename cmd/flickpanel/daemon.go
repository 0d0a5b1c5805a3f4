package main

import (
	"context"
	"fmt"
	"image"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/1broseidon/flickpanel/internal/accent"
	"github.com/1broseidon/flickpanel/internal/config"
	"github.com/1broseidon/flickpanel/internal/daemon"
	"github.com/1broseidon/flickpanel/internal/geom"
	"github.com/1broseidon/flickpanel/internal/hotkeys"
	"github.com/1broseidon/flickpanel/internal/input"
	"github.com/1broseidon/flickpanel/internal/ipc"
	"github.com/1broseidon/flickpanel/internal/panel"
	"github.com/1broseidon/flickpanel/internal/platform"
	"github.com/1broseidon/flickpanel/internal/spring"
	"github.com/1broseidon/flickpanel/internal/x11"
	"github.com/BurntSushi/xgb/xproto"
)

func runDaemon(args []string) int {
	fs := newFlagSet("daemon", "flickpanel daemon [--path PATH]", "Start the flickpanel daemon in the foreground.")
	path := fs.String("path", "", "Config file path (default: ~/.config/flickpanel/config.yaml)")
	if code := parseFlags(fs, args); code >= 0 {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "daemon takes no arguments")
		fs.Usage()
		return 2
	}

	configPath := *path
	if configPath == "" {
		var err error
		if configPath, err = config.DefaultConfigPath(); err != nil {
			log.Fatalf("Failed to resolve config path: %v", err)
		}
	}

	res, err := config.LoadFromPath(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	cfg := res.Config
	log.Printf("Configuration loaded (panel title: %q, class: %q, drag: %s)",
		cfg.Panel.Title, cfg.Panel.Class, cfg.Input.DragButton)

	if cfg.XAuthority != "" {
		os.Setenv("XAUTHORITY", cfg.XAuthority)
	}

	level := new(slog.LevelVar)
	level.Set(daemon.LogLevel(cfg.LogLevel))
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	backend, err := platform.NewLinuxBackendFromDisplay(cfg.Display)
	if err != nil {
		log.Fatalf("Failed to connect to display: %v", err)
	}
	defer backend.Disconnect()

	tiling := &daemon.Tiling{}
	tiling.Update(cfg, backend.WMName)
	log.Printf("Window manager %q, tiling mode %s (active: %v)", tiling.WM(), cfg.TilingMode, tiling.Active())

	host := platform.NewPanelHost(backend, tiling.Active)

	// Grab changes run off the input path; hide/restore callbacks can fire
	// from inside a button handler.
	plainClick := make(chan bool, 16)
	ctrl := panel.New(host, spring.TickerScheduler{}, daemon.PanelOptions(cfg), panel.Callbacks{
		OnDragStateChanged: func(hovering bool) {
			logger.Debug("drag state changed", "hovering", hovering)
		},
		OnEdgeHiddenChanged: func(hidden bool) {
			logger.Info("edge hidden changed", "hidden", hidden)
			plainClick <- hidden
		},
	}, logger)
	defer ctrl.Close()

	requester := accent.NewRequester(func(hex string) {
		if err := ctrl.SetAccent(hex); err != nil {
			logger.Warn("failed to publish accent", "color", hex, "error", err)
		}
	}, daemon.AccentOptions(cfg), logger)

	// Hotkeys first: the handler sets the ignored lock modifiers that the
	// pointer grabs below rely on too.
	hotkeyHandler := hotkeys.NewHandler(backend, ctrl)
	if err := hotkeyHandler.Register(cfg.Hotkeys); err != nil {
		log.Printf("Warning: Failed to register hotkeys: %v", err)
	} else {
		log.Printf("Hotkeys registered (snap: %s, toggle hide: %s)", cfg.Hotkeys.Snap, cfg.Hotkeys.ToggleHide)
	}

	var scrollStep atomic.Value
	scrollStep.Store(cfg.Input.ScrollStep)
	phaser := input.NewScrollPhaser(daemon.ScrollEndDelay(cfg), ctrl.HandleEvent)

	pointer := x11.NewPointerBindings(backend.Connection(), x11.PointerHandlers{
		Press: func(x, y int) bool {
			return ctrl.HandleEvent(pointerEvent(input.KindPointerDown, x, y)) == input.Consumed
		},
		Motion: func(x, y int) {
			ctrl.HandleEvent(pointerEvent(input.KindPointerDrag, x, y))
		},
		Release: func(x, y int) {
			ctrl.HandleEvent(pointerEvent(input.KindPointerUp, x, y))
		},
		Scroll: func(x, y int, button xproto.Button) bool {
			delta := notchDelta(button, scrollStep.Load().(float64))
			return phaser.Notch(point(x, y), delta, time.Now()) == input.Consumed
		},
	})
	if err := pointer.Configure(cfg.Input.DragButton, cfg.Input.ScrollModifier, cfg.Input.ScrollDrag); err != nil {
		log.Fatalf("Failed to configure pointer bindings: %v", err)
	}
	defer pointer.Detach()

	go func() {
		for hidden := range plainClick {
			if err := pointer.SetPlainClick(hidden); err != nil {
				logger.Warn("failed to update restore click grab", "error", err)
			}
		}
	}()

	reconciler := daemon.NewReconciler(daemon.ReconcilerConfig{
		Interval: daemon.TrackInterval(cfg),
		Matcher:  daemon.Matcher(cfg),
		Logger:   logger,
	}, backend, host, ctrl, func(id platform.WindowID) {
		phaser.Flush()
		if err := pointer.SetWindow(xproto.Window(id)); err != nil {
			logger.Warn("failed to grab panel window", "window_id", id, "error", err)
		}
	})
	reconciler.ReconcileNow()
	if host.Window() == 0 {
		log.Printf("Panel window not found yet (title %q, class %q); waiting", cfg.Panel.Title, cfg.Panel.Class)
	}

	reloadChan := make(chan struct{}, 1)
	ipcServer, err := ipc.NewServer(cfg, configPath, ctrl, ipc.Hooks{
		Window:       func() uint32 { return uint32(host.Window()) },
		TilingActive: tiling.Active,
		Monitors: func() ([]ipc.MonitorInfo, error) {
			return monitorInfos(backend)
		},
		AccentFromImage: func(path string) uint64 {
			return requester.Request(func() (image.Image, error) {
				return accent.LoadFile(path)
			})
		},
	}, reloadChan)
	if err != nil {
		log.Fatalf("Failed to create IPC server: %v", err)
	}
	if err := ipcServer.Start(); err != nil {
		log.Fatalf("Failed to start IPC server: %v", err)
	}
	defer ipcServer.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go reconciler.Run(ctx)

	fileChanged := make(chan struct{}, 1)
	if cfg.WatchConfig {
		err := config.Watch(ctx, configPath, config.DefaultWatchDebounce, func() {
			select {
			case fileChanged <- struct{}{}:
			default:
			}
		})
		if err != nil {
			log.Printf("Warning: config auto-reload disabled: %v", err)
		}
	}

	apply := func(newCfg *config.Config) {
		level.Set(daemon.LogLevel(newCfg.LogLevel))
		ctrl.SetOptions(daemon.PanelOptions(newCfg))
		requester.SetOptions(daemon.AccentOptions(newCfg))
		phaser.SetDelay(daemon.ScrollEndDelay(newCfg))
		scrollStep.Store(newCfg.Input.ScrollStep)
		tiling.Update(newCfg, backend.WMName)
		reconciler.SetMatcher(daemon.Matcher(newCfg))
		if err := pointer.Configure(newCfg.Input.DragButton, newCfg.Input.ScrollModifier, newCfg.Input.ScrollDrag); err != nil {
			log.Printf("Warning: Failed to rebind pointer: %v", err)
		}
		if err := hotkeyHandler.Register(newCfg.Hotkeys); err != nil {
			log.Printf("Warning: Failed to register hotkeys: %v", err)
		}
		if newCfg.Display != cfg.Display || newCfg.XAuthority != cfg.XAuthority {
			log.Println("Display settings changed; restart the daemon to apply them")
		}
		log.Println("Config reloaded successfully")
	}
	reloadFile := func() {
		res, err := config.LoadFromPath(configPath)
		if err != nil {
			log.Printf("Config reload failed: %v", err)
			return
		}
		ipcServer.UpdateConfig(res.Config)
		apply(res.Config)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)

	go func() {
		for {
			select {
			case sig := <-sigCh:
				switch sig {
				case syscall.SIGHUP:
					log.Println("Received SIGHUP, reloading config...")
					reloadFile()

				case os.Interrupt, syscall.SIGTERM:
					log.Println("Shutting down flickpanel daemon...")
					cancel()
					ipcServer.Stop()
					ctrl.Close()
					pointer.Detach()
					os.Exit(0)
				}

			case <-fileChanged:
				log.Println("Config file changed, reloading...")
				reloadFile()

			case <-reloadChan:
				// Already loaded and validated by the IPC server.
				apply(ipcServer.GetConfig())
			}
		}
	}()

	log.Println("flickpanel daemon started; entering event loop")
	backend.EventLoop()
	return 0
}

func point(x, y int) geom.Point {
	return geom.Point{X: float64(x), Y: float64(y)}
}

func pointerEvent(kind input.Kind, x, y int) input.Event {
	return input.Event{Kind: kind, Location: point(x, y), Time: time.Now()}
}

// notchDelta maps a core wheel button to a drag of step pixels: 4/5 are
// up/down, 6/7 left/right.
func notchDelta(button xproto.Button, step float64) geom.Vec {
	switch button {
	case 4:
		return geom.Vec{Y: -step}
	case 5:
		return geom.Vec{Y: step}
	case 6:
		return geom.Vec{X: -step}
	case 7:
		return geom.Vec{X: step}
	default:
		return geom.Vec{}
	}
}

func monitorInfos(backend platform.Backend) ([]ipc.MonitorInfo, error) {
	displays, err := backend.Displays()
	if err != nil {
		return nil, err
	}
	out := make([]ipc.MonitorInfo, len(displays))
	for i, d := range displays {
		out[i] = ipc.MonitorInfo{
			ID:     d.ID,
			Name:   d.Name,
			Bounds: rectToGeom(d.Bounds),
			Usable: rectToGeom(d.Usable),
		}
	}
	return out, nil
}

func rectToGeom(r platform.Rect) geom.Rect {
	return geom.Rect{X: float64(r.X), Y: float64(r.Y), Width: float64(r.Width), Height: float64(r.Height)}
}
