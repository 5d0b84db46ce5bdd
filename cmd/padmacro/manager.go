package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gethiox/padmacro/internal/pkg/config"
	"github.com/gethiox/padmacro/internal/pkg/engine"
	"github.com/gethiox/padmacro/internal/pkg/logger"
	"github.com/gethiox/padmacro/internal/pkg/metrics"
	"go.uber.org/zap"
)

// runManager is the main program process, before returning it ensures that
// all spawned goroutines are done.
func runManager(ctx context.Context, settings Settings, collector *metrics.Collector) error {
	cfg, err := config.Load(settings.Mapping)
	if err != nil {
		return err
	}

	eng := engine.New(cfg, engine.WithLogger(log), engine.WithMetrics(collector))
	exec := newExecutor(eng)
	log.Info(fmt.Sprintf("mapping loaded: %s", settings.Mapping),
		zap.String("session", eng.SessionID()),
		zap.Int("mode", eng.Mode()),
		logger.Info,
	)

	changes, err := config.DetectConfigChanges(ctx, settings.Mapping)
	if err != nil {
		log.Info(fmt.Sprintf("config monitoring disabled: %v", err), logger.Warning)
	}

	wg := sync.WaitGroup{}

	wg.Add(1)
	go reloadOnChange(ctx, &wg, settings.Mapping, changes, eng)

	detect := func() []source {
		return detectSources(eng.Config().Device, settings.Grab)
	}

	devices := newTracker()

	log.Info("Run manager", logger.Debug)
	for src := range monitorNewDevices(ctx, settings.DiscoveryRate, devices, detect) {
		wg.Add(1)
		go serve(ctx, &wg, src, eng, exec, devices, settings.HoldPollRate)
	}

	wg.Wait()
	log.Info("Exit manager", logger.Debug)
	return nil
}

// serve runs one device in its own input session with its own hold poller,
// the session is closed when the device stops delivering input. The device is
// dropped from devices afterwards, so discovery retries it while it is present.
func serve(ctx context.Context, wg *sync.WaitGroup, src source, eng *engine.Engine, exec *executor, devices *tracker, holdPollRate time.Duration) {
	defer wg.Done()
	defer devices.forget(src.Path())

	dev := eng.NewDevice(src.Name())
	defer dev.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	fields := []zap.Field{
		zap.String("device_name", src.Name()),
		zap.String("handler_event", src.Path()),
		zap.String("session", dev.SessionID()),
	}

	wg.Add(1)
	go dev.RunHoldPoller(ctx, wg, holdPollRate, exec.run)

	log.Info("Device connected", append(fields, logger.Info)...)
	err := src.Serve(ctx, dev, exec)
	if err != nil {
		log.Info(fmt.Sprintf("device failed: %v", err), append(fields, logger.Warning)...)
		return
	}
	log.Info("Device disconnected", append(fields, logger.Info)...)
}

// reloadOnChange swaps engine mappings whenever the mapping file changes.
// A config which fails to load leaves the previous mappings active.
func reloadOnChange(ctx context.Context, wg *sync.WaitGroup, path string, changes <-chan bool, eng *engine.Engine) {
	defer wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-changes:
			if !ok {
				return
			}
			cfg, err := config.Load(path)
			if err != nil {
				log.Info(fmt.Sprintf("config reload failed, previous mappings stay active: %v", err), logger.Warning)
				continue
			}
			warnings := eng.LoadConfig(cfg)
			log.Info(fmt.Sprintf("mapping reloaded with %d warnings", len(warnings)), zap.Int("mode", eng.Mode()), logger.Info)
		}
	}
}
