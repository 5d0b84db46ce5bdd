package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/gethiox/padmacro/internal/pkg/logger"
	"github.com/gethiox/padmacro/internal/pkg/metrics"
	"github.com/logrusorgru/aurora"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	profile  = flag.Bool("profile", false, "expose pprof handlers on the metrics server")
	grab     = flag.Bool("grab", false, "grab gamepads for exclusive usage, overrides settings file")
	force256 = flag.Bool("256", false, "force 256 color mode")
	nocolor  = flag.Bool("nocolor", false, "disable color")
	logLevel = flag.Int("loglevel", 2,
		"logging level, each level enables additional information class (0-4, default: 2)\n"+
			"\navailable options:\n"+
			"0: general info (eg. device appearance status)\n"+
			"1: actions (keystroke, mode_change etc.)\n"+
			"2: gestures (presses, releases, chords, holds)\n"+
			"3: inputs without any mapping in the active mode\n"+
			"4: analog events",
	)
	silent  = flag.Bool("silent", false, "no output logging")
	rootDir = flag.String("root", ".", "directory holding the padmacro-config tree")
)

func handleSigs(wg *sync.WaitGroup, sigs <-chan os.Signal, cancel func(), server *http.Server) {
	defer wg.Done()
	var counter int
	for sig := range sigs {
		if counter > 0 {
			fmt.Println("Dirty exit")
			os.Exit(1)
		}
		log.Info(fmt.Sprintf("signal received: %v", sig), logger.Debug)
		cancel()
		if server != nil {
			err := server.Close()
			if err != nil {
				log.Info(fmt.Sprintf("failed to close server: %v", err), logger.Warning)
			}
		}
		counter++
	}
}

func runMetricsServer(wg *sync.WaitGroup, addr string, registry *prometheus.Registry) *http.Server {
	if addr == "" {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))
	if *profile {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}

	server := &http.Server{Addr: addr, Handler: mux}
	log.Info(fmt.Sprintf("metrics hosted on %s", addr), logger.Info)

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Info(fmt.Sprintf("metrics server exited: %v", server.ListenAndServe()), logger.Debug)
	}()
	return server
}

func main() {
	flag.Parse()
	*logLevel += 2
	if *force256 {
		os.Setenv("TERM", "xterm-256color")
	}

	printerDone := make(chan struct{})
	go printLogs(aurora.NewAurora(!*nocolor), *logLevel, *silent, printerDone)

	exit := func(code int) {
		close(logger.Messages)
		<-printerDone
		os.Exit(code)
	}

	err := createConfigDirectoryIfNeeded(*rootDir)
	if err != nil {
		log.Info(fmt.Sprintf("config tree generation failed: %v", err), logger.Error)
		exit(1)
	}

	settings, err := LoadSettings(filepath.Join(*rootDir, configDir, settingsFile))
	if err != nil {
		log.Info(fmt.Sprintf("settings load failed: %v", err), logger.Error)
		exit(1)
	}
	if !filepath.IsAbs(settings.Mapping) {
		settings.Mapping = filepath.Join(*rootDir, settings.Mapping)
	}
	if *grab {
		settings.Grab = true
	}
	log.Info(fmt.Sprintf("settings: %+v", settings), logger.Debug)

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(metrics.WithRegistry(registry), metrics.WithDroppedLogs(logger.Dropped))

	var sigs = make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	ctx, cancel := context.WithCancel(context.Background())

	// this wait-group has to be propagated everywhere where usual logging appear
	wg := sync.WaitGroup{}

	server := runMetricsServer(&wg, settings.MetricsAddr, registry)

	wg.Add(1)
	go handleSigs(&wg, sigs, cancel, server)

	err = runManager(ctx, settings, collector)
	if err != nil {
		log.Info(fmt.Sprintf("manager failed: %v", err), logger.Error)
	}

	cancel()
	if server != nil {
		_ = server.Close()
	}
	signal.Stop(sigs)
	close(sigs)

	// closing logger can be safely invoked only when all internally running goroutines (that may emit logs) are done
	wg.Wait()
	if err != nil {
		exit(1)
	}
	exit(0)
}
