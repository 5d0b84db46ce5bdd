package main

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gethiox/padmacro/internal/pkg/config"
	"github.com/gethiox/padmacro/internal/pkg/engine"
	"github.com/gethiox/padmacro/internal/pkg/gamepad"
	"github.com/gethiox/padmacro/internal/pkg/logger"
	"github.com/gethiox/padmacro/internal/pkg/midi"
	"go.uber.org/zap"
)

// source is a single input device handled by the engine.
type source interface {
	// Path identifies the device node, it is used to track device presence.
	Path() string
	Name() string
	// Serve feeds device input into dev until the device fails or ctx is done.
	Serve(ctx context.Context, dev *engine.Device, exec *executor) error
}

type midiSource struct {
	dev midi.IODevice
}

func (s midiSource) Path() string { return s.dev.Path() }
func (s midiSource) Name() string { return "midi " + s.dev.Path() }

func (s midiSource) Serve(ctx context.Context, dev *engine.Device, exec *executor) error {
	fd, err := s.dev.Open()
	if err != nil {
		return fmt.Errorf("opening midi port failed: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// unblocks pending read
	go func() {
		<-ctx.Done()
		_ = fd.Close()
	}()

	for ev := range midi.ReadEvents(ctx, fd) {
		exec.run(dev.HandleMidi(ev))
	}
	return nil
}

type gamepadSource struct {
	info gamepad.DeviceInfo
	grab bool
}

func (s gamepadSource) Path() string { return s.info.EventPath() }
func (s gamepadSource) Name() string { return s.info.Name }

func (s gamepadSource) Serve(ctx context.Context, dev *engine.Device, exec *executor) error {
	pad, err := gamepad.Open(s.info)
	if err != nil {
		return err
	}

	// closes the device once reading stops on its own
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events, err := pad.ReadEvents(ctx, s.grab)
	if err != nil {
		return err
	}

	for ev := range events {
		exec.run(dev.HandleGamepad(ev))
	}
	return nil
}

// detectSources lists devices allowed by the device section of the mapping config.
func detectSources(dev config.Device, grab bool) []source {
	var sources []source

	ports, err := midi.DetectDevices()
	if err != nil {
		log.Info(fmt.Sprintf("midi discovery failed: %v", err), logger.Debug)
	}
	for _, p := range ports {
		if dev.MidiPort != "" && p.Path() != dev.MidiPort {
			continue
		}
		sources = append(sources, midiSource{dev: p})
	}

	if !dev.Gamepad {
		return sources
	}

	infos, err := gamepad.DetectDevices()
	if err != nil {
		log.Info(fmt.Sprintf("gamepad discovery failed: %v", err), logger.Debug)
	}
	for _, info := range infos {
		if !info.IsGamepad() {
			continue
		}
		if dev.Name != "" && !strings.Contains(strings.ToLower(info.Name), strings.ToLower(dev.Name)) {
			continue
		}
		sources = append(sources, gamepadSource{info: info, grab: grab})
	}

	return sources
}

// tracker remembers present devices by path.
type tracker struct {
	mutex   sync.Mutex
	tracked map[string]source
}

func newTracker() *tracker {
	return &tracker{tracked: make(map[string]source)}
}

// forget drops a device, it is reported as added again on the next update
// if it is still present.
func (t *tracker) forget(path string) {
	t.mutex.Lock()
	delete(t.tracked, path)
	t.mutex.Unlock()
}

// update returns devices which appeared and disappeared since the last call.
func (t *tracker) update(current []source) (added, removed []source) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	present := make(map[string]bool, len(current))
	for _, s := range current {
		present[s.Path()] = true
		if _, ok := t.tracked[s.Path()]; !ok {
			t.tracked[s.Path()] = s
			added = append(added, s)
		}
	}

	for path, s := range t.tracked {
		if !present[path] {
			removed = append(removed, s)
			delete(t.tracked, path)
		}
	}
	sort.Slice(removed, func(i, j int) bool { return removed[i].Path() < removed[j].Path() })

	return added, removed
}

// monitorNewDevices polls for devices every rate and emits the ones which appeared.
// The returned channel is closed when ctx is done.
func monitorNewDevices(ctx context.Context, rate time.Duration, t *tracker, detect func() []source) <-chan source {
	var sources = make(chan source)

	go func() {
		defer close(sources)

		log.Info("Monitor new devices engaged", logger.Debug)
		for {
			added, removed := t.update(detect())

			for _, s := range removed {
				log.Info("Device disappeared", zap.String("device_name", s.Name()), zap.String("handler_event", s.Path()), logger.Debug)
			}
			for _, s := range added {
				select {
				case sources <- s:
				case <-ctx.Done():
					return
				}
			}

			select {
			case <-ctx.Done():
				log.Info("Monitor new devices disengaged", logger.Debug)
				return
			case <-time.After(rate):
			}
		}
	}()

	return sources
}
