package engine

import (
	"context"
	"sync"
	"time"

	"github.com/gethiox/padmacro/internal/pkg/event"
	"github.com/gethiox/padmacro/internal/pkg/gamepad"
	"github.com/gethiox/padmacro/internal/pkg/gesture"
	"github.com/gethiox/padmacro/internal/pkg/logger"
	"github.com/gethiox/padmacro/internal/pkg/midi"
	"github.com/gethiox/padmacro/internal/pkg/normalize"
	"go.uber.org/zap"
)

// Device is the input session of one connected controller. Gesture detection
// state belongs to the device, mappings and the active mode are shared through
// the engine. Close the device once its input stream ends.
type Device struct {
	engine  *Engine
	name    string
	session *gesture.Session
}

// NewDevice opens an input session for a controller, detector tunables follow
// config reloads of the engine.
func (e *Engine) NewDevice(name string) *Device {
	d := &Device{
		engine:  e,
		name:    name,
		session: gesture.NewSession(e.session.Config(), e.log.With(zap.String("device_name", name))),
	}

	e.devicesMutex.Lock()
	e.devices[d] = struct{}{}
	e.devicesMutex.Unlock()

	e.log.Info("device session opened", zap.String("device_name", name), zap.String("session", d.SessionID()), logger.Debug)
	return d
}

// Devices returns the number of open device sessions.
func (e *Engine) Devices() int {
	e.devicesMutex.Lock()
	defer e.devicesMutex.Unlock()
	return len(e.devices)
}

func (d *Device) Name() string {
	return d.name
}

func (d *Device) SessionID() string {
	return d.session.ID().String()
}

func (d *Device) Handle(in event.Input) []Match {
	return d.engine.handle(d.session, in)
}

func (d *Device) HandleMidi(ev midi.Event) []Match {
	return d.engine.handle(d.session, normalize.Normalize(ev))
}

func (d *Device) HandleGamepad(ev gamepad.Event) []Match {
	return d.engine.handleGamepad(d.session, ev)
}

func (d *Device) HandleHolds(now time.Time) []Match {
	return d.engine.handleHolds(d.session, now)
}

// RunHoldPoller polls holds of this device until ctx is done. Caller is responsible for wg.Add.
func (d *Device) RunHoldPoller(ctx context.Context, wg *sync.WaitGroup, interval time.Duration, sink func([]Match)) {
	d.engine.runHoldPoller(ctx, wg, d.session, interval, sink)
}

// Close forgets pressed and held controls of the device and detaches it from
// config reloads. Holds of a closed device are never reported again.
func (d *Device) Close() {
	d.session.Reset()

	d.engine.devicesMutex.Lock()
	delete(d.engine.devices, d)
	d.engine.devicesMutex.Unlock()

	d.engine.log.Info("device session closed", zap.String("device_name", d.name), zap.String("session", d.SessionID()), logger.Debug)
}
