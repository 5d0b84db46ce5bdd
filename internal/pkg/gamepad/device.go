package gamepad

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gethiox/padmacro/internal/pkg/logger"
	"github.com/holoplot/go-evdev"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

// Device is an opened gamepad event handler.
type Device struct {
	Info DeviceInfo
	dev  *evdev.InputDevice
}

// Open opens the event handler of given gamepad.
func Open(info DeviceInfo) (*Device, error) {
	path := info.EventPath()
	if path == "" {
		return nil, fmt.Errorf("device \"%s\" has no event handler", info.Name)
	}

	dev, err := evdev.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening handler failed: %w", err)
	}

	if !hasTypes(dev.CapableTypes(), evdev.EV_KEY, evdev.EV_ABS) {
		_ = dev.Close()
		return nil, fmt.Errorf("device \"%s\" does not report buttons and axes", info.Name)
	}

	return &Device{Info: info, dev: dev}, nil
}

func hasTypes(list []evdev.EvType, elem ...evdev.EvType) bool {
outer:
	for _, e := range elem {
		for _, l := range list {
			if l == e {
				continue outer
			}
		}
		return false
	}
	return true
}

func (d *Device) logFields(fields ...zap.Field) []zap.Field {
	return append(fields, zap.String("handler_event", d.Info.Event()), zap.String("device_name", d.Info.Name))
}

// ReadEvents translates gamepad input until the device fails or ctx is done.
// The device is closed once ctx is done, callers cancel it when the returned
// channel gets closed.
func (d *Device) ReadEvents(ctx context.Context, grab bool) (<-chan Event, error) {
	absInfos, err := d.dev.AbsInfos()
	if err != nil {
		_ = d.dev.Close()
		return nil, fmt.Errorf("reading absinfo failed: %w", err)
	}
	translator := NewTranslator(absInfos)

	var events = make(chan Event, 64)

	go func() {
		<-ctx.Done()
		err := d.dev.Close()
		if err != nil {
			log.Info(fmt.Sprintf("device close failed: %v", err), d.logFields(logger.Warning)...)
		}
	}()

	go func() {
		defer close(events)

		name, _ := d.dev.Name()
		name = strings.Trim(name, "\x00")

		if grab {
			_ = d.dev.Grab()
			log.Info("Grabbing device for exclusive usage", d.logFields(zap.String("handler_name", name), logger.Debug)...)
		}
		log.Info("Reading input events", d.logFields(zap.String("handler_name", name), logger.Debug)...)

		for {
			ev, err := d.dev.ReadOne()
			if err != nil {
				break
			}

			for _, out := range translator.Translate(*ev, time.Now()) {
				select {
				case events <- out:
				case <-ctx.Done():
					return
				}
			}
		}

		if grab {
			_ = d.dev.Ungrab()
		}
		log.Info("Reading input events finished", d.logFields(zap.String("handler_name", name), logger.Debug)...)
	}()

	return events, nil
}
