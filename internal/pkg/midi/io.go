package midi

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/gethiox/padmacro/internal/pkg/logger"
)

const sndDir = "/dev/snd"

// DetectDevices lists ALSA rawmidi device nodes.
func DetectDevices() ([]IODevice, error) {
	fd, err := os.Open(sndDir)
	if err != nil {
		return nil, fmt.Errorf("opening %s failed: %w", sndDir, err)
	}
	defer fd.Close()

	entries, err := fd.ReadDir(0)
	if err != nil {
		return nil, fmt.Errorf("listing %s failed: %w", sndDir, err)
	}

	var devices = make([]IODevice, 0)

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		if strings.HasPrefix(entry.Name(), "midi") {
			devices = append(devices, IODevice{path: fmt.Sprintf("%s/%s", sndDir, entry.Name())})
		}
	}

	return devices, nil
}

type IODevice struct {
	path string
}

func (d *IODevice) Path() string {
	return d.path
}

func (d *IODevice) Open() (*os.File, error) {
	return os.OpenFile(d.path, os.O_RDONLY, 0)
}

// ReadEvents decodes a raw MIDI byte stream until the reader fails or ctx is done.
// Events are stamped with the time their last byte arrived. The returned
// channel is closed on exit.
func ReadEvents(ctx context.Context, r io.Reader) <-chan Event {
	var events = make(chan Event, 32)

	go func() {
		defer close(events)
		var parser Parser
		reader := bufio.NewReader(r)
		for {
			b, err := reader.ReadByte()
			if err != nil {
				if !errors.Is(err, io.EOF) && !errors.Is(err, os.ErrClosed) {
					log.Info(fmt.Sprintf("reading midi stream failed: %v", err), logger.Warning)
				}
				return
			}

			msg, ok := parser.Feed(b)
			if !ok {
				continue
			}

			ev, ok := Decode(msg, time.Now())
			if !ok {
				continue
			}

			select {
			case events <- ev:
			case <-ctx.Done():
				return
			}
		}
	}()

	return events
}
