package main

import (
	"encoding/json"
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
	"time"

	"github.com/gethiox/padmacro/internal/pkg/logger"
	"github.com/logrusorgru/aurora"
)

type TimeNanosecond time.Time

func (j *TimeNanosecond) UnmarshalJSON(b []byte) error {
	v, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return err
	}
	*j = TimeNanosecond(time.Unix(0, v))
	return nil
}

// Entry is a single log message as encoded by the logger package.
type Entry struct {
	Ts     TimeNanosecond `json:"ts"`
	Caller string         `json:"caller"`
	Msg    string         `json:"msg"`
	Level  int            `json:"level"`

	Device       string `json:"device_name"`
	HandlerEvent string `json:"handler_event"`
	Session      string `json:"session"`
	Trigger      string `json:"trigger"`
	Mode         *int   `json:"mode"`
}

func unpack(data []byte) (Entry, error) {
	var v Entry
	err := json.Unmarshal(data, &v)
	return v, err
}

func gray(v uint8) aurora.Color {
	if v > 23 {
		v = 23
	}
	return aurora.Color(232+v) << 16
}

// r, g, b 0<=v<=5
func color(r, g, b uint8) aurora.Color {
	return aurora.Color(16+36*r+6*g+b) << 16
}

// colorForString returns the same color for the same string.
func colorForString(au aurora.Aurora, s string) aurora.Value {
	h := fnv.New32a()
	h.Write([]byte(s))
	sum := h.Sum32()

	r, g, b := uint8(sum)%6, uint8(sum>>8)%6, uint8(sum>>16)%6

	// avoid dark colors
	if r+g+b < 3 {
		r, g, b = r+1, g+1, b+1
	}

	return au.Index(16+36*r+6*g+b, s)
}

func terminator(r rune) bool {
	return r >= 0x40 && r <= 0x7e
}

// rawStringLen returns a len of string ignoring included CSI escape sequences,
// unterminated sequences are counted.
func rawStringLen(s string) int {
	var length, pending int
	var sequence bool

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case sequence:
			pending++
			if terminator(rune(c)) {
				sequence = false
				pending = 0
			}
		case c == '\033' && i+1 < len(s) && s[i+1] == '[':
			sequence = true
			pending = 2
			i++
		default:
			length++
		}
	}
	return length + pending
}

func levelColor(level int) aurora.Color {
	switch level {
	case logger.ErrorLvl:
		return color(5, 1, 1)
	case logger.WarningLvl:
		return color(5, 5, 1)
	case logger.InfoLvl, logger.ActionLvl:
		return gray(18)
	case logger.GestureLvl:
		return gray(15)
	case logger.UnmappedLvl:
		return gray(13)
	case logger.AnalogLvl:
		return gray(11)
	default:
		return gray(9)
	}
}

// prepareString formats an entry for the console, empty string means the
// entry is above given log level.
func prepareString(msg Entry, au aurora.Aurora, logLevel int) string {
	if msg.Level > logLevel {
		return ""
	}

	timestamp := fmt.Sprintf(
		"[%s]",
		au.Reset(time.Time(msg.Ts).Format("15:04:05.000")).Colorize(color(1, 1, 5)).String(),
	)

	var fields []string
	if msg.Mode != nil {
		fields = append(fields, fmt.Sprintf("[mode=%d]", *msg.Mode))
	}
	if msg.Trigger != "" {
		fields = append(fields, fmt.Sprintf("[%s]", colorForString(au, msg.Trigger)))
	}
	if msg.HandlerEvent != "" {
		fields = append(fields, fmt.Sprintf("[%s]", colorForString(au, msg.HandlerEvent)))
	}
	if msg.Device != "" {
		fields = append(fields, fmt.Sprintf("[dev=%s]", colorForString(au, msg.Device)))
	}
	if msg.Session != "" && logLevel >= logger.DebugLvl {
		fields = append(fields, fmt.Sprintf("[session=%s]", colorForString(au, msg.Session)))
	}
	if msg.Caller != "" && logLevel >= logger.DebugLvl {
		x := strings.SplitN(msg.Caller, ":", 2)
		if len(x) == 2 {
			fields = append(fields, fmt.Sprintf("(%s:%s)", colorForString(au, x[0]), x[1]))
		}
	}

	m := au.Reset(msg.Msg).Colorize(levelColor(msg.Level)).String()
	if len(fields) == 0 {
		return fmt.Sprintf("%s %s", timestamp, m)
	}
	return fmt.Sprintf("%s %s %s", timestamp, m, strings.Join(fields, " "))
}

// printLogs writes log entries to stdout until logger.Messages is closed.
func printLogs(au aurora.Aurora, logLevel int, silent bool, done chan<- struct{}) {
	defer close(done)
	for data := range logger.Messages {
		if silent {
			continue
		}
		msg, err := unpack(data)
		if err != nil {
			fmt.Printf("%s\n", string(data))
			continue
		}
		if s := prepareString(msg, au, logLevel); s != "" {
			fmt.Printf("%s\n", s)
		}
	}
}
