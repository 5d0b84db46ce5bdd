package midi

// Parser splits a raw MIDI byte stream into complete channel messages.
// Running status is honored, realtime bytes are skipped without breaking
// a message in progress, system exclusive and system common data is dropped.
type Parser struct {
	status  byte
	data    [2]byte
	n       int
	inSysex bool
}

func dataLen(status byte) int {
	switch status & 0xF0 {
	case ProgramChangeStatus, ChannelPressureStatus:
		return 1
	default:
		return 2
	}
}

// Feed consumes one byte and returns a message once it is complete.
func (p *Parser) Feed(b byte) ([]byte, bool) {
	switch {
	case b >= 0xF8: // realtime
		return nil, false
	case b == 0xF0:
		p.inSysex = true
		p.status = 0
		return nil, false
	case b == 0xF7:
		p.inSysex = false
		return nil, false
	case b >= 0xF1: // system common, cancels running status
		p.inSysex = false
		p.status = 0
		p.n = 0
		return nil, false
	case b&0x80 != 0:
		p.inSysex = false
		p.status = b
		p.n = 0
		return nil, false
	}

	if p.inSysex || p.status == 0 {
		return nil, false
	}

	p.data[p.n] = b
	p.n++
	length := dataLen(p.status)
	if p.n < length {
		return nil, false
	}
	p.n = 0

	msg := make([]byte, 0, length+1)
	msg = append(msg, p.status)
	msg = append(msg, p.data[:length]...)
	return msg, true
}
