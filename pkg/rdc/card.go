package rdc

import "fmt"

// CommandExecutor abstracts the single operation the core needs from a
// transport: send one APDU, get back the response data and the two status
// bytes. Implementations exist for a real PC/SC reader (internal/pcsc) and
// for in-memory simulators used by tests; the core never depends on either
// concretely.
type CommandExecutor interface {
	Send(apdu []byte) (data []byte, sw1 byte, sw2 byte, err error)
}

// APDU is the CLA, INS, P1, P2, command data, and expected response length
// that make up one command. Build encodes it into a wire APDU: Le ==
// ExtendedLe is sent as the two bytes 00 00, any other positive Le as a
// single byte (so 256 becomes 0x00), and Le == 0 sends no Le byte.
type APDU struct {
	CLA  byte
	INS  byte
	P1   byte
	P2   byte
	Data []byte
	Le   int // 0 = no Le byte; use ExtendedLe for 65536
}

// ExtendedLe requests "as much data as the card has" via the two-zero-byte
// extended-length encoding used by READ BINARY in this protocol.
const ExtendedLe = 65536

// Build assembles the wire bytes for a.
func (a APDU) Build() []byte {
	buf := make([]byte, 0, 4+1+len(a.Data)+2)
	buf = append(buf, a.CLA, a.INS, a.P1, a.P2)
	if len(a.Data) > 0 {
		buf = append(buf, byte(len(a.Data)))
		buf = append(buf, a.Data...)
	}
	switch {
	case a.Le == ExtendedLe:
		buf = append(buf, 0x00, 0x00)
	case a.Le > 0:
		buf = append(buf, byte(a.Le))
	}
	return buf
}

// transmit sends apdu through executor and folds SW1/SW2 into a single
// status word, raising *CardError when it is not 0x9000.
func transmit(executor CommandExecutor, apdu APDU) ([]byte, error) {
	data, sw1, sw2, err := executor.Send(apdu.Build())
	if err != nil {
		return nil, fmt.Errorf("transmit 0x%02X: %w", apdu.INS, err)
	}
	if err := checkSW(apdu.INS, sw1, sw2); err != nil {
		return nil, err
	}
	return data, nil
}

// checkSW succeeds only on SW=0x9000; any other status word is surfaced as
// a *CardError carrying the exact SW pair for diagnostics.
func checkSW(cmd, sw1, sw2 byte) error {
	if sw1 == 0x90 && sw2 == 0x00 {
		return nil
	}
	return &CardError{Cmd: cmd, SW1: sw1, SW2: sw2}
}
