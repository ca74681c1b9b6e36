// Package pcsc adapts a PC/SC smart-card reader to rdc.CommandExecutor.
package pcsc

import (
	"fmt"

	"github.com/ebfe/scard"
	"github.com/dadachi/readmynumber-plus-sub000/pkg/rdc"
)

var _ rdc.CommandExecutor = (*Connection)(nil)

// Connection wraps a PC/SC card connection and implements rdc.CommandExecutor.
type Connection struct {
	ctx       *scard.Context
	card      *scard.Card
	reader    string
	readerIdx int
}

// Connect establishes a PC/SC context and connects to the reader at
// readerIndex (0-based, per scard.Context.ListReaders order). Returns
// rdc.ErrNfcNotAvailable when no reader is present.
func Connect(readerIndex int) (*Connection, error) {
	ctx, err := scard.EstablishContext()
	if err != nil {
		return nil, fmt.Errorf("pcsc: EstablishContext: %w", err)
	}

	readers, err := ctx.ListReaders()
	if err != nil || len(readers) == 0 {
		ctx.Release()
		return nil, rdc.ErrNfcNotAvailable
	}
	if readerIndex < 0 || readerIndex >= len(readers) {
		ctx.Release()
		return nil, fmt.Errorf("pcsc: reader index out of range (0..%d)", len(readers)-1)
	}

	reader := readers[readerIndex]
	card, err := ctx.Connect(reader, scard.ShareShared, scard.ProtocolAny)
	if err != nil {
		ctx.Release()
		return nil, fmt.Errorf("pcsc: connect to %q: %w", reader, err)
	}

	return &Connection{ctx: ctx, card: card, reader: reader, readerIdx: readerIndex}, nil
}

// Close disconnects the card and releases the PC/SC context.
func (c *Connection) Close() {
	if c == nil {
		return
	}
	if c.card != nil {
		_ = c.card.Disconnect(scard.LeaveCard)
	}
	if c.ctx != nil {
		_ = c.ctx.Release()
	}
}

// Reader returns the PC/SC reader name this connection is bound to.
func (c *Connection) Reader() string {
	return c.reader
}

// Send implements rdc.CommandExecutor: it transmits apdu and splits the
// trailing two status bytes from the response data.
func (c *Connection) Send(apdu []byte) ([]byte, byte, byte, error) {
	if c == nil || c.card == nil {
		return nil, 0, 0, fmt.Errorf("pcsc: connection not established")
	}
	resp, err := c.card.Transmit(apdu)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("pcsc: transmit: %w", err)
	}
	if len(resp) < 2 {
		return nil, 0, 0, fmt.Errorf("pcsc: short response: %d bytes", len(resp))
	}
	sw1, sw2 := resp[len(resp)-2], resp[len(resp)-1]
	return resp[:len(resp)-2], sw1, sw2, nil
}
