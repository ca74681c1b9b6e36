package rdc

import "fmt"

// smLeDO is the fixed Le data object `96 02 00 00` sent with every READ
// BINARY under SM: a request for "as much data as the card has".
var smLeDO = []byte{0x96, 0x02, 0x00, 0x00}

// smTag is the BER-TLV tag wrapping every SM READ BINARY response.
const smTag = 0x86

// smChunkThreshold is how close a returned SM payload must be to the
// maximum response length before the reader assumes the file continues in
// a further chunk. "Within 100 bytes of the maximum response length" is
// kept as-is rather than characterized against real cards.
const smChunkThreshold = 100

// smMaxResponse is the largest response body this protocol's extended-Le
// READ BINARY can return in one APDU.
const smMaxResponse = 65536

// ReadBinarySM reads file p1 (with parameter p2) under Secure Messaging
// using sess's session key, transparently chunking the read when the file
// is larger than fits in one APDU response window.
func ReadBinarySM(executor CommandExecutor, sess *Session, p1, p2 byte) ([]byte, error) {
	sessionKey, err := sess.Key()
	if err != nil {
		return nil, err
	}

	var ciphertext []byte
	curP1, curP2 := p1, p2
	first := true

	for {
		chunk, err := readSMChunk(executor, curP1, curP2)
		if err != nil {
			return nil, err
		}
		if !first && len(chunk) == 0 {
			break
		}
		first = false
		ciphertext = append(ciphertext, chunk...)

		if len(chunk) < smMaxResponse-smChunkThreshold {
			break
		}

		offset := len(ciphertext)
		shortEF := curP1 & 0x80
		curP1 = shortEF | byte(offset>>8&0x7F)
		curP2 = byte(offset & 0xFF)
	}

	plain, err := tdes(ciphertext, sessionKey[:], OpDecrypt)
	if err != nil {
		return nil, err
	}
	return unpadISO7816_4(plain)
}

// readSMChunk sends one SM READ BINARY command and extracts the raw
// padding-indicator-prefixed ciphertext from the tag-0x86 TLV response.
func readSMChunk(executor CommandExecutor, p1, p2 byte) ([]byte, error) {
	resp, err := transmit(executor, APDU{CLA: 0x08, INS: 0xB0, P1: p1, P2: p2, Data: smLeDO, Le: ExtendedLe})
	if err != nil {
		return nil, err
	}

	value, ok := findTag(resp, smTag)
	if !ok {
		return nil, &InvalidResponseError{Reason: "SM response missing tag 0x86"}
	}
	if len(value) == 0 {
		return nil, nil
	}
	if value[0] != 0x01 {
		return nil, &InvalidResponseError{Reason: fmt.Sprintf("SM response padding indicator 0x%02X, want 0x01", value[0])}
	}
	return value[1:], nil
}
