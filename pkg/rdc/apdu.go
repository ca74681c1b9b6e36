package rdc

// AID is a card application identifier used with SelectDF.
type AID []byte

// Application identifiers for the three data files this protocol reads.
// The literal byte values are defined by the card issuer and are recorded
// here as placeholders pending the issuer's published AID table — callers
// that talk to real cards must substitute the real AIDs.
var (
	AIDDF1 = AID{0xD3, 0x92, 0xF0, 0x00, 0x26, 0x01, 0x00, 0x00, 0x00, 0x01, 0x01, 0x01, 0x00}
	AIDDF2 = AID{0xD3, 0x92, 0x10, 0x00, 0x31, 0x00, 0x01, 0x01, 0x04, 0x08, 0x00, 0x00, 0x00, 0x00}
	AIDDF3 = AID{0xD3, 0x92, 0x10, 0x00, 0x31, 0x00, 0x01, 0x01, 0x04, 0x08, 0x00, 0x00, 0x00, 0x01}
)

// SelectMF selects the master file: 00 A4 00 00 02 3F 00.
func SelectMF(executor CommandExecutor) error {
	_, err := transmit(executor, APDU{CLA: 0x00, INS: 0xA4, P1: 0x00, P2: 0x00, Data: []byte{0x3F, 0x00}})
	return err
}

// SelectDF selects the dedicated file named by aid: 00 A4 04 0C Lc=len(aid)
// Data=aid. P2=0x0C demands no FCI response body.
func SelectDF(executor CommandExecutor, aid AID) error {
	_, err := transmit(executor, APDU{CLA: 0x00, INS: 0xA4, P1: 0x04, P2: 0x0C, Data: aid})
	return err
}

// ReadBinaryPlain issues a plaintext READ BINARY selecting file p1 with
// parameter p2 (default 0x00), requesting as much data as the card has via
// extended Le, and returns the data portion verbatim.
func ReadBinaryPlain(executor CommandExecutor, p1, p2 byte) ([]byte, error) {
	return transmit(executor, APDU{CLA: 0x00, INS: 0xB0, P1: p1, P2: p2, Le: ExtendedLe})
}
