package rdc

import (
	"crypto/sha1" //nolint:gosec // mandated by the card protocol, not used for new designs
	"encoding/binary"
	"regexp"
	"strings"
)

var cardNumberPattern = regexp.MustCompile(`^[A-Z]{2}[0-9]{8}[A-Z]{2}$`)

// CardNumber is a validated 12-character Residence Card / Special
// Permanent Resident Certificate card number, normalized to the card's
// canonical upper-case form.
type CardNumber string

// ParseCardNumber trims whitespace, upper-cases, and validates raw against
// the card number shape `^[A-Z]{2}[0-9]{8}[A-Z]{2}$`.
// Lowercase input is normalized, not rejected; any other deviation from the
// 12-character shape is an *InvalidCardNumberError.
func ParseCardNumber(raw string) (CardNumber, error) {
	trimmed := strings.ToUpper(strings.TrimSpace(raw))
	if len(trimmed) != 12 {
		return "", &InvalidCardNumberError{Kind: InvalidCardNumberLength, Value: raw}
	}
	if !cardNumberPattern.MatchString(trimmed) {
		return "", &InvalidCardNumberError{Kind: InvalidCardNumberFormat, Value: raw}
	}
	return CardNumber(trimmed), nil
}

// StaticKeys holds the card-number-derived K.Enc/K.Mac pair.
// Both are 16 bytes; this implementation reproduces the reference's
// derivation where K.Enc == K.Mac byte-for-byte — flagged as an Open
// Question for security review in DESIGN.md, not something an implementer
// should "fix" unilaterally since it would break interoperability with
// real cards.
type StaticKeys struct {
	KEnc [16]byte
	KMac [16]byte
}

// Zero overwrites both keys with zeroes.
func (k *StaticKeys) Zero() {
	for i := range k.KEnc {
		k.KEnc[i] = 0
		k.KMac[i] = 0
	}
}

// deriveStaticKeys computes K.Enc = K.Mac = the first 16 bytes of
// SHA-1(ASCII card number).
func deriveStaticKeys(cardNumber CardNumber) StaticKeys {
	digest := sha1.Sum([]byte(cardNumber)) //nolint:gosec // protocol-mandated KDF, see doc comment above
	var keys StaticKeys
	copy(keys.KEnc[:], digest[:16])
	copy(keys.KMac[:], digest[:16])
	return keys
}

// deriveSessionKey computes the 16-byte SM session key from K.IFD and
// K.ICC: XOR the two 16-byte keys, append the big-endian counter
// 0x00000001, SHA-1 the 20-byte input, and keep the first 16 bytes. XOR is
// commutative, so deriveSessionKey(a, b) == deriveSessionKey(b, a).
func deriveSessionKey(kIFD, kICC [16]byte) [16]byte {
	var xored [16]byte
	for i := range xored {
		xored[i] = kIFD[i] ^ kICC[i]
	}

	input := make([]byte, 20)
	copy(input, xored[:])
	binary.BigEndian.PutUint32(input[16:], 1)

	digest := sha1.Sum(input) //nolint:gosec // protocol-mandated KDF, see StaticKeys doc comment
	var sessionKey [16]byte
	copy(sessionKey[:], digest[:16])
	return sessionKey
}
