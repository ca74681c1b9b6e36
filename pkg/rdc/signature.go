package rdc

import (
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/hex"
	"math/big"
)

// checkCodeLength is the expected check-code length: a 2048-bit RSA
// signature.
const checkCodeLength = 256

// SignatureVerificationResult is the outcome of VerifySignature. Present on
// ResidenceCardData whenever VerifySignature returns a result, including a
// hash mismatch (IsValid false); nil when VerifySignature returns an error.
type SignatureVerificationResult struct {
	IsValid       bool
	EmbeddedHash  string
	ComputedHash  string
	Subject       string
	Issuer        string
	NotBefore     string
	NotAfter      string
}

// VerifySignature validates checkCode against the RSA public key embedded
// in the DER-encoded certificate, over SHA-256(frontImageTLV ||
// faceImageTLV). frontImageTLV and faceImageTLV must be the raw
// decrypted SM payloads exactly as returned by the card, before any image
// decoding.
func VerifySignature(checkCode, certificate, frontImageTLV, faceImageTLV []byte) (*SignatureVerificationResult, error) {
	if len(checkCode) == 0 {
		return nil, &SignatureVerificationError{Kind: MissingCheckCode}
	}
	if len(certificate) == 0 {
		return nil, &SignatureVerificationError{Kind: MissingCertificate}
	}
	if len(checkCode) != checkCodeLength {
		return nil, &SignatureVerificationError{Kind: InvalidCheckCodeLength}
	}
	if len(frontImageTLV) == 0 || len(faceImageTLV) == 0 {
		return nil, &SignatureVerificationError{Kind: MissingImageData}
	}

	cert, err := x509.ParseCertificate(certificate)
	if err != nil {
		return nil, &SignatureVerificationError{Kind: InvalidCertificate, Cause: err}
	}

	n, e, err := rsaPublicComponents(cert)
	if err != nil {
		return nil, &SignatureVerificationError{Kind: InvalidCertificate, Cause: err}
	}

	c := new(big.Int).SetBytes(checkCode)
	m := new(big.Int).Exp(c, e, n)
	decoded := leftPad(m.Bytes(), checkCodeLength)

	embeddedHash, err := extractPKCS1v15Hash(decoded)
	if err != nil {
		return nil, err
	}

	sum := sha256.Sum256(append(append([]byte{}, frontImageTLV...), faceImageTLV...))
	computedHash := sum[:]

	embeddedHex := hex.EncodeToString(embeddedHash)
	computedHex := hex.EncodeToString(computedHash)

	result := &SignatureVerificationResult{
		IsValid:      embeddedHex == computedHex,
		EmbeddedHash: embeddedHex,
		ComputedHash: computedHex,
		Subject:      cert.Subject.String(),
		Issuer:       cert.Issuer.String(),
		NotBefore:    cert.NotBefore.Format("2006-01-02T15:04:05Z07:00"),
		NotAfter:     cert.NotAfter.Format("2006-01-02T15:04:05Z07:00"),
	}
	return result, nil
}

// rsaPublicComponents extracts the modulus and exponent from cert's public
// key, requiring a 2048-bit (256-byte) modulus.
func rsaPublicComponents(cert *x509.Certificate) (*big.Int, *big.Int, error) {
	pub, ok := cert.PublicKey.(*rsa.PublicKey)
	if !ok {
		return nil, nil, &InvalidResponseError{Reason: "certificate does not carry an RSA public key"}
	}
	n := pub.N
	if (n.BitLen()+7)/8 != checkCodeLength {
		return nil, nil, &InvalidResponseError{Reason: "certificate RSA modulus is not 2048 bits"}
	}
	e := big.NewInt(int64(pub.E))
	return n, e, nil
}

// leftPad left-pads b with zero bytes to exactly n bytes.
func leftPad(b []byte, n int) []byte {
	if len(b) >= n {
		return b[len(b)-n:]
	}
	out := make([]byte, n)
	copy(out[n-len(b):], b)
	return out
}

// extractPKCS1v15Hash validates a PKCS#1 v1.5 type-01 padded block and
// returns the trailing 32 bytes as the embedded SHA-256 hash. The digest is
// located leniently, by its trailing 32 bytes, rather than by parsing a
// strict DigestInfo ASN.1 structure, matching how real cards encode it.
func extractPKCS1v15Hash(m []byte) ([]byte, error) {
	if len(m) < 11+32 || m[0] != 0x00 || m[1] != 0x01 {
		return nil, &SignatureVerificationError{Kind: InvalidPadding}
	}
	idx := 2
	for idx < len(m) && m[idx] == 0xFF {
		idx++
	}
	if idx == 2 || idx >= len(m) || m[idx] != 0x00 {
		return nil, &SignatureVerificationError{Kind: InvalidPadding}
	}
	digestInfo := m[idx+1:]
	if len(digestInfo) < 32 {
		return nil, &SignatureVerificationError{Kind: InvalidPadding}
	}
	return digestInfo[len(digestInfo)-32:], nil
}
