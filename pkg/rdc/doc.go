/*
Package rdc implements the contactless-reader core for Japanese Residence
Cards (RDC) and Special Permanent Resident Certificates: the mutual
authentication handshake, the ISO/IEC 7816-4 APDU and Secure Messaging (SM)
protocol, the top-level read flow, and the check-code signature verifier.

The package never touches a radio or PC/SC API directly. Every operation
that talks to a card goes through the narrow CommandExecutor interface
(one method: send an APDU, get back data plus SW1/SW2), so the whole
protocol can be driven against an in-memory simulator in tests and against
a real reader (see internal/pcsc) in production.

# Authentication

AuthenticateICC runs the GET CHALLENGE / MUTUAL AUTHENTICATE handshake
described in ISO/IEC 7816-4 Secure Messaging with the card-number-derived
static keys. On success it returns a *Session holding the 16-byte
session key; all later reads under DF1 (the image files) must use
ReadBinarySM with that session.

# File map

	MF (plaintext):       0x8B commonData, 0x8A cardType
	DF1 (SM only):        0x85 frontImage, 0x86 faceImage
	DF2 (plaintext):      0x81 address, 0x82/0x83/0x84 additionalData (residence cards only)
	DF3 (plaintext):      0x82 P2=0x01 -> signature TLV (0xDA checkCode, 0xDB certificate)

ReadCard runs the complete ordered flow over these files and returns a
populated ResidenceCardData, including the signature verification result.

# Secure Messaging

Reads of DF1 are wrapped under CLA=0x08: the command carries a Le data
object (96 02 00 00) and the response is a BER-TLV tag-0x86 object whose
value is a one-byte padding indicator followed by TDES-CBC ciphertext. Large
files are read in 15-bit-offset chunks; the ciphertext chunks are
concatenated and decrypted once, because the card encrypts the whole file
as a single CBC stream (see ReadBinarySM).

# Signature verification

VerifySignature extracts the RSA public key from the embedded certificate,
applies the public-key operation to the 256-byte check code, and checks the
decoded block follows PKCS#1 v1.5 type 01 padding with a trailing 32-byte
SHA-256 digest equal to SHA-256(frontImageTLV || faceImageTLV).
*/
package rdc
