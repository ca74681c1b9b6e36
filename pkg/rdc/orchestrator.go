package rdc

import "log/slog"

// CardType is the single ASCII byte read from MF file 0x8A that tells the
// orchestrator whether additional residence-card-only fields are present.
type CardType byte

// IsResidenceCard reports whether t marks a Residence Card (as opposed to a
// Special Permanent Resident Certificate, which carries no additionalData).
func (t CardType) IsResidenceCard() bool {
	return t == '1'
}

// AdditionalData holds the three residence-card-only DF2 files. Populated only when CardType.IsResidenceCard() is true.
type AdditionalData struct {
	ComprehensivePermission []byte
	IndividualPermission    []byte
	ExtensionApplication    []byte
}

// ResidenceCardData is the orchestrator's read result. The caller owns
// it once ReadCard returns.
type ResidenceCardData struct {
	CommonData  []byte
	CardType    CardType
	FrontImage  []byte
	FaceImage   []byte
	Address     []byte
	Additional  *AdditionalData
	CheckCode   []byte
	Certificate []byte

	SignatureVerificationResult *SignatureVerificationResult
}

// ReadCard runs the full read flow against executor using cardNumber for
// mutual authentication: select MF, read common data and card type,
// authenticate against DF1 and read the two images under SM, read the
// address (and additional data for residence cards) from DF2, read and
// split the signature file from DF3, and finally verify the signature.
//
// Each read step must succeed before the next begins; any failure aborts the
// flow and returns the underlying error (CardError, CryptographyError, or
// InvalidResponseError). A signature verification error does not abort the
// flow: it is logged, and the returned data has a nil
// SignatureVerificationResult.
func ReadCard(executor CommandExecutor, cardNumber CardNumber) (*ResidenceCardData, error) {
	if err := SelectMF(executor); err != nil {
		return nil, err
	}

	commonData, err := ReadBinaryPlain(executor, 0x8B, 0x00)
	if err != nil {
		return nil, err
	}
	cardTypeData, err := ReadBinaryPlain(executor, 0x8A, 0x00)
	if err != nil {
		return nil, err
	}
	if len(cardTypeData) == 0 {
		return nil, &InvalidResponseError{Reason: "cardType file is empty"}
	}
	cardType := CardType(cardTypeData[0])

	if err := SelectDF(executor, AIDDF1); err != nil {
		return nil, err
	}
	sess, err := AuthenticateICC(executor, cardNumber)
	if err != nil {
		return nil, err
	}
	defer sess.Zero()

	frontImage, err := ReadBinarySM(executor, sess, 0x85, 0x00)
	if err != nil {
		return nil, err
	}
	faceImage, err := ReadBinarySM(executor, sess, 0x86, 0x00)
	if err != nil {
		return nil, err
	}

	if err := SelectDF(executor, AIDDF2); err != nil {
		return nil, err
	}
	address, err := ReadBinaryPlain(executor, 0x81, 0x00)
	if err != nil {
		return nil, err
	}

	var additional *AdditionalData
	if cardType.IsResidenceCard() {
		comprehensive, err := ReadBinaryPlain(executor, 0x82, 0x00)
		if err != nil {
			return nil, err
		}
		individual, err := ReadBinaryPlain(executor, 0x83, 0x00)
		if err != nil {
			return nil, err
		}
		extension, err := ReadBinaryPlain(executor, 0x84, 0x00)
		if err != nil {
			return nil, err
		}
		additional = &AdditionalData{
			ComprehensivePermission: comprehensive,
			IndividualPermission:    individual,
			ExtensionApplication:    extension,
		}
	}

	if err := SelectDF(executor, AIDDF3); err != nil {
		return nil, err
	}
	sigFile, err := ReadBinaryPlain(executor, 0x82, 0x01)
	if err != nil {
		return nil, err
	}
	checkCode, _ := findTag(sigFile, 0xDA)
	certificate, _ := findTag(sigFile, 0xDB)

	data := &ResidenceCardData{
		CommonData:  commonData,
		CardType:    cardType,
		FrontImage:  frontImage,
		FaceImage:   faceImage,
		Address:     address,
		Additional:  additional,
		CheckCode:   checkCode,
		Certificate: certificate,
	}

	result, err := VerifySignature(checkCode, certificate, frontImage, faceImage)
	if err != nil {
		slog.Warn("signature verification failed", "error", err)
	}
	data.SignatureVerificationResult = result

	return data, nil
}
