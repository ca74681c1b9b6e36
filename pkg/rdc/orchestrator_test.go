package rdc

import (
	"bytes"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"crypto/x509/pkix"
	"math/big"
	"testing"
	"time"
)

// orchestratorSim scripts a full ReadCard flow. GET CHALLENGE and MUTUAL
// AUTHENTICATE are answered with real protocol crypto (recovering K.IFD so
// the session key can be derived independently and used to encrypt the SM
// image fixtures on the fly); every other command is answered from plain,
// in call order.
type orchestratorSim struct {
	cardNumber CardNumber
	rndICC     []byte
	kICC       [16]byte
	plain      []fakeResponse
	smImages   [][]byte // plaintexts served, in order, for SM READ BINARY calls
	plainIdx   int
	smIdx      int
	sessionKey [16]byte
}

func (s *orchestratorSim) Send(apdu []byte) ([]byte, byte, byte, error) {
	switch {
	case apdu[0] == 0x00 && apdu[1] == 0x84: // GET CHALLENGE
		return s.rndICC, 0x90, 0x00, nil
	case apdu[0] == 0x00 && apdu[1] == 0x82: // MUTUAL AUTHENTICATE
		return s.respondMutualAuth(apdu)
	case apdu[0] == 0x08 && apdu[1] == 0xB0: // READ BINARY under SM
		plaintext := s.smImages[s.smIdx]
		s.smIdx++
		padded := padISO97971Method2(plaintext)
		ciphertext, err := tdes(padded, s.sessionKey[:], OpEncrypt)
		if err != nil {
			return nil, 0, 0, err
		}
		resp := encodeTLV(smTag, append([]byte{0x01}, ciphertext...))
		return resp, 0x90, 0x00, nil
	default:
		r := s.plain[s.plainIdx]
		s.plainIdx++
		return r.data, r.sw1, r.sw2, r.err
	}
}

func (s *orchestratorSim) respondMutualAuth(apdu []byte) ([]byte, byte, byte, error) {
	staticKeys := deriveStaticKeys(s.cardNumber)
	cmdData := apdu[5 : 5+40]
	eIFD := cmdData[:32]
	mIFD := cmdData[32:]

	expectedMAC, err := retailMAC(eIFD, staticKeys.KMac[:])
	if err != nil || !bytes.Equal(expectedMAC, mIFD) {
		return nil, 0x69, 0x82, nil
	}

	plain, err := tdes(eIFD, staticKeys.KEnc[:], OpDecrypt)
	if err != nil {
		return nil, 0x69, 0x82, nil
	}
	rndIFD := plain[0:8]
	var kIFD [16]byte
	copy(kIFD[:], plain[16:32])
	if !bytes.Equal(plain[8:16], s.rndICC) {
		return nil, 0x69, 0x82, nil
	}
	s.sessionKey = deriveSessionKey(kIFD, s.kICC)

	r := make([]byte, 0, 32)
	r = append(r, s.rndICC...)
	r = append(r, rndIFD...)
	r = append(r, s.kICC[:]...)

	eICC, err := tdes(r, staticKeys.KEnc[:], OpEncrypt)
	if err != nil {
		return nil, 0x69, 0x82, nil
	}
	mICC, err := retailMAC(eICC, staticKeys.KMac[:])
	if err != nil {
		return nil, 0x69, 0x82, nil
	}

	resp := make([]byte, 0, 40)
	resp = append(resp, eICC...)
	resp = append(resp, mICC...)
	return resp, 0x90, 0x00, nil
}

func TestReadCardFullFlow(t *testing.T) {
	t.Parallel()
	cardNumber, err := ParseCardNumber("AB12345678CD")
	if err != nil {
		t.Fatalf("ParseCardNumber: %v", err)
	}
	rndICC := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	var kICC [16]byte
	for i := range kICC {
		kICC[i] = byte(0x50 + i)
	}

	commonData := []byte{0xC0, 0x01}
	cardTypeData := []byte{'1'} // residence card: additionalData is read
	frontImage := []byte("front image plaintext TLV")
	faceImage := []byte("face image plaintext TLV")
	address := []byte{0xAD, 0x01}
	comprehensive := []byte{0x01}
	individual := []byte{0x02}
	extension := []byte{0x03}

	priv, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	template := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "Card Issuer"},
		Issuer:       pkix.Name{CommonName: "Card Issuer"},
		NotBefore:    time.Unix(1_600_000_000, 0),
		NotAfter:     time.Unix(1_900_000_000, 0),
	}
	certDER, err := x509.CreateCertificate(rand.Reader, template, template, &priv.PublicKey, priv)
	if err != nil {
		t.Fatalf("create certificate: %v", err)
	}
	hash := sha256.Sum256(append(append([]byte{}, frontImage...), faceImage...))
	checkCode, err := rsa.SignPKCS1v15(rand.Reader, priv, crypto.SHA256, hash[:])
	if err != nil {
		t.Fatalf("sign check code: %v", err)
	}
	sigFile := append(encodeTLV(0xDA, checkCode), encodeTLV(0xDB, certDER)...)

	sim := &orchestratorSim{
		cardNumber: cardNumber,
		rndICC:     rndICC,
		kICC:       kICC,
		smImages:   [][]byte{frontImage, faceImage},
		plain: []fakeResponse{
			{sw1: 0x90, sw2: 0x00},                     // SelectMF
			{data: commonData, sw1: 0x90, sw2: 0x00},   // commonData
			{data: cardTypeData, sw1: 0x90, sw2: 0x00}, // cardType
			{sw1: 0x90, sw2: 0x00},                     // SelectDF(AIDDF1)
			{sw1: 0x90, sw2: 0x00},                     // SelectDF(AIDDF2)
			{data: address, sw1: 0x90, sw2: 0x00},
			{data: comprehensive, sw1: 0x90, sw2: 0x00},
			{data: individual, sw1: 0x90, sw2: 0x00},
			{data: extension, sw1: 0x90, sw2: 0x00},
			{sw1: 0x90, sw2: 0x00}, // SelectDF(AIDDF3)
			{data: sigFile, sw1: 0x90, sw2: 0x00},
		},
	}

	data, err := ReadCard(sim, cardNumber)
	if err != nil {
		t.Fatalf("ReadCard: %v", err)
	}
	if !bytes.Equal(data.FrontImage, frontImage) {
		t.Fatalf("front image mismatch: got %q", data.FrontImage)
	}
	if !bytes.Equal(data.FaceImage, faceImage) {
		t.Fatalf("face image mismatch: got %q", data.FaceImage)
	}
	if data.Additional == nil {
		t.Fatal("expected additionalData for a residence card")
	}
	if !bytes.Equal(data.Additional.ComprehensivePermission, comprehensive) {
		t.Fatalf("comprehensive permission mismatch: got %q", data.Additional.ComprehensivePermission)
	}
	if data.SignatureVerificationResult == nil || !data.SignatureVerificationResult.IsValid {
		t.Fatalf("expected valid signature verification result, got %+v", data.SignatureVerificationResult)
	}
}
