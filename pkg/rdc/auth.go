package rdc

import (
	"bytes"
	"crypto/rand"
	"fmt"
	"io"
	"log/slog"
)

// AuthState is the authentication engine's state machine position.
type AuthState int

const (
	AuthFresh AuthState = iota
	AuthChallenged
	AuthAuthenticated
	AuthFailed
)

func (s AuthState) String() string {
	switch s {
	case AuthFresh:
		return "fresh"
	case AuthChallenged:
		return "challenged"
	case AuthAuthenticated:
		return "authenticated"
	case AuthFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Session holds the secrets produced by a successful mutual authentication:
// the static and ephemeral keys used to get there, and the resulting SM
// session key. Ownership is exclusive to the authentication engine, which
// hands the session to the SM reader for the duration of the read flow; the
// SM reader takes a copy of the session key through Key. Zero must be
// called when the session ends.
type Session struct {
	state AuthState

	staticKeys StaticKeys
	kIFD       [16]byte
	kICC       [16]byte
	sessionKey [16]byte
}

// State reports the session's current position in the auth state machine.
func (s *Session) State() AuthState {
	return s.state
}

// Key returns the live 16-byte SM session key. Returns an error if the
// session never completed authentication.
func (s *Session) Key() ([16]byte, error) {
	if s.state != AuthAuthenticated {
		return [16]byte{}, &CryptographyError{Reason: "session key requested before authentication completed"}
	}
	return s.sessionKey, nil
}

// Zero overwrites every secret the session holds: K.Enc, K.Mac, K.IFD,
// K.ICC, and the session key.
func (s *Session) Zero() {
	s.staticKeys.Zero()
	for i := range s.kIFD {
		s.kIFD[i] = 0
		s.kICC[i] = 0
		s.sessionKey[i] = 0
	}
	s.state = AuthFailed
}

// AuthenticateICC runs the full GET CHALLENGE -> MUTUAL AUTHENTICATE
// handshake against executor, using the static keys derived from
// cardNumber. It returns a live *Session on success.
//
// Any card error (SW != 0x9000) or cryptographic mismatch (MAC, RND.ICC,
// RND.IFD) is fatal and terminal: the engine does not retry.
func AuthenticateICC(executor CommandExecutor, cardNumber CardNumber) (*Session, error) {
	sess := &Session{state: AuthFresh, staticKeys: deriveStaticKeys(cardNumber)}
	defer func() {
		if sess.state != AuthAuthenticated {
			sess.Zero()
		}
	}()

	rndICC, err := getChallenge(executor)
	if err != nil {
		sess.state = AuthFailed
		return nil, err
	}
	sess.state = AuthChallenged

	rndIFD := make([]byte, 8)
	if _, err := io.ReadFull(rand.Reader, rndIFD); err != nil {
		sess.state = AuthFailed
		return nil, &CryptographyError{Reason: "generate RND.IFD", Cause: err}
	}
	if _, err := io.ReadFull(rand.Reader, sess.kIFD[:]); err != nil {
		sess.state = AuthFailed
		return nil, &CryptographyError{Reason: "generate K.IFD", Cause: err}
	}

	s := make([]byte, 0, 32)
	s = append(s, rndIFD...)
	s = append(s, rndICC...)
	s = append(s, sess.kIFD[:]...)

	eIFD, err := tdes(s, sess.staticKeys.KEnc[:], OpEncrypt)
	if err != nil {
		sess.state = AuthFailed
		return nil, err
	}
	mIFD, err := retailMAC(eIFD, sess.staticKeys.KMac[:])
	if err != nil {
		sess.state = AuthFailed
		return nil, err
	}

	cmdData := make([]byte, 0, len(eIFD)+len(mIFD))
	cmdData = append(cmdData, eIFD...)
	cmdData = append(cmdData, mIFD...)

	resp, err := transmit(executor, APDU{CLA: 0x00, INS: 0x82, P1: 0x00, P2: 0x00, Data: cmdData, Le: 256}) // short Le 0x00
	if err != nil {
		sess.state = AuthFailed
		return nil, err
	}
	if len(resp) != 40 {
		sess.state = AuthFailed
		return nil, &InvalidResponseError{Reason: fmt.Sprintf("MUTUAL AUTHENTICATE returned %d bytes, want 40", len(resp))}
	}

	eICC := resp[:32]
	mICC := resp[32:]

	computedMICC, err := retailMAC(eICC, sess.staticKeys.KMac[:])
	if err != nil {
		sess.state = AuthFailed
		return nil, err
	}
	if !bytes.Equal(computedMICC, mICC) {
		sess.state = AuthFailed
		return nil, &CryptographyError{Reason: "M.ICC verification failed"}
	}

	r, err := tdes(eICC, sess.staticKeys.KEnc[:], OpDecrypt)
	if err != nil {
		sess.state = AuthFailed
		return nil, err
	}
	if !bytes.Equal(r[0:8], rndICC) {
		sess.state = AuthFailed
		return nil, &CryptographyError{Reason: "RND.ICC verification failed"}
	}
	if !bytes.Equal(r[8:16], rndIFD) {
		sess.state = AuthFailed
		return nil, &CryptographyError{Reason: "RND.IFD verification failed"}
	}
	copy(sess.kICC[:], r[16:32])

	sess.sessionKey = deriveSessionKey(sess.kIFD, sess.kICC)
	sess.state = AuthAuthenticated

	slog.Debug("mutual authentication succeeded", "state", sess.state.String())
	return sess, nil
}

// getChallenge sends GET CHALLENGE and returns the 8-byte RND.ICC.
func getChallenge(executor CommandExecutor) ([]byte, error) {
	resp, err := transmit(executor, APDU{CLA: 0x00, INS: 0x84, P1: 0x00, P2: 0x00, Le: 8})
	if err != nil {
		return nil, err
	}
	if len(resp) != 8 {
		return nil, &InvalidResponseError{Reason: fmt.Sprintf("GET CHALLENGE returned %d bytes, want 8", len(resp))}
	}
	return resp, nil
}
