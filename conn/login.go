package conn

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"

	"github.com/mfellner/rosapi/command"
	"github.com/mfellner/rosapi/proto"
	"github.com/mfellner/rosapi/response"
)

// AuthError reports a failed authentication handshake. The connection never
// becomes usable after one; Connect returns it directly.
type AuthError struct {
	Reason string
	Trap   *response.Trap // set when the device answered with a trap
}

func (e *AuthError) Error() string {
	if e.Trap != nil {
		return fmt.Sprintf("authentication failed: %s", e.Trap.Message)
	}
	return "authentication failed: " + e.Reason
}

// authenticate runs the login handshake on a fresh connection, before the
// multiplexing loops start. Both schemes are supported: the plain login
// (RouterOS 6.43+) completes after the first exchange; older devices answer
// the first login with a "=ret=" challenge that is hashed together with the
// password and returned in a second login sentence.
func authenticate(w io.Writer, rd *proto.Reader, cfg Config, tag uint16) error {
	done, err := loginExchange(w, rd, command.Login(cfg.Username, cfg.Password), tag)
	if err != nil {
		return err
	}

	challenge, present := done.Attributes["ret"]
	if !present {
		// Plain scheme, credentials already accepted.
		return nil
	}

	nonce, err := hex.DecodeString(challenge)
	if err != nil {
		return &AuthError{Reason: "device sent an invalid challenge"}
	}
	_, err = loginExchange(w, rd, command.LoginResponse(cfg.Username, challengeResponse(cfg.Password, nonce)), tag)
	return err
}

// challengeResponse computes the credential hash of the challenge scheme:
// md5 over a zero byte, the password and the device nonce, hex encoded with
// a leading "00".
func challengeResponse(password string, nonce []byte) string {
	h := md5.New()
	h.Write([]byte{0})
	h.Write([]byte(password))
	h.Write(nonce)
	return "00" + hex.EncodeToString(h.Sum(nil))
}

// loginExchange writes one login sentence and classifies the answer. Only a
// tagged !done continues the handshake; everything else fails it.
func loginExchange(w io.Writer, rd *proto.Reader, cmd *command.Command, tag uint16) (*response.Done, error) {
	data, err := cmd.Encode(tag)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(data); err != nil {
		return nil, err
	}

	for {
		sentence, err := rd.ReadSentence()
		if err != nil {
			return nil, err
		}
		if len(sentence) == 0 {
			// keepalive
			continue
		}

		resp, err := response.Parse(sentence)
		if err != nil {
			return nil, &AuthError{Reason: "unexpected sentence during handshake"}
		}
		switch r := resp.(type) {
		case *response.Done:
			return r, nil
		case *response.Trap:
			return nil, &AuthError{Reason: r.Message, Trap: r}
		case *response.Fatal:
			return nil, &AuthError{Reason: r.Reason}
		default:
			return nil, &AuthError{Reason: fmt.Sprintf("unexpected %s during handshake", resp.Kind())}
		}
	}
}
