// Package token encodes the correlation data carried by interactive controls.
//
// Wire layout before base58:
//
//	version(1) | kind(1) | uvarint len | owner | [uvarint len | anchor] | sha256[:4]
//
// The anchor is present only for AmountEntry tokens. Length prefixes make
// the encoding unambiguous for any identity string, and the trailing checksum
// turns any edit of the visible string into a decode failure.
package token

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
)

const (
	version      byte = 1
	checksumSize      = 4

	// MaxEncodedLen is the custom_id limit of the chat platform.
	MaxEncodedLen = 100
)

var (
	// ErrMalformedToken is returned when a token cannot be decoded.
	ErrMalformedToken = errors.New("malformed token")

	// ErrInvalidToken is returned when Encode is called with fields that
	// do not fit the kind.
	ErrInvalidToken = errors.New("invalid token fields")
)

// Kind tags which step of the capture flow a token belongs to.
type Kind byte

const (
	// OutcomeChoice is attached to the outcome select menu.
	OutcomeChoice Kind = 1
	// AmountEntry is attached to the RR modal and anchors the prompt message.
	AmountEntry Kind = 2
)

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case OutcomeChoice:
		return "outcome_choice"
	case AmountEntry:
		return "amount_entry"
	default:
		return fmt.Sprintf("kind(%d)", byte(k))
	}
}

// Token is the decoded correlation payload.
type Token struct {
	Kind     Kind
	OwnerID  string
	AnchorID string // empty when absent
}

// Authorize reports whether actingUserID owns the token.
func (t Token) Authorize(actingUserID string) bool {
	return actingUserID != "" && actingUserID == t.OwnerID
}

// Encode builds the opaque string form of a token.
func Encode(kind Kind, ownerID, anchorID string) (string, error) {
	switch kind {
	case OutcomeChoice:
		if anchorID != "" {
			return "", fmt.Errorf("%w: %s takes no anchor", ErrInvalidToken, kind)
		}
	case AmountEntry:
		if anchorID == "" {
			return "", fmt.Errorf("%w: %s requires an anchor", ErrInvalidToken, kind)
		}
	default:
		return "", fmt.Errorf("%w: unknown kind %d", ErrInvalidToken, byte(kind))
	}
	if ownerID == "" {
		return "", fmt.Errorf("%w: empty owner", ErrInvalidToken)
	}

	var buf bytes.Buffer
	buf.WriteByte(version)
	buf.WriteByte(byte(kind))
	writeField(&buf, ownerID)
	if kind == AmountEntry {
		writeField(&buf, anchorID)
	}
	sum := sha256.Sum256(buf.Bytes())
	buf.Write(sum[:checksumSize])

	s := base58.Encode(buf.Bytes())
	if len(s) > MaxEncodedLen {
		return "", fmt.Errorf("%w: encoded length %d exceeds %d", ErrInvalidToken, len(s), MaxEncodedLen)
	}
	return s, nil
}

// Encode is a convenience wrapper around the package-level Encode.
func (t Token) Encode() (string, error) {
	return Encode(t.Kind, t.OwnerID, t.AnchorID)
}

// Decode parses a token string. Any structural problem yields ErrMalformedToken.
func Decode(s string) (Token, error) {
	if s == "" || len(s) > MaxEncodedLen {
		return Token{}, ErrMalformedToken
	}
	raw, err := base58.Decode(s)
	if err != nil {
		return Token{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	if len(raw) < 2+checksumSize {
		return Token{}, fmt.Errorf("%w: too short", ErrMalformedToken)
	}

	body, check := raw[:len(raw)-checksumSize], raw[len(raw)-checksumSize:]
	sum := sha256.Sum256(body)
	if !bytes.Equal(sum[:checksumSize], check) {
		return Token{}, fmt.Errorf("%w: checksum mismatch", ErrMalformedToken)
	}
	if body[0] != version {
		return Token{}, fmt.Errorf("%w: unsupported version %d", ErrMalformedToken, body[0])
	}

	t := Token{Kind: Kind(body[1])}
	rest := body[2:]

	t.OwnerID, rest, err = readField(rest)
	if err != nil || t.OwnerID == "" {
		return Token{}, fmt.Errorf("%w: owner field", ErrMalformedToken)
	}

	switch t.Kind {
	case OutcomeChoice:
	case AmountEntry:
		t.AnchorID, rest, err = readField(rest)
		if err != nil || t.AnchorID == "" {
			return Token{}, fmt.Errorf("%w: anchor field", ErrMalformedToken)
		}
	default:
		return Token{}, fmt.Errorf("%w: unknown kind %d", ErrMalformedToken, byte(t.Kind))
	}

	if len(rest) != 0 {
		return Token{}, fmt.Errorf("%w: %d trailing bytes", ErrMalformedToken, len(rest))
	}
	return t, nil
}

func writeField(buf *bytes.Buffer, s string) {
	var lenBuf [binary.MaxVarintLen64]byte
	n := binary.PutUvarint(lenBuf[:], uint64(len(s)))
	buf.Write(lenBuf[:n])
	buf.WriteString(s)
}

func readField(b []byte) (string, []byte, error) {
	l, n := binary.Uvarint(b)
	if n <= 0 {
		return "", nil, errors.New("bad length prefix")
	}
	b = b[n:]
	if l > uint64(len(b)) {
		return "", nil, errors.New("field overruns input")
	}
	return string(b[:l]), b[l:], nil
}
