package credential

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"golang.org/x/crypto/blake2b"
)

const (
	tokenVersion   = "v2"
	legacyVersion  = "v1"
	fieldSeparator = "|"
	macSeparator   = "."
	minKeyLength   = 16
	dayLayout      = "2006-01-02"
)

// Field counts per version. The channel name is always last.
var payloadFields = map[string]int{
	legacyVersion: 5,
	tokenVersion:  6,
}

var (
	ErrMalformedToken = errors.New("malformed recovery key")
	ErrInvalidKey     = errors.New("recovery signing key too short")
)

var encoding = base64.RawURLEncoding

// Credential is everything needed to rebuild a slot from scratch.
type Credential struct {
	OwnerID     snowflake.ID
	ChannelName string
	ExpiresAt   time.Time
	PingCount   int
	// PingDay is the UTC day (YYYY-MM-DD) PingCount was counted on. Empty
	// when PingCount is zero.
	PingDay string
}

// Codec turns credentials into signed, URL-safe recovery keys and back.
type Codec struct {
	key []byte
}

func NewCodec(key []byte) (*Codec, error) {
	if len(key) < minKeyLength {
		return nil, fmt.Errorf("%w: need at least %d bytes, got %d", ErrInvalidKey, minKeyLength, len(key))
	}
	return &Codec{key: append([]byte(nil), key...)}, nil
}

// Encode serializes the credential as base64url(payload) "." base64url(mac).
func (c *Codec) Encode(cred Credential) (string, error) {
	if cred.OwnerID == 0 {
		return "", errors.New("credential owner is required")
	}
	if cred.ChannelName == "" {
		return "", errors.New("credential channel name is required")
	}
	if cred.PingCount < 0 {
		return "", errors.New("credential ping count must not be negative")
	}
	if cred.PingCount > 0 {
		if _, err := time.Parse(dayLayout, cred.PingDay); err != nil {
			return "", fmt.Errorf("credential ping day %q: %w", cred.PingDay, err)
		}
	} else {
		cred.PingDay = ""
	}

	payload := strings.Join([]string{
		tokenVersion,
		cred.OwnerID.String(),
		strconv.FormatInt(cred.ExpiresAt.UTC().UnixNano(), 10),
		strconv.Itoa(cred.PingCount),
		cred.PingDay,
		cred.ChannelName,
	}, fieldSeparator)

	mac, err := c.sign([]byte(payload))
	if err != nil {
		return "", err
	}
	return encoding.EncodeToString([]byte(payload)) + macSeparator + encoding.EncodeToString(mac), nil
}

// Decode verifies and parses a recovery key. Every failure wraps ErrMalformedToken.
func (c *Codec) Decode(token string) (Credential, error) {
	token = strings.TrimSpace(token)
	encPayload, encMAC, ok := strings.Cut(token, macSeparator)
	if !ok || encPayload == "" || encMAC == "" {
		return Credential{}, fmt.Errorf("%w: missing signature", ErrMalformedToken)
	}

	payload, err := encoding.DecodeString(encPayload)
	if err != nil {
		return Credential{}, fmt.Errorf("%w: payload: %v", ErrMalformedToken, err)
	}
	mac, err := encoding.DecodeString(encMAC)
	if err != nil {
		return Credential{}, fmt.Errorf("%w: signature: %v", ErrMalformedToken, err)
	}

	expected, err := c.sign(payload)
	if err != nil {
		return Credential{}, err
	}
	if subtle.ConstantTimeCompare(mac, expected) != 1 {
		return Credential{}, fmt.Errorf("%w: signature mismatch", ErrMalformedToken)
	}

	return parsePayload(string(payload))
}

func parsePayload(payload string) (Credential, error) {
	version, _, _ := strings.Cut(payload, fieldSeparator)
	n, ok := payloadFields[version]
	if !ok {
		return Credential{}, fmt.Errorf("%w: unknown version %q", ErrMalformedToken, version)
	}
	fields := strings.SplitN(payload, fieldSeparator, n)
	if len(fields) != n {
		return Credential{}, fmt.Errorf("%w: expected %d fields, got %d", ErrMalformedToken, n, len(fields))
	}

	ownerID, err := snowflake.Parse(fields[1])
	if err != nil || ownerID == 0 {
		return Credential{}, fmt.Errorf("%w: owner id %q", ErrMalformedToken, fields[1])
	}
	nanos, err := strconv.ParseInt(fields[2], 10, 64)
	if err != nil {
		return Credential{}, fmt.Errorf("%w: expiry %q", ErrMalformedToken, fields[2])
	}
	pings, err := strconv.Atoi(fields[3])
	if err != nil || pings < 0 {
		return Credential{}, fmt.Errorf("%w: ping count %q", ErrMalformedToken, fields[3])
	}
	name := fields[n-1]
	if name == "" {
		return Credential{}, fmt.Errorf("%w: empty channel name", ErrMalformedToken)
	}

	cred := Credential{
		OwnerID:     ownerID,
		ChannelName: name,
		ExpiresAt:   time.Unix(0, nanos).UTC(),
	}
	// v1 keys carry no day for their count, so it cannot be trusted.
	if version == tokenVersion && pings > 0 {
		if _, err := time.Parse(dayLayout, fields[4]); err != nil {
			return Credential{}, fmt.Errorf("%w: ping day %q", ErrMalformedToken, fields[4])
		}
		cred.PingCount = pings
		cred.PingDay = fields[4]
	}
	return cred, nil
}

func (c *Codec) sign(payload []byte) ([]byte, error) {
	h, err := blake2b.New256(c.key)
	if err != nil {
		return nil, fmt.Errorf("failed to init mac: %w", err)
	}
	h.Write(payload)
	return h.Sum(nil), nil
}
