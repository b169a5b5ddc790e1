package keyexport

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"crypto/sha512"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/pbkdf2"

	"keybridge/internal/domain"
	"keybridge/internal/encoding"
	"keybridge/internal/util/memzero"
)

const (
	saltSize = 16
	ivSize   = 16
	macSize  = 32
	keySize  = 32

	// version is the only payload version this codec reads or writes.
	version byte = 1

	header = "-----BEGIN MEGOLM SESSION DATA-----"
	footer = "-----END MEGOLM SESSION DATA-----"
)

// RecommendedRounds is a sensible PBKDF2 round count for interactive use.
// Anything at or above 100000 is considered attacker-resistant; lower values
// are accepted but weaken the export against brute force.
const RecommendedRounds = 100_000

var (
	// ErrInvalidHeaders is returned when the armor marker lines are missing.
	ErrInvalidHeaders = errors.New("invalid or missing key export headers")
	// ErrUnsupportedVersion is returned when the payload version byte differs
	// from the version this codec writes.
	ErrUnsupportedVersion = errors.New("key export encrypted with an unsupported version")
	// ErrInvalidMAC is returned when authentication fails. Callers must treat
	// it as "wrong passphrase or tampered data".
	ErrInvalidMAC = errors.New("invalid MAC of the encrypted payload")
	// ErrInvalidUTF8 is returned when the decrypted payload is not UTF-8.
	ErrInvalidUTF8 = errors.New("decrypted key export is not valid UTF-8")
)

// Encrypt seals keys under passphrase into an armored text block.
//
// rounds is the PBKDF2 iteration count used to stretch the passphrase; it
// must be at least 1 and is stored in the payload so Decrypt can re-derive
// the same material. Each call draws a fresh salt and IV, so two exports of
// the same keys never produce the same armor.
//
// Encrypt panics if the system randomness source fails: producing an export
// without fresh randomness would silently weaken it, which is worse than
// aborting.
func Encrypt(keys []domain.ExportedRoomKey, passphrase string, rounds int) (string, error) {
	if rounds < 1 || rounds > math.MaxUint32 {
		return "", fmt.Errorf("key export rounds out of range: %d", rounds)
	}
	plaintext, err := json.Marshal(keys)
	if err != nil {
		return "", err
	}
	payload := seal(plaintext, passphrase, uint32(rounds))
	return header + "\n" + payload + "\n" + footer, nil
}

// Decrypt opens an armored export produced by Encrypt, returning the room
// keys in their original order.
//
// The MAC is verified before any decryption happens; a mismatch surfaces as
// ErrInvalidMAC and none of the ciphertext is processed.
func Decrypt(input, passphrase string) ([]domain.ExportedRoomKey, error) {
	trimmed := strings.TrimSpace(input)
	if !strings.HasPrefix(trimmed, header) || !strings.HasSuffix(trimmed, footer) {
		return nil, ErrInvalidHeaders
	}

	var b strings.Builder
	for _, line := range strings.Split(trimmed, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, header) || strings.HasPrefix(line, footer) {
			continue
		}
		b.WriteString(line)
	}

	plaintext, err := open(b.String(), passphrase)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(plaintext) {
		return nil, ErrInvalidUTF8
	}
	var keys []domain.ExportedRoomKey
	if err := json.Unmarshal(plaintext, &keys); err != nil {
		return nil, err
	}
	return keys, nil
}

// seal encrypts plaintext in place and returns the base64 payload:
// version || salt || iv || rounds || ciphertext || mac.
func seal(plaintext []byte, passphrase string, rounds uint32) string {
	salt := make([]byte, saltSize)
	iv := make([]byte, ivSize)
	if _, err := rand.Read(salt); err != nil {
		panic("keyexport: randomness source unavailable: " + err.Error())
	}
	if _, err := rand.Read(iv); err != nil {
		panic("keyexport: randomness source unavailable: " + err.Error())
	}
	// Clear bit 63 of the counter so the CTR block counter cannot wrap
	// within any realistic plaintext length.
	iv[8] &= 0x7f

	aesKey, macKey := deriveKeys(passphrase, salt, rounds)
	defer memzero.Zero(aesKey)
	defer memzero.Zero(macKey)

	xorKeystream(aesKey, iv, plaintext)

	payload := make([]byte, 0, 1+saltSize+ivSize+4+len(plaintext)+macSize)
	payload = append(payload, version)
	payload = append(payload, salt...)
	payload = append(payload, iv...)
	payload = encoding.PutU32(payload, rounds)
	payload = append(payload, plaintext...)

	mac := hmac.New(sha256.New, macKey)
	mac.Write(payload)
	payload = mac.Sum(payload)

	return encoding.B64(payload)
}

// open authenticates and decrypts a base64 payload produced by seal.
func open(payload, passphrase string) ([]byte, error) {
	decoded, err := encoding.DecodeB64(payload)
	if err != nil {
		return nil, fmt.Errorf("malformed key export payload: %w", err)
	}

	const headerSize = 1 + saltSize + ivSize + 4
	if len(decoded) < headerSize+macSize {
		return nil, fmt.Errorf("key export payload too short: %d bytes", len(decoded))
	}

	if decoded[0] != version {
		return nil, ErrUnsupportedVersion
	}
	salt := decoded[1 : 1+saltSize]
	iv := decoded[1+saltSize : 1+saltSize+ivSize]
	rounds := encoding.U32(decoded[1+saltSize+ivSize:])

	authed := decoded[:len(decoded)-macSize]
	tag := decoded[len(decoded)-macSize:]

	aesKey, macKey := deriveKeys(passphrase, salt, rounds)
	defer memzero.Zero(aesKey)
	defer memzero.Zero(macKey)

	mac := hmac.New(sha256.New, macKey)
	mac.Write(authed)
	if !hmac.Equal(mac.Sum(nil), tag) {
		return nil, ErrInvalidMAC
	}

	ciphertext := decoded[headerSize : len(decoded)-macSize]
	xorKeystream(aesKey, iv, ciphertext)
	return ciphertext, nil
}

// deriveKeys stretches the passphrase into a 64-byte block: the first half
// keys AES-256-CTR, the second half keys HMAC-SHA256.
func deriveKeys(passphrase string, salt []byte, rounds uint32) (aesKey, macKey []byte) {
	derived := pbkdf2.Key([]byte(passphrase), salt, int(rounds), 2*keySize, sha512.New)
	return derived[:keySize], derived[keySize:]
}

// xorKeystream runs AES-256-CTR over buf in place.
func xorKeystream(key, iv, buf []byte) {
	block, err := aes.NewCipher(key)
	if err != nil {
		// Key length is fixed by deriveKeys, so this cannot happen.
		panic("keyexport: " + err.Error())
	}
	cipher.NewCTR(block, iv).XORKeyStream(buf, buf)
}
