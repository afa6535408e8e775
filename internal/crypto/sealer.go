package crypto

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/crypto/hkdf"
)

const sealInfo = "schooldesk account authentication v1"

// Sealer encrypts an account's credential bag with a key derived from the
// master key and the account's local id. A bag sealed for one account cannot
// be opened as another's.
type Sealer struct {
	master []byte
}

// NewSealer creates a Sealer from a 32-byte master key.
func NewSealer(master []byte) (*Sealer, error) {
	if len(master) != KeySize {
		return nil, ErrInvalidKeySize
	}
	keyCopy := make([]byte, KeySize)
	copy(keyCopy, master)
	return &Sealer{master: keyCopy}, nil
}

func (s *Sealer) encryptorFor(localID string) (*Encryptor, error) {
	reader := hkdf.New(sha256.New, s.master, []byte(localID), []byte(sealInfo))
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(reader, key); err != nil {
		return nil, fmt.Errorf("failed to derive account key: %w", err)
	}
	return NewEncryptor(key)
}

// Seal encrypts the credential bag of account localID.
func (s *Sealer) Seal(localID string, bag map[string]string) (string, error) {
	if len(bag) == 0 {
		return "", nil
	}
	enc, err := s.encryptorFor(localID)
	if err != nil {
		return "", err
	}
	plaintext, err := json.Marshal(bag)
	if err != nil {
		return "", fmt.Errorf("failed to marshal authentication: %w", err)
	}
	return enc.Encrypt(plaintext, []byte(localID))
}

// Open decrypts a credential bag sealed for account localID.
func (s *Sealer) Open(localID, sealed string) (map[string]string, error) {
	if sealed == "" {
		return nil, nil
	}
	enc, err := s.encryptorFor(localID)
	if err != nil {
		return nil, err
	}
	plaintext, err := enc.Decrypt(sealed, []byte(localID))
	if err != nil {
		return nil, err
	}
	var bag map[string]string
	if err := json.Unmarshal(plaintext, &bag); err != nil {
		return nil, fmt.Errorf("failed to unmarshal authentication: %w", err)
	}
	return bag, nil
}

// LoadOrCreateMasterKey resolves the master key: a base64 value wins, then
// the key file, and otherwise a new key is generated and written to keyPath.
func LoadOrCreateMasterKey(encoded, keyPath string) ([]byte, error) {
	if encoded != "" {
		return decodeKey(encoded)
	}

	if keyPath == "" {
		return nil, fmt.Errorf("no encryption key configured and no key file path set")
	}

	data, err := os.ReadFile(keyPath)
	if err == nil {
		key, err := decodeKey(strings.TrimSpace(string(data)))
		if err != nil {
			return nil, fmt.Errorf("key file %s: %w", keyPath, err)
		}
		return key, nil
	}
	if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read key file %s: %w", keyPath, err)
	}

	encodedKey, err := GenerateKey()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(keyPath), 0700); err != nil {
		return nil, fmt.Errorf("failed to create key directory: %w", err)
	}
	if err := os.WriteFile(keyPath, []byte(encodedKey+"\n"), 0600); err != nil {
		return nil, fmt.Errorf("failed to write key file: %w", err)
	}
	log.Printf("Generated new encryption key at %s", keyPath)
	return decodeKey(encodedKey)
}

func decodeKey(encoded string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 key: %w", err)
	}
	if len(key) != KeySize {
		return nil, ErrInvalidKeySize
	}
	return key, nil
}
