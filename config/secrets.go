package config

import (
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/fernet/fernet-go"
)

const encSuffix = "_ENC"

// decryptSettings replaces every <KEY>_ENC entry in the settings map with a
// decrypted <KEY> entry. A plaintext <KEY> already present wins over the
// encrypted variant.
func decryptSettings(settings map[string]string, masterKey string) error {
	var encrypted []string
	for key := range settings {
		if strings.HasSuffix(key, encSuffix) {
			encrypted = append(encrypted, key)
		}
	}
	if len(encrypted) == 0 {
		return nil
	}
	if masterKey == "" {
		return fmt.Errorf("settings file contains encrypted values but %s is not set", KeyMasterKey)
	}

	key, err := fernet.DecodeKey(masterKey)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", KeyMasterKey, err)
	}

	for _, encKey := range encrypted {
		plainKey := strings.TrimSuffix(encKey, encSuffix)
		if settings[plainKey] != "" {
			continue
		}
		plaintext, err := decryptSetting(settings[encKey], key)
		if err != nil {
			return fmt.Errorf("failed to decrypt %s: %w", encKey, err)
		}
		settings[plainKey] = plaintext
	}
	return nil
}

func decryptSetting(token string, key *fernet.Key) (string, error) {
	if token == "" {
		return "", nil
	}
	tokenBytes, err := base64.StdEncoding.DecodeString(token)
	if err != nil {
		return "", fmt.Errorf("invalid token format: %w", err)
	}
	// TTL of 100 years: stored credentials must not expire.
	plaintext := fernet.VerifyAndDecrypt(tokenBytes, time.Hour*24*365*100, []*fernet.Key{key})
	if plaintext == nil {
		return "", fmt.Errorf("invalid or corrupted token")
	}
	return string(plaintext), nil
}

// EncryptSetting encrypts a secret for storage in the settings file under a
// <KEY>_ENC name.
func EncryptSetting(plaintext, masterKey string) (string, error) {
	if plaintext == "" {
		return "", nil
	}
	key, err := fernet.DecodeKey(masterKey)
	if err != nil {
		return "", fmt.Errorf("invalid %s: %w", KeyMasterKey, err)
	}
	token, err := fernet.EncryptAndSign([]byte(plaintext), key)
	if err != nil {
		return "", fmt.Errorf("encryption failed: %w", err)
	}
	return base64.StdEncoding.EncodeToString(token), nil
}
