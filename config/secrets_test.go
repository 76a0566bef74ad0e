package config

import (
	"testing"

	"github.com/fernet/fernet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateMasterKey(t *testing.T) string {
	t.Helper()
	var key fernet.Key
	require.NoError(t, key.Generate())
	return key.Encode()
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	masterKey := generateMasterKey(t)

	token, err := EncryptSetting("ghp_secret_value", masterKey)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	settings := map[string]string{
		KeyGitHubToken + encSuffix: token,
	}
	require.NoError(t, decryptSettings(settings, masterKey))
	assert.Equal(t, "ghp_secret_value", settings[KeyGitHubToken])
}

func TestDecryptSettingsPlaintextWins(t *testing.T) {
	masterKey := generateMasterKey(t)

	token, err := EncryptSetting("encrypted-value", masterKey)
	require.NoError(t, err)

	settings := map[string]string{
		KeyGitHubToken:             "plaintext-value",
		KeyGitHubToken + encSuffix: token,
	}
	require.NoError(t, decryptSettings(settings, masterKey))
	assert.Equal(t, "plaintext-value", settings[KeyGitHubToken])
}

func TestDecryptSettingsRequiresMasterKey(t *testing.T) {
	settings := map[string]string{
		KeyGitHubToken + encSuffix: "some-token",
	}
	err := decryptSettings(settings, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), KeyMasterKey)
}

func TestDecryptSettingsNoEncryptedValues(t *testing.T) {
	settings := map[string]string{
		KeyGitHubToken: "plain",
	}
	// No master key needed when nothing is encrypted.
	require.NoError(t, decryptSettings(settings, ""))
	assert.Equal(t, "plain", settings[KeyGitHubToken])
}

func TestDecryptSettingRejectsCorruptedToken(t *testing.T) {
	masterKey := generateMasterKey(t)
	key, err := fernet.DecodeKey(masterKey)
	require.NoError(t, err)

	_, err = decryptSetting("not base64!!!", key)
	assert.Error(t, err)

	_, err = decryptSetting("YWJjZGVm", key) // valid base64, not a fernet token
	assert.Error(t, err)
}

func TestDecryptSettingsWrongKey(t *testing.T) {
	token, err := EncryptSetting("secret", generateMasterKey(t))
	require.NoError(t, err)

	settings := map[string]string{
		KeyGitHubToken + encSuffix: token,
	}
	err = decryptSettings(settings, generateMasterKey(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), KeyGitHubToken+encSuffix)
}
