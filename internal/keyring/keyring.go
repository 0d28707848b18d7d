package keyring

import (
	"github.com/zalando/go-keyring"
)

const serviceName = "filelocker"

// SavePassword stores a user's password in the OS keyring
func SavePassword(username string, password string) error {
	return keyring.Set(serviceName, username, password)
}

// GetPassword retrieves a user's password from the OS keyring
func GetPassword(username string) (string, error) {
	return keyring.Get(serviceName, username)
}

// DeletePassword removes a user's password from the OS keyring
func DeletePassword(username string) error {
	return keyring.Delete(serviceName, username)
}

// HasPassword checks if a password is stored for the user
func HasPassword(username string) bool {
	_, err := keyring.Get(serviceName, username)
	return err == nil
}
