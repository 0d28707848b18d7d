// Package auth implements the credential store: registration and login
// backed by PBKDF2 password verifiers.
//
// A verifier is a (salt, hash) pair persisted as "<base64 salt>:<base64
// hash>" per username. Passwords are never stored. Login failures are
// deliberately uniform: an unknown username and a wrong password yield the
// same error, so callers cannot tell which usernames exist.
package auth
