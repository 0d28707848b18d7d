package storage

// Credentials maps username to an encoded password verifier in the
// "<base64 salt>:<base64 hash>" form.
type Credentials map[string]string

// FileIndex maps username to a map of original filename to storage id.
type FileIndex map[string]map[string]string

// CredentialRepository loads and persists the credential index as a whole.
type CredentialRepository interface {
	Load() (Credentials, error)
	Save(Credentials) error
}

// IndexRepository loads and persists the file index as a whole.
type IndexRepository interface {
	Load() (FileIndex, error)
	Save(FileIndex) error
}
