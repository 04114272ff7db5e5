package foundation

// Encryptor encrypts and decrypts event data.
// Decrypt must fail with a DecryptError (or an error matching ErrDecryptFailed)
// when the ciphertext does not belong to this cipher.
type Encryptor interface {
	CipherID() string
	Algorithm() string
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// Environment describes the running environment.
type Environment interface {
	// AllowAnonymization reports whether undecryptable data may be replaced
	// by fake data. Production environments return false.
	AllowAnonymization() bool
}

// Faker produces synthetic values for a semantic tag such as "name" or "email".
type Faker interface {
	MakeFakeData(tag string) any
}

// Infrastructure is handed to generated handlers and to the event field
// processor.
type Infrastructure interface {
	// Encryptor returns the encryptor used for new data.
	Encryptor() (Encryptor, error)

	// EncryptorFor returns the encryptor that produced existing data.
	EncryptorFor(cipherID, algorithm string) (Encryptor, error)

	Environment() Environment

	Faker() Faker
}
