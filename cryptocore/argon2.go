package cryptocore

import (
	"golang.org/x/crypto/argon2"
)

// DefaultArgon2idVersion is the argon2 algorithm version encoded into
// new PHC strings. Existing containers may carry version 16; both are
// accepted on decode.
const DefaultArgon2idVersion = 19

// MasterKeyLen is the length, in bytes, of the derived master key.
const MasterKeyLen = 32

// Argon2Params holds the tunable cost parameters for the Argon2id KDF.
type Argon2Params struct {
	Memory      uint32 // Memory cost in KiB.
	Time        uint32 // Time cost (iterations).
	Parallelism uint8  // Parallelism factor (number of threads).
}

// DefaultArgon2Params is calibrated for >=100ms on a reference laptop
// CPU.
var DefaultArgon2Params = Argon2Params{
	Memory:      64 * 1024, // 64 MiB
	Time:        3,
	Parallelism: 1,
}

// Argon2idKDF derives a master key from a master password and salt.
type Argon2idKDF struct {
	params  Argon2Params
	version int
	keyLen  uint32
}

type Argon2idKDFOpt func(*Argon2idKDF)

// NewArgon2idKDF creates a new [Argon2idKDF] using [DefaultArgon2Params],
// [DefaultArgon2idVersion], and a 32-byte key length, overridable via opts.
func NewArgon2idKDF(opts ...Argon2idKDFOpt) *Argon2idKDF {
	kdf := &Argon2idKDF{
		params:  DefaultArgon2Params,
		version: DefaultArgon2idVersion,
		keyLen:  MasterKeyLen,
	}

	for _, opt := range opts {
		opt(kdf)
	}

	return kdf
}

func WithParams(params Argon2Params) Argon2idKDFOpt {
	return func(kdf *Argon2idKDF) { kdf.params = params }
}

func WithKeyLen(n uint32) Argon2idKDFOpt {
	return func(kdf *Argon2idKDF) { kdf.keyLen = n }
}

// DeriveMasterKey derives the master key for password+salt. It is
// deterministic for a fixed (password, salt, params) triple and fails
// only on invalid parameters, never on password content.
func (a *Argon2idKDF) DeriveMasterKey(password []byte, salt []byte) []byte {
	return argon2.IDKey(password, salt, a.params.Time, a.params.Memory, a.params.Parallelism, a.keyLen)
}

// PHC returns the PHC-formatted parameter string for the given salt,
// to be persisted alongside the vault container so a future KDF
// parameter change can be detected.
func (a *Argon2idKDF) PHC(salt []byte) Argon2idPHC {
	return Argon2idPHC{
		Argon2Params: a.params,
		Version:      a.version,
		Salt:         salt,
	}
}

// KDFFromPHC reconstructs the [Argon2idKDF] that produced a given
// persisted PHC string, so that unlock uses the exact parameters the
// vault was created with.
func KDFFromPHC(phc Argon2idPHC) *Argon2idKDF {
	return &Argon2idKDF{
		params:  phc.Argon2Params,
		version: phc.Version,
		keyLen:  MasterKeyLen,
	}
}
