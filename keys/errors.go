package keys

import "errors"

var (
	// ErrInvalidSeed indicates the seed length is outside the 16-64 byte range.
	ErrInvalidSeed = errors.New("keys: seed must be 16-64 bytes")

	// ErrInvalidChecksum indicates a Base58Check checksum mismatch.
	ErrInvalidChecksum = errors.New("keys: base58check checksum mismatch")

	// ErrInvalidBase58 indicates a character outside the Base58 alphabet.
	ErrInvalidBase58 = errors.New("keys: invalid base58 character")

	// ErrInvalidKeyLength indicates a decoded extended key is not 78 bytes.
	ErrInvalidKeyLength = errors.New("keys: invalid extended key length")

	// ErrUnknownVersion indicates unrecognized extended key version bytes.
	ErrUnknownVersion = errors.New("keys: unknown extended key version bytes")

	// ErrDeriveHardenedFromPublic indicates hardened derivation was requested
	// on a public-only key.
	ErrDeriveHardenedFromPublic = errors.New("keys: cannot derive hardened child from public key")

	// ErrInvalidChild indicates the derived scalar or point is outside the
	// valid range. The caller should retry with the next index.
	ErrInvalidChild = errors.New("keys: derived child key is invalid")

	// ErrInvalidPublicKey indicates a public key that cannot be parsed.
	ErrInvalidPublicKey = errors.New("keys: invalid public key")

	// ErrInvalidPrivateKey indicates a private key scalar outside (0, N).
	ErrInvalidPrivateKey = errors.New("keys: invalid private key")

	// ErrInvalidPath indicates a malformed BIP32 derivation path string.
	ErrInvalidPath = errors.New("keys: invalid derivation path")

	// ErrNotPrivate indicates an operation requiring private material was
	// called on a public-only key.
	ErrNotPrivate = errors.New("keys: extended key is not private")

	// ErrInvalidAddress indicates a malformed P2PKH address.
	ErrInvalidAddress = errors.New("keys: invalid address")

	// ErrInvalidWIF indicates a malformed WIF private key string.
	ErrInvalidWIF = errors.New("keys: invalid WIF string")
)
