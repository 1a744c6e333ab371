package engine

import "errors"

var (
	// ErrNilDependency indicates a required collaborator was not provided.
	ErrNilDependency = errors.New("engine: nil dependency")

	// ErrMissingXPub indicates the raw xpub string was empty.
	ErrMissingXPub = errors.New("engine: xpub is required")

	// ErrInvalidXPub indicates the xpub failed BIP32 validation or is a
	// private key.
	ErrInvalidXPub = errors.New("engine: invalid xpub")

	// ErrXPubNotFound indicates no registered xpub matched.
	ErrXPubNotFound = errors.New("engine: xpub not found")

	// ErrNotEnoughFunds indicates the unspent balance cannot cover the
	// requested outputs plus fee.
	ErrNotEnoughFunds = errors.New("engine: not enough funds")

	// ErrInvalidOutputSpec indicates an output specification named no
	// destination (no address, script, or OP_RETURN data).
	ErrInvalidOutputSpec = errors.New("engine: invalid output specification")

	// ErrInvalidTxHex indicates the transaction hex could not be parsed.
	ErrInvalidTxHex = errors.New("engine: invalid transaction hex")

	// ErrDraftNotFound indicates no live draft matched.
	ErrDraftNotFound = errors.New("engine: draft not found")

	// ErrDraftCanceled indicates the referenced draft was canceled.
	ErrDraftCanceled = errors.New("engine: draft has been canceled")

	// ErrDraftAlreadyUsed indicates the referenced draft was already
	// completed by a recorded transaction.
	ErrDraftAlreadyUsed = errors.New("engine: draft already used")

	// ErrUTXONotFound indicates no live UTXO matched.
	ErrUTXONotFound = errors.New("engine: utxo not found")

	// ErrTransactionNotFound indicates no recorded transaction matched.
	ErrTransactionNotFound = errors.New("engine: transaction not found")

	// ErrInvalidSeed indicates an empty seed was passed to the vault.
	ErrInvalidSeed = errors.New("engine: invalid seed")

	// ErrSeedDecryptFailed indicates the vault blob could not be
	// decrypted with the given password.
	ErrSeedDecryptFailed = errors.New("engine: seed decryption failed")

	// ErrSeedChecksumMismatch indicates decryption produced a seed whose
	// checksum does not match.
	ErrSeedChecksumMismatch = errors.New("engine: seed checksum mismatch")
)

// Code returns the stable API error code for an engine error, or the
// empty string for errors without one. API layers use these codes in
// response bodies so clients are not coupled to error strings.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrNotEnoughFunds):
		return "not-enough-funds"
	case errors.Is(err, ErrDraftNotFound):
		return "draft-not-found"
	case errors.Is(err, ErrDraftCanceled):
		return "draft-canceled"
	case errors.Is(err, ErrDraftAlreadyUsed):
		return "draft-already-used"
	case errors.Is(err, ErrInvalidTxHex):
		return "invalid-tx-hex"
	case errors.Is(err, ErrUTXONotFound):
		return "utxo-not-found"
	case errors.Is(err, ErrTransactionNotFound):
		return "transaction-not-found"
	case errors.Is(err, ErrXPubNotFound):
		return "xpub-not-found"
	case errors.Is(err, ErrInvalidXPub):
		return "invalid-xpub"
	case errors.Is(err, ErrMissingXPub):
		return "missing-xpub"
	default:
		return ""
	}
}
