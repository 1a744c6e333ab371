// Package chain holds the HTTP clients for the two external services
// the engine consumes: ARC for transaction broadcasting and the Block
// Headers Service (BHS) for Merkle root verification.
package chain

// TXStatus is an ARC transaction status code.
//
// Lifecycle: UNKNOWN -> QUEUED -> RECEIVED -> STORED ->
// ANNOUNCED_TO_NETWORK -> REQUESTED_BY_NETWORK -> SENT_TO_NETWORK ->
// ACCEPTED_BY_NETWORK -> SEEN_ON_NETWORK -> MINED, with CONFIRMED and
// REJECTED as terminal states.
type TXStatus string

const (
	StatusUnknown            TXStatus = "UNKNOWN"
	StatusQueued             TXStatus = "QUEUED"
	StatusReceived           TXStatus = "RECEIVED"
	StatusStored             TXStatus = "STORED"
	StatusAnnouncedToNetwork TXStatus = "ANNOUNCED_TO_NETWORK"
	StatusRequestedByNetwork TXStatus = "REQUESTED_BY_NETWORK"
	StatusSentToNetwork      TXStatus = "SENT_TO_NETWORK"
	StatusAcceptedByNetwork  TXStatus = "ACCEPTED_BY_NETWORK"
	StatusSeenOnNetwork      TXStatus = "SEEN_ON_NETWORK"
	StatusMined              TXStatus = "MINED"
	StatusConfirmed          TXStatus = "CONFIRMED"
	StatusRejected           TXStatus = "REJECTED"
)

// TXInfo is the ARC response body for broadcast and query calls.
type TXInfo struct {
	TxID         string   `json:"txid"`
	TXStatus     TXStatus `json:"txStatus"`
	BlockHash    string   `json:"blockHash"`
	BlockHeight  uint64   `json:"blockHeight"`
	MerklePath   string   `json:"merklePath"`
	Timestamp    string   `json:"timestamp"`
	CompetingTxs []string `json:"competingTxs"`
	ExtraInfo    string   `json:"extraInfo"`
}

// Mined reports whether the status indicates block inclusion.
func (i *TXInfo) Mined() bool {
	return i.TXStatus == StatusMined || i.TXStatus == StatusConfirmed
}

// FeeUnit is a mining fee rate: Satoshis per Bytes of transaction size.
// The network default is 1 satoshi per 1000 bytes.
type FeeUnit struct {
	Satoshis uint64 `json:"satoshis"`
	Bytes    uint64 `json:"bytes"`
}

// DefaultFeeUnit returns the 1 sat / 1000 bytes network default.
func DefaultFeeUnit() FeeUnit {
	return FeeUnit{Satoshis: 1, Bytes: 1000}
}

// FeeForSize returns the fee in satoshis for a transaction of the given
// size, rounded up, never below 1 satoshi.
func (f FeeUnit) FeeForSize(size uint64) uint64 {
	if f.Bytes == 0 {
		f = DefaultFeeUnit()
	}
	fee := (size*f.Satoshis + f.Bytes - 1) / f.Bytes
	if fee < 1 {
		fee = 1
	}
	return fee
}

// PolicyResponse is the ARC /v1/policy response body.
type PolicyResponse struct {
	Policy struct {
		MaxScriptSizePolicy uint64  `json:"maxScriptSizePolicy"`
		MaxTxSizePolicy     uint64  `json:"maxTxSizePolicy"`
		MiningFee           FeeUnit `json:"miningFee"`
	} `json:"policy"`
	Timestamp string `json:"timestamp"`
}

// ConfirmationState is a BHS Merkle root verification outcome.
type ConfirmationState string

const (
	ConfirmationConfirmed      ConfirmationState = "CONFIRMED"
	ConfirmationInvalid        ConfirmationState = "INVALID"
	ConfirmationUnableToVerify ConfirmationState = "UNABLE_TO_VERIFY"
)

// MerkleRootVerification is one root to verify against BHS.
type MerkleRootVerification struct {
	MerkleRoot  string `json:"merkleRoot"`
	BlockHeight uint64 `json:"blockHeight"`
}

// MerkleRootConfirmation is the per-root result from BHS.
type MerkleRootConfirmation struct {
	MerkleRoot   string            `json:"merkleRoot"`
	BlockHeight  uint64            `json:"blockHeight"`
	Confirmation ConfirmationState `json:"confirmation"`
}

// VerifyMerkleRootsResponse is the BHS verify endpoint response body.
type VerifyMerkleRootsResponse struct {
	ConfirmationState ConfirmationState        `json:"confirmationState"`
	Confirmations     []MerkleRootConfirmation `json:"confirmations"`
}

// AllConfirmed reports whether every submitted root was confirmed.
func (r *VerifyMerkleRootsResponse) AllConfirmed() bool {
	return r.ConfirmationState == ConfirmationConfirmed
}
