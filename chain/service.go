package chain

import "context"

// Broadcaster submits transactions to the network and reports their
// status. The production implementation is ARCClient.
type Broadcaster interface {
	// Broadcast submits a raw transaction hex and returns the initial
	// status reported by the service.
	Broadcast(ctx context.Context, rawHex string) (*TXInfo, error)

	// QueryTransaction returns the current status of a txid.
	QueryTransaction(ctx context.Context, txid string) (*TXInfo, error)

	// GetFeeUnit returns the current mining fee policy.
	GetFeeUnit(ctx context.Context) (FeeUnit, error)
}

// HeaderOracle verifies Merkle roots against an external longest-chain
// view. The production implementation is BHSClient.
type HeaderOracle interface {
	VerifyMerkleRoots(ctx context.Context, roots []MerkleRootVerification) (*VerifyMerkleRootsResponse, error)
}
