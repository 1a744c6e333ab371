package chain

import "context"

// MockBroadcaster is a test double for Broadcaster.
// All function fields must be set before the corresponding method is called.
type MockBroadcaster struct {
	BroadcastFn        func(ctx context.Context, rawHex string) (*TXInfo, error)
	QueryTransactionFn func(ctx context.Context, txid string) (*TXInfo, error)
	GetFeeUnitFn       func(ctx context.Context) (FeeUnit, error)
}

func (m *MockBroadcaster) Broadcast(ctx context.Context, rawHex string) (*TXInfo, error) {
	return m.BroadcastFn(ctx, rawHex)
}
func (m *MockBroadcaster) QueryTransaction(ctx context.Context, txid string) (*TXInfo, error) {
	return m.QueryTransactionFn(ctx, txid)
}
func (m *MockBroadcaster) GetFeeUnit(ctx context.Context) (FeeUnit, error) {
	return m.GetFeeUnitFn(ctx)
}

// MockHeaderOracle is a test double for HeaderOracle.
type MockHeaderOracle struct {
	VerifyMerkleRootsFn func(ctx context.Context, roots []MerkleRootVerification) (*VerifyMerkleRootsResponse, error)
}

func (m *MockHeaderOracle) VerifyMerkleRoots(ctx context.Context, roots []MerkleRootVerification) (*VerifyMerkleRootsResponse, error) {
	return m.VerifyMerkleRootsFn(ctx, roots)
}
