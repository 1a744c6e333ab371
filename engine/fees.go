package engine

import "github.com/openspv/walletengine-go/chain"

// Standard size assumptions for fee estimation: a signed P2PKH input,
// a P2PKH output, and the fixed per-transaction overhead (version,
// counts, locktime).
const (
	inputSize  = 148
	outputSize = 34
	txOverhead = 10
)

// EstimateFee returns the fee for a transaction with the given input
// and output counts at the given fee rate, assuming standard P2PKH
// sizes.
func EstimateFee(feeUnit chain.FeeUnit, inputs, outputs int) uint64 {
	size := txOverhead + inputs*inputSize + outputs*outputSize
	return feeUnit.FeeForSize(uint64(size))
}
