package merkle

import "github.com/openspv/walletengine-go/keys"

// ComputeMerkleRootFromLeaves computes a block's Merkle root from its
// full transaction hash list (internal byte order). An odd level is
// padded by duplicating its last hash before combining.
func ComputeMerkleRootFromLeaves(hashes [][]byte) ([]byte, error) {
	if len(hashes) == 0 {
		return nil, ErrEmptyLeaves
	}

	level := make([][]byte, len(hashes))
	for i, h := range hashes {
		level[i] = append([]byte(nil), h...)
	}

	for len(level) > 1 {
		if len(level)%2 != 0 {
			level = append(level, level[len(level)-1])
		}
		next := make([][]byte, len(level)/2)
		for i := 0; i < len(level); i += 2 {
			combined := make([]byte, 0, 64)
			combined = append(combined, level[i]...)
			combined = append(combined, level[i+1]...)
			next[i/2] = keys.Sha256d(combined)
		}
		level = next
	}

	return level[0], nil
}
