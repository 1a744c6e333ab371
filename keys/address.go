package keys

import "fmt"

// Network version bytes for Base58Check address and WIF encodings.
const (
	mainnetPubKeyHash = 0x00
	testnetPubKeyHash = 0x6f
	mainnetWIF        = 0x80
	testnetWIF        = 0xef
)

// AddressFromPublicKey encodes a P2PKH address from a compressed or
// uncompressed public key.
func AddressFromPublicKey(pubKey []byte, testnet bool) string {
	payload := make([]byte, 0, 21)
	if testnet {
		payload = append(payload, testnetPubKeyHash)
	} else {
		payload = append(payload, mainnetPubKeyHash)
	}
	payload = append(payload, Hash160(pubKey)...)
	return Base58CheckEncode(payload)
}

// PubKeyHashFromAddress extracts the 20-byte public key hash from a
// P2PKH address.
func PubKeyHashFromAddress(address string) ([]byte, error) {
	payload, err := Base58CheckDecode(address)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}
	if len(payload) != 21 {
		return nil, fmt.Errorf("%w: payload is %d bytes", ErrInvalidAddress, len(payload))
	}
	return payload[1:], nil
}

// ValidateAddress reports whether address is a well-formed P2PKH address
// on either network.
func ValidateAddress(address string) bool {
	payload, err := Base58CheckDecode(address)
	if err != nil {
		return false
	}
	return len(payload) == 21 && (payload[0] == mainnetPubKeyHash || payload[0] == testnetPubKeyHash)
}

// EncodeWIF encodes a 32-byte private key in Wallet Import Format.
// When compressed, a trailing 0x01 flag marks that the corresponding
// public key is the compressed form.
func EncodeWIF(privKey []byte, compressed, testnet bool) (string, error) {
	if len(privKey) != 32 {
		return "", fmt.Errorf("%w: got %d bytes", ErrInvalidPrivateKey, len(privKey))
	}
	payload := make([]byte, 0, 34)
	if testnet {
		payload = append(payload, testnetWIF)
	} else {
		payload = append(payload, mainnetWIF)
	}
	payload = append(payload, privKey...)
	if compressed {
		payload = append(payload, 0x01)
	}
	return Base58CheckEncode(payload), nil
}

// DecodeWIF decodes a WIF string, returning the 32-byte private key and
// the compressed/testnet flags.
func DecodeWIF(wif string) (privKey []byte, compressed, testnet bool, err error) {
	payload, err := Base58CheckDecode(wif)
	if err != nil {
		return nil, false, false, fmt.Errorf("%w: %w", ErrInvalidWIF, err)
	}
	if len(payload) != 33 && len(payload) != 34 {
		return nil, false, false, fmt.Errorf("%w: payload is %d bytes", ErrInvalidWIF, len(payload))
	}
	testnet = payload[0] == testnetWIF
	if !testnet && payload[0] != mainnetWIF {
		return nil, false, false, fmt.Errorf("%w: version byte 0x%02x", ErrInvalidWIF, payload[0])
	}
	if len(payload) == 34 {
		if payload[33] != 0x01 {
			return nil, false, false, fmt.Errorf("%w: bad compression flag", ErrInvalidWIF)
		}
		compressed = true
	}
	privKey = append([]byte(nil), payload[1:33]...)
	return privKey, compressed, testnet, nil
}
