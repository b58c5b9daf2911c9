package ethereum

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/gabapcia/pegvault/internal/pkg/types"

	"golang.org/x/crypto/sha3"
)

// abiWordSize is the size of one ABI-encoded word, in hex characters.
const abiWordSize = 64

// methodID returns the 4-byte selector of a contract method, derived from
// the keccak-256 hash of its canonical signature (e.g. "redeem(uint256)").
func methodID(signature string) string {
	hash := sha3.NewLegacyKeccak256()
	hash.Write([]byte(signature))
	return fmt.Sprintf("%x", hash.Sum(nil)[:4])
}

// encodeUint256 ABI-encodes an unsigned integer as one 32-byte word.
func encodeUint256(v *big.Int) string {
	return fmt.Sprintf("%064x", v)
}

// encodeAddress ABI-encodes a "0x"-prefixed address as one left-padded
// 32-byte word. Anything longer than a word cannot be padded and is rejected.
func encodeAddress(address string) (string, error) {
	trimmed := strings.ToLower(strings.TrimPrefix(strings.TrimPrefix(address, "0x"), "0X"))
	if len(trimmed) > abiWordSize {
		return "", fmt.Errorf("address %q does not fit a 32-byte word", address)
	}
	return strings.Repeat("0", abiWordSize-len(trimmed)) + trimmed, nil
}

// callData assembles the data payload of a contract call: the method
// selector followed by the ABI-encoded argument words.
func callData(signature string, words ...string) types.Hex {
	return types.Hex("0x" + methodID(signature) + strings.Join(words, ""))
}

// word extracts the n-th 32-byte word from an ABI-encoded call result.
func word(result types.Hex, n int) (types.Hex, error) {
	encoded := strings.TrimPrefix(string(result), "0x")
	if len(encoded) < (n+1)*abiWordSize {
		return "", fmt.Errorf("call result too short: want word %d of %q", n, result)
	}
	return types.Hex("0x" + encoded[n*abiWordSize:(n+1)*abiWordSize]), nil
}

// decodeUint256 decodes the n-th result word as an unsigned integer.
func decodeUint256(result types.Hex, n int) (*big.Int, error) {
	w, err := word(result, n)
	if err != nil {
		return nil, err
	}
	return w.Big(), nil
}

// decodeBool decodes the n-th result word as a boolean.
func decodeBool(result types.Hex, n int) (bool, error) {
	w, err := word(result, n)
	if err != nil {
		return false, err
	}
	return w.Big().Sign() != 0, nil
}
