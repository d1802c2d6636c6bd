package marketplace

import (
	"strings"

	ethcommon "github.com/ethereum/go-ethereum/common"

	apperrors "github.com/novatoken/marketplace/pkg/errors"
)

// NormalizeAddress returns the canonical lowercase form of a wallet or
// contract address. Addresses are accepted in any case; comparisons and
// storage use the canonical form only.
func NormalizeAddress(field, address string) (string, error) {
	address = strings.TrimSpace(address)
	if !ethcommon.IsHexAddress(address) {
		return "", apperrors.NewValidation(field, "must be a hex address")
	}
	return strings.ToLower(address), nil
}
