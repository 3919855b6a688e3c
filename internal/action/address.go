package action

import (
	"strings"

	"Okto-Agent/internal/registry"

	"github.com/ethereum/go-ethereum/common"
	"github.com/mr-tron/base58"
)

// validRecipient 按网络的地址体系对收款地址做形式校验，拦截明显
// 写错的地址。校验不触网，也不保证地址在链上存在。
func validRecipient(family registry.Family, address string) bool {
	address = strings.TrimSpace(address)
	if address == "" {
		return false
	}
	switch family {
	case registry.FamilyEVM:
		return common.IsHexAddress(address)
	case registry.FamilySolana:
		// Solana 域名（如 winner.sol）由供应商解析，放行。
		if strings.HasSuffix(address, ".sol") {
			return true
		}
		decoded, err := base58.Decode(address)
		return err == nil && len(decoded) == 32
	case registry.FamilyAptos:
		if !strings.HasPrefix(address, "0x") {
			return false
		}
		rest := address[2:]
		if len(rest) == 0 || len(rest) > 64 {
			return false
		}
		for _, r := range rest {
			if !isHexDigit(r) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func isHexDigit(r rune) bool {
	switch {
	case r >= '0' && r <= '9':
		return true
	case r >= 'a' && r <= 'f':
		return true
	case r >= 'A' && r <= 'F':
		return true
	}
	return false
}
