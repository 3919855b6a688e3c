package registry

import (
	"fmt"
	"os"
	"sort"
	"strings"

	xerrors "Okto-Agent/internal/errors"

	"gopkg.in/yaml.v3"
)

// Family 描述网络的地址体系，用于收款地址的形式校验。
type Family string

const (
	FamilyEVM    Family = "evm"
	FamilySolana Family = "solana"
	FamilyAptos  Family = "aptos"
)

// Network 描述单条链及其支持的资产。地址为空字符串表示原生资产，
// 没有合约或铸币地址，调用方不得将其视为错误。
type Network struct {
	Family Family
	Assets map[string]string
}

// Table 是进程级只读的网络资产登记表。
type Table struct {
	networks map[string]Network
}

// defaultNetworks 覆盖了接入的全部链。符号与网络名统一使用大写。
var defaultNetworks = map[string]Network{
	"ETHEREUM": {
		Family: FamilyEVM,
		Assets: map[string]string{
			"ETH":  "",
			"USDC": "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48",
			"USDT": "0xdAC17F958D2ee523a2206206994597C13D831ec7",
		},
	},
	"POLYGON": {
		Family: FamilyEVM,
		Assets: map[string]string{
			"POL":  "",
			"USDC": "0x3c499c542cEF5E3811e1192ce70d8cC03d5c3359",
			"USDT": "0xc2132D05D31c914a87C6611C10748AEb04B58e8F",
		},
	},
	"POLYGON_TESTNET_AMOY": {
		Family: FamilyEVM,
		Assets: map[string]string{
			"POL": "",
		},
	},
	"BASE": {
		Family: FamilyEVM,
		Assets: map[string]string{
			"ETH":  "",
			"USDC": "0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913",
		},
	},
	"BASE_TESTNET": {
		Family: FamilyEVM,
		Assets: map[string]string{
			"ETH":  "",
			"USDC": "0x036CbD53842c5426634e7929541eC2318f3dCF7e",
		},
	},
	"SOLANA": {
		Family: FamilySolana,
		Assets: map[string]string{
			"SOL":  "",
			"USDC": "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v",
			"USDT": "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB",
		},
	},
	"SOLANA_DEVNET": {
		Family: FamilySolana,
		Assets: map[string]string{
			"SOL":  "",
			"USDC": "4zMMC9srt5Ri5X14GAgXhaHii3GnPAEERYPJgZJDncDU",
		},
	},
	"APTOS": {
		Family: FamilyAptos,
		Assets: map[string]string{
			"APT": "",
		},
	},
}

// Default 返回内置的登记表。
func Default() *Table {
	return &Table{networks: cloneNetworks(defaultNetworks)}
}

// fileDefinitions 对应 YAML 覆盖文件的结构。
type fileDefinitions struct {
	Networks map[string]struct {
		Family string            `yaml:"family"`
		Assets map[string]string `yaml:"assets"`
	} `yaml:"networks"`
}

// Load 解析 YAML 覆盖文件并与内置登记表合并。文件中的网络会整体替换
// 同名的内置条目。路径为空时直接返回内置登记表。
func Load(path string) (*Table, error) {
	if strings.TrimSpace(path) == "" {
		return Default(), nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取网络配置失败: %w", err)
	}

	var defs fileDefinitions
	if err := yaml.Unmarshal(content, &defs); err != nil {
		return nil, fmt.Errorf("解析网络配置失败: %w", err)
	}

	networks := cloneNetworks(defaultNetworks)
	for name, def := range defs.Networks {
		family := Family(strings.ToLower(strings.TrimSpace(def.Family)))
		switch family {
		case FamilyEVM, FamilySolana, FamilyAptos:
		case "":
			family = FamilyEVM
		default:
			return nil, fmt.Errorf("网络 %s 使用了不支持的地址体系 %s", name, def.Family)
		}
		assets := make(map[string]string, len(def.Assets))
		for symbol, address := range def.Assets {
			assets[strings.ToUpper(strings.TrimSpace(symbol))] = strings.TrimSpace(address)
		}
		networks[strings.ToUpper(strings.TrimSpace(name))] = Network{Family: family, Assets: assets}
	}
	return &Table{networks: networks}, nil
}

// ResolveAssetAddress 返回指定网络上资产符号对应的合约地址。查找前会将
// 网络名与符号统一转为大写。原生资产返回空字符串。
func (t *Table) ResolveAssetAddress(network, symbol string) (string, error) {
	if t == nil {
		return "", xerrors.New(xerrors.CodeInitializationFailure, "网络登记表未初始化")
	}
	networkKey := strings.ToUpper(strings.TrimSpace(network))
	entry, ok := t.networks[networkKey]
	if !ok {
		return "", xerrors.New(xerrors.CodeUnknownAsset, fmt.Sprintf("未收录的网络 %s", network),
			xerrors.WithMetadata("network", network))
	}
	address, ok := entry.Assets[strings.ToUpper(strings.TrimSpace(symbol))]
	if !ok {
		return "", xerrors.New(xerrors.CodeUnknownAsset, fmt.Sprintf("网络 %s 不支持资产 %s", networkKey, symbol),
			xerrors.WithMetadata("network", networkKey),
			xerrors.WithMetadata("symbol", symbol))
	}
	return address, nil
}

// NetworkFamily 返回网络所属的地址体系。
func (t *Table) NetworkFamily(network string) (Family, error) {
	if t == nil {
		return "", xerrors.New(xerrors.CodeInitializationFailure, "网络登记表未初始化")
	}
	entry, ok := t.networks[strings.ToUpper(strings.TrimSpace(network))]
	if !ok {
		return "", xerrors.New(xerrors.CodeUnknownAsset, fmt.Sprintf("未收录的网络 %s", network))
	}
	return entry.Family, nil
}

// SupportedNetworks 返回全部网络名，按字典序排列，供提示词模板使用。
func (t *Table) SupportedNetworks() []string {
	if t == nil {
		return nil
	}
	names := make([]string, 0, len(t.networks))
	for name := range t.networks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SupportedAssets 返回所有网络资产符号的去重并集，按字典序排列。
func (t *Table) SupportedAssets() []string {
	if t == nil {
		return nil
	}
	seen := make(map[string]struct{})
	for _, entry := range t.networks {
		for symbol := range entry.Assets {
			seen[symbol] = struct{}{}
		}
	}
	symbols := make([]string, 0, len(seen))
	for symbol := range seen {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	return symbols
}

func cloneNetworks(src map[string]Network) map[string]Network {
	dst := make(map[string]Network, len(src))
	for name, entry := range src {
		assets := make(map[string]string, len(entry.Assets))
		for symbol, address := range entry.Assets {
			assets[symbol] = address
		}
		dst[name] = Network{Family: entry.Family, Assets: assets}
	}
	return dst
}
