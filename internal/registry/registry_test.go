package registry

import (
	"os"
	"path/filepath"
	"testing"

	xerrors "Okto-Agent/internal/errors"
)

func TestResolveAssetAddressCaseInsensitive(t *testing.T) {
	table := Default()

	address, err := table.ResolveAssetAddress("polygon_testnet_amoy", "pol")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if address != "" {
		t.Fatalf("expected empty native address, got %q", address)
	}

	address, err = table.ResolveAssetAddress("Ethereum", "usdc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if address != "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48" {
		t.Fatalf("unexpected address: %q", address)
	}
}

func TestResolveAssetAddressUnknown(t *testing.T) {
	table := Default()

	if _, err := table.ResolveAssetAddress("DOGECHAIN", "DOGE"); !xerrors.IsCode(err, xerrors.CodeUnknownAsset) {
		t.Fatalf("expected UNKNOWN_ASSET for unknown network, got %v", err)
	}
	if _, err := table.ResolveAssetAddress("SOLANA", "PEPE"); !xerrors.IsCode(err, xerrors.CodeUnknownAsset) {
		t.Fatalf("expected UNKNOWN_ASSET for unknown symbol, got %v", err)
	}
}

func TestSupportedListsAreSortedAndDeduplicated(t *testing.T) {
	table := Default()

	networks := table.SupportedNetworks()
	if len(networks) != 8 {
		t.Fatalf("expected 8 networks, got %d", len(networks))
	}
	for i := 1; i < len(networks); i++ {
		if networks[i-1] >= networks[i] {
			t.Fatalf("networks not sorted: %v", networks)
		}
	}

	assets := table.SupportedAssets()
	seen := make(map[string]struct{})
	for _, symbol := range assets {
		if _, dup := seen[symbol]; dup {
			t.Fatalf("duplicated symbol %s in %v", symbol, assets)
		}
		seen[symbol] = struct{}{}
	}
	if _, ok := seen["USDC"]; !ok {
		t.Fatalf("expected USDC in union, got %v", assets)
	}
}

func TestLoadOverridesBuiltinNetwork(t *testing.T) {
	path := filepath.Join(t.TempDir(), "networks.yaml")
	content := `networks:
  APTOS:
    family: aptos
    assets:
      APT: ""
      USDC: "0xf22bede237a07e121b56d91a491eb7bcdfd1f5907926a9e58338f964a01b17fa"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	table, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	address, err := table.ResolveAssetAddress("APTOS", "USDC")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if address == "" {
		t.Fatalf("expected override address, got empty string")
	}

	// 未覆盖的内置网络仍然可用。
	if _, err := table.ResolveAssetAddress("SOLANA", "SOL"); err != nil {
		t.Fatalf("builtin network lost after override: %v", err)
	}
}

func TestLoadRejectsUnknownFamily(t *testing.T) {
	path := filepath.Join(t.TempDir(), "networks.yaml")
	content := `networks:
  MOONCHAIN:
    family: utxo
    assets:
      MOON: ""
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for unsupported family")
	}
}
