package extract

import (
	"encoding/json"
	"strings"
	"testing"

	xerrors "Okto-Agent/internal/errors"
	"Okto-Agent/internal/registry"
)

func TestDecodeTransferNormalizesFields(t *testing.T) {
	raw := json.RawMessage(`{
		"network": "polygon_testnet_amoy",
		"receivingAddress": "0xF638D541943213D42751F6BFa323ebe6e0fbEaA1",
		"transferAmount": 0.01,
		"assetId": "pol"
	}`)

	details, err := DecodeTransfer(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if details.Network != "POLYGON_TESTNET_AMOY" || details.AssetID != "POL" {
		t.Fatalf("fields not upper-cased: %+v", details)
	}
	if details.TransferAmount.String() != "0.01" {
		t.Fatalf("unexpected amount: %s", details.TransferAmount)
	}
}

func TestDecodeTransferRejectsMalformedObjects(t *testing.T) {
	cases := []string{
		`not json`,
		`{"network":"SOLANA","transferAmount":1,"assetId":"SOL"}`,
		`{"network":"SOLANA","receivingAddress":"winner.sol","transferAmount":0,"assetId":"SOL"}`,
	}
	for _, raw := range cases {
		if _, err := DecodeTransfer(json.RawMessage(raw)); !xerrors.IsCode(err, xerrors.CodeSchemaValidation) {
			t.Fatalf("DecodeTransfer(%s): expected SCHEMA_VALIDATION, got %v", raw, err)
		}
	}
}

func TestDecodeSwapDefaultsSlippage(t *testing.T) {
	raw := json.RawMessage(`{"network":"SOLANA","fromToken":"SOL","toToken":"USDC","amount":1}`)

	details, err := DecodeSwap(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if details.Slippage == nil || details.Slippage.String() != "1" {
		t.Fatalf("expected default slippage 1, got %+v", details.Slippage)
	}
}

func TestDecodeSwapRejectsSameAssetAndBadSlippage(t *testing.T) {
	sameAsset := json.RawMessage(`{"network":"SOLANA","fromToken":"SOL","toToken":"sol","amount":1}`)
	if _, err := DecodeSwap(sameAsset); !xerrors.IsCode(err, xerrors.CodeSchemaValidation) {
		t.Fatalf("expected SCHEMA_VALIDATION for same-asset swap, got %v", err)
	}

	badSlippage := json.RawMessage(`{"network":"SOLANA","fromToken":"SOL","toToken":"USDC","amount":1,"slippage":150}`)
	if _, err := DecodeSwap(badSlippage); !xerrors.IsCode(err, xerrors.CodeSchemaValidation) {
		t.Fatalf("expected SCHEMA_VALIDATION for slippage > 100, got %v", err)
	}

	zeroSlippage := json.RawMessage(`{"network":"SOLANA","fromToken":"SOL","toToken":"USDC","amount":1,"slippage":0}`)
	if _, err := DecodeSwap(zeroSlippage); !xerrors.IsCode(err, xerrors.CodeSchemaValidation) {
		t.Fatalf("expected SCHEMA_VALIDATION for zero slippage, got %v", err)
	}
}

func TestRenderedPromptsCarryRegistryLists(t *testing.T) {
	table := registry.Default()

	prompt := RenderTransferPrompt(table, []string{"send 1.5 SOL to winner.sol"})
	if !strings.Contains(prompt, "POLYGON_TESTNET_AMOY") {
		t.Fatalf("transfer prompt missing network list:\n%s", prompt)
	}
	if !strings.Contains(prompt, "send 1.5 SOL to winner.sol") {
		t.Fatalf("transfer prompt missing recent messages:\n%s", prompt)
	}

	prompt = RenderSwapPrompt(table, nil)
	if !strings.Contains(prompt, "USDC") {
		t.Fatalf("swap prompt missing asset list:\n%s", prompt)
	}
	if !strings.Contains(prompt, "(none)") {
		t.Fatalf("swap prompt missing empty-context marker:\n%s", prompt)
	}
}
