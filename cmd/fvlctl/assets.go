package main

import (
	"fmt"
	"strings"
)

// parseAssetArg parses §6's asset identifier grammar: ETH, ERC20:0x…,
// ERC721:0x…. ERC1155/Multiple have no single-token CLI form and are only
// reachable via the JSON body accepted by the daemon directly.
func parseAssetArg(s string) (kind, address string, err error) {
	parts := strings.SplitN(s, ":", 2)
	switch strings.ToUpper(parts[0]) {
	case "ETH":
		return "eth", "", nil
	case "ERC20":
		if len(parts) != 2 {
			return "", "", fmt.Errorf("asset %q: ERC20 requires an address, e.g. ERC20:0x...", s)
		}
		return "erc20", parts[1], nil
	case "ERC721":
		if len(parts) != 2 {
			return "", "", fmt.Errorf("asset %q: ERC721 requires an address, e.g. ERC721:0x...", s)
		}
		return "erc721", parts[1], nil
	default:
		return "", "", fmt.Errorf("unrecognized asset %q: expected ETH, ERC20:0x... or ERC721:0x...", s)
	}
}

func assetRequestArg(s string) (map[string]any, error) {
	kind, addr, err := parseAssetArg(s)
	if err != nil {
		return nil, err
	}
	return map[string]any{"kind": kind, "address": addr}, nil
}
