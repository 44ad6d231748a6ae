package world

import (
	"sort"

	"github.com/finvault/fvl/pkg/canon"
	"github.com/finvault/fvl/pkg/ir"
)

// StateRoot computes §4.3's state root: a deterministic commitment over
// sorted accounts (with sorted balance maps), sorted systems (with sorted
// oracle and contributor maps), the admin address, and the block number
// being sealed. Map iteration order in Go is randomized, so every
// collection here is explicitly sorted before encoding — the one property
// this function exists to guarantee is that two semantically identical
// worlds produce bit-identical roots regardless of how their maps were
// built up.
func StateRoot(w *World, blockNumber uint64) [32]byte {
	w.mu.RLock()
	defer w.mu.RUnlock()

	e := canon.NewEncoder()
	e.Fixed(w.Admin[:])
	e.U64(blockNumber)

	addrs := make([]ir.Address, 0, len(w.Accounts))
	for a := range w.Accounts {
		addrs = append(addrs, a)
	}
	sort.Slice(addrs, func(i, j int) bool { return addrLess(addrs[i], addrs[j]) })
	e.Len(len(addrs))
	for _, addr := range addrs {
		e.Fixed(addr[:])
		encodeAccount(e, w.Accounts[addr])
	}

	nfts := make([]erc721Key, 0, len(w.ERC721))
	for k := range w.ERC721 {
		nfts = append(nfts, k)
	}
	sort.Slice(nfts, func(i, j int) bool { return nftKeyLess(nfts[i], nfts[j]) })
	e.Len(len(nfts))
	for _, k := range nfts {
		e.Fixed(k.Contract[:])
		e.U128(k.ID.Hi, k.ID.Lo)
		owner := w.ERC721[k]
		e.Fixed(owner[:])
	}

	ids := make([][32]byte, 0, len(w.Systems))
	for id := range w.Systems {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return hashLess(ids[i], ids[j]) })
	e.Len(len(ids))
	for _, id := range ids {
		e.Fixed(id[:])
		encodeSystem(e, w.Systems[id])
	}

	return canon.Hash(e.Bytes())
}

func encodeAccount(e *canon.Encoder, a *Account) {
	e.U128(a.ETH.Hi, a.ETH.Lo)
	e.U64(a.Nonce)
	encodeSortedAmountMap(e, a.ERC20)
	encodeSortedAmountMap(e, a.ERC1155)
}

func encodeSystem(e *canon.Encoder, s *System) {
	e.Fixed(s.Deployer[:])
	e.U64(s.DeployedAt)
	e.Bool(s.Paused)

	perms := make([]string, 0, len(s.EnabledPermissions))
	for p, on := range s.EnabledPermissions {
		if on {
			perms = append(perms, p)
		}
	}
	e.SortedStrings(perms)

	oracleNames := make([]string, 0, len(s.OracleValues))
	for n := range s.OracleValues {
		oracleNames = append(oracleNames, n)
	}
	sort.Strings(oracleNames)
	e.Len(len(oracleNames))
	for _, n := range oracleNames {
		e.String(n)
		v := s.OracleValues[n]
		e.U128(v.Hi, v.Lo)
	}

	encodeSortedAmountMap(e, s.TotalCollected)

	contributors := make([]ir.Address, 0, len(s.Contributors))
	for a := range s.Contributors {
		contributors = append(contributors, a)
	}
	sort.Slice(contributors, func(i, j int) bool { return addrLess(contributors[i], contributors[j]) })
	e.Len(len(contributors))
	for _, a := range contributors {
		e.Fixed(a[:])
		v := s.Contributors[a]
		e.U128(v.Hi, v.Lo)
	}
}

func encodeSortedAmountMap(e *canon.Encoder, m map[string]ir.Amount) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	e.Len(len(keys))
	for _, k := range keys {
		e.String(k)
		v := m[k]
		e.U128(v.Hi, v.Lo)
	}
}

func nftKeyLess(a, b erc721Key) bool {
	if a.Contract != b.Contract {
		return addrLess(a.Contract, b.Contract)
	}
	if a.ID.Hi != b.ID.Hi {
		return a.ID.Hi < b.ID.Hi
	}
	return a.ID.Lo < b.ID.Lo
}

func hashLess(a, b [32]byte) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

func addrLess(a, b ir.Address) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
