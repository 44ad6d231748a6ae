// Package world implements §3's entities and §4.3's deterministic
// transaction applier. World is the single process-wide instance; its
// lifecycle is init genesis -> apply* -> drop (§9 "Global state"). Tests
// must construct independent World values rather than sharing one.
package world

import (
	"sync"

	"github.com/finvault/fvl/pkg/ir"
)

// Account is lazily created on first reference and never deleted.
type Account struct {
	ETH     ir.Amount
	ERC20   map[string]ir.Amount // keyed by AssetKey(erc20 asset)
	ERC1155 map[string]ir.Amount // keyed by AssetKey(erc1155 asset)
	Nonce   uint64
}

func newAccount() *Account {
	return &Account{ERC20: map[string]ir.Amount{}, ERC1155: map[string]ir.Amount{}}
}

// System is created by a Deploy transaction and mutated only by Interact
// and OracleUpdate transactions targeting its ID. Never deleted.
type System struct {
	ID                  [32]byte
	IR                  ir.Template
	SourceYAML          string // the deployed template's original declarative text
	Deployer            ir.Address
	DeployedAt          uint64
	OracleValues        map[string]ir.Amount
	Paused              bool
	EnabledPermissions  map[string]bool
	TotalCollected      map[string]ir.Amount   // keyed by AssetKey
	Contributors        map[ir.Address]ir.Amount
}

func newSystem(id [32]byte, tpl ir.Template, source string, deployer ir.Address, deployedAt uint64) *System {
	return &System{
		ID:                 id,
		IR:                 tpl,
		SourceYAML:         source,
		Deployer:           deployer,
		DeployedAt:         deployedAt,
		OracleValues:       map[string]ir.Amount{},
		EnabledPermissions: map[string]bool{},
		TotalCollected:     map[string]ir.Amount{},
		Contributors:       map[ir.Address]ir.Amount{},
	}
}

// World holds all accounts, all deployed systems, the global ERC721
// ownership index and the admin address. LatestBlockNumber and
// LatestStateRoot are not assigned by Apply or by the sequencer; they keep
// their zero values. It has no cyclic references: Systems and Accounts
// never back-reference World (§9 "Arena-free world").
type World struct {
	mu sync.RWMutex

	Admin   ir.Address
	Accounts map[ir.Address]*Account
	Systems  map[[32]byte]*System
	ERC721   map[erc721Key]ir.Address // token -> current owner; absent = not instantiated

	LatestBlockNumber uint64
	LatestStateRoot   [32]byte

	MintedTotal map[string]ir.Amount
	BurnedTotal map[string]ir.Amount
}

// New creates a fresh genesis world. admin is the address authorized to
// call Mint (§4.3, Open Question "admin address").
func New(admin ir.Address) *World {
	return &World{
		Admin:       admin,
		Accounts:    map[ir.Address]*Account{},
		Systems:     map[[32]byte]*System{},
		ERC721:      map[erc721Key]ir.Address{},
		MintedTotal: map[string]ir.Amount{},
		BurnedTotal: map[string]ir.Amount{},
	}
}

// account returns the account for addr, creating it lazily. Callers must
// hold w.mu for writing.
func (w *World) account(addr ir.Address) *Account {
	a, ok := w.Accounts[addr]
	if !ok {
		a = newAccount()
		w.Accounts[addr] = a
	}
	return a
}

// Account returns a read-only snapshot of addr's account. Safe to call
// concurrently with the writer (§5 "consistent snapshot discipline").
func (w *World) Account(addr ir.Address) Account {
	w.mu.RLock()
	defer w.mu.RUnlock()
	a, ok := w.Accounts[addr]
	if !ok {
		return *newAccount()
	}
	return cloneAccount(a)
}

// System returns a read-only snapshot of the system with the given ID, or
// ok=false if it has never been deployed.
func (w *World) System(id [32]byte) (System, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	s, ok := w.Systems[id]
	if !ok {
		return System{}, false
	}
	return cloneSystem(s), true
}

func cloneAccount(a *Account) Account {
	out := Account{ETH: a.ETH, Nonce: a.Nonce, ERC20: map[string]ir.Amount{}, ERC1155: map[string]ir.Amount{}}
	for k, v := range a.ERC20 {
		out.ERC20[k] = v
	}
	for k, v := range a.ERC1155 {
		out.ERC1155[k] = v
	}
	return out
}

func cloneSystem(s *System) System {
	out := *s
	out.OracleValues = cloneAmountMap(s.OracleValues)
	out.EnabledPermissions = map[string]bool{}
	for k, v := range s.EnabledPermissions {
		out.EnabledPermissions[k] = v
	}
	out.TotalCollected = cloneAmountMap(s.TotalCollected)
	out.Contributors = map[ir.Address]ir.Amount{}
	for k, v := range s.Contributors {
		out.Contributors[k] = v
	}
	return out
}

func cloneAmountMap(m map[string]ir.Amount) map[string]ir.Amount {
	out := make(map[string]ir.Amount, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
