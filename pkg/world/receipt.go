package world

import (
	"github.com/finvault/fvl/pkg/fvlerrors"
	"github.com/finvault/fvl/pkg/ir"
)

type EventKind string

const (
	EventDeployed           EventKind = "deployed"
	EventRedeployed         EventKind = "redeployed"
	EventPermissionEnabled  EventKind = "permission_enabled"
	EventPermissionDisabled EventKind = "permission_disabled"
	EventTransferred        EventKind = "transferred"
	EventMinted             EventKind = "minted"
	EventBurned             EventKind = "burned"
	EventLiquidated         EventKind = "liquidated"
	EventPaused             EventKind = "paused"
	EventUnpaused           EventKind = "unpaused"
	EventExecuted           EventKind = "executed"
	EventOracleUpdated      EventKind = "oracle_updated"
)

// Event records one observable effect of a transaction. As with
// Transaction, only the fields relevant to Kind are populated.
type Event struct {
	Kind     EventKind
	SystemID [32]byte

	Permission string
	From       ir.Address
	To         ir.Address
	Amount     ir.Amount
	Asset      ir.Asset
	Name       string
	OracleName string
}

// Receipt is produced by Apply for every transaction that passes the
// nonce pre-flight check, whether or not its effects ultimately succeed.
type Receipt struct {
	TxHash  [32]byte
	Block   uint64
	Success bool
	Events  []Event
	Err     *fvlerrors.Error
}
