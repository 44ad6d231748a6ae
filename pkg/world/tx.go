package world

import "github.com/finvault/fvl/pkg/ir"

type TxKind string

const (
	TxDeploy       TxKind = "deploy"
	TxTransfer     TxKind = "transfer"
	TxMint         TxKind = "mint"
	TxInteract     TxKind = "interact"
	TxOracleUpdate TxKind = "oracle_update"
)

type InteractMode string

const (
	InteractEvaluate InteractMode = "evaluate"
	InteractTrigger  InteractMode = "trigger"
	InteractBoth     InteractMode = "both"
)

// Transaction is constructed by the sequencer and is immutable once built.
// Only the fields relevant to Kind are populated, mirroring the IR's own
// tagged-variant shape.
type Transaction struct {
	Kind   TxKind
	Sender ir.Address
	Nonce  uint64

	TemplateText []byte // Deploy

	From   ir.Address // Transfer (must equal Sender)
	To     ir.Address // Transfer, Mint
	Amount ir.Amount  // Transfer, Mint
	Asset  ir.Asset   // Transfer, Mint

	SystemID   [32]byte     // Interact, OracleUpdate
	Mode       InteractMode // Interact
	ActionName string       // Interact (Trigger/Both)

	OracleName  string    // OracleUpdate
	OracleValue ir.Amount // OracleUpdate
}
