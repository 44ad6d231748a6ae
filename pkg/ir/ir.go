// Package ir holds the tagged-variant intermediate representation for
// declarative financial coordination templates. Every node is a plain value
// type: copying is defined, sharing is by reference only for performance,
// never for identity. The variant set is closed — an open "extensible
// primitive" would break canonicalization stability (see pkg/canon).
package ir

// Address is a 20-byte account/contract address, rendered as 0x + 40 lower
// hex when serialized to JSON/text but kept raw here for cheap comparisons.
type Address [20]byte

// Amount is an unsigned 128-bit integer, split into high/low 64-bit halves
// because Go has no native uint128. Arithmetic lives in pkg/world.
type Amount struct {
	Hi uint64
	Lo uint64
}

func AmountFromUint64(v uint64) Amount { return Amount{Lo: v} }

type AccessRuleKind string

const (
	AccessAnyone       AccessRuleKind = "anyone"
	AccessTokenHolders AccessRuleKind = "token_holders"
	AccessNftHolders   AccessRuleKind = "nft_holders"
	AccessWhitelist    AccessRuleKind = "whitelist"
	AccessMinBalance   AccessRuleKind = "min_balance"
)

// AccessRule gates who may contribute to or interact with a system. Only the
// fields relevant to Kind are populated.
type AccessRule struct {
	Kind      AccessRuleKind
	ERC20     Address   // TokenHolders
	ERC721    Address   // NftHolders
	Addresses []Address // Whitelist
	MinAmount Amount    // MinBalance
	Token     Address   // MinBalance
}

type AssetKind string

const (
	AssetETH      AssetKind = "eth"
	AssetERC20    AssetKind = "erc20"
	AssetERC721   AssetKind = "erc721"
	AssetERC1155  AssetKind = "erc1155"
	AssetMultiple AssetKind = "multiple"
)

// Asset identifies a fungible or non-fungible holding. For ERC721 and
// ERC1155, ID selects the token instance within Address (ERC721 ignores it
// everywhere except Transfer/Mint of a specific instance). Multiple
// composes a list of sub-assets, any of which may itself be a Multiple.
type Asset struct {
	Kind    AssetKind
	Address Address
	ID      Amount
	Assets  []Asset // Multiple
}

type ComparisonOp string

const (
	OpGT  ComparisonOp = "gt"
	OpGTE ComparisonOp = "gte"
	OpEQ  ComparisonOp = "eq"
	OpLTE ComparisonOp = "lte"
	OpLT  ComparisonOp = "lt"
)

func (op ComparisonOp) Eval(lhs, rhs int64) bool {
	switch op {
	case OpGT:
		return lhs > rhs
	case OpGTE:
		return lhs >= rhs
	case OpEQ:
		return lhs == rhs
	case OpLTE:
		return lhs <= rhs
	case OpLT:
		return lhs < rhs
	default:
		return false
	}
}

type ConditionKind string

const (
	ConditionBalance         ConditionKind = "balance"
	ConditionPrice           ConditionKind = "price"
	ConditionTime            ConditionKind = "time"
	ConditionHolderCount     ConditionKind = "holder_count"
	ConditionTotalValue      ConditionKind = "total_value"
	ConditionCollateralRatio ConditionKind = "collateral_ratio"
	ConditionUtilization     ConditionKind = "utilization"
	ConditionEvent           ConditionKind = "event"
)

// Condition is a single predicate inside a rules list. Then is the action
// applied when the predicate evaluates true during Evaluate (§4.3).
type Condition struct {
	Kind ConditionKind
	Op   ComparisonOp

	Asset Asset  // balance/total_value/collateral_ratio/utilization subject asset
	Value Amount // threshold compared against

	OracleName string // price

	Timestamp uint64 // time

	DebtAsset Asset // collateral_ratio: asset the ratio's denominator is drawn from

	EventName string // event

	Then Action
}

type ActionKind string

const (
	ActionEnable    ActionKind = "enable"
	ActionDisable   ActionKind = "disable"
	ActionLiquidate ActionKind = "liquidate"
	ActionMint      ActionKind = "mint"
	ActionBurn      ActionKind = "burn"
	ActionTransfer  ActionKind = "transfer"
	ActionPause     ActionKind = "pause"
	ActionUnpause   ActionKind = "unpause"
	ActionExecute   ActionKind = "execute"
)

// Action is a side-effecting operation triggered either by a satisfied
// Condition.Then or by an explicit Interact(Trigger) call.
type Action struct {
	Kind ActionKind

	Permission string  // Enable/Disable
	Target     Address // Liquidate
	Amount     Amount  // Mint/Burn/Transfer
	Asset      Asset   // Mint/Burn/Transfer
	To         Address // Mint/Transfer
	From       Address // Burn/Transfer
	Name       string  // Execute
}

type DistributionKind string

const (
	DistributionProportional DistributionKind = "proportional"
	DistributionEqual        DistributionKind = "equal"
	DistributionWeighted     DistributionKind = "weighted"
	DistributionTiered       DistributionKind = "tiered"
	DistributionQuadratic    DistributionKind = "quadratic"
)

// Distribution is a formula shape; it has no behavior in the IR — the
// runtime interprets it only where a template action references it.
type Distribution struct {
	Kind       DistributionKind
	Metric     string   // Weighted
	Thresholds []Amount // Tiered, strictly increasing
}

type RecipientKind string

const (
	RecipientContributors RecipientKind = "contributors"
	RecipientAllHolders   RecipientKind = "all_holders"
	RecipientTopN         RecipientKind = "top_n"
	RecipientRole         RecipientKind = "role"
	RecipientConditional  RecipientKind = "conditional"
)

type Recipient struct {
	Kind       RecipientKind
	Count      int    // TopN
	Role       string // Role
	Expression string // Conditional
}

type TimeKind string

const (
	TimeNow       TimeKind = "now"
	TimeTimestamp TimeKind = "timestamp"
	TimeNone      TimeKind = "none"
)

type TimeBound struct {
	Kind  TimeKind
	Value uint64 // Timestamp
}

type LockKind string

const (
	LockDuration LockKind = "duration"
	LockNone     LockKind = "none"
)

type Lock struct {
	Kind    LockKind
	Seconds uint64
}

type VestingKind string

const (
	VestingLinear    VestingKind = "linear"
	VestingCliff     VestingKind = "cliff"
	VestingGraded    VestingKind = "graded"
	VestingMilestone VestingKind = "milestone"
	VestingNone      VestingKind = "none"
)

type Vesting struct {
	Kind       VestingKind
	Duration   uint64      // Linear, Cliff
	Schedule   []uint64    // Graded, strictly increasing
	Conditions []Condition // Milestone
	Cliff      *uint64     // optional cliff duration layered on any kind
}

// OracleDecl declares a named, system-scoped numeric value an operator can
// push via OracleUpdate. Type and Source are free-form descriptive strings.
type OracleDecl struct {
	Name   string
	Type   string
	Source string
}

// Role groups a set of permission names and the addresses that hold them.
// The spec's §4.1 grammar for `rights` names roles and their permissions
// but does not say how an address comes to hold a role; this IR resolves
// that by giving each role an explicit member whitelist, the same shape
// §4.1 already uses for AccessWhitelist (see DESIGN.md Open Question
// decisions). The deployer implicitly holds every role in addition to
// whoever is listed here (§4.3 Interact/Trigger "... or the sender is the
// deployer").
type Role struct {
	Name        string
	Permissions []string
	Members     []Address
}

type SystemSpec struct {
	Name string
}

// PoolSpec describes the asset a system coordinates around: who may
// contribute (Access), what asset is pooled (Asset), how it is split
// (Distribution, Recipients) and where liquidations land (Collector).
// MinContribution/MaxContribution/Cap bound individual and aggregate
// collection into Collector, the Go shape of a Pool's collect limits.
type PoolSpec struct {
	Access       AccessRule
	Asset        Asset
	Distribution Distribution
	Recipients   Recipient
	Collector    Address

	MinContribution Amount  // zero means no floor
	MaxContribution *Amount // nil means no per-contribution ceiling
	Cap             *Amount // nil means no aggregate ceiling on TotalCollected
}

type RulesSpec struct {
	Conditions []Condition
}

type RightsSpec struct {
	Roles []Role
}

type TimeSpec struct {
	Start TimeBound
	End   TimeBound
	Locks Lock
	Vest  Vesting
}

// Template is the root of the parsed IR, the direct product of §4.2's
// loader and the sole input to canonicalization.
type Template struct {
	System  SystemSpec
	Pool    PoolSpec
	Rules   RulesSpec
	Rights  RightsSpec
	Time    TimeSpec
	Oracles []OracleDecl
}
