package template

import (
	"sort"

	"github.com/finvault/fvl/pkg/canon"
	"github.com/finvault/fvl/pkg/ir"
)

// Tag bytes for each closed variant. Values are part of the canonical wire
// format: changing them changes every system ID derived from a template
// using that variant, so they are append-only once shipped.
const (
	tagAccessAnyone byte = iota + 1
	tagAccessTokenHolders
	tagAccessNftHolders
	tagAccessWhitelist
	tagAccessMinBalance
)

const (
	tagAssetETH byte = iota + 1
	tagAssetERC20
	tagAssetERC721
	tagAssetERC1155
	tagAssetMultiple
)

const (
	tagConditionBalance byte = iota + 1
	tagConditionPrice
	tagConditionTime
	tagConditionHolderCount
	tagConditionTotalValue
	tagConditionCollateralRatio
	tagConditionUtilization
	tagConditionEvent
)

const (
	tagActionEnable byte = iota + 1
	tagActionDisable
	tagActionLiquidate
	tagActionMint
	tagActionBurn
	tagActionTransfer
	tagActionPause
	tagActionUnpause
	tagActionExecute
)

const (
	tagDistProportional byte = iota + 1
	tagDistEqual
	tagDistWeighted
	tagDistTiered
	tagDistQuadratic
)

const (
	tagRecipientContributors byte = iota + 1
	tagRecipientAllHolders
	tagRecipientTopN
	tagRecipientRole
	tagRecipientConditional
)

const (
	tagTimeNow byte = iota + 1
	tagTimeTimestamp
	tagTimeNone
)

const (
	tagLockDuration byte = iota + 1
	tagLockNone
)

const (
	tagVestLinear byte = iota + 1
	tagVestCliff
	tagVestGraded
	tagVestMilestone
	tagVestNone
)

// SystemID derives the 32-byte content hash of a template's canonical byte
// image: SystemID(Canonicalize(tpl)).
func SystemID(canonicalBytes []byte) [32]byte {
	return canon.Hash(canonicalBytes)
}

// Canonicalize serializes the IR deterministically: tag-then-fields for
// every variant, length-prefixed variable data, fixed-width big-endian
// integers, and byte-sorted keys for the unordered collections (oracles,
// roles). Condition lists stay in declared order — §4.3 evaluates them in
// that order, so it is semantically significant, not incidental.
func Canonicalize(tpl ir.Template) []byte {
	e := canon.NewEncoder()
	e.String(tpl.System.Name)
	encodePool(e, tpl.Pool)
	encodeRules(e, tpl.Rules)
	encodeRights(e, tpl.Rights)
	encodeTime(e, tpl.Time)
	encodeOracles(e, tpl.Oracles)
	return e.Bytes()
}

func encodePool(e *canon.Encoder, p ir.PoolSpec) {
	encodeAccessRule(e, p.Access)
	encodeAsset(e, p.Asset)
	encodeDistribution(e, p.Distribution)
	encodeRecipient(e, p.Recipients)
	e.Fixed(p.Collector[:])
	e.U128(p.MinContribution.Hi, p.MinContribution.Lo)
	e.Bool(p.MaxContribution != nil)
	if p.MaxContribution != nil {
		e.U128(p.MaxContribution.Hi, p.MaxContribution.Lo)
	}
	e.Bool(p.Cap != nil)
	if p.Cap != nil {
		e.U128(p.Cap.Hi, p.Cap.Lo)
	}
}

func encodeAccessRule(e *canon.Encoder, a ir.AccessRule) {
	switch a.Kind {
	case ir.AccessAnyone:
		e.Tag(tagAccessAnyone)
	case ir.AccessTokenHolders:
		e.Tag(tagAccessTokenHolders).Fixed(a.ERC20[:])
	case ir.AccessNftHolders:
		e.Tag(tagAccessNftHolders).Fixed(a.ERC721[:])
	case ir.AccessWhitelist:
		e.Tag(tagAccessWhitelist)
		sorted := append([]ir.Address(nil), a.Addresses...)
		sort.Slice(sorted, func(i, j int) bool { return addrLess(sorted[i], sorted[j]) })
		e.Len(len(sorted))
		for _, addr := range sorted {
			e.Fixed(addr[:])
		}
	case ir.AccessMinBalance:
		e.Tag(tagAccessMinBalance).U128(a.MinAmount.Hi, a.MinAmount.Lo).Fixed(a.Token[:])
	}
}

func encodeAsset(e *canon.Encoder, a ir.Asset) {
	switch a.Kind {
	case ir.AssetETH:
		e.Tag(tagAssetETH)
	case ir.AssetERC20:
		e.Tag(tagAssetERC20).Fixed(a.Address[:])
	case ir.AssetERC721:
		e.Tag(tagAssetERC721).Fixed(a.Address[:])
	case ir.AssetERC1155:
		e.Tag(tagAssetERC1155).Fixed(a.Address[:]).U128(a.ID.Hi, a.ID.Lo)
	case ir.AssetMultiple:
		e.Tag(tagAssetMultiple)
		e.Len(len(a.Assets))
		for _, sub := range a.Assets {
			encodeAsset(e, sub)
		}
	}
}

func encodeDistribution(e *canon.Encoder, d ir.Distribution) {
	switch d.Kind {
	case ir.DistributionProportional:
		e.Tag(tagDistProportional)
	case ir.DistributionEqual:
		e.Tag(tagDistEqual)
	case ir.DistributionWeighted:
		e.Tag(tagDistWeighted).String(d.Metric)
	case ir.DistributionTiered:
		e.Tag(tagDistTiered)
		e.Len(len(d.Thresholds))
		for _, t := range d.Thresholds {
			e.U128(t.Hi, t.Lo)
		}
	case ir.DistributionQuadratic:
		e.Tag(tagDistQuadratic)
	}
}

func encodeRecipient(e *canon.Encoder, r ir.Recipient) {
	switch r.Kind {
	case ir.RecipientContributors:
		e.Tag(tagRecipientContributors)
	case ir.RecipientAllHolders:
		e.Tag(tagRecipientAllHolders)
	case ir.RecipientTopN:
		e.Tag(tagRecipientTopN).U64(uint64(r.Count))
	case ir.RecipientRole:
		e.Tag(tagRecipientRole).String(r.Role)
	case ir.RecipientConditional:
		e.Tag(tagRecipientConditional).String(r.Expression)
	}
}

func encodeCondition(e *canon.Encoder, c ir.Condition) {
	e.Tag(byte(conditionTag(c.Kind)))
	e.String(string(c.Op))
	switch c.Kind {
	case ir.ConditionBalance, ir.ConditionHolderCount, ir.ConditionTotalValue, ir.ConditionUtilization:
		encodeAsset(e, c.Asset)
		e.U128(c.Value.Hi, c.Value.Lo)
	case ir.ConditionCollateralRatio:
		encodeAsset(e, c.Asset)
		encodeAsset(e, c.DebtAsset)
		e.U128(c.Value.Hi, c.Value.Lo)
	case ir.ConditionPrice:
		e.String(c.OracleName)
		e.U128(c.Value.Hi, c.Value.Lo)
	case ir.ConditionTime:
		e.U64(c.Timestamp)
	case ir.ConditionEvent:
		e.String(c.EventName)
	}
	encodeAction(e, c.Then)
}

func conditionTag(k ir.ConditionKind) byte {
	switch k {
	case ir.ConditionBalance:
		return tagConditionBalance
	case ir.ConditionPrice:
		return tagConditionPrice
	case ir.ConditionTime:
		return tagConditionTime
	case ir.ConditionHolderCount:
		return tagConditionHolderCount
	case ir.ConditionTotalValue:
		return tagConditionTotalValue
	case ir.ConditionCollateralRatio:
		return tagConditionCollateralRatio
	case ir.ConditionUtilization:
		return tagConditionUtilization
	case ir.ConditionEvent:
		return tagConditionEvent
	default:
		return 0
	}
}

func encodeAction(e *canon.Encoder, a ir.Action) {
	switch a.Kind {
	case ir.ActionEnable:
		e.Tag(tagActionEnable).String(a.Permission)
	case ir.ActionDisable:
		e.Tag(tagActionDisable).String(a.Permission)
	case ir.ActionLiquidate:
		e.Tag(tagActionLiquidate).Fixed(a.Target[:])
	case ir.ActionMint:
		e.Tag(tagActionMint).U128(a.Amount.Hi, a.Amount.Lo)
		encodeAsset(e, a.Asset)
		e.Fixed(a.To[:])
	case ir.ActionBurn:
		e.Tag(tagActionBurn).U128(a.Amount.Hi, a.Amount.Lo)
		encodeAsset(e, a.Asset)
		e.Fixed(a.From[:])
	case ir.ActionTransfer:
		e.Tag(tagActionTransfer).U128(a.Amount.Hi, a.Amount.Lo)
		encodeAsset(e, a.Asset)
		e.Fixed(a.From[:])
		e.Fixed(a.To[:])
	case ir.ActionPause:
		e.Tag(tagActionPause)
	case ir.ActionUnpause:
		e.Tag(tagActionUnpause)
	case ir.ActionExecute:
		e.Tag(tagActionExecute).String(a.Name)
	}
}

func encodeRules(e *canon.Encoder, r ir.RulesSpec) {
	e.Len(len(r.Conditions))
	for _, c := range r.Conditions {
		encodeCondition(e, c)
	}
}

func encodeRights(e *canon.Encoder, r ir.RightsSpec) {
	sorted := append([]ir.Role(nil), r.Roles...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	e.Len(len(sorted))
	for _, role := range sorted {
		e.String(role.Name)
		e.SortedStrings(role.Permissions)
		members := append([]ir.Address(nil), role.Members...)
		sort.Slice(members, func(i, j int) bool { return addrLess(members[i], members[j]) })
		e.Len(len(members))
		for _, m := range members {
			e.Fixed(m[:])
		}
	}
}

func encodeTime(e *canon.Encoder, t ir.TimeSpec) {
	encodeTimeBound(e, t.Start)
	encodeTimeBound(e, t.End)
	encodeLock(e, t.Locks)
	encodeVesting(e, t.Vest)
}

func encodeTimeBound(e *canon.Encoder, t ir.TimeBound) {
	switch t.Kind {
	case ir.TimeNow:
		e.Tag(tagTimeNow)
	case ir.TimeTimestamp:
		e.Tag(tagTimeTimestamp).U64(t.Value)
	case ir.TimeNone:
		e.Tag(tagTimeNone)
	}
}

func encodeLock(e *canon.Encoder, l ir.Lock) {
	switch l.Kind {
	case ir.LockDuration:
		e.Tag(tagLockDuration).U64(l.Seconds)
	case ir.LockNone:
		e.Tag(tagLockNone)
	}
}

func encodeVesting(e *canon.Encoder, v ir.Vesting) {
	switch v.Kind {
	case ir.VestingLinear:
		e.Tag(tagVestLinear).U64(v.Duration)
	case ir.VestingCliff:
		e.Tag(tagVestCliff).U64(v.Duration)
	case ir.VestingGraded:
		e.Tag(tagVestGraded)
		e.Len(len(v.Schedule))
		for _, s := range v.Schedule {
			e.U64(s)
		}
	case ir.VestingMilestone:
		e.Tag(tagVestMilestone)
		e.Len(len(v.Conditions))
		for _, c := range v.Conditions {
			encodeCondition(e, c)
		}
	case ir.VestingNone:
		e.Tag(tagVestNone)
	}
	e.Bool(v.Cliff != nil)
	if v.Cliff != nil {
		e.U64(*v.Cliff)
	}
}

func encodeOracles(e *canon.Encoder, oracles []ir.OracleDecl) {
	sorted := append([]ir.OracleDecl(nil), oracles...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	e.Len(len(sorted))
	for _, o := range sorted {
		e.String(o.Name)
		e.String(o.Type)
		e.String(o.Source)
	}
}

func addrLess(a, b ir.Address) bool {
	for i := range a {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}
