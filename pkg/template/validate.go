package template

import (
	"fmt"

	"github.com/finvault/fvl/pkg/fvlerrors"
	"github.com/finvault/fvl/pkg/ir"
)

// validate enforces §4.2's syntactic and semantic invariants and builds the
// typed IR. It never mutates raw; every field is read once and converted.
func validate(raw rawTemplate) (ir.Template, error) {
	var out ir.Template

	if err := requireSection(raw.System.Name != "", "system"); err != nil {
		return out, err
	}
	name := normalizeName(raw.System.Name)
	if !nameRE.MatchString(name) {
		return out, fvlerrors.WithPath(fvlerrors.KindValidationError, "system.name", "name must be 1-64 alphanumeric/space characters")
	}
	out.System.Name = name

	oracleNames := map[string]bool{}
	out.Oracles = make([]ir.OracleDecl, 0, len(raw.Oracles))
	for i, o := range raw.Oracles {
		if o.Name == "" {
			return out, fvlerrors.WithPath(fvlerrors.KindValidationError, pathf("oracles[%d].name", i), "oracle name is required")
		}
		if oracleNames[o.Name] {
			return out, fvlerrors.WithPath(fvlerrors.KindValidationError, pathf("oracles[%d].name", i), "duplicate oracle name")
		}
		oracleNames[o.Name] = true
		out.Oracles = append(out.Oracles, ir.OracleDecl{Name: o.Name, Type: o.Type, Source: o.Source})
	}

	pool, err := validatePool(raw.Pool)
	if err != nil {
		return out, err
	}
	out.Pool = pool

	roleNames := map[string]bool{}
	out.Rights.Roles = make([]ir.Role, 0, len(raw.Rights.Roles))
	declaredPermissions := map[string]bool{}
	for i, r := range raw.Rights.Roles {
		if !identRE.MatchString(r.Name) {
			return out, fvlerrors.WithPath(fvlerrors.KindValidationError, pathf("rights.roles[%d].name", i), "role name must be alphanumeric/underscore, <=64 chars")
		}
		if reservedRoleNames[r.Name] {
			return out, fvlerrors.WithPath(fvlerrors.KindValidationError, pathf("rights.roles[%d].name", i), "role name is reserved")
		}
		if roleNames[r.Name] {
			return out, fvlerrors.WithPath(fvlerrors.KindValidationError, pathf("rights.roles[%d].name", i), "duplicate role name")
		}
		roleNames[r.Name] = true
		perms := make([]string, 0, len(r.Permissions))
		for j, p := range r.Permissions {
			if !identRE.MatchString(p) {
				return out, fvlerrors.WithPath(fvlerrors.KindValidationError, pathf("rights.roles[%d].permissions[%d]", i, j), "permission name must be alphanumeric/underscore, <=64 chars")
			}
			declaredPermissions[p] = true
			perms = append(perms, p)
		}
		members := make([]ir.Address, 0, len(r.Members))
		for j, m := range r.Members {
			addr, err := parseAddressField(pathf("rights.roles[%d].members[%d]", i, j), m)
			if err != nil {
				return out, err
			}
			members = append(members, addr)
		}
		out.Rights.Roles = append(out.Rights.Roles, ir.Role{Name: r.Name, Permissions: perms, Members: members})
	}

	rules, err := validateRules(raw.Rules, oracleNames, declaredPermissions)
	if err != nil {
		return out, err
	}
	out.Rules = rules

	timeSpec, err := validateTime(raw.Time)
	if err != nil {
		return out, err
	}
	out.Time = timeSpec

	return out, nil
}

func validatePool(raw rawPool) (ir.PoolSpec, error) {
	var out ir.PoolSpec
	access, err := validateAccessRule("pool.access", raw.Access)
	if err != nil {
		return out, err
	}
	out.Access = access

	asset, err := validateAsset("pool.asset", raw.Asset)
	if err != nil {
		return out, err
	}
	out.Asset = asset

	dist, err := validateDistribution("pool.distribution", raw.Distribution)
	if err != nil {
		return out, err
	}
	out.Distribution = dist

	recipient, err := validateRecipient("pool.recipients", raw.Recipients)
	if err != nil {
		return out, err
	}
	out.Recipients = recipient

	if raw.Collector != "" {
		addr, err := parseAddressField("pool.collector", raw.Collector)
		if err != nil {
			return out, err
		}
		out.Collector = addr
	}

	if raw.MinContribution != "" {
		min, err := parseAmount("pool.min_contribution", raw.MinContribution)
		if err != nil {
			return out, err
		}
		out.MinContribution = min
	}
	if raw.MaxContribution != "" {
		max, err := parseAmount("pool.max_contribution", raw.MaxContribution)
		if err != nil {
			return out, err
		}
		out.MaxContribution = &max
	}
	if raw.Cap != "" {
		cap, err := parseAmount("pool.cap", raw.Cap)
		if err != nil {
			return out, err
		}
		out.Cap = &cap
	}
	return out, nil
}

func validateAccessRule(path string, raw rawAccessRule) (ir.AccessRule, error) {
	var out ir.AccessRule
	switch ir.AccessRuleKind(raw.Kind) {
	case ir.AccessAnyone:
		out.Kind = ir.AccessAnyone
	case ir.AccessTokenHolders:
		addr, err := parseAddressField(path+".erc20", raw.ERC20)
		if err != nil {
			return out, err
		}
		out.Kind = ir.AccessTokenHolders
		out.ERC20 = addr
	case ir.AccessNftHolders:
		addr, err := parseAddressField(path+".erc721", raw.ERC721)
		if err != nil {
			return out, err
		}
		out.Kind = ir.AccessNftHolders
		out.ERC721 = addr
	case ir.AccessWhitelist:
		addrs := make([]ir.Address, 0, len(raw.Addresses))
		for i, a := range raw.Addresses {
			addr, err := parseAddressField(pathf("%s.addresses[%d]", path, i), a)
			if err != nil {
				return out, err
			}
			addrs = append(addrs, addr)
		}
		out.Kind = ir.AccessWhitelist
		out.Addresses = addrs
	case ir.AccessMinBalance:
		amt, err := parseAmount(path+".min_amount", raw.MinAmount)
		if err != nil {
			return out, err
		}
		tok, err := parseAddressField(path+".token", raw.Token)
		if err != nil {
			return out, err
		}
		out.Kind = ir.AccessMinBalance
		out.MinAmount = amt
		out.Token = tok
	default:
		return out, fvlerrors.WithPath(fvlerrors.KindValidationError, path+".kind", "unknown access rule kind: "+raw.Kind)
	}
	return out, nil
}

func validateAsset(path string, raw rawAsset) (ir.Asset, error) {
	var out ir.Asset
	switch ir.AssetKind(raw.Kind) {
	case ir.AssetETH:
		out.Kind = ir.AssetETH
	case ir.AssetERC20:
		addr, err := parseAddressField(path+".address", raw.Address)
		if err != nil {
			return out, err
		}
		out.Kind = ir.AssetERC20
		out.Address = addr
	case ir.AssetERC721:
		addr, err := parseAddressField(path+".address", raw.Address)
		if err != nil {
			return out, err
		}
		out.Kind = ir.AssetERC721
		out.Address = addr
	case ir.AssetERC1155:
		addr, err := parseAddressField(path+".address", raw.Address)
		if err != nil {
			return out, err
		}
		id, err := parseAmount(path+".id", raw.ID)
		if err != nil {
			return out, err
		}
		out.Kind = ir.AssetERC1155
		out.Address = addr
		out.ID = id
	case ir.AssetMultiple:
		assets := make([]ir.Asset, 0, len(raw.Assets))
		for i, a := range raw.Assets {
			sub, err := validateAsset(pathf("%s.assets[%d]", path, i), a)
			if err != nil {
				return out, err
			}
			assets = append(assets, sub)
		}
		out.Kind = ir.AssetMultiple
		out.Assets = assets
	default:
		return out, fvlerrors.WithPath(fvlerrors.KindValidationError, path+".kind", "unknown asset kind: "+raw.Kind)
	}
	return out, nil
}

func validateDistribution(path string, raw rawDistribution) (ir.Distribution, error) {
	var out ir.Distribution
	switch ir.DistributionKind(raw.Kind) {
	case ir.DistributionProportional:
		out.Kind = ir.DistributionProportional
	case ir.DistributionEqual:
		out.Kind = ir.DistributionEqual
	case ir.DistributionWeighted:
		if raw.Metric == "" {
			return out, fvlerrors.WithPath(fvlerrors.KindValidationError, path+".metric", "weighted distribution requires a metric")
		}
		out.Kind = ir.DistributionWeighted
		out.Metric = raw.Metric
	case ir.DistributionTiered:
		thresholds := make([]ir.Amount, 0, len(raw.Thresholds))
		for i, t := range raw.Thresholds {
			amt, err := parseAmount(pathf("%s.thresholds[%d]", path, i), t)
			if err != nil {
				return out, err
			}
			if i > 0 && amountCmp(thresholds[i-1], amt) >= 0 {
				return out, fvlerrors.WithPath(fvlerrors.KindValidationError, pathf("%s.thresholds[%d]", path, i), "tiered thresholds must be strictly increasing")
			}
			thresholds = append(thresholds, amt)
		}
		out.Kind = ir.DistributionTiered
		out.Thresholds = thresholds
	case ir.DistributionQuadratic:
		out.Kind = ir.DistributionQuadratic
	default:
		return out, fvlerrors.WithPath(fvlerrors.KindValidationError, path+".kind", "unknown distribution kind: "+raw.Kind)
	}
	return out, nil
}

func validateRecipient(path string, raw rawRecipient) (ir.Recipient, error) {
	var out ir.Recipient
	switch ir.RecipientKind(raw.Kind) {
	case ir.RecipientContributors:
		out.Kind = ir.RecipientContributors
	case ir.RecipientAllHolders:
		out.Kind = ir.RecipientAllHolders
	case ir.RecipientTopN:
		if raw.Count <= 0 {
			return out, fvlerrors.WithPath(fvlerrors.KindValidationError, path+".count", "top_n recipients require a positive count")
		}
		out.Kind = ir.RecipientTopN
		out.Count = raw.Count
	case ir.RecipientRole:
		if raw.Role == "" {
			return out, fvlerrors.WithPath(fvlerrors.KindValidationError, path+".role", "role recipients require a role name")
		}
		out.Kind = ir.RecipientRole
		out.Role = raw.Role
	case ir.RecipientConditional:
		if raw.Expression == "" {
			return out, fvlerrors.WithPath(fvlerrors.KindValidationError, path+".expression", "conditional recipients require an expression")
		}
		out.Kind = ir.RecipientConditional
		out.Expression = raw.Expression
	default:
		return out, fvlerrors.WithPath(fvlerrors.KindValidationError, path+".kind", "unknown recipient kind: "+raw.Kind)
	}
	return out, nil
}

func validateRules(raw rawRules, oracleNames map[string]bool, declaredPermissions map[string]bool) (ir.RulesSpec, error) {
	var out ir.RulesSpec
	out.Conditions = make([]ir.Condition, 0, len(raw.Conditions))
	for i, c := range raw.Conditions {
		cond, err := validateCondition(pathf("rules.conditions[%d]", i), c, oracleNames)
		if err != nil {
			return out, err
		}
		if cond.Then.Kind == ir.ActionEnable || cond.Then.Kind == ir.ActionDisable {
			if !declaredPermissions[cond.Then.Permission] {
				return out, fvlerrors.WithPath(fvlerrors.KindValidationError, pathf("rules.conditions[%d].then.permission", i), "permission not declared in any role")
			}
		}
		out.Conditions = append(out.Conditions, cond)
	}
	return out, nil
}

func validateCondition(path string, raw rawCondition, oracleNames map[string]bool) (ir.Condition, error) {
	var out ir.Condition
	op := ir.ComparisonOp(raw.Op)
	switch ir.ConditionKind(raw.Kind) {
	case ir.ConditionBalance, ir.ConditionHolderCount, ir.ConditionTotalValue, ir.ConditionUtilization:
		if err := validateOp(path, op); err != nil {
			return out, err
		}
		asset, err := validateAsset(path+".asset", raw.Asset)
		if err != nil {
			return out, err
		}
		value, err := parseAmount(path+".value", raw.Value)
		if err != nil {
			return out, err
		}
		out.Kind = ir.ConditionKind(raw.Kind)
		out.Op = op
		out.Asset = asset
		out.Value = value
	case ir.ConditionCollateralRatio:
		if err := validateOp(path, op); err != nil {
			return out, err
		}
		asset, err := validateAsset(path+".asset", raw.Asset)
		if err != nil {
			return out, err
		}
		debtAsset, err := validateAsset(path+".debt_asset", raw.DebtAsset)
		if err != nil {
			return out, err
		}
		value, err := parseAmount(path+".value", raw.Value)
		if err != nil {
			return out, err
		}
		out.Kind = ir.ConditionCollateralRatio
		out.Op = op
		out.Asset = asset
		out.DebtAsset = debtAsset
		out.Value = value
	case ir.ConditionPrice:
		if err := validateOp(path, op); err != nil {
			return out, err
		}
		if raw.Oracle == "" {
			return out, fvlerrors.WithPath(fvlerrors.KindValidationError, path+".oracle", "price condition requires an oracle name")
		}
		if !oracleNames[raw.Oracle] {
			return out, fvlerrors.WithPath(fvlerrors.KindValidationError, path+".oracle", "oracle not declared in oracles section")
		}
		value, err := parseAmount(path+".value", raw.Value)
		if err != nil {
			return out, err
		}
		out.Kind = ir.ConditionPrice
		out.Op = op
		out.OracleName = raw.Oracle
		out.Value = value
	case ir.ConditionTime:
		if err := validateOp(path, op); err != nil {
			return out, err
		}
		ts, err := parseU64(path+".timestamp", raw.Timestamp)
		if err != nil {
			return out, err
		}
		out.Kind = ir.ConditionTime
		out.Op = op
		out.Timestamp = ts
	case ir.ConditionEvent:
		if raw.EventName == "" {
			return out, fvlerrors.WithPath(fvlerrors.KindValidationError, path+".event_name", "event condition requires an event name")
		}
		out.Kind = ir.ConditionEvent
		out.EventName = raw.EventName
	default:
		return out, fvlerrors.WithPath(fvlerrors.KindValidationError, path+".kind", "unknown condition kind: "+raw.Kind)
	}

	then, err := validateAction(path+".then", raw.Then)
	if err != nil {
		return out, err
	}
	out.Then = then
	return out, nil
}

func validateOp(path string, op ir.ComparisonOp) error {
	switch op {
	case ir.OpGT, ir.OpGTE, ir.OpEQ, ir.OpLTE, ir.OpLT:
		return nil
	default:
		return fvlerrors.WithPath(fvlerrors.KindValidationError, path+".op", "op must be one of gt,gte,eq,lte,lt")
	}
}

func validateAction(path string, raw rawAction) (ir.Action, error) {
	var out ir.Action
	switch ir.ActionKind(raw.Kind) {
	case ir.ActionEnable, ir.ActionDisable:
		if raw.Permission == "" {
			return out, fvlerrors.WithPath(fvlerrors.KindValidationError, path+".permission", "enable/disable requires a permission name")
		}
		out.Kind = ir.ActionKind(raw.Kind)
		out.Permission = raw.Permission
	case ir.ActionLiquidate:
		out.Kind = ir.ActionLiquidate
		if raw.Target != "" {
			addr, err := parseAddressField(path+".target", raw.Target)
			if err != nil {
				return out, err
			}
			out.Target = addr
		}
	case ir.ActionMint, ir.ActionBurn, ir.ActionTransfer:
		amt, err := parseAmount(path+".amount", raw.Amount)
		if err != nil {
			return out, err
		}
		asset, err := validateAsset(path+".asset", raw.Asset)
		if err != nil {
			return out, err
		}
		out.Kind = ir.ActionKind(raw.Kind)
		out.Amount = amt
		out.Asset = asset
		if raw.To != "" {
			addr, err := parseAddressField(path+".to", raw.To)
			if err != nil {
				return out, err
			}
			out.To = addr
		}
		if raw.From != "" {
			addr, err := parseAddressField(path+".from", raw.From)
			if err != nil {
				return out, err
			}
			out.From = addr
		}
	case ir.ActionPause:
		out.Kind = ir.ActionPause
	case ir.ActionUnpause:
		out.Kind = ir.ActionUnpause
	case ir.ActionExecute:
		if raw.Name == "" {
			return out, fvlerrors.WithPath(fvlerrors.KindValidationError, path+".name", "execute requires a name")
		}
		out.Kind = ir.ActionExecute
		out.Name = raw.Name
	default:
		return out, fvlerrors.WithPath(fvlerrors.KindValidationError, path+".kind", "unknown action kind: "+raw.Kind)
	}
	return out, nil
}

func validateTime(raw rawTime) (ir.TimeSpec, error) {
	var out ir.TimeSpec
	start, err := validateTimeBound("time.start", raw.Start)
	if err != nil {
		return out, err
	}
	end, err := validateTimeBound("time.end", raw.End)
	if err != nil {
		return out, err
	}
	if start.Kind == ir.TimeTimestamp && end.Kind == ir.TimeTimestamp && start.Value >= end.Value {
		return out, fvlerrors.WithPath(fvlerrors.KindValidationError, "time", "start must be < end when both are absolute timestamps")
	}
	out.Start = start
	out.End = end

	locks, err := validateLock(raw.Locks)
	if err != nil {
		return out, err
	}
	out.Locks = locks

	vest, err := validateVesting(raw.Vest)
	if err != nil {
		return out, err
	}
	out.Vest = vest
	return out, nil
}

func validateTimeBound(path string, raw rawTimeBound) (ir.TimeBound, error) {
	var out ir.TimeBound
	switch ir.TimeKind(raw.Kind) {
	case ir.TimeNow:
		out.Kind = ir.TimeNow
	case ir.TimeNone:
		out.Kind = ir.TimeNone
	case ir.TimeTimestamp:
		v, err := parseU64(path+".value", raw.Value)
		if err != nil {
			return out, err
		}
		out.Kind = ir.TimeTimestamp
		out.Value = v
	default:
		return out, fvlerrors.WithPath(fvlerrors.KindValidationError, path+".kind", "unknown time bound kind: "+raw.Kind)
	}
	return out, nil
}

func validateLock(raw rawLock) (ir.Lock, error) {
	var out ir.Lock
	switch ir.LockKind(raw.Kind) {
	case ir.LockNone:
		out.Kind = ir.LockNone
	case ir.LockDuration:
		v, err := parseU64("time.locks.seconds", raw.Seconds)
		if err != nil {
			return out, err
		}
		out.Kind = ir.LockDuration
		out.Seconds = v
	default:
		return out, fvlerrors.WithPath(fvlerrors.KindValidationError, "time.locks.kind", "unknown lock kind: "+raw.Kind)
	}
	return out, nil
}

func validateVesting(raw rawVesting) (ir.Vesting, error) {
	var out ir.Vesting
	switch ir.VestingKind(raw.Kind) {
	case ir.VestingNone:
		out.Kind = ir.VestingNone
	case ir.VestingLinear:
		d, err := parseU64("time.vest.duration", raw.Duration)
		if err != nil {
			return out, err
		}
		out.Kind = ir.VestingLinear
		out.Duration = d
	case ir.VestingCliff:
		d, err := parseU64("time.vest.duration", raw.Duration)
		if err != nil {
			return out, err
		}
		out.Kind = ir.VestingCliff
		out.Duration = d
	case ir.VestingGraded:
		schedule := make([]uint64, 0, len(raw.Schedule))
		for i, s := range raw.Schedule {
			v, err := parseU64(pathf("time.vest.schedule[%d]", i), s)
			if err != nil {
				return out, err
			}
			if i > 0 && schedule[i-1] >= v {
				return out, fvlerrors.WithPath(fvlerrors.KindValidationError, pathf("time.vest.schedule[%d]", i), "vesting schedule must be strictly increasing")
			}
			schedule = append(schedule, v)
		}
		out.Kind = ir.VestingGraded
		out.Schedule = schedule
	case ir.VestingMilestone:
		conds := make([]ir.Condition, 0, len(raw.Conditions))
		for i, c := range raw.Conditions {
			cond, err := validateCondition(pathf("time.vest.conditions[%d]", i), c, map[string]bool{})
			if err != nil {
				return out, err
			}
			conds = append(conds, cond)
		}
		out.Kind = ir.VestingMilestone
		out.Conditions = conds
	default:
		return out, fvlerrors.WithPath(fvlerrors.KindValidationError, "time.vest.kind", "unknown vesting kind: "+raw.Kind)
	}
	if raw.Cliff != "" {
		v, err := parseU64("time.vest.cliff", raw.Cliff)
		if err != nil {
			return out, err
		}
		out.Cliff = &v
	}
	return out, nil
}

func pathf(format string, args ...any) string {
	return fmt.Sprintf(format, args...)
}
