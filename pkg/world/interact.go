package world

import (
	"github.com/finvault/fvl/pkg/fvlerrors"
	"github.com/finvault/fvl/pkg/ir"
)

// applyInteract implements §4.3 Interact. Evaluate walks the system's rules
// in declared order and applies every true condition's Then action.
// Trigger applies a single named action gated by role membership, or by
// deployer-only access for Execute. Both runs Evaluate then Trigger.
func applyInteract(w *World, tx Transaction, blockTimestamp uint64) ([]Event, *fvlerrors.Error) {
	sys, ok := w.Systems[tx.SystemID]
	if !ok {
		return nil, fvlerrors.New(fvlerrors.KindUnknownSystem, "system has not been deployed")
	}

	if sys.Paused && !isUnpauseTrigger(sys, tx) {
		return nil, fvlerrors.New(fvlerrors.KindPaused, "system is paused")
	}

	var events []Event

	if tx.Mode == InteractEvaluate || tx.Mode == InteractBoth {
		for _, cond := range sys.IR.Rules.Conditions {
			if !evalCondition(w, sys, tx.Sender, cond, blockTimestamp) {
				continue
			}
			if ev, ferr := applyAction(w, sys, cond.Then); ferr == nil {
				events = append(events, ev)
			}
		}
	}

	if tx.Mode == InteractTrigger || tx.Mode == InteractBoth {
		action, found := namedAction(sys.IR.Rules.Conditions, tx.ActionName)
		if !found {
			return events, fvlerrors.Newf(fvlerrors.KindUnknownAction, "action %q is not recognized", tx.ActionName)
		}
		if action.Kind == ir.ActionExecute {
			if tx.Sender != sys.Deployer {
				return events, fvlerrors.New(fvlerrors.KindUnauthorized, "execute is restricted to the system deployer")
			}
		} else if !hasPermission(sys, tx.Sender, tx.ActionName) {
			return events, fvlerrors.New(fvlerrors.KindUnauthorized, "sender holds no role granting this action")
		}
		ev, ferr := applyAction(w, sys, action)
		if ferr != nil {
			return events, ferr
		}
		events = append(events, ev)
	}

	return events, nil
}

// isUnpauseTrigger reports whether tx is a standalone (not Both) trigger of
// the system's own Unpause action — the one Interact call a paused system
// still accepts, so a pause is always recoverable.
func isUnpauseTrigger(sys *System, tx Transaction) bool {
	if tx.Mode != InteractTrigger {
		return false
	}
	action, found := namedAction(sys.IR.Rules.Conditions, tx.ActionName)
	return found && action.Kind == ir.ActionUnpause
}

// namedAction resolves a Trigger's bare action name to one of the actions
// declared as a condition's Then. Enable/Disable key on their permission,
// Execute keys on its own name, Pause/Unpause key on their literal verb.
// Mint/Burn/Transfer/Liquidate carry parameters a bare name cannot supply,
// so Trigger never reaches them directly — they fire only through
// Evaluate, when their owning condition turns true.
func namedAction(conds []ir.Condition, name string) (ir.Action, bool) {
	for _, c := range conds {
		a := c.Then
		switch a.Kind {
		case ir.ActionEnable, ir.ActionDisable:
			if a.Permission == name {
				return a, true
			}
		case ir.ActionExecute:
			if a.Name == name {
				return a, true
			}
		case ir.ActionPause:
			if name == "pause" {
				return a, true
			}
		case ir.ActionUnpause:
			if name == "unpause" {
				return a, true
			}
		}
	}
	return ir.Action{}, false
}

// hasPermission reports whether sender holds a role granting permission.
// The deployer holds every role (see ir.Role's doc comment).
func hasPermission(sys *System, sender ir.Address, permission string) bool {
	if sender == sys.Deployer {
		return true
	}
	for _, role := range sys.IR.Rights.Roles {
		if !containsString(role.Permissions, permission) {
			continue
		}
		for _, m := range role.Members {
			if m == sender {
				return true
			}
		}
	}
	return false
}

func containsString(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}

// applyAction performs one action's effect on sys/w. A precondition
// failure (e.g. insufficient balance on Burn) is returned as an error
// rather than panicking or partially mutating; Evaluate treats a failed
// action as a skip and keeps walking the remaining conditions, since one
// inapplicable Then should not suppress the others.
func applyAction(w *World, sys *System, a ir.Action) (Event, *fvlerrors.Error) {
	switch a.Kind {
	case ir.ActionEnable:
		sys.EnabledPermissions[a.Permission] = true
		return Event{Kind: EventPermissionEnabled, SystemID: sys.ID, Permission: a.Permission}, nil
	case ir.ActionDisable:
		delete(sys.EnabledPermissions, a.Permission)
		return Event{Kind: EventPermissionDisabled, SystemID: sys.ID, Permission: a.Permission}, nil
	case ir.ActionLiquidate:
		return applyLiquidate(w, sys, a)
	case ir.ActionMint:
		return applySystemMint(w, sys, a)
	case ir.ActionBurn:
		return applySystemBurn(w, sys, a)
	case ir.ActionTransfer:
		return applySystemTransfer(w, sys, a)
	case ir.ActionPause:
		sys.Paused = true
		return Event{Kind: EventPaused, SystemID: sys.ID}, nil
	case ir.ActionUnpause:
		sys.Paused = false
		return Event{Kind: EventUnpaused, SystemID: sys.ID}, nil
	case ir.ActionExecute:
		return Event{Kind: EventExecuted, SystemID: sys.ID, Name: a.Name}, nil
	default:
		return Event{}, fvlerrors.Newf(fvlerrors.KindUnknownAction, "unrecognized action kind %q", a.Kind)
	}
}

// applyLiquidate moves target's recorded contribution to the pool's
// collector, in both the contributor map and the underlying world
// balances, then zeroes the contributor entry.
func applyLiquidate(w *World, sys *System, a ir.Action) (Event, *fvlerrors.Error) {
	amt, contributed := sys.Contributors[a.Target]
	if !contributed || amountIsZero(amt) {
		return Event{}, fvlerrors.New(fvlerrors.KindInsufficientBalance, "target has no contribution to liquidate")
	}
	asset := sys.IR.Pool.Asset
	from := w.account(a.Target)
	newBal, ok := amountSub(getBalance(from, asset), amt)
	if !ok {
		return Event{}, fvlerrors.New(fvlerrors.KindInsufficientBalance, "target's world balance is below its recorded contribution")
	}
	setBalance(from, asset, newBal)

	collector := w.account(sys.IR.Pool.Collector)
	setBalance(collector, asset, amountAdd(getBalance(collector, asset), amt))

	delete(sys.Contributors, a.Target)

	return Event{Kind: EventLiquidated, SystemID: sys.ID, From: a.Target, To: sys.IR.Pool.Collector, Amount: amt, Asset: asset}, nil
}

func applySystemMint(w *World, sys *System, a ir.Action) (Event, *fvlerrors.Error) {
	if a.Asset.Kind == ir.AssetERC721 {
		key := nftKey(a.Asset.Address, a.Asset.ID)
		if _, exists := w.ERC721[key]; exists {
			return Event{}, fvlerrors.New(fvlerrors.KindAlreadyMinted, "erc721 instance already minted")
		}
		w.ERC721[key] = a.To
		return Event{Kind: EventMinted, SystemID: sys.ID, To: a.To, Asset: a.Asset, Amount: a.Amount}, nil
	}
	to := w.account(a.To)
	setBalance(to, a.Asset, amountAdd(getBalance(to, a.Asset), a.Amount))
	w.MintedTotal[AssetKey(a.Asset)] = amountAdd(w.MintedTotal[AssetKey(a.Asset)], a.Amount)
	return Event{Kind: EventMinted, SystemID: sys.ID, To: a.To, Asset: a.Asset, Amount: a.Amount}, nil
}

func applySystemBurn(w *World, sys *System, a ir.Action) (Event, *fvlerrors.Error) {
	if a.Asset.Kind == ir.AssetERC721 {
		key := nftKey(a.Asset.Address, a.Asset.ID)
		owner, exists := w.ERC721[key]
		if !exists || owner != a.From {
			return Event{}, fvlerrors.New(fvlerrors.KindInsufficientBalance, "erc721 instance not owned by from")
		}
		delete(w.ERC721, key)
		return Event{Kind: EventBurned, SystemID: sys.ID, From: a.From, Asset: a.Asset, Amount: a.Amount}, nil
	}
	from := w.account(a.From)
	bal := getBalance(from, a.Asset)
	newBal, ok := amountSub(bal, a.Amount)
	if !ok {
		return Event{}, fvlerrors.InsufficientBalance(amountString(a.Amount), amountString(bal))
	}
	setBalance(from, a.Asset, newBal)
	w.BurnedTotal[AssetKey(a.Asset)] = amountAdd(w.BurnedTotal[AssetKey(a.Asset)], a.Amount)
	return Event{Kind: EventBurned, SystemID: sys.ID, From: a.From, Asset: a.Asset, Amount: a.Amount}, nil
}

// applySystemTransfer moves a.Amount of a.Asset between world accounts on
// behalf of a rule or trigger. When the destination is the pool's own
// collector and the asset matches the pool's asset, this is how the
// contributor map and total-collected counters are populated — the
// Transaction kinds fixed by §3 have no standalone "contribute" kind, and
// Transfer txs carry no system ID, so a contribution can only be recorded
// as the effect of a Then/Trigger action inside the contributing system's
// own template (see DESIGN.md Open Question decisions).
func applySystemTransfer(w *World, sys *System, a ir.Action) (Event, *fvlerrors.Error) {
	if a.Asset.Kind == ir.AssetERC721 {
		key := nftKey(a.Asset.Address, a.Asset.ID)
		owner, exists := w.ERC721[key]
		if !exists || owner != a.From {
			return Event{}, fvlerrors.New(fvlerrors.KindInsufficientBalance, "erc721 instance not owned by from")
		}
		w.ERC721[key] = a.To
		return Event{Kind: EventTransferred, SystemID: sys.ID, From: a.From, To: a.To, Asset: a.Asset, Amount: a.Amount}, nil
	}

	isContribution := a.To == sys.IR.Pool.Collector && AssetKey(a.Asset) == AssetKey(sys.IR.Pool.Asset)
	if isContribution && !amountIsZero(a.Amount) {
		if ferr := checkCollectLimits(sys, a.Amount); ferr != nil {
			return Event{}, ferr
		}
	}

	if !amountIsZero(a.Amount) {
		from := w.account(a.From)
		newBal, ok := amountSub(getBalance(from, a.Asset), a.Amount)
		if !ok {
			return Event{}, fvlerrors.InsufficientBalance(amountString(a.Amount), amountString(getBalance(from, a.Asset)))
		}
		setBalance(from, a.Asset, newBal)

		to := w.account(a.To)
		setBalance(to, a.Asset, amountAdd(getBalance(to, a.Asset), a.Amount))

		if isContribution {
			sys.Contributors[a.From] = amountAdd(sys.Contributors[a.From], a.Amount)
			sys.TotalCollected[AssetKey(a.Asset)] = amountAdd(sys.TotalCollected[AssetKey(a.Asset)], a.Amount)
		}
	}

	return Event{Kind: EventTransferred, SystemID: sys.ID, From: a.From, To: a.To, Asset: a.Asset, Amount: a.Amount}, nil
}

// checkCollectLimits enforces the pool's Collect.min/max/cap (§4.1's
// PoolSpec, grounded on the original's Pool::Collect{min,max,cap}) against
// a single contribution amount and the system's running TotalCollected.
// The original declares these fields but never enforces them (see
// DESIGN.md); this is the enforcement spec.md's CapExceeded taxonomy entry
// requires.
func checkCollectLimits(sys *System, amount ir.Amount) *fvlerrors.Error {
	collect := sys.IR.Pool
	if !amountIsZero(collect.MinContribution) && amountCmp(amount, collect.MinContribution) < 0 {
		return fvlerrors.New(fvlerrors.KindCapExceeded, "contribution is below the pool's minimum collection amount")
	}
	if collect.MaxContribution != nil && amountCmp(amount, *collect.MaxContribution) > 0 {
		return fvlerrors.New(fvlerrors.KindCapExceeded, "contribution exceeds the pool's maximum per-contribution amount")
	}
	if collect.Cap != nil {
		already := sys.TotalCollected[AssetKey(collect.Asset)]
		projected := amountAdd(already, amount)
		if amountCmp(projected, *collect.Cap) > 0 {
			return fvlerrors.New(fvlerrors.KindCapExceeded, "contribution would exceed the pool's aggregate collection cap")
		}
	}
	return nil
}
