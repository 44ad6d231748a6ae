package world

import "github.com/finvault/fvl/pkg/fvlerrors"

// applyOracleUpdate lets a system's deployer push a new value for one of
// its declared oracles (§4.3 OracleUpdate).
func applyOracleUpdate(w *World, tx Transaction) ([]Event, *fvlerrors.Error) {
	sys, ok := w.Systems[tx.SystemID]
	if !ok {
		return nil, fvlerrors.Newf(fvlerrors.KindUnknownSystem, "system %x not deployed", tx.SystemID)
	}
	if sys.Paused {
		return nil, fvlerrors.New(fvlerrors.KindPaused, "system is paused")
	}
	if tx.Sender != sys.Deployer {
		return nil, fvlerrors.New(fvlerrors.KindNotDeployer, "only the deploying address may update oracles")
	}
	declared := false
	for _, o := range sys.IR.Oracles {
		if o.Name == tx.OracleName {
			declared = true
			break
		}
	}
	if !declared {
		return nil, fvlerrors.Newf(fvlerrors.KindUnknownOracle, "oracle %q is not declared by this system", tx.OracleName)
	}
	sys.OracleValues[tx.OracleName] = tx.OracleValue
	return []Event{{Kind: EventOracleUpdated, SystemID: tx.SystemID, OracleName: tx.OracleName, Amount: tx.OracleValue}}, nil
}
