package world

import (
	"github.com/finvault/fvl/pkg/fvlerrors"
	"github.com/finvault/fvl/pkg/template"
)

// applyDeploy parses and validates the template, derives its system ID, and
// installs a fresh System unless one with that ID already exists, in which
// case it is a no-op re-deploy that still succeeds (invariant 3).
func applyDeploy(w *World, tx Transaction, blockTimestamp uint64) ([]Event, *fvlerrors.Error) {
	result, err := template.Load(tx.TemplateText)
	if err != nil {
		if fe, ok := err.(*fvlerrors.Error); ok {
			return nil, fe
		}
		return nil, fvlerrors.New(fvlerrors.KindParseError, err.Error())
	}

	if _, exists := w.Systems[result.SystemID]; exists {
		return []Event{{Kind: EventRedeployed, SystemID: result.SystemID}}, nil
	}

	sys := newSystem(result.SystemID, result.Template, string(tx.TemplateText), tx.Sender, blockTimestamp)
	w.Systems[result.SystemID] = sys
	return []Event{{Kind: EventDeployed, SystemID: result.SystemID}}, nil
}
