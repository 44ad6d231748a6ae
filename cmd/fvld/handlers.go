package main

import (
	"encoding/hex"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/finvault/fvl/internal/httpx"
	"github.com/finvault/fvl/pkg/fvlerrors"
	"github.com/finvault/fvl/pkg/ir"
	"github.com/finvault/fvl/pkg/world"
)

// assetRequest is the wire shape for ir.Asset accepted on tx endpoints; it
// mirrors the quoted-decimal-string convention §6 fixes for amounts.
type assetRequest struct {
	Kind    ir.AssetKind   `json:"kind"`
	Address string         `json:"address"`
	ID      string         `json:"id"`
	Assets  []assetRequest `json:"assets"`
}

func (a assetRequest) toIR() (ir.Asset, error) {
	out := ir.Asset{Kind: a.Kind}
	if a.Address != "" {
		addr, err := ir.ParseAddress(a.Address)
		if err != nil {
			return out, err
		}
		out.Address = addr
	}
	if a.ID != "" {
		amt, err := ir.ParseAmount(a.ID)
		if err != nil {
			return out, err
		}
		out.ID = amt
	}
	for _, sub := range a.Assets {
		subIR, err := sub.toIR()
		if err != nil {
			return out, err
		}
		out.Assets = append(out.Assets, subIR)
	}
	return out, nil
}

func parseSystemID(s string) ([32]byte, error) {
	var id [32]byte
	s = strings.TrimPrefix(s, "0x")
	b, err := hex.DecodeString(s)
	if err != nil || len(b) != len(id) {
		return id, fvlerrors.New(fvlerrors.KindValidationError, "system_id must be 32 bytes of hex")
	}
	copy(id[:], b)
	return id, nil
}

func (s *server) submit(w http.ResponseWriter, r *http.Request, tx world.Transaction) {
	sealed, err := s.seq.Submit(tx)
	if err != nil {
		if fe, ok := err.(*fvlerrors.Error); ok {
			httpx.WriteError(w, fe)
			return
		}
		httpx.WriteError(w, fvlerrors.New(fvlerrors.KindIoFailure, err.Error()))
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"request_id": httpx.NewRequestID(),
		"block":      blockView(sealed),
	})
}

func (s *server) handleDeploy(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Sender   string `json:"sender"`
		Nonce    uint64 `json:"nonce"`
		Template string `json:"template"`
	}
	if err := httpx.ReadJSON(r, &req); err != nil {
		httpx.WriteError(w, fvlerrors.New(fvlerrors.KindParseError, err.Error()))
		return
	}
	sender, err := ir.ParseAddress(req.Sender)
	if err != nil {
		httpx.WriteError(w, fvlerrors.New(fvlerrors.KindBadAddress, err.Error()))
		return
	}
	s.submit(w, r, world.Transaction{
		Kind:         world.TxDeploy,
		Sender:       sender,
		Nonce:        req.Nonce,
		TemplateText: []byte(req.Template),
	})
}

func (s *server) handleTransfer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Sender string       `json:"sender"`
		Nonce  uint64       `json:"nonce"`
		To     string       `json:"to"`
		Amount string       `json:"amount"`
		Asset  assetRequest `json:"asset"`
	}
	if err := httpx.ReadJSON(r, &req); err != nil {
		httpx.WriteError(w, fvlerrors.New(fvlerrors.KindParseError, err.Error()))
		return
	}
	sender, err := ir.ParseAddress(req.Sender)
	if err != nil {
		httpx.WriteError(w, fvlerrors.New(fvlerrors.KindBadAddress, err.Error()))
		return
	}
	to, err := ir.ParseAddress(req.To)
	if err != nil {
		httpx.WriteError(w, fvlerrors.New(fvlerrors.KindBadAddress, err.Error()))
		return
	}
	amount, err := ir.ParseAmount(req.Amount)
	if err != nil {
		httpx.WriteError(w, fvlerrors.New(fvlerrors.KindBadAmount, err.Error()))
		return
	}
	asset, err := req.Asset.toIR()
	if err != nil {
		httpx.WriteError(w, fvlerrors.New(fvlerrors.KindValidationError, err.Error()))
		return
	}
	s.submit(w, r, world.Transaction{
		Kind: world.TxTransfer, Sender: sender, Nonce: req.Nonce,
		From: sender, To: to, Amount: amount, Asset: asset,
	})
}

func (s *server) handleMint(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Sender string       `json:"sender"`
		Nonce  uint64       `json:"nonce"`
		To     string       `json:"to"`
		Amount string       `json:"amount"`
		Asset  assetRequest `json:"asset"`
	}
	if err := httpx.ReadJSON(r, &req); err != nil {
		httpx.WriteError(w, fvlerrors.New(fvlerrors.KindParseError, err.Error()))
		return
	}
	sender, err := ir.ParseAddress(req.Sender)
	if err != nil {
		httpx.WriteError(w, fvlerrors.New(fvlerrors.KindBadAddress, err.Error()))
		return
	}
	to, err := ir.ParseAddress(req.To)
	if err != nil {
		httpx.WriteError(w, fvlerrors.New(fvlerrors.KindBadAddress, err.Error()))
		return
	}
	amount, err := ir.ParseAmount(req.Amount)
	if err != nil {
		httpx.WriteError(w, fvlerrors.New(fvlerrors.KindBadAmount, err.Error()))
		return
	}
	asset, err := req.Asset.toIR()
	if err != nil {
		httpx.WriteError(w, fvlerrors.New(fvlerrors.KindValidationError, err.Error()))
		return
	}
	s.submit(w, r, world.Transaction{
		Kind: world.TxMint, Sender: sender, Nonce: req.Nonce,
		To: to, Amount: amount, Asset: asset,
	})
}

func (s *server) handleInteract(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Sender     string `json:"sender"`
		Nonce      uint64 `json:"nonce"`
		SystemID   string `json:"system_id"`
		Mode       string `json:"mode"`
		ActionName string `json:"action_name"`
	}
	if err := httpx.ReadJSON(r, &req); err != nil {
		httpx.WriteError(w, fvlerrors.New(fvlerrors.KindParseError, err.Error()))
		return
	}
	sender, err := ir.ParseAddress(req.Sender)
	if err != nil {
		httpx.WriteError(w, fvlerrors.New(fvlerrors.KindBadAddress, err.Error()))
		return
	}
	systemID, err := parseSystemID(req.SystemID)
	if err != nil {
		httpx.WriteError(w, fvlerrors.New(fvlerrors.KindValidationError, err.Error()))
		return
	}
	s.submit(w, r, world.Transaction{
		Kind: world.TxInteract, Sender: sender, Nonce: req.Nonce,
		SystemID: systemID, Mode: world.InteractMode(req.Mode), ActionName: req.ActionName,
	})
}

func (s *server) handleOracleUpdate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Sender      string `json:"sender"`
		Nonce       uint64 `json:"nonce"`
		SystemID    string `json:"system_id"`
		OracleName  string `json:"oracle_name"`
		OracleValue string `json:"oracle_value"`
	}
	if err := httpx.ReadJSON(r, &req); err != nil {
		httpx.WriteError(w, fvlerrors.New(fvlerrors.KindParseError, err.Error()))
		return
	}
	sender, err := ir.ParseAddress(req.Sender)
	if err != nil {
		httpx.WriteError(w, fvlerrors.New(fvlerrors.KindBadAddress, err.Error()))
		return
	}
	systemID, err := parseSystemID(req.SystemID)
	if err != nil {
		httpx.WriteError(w, fvlerrors.New(fvlerrors.KindValidationError, err.Error()))
		return
	}
	value, err := ir.ParseAmount(req.OracleValue)
	if err != nil {
		httpx.WriteError(w, fvlerrors.New(fvlerrors.KindBadAmount, err.Error()))
		return
	}
	s.submit(w, r, world.Transaction{
		Kind: world.TxOracleUpdate, Sender: sender, Nonce: req.Nonce,
		SystemID: systemID, OracleName: req.OracleName, OracleValue: value,
	})
}

func (s *server) handleBalance(w http.ResponseWriter, r *http.Request) {
	addr, err := ir.ParseAddress(chi.URLParam(r, "address"))
	if err != nil {
		httpx.WriteError(w, fvlerrors.New(fvlerrors.KindBadAddress, err.Error()))
		return
	}
	account := s.world.Account(addr)
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"request_id": httpx.NewRequestID(),
		"account":    account,
	})
}

func (s *server) handleSystem(w http.ResponseWriter, r *http.Request) {
	id, err := parseSystemID(chi.URLParam(r, "system_id"))
	if err != nil {
		httpx.WriteError(w, fvlerrors.New(fvlerrors.KindValidationError, err.Error()))
		return
	}
	sys, ok := s.world.System(id)
	if !ok {
		httpx.WriteError(w, fvlerrors.New(fvlerrors.KindUnknownSystem, "no system with that id"))
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"request_id": httpx.NewRequestID(),
		"system":     sys,
	})
}

// handleSystemSource hands back a deployed system's original declarative
// YAML, the way system_registry.rs's SystemRegistry.get keeps each
// system's source text retrievable by ID alongside its decoded form.
func (s *server) handleSystemSource(w http.ResponseWriter, r *http.Request) {
	id, err := parseSystemID(chi.URLParam(r, "system_id"))
	if err != nil {
		httpx.WriteError(w, fvlerrors.New(fvlerrors.KindValidationError, err.Error()))
		return
	}
	sys, ok := s.world.System(id)
	if !ok {
		httpx.WriteError(w, fvlerrors.New(fvlerrors.KindUnknownSystem, "no system with that id"))
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"request_id": httpx.NewRequestID(),
		"system_id":  chi.URLParam(r, "system_id"),
		"yaml":       sys.SourceYAML,
	})
}

func (s *server) handleTip(w http.ResponseWriter, r *http.Request) {
	tip, ok := s.log.Tip()
	if !ok {
		httpx.WriteJSON(w, http.StatusOK, map[string]any{"request_id": httpx.NewRequestID(), "tip": nil})
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"request_id": httpx.NewRequestID(), "tip": blockView(tip)})
}

func (s *server) handleBlock(w http.ResponseWriter, r *http.Request) {
	n, err := strconv.ParseUint(chi.URLParam(r, "number"), 10, 64)
	if err != nil {
		httpx.WriteError(w, fvlerrors.New(fvlerrors.KindValidationError, "number must be a non-negative integer"))
		return
	}
	b, ok, err := s.log.At(n)
	if err != nil {
		httpx.WriteError(w, fvlerrors.New(fvlerrors.KindIoFailure, err.Error()))
		return
	}
	if !ok {
		httpx.WriteError(w, fvlerrors.New(fvlerrors.KindValidationError, "no block with that number"))
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"request_id": httpx.NewRequestID(), "block": blockView(b)})
}
