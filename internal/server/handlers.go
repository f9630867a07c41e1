package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/custodia-labs/treasury-ledger/internal/models"
	"github.com/custodia-labs/treasury-ledger/internal/treasury"
)

// callerHeader carries the address-like principal submitting the
// operation. There is no session layer; the core decides what the
// principal may do.
const callerHeader = "X-Caller-Address"

func caller(r *http.Request) string {
	return r.Header.Get(callerHeader)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAddProtocol(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID          string `json:"id"`
		Share       int    `json:"share"`
		Recipient   string `json:"recipient"`
		Compounding bool   `json:"compounding"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.ID == "" || req.Recipient == "" {
		http.Error(w, "id and recipient are mandatory fields", http.StatusBadRequest)
		return
	}

	err := s.treasury.AddProtocol(r.Context(), caller(r), models.Protocol{
		ID:          req.ID,
		Share:       req.Share,
		Recipient:   req.Recipient,
		Compounding: req.Compounding,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "protocol registered"})
}

func (s *Server) handleListProtocols(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.treasury.Protocols())
}

func (s *Server) handleDeposit(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Asset  string          `json:"asset"`
		Amount decimal.Decimal `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := s.treasury.Deposit(r.Context(), caller(r), req.Asset, req.Amount); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "deposit allocated"})
}

func (s *Server) handleWithdrawProtocolAllocation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Asset       string          `json:"asset"`
		Destination string          `json:"destination"`
		Amount      decimal.Decimal `json:"amount"` // zero or omitted withdraws the full allocation
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	withdrawn, err := s.treasury.WithdrawProtocolAllocation(r.Context(), caller(r), req.Asset, req.Destination, req.Amount)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Status    string          `json:"status"`
		Withdrawn decimal.Decimal `json:"withdrawn"`
	}{Status: "withdrawn", Withdrawn: withdrawn})
}

func (s *Server) handleSweep(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Asset       string          `json:"asset"`
		Amount      decimal.Decimal `json:"amount"`
		Destination string          `json:"destination"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := s.treasury.Withdraw(r.Context(), caller(r), req.Amount, req.Asset, req.Destination); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "swept"})
}

func (s *Server) handleCompound(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProtocolID string `json:"protocol_id"`
		FromAsset  string `json:"from_asset"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := s.treasury.Compound(r.Context(), caller(r), req.ProtocolID, req.FromAsset); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "compounded"})
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	asset := r.URL.Query().Get("asset")
	protocolID := r.URL.Query().Get("protocol")
	if asset == "" || protocolID == "" {
		http.Error(w, "asset and protocol are mandatory fields", http.StatusBadRequest)
		return
	}

	balance, err := s.treasury.BalanceOf(r.Context(), asset, protocolID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Asset    string          `json:"asset"`
		Protocol string          `json:"protocol"`
		Balance  decimal.Decimal `json:"balance"`
	}{Asset: asset, Protocol: protocolID, Balance: balance})
}

func (s *Server) handleEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := s.treasury.Entries(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// writeError maps the core's failure taxonomy onto HTTP statuses, keeping
// the specific reason in the body.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, treasury.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, treasury.ErrUnknownProtocol):
		status = http.StatusNotFound
	case errors.Is(err, treasury.ErrInvalidShare),
		errors.Is(err, treasury.ErrProtocolRegistered),
		errors.Is(err, treasury.ErrUnsupportedAsset),
		errors.Is(err, treasury.ErrInvalidAmount),
		errors.Is(err, treasury.ErrNotCompounding):
		status = http.StatusBadRequest
	case errors.Is(err, treasury.ErrInsufficientAllocation),
		errors.Is(err, treasury.ErrInsufficientTreasuryBalance):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, treasury.ErrOperationInProgress):
		status = http.StatusConflict
	case errors.Is(err, treasury.ErrTransferFailed),
		errors.Is(err, treasury.ErrSwapFailed):
		status = http.StatusBadGateway
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
