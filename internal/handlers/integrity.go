package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/dbu-union/portal-server/internal/models"
	"github.com/dbu-union/portal-server/internal/services"
)

// IntegrityHandler exposes the vote ledger: the published Merkle root,
// inclusion proofs, and proof verification.
type IntegrityHandler struct {
	ledger *services.LedgerService
	logger *zap.SugaredLogger
}

// NewIntegrityHandler creates a new integrity handler.
func NewIntegrityHandler(ls *services.LedgerService, logger *zap.SugaredLogger) *IntegrityHandler {
	return &IntegrityHandler{ledger: ls, logger: logger}
}

// Root handles GET /api/v1/integrity/root
func (h *IntegrityHandler) Root(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"root":       h.ledger.Root(),
		"leaf_count": h.ledger.LeafCount(),
		"built_at":   h.ledger.LastBuildTime().Format(time.RFC3339),
	})
}

// Proof handles GET /api/v1/integrity/proof/{index}
func (h *IntegrityHandler) Proof(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid proof index")
		return
	}

	proof, err := h.ledger.Proof(index)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, proof)
}

// Verify handles POST /api/v1/integrity/verify. The caller supplies a leaf
// hash, the expected root, and a proof path; the server recomputes the root.
func (h *IntegrityHandler) Verify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		LeafHash string             `json:"leaf_hash"`
		Root     string             `json:"root"`
		Proof    []models.ProofStep `json:"proof"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.LeafHash == "" || req.Root == "" {
		respondError(w, http.StatusBadRequest, "leaf_hash and root required")
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"verified": services.VerifyProof(req.LeafHash, req.Root, req.Proof),
	})
}
