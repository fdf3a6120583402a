package rest

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/feral-file/ff-vault-indexer/internal/domain"
	"github.com/feral-file/ff-vault-indexer/internal/store"
)

// Handler defines the interface for the status handlers
type Handler interface {
	// HealthCheck returns the health status of the reconciler
	// GET /healthz
	HealthCheck(c *gin.Context)

	// GetReconciledCursor returns the position of the last reconciled log of a chain
	// GET /v1/chains/:chain/cursor
	GetReconciledCursor(c *gin.Context)
}

// CursorResponse is the reconciled watermark of a chain
type CursorResponse struct {
	Chain       domain.Chain `json:"chain"`
	BlockNumber uint64       `json:"block_number"`
	LogIndex    uint         `json:"log_index"`
	Cursor      string       `json:"cursor"`
}

type handler struct {
	store  store.Store
	chains map[domain.Chain]bool
}

// NewHandler creates a status handler for the given chains
func NewHandler(st store.Store, chains []domain.Chain) Handler {
	configured := make(map[domain.Chain]bool, len(chains))
	for _, chain := range chains {
		configured[chain] = true
	}

	return &handler{
		store:  st,
		chains: configured,
	}
}

// HealthCheck returns the health status of the reconciler
func (h *handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "vault-reconciler",
	})
}

// GetReconciledCursor returns the reconciled watermark of a chain.
// The chain is given in CAIP-2 form (eip155:1) or as its slug (eip155-1).
func (h *handler) GetReconciledCursor(c *gin.Context) {
	chain := parseChain(c.Param("chain"))
	if !domain.IsValidChain(chain) {
		respondBadRequest(c, "Invalid chain", fmt.Sprintf("expected eip155:<chain id>, got %q", c.Param("chain")))
		return
	}
	if !h.chains[chain] {
		respondNotFound(c, "Chain is not reconciled", string(chain))
		return
	}

	cursor, err := h.store.GetReconciledCursor(c.Request.Context(), chain)
	if err != nil {
		respondInternalError(c, err, "Failed to get reconciled cursor", zap.String("chain", string(chain)))
		return
	}
	if cursor == nil {
		respondNotFound(c, "No event reconciled yet", string(chain))
		return
	}

	c.JSON(http.StatusOK, CursorResponse{
		Chain:       chain,
		BlockNumber: cursor.BlockNumber,
		LogIndex:    cursor.LogIndex,
		Cursor:      cursor.String(),
	})
}

func parseChain(param string) domain.Chain {
	if chain := domain.Chain(param); domain.IsValidChain(chain) {
		return chain
	}
	// slug form
	return domain.Chain(strings.Replace(param, "-", ":", 1))
}
