// Package services - LedgerService maintains a Merkle tree over vote
// receipts for tamper-evident election records. The published root lets
// anyone holding a receipt verify their vote was counted without revealing
// who they voted for.
package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/dbu-union/portal-server/internal/models"
)

// LedgerService manages the Merkle tree over vote receipt hashes.
type LedgerService struct {
	mu            sync.RWMutex
	leaves        []string
	layers        [][]string
	root          string
	lastBuildTime time.Time
	logger        *zap.SugaredLogger
}

// NewLedgerService creates an empty ledger.
func NewLedgerService(logger *zap.SugaredLogger) *LedgerService {
	return &LedgerService{
		leaves: make([]string, 0),
		layers: make([][]string, 0),
		logger: logger,
	}
}

// Append adds one receipt hash and rebuilds the tree. Vote volume is small
// enough that a full rebuild per vote is cheaper than incremental updates.
func (l *LedgerService) Append(leafHash string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.leaves = append(l.leaves, leafHash)
	l.buildTree()
	l.lastBuildTime = time.Now()
}

// BuildFromHashes rebuilds the tree from the full vote record set.
func (l *LedgerService) BuildFromHashes(hashes []string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.leaves = hashes
	l.buildTree()
	l.lastBuildTime = time.Now()

	l.logger.Infow("Vote ledger rebuilt",
		"leaves", len(l.leaves),
		"root", l.root,
	)
}

// Root returns the current Merkle root.
func (l *LedgerService) Root() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.root
}

// LeafCount returns the number of recorded receipts.
func (l *LedgerService) LeafCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.leaves)
}

// LastBuildTime returns when the tree was last rebuilt.
func (l *LedgerService) LastBuildTime() time.Time {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.lastBuildTime
}

// Proof generates an inclusion proof for the given leaf index.
func (l *LedgerService) Proof(index int) (*models.LedgerProof, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if index < 0 || index >= len(l.leaves) {
		return nil, fmt.Errorf("index %d out of range (0-%d)", index, len(l.leaves)-1)
	}

	proof := &models.LedgerProof{
		LeafHash: l.leaves[index],
		Root:     l.root,
		Index:    index,
		Proof:    make([]models.ProofStep, 0),
	}

	currentIndex := index
	for i := 0; i < len(l.layers)-1; i++ {
		layer := l.layers[i]
		isRight := currentIndex%2 == 1
		siblingIndex := currentIndex + 1
		if isRight {
			siblingIndex = currentIndex - 1
		}

		if siblingIndex < len(layer) {
			position := "right"
			if isRight {
				position = "left"
			}
			proof.Proof = append(proof.Proof, models.ProofStep{
				Hash:     layer[siblingIndex],
				Position: position,
			})
		} else {
			// Odd layer width: buildTree pairs the last node with itself,
			// so the proof must do the same.
			proof.Proof = append(proof.Proof, models.ProofStep{
				Hash:     layer[currentIndex],
				Position: "right",
			})
		}

		currentIndex /= 2
	}

	proof.Verified = VerifyProof(proof.LeafHash, l.root, proof.Proof)
	return proof, nil
}

// VerifyProof recomputes the root from a leaf and proof path and compares it
// to the expected root.
func VerifyProof(leafHash, root string, steps []models.ProofStep) bool {
	current := leafHash
	for _, step := range steps {
		if step.Position == "left" {
			current = hashPair(step.Hash, current)
		} else {
			current = hashPair(current, step.Hash)
		}
	}
	return current == root
}

// buildTree constructs the Merkle tree from leaves (caller holds write lock)
func (l *LedgerService) buildTree() {
	if len(l.leaves) == 0 {
		l.root = ""
		l.layers = nil
		return
	}

	currentLayer := make([]string, len(l.leaves))
	copy(currentLayer, l.leaves)
	l.layers = [][]string{currentLayer}

	for len(currentLayer) > 1 {
		nextLayer := make([]string, 0, (len(currentLayer)+1)/2)
		for i := 0; i < len(currentLayer); i += 2 {
			left := currentLayer[i]
			right := left
			if i+1 < len(currentLayer) {
				right = currentLayer[i+1]
			}
			nextLayer = append(nextLayer, hashPair(left, right))
		}
		l.layers = append(l.layers, nextLayer)
		currentLayer = nextLayer
	}

	l.root = currentLayer[0]
}

// hashPair combines and hashes two nodes
func hashPair(left, right string) string {
	h := sha256.New()
	h.Write([]byte(left + right))
	return hex.EncodeToString(h.Sum(nil))
}

// LedgerWorker periodically rebuilds the vote ledger from storage so the
// published root converges even if in-memory state drifts from the vote
// records (e.g. after a restart).
type LedgerWorker struct {
	elections *ElectionService
	logger    *zap.SugaredLogger
}

// NewLedgerWorker creates a new background ledger worker.
func NewLedgerWorker(es *ElectionService, logger *zap.SugaredLogger) *LedgerWorker {
	return &LedgerWorker{elections: es, logger: logger}
}

// Start begins the periodic rebuild loop.
func (w *LedgerWorker) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Initial build
	w.rebuild(ctx)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("Ledger worker stopped")
			return
		case <-ticker.C:
			w.rebuild(ctx)
		}
	}
}

func (w *LedgerWorker) rebuild(ctx context.Context) {
	if err := w.elections.RebuildLedger(ctx); err != nil {
		w.logger.Errorw("Ledger rebuild failed", "error", err)
	}
}
