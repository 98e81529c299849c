package services

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"testing"

	"go.uber.org/zap"
)

func leafHashes(n int) []string {
	out := make([]string, n)
	for i := range out {
		sum := sha256.Sum256([]byte(fmt.Sprintf("receipt-%d", i)))
		out[i] = hex.EncodeToString(sum[:])
	}
	return out
}

func TestLedgerRoot(t *testing.T) {
	ledger := NewLedgerService(zap.NewNop().Sugar())

	if ledger.Root() != "" {
		t.Errorf("empty ledger root = %q, want empty", ledger.Root())
	}

	hashes := leafHashes(5)
	ledger.BuildFromHashes(hashes)
	if ledger.LeafCount() != 5 {
		t.Errorf("leaf count = %d, want 5", ledger.LeafCount())
	}
	root := ledger.Root()
	if root == "" {
		t.Fatal("root empty after build")
	}

	// Same leaves, same root.
	other := NewLedgerService(zap.NewNop().Sugar())
	other.BuildFromHashes(leafHashes(5))
	if other.Root() != root {
		t.Error("identical leaf sets produced different roots")
	}

	// Appending changes the root.
	ledger.Append(leafHashes(6)[5])
	if ledger.Root() == root {
		t.Error("root unchanged after append")
	}
}

func TestLedgerSingleLeaf(t *testing.T) {
	ledger := NewLedgerService(zap.NewNop().Sugar())
	hashes := leafHashes(1)
	ledger.BuildFromHashes(hashes)

	if ledger.Root() != hashes[0] {
		t.Errorf("single-leaf root = %q, want the leaf itself", ledger.Root())
	}

	proof, err := ledger.Proof(0)
	if err != nil {
		t.Fatalf("Proof: %v", err)
	}
	if len(proof.Proof) != 0 {
		t.Errorf("single-leaf proof has %d steps", len(proof.Proof))
	}
	if !VerifyProof(proof.LeafHash, proof.Root, proof.Proof) {
		t.Error("single-leaf proof does not verify")
	}
}

func TestLedgerProofs(t *testing.T) {
	for _, n := range []int{2, 3, 7, 8} {
		t.Run(fmt.Sprintf("%d leaves", n), func(t *testing.T) {
			ledger := NewLedgerService(zap.NewNop().Sugar())
			ledger.BuildFromHashes(leafHashes(n))

			for i := 0; i < n; i++ {
				proof, err := ledger.Proof(i)
				if err != nil {
					t.Fatalf("Proof(%d): %v", i, err)
				}
				if !VerifyProof(proof.LeafHash, proof.Root, proof.Proof) {
					t.Errorf("proof for leaf %d does not verify", i)
				}
				if !proof.Verified {
					t.Errorf("proof for leaf %d not marked verified", i)
				}
			}
		})
	}
}

func TestLedgerProofForOddLayerWidths(t *testing.T) {
	// With three leaves the last node is paired with itself at the bottom
	// layer; its proof must carry that self-duplication step.
	ledger := NewLedgerService(zap.NewNop().Sugar())
	hashes := leafHashes(3)
	ledger.BuildFromHashes(hashes)

	proof, err := ledger.Proof(2)
	if err != nil {
		t.Fatalf("Proof(2): %v", err)
	}
	if len(proof.Proof) != 2 {
		t.Fatalf("proof steps = %d, want 2", len(proof.Proof))
	}
	if proof.Proof[0].Hash != hashes[2] || proof.Proof[0].Position != "right" {
		t.Errorf("first step = %+v, want the leaf itself on the right", proof.Proof[0])
	}
	if !VerifyProof(proof.LeafHash, proof.Root, proof.Proof) {
		t.Error("last-leaf proof does not verify")
	}

	// The last leaf of a five-leaf tree is promoted alone through two odd
	// layers; both self-duplications must appear.
	ledger.BuildFromHashes(leafHashes(5))
	proof, err = ledger.Proof(4)
	if err != nil {
		t.Fatalf("Proof(4): %v", err)
	}
	if !VerifyProof(proof.LeafHash, proof.Root, proof.Proof) {
		t.Error("five-leaf last proof does not verify")
	}
}

func TestLedgerProofRejectsTampering(t *testing.T) {
	ledger := NewLedgerService(zap.NewNop().Sugar())
	ledger.BuildFromHashes(leafHashes(4))

	proof, err := ledger.Proof(2)
	if err != nil {
		t.Fatalf("Proof: %v", err)
	}

	// A different leaf must not verify against the same path.
	forged := leafHashes(5)[4]
	if VerifyProof(forged, proof.Root, proof.Proof) {
		t.Error("forged leaf verified")
	}

	// Nor the real leaf against a different root.
	if VerifyProof(proof.LeafHash, leafHashes(1)[0], proof.Proof) {
		t.Error("proof verified against wrong root")
	}
}

func TestLedgerProofOutOfRange(t *testing.T) {
	ledger := NewLedgerService(zap.NewNop().Sugar())
	ledger.BuildFromHashes(leafHashes(3))

	for _, i := range []int{-1, 3, 100} {
		if _, err := ledger.Proof(i); err == nil {
			t.Errorf("Proof(%d) succeeded", i)
		}
	}
}
