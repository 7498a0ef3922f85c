package commitment_test

import (
	"testing"

	"github.com/a2lprotocol/a2l-go/pkg/commitment"
	"github.com/a2lprotocol/a2l-go/pkg/curve"
)

func TestCommitDecommitRoundTrip(t *testing.T) {
	x, err := curve.RandomScalar()
	if err != nil {
		t.Fatalf("RandomScalar: %v", err)
	}
	X := curve.MulGenerator(x)

	c, err := commitment.Commit(X)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if err := commitment.Decommit(c, X); err != nil {
		t.Fatalf("Decommit: %v", err)
	}
}

func TestDecommitRejectsTamperedPoint(t *testing.T) {
	x, err := curve.RandomScalar()
	if err != nil {
		t.Fatalf("RandomScalar: %v", err)
	}
	X := curve.MulGenerator(x)

	c, err := commitment.Commit(X)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	other, err := curve.RandomScalar()
	if err != nil {
		t.Fatalf("RandomScalar: %v", err)
	}
	wrongX := curve.MulGenerator(other)

	if err := commitment.Decommit(c, wrongX); err == nil {
		t.Fatal("expected decommitment failure for mismatched point")
	}
}

func TestDecommitRejectsTamperedBlinder(t *testing.T) {
	x, err := curve.RandomScalar()
	if err != nil {
		t.Fatalf("RandomScalar: %v", err)
	}
	X := curve.MulGenerator(x)

	c, err := commitment.Commit(X)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	other, err := curve.RandomScalar()
	if err != nil {
		t.Fatalf("RandomScalar: %v", err)
	}
	c.R = curve.MulGenerator(other)

	if err := commitment.Decommit(c, X); err == nil {
		t.Fatal("expected decommitment failure for tampered blinder")
	}
}

func TestDecommitRejectsTamperedC(t *testing.T) {
	x, err := curve.RandomScalar()
	if err != nil {
		t.Fatalf("RandomScalar: %v", err)
	}
	X := curve.MulGenerator(x)

	c, err := commitment.Commit(X)
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}

	one, err := curve.NewScalarFromBytes(append(make([]byte, 31), 1))
	if err != nil {
		t.Fatalf("NewScalarFromBytes: %v", err)
	}
	c.C = c.C.Add(one)

	if err := commitment.Decommit(c, X); err == nil {
		t.Fatal("expected decommitment failure for tampered commitment value")
	}
}
