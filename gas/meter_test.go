package gas

import "testing"

func TestChargeDecreasesLeft(t *testing.T) {
	m := WithLimit(100)
	if err := m.Charge(40); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.Left() != 60 {
		t.Errorf("Left() = %d, want 60", m.Left())
	}
	if m.Spent() != 40 {
		t.Errorf("Spent() = %d, want 40", m.Spent())
	}
}

func TestChargeSaturatesOnOverflow(t *testing.T) {
	m := WithLimit(10)
	if err := m.Charge(11); err == nil {
		t.Fatal("expected OutOfGas error")
	}
	if m.Left() != 0 {
		t.Errorf("Left() = %d, want 0 after saturating charge", m.Left())
	}
	if m.Spent() != 10 {
		t.Errorf("Spent() = %d, want 10", m.Spent())
	}
}

func TestExhaust(t *testing.T) {
	m := WithLimit(500)
	m.Exhaust()
	if m.Left() != 0 {
		t.Errorf("Left() = %d, want 0", m.Left())
	}
}

func TestChildRequestedClampedToParentLeft(t *testing.T) {
	parent := WithLimit(100)
	parent.Charge(70) // left = 30
	child := parent.Child(1000)
	if child.Limit() != 30 {
		t.Errorf("child.Limit() = %d, want 30 (clamped to parent.left)", child.Limit())
	}
}

func TestChildZeroRequestReservesFraction(t *testing.T) {
	parent := WithLimit(1000)
	child := parent.Child(0)
	want := uint64(930) // 93% of 1000
	if child.Limit() != want {
		t.Errorf("child.Limit() = %d, want %d", child.Limit(), want)
	}
}

func TestReconcileDecreasesParentByChildSpent(t *testing.T) {
	parent := WithLimit(1000)
	child := parent.Child(500)
	child.Charge(200)
	parent.Reconcile(child)
	if parent.Left() != 800 {
		t.Errorf("parent.Left() = %d, want 800", parent.Left())
	}
}

func TestGasMonotonicity(t *testing.T) {
	m := WithLimit(1000)
	before := m.Left()
	if err := m.Charge(123); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	after := m.Left()
	if after > before {
		t.Errorf("left increased: before=%d after=%d", before, after)
	}
	if m.Spent() != m.Limit()-after {
		t.Errorf("spent invariant violated: spent=%d limit-left=%d", m.Spent(), m.Limit()-after)
	}
}
