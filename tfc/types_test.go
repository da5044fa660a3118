package tfc_test

import (
	"testing"
	"time"

	"github.com/brightkite/tfc-engine/tfc"
)

func TestPayment_Validate(t *testing.T) {
	valid := tfc.Payment{
		ID:              "pay-1",
		ChildID:         "chd-1",
		Amount:          tfc.NewMoney(400),
		ParentPaid:      tfc.NewMoney(320),
		GovernmentTopUp: tfc.NewMoney(80),
		Date:            tfc.NewDate(2024, time.January, 10),
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid payment rejected: %v", err)
	}

	mismatch := valid
	mismatch.Amount = tfc.NewMoney(401)
	if err := mismatch.Validate(); err != tfc.ErrAmountMismatch {
		t.Errorf("expected ErrAmountMismatch, got %v", err)
	}

	negative := valid
	negative.ParentPaid = tfc.NewMoney(-1)
	negative.Amount = tfc.NewMoney(79)
	if err := negative.Validate(); err != tfc.ErrInvalidAmount {
		t.Errorf("expected ErrInvalidAmount, got %v", err)
	}

	orphan := valid
	orphan.ChildID = ""
	if err := orphan.Validate(); err != tfc.ErrChildRequired {
		t.Errorf("expected ErrChildRequired, got %v", err)
	}

	undated := valid
	undated.Date = time.Time{}
	if err := undated.Validate(); err != tfc.ErrInvalidDate {
		t.Errorf("expected ErrInvalidDate, got %v", err)
	}
}

func TestChild_Age(t *testing.T) {
	c := tfc.Child{DateOfBirth: tfc.NewDate(2021, time.June, 5)}

	if got := c.Age(tfc.NewDate(2024, time.June, 4)); got != 2 {
		t.Errorf("day before birthday: expected 2, got %d", got)
	}
	if got := c.Age(tfc.NewDate(2024, time.June, 5)); got != 3 {
		t.Errorf("on birthday: expected 3, got %d", got)
	}
	if got := (tfc.Child{}).Age(tfc.NewDate(2024, time.June, 5)); got != 0 {
		t.Errorf("no date of birth: expected 0, got %d", got)
	}
}
