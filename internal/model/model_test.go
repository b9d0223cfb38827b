package model

import "testing"

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{StatusPending, StatusExtracted, true},
		{StatusExtracted, StatusSummarized, true},
		{StatusSummarized, StatusCompleted, true},
		{StatusPending, StatusSummarized, false},
		{StatusPending, StatusCompleted, false},
		{StatusSummarized, StatusExtracted, false},
		{StatusPending, StatusFailed, true},
		{StatusSummarized, StatusFailed, true},
		{StatusCompleted, StatusFailed, false},
		{StatusFailed, StatusPending, false},
		{StatusFailed, StatusFailed, false},
	}
	for _, tc := range cases {
		if got := CanTransition(tc.from, tc.to); got != tc.want {
			t.Fatalf("CanTransition(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestSubscriptionUpdateApply(t *testing.T) {
	u := NewFreeUser("u1", "u1@demo.com", "u1")
	premium := true
	status := SubscriptionStatusActive
	subID := "sub_123"
	SubscriptionUpdate{IsPremium: &premium, Status: &status, SubscriptionID: &subID}.Apply(u)

	if !u.IsPremium || u.SubscriptionStatus != "active" || u.SubscriptionID == nil || *u.SubscriptionID != "sub_123" {
		t.Fatalf("update not applied: %+v", u)
	}
	if u.SubscriptionEndDate != nil {
		t.Fatalf("end date should be untouched, got %v", u.SubscriptionEndDate)
	}
}
