package ranking

import (
	"testing"

	"adhok_platform/internal/models/bids"
)

func TestQualifiesBoundaries(t *testing.T) {
	cases := []struct {
		bidBadge     string
		minimumBadge string
		want         bool
	}{
		{"Expert Talent", "Specialist", true},
		{"Specialist", "Expert Talent", false},
		{"Pro Talent", "Pro Talent", true},
		{"Expert Talent", "Expert Talent", true},
		{"Specialist", "Specialist", true},
		{"", "Specialist", false},
		{"Junior Wizard", "Specialist", false}, // unknown label ranks 0
	}

	for _, c := range cases {
		if got := Qualifies(c.bidBadge, c.minimumBadge); got != c.want {
			t.Errorf("Qualifies(%q, %q) = %v, want %v", c.bidBadge, c.minimumBadge, got, c.want)
		}
	}
}

func TestQualifiesEmptyMinimumDefaultsToSpecialist(t *testing.T) {
	// An unset minimum is upgraded to Specialist, while an unset bid
	// badge stays at rank 0, so an unbadged bid never qualifies by default.
	if Qualifies("", "") {
		t.Error("Qualifies(\"\", \"\") = true, want false")
	}
	if !Qualifies("Specialist", "") {
		t.Error("Qualifies(\"Specialist\", \"\") = false, want true")
	}
	if !Qualifies("Expert Talent", "") {
		t.Error("Qualifies(\"Expert Talent\", \"\") = false, want true")
	}
}

func TestRankUnknownBadge(t *testing.T) {
	if got := Rank("Grand Master"); got != 0 {
		t.Errorf("Rank of unknown badge = %d, want 0", got)
	}
	if got := Rank("Expert Talent"); got != 3 {
		t.Errorf("Rank(\"Expert Talent\") = %d, want 3", got)
	}
}

func TestPartitionPreservesOrder(t *testing.T) {
	input := []bids.Bid{
		{Id: "b1", Badge: "Specialist"},
		{Id: "b2", Badge: "Expert Talent"},
		{Id: "b3", Badge: ""},
	}

	qualifying, underqualified := Partition(input, "Pro Talent")

	if len(qualifying) != 1 || qualifying[0].Id != "b2" {
		t.Fatalf("unexpected qualifying set: %#v", qualifying)
	}
	if len(underqualified) != 2 || underqualified[0].Id != "b1" || underqualified[1].Id != "b3" {
		t.Fatalf("unexpected underqualified set: %#v", underqualified)
	}
}

func TestPartitionIsAPermutation(t *testing.T) {
	input := []bids.Bid{
		{Id: "b1", Badge: "Expert Talent"},
		{Id: "b2", Badge: "Pro Talent"},
		{Id: "b3", Badge: "Specialist"},
		{Id: "b4", Badge: ""},
		{Id: "b5", Badge: "Pro Talent"},
	}

	qualifying, underqualified := Partition(input, "Pro Talent")

	if len(qualifying)+len(underqualified) != len(input) {
		t.Fatalf("partition dropped or duplicated bids: %d + %d != %d",
			len(qualifying), len(underqualified), len(input))
	}

	seen := make(map[string]bool)
	for _, b := range append(append([]bids.Bid{}, qualifying...), underqualified...) {
		if seen[b.Id] {
			t.Fatalf("bid %s appears in both halves", b.Id)
		}
		seen[b.Id] = true
	}
	for _, b := range input {
		if !seen[b.Id] {
			t.Fatalf("bid %s missing from partition", b.Id)
		}
	}
}

func TestPartitionEmptyInput(t *testing.T) {
	qualifying, underqualified := Partition(nil, "")
	if len(qualifying) != 0 || len(underqualified) != 0 {
		t.Fatalf("partition of empty input not empty: %v, %v", qualifying, underqualified)
	}
}
