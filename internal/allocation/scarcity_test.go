package allocation

import (
	"testing"
	"time"

	requestdomain "github.com/givebridge/distribution/internal/request/domain"
)

var scoreNow = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

func TestCandidateScore(t *testing.T) {
	tests := []struct {
		name      string
		candidate Candidate
		want      float64
	}{
		{
			"high urgency family, no wait",
			Candidate{Urgency: requestdomain.UrgencyHigh, BeneficiaryType: requestdomain.TypeFamily, RequestDate: scoreNow},
			70,
		},
		{
			"medium urgency individual, no wait",
			Candidate{Urgency: requestdomain.UrgencyMedium, BeneficiaryType: requestdomain.TypeIndividual, RequestDate: scoreNow},
			40,
		},
		{
			"low urgency community, 10 days wait",
			Candidate{Urgency: requestdomain.UrgencyLow, BeneficiaryType: requestdomain.TypeCommunity, RequestDate: scoreNow.AddDate(0, 0, -10)},
			40,
		},
		{
			"wait bonus caps at 30",
			Candidate{Urgency: requestdomain.UrgencyLow, BeneficiaryType: requestdomain.TypeIndividual, RequestDate: scoreNow.AddDate(-1, 0, 0)},
			55,
		},
		{
			"unknown urgency and type use defaults",
			Candidate{Urgency: "critical", BeneficiaryType: "ngo", RequestDate: scoreNow},
			35,
		},
		{
			"future request date counts as zero wait",
			Candidate{Urgency: requestdomain.UrgencyHigh, BeneficiaryType: requestdomain.TypeFamily, RequestDate: scoreNow.AddDate(0, 0, 5)},
			70,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.candidate.Score(scoreNow); got != tt.want {
				t.Errorf("Score() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAllocateExhaustsSupply(t *testing.T) {
	// Two competitors for 5 units of rice: a high urgency family outranks a
	// medium urgency individual but neither gets more than requested, and
	// together they drain the stock exactly.
	candidates := []Candidate{
		{RequestID: 1, Requested: 5, Urgency: requestdomain.UrgencyHigh, BeneficiaryType: requestdomain.TypeFamily, RequestDate: scoreNow},
		{RequestID: 2, Requested: 5, Urgency: requestdomain.UrgencyMedium, BeneficiaryType: requestdomain.TypeIndividual, RequestDate: scoreNow},
	}

	out := Allocate(5, scoreNow, candidates)

	total := 0
	for _, a := range out {
		total += a.Allocated
		if a.Allocated > a.Requested {
			t.Errorf("request %d allocated %d beyond requested %d", a.RequestID, a.Allocated, a.Requested)
		}
	}
	if total != 5 {
		t.Fatalf("total allocated = %d, want 5", total)
	}

	// 70 vs 40 points: floor(5*70/110) = 3 for the family, remainder 2 for
	// the individual.
	if out[0].RequestID != 1 || out[0].Allocated != 3 {
		t.Errorf("first = {request %d, allocated %d}, want {1, 3}", out[0].RequestID, out[0].Allocated)
	}
	if out[1].RequestID != 2 || out[1].Allocated != 2 {
		t.Errorf("second = {request %d, allocated %d}, want {2, 2}", out[1].RequestID, out[1].Allocated)
	}
}

func TestAllocateTopsUpWhenLastIsCapped(t *testing.T) {
	// Equal scores, but the last-ranked candidate only wants 1 unit. The
	// leftover must flow back to the higher-ranked candidate.
	candidates := []Candidate{
		{RequestID: 1, Requested: 10, Urgency: requestdomain.UrgencyHigh, BeneficiaryType: requestdomain.TypeFamily, RequestDate: scoreNow},
		{RequestID: 2, Requested: 1, Urgency: requestdomain.UrgencyHigh, BeneficiaryType: requestdomain.TypeFamily, RequestDate: scoreNow.AddDate(0, 0, 1)},
	}

	out := Allocate(8, scoreNow, candidates)

	total := 0
	for _, a := range out {
		total += a.Allocated
	}
	if total != 8 {
		t.Fatalf("total allocated = %d, want 8", total)
	}
	if out[0].Allocated != 7 || out[1].Allocated != 1 {
		t.Errorf("allocations = (%d, %d), want (7, 1)", out[0].Allocated, out[1].Allocated)
	}
}

func TestAllocateDemandBelowSupply(t *testing.T) {
	candidates := []Candidate{
		{RequestID: 1, Requested: 2, Urgency: requestdomain.UrgencyHigh, BeneficiaryType: requestdomain.TypeFamily, RequestDate: scoreNow},
		{RequestID: 2, Requested: 3, Urgency: requestdomain.UrgencyLow, BeneficiaryType: requestdomain.TypeIndividual, RequestDate: scoreNow},
	}

	out := Allocate(100, scoreNow, candidates)

	for _, a := range out {
		if a.Allocated != a.Requested {
			t.Errorf("request %d allocated %d, want full %d", a.RequestID, a.Allocated, a.Requested)
		}
		if a.AllocationRate != 100 {
			t.Errorf("request %d rate = %v, want 100", a.RequestID, a.AllocationRate)
		}
	}
}

func TestAllocateZeroAvailable(t *testing.T) {
	candidates := []Candidate{
		{RequestID: 1, Requested: 4, Urgency: requestdomain.UrgencyHigh, RequestDate: scoreNow},
	}

	out := Allocate(0, scoreNow, candidates)
	if len(out) != 1 || out[0].Allocated != 0 {
		t.Fatalf("Allocate(0) = %+v, want single zero allocation", out)
	}
	if out[0].Score == 0 {
		t.Error("score must still be reported when nothing is available")
	}
}

func TestAllocateDeterministicTieBreak(t *testing.T) {
	// Identical scores and dates: lower request id ranks first, every run.
	candidates := []Candidate{
		{RequestID: 7, Requested: 10, Urgency: requestdomain.UrgencyHigh, BeneficiaryType: requestdomain.TypeFamily, RequestDate: scoreNow},
		{RequestID: 3, Requested: 10, Urgency: requestdomain.UrgencyHigh, BeneficiaryType: requestdomain.TypeFamily, RequestDate: scoreNow},
	}

	for i := 0; i < 10; i++ {
		out := Allocate(9, scoreNow, candidates)
		if out[0].RequestID != 3 {
			t.Fatalf("run %d: first ranked = %d, want 3", i, out[0].RequestID)
		}
		if out[0].Allocated != 4 || out[1].Allocated != 5 {
			t.Fatalf("run %d: allocations = (%d, %d), want (4, 5)", i, out[0].Allocated, out[1].Allocated)
		}
	}
}

func TestAllocationRate(t *testing.T) {
	candidates := []Candidate{
		{RequestID: 1, Requested: 4, Urgency: requestdomain.UrgencyHigh, BeneficiaryType: requestdomain.TypeFamily, RequestDate: scoreNow},
		{RequestID: 2, Requested: 4, Urgency: requestdomain.UrgencyHigh, BeneficiaryType: requestdomain.TypeFamily, RequestDate: scoreNow.AddDate(0, 0, 2)},
	}

	out := Allocate(6, scoreNow, candidates)
	for _, a := range out {
		want := float64(a.Allocated) / float64(a.Requested) * 100
		if a.AllocationRate != want {
			t.Errorf("request %d rate = %v, want %v", a.RequestID, a.AllocationRate, want)
		}
	}
}
