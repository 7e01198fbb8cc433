package allocation

import (
	"math"
	"sort"
	"time"

	requestdomain "github.com/givebridge/distribution/internal/request/domain"
)

// Scarcity score weights. Urgency dominates, beneficiary type second, wait
// time tops out at 30 points after 60 days.
const (
	urgencyWeightHigh    = 40.0
	urgencyWeightMedium  = 25.0
	urgencyWeightLow     = 10.0
	urgencyWeightDefault = 20.0

	typeWeightFamily      = 30.0
	typeWeightCommunity   = 25.0
	typeWeightInstitution = 20.0
	typeWeightDefault     = 15.0

	waitWeightPerDay = 0.5
	waitWeightCap    = 30.0
)

// Candidate is one competing demand for a single inventory record.
type Candidate struct {
	RequestID       uint
	Requested       int
	Urgency         requestdomain.Urgency
	BeneficiaryType requestdomain.BeneficiaryType
	RequestDate     time.Time
}

// Allocation is the scarcity allocator's verdict for one candidate.
// AllocationRate is allocated/requested as a percentage, recorded for
// transparency toward staff reviewing the split.
type Allocation struct {
	RequestID      uint    `json:"request_id"`
	Requested      int     `json:"requested"`
	Allocated      int     `json:"allocated"`
	Score          float64 `json:"score"`
	AllocationRate float64 `json:"allocation_rate"`
}

// Score computes the priority score of a candidate at the given time.
func (c Candidate) Score(now time.Time) float64 {
	score := urgencyWeightDefault
	switch c.Urgency {
	case requestdomain.UrgencyHigh:
		score = urgencyWeightHigh
	case requestdomain.UrgencyMedium:
		score = urgencyWeightMedium
	case requestdomain.UrgencyLow:
		score = urgencyWeightLow
	}

	switch c.BeneficiaryType {
	case requestdomain.TypeFamily:
		score += typeWeightFamily
	case requestdomain.TypeCommunity:
		score += typeWeightCommunity
	case requestdomain.TypeInstitution:
		score += typeWeightInstitution
	default:
		score += typeWeightDefault
	}

	days := now.Sub(c.RequestDate).Hours() / 24
	if days < 0 {
		days = 0
	}
	score += math.Min(days*waitWeightPerDay, waitWeightCap)

	return score
}

// Allocate splits available stock across competing candidates proportionally
// to their priority scores. It is a pure function of its inputs.
//
// Every candidate but the last (in descending score order) receives
// floor(available x score/totalScore), capped by its own request and by what
// remains; the last candidate absorbs the rounding remainder. When total
// demand meets or exceeds supply the available quantity is exhausted exactly,
// and no candidate ever receives more than it requested.
func Allocate(available int, now time.Time, candidates []Candidate) []Allocation {
	if len(candidates) == 0 || available <= 0 {
		out := make([]Allocation, len(candidates))
		for i, c := range candidates {
			out[i] = Allocation{RequestID: c.RequestID, Requested: c.Requested, Score: c.Score(now)}
		}
		return out
	}

	type scored struct {
		Candidate
		score float64
	}
	ranked := make([]scored, len(candidates))
	totalScore := 0.0
	for i, c := range candidates {
		s := c.Score(now)
		ranked[i] = scored{Candidate: c, score: s}
		totalScore += s
	}

	// Descending by score; ties broken by older request then lower id so the
	// outcome is deterministic for identical inputs.
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		if !ranked[i].RequestDate.Equal(ranked[j].RequestDate) {
			return ranked[i].RequestDate.Before(ranked[j].RequestDate)
		}
		return ranked[i].RequestID < ranked[j].RequestID
	})

	out := make([]Allocation, len(ranked))
	remaining := available
	for i, c := range ranked {
		var allocated int
		if i == len(ranked)-1 {
			// Last in rank absorbs all rounding error
			allocated = remaining
		} else {
			share := int(math.Floor(float64(available) * c.score / totalScore))
			allocated = share
		}
		if allocated > c.Requested {
			allocated = c.Requested
		}
		if allocated > remaining {
			allocated = remaining
		}
		remaining -= allocated

		out[i] = Allocation{
			RequestID: c.RequestID,
			Requested: c.Requested,
			Allocated: allocated,
			Score:     c.score,
		}
	}

	// Top-up pass: when the last-ranked candidate's own request caps the
	// remainder, hand what is left back to higher-ranked candidates that were
	// floored below their request. Guarantees exact exhaustion whenever total
	// demand >= supply.
	for i := range out {
		if remaining == 0 {
			break
		}
		headroom := out[i].Requested - out[i].Allocated
		if headroom > remaining {
			headroom = remaining
		}
		out[i].Allocated += headroom
		remaining -= headroom
	}

	for i := range out {
		if out[i].Requested > 0 {
			out[i].AllocationRate = float64(out[i].Allocated) / float64(out[i].Requested) * 100
		}
	}

	return out
}
