package ranking

import "adhok_platform/internal/models/bids"

// Badge tiers, lowest to highest. Unknown labels rank 0, same as no badge.
const (
	BadgeSpecialist = "Specialist"
	BadgePro        = "Pro Talent"
	BadgeExpert     = "Expert Talent"
)

// DefaultMinimumBadge applies when a project leaves its minimum unset.
// Note the asymmetry: an unset project minimum is upgraded to Specialist,
// an unset bid badge stays at rank 0. Default strictness depends on it.
const DefaultMinimumBadge = BadgeSpecialist

var badgeRank = map[string]int{
	BadgeExpert:     3,
	BadgePro:        2,
	BadgeSpecialist: 1,
	"":              0,
}

// Rank returns the ordinal tier of a badge label. Unknown labels are
// rank 0, not an error.
func Rank(badge string) int {
	return badgeRank[badge]
}

// Qualifies reports whether a bid badge meets a project's minimum.
func Qualifies(bidBadge, minimumBadge string) bool {
	if minimumBadge == "" {
		minimumBadge = DefaultMinimumBadge
	}
	return Rank(bidBadge) >= Rank(minimumBadge)
}

// Partition splits bids into qualifying and underqualified halves,
// both preserving submission order.
func Partition(list []bids.Bid, minimumBadge string) (qualifying, underqualified []bids.Bid) {
	qualifying = make([]bids.Bid, 0, len(list))
	underqualified = make([]bids.Bid, 0)
	for _, b := range list {
		if Qualifies(b.Badge, minimumBadge) {
			qualifying = append(qualifying, b)
		} else {
			underqualified = append(underqualified, b)
		}
	}
	return qualifying, underqualified
}

// ValidBadge reports whether a label is one of the known tiers. The empty
// string is accepted, meaning "no badge".
func ValidBadge(badge string) bool {
	_, ok := badgeRank[badge]
	return ok
}
