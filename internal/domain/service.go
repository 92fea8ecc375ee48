package domain

// ServiceRef is an entry of the provider's master service list.
type ServiceRef struct {
	ID string
}

// Service is a web site or product tracked by the rating provider.
type Service struct {
	ID          string
	URL         string
	RelatedURLs []string
	Rating      Rating
	Points      []Point
}

// PointStatusApproved marks points that passed the provider's review.
const PointStatusApproved = "approved"

// Point is one reviewed clause about a service's terms.
type Point struct {
	Status string
	CaseID string
}

// Approved reports whether the point is eligible for aggregation.
func (p Point) Approved() bool {
	return p.Status == PointStatusApproved
}

// Case is the canonical claim a point maps to.
type Case struct {
	ID             string
	Title          string
	Classification Classification
	Score          int
}

// Classification of a case; only good and bad are recognised.
type Classification string

const (
	ClassificationGood Classification = "good"
	ClassificationBad  Classification = "bad"
)

// Valid reports whether the classification takes part in scoring.
func (c Classification) Valid() bool {
	return c == ClassificationGood || c == ClassificationBad
}
