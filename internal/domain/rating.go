package domain

// Rating is the provider's overall grade for a service.
type Rating string

const (
	RatingUnknown Rating = ""
	RatingA       Rating = "A"
	RatingB       Rating = "B"
	RatingC       Rating = "C"
	RatingD       Rating = "D"
	RatingE       Rating = "E"
	RatingNA      Rating = "N/A"
)

// RatingFromBitmask maps the provider's rating bit to a label.
// Unmapped values yield RatingUnknown.
func RatingFromBitmask(mask int) Rating {
	switch mask {
	case 0x1:
		return RatingA
	case 0x2:
		return RatingB
	case 0x4:
		return RatingC
	case 0x8:
		return RatingD
	case 0x10:
		return RatingE
	case 0x20:
		return RatingNA
	default:
		return RatingUnknown
	}
}

// Known reports whether the rating carries a label.
func (r Rating) Known() bool {
	return r != RatingUnknown
}
