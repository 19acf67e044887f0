// Package aggregate turns a store's individual star ratings into the summary
// shown on listings and dashboards.
package aggregate

import (
	"fmt"
	"math"

	"storerating/internal/models"
)

var (
	// ErrNoRatings is returned by Mean for an empty input.
	ErrNoRatings = fmt.Errorf("%w: no ratings to average", models.ErrInvalidInput)
	// ErrRatingOutOfRange is returned by Mean for a value outside 1-5.
	ErrRatingOutOfRange = fmt.Errorf("%w: rating out of range", models.ErrInvalidInput)
)

const maxStars = 5

// Summary is the display form of a set of ratings. Average is nil when there
// are no ratings.
type Summary struct {
	Count   int      `json:"count"`
	Average *float64 `json:"average"`
	Stars   int      `json:"stars"`
}

// Mean returns the arithmetic mean of ratings.
func Mean(ratings []int) (float64, error) {
	if len(ratings) == 0 {
		return 0, ErrNoRatings
	}
	sum := 0
	for _, r := range ratings {
		if r < 1 || r > maxStars {
			return 0, fmt.Errorf("%w: %d", ErrRatingOutOfRange, r)
		}
		sum += r
	}
	return float64(sum) / float64(len(ratings)), nil
}

// RoundTenth rounds x to one decimal place.
func RoundTenth(x float64) float64 {
	return math.Round(x*10) / 10
}

// Stars is the number of filled stars for an average: the nearest integer,
// clamped to 0-5.
func Stars(x float64) int {
	s := int(math.Round(x))
	if s < 0 {
		return 0
	}
	if s > maxStars {
		return maxStars
	}
	return s
}

// Summarize builds the display summary. Out of range values are skipped.
func Summarize(ratings []int) Summary {
	valid := make([]int, 0, len(ratings))
	for _, r := range ratings {
		if r >= 1 && r <= maxStars {
			valid = append(valid, r)
		}
	}
	mean, err := Mean(valid)
	if err != nil {
		return Summary{}
	}
	avg := RoundTenth(mean)
	return Summary{Count: len(valid), Average: &avg, Stars: Stars(mean)}
}

// Values extracts the star values of ratings.
func Values(ratings []models.Rating) []int {
	out := make([]int, len(ratings))
	for i, r := range ratings {
		out[i] = r.Value
	}
	return out
}
