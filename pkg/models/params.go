package models

import "fmt"

// Params holds the scheduler weight vector and the target recall probability.
// The weights are read-only inputs to the memory model; learner profiles may
// override the defaults through the params store.
//
// Weight roles:
//
//	w[0]  initial stability (days) seeded on the first review
//	w[1]  initial difficulty
//	w[2]  retrievability exponent in the stability growth term
//	w[3]  stability multiplier on a failed recall
//	w[4]  stability growth factor for Hard
//	w[5]  stability growth factor for Good
//	w[6]  stability growth factor for Easy
//	w[7]  difficulty delta on Again
//	w[8]  difficulty delta on Hard
//	w[9]  difficulty delta on Good
//	w[10] difficulty delta on Easy
//	w[11] reserved
type Params struct {
	W                [12]float64 `json:"w"`
	RequestRetention float64     `json:"request_retention"` // target recall probability in (0,1)
}

// DefaultParams returns the stock weight vector. The values are tuned so a
// fresh verse graduates after one Good and roughly doubles its interval on
// each subsequent success at the default retention target.
func DefaultParams() Params {
	return Params{
		W: [12]float64{
			1.0,   // w[0]
			0.3,   // w[1]
			0.5,   // w[2]
			0.5,   // w[3]
			1.2,   // w[4]
			3.0,   // w[5]
			4.0,   // w[6]
			0.2,   // w[7]
			0.05,  // w[8]
			-0.05, // w[9]
			-0.1,  // w[10]
			0.0,   // w[11]
		},
		RequestRetention: 0.9,
	}
}

// Validate checks the parameter invariants the memory model relies on
func (p Params) Validate() error {
	if p.RequestRetention <= 0 || p.RequestRetention >= 1 {
		return fmt.Errorf("request retention must be in (0,1), got %v", p.RequestRetention)
	}
	if p.W[0] <= 0 {
		return fmt.Errorf("initial stability w[0] must be positive, got %v", p.W[0])
	}
	if p.W[1] < 0 || p.W[1] > 1 {
		return fmt.Errorf("initial difficulty w[1] must be in [0,1], got %v", p.W[1])
	}
	if p.W[3] <= 0 {
		return fmt.Errorf("lapse stability factor w[3] must be positive, got %v", p.W[3])
	}
	return nil
}
