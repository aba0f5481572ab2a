package engine

import (
	"math"

	"SediPull/pkg/config"
)

// DisplayScore maps a raw additive score onto [0,100] with a logistic
// curve, for presentation only. The raw score stays on the Signal: the
// consensus and escalation stages operate on it and it is what anyone
// debugging a weight change wants to see.
func DisplayScore(raw int, cfg config.Scoring) int {
	v := 100 / (1 + math.Exp(-cfg.DisplaySlope*(float64(raw)-cfg.DisplayMidpoint)))
	return int(math.Round(v))
}
