package chainstate

import (
	"math"
	"sync"
)

const (
	falsePositiveAlpha = 0.0001
	falsePositiveBeta  = 0.01
)

// falsePositiveEstimator tracks the rate of filtered transactions that
// turned out to be irrelevant with a double exponential moving average:
// every false positive counts as 1.0 and every other transaction as 0.0.
type falsePositiveEstimator struct {
	lock         sync.Mutex
	rate         float64
	trend        float64
	previousRate float64
}

// FalsePositiveRate returns the current false positive estimate.
func (cs *ChainState) FalsePositiveRate() float64 {
	cs.falsePositives.lock.Lock()
	defer cs.falsePositives.lock.Unlock()
	return cs.falsePositives.rate
}

// TrackFalsePositives records count irrelevant transactions.
func (cs *ChainState) TrackFalsePositives(count int) {
	fp := &cs.falsePositives
	fp.lock.Lock()
	defer fp.lock.Unlock()

	fp.rate += falsePositiveAlpha * float64(count)
	if count > 0 {
		log.Debugf("%d false positives, current rate = %f trend = %f", count, fp.rate, fp.trend)
	}
}

// ResetFalsePositiveEstimate forgets every tracked transaction, as when a
// new filter is sent.
func (cs *ChainState) ResetFalsePositiveEstimate() {
	fp := &cs.falsePositives
	fp.lock.Lock()
	defer fp.lock.Unlock()

	fp.rate = 0
	fp.trend = 0
	fp.previousRate = 0
}

// trackFilteredTransactions decays the estimate by the count transactions
// of a filtered block. False positives of the block are expected to be
// tracked before it, so they weigh as if they came first.
func (cs *ChainState) trackFilteredTransactions(count int) {
	fp := &cs.falsePositives
	fp.lock.Lock()
	defer fp.lock.Unlock()

	alphaDecay := math.Pow(1-falsePositiveAlpha, float64(count))
	fp.rate = alphaDecay * fp.rate

	betaDecay := math.Pow(1-falsePositiveBeta, float64(count))
	fp.trend = falsePositiveBeta*float64(count)*(fp.rate-fp.previousRate) + betaDecay*fp.trend

	fp.rate += alphaDecay * fp.trend
	fp.previousRate = fp.rate
}
