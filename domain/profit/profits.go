package profit

type Status string

const (
	StatusGreen  = Status("green")
	StatusOrange = Status("orange")
	StatusRed    = Status("red")
)

// TargetProfitRate target profit is a fixed 30% of the contract value.
const TargetProfitRate = 0.30

// Classify computes the target and actual profit of a contract and the
// tri-state profitability flag:
//
//	actual < 0               red
//	0 <= actual < target     orange
//	actual >= target         green
//
// Classify is total: there are no failure modes and no rounding here,
// rounding is a presentation concern.
func Classify(contractValue, staffCost, commission, tax, adminFee, overheadCost float64) (target, actual float64, status Status) {
	target = TargetProfitRate * contractValue
	actual = contractValue - (staffCost + commission + tax + adminFee + overheadCost)

	if actual < 0 {
		status = StatusRed
	} else if actual < target {
		status = StatusOrange
	} else {
		status = StatusGreen
	}
	return target, actual, status
}
