package model

import "github.com/GoPolymarket/xterio-checker/internal/pkg/apperrors"

// UnknownAddress stands in for a wallet whose address could not be derived.
const UnknownAddress = "unknown"

// PointsTally is the first entry of the dashboard's total_points array.
type PointsTally struct {
	Points      int64 `json:"points"`
	BonusPoints int64 `json:"bonus_points"`
}

func (t PointsTally) Total() int64 {
	return t.Points + t.BonusPoints
}

// CheckResult is the outcome of one wallet check. Err is nil on success.
type CheckResult struct {
	Address string
	Balance int64
	Err     *apperrors.AppError
}

func Success(address string, balance int64) CheckResult {
	return CheckResult{Address: address, Balance: balance}
}

func Failure(address string, err error) CheckResult {
	if address == "" {
		address = UnknownAddress
	}
	appErr := apperrors.Wrap(err)
	if appErr == nil {
		appErr = apperrors.NewUnexpectedFault("failure without error")
	}
	return CheckResult{Address: address, Err: appErr}
}

func (r CheckResult) OK() bool {
	return r.Err == nil
}

// Progress is a point-in-time view of a running batch.
type Progress struct {
	Queued      int64 `json:"queued"`
	Processed   int64 `json:"processed"`
	Succeeded   int64 `json:"succeeded"`
	Failed      int64 `json:"failed"`
	TotalPoints int64 `json:"total_points"`
}
