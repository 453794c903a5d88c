package rewards

import (
	"fmt"

	"github.com/GoPolymarket/xterio-checker/internal/model"
	"github.com/shopspring/decimal"
)

type envelope[T any] struct {
	Data *T `json:"data"`
}

type challengeData struct {
	Message *string `json:"message"`
}

type loginRequest struct {
	Address    string `json:"address"`
	Type       string `json:"type"`
	Sign       string `json:"sign"`
	Provider   string `json:"provider"`
	InviteCode string `json:"invite_code"`
}

type loginData struct {
	IDToken *string `json:"id_token"`
}

type pointsData struct {
	TotalPoints []pointsEntry `json:"total_points"`
}

// pointsEntry accepts both JSON numbers and numeric strings.
type pointsEntry struct {
	Points      *decimal.Decimal `json:"points"`
	BonusPoints *decimal.Decimal `json:"bonus_points"`
}

func (e pointsEntry) tally() (model.PointsTally, error) {
	points, err := wholePoints("points", e.Points)
	if err != nil {
		return model.PointsTally{}, err
	}
	bonus, err := wholePoints("bonus_points", e.BonusPoints)
	if err != nil {
		return model.PointsTally{}, err
	}
	return model.PointsTally{Points: points, BonusPoints: bonus}, nil
}

func wholePoints(field string, d *decimal.Decimal) (int64, error) {
	switch {
	case d == nil:
		return 0, fmt.Errorf("%s missing", field)
	case d.IsNegative():
		return 0, fmt.Errorf("%s is negative: %s", field, d.String())
	case !d.IsInteger():
		return 0, fmt.Errorf("%s is not a whole number: %s", field, d.String())
	case !d.BigInt().IsInt64():
		return 0, fmt.Errorf("%s overflows int64: %s", field, d.String())
	}
	return d.IntPart(), nil
}
