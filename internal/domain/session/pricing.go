package session

import "math"

// UnlimitedAllowance marks a plan whose screenshots are never counted against a limit.
const UnlimitedAllowance = -1

type Plan struct {
	Tier        Tier
	DisplayName string
	Price       float64
	Allowance   int
	Description string
	Popular     bool
}

// Read-only after init. Never hand out pointers into this map.
var plans = map[Tier]Plan{
	TierStarter: {
		Tier:        TierStarter,
		DisplayName: "Starter",
		Price:       3.99,
		Allowance:   15,
		Description: "Perfect for occasional use",
		Popular:     true,
	},
	TierPro: {
		Tier:        TierPro,
		DisplayName: "Pro",
		Price:       6.99,
		Allowance:   25,
		Description: "Great for regular creators",
	},
	TierUnlimited: {
		Tier:        TierUnlimited,
		DisplayName: "Unlimited",
		Price:       15.99,
		Allowance:   UnlimitedAllowance,
		Description: "No limits, create freely",
	},
}

var planOrder = []Tier{TierStarter, TierPro, TierUnlimited}

// PlanFor returns the static plan for a tier.
func PlanFor(t Tier) (Plan, bool) {
	p, ok := plans[t]
	return p, ok
}

// Plans returns every plan in display order.
func Plans() []Plan {
	out := make([]Plan, 0, len(planOrder))
	for _, t := range planOrder {
		out = append(out, plans[t])
	}
	return out
}

// AmountMinorUnits is the charge in cents, rounded half away from zero.
func (p Plan) AmountMinorUnits() int64 {
	return int64(math.Round(p.Price * 100))
}

func (p Plan) IsUnlimited() bool {
	return p.Allowance == UnlimitedAllowance
}
