package service

import (
	"math"

	models "github.com/chrisdamba/boatride/internal"
)

// Fixed commission model: 20% is collected up front, 80% goes to the driver
// when the ride is finished.
const (
	advanceShare = 0.2
	payoutShare  = 0.8
)

// PayableBase is the amount the split applies to: the GST inclusive price,
// else the discounted price, else the list price.
func PayableBase(b *models.Booking) float64 {
	switch {
	case b.PriceWithGST > 0:
		return b.PriceWithGST
	case b.FinalPrice > 0:
		return b.FinalPrice
	default:
		return b.TotalPrice
	}
}

func AdvanceCollected(b *models.Booking) float64 {
	if b.AdvancePayment > 0 {
		return b.AdvancePayment
	}
	return round2(PayableBase(b) * advanceShare)
}

func DriverPayout(b *models.Booking) float64 {
	if b.RemainingPayment > 0 {
		return b.RemainingPayment
	}
	return round2(PayableBase(b) * payoutShare)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
