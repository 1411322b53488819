// Package pricing converts INR procurement costs into USD selling prices.
package pricing

import "github.com/shopspring/decimal"

// MoneyPlaces is the precision every USD amount is stored with.
const MoneyPlaces = 2

// RatePlaces is the precision of derived exchange rates.
const RatePlaces = 6

var hundred = decimal.NewFromInt(100)

type Quote struct {
	TotalCostINR       float64
	ExchangeRate       float64
	MarkupPercentage   float64
	CostUSD            float64
	SellingPriceUSD    float64
	AdditionalCostsUSD float64
}

// Approve prices a reviewed procurement:
// (cost + additional) × rate × (1 + markup/100), rounded half-up to cents.
func Approve(costINR, additionalINR, rate, markupPercentage float64) Quote {
	d := decimal.NewFromFloat
	total := d(costINR).Add(d(additionalINR))
	r := d(rate)
	costUSD := total.Mul(r)
	price := costUSD.Mul(markupFactor(markupPercentage))

	return Quote{
		TotalCostINR:       total.InexactFloat64(),
		ExchangeRate:       rate,
		MarkupPercentage:   markupPercentage,
		CostUSD:            costUSD.Round(MoneyPlaces).InexactFloat64(),
		SellingPriceUSD:    price.Round(MoneyPlaces).InexactFloat64(),
		AdditionalCostsUSD: ConvertINR(additionalINR, rate),
	}
}

// Legacy prices the deprecated one-shot path, where the rate is quoted as INR per USD
// and the cost is divided by it.
func Legacy(costINR, inrPerUSD, markupPercentage float64) Quote {
	d := decimal.NewFromFloat
	perUSD := d(inrPerUSD)
	costUSD := d(costINR).Div(perUSD)
	price := costUSD.Mul(markupFactor(markupPercentage))

	return Quote{
		TotalCostINR:     costINR,
		ExchangeRate:     decimal.NewFromInt(1).Div(perUSD).Round(RatePlaces).InexactFloat64(),
		MarkupPercentage: markupPercentage,
		CostUSD:          costUSD.Round(MoneyPlaces).InexactFloat64(),
		SellingPriceUSD:  price.Round(MoneyPlaces).InexactFloat64(),
	}
}

// ConvertINR converts an INR amount with a multiplicative rate and rounds to cents.
func ConvertINR(amountINR, rate float64) float64 {
	return decimal.NewFromFloat(amountINR).Mul(decimal.NewFromFloat(rate)).Round(MoneyPlaces).InexactFloat64()
}

func Round(v float64) float64 {
	return decimal.NewFromFloat(v).Round(MoneyPlaces).InexactFloat64()
}

func markupFactor(markupPercentage float64) decimal.Decimal {
	return decimal.NewFromInt(1).Add(decimal.NewFromFloat(markupPercentage).Div(hundred))
}
