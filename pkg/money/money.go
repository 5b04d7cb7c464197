package money

import "github.com/shopspring/decimal"

// Exponente de la unidad menor de la moneda (centavos = 2 decimales).
const MinorUnitExponent = 2

// RoundMinorUnit redondea a la unidad menor de la moneda con regla half-up.
// Para montos positivos decimal.Round (half away from zero) equivale a half-up,
// que es la regla exigida para descuentos porcentuales.
func RoundMinorUnit(d decimal.Decimal) decimal.Decimal {
	return d.Round(MinorUnitExponent)
}

// Percent calcula base * pct / 100 sin redondeo intermedio.
func Percent(base, pct decimal.Decimal) decimal.Decimal {
	return base.Mul(pct).Div(decimal.NewFromInt(100))
}

// SplitByShare reparte un total según un porcentaje de participación (0–100).
func SplitByShare(total, sharePct decimal.Decimal) decimal.Decimal {
	return Percent(total, sharePct)
}

// Min devuelve el menor de dos montos.
func Min(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

// Clamp limita d al rango [lo, hi].
func Clamp(d, lo, hi decimal.Decimal) decimal.Decimal {
	if d.LessThan(lo) {
		return lo
	}
	if d.GreaterThan(hi) {
		return hi
	}
	return d
}
