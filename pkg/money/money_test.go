package money_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/colegia/cobranza-api/pkg/money"
)

func dec(s string) decimal.Decimal {
	d, _ := decimal.NewFromString(s)
	return d
}

// RoundMinorUnit debe redondear half-up a centavos: 0.005 sube, 0.004 baja.
func TestRoundMinorUnit_HalfUp(t *testing.T) {
	assert.True(t, dec("10.01").Equal(money.RoundMinorUnit(dec("10.005"))),
		"0.005 debe redondear hacia arriba")
	assert.True(t, dec("10.00").Equal(money.RoundMinorUnit(dec("10.004"))),
		"0.004 debe redondear hacia abajo")
	assert.True(t, dec("10.00").Equal(money.RoundMinorUnit(dec("10"))),
		"un entero no cambia")
}

func TestPercent_SinRedondeoIntermedio(t *testing.T) {
	// 33.33% de 100 = 33.33 exacto con decimales, no con float
	got := money.Percent(dec("100"), dec("33.33"))
	assert.True(t, dec("33.33").Equal(got), "33.33%% de 100 debe ser 33.33, fue %s", got)

	// 20% de 1000 = 200
	assert.True(t, dec("200").Equal(money.Percent(dec("1000"), dec("20"))))
}

func TestSplitByShare(t *testing.T) {
	total := dec("1500")
	assert.True(t, dec("450").Equal(money.SplitByShare(total, dec("30"))),
		"30%% de 1500 debe ser 450")
	assert.True(t, dec("1050").Equal(money.SplitByShare(total, dec("70"))),
		"70%% de 1500 debe ser 1050")
}

func TestMinYClamp(t *testing.T) {
	assert.True(t, dec("3").Equal(money.Min(dec("3"), dec("5"))))
	assert.True(t, dec("3").Equal(money.Min(dec("5"), dec("3"))))

	assert.True(t, dec("0").Equal(money.Clamp(dec("-1"), decimal.Zero, dec("10"))),
		"por debajo del rango se limita al mínimo")
	assert.True(t, dec("10").Equal(money.Clamp(dec("11"), decimal.Zero, dec("10"))),
		"por encima del rango se limita al máximo")
	assert.True(t, dec("7").Equal(money.Clamp(dec("7"), decimal.Zero, dec("10"))),
		"dentro del rango no cambia")
}
