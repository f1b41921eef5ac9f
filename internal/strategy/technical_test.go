package strategy

import (
	"reflect"
	"testing"

	"SignalSentinel/internal/model"
)

func TestTechnicalSignals(t *testing.T) {
	tests := []struct {
		name  string
		price float64
		ind   model.Indicators
		want  []string
	}{
		{"oversold and downtrend", 90, model.Indicators{RSI: 25, MACD: -1, SMA20: 95, SMA50: 100},
			[]string{SignalRSIOversold, SignalMACDNegative, SignalDowntrend}},
		{"overbought and uptrend", 120, model.Indicators{RSI: 75, MACD: 2, SMA20: 110, SMA50: 100},
			[]string{SignalRSIOverbought, SignalMACDPositive, SignalUptrend}},
		{"neutral, no alignment", 100, model.Indicators{RSI: 50, MACD: 0.5, SMA20: 101, SMA50: 99},
			[]string{SignalRSINeutral, SignalMACDPositive}},
		{"RSI between bands has no line", 100, model.Indicators{RSI: 35, MACD: 0, SMA20: 100, SMA50: 100},
			[]string{SignalMACDNegative}},
		{"boundaries 30 and 70 are not extremes", 100, model.Indicators{RSI: 70, MACD: -0.1, SMA20: 100, SMA50: 100},
			[]string{SignalMACDNegative}},
		{"neutral band is inclusive", 100, model.Indicators{RSI: 40, MACD: 1, SMA20: 100, SMA50: 100},
			[]string{SignalRSINeutral, SignalMACDPositive}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TechnicalSignals(tt.price, tt.ind)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestEvaluate_CarriesIndicators(t *testing.T) {
	// Rising closes 1..60: SMA20 = 50.5, SMA50 = 35.5, every delta a gain.
	bars := make(model.PriceSeries, 60)
	for i := range bars {
		bars[i] = model.OHLCV{Close: float64(i + 1)}
	}
	sig := Evaluate(&model.MarketData{
		Snapshot: &model.PriceSnapshot{Current: 61, PreviousClose: 60},
		History:  bars,
	})

	if !sig.IndicatorsKnown {
		t.Fatal("expected indicators with history")
	}
	if sig.Indicators.SMA20 != 50.5 || sig.Indicators.SMA50 != 35.5 {
		t.Errorf("unexpected SMAs %.2f / %.2f", sig.Indicators.SMA20, sig.Indicators.SMA50)
	}
	if sig.Indicators.MACD <= 0 {
		t.Errorf("expected positive MACD on a rising series, got %.3f", sig.Indicators.MACD)
	}
	want := []string{SignalRSIOverbought, SignalMACDPositive, SignalUptrend}
	if !reflect.DeepEqual(sig.Technical, want) {
		t.Errorf("expected %v, got %v", want, sig.Technical)
	}
}
