package engine

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"pgregory.net/rapid"

	"stocksim/types"
)

func TestWeightedAvg(t *testing.T) {
	tests := []struct {
		name             string
		existingAvgPrice decimal.Decimal
		existingQty      decimal.Decimal
		newPrice         decimal.Decimal
		newQty           decimal.Decimal
		want             decimal.Decimal
	}{
		{
			name:             "no existing quantity",
			existingAvgPrice: decimal.Zero,
			existingQty:      decimal.Zero,
			newPrice:         decimal.RequireFromString("150"),
			newQty:           decimal.RequireFromString("10"),
			want:             decimal.RequireFromString("150"),
		},
		{
			name:             "scale in",
			existingAvgPrice: decimal.RequireFromString("150"),
			existingQty:      decimal.RequireFromString("10"),
			newPrice:         decimal.RequireFromString("180"),
			newQty:           decimal.RequireFromString("5"),
			want:             decimal.RequireFromString("160"),
		},
		{
			name:             "repeating decimal",
			existingAvgPrice: decimal.RequireFromString("100"),
			existingQty:      decimal.RequireFromString("10"),
			newPrice:         decimal.RequireFromString("110"),
			newQty:           decimal.RequireFromString("5"),
			want:             decimal.RequireFromString("103.3333333333333333"),
		},
		{
			name:             "identical prices",
			existingAvgPrice: decimal.RequireFromString("42.00"),
			existingQty:      decimal.RequireFromString("7"),
			newPrice:         decimal.RequireFromString("42.00"),
			newQty:           decimal.RequireFromString("3"),
			want:             decimal.RequireFromString("42.00"),
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := weightedAvg(tc.existingAvgPrice, tc.existingQty, tc.newPrice, tc.newQty)
			if !got.Equal(tc.want) {
				t.Fatalf("got %s, want %s", got.String(), tc.want.String())
			}
		})
	}
}

func TestApplyBuy(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	first := applyBuy(nil, 1, "AAPL", 10, decimal.NewFromInt(150), now)
	if first.Shares != 10 || !first.AvgPrice.Equal(decimal.NewFromInt(150)) {
		t.Fatalf("first buy = %+v", first)
	}

	second := applyBuy(&first, 1, "AAPL", 5, decimal.NewFromInt(180), now)
	if second.Shares != 15 || !second.AvgPrice.Equal(decimal.NewFromInt(160)) {
		t.Fatalf("second buy = %+v", second)
	}
	if first.Shares != 10 {
		t.Error("applyBuy mutated its input")
	}

	third := applyBuy(&second, 1, "AAPL", 1, decimal.RequireFromString("100.01"), now)
	if got := third.AvgPrice; got.Exponent() < -AvgPricePlaces {
		t.Errorf("avg price %s kept more than %d places", got, AvgPricePlaces)
	}
}

func TestApplyBuyManySmallFills(t *testing.T) {
	prices := []decimal.Decimal{
		decimal.RequireFromString("100.01"),
		decimal.RequireFromString("100.02"),
		decimal.RequireFromString("100.04"),
	}

	var pos *types.Position
	totalCost := decimal.Zero
	const fills = 2000
	for i := 0; i < fills; i++ {
		price := prices[i%len(prices)]
		next := applyBuy(pos, 1, "AAPL", 1, price, time.Time{})
		pos = &next
		totalCost = totalCost.Add(price)
	}

	exact := totalCost.Div(decimal.NewFromInt(fills))
	if diff := pos.AvgPrice.Sub(exact).Abs(); diff.GreaterThan(decimal.New(1, -12)) {
		t.Errorf("avg price %s drifted %s from %s", pos.AvgPrice, diff, exact)
	}
	if diff := pos.CostBasis().Sub(totalCost).Abs(); diff.GreaterThan(decimal.New(1, -8)) {
		t.Errorf("cost basis %s drifted %s from %s", pos.CostBasis(), diff, totalCost)
	}
}

func TestApplySell(t *testing.T) {
	now := time.Now()
	pos := types.Position{AccountID: 1, Symbol: "AAPL", Shares: 15, AvgPrice: decimal.NewFromInt(160)}

	tests := []struct {
		name         string
		shares       int64
		price        string
		wantShares   int64
		wantClosed   bool
		wantRealized string
	}{
		{"partial sell keeps avg", 5, "200", 10, false, "200"},
		{"full sell closes", 15, "200", 0, true, "600"},
		{"sell at a loss", 3, "150", 12, false, "-30"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, realized := applySell(pos, tt.shares, decimal.RequireFromString(tt.price), now)
			if tt.wantClosed {
				if next != nil {
					t.Fatalf("position should be removed, got %+v", next)
				}
			} else {
				if next == nil {
					t.Fatal("position unexpectedly removed")
				}
				if next.Shares != tt.wantShares {
					t.Errorf("shares = %d, want %d", next.Shares, tt.wantShares)
				}
				if !next.AvgPrice.Equal(pos.AvgPrice) {
					t.Errorf("avg price changed on sell: %s", next.AvgPrice)
				}
			}
			if !realized.Equal(decimal.RequireFromString(tt.wantRealized)) {
				t.Errorf("realized = %s, want %s", realized, tt.wantRealized)
			}
		})
	}
}

type fill struct {
	shares int64
	price  decimal.Decimal
}

func fillGen() *rapid.Generator[fill] {
	return rapid.Custom(func(t *rapid.T) fill {
		return fill{
			shares: rapid.Int64Range(1, 1000).Draw(t, "shares"),
			price:  decimal.New(rapid.Int64Range(1, 1_000_000).Draw(t, "cents"), -2),
		}
	})
}

func buyAll(fills []fill) types.Position {
	var pos *types.Position
	for _, f := range fills {
		next := applyBuy(pos, 1, "AAPL", f.shares, f.price, time.Time{})
		pos = &next
	}
	return *pos
}

func TestWeightedAvgOrderIndependent(t *testing.T) {
	tolerance := decimal.New(1, -12)

	rapid.Check(t, func(t *rapid.T) {
		fills := rapid.SliceOfN(fillGen(), 1, 20).Draw(t, "fills")
		shuffled := rapid.Permutation(fills).Draw(t, "shuffled")

		a := buyAll(fills)
		b := buyAll(shuffled)

		totalCost := decimal.Zero
		var totalShares int64
		for _, f := range fills {
			totalCost = totalCost.Add(f.price.Mul(decimal.NewFromInt(f.shares)))
			totalShares += f.shares
		}
		exact := totalCost.Div(decimal.NewFromInt(totalShares))

		if a.Shares != totalShares || b.Shares != totalShares {
			t.Fatalf("shares %d / %d, want %d", a.Shares, b.Shares, totalShares)
		}
		if a.AvgPrice.Sub(exact).Abs().GreaterThan(tolerance) {
			t.Fatalf("avg %s drifted from %s", a.AvgPrice, exact)
		}
		if a.AvgPrice.Sub(b.AvgPrice).Abs().GreaterThan(tolerance) {
			t.Fatalf("order changed avg: %s vs %s", a.AvgPrice, b.AvgPrice)
		}
	})
}

func TestPortfolioProcess(t *testing.T) {
	ts := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	p := newPortfolio(1, decimal.NewFromInt(10000))

	steps := []struct {
		tx       types.Transaction
		wantCash string
		wantErr  error
	}{
		{newTx(types.SideTypeBuy, "AAPL", 10, "150", ts), "8500", nil},
		{newTx(types.SideTypeBuy, "AAPL", 5, "180", ts), "7600", nil},
		{newTx(types.SideTypeSell, "MSFT", 1, "300", ts), "7600", ErrNoPosition},
		{newTx(types.SideTypeSell, "AAPL", 16, "200", ts), "7600", ErrInsufficientShares},
		{newTx(types.SideTypeBuy, "TSLA", 100, "800", ts), "7600", ErrInsufficientFunds},
		{newTx(types.SideTypeSell, "AAPL", 15, "200", ts), "10600", nil},
	}
	for i, s := range steps {
		err := p.process(s.tx)
		if s.wantErr == nil && err != nil {
			t.Fatalf("step %d: unexpected error %v", i, err)
		}
		if s.wantErr != nil && KindOf(err) != KindOf(s.wantErr) {
			t.Fatalf("step %d: error = %v, want %v", i, err, s.wantErr)
		}
		if !p.cash.Equal(decimal.RequireFromString(s.wantCash)) {
			t.Fatalf("step %d: cash = %s, want %s", i, p.cash, s.wantCash)
		}
	}

	if len(p.positions) != 0 {
		t.Errorf("positions = %v, want none", p.positions)
	}
	if !p.realized["AAPL"].Equal(decimal.NewFromInt(600)) {
		t.Errorf("realized AAPL = %s, want 600", p.realized["AAPL"])
	}
	if p.applied != 3 {
		t.Errorf("applied = %d, want 3", p.applied)
	}
}
