package backtest

import (
	"math"

	"github.com/quantrun/sigval/internal/core"
	"github.com/quantrun/sigval/internal/marketdata"
)

// CompareBenchmark measures the portfolio against a reference asset.
// Benchmark return runs from the first price on or after the period
// start to the first price on or after the period end. Beta comes from
// regressing portfolio daily returns on benchmark returns sampled at
// the same snapshot dates, and the information ratio divides alpha by
// the annualized tracking error. Nil when the benchmark has no usable
// price data.
func CompareBenchmark(store *marketdata.Store, asset string, period core.Period, portfolioReturnPct float64, snapshots []core.PortfolioSnapshot) *core.Benchmark {
	startP, ok := store.PriceOnOrAfter(asset, period.Start)
	if !ok || startP.Price == 0 {
		return nil
	}
	endP, ok := store.PriceOnOrAfter(asset, period.End)
	if !ok {
		return nil
	}

	benchReturn := (endP.Price - startP.Price) / startP.Price * 100
	alpha := portfolioReturnPct - benchReturn

	portfolio, bench := alignedReturns(store, asset, snapshots)
	beta := regressionBeta(portfolio, bench)

	var infoRatio float64
	if te := trackingError(portfolio, bench); te > 0 {
		infoRatio = alpha / te
	}

	return &core.Benchmark{
		Asset:            asset,
		ReturnPct:        benchReturn,
		AlphaPct:         alpha,
		Beta:             beta,
		InformationRatio: infoRatio,
	}
}

// alignedReturns pairs portfolio and benchmark simple returns over
// consecutive snapshot dates, skipping intervals where either side has
// no defined return.
func alignedReturns(store *marketdata.Store, asset string, snapshots []core.PortfolioSnapshot) (portfolio, bench []float64) {
	for i := 1; i < len(snapshots); i++ {
		prev, cur := snapshots[i-1], snapshots[i]
		if prev.Value == 0 {
			continue
		}

		b0, ok := store.PriceOnOrAfter(asset, prev.Date)
		if !ok || b0.Price == 0 {
			continue
		}
		b1, ok := store.PriceOnOrAfter(asset, cur.Date)
		if !ok {
			continue
		}

		portfolio = append(portfolio, (cur.Value-prev.Value)/prev.Value)
		bench = append(bench, (b1.Price-b0.Price)/b0.Price)
	}
	return portfolio, bench
}

// regressionBeta is cov(portfolio, bench) / var(bench); 0 when the
// benchmark shows no variance to regress against.
func regressionBeta(portfolio, bench []float64) float64 {
	n := len(portfolio)
	if n < 2 || n != len(bench) {
		return 0
	}

	var pMean, bMean float64
	for i := 0; i < n; i++ {
		pMean += portfolio[i]
		bMean += bench[i]
	}
	pMean /= float64(n)
	bMean /= float64(n)

	var cov, bVar float64
	for i := 0; i < n; i++ {
		cov += (portfolio[i] - pMean) * (bench[i] - bMean)
		bVar += (bench[i] - bMean) * (bench[i] - bMean)
	}
	if bVar == 0 {
		return 0
	}
	return cov / bVar
}

// trackingError is the annualized standard deviation of the return
// differences, in percent.
func trackingError(portfolio, bench []float64) float64 {
	n := len(portfolio)
	if n < 2 || n != len(bench) {
		return 0
	}

	diffs := make([]float64, n)
	var mean float64
	for i := 0; i < n; i++ {
		diffs[i] = portfolio[i] - bench[i]
		mean += diffs[i]
	}
	mean /= float64(n)

	var variance float64
	for _, d := range diffs {
		variance += (d - mean) * (d - mean)
	}
	stdDev := math.Sqrt(variance / float64(n-1))

	return stdDev * math.Sqrt(tradingDaysPerYear) * 100
}
