package insights

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/BarkinBalci/marketing-insights-service/internal/domain"
	"github.com/BarkinBalci/marketing-insights-service/internal/repository"
)

// detectorOrder is the fixed execution and reporting order
var detectorOrder = []domain.AnomalyType{
	domain.AnomalyCostSpike,
	domain.AnomalyCTRDrop,
	domain.AnomalyLowROAS,
	domain.AnomalyZeroConversions,
	domain.AnomalyCVRDrop,
	domain.AnomalyCPCSpike,
	domain.AnomalyImpressionDrop,
}

type direction int

const (
	increase direction = iota
	decrease
)

// changeDetector compares one derived metric between the recent and previous window
type changeDetector struct {
	anomalyType domain.AnomalyType
	metric      string
	label       string
	direction   direction
	value       func(repository.AccountTotals) (float64, bool)
	guard       func(DetectorConfig) repository.VolumeGuard
	format      func(float64) string
}

var changeDetectors = map[domain.AnomalyType]changeDetector{
	domain.AnomalyCostSpike: {
		anomalyType: domain.AnomalyCostSpike,
		metric:      "cost",
		label:       "Spend",
		direction:   increase,
		value:       costValue,
		guard:       spendGuard,
		format:      formatUSD,
	},
	domain.AnomalyCTRDrop: {
		anomalyType: domain.AnomalyCTRDrop,
		metric:      "ctr",
		label:       "CTR",
		direction:   decrease,
		value:       ctrValue,
		guard:       impressionsGuard,
		format:      formatPct,
	},
	domain.AnomalyCVRDrop: {
		anomalyType: domain.AnomalyCVRDrop,
		metric:      "cvr",
		label:       "Conversion rate",
		direction:   decrease,
		value:       cvrValue,
		guard:       clicksGuard,
		format:      formatPct,
	},
	domain.AnomalyCPCSpike: {
		anomalyType: domain.AnomalyCPCSpike,
		metric:      "cpc",
		label:       "CPC",
		direction:   increase,
		value:       cpcValue,
		guard:       clicksGuard,
		format:      formatUSD,
	},
	domain.AnomalyImpressionDrop: {
		anomalyType: domain.AnomalyImpressionDrop,
		metric:      "impressions",
		label:       "Impressions",
		direction:   decrease,
		value:       impressionsValue,
		guard:       impressionsGuard,
		format:      formatCount,
	},
}

func costValue(t repository.AccountTotals) (float64, bool) {
	return domain.MicrosToUnits(t.CostMicros), true
}

func ctrValue(t repository.AccountTotals) (float64, bool) {
	if t.Impressions <= 0 {
		return 0, false
	}
	return float64(t.Clicks) * 100 / float64(t.Impressions), true
}

func cvrValue(t repository.AccountTotals) (float64, bool) {
	if t.Clicks <= 0 {
		return 0, false
	}
	return float64(t.Transactions) * 100 / float64(t.Clicks), true
}

func cpcValue(t repository.AccountTotals) (float64, bool) {
	if t.Clicks <= 0 {
		return 0, false
	}
	return domain.MicrosToUnits(t.CostMicros) / float64(t.Clicks), true
}

func impressionsValue(t repository.AccountTotals) (float64, bool) {
	return float64(t.Impressions), true
}

func spendGuard(cfg DetectorConfig) repository.VolumeGuard {
	if cfg.MinSpendUSD <= 0 {
		return repository.VolumeGuard{}
	}
	return repository.VolumeGuard{Column: repository.VolumeCostMicros, Min: domain.UnitsToMicros(cfg.MinSpendUSD)}
}

func impressionsGuard(cfg DetectorConfig) repository.VolumeGuard {
	return repository.VolumeGuard{Column: repository.VolumeImpressions, Min: cfg.MinImpressions}
}

func clicksGuard(cfg DetectorConfig) repository.VolumeGuard {
	return repository.VolumeGuard{Column: repository.VolumeClicks, Min: cfg.MinClicks}
}

// windows returns the recent window [lookback, 1] days ago and the previous
// window [2*lookback, lookback+1] days ago, in whole UTC days
func windows(now time.Time, lookback int) (recent, previous repository.DateRange) {
	y, m, d := now.UTC().Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)

	recent = repository.DateRange{
		From: today.AddDate(0, 0, -lookback),
		To:   today.AddDate(0, 0, -1),
	}
	previous = repository.DateRange{
		From: today.AddDate(0, 0, -2*lookback),
		To:   today.AddDate(0, 0, -lookback-1),
	}
	return recent, previous
}

type accountKey struct {
	source    string
	accountID string
}

func (d *Detector) detectChange(ctx context.Context, userID string, spec changeDetector, cfg DetectorConfig) ([]domain.Anomaly, error) {
	recentRange, previousRange := windows(d.now(), cfg.LookbackDays)
	guard := spec.guard(cfg)

	recent, err := d.repo.AggregateByAccount(ctx, repository.AggregateQuery{UserID: userID, Range: recentRange, Guard: guard})
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate recent window: %w", err)
	}
	if len(recent) == 0 {
		return nil, nil
	}

	previous, err := d.repo.AggregateByAccount(ctx, repository.AggregateQuery{UserID: userID, Range: previousRange, Guard: guard})
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate previous window: %w", err)
	}

	previousByAccount := make(map[accountKey]repository.AccountTotals, len(previous))
	for _, p := range previous {
		previousByAccount[accountKey{p.Source, p.AccountID}] = p
	}

	var anomalies []domain.Anomaly
	for _, cur := range recent {
		prev, ok := previousByAccount[accountKey{cur.Source, cur.AccountID}]
		if !ok {
			continue
		}

		curValue, ok := spec.value(cur)
		if !ok {
			continue
		}
		prevValue, ok := spec.value(prev)
		if !ok || prevValue <= 0 {
			continue
		}

		change := (curValue - prevValue) * 100 / prevValue
		magnitude := change
		if spec.direction == decrease {
			magnitude = -change
		}
		if magnitude < cfg.ChangeThreshold {
			continue
		}

		priority := domain.PriorityMedium
		if magnitude >= cfg.HighPriorityThreshold {
			priority = domain.PriorityHigh
		}

		verb := "increased"
		if change < 0 {
			verb = "dropped"
		}

		previousValue := round2(prevValue)
		anomalies = append(anomalies, domain.Anomaly{
			Type:            spec.anomalyType,
			Priority:        priority,
			Source:          cur.Source,
			AccountID:       cur.AccountID,
			Metric:          spec.metric,
			CurrentValue:    round2(curValue),
			PreviousValue:   &previousValue,
			ChangePct:       round2(change),
			Threshold:       cfg.ChangeThreshold,
			CurrentSpendUSD: round2(domain.MicrosToUnits(cur.CostMicros)),
			Message: fmt.Sprintf("%s %s %.1f%% on %s account %s over the last %d days (%s vs %s)",
				spec.label, verb, math.Abs(change), cur.Source, cur.AccountID, cfg.LookbackDays,
				spec.format(curValue), spec.format(prevValue)),
		})
	}

	return anomalies, nil
}

func (d *Detector) detectLowROAS(ctx context.Context, userID string, cfg DetectorConfig) ([]domain.Anomaly, error) {
	recentRange, _ := windows(d.now(), cfg.LookbackDays)

	totals, err := d.repo.AggregateByAccount(ctx, repository.AggregateQuery{
		UserID: userID,
		Range:  recentRange,
		Guard:  repository.VolumeGuard{Column: repository.VolumeCostMicros, Min: domain.UnitsToMicros(cfg.MinSpendUSD)},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate recent window: %w", err)
	}

	var anomalies []domain.Anomaly
	for _, t := range totals {
		if t.CostMicros <= 0 {
			continue
		}
		roas := float64(t.RevenueMicros) / float64(t.CostMicros)
		if roas >= cfg.ChangeThreshold {
			continue
		}

		priority := domain.PriorityMedium
		if roas < cfg.HighPriorityThreshold {
			priority = domain.PriorityHigh
		}

		var shortfall float64
		if cfg.ChangeThreshold > 0 {
			shortfall = (roas - cfg.ChangeThreshold) * 100 / cfg.ChangeThreshold
		}

		spend := domain.MicrosToUnits(t.CostMicros)
		anomalies = append(anomalies, domain.Anomaly{
			Type:            domain.AnomalyLowROAS,
			Priority:        priority,
			Source:          t.Source,
			AccountID:       t.AccountID,
			Metric:          "roas",
			CurrentValue:    round2(roas),
			ChangePct:       round2(shortfall),
			Threshold:       cfg.ChangeThreshold,
			CurrentSpendUSD: round2(spend),
			Message: fmt.Sprintf("ROAS is %.2fx on %s account %s over the last %d days, below the %.2fx target (%s spent, %s revenue)",
				roas, t.Source, t.AccountID, cfg.LookbackDays, cfg.ChangeThreshold,
				formatUSD(spend), formatUSD(domain.MicrosToUnits(t.RevenueMicros))),
		})
	}

	return anomalies, nil
}

func (d *Detector) detectZeroConversions(ctx context.Context, userID string, cfg DetectorConfig) ([]domain.Anomaly, error) {
	recentRange, _ := windows(d.now(), cfg.LookbackDays)

	totals, err := d.repo.AggregateByAccount(ctx, repository.AggregateQuery{
		UserID: userID,
		Range:  recentRange,
		Guard:  repository.VolumeGuard{Column: repository.VolumeCostMicros, Min: domain.UnitsToMicros(cfg.MinSpendUSD)},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate recent window: %w", err)
	}

	var anomalies []domain.Anomaly
	for _, t := range totals {
		if t.Transactions != 0 {
			continue
		}

		spend := domain.MicrosToUnits(t.CostMicros)
		anomalies = append(anomalies, domain.Anomaly{
			Type:            domain.AnomalyZeroConversions,
			Priority:        domain.PriorityHigh,
			Source:          t.Source,
			AccountID:       t.AccountID,
			Metric:          "transactions",
			CurrentValue:    0,
			Threshold:       cfg.MinSpendUSD,
			CurrentSpendUSD: round2(spend),
			Message: fmt.Sprintf("No conversions on %s account %s over the last %d days despite %s spend",
				t.Source, t.AccountID, cfg.LookbackDays, formatUSD(spend)),
		})
	}

	return anomalies, nil
}

// sortByMagnitude orders by |changePct| then spend, both descending
func sortByMagnitude(anomalies []domain.Anomaly) {
	sort.SliceStable(anomalies, func(i, j int) bool {
		mi, mj := math.Abs(anomalies[i].ChangePct), math.Abs(anomalies[j].ChangePct)
		if mi != mj {
			return mi > mj
		}
		return anomalies[i].CurrentSpendUSD > anomalies[j].CurrentSpendUSD
	})
}

// sortByPriority orders the combined list high to low, then by magnitude
func sortByPriority(anomalies []domain.Anomaly) {
	sort.SliceStable(anomalies, func(i, j int) bool {
		ri, rj := anomalies[i].Priority.Rank(), anomalies[j].Priority.Rank()
		if ri != rj {
			return ri > rj
		}
		mi, mj := math.Abs(anomalies[i].ChangePct), math.Abs(anomalies[j].ChangePct)
		if mi != mj {
			return mi > mj
		}
		return anomalies[i].CurrentSpendUSD > anomalies[j].CurrentSpendUSD
	})
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func formatUSD(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

func formatPct(v float64) string {
	return fmt.Sprintf("%.2f%%", v)
}

func formatCount(v float64) string {
	return fmt.Sprintf("%.0f", v)
}
