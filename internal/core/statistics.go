package core

import (
	"context"
	"sort"
	"sync"

	"bookstore-admin/internal/core/model"

	"github.com/shopspring/decimal"
)

// DayRevenue is one row of the revenue-by-date table.
type DayRevenue struct {
	Date   string
	Amount decimal.Decimal
}

// StatisticsView holds the last successfully loaded revenue figures.
type StatisticsView struct {
	src    RevenueSource
	notify Notifier

	mu    sync.Mutex
	stats model.RevenueStats
}

func NewStatisticsView(src RevenueSource, notify Notifier) *StatisticsView {
	return &StatisticsView{src: src, notify: orDiscard(notify)}
}

// Load fetches stats for the optional [from, to] range. On failure the
// previous figures are kept.
func (v *StatisticsView) Load(ctx context.Context, from, to *model.Date) error {
	st, err := v.src.Revenue(ctx, from, to)
	if err != nil {
		v.notify.Notify(LevelError, model.UserMessage(err, "could not load statistics"))
		return err
	}
	if st.RevenueByDate == nil {
		st.RevenueByDate = map[string]decimal.Decimal{}
	}
	v.mu.Lock()
	v.stats = st
	v.mu.Unlock()
	return nil
}

func (v *StatisticsView) Stats() model.RevenueStats {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.stats
}

// Days lists revenue per date, oldest first.
func (v *StatisticsView) Days() []DayRevenue {
	st := v.Stats()
	out := make([]DayRevenue, 0, len(st.RevenueByDate))
	for d, amt := range st.RevenueByDate {
		out = append(out, DayRevenue{Date: d, Amount: amt})
	}
	sort.Slice(out, func(i, j int) bool {
		di, erri := model.ParseDate(out[i].Date)
		dj, errj := model.ParseDate(out[j].Date)
		if erri != nil || errj != nil {
			return out[i].Date < out[j].Date
		}
		return di.Before(dj.Time)
	})
	return out
}
