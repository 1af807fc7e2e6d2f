package core

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"time"

	"bookstore-admin/internal/core/model"

	"github.com/shopspring/decimal"
)

type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

type SortState struct {
	Key       string
	Direction Direction
}

// Toggle reselecting the same key flips direction; a new key starts ascending.
func (s SortState) Toggle(key string) SortState {
	if s.Key == key && s.Direction == Asc {
		return SortState{Key: key, Direction: Desc}
	}
	return SortState{Key: key, Direction: Asc}
}

// sortRecords sorts in-place and keeps server order for equal values.
// An empty key leaves the slice untouched.
func sortRecords[T model.Record](items []T, s SortState) {
	if s.Key == "" {
		return
	}
	slices.SortStableFunc(items, func(a, b T) int {
		av, _ := a.SortValue(s.Key)
		bv, _ := b.SortValue(s.Key)
		c := compareValues(av, bv)
		if s.Direction == Desc {
			return -c
		}
		return c
	})
}

// compareValues orders strings case-insensitively, bools as 0/1, dates as
// instants and numbers numerically. nil sorts first.
func compareValues(a, b any) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	switch av := a.(type) {
	case string:
		if bv, ok := b.(string); ok {
			return strings.Compare(strings.ToLower(av), strings.ToLower(bv))
		}
	case bool:
		if bv, ok := b.(bool); ok {
			return cmp.Compare(boolRank(av), boolRank(bv))
		}
	case int:
		if bv, ok := b.(int); ok {
			return cmp.Compare(av, bv)
		}
	case float64:
		if bv, ok := b.(float64); ok {
			return cmp.Compare(av, bv)
		}
	case decimal.Decimal:
		if bv, ok := b.(decimal.Decimal); ok {
			return av.Cmp(bv)
		}
	case model.Date:
		if bv, ok := b.(model.Date); ok {
			return av.Compare(bv.Time)
		}
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			return av.Compare(bv)
		}
	}
	// mixed types: fall back to the textual form
	return strings.Compare(strings.ToLower(fmt.Sprint(a)), strings.ToLower(fmt.Sprint(b)))
}

func boolRank(b bool) int {
	if b {
		return 1
	}
	return 0
}
