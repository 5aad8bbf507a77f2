package services

import (
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"taxledger/internal/models"
	"taxledger/internal/money"
	"taxledger/internal/store"
)

// summaryService computes yearly totals and the tax estimate.
type summaryService struct {
	store   *store.Store
	taxRate decimal.Decimal
}

// NewSummaryService creates a new SummaryServicer that estimates tax at
// taxRate (0.25 for 25%).
func NewSummaryService(s *store.Store, taxRate decimal.Decimal) SummaryServicer {
	return &summaryService{store: s, taxRate: taxRate}
}

// GetSummary totals both ledgers for year, or for every year when year is 0.
// The estimate is taxRate applied to net income and is never negative.
func (s *summaryService) GetSummary(year int) (*Summary, error) {
	income, err := s.store.Transactions(models.TransactionTypeIncome)
	if err != nil {
		return nil, storeError(err)
	}
	expenses, err := s.store.Transactions(models.TransactionTypeExpense)
	if err != nil {
		return nil, storeError(err)
	}

	sum := &Summary{Year: year, TaxRate: s.taxRate.String()}
	sum.TotalIncome, sum.IncomeCount, sum.IncomeByCategory = totals(income, year)
	sum.TotalExpenses, sum.ExpenseCount, sum.ExpenseByCategory = totals(expenses, year)
	sum.NetIncome = sum.TotalIncome - sum.TotalExpenses
	if sum.NetIncome > 0 {
		sum.EstimatedTax = money.ApplyRate(sum.NetIncome, s.taxRate)
	}
	return sum, nil
}

// Years lists every year that has at least one record, newest first.
func (s *summaryService) Years() []int {
	seen := make(map[int]bool)
	for _, t := range models.TransactionTypes {
		txs, _ := s.store.Transactions(t)
		for _, tx := range txs {
			if y := yearOf(tx.Date); y > 0 {
				seen[y] = true
			}
		}
	}
	years := make([]int, 0, len(seen))
	for y := range seen {
		years = append(years, y)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}

// totals sums txs that fall in year. Categories are ordered by total,
// largest first.
func totals(txs []models.Transaction, year int) (int64, int, []CategoryTotal) {
	var total int64
	count := 0
	byName := make(map[string]*CategoryTotal)
	var order []*CategoryTotal

	for _, tx := range txs {
		if year != 0 && yearOf(tx.Date) != year {
			continue
		}
		total += tx.Amount
		count++
		ct, ok := byName[tx.Category]
		if !ok {
			ct = &CategoryTotal{Category: tx.Category}
			byName[tx.Category] = ct
			order = append(order, ct)
		}
		ct.Total += tx.Amount
		ct.Count++
	}

	out := make([]CategoryTotal, len(order))
	for i, ct := range order {
		out[i] = *ct
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Total > out[j].Total })
	return total, count, out
}

// yearOf reads the year of a YYYY-MM-DD date, or 0.
func yearOf(date string) int {
	if len(date) < 4 {
		return 0
	}
	y, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return y
}
