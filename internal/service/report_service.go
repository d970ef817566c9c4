package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/GTDGit/gtd_pos/internal/config"
	"github.com/GTDGit/gtd_pos/internal/models"
	"github.com/GTDGit/gtd_pos/internal/repository"
	"github.com/GTDGit/gtd_pos/internal/rules"
	"github.com/GTDGit/gtd_pos/internal/sse"
)

const topProductsLimit = 10

// ReportService produces read-only summaries for the back office.
type ReportService struct {
	store        *repository.Store
	clock        rules.Clock
	loc          *time.Location
	threshold    int
	expiringDays int
}

// NewReportService constructs a ReportService. Day boundaries are taken in loc.
func NewReportService(store *repository.Store, clock rules.Clock, loc *time.Location, shop config.ShopConfig) *ReportService {
	return &ReportService{
		store:        store,
		clock:        clock,
		loc:          loc,
		threshold:    shop.LowStockThreshold,
		expiringDays: shop.WarrantyExpiringDays,
	}
}

// Period is an inclusive range of civil dates.
type Period struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// SalesReport summarises sales over a period.
type SalesReport struct {
	Period         Period                    `json:"period"`
	Summary        repository.SalesSummary   `json:"summary"`
	AverageOrder   int64                     `json:"averageOrder"`
	CollectionRate float64                   `json:"collectionRate"`
	ByMethod       []repository.MethodTotal  `json:"byMethod"`
	TopProducts    []repository.ProductTotal `json:"topProducts"`
}

// DailySales is one day of a sales series.
type DailySales struct {
	Date    time.Time `json:"date"`
	Orders  int       `json:"orders"`
	Revenue int64     `json:"revenue"`
	Paid    int64     `json:"paid"`
}

// StockReport lists stock levels. Low-stock rows carry an urgency.
type StockReport struct {
	Threshold  int                   `json:"threshold"`
	Products   []models.ProductStock `json:"products"`
	TotalUnits int                   `json:"totalUnits"`
	TotalValue int64                 `json:"totalValue"`
}

// ProfitLoss is the ledger result over a period.
type ProfitLoss struct {
	Period    Period                   `json:"period"`
	Totals    models.LedgerTotals      `json:"totals"`
	Margin    float64                  `json:"margin"`
	Breakdown []models.LedgerBreakdown `json:"breakdown"`
}

// DebtReport lists customers with outstanding balances.
type DebtReport struct {
	Customers   []models.CustomerDebt `json:"customers"`
	Outstanding int64                 `json:"outstanding"`
}

// PawnSummary aggregates the pawn book.
type PawnSummary struct {
	Date              time.Time                 `json:"date"`
	ByStatus          map[models.PawnStatus]int `json:"byStatus"`
	Contracts         int                       `json:"contracts"`
	TotalLoaned       int64                     `json:"totalLoaned"`
	OpenPrincipal     int64                     `json:"openPrincipal"`
	AccruedInterest   int64                     `json:"accruedInterest"`
	InterestCollected int64                     `json:"interestCollected"`
	RedemptionRate    float64                   `json:"redemptionRate"`
	LiquidationRate   float64                   `json:"liquidationRate"`
}

// ResolvePeriod fills a missing bound with today and checks ordering.
func (s *ReportService) ResolvePeriod(from, to *time.Time) (Period, error) {
	today := rules.Today(s.clock)
	p := Period{From: today, To: today}
	if from != nil {
		p.From = rules.DateOf(*from)
	}
	if to != nil {
		p.To = rules.DateOf(*to)
	}
	if p.To.Before(p.From) {
		return Period{}, rules.Invalid("to", "must not be before from")
	}
	return p, nil
}

func (s *ReportService) bounds(p Period) (time.Time, time.Time) {
	return rules.DayRange(p.From, p.To, s.loc)
}

// ratio returns num/den rounded to four places, or 0 when den is 0.
func ratio(num, den int64) float64 {
	if den == 0 {
		return 0
	}
	return decimal.NewFromInt(num).Div(decimal.NewFromInt(den)).Round(4).InexactFloat64()
}

func (s *ReportService) Sales(ctx context.Context, p Period) (*SalesReport, error) {
	from, to := s.bounds(p)
	r := &SalesReport{Period: p}
	var err error
	if r.Summary, err = s.store.Sales.Summary(ctx, from, to); err != nil {
		return nil, err
	}
	if r.ByMethod, err = s.store.Sales.ByPaymentMethod(ctx, from, to); err != nil {
		return nil, err
	}
	if r.TopProducts, err = s.store.Sales.TopProducts(ctx, from, to, topProductsLimit); err != nil {
		return nil, err
	}
	if r.Summary.Orders > 0 {
		r.AverageOrder = rules.Round(decimal.NewFromInt(r.Summary.Revenue).Div(decimal.NewFromInt(int64(r.Summary.Orders))))
	}
	r.CollectionRate = ratio(r.Summary.Paid, r.Summary.Revenue)
	return r, nil
}

// Daily returns one row per civil day of the period, including empty days.
func (s *ReportService) Daily(ctx context.Context, p Period) ([]DailySales, error) {
	from, to := s.bounds(p)
	amounts, err := s.store.Sales.Amounts(ctx, from, to)
	if err != nil {
		return nil, err
	}

	days := []DailySales{}
	index := map[time.Time]int{}
	for d := p.From; !d.After(p.To); d = rules.AddDays(d, 1) {
		index[d] = len(days)
		days = append(days, DailySales{Date: d})
	}
	for _, a := range amounts {
		i, ok := index[rules.DateOf(a.SaleDate.In(s.loc))]
		if !ok {
			continue
		}
		days[i].Orders++
		days[i].Revenue += a.TotalAmount
		days[i].Paid += a.PaidAmount
	}
	return days, nil
}

// Stock reports every active product. With lowOnly only products at or
// below the threshold are returned.
func (s *ReportService) Stock(ctx context.Context, lowOnly bool) (*StockReport, error) {
	limit := -1
	if lowOnly {
		limit = s.threshold
	}
	levels, err := s.store.Products.StockLevels(ctx, limit)
	if err != nil {
		return nil, err
	}
	r := &StockReport{Threshold: s.threshold, Products: levels}
	for i := range levels {
		l := &levels[i]
		l.IsLowStock = rules.IsLowStock(l.AvailableCount, s.threshold)
		l.Urgency = rules.StockUrgency(l.AvailableCount, s.threshold)
		r.TotalUnits += l.AvailableCount
		r.TotalValue += l.StockValue
	}
	return r, nil
}

func (s *ReportService) ProfitLoss(ctx context.Context, p Period) (*ProfitLoss, error) {
	from, to := s.bounds(p)
	r := &ProfitLoss{Period: p}
	var err error
	if r.Totals, err = s.store.Transactions.Totals(ctx, from, to); err != nil {
		return nil, err
	}
	if r.Breakdown, err = s.store.Transactions.Breakdown(ctx, from, to); err != nil {
		return nil, err
	}
	r.Margin = ratio(r.Totals.Profit, r.Totals.Income)
	return r, nil
}

func (s *ReportService) CustomerDebts(ctx context.Context) (*DebtReport, error) {
	list, err := s.store.Debts.CustomerBalances(ctx)
	if err != nil {
		return nil, err
	}
	r := &DebtReport{Customers: list}
	for _, c := range list {
		r.Outstanding += c.Outstanding
	}
	return r, nil
}

// Pawns summarises every contract using today's effective status.
func (s *ReportService) Pawns(ctx context.Context) (*PawnSummary, error) {
	today := rules.Today(s.clock)
	contracts, err := s.store.Pawns.All(ctx)
	if err != nil {
		return nil, err
	}

	r := &PawnSummary{Date: today, ByStatus: map[models.PawnStatus]int{}, Contracts: len(contracts)}
	for i := range contracts {
		c := &contracts[i]
		r.ByStatus[rules.EffectivePawnStatus(c, today)]++
		r.TotalLoaned += c.LoanAmount
		r.InterestCollected += c.TotalInterest
		if rules.IsOpen(c) {
			r.OpenPrincipal += c.LoanAmount
			r.AccruedInterest += rules.CurrentInterest(c, today)
		}
	}
	total := int64(len(contracts))
	r.RedemptionRate = ratio(int64(r.ByStatus[models.PawnRedeemed]), total)
	r.LiquidationRate = ratio(int64(r.ByStatus[models.PawnLiquidated]), total)
	return r, nil
}

// Alerts counts what needs attention today. Statuses are derived, nothing is written.
func (s *ReportService) Alerts(ctx context.Context) (sse.Alert, error) {
	today := rules.Today(s.clock)
	var a sse.Alert
	var err error
	if a.OverduePawns, err = s.store.Pawns.CountOverdue(ctx, today); err != nil {
		return a, err
	}
	expiring, err := s.store.Warranties.Expiring(ctx, today, rules.AddDays(today, s.expiringDays))
	if err != nil {
		return a, err
	}
	a.ExpiringWarranties = len(expiring)
	low, err := s.store.Products.StockLevels(ctx, s.threshold)
	if err != nil {
		return a, err
	}
	a.LowStockProducts = len(low)
	return a, nil
}
