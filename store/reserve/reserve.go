package reserve

import (
	"context"
	"time"

	"lending/core"
	"lending/pkg/number"

	"github.com/fox-one/pkg/store"
	"github.com/fox-one/pkg/store/db"
	"github.com/shopspring/decimal"
	"github.com/yiplee/structs"
)

// reserve db row, indices are kept as integer decimals
type reserve struct {
	ID        string    `sql:"size:36;PRIMARY_KEY" json:"id"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"updated_at,omitnested"`
	Symbol    string    `sql:"size:32" json:"symbol"`

	TotalDeposited      uint64 `json:"total_deposited"`
	TotalBorrowed       uint64 `json:"total_borrowed"`
	AvailableForLending uint64 `json:"available_for_lending"`
	TotalLent           uint64 `json:"total_lent"`
	AccruedInterest     uint64 `json:"accrued_interest"`

	BorrowedScaled decimal.Decimal `sql:"type:decimal(78,0)" json:"borrowed_scaled,omitnested"`
	BorrowIndex    decimal.Decimal `sql:"type:decimal(78,0)" json:"borrow_index,omitnested"`
	LendingIndex   decimal.Decimal `sql:"type:decimal(78,0)" json:"lending_index,omitnested"`
	LastUpdateTime int64           `json:"last_update_time"`

	OptimalUtilization uint64 `json:"optimal_utilization"`
	BaseRate           uint64 `json:"base_rate"`
	Slope1             uint64 `json:"slope1"`
	Slope2             uint64 `json:"slope2"`
	ReserveFactor      uint64 `json:"reserve_factor"`

	LoanToValue          uint64 `json:"loan_to_value"`
	LiquidationThreshold uint64 `json:"liquidation_threshold"`
	LiquidationBonus     uint64 `json:"liquidation_bonus"`

	LendingEnabled       bool   `json:"lending_enabled"`
	MaxLendingRatio      uint64 `json:"max_lending_ratio"`
	MinLendingDuration   uint64 `json:"min_lending_duration"`
	LendingInterestShare uint64 `json:"lending_interest_share"`

	Version int64 `json:"version"`
}

func (reserve) TableName() string {
	return "reserves"
}

type reserveStore struct {
	db *db.DB
}

// New new reserve store
func New(db *db.DB) core.IReserveStore {
	return &reserveStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(reserve{})
		if err := tx.AutoMigrate(reserve{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *reserveStore) Save(ctx context.Context, r *core.Reserve) error {
	row := toRow(r)
	return s.db.Update().Where("id=?", r.ID).FirstOrCreate(row).Error
}

func (s *reserveStore) Find(ctx context.Context, id string) (*core.Reserve, error) {
	var row reserve
	if err := s.db.View().Where("id=?", id).First(&row).Error; err != nil {
		if store.IsErrNotFound(err) {
			return nil, core.ErrReserveNotFound
		}

		return nil, err
	}

	return fromRow(&row)
}

func (s *reserveStore) All(ctx context.Context) ([]*core.Reserve, error) {
	var rows []*reserve
	if err := s.db.View().Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}

	reserves := make([]*core.Reserve, 0, len(rows))
	for _, row := range rows {
		r, err := fromRow(row)
		if err != nil {
			return nil, err
		}

		reserves = append(reserves, r)
	}

	return reserves, nil
}

func (s *reserveStore) Update(ctx context.Context, tx *db.DB, r *core.Reserve) error {
	version := r.Version
	row := toRow(r)
	row.Version = version + 1

	m := structs.New(row)
	m.TagName = "json"
	updates := m.Map()
	delete(updates, "id")

	q := tx.Update().Model(reserve{}).Where("id=? and version=?", r.ID, version).Updates(updates)
	if q.Error != nil {
		return q.Error
	}

	if q.RowsAffected == 0 {
		return db.ErrOptimisticLock
	}

	r.Version = row.Version
	return nil
}

func toRow(r *core.Reserve) *reserve {
	return &reserve{
		ID:                   r.ID,
		Symbol:               r.Symbol,
		UpdatedAt:            time.Now(),
		TotalDeposited:       r.TotalDeposited,
		TotalBorrowed:        r.TotalBorrowed,
		AvailableForLending:  r.AvailableForLending,
		TotalLent:            r.TotalLent,
		AccruedInterest:      r.AccruedInterest,
		BorrowedScaled:       number.FromWide(&r.BorrowedScaled, 0),
		BorrowIndex:          number.FromWide(&r.BorrowIndex, 0),
		LendingIndex:         number.FromWide(&r.LendingIndex, 0),
		LastUpdateTime:       r.LastUpdateTime,
		OptimalUtilization:   r.OptimalUtilization,
		BaseRate:             r.BaseRate,
		Slope1:               r.Slope1,
		Slope2:               r.Slope2,
		ReserveFactor:        r.ReserveFactor,
		LoanToValue:          r.LoanToValue,
		LiquidationThreshold: r.LiquidationThreshold,
		LiquidationBonus:     r.LiquidationBonus,
		LendingEnabled:       r.LendingEnabled,
		MaxLendingRatio:      r.MaxLendingRatio,
		MinLendingDuration:   r.MinLendingDuration,
		LendingInterestShare: r.LendingInterestShare,
		Version:              r.Version,
	}
}

func fromRow(row *reserve) (*core.Reserve, error) {
	borrowIndex, err := number.ToWide(row.BorrowIndex)
	if err != nil {
		return nil, err
	}

	lendingIndex, err := number.ToWide(row.LendingIndex)
	if err != nil {
		return nil, err
	}

	borrowedScaled, err := number.ToWide(row.BorrowedScaled)
	if err != nil {
		return nil, err
	}

	return &core.Reserve{
		ID:                   row.ID,
		Symbol:               row.Symbol,
		TotalDeposited:       row.TotalDeposited,
		TotalBorrowed:        row.TotalBorrowed,
		AvailableForLending:  row.AvailableForLending,
		TotalLent:            row.TotalLent,
		AccruedInterest:      row.AccruedInterest,
		BorrowedScaled:       *borrowedScaled,
		BorrowIndex:          *borrowIndex,
		LendingIndex:         *lendingIndex,
		LastUpdateTime:       row.LastUpdateTime,
		OptimalUtilization:   row.OptimalUtilization,
		BaseRate:             row.BaseRate,
		Slope1:               row.Slope1,
		Slope2:               row.Slope2,
		ReserveFactor:        row.ReserveFactor,
		LoanToValue:          row.LoanToValue,
		LiquidationThreshold: row.LiquidationThreshold,
		LiquidationBonus:     row.LiquidationBonus,
		LendingEnabled:       row.LendingEnabled,
		MaxLendingRatio:      row.MaxLendingRatio,
		MinLendingDuration:   row.MinLendingDuration,
		LendingInterestShare: row.LendingInterestShare,
		Version:              row.Version,
	}, nil
}
