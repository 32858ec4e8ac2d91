package position

import (
	"context"
	"encoding/json"
	"time"

	"lending/core"

	"github.com/fox-one/pkg/store"
	"github.com/fox-one/pkg/store/db"
	"github.com/holiman/uint256"
	"github.com/jmoiron/sqlx/types"
	"github.com/shopspring/decimal"
)

type position struct {
	Owner               string          `sql:"size:36;PRIMARY_KEY"`
	CreatedAt           time.Time
	UpdatedAt           time.Time
	Collaterals         types.JSONText  `sql:"type:TEXT"`
	Debts               types.JSONText  `sql:"type:TEXT"`
	Leveraged           types.JSONText  `sql:"type:TEXT"`
	HealthFactor        decimal.Decimal `sql:"type:decimal(20,0)"`
	LastUpdated         int64
	LockedTradingMargin uint64
	Version             int64
}

func (position) TableName() string {
	return "positions"
}

type collateral struct {
	core.CollateralEntry
	Scaled string `json:"amount_scaled"`
}

type debt struct {
	core.DebtEntry
	Scaled string `json:"amount_scaled"`
}

type positionStore struct {
	db *db.DB
}

// New new position store
func New(db *db.DB) core.IPositionStore {
	return &positionStore{db: db}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(position{})
		if err := tx.AutoMigrate(position{}).Error; err != nil {
			return err
		}

		return nil
	})
}

func (s *positionStore) Save(ctx context.Context, p *core.Position) error {
	row, err := toRow(p)
	if err != nil {
		return err
	}

	return s.db.Update().Where("owner=?", p.Owner).FirstOrCreate(row).Error
}

func (s *positionStore) Find(ctx context.Context, owner string) (*core.Position, error) {
	var row position
	if err := s.db.View().Where("owner=?", owner).First(&row).Error; err != nil {
		if store.IsErrNotFound(err) {
			return core.NewPosition(owner, 0), nil
		}

		return nil, err
	}

	return fromRow(&row)
}

func (s *positionStore) Owners(ctx context.Context, from string, limit int) ([]string, error) {
	var owners []string
	if err := s.db.View().Model(position{}).
		Where("owner > ?", from).
		Order("owner").
		Limit(limit).
		Pluck("owner", &owners).Error; err != nil {
		return nil, err
	}

	return owners, nil
}

// Update optimistic update, a position that was never saved is created
func (s *positionStore) Update(ctx context.Context, tx *db.DB, p *core.Position) error {
	if p.Version == 0 {
		row, err := toRow(p)
		if err != nil {
			return err
		}

		row.Version = 1
		if err := tx.Update().Create(row).Error; err != nil {
			return err
		}

		p.Version = 1
		return nil
	}

	row, err := toRow(p)
	if err != nil {
		return err
	}

	version := p.Version
	q := tx.Update().Model(position{}).Where("owner=? and version=?", p.Owner, version).
		Updates(map[string]interface{}{
			"collaterals":           row.Collaterals,
			"debts":                 row.Debts,
			"leveraged":             row.Leveraged,
			"health_factor":         row.HealthFactor,
			"last_updated":          row.LastUpdated,
			"locked_trading_margin": row.LockedTradingMargin,
			"version":               version + 1,
		})
	if q.Error != nil {
		return q.Error
	}

	if q.RowsAffected == 0 {
		return db.ErrOptimisticLock
	}

	p.Version = version + 1
	return nil
}

func toRow(p *core.Position) (*position, error) {
	collaterals := make([]collateral, 0, len(p.Collaterals))
	for _, c := range p.Collaterals {
		collaterals = append(collaterals, collateral{CollateralEntry: c, Scaled: c.AmountScaled.Dec()})
	}

	debts := make([]debt, 0, len(p.Debts))
	for _, d := range p.Debts {
		debts = append(debts, debt{DebtEntry: d, Scaled: d.AmountScaled.Dec()})
	}

	row := &position{
		Owner:               p.Owner,
		HealthFactor:        decimal.NewFromBigInt(new(uint256.Int).SetUint64(p.HealthFactor).ToBig(), 0),
		LastUpdated:         p.LastUpdated,
		LockedTradingMargin: p.LockedTradingMargin,
		Version:             p.Version,
	}

	var err error
	if row.Collaterals, err = json.Marshal(collaterals); err != nil {
		return nil, err
	}

	if row.Debts, err = json.Marshal(debts); err != nil {
		return nil, err
	}

	leveraged := p.Leveraged
	if leveraged == nil {
		leveraged = []core.LeveragedPosition{}
	}

	if row.Leveraged, err = json.Marshal(leveraged); err != nil {
		return nil, err
	}

	return row, nil
}

func fromRow(row *position) (*core.Position, error) {
	p := &core.Position{
		Owner:               row.Owner,
		LastUpdated:         row.LastUpdated,
		LockedTradingMargin: row.LockedTradingMargin,
		Version:             row.Version,
	}

	hf, err := uint256.FromDecimal(row.HealthFactor.Truncate(0).String())
	if err != nil {
		return nil, err
	}
	p.HealthFactor = hf.Uint64()

	var collaterals []collateral
	if err := row.Collaterals.Unmarshal(&collaterals); err != nil {
		return nil, err
	}

	for _, c := range collaterals {
		scaled, err := uint256.FromDecimal(c.Scaled)
		if err != nil {
			return nil, err
		}

		entry := c.CollateralEntry
		entry.AmountScaled = *scaled
		p.Collaterals = append(p.Collaterals, entry)
	}

	var debts []debt
	if err := row.Debts.Unmarshal(&debts); err != nil {
		return nil, err
	}

	for _, d := range debts {
		scaled, err := uint256.FromDecimal(d.Scaled)
		if err != nil {
			return nil, err
		}

		entry := d.DebtEntry
		entry.AmountScaled = *scaled
		p.Debts = append(p.Debts, entry)
	}

	if err := row.Leveraged.Unmarshal(&p.Leveraged); err != nil {
		return nil, err
	}

	return p, nil
}
