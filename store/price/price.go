package price

import (
	"context"
	"time"

	"lending/core"

	"github.com/fox-one/pkg/store/db"
	"github.com/jinzhu/gorm"
)

type price struct {
	ReserveID            string    `sql:"size:36;PRIMARY_KEY"`
	CreatedAt            time.Time
	UpdatedAt            time.Time
	Price                uint64
	LiquidationThreshold uint64
	At                   int64
}

func (price) TableName() string {
	return "prices"
}

type priceStore struct {
	db *db.DB
}

// New new price store
func New(db *db.DB) core.IPriceStore {
	return &priceStore{
		db: db,
	}
}

func init() {
	db.RegisterMigrate(func(db *db.DB) error {
		tx := db.Update().Model(price{})

		if err := tx.AutoMigrate(price{}).Error; err != nil {
			return err
		}

		return nil
	})
}

// Save upsert the quote of the reserve, an older quote never replaces a newer one
func (s *priceStore) Save(ctx context.Context, reserveID string, info core.PriceInfo, at int64) error {
	return s.db.Tx(func(tx *db.DB) error {
		var row price
		err := tx.Update().Where("reserve_id=?", reserveID).First(&row).Error
		if gorm.IsRecordNotFoundError(err) {
			row = price{
				ReserveID:            reserveID,
				Price:                info.Price,
				LiquidationThreshold: info.LiquidationThreshold,
				At:                   at,
			}

			return tx.Update().Create(&row).Error
		}

		if err != nil {
			return err
		}

		if at < row.At {
			return nil
		}

		return tx.Update().Model(&row).Updates(map[string]interface{}{
			"price":                 info.Price,
			"liquidation_threshold": info.LiquidationThreshold,
			"at":                    at,
		}).Error
	})
}

func (s *priceStore) Snapshot(ctx context.Context) (*core.Prices, error) {
	var rows []*price
	if err := s.db.View().Find(&rows).Error; err != nil {
		return nil, err
	}

	return snapshot(rows), nil
}

func snapshot(rows []*price) *core.Prices {
	prices := &core.Prices{Quotes: make(core.PriceSnapshot, len(rows))}
	for idx, row := range rows {
		prices.Quotes[row.ReserveID] = core.PriceInfo{
			Price:                row.Price,
			LiquidationThreshold: row.LiquidationThreshold,
		}

		if idx == 0 || row.At < prices.At {
			prices.At = row.At
		}
	}

	return prices
}
