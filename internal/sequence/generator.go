package sequence

import (
	"context"
	"fmt"

	"github.com/frotacloud/fuelstock/internal/config"
	"gorm.io/gorm"
)

// Generator hands out unique, human-readable references from named counters.
// Next participates in the caller's transaction, so a rolled-back operation
// never publishes its reference.
type Generator struct {
	stock *config.StockConfigHolder
}

func New(stock *config.StockConfigHolder) *Generator {
	return &Generator{stock: stock}
}

func (g *Generator) Next(ctx context.Context, tx *gorm.DB, key string) (string, error) {
	if err := tx.WithContext(ctx).Exec(
		`INSERT INTO sequences (key, last_value) VALUES (?, 0)
		 ON CONFLICT (key) DO NOTHING`,
		key,
	).Error; err != nil {
		return "", err
	}

	if err := tx.WithContext(ctx).Exec(
		`UPDATE sequences SET last_value = last_value + 1 WHERE key = ?`,
		key,
	).Error; err != nil {
		return "", err
	}

	var value int64
	if err := tx.WithContext(ctx).Raw(
		`SELECT last_value FROM sequences WHERE key = ?`,
		key,
	).Scan(&value).Error; err != nil {
		return "", err
	}

	format := g.format(key)
	return fmt.Sprintf("%s%0*d", format.Prefix, format.Padding, value), nil
}

func (g *Generator) format(key string) config.SequenceFormat {
	if g.stock != nil {
		if format, ok := g.stock.Get().Sequences[key]; ok {
			return format
		}
	}
	return config.SequenceFormat{Prefix: key + "/", Padding: 5}
}
