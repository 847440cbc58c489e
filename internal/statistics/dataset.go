package statistics

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"estoque/internal/core"
)

// Dataset is the raw material local sources aggregate from. It is also the
// seed file format.
type Dataset struct {
	Items        []core.Item        `json:"items"`
	Transactions []core.Transaction `json:"transactions"`
}

// Validate rejects datasets whose transactions reference unknown items or
// whose records fail validation.
func (d Dataset) Validate() error {
	ids := make(map[int64]struct{}, len(d.Items))
	for i, it := range d.Items {
		if err := it.Validate(); err != nil {
			return fmt.Errorf("item %d: %w", i, err)
		}
		ids[it.ID] = struct{}{}
	}
	for i, tx := range d.Transactions {
		if err := tx.Validate(); err != nil {
			return fmt.Errorf("transaction %d: %w", i, err)
		}
		if _, ok := ids[tx.ItemID]; !ok {
			return fmt.Errorf("transaction %d: unknown item %d", i, tx.ItemID)
		}
	}
	return nil
}

// LoadDataset reads a JSON seed file. A missing file yields os.ErrNotExist.
func LoadDataset(path string) (Dataset, error) {
	var d Dataset
	b, err := os.ReadFile(path)
	if err != nil {
		return d, err
	}
	if err := json.Unmarshal(b, &d); err != nil {
		return d, fmt.Errorf("parse seed %s: %w", path, err)
	}
	if err := d.Validate(); err != nil {
		return d, fmt.Errorf("seed %s: %w", path, err)
	}
	return d, nil
}

// LoadDatasetOrDemo reads path, falling back to DemoDataset when path is
// empty or the file does not exist.
func LoadDatasetOrDemo(path string, now time.Time) (Dataset, error) {
	if path == "" {
		return DemoDataset(now), nil
	}
	d, err := LoadDataset(path)
	if errors.Is(err, os.ErrNotExist) {
		return DemoDataset(now), nil
	}
	return d, err
}

type demoItem struct {
	name       string
	price      float64
	stock, min float64
	// inbound every restock days, outbound use per day
	restock  int
	batch    float64
	perDay   float64
	expireIn int
}

var demoItems = []demoItem{
	{name: "Arroz", price: 5.49, stock: 12, min: 5, restock: 14, batch: 10, perDay: 0.7, expireIn: 180},
	{name: "Feijão", price: 8.9, stock: 3, min: 4, restock: 21, batch: 5, perDay: 0.3, expireIn: 120},
	{name: "Leite", price: 4.79, stock: 6, min: 6, restock: 7, batch: 12, perDay: 1.5, expireIn: 5},
	{name: "Ovos", price: 0.85, stock: 18, min: 12, restock: 10, batch: 30, perDay: 2.5, expireIn: 12},
	{name: "Café", price: 17.5, stock: 2, min: 1, restock: 30, batch: 2, perDay: 0.06, expireIn: 240},
	{name: "Óleo", price: 7.99, stock: 1, min: 1, restock: 45, batch: 2, perDay: 0.04, expireIn: 300},
	{name: "Açúcar", price: 4.29, stock: 4, min: 2, restock: 30, batch: 5, perDay: 0.15, expireIn: 365},
	{name: "Tomate", price: 0.6, stock: 8, min: 6, restock: 5, batch: 12, perDay: 2, expireIn: 4},
}

// demoDays is how much history DemoDataset generates.
const demoDays = 200

// DemoDataset generates a deterministic pantry history ending at now: regular
// restocks with a slow price drift and one outbound movement per day.
func DemoDataset(now time.Time) Dataset {
	var d Dataset
	start := now.AddDate(0, 0, -demoDays)
	var nextID int64

	for i, di := range demoItems {
		id := int64(i + 1)
		d.Items = append(d.Items, core.Item{
			ID:             id,
			Name:           di.name,
			Quantity:       di.stock,
			Price:          di.price,
			MinQuantity:    di.min,
			ExpirationDate: core.NewTimestamp(now.AddDate(0, 0, di.expireIn)),
		})

		for day := 0; day <= demoDays; day++ {
			at := start.AddDate(0, 0, day).Add(time.Duration(9+i) * time.Hour)
			if at.After(now) {
				break
			}
			if day%di.restock == 0 {
				// prices creep up to ~8% over the history
				price := roundTo(di.price*(0.92+0.08*float64(day)/demoDays), 2)
				nextID++
				d.Transactions = append(d.Transactions, core.Transaction{
					ID: nextID, ItemID: id, ItemName: di.name, Type: core.Entrada,
					Quantity: di.batch, Price: price,
					Date: core.NewTimestamp(at), CreatedAt: core.NewTimestamp(at),
					Description: "Reposição",
				})
			}
			use := roundTo(di.perDay*float64(1+(day+i)%3)/2, 2)
			if use <= 0 {
				continue
			}
			out := at.Add(9 * time.Hour)
			if out.After(now) {
				continue
			}
			nextID++
			d.Transactions = append(d.Transactions, core.Transaction{
				ID: nextID, ItemID: id, ItemName: di.name, Type: core.Saida,
				Quantity: use, Price: di.price,
				Date: core.NewTimestamp(out), CreatedAt: core.NewTimestamp(out),
			})
		}
	}
	return d
}
