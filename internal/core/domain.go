package core

import (
	"errors"
	"fmt"
	"strings"
)

const (
	Entrada TransactionType = "entrada"
	Saida   TransactionType = "saida"
	// AllTypes is a filter value, never a stored transaction type.
	AllTypes TransactionType = "all"
)

type (
	TransactionType string

	Transaction struct {
		ID          int64           `json:"id"`
		ItemID      int64           `json:"item_id"`
		ItemName    string          `json:"item_name"`
		Type        TransactionType `json:"type"`
		Quantity    float64         `json:"quantity"`
		Price       float64         `json:"price"`
		TotalValue  *float64        `json:"total_value,omitempty"`
		Date        Timestamp       `json:"date"`
		Description string          `json:"description,omitempty"`
		CreatedAt   Timestamp       `json:"created_at"`
		UpdatedAt   Timestamp       `json:"updated_at"`
	}

	// TransactionRequest is the payload used to register a transaction.
	TransactionRequest struct {
		ItemID      int64           `json:"item_id"`
		Type        TransactionType `json:"type"`
		Quantity    float64         `json:"quantity"`
		Price       float64         `json:"price"`
		Date        *Timestamp      `json:"date,omitempty"`
		Description string          `json:"description,omitempty"`
	}

	// Item is an inventory item as stored by the local backends.
	Item struct {
		ID             int64     `json:"id"`
		Name           string    `json:"name"`
		Quantity       float64   `json:"quantity"`
		Price          float64   `json:"price"`
		MinQuantity    float64   `json:"min_quantity"`
		ExpirationDate Timestamp `json:"expiration_date"`
	}
)

var (
	ErrInvalidTransactionType = errors.New("invalid transaction type")
	ErrInvalidQuantity        = errors.New("invalid quantity")
	ErrNegativePrice          = errors.New("price cannot be negative")
	ErrEmptyItemName          = errors.New("empty item name")
	ErrMissingDate            = errors.New("transaction has no date")
)

// IsInbound reports whether t is an "entrada". Every other value renders as outbound.
func (t TransactionType) IsInbound() bool {
	return t == Entrada
}

func (t TransactionType) Validate() error {
	switch t {
	case Entrada, Saida:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidTransactionType, string(t))
	}
}

// Total returns the stored total value, or quantity × price when it is absent.
func (t Transaction) Total() float64 {
	if t.TotalValue != nil {
		return *t.TotalValue
	}
	return t.Quantity * t.Price
}

// When returns the transaction date, falling back to its creation time.
func (t Transaction) When() Timestamp {
	if !t.Date.IsZero() {
		return t.Date
	}
	return t.CreatedAt
}

func (t Transaction) Validate() error {
	if err := t.Type.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(t.ItemName) == "" {
		return ErrEmptyItemName
	}
	if t.Quantity < 0 {
		return ErrInvalidQuantity
	}
	if t.Price < 0 {
		return ErrNegativePrice
	}
	if t.When().IsZero() {
		return ErrMissingDate
	}
	return nil
}

func (r TransactionRequest) Validate() error {
	if err := r.Type.Validate(); err != nil {
		return err
	}
	if r.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	if r.Price < 0 {
		return ErrNegativePrice
	}
	if r.ItemID <= 0 {
		return errors.New("item id is required")
	}
	return nil
}

func (i Item) Validate() error {
	if strings.TrimSpace(i.Name) == "" {
		return ErrEmptyItemName
	}
	if i.Quantity < 0 {
		return ErrInvalidQuantity
	}
	if i.Price < 0 {
		return ErrNegativePrice
	}
	return nil
}
