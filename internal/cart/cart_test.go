package cart

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartTotal(t *testing.T) {
	tests := []struct {
		name  string
		items []Item
		want  string
	}{
		{
			name: "single line",
			items: []Item{
				{DishID: 1, UnitPrice: decimal.NewFromInt(1000), Quantity: 2},
			},
			want: "2000",
		},
		{
			name: "multiple lines",
			items: []Item{
				{DishID: 1, UnitPrice: decimal.NewFromInt(1500), Quantity: 1},
				{DishID: 2, UnitPrice: decimal.NewFromInt(750), Quantity: 4},
			},
			want: "4500",
		},
		{
			name: "fractional prices stay exact",
			items: []Item{
				{DishID: 1, UnitPrice: decimal.RequireFromString("0.10"), Quantity: 3},
			},
			want: "0.3",
		},
		{
			name:  "empty cart",
			items: nil,
			want:  "0",
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			c := Cart{Items: testCase.items}
			assert.Equal(t, testCase.want, c.Total().String())
		})
	}
}

func TestCartValidate(t *testing.T) {
	tests := []struct {
		name    string
		items   []Item
		wantErr error
	}{
		{
			name:    "empty cart rejected",
			items:   nil,
			wantErr: ErrEmptyCart,
		},
		{
			name: "zero quantity rejected",
			items: []Item{
				{DishID: 1, UnitPrice: decimal.NewFromInt(100), Quantity: 0},
			},
			wantErr: ErrInvalidQuantity,
		},
		{
			name: "missing dish rejected",
			items: []Item{
				{DishID: 0, UnitPrice: decimal.NewFromInt(100), Quantity: 1},
			},
			wantErr: ErrInvalidDish,
		},
		{
			name: "valid cart",
			items: []Item{
				{DishID: 1, UnitPrice: decimal.NewFromInt(100), Quantity: 1},
			},
			wantErr: nil,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			c := Cart{Items: testCase.items}
			err := c.Validate()
			if testCase.wantErr != nil {
				assert.ErrorIs(t, err, testCase.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCartAddMergesSameDish(t *testing.T) {
	c := New()
	c.Add(Item{DishID: 7, UnitPrice: decimal.NewFromInt(500), Quantity: 1})
	c.Add(Item{DishID: 7, UnitPrice: decimal.NewFromInt(500), Quantity: 2})
	c.Add(Item{DishID: 8, UnitPrice: decimal.NewFromInt(300), Quantity: 1})

	require.Len(t, c.Items, 2)
	assert.Equal(t, 3, c.Items[0].Quantity)
	assert.Equal(t, "1800", c.Total().String())
}

func TestCartRemoveAndClear(t *testing.T) {
	c := New()
	c.Add(Item{DishID: 1, UnitPrice: decimal.NewFromInt(100), Quantity: 1})
	c.Add(Item{DishID: 2, UnitPrice: decimal.NewFromInt(200), Quantity: 1})

	c.Remove(1)
	require.Len(t, c.Items, 1)
	assert.Equal(t, int64(2), c.Items[0].DishID)

	c.Remove(99) // unknown dish is a no-op
	require.Len(t, c.Items, 1)

	c.Clear()
	assert.ErrorIs(t, c.Validate(), ErrEmptyCart)
}
