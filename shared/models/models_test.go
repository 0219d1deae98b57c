package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrderID_IncreasesWithTime(t *testing.T) {
	earlier := NewOrderID(time.UnixMilli(1700000000000))
	later := NewOrderID(time.UnixMilli(1700000000001))

	assert.Equal(t, ID("1700000000000"), earlier)
	assert.True(t, later.String() > earlier.String())
}

func TestGenerateUUID_Unique(t *testing.T) {
	assert.NotEqual(t, GenerateUUID(), GenerateUUID())
}

func TestMoney_Add(t *testing.T) {
	total, err := NewMoney(2500, "USD").Add(NewMoney(1800, "USD"))
	require.NoError(t, err)
	assert.Equal(t, NewMoney(4300, "USD"), total)
}

func TestMoney_Add_CurrencyMismatch(t *testing.T) {
	_, err := NewMoney(2500, "USD").Add(NewMoney(1800, "EUR"))
	assert.Error(t, err)
}

func TestMoney_Predicates(t *testing.T) {
	assert.True(t, NewMoney(0, "USD").IsZero())
	assert.False(t, NewMoney(1, "USD").IsZero())
	assert.True(t, NewMoney(1, "USD").IsPositive())
	assert.False(t, NewMoney(-5, "USD").IsPositive())
}
