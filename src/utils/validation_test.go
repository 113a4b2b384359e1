package utils_test

import (
	"testing"

	"investmentapp/src/utils"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "jane@example.com", utils.NormalizeEmail("  Jane@Example.COM "))
	assert.Equal(t, "AAPL", utils.NormalizeTicker(" aapl\t"))
}

func TestValidators(t *testing.T) {
	assert.NoError(t, utils.ValidateEmail("jane@example.com"))
	assert.Error(t, utils.ValidateEmail(""))
	assert.Error(t, utils.ValidateEmail("not-an-email"))

	assert.NoError(t, utils.ValidateName("firstName", "Jane"))
	assert.Error(t, utils.ValidateName("firstName", "J"))
	assert.Error(t, utils.ValidateName("firstName", "Jane2"))

	assert.NoError(t, utils.ValidateShares(decimal.Zero))
	assert.NoError(t, utils.ValidateShares(decimal.RequireFromString("0.5")))
	assert.Error(t, utils.ValidateShares(decimal.RequireFromString("-0.01")))

	assert.NoError(t, utils.ValidateZipcode("10001"))
	assert.Error(t, utils.ValidateZipcode("1000"))
	assert.Error(t, utils.ValidateZipcode("ABCDE"))

	assert.Error(t, utils.RequireNotBlank("ticker", "  "))
}

func TestPassword(t *testing.T) {
	hash, err := utils.HashPassword("Hello1234!")
	assert.NoError(t, err)
	assert.NotEqual(t, "Hello1234!", hash)
	assert.True(t, utils.CheckPassword(hash, "Hello1234!"))
	assert.False(t, utils.CheckPassword(hash, "hello1234!"))
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, "debug", utils.ParseLevel("debug").String())
	assert.Equal(t, "info", utils.ParseLevel("nonsense").String())
}
