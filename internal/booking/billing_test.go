package booking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCeilHours(t *testing.T) {
	assert.Equal(t, int64(0), CeilHours(0))
	assert.Equal(t, int64(0), CeilHours(-50))
	assert.Equal(t, int64(1), CeilHours(1))
	assert.Equal(t, int64(1), CeilHours(3600))
	assert.Equal(t, int64(2), CeilHours(3601))
	assert.Equal(t, int64(3), CeilHours(9000)) // 2.5 hours
}

func TestRentCents(t *testing.T) {
	// 2.5 hours at 10/h bills 3 full hours.
	assert.Equal(t, int64(30), RentCents(10, 0, 9000))
	assert.Equal(t, int64(10), RentCents(10, 100, 200))
}

func TestLateHoursBillsAtLeastOne(t *testing.T) {
	// Ten seconds late inside the same billed hour still costs an hour.
	assert.Equal(t, int64(1), LateHours(0, 7200, 7210))
	// Two full extra hours.
	assert.Equal(t, int64(2), LateHours(0, 7200, 14400))
}
