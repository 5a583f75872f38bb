package iout

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMultiCloseOrder(t *testing.T) {
	mc := NewMultiClose()
	var order []int
	for i := 0; i < 3; i++ {
		mc.AddFunc(func() error {
			order = append(order, i)
			return nil
		})
	}
	require.NoError(t, mc.CloseAll())
	assert.Equal(t, []int{2, 1, 0}, order)

	// second close is a no-op
	require.NoError(t, mc.Close())
	assert.Len(t, order, 3)
}

func TestMultiCloseErrors(t *testing.T) {
	errA := errors.New("a")
	errB := errors.New("b")
	mc := NewMultiClose()
	mc.AddFunc(func() error { return errA })
	mc.AddFunc(func() error { return nil })
	mc.AddFunc(func() error { return errB })

	err := mc.CloseAll()
	require.Error(t, err)
	assert.ErrorIs(t, err, errA)
	assert.ErrorIs(t, err, errB)
	assert.EqualError(t, err, "close: 2 errors: b; a")
}

func TestJoinCloseErrors(t *testing.T) {
	require.NoError(t, joinCloseErrors([]error{nil, nil}))
	err := joinCloseErrors([]error{nil, errors.New("x")})
	require.EqualError(t, err, "x")
}
