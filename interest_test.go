package tick

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterestAdd(t *testing.T) {
	cases := []struct {
		a, b, want Interest
	}{
		{Wait, Wait, Wait},
		{Wait, Read, Read},
		{Read, Write, ReadWrite},
		{Write, Read, ReadWrite},
		{ReadWrite, Read, ReadWrite},
		{Read, Remove, Remove},
		{Remove, Read, Remove},
		{Remove, Remove, Remove},
		{Read, Read, Read},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, c.a.Add(c.b), "%v.Add(%v)", c.a, c.b)
	}
}

func TestInterestSub(t *testing.T) {
	cases := []struct {
		a, b, want Interest
	}{
		{ReadWrite, Read, Write},
		{ReadWrite, Write, Read},
		{ReadWrite, ReadWrite, Wait},
		{Read, Write, Read},
		{Wait, Read, Wait},
		{Remove, Read, Remove},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, c.a.Sub(c.b), "%v.Sub(%v)", c.a, c.b)
	}
}

func TestInterestToAction(t *testing.T) {
	act, events := Remove.toAction()
	assert.Equal(t, actionRemove, act)
	assert.Zero(t, events)

	act, events = Wait.toAction()
	assert.Equal(t, actionWait, act)
	assert.Zero(t, events)

	act, events = Read.toAction()
	require.Equal(t, actionRegister, act)
	assert.Equal(t, EventRead, events)

	act, events = Write.toAction()
	require.Equal(t, actionRegister, act)
	assert.Equal(t, EventWrite, events)

	act, events = ReadWrite.toAction()
	require.Equal(t, actionRegister, act)
	assert.Equal(t, EventRead|EventWrite, events)
}

func TestInterestString(t *testing.T) {
	assert.Equal(t, "Wait", Wait.String())
	assert.Equal(t, "Read", Read.String())
	assert.Equal(t, "Write", Write.String())
	assert.Equal(t, "ReadWrite", ReadWrite.String())
	assert.Equal(t, "Remove", Remove.String())
}
