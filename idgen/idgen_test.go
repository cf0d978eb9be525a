package idgen

import (
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wyfcoding/simplex/config"
)

func TestSnowflakeUnique(t *testing.T) {
	g, err := NewGenerator(config.SnowflakeConfig{MachineID: 3})
	require.NoError(t, err)

	seen := make(map[int64]struct{}, 1000)
	for range 1000 {
		id := g.Generate()
		assert.Positive(t, id)
		seen[id] = struct{}{}
	}
	assert.Len(t, seen, 1000)
}

func TestSonyflake(t *testing.T) {
	g, err := NewGenerator(config.SnowflakeConfig{Type: "sonyflake", MachineID: 7, StartTime: "2024-01-01"})
	require.NoError(t, err)
	a, b := g.Generate(), g.Generate()
	assert.Positive(t, a)
	assert.Greater(t, b, a)
}

func TestNewGeneratorErrors(t *testing.T) {
	_, err := NewGenerator(config.SnowflakeConfig{Type: "uuid"})
	assert.ErrorIs(t, err, ErrUnsupportedType)

	_, err = NewGenerator(config.SnowflakeConfig{Type: "sonyflake", MachineID: 70000})
	assert.ErrorIs(t, err, ErrInvalidMachineID)

	_, err = NewGenerator(config.SnowflakeConfig{Type: "sonyflake", StartTime: "yesterday"})
	assert.ErrorIs(t, err, ErrParseTime)

	_, err = NewGenerator(config.SnowflakeConfig{MachineID: 5000})
	assert.ErrorIs(t, err, ErrCreateNode)
}

func TestInitKeepsPreviousOnError(t *testing.T) {
	require.NoError(t, Init(config.SnowflakeConfig{MachineID: 2}))
	before := Default()

	assert.Error(t, Init(config.SnowflakeConfig{Type: "uuid"}))
	assert.Same(t, before, Default())
}

func TestNext(t *testing.T) {
	id := GenSolveID()
	require.True(t, strings.HasPrefix(id, "S"))
	_, err := strconv.ParseInt(id[1:], 10, 64)
	assert.NoError(t, err)

	_, err = strconv.ParseInt(GenIDString(), 10, 64)
	assert.NoError(t, err)

	var wg sync.WaitGroup
	ids := make([]string, 200)
	for i := range ids {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids[i] = GenSolveID()
		}()
	}
	wg.Wait()

	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		seen[id] = struct{}{}
	}
	assert.Len(t, seen, len(ids))
}
