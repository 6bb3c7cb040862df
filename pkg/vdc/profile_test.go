package vdc

import (
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultProfileIsValid(t *testing.T) {
	require.NoError(t, DefaultProfile.Validate())
	assert.Less(t, len(DefaultProfile.Name), MaxModelLength)
}

func TestProfileValidate(t *testing.T) {
	valid := ModelProfile{
		Name:    "PSU",
		Voltage: ParamSpec{Min: 0, Max: 10},
		Current: ParamSpec{Min: 0, Max: 1},
	}

	tests := []struct {
		name   string
		mutate func(p *ModelProfile)
	}{
		{"empty name", func(p *ModelProfile) { p.Name = "" }},
		{"name too long", func(p *ModelProfile) { p.Name = strings.Repeat("n", MaxModelLength) }},
		{"voltage inverted", func(p *ModelProfile) { p.Voltage = ParamSpec{Min: 5, Max: 1} }},
		{"current NaN", func(p *ModelProfile) { p.Current.Max = math.NaN() }},
		{"voltage infinite", func(p *ModelProfile) { p.Voltage.Max = math.Inf(1) }},
		{"negative resolution", func(p *ModelProfile) { p.Current.Resolution = -0.1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := valid
			tt.mutate(&p)
			assert.ErrorIs(t, p.Validate(), ErrInvalidProfile)
		})
	}

	t.Run("longest accepted name", func(t *testing.T) {
		p := valid
		p.Name = strings.Repeat("n", MaxModelLength-1)
		assert.NoError(t, p.Validate())
	})

	t.Run("degenerate range", func(t *testing.T) {
		p := valid
		p.Voltage = ParamSpec{Min: 5, Max: 5}
		assert.NoError(t, p.Validate())
	})
}

func TestParamSpecContains(t *testing.T) {
	s := ParamSpec{Min: -1, Max: 1}
	assert.True(t, s.Contains(-1))
	assert.True(t, s.Contains(0))
	assert.True(t, s.Contains(1))
	assert.False(t, s.Contains(1.0000001))
	assert.False(t, s.Contains(math.NaN()))
}

func TestWithProfilePanics(t *testing.T) {
	assert.Panics(t, func() { WithProfile(ModelProfile{}) })
	assert.Panics(t, func() { WithSessionID("") })
}

func TestConcurrentAccess(t *testing.T) {
	r := New()
	load := LoadModelFunc(func(p Supply, _ any) Supply {
		return Supply{Voltage: p.Voltage, Current: p.Current / 2}
	})

	var wg sync.WaitGroup
	handles := make(chan Handle, MaxHandles)
	for i := 0; i < MaxHandles; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			h, err := r.Create()
			if !assert.NoError(t, err) {
				return
			}
			v := float64(i)
			assert.NoError(t, r.SetVoltage(h, v))
			assert.NoError(t, r.SetCurrent(h, 2))
			assert.NoError(t, r.SetOutputState(h, true))
			assert.NoError(t, r.ConnectUUT(h, &UUT{Load: load}))
			for j := 0; j < 50; j++ {
				st, err := r.ReadStatus(h)
				assert.NoError(t, err)
				assert.Equal(t, v, st.Voltage)
				assert.Equal(t, 1.0, st.Current)
			}
			handles <- h
		}(i)
	}
	wg.Wait()
	close(handles)

	seen := make(map[Handle]bool)
	for h := range handles {
		assert.False(t, seen[h], "handle %d handed out twice", h)
		seen[h] = true
	}
	assert.Len(t, seen, MaxHandles)

	_, err := r.Create()
	assert.ErrorIs(t, err, ErrMaxHandlesExceeded)
}
