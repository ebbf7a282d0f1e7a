// File: internal/mocks/mocks.go
package mocks

import (
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/xkilldash9x/stylebox/internal/fonts"
	"github.com/xkilldash9x/stylebox/internal/render"
)

// -- Render Bridge Mock --

// MockBridge mocks the render.Bridge interface. Published items are also
// kept in order so tests can inspect them without matchers.
type MockBridge struct {
	mock.Mock
	mu    sync.Mutex
	items []render.Item
}

func (m *MockBridge) Publish(it render.Item) {
	m.mu.Lock()
	m.items = append(m.items, it)
	m.mu.Unlock()
	m.Called(it)
}

// Published returns the items received so far.
func (m *MockBridge) Published() []render.Item {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]render.Item, len(m.items))
	copy(out, m.items)
	return out
}

// -- Font Provider Mock --

// MockFontProvider mocks the fonts.Provider interface.
type MockFontProvider struct {
	mock.Mock
}

func (m *MockFontProvider) Metrics(f fonts.Face) fonts.Metrics {
	args := m.Called(f)
	return args.Get(0).(fonts.Metrics)
}

func (m *MockFontProvider) Measure(f fonts.Face, text string) float64 {
	args := m.Called(f, text)
	return args.Get(0).(float64)
}
