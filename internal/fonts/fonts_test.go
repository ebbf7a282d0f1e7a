package fonts

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/image/font/basicfont"
)

func TestEstimator(t *testing.T) {
	e := NewEstimator()
	f := Face{Family: "sans-serif", Size: 10}

	assert.InDelta(t, 30.0, e.Measure(f, "abcde"), 1e-9)
	assert.InDelta(t, 6.0, e.Measure(f, "é"), 1e-9)

	m := e.Metrics(f)
	assert.InDelta(t, 8.0, m.Ascent, 1e-9)
	assert.InDelta(t, 2.0, m.Descent, 1e-9)
	assert.InDelta(t, 12.0, m.LineHeight, 1e-9)
}

func TestFaceProvider(t *testing.T) {
	p := NewFaceProvider()

	t.Run("Native size matches the bitmap face", func(t *testing.T) {
		f := Face{Family: "anything", Size: 13}
		// Face7x13 advances 7 pixels per glyph.
		assert.InDelta(t, 21.0, p.Measure(f, "abc"), 1e-9)
		m := p.Metrics(f)
		assert.InDelta(t, 11.0, m.Ascent, 1e-9)
		assert.InDelta(t, 2.0, m.Descent, 1e-9)
	})

	t.Run("Scales linearly with size", func(t *testing.T) {
		small := p.Measure(Face{Size: 13}, "hello")
		large := p.Measure(Face{Size: 26}, "hello")
		assert.InDelta(t, 2*small, large, 1e-9)
	})

	t.Run("Registered families are found in a list", func(t *testing.T) {
		p.Register("Mono", basicfont.Face7x13)
		assert.Same(t, basicfont.Face7x13, p.face(`"Missing", mono`))
	})

	t.Run("Concurrent use", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = p.Measure(Face{Size: 16}, "concurrent")
				_ = p.Metrics(Face{Size: 16})
			}()
		}
		wg.Wait()
	})
}
