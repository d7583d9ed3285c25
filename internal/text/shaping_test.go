package text

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newShaper(t *testing.T) *TextShaper {
	t.Helper()
	s, err := NewTextShaper()
	require.NoError(t, err)
	return s
}

func TestMeasureTextScalesWithSize(t *testing.T) {
	s := newShaper(t)
	small, h1 := s.MeasureText("Detected Condition", &Font{Size: 12})
	large, h2 := s.MeasureText("Detected Condition", &Font{Size: 24})

	assert.Greater(t, small, 0.0)
	assert.InDelta(t, small*2, large, 1.0)
	assert.Greater(t, h2, h1)
}

func TestBoldIsWider(t *testing.T) {
	s := newShaper(t)
	regular, _ := s.MeasureText("Analysis Results", &Font{Size: 16})
	bold, _ := s.MeasureText("Analysis Results", &Font{Size: 16, Weight: 700})
	assert.Greater(t, bold, regular)
}

func TestSplitTextToLinesFitsWidth(t *testing.T) {
	s := newShaper(t)
	f := &Font{Size: 14, LineHeight: 1.4}
	text := "This report was generated using AI-assisted analysis. Please consult with a qualified healthcare professional for proper evaluation and treatment."

	lines := s.SplitTextToLines(text, f, 200)
	require.Greater(t, len(lines), 1)
	for _, line := range lines {
		w, _ := s.MeasureText(line, f)
		assert.LessOrEqual(t, w, 200.0, line)
	}
	assert.Equal(t, strings.Join(strings.Fields(text), " "), strings.Join(lines, " "))
}

func TestSplitTextBreaksLongWords(t *testing.T) {
	s := newShaper(t)
	f := &Font{Size: 14}
	lines := s.SplitTextToLines(strings.Repeat("x", 200), f, 50)

	require.Greater(t, len(lines), 1)
	assert.Equal(t, strings.Repeat("x", 200), strings.Join(lines, ""))
	for _, line := range lines {
		assert.NotEmpty(t, line)
	}
}

func TestSplitTextEmpty(t *testing.T) {
	s := newShaper(t)
	assert.Empty(t, s.SplitTextToLines("  \n\t ", &Font{Size: 14}, 100))
	assert.Equal(t, []string{"a b"}, s.SplitTextToLines(" a   b ", &Font{Size: 14}, 0))
}

func TestLineBox(t *testing.T) {
	s := newShaper(t)
	assert.InDelta(t, 19.6, s.LineBox(&Font{Size: 14, LineHeight: 1.4}), 1e-9)
	assert.Greater(t, s.LineBox(&Font{Size: 14}), 14.0)
}

func TestFaceConcurrentUse(t *testing.T) {
	s := newShaper(t)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.Face(&Font{Size: float64(10 + i%3)}, 2)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	_, err := s.Face(&Font{Size: 0}, 2)
	assert.Error(t, err)
}
