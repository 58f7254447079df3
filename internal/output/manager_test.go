package output

import (
	"bytes"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestManager_SummaryCountsOutcomes(t *testing.T) {
	var buf bytes.Buffer
	m := newManager(&buf, false)

	ok := m.Register("slice 1")
	bad := m.Register("slice 2")
	m.Register("slice 3")
	m.Progress(ok, 50, 100)
	m.Complete(ok, "")
	m.ReportError(bad, errors.New("connection reset"))
	m.StartDisplay()
	m.StopDisplay()

	out := buf.String()
	assert.Contains(t, out, "Completed 1 of 3")
	assert.Contains(t, out, "Failed 1 of 3")
	assert.Contains(t, out, "connection reset")
}

func TestManager_ConcurrentUpdates(t *testing.T) {
	m := newManager(&bytes.Buffer{}, false)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			id := m.Register("slice")
			for done := int64(0); done <= 100; done += 10 {
				m.Progress(id, done, 100)
			}
			if i%2 == 0 {
				m.Complete(id, "done")
			} else {
				m.ReportError(id, errors.New("x"))
			}
		}()
	}
	wg.Wait()
	assert.Len(t, m.errors, 8)
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "•"+strings.Repeat("━", 5)+strings.Repeat(" ", 5)+"•", ProgressBar(50, 100, 10))
	assert.Equal(t, "•"+strings.Repeat("━", 10)+"•", ProgressBar(200, 100, 10))
	assert.Equal(t, "•"+strings.Repeat(" ", 10)+"•", ProgressBar(-1, 0, 10))
}

func TestDiscard(t *testing.T) {
	id := Discard.Register("x")
	Discard.Progress(id, 1, 2)
	Discard.ReportError(id, errors.New("ignored"))
}
