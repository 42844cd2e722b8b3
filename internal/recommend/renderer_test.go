package recommend

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderer_NotFound(t *testing.T) {
	r := seededRenderer()
	for i := 0; i < 100; i++ {
		assert.Contains(t, notFoundReplies, r.Render(""))
	}
}

func TestRenderer_Found(t *testing.T) {
	r := seededRenderer()
	allowed := make([]string, len(foundReplies))
	for i, tmpl := range foundReplies {
		allowed[i] = fmt.Sprintf(tmpl, "Kung Fu Panda 3")
	}

	for i := 0; i < 100; i++ {
		reply := r.Render("Kung Fu Panda 3")
		assert.Contains(t, reply, "Kung Fu Panda 3")
		assert.Contains(t, allowed, reply)
	}
}

func TestRenderer_UsesEveryTemplate(t *testing.T) {
	r := seededRenderer()
	seen := map[string]bool{}
	for i := 0; i < 500; i++ {
		seen[r.Render("")] = true
	}
	assert.Len(t, seen, len(notFoundReplies))
}

func TestRenderer_Deterministic(t *testing.T) {
	a := NewRenderer(rand.New(rand.NewSource(42)))
	b := NewRenderer(rand.New(rand.NewSource(42)))
	for i := 0; i < 20; i++ {
		assert.Equal(t, a.Render("Heat"), b.Render("Heat"))
	}
}

func TestRenderer_ConcurrentUse(t *testing.T) {
	r := NewRenderer(nil)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				if !strings.Contains(r.Render("Heat"), "Heat") {
					t.Error("found reply without title")
				}
			}
		}()
	}
	wg.Wait()
}
