// internal/recommend/renderer.go
package recommend

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

var notFoundReplies = []string{
	"Sorry, I wasn't able to find a movie like that.",
	"I don't think such a movie exists, I'm afraid.",
	"I couldn't find anything matching that description. Sorry!",
	"I wasn't able to find the movie you are looking for.",
}

var foundReplies = []string{
	"%s is the movie you're looking for!",
	"How about %s?",
	"In that case, I would recommend %s.",
	"I suggest %s.",
}

// Renderer phrases a title as a reply, picking a template at random.
type Renderer struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRenderer uses rnd for template selection; nil seeds from the clock.
func NewRenderer(rnd *rand.Rand) *Renderer {
	if rnd == nil {
		rnd = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Renderer{rnd: rnd}
}

func (r *Renderer) Render(title string) string {
	if title == "" {
		return notFoundReplies[r.pick(len(notFoundReplies))]
	}
	return fmt.Sprintf(foundReplies[r.pick(len(foundReplies))], title)
}

func (r *Renderer) pick(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rnd.Intn(n)
}
