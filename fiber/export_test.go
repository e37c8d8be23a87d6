package fiber

import (
	"math/rand"
	"strconv"
)

// RenderOnly runs a synchronous pass for el and leaves it uncommitted. A later
// Flush commits it.
func RenderOnly(r *Root, el *Element) (*Node, error) {
	r.Schedule(el, PriorityNormal)
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.walk == nil {
		r.startWalk()
	}
	if err := r.walk.workLoopSync(); err != nil {
		r.abortWalk(err)
		return nil, err
	}
	return r.walk.wipRoot, nil
}

func ArenaOf(r *Root) *Arena { return r.arena }

var (
	randomTypes = []string{"div", "p", "span", "ul"}
	randomKeys  = []string{"", "", "a", "b"}
	randomText  = []string{"0", "1", "click me"}
)

// RandomTree builds a description from seed. The vocabulary is small so two
// seeds produce trees that share a good part of their shape.
func RandomTree(seed int64) *Element {
	rng := rand.New(rand.NewSource(seed))
	return randomElement(rng, 3)
}

func randomElement(rng *rand.Rand, depth int) *Element {
	typ := randomTypes[rng.Intn(len(randomTypes))]
	var props Props
	if rng.Intn(2) == 0 {
		props = Props{"class": "c" + strconv.Itoa(rng.Intn(2))}
	}
	if depth == 0 || rng.Intn(4) == 0 {
		return H(typ, props, T(randomText[rng.Intn(len(randomText))]))
	}
	n := rng.Intn(4)
	children := make([]*Element, 0, n)
	for i := 0; i < n; i++ {
		if rng.Intn(5) == 0 {
			children = append(children, T(randomText[rng.Intn(len(randomText))]))
			continue
		}
		children = append(children, randomElement(rng, depth-1).WithKey(randomKeys[rng.Intn(len(randomKeys))]))
	}
	return H(typ, props, children...)
}
