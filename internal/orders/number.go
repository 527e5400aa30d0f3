package orders

import (
	"fmt"
	"math/rand"
	"sync"
	"time"
)

// OrderNumberPrefix starts every customer-facing order number.
const OrderNumberPrefix = "GJM"

// NumberGenerator yields candidate order numbers.
type NumberGenerator interface {
	Next() string
}

type randomNumbers struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewRandomNumberGenerator returns GJM followed by five digits in 10000-99999.
func NewRandomNumberGenerator(src rand.Source) NumberGenerator {
	if src == nil {
		src = rand.NewSource(time.Now().UnixNano())
	}
	return &randomNumbers{rnd: rand.New(src)}
}

func (g *randomNumbers) Next() string {
	g.mu.Lock()
	n := 10000 + g.rnd.Intn(90000)
	g.mu.Unlock()
	return fmt.Sprintf("%s%05d", OrderNumberPrefix, n)
}
