package enroll

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/campusconnect/backend/core"
)

var (
	rngMu   sync.Mutex
	rng     = rand.New(rand.NewSource(time.Now().UnixNano()))
	nowFunc = time.Now // mockable
)

// NormalizeCode canonicalizes a class code: trimmed, upper-cased.
func NormalizeCode(code string) string {
	return strings.ToUpper(core.CleanString(code))
}

// GenerateCode produces a fresh class code in the familiar "CS342-FA24"
// shape: a random course number and the current term suffix. Uniqueness is
// NOT guaranteed; the caller must still publish it through PublishCode and
// retry on conflict.
func GenerateCode() string {
	rngMu.Lock()
	n := 100 + rng.Intn(900)
	rngMu.Unlock()

	now := nowFunc()
	term := "SP"
	if now.Month() >= time.July {
		term = "FA"
	}
	return fmt.Sprintf("CS%d-%s%02d", n, term, now.Year()%100)
}
