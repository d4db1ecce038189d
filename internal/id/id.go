package id

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

var (
	mu   sync.Mutex
	mono io.Reader
)

func init() {
	// Seeded from crypto/rand; ulid.Monotonic keeps ids created within the
	// same millisecond strictly increasing.
	var seed int64
	_ = binary.Read(cryptoRand.Reader, binary.LittleEndian, &seed)
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	mono = ulid.Monotonic(rand.New(rand.NewSource(seed)), 0)
}

// At returns a ULID whose timestamp component is t.
//
// ULIDs sort lexicographically by creation time, so portfolio and
// transaction ids double as a coarse ordering key in SQLite indexes.
func At(t time.Time) string {
	mu.Lock()
	defer mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(t.UTC()), mono)
	if err != nil {
		// Only possible when entropy fails, the monotonic counter
		// overflows within one millisecond, or t is out of ULID range.
		panic(err)
	}
	return id.String()
}
