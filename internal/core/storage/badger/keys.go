package badger

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/aevon-lab/project-indica/internal/core/indicator"
	"github.com/aevon-lab/project-indica/internal/core/storage"
)

// Key layout. Index keys sort by (type, group, calculator, emitter, day, doc, seq);
// undated values carry an empty day and therefore sort before every date.
const (
	sep = "\x00"

	prefixDoc        = "doc" + sep
	prefixRef        = "ref" + sep
	prefixIdx        = "idx" + sep
	prefixChange     = "chg" + sep
	prefixChangeID   = "chgid" + sep
	prefixCheckpoint = "ckp" + sep

	changeSequenceKey = "seq" + sep + "changes"
)

func docKey(id string) []byte { return []byte(prefixDoc + id) }
func refKey(id string) []byte { return []byte(prefixRef + id) }

func changeKey(seq int64) []byte {
	k := make([]byte, len(prefixChange)+8)
	copy(k, prefixChange)
	binary.BigEndian.PutUint64(k[len(prefixChange):], uint64(seq))
	return k
}

func changeIDKey(id string) []byte     { return []byte(prefixChangeID + id) }
func checkpointKey(feed string) []byte { return []byte(prefixCheckpoint + feed) }

// seriesPrefix is the key prefix shared by every value of one emitter for one group.
func seriesPrefix(indicatorType, groupKey, calculator, emitter string) string {
	return prefixIdx + strings.Join([]string{indicatorType, groupKey, calculator, emitter}, sep) + sep
}

func indexKey(e storage.IndexEntry) []byte {
	return []byte(seriesPrefix(e.IndicatorType, e.GroupKey, e.Calculator, e.Emitter) +
		e.Day + sep + e.DocID + sep + fmt.Sprintf("%08d", e.Seq))
}

// indexedValue is the tail of an index key below its series prefix.
type indexedValue struct {
	day   string
	docID string
}

func parseIndexTail(tail string) (indexedValue, error) {
	parts := strings.Split(tail, sep)
	if len(parts) != 3 {
		return indexedValue{}, fmt.Errorf("%w: malformed index key tail %q", indicator.ErrCorruptIdentifier, tail)
	}
	return indexedValue{day: parts[0], docID: parts[1]}, nil
}
