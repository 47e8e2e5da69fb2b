// Package pipeline loads session listings, enriching scanned transcripts
// with working-directory and message-count details via the on-disk index.
package pipeline

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/theirongolddev/sessum/internal/session"
	"github.com/theirongolddev/sessum/internal/store"
)

// Detail is a scanned transcript plus the derived fields shown in listings.
type Detail struct {
	session.Info
	Cwd          string
	MessageCount int
}

// LoadResult holds the output of a listing load.
type LoadResult struct {
	Sessions   []Detail
	TotalFiles int
	IndexHits  int
	Scanned    int
}

// ProgressFunc is called during loading to report progress.
type ProgressFunc func(current, total int)

// Load discovers transcripts under root and fills in their display details,
// reading each file only when the index has no fresh entry for it. idx may
// be nil to force a full scan. Order follows session.Scan (newest first).
func Load(root string, idx *store.Index, progressFn ProgressFunc) (*LoadResult, error) {
	files, err := session.Scan(root)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}

	result := &LoadResult{TotalFiles: len(files)}
	if len(files) == 0 {
		return result, nil
	}

	details := make([]Detail, len(files))
	var toScan []int

	for i, f := range files {
		details[i] = Detail{Info: f}

		if idx == nil {
			toScan = append(toScan, i)
			continue
		}
		entry, ok, err := idx.Get(f.Path)
		if err == nil && ok && entry.MtimeNs == f.ModTime.UnixNano() && entry.SizeBytes == f.Size {
			details[i].Cwd = entry.Cwd
			details[i].MessageCount = entry.MessageCount
			result.IndexHits++
			continue
		}
		toScan = append(toScan, i)
	}
	result.Scanned = len(toScan)

	if len(toScan) > 0 {
		numWorkers := runtime.GOMAXPROCS(0)
		if numWorkers < 1 {
			numWorkers = 4
		}
		if numWorkers > len(toScan) {
			numWorkers = len(toScan)
		}

		work := make(chan int, len(toScan))
		for _, i := range toScan {
			work <- i
		}
		close(work)

		var wg sync.WaitGroup
		var processed atomic.Int64
		var indexMu sync.Mutex

		wg.Add(numWorkers)
		for w := 0; w < numWorkers; w++ {
			go func() {
				defer wg.Done()
				for i := range work {
					d := &details[i]
					d.Cwd = session.SniffCwd(d.Path)
					if count, err := session.CountMessages(d.Path); err == nil {
						d.MessageCount = count
					}

					if idx != nil {
						indexMu.Lock()
						_ = idx.Put(store.Entry{
							Path:         d.Path,
							MtimeNs:      d.ModTime.UnixNano(),
							SizeBytes:    d.Size,
							Cwd:          d.Cwd,
							MessageCount: d.MessageCount,
						})
						indexMu.Unlock()
					}

					n := processed.Add(1)
					if progressFn != nil {
						progressFn(int(n)+result.IndexHits, result.TotalFiles)
					}
				}
			}()
		}
		wg.Wait()
	}

	if idx != nil {
		live := make(map[string]bool, len(files))
		for _, f := range files {
			live[f.Path] = true
		}
		_ = idx.Prune(live)
	}

	result.Sessions = details
	return result, nil
}

// OpenIndex opens the session index, returning nil (not an error) when the
// database can't be opened so callers degrade to a full scan.
func OpenIndex(dbPath string) *store.Index {
	idx, err := store.Open(dbPath)
	if err != nil {
		return nil
	}
	return idx
}

// CloseIndex closes idx if non-nil.
func CloseIndex(idx *store.Index) {
	if idx != nil {
		_ = idx.Close()
	}
}
