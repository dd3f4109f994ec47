package results

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/gofrs/flock"

	"github.com/wagiedev/procplayer/internal/match"
)

// lockRetryInterval is the interval between attempts to take the lock.
const lockRetryInterval = 50 * time.Millisecond

// maxRecordSize bounds a single stored line.
const maxRecordSize = 1024 * 1024

// Store appends game results to a JSON-lines file.
type Store struct {
	path string
	log  *slog.Logger
}

// NewStore returns a store writing to path. The file is created on the
// first Append.
func NewStore(path string, log *slog.Logger) *Store {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}

	return &Store{
		path: path,
		log:  log.With("component", "results", "path", path),
	}
}

// Path returns the results file path.
func (s *Store) Path() string {
	return s.path
}

// Append writes results to the end of the file, one per line.
func (s *Store) Append(ctx context.Context, results ...match.GameResult) error {
	if len(results) == 0 {
		return nil
	}

	fl, err := s.lock(ctx, false)
	if err != nil {
		return err
	}
	defer s.unlock(fl)

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open results file: %w", err)
	}

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)

	for _, r := range results {
		if err := enc.Encode(r); err != nil {
			_ = f.Close()

			return fmt.Errorf("encode result %s: %w", r.ID, err)
		}
	}

	if err := w.Flush(); err != nil {
		_ = f.Close()

		return fmt.Errorf("write results file: %w", err)
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("close results file: %w", err)
	}

	s.log.Debug("Appended results", "count", len(results))

	return nil
}

// ReadAll returns every stored result in file order. A missing file holds
// no results.
func (s *Store) ReadAll(ctx context.Context) ([]match.GameResult, error) {
	fl, err := s.lock(ctx, true)
	if err != nil {
		return nil, err
	}
	defer s.unlock(fl)

	f, err := os.Open(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("open results file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), maxRecordSize)

	var (
		results []match.GameResult
		lineNo  int
	)

	for scanner.Scan() {
		lineNo++

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var r match.GameResult
		if err := json.Unmarshal(line, &r); err != nil {
			return nil, fmt.Errorf("results file line %d: %w", lineNo, err)
		}

		results = append(results, r)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read results file: %w", err)
	}

	return results, nil
}

// lock takes the file lock, shared for readers and exclusive for writers,
// retrying until ctx is done.
func (s *Store) lock(ctx context.Context, shared bool) (*flock.Flock, error) {
	lockPath := s.path + ".lock"
	fl := flock.New(lockPath)

	var (
		locked bool
		err    error
	)

	if shared {
		locked, err = fl.TryRLockContext(ctx, lockRetryInterval)
	} else {
		locked, err = fl.TryLockContext(ctx, lockRetryInterval)
	}

	if err != nil {
		return nil, fmt.Errorf("acquiring results lock %s: %w", lockPath, err)
	}

	if !locked {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("acquiring results lock %s: %w", lockPath, ctx.Err())
		}

		return nil, fmt.Errorf("acquiring results lock %s: lock not acquired", lockPath)
	}

	return fl, nil
}

// unlock releases and closes the lock. Errors are logged only.
func (s *Store) unlock(fl *flock.Flock) {
	if err := fl.Close(); err != nil {
		s.log.Debug("failed to release results lock", "err", err)
	}
}

// EngineScore is one engine's record across stored games.
type EngineScore struct {
	Name   string  `json:"name"`
	Games  int     `json:"games"`
	Wins   int     `json:"wins"`
	Losses int     `json:"losses"`
	Draws  int     `json:"draws"`
	Points float64 `json:"points"`
}

// Summary aggregates stored results.
type Summary struct {
	Games       int            `json:"games"`
	WinsByColor [2]float64     `json:"wins_by_color"`
	TimeLosses  int            `json:"time_losses"`
	Forfeits    int            `json:"forfeits"`
	Engines     []*EngineScore `json:"engines"`
}

// Summarize tallies results per engine, ordered by points then name.
// A game an engine plays against itself counts once, as a draw.
func Summarize(results []match.GameResult) Summary {
	var sum Summary

	scores := map[string]*EngineScore{}
	score := func(name string) *EngineScore {
		if s, ok := scores[name]; ok {
			return s
		}

		s := &EngineScore{Name: name}
		scores[name] = s

		return s
	}

	for _, r := range results {
		sum.Games++

		switch r.Reason {
		case match.ReasonTime:
			sum.TimeLosses++
		case match.ReasonForfeit:
			sum.Forfeits++
		}

		switch r.Outcome {
		case match.OutcomeBlack:
			sum.WinsByColor[0]++
		case match.OutcomeWhite:
			sum.WinsByColor[1]++
		default:
			sum.WinsByColor[0] += 0.5
			sum.WinsByColor[1] += 0.5
		}

		if r.Black == r.White {
			s := score(r.Black)
			s.Games++
			s.Draws++
			s.Points += 0.5

			continue
		}

		black, white := score(r.Black), score(r.White)
		black.Games++
		white.Games++

		switch winner := r.Winner(); winner {
		case "":
			black.Draws++
			white.Draws++
			black.Points += 0.5
			white.Points += 0.5
		case r.Black:
			black.Wins++
			black.Points++
			white.Losses++
		default:
			white.Wins++
			white.Points++
			black.Losses++
		}
	}

	for _, s := range scores {
		sum.Engines = append(sum.Engines, s)
	}

	sort.Slice(sum.Engines, func(i, j int) bool {
		a, b := sum.Engines[i], sum.Engines[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}

		return a.Name < b.Name
	})

	return sum
}
