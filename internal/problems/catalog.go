package problems

import (
	"context"
	"database/sql"
	"math/rand"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Catalog holds the immutable problem pool a process serves rounds from.
type Catalog struct {
	problems []Problem
	byID     map[int]Problem
}

func NewCatalog(list []Problem) *Catalog {
	c := &Catalog{
		problems: list,
		byID:     make(map[int]Problem, len(list)),
	}
	for _, p := range list {
		c.byID[p.ID] = p
	}
	return c
}

// Builtin returns the embedded seed catalog.
func Builtin() *Catalog { return NewCatalog(builtin) }

// Load reads the problems table; topics are stored comma-separated. Falls back
// to the builtin seed when the table is missing, unreadable or empty.
func Load(ctx context.Context, db *sql.DB) *Catalog {
	if db == nil {
		return Builtin()
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	const q = `SELECT url, id, difficulty, name, premium, coalesce(topics,'')
	             FROM problems ORDER BY id`
	rows, err := db.QueryContext(ctx, q)
	if err != nil {
		zap.L().Warn("problems.load", zap.Error(err))
		return Builtin()
	}
	defer rows.Close()

	var list []Problem
	for rows.Next() {
		var p Problem
		var topics string
		if err := rows.Scan(&p.URL, &p.ID, &p.Difficulty, &p.Name, &p.Premium, &topics); err != nil {
			zap.L().Warn("problems.scan", zap.Error(err))
			return Builtin()
		}
		if topics != "" {
			p.Topics = strings.Split(topics, ",")
		}
		list = append(list, p)
	}
	if err := rows.Err(); err != nil || len(list) == 0 {
		zap.L().Warn("problems.load_empty", zap.Error(err))
		return Builtin()
	}

	zap.L().Info("problems.loaded", zap.Int("count", len(list)))
	return NewCatalog(list)
}

func (c *Catalog) Len() int { return len(c.problems) }

// List returns a copy of the pool.
func (c *Catalog) List() []Problem {
	out := make([]Problem, len(c.problems))
	copy(out, c.problems)
	return out
}

func (c *Catalog) Get(id int) (Problem, bool) {
	p, ok := c.byID[id]
	return p, ok
}

// Select picks a uniformly random problem matching the filter whose id is not
// in excluded. Returns nil when the remaining pool is empty.
func (c *Catalog) Select(excluded map[int]struct{}, f *Filter) *Problem {
	avail := make([]Problem, 0, len(c.problems))
	for _, p := range c.problems {
		if _, done := excluded[p.ID]; done {
			continue
		}
		if !f.matches(p) {
			continue
		}
		avail = append(avail, p)
	}
	if len(avail) == 0 {
		return nil
	}
	p := avail[rand.Intn(len(avail))]
	return &p
}
