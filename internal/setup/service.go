// Package setup bootstraps an empty database: tables first, then the demo
// catalog and a month of gold price history.
package setup

import (
	"math/rand"
	"time"

	"gorm.io/gorm"

	"github.com/goldjewelmy/goldstore-backend/pkg/db/schema"
	pkgerrors "github.com/goldjewelmy/goldstore-backend/pkg/errors"
	"github.com/goldjewelmy/goldstore-backend/pkg/logger"
)

type Service struct {
	sql     sqlConn
	db      *gorm.DB
	dialect schema.Dialect
	logg    *logger.Logger
	rng     *rand.Rand
	now     func() time.Time
}

type Option func(*Service)

// WithRand makes the seeded price history reproducible.
func WithRand(src rand.Source) Option {
	return func(s *Service) { s.rng = rand.New(src) }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService wires the raw connection used for DDL and the gorm handle used
// for seeding. Both must point at the same database.
func NewService(conn sqlConn, db *gorm.DB, dialect schema.Dialect, logg *logger.Logger, opts ...Option) (*Service, error) {
	if conn == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "sql connection required")
	}
	if len(dialect.Tables) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "schema dialect required")
	}
	s := &Service{
		sql:     conn,
		db:      db,
		dialect: dialect,
		logg:    logg,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}
