package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"

	"github.com/rs/zerolog"

	"github.com/redisplay/simple-gallery/internal/models"
	"github.com/redisplay/simple-gallery/internal/repository"
)

type Mode string

const (
	ModeSequential Mode = "sequential"
	ModeRandom     Mode = "random"
)

var (
	ErrEmptyCollection = errors.New("empty collection")
	ErrUnknownMode     = errors.New("unknown delivery mode")
)

// ParseMode maps the request's mode parameter; empty defaults to sequential.
func ParseMode(raw string) (Mode, error) {
	switch raw {
	case "", string(ModeSequential):
		return ModeSequential, nil
	case string(ModeRandom), "randomized":
		return ModeRandom, nil
	default:
		return "", ErrUnknownMode
	}
}

// DeliveryService advances a token through the collection and persists the
// token's traversal state between requests.
//
// Sequential mode keeps one raw counter per token, reduced modulo the live
// collection size on every read. Random mode walks a cached permutation of
// all picture ids, regenerating it from the live collection whenever it is
// absent or exhausted; additions and deletions therefore only enter a
// token's random cycle at regeneration boundaries.
type DeliveryService struct {
	pictures *repository.PictureRepository
	tokens   *repository.TokenRepository
	log      zerolog.Logger

	// Two concurrent requests with one token would otherwise race the
	// read-modify-write of its cursor and lose an advancement.
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewDeliveryService(pictures *repository.PictureRepository, tokens *repository.TokenRepository, log zerolog.Logger) *DeliveryService {
	return &DeliveryService{
		pictures: pictures,
		tokens:   tokens,
		log:      log,
		locks:    make(map[string]*sync.Mutex),
	}
}

// Next serves the token's next picture in the given mode. An unknown token
// yields repository.ErrTokenNotFound; callers must not reveal whether it
// ever existed.
func (s *DeliveryService) Next(ctx context.Context, token string, mode Mode) (models.Picture, error) {
	lock := s.lockFor(token)
	lock.Lock()
	defer lock.Unlock()

	tok, err := s.tokens.Get(ctx, token)
	if err != nil {
		return models.Picture{}, err
	}

	switch mode {
	case ModeSequential:
		return s.nextSequential(ctx, tok)
	case ModeRandom:
		return s.nextRandom(ctx, tok)
	default:
		return models.Picture{}, ErrUnknownMode
	}
}

func (s *DeliveryService) nextSequential(ctx context.Context, tok models.AccessToken) (models.Picture, error) {
	n, err := s.pictures.Count(ctx, "")
	if err != nil {
		return models.Picture{}, err
	}
	if n == 0 {
		return models.Picture{}, ErrEmptyCollection
	}

	pic, err := s.pictures.GetByOrdinal(ctx, int(tok.SeqCursor%int64(n)))
	if err != nil {
		return models.Picture{}, err
	}

	if err := s.tokens.SaveSequentialCursor(ctx, tok.Token, tok.SeqCursor+1); err != nil {
		return models.Picture{}, fmt.Errorf("save cursor: %w", err)
	}
	return pic, nil
}

func (s *DeliveryService) nextRandom(ctx context.Context, tok models.AccessToken) (models.Picture, error) {
	order, cursor := tok.ShuffleOrder, tok.ShuffleCursor

	// First use and cycle rollover are the same transition: rebuild the
	// permutation from the live collection.
	if len(order) == 0 || cursor >= len(order) {
		var err error
		if order, err = s.reshuffle(ctx); err != nil {
			return models.Picture{}, err
		}
		cursor = 0
	}
	if len(order) == 0 {
		return models.Picture{}, ErrEmptyCollection
	}

	id := order[cursor]
	cursor++

	// Never persist an exhausted cursor: if this pick finished the cycle,
	// hand the next request a fresh permutation instead.
	if cursor >= len(order) {
		var err error
		if order, err = s.reshuffle(ctx); err != nil {
			return models.Picture{}, err
		}
		cursor = 0
	}

	if err := s.tokens.SaveShuffleState(ctx, tok.Token, order, cursor); err != nil {
		return models.Picture{}, fmt.Errorf("save shuffle state: %w", err)
	}

	// State is persisted before the id resolves, so a token never wedges on
	// an entry whose picture was deleted mid-cycle; that entry surfaces as
	// not-found exactly once and the traversal moves on.
	pic, err := s.pictures.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrPictureNotFound) {
			s.log.Debug().Int64("picture_id", id).Msg("stale id in cached permutation")
		}
		return models.Picture{}, err
	}
	return pic, nil
}

func (s *DeliveryService) reshuffle(ctx context.Context) ([]int64, error) {
	ids, err := s.pictures.AllIDs(ctx)
	if err != nil {
		return nil, err
	}
	rand.Shuffle(len(ids), func(i, j int) {
		ids[i], ids[j] = ids[j], ids[i]
	})
	return ids, nil
}

// lockFor returns the token's serialization lock. Locks are kept for the
// process lifetime; the map grows with the number of distinct tokens seen,
// which an admin creates by hand.
func (s *DeliveryService) lockFor(token string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[token]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[token] = lock
	}
	return lock
}
