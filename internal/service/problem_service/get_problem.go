package problem_service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"
	"github.com/tcp_snm/arena/internal/arena_errors"
	"github.com/tcp_snm/arena/internal/models"
)

func (p *ProblemService) Start() {
	if p.Problems == nil {
		panic("problem service expects non-nil problem store")
	}
	if p.CacheSize <= 0 {
		p.CacheSize = defaultCacheSize
	}
	cache, err := lru.New[uuid.UUID, models.Problem](p.CacheSize)
	if err != nil {
		panic(fmt.Sprintf("cannot create problem cache, %v", err))
	}
	p.cache = cache
	p.logger = logrus.WithField("from", "problem service")
	p.logger.Infof("problem cache initialized with size %d", p.CacheSize)
}

// GetProblemsByIDs returns the problems in the order of ids. It fails with
// ErrNotFound naming the first missing id.
func (p *ProblemService) GetProblemsByIDs(
	ctx context.Context,
	ids []uuid.UUID,
) ([]models.Problem, error) {
	found := make(map[uuid.UUID]models.Problem, len(ids))
	missing := make([]uuid.UUID, 0)
	for _, id := range ids {
		if problem, ok := p.cache.Get(id); ok {
			found[id] = problem
		} else {
			missing = append(missing, id)
		}
	}

	// fetch the rest from the store
	if len(missing) > 0 {
		fetched, err := p.Problems.GetProblemsByIDs(ctx, missing)
		if err != nil {
			return nil, err
		}
		for _, problem := range fetched {
			p.cache.Add(problem.ID, problem)
			found[problem.ID] = problem
		}
	}

	problems := make([]models.Problem, 0, len(ids))
	for _, id := range ids {
		problem, ok := found[id]
		if !ok {
			return nil, fmt.Errorf("%w, problem with id %v does not exist", arena_errors.ErrNotFound, id)
		}
		problems = append(problems, problem)
	}
	return problems, nil
}

func (p *ProblemService) GetProblemByID(ctx context.Context, id uuid.UUID) (models.Problem, error) {
	problems, err := p.GetProblemsByIDs(ctx, []uuid.UUID{id})
	if err != nil {
		return models.Problem{}, err
	}
	return problems[0], nil
}
