package problem_service

import (
	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/sirupsen/logrus"
	"github.com/tcp_snm/arena/internal/models"
	"github.com/tcp_snm/arena/internal/repository"
)

const defaultCacheSize = 256

// ProblemService is a read-through cache over the problem catalogue.
// Problems are immutable once published, so entries never go stale.
type ProblemService struct {
	Problems  repository.ProblemStore
	CacheSize int
	cache     *lru.Cache[uuid.UUID, models.Problem]
	logger    *logrus.Entry
}
