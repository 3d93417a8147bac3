package submission_service

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

func (s *SubmissionService) Start() {
	// validate fields
	for name, missing := range map[string]bool{
		"submission store": s.Submissions == nil,
		"room service":     s.RoomService == nil,
		"problem service":  s.ProblemService == nil,
		"evaluator":        s.Evaluator == nil,
		"publisher":        s.Publisher == nil,
	} {
		if missing {
			panic(fmt.Sprintf("submission service expects non-nil %v", name))
		}
	}
	if s.EvaluationTimeout <= 0 {
		s.EvaluationTimeout = defaultEvaluationTimeout
	}

	s.logger = logrus.WithFields(logrus.Fields{
		"from": "submission service",
	})
	s.logger.Info("initialized submission service")
}
