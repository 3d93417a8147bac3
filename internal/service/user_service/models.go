package user_service

import (
	"github.com/sirupsen/logrus"
	"github.com/tcp_snm/arena/internal/repository"
)

type UserService struct {
	Users  repository.UserStore
	logger *logrus.Entry
}

func (u *UserService) Start() {
	if u.Users == nil {
		panic("user service expects non-nil user store")
	}
	u.logger = logrus.WithField("from", "user service")
}
