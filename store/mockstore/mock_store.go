package mockstore

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/morganjb52/ffb/model"
)

type Store struct {
	mock.Mock
}

func (s *Store) Get(ctx context.Context, platform string) (*model.PlatformConnection, error) {
	args := s.Called(ctx, platform)

	var res *model.PlatformConnection
	if args.Get(0) != nil {
		res = args.Get(0).(*model.PlatformConnection)
	}

	return res, args.Error(1)
}

func (s *Store) Save(ctx context.Context, conn *model.PlatformConnection) error {
	args := s.Called(ctx, conn)
	return args.Error(0)
}

func (s *Store) Delete(ctx context.Context, platform string) error {
	args := s.Called(ctx, platform)
	return args.Error(0)
}

func (s *Store) Close() error {
	args := s.Called()
	return args.Error(0)
}
