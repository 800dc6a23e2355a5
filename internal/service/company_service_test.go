package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"flyerhub/internal/cache"
	"flyerhub/internal/model"
)

func TestCompanyService_ListWithoutRedisHitsRepository(t *testing.T) {
	repo := new(MockCompanyRepository)
	repo.On("List", ctxMatcher).Return([]model.Company{{ID: 1, Name: "Company A"}, {ID: 2, Name: "Company B"}}, nil).Twice()

	svc := NewCompanyService(repo, cache.New("", "", 0))
	for i := 0; i < 2; i++ {
		got, err := svc.List(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "Company B", got[1].Name)
	}
	svc.Invalidate(context.Background())
	repo.AssertExpectations(t)
}

func TestCompanyService_ListPropagatesError(t *testing.T) {
	repo := new(MockCompanyRepository)
	repo.On("List", ctxMatcher).Return(nil, assert.AnError)

	_, err := NewCompanyService(repo, nil).List(context.Background())
	assert.ErrorIs(t, err, assert.AnError)
}
