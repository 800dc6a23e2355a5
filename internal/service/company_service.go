package service

import (
	"context"
	"encoding/json"
	"time"

	"flyerhub/internal/cache"
	"flyerhub/internal/model"
	"flyerhub/internal/repository"
)

const (
	companyCacheKey = "companies:all"
	companyCacheTTL = 5 * time.Minute
)

// CompanyService exposes the company directory.
type CompanyService interface {
	List(ctx context.Context) ([]model.Company, error)
	Invalidate(ctx context.Context)
}

type companyService struct {
	repo  repository.CompanyRepository
	cache *cache.Client
}

// NewCompanyService builds a CompanyService with repository and cache.
func NewCompanyService(repo repository.CompanyRepository, cache *cache.Client) CompanyService {
	return &companyService{repo: repo, cache: cache}
}

func (s *companyService) List(ctx context.Context) ([]model.Company, error) {
	if data, _ := s.cache.Get(ctx, companyCacheKey); data != nil {
		var cached []model.Company
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
	}

	companies, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(companies); err == nil {
		_ = s.cache.Set(ctx, companyCacheKey, payload, companyCacheTTL)
	}
	return companies, nil
}

func (s *companyService) Invalidate(ctx context.Context) {
	_ = s.cache.Delete(ctx, companyCacheKey)
}
