package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"taskhub/internal/model"
)

const defaultSearchSize = 20

type TodoSearchRepository interface {
	Search(ctx context.Context, projectID uuid.UUID, query string, size int) (results []model.TodoSearchResult, err error)
}

type SearchService struct {
	searchRepo  TodoSearchRepository
	projectRepo ProjectRepository
}

func NewSearchService(searchRepo TodoSearchRepository, projectRepo ProjectRepository) *SearchService {
	return &SearchService{
		searchRepo:  searchRepo,
		projectRepo: projectRepo,
	}
}

func (s *SearchService) SearchTodos(ctx context.Context, userID, projectID uuid.UUID, query string, size int) ([]model.TodoSearchResult, error) {
	if _, err := memberProject(ctx, nil, s.projectRepo, projectID, userID); err != nil {
		return nil, err
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return []model.TodoSearchResult{}, nil
	}

	if size <= 0 {
		size = defaultSearchSize
	}

	results, err := s.searchRepo.Search(ctx, projectID, query, size)
	if err != nil {
		return nil, fmt.Errorf("failed to search todos: %w", err)
	}

	return results, nil
}
