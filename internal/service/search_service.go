package service

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/weiawesome/birdup/internal/domain"
	"github.com/weiawesome/birdup/internal/repository"
)

// QueryState tells a missing search parameter apart from an empty one.
type QueryState int

const (
	// QueryMissing: no parameter; show the search form and query nothing.
	QueryMissing QueryState = iota
	// QueryEmpty: parameter present but blank; send the user home.
	QueryEmpty
	// QueryPresent: run the search.
	QueryPresent
)

// Query is a classified search request.
type Query struct {
	State QueryState
	Text  string
}

// ParseQuery classifies the raw query parameter. present reports whether
// the parameter was sent at all.
func ParseQuery(raw string, present bool) Query {
	if !present {
		return Query{State: QueryMissing}
	}
	text := strings.TrimSpace(raw)
	if text == "" {
		return Query{State: QueryEmpty}
	}
	return Query{State: QueryPresent, Text: text}
}

// searchService implements SearchService.
type searchService struct {
	posts  repository.PostRepository
	users  repository.UserRepository
	groups repository.GroupRepository
}

// NewSearchService creates a new SearchService instance.
func NewSearchService(posts repository.PostRepository, users repository.UserRepository, groups repository.GroupRepository) SearchService {
	return &searchService{posts: posts, users: users, groups: groups}
}

func (s *searchService) Posts(ctx context.Context, q Query, pager domain.Pager) (*domain.Page[domain.Post], error) {
	if q.State != QueryPresent {
		return domain.NewPage[domain.Post](nil, 0, pager.Window(0)), nil
	}
	items, total, w, err := s.posts.List(ctx, repository.PostFilter{Term: q.Text}, pager)
	if err != nil {
		return nil, err
	}
	return domain.NewPage(items, total, w), nil
}

func (s *searchService) Users(ctx context.Context, q Query, pager domain.Pager) (*domain.Page[domain.User], error) {
	if q.State != QueryPresent {
		return domain.NewPage[domain.User](nil, 0, pager.Window(0)), nil
	}
	items, total, w, err := s.users.Search(ctx, q.Text, pager)
	if err != nil {
		return nil, err
	}
	return domain.NewPage(items, total, w), nil
}

func (s *searchService) Groups(ctx context.Context, q Query, pager domain.Pager) (*domain.Page[domain.Group], error) {
	if q.State != QueryPresent {
		return domain.NewPage[domain.Group](nil, 0, pager.Window(0)), nil
	}
	items, total, w, err := s.groups.Search(ctx, q.Text, pager)
	if err != nil {
		return nil, err
	}
	return domain.NewPage(items, total, w), nil
}

// All runs the three searches concurrently.
func (s *searchService) All(ctx context.Context, q Query, pager domain.Pager) (*SearchResults, error) {
	var res SearchResults
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		p, err := s.Posts(gctx, q, pager)
		res.Posts = p
		return err
	})
	g.Go(func() error {
		p, err := s.Users(gctx, q, pager)
		res.Users = p
		return err
	})
	g.Go(func() error {
		p, err := s.Groups(gctx, q, pager)
		res.Groups = p
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &res, nil
}

// Ensure interface is satisfied at compile time.
var _ SearchService = (*searchService)(nil)
