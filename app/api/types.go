package api

import (
	"context"

	"github.com/lysyi3m/news-comb/app/database"
	"github.com/lysyi3m/news-comb/app/news"
)

type SearcherInterface interface {
	Search(ctx context.Context, req news.Request) (news.Response, error)
}

var _ SearcherInterface = (*news.Searcher)(nil)

type Handler struct {
	searcher    SearcherInterface
	topics      *news.TopicCache
	cache       *news.AggregateCache
	articleRepo database.ArticleRepository
}
