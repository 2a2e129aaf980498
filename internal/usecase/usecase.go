package usecase

import "context"

type SearchUC interface {
	Search(ctx context.Context, req *SearchReq) (*SearchRes, error)
}

type IndexerUC interface {
	Seed(ctx context.Context) (*SeedReport, error)
}

type OptOutUC interface {
	RegisterOptOut(ctx context.Context, identifier string) ([]string, error)
}
