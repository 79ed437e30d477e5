package services

import (
	"context"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"shopmart/internal/catalog"
	"shopmart/internal/domain"
)

// Catalog is the read side of the remote product API.
type Catalog interface {
	Products(ctx context.Context) ([]domain.Product, error)
	Product(ctx context.Context, id int) (domain.Product, error)
	ProductsByCategory(ctx context.Context, category string) ([]domain.Product, error)
	Categories(ctx context.Context) ([]string, error)
}

type CatalogService struct {
	API Catalog
}

func NewCatalogService(api Catalog) *CatalogService {
	return &CatalogService{API: api}
}

const featuredCount = 4

type HomeView struct {
	Categories []string
	Featured   []domain.Product
}

// Home loads categories and products concurrently; the first failure
// cancels the other request.
func (s *CatalogService) Home(ctx context.Context) (HomeView, error) {
	var v HomeView
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cats, err := s.API.Categories(ctx)
		v.Categories = cats
		return err
	})
	g.Go(func() error {
		ps, err := s.API.Products(ctx)
		v.Featured = catalog.Featured(ps, featuredCount)
		return err
	})
	if err := g.Wait(); err != nil {
		return HomeView{}, err
	}
	return v, nil
}

type Filter struct {
	Category string
	Sort     catalog.SortKey
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
}

type BrowseView struct {
	Filter     Filter
	Categories []string
	Products   []domain.Product
}

func (s *CatalogService) Browse(ctx context.Context, f Filter) (BrowseView, error) {
	v := BrowseView{Filter: f}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cats, err := s.API.Categories(ctx)
		v.Categories = cats
		return err
	})
	g.Go(func() error {
		var (
			ps  []domain.Product
			err error
		)
		if f.Category != "" {
			ps, err = s.API.ProductsByCategory(ctx, f.Category)
		} else {
			ps, err = s.API.Products(ctx)
		}
		v.Products = ps
		return err
	})
	if err := g.Wait(); err != nil {
		return BrowseView{}, err
	}

	if f.MinPrice != nil || f.MaxPrice != nil {
		lo, hi := decimal.Zero, decimal.New(1, 9)
		if f.MinPrice != nil {
			lo = *f.MinPrice
		}
		if f.MaxPrice != nil {
			hi = *f.MaxPrice
		}
		v.Products = catalog.FilterByPrice(v.Products, lo, hi)
	}
	v.Products = catalog.Sort(v.Products, f.Sort)
	return v, nil
}

func (s *CatalogService) Product(ctx context.Context, id int) (domain.Product, error) {
	return s.API.Product(ctx, id)
}
