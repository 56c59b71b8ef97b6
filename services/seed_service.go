package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/brianvoe/gofakeit/v7"

	"github.com/Dosada05/judo-pools/config"
	"github.com/Dosada05/judo-pools/models"
	"github.com/Dosada05/judo-pools/repositories"
)

var demoClubs = []string{
	"Judo Club Montlebon",
	"Dojo du Haut-Doubs",
	"Judo Club Morteau",
	"Pontarlier Judo",
	"Val de Morteau Judo",
}

type SeedResult struct {
	Categories  int `json:"categories"`
	Competitors int `json:"competitors"`
}

type SeedService interface {
	// Apply upserts the seed categories. Competitors are only imported into
	// categories that have none yet, so re-running a seed never duplicates them.
	Apply(ctx context.Context, seed *config.Seed) (*SeedResult, error)
	// Demo registers count generated competitors in a category.
	Demo(ctx context.Context, categoryID, count int, seed uint64) (*SeedResult, error)
}

type seedService struct {
	tx             repositories.Transactor
	categoryRepo   repositories.CategoryRepository
	competitorRepo repositories.CompetitorRepository
	logger         *slog.Logger
}

func NewSeedService(
	tx repositories.Transactor,
	categoryRepo repositories.CategoryRepository,
	competitorRepo repositories.CompetitorRepository,
	logger *slog.Logger,
) SeedService {
	return &seedService{
		tx:             tx,
		categoryRepo:   categoryRepo,
		competitorRepo: competitorRepo,
		logger:         logger,
	}
}

func (s *seedService) Apply(ctx context.Context, seed *config.Seed) (*SeedResult, error) {
	result := &SeedResult{}
	err := s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		for _, sc := range seed.Categories {
			category := &models.Category{
				Name:           sc.Name,
				IncludeInStats: sc.InStats(),
				BirthYearMin:   sc.BirthYearMin,
				BirthYearMax:   sc.BirthYearMax,
			}
			if err := s.categoryRepo.Upsert(ctx, exec, category); err != nil {
				return fmt.Errorf("upsert category %q: %w", sc.Name, err)
			}
			result.Categories++

			if len(sc.Competitors) == 0 {
				continue
			}
			existing, err := s.competitorRepo.ListByCategory(ctx, category.ID)
			if err != nil {
				return err
			}
			if len(existing) > 0 {
				s.logger.InfoContext(ctx, "category already has competitors, skipping import", slog.String("category", sc.Name))
				continue
			}
			for _, c := range sc.Competitors {
				competitor := &models.Competitor{
					CategoryID: category.ID,
					FirstName:  c.FirstName,
					LastName:   c.LastName,
					Sex:        models.Sex(c.Sex),
					BirthYear:  c.BirthYear,
					Club:       c.Club,
					Weight:     c.Weight,
				}
				if err := s.competitorRepo.Create(ctx, exec, competitor); err != nil {
					return fmt.Errorf("import %s into %q: %w", competitor.FullName(), sc.Name, err)
				}
				result.Competitors++
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "seed applied", slog.Int("categories", result.Categories), slog.Int("competitors", result.Competitors))
	return result, nil
}

func (s *seedService) Demo(ctx context.Context, categoryID, count int, seed uint64) (*SeedResult, error) {
	if count < 1 {
		return nil, fmt.Errorf("%w: count must be positive", ErrValidationFailed)
	}
	category, err := s.categoryRepo.GetByID(ctx, categoryID)
	if err != nil {
		if errors.Is(err, repositories.ErrCategoryNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrCategoryNotFound, categoryID)
		}
		return nil, err
	}

	competitors := demoCompetitors(category, count, seed)
	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		for i := range competitors {
			if err := s.competitorRepo.Create(ctx, exec, &competitors[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("register demo competitors: %w", err)
	}
	s.logger.InfoContext(ctx, "demo competitors registered", slog.Int("category_id", categoryID), slog.Int("competitors", count))
	return &SeedResult{Competitors: count}, nil
}

// demoCompetitors generates plausible young judokas for a category. The same seed
// always yields the same competitors.
func demoCompetitors(category *models.Category, count int, seed uint64) []models.Competitor {
	faker := gofakeit.New(seed)
	minYear, maxYear := 2012, 2018
	if category.BirthYearMin != nil {
		minYear = *category.BirthYearMin
	}
	if category.BirthYearMax != nil {
		maxYear = *category.BirthYearMax
	}
	if maxYear < minYear {
		maxYear = minYear
	}

	out := make([]models.Competitor, count)
	for i := range out {
		sex := models.SexMale
		first := faker.FirstName()
		if faker.Bool() {
			sex = models.SexFemale
		}
		out[i] = models.Competitor{
			CategoryID: category.ID,
			FirstName:  first,
			LastName:   faker.LastName(),
			Sex:        sex,
			BirthYear:  faker.IntRange(minYear, maxYear),
			Club:       faker.RandomString(demoClubs),
			Weight:     math.Round(faker.Float64Range(18, 60)*10) / 10,
		}
	}
	return out
}
