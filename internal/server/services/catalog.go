package services

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rbustosc/fieldsync/internal/server/repositories/repomanager"
	"github.com/rbustosc/fieldsync/internal/syncapi"
)

// CatalogService assembles the reference data snapshot a device pulls at
// session start.
type CatalogService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewCatalogService(db *sql.DB, m repomanager.RepositoryManager) *CatalogService {
	return &CatalogService{db: db, repomanager: m}
}

func (s *CatalogService) Catalog(ctx context.Context, companyID int64) (*syncapi.Catalog, error) {
	catalog := &syncapi.Catalog{}

	workers, err := s.repomanager.Workers(s.db).ListByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("error listing workers: %w", err)
	}
	for _, w := range workers {
		catalog.Workers = append(catalog.Workers, syncapi.CatalogWorker{
			ID: w.ID, Name: w.Name, NationalID: w.NationalID,
			ContractorID: w.ContractorID, Validated: w.Validated,
		})
	}

	cards, err := s.repomanager.Cards(s.db).ListByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("error listing cards: %w", err)
	}
	for _, c := range cards {
		catalog.Cards = append(catalog.Cards, syncapi.CatalogCard{ID: c.ID, Code: c.Code, Status: c.Status})
	}

	ref := s.repomanager.Catalog(s.db)

	fields, err := ref.Fields(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("error listing fields: %w", err)
	}
	for _, f := range fields {
		catalog.Fields = append(catalog.Fields, syncapi.CatalogItem{ID: f.ID, Name: f.Name})
	}

	cuarteles, err := ref.Cuarteles(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("error listing cuarteles: %w", err)
	}
	for _, c := range cuarteles {
		catalog.Cuarteles = append(catalog.Cuarteles, syncapi.CatalogCuartel{
			ID: c.ID, Name: c.Name, FieldID: c.FieldID, SpeciesID: c.SpeciesID,
		})
	}

	species, err := ref.Species(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("error listing species: %w", err)
	}
	for _, sp := range species {
		catalog.Species = append(catalog.Species, syncapi.CatalogItem{ID: sp.ID, Name: sp.Name})
	}

	containers, err := ref.Containers(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("error listing containers: %w", err)
	}
	for _, c := range containers {
		catalog.Containers = append(catalog.Containers, syncapi.CatalogContainer{
			ID: c.ID, Name: c.Name, WeightKg: c.WeightKg,
		})
	}

	taskTypes, err := ref.TaskTypes(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("error listing task types: %w", err)
	}
	for _, t := range taskTypes {
		catalog.TaskTypes = append(catalog.TaskTypes, syncapi.CatalogItem{ID: t.ID, Name: t.Name})
	}

	tasks, err := ref.Tasks(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("error listing tasks: %w", err)
	}
	for _, t := range tasks {
		catalog.Tasks = append(catalog.Tasks, syncapi.CatalogTask{ID: t.ID, Name: t.Name, FieldID: t.FieldID})
	}

	return catalog, nil
}
