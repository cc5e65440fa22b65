package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/techexpert/helpdesk/internal/domain"
	"github.com/techexpert/helpdesk/internal/repository"
	apperrors "github.com/techexpert/helpdesk/pkg/util"
)

// CatalogService manages the reference data tickets are classified against:
// companies, service offerings, problem categories, contact roles and the
// supported-software catalog.
type CatalogService struct {
	companies    repository.CompanyRepository
	offerings    repository.ServiceOfferingRepository
	categories   repository.ProblemCategoryRepository
	contactRoles repository.ContactRoleRepository
	software     repository.SoftwareRepository
}

// CatalogDependencies bundles the catalog repositories.
type CatalogDependencies struct {
	CompanyRepo     repository.CompanyRepository
	OfferingRepo    repository.ServiceOfferingRepository
	CategoryRepo    repository.ProblemCategoryRepository
	ContactRoleRepo repository.ContactRoleRepository
	SoftwareRepo    repository.SoftwareRepository
}

func NewCatalogService(deps CatalogDependencies) *CatalogService {
	return &CatalogService{
		companies:    deps.CompanyRepo,
		offerings:    deps.OfferingRepo,
		categories:   deps.CategoryRepo,
		contactRoles: deps.ContactRoleRepo,
		software:     deps.SoftwareRepo,
	}
}

func (s *CatalogService) CreateCompany(ctx context.Context, name string, kind domain.CompanyKind) (*domain.Company, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}
	if kind == "" {
		kind = domain.CompanyKindCompany
	}
	if kind != domain.CompanyKindCompany && kind != domain.CompanyKindProject {
		return nil, apperrors.NewValidationError("unknown company kind", map[string]any{"kind": string(kind)})
	}
	company := &domain.Company{Name: name, Kind: kind}
	if err := s.companies.Create(ctx, company); err != nil {
		return nil, mapCatalogError(err, "company")
	}
	return company, nil
}

func (s *CatalogService) UpdateCompany(ctx context.Context, id int64, name string, kind domain.CompanyKind) (*domain.Company, error) {
	company, err := s.companies.GetByID(ctx, id)
	if err != nil {
		return nil, mapCatalogError(err, "company")
	}
	if name = strings.TrimSpace(name); name != "" {
		company.Name = name
	}
	if kind != "" {
		if kind != domain.CompanyKindCompany && kind != domain.CompanyKindProject {
			return nil, apperrors.NewValidationError("unknown company kind", map[string]any{"kind": string(kind)})
		}
		company.Kind = kind
	}
	if err := s.companies.Update(ctx, company); err != nil {
		return nil, mapCatalogError(err, "company")
	}
	return company, nil
}

func (s *CatalogService) DeleteCompany(ctx context.Context, id int64) error {
	return mapCatalogError(s.companies.Delete(ctx, id), "company")
}

func (s *CatalogService) ListCompanies(ctx context.Context) ([]domain.Company, error) {
	companies, err := s.companies.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return companies, nil
}

func (s *CatalogService) CreateOffering(ctx context.Context, name string, companyID *int64) (*domain.ServiceOffering, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}
	if companyID != nil {
		if _, err := s.companies.GetByID(ctx, *companyID); err != nil {
			return nil, mapCatalogError(err, "company")
		}
	}
	offering := &domain.ServiceOffering{Name: name, CompanyID: companyID}
	if err := s.offerings.Create(ctx, offering); err != nil {
		return nil, mapCatalogError(err, "service offering")
	}
	return offering, nil
}

func (s *CatalogService) UpdateOffering(ctx context.Context, id int64, name string, companyID *int64) (*domain.ServiceOffering, error) {
	offering, err := s.offerings.GetByID(ctx, id)
	if err != nil {
		return nil, mapCatalogError(err, "service offering")
	}
	if name = strings.TrimSpace(name); name != "" {
		offering.Name = name
	}
	if companyID != nil {
		if _, err := s.companies.GetByID(ctx, *companyID); err != nil {
			return nil, mapCatalogError(err, "company")
		}
		offering.CompanyID = companyID
	}
	if err := s.offerings.Update(ctx, offering); err != nil {
		return nil, mapCatalogError(err, "service offering")
	}
	return offering, nil
}

func (s *CatalogService) DeleteOffering(ctx context.Context, id int64) error {
	return mapCatalogError(s.offerings.Delete(ctx, id), "service offering")
}

func (s *CatalogService) ListOfferings(ctx context.Context, companyID *int64) ([]domain.ServiceOffering, error) {
	offerings, err := s.offerings.List(ctx, companyID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return offerings, nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, name string) (*domain.ProblemCategory, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}
	category := &domain.ProblemCategory{Name: name}
	if err := s.categories.Create(ctx, category); err != nil {
		return nil, mapCatalogError(err, "problem category")
	}
	return category, nil
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]domain.ProblemCategory, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return categories, nil
}

func (s *CatalogService) DeleteCategory(ctx context.Context, id int64) error {
	return mapCatalogError(s.categories.Delete(ctx, id), "problem category")
}

func (s *CatalogService) CreateContactRole(ctx context.Context, name string) (*domain.ContactRole, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}
	role := &domain.ContactRole{Name: name}
	if err := s.contactRoles.Create(ctx, role); err != nil {
		return nil, mapCatalogError(err, "contact role")
	}
	return role, nil
}

func (s *CatalogService) ListContactRoles(ctx context.Context) ([]domain.ContactRole, error) {
	roles, err := s.contactRoles.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return roles, nil
}

func (s *CatalogService) DeleteContactRole(ctx context.Context, id int64) error {
	return mapCatalogError(s.contactRoles.Delete(ctx, id), "contact role")
}

func (s *CatalogService) CreateSoftwareType(ctx context.Context, name string) (*domain.SoftwareType, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}
	swType := &domain.SoftwareType{Name: name}
	if err := s.software.CreateType(ctx, swType); err != nil {
		return nil, mapCatalogError(err, "software type")
	}
	return swType, nil
}

func (s *CatalogService) ListSoftwareTypes(ctx context.Context) ([]domain.SoftwareType, error) {
	types, err := s.software.ListTypes(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return types, nil
}

func (s *CatalogService) CreateSoftware(ctx context.Context, name string, typeID *int64) (*domain.Software, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}
	software := &domain.Software{Name: name, TypeID: typeID}
	if err := s.software.Create(ctx, software); err != nil {
		return nil, mapCatalogError(err, "software")
	}
	return software, nil
}

func (s *CatalogService) ListSoftware(ctx context.Context, typeID *int64) ([]domain.Software, error) {
	software, err := s.software.List(ctx, typeID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return software, nil
}

func (s *CatalogService) DeleteSoftware(ctx context.Context, id int64) error {
	return mapCatalogError(s.software.Delete(ctx, id), "software")
}

func mapCatalogError(err error, resource string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		return apperrors.NewNotFound(resource, nil)
	case repository.IsUniqueViolation(err):
		return apperrors.NewConflict(resource+" already exists", nil)
	default:
		return apperrors.MapError(err)
	}
}
