package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/techexpert/helpdesk/internal/api/dto"
	"github.com/techexpert/helpdesk/internal/domain"
	"github.com/techexpert/helpdesk/internal/service"
	apperrors "github.com/techexpert/helpdesk/pkg/util"
)

// CatalogHandler serves the reference data the ticket form is built from.
// Listing is public so the form can populate its dropdowns; mutation is
// restricted to administrators at the router.
type CatalogHandler struct {
	catalog *service.CatalogService
}

// NewCatalogHandler constructs handler.
func NewCatalogHandler(catalog *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// ListCompanies GET /catalog/companies.
func (h *CatalogHandler) ListCompanies(c *fiber.Ctx) error {
	companies, err := h.catalog.ListCompanies(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.CompanyResponse, 0, len(companies))
	for _, company := range companies {
		items = append(items, companyResponse(company))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateCompany POST /staff/catalog/companies.
func (h *CatalogHandler) CreateCompany(c *fiber.Ctx) error {
	var req dto.CompanyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	company, err := h.catalog.CreateCompany(c.UserContext(), req.Name, req.Kind)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": companyResponse(*company)})
}

// UpdateCompany PUT /staff/catalog/companies/:id.
func (h *CatalogHandler) UpdateCompany(c *fiber.Ctx) error {
	id, err := parseCatalogID(c)
	if err != nil {
		return err
	}
	var req dto.CompanyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	company, err := h.catalog.UpdateCompany(c.UserContext(), id, req.Name, req.Kind)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": companyResponse(*company)})
}

// DeleteCompany DELETE /staff/catalog/companies/:id.
func (h *CatalogHandler) DeleteCompany(c *fiber.Ctx) error {
	id, err := parseCatalogID(c)
	if err != nil {
		return err
	}
	if err := h.catalog.DeleteCompany(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// ListOfferings GET /catalog/offerings.
func (h *CatalogHandler) ListOfferings(c *fiber.Ctx) error {
	offerings, err := h.catalog.ListOfferings(c.UserContext(), parseOptionalID(c.Query("company_id")))
	if err != nil {
		return err
	}
	items := make([]dto.OfferingResponse, 0, len(offerings))
	for _, offering := range offerings {
		items = append(items, dto.OfferingResponse{
			ID:        offering.ID,
			Name:      offering.Name,
			CompanyID: offering.CompanyID,
			CreatedAt: offering.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateOffering POST /staff/catalog/offerings.
func (h *CatalogHandler) CreateOffering(c *fiber.Ctx) error {
	var req dto.OfferingRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	offering, err := h.catalog.CreateOffering(c.UserContext(), req.Name, req.CompanyID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.OfferingResponse{
		ID:        offering.ID,
		Name:      offering.Name,
		CompanyID: offering.CompanyID,
		CreatedAt: offering.CreatedAt,
	}})
}

// DeleteOffering DELETE /staff/catalog/offerings/:id.
func (h *CatalogHandler) DeleteOffering(c *fiber.Ctx) error {
	id, err := parseCatalogID(c)
	if err != nil {
		return err
	}
	if err := h.catalog.DeleteOffering(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// ListCategories GET /catalog/categories.
func (h *CatalogHandler) ListCategories(c *fiber.Ctx) error {
	categories, err := h.catalog.ListCategories(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.NamedItemResponse, 0, len(categories))
	for _, category := range categories {
		items = append(items, dto.NamedItemResponse{ID: category.ID, Name: category.Name, CreatedAt: category.CreatedAt})
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateCategory POST /staff/catalog/categories.
func (h *CatalogHandler) CreateCategory(c *fiber.Ctx) error {
	name, err := parseNamedItem(c)
	if err != nil {
		return err
	}
	category, err := h.catalog.CreateCategory(c.UserContext(), name)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NamedItemResponse{
		ID: category.ID, Name: category.Name, CreatedAt: category.CreatedAt,
	}})
}

// DeleteCategory DELETE /staff/catalog/categories/:id.
func (h *CatalogHandler) DeleteCategory(c *fiber.Ctx) error {
	id, err := parseCatalogID(c)
	if err != nil {
		return err
	}
	if err := h.catalog.DeleteCategory(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// ListContactRoles GET /catalog/contact-roles.
func (h *CatalogHandler) ListContactRoles(c *fiber.Ctx) error {
	roles, err := h.catalog.ListContactRoles(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.NamedItemResponse, 0, len(roles))
	for _, role := range roles {
		items = append(items, dto.NamedItemResponse{ID: role.ID, Name: role.Name, CreatedAt: role.CreatedAt})
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateContactRole POST /staff/catalog/contact-roles.
func (h *CatalogHandler) CreateContactRole(c *fiber.Ctx) error {
	name, err := parseNamedItem(c)
	if err != nil {
		return err
	}
	role, err := h.catalog.CreateContactRole(c.UserContext(), name)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NamedItemResponse{
		ID: role.ID, Name: role.Name, CreatedAt: role.CreatedAt,
	}})
}

// DeleteContactRole DELETE /staff/catalog/contact-roles/:id.
func (h *CatalogHandler) DeleteContactRole(c *fiber.Ctx) error {
	id, err := parseCatalogID(c)
	if err != nil {
		return err
	}
	if err := h.catalog.DeleteContactRole(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// ListSoftwareTypes GET /catalog/software-types.
func (h *CatalogHandler) ListSoftwareTypes(c *fiber.Ctx) error {
	types, err := h.catalog.ListSoftwareTypes(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.NamedItemResponse, 0, len(types))
	for _, swType := range types {
		items = append(items, dto.NamedItemResponse{ID: swType.ID, Name: swType.Name, CreatedAt: swType.CreatedAt})
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateSoftwareType POST /staff/catalog/software-types.
func (h *CatalogHandler) CreateSoftwareType(c *fiber.Ctx) error {
	name, err := parseNamedItem(c)
	if err != nil {
		return err
	}
	swType, err := h.catalog.CreateSoftwareType(c.UserContext(), name)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.NamedItemResponse{
		ID: swType.ID, Name: swType.Name, CreatedAt: swType.CreatedAt,
	}})
}

// ListSoftware GET /catalog/software.
func (h *CatalogHandler) ListSoftware(c *fiber.Ctx) error {
	software, err := h.catalog.ListSoftware(c.UserContext(), parseOptionalID(c.Query("type_id")))
	if err != nil {
		return err
	}
	items := make([]dto.SoftwareResponse, 0, len(software))
	for _, entry := range software {
		items = append(items, softwareResponse(entry))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateSoftware POST /staff/catalog/software.
func (h *CatalogHandler) CreateSoftware(c *fiber.Ctx) error {
	var req dto.SoftwareRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	software, err := h.catalog.CreateSoftware(c.UserContext(), req.Name, req.TypeID)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": softwareResponse(*software)})
}

// DeleteSoftware DELETE /staff/catalog/software/:id.
func (h *CatalogHandler) DeleteSoftware(c *fiber.Ctx) error {
	id, err := parseCatalogID(c)
	if err != nil {
		return err
	}
	if err := h.catalog.DeleteSoftware(c.UserContext(), id); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func parseCatalogID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.NewValidationError("invalid id", nil)
	}
	return id, nil
}

func parseNamedItem(c *fiber.Ctx) (string, error) {
	var req dto.NamedItemRequest
	if err := c.BodyParser(&req); err != nil {
		return "", apperrors.NewValidationError("invalid payload", nil)
	}
	return req.Name, nil
}

func companyResponse(company domain.Company) dto.CompanyResponse {
	return dto.CompanyResponse{
		ID:        company.ID,
		Name:      company.Name,
		Kind:      company.Kind,
		CreatedAt: company.CreatedAt,
	}
}

func softwareResponse(software domain.Software) dto.SoftwareResponse {
	return dto.SoftwareResponse{
		ID:        software.ID,
		Name:      software.Name,
		TypeID:    software.TypeID,
		CreatedAt: software.CreatedAt,
	}
}
