package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/proposalhub/proposalhub-api/internal/domain"
	"github.com/proposalhub/proposalhub-api/internal/http/handler"
	"github.com/proposalhub/proposalhub-api/internal/service"
	"github.com/proposalhub/proposalhub-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func createOrganizationHandler(f *handlerFixture) *handler.OrganizationHandler {
	logger := zap.NewNop()
	orgService := service.NewOrganizationService(f.orgRepo, f.resolver, logger)
	return handler.NewOrganizationHandler(orgService, logger)
}

func TestOrganizationHandler_CreateOrganization(t *testing.T) {
	f := setupHandlerFixture(t, domain.RoleAdmin)
	h := createOrganizationHandler(f)

	t.Run("creates and returns the organization", func(t *testing.T) {
		body, err := json.Marshal(domain.CreateOrganizationRequest{
			Name:    "Acme Corp",
			Website: "https://acme.test",
		})
		require.NoError(t, err)

		req := f.authenticate(httptest.NewRequest(http.MethodPost, "/organizations", bytes.NewReader(body)))
		rr := httptest.NewRecorder()
		h.CreateOrganization(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)

		var result domain.OrganizationDTO
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
		assert.Equal(t, "Acme Corp", result.Name)
		assert.Equal(t, "https://acme.test", result.Website)
		require.NotNil(t, result.OwnerOrganizationID)
		assert.Equal(t, f.org.ID, *result.OwnerOrganizationID)
		assert.Equal(t, "/api/v1/organizations/"+result.ID.String(), rr.Header().Get("Location"))
	})

	t.Run("rejects a missing name", func(t *testing.T) {
		req := f.authenticate(httptest.NewRequest(http.MethodPost, "/organizations",
			strings.NewReader(`{"website":"https://acme.test"}`)))
		rr := httptest.NewRecorder()
		h.CreateOrganization(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)

		var apiErr domain.APIError
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &apiErr))
		assert.Equal(t, domain.ErrorTypeValidation, apiErr.Type)
		assert.Contains(t, apiErr.Errors, "name")
	})

	t.Run("rejects malformed JSON", func(t *testing.T) {
		req := f.authenticate(httptest.NewRequest(http.MethodPost, "/organizations",
			strings.NewReader(`{"name":`)))
		rr := httptest.NewRecorder()
		h.CreateOrganization(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)

		var apiErr domain.APIError
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &apiErr))
		assert.Equal(t, domain.ErrorTypeBadRequest, apiErr.Type)
	})
}

func TestOrganizationHandler_GetOrganization(t *testing.T) {
	f := setupHandlerFixture(t, domain.RoleAdmin)
	h := createOrganizationHandler(f)
	customer := testutil.CreateTestCustomerOrganization(t, f.db, "Acme Corp", f.org.ID)

	t.Run("returns an owned organization", func(t *testing.T) {
		req := f.authenticate(httptest.NewRequest(http.MethodGet, "/organizations/"+customer.ID.String(), nil))
		req = withURLParams(req, "id", customer.ID.String())
		rr := httptest.NewRecorder()
		h.GetOrganization(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var result domain.OrganizationDTO
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
		assert.Equal(t, customer.ID, result.ID)
		assert.Equal(t, "Acme Corp", result.Name)
	})

	t.Run("rejects a malformed id", func(t *testing.T) {
		req := f.authenticate(httptest.NewRequest(http.MethodGet, "/organizations/not-a-uuid", nil))
		req = withURLParams(req, "id", "not-a-uuid")
		rr := httptest.NewRecorder()
		h.GetOrganization(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)

		var apiErr domain.APIError
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &apiErr))
		assert.Equal(t, domain.ErrorTypeBadRequest, apiErr.Type)
	})

	t.Run("returns not found for an unknown id", func(t *testing.T) {
		id := uuid.NewString()
		req := f.authenticate(httptest.NewRequest(http.MethodGet, "/organizations/"+id, nil))
		req = withURLParams(req, "id", id)
		rr := httptest.NewRecorder()
		h.GetOrganization(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)

		var apiErr domain.APIError
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &apiErr))
		assert.Equal(t, domain.ErrorTypeNotFound, apiErr.Type)
	})

	t.Run("refuses another tenant's customer", func(t *testing.T) {
		otherTenant := testutil.CreateTestOrganization(t, f.db, "Other Tenant")
		foreign := testutil.CreateTestCustomerOrganization(t, f.db, "Foreign Customer", otherTenant.ID)

		req := f.authenticate(httptest.NewRequest(http.MethodGet, "/organizations/"+foreign.ID.String(), nil))
		req = withURLParams(req, "id", foreign.ID.String())
		rr := httptest.NewRecorder()
		h.GetOrganization(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)

		var apiErr domain.APIError
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &apiErr))
		assert.Equal(t, domain.ErrorTypeForbidden, apiErr.Type)
	})
}

func TestOrganizationHandler_UpdateOrganization(t *testing.T) {
	f := setupHandlerFixture(t, domain.RoleAdmin)
	h := createOrganizationHandler(f)
	customer := testutil.CreateTestCustomerOrganization(t, f.db, "Acme Corp", f.org.ID)

	t.Run("applies a partial update", func(t *testing.T) {
		req := f.authenticate(httptest.NewRequest(http.MethodPatch, "/organizations/"+customer.ID.String(),
			strings.NewReader(`{"primaryColor":"#112233"}`)))
		req = withURLParams(req, "id", customer.ID.String())
		rr := httptest.NewRecorder()
		h.UpdateOrganization(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var result domain.OrganizationDTO
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
		assert.Equal(t, "#112233", result.PrimaryColor)
		// Fields absent from the body keep their stored values
		assert.Equal(t, "Acme Corp", result.Name)
	})

	t.Run("returns not found for an unknown id", func(t *testing.T) {
		id := uuid.NewString()
		req := f.authenticate(httptest.NewRequest(http.MethodPatch, "/organizations/"+id,
			strings.NewReader(`{"name":"Renamed"}`)))
		req = withURLParams(req, "id", id)
		rr := httptest.NewRecorder()
		h.UpdateOrganization(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestOrganizationHandler_DeleteOrganization(t *testing.T) {
	t.Run("deletes an owned organization", func(t *testing.T) {
		f := setupHandlerFixture(t, domain.RoleAdmin)
		h := createOrganizationHandler(f)
		customer := testutil.CreateTestCustomerOrganization(t, f.db, "Acme Corp", f.org.ID)

		req := f.authenticate(httptest.NewRequest(http.MethodDelete, "/organizations/"+customer.ID.String(), nil))
		req = withURLParams(req, "id", customer.ID.String())
		rr := httptest.NewRecorder()
		h.DeleteOrganization(rr, req)

		assert.Equal(t, http.StatusNoContent, rr.Code)

		req = f.authenticate(httptest.NewRequest(http.MethodGet, "/organizations/"+customer.ID.String(), nil))
		req = withURLParams(req, "id", customer.ID.String())
		rr = httptest.NewRecorder()
		h.GetOrganization(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("refuses a member without admin role", func(t *testing.T) {
		f := setupHandlerFixture(t, domain.RoleMember)
		h := createOrganizationHandler(f)
		customer := testutil.CreateTestCustomerOrganization(t, f.db, "Acme Corp", f.org.ID)

		req := f.authenticate(httptest.NewRequest(http.MethodDelete, "/organizations/"+customer.ID.String(), nil))
		req = withURLParams(req, "id", customer.ID.String())
		rr := httptest.NewRecorder()
		h.DeleteOrganization(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})
}

func TestOrganizationHandler_ListOrganizations(t *testing.T) {
	f := setupHandlerFixture(t, domain.RoleAdmin)
	h := createOrganizationHandler(f)
	testutil.CreateTestCustomerOrganization(t, f.db, "Acme Corp", f.org.ID)
	testutil.CreateTestCustomerOrganization(t, f.db, "Beta LLC", f.org.ID)

	t.Run("lists owned organizations", func(t *testing.T) {
		req := f.authenticate(httptest.NewRequest(http.MethodGet, "/organizations", nil))
		rr := httptest.NewRecorder()
		h.ListOrganizations(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var result domain.PaginatedResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
		assert.Equal(t, int64(2), result.Total)
	})

	t.Run("lists with pagination", func(t *testing.T) {
		req := f.authenticate(httptest.NewRequest(http.MethodGet, "/organizations?page=1&pageSize=1", nil))
		rr := httptest.NewRecorder()
		h.ListOrganizations(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var result domain.PaginatedResponse
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
		assert.Equal(t, int64(2), result.Total)
		assert.Equal(t, 1, result.PageSize)
		assert.Equal(t, 2, result.TotalPages)
	})
}
