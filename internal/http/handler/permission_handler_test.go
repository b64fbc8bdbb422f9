package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/proposalhub/proposalhub-api/internal/domain"
	"github.com/proposalhub/proposalhub-api/internal/http/handler"
	"github.com/proposalhub/proposalhub-api/internal/service"
	"github.com/proposalhub/proposalhub-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func createPermissionHandler(f *handlerFixture) *handler.PermissionHandler {
	logger := zap.NewNop()
	permissionService := service.NewPermissionService(f.permissionRepo, f.proposalRepo, f.resolver, logger)
	return handler.NewPermissionHandler(permissionService, logger)
}

func TestPermissionHandler_RemovePermission(t *testing.T) {
	f := setupHandlerFixture(t, domain.RoleAdmin)
	h := createPermissionHandler(f)
	proposal := testutil.CreateTestProposal(t, f.db, f.org.ID, "Q3 Renewal")
	testutil.GrantRole(t, f.db, f.contact.ID, domain.TargetProposal, proposal.ID, domain.RoleLead)

	removeRequest := func(contactID string) *http.Request {
		req := f.authenticate(httptest.NewRequest(http.MethodDelete,
			"/permissions/proposal/"+proposal.ID.String()+"/"+contactID, nil))
		return withURLParams(req,
			"targetEntity", domain.TargetProposal,
			"targetId", proposal.ID.String(),
			"contactId", contactID,
		)
	}

	t.Run("refuses to remove the sole lead", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.RemovePermission(rr, removeRequest(f.contact.ID.String()))

		assert.Equal(t, http.StatusConflict, rr.Code)

		var apiErr domain.APIError
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &apiErr))
		assert.Equal(t, domain.ErrorTypeConflict, apiErr.Type)
	})

	t.Run("removes a non-lead edge", func(t *testing.T) {
		viewer := testutil.CreateTestContact(t, f.db, f.org.ID, "Cara", "Crane", "cara@tenant.test")
		testutil.GrantRole(t, f.db, viewer.ID, domain.TargetProposal, proposal.ID, domain.RoleViewer)

		rr := httptest.NewRecorder()
		h.RemovePermission(rr, removeRequest(viewer.ID.String()))

		assert.Equal(t, http.StatusNoContent, rr.Code)
	})

	t.Run("rejects a malformed contact id", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.RemovePermission(rr, removeRequest("not-a-uuid"))

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestPermissionHandler_SetPermission(t *testing.T) {
	f := setupHandlerFixture(t, domain.RoleAdmin)
	h := createPermissionHandler(f)

	setRequest := func(t *testing.T, req domain.SetPermissionRequest) *http.Request {
		t.Helper()
		body, err := json.Marshal(req)
		require.NoError(t, err)
		return f.authenticate(httptest.NewRequest(http.MethodPut, "/permissions", bytes.NewReader(body)))
	}

	t.Run("grants a role on the organization", func(t *testing.T) {
		member := testutil.CreateTestContact(t, f.db, f.org.ID, "Bob", "Berg", "bob@tenant.test")

		rr := httptest.NewRecorder()
		h.SetPermission(rr, setRequest(t, domain.SetPermissionRequest{
			PermittedEntityID: member.ID,
			TargetEntity:      domain.TargetOrganization,
			TargetEntityID:    f.org.ID,
			Role:              domain.RoleMember,
		}))

		assert.Equal(t, http.StatusOK, rr.Code)

		var result domain.PermissionDTO
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &result))
		assert.Equal(t, member.ID, result.PermittedEntityID)
		assert.Equal(t, domain.RoleMember, result.Role)
	})

	t.Run("refuses a target the caller does not administer", func(t *testing.T) {
		otherTenant := testutil.CreateTestOrganization(t, f.db, "Other Tenant")

		rr := httptest.NewRecorder()
		h.SetPermission(rr, setRequest(t, domain.SetPermissionRequest{
			PermittedEntityID: f.contact.ID,
			TargetEntity:      domain.TargetOrganization,
			TargetEntityID:    otherTenant.ID,
			Role:              domain.RoleMember,
		}))

		assert.Equal(t, http.StatusForbidden, rr.Code)

		var apiErr domain.APIError
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &apiErr))
		assert.Equal(t, domain.ErrorTypeForbidden, apiErr.Type)
	})

	t.Run("rejects an unknown role", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.SetPermission(rr, setRequest(t, domain.SetPermissionRequest{
			PermittedEntityID: f.contact.ID,
			TargetEntity:      domain.TargetOrganization,
			TargetEntityID:    f.org.ID,
			Role:              "janitor",
		}))

		assert.Equal(t, http.StatusBadRequest, rr.Code)

		var apiErr domain.APIError
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &apiErr))
		assert.Equal(t, domain.ErrorTypeValidation, apiErr.Type)
		assert.Contains(t, apiErr.Errors, "role")
	})
}
