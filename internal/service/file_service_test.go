package service_test

import (
	"io"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/proposalhub/proposalhub-api/internal/domain"
	"github.com/proposalhub/proposalhub-api/internal/repository"
	"github.com/proposalhub/proposalhub-api/internal/service"
	"github.com/proposalhub/proposalhub-api/internal/storage"
	"github.com/proposalhub/proposalhub-api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newFileService(t *testing.T, f *tenantFixture, maxUploadSizeMB int64) *service.FileService {
	t.Helper()

	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	return service.NewFileService(
		repository.NewFileRepository(f.db),
		f.proposalRepo,
		store,
		maxUploadSizeMB,
		zap.NewNop(),
	)
}

func TestFileService_UploadAndDownload(t *testing.T) {
	f := setupTenant(t, domain.RoleMember)
	svc := newFileService(t, f, 1)

	dto, err := svc.Upload(f.ctx(), nil, "notes.txt", "text/plain", strings.NewReader("hello world"))
	require.NoError(t, err)
	assert.Equal(t, "notes.txt", dto.FileName)
	assert.Equal(t, int64(len("hello world")), dto.Size)
	assert.Equal(t, "/api/v1/files/"+dto.ID.String()+"/download", dto.URL)

	file, body, err := svc.Download(f.ctx(), dto.ID)
	require.NoError(t, err)
	defer body.Close()

	content, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "hello world", string(content))
	assert.Equal(t, "text/plain", file.ContentType)
}

func TestFileService_UploadAttachedToProposal(t *testing.T) {
	f := setupTenant(t, domain.RoleMember)
	svc := newFileService(t, f, 1)

	proposal := testutil.CreateTestProposal(t, f.db, f.org.ID, "Q3 Pitch")

	dto, err := svc.Upload(f.ctx(), &proposal.ID, "deck.pdf", "application/pdf", strings.NewReader("%PDF-1.4"))
	require.NoError(t, err)
	require.NotNil(t, dto.ProposalID)
	assert.Equal(t, proposal.ID, *dto.ProposalID)

	files, err := svc.List(f.ctx(), &proposal.ID)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "deck.pdf", files[0].FileName)
}

func TestFileService_UploadToForeignProposal(t *testing.T) {
	f := setupTenant(t, domain.RoleMember)
	svc := newFileService(t, f, 1)

	otherOrg := testutil.CreateTestOrganization(t, f.db, "Other Tenant")
	foreign := testutil.CreateTestProposal(t, f.db, otherOrg.ID, "Foreign Pitch")

	_, err := svc.Upload(f.ctx(), &foreign.ID, "deck.pdf", "application/pdf", strings.NewReader("%PDF-1.4"))
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestFileService_UploadRejectsOversizedFile(t *testing.T) {
	f := setupTenant(t, domain.RoleMember)
	svc := newFileService(t, f, 1)

	oversized := strings.NewReader(strings.Repeat("x", 1024*1024+1))
	_, err := svc.Upload(f.ctx(), nil, "big.bin", "application/octet-stream", oversized)
	assert.ErrorIs(t, err, service.ErrConflict)
}

func TestFileService_DownloadForeignFileIsNotFound(t *testing.T) {
	f := setupTenant(t, domain.RoleMember)
	svc := newFileService(t, f, 1)

	dto, err := svc.Upload(f.ctx(), nil, "notes.txt", "text/plain", strings.NewReader("hello"))
	require.NoError(t, err)

	otherTenant := testutil.CreateTestOrganization(t, f.db, "Other Tenant")
	intruder := testutil.CreateTestContact(t, f.db, otherTenant.ID, "Sal", "Sneak", "sal@other.test")

	other := &tenantFixture{db: f.db, org: otherTenant, contact: intruder}
	_, _, err = svc.Download(other.ctx(), dto.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestFileService_DeleteRemovesRecordAndContent(t *testing.T) {
	f := setupTenant(t, domain.RoleMember)
	svc := newFileService(t, f, 1)

	dto, err := svc.Upload(f.ctx(), nil, "notes.txt", "text/plain", strings.NewReader("hello"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(f.ctx(), dto.ID))

	_, _, err = svc.Download(f.ctx(), dto.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)

	files, err := svc.List(f.ctx(), nil)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestFileService_DeleteUnknownFile(t *testing.T) {
	f := setupTenant(t, domain.RoleMember)
	svc := newFileService(t, f, 1)

	err := svc.Delete(f.ctx(), uuid.New())
	assert.ErrorIs(t, err, service.ErrNotFound)
}
