package document

import (
	"context"
	"strings"
	"testing"

	memoryRepo "cityportal/database/repository/memory"
	"cityportal/models"
	"cityportal/services/storage"
	"cityportal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	resident = models.Viewer{UserID: "res", Roles: []models.Role{models.RoleResident}}
	other    = models.Viewer{UserID: "other", Roles: []models.Role{models.RoleResident}}
	employee = models.Viewer{UserID: "emp", Roles: []models.Role{models.RoleEmployee}}
	admin    = models.Viewer{UserID: "adm", Roles: []models.Role{models.RoleAdmin}}
)

type fixture struct {
	svc   *DefaultDocumentService
	files *storage.MemoryStorage
	store *memoryRepo.Store
}

func setup(t *testing.T) *fixture {
	t.Helper()
	utils.SetLogger(zap.NewNop())
	store := memoryRepo.NewStore()
	files := storage.NewMemoryStorage("http://files.test")
	svc := NewDefaultDocumentService(memoryRepo.NewDocumentRepo(store), memoryRepo.NewAppealRepo(store), files, 1024)
	return &fixture{svc: svc, files: files, store: store}
}

func pdf(name string) FileUpload {
	body := "%PDF-1.4 test document"
	return FileUpload{Filename: name, Size: int64(len(body)), Body: strings.NewReader(body)}
}

func (f *fixture) upload(t *testing.T, v models.Viewer, meta models.DocumentMeta, name string) *models.Document {
	t.Helper()
	doc, err := f.svc.Upload(context.Background(), v, meta, pdf(name))
	require.NoError(t, err)
	return doc
}

func TestUpload_Defaults(t *testing.T) {
	f := setup(t)

	doc := f.upload(t, resident, models.DocumentMeta{}, "passport scan.pdf")
	assert.Equal(t, models.VisibilityPrivate, doc.Visibility)
	assert.Equal(t, "passport scan", doc.Title.EN)
	assert.Equal(t, "application/pdf", doc.File.ContentType)
	assert.Equal(t, models.BucketDocuments, doc.File.Bucket)
	assert.True(t, f.files.Has(doc.File.Key))

	internal := f.upload(t, employee, models.DocumentMeta{TitleEN: "Budget", TitleRU: "Бюджет"}, "budget.pdf")
	assert.Equal(t, models.VisibilityInternal, internal.Visibility)
	assert.Equal(t, "Бюджет", internal.Title.RU)
}

func TestUpload_Rejections(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.svc.Upload(ctx, resident, models.DocumentMeta{Visibility: models.VisibilityPublic}, pdf("a.pdf"))
	assert.ErrorIs(t, err, models.ErrForbidden)

	big := FileUpload{Filename: "big.bin", Size: 2048, Body: strings.NewReader(strings.Repeat("x", 2048))}
	_, err = f.svc.Upload(ctx, employee, models.DocumentMeta{}, big)
	assert.ErrorIs(t, err, models.ErrTooLarge)

	// declared size lies
	liar := FileUpload{Filename: "liar.bin", Size: 10, Body: strings.NewReader(strings.Repeat("x", 2048))}
	_, err = f.svc.Upload(ctx, employee, models.DocumentMeta{}, liar)
	assert.ErrorIs(t, err, models.ErrTooLarge)
	assert.Equal(t, 0, f.files.Len())

	_, err = f.svc.Upload(ctx, resident, models.DocumentMeta{AppealID: "missing"}, pdf("a.pdf"))
	assert.ErrorIs(t, err, models.ErrNotFound)

	f.files.FailUploads = true
	_, err = f.svc.Upload(ctx, employee, models.DocumentMeta{}, pdf("a.pdf"))
	assert.ErrorIs(t, err, models.ErrStorage)
}

func TestUpload_LinkedAppealMustBeOwn(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	appeals := memoryRepo.NewAppealRepo(f.store)
	require.NoError(t, appeals.Create(ctx, &models.Appeal{ID: "ap1", SubmittedBy: "res"}))

	doc := f.upload(t, resident, models.DocumentMeta{AppealID: "ap1"}, "photo.pdf")
	assert.Equal(t, "ap1", doc.AppealID)

	_, err := f.svc.Upload(ctx, other, models.DocumentMeta{AppealID: "ap1"}, pdf("x.pdf"))
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestList_VisibilityRules(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.upload(t, employee, models.DocumentMeta{Visibility: models.VisibilityPublic, TitleEN: "pub"}, "a.pdf")
	f.upload(t, employee, models.DocumentMeta{Visibility: models.VisibilityInternal, TitleEN: "int"}, "b.pdf")
	f.upload(t, employee, models.DocumentMeta{Visibility: models.VisibilityPrivate, TitleEN: "emp-private"}, "c.pdf")
	f.upload(t, resident, models.DocumentMeta{TitleEN: "res-private"}, "d.pdf")

	titles := func(v models.Viewer) []string {
		list, err := f.svc.List(ctx, v, models.DocumentFilter{})
		require.NoError(t, err)
		var out []string
		for _, d := range list.Items {
			out = append(out, d.Title.EN)
		}
		return out
	}

	assert.ElementsMatch(t, []string{"pub", "res-private"}, titles(resident))
	assert.ElementsMatch(t, []string{"pub"}, titles(other))
	assert.ElementsMatch(t, []string{"pub", "int"}, titles(admin))
	assert.ElementsMatch(t, []string{"pub", "int", "emp-private"}, titles(employee))
	assert.ElementsMatch(t, []string{"pub"}, titles(models.Viewer{}))
}

func TestDownloadURL(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	pub := f.upload(t, employee, models.DocumentMeta{Visibility: models.VisibilityPublic}, "a.pdf")
	priv := f.upload(t, resident, models.DocumentMeta{}, "b.pdf")

	link, err := f.svc.DownloadURL(ctx, models.Viewer{}, pub.ID)
	require.NoError(t, err)
	assert.Zero(t, link.ExpiresIn)
	assert.Equal(t, "http://files.test/"+pub.File.Key, link.URL)

	link, err = f.svc.DownloadURL(ctx, resident, priv.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(SignedURLTTL.Seconds()), link.ExpiresIn)

	_, err = f.svc.DownloadURL(ctx, other, priv.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestUpdateMeta(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	doc := f.upload(t, employee, models.DocumentMeta{TitleEN: "Draft"}, "a.pdf")

	got, err := f.svc.UpdateMeta(ctx, employee, doc.ID, models.DocumentMeta{TitleEN: "Final", Visibility: models.VisibilityPrivate})
	require.NoError(t, err)
	assert.Equal(t, "Final", got.Title.EN)
	assert.Equal(t, models.VisibilityPrivate, got.Visibility)

	_, err = f.svc.UpdateMeta(ctx, employee, doc.ID, models.DocumentMeta{Visibility: models.VisibilityPublic})
	assert.ErrorIs(t, err, models.ErrValidation)

	shared := f.upload(t, employee, models.DocumentMeta{Visibility: models.VisibilityInternal}, "b.pdf")
	_, err = f.svc.UpdateMeta(ctx, models.Viewer{UserID: "emp2", Roles: []models.Role{models.RoleEmployee}}, shared.ID, models.DocumentMeta{TitleEN: "x"})
	assert.ErrorIs(t, err, models.ErrForbidden)
}

func TestDelete(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	mine := f.upload(t, resident, models.DocumentMeta{}, "a.pdf")
	theirs := f.upload(t, resident, models.DocumentMeta{}, "b.pdf")

	assert.ErrorIs(t, f.svc.Delete(ctx, other, mine.ID), models.ErrNotFound)
	assert.ErrorIs(t, f.svc.Delete(ctx, employee, mine.ID), models.ErrNotFound)

	require.NoError(t, f.svc.Delete(ctx, resident, mine.ID))
	assert.False(t, f.files.Has(mine.File.Key))
	_, err := f.svc.Get(ctx, resident, mine.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)

	require.NoError(t, f.svc.Delete(ctx, admin, theirs.ID))
	assert.Equal(t, 0, f.files.Len())
}
