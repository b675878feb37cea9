package storage

import (
	"bytes"
	"encoding/base64"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ahmad-alkadri/editor-depot/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedNames struct{ name string }

func (f fixedNames) Generate() string { return f.name }

func newTestDisk(t *testing.T) *Disk {
	t.Helper()
	disk, err := NewDisk(t.TempDir(), fixedNames{name: "generated"})
	require.NoError(t, err)
	return disk
}

func assertNoFiles(t *testing.T, root string) {
	t.Helper()
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		require.NoError(t, err)
		if !d.IsDir() {
			t.Errorf("unexpected file written: %s", path)
		}
		return nil
	})
	require.NoError(t, err)
}

func TestStoreStreamFixedStemKeepsExtension(t *testing.T) {
	disk := newTestDisk(t)

	desc, err := disk.StoreStream(strings.NewReader("jpeg-bytes"), "Holiday.JPG", StreamOptions{
		Dir:        "/upload/image/20230305",
		Name:       "1678024929000123456",
		MaxSize:    1024,
		AllowFiles: []string{".jpg", ".png"},
	})
	require.NoError(t, err)

	assert.Equal(t, &Descriptor{
		Original: "Holiday.JPG",
		Title:    "1678024929000123456.jpg",
		Type:     ".jpg",
		URL:      "/upload/image/20230305/1678024929000123456.jpg",
		Size:     10,
	}, desc)

	data, err := os.ReadFile(filepath.Join(disk.Root(), "upload", "image", "20230305", "1678024929000123456.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(data))
}

func TestStoreStreamFilenamePlaceholder(t *testing.T) {
	disk := newTestDisk(t)

	desc, err := disk.StoreStream(strings.NewReader("doc"), `C:\Users\me\report.pdf`, StreamOptions{
		Dir:  "/upload/file",
		Name: "{filename}",
	})
	require.NoError(t, err)
	assert.Equal(t, "report.pdf", desc.Title)
	assert.Equal(t, "report.pdf", desc.Original)
	assert.Equal(t, "/upload/file/report.pdf", desc.URL)
}

func TestStoreStreamRejectsUnsupportedTypeBeforeWriting(t *testing.T) {
	disk := newTestDisk(t)

	_, err := disk.StoreStream(strings.NewReader("MZ"), "setup.exe", StreamOptions{
		Dir:        "/upload/file",
		Name:       "x",
		AllowFiles: []string{".jpg", ".png"},
	})
	require.Error(t, err)
	assert.True(t, apperr.IsUnsupportedType(err))
	assert.Equal(t, apperr.MsgUnsupportedType, err.Error())

	_, statErr := os.Stat(filepath.Join(disk.Root(), "upload"))
	assert.True(t, os.IsNotExist(statErr), "destination must not be created")
	assertNoFiles(t, disk.Root())
}

func TestStoreStreamRejectsOversizedAndCleansUp(t *testing.T) {
	disk := newTestDisk(t)

	_, err := disk.StoreStream(bytes.NewReader(make([]byte, 11)), "big.png", StreamOptions{
		Dir:     "/upload/image",
		Name:    "big",
		MaxSize: 10,
	})
	require.Error(t, err)
	assert.True(t, apperr.IsTooLarge(err))
	assert.Equal(t, apperr.MsgFileTooLarge, err.Error())
	assertNoFiles(t, disk.Root())

	desc, err := disk.StoreStream(bytes.NewReader(make([]byte, 10)), "ok.png", StreamOptions{
		Dir:     "/upload/image",
		Name:    "ok",
		MaxSize: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(10), desc.Size)
}

func TestStoreStreamRejectsEscapingDirectory(t *testing.T) {
	disk := newTestDisk(t)

	_, err := disk.StoreStream(strings.NewReader("x"), "a.png", StreamOptions{
		Dir:  "/../../etc",
		Name: "a",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOutsideRoot)
}

func TestStoreStreamMkdirFailureSkipsWrite(t *testing.T) {
	disk := newTestDisk(t)
	blocker := filepath.Join(disk.Root(), "upload")
	require.NoError(t, os.WriteFile(blocker, []byte("not a dir"), 0o644))

	_, err := disk.StoreStream(strings.NewReader("x"), "a.png", StreamOptions{
		Dir:  "/upload/image",
		Name: "a",
	})
	require.Error(t, err)
	assert.True(t, apperr.IsIO(err))
}

func TestStoreMultipart(t *testing.T) {
	disk := newTestDisk(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("type", "ajax"))
	fw, err := mw.CreateFormFile("other", "skip.png")
	require.NoError(t, err)
	fw.Write([]byte("skipped"))
	fw, err = mw.CreateFormFile("upfile", "photo.png")
	require.NoError(t, err)
	fw.Write([]byte("png-bytes"))
	require.NoError(t, mw.Close())

	mr := multipart.NewReader(&body, mw.Boundary())
	desc, err := disk.StoreMultipart(mr, "upfile", StreamOptions{Dir: "/upload/image", Name: "stem"})
	require.NoError(t, err)
	assert.Equal(t, "stem.png", desc.Title)
	assert.Equal(t, "photo.png", desc.Original)
	assert.Equal(t, int64(9), desc.Size)
}

func TestStoreMultipartMissingField(t *testing.T) {
	disk := newTestDisk(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("upfile", "not a file"))
	require.NoError(t, mw.Close())

	_, err := disk.StoreMultipart(multipart.NewReader(&body, mw.Boundary()), "upfile", StreamOptions{})
	assert.ErrorIs(t, err, ErrMissingFile)
}

func TestExceedsBase64Limit(t *testing.T) {
	tests := []struct {
		length   int
		limit    int64
		exceeded bool
	}{
		// 132 - 16*2 = 100
		{132, 100, false},
		// 133 - 16*2 = 101
		{133, 100, true},
		// 8 - 1*2 = 6
		{8, 6, false},
		{8, 5, true},
		// 7 - 0*2 = 7
		{7, 7, false},
		{1 << 20, 0, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.exceeded, ExceedsBase64Limit(tt.length, tt.limit), "len=%d limit=%d", tt.length, tt.limit)
	}
}

func TestStoreBase64BoundaryCases(t *testing.T) {
	disk := newTestDisk(t)

	accepted := base64.StdEncoding.EncodeToString(bytes.Repeat([]byte("a"), 99))
	require.Len(t, accepted, 132)

	desc, err := disk.StoreBase64(accepted, Base64Options{Dir: "/upload/image", Name: "ok", MaxSize: 100})
	require.NoError(t, err)
	assert.Equal(t, int64(99), desc.Size)
	assert.Equal(t, "ok.png", desc.Title)

	rejected := accepted + "A"
	_, err = disk.StoreBase64(rejected, Base64Options{Dir: "/upload/image", Name: "big", MaxSize: 100})
	require.Error(t, err)
	assert.True(t, apperr.IsTooLarge(err))
	assert.Equal(t, apperr.MsgPictureTooLarge, err.Error())
	_, statErr := os.Stat(filepath.Join(disk.Root(), "upload", "image", "big.png"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestStoreBase64DataURI(t *testing.T) {
	disk := newTestDisk(t)
	payload := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString([]byte("jpeg"))

	desc, err := disk.StoreBase64(payload, Base64Options{Dir: "/upload/scrawl"})
	require.NoError(t, err)
	assert.Equal(t, "generated.jpg", desc.Title)
	assert.Equal(t, ".jpg", desc.Type)
	assert.Equal(t, "", desc.Original)
	assert.Equal(t, "/upload/scrawl/generated.jpg", desc.URL)

	data, err := os.ReadFile(filepath.Join(disk.Root(), "upload", "scrawl", "generated.jpg"))
	require.NoError(t, err)
	assert.Equal(t, "jpeg", string(data))
}

func TestStoreBase64TolerantDecoding(t *testing.T) {
	disk := newTestDisk(t)
	raw := []byte{0xfb, 0xff, 0xfe, 0x01}
	encoded := base64.StdEncoding.EncodeToString(raw) // "+//+AQ=="
	mangled := strings.ReplaceAll(strings.TrimRight(encoded, "="), "+", " ") + "\n"

	desc, err := disk.StoreBase64(mangled, Base64Options{Dir: "/upload", Name: "bin"})
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(disk.Root(), "upload", desc.Title))
	require.NoError(t, err)
	assert.Equal(t, raw, data)
}

func TestStoreBase64AllowList(t *testing.T) {
	disk := newTestDisk(t)
	payload := "data:image/bmp;base64," + base64.StdEncoding.EncodeToString([]byte("bmp"))

	_, err := disk.StoreBase64(payload, Base64Options{Dir: "/upload", AllowFiles: []string{".png", ".jpg"}})
	assert.True(t, apperr.IsUnsupportedType(err))
}

func TestStoreBase64InvalidPayload(t *testing.T) {
	disk := newTestDisk(t)

	_, err := disk.StoreBase64("!!!not-base64!!!", Base64Options{Dir: "/upload"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode base64")
}

func TestDataURIPrefix(t *testing.T) {
	prefix, ok := DataURIPrefix("image/png; charset=binary")
	assert.True(t, ok)
	assert.Equal(t, "data:image/png;base64,", prefix)

	_, ok = DataURIPrefix("image/svg+xml")
	assert.False(t, ok)

	_, ok = DataURIPrefix("text/html")
	assert.False(t, ok)
}

func TestAllowedAndSuffix(t *testing.T) {
	assert.True(t, Allowed(nil, ".exe"))
	assert.True(t, Allowed([]string{"*"}, ".exe"))
	assert.True(t, Allowed([]string{".PNG"}, ".png"))
	assert.False(t, Allowed([]string{".jpg"}, ".png"))

	assert.Equal(t, ".gz", Suffix("archive.tar.GZ"))
	assert.Equal(t, "", Suffix("README"))
}

func TestDefaultNameGenerator(t *testing.T) {
	name := NewDefaultNameGenerator().Generate()
	assert.Regexp(t, `^\d{19}$`, name)
}

func TestURLNormalizesSeparators(t *testing.T) {
	disk := newTestDisk(t)
	assert.Equal(t, "/upload/a.png", disk.URL(filepath.Join(disk.Root(), "upload", "a.png")))
}
