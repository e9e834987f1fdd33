package filestorage

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/chai2010/webp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_PutDeleteURL(t *testing.T) {
	dir := t.TempDir()
	ls, err := NewLocalStorage(dir, "http://localhost:8080/uploads/")
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, ls.Put(ctx, "avatars/5/a.webp", strings.NewReader("img"), 3, "image/webp"))

	content, err := os.ReadFile(filepath.Join(dir, "avatars", "5", "a.webp"))
	require.NoError(t, err)
	assert.Equal(t, "img", string(content))
	assert.Equal(t, "http://localhost:8080/uploads/avatars/5/a.webp", ls.URL("avatars/5/a.webp"))
	assert.Equal(t, "", ls.URL(""))

	require.NoError(t, ls.Delete(ctx, "avatars/5/a.webp"))
	require.NoError(t, ls.Delete(ctx, "avatars/5/a.webp"), "deleting twice is fine")
	_, err = os.Stat(filepath.Join(dir, "avatars", "5", "a.webp"))
	assert.True(t, os.IsNotExist(err))
}

func TestLocalStorage_KeysStayInsideRoot(t *testing.T) {
	dir := t.TempDir()
	ls, err := NewLocalStorage(filepath.Join(dir, "root"), "")
	require.NoError(t, err)

	require.NoError(t, ls.Put(context.Background(), "../../escape.txt", strings.NewReader("x"), 1, "text/plain"))

	_, err = os.Stat(filepath.Join(dir, "root", "escape.txt"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "escape.txt"))
	assert.True(t, os.IsNotExist(err))
}

type fakeS3 struct {
	s3iface.S3API
	puts    []*s3.PutObjectInput
	deletes []*s3.DeleteObjectInput
}

func (f *fakeS3) PutObjectWithContext(_ aws.Context, in *s3.PutObjectInput, _ ...request.Option) (*s3.PutObjectOutput, error) {
	f.puts = append(f.puts, in)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObjectWithContext(_ aws.Context, in *s3.DeleteObjectInput, _ ...request.Option) (*s3.DeleteObjectOutput, error) {
	f.deletes = append(f.deletes, in)
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3Storage(t *testing.T) {
	fake := &fakeS3{}
	st := &S3Storage{client: fake, bucket: "school-avatars", publicURL: "https://cdn.school.test"}
	ctx := context.Background()

	require.NoError(t, st.Put(ctx, "avatars/1/x.webp", io.MultiReader(strings.NewReader("ab"), strings.NewReader("c")), 0, "image/webp"))
	require.Len(t, fake.puts, 1)
	assert.Equal(t, "school-avatars", aws.StringValue(fake.puts[0].Bucket))
	assert.Equal(t, "avatars/1/x.webp", aws.StringValue(fake.puts[0].Key))
	assert.Equal(t, int64(3), aws.Int64Value(fake.puts[0].ContentLength))
	assert.Equal(t, "image/webp", aws.StringValue(fake.puts[0].ContentType))

	require.NoError(t, st.Delete(ctx, ""))
	require.NoError(t, st.Delete(ctx, "avatars/1/x.webp"))
	assert.Len(t, fake.deletes, 1)

	assert.Equal(t, "https://cdn.school.test/avatars/1/x.webp", st.URL("avatars/1/x.webp"))
}

func TestProcessAvatar(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 400, 300))
	for x := 0; x < 400; x++ {
		for y := 0; y < 300; y++ {
			src.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, src))

	out, err := ProcessAvatar(buf.Bytes())
	require.NoError(t, err)

	cfg, err := webp.DecodeConfig(bytes.NewReader(out))
	require.NoError(t, err)
	assert.Equal(t, AvatarSize, cfg.Width)
	assert.Equal(t, AvatarSize, cfg.Height)
}

func TestProcessAvatar_RejectsNonImages(t *testing.T) {
	_, err := ProcessAvatar([]byte("%PDF-1.4 not an image"))
	assert.ErrorIs(t, err, ErrUnsupportedImage)

	_, err = ProcessAvatar(nil)
	assert.ErrorIs(t, err, ErrUnsupportedImage)
}

func TestAvatarKey(t *testing.T) {
	a, b := AvatarKey(9), AvatarKey(9)
	assert.True(t, strings.HasPrefix(a, "avatars/9/"))
	assert.True(t, strings.HasSuffix(a, ".webp"))
	assert.NotEqual(t, a, b)
}
