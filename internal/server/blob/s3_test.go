package blob

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/dmitrijs2005/mycloud/internal/common"
)

func restoreStubs(t *testing.T) {
	t.Helper()
	origPut, origGet, origDelete, origHead := putObject, getObject, deleteObject, headObject
	t.Cleanup(func() {
		putObject, getObject, deleteObject, headObject = origPut, origGet, origDelete, origHead
	})
}

func testStore() *S3Store {
	return &S3Store{client: &s3.Client{}, bucket: "mycloud"}
}

func TestPut_PassesKeyAndSize(t *testing.T) {
	restoreStubs(t)

	var gotKey string
	var gotSize int64
	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		gotKey = aws.ToString(in.Key)
		gotSize = aws.ToInt64(in.ContentLength)
		return &s3.PutObjectOutput{}, nil
	}

	s := testStore()
	err := s.Put(context.Background(), "user_u-1_storage/a.txt", strings.NewReader("hello"), 5)
	if err != nil {
		t.Fatalf("Put error: %v", err)
	}
	if gotKey != "user_u-1_storage/a.txt" || gotSize != 5 {
		t.Fatalf("unexpected put input: key=%q size=%d", gotKey, gotSize)
	}
}

func TestPut_WrapsError(t *testing.T) {
	restoreStubs(t)

	putObject = func(c *s3.Client, ctx context.Context, in *s3.PutObjectInput) (*s3.PutObjectOutput, error) {
		return nil, errors.New("connection refused")
	}

	s := testStore()
	err := s.Put(context.Background(), "k", strings.NewReader(""), 0)
	if err == nil || !strings.Contains(err.Error(), "s3 put k") {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestGet_ReturnsBodyAndLength(t *testing.T) {
	restoreStubs(t)

	getObject = func(c *s3.Client, ctx context.Context, in *s3.GetObjectInput) (*s3.GetObjectOutput, error) {
		return &s3.GetObjectOutput{
			Body:          io.NopCloser(strings.NewReader("payload")),
			ContentLength: aws.Int64(7),
		}, nil
	}

	s := testStore()
	rc, n, err := s.Get(context.Background(), "k")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	defer rc.Close()

	b, _ := io.ReadAll(rc)
	if string(b) != "payload" || n != 7 {
		t.Fatalf("unexpected body %q length %d", b, n)
	}
}

func TestGet_NoSuchKeyIsNotFound(t *testing.T) {
	restoreStubs(t)

	getObject = func(c *s3.Client, ctx context.Context, in *s3.GetObjectInput) (*s3.GetObjectOutput, error) {
		return nil, &types.NoSuchKey{}
	}

	s := testStore()
	_, _, err := s.Get(context.Background(), "missing")
	if !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("want common.ErrorNotFound, got %v", err)
	}
}

func TestExists_TrueOnHeadSuccess(t *testing.T) {
	restoreStubs(t)

	headObject = func(c *s3.Client, ctx context.Context, in *s3.HeadObjectInput) (*s3.HeadObjectOutput, error) {
		return &s3.HeadObjectOutput{}, nil
	}

	s := testStore()
	ok, err := s.Exists(context.Background(), "k")
	if err != nil || !ok {
		t.Fatalf("want true,nil got %v,%v", ok, err)
	}
}

func TestExists_FalseOnNotFound(t *testing.T) {
	restoreStubs(t)

	headObject = func(c *s3.Client, ctx context.Context, in *s3.HeadObjectInput) (*s3.HeadObjectOutput, error) {
		return nil, &types.NotFound{}
	}

	s := testStore()
	ok, err := s.Exists(context.Background(), "missing")
	if err != nil || ok {
		t.Fatalf("want false,nil got %v,%v", ok, err)
	}
}

func TestExists_ErrorSurfaces(t *testing.T) {
	restoreStubs(t)

	headObject = func(c *s3.Client, ctx context.Context, in *s3.HeadObjectInput) (*s3.HeadObjectOutput, error) {
		return nil, errors.New("timeout")
	}

	s := testStore()
	_, err := s.Exists(context.Background(), "k")
	if err == nil {
		t.Fatalf("expected error")
	}
}

func TestDelete_Success(t *testing.T) {
	restoreStubs(t)

	var gotKey string
	deleteObject = func(c *s3.Client, ctx context.Context, in *s3.DeleteObjectInput) (*s3.DeleteObjectOutput, error) {
		gotKey = aws.ToString(in.Key)
		return &s3.DeleteObjectOutput{}, nil
	}

	s := testStore()
	if err := s.Delete(context.Background(), "k"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if gotKey != "k" {
		t.Fatalf("unexpected key %q", gotKey)
	}
}
